package config

import (
	"bytes"
	"fmt"
	"strings"
)

// Generator writes Settings back out as nest.lua.
type Generator struct {
	indent string
}

// NewGenerator creates a generator using two-space indentation.
func NewGenerator() *Generator {
	return &Generator{indent: "  "}
}

// Generate renders settings as Lua. Empty optional fields are written as
// commented-out examples so the file documents itself.
func (g *Generator) Generate(s *Settings) string {
	var buf bytes.Buffer

	buf.WriteString("-- nest settings\n")
	buf.WriteString("--\n")
	buf.WriteString("-- A read-only `platform` table is available, e.g.\n")
	buf.WriteString("--   caddyfile = platform.is_macos and \"~/Library/Caddyfile\" or \"~/Caddyfile\",\n")
	buf.WriteString("\n")
	buf.WriteString(luaGlobalNest + " = {\n")

	g.writeString(&buf, luaFieldCaddyfile, s.Caddyfile)
	if s.BindTemplate != "" {
		g.writeString(&buf, luaFieldBindTemplate, s.BindTemplate)
	} else {
		fmt.Fprintf(&buf, "%s-- %s = %s,\n", g.indent, luaFieldBindTemplate, quoteLuaString(DefaultBindTemplate))
	}
	fmt.Fprintf(&buf, "%s%s = %d,\n", g.indent, luaFieldBackupRetention, s.BackupRetention)
	if s.BackupDir != "" {
		g.writeString(&buf, luaFieldBackupDir, s.BackupDir)
	}
	g.writeString(&buf, luaFieldLogLevel, s.LogLevel)

	quoted := make([]string, 0, len(s.Encoding))
	for _, enc := range s.Encoding {
		quoted = append(quoted, quoteLuaString(enc))
	}
	fmt.Fprintf(&buf, "%s%s = { %s },\n", g.indent, luaFieldEncoding, strings.Join(quoted, ", "))

	buf.WriteString("}\n")
	return buf.String()
}

func (g *Generator) writeString(buf *bytes.Buffer, field, value string) {
	fmt.Fprintf(buf, "%s%s = %s,\n", g.indent, field, quoteLuaString(value))
}

// quoteLuaString quotes s as a double-quoted Lua string literal.
func quoteLuaString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return "\"" + s + "\""
}
