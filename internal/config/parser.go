package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ZebulonRouseFrantzich/nest/internal/platform"
	lua "github.com/yuin/gopher-lua"
)

// Parser evaluates nest.lua in a sandboxed VM.
type Parser struct {
	detector platform.Detector
	logger   Logger
}

// NewParser creates a parser. With a nil detector no platform table is
// injected.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector, logger: noopLogger{}}
}

// WithLogger sets the logger used while loading.
func (p *Parser) WithLogger(logger Logger) *Parser {
	if logger == nil {
		logger = noopLogger{}
	}
	p.logger = logger
	return p
}

// ParseString evaluates luaCode and extracts the nest table. Fields that
// are not set keep their defaults.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Settings, error) {
	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		info, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		platform.InjectPlatformTable(L, info)
	}

	if err := L.DoString(luaCode); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ParseError{
			Message: "Lua error",
			Detail:  err.Error(),
		}
	}

	return extractSettings(L)
}

// ParseFile evaluates the settings file at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	settings, err := p.ParseString(ctx, string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return settings, nil
}

// Load reads the settings file at path. A missing file yields the defaults.
func (p *Parser) Load(ctx context.Context, path string) (*Settings, error) {
	settings, err := p.ParseFile(ctx, path)
	if errors.Is(err, os.ErrNotExist) {
		p.logger.Debug("no settings file, using defaults", "path", path)
		return DefaultSettings(), nil
	}
	if err != nil {
		return nil, err
	}
	p.logger.Debug("loaded settings", "path", path, "caddyfile", settings.Caddyfile)
	return settings, nil
}

// ParseError is a settings file that could not be evaluated.
type ParseError struct {
	Message string // user-facing summary
	Detail  string // raw Lua error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

func extractSettings(L *lua.LState) (*Settings, error) {
	global := L.GetGlobal(luaGlobalNest)
	tbl, ok := global.(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Message: "missing or invalid 'nest' table",
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}

	s := DefaultSettings()
	var errs []error

	stringField := func(name string, dst *string) {
		switch v := tbl.RawGetString(name).(type) {
		case *lua.LNilType:
		case lua.LString:
			*dst = string(v)
		default:
			errs = append(errs, fmt.Errorf("%s: expected string, got %s", name, v.Type()))
		}
	}

	stringField(luaFieldCaddyfile, &s.Caddyfile)
	stringField(luaFieldBindTemplate, &s.BindTemplate)
	stringField(luaFieldBackupDir, &s.BackupDir)
	stringField(luaFieldLogLevel, &s.LogLevel)

	switch v := tbl.RawGetString(luaFieldBackupRetention).(type) {
	case *lua.LNilType:
	case lua.LNumber:
		s.BackupRetention = int(v)
	default:
		errs = append(errs, fmt.Errorf("%s: expected number, got %s", luaFieldBackupRetention, v.Type()))
	}

	switch v := tbl.RawGetString(luaFieldEncoding).(type) {
	case *lua.LNilType:
	case *lua.LTable:
		s.Encoding = nil
		// Nil holes from platform.when() are skipped.
		v.ForEach(func(_, value lua.LValue) {
			if str, ok := value.(lua.LString); ok {
				s.Encoding = append(s.Encoding, string(str))
			}
		})
	default:
		errs = append(errs, fmt.Errorf("%s: expected table, got %s", luaFieldEncoding, v.Type()))
	}

	if len(errs) > 0 {
		return nil, &ParseError{Message: "invalid 'nest' table", Detail: errors.Join(errs...).Error()}
	}

	s.LogLevel = strings.ToLower(s.LogLevel)
	if err := s.Validate(); err != nil {
		return nil, &ParseError{Message: "settings validation failed", Detail: err.Error()}
	}
	return s, nil
}

// FormatError formats a settings error for display. Verbose output keeps the
// full Lua traceback.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		return err.Error()
	}
	if verbose {
		return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
	}
	detail := parseErr.Detail
	if idx := strings.Index(detail, "stack traceback"); idx > 0 {
		detail = strings.TrimSpace(detail[:idx])
	}
	return fmt.Sprintf("%s: %s", parseErr.Message, detail)
}
