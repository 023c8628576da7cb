package caddyfile

import (
	"strings"
)

// Renderer produces canonical Caddyfile text from the model.
type Renderer struct {
	indent string // one nesting level (default: four spaces)
}

// NewRenderer creates a renderer using four-space indentation.
func NewRenderer() *Renderer {
	return &Renderer{indent: "    "}
}

// Render renders doc with a default renderer.
func Render(doc *Document) string {
	return NewRenderer().Render(doc)
}

// Render returns the canonical text for doc: the global options block (if
// any), then every site separated by a blank line. Trailing whitespace is
// trimmed.
func (r *Renderer) Render(doc *Document) string {
	var parts []string

	if doc.GlobalOptions != "" || len(doc.GlobalDirectives) > 0 {
		parts = append(parts, r.renderGlobal(doc)+"\n")
	}
	for _, site := range doc.Sites() {
		parts = append(parts, r.RenderSite(site), "")
	}

	return strings.TrimRight(strings.Join(parts, "\n"), " \t\r\n")
}

func (r *Renderer) renderGlobal(doc *Document) string {
	var b strings.Builder
	b.WriteString("{\n")
	if doc.GlobalOptions != "" {
		b.WriteString(r.indent)
		b.WriteString("admin ")
		b.WriteString(doc.GlobalOptions)
		b.WriteString("\n")
	}
	for _, d := range doc.GlobalDirectives {
		r.writeDirective(&b, d, 1)
	}
	b.WriteString("}")
	return b.String()
}

// RenderSite renders one site block without a trailing newline.
func (r *Renderer) RenderSite(site *SiteBlock) string {
	var b strings.Builder
	b.WriteString(site.SchemeOrDefault())
	b.WriteString("://")
	b.WriteString(site.Domain)
	b.WriteString(" {\n")

	if site.Bind != "" {
		b.WriteString(r.indent)
		b.WriteString("bind ")
		b.WriteString(site.Bind)
		b.WriteString("\n")
	}
	for _, d := range site.Directives {
		r.writeDirective(&b, d, 1)
	}

	b.WriteString("}")
	return b.String()
}

// RenderDirective renders d at the given nesting depth without a trailing
// newline.
func (r *Renderer) RenderDirective(d *Directive, depth int) string {
	var b strings.Builder
	r.writeDirective(&b, d, depth)
	return strings.TrimSuffix(b.String(), "\n")
}

func (r *Renderer) writeDirective(b *strings.Builder, d *Directive, depth int) {
	pad := strings.Repeat(r.indent, depth)

	b.WriteString(pad)
	b.WriteString(d.Name)
	if len(d.Args) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(d.Args, " "))
	}

	if !d.IsBlock() {
		b.WriteString("\n")
		return
	}

	b.WriteString(" {\n")
	for _, sub := range d.Subdirectives {
		r.writeDirective(b, sub, depth+1)
	}
	b.WriteString(pad)
	b.WriteString("}\n")
}
