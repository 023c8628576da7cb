package caddyfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineSize bounds a single line so a corrupt file cannot exhaust memory.
const maxLineSize = 1 << 20

// Parser turns Caddyfile text into a Document. It only understands
// structure (blocks, names, arguments); directive semantics are not checked.
type Parser struct {
	logger Logger
}

// NewParser creates a parser with a no-op logger.
func NewParser() *Parser {
	return &Parser{logger: noopLogger{}}
}

// WithLogger sets the logger used for parse diagnostics.
func (p *Parser) WithLogger(logger Logger) *Parser {
	if logger == nil {
		logger = noopLogger{}
	}
	p.logger = logger
	return p
}

// Parse reads the whole of r and parses it.
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	st := &parseState{lines: lines, logger: p.logger}
	return st.document()
}

// ParseString parses src.
func (p *Parser) ParseString(src string) (*Document, error) {
	return p.Parse(strings.NewReader(src))
}

// ParseFile opens, parses and closes the file at path.
func (p *Parser) ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// Parse parses r with a default parser.
func Parse(r io.Reader) (*Document, error) {
	return NewParser().Parse(r)
}

// ParseString parses src with a default parser.
func ParseString(src string) (*Document, error) {
	return NewParser().ParseString(src)
}

func readLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read caddyfile: %w", err)
	}
	if len(lines) > 0 {
		lines[0] = strings.TrimPrefix(lines[0], "\ufeff")
	}
	return lines, nil
}

type parseState struct {
	lines  []string
	logger Logger
}

func (s *parseState) line(i int) string {
	return strings.TrimSpace(s.lines[i])
}

// skippable reports blank and comment lines.
func skippable(line string) bool {
	return line == "" || strings.HasPrefix(line, "#")
}

func (s *parseState) document() (*Document, error) {
	doc := NewDocument()

	for i := 0; i < len(s.lines); {
		line := s.line(i)
		switch {
		case skippable(line):
			i++
		case strings.HasPrefix(line, "{"):
			next, err := s.globalBlock(doc, i)
			if err != nil {
				return nil, err
			}
			i = next
		case hasSchemePrefix(line):
			site, next, err := s.siteBlock(i)
			if err != nil {
				return nil, err
			}
			if doc.HasSite(site.Domain) {
				s.logger.Warn("duplicate site block, last one wins", "domain", site.Domain, "line", i+1)
			}
			doc.SetSite(site)
			i = next
		default:
			s.logger.Warn("ignoring line outside any block", "line", i+1, "text", line)
			i++
		}
	}

	return doc, nil
}

// globalBlock parses the global options block opened on line start and
// returns the index of the line after its closing brace.
func (s *parseState) globalBlock(doc *Document, start int) (int, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(s.line(start), "{"))
	if rest != "" {
		// Single-line form: { admin off }
		if inner, ok := strings.CutSuffix(rest, "}"); ok {
			s.globalLine(doc, strings.TrimSpace(inner))
			return start + 1, nil
		}
		s.globalLine(doc, rest)
	}

	for i := start + 1; i < len(s.lines); {
		line := s.line(i)
		switch {
		case line == "}":
			return i + 1, nil
		case skippable(line):
			i++
		case isAdminLine(line):
			fields := strings.Fields(line)
			if len(fields) > 1 {
				doc.GlobalOptions = strings.Join(fields[1:], " ")
				i++
				continue
			}
			// Bare "admin": the value sits on the next non-blank line.
			j := s.nextContent(i + 1)
			if j < len(s.lines) && s.line(j) != "}" {
				doc.GlobalOptions = s.line(j)
				i = j + 1
				continue
			}
			i++
		default:
			d, next, err := s.directive(i)
			if err != nil {
				return 0, err
			}
			doc.GlobalDirectives = append(doc.GlobalDirectives, d)
			i = next
		}
	}

	return 0, &SyntaxError{Line: start + 1, Message: "unterminated global options block"}
}

// globalLine handles option text that shares a line with the opening brace.
func (s *parseState) globalLine(doc *Document, line string) {
	if skippable(line) {
		return
	}
	fields := strings.Fields(line)
	if fields[0] == "admin" && len(fields) > 1 {
		doc.GlobalOptions = strings.Join(fields[1:], " ")
		return
	}
	doc.GlobalDirectives = append(doc.GlobalDirectives, directiveFromFields(fields))
}

func isAdminLine(line string) bool {
	fields := strings.Fields(line)
	return fields[0] == "admin" && fields[len(fields)-1] != "{"
}

func (s *parseState) nextContent(i int) int {
	for i < len(s.lines) && skippable(s.line(i)) {
		i++
	}
	return i
}

func hasSchemePrefix(line string) bool {
	return strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://")
}

func splitScheme(addr string) (scheme, domain string) {
	if d, ok := strings.CutPrefix(addr, "https://"); ok {
		return SchemeHTTPS, d
	}
	return SchemeHTTP, strings.TrimPrefix(addr, "http://")
}

// siteBlock parses the site opened on line start.
func (s *parseState) siteBlock(start int) (*SiteBlock, int, error) {
	scheme, domain := splitScheme(strings.Fields(s.line(start))[0])
	site := &SiteBlock{Domain: domain, Scheme: scheme}

	for i := start + 1; i < len(s.lines); {
		line := s.line(i)
		switch {
		case line == "}":
			s.logger.Debug("parsed site", "domain", domain, "directives", len(site.Directives))
			return site, i + 1, nil
		case skippable(line):
			i++
		case isBindLine(line):
			// Keep every address so multi-address binds survive a save.
			site.Bind = strings.Join(strings.Fields(line)[1:], " ")
			i++
		default:
			d, next, err := s.directive(i)
			if err != nil {
				return nil, 0, err
			}
			site.AddDirective(d)
			i = next
		}
	}

	return nil, 0, &SyntaxError{
		Line:    start + 1,
		Message: fmt.Sprintf("unterminated site block %q", domain),
	}
}

func isBindLine(line string) bool {
	fields := strings.Fields(line)
	return fields[0] == "bind" && len(fields) > 1 && fields[len(fields)-1] != "{"
}

// directive parses the directive on line i. When it opens a block the
// children are parsed recursively and the returned index points past the
// block's closing brace.
func (s *parseState) directive(i int) (*Directive, int, error) {
	fields := strings.Fields(s.line(i))
	n := len(fields)
	if d, ok := inlineBlock(fields); ok {
		return d, i + 1, nil
	}
	if n < 2 || fields[n-1] != "{" {
		return directiveFromFields(fields), i + 1, nil
	}

	d := directiveFromFields(fields[:n-1])
	subs, closing, err := s.block(i+1, i, d.Name)
	if err != nil {
		return nil, 0, err
	}
	d.Subdirectives = subs
	return d, closing + 1, nil
}

// block parses directives from start until the matching "}" and returns the
// index of that brace.
func (s *parseState) block(start, opener int, name string) ([]*Directive, int, error) {
	var out []*Directive
	for i := start; i < len(s.lines); {
		line := s.line(i)
		switch {
		case line == "}":
			return out, i, nil
		case skippable(line):
			i++
		default:
			d, next, err := s.directive(i)
			if err != nil {
				return nil, 0, err
			}
			out = append(out, d)
			i = next
		}
	}
	return nil, 0, &SyntaxError{
		Line:    opener + 1,
		Message: fmt.Sprintf("unterminated block for directive %q", name),
	}
}

// inlineBlock handles a block written on one line, such as
// "handle /x { reverse_proxy :1 }". The braces hold at most one child, which
// may itself be an inline block. A line whose first "{" is not closed by its
// final "}" is not an inline block.
func inlineBlock(fields []string) (*Directive, bool) {
	n := len(fields)
	if n < 3 || fields[n-1] != "}" {
		return nil, false
	}
	open := -1
	depth := 0
	for k, f := range fields {
		switch f {
		case "{":
			if open < 0 {
				open = k
			}
			depth++
		case "}":
			depth--
			if depth < 0 || (depth == 0 && k != n-1) {
				return nil, false
			}
		}
	}
	if open < 1 || depth != 0 {
		return nil, false
	}

	d := directiveFromFields(fields[:open])
	if inner := fields[open+1 : n-1]; len(inner) > 0 {
		child, ok := inlineBlock(inner)
		if !ok {
			child = directiveFromFields(inner)
		}
		d.AddSubdirective(child)
	}
	return d, true
}

func directiveFromFields(fields []string) *Directive {
	d := &Directive{Name: fields[0]}
	if len(fields) > 1 {
		d.Args = append([]string(nil), fields[1:]...)
	}
	return d
}
