package caddyfile

import (
	"fmt"
	"slices"
)

// Scheme prefixes recognized on site block headers.
const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

// Directive is a single configuration statement: a keyword, its positional
// arguments and any nested directives. The keyword is an open string tag;
// unknown names are carried through untouched.
type Directive struct {
	Name          string       `json:"name" yaml:"name"`
	Args          []string     `json:"args,omitempty" yaml:"args,omitempty"`
	Subdirectives []*Directive `json:"subdirectives,omitempty" yaml:"subdirectives,omitempty"`
}

// NewDirective creates a leaf directive with the given arguments.
func NewDirective(name string, args ...string) *Directive {
	return &Directive{Name: name, Args: args}
}

// AddArg appends a positional argument.
func (d *Directive) AddArg(arg string) {
	d.Args = append(d.Args, arg)
}

// AddSubdirective appends a nested directive, turning d into a block.
func (d *Directive) AddSubdirective(sub *Directive) {
	d.Subdirectives = append(d.Subdirectives, sub)
}

// FirstArg returns the first argument, or "" when there are none.
func (d *Directive) FirstArg() string {
	if len(d.Args) == 0 {
		return ""
	}
	return d.Args[0]
}

// IsBlock reports whether the directive renders as a { } block.
func (d *Directive) IsBlock() bool {
	return len(d.Subdirectives) > 0
}

// Clone returns a deep copy of the directive tree.
func (d *Directive) Clone() *Directive {
	if d == nil {
		return nil
	}
	out := &Directive{
		Name: d.Name,
		Args: slices.Clone(d.Args),
	}
	for _, sub := range d.Subdirectives {
		out.Subdirectives = append(out.Subdirectives, sub.Clone())
	}
	return out
}

// Equal reports whether two directive trees have the same names, arguments,
// order and nesting. A nil and an empty argument list are equal.
func (d *Directive) Equal(other *Directive) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.Name != other.Name || !slices.Equal(d.Args, other.Args) {
		return false
	}
	return directivesEqual(d.Subdirectives, other.Subdirectives)
}

// String returns a short debugging form: name | args | child count.
func (d *Directive) String() string {
	return fmt.Sprintf("%s | %v | %d", d.Name, d.Args, len(d.Subdirectives))
}

func directivesEqual(a, b []*Directive) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func cloneDirectives(in []*Directive) []*Directive {
	if in == nil {
		return nil
	}
	out := make([]*Directive, 0, len(in))
	for _, d := range in {
		out = append(out, d.Clone())
	}
	return out
}

// SiteBlock is the configuration scope for one domain.
type SiteBlock struct {
	// Domain is the site address without its scheme prefix.
	Domain string `json:"domain" yaml:"domain"`

	// Scheme is "http" or "https". Empty means http.
	Scheme string `json:"scheme,omitempty" yaml:"scheme,omitempty"`

	// Bind overrides the listener address (e.g. a unix socket).
	Bind string `json:"bind,omitempty" yaml:"bind,omitempty"`

	Directives []*Directive `json:"directives,omitempty" yaml:"directives,omitempty"`
}

// NewSite creates an empty http site.
func NewSite(domain, bind string) *SiteBlock {
	return &SiteBlock{Domain: domain, Scheme: SchemeHTTP, Bind: bind}
}

// AddDirective appends a top-level directive.
func (s *SiteBlock) AddDirective(d *Directive) {
	s.Directives = append(s.Directives, d)
}

// SetDirectives replaces the top-level directive list.
func (s *SiteBlock) SetDirectives(directives []*Directive) {
	s.Directives = directives
}

// Find returns the first top-level directive with the given name.
func (s *SiteBlock) Find(name string) *Directive {
	for _, d := range s.Directives {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// SchemeOrDefault returns the scheme used when rendering the header line.
func (s *SiteBlock) SchemeOrDefault() string {
	if s.Scheme == "" {
		return SchemeHTTP
	}
	return s.Scheme
}

// Clone returns a deep copy of the site.
func (s *SiteBlock) Clone() *SiteBlock {
	if s == nil {
		return nil
	}
	return &SiteBlock{
		Domain:     s.Domain,
		Scheme:     s.Scheme,
		Bind:       s.Bind,
		Directives: cloneDirectives(s.Directives),
	}
}

// Equal reports structural equality of two sites.
func (s *SiteBlock) Equal(other *SiteBlock) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Domain == other.Domain &&
		s.SchemeOrDefault() == other.SchemeOrDefault() &&
		s.Bind == other.Bind &&
		directivesEqual(s.Directives, other.Directives)
}

// Document is a parsed configuration file: global options plus all sites.
//
// Sites are keyed by domain. The document also remembers the order in which
// domains were first inserted so that rendering is deterministic.
type Document struct {
	// GlobalOptions is the value of the admin option in the global block.
	GlobalOptions string

	// GlobalDirectives holds the remaining global option lines.
	GlobalDirectives []*Directive

	sites map[string]*SiteBlock
	order []string
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{sites: make(map[string]*SiteBlock)}
}

// Len returns the number of sites.
func (doc *Document) Len() int {
	return len(doc.sites)
}

// Site returns the site for domain, or nil.
func (doc *Document) Site(domain string) *SiteBlock {
	return doc.sites[domain]
}

// HasSite reports whether domain is present.
func (doc *Document) HasSite(domain string) bool {
	_, ok := doc.sites[domain]
	return ok
}

// Sites returns the sites in insertion order.
func (doc *Document) Sites() []*SiteBlock {
	out := make([]*SiteBlock, 0, len(doc.order))
	for _, domain := range doc.order {
		out = append(out, doc.sites[domain])
	}
	return out
}

// Domains returns the site domains in insertion order.
func (doc *Document) Domains() []string {
	return slices.Clone(doc.order)
}

// SetSite inserts site under its own domain, replacing any existing site with
// the same domain. A replaced site keeps its position.
func (doc *Document) SetSite(site *SiteBlock) {
	if doc.sites == nil {
		doc.sites = make(map[string]*SiteBlock)
	}
	if _, ok := doc.sites[site.Domain]; !ok {
		doc.order = append(doc.order, site.Domain)
	}
	doc.sites[site.Domain] = site
}

// DeleteSite removes the site for domain. It returns an error wrapping
// ErrSiteNotFound when the domain is absent.
func (doc *Document) DeleteSite(domain string) error {
	if _, ok := doc.sites[domain]; !ok {
		return fmt.Errorf("%w: %s", ErrSiteNotFound, domain)
	}
	delete(doc.sites, domain)
	doc.order = slices.DeleteFunc(doc.order, func(d string) bool { return d == domain })
	return nil
}

// Clone returns a deep copy of the document.
func (doc *Document) Clone() *Document {
	out := NewDocument()
	out.GlobalOptions = doc.GlobalOptions
	out.GlobalDirectives = cloneDirectives(doc.GlobalDirectives)
	for _, site := range doc.Sites() {
		out.SetSite(site.Clone())
	}
	return out
}

// Equal reports structural equality: same global options, same set of sites
// with equal contents. Site order is not compared.
func (doc *Document) Equal(other *Document) bool {
	if doc == nil || other == nil {
		return doc == other
	}
	if doc.GlobalOptions != other.GlobalOptions ||
		!directivesEqual(doc.GlobalDirectives, other.GlobalDirectives) ||
		doc.Len() != other.Len() {
		return false
	}
	for domain, site := range doc.sites {
		if !site.Equal(other.sites[domain]) {
			return false
		}
	}
	return true
}
