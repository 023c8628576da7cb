package caddyfile

// Route is a display row for one routable directive.
type Route struct {
	Index     int    `json:"index" yaml:"index"`
	Path      string `json:"path" yaml:"path"`
	Directive string `json:"directive" yaml:"directive"`
	Target    string `json:"target,omitempty" yaml:"target,omitempty"`
}

// CatchAll reports a route without a path matcher.
func (r Route) CatchAll() bool {
	return r.Path == ""
}

// Summary is the at-a-glance view of a site shown by the CLI.
type Summary struct {
	Domain       string   `json:"domain" yaml:"domain"`
	Bind         string   `json:"bind,omitempty" yaml:"bind,omitempty"`
	RootDir      string   `json:"root_dir,omitempty" yaml:"root_dir,omitempty"`
	ReverseProxy string   `json:"reverse_proxy,omitempty" yaml:"reverse_proxy,omitempty"`
	Encoding     []string `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	Routes       []Route  `json:"routes,omitempty" yaml:"routes,omitempty"`
}

// Summarize extracts the root directory, site-wide reverse proxy, encoding
// and route table from site.
func Summarize(site *SiteBlock) Summary {
	sum := Summary{Domain: site.Domain, Bind: site.Bind}

	for _, d := range site.Directives {
		switch d.Name {
		case DirectiveRoot:
			if len(d.Args) > 0 {
				sum.RootDir = d.Args[len(d.Args)-1]
			}
		case DirectiveReverseProxy:
			sum.ReverseProxy = d.FirstArg()
		case DirectiveEncode:
			sum.Encoding = append([]string(nil), d.Args...)
		}
	}

	for i, d := range Routes(site) {
		sum.Routes = append(sum.Routes, Route{
			Index:     i,
			Path:      d.FirstArg(),
			Directive: d.Name,
			Target:    routeTarget(d),
		})
	}
	return sum
}

// routeTarget describes where a route sends traffic: the upstream of a
// nested reverse_proxy, or the folder of a nested root.
func routeTarget(d *Directive) string {
	for _, sub := range d.Subdirectives {
		switch sub.Name {
		case DirectiveReverseProxy:
			return sub.FirstArg()
		case DirectiveRoot:
			if len(sub.Args) > 0 {
				return sub.Args[len(sub.Args)-1]
			}
		}
	}
	return ""
}
