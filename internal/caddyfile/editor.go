package caddyfile

import (
	"strings"
)

// Directive names the editor operations work with.
const (
	DirectiveHandle       = "handle"
	DirectiveHandlePath   = "handle_path"
	DirectiveReverseProxy = "reverse_proxy"
	DirectiveRoot         = "root"
	DirectiveFileServer   = "file_server"
	DirectiveEncode       = "encode"
	DirectiveHide         = "hide"
)

// isCollisionCandidate reports directives whose first argument is treated
// as a route path when checking for duplicates.
func isCollisionCandidate(name string) bool {
	switch name {
	case DirectiveHandle, DirectiveHandlePath, DirectiveReverseProxy:
		return true
	}
	return false
}

// isRoute reports directives listed and deleted as routes.
func isRoute(name string) bool {
	return name == DirectiveHandle || name == DirectiveHandlePath
}

// checkRouteFree returns a *DuplicateRouteError if path is already the first
// argument of a top-level handle, handle_path or reverse_proxy.
func checkRouteFree(site *SiteBlock, path string) error {
	for _, d := range site.Directives {
		if isCollisionCandidate(d.Name) && len(d.Args) > 0 && d.Args[0] == path {
			return &DuplicateRouteError{Path: path, Directive: d.Name}
		}
	}
	return nil
}

// validateToken rejects values that would not survive a render/parse cycle.
func validateToken(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Message: "cannot be empty"}
	}
	if strings.ContainsAny(value, " \t\r\n") {
		return &ValidationError{Field: field, Message: "cannot contain whitespace"}
	}
	if value == "{" || value == "}" {
		return &ValidationError{Field: field, Message: "cannot be a brace"}
	}
	return nil
}

// normalizeBind checks a bind value for a new site and collapses its spacing
// the way the parser reads it back. An empty bind means no bind line.
// Several space-separated addresses are allowed.
func normalizeBind(bind string) (string, error) {
	if bind == "" {
		return "", nil
	}
	if strings.ContainsAny(bind, "\r\n") {
		return "", &ValidationError{Field: "bind", Message: "cannot contain a line break"}
	}
	fields := strings.Fields(bind)
	if len(fields) == 0 {
		return "", &ValidationError{Field: "bind", Message: "cannot be blank"}
	}
	for _, f := range fields {
		if f == "{" || f == "}" {
			return "", &ValidationError{Field: "bind", Message: "cannot contain a brace"}
		}
	}
	return strings.Join(fields, " "), nil
}

// AddReverseProxy appends
//
//	handle <path> {
//	    reverse_proxy :<port>
//	}
//
// to site. It fails without touching the site if path collides with an
// existing route. A leading ":" on port is accepted.
func AddReverseProxy(site *SiteBlock, path, port string) (*SiteBlock, error) {
	port = strings.TrimPrefix(port, ":")
	if err := validateToken("path", path); err != nil {
		return nil, err
	}
	if err := validateToken("port", port); err != nil {
		return nil, err
	}
	if err := checkRouteFree(site, path); err != nil {
		return nil, err
	}

	handle := NewDirective(DirectiveHandle, path)
	handle.AddSubdirective(NewDirective(DirectiveReverseProxy, ":"+port))
	site.AddDirective(handle)
	return site, nil
}

// AddStaticRoute appends
//
//	handle_path <routePath> {
//	    root * <folderPath>
//	    file_server
//	}
//
// to site, with the same collision check as AddReverseProxy.
func AddStaticRoute(site *SiteBlock, routePath, folderPath string) (*SiteBlock, error) {
	if err := validateToken("route path", routePath); err != nil {
		return nil, err
	}
	if err := validateToken("folder path", folderPath); err != nil {
		return nil, err
	}
	if err := checkRouteFree(site, routePath); err != nil {
		return nil, err
	}

	handle := NewDirective(DirectiveHandlePath, routePath)
	handle.AddSubdirective(NewDirective(DirectiveRoot, "*", folderPath))
	handle.AddSubdirective(NewDirective(DirectiveFileServer))
	site.AddDirective(handle)
	return site, nil
}

// Routes returns the site's top-level handle and handle_path directives in
// file order. Positions are only valid until the next mutation.
func Routes(site *SiteBlock) []*Directive {
	var routes []*Directive
	for _, d := range site.Directives {
		if isRoute(d.Name) {
			routes = append(routes, d)
		}
	}
	return routes
}

// DeleteRoute removes the route at position index of Routes(site).
func DeleteRoute(site *SiteBlock, index int) (*SiteBlock, error) {
	routes := Routes(site)
	if index < 0 || index >= len(routes) {
		return nil, &RouteIndexError{Index: index, Count: len(routes)}
	}

	target := routes[index]
	kept := make([]*Directive, 0, len(site.Directives)-1)
	for _, d := range site.Directives {
		if d != target {
			kept = append(kept, d)
		}
	}
	site.SetDirectives(kept)
	return site, nil
}

// SetEncoding replaces the site's encode directive, appending one if the
// site has none. With no encodings the directive is removed.
func SetEncoding(site *SiteBlock, encodings ...string) (*SiteBlock, error) {
	for _, enc := range encodings {
		if err := validateToken("encoding", enc); err != nil {
			return nil, err
		}
	}

	kept := make([]*Directive, 0, len(site.Directives)+1)
	replaced := false
	for _, d := range site.Directives {
		if d.Name != DirectiveEncode {
			kept = append(kept, d)
			continue
		}
		if !replaced && len(encodings) > 0 {
			kept = append(kept, NewDirective(DirectiveEncode, encodings...))
			replaced = true
		}
	}
	if !replaced && len(encodings) > 0 {
		kept = append(kept, NewDirective(DirectiveEncode, encodings...))
	}
	site.SetDirectives(kept)
	return site, nil
}

// NewStaticSite builds a site that serves root as static files, hiding
// version-control and environment files.
func NewStaticSite(domain, bind, root string) (*SiteBlock, error) {
	if err := validateToken("root", root); err != nil {
		return nil, err
	}
	site, err := NewMixedSite(domain, bind)
	if err != nil {
		return nil, err
	}
	site.AddDirective(NewDirective(DirectiveRoot, "*", root))
	fs := NewDirective(DirectiveFileServer)
	fs.AddSubdirective(NewDirective(DirectiveHide, ".git", ".env"))
	site.AddDirective(fs)
	return site, nil
}

// NewReverseProxySite builds a site that proxies everything to a local port.
func NewReverseProxySite(domain, bind, port string) (*SiteBlock, error) {
	port = strings.TrimPrefix(port, ":")
	if err := validateToken("port", port); err != nil {
		return nil, err
	}
	site, err := NewMixedSite(domain, bind)
	if err != nil {
		return nil, err
	}
	site.AddDirective(NewDirective(DirectiveReverseProxy, "localhost:"+port))
	return site, nil
}

// NewMixedSite builds a site with no directives, to be filled with
// handle and handle_path routes.
func NewMixedSite(domain, bind string) (*SiteBlock, error) {
	if err := validateToken("domain", domain); err != nil {
		return nil, err
	}
	bind, err := normalizeBind(bind)
	if err != nil {
		return nil, err
	}
	return NewSite(domain, bind), nil
}
