// Package caddyfile models a Caddy-style configuration file as a tree of
// site blocks and directives.
//
// The parser is structural: it understands blocks, directive names and
// positional arguments, and carries unknown directives through untouched.
// The renderer produces a canonical form such that
//
//	Parse(Render(d)) is equal to d
//	Render(Parse(Render(d))) == Render(d)
//
// Editor functions (AddReverseProxy, AddStaticRoute, DeleteRoute, ...)
// validate their inputs before mutating, so a rejected call leaves the site
// exactly as it was. Route positions returned by Routes are only valid until
// the next mutation.
package caddyfile
