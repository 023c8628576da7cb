package caddyfile

import (
	"errors"
	"fmt"
)

var (
	// ErrSiteNotFound is returned when a domain is not present in a document.
	ErrSiteNotFound = errors.New("site not found")

	// ErrDuplicateRoute matches any *DuplicateRouteError.
	ErrDuplicateRoute = errors.New("route already exists")

	// ErrRouteIndex matches any *RouteIndexError.
	ErrRouteIndex = errors.New("route index out of range")
)

// SyntaxError reports a structurally broken file. Only unterminated blocks
// produce one; everything else is parsed permissively.
type SyntaxError struct {
	Line    int    // 1-based line of the block opener
	Message string // e.g. "unterminated site block"
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// DuplicateRouteError is returned when a new route's path collides with the
// first argument of an existing handle, handle_path or reverse_proxy.
type DuplicateRouteError struct {
	Path      string // colliding path
	Directive string // name of the existing directive
}

func (e *DuplicateRouteError) Error() string {
	return fmt.Sprintf("path %q already exists in this site block (%s)", e.Path, e.Directive)
}

// Is lets errors.Is match ErrDuplicateRoute.
func (e *DuplicateRouteError) Is(target error) bool {
	return target == ErrDuplicateRoute
}

// RouteIndexError is returned when deleting a route position that does not
// exist in the current route list.
type RouteIndexError struct {
	Index int
	Count int
}

func (e *RouteIndexError) Error() string {
	return fmt.Sprintf("route index %d out of range (site has %d routes)", e.Index, e.Count)
}

// Is lets errors.Is match ErrRouteIndex.
func (e *RouteIndexError) Is(target error) bool {
	return target == ErrRouteIndex
}

// ValidationError reports an invalid editor input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "invalid " + e.Field + ": " + e.Message
	}
	return "invalid input: " + e.Message
}
