package service

import (
	"context"
	"errors"

	"github.com/ZebulonRouseFrantzich/nest/internal/caddyfile"
)

// SessionState is the state of an interactive edit.
type SessionState int

const (
	// StateClean means the working copy matches the file.
	StateClean SessionState = iota
	// StateDirty means the working copy has unsaved changes.
	StateDirty
	// StatePersisted means the last change was written to the file.
	StatePersisted
)

func (st SessionState) String() string {
	switch st {
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	case StatePersisted:
		return "persisted"
	}
	return "unknown"
}

// ErrSessionClosed is returned when editing a session whose site was deleted.
var ErrSessionClosed = errors.New("edit session closed")

// EditSession holds a working copy of one site. Editor operations change
// only the copy; Save or Delete write the file. There is no autosave.
type EditSession struct {
	svc      *SiteService
	domain   string
	site     *caddyfile.SiteBlock
	baseline *caddyfile.SiteBlock // nil for a site not yet on disk
	state    SessionState
	closed   bool
}

// Begin starts editing the site for domain as it is on disk.
func (s *SiteService) Begin(ctx context.Context, domain string) (*EditSession, error) {
	site, err := s.Get(ctx, domain)
	if err != nil {
		return nil, err
	}
	return &EditSession{
		svc:      s,
		domain:   domain,
		site:     site.Clone(),
		baseline: site,
		state:    StateClean,
	}, nil
}

// BeginNew starts editing a site that is not yet in the file. The session
// starts dirty.
func (s *SiteService) BeginNew(site *caddyfile.SiteBlock) *EditSession {
	return &EditSession{
		svc:    s,
		domain: site.Domain,
		site:   site,
		state:  StateDirty,
	}
}

// Domain returns the domain being edited.
func (e *EditSession) Domain() string { return e.domain }

// State returns the current session state.
func (e *EditSession) State() SessionState { return e.state }

// Site returns a copy of the working site.
func (e *EditSession) Site() *caddyfile.SiteBlock { return e.site.Clone() }

// Summary summarizes the working site.
func (e *EditSession) Summary() caddyfile.Summary { return caddyfile.Summarize(e.site) }

// apply runs an editor operation on the working copy. A rejected
// operation leaves both the copy and the state as they were.
func (e *EditSession) apply(op func(*caddyfile.SiteBlock) (*caddyfile.SiteBlock, error)) error {
	if e.closed {
		return ErrSessionClosed
	}
	if _, err := op(e.site); err != nil {
		return err
	}
	e.state = StateDirty
	return nil
}

// AddReverseProxy adds a reverse-proxy route to the working copy.
func (e *EditSession) AddReverseProxy(path, port string) error {
	return e.apply(func(s *caddyfile.SiteBlock) (*caddyfile.SiteBlock, error) {
		return caddyfile.AddReverseProxy(s, path, port)
	})
}

// AddStaticRoute adds a static-file route to the working copy.
func (e *EditSession) AddStaticRoute(routePath, folderPath string) error {
	return e.apply(func(s *caddyfile.SiteBlock) (*caddyfile.SiteBlock, error) {
		return caddyfile.AddStaticRoute(s, routePath, folderPath)
	})
}

// DeleteRoute removes a route from the working copy. Indices come from the
// current Summary and shift after every change.
func (e *EditSession) DeleteRoute(index int) error {
	return e.apply(func(s *caddyfile.SiteBlock) (*caddyfile.SiteBlock, error) {
		return caddyfile.DeleteRoute(s, index)
	})
}

// SetEncoding replaces the encode directive of the working copy.
func (e *EditSession) SetEncoding(encodings ...string) error {
	return e.apply(func(s *caddyfile.SiteBlock) (*caddyfile.SiteBlock, error) {
		return caddyfile.SetEncoding(s, encodings...)
	})
}

// Save writes the working copy into the file. Saving a session without
// changes writes nothing.
func (e *EditSession) Save(ctx context.Context) error {
	if e.closed {
		return ErrSessionClosed
	}
	if e.state != StateDirty {
		return nil
	}
	if err := e.svc.SaveUpdatedSite(ctx, e.site.Clone()); err != nil {
		return err
	}
	e.baseline = e.site.Clone()
	e.state = StatePersisted
	return nil
}

// Delete removes the site from the file and closes the session.
func (e *EditSession) Delete(ctx context.Context) error {
	if e.closed {
		return ErrSessionClosed
	}
	if err := e.svc.DeleteSite(ctx, e.domain); err != nil {
		return err
	}
	e.closed = true
	e.state = StatePersisted
	return nil
}

// Discard drops unsaved changes. The working copy goes back to the last
// saved version and the session is clean again. A new site that was never
// saved has nothing to go back to and is closed.
func (e *EditSession) Discard() {
	if e.closed {
		return
	}
	if e.baseline == nil {
		e.closed = true
		e.state = StateClean
		return
	}
	e.site = e.baseline.Clone()
	e.state = StateClean
}

// Closed reports whether the session can no longer be edited.
func (e *EditSession) Closed() bool { return e.closed }
