// Package service implements nest's operations on the Caddyfile.
//
// Every call re-reads the whole file, applies one change and writes the
// whole file back. Nothing is cached between calls, so a caller always
// sees the file as it is on disk.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ZebulonRouseFrantzich/nest/internal/caddyfile"
	"github.com/ZebulonRouseFrantzich/nest/internal/store"
)

var (
	// ErrSiteExists is returned when creating a site whose domain is taken.
	ErrSiteExists = errors.New("site already exists")

	// ErrNotFormatted is returned by a format check when the file is not in
	// canonical form.
	ErrNotFormatted = errors.New("caddyfile is not formatted")

	// ErrWouldDropContent is returned when formatting would discard lines
	// the parser could not place.
	ErrWouldDropContent = errors.New("formatting would drop content")
)

// Storage reads and replaces the whole Caddyfile.
type Storage interface {
	Path() string
	Read() ([]byte, error)
	Write(data []byte) error
}

// BackupStorage is Storage that keeps previous versions.
type BackupStorage interface {
	Storage
	Backups() *store.Backups
	Restore(id string) (*store.Backup, error)
}

// Logger is the structured logger used by services. The charmbracelet
// *log.Logger satisfies it.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Info(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debug(msg interface{}, keyvals ...interface{}) {}
func (noopLogger) Info(msg interface{}, keyvals ...interface{})  {}
func (noopLogger) Warn(msg interface{}, keyvals ...interface{})  {}

// SiteService orchestrates load-mutate-save operations on one Caddyfile.
type SiteService struct {
	storage  BackupStorage
	renderer *caddyfile.Renderer
	logger   Logger
	clock    Clock
}

// Option configures a SiteService.
type Option func(*SiteService)

// WithLogger sets the service logger. Parser warnings go to it as well.
func WithLogger(logger Logger) Option {
	return func(s *SiteService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the clock used for timestamps.
func WithClock(clock Clock) Option {
	return func(s *SiteService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewSiteService creates a service backed by storage.
func NewSiteService(storage BackupStorage, opts ...Option) *SiteService {
	s := &SiteService{
		storage:  storage,
		renderer: caddyfile.NewRenderer(),
		logger:   noopLogger{},
		clock:    RealClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the Caddyfile path.
func (s *SiteService) Path() string {
	return s.storage.Path()
}

// load reads and parses the whole Caddyfile. A missing file is an empty
// document.
func (s *SiteService) load(ctx context.Context) (*caddyfile.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.storage.Read()
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Debug("caddyfile does not exist, starting empty", "path", s.storage.Path())
		return caddyfile.NewDocument(), nil
	}
	if err != nil {
		return nil, err
	}

	return s.parse(data)
}

func (s *SiteService) parse(data []byte) (*caddyfile.Document, error) {
	doc, err := caddyfile.NewParser().WithLogger(s.logger).Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.storage.Path(), err)
	}
	return doc, nil
}

// save renders doc and replaces the whole file.
func (s *SiteService) save(ctx context.Context, doc *caddyfile.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.storage.Write(s.render(doc)); err != nil {
		return err
	}
	s.logger.Info("saved caddyfile", "path", s.storage.Path(), "sites", doc.Len())
	return nil
}

func (s *SiteService) render(doc *caddyfile.Document) []byte {
	out := s.renderer.Render(doc)
	if out == "" {
		return nil
	}
	return []byte(out + "\n")
}

// update loads the document, applies fn to the named site and saves. fn
// must leave the site untouched when it returns an error.
func (s *SiteService) update(ctx context.Context, domain string, fn func(*caddyfile.SiteBlock) error) (*caddyfile.SiteBlock, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	site := doc.Site(domain)
	if site == nil {
		return nil, fmt.Errorf("%w: %s", caddyfile.ErrSiteNotFound, domain)
	}
	if err := fn(site); err != nil {
		return nil, err
	}
	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}
	return site, nil
}
