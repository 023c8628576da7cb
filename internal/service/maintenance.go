package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ZebulonRouseFrantzich/nest/internal/caddyfile"
	"github.com/ZebulonRouseFrantzich/nest/internal/store"
)

// Format rewrites the Caddyfile in canonical form and reports whether it
// changed. With check set nothing is written and a file that would change
// returns ErrNotFormatted. A file the parser warned about (stray lines,
// duplicate sites) loses that content when rewritten, so it is only written
// with force set; otherwise ErrWouldDropContent is returned.
func (s *SiteService) Format(ctx context.Context, check, force bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	data, err := s.storage.Read()
	if err != nil {
		return false, err
	}
	doc, warnings, err := s.parseCollecting(data)
	if err != nil {
		return false, err
	}

	formatted := s.render(doc)
	if string(formatted) == string(data) {
		return false, nil
	}
	if check {
		return true, fmt.Errorf("%w: %s", ErrNotFormatted, s.storage.Path())
	}
	if len(warnings) > 0 && !force {
		return false, fmt.Errorf("%w: %s: %s", ErrWouldDropContent, s.storage.Path(), strings.Join(warnings, "; "))
	}
	if err := s.save(ctx, doc); err != nil {
		return false, err
	}
	return true, nil
}

// ValidateResult is the outcome of a successful parse.
type ValidateResult struct {
	Path      string                           `json:"path" yaml:"path"`
	CheckedAt time.Time                        `json:"checked_at" yaml:"checked_at"`
	Sites     int                              `json:"sites" yaml:"sites"`
	Routes    int                              `json:"routes" yaml:"routes"`
	Warnings  []string                         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Secrets   []caddyfile.SensitiveDataFinding `json:"secrets,omitempty" yaml:"secrets,omitempty"`
}

// OK reports a file with no warnings and no inline credentials.
func (r *ValidateResult) OK() bool {
	return len(r.Warnings) == 0 && len(r.Secrets) == 0
}

// warningCollector records parser warnings while forwarding them.
type warningCollector struct {
	Logger
	warnings []string
}

func (w *warningCollector) Warn(msg interface{}, keyvals ...interface{}) {
	w.warnings = append(w.warnings, formatWarning(msg, keyvals))
	w.Logger.Warn(msg, keyvals...)
}

func formatWarning(msg interface{}, keyvals []interface{}) string {
	out := fmt.Sprint(msg)
	for i := 0; i+1 < len(keyvals); i += 2 {
		out += fmt.Sprintf(" %v=%v", keyvals[i], keyvals[i+1])
	}
	return out
}

// parseCollecting parses data and also returns the parser's warnings.
func (s *SiteService) parseCollecting(data []byte) (*caddyfile.Document, []string, error) {
	collector := &warningCollector{Logger: s.logger}
	doc, err := caddyfile.NewParser().WithLogger(collector).ParseString(string(data))
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", s.storage.Path(), err)
	}
	return doc, collector.warnings, nil
}

// Validate parses the Caddyfile and scans it for inline credentials. A
// structurally broken file is returned as an error; everything else is
// reported in the result.
func (s *SiteService) Validate(ctx context.Context) (*ValidateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.storage.Read()
	if err != nil {
		return nil, err
	}

	doc, warnings, err := s.parseCollecting(data)
	if err != nil {
		return nil, err
	}

	result := &ValidateResult{
		Path:      s.storage.Path(),
		CheckedAt: s.clock.Now().UTC(),
		Sites:     doc.Len(),
		Warnings:  warnings,
		Secrets:   caddyfile.DetectSensitiveData(string(data)),
	}
	for _, site := range doc.Sites() {
		result.Routes += len(caddyfile.Routes(site))
	}
	return result, nil
}

// Backups lists saved versions of the Caddyfile, newest first.
func (s *SiteService) Backups(ctx context.Context) ([]store.Backup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.storage.Backups().List()
}

// Restore replaces the Caddyfile with the backup identified by id. The
// backup must parse; the replaced contents are themselves backed up.
func (s *SiteService) Restore(ctx context.Context, id string) (*store.Backup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	backup, err := s.storage.Backups().Find(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(backup.Path)
	if err != nil {
		return nil, fmt.Errorf("read backup %s: %w", id, err)
	}
	if _, err := caddyfile.ParseString(string(data)); err != nil {
		return nil, fmt.Errorf("backup %s is not a valid caddyfile: %w", id, err)
	}

	restored, err := s.storage.Restore(id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("restored caddyfile", "path", s.storage.Path(), "backup", id)
	return restored, nil
}

// IsNotFound reports errors for a missing site, route or backup.
func IsNotFound(err error) bool {
	return errors.Is(err, caddyfile.ErrSiteNotFound) ||
		errors.Is(err, caddyfile.ErrRouteIndex) ||
		errors.Is(err, store.ErrBackupNotFound)
}
