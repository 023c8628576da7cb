package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore reads and replaces a single file, keeping backups of the
// contents it overwrites.
type FileStore struct {
	path    string
	backups *Backups
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithBackups keeps up to retention copies of overwritten contents in dir.
func WithBackups(dir string, retention int, clock Clock) Option {
	return func(s *FileStore) {
		s.backups = NewBackups(dir, filepath.Base(s.path), retention, clock)
	}
}

// New creates a store for the file at path. Without WithBackups, writes
// keep no copies.
func New(path string, opts ...Option) *FileStore {
	s := &FileStore{path: path}
	for _, opt := range opts {
		opt(s)
	}
	if s.backups == nil {
		s.backups = NewBackups(filepath.Dir(path), filepath.Base(path), 0, nil)
	}
	return s
}

// Path returns the managed file path.
func (s *FileStore) Path() string {
	return s.path
}

// Backups returns the backup set.
func (s *FileStore) Backups() *Backups {
	return s.backups
}

// Exists reports whether the file is present.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Read returns the whole file. A missing file yields an error matching
// os.ErrNotExist.
func (s *FileStore) Read() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return data, nil
}

// Write replaces the whole file with data. When backups are enabled the
// previous contents are snapshotted first and old snapshots pruned after.
// Writing identical contents is a no-op.
func (s *FileStore) Write(data []byte) error {
	return s.write(data)
}

// write is Write with backups in keep exempt from pruning.
func (s *FileStore) write(data []byte, keep ...string) error {
	if s.backups.Enabled() {
		previous, err := os.ReadFile(s.path)
		switch {
		case err == nil:
			if string(previous) == string(data) {
				return nil
			}
			if _, err := s.backups.Snapshot(previous); err != nil {
				return err
			}
		case !errors.Is(err, os.ErrNotExist):
			return fmt.Errorf("read %s: %w", s.path, err)
		}
	}

	if err := WriteFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}

	if _, err := s.backups.Prune(keep...); err != nil {
		return fmt.Errorf("prune backups: %w", err)
	}
	return nil
}

// Restore replaces the file with the backup identified by id. The contents
// being replaced are themselves backed up, and the restored backup is kept
// even when the new snapshot pushes it past the retention limit.
func (s *FileStore) Restore(id string) (*Backup, error) {
	backup, err := s.backups.Find(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(backup.Path)
	if err != nil {
		return nil, fmt.Errorf("read backup %s: %w", id, err)
	}
	if err := s.write(data, id); err != nil {
		return nil, err
	}
	return backup, nil
}
