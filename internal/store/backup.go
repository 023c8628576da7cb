package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// backupTimeFormat is the timestamp embedded in backup file names.
const backupTimeFormat = "20060102T150405Z"

// ErrBackupNotFound is returned when no backup has the requested id.
var ErrBackupNotFound = errors.New("backup not found")

// Clock provides the current time. Swapped out in tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Backup describes one saved copy of the file.
type Backup struct {
	ID      string    `json:"id" yaml:"id"`
	Path    string    `json:"path" yaml:"path"`
	Created time.Time `json:"created" yaml:"created"`
	Size    int64     `json:"size" yaml:"size"`
}

// Backups manages timestamped copies of one file inside a directory.
// File names look like Caddyfile.20260102T150405Z.1a2b3c4d.bak.
type Backups struct {
	dir       string
	base      string
	retention int
	clock     Clock
}

// NewBackups creates a backup set for files named base in dir, keeping at
// most retention copies. A retention of zero or less disables backups.
func NewBackups(dir, base string, retention int, clock Clock) *Backups {
	if clock == nil {
		clock = realClock{}
	}
	return &Backups{dir: dir, base: base, retention: retention, clock: clock}
}

// Enabled reports whether snapshots are kept at all.
func (b *Backups) Enabled() bool {
	return b != nil && b.retention > 0
}

// Dir returns the backup directory.
func (b *Backups) Dir() string {
	return b.dir
}

// Snapshot stores data as a new backup and returns it.
func (b *Backups) Snapshot(data []byte) (*Backup, error) {
	if err := os.MkdirAll(b.dir, 0o700); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}

	created := b.clock.Now().UTC().Truncate(time.Second)
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name := fmt.Sprintf("%s.%s.%s.bak", b.base, created.Format(backupTimeFormat), id)
	path := filepath.Join(b.dir, name)

	if err := WriteFileAtomic(path, data); err != nil {
		return nil, fmt.Errorf("write backup: %w", err)
	}

	return &Backup{ID: id, Path: path, Created: created, Size: int64(len(data))}, nil
}

// List returns all backups, newest first.
func (b *Backups) List() ([]Backup, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	var backups []Backup
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		backup, ok := b.parseName(entry.Name())
		if !ok {
			continue
		}
		if info, err := entry.Info(); err == nil {
			backup.Size = info.Size()
		}
		backups = append(backups, backup)
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if !backups[i].Created.Equal(backups[j].Created) {
			return backups[i].Created.After(backups[j].Created)
		}
		return backups[i].Path > backups[j].Path
	})
	return backups, nil
}

// parseName decodes "<base>.<timestamp>.<id>.bak".
func (b *Backups) parseName(name string) (Backup, bool) {
	prefix := b.base + "."
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".bak") {
		return Backup{}, false
	}
	parts := strings.Split(strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".bak"), ".")
	if len(parts) != 2 || parts[1] == "" {
		return Backup{}, false
	}
	created, err := time.Parse(backupTimeFormat, parts[0])
	if err != nil {
		return Backup{}, false
	}
	return Backup{
		ID:      parts[1],
		Path:    filepath.Join(b.dir, name),
		Created: created,
	}, true
}

// Find returns the backup with the given id.
func (b *Backups) Find(id string) (*Backup, error) {
	backups, err := b.List()
	if err != nil {
		return nil, err
	}
	for i := range backups {
		if backups[i].ID == id {
			return &backups[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, id)
}

// Prune removes the oldest backups beyond the retention limit and returns
// how many were removed. Backups whose id is in keep are never removed.
func (b *Backups) Prune(keep ...string) (int, error) {
	if !b.Enabled() {
		return 0, nil
	}
	backups, err := b.List()
	if err != nil {
		return 0, err
	}
	excess := len(backups) - b.retention
	removed := 0
	for i := len(backups) - 1; i >= 0 && removed < excess; i-- {
		old := backups[i]
		if slices.Contains(keep, old.ID) {
			continue
		}
		if err := os.Remove(old.Path); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove backup %s: %w", old.ID, err)
		}
		removed++
	}
	return removed, nil
}
