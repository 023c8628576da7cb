// Package store persists the Caddyfile as a whole: scoped reads, atomic
// whole-file writes and timestamped backups of the previous contents.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	// FilePermissions is used when the target file does not exist yet.
	FilePermissions = 0o644
	// DirPermissions is used for directories the store creates.
	DirPermissions = 0o755
)

// WriteFileAtomic replaces the contents of path with data.
// Uses the write-then-rename pattern: the data goes to a temporary file in
// the same directory, is synced, then renamed over path. Readers see either
// the old or the new contents, never a mix. An existing file keeps its mode.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPermissions); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	perm := os.FileMode(FilePermissions)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}

	cleanup := func() {
		f.Close()
		os.Remove(tmpPath)
	}

	if _, err := f.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temporary file: %w", err)
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temporary file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temporary file: %w", err)
	}
	// OpenFile applies the umask; make the final mode match.
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temporary file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temporary file: %w", err)
	}

	return syncDir(dir)
}

// syncDir flushes the directory entry after a rename.
func syncDir(dir string) error {
	df, err := os.Open(dir)
	if err != nil {
		// Some platforms cannot open directories; the rename already happened.
		return nil
	}
	defer df.Close()
	if err := df.Sync(); err != nil {
		return fmt.Errorf("sync directory: %w", err)
	}
	return nil
}
