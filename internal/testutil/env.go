// Package testutil provides helpers for running nest in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Env describes an isolated nest environment rooted in a temp directory.
type Env struct {
	Home      string // $HOME
	ConfigDir string // $NEST_CONFIG_DIR
	Caddyfile string // $NEST_CADDYFILE
}

// SetupTestEnv points HOME, NEST_CONFIG_DIR and NEST_CADDYFILE at a fresh
// t.TempDir so tests never touch the user's real Caddyfile or settings.
// The Caddyfile itself is not created.
func SetupTestEnv(t *testing.T) *Env {
	t.Helper()

	tmpDir := t.TempDir()
	env := &Env{
		Home:      filepath.Join(tmpDir, "home"),
		ConfigDir: filepath.Join(tmpDir, "config"),
	}
	env.Caddyfile = filepath.Join(env.Home, "Caddyfile")

	for _, dir := range []string{env.Home, env.ConfigDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	t.Setenv("HOME", env.Home)
	t.Setenv("NEST_CONFIG_DIR", env.ConfigDir)
	t.Setenv("NEST_CADDYFILE", env.Caddyfile)

	return env
}

// WriteCaddyfile writes content to the environment's Caddyfile.
func (e *Env) WriteCaddyfile(t *testing.T, content string) {
	t.Helper()
	if err := os.WriteFile(e.Caddyfile, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write Caddyfile: %v", err)
	}
}

// ReadCaddyfile returns the environment's Caddyfile contents.
func (e *Env) ReadCaddyfile(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(e.Caddyfile)
	if err != nil {
		t.Fatalf("failed to read Caddyfile: %v", err)
	}
	return string(data)
}
