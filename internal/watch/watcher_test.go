package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ZebulonRouseFrantzich/nest/internal/store"
	"github.com/fsnotify/fsnotify"
)

func startWatcher(t *testing.T, cfg Config) (context.CancelFunc, <-chan error) {
	t.Helper()
	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	t.Cleanup(cancel)
	return cancel, errCh
}

func TestWatcher_DebouncesAtomicSaves(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Caddyfile")

	var calls atomic.Int32
	fired := make(chan string, 10)
	cancel, errCh := startWatcher(t, Config{
		Path:     path,
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, changed string) error {
			calls.Add(1)
			fired <- changed
			return nil
		},
	})

	for _, content := range []string{"http://a.com {\n}\n", "http://b.com {\n}\n", "http://c.com {\n}\n"} {
		if err := store.WriteFileAtomic(path, []byte(content)); err != nil {
			t.Fatalf("WriteFileAtomic() error: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case got := <-fired:
		if got != path {
			t.Errorf("callback path = %q, want %q", got, path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}

	time.Sleep(300 * time.Millisecond)
	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 debounced callback, got %d", n)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Caddyfile")

	fired := make(chan struct{}, 10)
	cancel, errCh := startWatcher(t, Config{
		Path:     path,
		Debounce: 50 * time.Millisecond,
		OnChange: func(context.Context, string) error {
			fired <- struct{}{}
			return nil
		},
	})

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
		t.Error("callback fired for an unrelated file")
	case <-time.After(400 * time.Millisecond):
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}

func TestWatcher_CallbackErrorKeepsWatching(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Caddyfile")

	fired := make(chan struct{}, 10)
	cancel, errCh := startWatcher(t, Config{
		Path:     path,
		Debounce: 50 * time.Millisecond,
		OnChange: func(context.Context, string) error {
			fired <- struct{}{}
			return errors.New("broken caddyfile")
		},
	})

	for i := 0; i < 2; i++ {
		if err := os.WriteFile(path, []byte{byte('a' + i)}, 0o644); err != nil {
			t.Fatal(err)
		}
		select {
		case <-fired:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for callback %d", i+1)
		}
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}

func TestWatcher_RunTwice(t *testing.T) {
	w, err := New(Config{Path: filepath.Join(t.TempDir(), "Caddyfile")})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if err := w.Run(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() = %v, want ErrAlreadyRunning", err)
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for empty path")
	}
	missing := filepath.Join(t.TempDir(), "missing", "Caddyfile")
	if _, err := New(Config{Path: missing}); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestRelevant(t *testing.T) {
	w := &Watcher{base: "Caddyfile"}
	tests := []struct {
		name string
		evt  fsnotify.Event
		want bool
	}{
		{"write", fsnotify.Event{Name: "/d/Caddyfile", Op: fsnotify.Write}, true},
		{"create by rename", fsnotify.Event{Name: "/d/Caddyfile", Op: fsnotify.Create}, true},
		{"remove", fsnotify.Event{Name: "/d/Caddyfile", Op: fsnotify.Remove}, true},
		{"chmod only", fsnotify.Event{Name: "/d/Caddyfile", Op: fsnotify.Chmod}, false},
		{"temp file", fsnotify.Event{Name: "/d/.Caddyfile.1234.tmp", Op: fsnotify.Create}, false},
		{"other file", fsnotify.Event{Name: "/d/other", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.relevant(tt.evt); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.evt, got, tt.want)
			}
		})
	}
}
