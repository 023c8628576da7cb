// Package watch re-runs a callback when the Caddyfile changes on disk.
//
// The parent directory is watched rather than the file itself: saves go
// through a temp file and a rename, which replaces the inode a direct file
// watch would be attached to. Bursts of events inside the debounce window
// collapse into one callback.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Config.Debounce is unset.
const DefaultDebounce = 300 * time.Millisecond

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

// Logger receives watcher diagnostics.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debug(msg interface{}, keyvals ...interface{}) {}
func (noopLogger) Warn(msg interface{}, keyvals ...interface{})  {}

// Config holds the parameters for a Watcher.
type Config struct {
	// Path is the file to watch.
	Path string

	// Debounce is the quiet period after the last event before OnChange
	// runs. Zero or negative means DefaultDebounce.
	Debounce time.Duration

	// OnChange runs after each burst of changes. Its error is logged and
	// watching continues.
	OnChange func(ctx context.Context, path string) error

	Logger Logger
}

// Watcher fires a debounced callback when one file changes.
type Watcher struct {
	path     string
	base     string
	debounce time.Duration
	onChange func(ctx context.Context, path string) error
	logger   Logger
	fsw      *fsnotify.Watcher
	started  atomic.Bool
}

// New creates a Watcher on cfg.Path. The file need not exist yet, but its
// directory must.
func New(cfg Config) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, errors.New("watch: path is required")
	}
	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", cfg.Path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch: add %s: %w", filepath.Dir(abs), err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	return &Watcher{
		path:     abs,
		base:     filepath.Base(abs),
		debounce: debounce,
		onChange: cfg.OnChange,
		logger:   logger,
		fsw:      fsw,
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run blocks until ctx is cancelled. It returns nil on cancellation and an
// error if the underlying watcher fails. Callbacks never overlap.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close watcher", "err", err)
		}
	}()

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)

	resetTimer := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
		} else {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
		}
		timerC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case <-timerC:
			timerC = nil
			w.fire(ctx)

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			if !w.relevant(evt) {
				continue
			}
			w.logger.Debug("caddyfile event", "op", evt.Op.String(), "path", evt.Name)
			resetTimer()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.logger.Warn("watch events overflowed, re-checking", "path", w.path)
				resetTimer()
				continue
			}
			return fmt.Errorf("watch: %w", err)
		}
	}
}

// fire runs the callback inline, so events arriving meanwhile queue up in
// fsnotify and start a new debounce window afterwards.
func (w *Watcher) fire(ctx context.Context) {
	if ctx.Err() != nil || w.onChange == nil {
		return
	}
	if err := w.onChange(ctx, w.path); err != nil {
		w.logger.Warn("watch callback failed", "path", w.path, "err", err)
	}
}

func (w *Watcher) relevant(evt fsnotify.Event) bool {
	if filepath.Base(evt.Name) != w.base {
		return false
	}
	return evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
