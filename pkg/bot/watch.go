package bot

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/zurustar/inkbot/pkg/compiler"
	"github.com/zurustar/inkbot/pkg/logger"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// Watcher recompiles a script when its file changes and hands the new
// program to a bot. A script that fails to compile is logged and the
// previous program keeps running.
type Watcher struct {
	path     string
	target   interface{ SetProgram(*compiler.Program) }
	fsw      *fsnotify.Watcher
	debounce time.Duration
	reloaded chan struct{}
	log      *slog.Logger
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithWatchLogger sets the logger.
func WithWatchLogger(log *slog.Logger) WatchOption {
	return func(w *Watcher) {
		w.log = log
	}
}

// WithDebounce sets how long the watcher waits for events to settle.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher watches the script at path. The directory is watched rather
// than the file so that editors that replace the file on save still work.
func NewWatcher(path string, target interface{ SetProgram(*compiler.Program) }, opts ...WatchOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	w := &Watcher{
		path:     filepath.Clean(path),
		target:   target,
		fsw:      fsw,
		debounce: DefaultDebounce,
		reloaded: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = logger.GetLogger()
	}
	return w, nil
}

// Reloaded delivers a value after each successful reload.
func (w *Watcher) Reloaded() <-chan struct{} {
	return w.reloaded
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run processes file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("Watcher error", "error", err)
		case <-timer.C:
			w.Reload()
		}
	}
}

// Reload recompiles the script now.
func (w *Watcher) Reload() bool {
	prog, _, err := compiler.CompileFile(w.path)
	if err != nil {
		w.log.Error("Reload failed, keeping the previous program", "error", err)
		return false
	}
	w.target.SetProgram(prog)
	w.log.Info("Script reloaded", "script", w.path)
	select {
	case w.reloaded <- struct{}{}:
	default:
	}
	return true
}
