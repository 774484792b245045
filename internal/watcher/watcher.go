// Package watcher reports changes to a fixed set of files
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"relgraph/internal/logger"
)

// DefaultDebounce collapses the burst of events an editor save produces
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches files for changes
type Watcher struct {
	fs       *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	log      *slog.Logger
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce sets the debounce duration
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger
func WithLogger(log *slog.Logger) Option {
	return func(w *Watcher) { w.log = log }
}

// New starts watching paths. The parent directories are watched so files
// replaced by editors keep being tracked.
func New(paths []string, opts ...Option) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		fs:       fs,
		files:    make(map[string]bool),
		debounce: DefaultDebounce,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With(logger.Scope("watcher"))

	dirs := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			fs.Close()
			return nil, fmt.Errorf("resolve %s: %w", path, err)
		}
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			if err := fs.Add(dir); err != nil {
				fs.Close()
				return nil, fmt.Errorf("watch %s: %w", dir, err)
			}
			dirs[dir] = true
		}
		w.files[abs] = true
		w.log.Debug("watching file", "path", abs)
	}
	return w, nil
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// Run calls onChange with the absolute path of each changed file until ctx is
// cancelled. Calls happen on the Run goroutine, one at a time.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	fired := make(chan string)
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !w.files[abs] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if t, exists := timers[abs]; exists {
				t.Stop()
			}
			timers[abs] = time.AfterFunc(w.debounce, func() {
				select {
				case fired <- abs:
				case <-ctx.Done():
				}
			})

		case path := <-fired:
			w.log.Info("file changed", "path", path)
			onChange(path)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", logger.Error(err))

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
