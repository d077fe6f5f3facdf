// Package watcher reruns the build when run snapshots or indie drops change.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"newsdesk/internal/logger"
)

// BuildFunc performs one full build.
type BuildFunc func(ctx context.Context) error

// watchedExts are the input formats that trigger a rebuild.
var watchedExts = map[string]bool{".json": true, ".xml": true, ".rss": true, ".atom": true}

const maxTick = 100 * time.Millisecond

// Stats tracks watcher activity.
type Stats struct {
	Events        int
	Builds        int
	Failures      int
	Errors        int
	LastEventPath string
	LastBuild     time.Time
}

// Watcher watches input directories and calls a BuildFunc once changes have
// settled for the debounce window. Builds run one at a time on the watcher
// goroutine.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	dirs     []string
	build    BuildFunc
	log      *logger.Logger
	debounce time.Duration
	pending  time.Time
	dirty    bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	stats    Stats
}

// New creates a watcher over dirs.
func New(dirs []string, debounce time.Duration, build BuildFunc, log *logger.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		watcher:  fw,
		dirs:     dirs,
		build:    build,
		log:      log,
		debounce: debounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start adds the directories, creating missing ones, and begins the event
// loop. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	for _, dir := range w.dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}

		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}

		w.log.Info("watching directory", "dir", dir)
	}

	w.running = true

	go w.run(ctx)

	return nil
}

// Stop ends the event loop, waits for an in-flight build and releases the
// underlying watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}

	if err := w.watcher.Close(); err != nil {
		w.log.Error("error closing file watcher", "err", err)
	}
}

// Done is closed when the event loop exits.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

// Stats returns a copy of the activity counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.stats
}

func (w *Watcher) tick() time.Duration {
	switch {
	case w.debounce <= 0:
		return 10 * time.Millisecond
	case w.debounce < maxTick:
		return w.debounce
	default:
		return maxTick
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.tick())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("watcher context cancelled")
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			w.log.Error("file watcher error", "err", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.maybeBuild(ctx)
		}
	}
}

// handleEvent marks the inputs dirty. Chmod-only events and files that are not
// inputs, such as editor or atomic-write temporaries, are ignored.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || !watchedExts[strings.ToLower(filepath.Ext(base))] {
		return
	}

	w.log.Debug("input changed", "file", event.Name, "op", event.Op.String())

	w.mu.Lock()
	w.dirty = true
	w.pending = time.Now()
	w.stats.Events++
	w.stats.LastEventPath = event.Name
	w.mu.Unlock()
}

func (w *Watcher) maybeBuild(ctx context.Context) {
	w.mu.Lock()
	ready := w.dirty && time.Since(w.pending) >= w.debounce
	if ready {
		w.dirty = false
	}
	w.mu.Unlock()

	if !ready {
		return
	}

	err := w.build(ctx)

	w.mu.Lock()
	w.stats.Builds++
	w.stats.LastBuild = time.Now()
	if err != nil {
		w.stats.Failures++
	}
	w.mu.Unlock()

	if err != nil {
		w.log.Error("rebuild failed", "err", err)
		return
	}

	w.log.Info("rebuilt after input change")
}
