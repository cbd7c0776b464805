package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a Registry when species files change. Bursts of events
// (editors write, rename and chmod in one save) collapse into one reload.
type Watcher struct {
	dir      string
	registry *Registry
	debounce time.Duration
	onReload func(names []string)

	watcher *fsnotify.Watcher
}

// NewWatcher watches dir. onReload may be nil.
func NewWatcher(dir string, registry *Registry, debounce time.Duration, onReload func(names []string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating species watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watching species dir %s: %w", dir, err)
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	return &Watcher{
		dir:      dir,
		registry: registry,
		debounce: debounce,
		onReload: onReload,
		watcher:  fw,
	}, nil
}

// Run processes events until ctx is canceled. Closes the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 || !isYAML(event.Name) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("species watcher error", "dir", w.dir, "error", err)

		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	if err := w.registry.LoadDir(w.dir); err != nil {
		slog.Error("species reload failed, keeping previous set", "dir", w.dir, "error", err)
		return
	}
	names := w.registry.Names()
	slog.Info("species reloaded", "dir", w.dir, "species", names, "version", w.registry.Version())
	if w.onReload != nil {
		w.onReload(names)
	}
}
