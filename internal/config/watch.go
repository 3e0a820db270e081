package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultReloadDebounce coalesces bursts of write events from editors.
const DefaultReloadDebounce = 250 * time.Millisecond

// WatchEndpoints reloads the endpoints file at path whenever it changes and
// passes each successfully parsed version to onReload. Invalid versions are
// logged and skipped so the last good registry stays in effect. It blocks
// until ctx is done.
//
// The parent directory is watched rather than the file itself so that
// editors which replace the file by rename are still observed.
func WatchEndpoints(ctx context.Context, path string, debounce time.Duration, onReload func(*Endpoints)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving endpoints path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() {
		_ = w.Close()
	}()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	reload := func() {
		eps, err := LoadEndpoints(abs)
		if err != nil {
			slog.Warn("endpoints reload failed, keeping previous configuration",
				slog.String("path", abs),
				slog.String("error", err.Error()),
			)
			return
		}
		slog.Info("endpoints reloaded",
			slog.String("path", abs),
			slog.Int("endpoints", eps.Registry.Len()),
		)
		onReload(eps)
	}
	db := &debouncer{interval: debounce, fire: reload}
	defer db.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				db.trigger()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Debug("fsnotify error", slog.String("err", err.Error()))
		}
	}
}

// debouncer runs fire once a burst of triggers has been quiet for interval.
// After stop returns, fire is not running and will not run again.
type debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	interval time.Duration
	fire     func()
	stopped  bool
	running  sync.WaitGroup
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.interval <= 0 {
		go d.run()
		return
	}
	if d.timer == nil {
		d.timer = time.AfterFunc(d.interval, d.run)
		return
	}
	d.timer.Reset(d.interval)
}

func (d *debouncer) run() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	d.fire()
}

func (d *debouncer) stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()

	d.running.Wait()
}
