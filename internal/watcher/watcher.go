// Package watcher reloads the inventory configuration when its file changes.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"netinventory/internal/config"
)

// ApplyFunc receives every successfully parsed configuration
type ApplyFunc func(ctx context.Context, cfg *config.Config) error

// Watcher watches the configuration file and applies reloads
type Watcher struct {
	path     string
	apply    ApplyFunc
	debounce time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	reloads int
}

// New creates a config watcher for path
func New(path string, apply ApplyFunc, log zerolog.Logger) *Watcher {
	return &Watcher{
		path:     path,
		apply:    apply,
		debounce: 500 * time.Millisecond,
		log:      log.With().Str("component", "watcher").Str("path", path).Logger(),
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Reloads returns the number of configurations applied so far
func (w *Watcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

// Watch blocks until ctx is cancelled, reloading after each burst of writes.
// A file that fails to parse or validate is logged and the previous
// configuration stays in effect.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	// Watch the directory so editors that replace the file are still seen
	dir := filepath.Dir(w.path)
	filename := filepath.Base(w.path)
	if err := fw.Add(dir); err != nil {
		return err
	}

	w.log.Info().Msg("watching configuration for changes")

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() { w.Reload(ctx) })

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("watcher error")

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Reload reads the file once and applies it
func (w *Watcher) Reload(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	cfg, _, err := config.LoadFromPath(w.path)
	if err != nil {
		w.log.Error().Err(err).Msg("configuration reload rejected")
		return err
	}
	if err := w.apply(ctx, cfg); err != nil {
		w.log.Error().Err(err).Msg("failed to apply configuration")
		return err
	}

	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()

	w.log.Info().Msg("configuration reloaded")
	return nil
}
