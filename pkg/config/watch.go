package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Store holds the current configuration and swaps it atomically when the
// config file changes. Providers are constructed per request from whatever
// Current returns, so a reload takes effect on the next request with no
// coordination.
type Store struct {
	path    string
	current atomic.Pointer[Config]
	logger  *slog.Logger
}

// NewStore loads the configuration from path and returns a store around it.
func NewStore(path string) (*Store, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	s := &Store{
		path:   path,
		logger: slog.Default().With("component", "config"),
	}
	s.current.Store(cfg)
	return s, nil
}

// Current returns the active configuration. The returned value must be
// treated as read-only.
func (s *Store) Current() *Config {
	return s.current.Load()
}

// Watch blocks watching the config file for changes until the context is
// cancelled. Each successful reload swaps the store's configuration; a
// reload that fails to parse or validate is logged and the previous
// configuration stays active. Editors replace files rather than write in
// place, so the parent directory is watched and events are debounced.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	s.logger.Info("watching configuration file", "path", s.path)

	const debounce = 200 * time.Millisecond
	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerCh = timer.C
			} else {
				timer.Reset(debounce)
			}

		case <-timerCh:
			timer = nil
			timerCh = nil
			s.reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("config watcher error", "error", err)
		}
	}
}

// reload re-reads the config file and swaps it in if it is valid.
func (s *Store) reload() {
	cfg, err := Load(s.path)
	if err != nil {
		s.logger.Error("config reload failed, keeping previous configuration",
			"path", s.path,
			"error", err,
		)
		return
	}
	s.current.Store(cfg)
	s.logger.Info("configuration reloaded", "path", s.path)
}
