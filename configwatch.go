package chime

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/phanxgames/chime/internal/logx"
)

// ConfigWatcher reloads a TOML settings file whenever it changes on disk.
// The directory is watched rather than the file so that editors which
// replace the file on save are followed.
type ConfigWatcher struct {
	path    string
	watcher *fsnotify.Watcher
}

// WatchConfig starts watching path. Changes made after it returns are
// reported by Run.
func WatchConfig(path string) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("chime: watch config: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("chime: watch config: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("chime: watch config: %w", err)
	}
	return &ConfigWatcher{path: abs, watcher: w}, nil
}

// Run calls fn with the reparsed settings, or the parse error, after every
// write to the file. It blocks until ctx is done or the watcher is closed,
// and closes the watcher before returning. fn runs on the calling
// goroutine; hand the result to the frame loop rather than touching the
// scene from it.
func (cw *ConfigWatcher) Run(ctx context.Context, fn func(Config, error)) error {
	defer cw.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-cw.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != cw.path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fn(LoadConfig(cw.path))
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return nil
			}
			logx.Get().Warn("chime: config watcher error", "path", cw.path, "err", err)
		}
	}
}

// Close stops watching. A running Run returns.
func (cw *ConfigWatcher) Close() error {
	return cw.watcher.Close()
}
