package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// watchedFile is a file source whose path is registered for change
// notification when added to a Builder.
type watchedFile struct {
	path string
	src  Source
}

func (w *watchedFile) Apply(v *viper.Viper, fs afero.Fs) error {
	return w.src.Apply(v, fs)
}

// WatchFile is OptionalFile plus reload-on-change: a Config built from a
// builder containing this source reloads all layers when the file changes,
// once Watch has been started.
func WatchFile(path string) Source {
	return &watchedFile{path: path, src: fileSource(path, true)}
}

// Watch starts a filesystem watcher over every WatchFile source and reloads
// the snapshot on change, until ctx is cancelled. It is a no-op when the
// builder registered no watched files. Watching requires the OS filesystem;
// in-memory test filesystems are not watchable.
func (c *Config) Watch(ctx context.Context) error {
	if len(c.watchPaths) == 0 {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting config watcher: %w", err)
	}

	watched := make(map[string]bool, len(c.watchPaths))
	for _, path := range c.watchPaths {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		watched[abs] = true
		// Watch the directory rather than the file so atomic
		// rename-into-place updates are seen.
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("watching %q: %w", abs, err)
		}
	}

	go func() {
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				abs, err := filepath.Abs(event.Name)
				if err != nil {
					abs = event.Name
				}
				if !watched[abs] {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				_ = c.Reload()
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}
