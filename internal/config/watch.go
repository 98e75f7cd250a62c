package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the controls section of the config file at path into store
// whenever the file is written, until ctx is done. A file that fails to
// parse or validate is rejected as a whole and the previous controls stay
// in place.
//
// The parent directory is watched rather than the file, so editors that
// save by renaming a temporary file are picked up too.
func Watch(ctx context.Context, path string, store *Store, log *zap.Logger) error {
	path = filepath.Clean(path)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("could not watch %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			reload(path, store, log)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("config watcher error", zap.Error(err))
		}
	}
}

func reload(path string, store *Store, log *zap.Logger) {
	cfg, err := Load(path)
	if err != nil {
		log.Error("config reload rejected", zap.String("path", path), zap.Error(err))
		return
	}
	if err := store.SetControls(cfg.Controls); err != nil {
		log.Error("config reload rejected", zap.String("path", path), zap.Error(err))
		return
	}
	log.Info("controls reloaded", zap.String("path", path), zap.Any("controls", cfg.Controls))
}
