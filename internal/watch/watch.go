// Package watch observes build-output directories and reports changes so
// interactive mode can trigger incremental rebuilds.
package watch

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"nextbuilder/shared"
)

var wlog = shared.PackageLogger("watch", "👀 WATCH")

// Watch observes the given directories (recursively) until ctx is cancelled,
// calling onChange with the path of every created, written, or removed file.
// Directories that do not exist yet are skipped.
func Watch(ctx context.Context, dirs []string, onChange func(path string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, dir := range dirs {
		if err := addRecursive(w, dir); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New subdirectories must be picked up as they appear.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addRecursive(w, event.Name); err != nil {
						wlog.Warn("could not watch %s: %v", event.Name, err)
					}
				}
			}
			onChange(event.Name)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			wlog.Warn("watch error: %v", err)
		}
	}
}

func addRecursive(w *fsnotify.Watcher, dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		wlog.Debug("skipping missing watch path %s", dir)
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.Add(dir)
	}
	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}
