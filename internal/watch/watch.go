// Package watch reports external changes to canvas files in the vault.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/tscanvas/internal/storage"
)

// Event kinds passed to the callback.
const (
	Changed = "changed"
	Removed = "removed"
)

// Callback receives a settled change for a vault-relative canvas path.
type Callback func(kind, path string)

// DefaultSettle is how long a path must stay quiet before it is reported.
const DefaultSettle = 150 * time.Millisecond

// Watch watches root and its subdirectories until ctx is cancelled.
//
// Bursts of events for the same path (editors often write, chmod and rename
// in quick succession) are collapsed: the last event wins and is reported once
// the path has been quiet for settle. A rename reports the old path as
// removed; the new name arrives as its own create event.
func Watch(ctx context.Context, root string, settle time.Duration, logger *slog.Logger, cb Callback) error {
	if settle <= 0 {
		settle = DefaultSettle
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirs(w, root); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", root))

	pending := make(map[string]string)
	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func(rel, kind string) {
		pending[rel] = kind
		if timer == nil {
			timer = time.NewTimer(settle)
			fire = timer.C
			return
		}
		timer.Reset(settle)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			for _, p := range paths {
				logger.Debug("watcher: change", slog.String("path", p), slog.String("kind", pending[p]))
				cb(pending[p], p)
			}
			clear(pending)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirs(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					reportDir(root, ev.Name, schedule)
					continue
				}
			}
			if filepath.Ext(ev.Name) != storage.Ext {
				continue
			}
			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				schedule(rel, Changed)
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				schedule(rel, Removed)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reportDir schedules every canvas file already present in a new directory.
func reportDir(root, dir string, schedule func(rel, kind string)) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != storage.Ext {
			return nil
		}
		if rel, relErr := filepath.Rel(root, p); relErr == nil {
			schedule(filepath.ToSlash(rel), Changed)
		}
		return nil
	})
}

func addDirs(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}
