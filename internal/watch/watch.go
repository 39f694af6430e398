// Package watch provides the recursive file watcher behind `onramp run`.
// It batches rapid filesystem events and filters out noise (sqlite
// sidecar files, editor swap files, OS metadata) so the dev server only
// restarts on real source changes.
package watch

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/onramp-dev/onramp/pkg/logger"
)

// DefaultIgnorePatterns are substrings that disqualify a changed path
// from triggering a restart. Matching is substring-on-full-path, so a
// pattern like ".log" also skips files under a "logs.d" directory tree
// whose names contain it.
var DefaultIgnorePatterns = []string{
	".sqlite3-shm",
	".sqlite3-wal",
	".sqlite3-journal",
	".DS_Store",
	"Thumbs.db",
	".tmp",
	".log",
	".swp",
	".swo",
}

// debounceWindow is how long the watcher waits after the last event
// before emitting a batch. Editors often write several events per save.
const debounceWindow = 200 * time.Millisecond

// Watcher watches a directory tree and emits batches of changed paths.
type Watcher struct {
	fsw     *fsnotify.Watcher
	root    string
	ignore  []string
	changes chan []string
}

// New creates a Watcher over root and all its subdirectories. Patterns
// defaults to DefaultIgnorePatterns when nil.
func New(root string, patterns []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if patterns == nil {
		patterns = DefaultIgnorePatterns
	}

	w := &Watcher{
		fsw:     fsw,
		root:    root,
		ignore:  patterns,
		changes: make(chan []string, 1),
	}

	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Changes delivers batches of changed paths, already filtered.
func (w *Watcher) Changes() <-chan []string { return w.changes }

// Close releases the underlying watcher.
func (w *Watcher) Close() error { return w.fsw.Close() }

// Run pumps filesystem events until ctx is cancelled. New directories
// are added to the watch set as they appear.
func (w *Watcher) Run(ctx context.Context) {
	var pending []string
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				// A new directory needs its own watch before anything
				// inside it can be seen.
				if err := w.addTree(event.Name); err == nil {
					logger.Debug("watch: added", "dir", event.Name)
				}
			}
			if w.ignored(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			pending = append(pending, event.Name)
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
			} else {
				timer.Reset(debounceWindow)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch: error", "err", err)

		case <-fire:
			batch := dedupe(pending)
			pending = nil
			fire = nil
			select {
			case w.changes <- batch:
			case <-ctx.Done():
				return
			}
		}
	}
}

// addTree registers dir and every subdirectory with the watcher.
// Non-directories are ignored.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil //nolint:nilerr
		}
		return w.fsw.Add(path)
	})
}

// ignored reports whether any ignore pattern occurs anywhere in path.
func (w *Watcher) ignored(path string) bool {
	for _, pattern := range w.ignore {
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var out []string
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
