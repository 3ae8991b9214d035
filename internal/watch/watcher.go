// Package watch observes an application source tree and coalesces change
// bursts into single rebuild triggers.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/seamui/seam/internal/logger"
)

// DefaultDebounce is the quiet period after the last event before the
// change callback fires. Editors save in bursts; one rebuild per burst.
const DefaultDebounce = 200 * time.Millisecond

// watchedExtensions are the source file types a change of which triggers a
// rebuild.
var watchedExtensions = map[string]bool{
	".js":  true,
	".jsx": true,
	".mjs": true,
	".css": true,
}

// Watcher drives the rebuild callback for a source tree.
type Watcher struct {
	root     string
	debounce time.Duration
	onChange func(paths []string)
	log      *logger.Logger
	fsw      *fsnotify.Watcher
}

// New creates a Watcher over root. onChange receives the sorted set of
// changed paths, relative to root, once per debounced burst.
func New(root string, onChange func(paths []string), log *logger.Logger) (*Watcher, error) {
	if log == nil {
		log = logger.NewDefault()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	w := &Watcher{
		root:     root,
		debounce: DefaultDebounce,
		onChange: onChange,
		log:      log,
		fsw:      fsw,
	}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// SetDebounce overrides the debounce interval. Used by tests.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// addTree registers root and every subdirectory with the notifier.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.fsw.Add(path); err != nil {
				return fmt.Errorf("watch %q: %w", path, err)
			}
		}
		return nil
	})
}

// Run dispatches change callbacks until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	var timer *time.Timer
	var timerC <-chan time.Time
	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			rel, err := filepath.Rel(w.root, event.Name)
			if err != nil {
				rel = event.Name
			}
			pending[filepath.ToSlash(rel)] = true

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = make(map[string]bool)
			timer = nil
			timerC = nil

			w.log.Debugw("Source change detected", "paths", paths)
			w.onChange(paths)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("Watcher error", "error", err)
		}
	}
}

// relevant filters events down to source file changes, and picks up newly
// created directories along the way.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.log.Warnw("Failed to watch new directory", "path", event.Name, "error", err)
			}
			return false
		}
	}
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	return watchedExtensions[strings.ToLower(filepath.Ext(event.Name))]
}
