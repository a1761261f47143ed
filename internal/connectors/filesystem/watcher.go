// Package filesystem watches a directory of supplier profile documents.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/tradematch/internal/logger"
)

// ChangeType classifies a file change.
type ChangeType string

// Change types reported by the watcher.
const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// Change is a single file event.
type Change struct {
	Type ChangeType
	Path string
}

// Watcher reports changes to profile documents under a root directory.
type Watcher struct {
	rootPath string
	accept   func(path string) bool

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// New creates a watcher for rootPath. accept filters files by path; nil accepts all.
func New(rootPath string, accept func(path string) bool) *Watcher {
	if accept == nil {
		accept = func(string) bool { return true }
	}
	return &Watcher{rootPath: rootPath, accept: accept}
}

// Validate checks that the root exists and is a directory.
func (w *Watcher) Validate() error {
	info, err := os.Stat(w.rootPath)
	if err != nil {
		return fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path %s is not a directory", w.rootPath)
	}
	return nil
}

// Scan returns every accepted, non-hidden file under the root in lexical order.
func (w *Watcher) Scan(ctx context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(w.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if path != w.rootPath && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && w.accept(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", w.rootPath, err)
	}
	return files, nil
}

// Watch starts watching the root and its subdirectories.
// The channel is closed when ctx is cancelled or Close is called.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	err = filepath.WalkDir(w.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.rootPath && isHidden(path) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", w.rootPath, err)
	}

	w.mu.Lock()
	w.watcher = fsw
	w.mu.Unlock()

	changes := make(chan Change)
	go func() {
		defer close(changes)
		defer fsw.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				// New subdirectories are watched as they appear.
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !isHidden(event.Name) {
						if err := fsw.Add(event.Name); err != nil {
							logger.Warn("watch: cannot add %s: %v", event.Name, err)
						}
						continue
					}
				}
				change, ok := w.handleFsEvent(event)
				if !ok {
					continue
				}
				select {
				case changes <- change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				logger.Warn("watch: %v", err)
			}
		}
	}()

	return changes, nil
}

// Close stops an active watch.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	w.watcher = nil
	return err
}

// handleFsEvent maps an fsnotify event to a change, skipping directories,
// hidden files, unaccepted files and chmod-only events.
func (w *Watcher) handleFsEvent(event fsnotify.Event) (Change, bool) {
	if isHidden(event.Name) || !w.accept(event.Name) {
		return Change{}, false
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return Change{Type: ChangeDeleted, Path: event.Name}, true
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return Change{}, false
		}
		t := ChangeUpdated
		if event.Has(fsnotify.Create) {
			t = ChangeCreated
		}
		return Change{Type: t, Path: event.Name}, true
	default:
		return Change{}, false
	}
}

// isHidden reports whether the base name starts with a dot.
func isHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}
