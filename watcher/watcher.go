package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// IgnoreChecker is used by the watcher to check if a path should be ignored.
type IgnoreChecker interface {
	ShouldIgnoreDir(absolutePath string) bool
	ShouldIgnore(absolutePath string) bool
}

// Watcher watches several search roots recursively and reports debounced
// ChangeSets. Roots may be added while it runs, e.g. when a component is enabled.
type Watcher struct {
	fsWatcher     *fsnotify.Watcher
	debouncer     *Debouncer
	ignoreChecker IgnoreChecker
	logger        *slog.Logger

	mu    sync.Mutex
	roots map[string]bool
	files map[string]bool // individually watched files outside any root
}

// NewWatcher creates a watcher over the given roots. Roots that do not
// exist yet are skipped with a warning and may be added later.
func NewWatcher(roots []string, ignoreChecker IgnoreChecker, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher:     fsWatcher,
		debouncer:     NewDebouncer(100 * time.Millisecond),
		ignoreChecker: ignoreChecker,
		logger:        logger,
		roots:         make(map[string]bool),
		files:         make(map[string]bool),
	}

	for _, root := range roots {
		if err := w.AddRoot(root); err != nil {
			logger.Warn("search root not watched", "root", root, "error", err)
		}
	}
	return w, nil
}

// AddRoot registers root and every non-ignored directory below it.
// Adding a root twice is a no-op.
func (w *Watcher) AddRoot(root string) error {
	root = filepath.Clean(root)

	w.mu.Lock()
	if w.roots[root] {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "watch", Path: root, Err: os.ErrInvalid}
	}

	w.addTree(root)

	w.mu.Lock()
	w.roots[root] = true
	w.mu.Unlock()
	w.logger.Debug("watching search root", "root", root)
	return nil
}

// WatchFile watches the directory holding a single control file such as
// the component manifest. Only events for that file are reported from it.
func (w *Watcher) WatchFile(path string) error {
	path = filepath.Clean(path)
	w.mu.Lock()
	w.files[path] = true
	w.mu.Unlock()
	return w.fsWatcher.Add(filepath.Dir(path))
}

// Roots returns the currently watched roots.
func (w *Watcher) Roots() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	roots := make([]string, 0, len(w.roots))
	for root := range w.roots {
		roots = append(roots, root)
	}
	return roots
}

func (w *Watcher) addTree(root string) {
	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip entries that can't be read
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.ignoreChecker.ShouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		if watchErr := w.fsWatcher.Add(path); watchErr != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", watchErr)
		}
		return nil
	})
}

// Events returns the channel that receives debounced change sets.
func (w *Watcher) Events() <-chan ChangeSet {
	return w.debouncer.Output()
}

// Start begins listening for file system events. Call this in a goroutine.
// It runs until the watcher is closed.
func (w *Watcher) Start() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	// New directories are watched, not reported; files already inside
	// them when the watch starts are reported as created.
	if event.Has(fsnotify.Create) {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if w.underRoot(path) && !w.ignoreChecker.ShouldIgnoreDir(path) {
				w.addTree(path)
				w.reportExisting(path)
			}
			return
		}
	}

	if !w.underRoot(path) && !w.isWatchedFile(path) {
		return
	}
	if w.ignoreChecker.ShouldIgnore(path) {
		return
	}

	var op EventOp
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpWrite
	case event.Has(fsnotify.Remove):
		op = OpRemove
	case event.Has(fsnotify.Rename):
		op = OpRename
	default:
		return
	}

	w.debouncer.Add(path, op)
}

// reportExisting emits creations for files that landed in a new directory
// before its watch was registered (e.g. a copied package folder).
func (w *Watcher) reportExisting(dir string) {
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && w.ignoreChecker.ShouldIgnoreDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !w.ignoreChecker.ShouldIgnore(path) {
			w.debouncer.Add(path, OpCreate)
		}
		return nil
	})
}

func (w *Watcher) underRoot(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for root := range w.roots {
		if path == root || len(path) > len(root) && path[:len(root)] == root && os.IsPathSeparator(path[len(root)]) {
			return true
		}
	}
	return false
}

func (w *Watcher) isWatchedFile(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[path]
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}
