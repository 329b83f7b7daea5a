package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/lexandro/modresolve-mcp/component"
	"github.com/lexandro/modresolve-mcp/ignore"
	"github.com/lexandro/modresolve-mcp/resolvecache"
	"github.com/lexandro/modresolve-mcp/resolver"
	"github.com/lexandro/modresolve-mcp/tools"
	"github.com/lexandro/modresolve-mcp/watcher"
)

// host wires the resolver's collaborators together and reacts to
// component toggles and file changes.
type host struct {
	cfg      resolver.Config
	registry *component.Registry
	cache    *resolvecache.Cache
	catalog  *catalog
	matcher  *ignore.Matcher
	watcher  *watcher.Watcher // nil when live updates are unavailable
	logger   *slog.Logger

	mu sync.Mutex // serialises root changes and rebuilds
}

// componentsChanged brings the matcher, the catalog, the watcher and the
// cache in line with the registry after a toggle or a manifest reload.
func (h *host) componentsChanged(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.matcher.SetComponentDirs(componentBaseDirs(h.registry))
	added := h.catalog.setRoots(catalogRoots(h.cfg, h.registry))
	if h.watcher != nil {
		for _, root := range added {
			if err := h.watcher.AddRoot(root.Dir); err != nil {
				h.logger.Warn("component root not watched", "namespace", root.Namespace, "dir", root.Dir, "error", err)
			}
		}
	}
	h.syncWatchedDirs()
	count, size := h.catalog.performIndexing(ctx, added)
	h.cache.Purge()

	h.logger.Info("components updated",
		"enabled", len(h.registry.Enabled()),
		"generation", h.registry.Generation(),
		"newRoots", len(added),
		"files", count,
		"totalSize", size,
	)
}

// syncWatchedDirs tells the cache which directories report changes, so
// that it only keeps results those reports can invalidate.
func (h *host) syncWatchedDirs() {
	if h.watcher == nil {
		return
	}
	h.cache.SetWatchedDirs(h.watcher.Roots())
}

// reindex rebuilds the catalog from scratch.
func (h *host) reindex(ctx context.Context) (tools.ReindexResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	start := time.Now()
	h.matcher.Reload()
	if err := h.catalog.clear(); err != nil {
		return tools.ReindexResult{}, err
	}
	roots := h.catalog.Roots()
	count, size := h.catalog.performIndexing(ctx, roots)
	h.cache.Purge()
	if err := ctx.Err(); err != nil {
		return tools.ReindexResult{}, fmt.Errorf("reindex interrupted: %w", err)
	}
	return tools.ReindexResult{Modules: count, TotalSize: size, Roots: len(roots), Elapsed: time.Since(start)}, nil
}

// handleWatcherEvents applies debounced change sets until ctx is done.
func (h *host) handleWatcherEvents(ctx context.Context, fileWatcher *watcher.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case changes := <-fileWatcher.Events():
			h.applyChanges(ctx, changes)
		}
	}
}

// applyChanges handles one change set. Control files come first so that
// the later steps run against the current rules and components.
func (h *host) applyChanges(ctx context.Context, changes watcher.ChangeSet) {
	if changes.Empty() {
		return
	}
	all := slices.Concat(changes.Added, changes.Modified, changes.Removed)

	ignoreChanged, manifestChanged := false, false
	for _, path := range all {
		switch {
		case h.registry.ManifestPath() != "" && filepath.Clean(path) == filepath.Clean(h.registry.ManifestPath()):
			manifestChanged = true
		case h.matcher.IsControlFile(path):
			ignoreChanged = true
		}
	}

	if manifestChanged {
		if err := h.registry.Reload(); err != nil {
			h.logger.Warn("component manifest not reloaded, keeping previous components", "error", err)
		} else {
			h.componentsChanged(ctx)
		}
	}
	if ignoreChanged {
		h.logger.Info("ignore rules changed, rebuilding catalog")
		if _, err := h.reindex(ctx); err != nil {
			h.logger.Warn("rebuild after ignore change failed", "error", err)
		}
	}

	if changes.Structural() {
		if dropped := h.cache.Invalidate(changes.Added, changes.Removed); dropped > 0 {
			h.logger.Debug("resolution cache invalidated", "dropped", dropped)
		}
	}

	for _, path := range changes.Removed {
		if keys := h.catalog.removePath(path); len(keys) > 0 {
			h.logger.Debug("removed from catalog", "path", path, "modules", len(keys))
		}
	}
	for _, path := range slices.Concat(changes.Added, changes.Modified) {
		if h.matcher.IsControlFile(path) {
			continue
		}
		if h.catalog.updatePath(path) {
			h.logger.Debug("updated catalog", "path", path)
		}
	}

	h.reloadDependents(changes.Modified)
}

// reloadDependents re-reads modified files that cached resolutions point
// at, the way the runtime re-fetches a module's source on hot reload.
func (h *host) reloadDependents(modified []string) {
	for _, path := range modified {
		dependents := h.cache.Dependents(path)
		if len(dependents) == 0 {
			continue
		}
		content, err := h.cache.Resolver().Load(path)
		if err != nil {
			h.logger.Warn("hot reload failed",
				"path", path,
				"dependents", len(dependents),
				"unreadable", errors.Is(err, resolver.ErrUnreadable),
				"error", err,
			)
			continue
		}
		h.logger.Info("module reloaded", "path", path, "dependents", len(dependents), "bytes", len(content))
	}
}
