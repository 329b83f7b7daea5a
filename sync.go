package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lexandro/modresolve-mcp/index"
)

// SyncResult holds the outcome of a single sync verification run.
type SyncResult struct {
	MissingFiles  int // files on disk but not in the catalog
	StaleFiles    int // files in the catalog but not on disk
	ModifiedFiles int // files whose ModTime differs
	Added         []string
	Removed       []string
	Duration      time.Duration
}

// runPeriodicSync verifies the catalog against disk at the given interval
// until ctx is done. invalidate receives the paths that appeared or
// vanished without the watcher noticing.
func runPeriodicSync(
	ctx context.Context,
	interval time.Duration,
	c *catalog,
	invalidate func(added, removed []string),
	logger *slog.Logger,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("periodic sync started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			logger.Info("periodic sync stopped")
			return
		case <-ticker.C:
			result := performSyncVerification(ctx, c, logger)
			if len(result.Added) > 0 || len(result.Removed) > 0 {
				invalidate(result.Added, result.Removed)
			}
			if result.MissingFiles+result.StaleFiles+result.ModifiedFiles > 0 {
				logger.Info("sync verification complete",
					"missing", result.MissingFiles,
					"stale", result.StaleFiles,
					"modified", result.ModifiedFiles,
					"duration", result.Duration,
				)
			} else {
				logger.Debug("sync verification complete, catalog is in sync", "duration", result.Duration)
			}
		}
	}
}

type diskEntry struct {
	root index.Root
	rel  string
	info os.FileInfo
}

// performSyncVerification compares every search root on disk with the
// catalog and repairs the differences.
func performSyncVerification(ctx context.Context, c *catalog, logger *slog.Logger) SyncResult {
	start := time.Now()
	var result SyncResult

	onDisk := make(map[string]diskEntry) // key: absolute path
	for _, root := range c.Roots() {
		c.walkRoot(ctx, root, func(path, rel string, info os.FileInfo) {
			onDisk[filepath.Clean(path)] = diskEntry{root: root, rel: rel, info: info}
		})
	}
	if ctx.Err() != nil {
		// A partial walk would report live files as stale.
		result.Duration = time.Since(start)
		return result
	}

	catalogued := make(map[string]*index.ModuleFile)
	for _, f := range c.modules.All() {
		catalogued[filepath.Clean(f.AbsolutePath)] = f
	}

	for path, entry := range onDisk {
		indexed, exists := catalogued[path]
		if exists && entry.info.ModTime().Equal(indexed.ModTime) {
			continue
		}
		if err := c.indexFile(entry.root, path, entry.rel, entry.info); err != nil {
			logger.Debug("sync: skipped file", "path", path, "error", err)
			continue
		}
		if exists {
			logger.Info("sync: re-indexed modified file", "path", path)
			result.ModifiedFiles++
		} else {
			logger.Info("sync: indexed missing file", "path", path)
			result.MissingFiles++
			result.Added = append(result.Added, path)
		}
	}

	for path := range catalogued {
		if _, exists := onDisk[path]; exists {
			continue
		}
		c.removePath(path)
		logger.Info("sync: removed stale file", "path", path)
		result.StaleFiles++
		result.Removed = append(result.Removed, path)
	}

	result.Duration = time.Since(start)
	return result
}
