package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/lexandro/modresolve-mcp/component"
	"github.com/lexandro/modresolve-mcp/ignore"
	"github.com/lexandro/modresolve-mcp/index"
	"github.com/lexandro/modresolve-mcp/language"
	"github.com/lexandro/modresolve-mcp/resolver"
)

// catalog ties the module index and the source index to the set of
// search roots they cover.
type catalog struct {
	modules *index.ModuleIndex
	sources *index.SourceIndex
	matcher *ignore.Matcher
	logger  *slog.Logger

	mu    sync.RWMutex
	roots []index.Root
}

func newCatalog(modules *index.ModuleIndex, sources *index.SourceIndex, matcher *ignore.Matcher, logger *slog.Logger) *catalog {
	return &catalog{modules: modules, sources: sources, matcher: matcher, logger: logger}
}

// catalogRoots lists the trees the catalog covers: the project script
// root, the dependency root and the script directory of every enabled
// project component. Engine and enterprise components are never searched,
// so they are not catalogued either.
func catalogRoots(cfg resolver.Config, registry *component.Registry) []index.Root {
	roots := []index.Root{
		{Namespace: index.NamespaceScripts, Dir: osPath(cfg.ScriptRoot)},
		{Namespace: index.NamespaceVendor, Dir: osPath(cfg.DependencyRoot)},
	}
	for _, c := range registry.Enabled() {
		if c.Type != resolver.ComponentProject {
			continue
		}
		roots = append(roots, index.Root{
			Namespace: index.ComponentNamespace(c.Name),
			Dir:       osPath(c.ContentDir + "/" + cfg.ScriptSubroot),
			Component: c.Name,
		})
	}
	return roots
}

// componentBaseDirs returns the base directories of all registered
// components, whose generated folders the matcher excludes.
func componentBaseDirs(registry *component.Registry) []string {
	descriptors := registry.All()
	dirs := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		dirs = append(dirs, d.BaseDir())
	}
	return dirs
}

func osPath(slashPath string) string {
	return filepath.Clean(filepath.FromSlash(slashPath))
}

// setRoots replaces the covered roots and returns the ones that are new.
// Catalog entries of roots that disappeared are dropped.
func (c *catalog) setRoots(roots []index.Root) []index.Root {
	c.mu.Lock()
	previous := c.roots
	c.roots = roots
	c.mu.Unlock()

	var added []index.Root
	for _, root := range roots {
		if !slices.Contains(previous, root) {
			added = append(added, root)
		}
	}

	for _, old := range previous {
		if slices.Contains(roots, old) {
			continue
		}
		for _, key := range c.modules.RemoveUnder(old.Dir) {
			c.sources.Remove(key)
		}
		c.logger.Info("search root dropped from catalog", "namespace", old.Namespace, "dir", old.Dir)
	}
	return added
}

// Roots returns a copy of the covered roots.
func (c *catalog) Roots() []index.Root {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]index.Root(nil), c.roots...)
}

// rootFor returns the deepest covered root containing path, and path
// relative to it.
func (c *catalog) rootFor(path string) (index.Root, string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var best index.Root
	bestRel := ""
	found := false
	for _, root := range c.roots {
		rel, err := filepath.Rel(root.Dir, path)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if !found || len(root.Dir) > len(best.Dir) {
			best, bestRel, found = root, rel, true
		}
	}
	return best, bestRel, found
}

// clear empties both indexes.
func (c *catalog) clear() error {
	c.modules.Clear()
	if err := c.sources.Clear(); err != nil {
		return fmt.Errorf("clearing source index: %w", err)
	}
	return nil
}

// performIndexing walks the given roots and catalogues every eligible
// file. It returns the number of files indexed and the bytes processed.
func (c *catalog) performIndexing(ctx context.Context, roots []index.Root) (int, int64) {
	var indexedCount int
	var totalSize int64
	var mu sync.Mutex

	const workerCount = 8
	type indexJob struct {
		root index.Root
		path string
		rel  string
		info os.FileInfo
	}
	jobs := make(chan indexJob, 100)

	var wg sync.WaitGroup
	for range workerCount {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if err := c.indexFile(job.root, job.path, job.rel, job.info); err != nil {
					c.logger.Debug("skipped file", "path", job.path, "error", err)
					continue
				}
				mu.Lock()
				indexedCount++
				totalSize += job.info.Size()
				mu.Unlock()
			}
		}()
	}

	for _, root := range roots {
		c.walkRoot(ctx, root, func(path, rel string, info os.FileInfo) {
			jobs <- indexJob{root: root, path: path, rel: rel, info: info}
		})
	}

	close(jobs)
	wg.Wait()
	return indexedCount, totalSize
}

// walkRoot calls visit for every eligible file below root. A missing root
// is skipped; components may be enabled before their scripts exist.
func (c *catalog) walkRoot(ctx context.Context, root index.Root, visit func(path, rel string, info os.FileInfo)) {
	if _, err := os.Stat(root.Dir); err != nil {
		c.logger.Debug("search root not present", "namespace", root.Namespace, "dir", root.Dir)
		return
	}

	filepath.WalkDir(root.Dir, func(path string, d os.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root.Dir && c.matcher.ShouldIgnoreDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if c.matcher.ShouldIgnore(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil || c.matcher.IsFileTooLarge(info.Size()) {
			return nil
		}
		rel, err := filepath.Rel(root.Dir, path)
		if err != nil {
			return nil
		}
		visit(path, rel, info)
		return nil
	})
}

// indexFile reads one file and adds it to both indexes.
func (c *catalog) indexFile(root index.Root, absolutePath, relativePath string, info os.FileInfo) error {
	content, err := readFileWithRetry(absolutePath)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	if language.IsBinaryContent(content) {
		return fmt.Errorf("binary file")
	}

	file := &index.ModuleFile{
		AbsolutePath: absolutePath,
		Key:          index.MakeKey(root.Namespace, filepath.ToSlash(relativePath)),
		Namespace:    root.Namespace,
		Component:    root.Component,
		Kind:         language.RefineKind(language.DetectKind(absolutePath), content),
		SizeBytes:    info.Size(),
		ModTime:      info.ModTime(),
		LineCount:    strings.Count(string(content), "\n") + 1,
	}
	c.modules.Add(file)

	if err := c.sources.Index(file, string(content)); err != nil {
		return fmt.Errorf("indexing source: %w", err)
	}
	return nil
}

// updatePath re-catalogues a single changed file if it lies under a root.
func (c *catalog) updatePath(path string) bool {
	root, rel, ok := c.rootFor(path)
	if !ok || c.matcher.ShouldIgnore(path) {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || c.matcher.IsFileTooLarge(info.Size()) {
		return false
	}
	if err := c.indexFile(root, path, rel, info); err != nil {
		c.logger.Debug("skipped file update", "path", path, "error", err)
		return false
	}
	return true
}

// removePath drops a file, or every file beneath a removed directory.
func (c *catalog) removePath(path string) []string {
	keys := c.modules.RemoveUnder(path)
	for _, key := range keys {
		if err := c.sources.Remove(key); err != nil {
			c.logger.Debug("failed to drop source", "key", key, "error", err)
		}
	}
	return keys
}

// readFileWithRetry attempts to read a file, retrying once after a short delay
// if the file is locked (common on Windows when editors are saving).
func readFileWithRetry(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		time.Sleep(50 * time.Millisecond)
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}
