// Package resolvecache memoizes module resolution in front of a resolver.Resolver.
//
// The cache is a wrapping layer with its own invalidation policy, fed by
// file-change notifications. The resolver itself stays cache-free.
package resolvecache

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lexandro/modresolve-mcp/resolver"
)

// ComponentSource supplies the current enabled components and a
// generation number that changes whenever that list does.
type ComponentSource interface {
	Enabled() []resolver.Component
	Generation() uint64
}

// Key identifies one cached resolution.
type Key struct {
	Generation   uint64
	RequiringDir string
	Specifier    string
}

type entry struct {
	module resolver.ResolvedModule
	found  bool
}

// Stats reports cache effectiveness.
type Stats struct {
	Entries int
	Hits    uint64
	Misses  uint64
	Purges  uint64
}

// Cache resolves through an LRU of recent results. A nil entries cache
// (size <= 0) passes every call straight to the resolver.
//
// A result is only stored when every root searched before it was decided
// lies inside a watched directory, since change notifications are the only
// thing that evicts entries. Until SetWatchedDirs is called nothing is stored.
type Cache struct {
	resolver   *resolver.Resolver
	components ComponentSource
	entries    *lru.Cache[Key, entry]

	mu      sync.RWMutex
	watched []string // cleaned OS paths

	hits   atomic.Uint64
	misses atomic.Uint64
	purges atomic.Uint64
}

// New wraps r. size <= 0 disables caching.
func New(r *resolver.Resolver, components ComponentSource, size int) (*Cache, error) {
	c := &Cache{resolver: r, components: components}
	if size <= 0 {
		return c, nil
	}
	entries, err := lru.New[Key, entry](size)
	if err != nil {
		return nil, fmt.Errorf("creating resolution cache: %w", err)
	}
	c.entries = entries
	return c, nil
}

// Resolver returns the wrapped resolver.
func (c *Cache) Resolver() *resolver.Resolver {
	return c.resolver
}

// SetWatchedDirs replaces the directories whose changes reach Invalidate.
// Entries stored under the previous set stay until invalidated or purged.
func (c *Cache) SetWatchedDirs(dirs []string) {
	cleaned := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		cleaned = append(cleaned, filepath.Clean(dir))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watched = cleaned
}

// Resolve answers from the cache when possible. Negative results are
// cached too, under the same coverage rule as positive ones.
func (c *Cache) Resolve(requiringDir, specifier string) (resolver.ResolvedModule, bool) {
	generation := c.components.Generation()
	key := Key{Generation: generation, RequiringDir: requiringDir, Specifier: specifier}

	if c.entries != nil {
		if e, ok := c.entries.Get(key); ok {
			c.hits.Add(1)
			return e.module, e.found
		}
	}
	c.misses.Add(1)

	req := resolver.Request{
		RequiringDir: requiringDir,
		Specifier:    specifier,
		Components:   c.components.Enabled(),
	}
	module, searched, found := c.resolver.Trace(req)
	if c.entries != nil && c.covered(searched) {
		c.entries.Add(key, entry{module: module, found: found})
	}
	return module, found
}

// covered reports whether every root lies inside a watched directory.
func (c *Cache) covered(roots []resolver.SearchRoot) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, root := range roots {
		dir := filepath.FromSlash(root.Dir)
		if !slices.ContainsFunc(c.watched, func(w string) bool { return isWithin(dir, w) }) {
			return false
		}
	}
	return true
}

// Invalidate applies a batch of file changes. A new file can change the
// winner of any lookup, so additions purge everything. A removal drops
// the entries that resolved to the removed path or anything beneath it.
// Modifications leave resolution untouched. It returns the number of
// entries dropped.
func (c *Cache) Invalidate(added, removed []string) int {
	if c.entries == nil {
		return 0
	}
	if len(added) > 0 {
		n := c.entries.Len()
		c.entries.Purge()
		c.purges.Add(1)
		return n
	}

	dropped := 0
	for _, key := range c.entries.Keys() {
		e, ok := c.entries.Peek(key)
		if !ok || !e.found {
			continue
		}
		for _, p := range removed {
			if isWithin(e.module.AbsolutePath, p) {
				c.entries.Remove(key)
				dropped++
				break
			}
		}
	}
	return dropped
}

// Dependents lists the cached lookups currently resolving to absPath.
func (c *Cache) Dependents(absPath string) []Key {
	if c.entries == nil {
		return nil
	}
	var keys []Key
	for _, key := range c.entries.Keys() {
		e, ok := c.entries.Peek(key)
		if ok && e.found && samePath(e.module.AbsolutePath, absPath) {
			keys = append(keys, key)
		}
	}
	return keys
}

// Purge empties the cache.
func (c *Cache) Purge() {
	if c.entries != nil {
		c.entries.Purge()
		c.purges.Add(1)
	}
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	s := Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Purges: c.purges.Load()}
	if c.entries != nil {
		s.Entries = c.entries.Len()
	}
	return s
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

func isWithin(path, root string) bool {
	path, root = filepath.Clean(path), filepath.Clean(root)
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}
