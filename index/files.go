package index

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/lexandro/modresolve-mcp/language"
)

// ModuleIndex keeps the catalog of module files across all search roots.
// Lookups go through a key map and a path map; a sorted key slice gives
// stable glob iteration.
type ModuleIndex struct {
	mu         sync.RWMutex
	files      map[string]*ModuleFile // key: catalog key
	byPath     map[string]string      // absolute path -> catalog key
	sortedKeys []string
}

// NewModuleIndex creates an empty catalog.
func NewModuleIndex() *ModuleIndex {
	return &ModuleIndex{
		files:  make(map[string]*ModuleFile),
		byPath: make(map[string]string),
	}
}

// Add adds or replaces a file.
func (mi *ModuleIndex) Add(file *ModuleFile) {
	mi.mu.Lock()
	defer mi.mu.Unlock()

	absPath := filepath.Clean(file.AbsolutePath)
	if oldKey, ok := mi.byPath[absPath]; ok && oldKey != file.Key {
		mi.removeLocked(oldKey)
	}

	_, exists := mi.files[file.Key]
	mi.files[file.Key] = file
	mi.byPath[absPath] = file.Key
	if !exists {
		idx := sort.SearchStrings(mi.sortedKeys, file.Key)
		mi.sortedKeys = append(mi.sortedKeys, "")
		copy(mi.sortedKeys[idx+1:], mi.sortedKeys[idx:])
		mi.sortedKeys[idx] = file.Key
	}
}

// Remove drops a file by key. It reports whether the key was present.
func (mi *ModuleIndex) Remove(key string) bool {
	mi.mu.Lock()
	defer mi.mu.Unlock()
	return mi.removeLocked(key)
}

// RemoveByPath drops a file by absolute path and returns its key.
func (mi *ModuleIndex) RemoveByPath(absPath string) (string, bool) {
	mi.mu.Lock()
	defer mi.mu.Unlock()

	key, ok := mi.byPath[filepath.Clean(absPath)]
	if !ok {
		return "", false
	}
	mi.removeLocked(key)
	return key, true
}

// RemoveUnder drops every file at or beneath dir and returns their keys.
// A removed directory arrives from the watcher as a single path.
func (mi *ModuleIndex) RemoveUnder(dir string) []string {
	mi.mu.Lock()
	defer mi.mu.Unlock()

	dir = filepath.Clean(dir)
	var removed []string
	for absPath, key := range mi.byPath {
		if absPath == dir || strings.HasPrefix(absPath, dir+string(filepath.Separator)) {
			removed = append(removed, key)
		}
	}
	for _, key := range removed {
		mi.removeLocked(key)
	}
	sort.Strings(removed)
	return removed
}

func (mi *ModuleIndex) removeLocked(key string) bool {
	file, ok := mi.files[key]
	if !ok {
		return false
	}
	delete(mi.files, key)
	delete(mi.byPath, filepath.Clean(file.AbsolutePath))

	idx := sort.SearchStrings(mi.sortedKeys, key)
	if idx < len(mi.sortedKeys) && mi.sortedKeys[idx] == key {
		mi.sortedKeys = append(mi.sortedKeys[:idx], mi.sortedKeys[idx+1:]...)
	}
	return true
}

// Get returns the file for a catalog key, or nil.
func (mi *ModuleIndex) Get(key string) *ModuleFile {
	mi.mu.RLock()
	defer mi.mu.RUnlock()
	return mi.files[key]
}

// GetByPath returns the file for an absolute path, or nil.
func (mi *ModuleIndex) GetByPath(absPath string) *ModuleFile {
	mi.mu.RLock()
	defer mi.mu.RUnlock()
	if key, ok := mi.byPath[filepath.Clean(absPath)]; ok {
		return mi.files[key]
	}
	return nil
}

// Count returns the number of catalogued files.
func (mi *ModuleIndex) Count() int {
	mi.mu.RLock()
	defer mi.mu.RUnlock()
	return len(mi.files)
}

// TotalSizeBytes returns the summed size of all catalogued files.
func (mi *ModuleIndex) TotalSizeBytes() int64 {
	mi.mu.RLock()
	defer mi.mu.RUnlock()

	var total int64
	for _, file := range mi.files {
		total += file.SizeBytes
	}
	return total
}

// KindCounts returns kind -> file count.
func (mi *ModuleIndex) KindCounts() map[language.Kind]int {
	mi.mu.RLock()
	defer mi.mu.RUnlock()

	counts := make(map[language.Kind]int)
	for _, file := range mi.files {
		counts[file.Kind]++
	}
	return counts
}

// NamespaceCounts returns namespace -> file count.
func (mi *ModuleIndex) NamespaceCounts() map[string]int {
	mi.mu.RLock()
	defer mi.mu.RUnlock()

	counts := make(map[string]int)
	for _, file := range mi.files {
		counts[file.Namespace]++
	}
	return counts
}

// GlobOptions filters a catalog listing.
type GlobOptions struct {
	Pattern    string // doublestar pattern over catalog keys; empty matches all
	Kind       language.Kind
	MaxResults int
}

// SearchByGlob returns files whose key matches the pattern, in key order.
func (mi *ModuleIndex) SearchByGlob(options GlobOptions) ([]*ModuleFile, error) {
	if options.MaxResults <= 0 {
		options.MaxResults = 50
	}
	pattern := strings.ReplaceAll(options.Pattern, "\\", "/")
	if pattern == "" {
		pattern = "**"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}

	mi.mu.RLock()
	defer mi.mu.RUnlock()

	var results []*ModuleFile
	for _, key := range mi.sortedKeys {
		if len(results) >= options.MaxResults {
			break
		}
		if matched, err := doublestar.Match(pattern, key); err != nil || !matched {
			continue
		}
		file := mi.files[key]
		if options.Kind != "" && file.Kind != options.Kind {
			continue
		}
		results = append(results, file)
	}
	return results, nil
}

// All returns every file in key order.
func (mi *ModuleIndex) All() []*ModuleFile {
	mi.mu.RLock()
	defer mi.mu.RUnlock()

	result := make([]*ModuleFile, 0, len(mi.sortedKeys))
	for _, key := range mi.sortedKeys {
		result = append(result, mi.files[key])
	}
	return result
}

// Clear empties the catalog.
func (mi *ModuleIndex) Clear() {
	mi.mu.Lock()
	defer mi.mu.Unlock()

	mi.files = make(map[string]*ModuleFile)
	mi.byPath = make(map[string]string)
	mi.sortedKeys = nil
}
