package ignore

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// Matcher decides which paths the watcher and the module catalog skip.
// It combines the generated-directory rules, .gitignore, .modresolveignore
// and custom glob patterns, and only admits script-like files.
// Thread-safe: Reload and SetComponentDirs take the write lock.
type Matcher struct {
	mu               sync.RWMutex
	projectDir       string
	componentDirs    []string
	controlFiles     []string
	gitIgnore        gitignore.GitIgnore
	projectIgnore    gitignore.GitIgnore
	customPatterns   []string
	maxFileSizeBytes int64
}

// MatcherOptions configures the ignore matcher.
type MatcherOptions struct {
	ProjectDir string
	// ComponentDirs are component base directories whose generated
	// subdirectories are excluded like the project's.
	ComponentDirs []string
	// ControlFiles are admitted whatever their extension (e.g. the component manifest).
	ControlFiles     []string
	CustomPatterns   []string
	MaxFileSizeBytes int64
}

// NewMatcher creates a matcher rooted at the project directory.
func NewMatcher(options MatcherOptions) *Matcher {
	m := &Matcher{
		projectDir:       filepath.Clean(options.ProjectDir),
		componentDirs:    cleanAll(options.ComponentDirs),
		controlFiles:     cleanAll(options.ControlFiles),
		customPatterns:   options.CustomPatterns,
		maxFileSizeBytes: options.MaxFileSizeBytes,
	}
	if m.maxFileSizeBytes <= 0 {
		m.maxFileSizeBytes = 1024 * 1024
	}
	m.gitIgnore = loadIgnoreFile(filepath.Join(m.projectDir, ".gitignore"), m.projectDir)
	m.projectIgnore = loadIgnoreFile(filepath.Join(m.projectDir, IgnoreFileName), m.projectDir)
	return m
}

// SetComponentDirs replaces the component base directories.
func (m *Matcher) SetComponentDirs(dirs []string) {
	cleaned := cleanAll(dirs)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.componentDirs = cleaned
}

// ShouldIgnoreDir reports whether a directory should not be watched or walked.
func (m *Matcher) ShouldIgnoreDir(absolutePath string) bool {
	cleaned := filepath.Clean(absolutePath)
	if slices.Contains(SkippedDirNames, filepath.Base(cleaned)) {
		return true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.underGeneratedDir(cleaned) || m.matchesRules(cleaned, true)
}

// ShouldIgnore reports whether a file change or file should be skipped.
// Control files are never ignored. Other files must carry a watched
// extension and must not sit in an ignored directory.
func (m *Matcher) ShouldIgnore(absolutePath string) bool {
	cleaned := filepath.Clean(absolutePath)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if slices.Contains(m.controlFiles, cleaned) {
		return false
	}
	if !IsScriptFile(cleaned) {
		return true
	}
	if m.underGeneratedDir(cleaned) || m.inSkippedDir(cleaned) {
		return true
	}

	isDir := false
	if info, err := os.Stat(cleaned); err == nil {
		isDir = info.IsDir()
	}
	return m.matchesRules(cleaned, isDir)
}

// IsControlFile reports whether path is one of the configured control files.
func (m *Matcher) IsControlFile(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Contains(m.controlFiles, filepath.Clean(path))
}

// IsScriptFile reports whether path has one of the watched extensions.
func IsScriptFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(WatchedExtensions, ext)
}

// IsFileTooLarge returns true if the file exceeds the max file size limit.
func (m *Matcher) IsFileTooLarge(fileSize int64) bool {
	return fileSize > m.maxFileSizeBytes
}

// MaxFileSizeBytes returns the configured maximum file size.
func (m *Matcher) MaxFileSizeBytes() int64 {
	return m.maxFileSizeBytes
}

// Reload re-reads .gitignore and .modresolveignore from the project directory.
func (m *Matcher) Reload() {
	newGitIgnore := loadIgnoreFile(filepath.Join(m.projectDir, ".gitignore"), m.projectDir)
	newProjectIgnore := loadIgnoreFile(filepath.Join(m.projectDir, IgnoreFileName), m.projectDir)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gitIgnore = newGitIgnore
	m.projectIgnore = newProjectIgnore
}

// underGeneratedDir checks the Saved/Intermediate/DerivedDataCache
// directories of the project and of every component. Caller holds the lock.
func (m *Matcher) underGeneratedDir(path string) bool {
	bases := append([]string{m.projectDir}, m.componentDirs...)
	for _, base := range bases {
		for _, name := range GeneratedDirNames {
			if isWithin(path, filepath.Join(base, name)) {
				return true
			}
		}
	}
	return false
}

// inSkippedDir checks every directory component of path below the project.
func (m *Matcher) inSkippedDir(path string) bool {
	rel, ok := m.relative(filepath.Dir(path))
	if !ok {
		rel = filepath.ToSlash(filepath.Dir(path))
	}
	for _, part := range strings.Split(rel, "/") {
		if slices.Contains(SkippedDirNames, part) {
			return true
		}
	}
	return false
}

// matchesRules applies the ignore files and custom patterns. Paths outside
// the project directory are only checked against custom patterns.
// Caller holds the lock.
func (m *Matcher) matchesRules(path string, isDir bool) bool {
	rel, inside := m.relative(path)
	if inside {
		for _, gi := range []gitignore.GitIgnore{m.gitIgnore, m.projectIgnore} {
			if gi == nil {
				continue
			}
			if match := gi.Relative(rel, isDir); match != nil && match.Ignore() {
				return true
			}
		}
	} else {
		rel = filepath.ToSlash(path)
	}
	return m.matchesCustomPatterns(rel)
}

// matchesCustomPatterns matches doublestar patterns against the relative
// path and the base name.
func (m *Matcher) matchesCustomPatterns(relativePath string) bool {
	baseName := filepath.Base(relativePath)
	for _, pattern := range m.customPatterns {
		if matched, err := doublestar.Match(pattern, relativePath); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, baseName); err == nil && matched {
			return true
		}
	}
	return false
}

// relative returns path relative to the project directory in slash form,
// and false when path lies outside it.
func (m *Matcher) relative(path string) (string, bool) {
	rel, err := filepath.Rel(m.projectDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// loadIgnoreFile reads an ignore file and creates a GitIgnore matcher from it.
// The handle is closed before returning so Windows can replace the file.
func loadIgnoreFile(filePath string, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer f.Close()
	return gitignore.New(f, baseDir, nil)
}

func isWithin(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}

func cleanAll(paths []string) []string {
	cleaned := make([]string, 0, len(paths))
	for _, p := range paths {
		cleaned = append(cleaned, filepath.Clean(filepath.FromSlash(p)))
	}
	return cleaned
}
