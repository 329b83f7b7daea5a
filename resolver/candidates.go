package resolver

import (
	"path"
	"strings"
)

// verbatimExtensions are the extensions a module name may already carry
// for it to be probed as given before any inference.
var verbatimExtensions = []string{".js", ".mjs", ".cjs", ".json"}

// inferredSuffixes are appended to a module name, in this order.
// ".js" must win over the directory-as-package forms.
var inferredSuffixes = []string{".js", ".mjs", ".cjs", "/package.json", "/index.js"}

// Candidates returns the filenames probed for moduleName inside a
// directory, in probe order.
func Candidates(moduleName string) []string {
	candidates := make([]string, 0, len(inferredSuffixes)+1)
	if hasExtension(moduleName, verbatimExtensions) {
		candidates = append(candidates, moduleName)
	}
	for _, suffix := range inferredSuffixes {
		candidates = append(candidates, moduleName+suffix)
	}
	return candidates
}

// SearchInDirectory probes every candidate filename for moduleName under
// dir and returns the first one that exists.
func (r *Resolver) SearchInDirectory(dir, moduleName string) (ResolvedModule, bool) {
	for _, candidate := range Candidates(moduleName) {
		if m, ok := r.searchNested(dir, candidate); ok {
			return m, true
		}
	}
	return ResolvedModule{}, false
}

// searchNested probes dir/filename, then dir/<vendor>/filename unless dir
// is itself a vendor folder.
func (r *Resolver) searchNested(dir, filename string) (ResolvedModule, bool) {
	if m, ok := r.probe(joinPath(dir, filename)); ok {
		return m, true
	}
	if r.isVendorDir(dir) {
		return ResolvedModule{}, false
	}
	return r.probe(joinPath(joinPath(dir, r.cfg.VendorFolder), filename))
}

// probe normalizes candidate and reports it when a file exists there.
// A failure of any kind means "try the next candidate".
func (r *Resolver) probe(candidate string) (ResolvedModule, bool) {
	normalized := Normalize(candidate)
	if normalized == "" || !r.fs.IsFile(normalized) {
		return ResolvedModule{}, false
	}
	abs, err := r.fs.Abs(normalized)
	if err != nil {
		return ResolvedModule{}, false
	}
	return ResolvedModule{Path: normalized, AbsolutePath: abs}, true
}

func (r *Resolver) isVendorDir(dir string) bool {
	return lastSegment(dir) == r.cfg.VendorFolder
}

func hasExtension(name string, extensions []string) bool {
	ext := path.Ext(name)
	if ext == "" {
		return false
	}
	for _, candidate := range extensions {
		if strings.EqualFold(ext, candidate) {
			return true
		}
	}
	return false
}
