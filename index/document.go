package index

import (
	"path"
	"strings"
	"time"

	"github.com/lexandro/modresolve-mcp/language"
)

// Namespaces used as the first key segment for the fixed roots. Component
// roots use "@<component name>".
const (
	NamespaceScripts = "scripts"
	NamespaceVendor  = "vendor"
)

// Root is one catalogued directory tree.
type Root struct {
	Namespace string // "scripts", "vendor" or "@<component>"
	Dir       string // absolute OS path
	Component string // set for component roots
}

// ComponentNamespace returns the key namespace for a component's scripts.
func ComponentNamespace(name string) string {
	return "@" + name
}

// ModuleFile is one catalogued module source.
type ModuleFile struct {
	AbsolutePath string
	Key          string // namespace + "/" + path relative to the root, forward slashes
	Namespace    string
	Component    string
	Kind         language.Kind
	SizeBytes    int64
	ModTime      time.Time
	LineCount    int
}

// MakeKey joins a namespace and a root-relative path into a catalog key.
func MakeKey(namespace, relativePath string) string {
	return path.Join(namespace, strings.ReplaceAll(relativePath, "\\", "/"))
}
