package index

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/lexandro/modresolve-mcp/language"
)

func newTestModule(namespace, relPath string, size int64) *ModuleFile {
	return &ModuleFile{
		AbsolutePath: filepath.Join("/project", namespace, relPath),
		Key:          MakeKey(namespace, relPath),
		Namespace:    namespace,
		Kind:         language.DetectKind(relPath),
		SizeBytes:    size,
		ModTime:      time.Now(),
		LineCount:    10,
	}
}

func Test_MakeKey(t *testing.T) {
	tests := []struct {
		namespace, rel, want string
	}{
		{NamespaceScripts, "main.js", "scripts/main.js"},
		{NamespaceVendor, `lodash\index.js`, "vendor/lodash/index.js"},
		{ComponentNamespace("pkgA"), "lib/util.mjs", "@pkgA/lib/util.mjs"},
	}
	for _, tt := range tests {
		if got := MakeKey(tt.namespace, tt.rel); got != tt.want {
			t.Errorf("MakeKey(%s, %s) = %s, want %s", tt.namespace, tt.rel, got, tt.want)
		}
	}
}

func Test_ModuleIndex_AddAndGet(t *testing.T) {
	mi := NewModuleIndex()
	file := newTestModule(NamespaceScripts, "main.js", 1024)
	mi.Add(file)

	if got := mi.Get("scripts/main.js"); got == nil || got.Kind != language.KindJavaScript {
		t.Fatalf("expected JavaScript file, got %+v", got)
	}
	if got := mi.GetByPath(file.AbsolutePath); got != file {
		t.Errorf("expected lookup by path to return the same file")
	}
}

func Test_ModuleIndex_ReplaceKeepsCount(t *testing.T) {
	mi := NewModuleIndex()
	mi.Add(newTestModule(NamespaceScripts, "main.js", 10))
	mi.Add(newTestModule(NamespaceScripts, "main.js", 20))

	if mi.Count() != 1 {
		t.Fatalf("expected 1 file, got %d", mi.Count())
	}
	if mi.TotalSizeBytes() != 20 {
		t.Errorf("expected the replacement size, got %d", mi.TotalSizeBytes())
	}
}

func Test_ModuleIndex_Remove(t *testing.T) {
	mi := NewModuleIndex()
	file := newTestModule(NamespaceScripts, "main.js", 1024)
	mi.Add(file)

	if !mi.Remove("scripts/main.js") {
		t.Fatal("expected Remove to report the key")
	}
	if mi.Remove("scripts/main.js") {
		t.Error("expected second Remove to report nothing")
	}
	if mi.Count() != 0 || mi.GetByPath(file.AbsolutePath) != nil {
		t.Error("expected file to be gone from both maps")
	}
}

func Test_ModuleIndex_RemoveByPathAndUnder(t *testing.T) {
	mi := NewModuleIndex()
	a := newTestModule(NamespaceVendor, "lodash/index.js", 1)
	b := newTestModule(NamespaceVendor, "lodash/package.json", 1)
	c := newTestModule(NamespaceVendor, "lodash-es/index.js", 1)
	mi.Add(a)
	mi.Add(b)
	mi.Add(c)

	key, ok := mi.RemoveByPath(a.AbsolutePath)
	if !ok || key != "vendor/lodash/index.js" {
		t.Fatalf("unexpected RemoveByPath result: %s %v", key, ok)
	}

	removed := mi.RemoveUnder(filepath.Join("/project", NamespaceVendor, "lodash"))
	if len(removed) != 1 || removed[0] != "vendor/lodash/package.json" {
		t.Errorf("expected only lodash/package.json, got %v", removed)
	}
	if mi.Get("vendor/lodash-es/index.js") == nil {
		t.Error("expected sibling with a shared prefix to survive")
	}
}

func Test_ModuleIndex_SearchByGlob(t *testing.T) {
	mi := NewModuleIndex()
	mi.Add(newTestModule(NamespaceScripts, "main.js", 1))
	mi.Add(newTestModule(NamespaceScripts, "lib/util.mjs", 1))
	mi.Add(newTestModule(NamespaceVendor, "lodash/index.js", 1))
	mi.Add(newTestModule(NamespaceVendor, "lodash/package.json", 1))
	mi.Add(newTestModule(ComponentNamespace("pkgA"), "entry.js", 1))

	tests := []struct {
		name    string
		options GlobOptions
		want    []string
	}{
		{"all js", GlobOptions{Pattern: "**/*.js"}, []string{"@pkgA/entry.js", "scripts/main.js", "vendor/lodash/index.js"}},
		{"namespace", GlobOptions{Pattern: "vendor/**"}, []string{"vendor/lodash/index.js", "vendor/lodash/package.json"}},
		{"component", GlobOptions{Pattern: "@pkgA/**"}, []string{"@pkgA/entry.js"}},
		{"kind filter", GlobOptions{Kind: language.KindPackageManifest}, []string{"vendor/lodash/package.json"}},
		{"limit", GlobOptions{Pattern: "**", MaxResults: 2}, []string{"@pkgA/entry.js", "scripts/lib/util.mjs"}},
	}

	for _, tt := range tests {
		results, err := mi.SearchByGlob(tt.options)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		var keys []string
		for _, f := range results {
			keys = append(keys, f.Key)
		}
		if len(keys) != len(tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, keys, tt.want)
			continue
		}
		for i := range keys {
			if keys[i] != tt.want[i] {
				t.Errorf("%s: got %v, want %v", tt.name, keys, tt.want)
				break
			}
		}
	}
}

func Test_ModuleIndex_SearchByGlob_InvalidPattern(t *testing.T) {
	mi := NewModuleIndex()
	if _, err := mi.SearchByGlob(GlobOptions{Pattern: "[invalid"}); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func Test_ModuleIndex_Counts(t *testing.T) {
	mi := NewModuleIndex()
	mi.Add(newTestModule(NamespaceScripts, "main.js", 1))
	mi.Add(newTestModule(NamespaceScripts, "util.mjs", 1))
	mi.Add(newTestModule(NamespaceVendor, "lodash/package.json", 1))

	kinds := mi.KindCounts()
	if kinds[language.KindJavaScript] != 1 || kinds[language.KindESModule] != 1 || kinds[language.KindPackageManifest] != 1 {
		t.Errorf("unexpected kind counts: %v", kinds)
	}
	namespaces := mi.NamespaceCounts()
	if namespaces[NamespaceScripts] != 2 || namespaces[NamespaceVendor] != 1 {
		t.Errorf("unexpected namespace counts: %v", namespaces)
	}
}

func Test_ModuleIndex_AllAndClear(t *testing.T) {
	mi := NewModuleIndex()
	mi.Add(newTestModule(NamespaceScripts, "b.js", 1))
	mi.Add(newTestModule(NamespaceScripts, "a.js", 1))

	all := mi.All()
	if len(all) != 2 || all[0].Key != "scripts/a.js" {
		t.Errorf("expected sorted listing, got %v", all)
	}

	mi.Clear()
	if mi.Count() != 0 || len(mi.All()) != 0 {
		t.Error("expected empty index after Clear")
	}
}
