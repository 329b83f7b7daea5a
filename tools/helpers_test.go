package tools

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/lexandro/modresolve-mcp/component"
	"github.com/lexandro/modresolve-mcp/index"
	"github.com/lexandro/modresolve-mcp/resolvecache"
	"github.com/lexandro/modresolve-mcp/resolver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// project is an on-disk host layout with one project component.
type project struct {
	root     string
	appDir   string
	registry *component.Registry
	cache    *resolvecache.Cache
	modules  *index.ModuleIndex
}

func newProject(t *testing.T) *project {
	t.Helper()
	root := t.TempDir()
	p := &project{root: root, appDir: filepath.Join(root, "Content", "JavaScript", "app")}

	p.write(t, "Content/JavaScript/app/main.js", "const util = require('./util.mjs')\n")
	p.write(t, "Content/JavaScript/app/util.mjs", "export const answer = 42\n")
	p.write(t, "Content/PuertsDependencies/lodash/index.js", "module.exports = {}\n")
	p.write(t, "Plugins/pkgA/Content/JavaScript/lib/x.js", "module.exports = 'x'\n")

	slashRoot := filepath.ToSlash(root)
	r := resolver.New(resolver.Config{
		ScriptRoot:     slashRoot + "/Content/JavaScript",
		DependencyRoot: slashRoot + "/Content/PuertsDependencies",
	}, nil, nil)
	p.registry = component.NewStaticRegistry([]component.Descriptor{
		{Name: "pkgA", Type: resolver.ComponentProject, ContentDir: slashRoot + "/Plugins/pkgA/Content", Enabled: true},
		{Name: "EngineBits", Type: resolver.ComponentEngine, ContentDir: slashRoot + "/Engine/Content", Enabled: true},
	}, nil)

	cache, err := resolvecache.New(r, p.registry, 32)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	cache.SetWatchedDirs([]string{root})
	p.cache = cache
	p.modules = index.NewModuleIndex()
	return p
}

// catalog lists an existing or vanished file in the project's module index.
func (p *project) catalog(path string) {
	p.modules.Add(&index.ModuleFile{
		AbsolutePath: path,
		Key:          index.MakeKey(index.NamespaceScripts, filepath.ToSlash(filepath.Base(path))),
		Namespace:    index.NamespaceScripts,
	})
}

func (p *project) write(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(p.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("expected a result with content")
	}
	return result.Content[0].(*mcp.TextContent).Text
}
