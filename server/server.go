package server

import (
	"github.com/lexandro/modresolve-mcp/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handlers bundles the tool handlers registered on the server.
type Handlers struct {
	Resolve    *tools.ResolveHandler
	Load       *tools.LoadHandler
	Files      *tools.FilesHandler
	Search     *tools.SearchHandler
	Components *tools.ComponentsHandler
	Status     *tools.StatusHandler
	Reindex    *tools.ReindexHandler
}

// Setup creates and configures the MCP server with all tool registrations.
func Setup(h Handlers, version string) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "modresolve-mcp",
			Version: version,
		},
		&mcp.ServerOptions{
			Instructions: `This server resolves CommonJS-style module specifiers the way the embedded script runtime does, across the requiring directory, its ancestors, enabled project components, the dependency vendor root and the project script root.

- Use module_resolve to find which file a require() call loads; pass explain=true to see every search root in order
- Use module_load to read the file a specifier resolves to
- Use module_files and module_search to browse the module catalog
- Use module_components to list, enable or disable components
- The catalog and the resolution cache update automatically when files change`,
		},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "module_resolve",
		Description: `Resolve a module specifier from a requiring directory.

Search order:
  1. the requiring directory (and its node_modules)
  2. ancestor directories, for bare names only
  3. enabled project components; "@name/rest" only searches component "name" for "rest"
  4. the dependency vendor root
  5. the project script root

Candidates per directory: the name itself when it ends in .js/.mjs/.cjs/.json, then name.js, name.mjs, name.cjs, name/package.json, name/index.js.`,
	}, h.Resolve.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "module_load",
		Description: `Resolve a specifier (or take the absolute path of a catalogued module) and return the file's raw content with line numbers. Reports "Unresolved" and "Load error" separately.`,
	}, h.Load.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "module_files",
		Description: `List catalogued modules by glob over catalog keys.

Keys are namespaced by root:
  - "scripts/..." project script root
  - "vendor/..." dependency vendor root
  - "@pkgA/..." script directory of component pkgA`,
	}, h.Files.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "module_search",
		Description: `Full-text search over module sources.

Query formats:
  - Plain text: word-level matching (e.g., "require")
  - "quoted text": exact phrase matching
  - /regex/: regular expression matching`,
	}, h.Search.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "module_components",
		Description: "List components, or enable/disable one by name. Only enabled components of type project take part in resolution.",
	}, h.Components.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "module_status",
		Description: "Show roots, catalog size, kinds, component state, resolution cache statistics, memory usage and uptime.",
	}, h.Status.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "module_reindex",
		Description: "Rebuild the module catalog and source index from disk and purge the resolution cache.",
	}, h.Reindex.Handle)

	return mcpServer
}
