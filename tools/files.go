package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/lexandro/modresolve-mcp/index"
	"github.com/lexandro/modresolve-mcp/language"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// FilesArgs defines the input parameters for the module_files tool.
type FilesArgs struct {
	Pattern    string `json:"pattern,omitempty" jsonschema:"Glob over catalog keys, e.g. vendor/**/package.json or @pkgA/**/*.mjs (default **)"`
	Kind       string `json:"kind,omitempty" jsonschema:"Only list modules of this kind: ES Module, CommonJS, JavaScript, JSON, Package Manifest, TypeScript"`
	NameOnly   bool   `json:"nameOnly,omitempty" jsonschema:"If true return only catalog keys without metadata"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of results to return (default 50)"`
}

// FilesHandler holds the dependencies for the files tool.
type FilesHandler struct {
	Modules *index.ModuleIndex
	// DefaultMaxResults applies when the caller does not set maxResults.
	DefaultMaxResults int
	Logger            *slog.Logger
}

// Handle processes a module_files request.
func (h *FilesHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args FilesArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	files, err := h.Modules.SearchByGlob(index.GlobOptions{
		Pattern:    args.Pattern,
		Kind:       language.Kind(args.Kind),
		MaxResults: h.maxResults(args.MaxResults),
	})
	if err != nil {
		h.Logger.Error("module_files failed", "pattern", args.Pattern, "error", err)
		return errorResult("Search error: %v", err), nil, nil
	}

	h.Logger.Info("module_files",
		"pattern", args.Pattern,
		"kind", args.Kind,
		"results", len(files),
		"elapsed", time.Since(start),
	)
	return textResult(FormatModuleFiles(files, args.NameOnly)), nil, nil
}

func (h *FilesHandler) maxResults(requested int) int {
	if requested > 0 {
		return requested
	}
	return h.DefaultMaxResults
}
