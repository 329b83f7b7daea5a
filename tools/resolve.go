package tools

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/lexandro/modresolve-mcp/resolvecache"
	"github.com/lexandro/modresolve-mcp/resolver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ResolveArgs defines the input parameters for the module_resolve tool.
type ResolveArgs struct {
	RequiringDir string `json:"requiringDir" jsonschema:"Directory of the requiring script (absolute path)"`
	Specifier    string `json:"specifier" jsonschema:"Module specifier as written in require(), e.g. lodash, ./util.mjs or @pkgA/lib/x"`
	Explain      bool   `json:"explain,omitempty" jsonschema:"If true also list the ordered search roots"`
}

// ComponentLister supplies the components enabled right now.
type ComponentLister interface {
	Enabled() []resolver.Component
}

// ResolveHandler holds the dependencies for the resolve tool.
type ResolveHandler struct {
	Cache      *resolvecache.Cache
	Components ComponentLister
	Logger     *slog.Logger
}

// Handle processes a module_resolve request.
func (h *ResolveHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ResolveArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if strings.TrimSpace(args.Specifier) == "" {
		h.Logger.Warn("module_resolve called with empty specifier")
		return errorResult("Error: specifier parameter is required"), nil, nil
	}
	requiringDir := slashDir(args.RequiringDir)

	module, found := h.Cache.Resolve(requiringDir, args.Specifier)

	var roots []resolver.SearchRoot
	if args.Explain {
		roots = h.Cache.Resolver().SearchRoots(resolver.Request{
			RequiringDir: requiringDir,
			Specifier:    args.Specifier,
			Components:   h.Components.Enabled(),
		})
	}

	h.Logger.Info("module_resolve",
		"specifier", args.Specifier,
		"requiringDir", requiringDir,
		"found", found,
		"elapsed", time.Since(start),
	)

	if !found {
		text := "Unresolved: " + args.Specifier + " from " + requiringDir
		if args.Explain {
			text += "\n\n" + FormatSearchRoots(roots)
		}
		return errorResult("%s", text), nil, nil
	}
	return textResult(FormatResolution(args.Specifier, module, roots)), nil, nil
}

// slashDir converts a caller-supplied directory to the slash form the
// resolver works in.
func slashDir(dir string) string {
	if dir == "" {
		return ""
	}
	return filepath.ToSlash(dir)
}
