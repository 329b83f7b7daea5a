package tools

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/lexandro/modresolve-mcp/index"
	"github.com/lexandro/modresolve-mcp/resolvecache"
	"github.com/lexandro/modresolve-mcp/resolver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// LoadArgs defines the input parameters for the module_load tool.
type LoadArgs struct {
	RequiringDir string `json:"requiringDir,omitempty" jsonschema:"Directory of the requiring script (absolute path)"`
	Specifier    string `json:"specifier,omitempty" jsonschema:"Module specifier to resolve and load"`
	Path         string `json:"path,omitempty" jsonschema:"Absolute path of a catalogued module to load directly, skipping resolution"`
}

// LoadHandler holds the dependencies for the load tool. Direct paths are
// served only when Modules lists them.
type LoadHandler struct {
	Cache   *resolvecache.Cache
	Modules *index.ModuleIndex
	Logger  *slog.Logger
}

// Handle processes a module_load request. Resolution failures and read
// failures are reported differently.
func (h *LoadHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args LoadArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	target := args.Path
	if target != "" {
		if h.Modules == nil || h.Modules.GetByPath(target) == nil {
			h.Logger.Warn("module_load rejected uncatalogued path", "path", target)
			return errorResult("Not a catalogued module: %s", target), nil, nil
		}
	} else {
		if strings.TrimSpace(args.Specifier) == "" {
			h.Logger.Warn("module_load called without specifier or path")
			return errorResult("Error: specifier or path parameter is required"), nil, nil
		}
		requiringDir := slashDir(args.RequiringDir)
		module, found := h.Cache.Resolve(requiringDir, args.Specifier)
		if !found {
			h.Logger.Info("module_load unresolved", "specifier", args.Specifier, "requiringDir", requiringDir)
			return errorResult("Unresolved: %s from %s", args.Specifier, requiringDir), nil, nil
		}
		target = module.AbsolutePath
	}

	content, err := h.Cache.Resolver().Load(target)
	if err != nil {
		h.Logger.Warn("module_load failed", "path", target, "error", err,
			"unreadable", errors.Is(err, resolver.ErrUnreadable))
		return errorResult("Load error: %v", err), nil, nil
	}

	h.Logger.Info("module_load", "path", target, "bytes", len(content), "elapsed", time.Since(start))
	return textResult(FormatModuleSource(target, content)), nil, nil
}
