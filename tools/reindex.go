package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReindexArgs defines the input parameters for the module_reindex tool.
type ReindexArgs struct{}

// ReindexResult summarises a full catalog rebuild.
type ReindexResult struct {
	Modules   int
	TotalSize int64
	Roots     int
	Elapsed   time.Duration
}

// ReindexFunc rebuilds the catalog. It is supplied by main to keep this
// package free of the indexing pipeline.
type ReindexFunc func(ctx context.Context) (ReindexResult, error)

// ReindexHandler holds the dependencies for the reindex tool.
type ReindexHandler struct {
	DoReindex ReindexFunc
	Logger    *slog.Logger
}

// Handle processes a module_reindex request.
func (h *ReindexHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ReindexArgs) (*mcp.CallToolResult, any, error) {
	h.Logger.Info("module_reindex started")

	result, err := h.DoReindex(ctx)
	if err != nil {
		h.Logger.Error("module_reindex failed", "error", err)
		return errorResult("Reindex error: %v", err), nil, nil
	}

	h.Logger.Info("module_reindex complete",
		"modules", result.Modules,
		"totalSize", result.TotalSize,
		"roots", result.Roots,
		"elapsed", result.Elapsed,
	)
	return textResult(formatReindex(result)), nil, nil
}

func formatReindex(r ReindexResult) string {
	return fmt.Sprintf("Reindex complete: %d modules (%s) across %d roots in %s",
		r.Modules, formatFileSize(r.TotalSize), r.Roots, r.Elapsed.Round(time.Millisecond))
}
