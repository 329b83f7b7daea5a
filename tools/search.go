package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/lexandro/modresolve-mcp/index"
	"github.com/lexandro/modresolve-mcp/language"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchArgs defines the input parameters for the module_search tool.
type SearchArgs struct {
	Query        string `json:"query" jsonschema:"Search query. Plain text for word match, quoted for exact phrase, /regex/ for regular expression"`
	Key          string `json:"key,omitempty" jsonschema:"Exact catalog key to search in (overrides keyGlob), e.g. scripts/main.js"`
	KeyGlob      string `json:"keyGlob,omitempty" jsonschema:"Glob over catalog keys, e.g. vendor/**"`
	Kind         string `json:"kind,omitempty" jsonschema:"Only search modules of this kind"`
	MaxResults   int    `json:"maxResults,omitempty" jsonschema:"Maximum number of module results to return (default 50)"`
	ContextLines int    `json:"contextLines,omitempty" jsonschema:"Number of context lines before and after each match (default 2)"`
}

// SearchHandler holds the dependencies for the search tool.
type SearchHandler struct {
	Sources *index.SourceIndex
	// DefaultMaxResults applies when the caller does not set maxResults.
	DefaultMaxResults int
	Logger            *slog.Logger
}

// Handle processes a module_search request.
func (h *SearchHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Query == "" {
		h.Logger.Warn("module_search called with empty query")
		return errorResult("Error: query parameter is required"), nil, nil
	}

	contextLines := args.ContextLines
	if contextLines == 0 {
		contextLines = 2
	}

	results, totalMatches, err := h.Sources.Search(index.SearchOptions{
		Query:        args.Query,
		Key:          args.Key,
		KeyGlob:      args.KeyGlob,
		Kind:         language.Kind(args.Kind),
		MaxResults:   h.maxResults(args.MaxResults),
		ContextLines: contextLines,
	})
	if err != nil {
		h.Logger.Error("module_search failed", "query", args.Query, "error", err)
		return errorResult("Search error: %v", err), nil, nil
	}

	h.Logger.Info("module_search",
		"query", args.Query,
		"key", args.Key,
		"keyGlob", args.KeyGlob,
		"modules", len(results),
		"matches", totalMatches,
		"elapsed", time.Since(start),
	)
	return textResult(FormatSearchResults(results, totalMatches)), nil, nil
}

func (h *SearchHandler) maxResults(requested int) int {
	if requested > 0 {
		return requested
	}
	return h.DefaultMaxResults
}
