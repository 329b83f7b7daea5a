package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/lexandro/modresolve-mcp/component"
	"github.com/lexandro/modresolve-mcp/index"
	"github.com/lexandro/modresolve-mcp/resolvecache"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StatusArgs defines the input parameters for the module_status tool (none required).
type StatusArgs struct{}

// StatusHandler holds the dependencies for the status tool.
type StatusHandler struct {
	Modules    *index.ModuleIndex
	Sources    *index.SourceIndex
	Cache      *resolvecache.Cache
	Registry   *component.Registry
	ProjectDir string
	StartTime  time.Time
	Logger     *slog.Logger
}

// Handle processes a module_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	var builder strings.Builder

	cfg := h.Cache.Resolver().Config()
	moduleCount := h.Modules.Count()
	totalSize := h.Modules.TotalSizeBytes()
	cacheStats := h.Cache.Stats()
	uptime := time.Since(h.StartTime)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	h.Logger.Info("module_status",
		"modules", moduleCount,
		"totalSize", totalSize,
		"cacheEntries", cacheStats.Entries,
		"memory", memStats.Alloc,
		"uptime", uptime,
	)

	builder.WriteString("=== modresolve-mcp Status ===\n\n")
	fmt.Fprintf(&builder, "Project directory: %s\n", h.ProjectDir)
	fmt.Fprintf(&builder, "Script root: %s\n", cfg.ScriptRoot)
	fmt.Fprintf(&builder, "Dependency root: %s\n", cfg.DependencyRoot)
	fmt.Fprintf(&builder, "Component script subroot: %s\n", cfg.ScriptSubroot)
	fmt.Fprintf(&builder, "Uptime: %s\n", formatDuration(uptime))
	fmt.Fprintf(&builder, "Catalogued modules: %d\n", moduleCount)
	fmt.Fprintf(&builder, "Source-indexed documents: %d\n", h.Sources.DocumentCount())
	fmt.Fprintf(&builder, "Total catalogued size: %s\n", formatFileSize(totalSize))
	fmt.Fprintf(&builder, "Enabled components: %d of %d (generation %d)\n",
		len(h.Registry.Enabled()), len(h.Registry.All()), h.Registry.Generation())
	fmt.Fprintf(&builder, "Resolution cache: %d entries, %d hits, %d misses, %d purges\n",
		cacheStats.Entries, cacheStats.Hits, cacheStats.Misses, cacheStats.Purges)
	fmt.Fprintf(&builder, "Memory usage: %s (heap: %s)\n",
		formatFileSize(int64(memStats.Alloc)),
		formatFileSize(int64(memStats.HeapAlloc)),
	)

	writeCounts(&builder, "Namespaces", h.Modules.NamespaceCounts())

	kinds := make(map[string]int)
	for kind, count := range h.Modules.KindCounts() {
		kinds[string(kind)] = count
	}
	writeCounts(&builder, "Kinds", kinds)

	return textResult(builder.String()), nil, nil
}

// writeCounts prints a breakdown sorted by count, then name.
func writeCounts(builder *strings.Builder, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	fmt.Fprintf(builder, "\n%s:\n", title)
	for _, name := range names {
		fmt.Fprintf(builder, "  %-20s %d files\n", name, counts[name])
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}
	totalMinutes := totalSeconds / 60
	remainderSeconds := totalSeconds % 60
	if totalMinutes < 60 {
		return fmt.Sprintf("%dm%ds", totalMinutes, remainderSeconds)
	}
	return fmt.Sprintf("%dh%dm", totalMinutes/60, totalMinutes%60)
}
