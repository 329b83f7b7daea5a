package tools

import (
	"fmt"
	"strings"

	"github.com/lexandro/modresolve-mcp/index"
	"github.com/lexandro/modresolve-mcp/language"
	"github.com/lexandro/modresolve-mcp/resolver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

// FormatResolution formats a successful resolution, optionally followed by
// the ordered search roots that were considered.
func FormatResolution(specifier string, module resolver.ResolvedModule, roots []resolver.SearchRoot) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Resolved %q\n", specifier)
	fmt.Fprintf(&builder, "  path:     %s\n", module.Path)
	fmt.Fprintf(&builder, "  absolute: %s\n", module.AbsolutePath)
	if roots != nil {
		builder.WriteString("\n")
		builder.WriteString(FormatSearchRoots(roots))
	}
	return builder.String()
}

// FormatSearchRoots lists search roots in the order they are tried.
func FormatSearchRoots(roots []resolver.SearchRoot) string {
	if len(roots) == 0 {
		return "No search roots.\n"
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Search roots (%d):\n", len(roots))
	for i, root := range roots {
		fmt.Fprintf(&builder, "  %2d. %-28s %s", i+1, root.Role, root.Dir)
		if root.Component != "" {
			fmt.Fprintf(&builder, "  [component %s]", root.Component)
		}
		fmt.Fprintf(&builder, "  -> %q\n", root.Specifier)
	}
	return builder.String()
}

// FormatSearchResults groups source matches by catalog key.
func FormatSearchResults(results []index.SearchResult, totalMatches int) string {
	if len(results) == 0 {
		return "No matches found."
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Found %d matches in %d modules:\n\n", totalMatches, len(results))

	for i, result := range results {
		if i > 0 {
			builder.WriteString("\n")
		}
		fmt.Fprintf(&builder, "── %s ──\n", result.Key)
		for _, match := range result.Matches {
			for _, line := range match.ContextBefore {
				fmt.Fprintf(&builder, "  %s\n", line)
			}
			fmt.Fprintf(&builder, "  %d: %s\n", match.LineNumber, match.LineText)
			for _, line := range match.ContextAfter {
				fmt.Fprintf(&builder, "  %s\n", line)
			}
		}
	}
	return builder.String()
}

// FormatModuleFiles lists catalog entries.
func FormatModuleFiles(files []*index.ModuleFile, nameOnly bool) string {
	if len(files) == 0 {
		return "No modules matched."
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Found %d modules:\n\n", len(files))
	for _, file := range files {
		if nameOnly {
			builder.WriteString(file.Key)
			builder.WriteString("\n")
			continue
		}
		fmt.Fprintf(&builder, "  %s  (%s, %s, %d lines)\n",
			file.Key, file.Kind, formatFileSize(file.SizeBytes), file.LineCount)
	}
	return builder.String()
}

// FormatModuleSource prints loaded module bytes with line numbers.
// Binary content is summarised instead of printed.
func FormatModuleSource(path string, content []byte) string {
	if language.IsBinaryContent(content) {
		return fmt.Sprintf("── %s (binary, %s) ──\n", path, formatFileSize(int64(len(content))))
	}

	lines := strings.Split(string(content), "\n")
	width := len(fmt.Sprintf("%d", len(lines)))

	var builder strings.Builder
	fmt.Fprintf(&builder, "── %s (%d lines) ──\n", path, len(lines))
	for i, line := range lines {
		fmt.Fprintf(&builder, "%*d│ %s\n", width, i+1, line)
	}
	return builder.String()
}

// formatFileSize converts bytes to a human-readable string.
func formatFileSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
