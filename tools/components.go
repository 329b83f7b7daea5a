package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lexandro/modresolve-mcp/component"
	"github.com/lexandro/modresolve-mcp/resolver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ComponentsArgs defines the input parameters for the module_components tool.
type ComponentsArgs struct {
	Action string `json:"action,omitempty" jsonschema:"list (default), enable or disable"`
	Name   string `json:"name,omitempty" jsonschema:"Component name for enable and disable"`
}

// ComponentsHandler holds the dependencies for the components tool.
type ComponentsHandler struct {
	Registry *component.Registry
	// OnChange runs after a component was enabled or disabled, so the
	// caller can extend the watcher and catalog.
	OnChange func()
	Logger   *slog.Logger
}

// Handle processes a module_components request.
func (h *ComponentsHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ComponentsArgs) (*mcp.CallToolResult, any, error) {
	action := strings.ToLower(strings.TrimSpace(args.Action))
	switch action {
	case "", "list":
		h.Logger.Info("module_components", "action", "list")
		return textResult(FormatComponents(h.Registry.All())), nil, nil
	case "enable", "disable":
	default:
		return errorResult("Error: unknown action %q (want list, enable or disable)", args.Action), nil, nil
	}

	if args.Name == "" {
		return errorResult("Error: name parameter is required for %s", action), nil, nil
	}

	changed, err := h.Registry.SetEnabled(args.Name, action == "enable")
	if err != nil {
		h.Logger.Warn("module_components failed", "action", action, "name", args.Name, "error", err)
		if errors.Is(err, component.ErrUnknownComponent) {
			return errorResult("Unknown component: %s", args.Name), nil, nil
		}
		return errorResult("Error: %v", err), nil, nil
	}

	h.Logger.Info("module_components", "action", action, "name", args.Name, "changed", changed)
	if changed && h.OnChange != nil {
		h.OnChange()
	}

	state := "enabled"
	if action == "disable" {
		state = "disabled"
	}
	if !changed {
		return textResult(fmt.Sprintf("Component %s already %s.", args.Name, state)), nil, nil
	}
	return textResult(fmt.Sprintf("Component %s %s.", args.Name, state)), nil, nil
}

// FormatComponents lists components in manifest order, which is also
// their resolution order.
func FormatComponents(components []component.Descriptor) string {
	if len(components) == 0 {
		return "No components registered."
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Components (%d):\n\n", len(components))
	for _, c := range components {
		state := "disabled"
		if c.Enabled {
			state = "enabled"
		}
		fmt.Fprintf(&builder, "  %-24s %-10s %-8s %s", c.Name, c.Type, state, c.ContentDir)
		if c.Type != resolver.ComponentProject {
			builder.WriteString("  (not searched)")
		}
		builder.WriteString("\n")
	}
	return builder.String()
}
