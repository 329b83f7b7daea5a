package tools

import (
	"context"
	"strings"
	"testing"
)

func newTestComponentsHandler(p *project, changes *int) *ComponentsHandler {
	return &ComponentsHandler{
		Registry: p.registry,
		OnChange: func() { *changes++ },
		Logger:   discardLogger(),
	}
}

func Test_ComponentsHandler_List(t *testing.T) {
	var changes int
	h := newTestComponentsHandler(newProject(t), &changes)

	result, _, err := h.Handle(context.Background(), nil, ComponentsArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "Components (2)") {
		t.Errorf("expected 2 components, got:\n%s", text)
	}
	pkgLine := text[strings.Index(text, "pkgA"):]
	pkgLine = pkgLine[:strings.Index(pkgLine, "\n")]
	if strings.Contains(pkgLine, "not searched") {
		t.Errorf("project component must be searched: %s", pkgLine)
	}
	if !strings.Contains(text, "EngineBits") || !strings.Contains(text, "(not searched)") {
		t.Errorf("expected engine component to be flagged, got:\n%s", text)
	}
}

func Test_ComponentsHandler_DisableAndEnable(t *testing.T) {
	p := newProject(t)
	var changes int
	h := newTestComponentsHandler(p, &changes)
	resolve := newTestResolveHandler(p)

	result, _, _ := h.Handle(context.Background(), nil, ComponentsArgs{Action: "disable", Name: "pkgA"})
	if text := resultText(t, result); result.IsError || text != "Component pkgA disabled." {
		t.Fatalf("unexpected disable result: %s", text)
	}
	if changes != 1 {
		t.Errorf("expected OnChange once, got %d", changes)
	}

	res, _, _ := resolve.Handle(context.Background(), nil, ResolveArgs{RequiringDir: p.appDir, Specifier: "@pkgA/lib/x"})
	if !res.IsError {
		t.Error("expected @pkgA/lib/x to be unresolved after disabling pkgA")
	}

	result, _, _ = h.Handle(context.Background(), nil, ComponentsArgs{Action: "disable", Name: "pkgA"})
	if text := resultText(t, result); text != "Component pkgA already disabled." || changes != 1 {
		t.Errorf("expected no-op disable, got %s (changes %d)", text, changes)
	}

	h.Handle(context.Background(), nil, ComponentsArgs{Action: "ENABLE", Name: "pkgA"})
	res, _, _ = resolve.Handle(context.Background(), nil, ResolveArgs{RequiringDir: p.appDir, Specifier: "@pkgA/lib/x"})
	if res.IsError {
		t.Errorf("expected @pkgA/lib/x to resolve after re-enabling, got %s", resultText(t, res))
	}
}

func Test_ComponentsHandler_Errors(t *testing.T) {
	var changes int
	h := newTestComponentsHandler(newProject(t), &changes)

	tests := []struct {
		args ComponentsArgs
		want string
	}{
		{ComponentsArgs{Action: "toggle"}, "unknown action"},
		{ComponentsArgs{Action: "enable"}, "name parameter is required"},
		{ComponentsArgs{Action: "enable", Name: "nope"}, "Unknown component: nope"},
	}
	for _, tt := range tests {
		result, _, err := h.Handle(context.Background(), nil, tt.args)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text := resultText(t, result); !result.IsError || !strings.Contains(text, tt.want) {
			t.Errorf("%+v: expected %q, got %s", tt.args, tt.want, text)
		}
	}
	if changes != 0 {
		t.Errorf("expected no OnChange calls, got %d", changes)
	}
}
