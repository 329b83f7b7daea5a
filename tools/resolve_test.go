package tools

import (
	"context"
	"strings"
	"testing"
)

func newTestResolveHandler(p *project) *ResolveHandler {
	return &ResolveHandler{Cache: p.cache, Components: p.registry, Logger: discardLogger()}
}

func Test_ResolveHandler_EmptySpecifier(t *testing.T) {
	h := newTestResolveHandler(newProject(t))

	result, _, err := h.Handle(context.Background(), nil, ResolveArgs{Specifier: "  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError || !strings.Contains(resultText(t, result), "specifier parameter is required") {
		t.Errorf("expected specifier error, got %+v", result)
	}
}

func Test_ResolveHandler_Resolves(t *testing.T) {
	p := newProject(t)
	h := newTestResolveHandler(p)

	tests := []struct {
		specifier string
		wantPath  string
	}{
		{"./util.mjs", "/Content/JavaScript/app/util.mjs"},
		{"lodash", "/Content/PuertsDependencies/lodash/index.js"},
		{"@pkgA/lib/x", "/Plugins/pkgA/Content/JavaScript/lib/x.js"},
	}

	for _, tt := range tests {
		result, _, err := h.Handle(context.Background(), nil, ResolveArgs{RequiringDir: p.appDir, Specifier: tt.specifier})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.specifier, err)
		}
		text := resultText(t, result)
		if result.IsError {
			t.Errorf("%s: expected success, got %s", tt.specifier, text)
			continue
		}
		if !strings.Contains(text, tt.wantPath) {
			t.Errorf("%s: expected %s in output, got:\n%s", tt.specifier, tt.wantPath, text)
		}
		if strings.Contains(text, "Search roots") {
			t.Errorf("%s: roots listed without explain", tt.specifier)
		}
	}
}

func Test_ResolveHandler_Unresolved(t *testing.T) {
	p := newProject(t)
	h := newTestResolveHandler(p)

	result, _, err := h.Handle(context.Background(), nil, ResolveArgs{RequiringDir: p.appDir, Specifier: "missing-lib"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := resultText(t, result)
	if !result.IsError || !strings.HasPrefix(text, "Unresolved: missing-lib") {
		t.Errorf("expected unresolved result, got %s", text)
	}
}

func Test_ResolveHandler_Explain(t *testing.T) {
	p := newProject(t)
	h := newTestResolveHandler(p)

	result, _, err := h.Handle(context.Background(), nil, ResolveArgs{RequiringDir: p.appDir, Specifier: "lodash", Explain: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := resultText(t, result)
	for _, want := range []string{"Search roots", "requiring-directory", "ancestor-directory", "component-content-directory", "[component pkgA]", "dependency-vendor-directory", "project-script-root"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in explain output, got:\n%s", want, text)
		}
	}
	if strings.Contains(text, "EngineBits") {
		t.Errorf("engine components must not appear as search roots:\n%s", text)
	}
}

func Test_ResolveHandler_ExplainUnresolved(t *testing.T) {
	p := newProject(t)
	h := newTestResolveHandler(p)

	result, _, _ := h.Handle(context.Background(), nil, ResolveArgs{RequiringDir: p.appDir, Specifier: "@pkgB/x", Explain: true})
	text := resultText(t, result)
	if !result.IsError || !strings.Contains(text, "Search roots") {
		t.Errorf("expected unresolved result with roots, got:\n%s", text)
	}
	if strings.Contains(text, "[component pkgA]") {
		t.Errorf("scoped specifier for pkgB must skip pkgA:\n%s", text)
	}
}
