package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/lexandro/modresolve-mcp/index"
	"github.com/lexandro/modresolve-mcp/language"
)

func newTestSearchHandler(t *testing.T) *SearchHandler {
	t.Helper()
	sources, err := index.NewSourceIndex()
	if err != nil {
		t.Fatalf("failed to create source index: %v", err)
	}
	t.Cleanup(func() { sources.Close() })

	add := func(namespace, rel, content string) {
		file := &index.ModuleFile{
			Key:       index.MakeKey(namespace, rel),
			Namespace: namespace,
			Kind:      language.RefineKind(language.DetectKind(rel), []byte(content)),
		}
		if err := sources.Index(file, content); err != nil {
			t.Fatal(err)
		}
	}
	add(index.NamespaceScripts, "app/main.js", "const util = require('./util')\nutil.greet('hello')\n")
	add(index.NamespaceVendor, "greeter/index.js", "module.exports.greet = name => 'hello ' + name\n")
	return &SearchHandler{Sources: sources, Logger: discardLogger()}
}

func Test_SearchHandler_EmptyQuery(t *testing.T) {
	h := newTestSearchHandler(t)

	result, _, err := h.Handle(context.Background(), nil, SearchArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError || !strings.Contains(resultText(t, result), "query parameter is required") {
		t.Errorf("expected query error, got %+v", result)
	}
}

func Test_SearchHandler_Matches(t *testing.T) {
	h := newTestSearchHandler(t)

	result, _, _ := h.Handle(context.Background(), nil, SearchArgs{Query: "hello"})
	text := resultText(t, result)
	if !strings.Contains(text, "── scripts/app/main.js ──") || !strings.Contains(text, "── vendor/greeter/index.js ──") {
		t.Errorf("expected both modules, got:\n%s", text)
	}
}

func Test_SearchHandler_KeyGlob(t *testing.T) {
	h := newTestSearchHandler(t)

	result, _, _ := h.Handle(context.Background(), nil, SearchArgs{Query: "hello", KeyGlob: "vendor/**", ContextLines: -1})
	text := resultText(t, result)
	if strings.Contains(text, "scripts/") || !strings.Contains(text, "Found 1 matches in 1 modules") {
		t.Errorf("expected vendor match only, got:\n%s", text)
	}
}

func Test_SearchHandler_InvalidRegex(t *testing.T) {
	h := newTestSearchHandler(t)

	result, _, _ := h.Handle(context.Background(), nil, SearchArgs{Query: "/([/"})
	if !result.IsError || !strings.HasPrefix(resultText(t, result), "Search error:") {
		t.Errorf("expected search error, got %s", resultText(t, result))
	}
}
