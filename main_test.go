package main

import (
	"path/filepath"
	"testing"
)

func Test_parseFlags_Defaults(t *testing.T) {
	project := t.TempDir()

	opts, err := parseFlags([]string{"-project", project})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}

	checks := map[string][2]string{
		"scripts":      {opts.scriptRoot, filepath.Join(project, "Content", "JavaScript")},
		"dependencies": {opts.dependencyRoot, filepath.Join(project, "Content", "PuertsDependencies")},
		"components":   {opts.manifestPath, filepath.Join(project, "components.yaml")},
		"log file":     {opts.logFile, filepath.Join(project, "modresolve-mcp.log")},
	}
	for name, pair := range checks {
		if pair[0] != pair[1] {
			t.Errorf("%s = %q, want %q", name, pair[0], pair[1])
		}
	}
	if opts.scriptSubroot != "JavaScript" || opts.cacheSize != 4096 || opts.syncInterval != 300 || opts.maxResults != 50 {
		t.Errorf("unexpected defaults: %+v", opts)
	}
}

func Test_parseFlags_Overrides(t *testing.T) {
	project := t.TempDir()
	elsewhere := t.TempDir()

	opts, err := parseFlags([]string{
		"-project", project,
		"-scripts", "Scripts",
		"-dependencies", elsewhere,
		"-exclude", "**/*.test.js",
		"-exclude", "generated/**",
		"-cache-size", "0",
	})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}
	if opts.scriptRoot != filepath.Join(project, "Scripts") {
		t.Errorf("relative -scripts should resolve under the project, got %q", opts.scriptRoot)
	}
	if opts.dependencyRoot != elsewhere {
		t.Errorf("absolute -dependencies should be kept, got %q", opts.dependencyRoot)
	}
	if len(opts.excludes) != 2 || opts.excludes[1] != "generated/**" {
		t.Errorf("expected repeatable -exclude, got %v", opts.excludes)
	}
	if opts.cacheSize != 0 {
		t.Errorf("cacheSize = %d, want 0", opts.cacheSize)
	}
}

func Test_parseFlags_UnknownFlag(t *testing.T) {
	if _, err := parseFlags([]string{"-no-such-flag"}); err == nil {
		t.Error("expected an error for an unknown flag")
	}
}
