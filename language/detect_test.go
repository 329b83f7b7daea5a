package language

import "testing"

func Test_DetectKind(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{"Content/JavaScript/util.mjs", KindESModule},
		{"Content/JavaScript/legacy.cjs", KindCommonJS},
		{"Content/JavaScript/main.js", KindJavaScript},
		{"Content/JavaScript/Main.JS", KindJavaScript},
		{"Content/JavaScript/data.json", KindJSON},
		{"node_modules/lodash/package.json", KindPackageManifest},
		{"node_modules/lodash/Package.JSON", KindPackageManifest},
		{"TypeScript/game.ts", KindTypeScript},
		{"TypeScript/view.tsx", KindTypeScript},
		{"TypeScript/mod.mts", KindTypeScript},
		{"Content/texture.uasset", KindUnknown},
		{"Makefile", KindUnknown},
	}

	for _, tt := range tests {
		if got := DetectKind(tt.path); got != tt.want {
			t.Errorf("DetectKind(%s) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func Test_RefineKind(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		content string
		want    Kind
	}{
		{"import statement", KindJavaScript, "// header\nimport { a } from './a.js'\n", KindESModule},
		{"export statement", KindJavaScript, "export const x = 1\n", KindESModule},
		{"module.exports", KindJavaScript, "'use strict'\nmodule.exports = {}\n", KindCommonJS},
		{"require call", KindJavaScript, "const fs = require('fs')\n", KindCommonJS},
		{"no markers", KindJavaScript, "console.log(1)\n", KindJavaScript},
		{"non-js unchanged", KindJSON, "export const x = 1\n", KindJSON},
		{"mjs unchanged", KindESModule, "module.exports = {}\n", KindESModule},
	}

	for _, tt := range tests {
		if got := RefineKind(tt.kind, []byte(tt.content)); got != tt.want {
			t.Errorf("%s: RefineKind = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func Test_Kinds_CoversDetectableKinds(t *testing.T) {
	seen := make(map[Kind]bool)
	for _, k := range Kinds() {
		seen[k] = true
	}
	for _, k := range extensionToKind {
		if !seen[k] {
			t.Errorf("Kinds() is missing %s", k)
		}
	}
	if !seen[KindPackageManifest] || !seen[KindUnknown] {
		t.Error("Kinds() must include Package Manifest and Unknown")
	}
}
