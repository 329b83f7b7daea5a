package language

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"
)

// Kind names the role a file plays for the module loader.
type Kind string

const (
	KindESModule        Kind = "ES Module"
	KindCommonJS        Kind = "CommonJS"
	KindJavaScript      Kind = "JavaScript"
	KindJSON            Kind = "JSON"
	KindPackageManifest Kind = "Package Manifest"
	KindTypeScript      Kind = "TypeScript"
	KindUnknown         Kind = "Unknown"
)

// extensionToKind maps lower-case extensions (without dot) to kinds.
var extensionToKind = map[string]Kind{
	"mjs":  KindESModule,
	"cjs":  KindCommonJS,
	"js":   KindJavaScript,
	"json": KindJSON,
	"ts":   KindTypeScript,
	"mts":  KindTypeScript,
	"tsx":  KindTypeScript,
}

// DetectKind returns the kind of a file from its name alone.
// A package.json is a Package Manifest, not plain JSON.
func DetectKind(filePath string) Kind {
	if strings.EqualFold(filepath.Base(filePath), "package.json") {
		return KindPackageManifest
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filePath), "."))
	if kind, ok := extensionToKind[ext]; ok {
		return kind
	}
	return KindUnknown
}

// RefineKind narrows a plain JavaScript file to ES Module or CommonJS by
// looking at its top-level statements. Other kinds are returned unchanged.
func RefineKind(kind Kind, content []byte) Kind {
	if kind != KindJavaScript {
		return kind
	}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		switch {
		case bytes.HasPrefix(line, []byte("import ")),
			bytes.HasPrefix(line, []byte("import{")),
			bytes.HasPrefix(line, []byte("export ")):
			return KindESModule
		case bytes.Contains(line, []byte("module.exports")),
			bytes.Contains(line, []byte("exports.")),
			bytes.Contains(line, []byte("require(")):
			return KindCommonJS
		}
	}
	return kind
}

// Kinds lists every kind in display order.
func Kinds() []Kind {
	return []Kind{KindESModule, KindCommonJS, KindJavaScript, KindJSON, KindPackageManifest, KindTypeScript, KindUnknown}
}
