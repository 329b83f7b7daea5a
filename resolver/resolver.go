// Package resolver maps a module specifier to a script file on disk using
// CommonJS-style lookup layered over the host's search roots: the requiring
// directory and its ancestors, enabled project components, the dependency
// vendor root and the project script root.
//
// A Resolver holds only configuration. Every call works from its arguments
// and the live filesystem, so one Resolver may serve concurrent callers.
package resolver

import (
	"io"
	"log/slog"
	"strings"
)

const (
	DefaultScriptSubroot = "JavaScript"
	DefaultVendorFolder  = "node_modules"
)

// Config holds the fixed roots and folder names of the host.
type Config struct {
	// ScriptRoot is the project's own script directory.
	ScriptRoot string
	// DependencyRoot holds vendored dependencies shared by the project.
	DependencyRoot string
	// ScriptSubroot is joined to each component's content directory.
	ScriptSubroot string
	// VendorFolder is the nested dependency folder probed beneath any root.
	VendorFolder string
}

// Resolver resolves specifiers and loads the resolved files.
type Resolver struct {
	cfg    Config
	fs     FileSystem
	logger *slog.Logger
}

// New creates a Resolver. A nil fsys means the OS filesystem and a nil
// logger discards output. Roots are converted to slash form by the caller.
func New(cfg Config, fsys FileSystem, logger *slog.Logger) *Resolver {
	if cfg.ScriptSubroot == "" {
		cfg.ScriptSubroot = DefaultScriptSubroot
	}
	if cfg.VendorFolder == "" {
		cfg.VendorFolder = DefaultVendorFolder
	}
	if fsys == nil {
		fsys = OSFileSystem{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{cfg: cfg, fs: fsys, logger: logger}
}

// Config returns the resolver's configuration with defaults applied.
func (r *Resolver) Config() Config {
	return r.cfg
}

// Resolve runs the search phases for req and returns the first match.
// The boolean is false when the module was not found anywhere; that is an
// ordinary outcome, not an error. Empty specifiers are never found.
func (r *Resolver) Resolve(req Request) (ResolvedModule, bool) {
	m, _, ok := r.Trace(req)
	return m, ok
}

// Trace is Resolve that also returns the roots it searched, in order,
// ending with the one that produced the match.
func (r *Resolver) Trace(req Request) (ResolvedModule, []SearchRoot, bool) {
	if strings.TrimSpace(req.Specifier) == "" {
		return ResolvedModule{}, nil, false
	}

	roots := r.SearchRoots(req)
	for i, root := range roots {
		m, ok := r.SearchInDirectory(root.Dir, root.Specifier)
		if !ok {
			continue
		}
		r.logger.Debug("module resolved",
			"specifier", req.Specifier,
			"requiringDir", req.RequiringDir,
			"role", root.Role.String(),
			"root", root.Dir,
			"path", m.AbsolutePath,
		)
		return m, roots[:i+1], true
	}

	r.logger.Debug("module unresolved", "specifier", req.Specifier, "requiringDir", req.RequiringDir)
	return ResolvedModule{}, roots, false
}
