// Package component keeps the host's list of script-contributing components,
// loaded from a YAML manifest and toggled at runtime.
package component

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/lexandro/modresolve-mcp/resolver"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownComponent = errors.New("unknown component")
	ErrInvalidManifest  = errors.New("invalid component manifest")
)

// Descriptor is one manifest entry.
type Descriptor struct {
	Name       string                 `yaml:"name"`
	Type       resolver.ComponentType `yaml:"type"`
	ContentDir string                 `yaml:"contentDir"`
	Enabled    bool                   `yaml:"enabled"`
}

// BaseDir is the component's root directory, the parent of its content directory.
func (d Descriptor) BaseDir() string {
	return path.Dir(d.ContentDir)
}

type manifest struct {
	Components []Descriptor `yaml:"components"`
}

// Registry holds the ordered component list. Safe for concurrent use.
// Every change bumps Generation so that wrapping caches can key on it.
type Registry struct {
	mu           sync.RWMutex
	manifestPath string
	components   []Descriptor
	generation   uint64
	logger       *slog.Logger
}

// NewRegistry loads the manifest at manifestPath. A missing manifest
// yields an empty registry; a malformed one is an error.
func NewRegistry(manifestPath string, logger *slog.Logger) (*Registry, error) {
	r := &Registry{manifestPath: manifestPath, logger: orDiscard(logger)}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewStaticRegistry builds a registry from descriptors without a manifest.
func NewStaticRegistry(components []Descriptor, logger *slog.Logger) *Registry {
	return &Registry{
		components: append([]Descriptor(nil), components...),
		generation: 1,
		logger:     orDiscard(logger),
	}
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}

// ManifestPath returns the manifest location, empty for static registries.
func (r *Registry) ManifestPath() string {
	return r.manifestPath
}

// Reload re-reads the manifest, discarding runtime enable/disable changes.
func (r *Registry) Reload() error {
	if r.manifestPath == "" {
		return nil
	}
	components, err := readManifest(r.manifestPath)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.components = components
	r.generation++
	r.logger.Info("component manifest loaded", "path", r.manifestPath, "components", len(components))
	return nil
}

// Enabled returns the enabled components in manifest order as a fresh slice.
func (r *Registry) Enabled() []resolver.Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	enabled := make([]resolver.Component, 0, len(r.components))
	for _, d := range r.components {
		if !d.Enabled {
			continue
		}
		enabled = append(enabled, resolver.Component{Name: d.Name, Type: d.Type, ContentDir: d.ContentDir})
	}
	return enabled
}

// All returns every descriptor, enabled or not.
func (r *Registry) All() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Descriptor(nil), r.components...)
}

// Generation changes whenever the component list or an enabled flag changes.
func (r *Registry) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

// SetEnabled toggles a component by name. It reports whether the flag changed.
func (r *Registry) SetEnabled(name string, enabled bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.components {
		if r.components[i].Name != name {
			continue
		}
		if r.components[i].Enabled == enabled {
			return false, nil
		}
		r.components[i].Enabled = enabled
		r.generation++
		r.logger.Info("component toggled", "name", name, "enabled", enabled)
		return true, nil
	}
	return false, fmt.Errorf("%w: %s", ErrUnknownComponent, name)
}

// readManifest parses and validates a manifest. Relative content
// directories are taken relative to the manifest's own directory.
func readManifest(manifestPath string) ([]Descriptor, error) {
	data, err := os.ReadFile(manifestPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading component manifest %s: %w", manifestPath, err)
	}

	var m manifest
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidManifest, manifestPath, err)
	}

	baseDir := filepath.Dir(manifestPath)
	seen := make(map[string]bool, len(m.Components))
	for i := range m.Components {
		d := &m.Components[i]
		if d.Name == "" {
			return nil, fmt.Errorf("%w: %s: entry %d has no name", ErrInvalidManifest, manifestPath, i)
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("%w: %s: duplicate component %q", ErrInvalidManifest, manifestPath, d.Name)
		}
		seen[d.Name] = true

		switch d.Type {
		case "":
			d.Type = resolver.ComponentProject
		case resolver.ComponentProject, resolver.ComponentEngine, resolver.ComponentEnterprise:
		default:
			return nil, fmt.Errorf("%w: %s: component %q has unknown type %q", ErrInvalidManifest, manifestPath, d.Name, d.Type)
		}

		if d.ContentDir == "" {
			return nil, fmt.Errorf("%w: %s: component %q has no contentDir", ErrInvalidManifest, manifestPath, d.Name)
		}
		contentDir := filepath.FromSlash(d.ContentDir)
		if !filepath.IsAbs(contentDir) {
			contentDir = filepath.Join(baseDir, contentDir)
		}
		d.ContentDir = filepath.ToSlash(filepath.Clean(contentDir))
	}
	return m.Components, nil
}
