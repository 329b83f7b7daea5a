package resolver

// RootRole tags a search root with the phase of the search that produced it.
// Roles are listed in the order the phases run.
type RootRole int

const (
	RoleRequiringDir RootRole = iota
	RoleAncestor
	RoleComponent
	RoleDependency
	RoleProjectScripts
)

func (r RootRole) String() string {
	switch r {
	case RoleRequiringDir:
		return "requiring-directory"
	case RoleAncestor:
		return "ancestor-directory"
	case RoleComponent:
		return "component-content-directory"
	case RoleDependency:
		return "dependency-vendor-directory"
	case RoleProjectScripts:
		return "project-script-root"
	default:
		return "unknown"
	}
}

// ComponentType is the host's classification of a component.
// Only ComponentProject components take part in resolution.
type ComponentType string

const (
	ComponentProject    ComponentType = "project"
	ComponentEngine     ComponentType = "engine"
	ComponentEnterprise ComponentType = "enterprise"
)

// Component describes one enabled host component contributing a content directory.
type Component struct {
	Name       string
	Type       ComponentType
	ContentDir string
}

// SearchRoot is one directory the engine searches, together with the
// module name it searches for beneath it. Component, dependency and
// project roots search for the remapped form of a scoped specifier.
type SearchRoot struct {
	Dir       string
	Role      RootRole
	Specifier string
	Component string // set for RoleComponent only
}

// ResolvedModule is the outcome of a successful resolution.
type ResolvedModule struct {
	Path         string // normalized, slash-separated, as searched
	AbsolutePath string // canonical absolute form from the FileSystem
}

// Request is a single resolution request. Components is the host's
// current list of enabled components; it is read, never retained.
type Request struct {
	RequiringDir string
	Specifier    string
	Components   []Component
}
