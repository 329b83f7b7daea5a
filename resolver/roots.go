package resolver

import "strings"

// ancestorExtensions disable the ancestor walk when a bare specifier ends
// in one of them. Narrower than verbatimExtensions on purpose.
var ancestorExtensions = []string{".js", ".mjs"}

// rootSource produces the roots of one search phase.
type rootSource func(r *Resolver, req Request, scope scopedSpecifier) []SearchRoot

// phases run in order; the first root yielding a module wins.
var phases = []rootSource{
	requiringDirRoots,
	ancestorRoots,
	componentRoots,
	dependencyRoots,
	projectScriptRoots,
}

// SearchRoots lists, in order, every root Resolve would search for req.
func (r *Resolver) SearchRoots(req Request) []SearchRoot {
	scope := splitScoped(req.Specifier)
	var roots []SearchRoot
	for _, phase := range phases {
		roots = append(roots, phase(r, req, scope)...)
	}
	return roots
}

func requiringDirRoots(_ *Resolver, req Request, _ scopedSpecifier) []SearchRoot {
	return []SearchRoot{{Dir: req.RequiringDir, Role: RoleRequiringDir, Specifier: req.Specifier}}
}

func ancestorRoots(r *Resolver, req Request, _ scopedSpecifier) []SearchRoot {
	if req.RequiringDir == "" || !isBare(req.Specifier) {
		return nil
	}
	var roots []SearchRoot
	for _, dir := range ancestors(req.RequiringDir) {
		if r.isVendorDir(dir) {
			continue
		}
		roots = append(roots, SearchRoot{Dir: dir, Role: RoleAncestor, Specifier: req.Specifier})
	}
	return roots
}

func componentRoots(r *Resolver, req Request, scope scopedSpecifier) []SearchRoot {
	var roots []SearchRoot
	for _, c := range req.Components {
		if c.Type != ComponentProject {
			continue
		}
		if scope.scoped && c.Name != scope.component {
			continue
		}
		roots = append(roots, SearchRoot{
			Dir:       joinPath(c.ContentDir, r.cfg.ScriptSubroot),
			Role:      RoleComponent,
			Specifier: scope.remapped,
			Component: c.Name,
		})
	}
	return roots
}

func dependencyRoots(r *Resolver, _ Request, scope scopedSpecifier) []SearchRoot {
	return []SearchRoot{{Dir: r.cfg.DependencyRoot, Role: RoleDependency, Specifier: scope.remapped}}
}

func projectScriptRoots(r *Resolver, _ Request, scope scopedSpecifier) []SearchRoot {
	return []SearchRoot{{Dir: r.cfg.ScriptRoot, Role: RoleProjectScripts, Specifier: scope.remapped}}
}

// isBare reports whether specifier names a package rather than a path:
// no separator at all and no ".js"/".mjs" suffix.
func isBare(specifier string) bool {
	return !strings.Contains(specifier, "/") && !hasExtension(specifier, ancestorExtensions)
}

// ancestors returns the strict ancestors of dir, nearest first. The
// filesystem root and a bare volume marker are never returned.
func ancestors(dir string) []string {
	normalized := Normalize(dir)
	rooted := strings.HasPrefix(normalized, "/")
	segments := splitSegments(normalized)

	floor := 0
	if len(segments) > 0 && isVolume(segments[0]) {
		floor = 1
	}

	var out []string
	for n := len(segments) - 1; n > floor; n-- {
		joined := strings.Join(segments[:n], "/")
		if rooted {
			joined = "/" + joined
		}
		out = append(out, joined)
	}
	return out
}

type scopedSpecifier struct {
	scoped    bool
	component string
	remapped  string
}

// splitScoped decomposes "@name/rest" into component "name" and remapped
// specifier "/rest". "@name" alone yields an empty remapped specifier.
// Unscoped specifiers are returned unchanged.
func splitScoped(specifier string) scopedSpecifier {
	if !strings.HasPrefix(specifier, "@") {
		return scopedSpecifier{remapped: specifier}
	}
	name, rest, found := strings.Cut(specifier[1:], "/")
	if !found {
		return scopedSpecifier{scoped: true, component: name}
	}
	return scopedSpecifier{scoped: true, component: name, remapped: "/" + rest}
}
