// Package outline implements the validated, in-memory form of gren.json:
// the Outline type, in its Application and Package variants, plus the
// invariants checked at load time.
package outline

import (
	"github.com/gren-lang/compiler/internal/modname"
	"github.com/gren-lang/compiler/internal/pkgname"
	"github.com/gren-lang/compiler/internal/version"
)

// Outline is the validated project manifest. Exactly one of Application or
// Package is non-nil.
type Outline struct {
	Application *Application
	Package     *Package
}

// IsApplication reports whether this is the application variant.
func (o *Outline) IsApplication() bool { return o.Application != nil }

// IsPackage reports whether this is the package variant.
func (o *Outline) IsPackage() bool { return o.Package != nil }

// Application is the "type":"application" manifest variant.
type Application struct {
	GrenVersion       version.Version
	Platform          version.Platform
	SourceDirectories []string
	Direct            map[pkgname.Name]version.Version
	Indirect          map[pkgname.Name]version.Version
}

// ExposedHeader groups exposed modules under an optional documentation
// header; the unheaded (flat-list) form is represented as a single group
// with an empty Header.
type ExposedHeader struct {
	Header  string
	Modules []modname.Raw
}

// ExposedModules is the package schema's exposed-modules field, which may
// appear as a flat list or as a Header -> [module] map in gren.json.
type ExposedModules struct {
	Headers []ExposedHeader
}

// Flatten returns every exposed module, ignoring header grouping: groups
// in Headers order, modules within a group in declaration order. For the
// flat-list form that is gren.json's order; for the grouped form Load
// builds Headers from a decoded Go map, so the order of the groups is not
// gren.json's and can differ between loads.
func (e ExposedModules) Flatten() []modname.Raw {
	var out []modname.Raw
	for _, h := range e.Headers {
		out = append(out, h.Modules...)
	}
	return out
}

// Package is the "type":"package" manifest variant.
type Package struct {
	Name           pkgname.Name
	Summary        string
	License        string
	Version        version.Version
	Platform       version.Platform
	ExposedModules ExposedModules
	GrenVersion    version.Constraint
	Dependencies   map[pkgname.Name]version.Constraint
}
