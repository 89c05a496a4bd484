// Package artifact holds the per-module Interface and per-package Artifacts
// / ArtifactCache types: the compiled output the Project
// Builder produces and persists, and the Incremental Compile Engine
// consumes when resolving foreign imports.
package artifact

import (
	"github.com/gren-lang/compiler/internal/modname"
	"github.com/gren-lang/compiler/internal/pkgname"
	"github.com/gren-lang/compiler/internal/version"
)

// TypeSig is one exported type and its canonical (fully-resolved) form, as
// reported by the external type checker.
type TypeSig struct {
	Name      string
	Canonical string
}

// ValueSig is one exported value and its canonical type.
type ValueSig struct {
	Name      string
	Canonical string
}

// Interface is the public signature of a compiled module.
type Interface struct {
	Module modname.Raw
	Types  []TypeSig
	Values []ValueSig
}

// UnionInfo and AliasInfo carry the extra structural detail a privatized
// dependency interface keeps around for the optimizer (pattern-match
// exhaustiveness over a union's constructors, alias expansion) even though
// consumers outside the direct-dependency boundary can no longer see the
// underlying Interface's full signature.
type UnionInfo struct {
	Name     string
	Variants []string
}

type AliasInfo struct {
	Name   string
	Target string
}

// Visibility tags a DependencyInterface as coming from a direct dependency
// of the consumer (Public) or from a transitive one (Private).
type Visibility int

const (
	Public Visibility = iota
	Private
)

// DependencyInterface is a dependency's interface plus its visibility to the
// current consumer.
type DependencyInterface struct {
	Visibility Visibility
	Iface      Interface
	Unions     []UnionInfo // only populated when Visibility == Private
	Aliases    []AliasInfo // only populated when Visibility == Private
}

// Privatize re-tags a dependency interface as Private for transitive
// consumers: it keeps the full Iface and attaches the given union/alias
// metadata the optimizer needs.
func Privatize(pub DependencyInterface, unions []UnionInfo, aliases []AliasInfo) DependencyInterface {
	return DependencyInterface{
		Visibility: Private,
		Iface:      pub.Iface,
		Unions:     unions,
		Aliases:    aliases,
	}
}

// Graph is the optimizer's intermediate representation. Its internal
// structure is produced and consumed entirely by the external optimizer and
// code generator, both treated as a black box; the core only stores,
// transports, and links these opaque blobs.
type Graph []byte

// Artifacts is what the Project Builder produces for one resolved
// dependency package: its raw-module interfaces (keyed by the module's raw
// name, since within one package raw names are unambiguous) plus the linked
// optimized object graph.
type Artifacts struct {
	Interfaces map[modname.Raw]DependencyInterface
	Graph      Graph
}

// Fingerprint is the exact-version map of a package's direct dependencies,
// as resolved for one particular build. The same package version can have
// multiple valid fingerprints because its direct-dep resolutions vary
// across consuming projects.
type Fingerprint map[pkgname.Name]version.Version

// Key returns a canonical string encoding suitable for set membership and
// equality comparison (Go maps are not themselves comparable or hashable).
func (f Fingerprint) Key() string {
	names := make([]pkgname.Name, 0, len(f))
	for n := range f {
		names = append(names, n)
	}
	// Simple insertion sort; fingerprints are small (one package's direct
	// deps), so an O(n^2) sort avoids pulling in sort for a handful of
	// entries.
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j].LessThan(names[j-1]); j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
	var out []byte
	for _, n := range names {
		out = append(out, n.String()...)
		out = append(out, '@')
		out = append(out, f[n].String()...)
		out = append(out, ';')
	}
	return string(out)
}

// Equal reports whether f and other pin the same packages to the same
// versions.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.Key() == other.Key()
}

// ArtifactCache is the persisted, per-package-version cache: the set of
// fingerprints under which the stored Artifacts are considered valid, plus
// the Artifacts themselves. A build encountering a new fingerprint replaces
// Artifacts with a fresh build and appends the new fingerprint to the set —
// the set never shrinks: append-only, never garbage-collected during a
// run.
type ArtifactCache struct {
	Fingerprints []Fingerprint
	Artifacts    Artifacts
}

// HasFingerprint reports whether fp is already recorded as valid.
func (c *ArtifactCache) HasFingerprint(fp Fingerprint) bool {
	for _, f := range c.Fingerprints {
		if f.Equal(fp) {
			return true
		}
	}
	return false
}

// RecordBuild replaces the cached Artifacts with a fresh build and appends
// fp to the fingerprint set if not already present.
func (c *ArtifactCache) RecordBuild(fp Fingerprint, a Artifacts) {
	c.Artifacts = a
	if !c.HasFingerprint(fp) {
		c.Fingerprints = append(c.Fingerprints, fp)
	}
}
