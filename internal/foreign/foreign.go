// Package foreign resolves a user module's import of a raw module name to
// the dependency package that exposes it. Exposed names are indexed in a
// radix trie — mirroring golang-dep's solver.go, which keeps a
// radix.Tree of ProjectRoot strings for its own lookups — but raw
// module names are compared as opaque strings, so resolution here only
// ever matches an exact exposed name.
package foreign

import (
	radix "github.com/armon/go-radix"

	"github.com/gren-lang/compiler/internal/artifact"
	"github.com/gren-lang/compiler/internal/modname"
	"github.com/gren-lang/compiler/internal/pkgname"
)

// entry is one package's claim to exposing a given raw module name.
type entry struct {
	owner pkgname.Name
	iface artifact.DependencyInterface
}

// Table indexes every exposed module across the resolved dependency set.
type Table struct {
	tree *radix.Tree
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{tree: radix.New()}
}

// Insert records that owner exposes mod with the given (already
// public-or-privatized, per its visibility rule) interface.
func (t *Table) Insert(mod modname.Raw, owner pkgname.Name, iface artifact.DependencyInterface) {
	key := string(mod)
	var entries []entry
	if v, ok := t.tree.Get(key); ok {
		entries = v.([]entry)
	}
	entries = append(entries, entry{owner: owner, iface: iface})
	t.tree.Insert(key, entries)
}

// Resolution is a sum type: ForeignSpecific when exactly
// one package exposes the imported name, ForeignAmbiguous when more than
// one does.
type Resolution struct {
	Specific  *artifact.DependencyInterface
	Ambiguous []pkgname.Name
}

// IsAmbiguous reports whether r is the ambiguous variant.
func (r Resolution) IsAmbiguous() bool { return r.Ambiguous != nil }

// Resolve looks up mod by exact exposed name. It reports ok=false if no
// package in the table exposes mod at all — the caller renders that as
// an unresolved-import error, not an ambiguity.
func Resolve(t *Table, mod modname.Raw) (Resolution, bool) {
	v, ok := t.tree.Get(string(mod))
	if !ok {
		return Resolution{}, false
	}
	return toResolution(v.([]entry)), true
}

func toResolution(entries []entry) Resolution {
	owners := map[string]bool{}
	var distinct []entry
	for _, e := range entries {
		if owners[e.owner.String()] {
			continue
		}
		owners[e.owner.String()] = true
		distinct = append(distinct, e)
	}
	if len(distinct) == 1 {
		iface := distinct[0].iface
		return Resolution{Specific: &iface}
	}
	names := make([]pkgname.Name, 0, len(distinct))
	for _, e := range distinct {
		names = append(names, e.owner)
	}
	return Resolution{Ambiguous: names}
}
