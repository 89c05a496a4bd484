// Package builder implements the Project Builder ("Details") engine:
// given a resolved dependency solution and the local
// outline, it produces per-package Artifacts (reusing cached ones whose
// fingerprint still matches) and the Details aggregate the Incremental
// Compile Engine consumes.
package builder

import (
	"time"

	"github.com/gren-lang/compiler/internal/artifact"
	"github.com/gren-lang/compiler/internal/modname"
	"github.com/gren-lang/compiler/internal/pkgname"
)

// BuildID is a monotonic per-project counter, incremented on every Load.
// It is a field of Details, not a global counter.
type BuildID uint64

// Local is one user-module's build record.
type Local struct {
	Path                       string
	LastModified               time.Time
	Imports                    []modname.Raw
	IsMainCandidate            bool
	LastInterfaceChangeBuildID BuildID
	LastCompileBuildID         BuildID
}

// Stale reports whether l needs recompiling given the current file mtime
// and, for each of its imports, that import's current Local record (if
// it has one — a foreign import has none and never forces a recompile on
// its own account beyond what the dependency's own Artifacts fingerprint
// already captures).
//
// The three rules below are checked in order; time-equality, not
// greater-than, is deliberate: it must catch
// both edits and a checkout to an older revision.
func (l *Local) Stale(currentModTime time.Time, importRecords map[modname.Raw]*Local) bool {
	if l == nil {
		return true
	}
	if !l.LastModified.Equal(currentModTime) {
		return true
	}
	for _, imp := range l.Imports {
		other, ok := importRecords[imp]
		if !ok {
			continue
		}
		if other.LastInterfaceChangeBuildID > l.LastCompileBuildID {
			return true
		}
	}
	return false
}

// Foreign is one foreign module's owning package plus every other
// dependency package that also exposes a module under that same name
// ambiguity is only an error if a user import actually resolves to it.
type Foreign struct {
	Owner                   pkgname.Name
	OtherPackagesAlsoExpose []pkgname.Name
}

// Details is the aggregated build state persisted at .gren/details.dat.
type Details struct {
	Outline        []byte // the validated gren.json bytes this Details was built from
	OutlineModTime time.Time
	ID             BuildID
	Locals         map[modname.Raw]*Local
	Foreigns       map[modname.Raw]Foreign
	Artifacts      map[pkgname.Name]artifact.Artifacts
}
