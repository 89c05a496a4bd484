// Package diff computes API differences between two versions of a
// package's Interfaces map, supporting the `diff` and `bump` CLI
// commands.
package diff

import (
	"sort"

	"github.com/gren-lang/compiler/internal/artifact"
	"github.com/gren-lang/compiler/internal/modname"
	"github.com/gren-lang/compiler/internal/version"
)

// ChangeKind classifies one named export's fate between two interfaces.
type ChangeKind int

const (
	Added ChangeKind = iota
	Changed
	Removed
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "Added"
	case Changed:
		return "Changed"
	case Removed:
		return "Removed"
	default:
		return "Unknown"
	}
}

// Change is one named export's difference between an old and new
// Interface.
type Change struct {
	Name string
	Kind ChangeKind
}

// ModuleDiff is the set of export names added, changed and removed within
// a single module.
type ModuleDiff struct {
	Module  modname.Raw
	Added   []string
	Changed []string
	Removed []string
}

// IsEmpty reports whether this module has no API changes at all.
func (m ModuleDiff) IsEmpty() bool {
	return len(m.Added) == 0 && len(m.Changed) == 0 && len(m.Removed) == 0
}

// Report is the full diff between two builds' Interfaces maps.
type Report struct {
	Modules []ModuleDiff
}

// HasBreakingChanges reports whether any module lost an export or
// changed an existing export's signature — the condition that forces at
// least a MAJOR version bump.
func (r Report) HasBreakingChanges() bool {
	for _, m := range r.Modules {
		if len(m.Changed) > 0 || len(m.Removed) > 0 {
			return true
		}
	}
	return false
}

// HasAdditions reports whether any module gained an export. It does not
// look at removed or changed exports; HasBreakingChanges covers those.
func (r Report) HasAdditions() bool {
	for _, m := range r.Modules {
		if len(m.Added) > 0 {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the two builds expose an identical API.
func (r Report) IsEmpty() bool {
	for _, m := range r.Modules {
		if !m.IsEmpty() {
			return false
		}
	}
	return true
}

// Diff compares oldIfaces against newIfaces, module by module. A module
// present in one map but not the other counts every one of its exports as
// wholly Added or Removed.
func Diff(oldIfaces, newIfaces map[modname.Raw]artifact.Interface) Report {
	names := map[modname.Raw]bool{}
	for n := range oldIfaces {
		names[n] = true
	}
	for n := range newIfaces {
		names[n] = true
	}

	var mods []modname.Raw
	for n := range names {
		mods = append(mods, n)
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i] < mods[j] })

	var report Report
	for _, mod := range mods {
		oldI, hasOld := oldIfaces[mod]
		newI, hasNew := newIfaces[mod]
		md := ModuleDiff{Module: mod}

		switch {
		case hasOld && !hasNew:
			md.Removed = exportNames(oldI)
		case !hasOld && hasNew:
			md.Added = exportNames(newI)
		default:
			md = diffModule(mod, oldI, newI)
		}
		if !md.IsEmpty() {
			report.Modules = append(report.Modules, md)
		}
	}
	return report
}

func diffModule(mod modname.Raw, oldI, newI artifact.Interface) ModuleDiff {
	oldExports := exportSigs(oldI)
	newExports := exportSigs(newI)

	md := ModuleDiff{Module: mod}
	for name, sig := range oldExports {
		newSig, ok := newExports[name]
		switch {
		case !ok:
			md.Removed = append(md.Removed, name)
		case newSig != sig:
			md.Changed = append(md.Changed, name)
		}
	}
	for name := range newExports {
		if _, ok := oldExports[name]; !ok {
			md.Added = append(md.Added, name)
		}
	}
	sort.Strings(md.Added)
	sort.Strings(md.Changed)
	sort.Strings(md.Removed)
	return md
}

func exportSigs(i artifact.Interface) map[string]string {
	out := make(map[string]string, len(i.Types)+len(i.Values))
	for _, t := range i.Types {
		out[t.Name] = t.Canonical
	}
	for _, v := range i.Values {
		out[v.Name] = v.Canonical
	}
	return out
}

func exportNames(i artifact.Interface) []string {
	var out []string
	for name := range exportSigs(i) {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SuggestBump computes the required next version, per this package's "bump
// support": MAJOR if anything was changed or removed, MINOR if the API
// only grew, PATCH otherwise.
func SuggestBump(current version.Version, r Report) version.Version {
	switch {
	case r.HasBreakingChanges():
		return version.Version{Major: current.Major + 1}
	case r.HasAdditions():
		return version.Version{Major: current.Major, Minor: current.Minor + 1}
	default:
		return version.Version{Major: current.Major, Minor: current.Minor, Patch: current.Patch + 1}
	}
}
