// Package resolver implements the Dependency Resolver: a
// backtracking depth-first search over package versions, newest first,
// directly modeled on golang-dep's solver.go. Because a Gren package's
// dependency graph is package-level (exposed modules are a fixed,
// manifest-declared unit, with no per-subpackage reachability step the
// way Go import paths require), this solver carries one queue entry per
// pkgname.Name rather than golang-dep's (ProjectRoot, packages-within)
// pair.
package resolver

import (
	"context"
	"sort"

	"github.com/gren-lang/compiler/internal/errs"
	"github.com/gren-lang/compiler/internal/outline"
	"github.com/gren-lang/compiler/internal/pkgname"
	"github.com/gren-lang/compiler/internal/registry"
	"github.com/gren-lang/compiler/internal/version"
)

// Source is the narrow view of registrycache.Cache the solver needs: an
// online path and a disk-only offline path for both version listing and
// manifest retrieval.
type Source interface {
	Versions(ctx context.Context, name pkgname.Name) ([]version.Version, error)
	VersionsOffline(name pkgname.Name) ([]version.Version, error)
	Outline(ctx context.Context, name pkgname.Name, v version.Version) (*outline.Outline, error)
	OutlineOffline(name pkgname.Name, v version.Version) (*outline.Outline, error)
}

// Solution maps every transitively required package to the exact version
// the solver selected for it.
type Solution map[pkgname.Name]version.Version

// TraceLogger receives one line per solver decision when tracing is
// enabled (mirroring golang-dep's trace.go indentation style); nil
// disables tracing.
type TraceLogger interface {
	Printf(format string, args ...any)
}

// Params bundles the solver's inputs, mirroring golang-dep's
// SolveParameters.
type Params struct {
	RootPlatform version.Platform
	Constraints  map[pkgname.Name]version.Constraint
	Compiler     version.Version
	Trace        TraceLogger
}

type solver struct {
	src      Source
	params   Params
	offline  bool
	selected Solution
	depth    int
}

// Solve attempts an online search first; if the registry is ever
// unreachable during the search it restarts restricted to the local
// disk cache and, on failure there, reports NoOfflineSolution rather than
// NoSolution so callers can render a distinct UX for that case.
func Solve(ctx context.Context, src Source, params Params) (Solution, error) {
	s := &solver{src: src, params: params, selected: Solution{}}
	sol, err := s.run(ctx)
	if err == nil {
		return sol, nil
	}
	if _, unreachable := err.(*unreachableErr); !unreachable {
		return nil, err
	}

	offline := &solver{src: src, params: params, selected: Solution{}, offline: true}
	sol, offlineErr := offline.run(ctx)
	if offlineErr != nil {
		return nil, &errs.SolverError{Kind: errs.NoOfflineSolution}
	}
	return sol, nil
}

type unreachableErr struct{ cause error }

func (e *unreachableErr) Error() string { return "registry unreachable: " + e.cause.Error() }
func (e *unreachableErr) Unwrap() error { return e.cause }

func (s *solver) run(ctx context.Context) (Solution, error) {
	constraints := make(map[pkgname.Name]version.Constraint, len(s.params.Constraints))
	for k, v := range s.params.Constraints {
		constraints[k] = v
	}
	ok, err := s.solve(ctx, constraints)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &errs.SolverError{Kind: errs.NoSolution}
	}
	return s.selected, nil
}

// solve picks the next unselected package named in constraints and tries
// its candidate versions newest-first, recursing after each tentative
// pick; it backtracks (returns false) when every candidate of some
// package fails, letting the caller try its own next candidate.
func (s *solver) solve(ctx context.Context, constraints map[pkgname.Name]version.Constraint) (bool, error) {
	name, ok := s.nextUnselected(constraints)
	if !ok {
		return true, nil // every named package has a selected version
	}

	versions, err := s.listVersions(ctx, name)
	if err != nil {
		return false, err
	}
	versions = filterSatisfying(versions, constraints[name])

	s.depth++
	defer func() { s.depth-- }()

	for _, v := range versions {
		s.trace("trying %s@%s", name, v)
		o, err := s.fetchOutline(ctx, name, v)
		if err != nil {
			return false, err
		}
		if !o.IsPackage() {
			continue // a package can only depend on other packages, never an application
		}
		if !version.CompatibleWith(s.params.RootPlatform, o.Package.Platform) {
			s.trace("  %s@%s rejected: platform %s incompatible with root %s", name, v, o.Package.Platform, s.params.RootPlatform)
			continue
		}
		if !o.Package.GrenVersion.AcceptsCurrent(s.params.Compiler) {
			s.trace("  %s@%s rejected: gren-version constraint excludes this compiler", name, v)
			continue
		}

		next, ok := intersect(constraints, o.Package.Dependencies)
		if !ok {
			s.trace("  %s@%s rejected: dependency constraints disjoint with existing selection", name, v)
			continue
		}

		s.selected[name] = v
		done, err := s.solve(ctx, next)
		if err != nil {
			return false, err
		}
		if done {
			s.trace("✓ %s@%s", name, v)
			return true, nil
		}
		s.trace("✗ backtracking from %s@%s", name, v)
		delete(s.selected, name)
	}

	return false, nil
}

func (s *solver) nextUnselected(constraints map[pkgname.Name]version.Constraint) (pkgname.Name, bool) {
	names := make([]pkgname.Name, 0, len(constraints))
	for n := range constraints {
		if _, done := s.selected[n]; !done {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return pkgname.Name{}, false
	}
	sort.Slice(names, func(i, j int) bool { return names[i].LessThan(names[j]) })
	return names[0], true
}

func (s *solver) listVersions(ctx context.Context, name pkgname.Name) ([]version.Version, error) {
	if s.offline {
		return s.src.VersionsOffline(name)
	}
	vs, err := s.src.Versions(ctx, name)
	if err != nil {
		return nil, &unreachableErr{cause: err}
	}
	return vs, nil
}

func (s *solver) fetchOutline(ctx context.Context, name pkgname.Name, v version.Version) (*outline.Outline, error) {
	if s.offline {
		o, err := s.src.OutlineOffline(name, v)
		if err != nil {
			return nil, &errs.SolverError{Kind: errs.BadCachedOutline, Package: name, Version: v, Cause: err}
		}
		return o, nil
	}
	o, err := s.src.Outline(ctx, name, v)
	if err != nil {
		if err == registry.ErrUnavailable {
			return nil, &unreachableErr{cause: err}
		}
		return nil, &errs.SolverError{Kind: errs.GitFailure, Package: name, Cause: err}
	}
	return o, nil
}

func (s *solver) trace(format string, args ...any) {
	if s.params.Trace == nil {
		return
	}
	indent := ""
	for i := 0; i < s.depth; i++ {
		indent += "| "
	}
	s.params.Trace.Printf(indent+format, args...)
}

// filterSatisfying returns versions (assumed newest-first, per registry
// contract) that c.Matches; an unset c (Low==High==zero) is treated as
// "anything goes" for the root package's own direct requirement bootstrap.
func filterSatisfying(versions []version.Version, c version.Constraint) []version.Version {
	var out []version.Version
	zero := version.Constraint{}
	for _, v := range versions {
		if c == zero || c.Matches(v) {
			out = append(out, v)
		}
	}
	return out
}

// intersect merges newDeps into the running constraint set, tightening
// any package already constrained and adding any newly introduced one.
// ok is false if any intersection is empty.
func intersect(existing map[pkgname.Name]version.Constraint, newDeps map[pkgname.Name]version.Constraint) (map[pkgname.Name]version.Constraint, bool) {
	merged := make(map[pkgname.Name]version.Constraint, len(existing)+len(newDeps))
	for k, v := range existing {
		merged[k] = v
	}
	for name, c := range newDeps {
		if cur, ok := merged[name]; ok {
			tight, ok := cur.Intersect(c)
			if !ok {
				return nil, false
			}
			merged[name] = tight
		} else {
			merged[name] = c
		}
	}
	return merged, true
}
