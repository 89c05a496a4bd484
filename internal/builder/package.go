package builder

import (
	"context"

	"github.com/pkg/errors"

	"github.com/gren-lang/compiler/internal/artifact"
	"github.com/gren-lang/compiler/internal/crawler"
	"github.com/gren-lang/compiler/internal/errs"
	"github.com/gren-lang/compiler/internal/external"
	"github.com/gren-lang/compiler/internal/foreign"
	gcodec "github.com/gren-lang/compiler/internal/codec"
	"github.com/gren-lang/compiler/internal/modname"
	"github.com/gren-lang/compiler/internal/outline"
	"github.com/gren-lang/compiler/internal/pkgname"
	"github.com/gren-lang/compiler/internal/registrycache"
	"github.com/gren-lang/compiler/internal/version"
)

// Toolchain bundles the black-box collaborators the per-package build
// protocol needs.
type Toolchain struct {
	Parser      external.Parser
	TypeChecker external.TypeChecker
	Optimizer   external.Optimizer
}

// BuildPackage runs the per-package build protocol's
// 1-4 for one resolved dependency: compute its fingerprint, reuse a
// cached ArtifactCache entry if the fingerprint is already recorded,
// otherwise crawl and compile its exposed modules against the visible
// interfaces contributed by its own already-built direct dependencies.
func BuildPackage(
	ctx context.Context,
	name pkgname.Name,
	v version.Version,
	cache *registrycache.Cache,
	fp artifact.Fingerprint,
	deps map[pkgname.Name]artifact.Artifacts,
	directDeps map[pkgname.Name]bool,
	tc Toolchain,
) (artifact.Artifacts, error) {
	existing, err := readArtifactCache(cache.ArtifactsPath(name, v))
	if err == nil && existing.HasFingerprint(fp) {
		return existing.Artifacts, nil
	}

	o, err := cache.Outline(ctx, name, v)
	if err != nil {
		return artifact.Artifacts{}, &errs.DetailsError{Package: name, Version: v, Fingerprint: fp.Key(), Message: "reading manifest", Cause: err}
	}
	if !o.IsPackage() {
		return artifact.Artifacts{}, &errs.DetailsError{Package: name, Version: v, Message: "dependency manifest is not a package"}
	}

	srcDir, err := cache.FetchSource(ctx, name, v)
	if err != nil {
		return artifact.Artifacts{}, &errs.DetailsError{Package: name, Version: v, Fingerprint: fp.Key(), Message: "fetching source", Cause: err}
	}

	ft := foreignTableFrom(deps, directDeps)
	localIndex, err := crawler.IndexSourceDirs([]string{srcDir})
	if err != nil {
		return artifact.Artifacts{}, &errs.DetailsError{Package: name, Version: v, Fingerprint: fp.Key(), Message: "crawling source", Cause: err}
	}

	exposed := o.Package.ExposedModules.Flatten()
	if err := crawler.ValidateEntry(exposed, localIndex); err != nil {
		return artifact.Artifacts{}, &errs.DetailsError{Package: name, Version: v, Fingerprint: fp.Key(), Message: "crawling exposed modules", Cause: err}
	}
	result, err := crawler.Crawl(exposed, localIndex, tc.Parser, ft, false, nil)
	if err != nil {
		return artifact.Artifacts{}, &errs.DetailsError{Package: name, Version: v, Fingerprint: fp.Key(), Message: "crawling exposed modules", Cause: err}
	}

	compiled, err := compileStatuses(result, tc.TypeChecker)
	if err != nil {
		return artifact.Artifacts{}, &errs.DetailsError{Package: name, Version: v, Fingerprint: fp.Key(), Message: "compiling", Cause: err}
	}

	a, err := aggregate(o, compiled, tc.Optimizer)
	if err != nil {
		return artifact.Artifacts{}, &errs.DetailsError{Package: name, Version: v, Fingerprint: fp.Key(), Message: "linking", Cause: err}
	}

	if existing == nil {
		existing = &artifact.ArtifactCache{}
	}
	existing.RecordBuild(fp, a)
	if err := writeArtifactCache(cache.ArtifactsPath(name, v), *existing); err != nil {
		return artifact.Artifacts{}, &errs.DetailsError{Package: name, Version: v, Fingerprint: fp.Key(), Message: "persisting artifacts", Cause: err}
	}

	return a, nil
}

// compiled holds one module's type-checked Interface and local graph.
type compiled struct {
	iface artifact.Interface
	graph external.LocalGraph
}

func compileStatuses(result *crawler.Result, tc external.TypeChecker) (map[modname.Raw]compiled, error) {
	out := map[modname.Raw]compiled{}
	for _, mod := range result.Order {
		st := result.Statuses[mod]
		if st.Kind != crawler.SLocal {
			continue
		}
		visible := external.VisibleInterfaces{}
		for _, imp := range st.Parsed.Imports {
			impStatus := result.Statuses[imp]
			switch impStatus.Kind {
			case crawler.SLocal:
				visible[imp] = out[imp].iface
			case crawler.SForeign:
				if impStatus.Foreign.IsAmbiguous() {
					return nil, &errs.BuildError{Kind: errs.AmbiguousExposed, Message: "import " + string(imp) + " is ambiguous among multiple dependencies"}
				}
				visible[imp] = impStatus.Foreign.Specific.Iface
			}
		}
		iface, graph, err := tc.Check(st.Parsed, visible)
		if err != nil {
			return nil, &errs.BuildError{Kind: errs.BadModule, Message: "type error in " + string(mod), Cause: err}
		}
		out[mod] = compiled{iface: iface, graph: graph}
	}
	return out, nil
}

func aggregate(o *outline.Outline, compiled map[modname.Raw]compiled, opt external.Optimizer) (artifact.Artifacts, error) {
	exposedSet := map[modname.Raw]bool{}
	for _, m := range o.Package.ExposedModules.Flatten() {
		exposedSet[m] = true
	}

	interfaces := map[modname.Raw]artifact.DependencyInterface{}
	locals := map[modname.Raw]external.LocalGraph{}
	for mod, c := range compiled {
		locals[mod] = c.graph
		if exposedSet[mod] {
			interfaces[mod] = artifact.DependencyInterface{Visibility: artifact.Public, Iface: c.iface}
		}
	}

	graph, err := opt.Link(locals)
	if err != nil {
		return artifact.Artifacts{}, errors.Wrap(err, "linking package graph")
	}
	return artifact.Artifacts{Interfaces: interfaces, Graph: graph}, nil
}

// PackageInterfaces crawls and type-checks name@v's exposed modules and
// returns just their Interfaces, skipping the link/artifact-cache steps
// BuildPackage performs. `diff` and `bump` use this to compare two
// published versions' API surfaces without needing a full dependency
// build. Foreign imports are not resolved here (an empty foreign.Table
// is used), so this only succeeds for packages whose exposed modules
// import no foreign package — a known limitation, see DESIGN.md.
func (b *Builder) PackageInterfaces(ctx context.Context, name pkgname.Name, v version.Version) (map[modname.Raw]artifact.Interface, error) {
	o, err := b.Cache.Outline(ctx, name, v)
	if err != nil {
		return nil, &errs.DetailsError{Package: name, Version: v, Message: "reading manifest", Cause: err}
	}
	if !o.IsPackage() {
		return nil, &errs.DetailsError{Package: name, Version: v, Message: "dependency manifest is not a package"}
	}

	srcDir, err := b.Cache.FetchSource(ctx, name, v)
	if err != nil {
		return nil, &errs.DetailsError{Package: name, Version: v, Message: "fetching source", Cause: err}
	}

	localIndex, err := crawler.IndexSourceDirs([]string{srcDir})
	if err != nil {
		return nil, &errs.DetailsError{Package: name, Version: v, Message: "crawling source", Cause: err}
	}

	exposed := o.Package.ExposedModules.Flatten()
	if err := crawler.ValidateEntry(exposed, localIndex); err != nil {
		return nil, &errs.DetailsError{Package: name, Version: v, Message: "crawling exposed modules", Cause: err}
	}
	result, err := crawler.Crawl(exposed, localIndex, b.Toolchain.Parser, foreign.NewTable(), false, nil)
	if err != nil {
		return nil, &errs.DetailsError{Package: name, Version: v, Message: "crawling exposed modules", Cause: err}
	}

	compiled, err := compileStatuses(result, b.Toolchain.TypeChecker)
	if err != nil {
		return nil, &errs.DetailsError{Package: name, Version: v, Message: "compiling", Cause: err}
	}

	out := make(map[modname.Raw]artifact.Interface, len(compiled))
	for mod, c := range compiled {
		out[mod] = c.iface
	}
	return out, nil
}

// ForeignTable is the exported form of foreignTableFrom, used by
// internal/compiler to build the foreign-module index visible to the
// user's own source tree from the project's already-built dependency
// Artifacts.
func ForeignTable(deps map[pkgname.Name]artifact.Artifacts, directDeps map[pkgname.Name]bool) *foreign.Table {
	return foreignTableFrom(deps, directDeps)
}

// foreignTableFrom builds the module-name index visible to the code being
// built: packages named in directDeps contribute Public interfaces, every
// other package in deps contributes Private ones (see artifact.Privatize).
func foreignTableFrom(deps map[pkgname.Name]artifact.Artifacts, directDeps map[pkgname.Name]bool) *foreign.Table {
	ft := foreign.NewTable()
	for owner, a := range deps {
		for mod, di := range a.Interfaces {
			if directDeps[owner] {
				ft.Insert(mod, owner, artifact.DependencyInterface{Visibility: artifact.Public, Iface: di.Iface})
			} else {
				ft.Insert(mod, owner, artifact.Privatize(di, di.Unions, di.Aliases))
			}
		}
	}
	return ft
}

func readArtifactCache(path string) (*artifact.ArtifactCache, error) {
	raw, err := readFileBytes(path)
	if err != nil {
		return nil, err
	}
	r := gcodec.NewReader(raw)
	cache := artifact.DecodeArtifactCache(r)
	if err := r.Err(); err != nil {
		return nil, &gcodec.CorruptCacheError{Path: path, Cause: err}
	}
	return &cache, nil
}

func writeArtifactCache(path string, cache artifact.ArtifactCache) error {
	w := gcodec.NewWriter()
	cache.Encode(w)
	return writeFileBytes(path, w.Bytes())
}
