package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gren-lang/compiler/internal/artifact"
	gcodec "github.com/gren-lang/compiler/internal/codec"
	"github.com/gren-lang/compiler/internal/errs"
	"github.com/gren-lang/compiler/internal/future"
	"github.com/gren-lang/compiler/internal/joinctx"
	"github.com/gren-lang/compiler/internal/modname"
	"github.com/gren-lang/compiler/internal/outline"
	"github.com/gren-lang/compiler/internal/pkgname"
	"github.com/gren-lang/compiler/internal/registrycache"
	"github.com/gren-lang/compiler/internal/version"
)

// Builder bundles the collaborators needed to produce Details for a
// project: the registry-backed package cache and the black-box
// toolchain.
type Builder struct {
	Cache     *registrycache.Cache
	Toolchain Toolchain
	Root      string // project root; Details persists under Root/.gren

	// RootPlatform and Compiler are the project's own platform and
	// compiler version. Build checks every package in solution against
	// them even when solution came from an application's pinned
	// Direct/Indirect map rather than resolver.Solve, so a hand-edited
	// gren.json pinning an incompatible version fails here instead of
	// building successfully.
	RootPlatform version.Platform
	Compiler     version.Version
}

const detailsPath = ".gren/details.dat"

// depOutcome is the typed result placed into each package's future: a
// task failure is recorded here rather than thrown, so one failing
// package doesn't abort its unrelated siblings.
type depOutcome struct {
	artifacts artifact.Artifacts
	err       error
}

// Build runs the per-package build protocol fan-out: one future per
// package in solution, each waiting on the futures of its own direct
// dependencies (the "depsMVar" pattern) before building itself.
func (b *Builder) Build(ctx context.Context, solution map[pkgname.Name]version.Version, directDeps map[pkgname.Name]bool) (map[pkgname.Name]artifact.Artifacts, error) {
	if err := b.Cache.Lock(ctx); err != nil {
		return nil, err
	}
	defer b.Cache.Unlock()

	futures := future.NewMap[pkgname.Name, depOutcome]()
	for name := range solution {
		futures.GetOrCreate(name)
	}

	g, gctx := errgroup.WithContext(ctx)
	for name, v := range solution {
		name, v := name, v
		g.Go(func() error {
			taskCtx, cancelTask := context.WithCancel(context.Background())
			defer cancelTask()
			joined, stopJoin := joinctx.Join(gctx, taskCtx)
			defer stopJoin()

			f, _ := futures.Get(name)
			o, err := b.Cache.Outline(joined, name, v)
			if err != nil {
				err = &errs.DetailsError{Package: name, Version: v, Message: "reading manifest", Cause: err}
				f.Resolve(depOutcome{err: err})
				return err
			}
			if o.IsPackage() {
				if !version.CompatibleWith(b.RootPlatform, o.Package.Platform) {
					err := &errs.DetailsError{Package: name, Version: v, Message: fmt.Sprintf("platform %s is incompatible with root platform %s", o.Package.Platform, b.RootPlatform)}
					f.Resolve(depOutcome{err: err})
					return err
				}
				if !o.Package.GrenVersion.AcceptsCurrent(b.Compiler) {
					err := &errs.DetailsError{Package: name, Version: v, Message: "gren-version constraint excludes this compiler"}
					f.Resolve(depOutcome{err: err})
					return err
				}
			}

			deps := map[pkgname.Name]artifact.Artifacts{}
			fp := artifact.Fingerprint{}
			if o.IsPackage() {
				for dep := range o.Package.Dependencies {
					depFuture, ok := futures.Get(dep)
					if !ok {
						continue // dep outside the resolved solution: nothing to wait on
					}
					out := depFuture.Wait()
					if out.err != nil {
						f.Resolve(depOutcome{err: out.err})
						return out.err
					}
					deps[dep] = out.artifacts
					fp[dep] = solution[dep]
				}
			}

			a, err := BuildPackage(joined, name, v, b.Cache, fp, deps, directDeps, b.Toolchain)
			f.Resolve(depOutcome{artifacts: a, err: err})
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[pkgname.Name]artifact.Artifacts, len(solution))
	for name := range solution {
		f, _ := futures.Get(name)
		out[name] = f.Wait().artifacts
	}
	return out, nil
}

// Load is the idempotent entry point: if
// Root/.gren/details.dat exists and its recorded outline snapshot
// matches the current gren.json exactly, return the cached Details with
// BuildID incremented by one; otherwise regenerate from scratch.
func (b *Builder) Load(ctx context.Context, rawOutline []byte, solution map[pkgname.Name]version.Version, directDeps map[pkgname.Name]bool) (*Details, error) {
	if _, err := outline.Parse(rawOutline); err != nil {
		return nil, err
	}

	if cached, err := b.readDetails(); err == nil && cachedOutlineMatches(cached, rawOutline) {
		cached.ID++
		return cached, nil
	}

	artifacts, err := b.Build(ctx, solution, directDeps)
	if err != nil {
		return nil, err
	}

	d := &Details{
		Outline:        rawOutline,
		OutlineModTime: time.Now(),
		ID:             1,
		Locals:         map[modname.Raw]*Local{},
		Foreigns:       map[modname.Raw]Foreign{},
		Artifacts:      artifacts,
	}

	if err := b.writeDetails(d); err != nil {
		return nil, err
	}
	return d, nil
}

// VerifyInstall behaves like Load but discards the resulting Details: it
// is used to validate that a proposed dependency set can be built
// without disturbing any already-persisted build state.
func (b *Builder) VerifyInstall(ctx context.Context, solution map[pkgname.Name]version.Version, directDeps map[pkgname.Name]bool) error {
	_, err := b.Build(ctx, solution, directDeps)
	return err
}

func cachedOutlineMatches(d *Details, rawOutline []byte) bool {
	if len(d.Outline) != len(rawOutline) {
		return false
	}
	for i := range d.Outline {
		if d.Outline[i] != rawOutline[i] {
			return false
		}
	}
	return true
}

func (b *Builder) readDetails() (*Details, error) {
	raw, err := os.ReadFile(filepath.Join(b.Root, detailsPath))
	if err != nil {
		return nil, err
	}
	r := gcodec.NewReader(raw)
	d := DecodeDetails(r)
	if err := r.Err(); err != nil {
		return nil, &gcodec.CorruptCacheError{Path: detailsPath, Cause: err}
	}
	return d, nil
}

func (b *Builder) writeDetails(d *Details) error {
	w := gcodec.NewWriter()
	d.Encode(w)
	return writeFileBytes(filepath.Join(b.Root, detailsPath), w.Bytes())
}

// SaveDetails persists d to Root/.gren/details.dat. Exported so
// internal/compiler's caller can write back the Locals/Foreigns a
// compile run produced, once it has merged them into d.
func (b *Builder) SaveDetails(d *Details) error {
	return b.writeDetails(d)
}
