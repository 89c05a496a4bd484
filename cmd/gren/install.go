package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/gren-lang/compiler/internal/builder"
	"github.com/gren-lang/compiler/internal/outline"
	"github.com/gren-lang/compiler/internal/pkgname"
	"github.com/gren-lang/compiler/internal/resolver"
	"github.com/gren-lang/compiler/internal/version"
)

const installShortHelp = `Install and verify the project's dependencies`
const installLongHelp = `
With no arguments, resolve and verify the project's existing dependency
constraints still build. With an "author/project" argument, add that
package as a new direct dependency at its latest published version,
then resolve and verify.
`

func (cmd *installCommand) Name() string      { return "install" }
func (cmd *installCommand) Args() string      { return "[<author>/<project>]" }
func (cmd *installCommand) ShortHelp() string { return installShortHelp }
func (cmd *installCommand) LongHelp() string  { return installLongHelp }
func (cmd *installCommand) Hidden() bool      { return false }

func (cmd *installCommand) Register(fs *flag.FlagSet) {}

type installCommand struct{}

func (cmd *installCommand) Run(ctx *Ctx, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("install takes at most one package argument")
	}

	o, _, err := ctx.LoadOutline()
	if err != nil {
		return err
	}

	var adding pkgname.Name
	if len(args) == 1 {
		adding, err = pkgname.Parse(args[0])
		if err != nil {
			return err
		}
	}

	cache, err := ctx.NewRegistryCache()
	if err != nil {
		return err
	}

	if adding != (pkgname.Name{}) {
		versions, err := cache.Versions(context.Background(), adding)
		if err != nil {
			return err
		}
		if len(versions) == 0 {
			return fmt.Errorf("%s has no published versions", adding)
		}
		latest := versions[0]
		if o.IsApplication() {
			o.Application.Direct[adding] = latest
		} else {
			o.Package.Dependencies[adding] = version.Constraint{Low: latest, High: latest.NextMajor()}
		}
	}

	var (
		solution   map[pkgname.Name]version.Version
		directDeps map[pkgname.Name]bool
	)
	if o.IsApplication() {
		solution, directDeps, err = resolveApplication(context.Background(), cache, o.Application)
	} else {
		solution, directDeps, err = projectSolution(context.Background(), ctx, o)
	}
	if err != nil {
		return err
	}

	b := &builder.Builder{Cache: cache, Toolchain: ctx.BuilderToolchain(), Root: ctx.projectRoot(), RootPlatform: rootPlatform(o), Compiler: outline.CompilerVersion}
	if err := b.VerifyInstall(context.Background(), solution, directDeps); err != nil {
		return err
	}

	if o.IsApplication() {
		indirect := make(map[pkgname.Name]version.Version, len(solution))
		for name, v := range solution {
			if directDeps[name] {
				o.Application.Direct[name] = v
				continue
			}
			indirect[name] = v
		}
		o.Application.Indirect = indirect
	}

	if err := ctx.WriteOutline(o); err != nil {
		return err
	}

	ctx.Loggers.Out.Println("installed successfully")
	return nil
}

// resolveApplication re-solves an application's full transitive
// dependency graph from its currently pinned direct versions, each
// treated as the floor of an open range up to its next major (newest
// admissible version wins; see DESIGN.md).
func resolveApplication(ctx context.Context, src resolver.Source, app *outline.Application) (map[pkgname.Name]version.Version, map[pkgname.Name]bool, error) {
	constraints := make(map[pkgname.Name]version.Constraint, len(app.Direct))
	directDeps := make(map[pkgname.Name]bool, len(app.Direct))
	for name, v := range app.Direct {
		constraints[name] = version.Constraint{Low: v, High: v.NextMajor()}
		directDeps[name] = true
	}
	sol, err := resolver.Solve(ctx, src, resolver.Params{
		RootPlatform: app.Platform,
		Constraints:  constraints,
		Compiler:     outline.CompilerVersion,
	})
	if err != nil {
		return nil, nil, err
	}
	return map[pkgname.Name]version.Version(sol), directDeps, nil
}
