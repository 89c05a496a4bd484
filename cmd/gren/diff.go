package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/gren-lang/compiler/internal/artifact"
	"github.com/gren-lang/compiler/internal/builder"
	"github.com/gren-lang/compiler/internal/compiler"
	"github.com/gren-lang/compiler/internal/diff"
	"github.com/gren-lang/compiler/internal/modname"
	"github.com/gren-lang/compiler/internal/outline"
	"github.com/gren-lang/compiler/internal/pkgname"
	"github.com/gren-lang/compiler/internal/version"
)

const diffShortHelp = `Compare two versions of a package's API`
const diffLongHelp = `
With no arguments, compares the latest published version against the
working directory. With one argument, compares that published version
against the working directory. With two arguments, compares two
published versions of the current package. With three, compares two
published versions of the named package.
`

func (cmd *diffCommand) Name() string      { return "diff" }
func (cmd *diffCommand) Args() string      { return "[[<pkg>] <v1> [<v2>]]" }
func (cmd *diffCommand) ShortHelp() string { return diffShortHelp }
func (cmd *diffCommand) LongHelp() string  { return diffLongHelp }
func (cmd *diffCommand) Hidden() bool      { return false }

func (cmd *diffCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.report, "report", "", "error report format: \"json\" or empty for ANSI text")
}

type diffCommand struct {
	report string
}

func (cmd *diffCommand) Run(ctx *Ctx, args []string) error {
	ctx.ReportJSON = cmd.report == "json"

	o, _, err := ctx.LoadOutline()
	if err != nil {
		return err
	}
	if !o.IsPackage() {
		return fmt.Errorf("diff requires a package manifest")
	}

	cache, err := ctx.NewRegistryCache()
	if err != nil {
		return err
	}
	b := &builder.Builder{Cache: cache, Toolchain: ctx.BuilderToolchain(), Root: ctx.projectRoot(), RootPlatform: rootPlatform(o), Compiler: outline.CompilerVersion}

	background := context.Background()

	pkgName := o.Package.Name
	var oldV, newV version.Version
	compareWorkingTree := false

	switch len(args) {
	case 0:
		versions, err := cache.Versions(background, pkgName)
		if err != nil {
			return err
		}
		if len(versions) == 0 {
			return fmt.Errorf("no published versions of %s", pkgName)
		}
		oldV = versions[0]
		compareWorkingTree = true
	case 1:
		oldV, err = version.Parse(args[0])
		if err != nil {
			return err
		}
		compareWorkingTree = true
	case 2:
		oldV, err = version.Parse(args[0])
		if err != nil {
			return err
		}
		newV, err = version.Parse(args[1])
		if err != nil {
			return err
		}
	case 3:
		pkgName, err = pkgname.Parse(args[0])
		if err != nil {
			return err
		}
		oldV, err = version.Parse(args[1])
		if err != nil {
			return err
		}
		newV, err = version.Parse(args[2])
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("diff takes 0, 1, 2, or 3 arguments")
	}

	oldIfaces, err := b.PackageInterfaces(background, pkgName, oldV)
	if err != nil {
		return err
	}

	var newIfaces map[modname.Raw]artifact.Interface
	if compareWorkingTree {
		newIfaces, err = compileWorkingTree(ctx, o)
	} else {
		newIfaces, err = b.PackageInterfaces(background, pkgName, newV)
	}
	if err != nil {
		return err
	}

	report := diff.Diff(oldIfaces, newIfaces)
	printDiffReport(ctx, report)
	if report.HasBreakingChanges() || report.HasAdditions() {
		suggestion := diff.SuggestBump(oldV, report)
		ctx.Loggers.Out.Printf("suggested next version: %s\n", suggestion)
	}
	return nil
}

// compileWorkingTree runs a type-check-only compile of the current
// package's exposed modules against its already-resolved dependencies,
// returning the resulting Interfaces for comparison.
func compileWorkingTree(ctx *Ctx, o *outline.Outline) (map[modname.Raw]artifact.Interface, error) {
	background := context.Background()
	solution, directDeps, err := projectSolution(background, ctx, o)
	if err != nil {
		return nil, err
	}
	cache, err := ctx.NewRegistryCache()
	if err != nil {
		return nil, err
	}
	b := &builder.Builder{Cache: cache, Toolchain: ctx.BuilderToolchain(), Root: ctx.projectRoot(), RootPlatform: rootPlatform(o), Compiler: outline.CompilerVersion}
	rawOutline, err := outline.Write(o)
	if err != nil {
		return nil, err
	}
	details, err := b.Load(background, rawOutline, solution, directDeps)
	if err != nil {
		return nil, err
	}

	engine := compiler.Engine{Root: ctx.projectRoot(), Toolchain: ctx.CompilerToolchain()}
	req := compiler.Request{
		Entry:             o.Package.ExposedModules.Flatten(),
		SourceDirectories: sourceDirs(o),
		Options:           compiler.Options{Output: compiler.Output{Kind: compiler.OutputNull}},
	}
	result, err := engine.Compile(background, req, details, directDeps)
	if err != nil {
		return nil, err
	}
	return result.Interfaces, nil
}

func printDiffReport(ctx *Ctx, report diff.Report) {
	if ctx.ReportJSON {
		raw, err := json.MarshalIndent(report, "", "  ")
		if err == nil {
			ctx.Loggers.Out.Println(string(raw))
			return
		}
	}
	if report.IsEmpty() {
		ctx.Loggers.Out.Println("no API changes")
		return
	}
	for _, m := range report.Modules {
		if m.IsEmpty() {
			continue
		}
		ctx.Loggers.Out.Printf("module %s\n", m.Module)
		for _, name := range m.Added {
			ctx.Loggers.Out.Printf("  + %s\n", name)
		}
		for _, name := range m.Changed {
			ctx.Loggers.Out.Printf("  ~ %s\n", name)
		}
		for _, name := range m.Removed {
			ctx.Loggers.Out.Printf("  - %s\n", name)
		}
	}
}
