package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/gren-lang/compiler/internal/builder"
	"github.com/gren-lang/compiler/internal/diff"
	"github.com/gren-lang/compiler/internal/outline"
)

const bumpShortHelp = `Suggest and apply a semantic version bump`
const bumpLongHelp = `
Compares the working directory's exposed modules against the latest
published version, then writes the version gren.json requires back,
bumped according to whatever API changes were found.
`

func (cmd *bumpCommand) Name() string      { return "bump" }
func (cmd *bumpCommand) Args() string      { return "" }
func (cmd *bumpCommand) ShortHelp() string { return bumpShortHelp }
func (cmd *bumpCommand) LongHelp() string  { return bumpLongHelp }
func (cmd *bumpCommand) Hidden() bool      { return false }

func (cmd *bumpCommand) Register(fs *flag.FlagSet) {}

type bumpCommand struct{}

func (cmd *bumpCommand) Run(ctx *Ctx, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("bump takes no arguments")
	}

	o, _, err := ctx.LoadOutline()
	if err != nil {
		return err
	}
	if !o.IsPackage() {
		return fmt.Errorf("bump requires a package manifest")
	}

	background := context.Background()

	cache, err := ctx.NewRegistryCache()
	if err != nil {
		return err
	}
	b := &builder.Builder{Cache: cache, Toolchain: ctx.BuilderToolchain(), Root: ctx.projectRoot(), RootPlatform: rootPlatform(o), Compiler: outline.CompilerVersion}

	versions, err := cache.Versions(background, o.Package.Name)
	if err != nil {
		return err
	}

	current := o.Package.Version
	if len(versions) == 0 {
		ctx.Loggers.Out.Printf("no published versions yet; keeping %s\n", current)
		return nil
	}

	latest := versions[0]
	oldIfaces, err := b.PackageInterfaces(background, o.Package.Name, latest)
	if err != nil {
		return err
	}
	newIfaces, err := compileWorkingTree(ctx, o)
	if err != nil {
		return err
	}

	report := diff.Diff(oldIfaces, newIfaces)
	next := diff.SuggestBump(latest, report)

	if next.Equal(current) {
		ctx.Loggers.Out.Printf("%s is already correct\n", current)
		return nil
	}

	ctx.Loggers.Out.Printf("%s -> %s\n", current, next)
	o.Package.Version = next
	return ctx.WriteOutline(o)
}
