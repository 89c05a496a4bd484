package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/gren-lang/compiler/internal/outline"
	"github.com/gren-lang/compiler/internal/vcsutil"
	"github.com/gren-lang/compiler/internal/version"
)

const publishShortHelp = `Publish the current package version to the registry`
const publishLongHelp = `
Runs the preflight checks (clean working tree, a git tag matching the
version being published, a valid version progression, a summary,
license, and README), then registers the package's manifest with the
registry.
`

func (cmd *publishCommand) Name() string      { return "publish" }
func (cmd *publishCommand) Args() string      { return "" }
func (cmd *publishCommand) ShortHelp() string { return publishShortHelp }
func (cmd *publishCommand) LongHelp() string  { return publishLongHelp }
func (cmd *publishCommand) Hidden() bool      { return false }

func (cmd *publishCommand) Register(fs *flag.FlagSet) {}

type publishCommand struct{}

func (cmd *publishCommand) Run(ctx *Ctx, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("publish takes no arguments")
	}

	o, raw, err := ctx.LoadOutline()
	if err != nil {
		return err
	}
	if !o.IsPackage() {
		return fmt.Errorf("publish requires a package manifest")
	}

	if err := vcsutil.CheckManifest(ctx.projectRoot(), o.Package); err != nil {
		return err
	}

	repo, err := vcsutil.Open(ctx.projectRoot())
	if err != nil {
		return err
	}
	if err := vcsutil.CheckClean(repo); err != nil {
		return err
	}
	if err := vcsutil.CheckTagged(repo, o.Package.Version); err != nil {
		return err
	}

	background := context.Background()
	cache, err := ctx.NewRegistryCache()
	if err != nil {
		return err
	}

	var published *outline.Outline
	versions, err := cache.Versions(background, o.Package.Name)
	if err == nil && len(versions) > 0 {
		published, err = cache.Outline(background, o.Package.Name, versions[0])
		if err != nil {
			return err
		}
	}

	var publishedVersion *version.Version
	if published != nil {
		publishedVersion = &published.Package.Version
	}
	if err := vcsutil.CheckVersionProgression(publishedVersion, o.Package.Version); err != nil {
		return err
	}

	sharedRegistry.Publish(o.Package.Name, o.Package.Version, raw)

	ctx.Loggers.Out.Printf("published %s %s\n", o.Package.Name, o.Package.Version)
	return nil
}
