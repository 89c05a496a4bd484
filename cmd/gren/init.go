package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gren-lang/compiler/internal/modname"
	"github.com/gren-lang/compiler/internal/outline"
	"github.com/gren-lang/compiler/internal/pkgname"
	"github.com/gren-lang/compiler/internal/version"
)

const initShortHelp = `Initialize a new gren.json in the current directory`
const initLongHelp = `
Initialize the project in the current directory by writing a new
gren.json. By default an application manifest is written; pass -package
to write a package manifest instead.
`

func (cmd *initCommand) Name() string      { return "init" }
func (cmd *initCommand) Args() string      { return "" }
func (cmd *initCommand) ShortHelp() string { return initShortHelp }
func (cmd *initCommand) LongHelp() string  { return initLongHelp }
func (cmd *initCommand) Hidden() bool      { return false }

func (cmd *initCommand) Register(fs *flag.FlagSet) {
	fs.BoolVar(&cmd.asPackage, "package", false, "write a package manifest instead of an application manifest")
	fs.StringVar(&cmd.platform, "platform", "common", "target platform: common, browser, or node")
}

type initCommand struct {
	asPackage bool
	platform  string
}

func (cmd *initCommand) Run(ctx *Ctx, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("init takes no positional arguments")
	}

	path := filepath.Join(ctx.WorkingDir, "gren.json")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("gren.json already exists in %s", ctx.WorkingDir)
	}

	plat, err := version.ParsePlatform(cmd.platform)
	if err != nil {
		return err
	}

	var o *outline.Outline
	if cmd.asPackage {
		author := filepath.Base(filepath.Dir(ctx.WorkingDir))
		project := filepath.Base(ctx.WorkingDir)
		name, err := pkgname.Parse(author + "/" + project)
		if err != nil {
			name, _ = pkgname.Parse("author/project")
		}
		o = &outline.Outline{Package: &outline.Package{
			Name:        name,
			Summary:     "A new Gren package",
			License:     "BSD-3-Clause",
			Version:     version.Initial,
			Platform:    plat,
			GrenVersion: version.Constraint{Low: outline.CompilerVersion, High: outline.CompilerVersion.NextMajor()},
			ExposedModules: outline.ExposedModules{
				Headers: []outline.ExposedHeader{{Modules: []modname.Raw{"Main"}}},
			},
			Dependencies: map[pkgname.Name]version.Constraint{},
		}}
	} else {
		o = &outline.Outline{Application: &outline.Application{
			GrenVersion:       outline.CompilerVersion,
			Platform:          plat,
			SourceDirectories: []string{"src"},
			Direct:            map[pkgname.Name]version.Version{},
			Indirect:          map[pkgname.Name]version.Version{},
		}}
	}

	if err := os.MkdirAll(filepath.Join(ctx.WorkingDir, "src"), 0o755); err != nil {
		return fmt.Errorf("creating src directory: %w", err)
	}

	mainPath := filepath.Join(ctx.WorkingDir, "src", "Main.gren")
	if _, err := os.Stat(mainPath); os.IsNotExist(err) {
		if err := os.WriteFile(mainPath, []byte("module Main\nmain\n"), 0o644); err != nil {
			return fmt.Errorf("writing src/Main.gren: %w", err)
		}
	}

	raw, err := outline.Write(o)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing gren.json: %w", err)
	}

	ctx.Loggers.Out.Printf("wrote %s\n", path)
	return nil
}
