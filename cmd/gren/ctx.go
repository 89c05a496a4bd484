package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gren-lang/compiler/internal/builder"
	"github.com/gren-lang/compiler/internal/compiler"
	"github.com/gren-lang/compiler/internal/external"
	"github.com/gren-lang/compiler/internal/outline"
	"github.com/gren-lang/compiler/internal/registry"
	"github.com/gren-lang/compiler/internal/registrycache"
	"github.com/gren-lang/compiler/internal/render"
)

// Ctx bundles one invocation's working directory and loggers, the way
// golang-dep's dep.Ctx does for its own commands.
type Ctx struct {
	WorkingDir string
	Loggers    *Loggers
	ReportJSON bool
	// Stdout is the raw stream --output=/dev/stdout writes compiled bytes
	// to, distinct from Loggers.Out's line-oriented status messages.
	Stdout io.Writer
}

// toolchain is the pluggable Parser/TypeChecker/Optimizer/Codegen the
// core treats as a black box: the parser, type checker, optimizer, and
// JS codegen. The real front end and code generator slot in behind the
// same external.* interfaces; this CLI wires the module's own in-memory
// reference implementation as its default so every command runs
// end-to-end against whatever the reference parser's fixture format
// describes.
var toolchain = external.Reference{}

// sharedRegistry stands in for the HTTP/git registry client the core
// treats as out of scope: every command in one process shares it, so
// `publish` followed by `install` in the same run sees what was
// published.
var sharedRegistry = registry.NewMemory()

func (c *Ctx) outlinePath() string {
	return filepath.Join(c.WorkingDir, "gren.json")
}

// LoadOutline reads and validates gren.json from the working directory.
func (c *Ctx) LoadOutline() (*outline.Outline, []byte, error) {
	raw, err := os.ReadFile(c.outlinePath())
	if err != nil {
		return nil, nil, fmt.Errorf("reading gren.json: %w", err)
	}
	o, err := outline.Parse(raw)
	if err != nil {
		return nil, nil, err
	}
	return o, raw, nil
}

// WriteOutline serializes and writes o back to gren.json.
func (c *Ctx) WriteOutline(o *outline.Outline) error {
	raw, err := outline.Write(o)
	if err != nil {
		return err
	}
	return os.WriteFile(c.outlinePath(), raw, 0o644)
}

// cacheRoot resolves the package-cache root:
// "$HOME/.cache/gren/<compiler-version>/".
func (c *Ctx) cacheRoot() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving cache root: %w", err)
	}
	return filepath.Join(base, "gren", outline.CompilerVersion.String()), nil
}

// NewRegistryCache opens the disk-backed package cache in front of
// sharedRegistry.
func (c *Ctx) NewRegistryCache() (*registrycache.Cache, error) {
	root, err := c.cacheRoot()
	if err != nil {
		return nil, err
	}
	return registrycache.New(root, sharedRegistry, 256)
}

// BuilderToolchain returns the Toolchain the Project Builder needs.
func (c *Ctx) BuilderToolchain() builder.Toolchain {
	return builder.Toolchain{Parser: toolchain, TypeChecker: toolchain, Optimizer: toolchain}
}

// CompilerToolchain returns the Toolchain the Incremental Compile Engine
// needs.
func (c *Ctx) CompilerToolchain() compiler.Toolchain {
	return compiler.Toolchain{Parser: toolchain, TypeChecker: toolchain, Optimizer: toolchain, Codegen: toolchain}
}

// projectRoot is the directory holding .gren/, the same as WorkingDir for
// every command this CLI supports (no nested-project discovery).
func (c *Ctx) projectRoot() string { return c.WorkingDir }

// renderErr renders an error per --report: ANSI text by default, or the
// JSON schema under --report=json.
func (c *Ctx) renderErr(err error) string {
	if c.ReportJSON {
		raw, jerr := render.JSON(err)
		if jerr != nil {
			return err.Error()
		}
		return string(raw)
	}
	return render.ANSI(err)
}
