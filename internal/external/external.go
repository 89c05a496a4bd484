// Package external declares the black-box collaborators this module treats
// as out of scope: the parser, the type checker, the optimizer, and the
// JavaScript code generator. The core only ever depends on these narrow
// interfaces; Reference provides a small in-memory implementation, used
// by this module's own tests and wired by cmd/gren as the CLI's default
// toolchain, standing in for the real toolchain components.
package external

import (
	"github.com/gren-lang/compiler/internal/artifact"
	"github.com/gren-lang/compiler/internal/modname"
)

// ParsedModule is a module's raw import list plus whatever the parser
// needs to hand the type checker, ahead of any dependency resolution.
type ParsedModule struct {
	Name    modname.Raw
	Imports []modname.Raw
	// UsesDebug reports whether this module's parsed AST contains any
	// reachable use of the Debug module, feeding the optimize/debug
	// exclusivity check.
	UsesDebug bool
	// DefinesMain reports whether this module declares a top-level `main`
	// value, feeding the --output=*.html/*.js main-candidate checks.
	DefinesMain bool
}

// Parser turns module source bytes into a ParsedModule.
type Parser interface {
	Parse(path string, src []byte) (ParsedModule, error)

	// ParseKernel turns a kernel-privileged package's raw-JavaScript
	// source into its declared imports and the opaque chunk that
	// contributes to the package's object graph. Kernel modules never
	// type-check and never appear in an Interface.
	ParseKernel(path string, src []byte) (KernelModule, error)
}

// KernelModule is one raw-JavaScript kernel module's (imports, chunk)
// pair: the imports it needs resolved like any other module, and the
// opaque bytes the optimizer links in as its LocalGraph.
type KernelModule struct {
	Name    modname.Raw
	Imports []modname.Raw
	Chunk   []byte
}

// VisibleInterfaces is the foreign + local interface table a module's
// imports resolve against, as passed to the type checker.
type VisibleInterfaces map[modname.Raw]artifact.Interface

// TypeChecker produces a module's Interface and a local graph fragment
// given its parsed form and the interfaces of everything it imports.
type TypeChecker interface {
	Check(mod ParsedModule, visible VisibleInterfaces) (artifact.Interface, LocalGraph, error)
}

// LocalGraph is one module's optimizer intermediate representation,
// opaque to the core and owned by the
// optimizer/codegen pair.
type LocalGraph []byte

// Optimizer links a set of per-module LocalGraphs (this package's own
// plus everything it transitively imports) into one linked GlobalGraph.
type Optimizer interface {
	Link(locals map[modname.Raw]LocalGraph) (artifact.Graph, error)
}

// Codegen renders a linked GlobalGraph to JavaScript for the requested
// entry modules.
type Codegen interface {
	Emit(graph artifact.Graph, entryModules []modname.Raw, debug bool) ([]byte, error)
}
