// Package compiler implements the Incremental Compile Engine: given the
// user's own source tree and the already-built Details for its
// dependencies, it crawls entry modules, recompiles whatever is stale,
// links the result, and assembles the requested output.
package compiler

import (
	"github.com/gren-lang/compiler/internal/artifact"
	"github.com/gren-lang/compiler/internal/builder"
	"github.com/gren-lang/compiler/internal/external"
	"github.com/gren-lang/compiler/internal/modname"
)

// OutputKind distinguishes the four --output targets.
type OutputKind int

const (
	OutputHTML OutputKind = iota
	OutputJS
	OutputNull
	OutputStdout
)

// Output describes where and how to assemble the compiled result.
type Output struct {
	Kind OutputKind
	Path string // file path for OutputHTML/OutputJS, "/dev/stdout" for OutputStdout, empty for OutputNull
}

// Options bundles one make invocation's flags.
type Options struct {
	Debug    bool
	Optimize bool
	Output   Output
}

// Request is everything one compile invocation needs beyond the
// project's already-resolved Details: the entry modules named on the
// command line (all exposed modules, for a bare package build) and the
// source directories to crawl.
type Request struct {
	Entry             []modname.Raw
	SourceDirectories []string
	KernelPrivileged  bool
	Options           Options
}

// Result is what one successful compile invocation produces for
// persistence and output assembly.
type Result struct {
	Locals     map[modname.Raw]*builder.Local
	Interfaces map[modname.Raw]artifact.Interface
	Graph      artifact.Graph
	Output     []byte // nil for OutputNull; the emitted HTML/JS otherwise
}

// moduleCompile is one module's in-flight compile outcome, placed into a
// future so dependents can await it.
type moduleCompile struct {
	iface artifact.Interface
	graph external.LocalGraph
	local *builder.Local
	err   error
}
