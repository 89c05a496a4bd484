// Package errs holds the shared error taxonomy: typed error
// kinds, not just opaque strings, so callers at the command boundary can
// render ANSI or JSON without re-parsing messages.
package errs

import (
	"fmt"
	"strings"

	"github.com/gren-lang/compiler/internal/pkgname"
	"github.com/gren-lang/compiler/internal/version"
)

// Region locates a span in a source document by row/column, for snippet
// rendering of Outline and Build errors.
type Region struct {
	StartRow, StartCol int
	EndRow, EndCol     int
}

// OutlineError reports a structural, schema, or value problem in gren.json.
type OutlineError struct {
	Message string
	Region  Region
}

func (e *OutlineError) Error() string {
	return fmt.Sprintf("gren.json:%d:%d: %s", e.Region.StartRow, e.Region.StartCol, e.Message)
}

// SolverKind distinguishes the ways dependency resolution can fail.
type SolverKind int

const (
	NoSolution SolverKind = iota
	NoOfflineSolution
	BadCachedOutline
	GitFailure
)

func (k SolverKind) String() string {
	switch k {
	case NoSolution:
		return "NoSolution"
	case NoOfflineSolution:
		return "NoOfflineSolution"
	case BadCachedOutline:
		return "BadCachedOutline"
	case GitFailure:
		return "GitFailure"
	default:
		return "UnknownSolverError"
	}
}

// SolverError reports a dependency-resolution failure.
type SolverError struct {
	Kind    SolverKind
	Package pkgname.Name
	Version version.Version
	Cause   error
}

func (e *SolverError) Error() string {
	switch e.Kind {
	case BadCachedOutline:
		return fmt.Sprintf("solver: bad cached outline for %s@%s: %v", e.Package, e.Version, e.Cause)
	case GitFailure:
		return fmt.Sprintf("solver: git operation failed for %s: %v", e.Package, e.Cause)
	case NoOfflineSolution:
		return "solver: registry unreachable and no solution found in the local cache"
	default:
		return "solver: no solution satisfies the declared constraints"
	}
}

func (e *SolverError) Unwrap() error { return e.Cause }

// DetailsError reports a failure building per-package artifacts.
type DetailsError struct {
	Message     string
	Package     pkgname.Name
	Version     version.Version
	Fingerprint string
	Cause       error
}

func (e *DetailsError) Error() string {
	return fmt.Sprintf("building %s@%s (fingerprint %s): %s", e.Package, e.Version, e.Fingerprint, e.Message)
}

func (e *DetailsError) Unwrap() error { return e.Cause }

// BuildKind enumerates the project-level build problems, distinct from
// diagnostics forwarded verbatim from the external compiler.
type BuildKind int

const (
	BadModule BuildKind = iota
	UnknownPath
	BadExtension
	AmbiguousSourceDir
	DuplicateMainPath
	ModuleNameClash
	FileModuleMismatch
	ImportCycle
	MissingExposed
	AmbiguousExposed
)

func (k BuildKind) String() string {
	names := [...]string{
		"BadModule", "UnknownPath", "BadExtension", "AmbiguousSourceDir",
		"DuplicateMainPath", "ModuleNameClash", "FileModuleMismatch",
		"ImportCycle", "MissingExposed", "AmbiguousExposed",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "UnknownBuildError"
}

// BuildError reports a problem encountered while compiling the user's own
// module tree.
type BuildError struct {
	Kind    BuildKind
	Message string
	Cause   error
}

func (e *BuildError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Kind.String()
}

func (e *BuildError) Unwrap() error { return e.Cause }

// BuildErrors aggregates the independent per-module failures from one
// compile run: siblings of a failed module keep compiling so the user
// sees as many errors as possible in one pass.
type BuildErrors []error

func (e BuildErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d build errors:\n%s", len(e), strings.Join(msgs, "\n"))
}

// GenerateError reports a code-generation-stage failure.
type GenerateError struct {
	Message string
	Modules []string
}

func (e *GenerateError) Error() string {
	if len(e.Modules) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Modules)
}

// DocsError reports a failure generating or reading package docs.
type DocsError struct {
	Message string
	Cause   error
}

func (e *DocsError) Error() string { return e.Message }
func (e *DocsError) Unwrap() error { return e.Cause }

// PublishError reports a failure in the publish preflight checks.
type PublishError struct {
	Message string
}

func (e *PublishError) Error() string { return e.Message }
