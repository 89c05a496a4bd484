// Package crawler implements the module crawler: starting
// from a set of entry modules, it resolves every reachable import to a
// local source file, a foreign (dependency) module, or a kernel
// (raw-JavaScript) file, detects import cycles, and rejects a module
// name that appears under two source directories. Directory walking
// uses karrick/godirwalk, a fast recursive walker well suited to this
// concern.
package crawler

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"

	"github.com/gren-lang/compiler/internal/errs"
	"github.com/gren-lang/compiler/internal/external"
	"github.com/gren-lang/compiler/internal/foreign"
	"github.com/gren-lang/compiler/internal/modname"
)

// IndexSourceDirs walks every source directory and returns the set of
// local module names it finds, mapped to their file path. It is an error
// for the same module name to appear under two different source
// directories.
func IndexSourceDirs(dirs []string) (map[modname.Raw]string, error) {
	index := map[modname.Raw]string{}
	for _, dir := range dirs {
		err := godirwalk.Walk(dir, &godirwalk.Options{
			Callback: func(path string, de *godirwalk.Dirent) error {
				if de.IsDir() || filepath.Ext(path) != ".gren" {
					return nil
				}
				rel, err := filepath.Rel(dir, path)
				if err != nil {
					return err
				}
				name := pathToModuleName(rel)
				raw, err := modname.ParseRaw(name)
				if err != nil {
					return &errs.BuildError{Kind: errs.BadExtension, Message: "not a valid module path: " + path, Cause: err}
				}
				if existing, ok := index[raw]; ok && existing != path {
					return &errs.BuildError{
						Kind:    errs.AmbiguousSourceDir,
						Message: "module " + name + " found in two source directories: " + existing + " and " + path,
					}
				}
				index[raw] = path
				return nil
			},
			Unsorted: true,
		})
		if err != nil {
			if _, ok := err.(*errs.BuildError); ok {
				return nil, err
			}
			return nil, errors.Wrapf(err, "walking source directory %s", dir)
		}
	}
	return index, nil
}

func pathToModuleName(rel string) string {
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	segs := strings.Split(filepath.ToSlash(rel), "/")
	return strings.Join(segs, ".")
}

// IndexKernelDirs walks every source directory for ".js" files the same way
// IndexSourceDirs walks it for ".gren" files, returning the kernel modules a
// kernel-privileged package ships, mapped by module name to file path.
func IndexKernelDirs(dirs []string) (map[modname.Raw]string, error) {
	index := map[modname.Raw]string{}
	for _, dir := range dirs {
		err := godirwalk.Walk(dir, &godirwalk.Options{
			Callback: func(path string, de *godirwalk.Dirent) error {
				if de.IsDir() || filepath.Ext(path) != ".js" {
					return nil
				}
				rel, err := filepath.Rel(dir, path)
				if err != nil {
					return err
				}
				name := pathToModuleName(rel)
				raw, err := modname.ParseRaw(name)
				if err != nil {
					return &errs.BuildError{Kind: errs.BadExtension, Message: "not a valid kernel module path: " + path, Cause: err}
				}
				if existing, ok := index[raw]; ok && existing != path {
					return &errs.BuildError{
						Kind:    errs.AmbiguousSourceDir,
						Message: "kernel module " + name + " found in two source directories: " + existing + " and " + path,
					}
				}
				index[raw] = path
				return nil
			},
			Unsorted: true,
		})
		if err != nil {
			if _, ok := err.(*errs.BuildError); ok {
				return nil, err
			}
			return nil, errors.Wrapf(err, "walking kernel source directory %s", dir)
		}
	}
	return index, nil
}

// ValidateEntry fails with MissingExposed if any name in entry has no
// matching local module in localIndex. An allModules list always passes;
// it fires for a package manifest's exposed-modules list naming a module
// with no source file, and for a module name that make derived from a
// command-line file path with no source file behind it.
func ValidateEntry(entry []modname.Raw, localIndex map[modname.Raw]string) error {
	for _, name := range entry {
		if _, ok := localIndex[name]; !ok {
			return &errs.BuildError{Kind: errs.MissingExposed, Message: "exposed module " + string(name) + " has no matching source file"}
		}
	}
	return nil
}

// StatusKind is a closed tagged union.
type StatusKind int

const (
	SLocal StatusKind = iota
	SForeign
	SKernelLocal
	SKernelForeign
)

// Status is one module's crawl outcome.
type Status struct {
	Kind    StatusKind
	Path    string
	Parsed  external.ParsedModule
	Foreign foreign.Resolution
	Kernel  external.KernelModule
}

// Result is the crawl's output: every reachable module's Status plus a
// topological compile order (dependencies before dependents).
type Result struct {
	Statuses map[modname.Raw]Status
	Order    []modname.Raw
}

// visitState tracks DFS progress for cycle detection: unvisited nodes are
// absent, inProgress nodes are on the current recursion stack, done nodes
// are fully resolved.
type visitState int

const (
	unvisited visitState = iota
	inProgress
	done
)

// Crawl resolves every module reachable from entry, classifying each
// import as local, foreign, kernel, or an unresolved-import error, and
// reports a single Cycle error naming the cycle in encounter order if one
// exists. kernelIndex is only consulted when kernelPrivileged is true; a
// package with no kernel privilege never matches an import against it,
// so an import of a ".js" file name in an unprivileged package still fails
// as an ordinary unresolved import.
func Crawl(entry []modname.Raw, localIndex map[modname.Raw]string, parser external.Parser, ft *foreign.Table, kernelPrivileged bool, kernelIndex map[modname.Raw]string) (*Result, error) {
	c := &crawl{
		localIndex:  localIndex,
		parser:      parser,
		foreignTbl:  ft,
		kernel:      kernelPrivileged,
		kernelIndex: kernelIndex,
		statuses:    map[modname.Raw]Status{},
		state:       map[modname.Raw]visitState{},
	}
	for _, e := range entry {
		if err := c.visit(e, nil); err != nil {
			return nil, err
		}
	}
	return &Result{Statuses: c.statuses, Order: c.order}, nil
}

type crawl struct {
	localIndex  map[modname.Raw]string
	parser      external.Parser
	foreignTbl  *foreign.Table
	kernel      bool
	kernelIndex map[modname.Raw]string
	statuses    map[modname.Raw]Status
	state       map[modname.Raw]visitState
	order       []modname.Raw
	stack       []modname.Raw
}

func (c *crawl) visit(name modname.Raw, importedBy *modname.Raw) error {
	switch c.state[name] {
	case done:
		return nil
	case inProgress:
		return cycleError(c.stack, name)
	}

	c.state[name] = inProgress
	c.stack = append(c.stack, name)
	defer func() {
		c.stack = c.stack[:len(c.stack)-1]
		c.state[name] = done
	}()

	path, isLocal := c.localIndex[name]
	if !isLocal {
		if c.kernel {
			if kpath, ok := c.kernelIndex[name]; ok {
				return c.visitKernel(name, kpath)
			}
		}
		res, ok := foreign.Resolve(c.foreignTbl, name)
		if !ok {
			return &errs.BuildError{Kind: errs.UnknownPath, Message: "import " + string(name) + " does not resolve to any local or dependency module"}
		}
		c.statuses[name] = Status{Kind: SForeign, Foreign: res}
		c.order = append(c.order, name)
		return nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	pm, err := c.parser.Parse(path, src)
	if err != nil {
		return &errs.BuildError{Kind: errs.BadModule, Message: "failed to parse " + path, Cause: err}
	}
	if pm.Name != name {
		return &errs.BuildError{
			Kind:    errs.FileModuleMismatch,
			Message: "file " + path + " declares module " + string(pm.Name) + ", expected " + string(name),
		}
	}

	for _, imp := range pm.Imports {
		if err := c.visit(imp, &name); err != nil {
			return err
		}
	}

	c.statuses[name] = Status{Kind: SLocal, Path: path, Parsed: pm}
	c.order = append(c.order, name)
	return nil
}

// visitKernel resolves a kernel-privileged package's own raw-JavaScript
// module: its imports are visited like any other module's, but it never
// reaches the type checker and never contributes an Interface, per the rule
// that kernel modules participate in linking only. Because a kernel module
// is never exposed (it has no Interface to expose), nothing importing it
// from outside its own package can ever resolve through foreign.Resolve —
// SKernelForeign is declared for completeness of the tagged union but is
// never constructed.
func (c *crawl) visitKernel(name modname.Raw, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	km, err := c.parser.ParseKernel(path, src)
	if err != nil {
		return &errs.BuildError{Kind: errs.BadModule, Message: "failed to parse kernel module " + path, Cause: err}
	}
	if km.Name != name {
		return &errs.BuildError{
			Kind:    errs.FileModuleMismatch,
			Message: "kernel file " + path + " declares module " + string(km.Name) + ", expected " + string(name),
		}
	}

	for _, imp := range km.Imports {
		if err := c.visit(imp, &name); err != nil {
			return err
		}
	}

	c.statuses[name] = Status{Kind: SKernelLocal, Path: path, Kernel: km}
	c.order = append(c.order, name)
	return nil
}

func cycleError(stack []modname.Raw, closing modname.Raw) error {
	start := 0
	for i, n := range stack {
		if n == closing {
			start = i
			break
		}
	}
	cycle := append(append([]modname.Raw{}, stack[start:]...), closing)
	names := make([]string, len(cycle))
	for i, n := range cycle {
		names[i] = string(n)
	}
	return &errs.BuildError{
		Kind:    errs.ImportCycle,
		Message: "import cycle: " + strings.Join(names, " -> "),
	}
}
