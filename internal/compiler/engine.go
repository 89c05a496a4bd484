package compiler

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gren-lang/compiler/internal/artifact"
	"github.com/gren-lang/compiler/internal/builder"
	"github.com/gren-lang/compiler/internal/crawler"
	"github.com/gren-lang/compiler/internal/errs"
	"github.com/gren-lang/compiler/internal/external"
	"github.com/gren-lang/compiler/internal/future"
	"github.com/gren-lang/compiler/internal/modname"
	"github.com/gren-lang/compiler/internal/pkgname"
)

// Toolchain bundles the black-box collaborators the compile engine needs:
// the same three the Project Builder uses (parser, type checker,
// optimizer), plus the code generator the Project Builder never touches.
type Toolchain struct {
	Parser      external.Parser
	TypeChecker external.TypeChecker
	Optimizer   external.Optimizer
	Codegen     external.Codegen
}

// Engine runs make invocations against one project root, reusing the
// interface/object caches persisted under Root/.gren between runs.
type Engine struct {
	Root      string
	Toolchain Toolchain
}

// Compile runs one full incremental-compile invocation: crawl, compile
// whatever is stale, link, and assemble the requested output.
func (e *Engine) Compile(ctx context.Context, req Request, details *builder.Details, directDeps map[pkgname.Name]bool) (*Result, error) {
	if req.Options.Optimize && req.Options.Debug {
		return nil, &errs.GenerateError{Message: "CannotOptimizeAndDebug: --optimize and --debug are mutually exclusive"}
	}

	// Relative source directories are taken relative to the project root.
	srcDirs := make([]string, len(req.SourceDirectories))
	for i, dir := range req.SourceDirectories {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(e.Root, dir)
		}
		srcDirs[i] = dir
	}

	localIndex, err := crawler.IndexSourceDirs(srcDirs)
	if err != nil {
		return nil, err
	}

	entry := req.Entry
	if len(entry) == 0 {
		entry = allModules(localIndex)
	}
	if err := crawler.ValidateEntry(entry, localIndex); err != nil {
		return nil, err
	}

	var kernelIndex map[modname.Raw]string
	if req.KernelPrivileged {
		kernelIndex, err = crawler.IndexKernelDirs(srcDirs)
		if err != nil {
			return nil, err
		}
	}

	ft := builder.ForeignTable(details.Artifacts, directDeps)
	result, err := crawler.Crawl(entry, localIndex, e.Toolchain.Parser, ft, req.KernelPrivileged, kernelIndex)
	if err != nil {
		return nil, err
	}

	cachedIfaces, cachedGraphs, err := loadCaches(e.Root)
	if err != nil {
		return nil, err
	}

	compiled, err := e.compileModules(ctx, result, details.Locals, details.ID+1, cachedIfaces, cachedGraphs)
	if err != nil {
		return nil, err
	}

	if req.Options.Optimize {
		if offenders := debugUsers(result); len(offenders) > 0 {
			return nil, &errs.GenerateError{Message: "GenerateCannotOptimizeDebugValues", Modules: offenders}
		}
	}

	newLocals := make(map[modname.Raw]*builder.Local, len(compiled))
	newIfaces := make(map[modname.Raw]artifact.Interface, len(compiled))
	newGraphs := make(map[modname.Raw]external.LocalGraph, len(compiled))
	locals := make(map[modname.Raw]external.LocalGraph, len(compiled))
	for mod, c := range compiled {
		newLocals[mod] = c.local
		newIfaces[mod] = c.iface
		newGraphs[mod] = c.graph
		locals[mod] = c.graph
	}
	for mod, st := range result.Statuses {
		if st.Kind == crawler.SKernelLocal {
			locals[mod] = external.LocalGraph(st.Kernel.Chunk)
		}
	}

	graph, err := e.Toolchain.Optimizer.Link(locals)
	if err != nil {
		return nil, err
	}

	if err := writeCaches(e.Root, newIfaces, newGraphs); err != nil {
		return nil, err
	}

	out, err := assembleOutput(e.Toolchain.Codegen, graph, req.Options, entry, compiled)
	if err != nil {
		return nil, err
	}

	return &Result{Locals: newLocals, Interfaces: newIfaces, Graph: graph, Output: out}, nil
}

// compileModules fans out one goroutine per reachable local module,
// joining on its own imports' futures before invoking the type checker
// A failing module resolves its own
// future with the error so its dependents unblock immediately instead of
// deadlocking; siblings outside that subtree keep compiling, and every
// independent failure is collected so the caller can report as many as
// possible in one pass.
func (e *Engine) compileModules(
	ctx context.Context,
	result *crawler.Result,
	prevLocals map[modname.Raw]*builder.Local,
	buildID builder.BuildID,
	cachedIfaces map[modname.Raw]artifact.Interface,
	cachedGraphs map[modname.Raw]external.LocalGraph,
) (map[modname.Raw]moduleCompile, error) {
	futures := future.NewMap[modname.Raw, moduleCompile]()
	for mod, st := range result.Statuses {
		if st.Kind == crawler.SLocal {
			futures.GetOrCreate(mod)
		}
	}

	var mu sync.Mutex
	var failures []error
	record := func(err error) {
		mu.Lock()
		failures = append(failures, err)
		mu.Unlock()
	}

	g, _ := errgroup.WithContext(ctx)
	for mod, st := range result.Statuses {
		if st.Kind != crawler.SLocal {
			continue
		}
		mod, st := mod, st
		g.Go(func() error {
			f, _ := futures.Get(mod)

			visible := external.VisibleInterfaces{}
			liveImportLocals := map[modname.Raw]*builder.Local{}
			for _, imp := range st.Parsed.Imports {
				impStatus := result.Statuses[imp]
				switch impStatus.Kind {
				case crawler.SLocal:
					depFuture, ok := futures.Get(imp)
					if !ok {
						continue
					}
					dep := depFuture.Wait()
					if dep.err != nil {
						f.Resolve(moduleCompile{err: dep.err})
						return nil
					}
					visible[imp] = dep.iface
					liveImportLocals[imp] = dep.local
				case crawler.SForeign:
					if impStatus.Foreign.IsAmbiguous() {
						err := &errs.BuildError{Kind: errs.AmbiguousExposed, Message: "import " + string(imp) + " is ambiguous among multiple dependencies"}
						f.Resolve(moduleCompile{err: err})
						record(err)
						return nil
					}
					visible[imp] = impStatus.Foreign.Specific.Iface
				}
			}

			info, err := os.Stat(st.Path)
			if err != nil {
				f.Resolve(moduleCompile{err: err})
				record(err)
				return nil
			}
			mtime := info.ModTime()
			prev := prevLocals[mod]

			if !prev.Stale(mtime, liveImportLocals) {
				if iface, ok := cachedIfaces[mod]; ok {
					if graph, ok := cachedGraphs[mod]; ok {
						f.Resolve(moduleCompile{iface: iface, graph: graph, local: prev})
						return nil
					}
				}
			}

			iface, graph, err := e.Toolchain.TypeChecker.Check(st.Parsed, visible)
			if err != nil {
				wrapped := &errs.BuildError{Kind: errs.BadModule, Message: "type error in " + string(mod), Cause: err}
				f.Resolve(moduleCompile{err: wrapped})
				record(wrapped)
				return nil
			}

			changeID := buildID
			if prev != nil && interfacesEqual(cachedIfaces[mod], iface) {
				changeID = prev.LastInterfaceChangeBuildID
			}

			local := &builder.Local{
				Path:                       st.Path,
				LastModified:               mtime,
				Imports:                    st.Parsed.Imports,
				IsMainCandidate:            st.Parsed.DefinesMain,
				LastInterfaceChangeBuildID: changeID,
				LastCompileBuildID:         buildID,
			}
			f.Resolve(moduleCompile{iface: iface, graph: graph, local: local})
			return nil
		})
	}
	g.Wait() // goroutines never return a non-nil error; failures are collected above

	if len(failures) > 0 {
		return nil, errs.BuildErrors(failures)
	}

	out := make(map[modname.Raw]moduleCompile, len(result.Statuses))
	for mod, st := range result.Statuses {
		if st.Kind != crawler.SLocal {
			continue
		}
		f, _ := futures.Get(mod)
		out[mod] = f.Wait()
	}
	return out, nil
}

func interfacesEqual(a, b artifact.Interface) bool {
	return reflect.DeepEqual(a, b)
}

func allModules(localIndex map[modname.Raw]string) []modname.Raw {
	out := make([]modname.Raw, 0, len(localIndex))
	for mod := range localIndex {
		out = append(out, mod)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func debugUsers(result *crawler.Result) []string {
	var out []string
	for mod, st := range result.Statuses {
		if st.Kind == crawler.SLocal && st.Parsed.UsesDebug {
			out = append(out, string(mod))
		}
	}
	sort.Strings(out)
	return out
}

// assembleOutput implements output assembly: --output=*.html
// requires exactly one input that defines main; --output=*.js requires
// every input to define main; /dev/null skips code generation entirely;
// /dev/stdout emits the same JS a .js target would, destined for standard
// output by the command-line host rather than a file.
func assembleOutput(cg external.Codegen, graph artifact.Graph, opts Options, entry []modname.Raw, compiled map[modname.Raw]moduleCompile) ([]byte, error) {
	switch opts.Output.Kind {
	case OutputNull:
		return nil, nil
	case OutputHTML:
		if len(entry) != 1 {
			return nil, &errs.GenerateError{Message: "--output=*.html requires exactly one input module"}
		}
		if !definesMain(entry[0], compiled) {
			return nil, &errs.GenerateError{Message: "input module does not define main", Modules: []string{string(entry[0])}}
		}
		js, err := cg.Emit(graph, entry, opts.Debug)
		if err != nil {
			return nil, err
		}
		return wrapHTML(js), nil
	case OutputJS:
		var missing []string
		for _, m := range entry {
			if !definesMain(m, compiled) {
				missing = append(missing, string(m))
			}
		}
		if len(missing) > 0 {
			return nil, &errs.GenerateError{Message: "every input module must define main", Modules: missing}
		}
		return cg.Emit(graph, entry, opts.Debug)
	case OutputStdout:
		return cg.Emit(graph, entry, opts.Debug)
	default:
		return nil, nil
	}
}

func definesMain(m modname.Raw, compiled map[modname.Raw]moduleCompile) bool {
	c, ok := compiled[m]
	if !ok {
		return false
	}
	for _, v := range c.iface.Values {
		if v.Name == "main" {
			return true
		}
	}
	return false
}

func wrapHTML(js []byte) []byte {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"></head><body>\n<script>\n")
	b.Write(js)
	b.WriteString("\n</script>\n</body></html>\n")
	return []byte(b.String())
}
