package external

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gren-lang/compiler/internal/artifact"
	"github.com/gren-lang/compiler/internal/modname"
)

// Reference is a trivial in-memory Parser/TypeChecker/Optimizer/Codegen,
// used by this module's own tests and as cmd/gren's default toolchain in
// place of the real toolchain.
// Parse understands a tiny fixture format (see parseFixture); Check
// fabricates an Interface deterministically from the module name; Link
// concatenates local graphs in a stable order; Emit renders a placeholder
// JS string naming the entry modules.
type Reference struct{}

// Parse reads the fixture convention: a first "module <Name>" line,
// zero or more "import <Name>" lines, and optional trailing "debug" and
// "main" lines marking UsesDebug and DefinesMain.
func (Reference) Parse(path string, src []byte) (ParsedModule, error) {
	var pm ParsedModule
	for _, line := range strings.Split(string(src), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "module "):
			pm.Name = modname.Raw(strings.TrimSpace(strings.TrimPrefix(line, "module ")))
		case strings.HasPrefix(line, "import "):
			pm.Imports = append(pm.Imports, modname.Raw(strings.TrimSpace(strings.TrimPrefix(line, "import "))))
		case line == "debug":
			pm.UsesDebug = true
		case line == "main":
			pm.DefinesMain = true
		}
	}
	if pm.Name == "" {
		return ParsedModule{}, fmt.Errorf("fixture source %s has no \"module <Name>\" line", path)
	}
	return pm, nil
}

// ParseKernel reads the same line-oriented fixture convention as Parse,
// but with a leading "kernel <Name>" line instead of "module <Name>";
// every line after the header, import lines included, becomes the chunk
// verbatim.
func (Reference) ParseKernel(path string, src []byte) (KernelModule, error) {
	var km KernelModule
	lines := strings.Split(string(src), "\n")
	headerIdx := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "kernel ") {
			km.Name = modname.Raw(strings.TrimSpace(strings.TrimPrefix(trimmed, "kernel ")))
			headerIdx = i
			continue
		}
		if strings.HasPrefix(trimmed, "import ") {
			km.Imports = append(km.Imports, modname.Raw(strings.TrimSpace(strings.TrimPrefix(trimmed, "import "))))
		}
	}
	if km.Name == "" {
		return KernelModule{}, fmt.Errorf("kernel fixture source %s has no \"kernel <Name>\" line", path)
	}
	km.Chunk = []byte(strings.Join(lines[headerIdx+1:], "\n"))
	return km, nil
}

// Check fabricates a minimal Interface, exposing a "main" value only when
// the parsed module declared one, failing if any import lacks a visible
// interface.
func (Reference) Check(mod ParsedModule, visible VisibleInterfaces) (artifact.Interface, LocalGraph, error) {
	for _, imp := range mod.Imports {
		if _, ok := visible[imp]; !ok {
			return artifact.Interface{}, nil, fmt.Errorf("import %q has no visible interface", imp)
		}
	}
	iface := artifact.Interface{Module: mod.Name}
	if mod.DefinesMain {
		iface.Values = []artifact.ValueSig{{Name: "main", Canonical: "Html msg"}}
	}
	graph := LocalGraph(fmt.Sprintf("local:%s", mod.Name))
	return iface, graph, nil
}

// Link concatenates every local graph's bytes in module-name order into
// one opaque blob, so the result is deterministic regardless of map
// iteration order.
func (Reference) Link(locals map[modname.Raw]LocalGraph) (artifact.Graph, error) {
	names := make([]modname.Raw, 0, len(locals))
	for n := range locals {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	var out []byte
	for _, n := range names {
		out = append(out, locals[n]...)
		out = append(out, '\n')
	}
	return artifact.Graph(out), nil
}

// Emit renders a placeholder JavaScript module naming the entry modules,
// standing in for real code generation.
func (Reference) Emit(graph artifact.Graph, entryModules []modname.Raw, debug bool) ([]byte, error) {
	var b strings.Builder
	b.WriteString("// generated by the reference codegen\n")
	for _, m := range entryModules {
		fmt.Fprintf(&b, "// entry: %s\n", m)
	}
	b.Write(graph)
	return []byte(b.String()), nil
}
