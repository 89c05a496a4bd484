package compiler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gren-lang/compiler/internal/artifact"
	"github.com/gren-lang/compiler/internal/builder"
	"github.com/gren-lang/compiler/internal/external"
	"github.com/gren-lang/compiler/internal/modname"
	"github.com/gren-lang/compiler/internal/pkgname"
)

func writeSrc(t *testing.T, dir, relPath, content string) string {
	t.Helper()
	path := filepath.Join(dir, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func depName(t *testing.T) pkgname.Name {
	t.Helper()
	n, err := pkgname.Parse("author/dep")
	if err != nil {
		t.Fatalf("pkgname.Parse: %v", err)
	}
	return n
}

func newEngine(root string) *Engine {
	return &Engine{
		Root: root,
		Toolchain: Toolchain{
			Parser:      external.Reference{},
			TypeChecker: external.Reference{},
			Optimizer:   external.Reference{},
			Codegen:     external.Reference{},
		},
	}
}

func fakeDetails(t *testing.T) *builder.Details {
	t.Helper()
	dep := depName(t)
	return &builder.Details{
		Artifacts: map[pkgname.Name]artifact.Artifacts{
			dep: {
				Interfaces: map[modname.Raw]artifact.DependencyInterface{
					"Dep": {Visibility: artifact.Public, Iface: artifact.Interface{Module: "Dep"}},
				},
			},
		},
		Locals: map[modname.Raw]*builder.Local{},
	}
}

func TestCompileFirstBuildStampsBuildIDOne(t *testing.T) {
	root := t.TempDir()
	srcDir := filepath.Join(root, "src")
	writeSrc(t, srcDir, "Main.gren", "module Main\nimport Dep\nmain\n")

	dep := depName(t)
	details := fakeDetails(t)
	directDeps := map[pkgname.Name]bool{dep: true}

	e := newEngine(root)
	req := Request{
		Entry:             []modname.Raw{"Main"},
		SourceDirectories: []string{srcDir},
		Options:           Options{Output: Output{Kind: OutputNull}},
	}

	result, err := e.Compile(context.Background(), req, details, directDeps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Output != nil {
		t.Fatalf("expected no output for OutputNull, got %q", result.Output)
	}
	local, ok := result.Locals["Main"]
	if !ok {
		t.Fatal("expected a Local record for Main")
	}
	if local.LastCompileBuildID != 1 {
		t.Fatalf("expected first build to stamp BuildID 1, got %d", local.LastCompileBuildID)
	}
	if !local.IsMainCandidate {
		t.Fatal("expected Main to be flagged as a main candidate")
	}
}

func TestCompileReusesUnchangedModuleOnSecondRun(t *testing.T) {
	root := t.TempDir()
	srcDir := filepath.Join(root, "src")
	path := writeSrc(t, srcDir, "Main.gren", "module Main\nmain\n")

	// Pin the file's mtime so the second Compile sees an identical mtime.
	mtime := time.Now().Add(-time.Hour).Truncate(time.Second)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	details := fakeDetails(t)
	e := newEngine(root)
	req := Request{
		Entry:             []modname.Raw{"Main"},
		SourceDirectories: []string{srcDir},
		Options:           Options{Output: Output{Kind: OutputNull}},
	}

	first, err := e.Compile(context.Background(), req, details, nil)
	if err != nil {
		t.Fatalf("first compile: %v", err)
	}

	details.Locals = first.Locals
	details.ID = 1

	second, err := e.Compile(context.Background(), req, details, nil)
	if err != nil {
		t.Fatalf("second compile: %v", err)
	}
	if second.Locals["Main"].LastCompileBuildID != first.Locals["Main"].LastCompileBuildID {
		t.Fatalf("expected an unchanged module to keep its original compile BuildID: first=%d second=%d",
			first.Locals["Main"].LastCompileBuildID, second.Locals["Main"].LastCompileBuildID)
	}
}

func TestCompileRecompilesAfterEdit(t *testing.T) {
	root := t.TempDir()
	srcDir := filepath.Join(root, "src")
	path := writeSrc(t, srcDir, "Main.gren", "module Main\nmain\n")

	details := fakeDetails(t)
	e := newEngine(root)
	req := Request{
		Entry:             []modname.Raw{"Main"},
		SourceDirectories: []string{srcDir},
		Options:           Options{Output: Output{Kind: OutputNull}},
	}

	first, err := e.Compile(context.Background(), req, details, nil)
	if err != nil {
		t.Fatalf("first compile: %v", err)
	}
	details.Locals = first.Locals
	details.ID = 1

	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	second, err := e.Compile(context.Background(), req, details, nil)
	if err != nil {
		t.Fatalf("second compile: %v", err)
	}
	if second.Locals["Main"].LastCompileBuildID == first.Locals["Main"].LastCompileBuildID {
		t.Fatal("expected a touched file to be recompiled with a new BuildID")
	}
}

func TestCompileRejectsOptimizeAndDebugTogether(t *testing.T) {
	root := t.TempDir()
	e := newEngine(root)
	req := Request{Options: Options{Optimize: true, Debug: true}}
	_, err := e.Compile(context.Background(), req, fakeDetails(t), nil)
	if err == nil {
		t.Fatal("expected an error for --optimize combined with --debug")
	}
}

func TestCompileOptimizeFailsOnReachableDebugUse(t *testing.T) {
	root := t.TempDir()
	srcDir := filepath.Join(root, "src")
	writeSrc(t, srcDir, "Main.gren", "module Main\nmain\ndebug\n")

	e := newEngine(root)
	req := Request{
		Entry:             []modname.Raw{"Main"},
		SourceDirectories: []string{srcDir},
		Options:           Options{Optimize: true, Output: Output{Kind: OutputNull}},
	}
	_, err := e.Compile(context.Background(), req, fakeDetails(t), nil)
	if err == nil {
		t.Fatal("expected an error for --optimize with a reachable Debug use")
	}
}

func TestCompileHTMLRequiresSingleMainModule(t *testing.T) {
	root := t.TempDir()
	srcDir := filepath.Join(root, "src")
	writeSrc(t, srcDir, "Main.gren", "module Main\nmain\n")
	writeSrc(t, srcDir, "Other.gren", "module Other\nmain\n")

	e := newEngine(root)
	req := Request{
		Entry:             []modname.Raw{"Main", "Other"},
		SourceDirectories: []string{srcDir},
		Options:           Options{Output: Output{Kind: OutputHTML, Path: "index.html"}},
	}
	_, err := e.Compile(context.Background(), req, fakeDetails(t), nil)
	if err == nil {
		t.Fatal("expected an error for --output=*.html with more than one input module")
	}
}

func TestCompileHTMLEmitsWrappedOutput(t *testing.T) {
	root := t.TempDir()
	srcDir := filepath.Join(root, "src")
	writeSrc(t, srcDir, "Main.gren", "module Main\nmain\n")

	e := newEngine(root)
	req := Request{
		Entry:             []modname.Raw{"Main"},
		SourceDirectories: []string{srcDir},
		Options:           Options{Output: Output{Kind: OutputHTML, Path: "index.html"}},
	}
	result, err := e.Compile(context.Background(), req, fakeDetails(t), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(result.Output), "<html>") {
		t.Fatalf("expected HTML wrapper in output, got %q", result.Output)
	}
}

func TestCompileJSRequiresMainInEveryInput(t *testing.T) {
	root := t.TempDir()
	srcDir := filepath.Join(root, "src")
	writeSrc(t, srcDir, "Main.gren", "module Main\nmain\n")
	writeSrc(t, srcDir, "Helper.gren", "module Helper\n")

	e := newEngine(root)
	req := Request{
		Entry:             []modname.Raw{"Main", "Helper"},
		SourceDirectories: []string{srcDir},
		Options:           Options{Output: Output{Kind: OutputJS, Path: "out.js"}},
	}
	_, err := e.Compile(context.Background(), req, fakeDetails(t), nil)
	if err == nil {
		t.Fatal("expected an error when not every JS input defines main")
	}
}
