package crawler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gren-lang/compiler/internal/artifact"
	"github.com/gren-lang/compiler/internal/errs"
	"github.com/gren-lang/compiler/internal/external"
	"github.com/gren-lang/compiler/internal/foreign"
	"github.com/gren-lang/compiler/internal/modname"
	"github.com/gren-lang/compiler/internal/pkgname"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIndexSourceDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Main.gren", "module Main\n")
	writeFile(t, dir, "Sub/Helper.gren", "module Sub.Helper\n")

	index, err := IndexSourceDirs([]string{dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(index) != 2 {
		t.Fatalf("got %d entries, want 2: %v", len(index), index)
	}
	if _, ok := index[modname.Raw("Main")]; !ok {
		t.Fatal("expected Main to be indexed")
	}
	if _, ok := index[modname.Raw("Sub.Helper")]; !ok {
		t.Fatal("expected Sub.Helper to be indexed")
	}
}

func TestIndexSourceDirsRejectsAmbiguousLocal(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	writeFile(t, dirA, "Main.gren", "module Main\n")
	writeFile(t, dirB, "Main.gren", "module Main\n")

	if _, err := IndexSourceDirs([]string{dirA, dirB}); err == nil {
		t.Fatal("expected an ambiguous-source-dir error")
	} else if be, ok := err.(*errs.BuildError); !ok || be.Kind != errs.AmbiguousSourceDir {
		t.Fatalf("got %#v", err)
	}
}

func TestCrawlDetectsCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "A.gren", "module A\nimport B\n")
	writeFile(t, dir, "B.gren", "module B\nimport A\n")

	index, err := IndexSourceDirs([]string{dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = Crawl([]modname.Raw{"A"}, index, external.Reference{}, foreign.NewTable(), false, nil)
	if err == nil {
		t.Fatal("expected a cycle error")
	}
	be, ok := err.(*errs.BuildError)
	if !ok || be.Kind != errs.ImportCycle {
		t.Fatalf("got %#v", err)
	}
}

func TestCrawlResolvesForeignImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Main.gren", "module Main\nimport Html\n")

	index, err := IndexSourceDirs([]string{dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ft := foreign.NewTable()
	owner, err := pkgname.Parse("gren-lang/html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ft.Insert("Html", owner, artifact.DependencyInterface{})

	res, err := Crawl([]modname.Raw{"Main"}, index, external.Reference{}, ft, false, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st, ok := res.Statuses["Html"]
	if !ok || st.Kind != SForeign {
		t.Fatalf("expected Html to resolve as foreign, got %#v", res.Statuses)
	}
}

func TestCrawlReportsUnknownImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Main.gren", "module Main\nimport Nowhere\n")

	index, err := IndexSourceDirs([]string{dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = Crawl([]modname.Raw{"Main"}, index, external.Reference{}, foreign.NewTable(), false, nil)
	if err == nil {
		t.Fatal("expected an unknown-import error")
	}
}

func TestCrawlResolvesKernelImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Main.gren", "module Main\nimport Gren.Kernel.List\n")
	writeFile(t, dir, "Gren/Kernel/List.js", "kernel Gren.Kernel.List\nvar _List_cons = 1;\n")

	index, err := IndexSourceDirs([]string{dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	kernelIndex, err := IndexKernelDirs([]string{dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := Crawl([]modname.Raw{"Main"}, index, external.Reference{}, foreign.NewTable(), true, kernelIndex)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st, ok := res.Statuses["Gren.Kernel.List"]
	if !ok || st.Kind != SKernelLocal {
		t.Fatalf("expected Gren.Kernel.List to resolve as a kernel module, got %#v", res.Statuses)
	}
	if len(st.Kernel.Chunk) == 0 {
		t.Fatal("expected a non-empty kernel chunk")
	}
}

func TestCrawlRejectsKernelImportWithoutPrivilege(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Main.gren", "module Main\nimport Gren.Kernel.List\n")
	writeFile(t, dir, "Gren/Kernel/List.js", "kernel Gren.Kernel.List\n")

	index, err := IndexSourceDirs([]string{dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	kernelIndex, err := IndexKernelDirs([]string{dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = Crawl([]modname.Raw{"Main"}, index, external.Reference{}, foreign.NewTable(), false, kernelIndex)
	if err == nil {
		t.Fatal("expected an unknown-import error when the package is not kernel-privileged")
	}
}
