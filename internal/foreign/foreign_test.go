package foreign

import (
	"testing"

	"github.com/gren-lang/compiler/internal/artifact"
	"github.com/gren-lang/compiler/internal/modname"
	"github.com/gren-lang/compiler/internal/pkgname"
)

func mustName(t *testing.T, s string) pkgname.Name {
	t.Helper()
	n, err := pkgname.Parse(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return n
}

func mustMod(t *testing.T, s string) modname.Raw {
	t.Helper()
	m, err := modname.ParseRaw(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

func TestResolveUnique(t *testing.T) {
	tbl := NewTable()
	core := mustName(t, "gren-lang/core")
	mod := mustMod(t, "Basics")
	tbl.Insert(mod, core, artifact.DependencyInterface{Iface: artifact.Interface{Module: mod}})

	res, ok := Resolve(tbl, mod)
	if !ok {
		t.Fatal("expected a resolution")
	}
	if res.IsAmbiguous() {
		t.Fatal("expected a specific resolution")
	}
	if res.Specific == nil {
		t.Fatal("expected a non-nil specific interface")
	}
}

func TestResolveAmbiguous(t *testing.T) {
	tbl := NewTable()
	mod := mustMod(t, "Html")
	a := mustName(t, "gren-lang/html")
	b := mustName(t, "other-author/html")
	tbl.Insert(mod, a, artifact.DependencyInterface{})
	tbl.Insert(mod, b, artifact.DependencyInterface{})

	res, ok := Resolve(tbl, mod)
	if !ok {
		t.Fatal("expected a resolution")
	}
	if !res.IsAmbiguous() {
		t.Fatal("expected an ambiguous resolution")
	}
	if len(res.Ambiguous) != 2 {
		t.Fatalf("got %d owners, want 2", len(res.Ambiguous))
	}
}

func TestResolveUnknownModuleFails(t *testing.T) {
	tbl := NewTable()
	if _, ok := Resolve(tbl, mustMod(t, "Nope")); ok {
		t.Fatal("expected no resolution for an unexposed module")
	}
}

func TestResolveDoesNotFallBackToDottedPrefix(t *testing.T) {
	tbl := NewTable()
	owner := mustName(t, "gren-lang/json")
	family := mustMod(t, "Json.Decode")
	tbl.Insert(family, owner, artifact.DependencyInterface{})

	if _, ok := Resolve(tbl, mustMod(t, "Json.Decode.Extra")); ok {
		t.Fatal("expected no resolution: raw module names are opaque strings, not a dotted hierarchy")
	}
}
