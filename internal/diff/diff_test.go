package diff

import (
	"testing"

	"github.com/gren-lang/compiler/internal/artifact"
	"github.com/gren-lang/compiler/internal/modname"
	"github.com/gren-lang/compiler/internal/version"
)

func TestDiffDetectsAddedChangedRemoved(t *testing.T) {
	oldIfaces := map[modname.Raw]artifact.Interface{
		"Main": {
			Module: "Main",
			Values: []artifact.ValueSig{
				{Name: "view", Canonical: "Model -> Html msg"},
				{Name: "oldHelper", Canonical: "Int -> Int"},
			},
		},
	}
	newIfaces := map[modname.Raw]artifact.Interface{
		"Main": {
			Module: "Main",
			Values: []artifact.ValueSig{
				{Name: "view", Canonical: "Model -> Html msg -> String"},
				{Name: "newHelper", Canonical: "Int -> Int"},
			},
		},
	}

	r := Diff(oldIfaces, newIfaces)
	if len(r.Modules) != 1 {
		t.Fatalf("expected 1 module diff, got %d", len(r.Modules))
	}
	md := r.Modules[0]
	if len(md.Added) != 1 || md.Added[0] != "newHelper" {
		t.Fatalf("expected newHelper added, got %v", md.Added)
	}
	if len(md.Changed) != 1 || md.Changed[0] != "view" {
		t.Fatalf("expected view changed, got %v", md.Changed)
	}
	if len(md.Removed) != 1 || md.Removed[0] != "oldHelper" {
		t.Fatalf("expected oldHelper removed, got %v", md.Removed)
	}
	if !r.HasBreakingChanges() {
		t.Fatal("expected breaking changes to be detected")
	}
}

func TestDiffWholeModuleAddedOrRemoved(t *testing.T) {
	oldIfaces := map[modname.Raw]artifact.Interface{}
	newIfaces := map[modname.Raw]artifact.Interface{
		"New": {Module: "New", Values: []artifact.ValueSig{{Name: "x", Canonical: "Int"}}},
	}
	r := Diff(oldIfaces, newIfaces)
	if len(r.Modules) != 1 || len(r.Modules[0].Added) != 1 {
		t.Fatalf("expected a new module with one added export, got %+v", r.Modules)
	}
}

func TestDiffEmptyWhenIdentical(t *testing.T) {
	ifaces := map[modname.Raw]artifact.Interface{
		"Main": {Module: "Main", Values: []artifact.ValueSig{{Name: "x", Canonical: "Int"}}},
	}
	r := Diff(ifaces, ifaces)
	if !r.IsEmpty() {
		t.Fatalf("expected no diff for identical interfaces, got %+v", r.Modules)
	}
}

func TestSuggestBump(t *testing.T) {
	current := version.Version{Major: 1, Minor: 2, Patch: 3}

	breaking := Report{Modules: []ModuleDiff{{Module: "M", Changed: []string{"f"}}}}
	if got := SuggestBump(current, breaking); got != (version.Version{Major: 2}) {
		t.Fatalf("expected a MAJOR bump, got %v", got)
	}

	additive := Report{Modules: []ModuleDiff{{Module: "M", Added: []string{"g"}}}}
	if got := SuggestBump(current, additive); got != (version.Version{Major: 1, Minor: 3}) {
		t.Fatalf("expected a MINOR bump, got %v", got)
	}

	none := Report{}
	if got := SuggestBump(current, none); got != (version.Version{Major: 1, Minor: 2, Patch: 4}) {
		t.Fatalf("expected a PATCH bump, got %v", got)
	}
}
