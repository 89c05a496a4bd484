package docs

import (
	"strings"
	"testing"

	"github.com/gren-lang/compiler/internal/artifact"
	"github.com/gren-lang/compiler/internal/modname"
	"github.com/gren-lang/compiler/internal/outline"
)

func TestBuildGroupsByHeader(t *testing.T) {
	exposed := outline.ExposedModules{
		Headers: []outline.ExposedHeader{
			{Header: "Core", Modules: []modname.Raw{"Main"}},
		},
	}
	interfaces := map[modname.Raw]artifact.DependencyInterface{
		"Main": {Iface: artifact.Interface{
			Module: "Main",
			Values: []artifact.ValueSig{{Name: "main", Canonical: "Html msg"}},
		}},
	}

	doc := Build(exposed, interfaces)
	if len(doc.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(doc.Sections))
	}
	if doc.Sections[0].Header != "Core" {
		t.Fatalf("expected header Core, got %q", doc.Sections[0].Header)
	}
	if len(doc.Sections[0].Modules) != 1 || doc.Sections[0].Modules[0].Name != "Main" {
		t.Fatalf("expected Main module doc, got %+v", doc.Sections[0].Modules)
	}
}

func TestBuildSkipsModulesMissingFromInterfaces(t *testing.T) {
	exposed := outline.ExposedModules{
		Headers: []outline.ExposedHeader{{Modules: []modname.Raw{"Missing"}}},
	}
	doc := Build(exposed, map[modname.Raw]artifact.DependencyInterface{})
	if len(doc.Sections[0].Modules) != 0 {
		t.Fatalf("expected no module docs for a missing interface, got %+v", doc.Sections[0].Modules)
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	doc := Document{Sections: []HeaderDoc{{Header: "Core", Modules: []ModuleDoc{{Name: "Main"}}}}}
	raw, err := Marshal(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(raw), "\"Main\"") {
		t.Fatalf("expected module name in output, got %s", raw)
	}
	back, err := Unmarshal(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back.Sections[0].Modules[0].Name != "Main" {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestUnmarshalRejectsCorruptJSON(t *testing.T) {
	if _, err := Unmarshal([]byte("{not json")); err == nil {
		t.Fatal("expected an error for corrupt docs.json")
	}
}
