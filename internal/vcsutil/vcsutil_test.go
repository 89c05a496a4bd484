package vcsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gren-lang/compiler/internal/outline"
	"github.com/gren-lang/compiler/internal/version"
)

type fakeRepo struct {
	dirty bool
	tags  []string
}

func (f fakeRepo) IsDirty() bool          { return f.dirty }
func (f fakeRepo) Tags() ([]string, error) { return f.tags, nil }

func TestCheckCleanFailsWhenDirty(t *testing.T) {
	if err := CheckClean(fakeRepo{dirty: true}); err == nil {
		t.Fatal("expected an error for a dirty working tree")
	}
	if err := CheckClean(fakeRepo{dirty: false}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckTaggedRequiresMatchingTag(t *testing.T) {
	v := version.Version{Major: 1, Minor: 0, Patch: 0}
	if err := CheckTagged(fakeRepo{tags: []string{"1.0.0"}}, v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckTagged(fakeRepo{tags: []string{"0.9.0"}}, v); err == nil {
		t.Fatal("expected an error for a missing tag")
	}
}

func TestCheckManifestRequiresSummaryLicenseReadme(t *testing.T) {
	root := t.TempDir()
	pkg := &outline.Package{Summary: "a package", License: "BSD-3-Clause"}
	if err := CheckManifest(root, pkg); err == nil {
		t.Fatal("expected an error for a missing README")
	}
	if err := os.WriteFile(filepath.Join(root, "README.md"), []byte("# hi"), 0o644); err != nil {
		t.Fatalf("write readme: %v", err)
	}
	if err := CheckManifest(root, pkg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pkg.Summary = ""
	if err := CheckManifest(root, pkg); err == nil {
		t.Fatal("expected an error for a missing summary")
	}
}

func TestCheckVersionProgression(t *testing.T) {
	if err := CheckVersionProgression(nil, version.Initial); err != nil {
		t.Fatalf("unexpected error for first publish: %v", err)
	}
	if err := CheckVersionProgression(nil, version.Version{Major: 2}); err == nil {
		t.Fatal("expected an error for a first publish not at Initial")
	}

	published := version.Version{Major: 1, Minor: 2, Patch: 3}
	if err := CheckVersionProgression(&published, version.Version{Major: 1, Minor: 2, Patch: 4}); err != nil {
		t.Fatalf("unexpected error for a valid patch bump: %v", err)
	}
	if err := CheckVersionProgression(&published, version.Version{Major: 1, Minor: 2, Patch: 6}); err == nil {
		t.Fatal("expected an error for skipping versions")
	}
}
