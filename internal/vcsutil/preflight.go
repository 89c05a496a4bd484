package vcsutil

import (
	"os"
	"path/filepath"

	"github.com/gren-lang/compiler/internal/errs"
	"github.com/gren-lang/compiler/internal/outline"
	"github.com/gren-lang/compiler/internal/version"
)

// CheckManifest fails if the package outline is missing a summary or
// license, or the project root has no README.
func CheckManifest(root string, pkg *outline.Package) error {
	if pkg.Summary == "" {
		return &errs.PublishError{Message: "gren.json is missing a summary"}
	}
	if pkg.License == "" {
		return &errs.PublishError{Message: "gren.json is missing a license"}
	}
	if !hasReadme(root) {
		return &errs.PublishError{Message: "project is missing a README"}
	}
	return nil
}

func hasReadme(root string) bool {
	for _, name := range []string{"README.md", "README", "README.txt"} {
		if _, err := os.Stat(filepath.Join(root, name)); err == nil {
			return true
		}
	}
	return false
}

// CheckVersionProgression fails unless next is exactly one valid bump
// above published. The very first publish must be version.Initial.
func CheckVersionProgression(published *version.Version, next version.Version) error {
	if published == nil {
		if next != version.Initial {
			return &errs.PublishError{Message: "a package's first published version must be " + version.Initial.String()}
		}
		return nil
	}
	valid := []version.Version{
		{Major: published.Major + 1},
		{Major: published.Major, Minor: published.Minor + 1},
		{Major: published.Major, Minor: published.Minor, Patch: published.Patch + 1},
	}
	for _, v := range valid {
		if v == next {
			return nil
		}
	}
	return &errs.PublishError{Message: "version " + next.String() + " is not a valid bump from " + published.String()}
}
