// Package vcsutil implements the git-based preflight checks the publish
// command needs (missing git tag, uncommitted local changes), backed
// by Masterminds/vcs the way golang-dep's own
// project_manager.go drives a repo for its own status checks.
package vcsutil

import (
	"fmt"

	"github.com/Masterminds/vcs"

	"github.com/gren-lang/compiler/internal/errs"
	"github.com/gren-lang/compiler/internal/version"
)

// Repo narrows the operations publish preflight needs out of
// *vcs.GitRepo, so tests can supply a fake instead of shelling out to a
// real git binary.
type Repo interface {
	IsDirty() bool
	Tags() ([]string, error)
}

// Open wraps Masterminds/vcs.NewGitRepo for a local-only check (no remote
// fetch is needed for a publish preflight).
func Open(localDir string) (Repo, error) {
	repo, err := vcs.NewGitRepo("", localDir)
	if err != nil {
		return nil, &errs.PublishError{Message: fmt.Sprintf("opening git repository at %s: %v", localDir, err)}
	}
	return repo, nil
}

// tagFor is the git tag convention a publish of v is expected to have
// created: a bare "major.minor.patch", matching elm/gren package registry
// convention.
func tagFor(v version.Version) string {
	return v.String()
}

// CheckClean fails if the working tree has uncommitted changes.
func CheckClean(r Repo) error {
	if r.IsDirty() {
		return &errs.PublishError{Message: "uncommitted local changes; commit or stash them before publishing"}
	}
	return nil
}

// CheckTagged fails if no git tag exists for v.
func CheckTagged(r Repo, v version.Version) error {
	tags, err := r.Tags()
	if err != nil {
		return &errs.PublishError{Message: fmt.Sprintf("listing git tags: %v", err)}
	}
	want := tagFor(v)
	for _, t := range tags {
		if t == want {
			return nil
		}
	}
	return &errs.PublishError{Message: fmt.Sprintf("missing git tag %q for the version being published", want)}
}
