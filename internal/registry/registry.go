// Package registry defines the black-box package registry client the
// core treats as out of scope. The core only ever talks to the narrow
// Client interface; the concrete
// HTTP/git implementation lives outside this module's scope.
package registry

import (
	"context"

	"github.com/gren-lang/compiler/internal/pkgname"
	"github.com/gren-lang/compiler/internal/version"
	"github.com/pkg/errors"
)

// ErrUnavailable is returned by a Client method when the registry cannot be
// reached at all (network down, DNS failure, git remote unreachable). The
// resolver and registrycache distinguish this from "reachable but package
// not found" to decide whether an offline fallback is even applicable.
var ErrUnavailable = errors.New("registry unavailable")

// Client is the black-box registry surface: list published versions of a
// package, fetch one version's manifest, and materialize one version's
// source tree on disk.
type Client interface {
	// Versions lists every published version of name, newest first.
	Versions(ctx context.Context, name pkgname.Name) ([]version.Version, error)

	// FetchOutline retrieves the raw gren.json bytes for name@v.
	FetchOutline(ctx context.Context, name pkgname.Name, v version.Version) ([]byte, error)

	// FetchSource materializes name@v's source tree under destDir.
	FetchSource(ctx context.Context, name pkgname.Name, v version.Version, destDir string) error
}
