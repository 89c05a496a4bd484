// Package registrycache is the disk-backed decorator in front of the
// black-box registry.Client: it materializes `<cache>/<author>/<project>/
// <version>/gren.json` on first fetch, serves later reads from disk (and
// from an in-process LRU) without touching the network, and holds the
// cross-process registry lock that serializes package-artifact writers
// machine-wide.
package registrycache

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/gren-lang/compiler/internal/outline"
	"github.com/gren-lang/compiler/internal/pkgname"
	"github.com/gren-lang/compiler/internal/registry"
	"github.com/gren-lang/compiler/internal/version"
	"github.com/gofrs/flock"
)

// Cache wraps a registry.Client with a disk-backed package cache, an
// in-process LRU of parsed outlines, and a cross-process file lock
// guarding concurrent writers (gofrs/flock; see DESIGN.md).
type Cache struct {
	root   string
	client registry.Client
	lru    *lru.Cache[string, *outline.Outline]
	lock   *flock.Flock
}

// New returns a Cache rooted at root (typically
// $HOME/.cache/gren/<compiler-version>/), backed by client, with an
// in-process outline LRU sized lruSize.
func New(root string, client registry.Client, lruSize int) (*Cache, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating package cache root %s", root)
	}
	c, err := lru.New[string, *outline.Outline](lruSize)
	if err != nil {
		return nil, errors.Wrap(err, "creating outline LRU")
	}
	return &Cache{
		root:   root,
		client: client,
		lru:    c,
		lock:   flock.New(filepath.Join(root, ".registry.lock")),
	}, nil
}

// Lock acquires the cross-process registry lock, blocking until it is
// free. Builders hold it for the duration of a verify-dependency fan-out
// so only one process on the machine writes package artifacts at a time.
func (c *Cache) Lock(ctx context.Context) error {
	for {
		ok, err := c.lock.TryLockContext(ctx, 50*time.Millisecond)
		if err != nil {
			return errors.Wrap(err, "acquiring registry lock")
		}
		if ok {
			return nil
		}
	}
}

// Unlock releases the registry lock.
func (c *Cache) Unlock() error {
	return c.lock.Unlock()
}

func (c *Cache) versionDir(name pkgname.Name, v version.Version) string {
	return filepath.Join(c.root, name.Author, name.Project, v.String())
}

func (c *Cache) outlinePath(name pkgname.Name, v version.Version) string {
	return filepath.Join(c.versionDir(name, v), "gren.json")
}

// ArtifactsPath returns the on-disk path of name@v's persisted
// ArtifactCache ("artifacts.dat").
func (c *Cache) ArtifactsPath(name pkgname.Name, v version.Version) string {
	return filepath.Join(c.versionDir(name, v), "artifacts.dat")
}

// DocsPath returns the on-disk path of name@v's optional generated docs.
func (c *Cache) DocsPath(name pkgname.Name, v version.Version) string {
	return filepath.Join(c.versionDir(name, v), "docs.json")
}

// SourceDir returns the on-disk directory name@v's source tree is
// materialized into.
func (c *Cache) SourceDir(name pkgname.Name, v version.Version) string {
	return filepath.Join(c.versionDir(name, v), "src")
}

func cacheKey(name pkgname.Name, v version.Version) string {
	return name.String() + "@" + v.String()
}

// Versions lists name's published versions from the registry, newest
// first per the list's own ordering contract with the client.
func (c *Cache) Versions(ctx context.Context, name pkgname.Name) ([]version.Version, error) {
	vs, err := c.client.Versions(ctx, name)
	if err != nil {
		return nil, err
	}
	return vs, nil
}

// VersionsOffline lists the versions of name already materialized in the
// local disk cache, without touching the registry at all.
func (c *Cache) VersionsOffline(name pkgname.Name) ([]version.Version, error) {
	dir := filepath.Join(c.root, name.Author, name.Project)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "listing cached versions of %s", name)
	}
	var vs []version.Version
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		v, err := version.Parse(e.Name())
		if err != nil {
			continue
		}
		vs = append(vs, v)
	}
	sort.Slice(vs, func(i, j int) bool { return vs[j].LessThan(vs[i]) })
	return vs, nil
}

// Outline returns name@v's validated manifest, preferring the in-process
// LRU, then the disk cache, and finally fetching and persisting from the
// registry.
func (c *Cache) Outline(ctx context.Context, name pkgname.Name, v version.Version) (*outline.Outline, error) {
	key := cacheKey(name, v)
	if o, ok := c.lru.Get(key); ok {
		return o, nil
	}

	if o, err := c.OutlineOffline(name, v); err == nil {
		c.lru.Add(key, o)
		return o, nil
	}

	raw, err := c.client.FetchOutline(ctx, name, v)
	if err != nil {
		return nil, err
	}
	o, err := outline.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "fetched manifest for %s@%s failed validation", name, v)
	}

	dir := c.versionDir(name, v)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating cache directory for %s@%s", name, v)
	}
	if err := os.WriteFile(c.outlinePath(name, v), raw, 0o644); err != nil {
		return nil, errors.Wrapf(err, "persisting manifest for %s@%s", name, v)
	}

	c.lru.Add(key, o)
	return o, nil
}

// OutlineOffline returns name@v's manifest strictly from the local disk
// cache, never calling the registry. It is what the resolver's offline
// fallback search reads from, and the disk tier Outline checks before
// fetching.
func (c *Cache) OutlineOffline(name pkgname.Name, v version.Version) (*outline.Outline, error) {
	raw, err := os.ReadFile(c.outlinePath(name, v))
	if err != nil {
		return nil, errors.Wrapf(err, "%s@%s is not present in the local package cache", name, v)
	}
	o, err := outline.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "cached manifest for %s@%s failed validation", name, v)
	}
	return o, nil
}

// FetchSource materializes name@v's source tree on disk if it is not
// already present, returning its root directory.
func (c *Cache) FetchSource(ctx context.Context, name pkgname.Name, v version.Version) (string, error) {
	dir := c.SourceDir(name, v)
	if _, err := os.Stat(dir); err == nil {
		return dir, nil
	}
	if err := c.client.FetchSource(ctx, name, v, dir); err != nil {
		return "", err
	}
	return dir, nil
}
