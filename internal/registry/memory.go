package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/gren-lang/compiler/internal/pkgname"
	"github.com/gren-lang/compiler/internal/version"
	"github.com/pkg/errors"
)

// Memory is an in-memory Client, used by resolver/builder/registrycache
// tests in place of a real HTTP/git registry and wired by cmd/gren as the
// CLI's registry.
type Memory struct {
	mu        sync.Mutex
	outlines  map[string]map[version.Version][]byte
	unreach   bool
	sourceDir map[string]string
}

// NewMemory returns an empty Memory registry.
func NewMemory() *Memory {
	return &Memory{outlines: map[string]map[version.Version][]byte{}}
}

// Publish registers name@v's raw gren.json bytes as available.
func (m *Memory) Publish(name pkgname.Name, v version.Version, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outlines[name.String()] == nil {
		m.outlines[name.String()] = map[version.Version][]byte{}
	}
	m.outlines[name.String()][v] = raw
}

// SetUnreachable toggles every Client method to fail with
// ErrUnavailable, simulating a down network for offline-fallback tests.
func (m *Memory) SetUnreachable(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unreach = v
}

func (m *Memory) Versions(ctx context.Context, name pkgname.Name) ([]version.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unreach {
		return nil, ErrUnavailable
	}
	vs := make([]version.Version, 0, len(m.outlines[name.String()]))
	for v := range m.outlines[name.String()] {
		vs = append(vs, v)
	}
	sort.Slice(vs, func(i, j int) bool { return vs[j].LessThan(vs[i]) })
	if len(vs) == 0 {
		return nil, errors.Errorf("unknown package %s", name)
	}
	return vs, nil
}

func (m *Memory) FetchOutline(ctx context.Context, name pkgname.Name, v version.Version) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unreach {
		return nil, ErrUnavailable
	}
	raw, ok := m.outlines[name.String()][v]
	if !ok {
		return nil, errors.Errorf("no published manifest for %s@%s", name, v)
	}
	return raw, nil
}

func (m *Memory) FetchSource(ctx context.Context, name pkgname.Name, v version.Version, destDir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unreach {
		return ErrUnavailable
	}
	return nil
}
