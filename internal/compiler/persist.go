package compiler

import (
	"os"
	"path/filepath"

	"github.com/gren-lang/compiler/internal/artifact"
	gcodec "github.com/gren-lang/compiler/internal/codec"
	"github.com/gren-lang/compiler/internal/external"
	"github.com/gren-lang/compiler/internal/modname"
)

const (
	interfacesPath = ".gren/interfaces.dat"
	objectsPath    = ".gren/objects.dat"
)

// loadCaches reads the per-module Interface and LocalGraph maps persisted
// by the previous successful compile. Either file missing is not an
// error: a first build has
// nothing to reuse yet.
func loadCaches(root string) (map[modname.Raw]artifact.Interface, map[modname.Raw]external.LocalGraph, error) {
	ifaces, err := readInterfaces(filepath.Join(root, interfacesPath))
	if err != nil {
		return nil, nil, err
	}
	graphs, err := readObjects(filepath.Join(root, objectsPath))
	if err != nil {
		return nil, nil, err
	}
	return ifaces, graphs, nil
}

func readInterfaces(path string) (map[modname.Raw]artifact.Interface, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[modname.Raw]artifact.Interface{}, nil
		}
		return nil, err
	}
	r := gcodec.NewReader(raw)
	n := r.Len()
	out := make(map[modname.Raw]artifact.Interface, n)
	for i := 0; i < n; i++ {
		mod := modname.DecodeRaw(r)
		out[mod] = artifact.DecodeInterface(r)
	}
	if err := r.Err(); err != nil {
		return nil, &gcodec.CorruptCacheError{Path: interfacesPath, Cause: err}
	}
	return out, nil
}

func readObjects(path string) (map[modname.Raw]external.LocalGraph, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[modname.Raw]external.LocalGraph{}, nil
		}
		return nil, err
	}
	r := gcodec.NewReader(raw)
	n := r.Len()
	out := make(map[modname.Raw]external.LocalGraph, n)
	for i := 0; i < n; i++ {
		mod := modname.DecodeRaw(r)
		out[mod] = external.LocalGraph(r.ReadBytes())
	}
	if err := r.Err(); err != nil {
		return nil, &gcodec.CorruptCacheError{Path: objectsPath, Cause: err}
	}
	return out, nil
}

// writeCaches persists the interface and object maps for the next
// invocation's staleness-driven reuse.
func writeCaches(root string, ifaces map[modname.Raw]artifact.Interface, graphs map[modname.Raw]external.LocalGraph) error {
	iw := gcodec.NewWriter()
	iw.Len(len(ifaces))
	for mod, iface := range ifaces {
		mod.Encode(iw)
		iface.Encode(iw)
	}
	if err := writeFile(filepath.Join(root, interfacesPath), iw.Bytes()); err != nil {
		return err
	}

	ow := gcodec.NewWriter()
	ow.Len(len(graphs))
	for mod, g := range graphs {
		mod.Encode(ow)
		ow.WriteBytes(g)
	}
	return writeFile(filepath.Join(root, objectsPath), ow.Bytes())
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
