package outline

import (
	"encoding/json"

	"github.com/gren-lang/compiler/internal/errs"
	"github.com/gren-lang/compiler/internal/modname"
)

// writeApplication and writePackage mirror rawOutline's schema but are
// kept separate from it: parsePackage re-unmarshals gren-version and
// dependencies straight out of the source bytes rather than through
// rawOutline's typed fields, so there's no single raw shape that reads
// and writes both variants symmetrically.
type writeApplication struct {
	Type              string            `json:"type"`
	SourceDirectories []string          `json:"source-directories"`
	GrenVersion       string            `json:"gren-version"`
	Platform          string            `json:"platform"`
	Dependencies      writeDependencies `json:"dependencies"`
}

type writeDependencies struct {
	Direct   map[string]string `json:"direct"`
	Indirect map[string]string `json:"indirect"`
}

type writePackage struct {
	Type           string            `json:"type"`
	Name           string            `json:"name"`
	Summary        string            `json:"summary"`
	License        string            `json:"license"`
	Version        string            `json:"version"`
	Platform       string            `json:"platform"`
	ExposedModules json.RawMessage   `json:"exposed-modules"`
	GrenVersion    string            `json:"gren-version"`
	Dependencies   map[string]string `json:"dependencies"`
}

// Write serializes o back into gren.json bytes, the inverse of Parse. It
// is used by `init` to create a fresh manifest and by `bump` to persist a
// newly chosen package version.
func Write(o *Outline) ([]byte, error) {
	var (
		raw any
		err error
	)
	switch {
	case o.IsApplication():
		raw = applicationToRaw(o.Application)
	case o.IsPackage():
		raw, err = packageToRaw(o.Package)
		if err != nil {
			return nil, err
		}
	default:
		return nil, &errs.OutlineError{Message: "outline has neither an application nor a package"}
	}
	out, merr := json.MarshalIndent(raw, "", "    ")
	if merr != nil {
		return nil, &errs.OutlineError{Message: "failed to serialize gren.json: " + merr.Error()}
	}
	return append(out, '\n'), nil
}

func applicationToRaw(app *Application) writeApplication {
	direct := make(map[string]string, len(app.Direct))
	for name, v := range app.Direct {
		direct[name.String()] = v.String()
	}
	indirect := make(map[string]string, len(app.Indirect))
	for name, v := range app.Indirect {
		indirect[name.String()] = v.String()
	}
	return writeApplication{
		Type:              "application",
		SourceDirectories: app.SourceDirectories,
		GrenVersion:       app.GrenVersion.String(),
		Platform:          string(app.Platform),
		Dependencies: writeDependencies{
			Direct:   direct,
			Indirect: indirect,
		},
	}
}

func packageToRaw(pkg *Package) (writePackage, error) {
	exposed, err := exposedModulesToRaw(pkg.ExposedModules)
	if err != nil {
		return writePackage{}, &errs.OutlineError{Message: "failed to serialize exposed-modules: " + err.Error()}
	}
	deps := make(map[string]string, len(pkg.Dependencies))
	for name, c := range pkg.Dependencies {
		deps[name.String()] = c.String()
	}
	return writePackage{
		Type:           "package",
		Name:           pkg.Name.String(),
		Summary:        pkg.Summary,
		License:        pkg.License,
		Version:        pkg.Version.String(),
		Platform:       string(pkg.Platform),
		ExposedModules: exposed,
		GrenVersion:    pkg.GrenVersion.String(),
		Dependencies:   deps,
	}, nil
}

// exposedModulesToRaw renders back to the flat-list form when there is a
// single unheaded group, or the header-grouped form otherwise.
func exposedModulesToRaw(e ExposedModules) (json.RawMessage, error) {
	if len(e.Headers) == 1 && e.Headers[0].Header == "" {
		return json.Marshal(rawModuleNames(e.Headers[0].Modules))
	}
	grouped := make(map[string][]string, len(e.Headers))
	for _, h := range e.Headers {
		grouped[h.Header] = rawModuleNames(h.Modules)
	}
	return json.Marshal(grouped)
}

func rawModuleNames(mods []modname.Raw) []string {
	out := make([]string, len(mods))
	for i, m := range mods {
		out[i] = m.String()
	}
	return out
}
