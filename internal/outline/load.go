package outline

import (
	"encoding/json"
	"io"

	"github.com/gren-lang/compiler/internal/errs"
	"github.com/gren-lang/compiler/internal/modname"
	"github.com/gren-lang/compiler/internal/pkgname"
	"github.com/gren-lang/compiler/internal/version"
)

// rawOutline mirrors the gren.json schema before validation.
type rawOutline struct {
	Type string `json:"type"`

	// application fields
	Platform          string           `json:"platform"`
	SourceDirectories []string         `json:"source-directories"`
	GrenVersion       json.RawMessage  `json:"gren-version"`
	Dependencies      *rawDependencies `json:"dependencies"`

	// package fields
	Name           string          `json:"name"`
	Summary        string          `json:"summary"`
	License        string          `json:"license"`
	Version        string          `json:"version"`
	ExposedModules json.RawMessage `json:"exposed-modules"`
}

type rawDependencies struct {
	Direct   map[string]string `json:"direct"`
	Indirect map[string]string `json:"indirect"`
}

// Read parses and validates gren.json content read from r, returning a
// fully validated Outline or an *errs.OutlineError.
func Read(r io.Reader) (*Outline, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, &errs.OutlineError{Message: "failed to read gren.json: " + err.Error()}
	}
	return Parse(src)
}

// Parse parses and validates raw gren.json bytes.
func Parse(src []byte) (*Outline, error) {
	var raw rawOutline
	if err := json.Unmarshal(src, &raw); err != nil {
		region := regionAt(src, 0)
		if se, ok := err.(*json.SyntaxError); ok {
			region = regionAt(src, int(se.Offset))
		}
		return nil, &errs.OutlineError{Message: "gren.json is not valid JSON: " + err.Error(), Region: region}
	}

	switch raw.Type {
	case "application":
		app, err := parseApplication(src, &raw)
		if err != nil {
			return nil, err
		}
		return &Outline{Application: app}, nil
	case "package":
		pkg, err := parsePackage(src, &raw)
		if err != nil {
			return nil, err
		}
		return &Outline{Package: pkg}, nil
	default:
		return nil, &errs.OutlineError{
			Message: `"type" must be "application" or "package", got ` + "\"" + raw.Type + "\"",
			Region:  regionForKey(src, "type"),
		}
	}
}

func parseApplication(src []byte, raw *rawOutline) (*Application, error) {
	plat, err := version.ParsePlatform(raw.Platform)
	if err != nil {
		return nil, &errs.OutlineError{Message: err.Error(), Region: regionForKey(src, "platform")}
	}

	var gv version.Version
	var gvStr string
	if err := json.Unmarshal(raw.GrenVersion, &gvStr); err != nil {
		return nil, &errs.OutlineError{Message: "gren-version must be a version string", Region: regionForKey(src, "gren-version")}
	}
	gv, err = version.Parse(gvStr)
	if err != nil {
		return nil, &errs.OutlineError{Message: err.Error(), Region: regionForKey(src, "gren-version")}
	}
	if !gv.Equal(CompilerVersion) {
		return nil, &errs.OutlineError{
			Message: "gren-version must equal the running compiler's version (" + CompilerVersion.String() + "), got " + gv.String(),
			Region:  regionForKey(src, "gren-version"),
		}
	}

	if len(raw.SourceDirectories) == 0 {
		return nil, &errs.OutlineError{Message: "source-directories must be non-empty", Region: regionForKey(src, "source-directories")}
	}

	direct := map[pkgname.Name]version.Version{}
	indirect := map[pkgname.Name]version.Version{}
	if raw.Dependencies != nil {
		var err error
		direct, err = parsePinnedVersionMap(raw.Dependencies.Direct)
		if err != nil {
			return nil, &errs.OutlineError{Message: err.Error(), Region: regionForKey(src, "direct")}
		}
		indirect, err = parsePinnedVersionMap(raw.Dependencies.Indirect)
		if err != nil {
			return nil, &errs.OutlineError{Message: err.Error(), Region: regionForKey(src, "indirect")}
		}
	}

	for name := range direct {
		if _, clash := indirect[name]; clash {
			return nil, &errs.OutlineError{
				Message: "package " + name.String() + " cannot be both a direct and an indirect dependency",
				Region:  regionForKey(src, "indirect"),
			}
		}
	}

	return &Application{
		GrenVersion:       gv,
		Platform:          plat,
		SourceDirectories: raw.SourceDirectories,
		Direct:            direct,
		Indirect:          indirect,
	}, nil
}

func parsePinnedVersionMap(m map[string]string) (map[pkgname.Name]version.Version, error) {
	out := make(map[pkgname.Name]version.Version, len(m))
	for k, v := range m {
		n, err := pkgname.Parse(k)
		if err != nil {
			return nil, err
		}
		ver, err := version.Parse(v)
		if err != nil {
			return nil, err
		}
		out[n] = ver
	}
	return out, nil
}

func parsePackage(src []byte, raw *rawOutline) (*Package, error) {
	name, err := pkgname.Parse(raw.Name)
	if err != nil {
		return nil, &errs.OutlineError{Message: err.Error(), Region: regionForKey(src, "name")}
	}

	if len(raw.Summary) >= 80 {
		return nil, &errs.OutlineError{Message: "summary must be under 80 bytes", Region: regionForKey(src, "summary")}
	}
	if raw.License == "" {
		return nil, &errs.OutlineError{Message: "license must be a non-empty SPDX identifier", Region: regionForKey(src, "license")}
	}

	ver, err := version.Parse(raw.Version)
	if err != nil {
		return nil, &errs.OutlineError{Message: err.Error(), Region: regionForKey(src, "version")}
	}

	plat, err := version.ParsePlatform(raw.Platform)
	if err != nil {
		return nil, &errs.OutlineError{Message: err.Error(), Region: regionForKey(src, "platform")}
	}

	exposed, err := parseExposedModules(raw.ExposedModules)
	if err != nil {
		return nil, &errs.OutlineError{Message: err.Error(), Region: regionForKey(src, "exposed-modules")}
	}
	if len(exposed.Flatten()) == 0 {
		return nil, &errs.OutlineError{Message: "exposed-modules must be non-empty", Region: regionForKey(src, "exposed-modules")}
	}
	for _, h := range exposed.Headers {
		if len(h.Header) > 20 {
			return nil, &errs.OutlineError{Message: "exposed-modules header must be at most 20 bytes", Region: regionForKey(src, "exposed-modules")}
		}
	}

	var gvStr string
	var constraintsRaw struct {
		GrenVersion string `json:"gren-version"`
	}
	if err := json.Unmarshal(src, &constraintsRaw); err == nil {
		gvStr = constraintsRaw.GrenVersion
	}
	gc, err := version.ParseConstraint(gvStr)
	if err != nil {
		return nil, &errs.OutlineError{Message: err.Error(), Region: regionForKey(src, "gren-version")}
	}
	if !gc.AcceptsCurrent(CompilerVersion) {
		return nil, &errs.OutlineError{
			Message: "gren-version constraint does not accept the running compiler (" + CompilerVersion.String() + ")",
			Region:  regionForKey(src, "gren-version"),
		}
	}

	var depsRaw struct {
		Dependencies map[string]string `json:"dependencies"`
	}
	_ = json.Unmarshal(src, &depsRaw)
	deps := map[pkgname.Name]version.Constraint{}
	for k, v := range depsRaw.Dependencies {
		n, err := pkgname.Parse(k)
		if err != nil {
			return nil, &errs.OutlineError{Message: err.Error(), Region: regionForKey(src, "dependencies")}
		}
		c, err := version.ParseConstraint(v)
		if err != nil {
			return nil, &errs.OutlineError{Message: err.Error(), Region: regionForKey(src, "dependencies")}
		}
		deps[n] = c
	}

	return &Package{
		Name:           name,
		Summary:        raw.Summary,
		License:        raw.License,
		Version:        ver,
		Platform:       plat,
		ExposedModules: exposed,
		GrenVersion:    gc,
		Dependencies:   deps,
	}, nil
}

func parseExposedModules(raw json.RawMessage) (ExposedModules, error) {
	// Try the flat-list form first.
	var flat []string
	if err := json.Unmarshal(raw, &flat); err == nil {
		mods, err := parseRawModuleNames(flat)
		if err != nil {
			return ExposedModules{}, err
		}
		return ExposedModules{Headers: []ExposedHeader{{Header: "", Modules: mods}}}, nil
	}

	// Fall back to the Header -> [module] grouped form.
	var grouped map[string][]string
	if err := json.Unmarshal(raw, &grouped); err != nil {
		return ExposedModules{}, err
	}
	out := ExposedModules{}
	for header, mods := range grouped {
		parsed, err := parseRawModuleNames(mods)
		if err != nil {
			return ExposedModules{}, err
		}
		out.Headers = append(out.Headers, ExposedHeader{Header: header, Modules: parsed})
	}
	return out, nil
}

func parseRawModuleNames(names []string) ([]modname.Raw, error) {
	out := make([]modname.Raw, 0, len(names))
	for _, n := range names {
		raw, err := modname.ParseRaw(n)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}
