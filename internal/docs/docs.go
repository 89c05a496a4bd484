// Package docs generates docs.json (the package-documentation
// generation") from a built package's Interfaces map and the outline's
// exposed-modules grouping, the shape gren-lang package sites consume.
package docs

import (
	"encoding/json"

	"github.com/gren-lang/compiler/internal/artifact"
	"github.com/gren-lang/compiler/internal/errs"
	"github.com/gren-lang/compiler/internal/modname"
	"github.com/gren-lang/compiler/internal/outline"
)

// ValueDoc and TypeDoc carry the JSON-serializable shape of one exported
// name's signature; the binary artifact.Interface carries no doc comment
// today, so Comment is always empty until the parser starts forwarding
// one (parsing Gren doc comments is out of scope here).
type ValueDoc struct {
	Name      string `json:"name"`
	Comment   string `json:"comment"`
	Type      string `json:"type"`
}

type TypeDoc struct {
	Name    string `json:"name"`
	Comment string `json:"comment"`
	Type    string `json:"type"`
}

// ModuleDoc is one exposed module's documented surface.
type ModuleDoc struct {
	Name    string     `json:"name"`
	Comment string     `json:"comment"`
	Types   []TypeDoc  `json:"types"`
	Values  []ValueDoc `json:"values"`
}

// HeaderDoc groups ModuleDocs under the outline's documentation header,
// preserving the grouping gren.json's exposed-modules field may declare.
type HeaderDoc struct {
	Header  string      `json:"header,omitempty"`
	Modules []ModuleDoc `json:"modules"`
}

// Document is the full docs.json shape.
type Document struct {
	Sections []HeaderDoc `json:"sections"`
}

// Build assembles a Document from a package's compiled Interfaces, in the
// grouping its outline declares and in exposed.Headers order (see
// outline.ExposedModules.Flatten for how that order relates to gren.json),
// skipping any exposed module that failed to build.
func Build(exposed outline.ExposedModules, interfaces map[modname.Raw]artifact.DependencyInterface) Document {
	var doc Document
	for _, h := range exposed.Headers {
		hd := HeaderDoc{Header: h.Header}
		for _, mod := range h.Modules {
			di, ok := interfaces[mod]
			if !ok {
				continue
			}
			hd.Modules = append(hd.Modules, moduleDoc(di.Iface))
		}
		doc.Sections = append(doc.Sections, hd)
	}
	return doc
}

func moduleDoc(iface artifact.Interface) ModuleDoc {
	md := ModuleDoc{Name: string(iface.Module)}
	for _, t := range iface.Types {
		md.Types = append(md.Types, TypeDoc{Name: t.Name, Type: t.Canonical})
	}
	for _, v := range iface.Values {
		md.Values = append(md.Values, ValueDoc{Name: v.Name, Type: v.Canonical})
	}
	return md
}

// Marshal renders doc as the indented JSON bytes written to docs.json.
func Marshal(doc Document) ([]byte, error) {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, &errs.DocsError{Message: "encoding docs.json", Cause: err}
	}
	return b, nil
}

// Unmarshal parses previously generated docs.json bytes, surfacing
// corruption as a DocsError.
func Unmarshal(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, &errs.DocsError{Message: "corrupt docs.json", Cause: err}
	}
	return doc, nil
}
