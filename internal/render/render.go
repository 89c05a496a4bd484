// Package render turns the typed errors in internal/errs into the two
// output forms this tool supports: human-readable ANSI text, or a
// machine-readable JSON schema selected by --report=json.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gren-lang/compiler/internal/errs"
)

// ANSI color codes: a tiny hand-rolled set rather than a dependency for
// a handful of codes.
const (
	red    = "\x1b[31m"
	yellow = "\x1b[33m"
	reset  = "\x1b[0m"
)

// RegionReport mirrors errs.Region for JSON output.
type RegionReport struct {
	StartRow, StartCol int
	EndRow, EndCol     int
}

// Report is the JSON schema one rendered error produces.
type Report struct {
	Kind    string        `json:"kind"`
	Message string        `json:"message"`
	Path    string        `json:"path,omitempty"`
	Region  *RegionReport `json:"region,omitempty"`
}

// Classify maps any error the core can return to the (kind, message,
// optional path/region) triple both render forms share.
func Classify(err error) Report {
	switch e := err.(type) {
	case *errs.OutlineError:
		return Report{
			Kind:    "Outline",
			Message: e.Message,
			Path:    "gren.json",
			Region: &RegionReport{
				e.Region.StartRow, e.Region.StartCol, e.Region.EndRow, e.Region.EndCol,
			},
		}
	case *errs.SolverError:
		return Report{Kind: "Solver:" + e.Kind.String(), Message: e.Error()}
	case *errs.DetailsError:
		return Report{Kind: "Details", Message: e.Error()}
	case *errs.BuildError:
		return Report{Kind: "Build:" + e.Kind.String(), Message: e.Error()}
	case *errs.GenerateError:
		return Report{Kind: "Generate", Message: e.Error()}
	case *errs.DocsError:
		return Report{Kind: "Docs", Message: e.Error()}
	case *errs.PublishError:
		return Report{Kind: "Publish", Message: e.Error()}
	case errs.BuildErrors:
		var msgs []string
		for _, sub := range e {
			msgs = append(msgs, Classify(sub).Message)
		}
		return Report{Kind: "Build", Message: strings.Join(msgs, "\n")}
	default:
		return Report{Kind: "Unknown", Message: err.Error()}
	}
}

// ANSI renders err as colored human-readable text.
func ANSI(err error) string {
	r := Classify(err)
	var b strings.Builder
	fmt.Fprintf(&b, "%s-- %s --%s\n", red, r.Kind, reset)
	if r.Path != "" {
		fmt.Fprintf(&b, "%s%s%s\n", yellow, r.Path, reset)
	}
	b.WriteString(r.Message)
	b.WriteString("\n")
	return b.String()
}

// JSON renders err as the machine-readable schema --report=json selects.
func JSON(err error) ([]byte, error) {
	return json.MarshalIndent(Classify(err), "", "  ")
}
