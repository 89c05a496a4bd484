package render

import (
	"strings"
	"testing"

	"github.com/gren-lang/compiler/internal/errs"
)

func TestANSIIncludesKindAndMessage(t *testing.T) {
	err := &errs.BuildError{Kind: errs.ImportCycle, Message: "import cycle: A -> B -> A"}
	out := ANSI(err)
	if !strings.Contains(out, "Build:ImportCycle") {
		t.Fatalf("expected kind in output, got %q", out)
	}
	if !strings.Contains(out, "import cycle: A -> B -> A") {
		t.Fatalf("expected message in output, got %q", out)
	}
}

func TestJSONRoundTripsKindAndMessage(t *testing.T) {
	err := &errs.SolverError{Kind: errs.NoSolution}
	raw, jerr := JSON(err)
	if jerr != nil {
		t.Fatalf("unexpected error: %v", jerr)
	}
	if !strings.Contains(string(raw), "Solver:NoSolution") {
		t.Fatalf("expected kind in JSON, got %s", raw)
	}
}

func TestClassifyOutlineErrorCarriesRegion(t *testing.T) {
	err := &errs.OutlineError{Message: "bad field", Region: errs.Region{StartRow: 3, StartCol: 1}}
	r := Classify(err)
	if r.Region == nil || r.Region.StartRow != 3 {
		t.Fatalf("expected region to carry through, got %+v", r.Region)
	}
}

func TestClassifyAggregatesBuildErrors(t *testing.T) {
	agg := errs.BuildErrors{
		&errs.BuildError{Message: "first"},
		&errs.BuildError{Message: "second"},
	}
	r := Classify(agg)
	if !strings.Contains(r.Message, "first") || !strings.Contains(r.Message, "second") {
		t.Fatalf("expected both messages aggregated, got %q", r.Message)
	}
}
