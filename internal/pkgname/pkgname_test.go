package pkgname

import "testing"

func TestParseValid(t *testing.T) {
	n, err := Parse("gren-lang/core")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Author != "gren-lang" || n.Project != "core" {
		t.Fatalf("got %#v", n)
	}
	if n.String() != "gren-lang/core" {
		t.Fatalf("got %q", n.String())
	}
}

func TestParseRejectsBadSegments(t *testing.T) {
	cases := []string{
		"Gren-Lang/core",  // uppercase
		"1gren/core",      // leading digit
		"-gren/core",      // leading hyphen
		"gren-/core",      // trailing hyphen
		"gren--lang/core", // double hyphen
		"gren-lang",       // missing project
		"gren-lang/core/extra",
	}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Fatalf("expected error for %q", c)
		}
	}
}

func TestOrdering(t *testing.T) {
	a := mustParse(t, "a/x")
	b := mustParse(t, "a/y")
	c := mustParse(t, "b/a")

	if !a.LessThan(b) {
		t.Fatal("a/x should sort before a/y")
	}
	if !b.LessThan(c) {
		t.Fatal("a/y should sort before b/a")
	}
	if !a.Equal(mustParse(t, "a/x")) {
		t.Fatal("equal names should compare equal")
	}
}

func mustParse(t *testing.T, s string) Name {
	t.Helper()
	n, err := Parse(s)
	if err != nil {
		t.Fatalf("unexpected error parsing %q: %v", s, err)
	}
	return n
}
