package version

import "testing"

func TestParseAndString(t *testing.T) {
	v, err := Parse("1.2.3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != (Version{1, 2, 3}) {
		t.Fatalf("got %#v", v)
	}
	if v.String() != "1.2.3" {
		t.Fatalf("got %q", v.String())
	}
}

func TestParseRejectsBadShape(t *testing.T) {
	cases := []string{"1.2", "1.2.3.4", "a.b.c", ""}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Fatalf("expected error for %q", c)
		}
	}
}

func TestCompareOrdering(t *testing.T) {
	cases := []struct {
		a, b Version
		want int
	}{
		{MustParse("1.0.0"), MustParse("1.0.0"), 0},
		{MustParse("1.0.0"), MustParse("1.0.1"), -1},
		{MustParse("1.1.0"), MustParse("1.0.9"), 1},
		{MustParse("2.0.0"), MustParse("1.9.9"), 1},
	}
	for _, c := range cases {
		if got := c.a.Compare(c.b); got != c.want {
			t.Fatalf("(%s).Compare(%s) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestIsInitial(t *testing.T) {
	if !MustParse("1.0.0").IsInitial() {
		t.Fatal("1.0.0 should be initial")
	}
	if MustParse("1.0.1").IsInitial() {
		t.Fatal("1.0.1 should not be initial")
	}
}
