package form

import "testing"

func TestQualifySymbol(t *testing.T) {
	pkg, name, ok := Symbol("builtins..print").Qualify()
	if !ok || pkg != "builtins" || name != "print" {
		t.Fatalf("Qualify() = %q, %q, %v", pkg, name, ok)
	}
	if _, _, ok := Symbol("print").Qualify(); ok {
		t.Fatal("unqualified symbol reported as qualified")
	}
}

func TestIsMethod(t *testing.T) {
	cases := map[string]bool{
		".upper":  true,
		"..upper": false,
		".":       false,
		"upper":   false,
	}
	for s, want := range cases {
		if got := Symbol(s).IsMethod(); got != want {
			t.Errorf("Symbol(%q).IsMethod() = %v, want %v", s, got, want)
		}
	}
}

func TestEqualTreatsSymbolAndStringAsEqualText(t *testing.T) {
	if !Equal(Symbol("x"), "x") {
		t.Fatal("Symbol and string with same text should be Equal")
	}
	if Equal(Symbol("x"), "y") {
		t.Fatal("different text should not be Equal")
	}
}

func TestEqualTuples(t *testing.T) {
	a := Tuple{Symbol("a"), Tuple{int64(1), int64(2)}}
	b := Tuple{Symbol("a"), Tuple{int64(1), int64(2)}}
	c := Tuple{Symbol("a"), Tuple{int64(1), int64(3)}}
	if !Equal(a, b) {
		t.Fatal("expected equal tuples to compare equal")
	}
	if Equal(a, c) {
		t.Fatal("expected differing tuples to compare unequal")
	}
}

func TestIsEmptyTuple(t *testing.T) {
	if !IsEmptyTuple(Tuple{}) {
		t.Fatal("empty tuple not recognized")
	}
	if IsEmptyTuple(Tuple{Symbol("a")}) {
		t.Fatal("non-empty tuple misreported as empty")
	}
}
