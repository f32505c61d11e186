package errors

import "testing"

func TestUnresolvedParameterType(t *testing.T) {
	err := UnresolvedParameterType(1)
	if err.Kind != KindBind {
		t.Fatalf("expected KindBind, got %s", err.Kind)
	}
	if err.Code != CodeUnresolvedParameterType {
		t.Fatalf("expected CodeUnresolvedParameterType, got %d", err.Code)
	}
}

func TestOutOfRangeCarriesColumn(t *testing.T) {
	err := OutOfRange("a", 10000, "TINYINT")
	if err.Column != "a" {
		t.Fatalf("expected column 'a', got %q", err.Column)
	}
	if err.Kind != KindConversion || err.Code != CodeOutOfRange {
		t.Fatalf("unexpected kind/code: %s/%d", err.Kind, err.Code)
	}
}

func TestDependencyExists(t *testing.T) {
	err := DependencyExists("t", []string{"p1"})
	if err.Kind != KindCatalog || err.Code != CodeDependencyExists {
		t.Fatalf("unexpected kind/code: %s/%d", err.Kind, err.Code)
	}
}

func TestIsHelper(t *testing.T) {
	var err error = Syntax("unexpected token")
	if !Is(err, KindSyntax) {
		t.Fatalf("expected Is(err, KindSyntax) to be true")
	}
	if Is(err, KindBind) {
		t.Fatalf("expected Is(err, KindBind) to be false")
	}
}

func TestWithRowAndColumn(t *testing.T) {
	err := TypeOverflow("a", 10000, "TINYINT").WithRow(2)
	if !err.HasRow || err.RowIndex != 2 {
		t.Fatalf("expected row index 2 to be set")
	}
	if err.Column != "a" {
		t.Fatalf("expected column 'a'")
	}
}
