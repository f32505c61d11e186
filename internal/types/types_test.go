package types

import "testing"

func TestPhysicalOfIsTotal(t *testing.T) {
	kinds := []LogicalKind{BOOLEAN, TINYINT, SMALLINT, INTEGER, BIGINT, REAL, DOUBLE, DATE, TIMESTAMP, VARCHAR, BLOB}
	for _, k := range kinds {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("PhysicalOf(%v) panicked: %v", k, r)
				}
			}()
			_ = PhysicalOf(T(k))
		}()
	}
}

func TestJoinNumericPromotesToDouble(t *testing.T) {
	got, err := Join(T(INTEGER), T(DOUBLE))
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != DOUBLE {
		t.Errorf("Join(INTEGER, DOUBLE) = %v, want DOUBLE", got.Kind)
	}
}

func TestJoinVarcharDisjointFromNumeric(t *testing.T) {
	if _, err := Join(T(VARCHAR), T(INTEGER)); err == nil {
		t.Errorf("expected Join(VARCHAR, INTEGER) to fail")
	}
}

func TestJoinIdenticalKinds(t *testing.T) {
	got, err := Join(T(VARCHAR), T(VARCHAR))
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != VARCHAR {
		t.Errorf("Join(VARCHAR, VARCHAR) = %v, want VARCHAR", got.Kind)
	}
}

func TestForbiddenOnTimestamp(t *testing.T) {
	for _, op := range []string{"+", "*", "/", "%", "SUM", "AVG"} {
		if !ForbiddenOnTimestamp(op) {
			t.Errorf("%s should be forbidden on TIMESTAMP", op)
		}
	}
	for _, op := range []string{"=", "<", ">", "MIN", "MAX"} {
		if ForbiddenOnTimestamp(op) {
			t.Errorf("%s should be allowed on TIMESTAMP", op)
		}
	}
}
