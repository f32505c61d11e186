package types

import (
	"testing"

	cerrors "corvusdb/internal/errors"
)

func TestCastRoundTripThroughVarchar(t *testing.T) {
	vals := []Value{
		Int32Value(42),
		Float64Value(3.25),
		BoolValue(true),
		DateValue(0),
		TimestampValue(0),
	}
	for _, v := range vals {
		asStr, err := TryCast(v, T(VARCHAR))
		if err != nil {
			t.Fatalf("cast to VARCHAR: %v", err)
		}
		back, err := TryCast(asStr, v.Type())
		if err != nil {
			t.Fatalf("cast back to %v: %v", v.Type(), err)
		}
		if back.GoString() != v.GoString() {
			t.Errorf("round trip via VARCHAR: got %q, want %q", back.GoString(), v.GoString())
		}
	}
}

func TestCastIntOutOfRange(t *testing.T) {
	_, err := TryCast(Int32Value(1000), T(TINYINT))
	if err == nil {
		t.Fatal("expected out-of-range error")
	}
	if !cerrors.Is(err, cerrors.KindConversion) {
		t.Errorf("expected ConversionError kind, got %v", err)
	}
}

func TestCastDateToTimestamp(t *testing.T) {
	d := DateValue(1)
	ts, err := TryCast(d, T(TIMESTAMP))
	if err != nil {
		t.Fatal(err)
	}
	if ts.Int64() != microsPerDay {
		t.Errorf("DateValue(1) as TIMESTAMP = %d micros, want %d", ts.Int64(), microsPerDay)
	}
}

func TestCastNullPreservesType(t *testing.T) {
	n := NullValue(T(INTEGER))
	out, err := TryCast(n, T(VARCHAR))
	if err != nil {
		t.Fatal(err)
	}
	if !out.Null {
		t.Errorf("casting NULL should stay NULL")
	}
	if out.Type().Kind != VARCHAR {
		t.Errorf("casting NULL should adopt the target type")
	}
}

func TestCastStringToBool(t *testing.T) {
	v, err := TryCast(StringValue("true"), T(BOOLEAN))
	if err != nil {
		t.Fatal(err)
	}
	if !v.Bool() {
		t.Errorf("expected true")
	}
	if _, err := TryCast(StringValue("nope"), T(BOOLEAN)); err == nil {
		t.Errorf("expected error casting %q to BOOLEAN", "nope")
	}
}

func TestGoStringFormatsDateAndTimestamp(t *testing.T) {
	d := DateValue(0)
	if got, want := d.GoString(), "1970-01-01"; got != want {
		t.Errorf("DateValue(0).GoString() = %q, want %q", got, want)
	}
	ts := TimestampValue(0)
	if got, want := ts.GoString(), "1970-01-01 00:00:00"; got != want {
		t.Errorf("TimestampValue(0).GoString() = %q, want %q", got, want)
	}
}
