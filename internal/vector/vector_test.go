package vector

import (
	"testing"

	"corvusdb/internal/types"
)

func TestInitializeAndAppend(t *testing.T) {
	v := Initialize(types.T(types.INTEGER), 4)
	for _, n := range []int32{10, 20, 30} {
		if err := v.Append(types.Int32Value(n)); err != nil {
			t.Fatal(err)
		}
	}
	if v.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", v.Count())
	}
	var got []int64
	Exec(v, func(i, k int) {
		got = append(got, v.ValueAt(i).Int64())
	})
	want := []int64{10, 20, 30}
	for i, g := range got {
		if g != want[i] {
			t.Errorf("row %d = %d, want %d", i, g, want[i])
		}
	}
}

func TestConstantVectorBroadcasts(t *testing.T) {
	v := NewConstant(types.Int32Value(7), 5)
	if v.Count() != 5 {
		t.Fatalf("Count() = %d, want 5", v.Count())
	}
	n := 0
	Exec(v, func(i, k int) {
		if i != 0 {
			t.Errorf("constant vector should report i=0 for all k, got i=%d at k=%d", i, k)
		}
		if v.ValueAt(i).Int64() != 7 {
			t.Errorf("row %d = %d, want 7", k, v.ValueAt(i).Int64())
		}
		n++
	})
	if n != 5 {
		t.Errorf("Exec visited %d rows, want 5", n)
	}
}

func TestSliceAppliesSelection(t *testing.T) {
	v := Initialize(types.T(types.INTEGER), 5)
	for _, n := range []int32{0, 1, 2, 3, 4} {
		_ = v.Append(types.Int32Value(n))
	}
	sel := NewSelectionVector([]uint32{1, 3})
	sliced := v.Slice(sel)
	if sliced.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", sliced.Count())
	}
	var got []int64
	Exec(sliced, func(i, k int) {
		got = append(got, sliced.ValueAt(i).Int64())
	})
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("sliced values = %v, want [1 3]", got)
	}
}

func TestNormalifyMaterializesSelection(t *testing.T) {
	v := Initialize(types.T(types.INTEGER), 5)
	for _, n := range []int32{0, 1, 2, 3, 4} {
		_ = v.Append(types.Int32Value(n))
	}
	sliced := v.Slice(NewSelectionVector([]uint32{4, 2}))
	dense := sliced.Normalify()
	if dense.Selection() != nil {
		t.Errorf("Normalify should drop the selection vector")
	}
	var got []int64
	Exec(dense, func(i, k int) {
		got = append(got, dense.ValueAt(i).Int64())
	})
	if len(got) != 2 || got[0] != 4 || got[1] != 2 {
		t.Errorf("normalized values = %v, want [4 2]", got)
	}
}

func TestNullTracking(t *testing.T) {
	v := Initialize(types.T(types.VARCHAR), 3)
	_ = v.Append(types.StringValue("a"))
	_ = v.Append(types.NullValue(types.T(types.VARCHAR)))
	_ = v.Append(types.StringValue("c"))
	if v.IsNull(0) || v.IsNull(2) {
		t.Errorf("rows 0 and 2 should not be NULL")
	}
	if !v.IsNull(1) {
		t.Errorf("row 1 should be NULL")
	}
}

func TestExecEquivalenceSingleRow(t *testing.T) {
	// spec §8 scenario 5: Execute(E, C)[i] == Execute(E, {C[i]})[0].
	v := Initialize(types.T(types.INTEGER), 3)
	for _, n := range []int32{5, 6, 7} {
		_ = v.Append(types.Int32Value(n))
	}
	single := Initialize(types.T(types.INTEGER), 1)
	_ = single.Append(v.ValueAt(1))
	if single.ValueAt(0).Int64() != v.ValueAt(1).Int64() {
		t.Errorf("single-row re-execution mismatch")
	}
}

func TestDataChunkAppendRow(t *testing.T) {
	chunk := NewDataChunk([]types.LogicalType{types.T(types.INTEGER), types.T(types.VARCHAR)}, 4)
	if err := chunk.AppendRow([]types.Value{types.Int32Value(1), types.StringValue("x")}); err != nil {
		t.Fatal(err)
	}
	if err := chunk.AppendRow([]types.Value{types.Int32Value(2), types.StringValue("y")}); err != nil {
		t.Fatal(err)
	}
	if chunk.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", chunk.Count())
	}
	row := chunk.Row(1)
	if row[0].Int64() != 2 || row[1].String() != "y" {
		t.Errorf("row 1 = %v, want [2 y]", row)
	}
}

func TestDataChunkSliceSharesBuffers(t *testing.T) {
	chunk := NewDataChunk([]types.LogicalType{types.T(types.INTEGER)}, 4)
	_ = chunk.AppendRow([]types.Value{types.Int32Value(10)})
	_ = chunk.AppendRow([]types.Value{types.Int32Value(20)})
	_ = chunk.AppendRow([]types.Value{types.Int32Value(30)})

	sliced := chunk.Slice(NewSelectionVector([]uint32{0, 2}))
	if sliced.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", sliced.Count())
	}
	row := sliced.Row(1)
	if row[0].Int64() != 30 {
		t.Errorf("sliced row 1 = %v, want [30]", row)
	}
}
