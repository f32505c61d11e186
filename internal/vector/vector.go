/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package vector implements the columnar buffer layer (spec §3, §4.2;
component C2): Vector, SelectionVector and DataChunk, plus the Exec
iteration contract every expression and operator is built on.
*/
package vector

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"

	cerrors "corvusdb/internal/errors"
	"corvusdb/internal/types"
)

// Ownership classifies how a Vector's backing buffer relates to the data
// it exposes (spec §3 "ownership tag").
type Ownership int

const (
	// Owned means the Vector's buffers are its own, densely packed 0..count-1.
	Owned Ownership = iota
	// DictionaryReference means the Vector borrows another Vector's buffers
	// through a SelectionVector (spec §3 DICTIONARY_REFERENCE).
	DictionaryReference
	// Constant means the Vector holds exactly one physical value, logically
	// broadcast over count rows (spec §3: "a CONSTANT vector has physical
	// count 1 but logical broadcast over count").
	Constant
)

// Vector is a column buffer of homogeneous physical type (spec §3
// "Vector"). The active buffer field is selected by Physical; Null
// reports NULL-ness per logical position via a roaring bitmap indexed by
// physical slot (or, for Owned/Constant vectors, the same as the logical
// position since there is no selection).
type Vector struct {
	Logical  types.LogicalType
	Physical types.PhysicalType
	Owner    Ownership

	count int
	sel   *SelectionVector // non-nil only when a selection is active

	nulls *roaring.Bitmap // nil means "no NULLs recorded"

	boolData []bool
	i8Data   []int8
	i16Data  []int16
	i32Data  []int32
	i64Data  []int64
	f32Data  []float32
	f64Data  []float64
	strData  []string

	dict *Vector // backing vector when Owner == DictionaryReference
}

// Initialize allocates a fresh Owned Vector of logical type t able to hold
// up to capacity rows (spec §4.2 "Initialize(type)").
func Initialize(t types.LogicalType, capacity int) *Vector {
	v := &Vector{Logical: t, Physical: types.PhysicalOf(t), Owner: Owned}
	switch v.Physical {
	case types.PBOOL:
		v.boolData = make([]bool, capacity, capacity)
	case types.PI8:
		v.i8Data = make([]int8, capacity, capacity)
	case types.PI16:
		v.i16Data = make([]int16, capacity, capacity)
	case types.PI32:
		v.i32Data = make([]int32, capacity, capacity)
	case types.PI64:
		v.i64Data = make([]int64, capacity, capacity)
	case types.PF32:
		v.f32Data = make([]float32, capacity, capacity)
	case types.PF64:
		v.f64Data = make([]float64, capacity, capacity)
	case types.PSTRING_REF:
		v.strData = make([]string, capacity, capacity)
	}
	return v
}

// NewConstant builds a CONSTANT vector (physical count 1) broadcasting val
// over count logical rows.
func NewConstant(val types.Value, count int) *Vector {
	v := Initialize(val.Type(), 1)
	v.Owner = Constant
	v.count = count
	v.SetValue(0, val)
	return v
}

// Count is the logical row count (spec §3: "count ≤ standard_vector_size").
func (v *Vector) Count() int { return v.count }

// SetCount sets the logical row count for an Owned vector being built up
// incrementally (e.g. by a Scan operator appending rows).
func (v *Vector) SetCount(n int) { v.count = n }

// Selection returns the active selection vector, or nil if none.
func (v *Vector) Selection() *SelectionVector { return v.sel }

// Reference makes v share other's buffers and selection (spec §4.2
// "Reference(other): share buffer"), turning v into a DictionaryReference
// view. No data is copied.
func (v *Vector) Reference(other *Vector) {
	v.Logical = other.Logical
	v.Physical = other.Physical
	v.Owner = DictionaryReference
	v.count = other.count
	v.sel = other.sel.Retain()
	v.dict = other
	v.nulls = other.nulls
}

// Slice applies a new selection to v, returning a new Vector that shares
// v's buffers but iterates through sel (spec §4.2 "Slice(sel): apply new
// selection"). If v already carries a selection, sel is composed with it
// so repeated filtering stays zero-copy.
func (v *Vector) Slice(sel *SelectionVector) *Vector {
	composed := sel
	if v.sel != nil {
		composed = v.sel.Compose(sel)
	}
	return &Vector{
		Logical:  v.Logical,
		Physical: v.Physical,
		Owner:    DictionaryReference,
		count:    composed.Len(),
		sel:      composed,
		nulls:    v.nulls,
		dict:     v.source(),
		boolData: v.boolData, i8Data: v.i8Data, i16Data: v.i16Data,
		i32Data: v.i32Data, i64Data: v.i64Data,
		f32Data: v.f32Data, f64Data: v.f64Data, strData: v.strData,
	}
}

func (v *Vector) source() *Vector {
	if v.dict != nil {
		return v.dict
	}
	return v
}

// Normalify materializes the current selection (or constant broadcast)
// into a dense, Owned buffer of length Count (spec §4.2 "Normalify():
// materialize selection into a dense buffer").
func (v *Vector) Normalify() *Vector {
	if v.Owner == Owned && v.sel == nil {
		return v
	}
	out := Initialize(v.Logical, v.count)
	out.count = v.count
	Exec(v, func(i, k int) {
		out.SetValue(k, v.ValueAt(i))
	})
	return out
}

// index resolves a logical position k (0..count) to the physical slot to
// read/write, honoring CONSTANT broadcast and an active selection (spec
// §4.2 Exec contract: "i = sel[k] if sel else k"; "Constant vectors: i=0
// for all k").
func (v *Vector) index(k int) int {
	if v.Owner == Constant {
		return 0
	}
	if v.sel != nil {
		return int(v.sel.Get(k))
	}
	return k
}

// Exec invokes f(i, k) for k in 0..vec.Count(), where i is the physical
// slot for logical position k (spec §4.2 Exec contract). This is the sole
// iteration primitive every expression and physical operator builds on.
func Exec(vec *Vector, f func(i, k int)) {
	for k := 0; k < vec.count; k++ {
		f(vec.index(k), k)
	}
}

// IsNull reports whether the physical slot i is NULL.
func (v *Vector) IsNull(i int) bool {
	return v.nulls != nil && v.nulls.Contains(uint32(i))
}

// SetNull marks physical slot i as NULL.
func (v *Vector) SetNull(i int) {
	if v.nulls == nil {
		v.nulls = roaring.New()
	}
	v.nulls.Add(uint32(i))
}

// ValueAt reads the logical value backing physical slot i, resolving
// through a DictionaryReference to its source buffers.
func (v *Vector) ValueAt(i int) types.Value {
	src := v.source()
	if src.IsNull(i) {
		return types.NullValue(v.Logical)
	}
	switch v.Physical {
	case types.PBOOL:
		return types.BoolValue(src.boolData[i])
	case types.PI8:
		return types.Int8Value(src.i8Data[i])
	case types.PI16:
		return types.Int16Value(src.i16Data[i])
	case types.PI32:
		if v.Logical.Kind == types.DATE {
			return types.DateValue(src.i32Data[i])
		}
		return types.Int32Value(src.i32Data[i])
	case types.PI64:
		if v.Logical.Kind == types.TIMESTAMP {
			return types.TimestampValue(src.i64Data[i])
		}
		return types.Int64Value(src.i64Data[i])
	case types.PF32:
		return types.Float32Value(src.f32Data[i])
	case types.PF64:
		return types.Float64Value(src.f64Data[i])
	case types.PSTRING_REF:
		if v.Logical.Kind == types.BLOB {
			return types.BlobValue(src.strData[i])
		}
		return types.StringValue(src.strData[i])
	default:
		panic(fmt.Sprintf("vector: unhandled physical type %v", v.Physical))
	}
}

// SetValue writes val into physical slot i. v must be Owned or Constant
// (writing through a DictionaryReference would mutate the shared source).
func (v *Vector) SetValue(i int, val types.Value) {
	if v.Owner == DictionaryReference {
		panic("vector: SetValue on a DictionaryReference vector")
	}
	if val.Null {
		v.SetNull(i)
		return
	}
	switch v.Physical {
	case types.PBOOL:
		v.boolData[i] = val.Bool()
	case types.PI8:
		v.i8Data[i] = int8(val.Int64())
	case types.PI16:
		v.i16Data[i] = int16(val.Int64())
	case types.PI32:
		v.i32Data[i] = int32(val.Int64())
	case types.PI64:
		v.i64Data[i] = val.Int64()
	case types.PF32:
		v.f32Data[i] = float32(val.AsFloat())
	case types.PF64:
		v.f64Data[i] = val.AsFloat()
	case types.PSTRING_REF:
		v.strData[i] = val.String()
	default:
		panic(fmt.Sprintf("vector: unhandled physical type %v", v.Physical))
	}
}

// Append grows an Owned vector by one logical row holding val, used by
// operators that build result vectors incrementally (Scan, Projection).
// The vector must have been Initialize'd with capacity for at least
// Count()+1 rows; operators never grow a chunk past standard_vector_size.
func (v *Vector) Append(val types.Value) error {
	if v.Owner != Owned {
		return cerrors.Internal("Append on a non-Owned vector")
	}
	if v.count >= v.capacity() {
		return cerrors.Internal("vector: Append exceeds allocated capacity %d", v.capacity())
	}
	i := v.count
	v.count++
	v.SetValue(i, val)
	return nil
}

func (v *Vector) capacity() int {
	switch v.Physical {
	case types.PBOOL:
		return len(v.boolData)
	case types.PI8:
		return len(v.i8Data)
	case types.PI16:
		return len(v.i16Data)
	case types.PI32:
		return len(v.i32Data)
	case types.PI64:
		return len(v.i64Data)
	case types.PF32:
		return len(v.f32Data)
	case types.PF64:
		return len(v.f64Data)
	default:
		return len(v.strData)
	}
}
