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

package vector

import "corvusdb/internal/types"

// DataChunk is an ordered sequence of Vectors sharing the same logical
// count and selection (spec §3 "DataChunk"), the physical unit of data
// flow between operators.
type DataChunk struct {
	Columns []*Vector
	count   int
}

// NewDataChunk allocates a chunk of the given column types, each with
// capacity rows of backing storage.
func NewDataChunk(colTypes []types.LogicalType, capacity int) *DataChunk {
	cols := make([]*Vector, len(colTypes))
	for i, t := range colTypes {
		cols[i] = Initialize(t, capacity)
	}
	return &DataChunk{Columns: cols}
}

// Count is the logical row count shared by every column.
func (c *DataChunk) Count() int { return c.count }

// SetCount sets the shared logical row count, propagating it to every
// column (spec §4.2 invariant: chunks "share the same count").
func (c *DataChunk) SetCount(n int) {
	c.count = n
	for _, col := range c.Columns {
		col.count = n
	}
}

// Slice applies sel to every column in the chunk, returning a new chunk
// that shares buffers (spec §4.2 invariant: "input/output chunks within a
// pipeline share the same count and, where possible, the same selection
// vector").
func (c *DataChunk) Slice(sel *SelectionVector) *DataChunk {
	out := &DataChunk{Columns: make([]*Vector, len(c.Columns)), count: sel.Len()}
	for i, col := range c.Columns {
		out.Columns[i] = col.Slice(sel)
	}
	return out
}

// Row materializes the value of every column at logical position k.
func (c *DataChunk) Row(k int) []types.Value {
	out := make([]types.Value, len(c.Columns))
	for i, col := range c.Columns {
		out[i] = col.ValueAt(col.index(k))
	}
	return out
}

// AppendRow appends vals as a new logical row across every column; all
// columns must be Owned (a freshly-built result chunk).
func (c *DataChunk) AppendRow(vals []types.Value) error {
	for i, col := range c.Columns {
		if err := col.Append(vals[i]); err != nil {
			return err
		}
	}
	c.count++
	return nil
}

// Reset empties the chunk for reuse while keeping allocated buffers,
// matching the teacher's pattern of pooling per-batch structures rather
// than reallocating every GetChunk call.
func (c *DataChunk) Reset() {
	c.count = 0
	for _, col := range c.Columns {
		col.count = 0
		col.sel = nil
		col.nulls = nil
	}
}
