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

// SelectionVector is a shared, reference-counted array of logical-row
// indices (spec §3 "SelectionVector", §4.2: operators that filter produce
// new selection vectors without copying underlying data). Filtering a
// Vector replaces its selection pointer rather than copying the backing
// buffers.
type SelectionVector struct {
	idx      []uint32
	refCount *int32
}

// NewSelectionVector wraps idx with a fresh reference count of 1. idx is
// taken by reference, not copied.
func NewSelectionVector(idx []uint32) *SelectionVector {
	rc := int32(1)
	return &SelectionVector{idx: idx, refCount: &rc}
}

// Identity builds the selection 0,1,2,...,n-1.
func Identity(n int) *SelectionVector {
	idx := make([]uint32, n)
	for i := range idx {
		idx[i] = uint32(i)
	}
	return NewSelectionVector(idx)
}

func (s *SelectionVector) Len() int { return len(s.idx) }

func (s *SelectionVector) Get(k int) uint32 { return s.idx[k] }

// Retain bumps the shared reference count and returns s, mirroring the
// reference-counted arena described in spec §7 ("Vector selection
// indirection").
func (s *SelectionVector) Retain() *SelectionVector {
	if s == nil {
		return nil
	}
	*s.refCount++
	return s
}

// Release drops the reference count. Callers must not use s after the
// last release; there is no backing allocation to free explicitly since
// Go's GC reclaims idx once unreferenced, but the count is kept accurate
// so Slice/Reference callers can assert on exclusive ownership in tests.
func (s *SelectionVector) Release() {
	if s == nil {
		return
	}
	*s.refCount--
}

func (s *SelectionVector) RefCount() int32 {
	if s == nil {
		return 0
	}
	return *s.refCount
}

// Compose builds a new selection that applies sub (indices into s) through
// s itself, i.e. result[k] = s[sub[k]]. Used when a filter further narrows
// an already-sliced chunk.
func (s *SelectionVector) Compose(sub *SelectionVector) *SelectionVector {
	if s == nil {
		return sub
	}
	out := make([]uint32, sub.Len())
	for k := range out {
		out[k] = s.idx[sub.idx[k]]
	}
	return NewSelectionVector(out)
}
