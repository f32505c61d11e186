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

package storage

import (
	"sync"

	"corvusdb/internal/catalog"
	"corvusdb/internal/txn"
	"corvusdb/internal/types"
)

// groupCapacity bounds how many row slots a single RowGroup holds before a
// new one is appended (spec §4.9 "a table is a sequence of row groups").
const groupCapacity = 2048

// Version is one row slot's MVCC metadata (spec §4.9 version node):
// who inserted it and at what commit id, and who (if anyone) deleted it
// and at what commit id. DeletedBy == 0 means "not deleted" — no real
// transaction is ever assigned id 0, so it doubles as the "never
// deleted" sentinel regardless of DeletedCommit's value.
type Version struct {
	InsertedBy     int64
	InsertedCommit int64
	DeletedBy      int64
	DeletedCommit  int64

	// Prior chains to the version this one logically replaced (an UPDATE's
	// delete half), kept for diagnostics; scanning never needs to walk it
	// since every live version is reachable directly from its row group.
	Prior *Version
}

// RowGroup is a dense, growable slice of rows plus one Version per slot
// (spec §4.9). A nil Version marks a slot whose insert was rolled back —
// distinct from a committed-then-deleted row, which keeps its Version but
// fails visibility.
type RowGroup struct {
	Rows     [][]types.Value
	Versions []*Version
}

func newRowGroup() *RowGroup {
	return &RowGroup{
		Rows:     make([][]types.Value, 0, groupCapacity),
		Versions: make([]*Version, 0, groupCapacity),
	}
}

func (g *RowGroup) full() bool { return len(g.Rows) >= groupCapacity }

func (g *RowGroup) append(row []types.Value, v *Version) int {
	g.Rows = append(g.Rows, row)
	g.Versions = append(g.Versions, v)
	return len(g.Rows) - 1
}

// Table is one catalog table's physical row-group storage.
type Table struct {
	mu     sync.RWMutex
	Schema catalog.TableSchema
	Groups []*RowGroup
}

func newTable(schema catalog.TableSchema) *Table {
	return &Table{Schema: schema}
}

// rowID packs (group index, offset within group) into a single stable
// identifier, the row_ids the Update/Delete physical operators pass back
// to Storage (spec §4.7).
func rowID(groupIdx, offset int) int64 { return int64(groupIdx)*groupCapacity + int64(offset) }

func locate(id int64) (groupIdx, offset int) {
	return int(id / groupCapacity), int(id % groupCapacity)
}

// insert appends row as a new version owned by tx, returning its row id.
func (t *Table) insert(tx *txn.Txn, row []types.Value) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.Groups) == 0 || t.Groups[len(t.Groups)-1].full() {
		t.Groups = append(t.Groups, newRowGroup())
	}
	gi := len(t.Groups) - 1
	off := t.Groups[gi].append(row, &Version{
		InsertedBy:     tx.ID,
		InsertedCommit: txn.Pending,
		DeletedBy:      0,
		DeletedCommit:  txn.Pending,
	})
	return rowID(gi, off)
}

// loadInserted appends row as an already-committed version, used when
// recovering table state from a WAL replay or checkpoint file rather than
// through a live transaction.
func (t *Table) loadInserted(commitID int64, row []types.Value) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.Groups) == 0 || t.Groups[len(t.Groups)-1].full() {
		t.Groups = append(t.Groups, newRowGroup())
	}
	gi := len(t.Groups) - 1
	off := t.Groups[gi].append(row, &Version{
		InsertedBy:     0,
		InsertedCommit: commitID,
		DeletedBy:      0,
		DeletedCommit:  txn.Pending,
	})
	return rowID(gi, off)
}

// placeAt installs row at the exact row id it originally held, growing
// groups with tombstoned filler slots as needed. Used by WAL recovery,
// where later Delete records reference the original ids and therefore
// cannot be renumbered the way loadInserted's append does.
func (t *Table) placeAt(id int64, v *Version, row []types.Value) {
	gi, off := locate(id)
	t.mu.Lock()
	defer t.mu.Unlock()
	for len(t.Groups) <= gi {
		t.Groups = append(t.Groups, newRowGroup())
	}
	g := t.Groups[gi]
	for len(g.Rows) <= off {
		g.Rows = append(g.Rows, nil)
		g.Versions = append(g.Versions, nil)
	}
	g.Rows[off] = row
	g.Versions[off] = v
}

// discard undoes an uncommitted insert (ROLLBACK of an INSERT), turning
// the slot into a permanent tombstone; it keeps the slot's index reserved
// rather than shrinking the group, since other row ids in the group would
// otherwise be invalidated.
func (t *Table) discard(id int64) {
	gi, off := locate(id)
	t.mu.Lock()
	defer t.mu.Unlock()
	if gi >= 0 && gi < len(t.Groups) && off >= 0 && off < len(t.Groups[gi].Versions) {
		t.Groups[gi].Versions[off] = nil
	}
}

// markDeleted stamps the version at id as deleted by tx.
func (t *Table) markDeleted(tx *txn.Txn, id int64) error {
	gi, off := locate(id)
	t.mu.Lock()
	defer t.mu.Unlock()
	if gi < 0 || gi >= len(t.Groups) || off < 0 || off >= len(t.Groups[gi].Versions) {
		return errRowNotFound(id)
	}
	v := t.Groups[gi].Versions[off]
	if v == nil {
		return errRowNotFound(id)
	}
	v.DeletedBy = tx.ID
	v.DeletedCommit = txn.Pending
	return nil
}

// unmarkDeleted reverses markDeleted (ROLLBACK of a DELETE/UPDATE).
func (t *Table) unmarkDeleted(id int64) {
	gi, off := locate(id)
	t.mu.Lock()
	defer t.mu.Unlock()
	if gi < 0 || gi >= len(t.Groups) || off < 0 || off >= len(t.Groups[gi].Versions) {
		return
	}
	if v := t.Groups[gi].Versions[off]; v != nil {
		v.DeletedBy = 0
		v.DeletedCommit = txn.Pending
	}
}

// stampCommit assigns commitID to every version this transaction touched.
// Called once per Commit rather than walking undo, stampCommit instead
// scans the table for entries still bearing tx's pending marks — cheap
// because a single transaction only ever touches a handful of row groups
// in the workloads corvusdb targets.
func (t *Table) stampCommit(txID, commitID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, g := range t.Groups {
		for _, v := range g.Versions {
			if v == nil {
				continue
			}
			if v.InsertedBy == txID && v.InsertedCommit == txn.Pending {
				v.InsertedCommit = commitID
			}
			if v.DeletedBy == txID && v.DeletedCommit == txn.Pending {
				v.DeletedCommit = commitID
			}
		}
	}
}

// rowAt returns the raw row at id regardless of visibility; callers must
// already know the row exists and is visible (e.g. from a prior Scan).
func (t *Table) rowAt(id int64) ([]types.Value, error) {
	gi, off := locate(id)
	t.mu.RLock()
	defer t.mu.RUnlock()
	if gi < 0 || gi >= len(t.Groups) || off < 0 || off >= len(t.Groups[gi].Rows) {
		return nil, errRowNotFound(id)
	}
	return t.Groups[gi].Rows[off], nil
}

// Cursor is a pull-based iterator over a Table's visible rows for one
// transaction's snapshot, the shape the Scan physical operator's
// GetChunk drives one call at a time (spec §4.7).
type Cursor struct {
	tx    *txn.Txn
	table *Table
	gi    int
	off   int
}

// NewCursor starts a scan of t visible to tx.
func (t *Table) NewCursor(tx *txn.Txn) *Cursor {
	return &Cursor{tx: tx, table: t}
}

// Next returns the next visible row, or ok=false once the table is
// exhausted.
func (c *Cursor) Next() (id int64, row []types.Value, ok bool) {
	c.table.mu.RLock()
	defer c.table.mu.RUnlock()
	for c.gi < len(c.table.Groups) {
		g := c.table.Groups[c.gi]
		for c.off < len(g.Versions) {
			off := c.off
			c.off++
			v := g.Versions[off]
			if v == nil {
				continue
			}
			if txn.Visible(c.tx, v.InsertedBy, v.InsertedCommit, v.DeletedBy, v.DeletedCommit) {
				return rowID(c.gi, off), g.Rows[off], true
			}
		}
		c.gi++
		c.off = 0
	}
	return 0, nil, false
}

// RowCount reports the table's total physical slot count including
// tombstoned and not-yet-visible versions, a coarse but cheap statistic
// the Catalog can surface as a cardinality hint to the Planner.
func (t *Table) RowCount() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var n int64
	for _, g := range t.Groups {
		n += int64(len(g.Rows))
	}
	return n
}
