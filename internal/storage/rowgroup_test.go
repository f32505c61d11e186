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
	"testing"

	"corvusdb/internal/catalog"
	"corvusdb/internal/txn"
	"corvusdb/internal/types"
)

func schemaFor(name string) catalog.TableSchema {
	return catalog.TableSchema{
		Name: name,
		Columns: []catalog.ColumnDefinition{
			{Name: "id", Type: types.T(types.INTEGER)},
			{Name: "name", Type: types.T(types.VARCHAR)},
		},
	}
}

func TestInsertVisibleToOwnTransactionBeforeCommit(t *testing.T) {
	mgr := txn.NewManager(nil)
	tbl := newTable(schemaFor("widgets"))

	w := mgr.BeginWrite()
	id := tbl.insert(w, []types.Value{types.Int32Value(1), types.StringValue("a")})

	c := tbl.NewCursor(w)
	_, row, ok := c.Next()
	if !ok {
		t.Fatal("expected writer to see its own uncommitted insert")
	}
	if row[0].Int64() != 1 {
		t.Errorf("unexpected row: %+v", row)
	}

	reader := mgr.Begin()
	c2 := tbl.NewCursor(reader)
	if _, _, ok := c2.Next(); ok {
		t.Fatal("expected concurrent reader to not see uncommitted insert")
	}

	mgr.Commit(w)
	tbl.stampCommit(w.ID, w.CommitID)

	reader2 := mgr.Begin()
	c3 := tbl.NewCursor(reader2)
	if _, _, ok := c3.Next(); !ok {
		t.Fatal("expected new snapshot to see committed insert")
	}
	_ = id
}

func TestDeleteHidesRowFromLaterSnapshots(t *testing.T) {
	mgr := txn.NewManager(nil)
	tbl := newTable(schemaFor("widgets"))

	w1 := mgr.BeginWrite()
	id := tbl.insert(w1, []types.Value{types.Int32Value(1), types.StringValue("a")})
	mgr.Commit(w1)
	tbl.stampCommit(w1.ID, w1.CommitID)

	w2 := mgr.BeginWrite()
	if err := tbl.markDeleted(w2, id); err != nil {
		t.Fatalf("markDeleted: %v", err)
	}

	olderReader := mgr.Begin()
	c := tbl.NewCursor(olderReader)
	if _, _, ok := c.Next(); !ok {
		t.Fatal("expected a snapshot begun before the delete commits to still see the row")
	}

	mgr.Commit(w2)
	tbl.stampCommit(w2.ID, w2.CommitID)

	newReader := mgr.Begin()
	c2 := tbl.NewCursor(newReader)
	if _, _, ok := c2.Next(); ok {
		t.Fatal("expected a snapshot begun after the delete commits to not see the row")
	}
}

func TestRollbackDiscardsInsert(t *testing.T) {
	mgr := txn.NewManager(nil)
	tbl := newTable(schemaFor("widgets"))

	w := mgr.BeginWrite()
	id := tbl.insert(w, []types.Value{types.Int32Value(1), types.StringValue("a")})
	tbl.discard(id)
	mgr.Rollback(w)

	reader := mgr.Begin()
	c := tbl.NewCursor(reader)
	if _, _, ok := c.Next(); ok {
		t.Fatal("expected rolled-back insert to never become visible")
	}
}

func TestRowGroupSpillsPastCapacity(t *testing.T) {
	mgr := txn.NewManager(nil)
	tbl := newTable(schemaFor("wide"))
	w := mgr.BeginWrite()
	for i := 0; i < groupCapacity+5; i++ {
		tbl.insert(w, []types.Value{types.Int32Value(int32(i)), types.StringValue("x")})
	}
	if len(tbl.Groups) != 2 {
		t.Fatalf("expected a second row group once capacity %d was exceeded, got %d groups", groupCapacity, len(tbl.Groups))
	}
}
