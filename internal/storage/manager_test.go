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
	"path/filepath"
	"testing"

	"corvusdb/internal/txn"
	"corvusdb/internal/types"
)

func newTestManager(t *testing.T) (*Manager, *txn.Manager) {
	t.Helper()
	wal, err := OpenWAL(filepath.Join(t.TempDir(), "test.wal"))
	if err != nil {
		t.Fatalf("OpenWAL: %v", err)
	}
	sm := NewManager(wal, filepath.Join(t.TempDir(), "checkpoint.snap"))
	tm := txn.NewManager(sm)
	return sm, tm
}

func TestManagerInsertCommitAndScan(t *testing.T) {
	sm, tm := newTestManager(t)
	sm.CreateTable(schemaFor("widgets"))

	w := tm.BeginWrite()
	id, err := sm.Insert(w, "widgets", []types.Value{types.Int32Value(1), types.StringValue("a")})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := tm.Commit(w); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	sm.StampCommit(w.ID, w.CommitID)

	reader := tm.Begin()
	cur, err := sm.NewCursor(reader, "widgets")
	if err != nil {
		t.Fatalf("NewCursor: %v", err)
	}
	gotID, row, ok := cur.Next()
	if !ok {
		t.Fatal("expected committed row to be visible")
	}
	if gotID != id || row[0].Int64() != 1 {
		t.Errorf("unexpected row: id=%d row=%+v", gotID, row)
	}
	if _, _, ok := cur.Next(); ok {
		t.Fatal("expected exactly one row")
	}
}

func TestManagerUpdateProducesNewRowID(t *testing.T) {
	sm, tm := newTestManager(t)
	sm.CreateTable(schemaFor("widgets"))

	w := tm.BeginWrite()
	id, _ := sm.Insert(w, "widgets", []types.Value{types.Int32Value(1), types.StringValue("a")})
	tm.Commit(w)
	sm.StampCommit(w.ID, w.CommitID)

	w2 := tm.BeginWrite()
	newIDs, err := sm.Update(w2, "widgets", []int64{id}, 1, []types.Value{types.StringValue("b")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(newIDs) != 1 || newIDs[0] == id {
		t.Fatalf("expected a fresh row id for the updated row, got %v (old was %d)", newIDs, id)
	}
	tm.Commit(w2)
	sm.StampCommit(w2.ID, w2.CommitID)

	reader := tm.Begin()
	cur, _ := sm.NewCursor(reader, "widgets")
	_, row, ok := cur.Next()
	if !ok {
		t.Fatal("expected updated row to be visible")
	}
	if row[1].String() != "b" {
		t.Errorf("expected updated value %q, got %q", "b", row[1].String())
	}
	if _, _, ok := cur.Next(); ok {
		t.Fatal("expected the pre-update version to no longer be visible")
	}
}

func TestManagerRollbackUndoesInsert(t *testing.T) {
	sm, tm := newTestManager(t)
	sm.CreateTable(schemaFor("widgets"))

	w := tm.BeginWrite()
	if _, err := sm.Insert(w, "widgets", []types.Value{types.Int32Value(1), types.StringValue("a")}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	tm.Rollback(w)
	sm.ForgetTouched(w.ID)

	reader := tm.Begin()
	cur, _ := sm.NewCursor(reader, "widgets")
	if _, _, ok := cur.Next(); ok {
		t.Fatal("expected rolled-back insert to be invisible")
	}
}

func TestCheckpointAndRecoverFromWAL(t *testing.T) {
	dir := t.TempDir()
	walPath := filepath.Join(dir, "test.wal")
	ckptPath := filepath.Join(dir, "checkpoint.snap")

	wal, err := OpenWAL(walPath)
	if err != nil {
		t.Fatalf("OpenWAL: %v", err)
	}
	sm := NewManager(wal, ckptPath)
	tm := txn.NewManager(sm)
	sm.CreateTable(schemaFor("widgets"))

	w := tm.BeginWrite()
	sm.Insert(w, "widgets", []types.Value{types.Int32Value(1), types.StringValue("a")})
	tm.Commit(w)
	sm.StampCommit(w.ID, w.CommitID)

	w2 := tm.BeginWrite()
	sm.Insert(w2, "widgets", []types.Value{types.Int32Value(2), types.StringValue("b")})
	tm.Commit(w2)
	sm.StampCommit(w2.ID, w2.CommitID)

	if err := sm.Checkpoint(); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}

	w3 := tm.BeginWrite()
	sm.Insert(w3, "widgets", []types.Value{types.Int32Value(3), types.StringValue("c")})
	tm.Commit(w3)
	sm.StampCommit(w3.ID, w3.CommitID)
	wal.Close()

	// Simulate a restart: fresh manager, reopen WAL, recreate schema,
	// load the checkpoint snapshot, then replay whatever committed after it.
	wal2, err := OpenWAL(walPath)
	if err != nil {
		t.Fatalf("reopen WAL: %v", err)
	}
	sm2 := NewManager(wal2, ckptPath)
	sm2.CreateTable(schemaFor("widgets"))
	if err := sm2.LoadCheckpoint(); err != nil {
		t.Fatalf("LoadCheckpoint: %v", err)
	}
	if err := sm2.RecoverFromWAL(); err != nil {
		t.Fatalf("RecoverFromWAL: %v", err)
	}

	tm2 := txn.NewManager(sm2)
	reader := tm2.Begin()
	cur, _ := sm2.NewCursor(reader, "widgets")
	var got []int64
	for {
		_, row, ok := cur.Next()
		if !ok {
			break
		}
		got = append(got, row[0].Int64())
	}
	if len(got) != 3 {
		t.Fatalf("expected all 3 rows recovered (2 via checkpoint, 1 via WAL replay), got %v", got)
	}
}
