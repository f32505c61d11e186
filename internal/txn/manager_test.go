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

package txn

import "testing"

type fakeJournal struct {
	commits []int64
	synced  int
}

func (f *fakeJournal) AppendCommit(id int64) error { f.commits = append(f.commits, id); return nil }
func (f *fakeJournal) Sync() error                 { f.synced++; return nil }

func TestBeginAssignsIncreasingIDs(t *testing.T) {
	m := NewManager(nil)
	a := m.Begin()
	b := m.Begin()
	if a.ID == b.ID || b.ID <= a.ID {
		t.Fatalf("expected strictly increasing ids, got %d then %d", a.ID, b.ID)
	}
}

func TestCommitAssignsCommitIDAndDurability(t *testing.T) {
	j := &fakeJournal{}
	m := NewManager(j)
	w := m.BeginWrite()
	if err := m.Commit(w); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if w.CommitID != 1 {
		t.Fatalf("expected commit id 1, got %d", w.CommitID)
	}
	if w.State() != Committed {
		t.Fatalf("expected Committed state")
	}
	if len(j.commits) != 1 || j.commits[0] != w.ID {
		t.Fatalf("expected journal to record commit of txn %d, got %v", w.ID, j.commits)
	}
	if j.synced != 1 {
		t.Fatalf("expected one fsync, got %d", j.synced)
	}
}

func TestRollbackUndoesInReverseOrder(t *testing.T) {
	m := NewManager(nil)
	w := m.BeginWrite()
	var order []int
	w.RecordUndo(func() { order = append(order, 1) })
	w.RecordUndo(func() { order = append(order, 2) })
	w.RecordUndo(func() { order = append(order, 3) })
	m.Rollback(w)
	if len(order) != 3 || order[0] != 3 || order[1] != 2 || order[2] != 1 {
		t.Fatalf("expected reverse undo order [3 2 1], got %v", order)
	}
	if w.State() != RolledBack {
		t.Fatalf("expected RolledBack state")
	}
}

func TestWriterSerialization(t *testing.T) {
	m := NewManager(nil)
	w1 := m.BeginWrite()

	done := make(chan struct{})
	go func() {
		w2 := m.BeginWrite()
		m.Commit(w2)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second writer should have blocked until first released the writer lock")
	default:
	}

	m.Commit(w1)
	<-done
}

func TestVisibilityRule(t *testing.T) {
	reader := &Txn{ID: 10, StartTime: 5}

	// Inserted and committed before the snapshot, never deleted: visible.
	if !Visible(reader, 1, 3, 0, Pending) {
		t.Error("expected version committed before snapshot to be visible")
	}
	// Inserted after the snapshot by another transaction: not visible.
	if Visible(reader, 1, 6, 0, Pending) {
		t.Error("expected version committed after snapshot to be invisible")
	}
	// Inserted by the reader's own transaction, even though not yet
	// committed (Pending): visible to itself.
	if !Visible(reader, 10, Pending, 0, Pending) {
		t.Error("expected a transaction to see its own uncommitted insert")
	}
	// Deleted before the snapshot: not visible.
	if Visible(reader, 1, 3, 2, 4) {
		t.Error("expected version deleted before snapshot to be invisible")
	}
	// Deleted by a transaction still in flight (after the snapshot): still visible.
	if !Visible(reader, 1, 3, 7, 8) {
		t.Error("expected version deleted after snapshot to remain visible")
	}
	// Deleted by the reader's own transaction: not visible to itself.
	if Visible(reader, 1, 3, 10, Pending) {
		t.Error("expected a transaction to not see rows it deleted itself")
	}
}

func TestOldestActiveStartTime(t *testing.T) {
	m := NewManager(nil)
	a := m.Begin()
	_ = a
	b := m.Begin()
	m.Commit(b)
	if got := m.OldestActiveStartTime(); got != a.StartTime {
		t.Fatalf("expected oldest active start time %d, got %d", a.StartTime, got)
	}
}
