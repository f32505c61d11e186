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
Package txn is corvusdb's component C8: transaction id and snapshot
assignment, the undo buffer, and the MVCC visibility rule (spec §3, §4.8).

corvusdb runs single-writer/multiple-reader: only one transaction holds
the write intent at a time (enforced by Manager.BeginWrite's writer lock), but
any number of already-active snapshots keep reading through their own
start_time undisturbed while it does. This is the same shape as the
teacher's internal/storage/transaction.go buffered-write model, except
undo entries here roll back *row versions* a writer created, not raw KV
puts, and commit assigns a global, monotonic commit_id rather than simply
replaying a write buffer.
*/
package txn

import (
	"sync"

	cerrors "corvusdb/internal/errors"
)

// State is a transaction's lifecycle stage.
type State int

const (
	Active State = iota
	Committed
	RolledBack
)

// Pending is the sentinel commit id carried by a version created by a
// transaction that has not committed yet: per spec §3's visibility rule,
// only that transaction's own id (not any commit_id comparison) can make
// such a version visible, so Pending must never satisfy "<= start_time"
// for any real snapshot.
const Pending int64 = -1

// undoEntry lets Rollback undo exactly the mutations Undo recorded, in
// reverse order (spec §4.8 "ROLLBACK walks the undo buffer in reverse").
type undoEntry struct {
	undo func()
}

// Txn is one transaction's identity and undo state.
type Txn struct {
	mu sync.Mutex

	ID        int64
	StartTime int64 // snapshot: current_commit_counter at BEGIN (spec §3)
	CommitID  int64 // assigned at COMMIT; Pending until then

	state State
	undo  []undoEntry

	// walOffset is never set or read: Rollback leaves this transaction's
	// WAL records in the log rather than discarding them.
	walOffset int64
}

func (t *Txn) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// RecordUndo pushes fn onto the undo stack; fn is invoked in
// last-in-first-out order during Rollback.
func (t *Txn) RecordUndo(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.undo = append(t.undo, undoEntry{undo: fn})
}

// Visible implements spec §3's exact visibility formula:
//
//	(inserted_commit_id <= T.start_time OR inserted_tx_id == T.id)
//	AND NOT (deleted_commit_id <= T.start_time OR deleted_tx_id == T.id)
//
// deletedCommit/deletedTx of (Pending, 0) mean "never deleted".
func Visible(t *Txn, insertedTx, insertedCommit, deletedTx, deletedCommit int64) bool {
	insertedVisible := insertedCommit != Pending && insertedCommit <= t.StartTime || insertedTx == t.ID
	if !insertedVisible {
		return false
	}
	deletedVisible := deletedCommit != Pending && deletedCommit <= t.StartTime || deletedTx == t.ID
	return !deletedVisible
}

// checkActive returns TransactionError.Aborted if t is not Active,
// guarding against a caller trying to mutate through a committed or
// rolled-back handle.
func (t *Txn) checkActive() error {
	if t.state != Active {
		return cerrors.Aborted("transaction is not active")
	}
	return nil
}
