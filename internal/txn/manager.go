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

import "sync"

// Journal is the durability hook a Manager calls on commit: append a
// COMMIT marker for txnID and fsync before the commit is considered
// durable (spec §4.8 COMMIT step a/b). internal/storage.Manager implements
// this so package txn never has to import the WAL directly.
type Journal interface {
	AppendCommit(txnID int64) error
	Sync() error
}

// Manager hands out transaction ids and snapshots, and owns the global
// commit counter every COMMIT increments (spec §4.8, §3).
//
// Writes are serialized: BeginWrite acquires writeMu for the lifetime of
// the write transaction it starts so that at most one
// writer mutates row groups at a time, the single-writer/multiple-reader
// model spec §4.8 describes. Read-only snapshots (Begin) never touch
// writeMu and can run concurrently with each other and with the single
// active writer.
type Manager struct {
	mu            sync.Mutex
	nextTxnID     int64
	commitCounter int64
	active        map[int64]*Txn

	writeMu  sync.Mutex
	writerID int64 // 0 when no writer is active

	journal Journal
}

// NewManager constructs a Manager. journal may be nil for tests that never
// call Commit.
func NewManager(journal Journal) *Manager {
	return &Manager{
		active:  make(map[int64]*Txn),
		journal: journal,
	}
}

func (m *Manager) allocate() *Txn {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTxnID++
	t := &Txn{
		ID:        m.nextTxnID,
		StartTime: m.commitCounter,
		CommitID:  Pending,
		state:     Active,
	}
	m.active[t.ID] = t
	return t
}

// Begin starts a read-only snapshot transaction: it never blocks on the
// writer lock and its StartTime is fixed at the current commit counter for
// the lifetime of the snapshot (spec §3 visibility).
func (m *Manager) Begin() *Txn {
	return m.allocate()
}

// BeginWrite starts a transaction that intends to mutate row groups. It
// blocks until any other in-flight writer has committed or rolled back,
// enforcing the single-writer invariant.
func (m *Manager) BeginWrite() *Txn {
	m.writeMu.Lock()
	t := m.allocate()
	m.mu.Lock()
	m.writerID = t.ID
	m.mu.Unlock()
	return t
}

func (m *Manager) releaseWriter(id int64) {
	m.mu.Lock()
	isWriter := m.writerID == id
	if isWriter {
		m.writerID = 0
	}
	m.mu.Unlock()
	if isWriter {
		m.writeMu.Unlock()
	}
}

// Commit assigns t a commit id and makes its writes durable and visible to
// future snapshots (spec §4.8 COMMIT: append marker + fsync, then assign
// commit_id, then stamp undo entries).
func (m *Manager) Commit(t *Txn) error {
	t.mu.Lock()
	if t.state != Active {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	if m.journal != nil {
		if err := m.journal.AppendCommit(t.ID); err != nil {
			m.Rollback(t)
			return err
		}
		if err := m.journal.Sync(); err != nil {
			m.Rollback(t)
			return err
		}
	}

	m.mu.Lock()
	m.commitCounter++
	commitID := m.commitCounter
	delete(m.active, t.ID)
	m.mu.Unlock()

	t.mu.Lock()
	t.CommitID = commitID
	t.state = Committed
	t.mu.Unlock()

	m.releaseWriter(t.ID)
	return nil
}

// Rollback undoes t's mutations in reverse order and marks it
// RolledBack (spec §4.8 "walks the undo buffer in reverse"). It does not
// touch the WAL: records t already appended stay in the log, and WAL
// replay skips them because t never wrote a COMMIT marker.
func (m *Manager) Rollback(t *Txn) {
	t.mu.Lock()
	if t.state != Active {
		t.mu.Unlock()
		return
	}
	t.state = RolledBack
	undo := t.undo
	t.undo = nil
	t.mu.Unlock()

	for i := len(undo) - 1; i >= 0; i-- {
		undo[i].undo()
	}

	m.mu.Lock()
	delete(m.active, t.ID)
	m.mu.Unlock()

	m.releaseWriter(t.ID)
}

// OldestActiveStartTime returns the smallest StartTime among currently
// active transactions, the watermark below which no future snapshot can
// ever need an older version — a checkpoint may safely discard version
// chain entries deleted at or before it. Returns the current commit
// counter when no transaction is active.
func (m *Manager) OldestActiveStartTime() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	oldest := m.commitCounter
	for _, t := range m.active {
		if t.StartTime < oldest {
			oldest = t.StartTime
		}
	}
	return oldest
}
