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
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"strings"
	"sync"

	"corvusdb/internal/catalog"
	cerrors "corvusdb/internal/errors"
	"corvusdb/internal/txn"
	"corvusdb/internal/types"
)

func errRowNotFound(id int64) error {
	return cerrors.NotFound("row", fmt.Sprintf("%d", id))
}

// Manager is corvusdb's Storage Manager (component C9): it owns every
// table's row groups, the write-ahead log backing them, and an optional
// on-disk checkpoint file. It implements both catalog.JournalWriter (so
// DDL mutations are journalled before the Catalog applies them) and
// txn.Journal (so COMMIT can append its marker and fsync through the same
// WAL handle that row mutations use).
type Manager struct {
	mu     sync.RWMutex
	wal    *WAL
	tables map[string]*Table

	checkpointPath string

	touchedMu sync.Mutex
	touched   map[int64]map[string]bool // txn id -> table names it mutated
}

// NewManager wires a Manager to an already-open WAL. checkpointPath may be
// empty, in which case Checkpoint writes no snapshot file and only
// truncates the WAL: table state lives in memory for the lifetime of this
// process, and nothing survives a restart (an
// embeddable, ":memory:"-style deployment, the same opt-in persistence
// model the root driver's Open exposes per path).
func NewManager(wal *WAL, checkpointPath string) *Manager {
	return &Manager{
		wal:            wal,
		tables:         make(map[string]*Table),
		checkpointPath: checkpointPath,
		touched:        make(map[int64]map[string]bool),
	}
}

func tkey(name string) string { return strings.ToLower(name) }

// --- catalog.JournalWriter ---

// AppendDDL journals a schema mutation. The Catalog calls this before
// applying CREATE/DROP/ALTER in memory (spec §4.3); the Manager mirrors
// the mutation into its own table map here too, since catalog.TableSchema
// and storage.Table are tracked separately but must stay in lockstep.
func (m *Manager) AppendDDL(kind string, payload []byte) error {
	rk, err := ddlKindToRecord(kind)
	if err != nil {
		return err
	}
	if err := m.wal.Append(0, rk, payload); err != nil {
		return err
	}
	return m.wal.Sync()
}

// CreateTable registers the physical row-group storage for a newly
// created table. Callers invoke this alongside catalog.Catalog.CreateTable
// (the connection driver's DDL path does both under one lock).
func (m *Manager) CreateTable(schema catalog.TableSchema) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[tkey(schema.Name)] = newTable(schema)
}

// DropTable removes a table's physical storage.
func (m *Manager) DropTable(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables, tkey(name))
}

// RenameColumn keeps a table's cached schema copy in sync after
// catalog.Catalog.RenameColumn succeeds.
func (m *Manager) RenameColumn(table string, schema catalog.TableSchema) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tables[tkey(table)]; ok {
		t.Schema = schema
	}
}

func (m *Manager) lookup(name string) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[tkey(name)]
	if !ok {
		return nil, cerrors.NotFound("table", name)
	}
	return t, nil
}

func (m *Manager) markTouched(txID int64, table string) {
	m.touchedMu.Lock()
	defer m.touchedMu.Unlock()
	set, ok := m.touched[txID]
	if !ok {
		set = make(map[string]bool)
		m.touched[txID] = set
	}
	set[tkey(table)] = true
}

// --- txn.Journal ---

// AppendCommit appends txnID's COMMIT marker (spec §4.8 COMMIT step a).
func (m *Manager) AppendCommit(txnID int64) error {
	return m.wal.Append(txnID, RecCommit, nil)
}

// Sync fsyncs the WAL (spec §4.8 COMMIT step a "fsync").
func (m *Manager) Sync() error { return m.wal.Sync() }

// Close closes the underlying WAL handle. The Manager must not be used
// afterward.
func (m *Manager) Close() error { return m.wal.Close() }

// StampCommit assigns commitID to every version tx touched across every
// table it mutated, and forgets tx's touched-table set. Called by the
// connection driver immediately after txn.Manager.Commit succeeds (spec
// §4.8 COMMIT step c "stamp undo entries with commit_id" — here, stamp
// the version nodes themselves).
func (m *Manager) StampCommit(txID, commitID int64) {
	m.touchedMu.Lock()
	tables := m.touched[txID]
	delete(m.touched, txID)
	m.touchedMu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()
	for name := range tables {
		if t, ok := m.tables[name]; ok {
			t.stampCommit(txID, commitID)
		}
	}
}

// ForgetTouched drops tx's touched-table bookkeeping without stamping,
// used after Rollback.
func (m *Manager) ForgetTouched(txID int64) {
	m.touchedMu.Lock()
	delete(m.touched, txID)
	m.touchedMu.Unlock()
}

// Insert appends row to table under tx, journals it, and records an undo
// action that discards the slot on rollback (spec §4.9 "Insert appends
// with inserted_by=T.id").
func (m *Manager) Insert(tx *txn.Txn, table string, row []types.Value) (int64, error) {
	t, err := m.lookup(table)
	if err != nil {
		return 0, err
	}
	id := t.insert(tx, row)
	if err := m.wal.Append(tx.ID, RecInsert, encodeInsert(table, id, row)); err != nil {
		t.discard(id)
		return 0, err
	}
	m.markTouched(tx.ID, table)
	tx.RecordUndo(func() { t.discard(id) })
	return id, nil
}

// Delete logically deletes rowIDs within table under tx (spec §4.9
// "Delete sets deleted_by=T.id").
func (m *Manager) Delete(tx *txn.Txn, table string, rowIDs []int64) error {
	t, err := m.lookup(table)
	if err != nil {
		return err
	}
	for _, id := range rowIDs {
		if err := t.markDeleted(tx, id); err != nil {
			for _, done := range rowIDs {
				if done == id {
					break
				}
				t.unmarkDeleted(done)
			}
			return err
		}
	}
	if err := m.wal.Append(tx.ID, RecDelete, encodeDelete(table, rowIDs)); err != nil {
		for _, id := range rowIDs {
			t.unmarkDeleted(id)
		}
		return err
	}
	m.markTouched(tx.ID, table)
	tx.RecordUndo(func() {
		for _, id := range rowIDs {
			t.unmarkDeleted(id)
		}
	})
	return nil
}

// Update rewrites column in every row named by rowIDs, implemented as a
// logical delete of the old versions followed by inserting whole new
// rows with only column changed (spec §4.9 "Update = logical delete and
// insert of new row (column-wise for narrow updates)"). It returns the
// new row ids.
func (m *Manager) Update(tx *txn.Txn, table string, rowIDs []int64, column int, values []types.Value) ([]int64, error) {
	t, err := m.lookup(table)
	if err != nil {
		return nil, err
	}
	newRows := make([][]types.Value, len(rowIDs))
	for i, id := range rowIDs {
		old, err := t.rowAt(id)
		if err != nil {
			return nil, err
		}
		row := append([]types.Value(nil), old...)
		row[column] = values[i]
		newRows[i] = row
	}
	if err := m.Delete(tx, table, rowIDs); err != nil {
		return nil, err
	}
	newIDs := make([]int64, len(newRows))
	for i, row := range newRows {
		id, err := m.Insert(tx, table, row)
		if err != nil {
			return nil, err
		}
		newIDs[i] = id
	}
	return newIDs, nil
}

// NewCursor starts a visibility-filtered scan of table for tx's snapshot.
func (m *Manager) NewCursor(tx *txn.Txn, table string) (*Cursor, error) {
	t, err := m.lookup(table)
	if err != nil {
		return nil, err
	}
	return t.NewCursor(tx), nil
}

// RowAt returns the current column values stored at row id within table,
// irrespective of visibility. Callers that need MVCC-correct reads should
// go through NewCursor; this exists for the executor's Update path, which
// already knows id came from a cursor it trusts and needs the row's
// current values to evaluate assignment expressions against.
func (m *Manager) RowAt(table string, id int64) ([]types.Value, error) {
	t, err := m.lookup(table)
	if err != nil {
		return nil, err
	}
	return t.rowAt(id)
}

// RowCountHint reports table's physical row count for the Catalog to
// surface as a Planner cardinality hint.
func (m *Manager) RowCountHint(table string) int64 {
	t, err := m.lookup(table)
	if err != nil {
		return 0
	}
	return t.RowCount()
}

// Checkpoint materializes every table's currently committed, undeleted
// rows to checkpointPath and truncates the WAL to its current length
// (spec §4.9 "checkpoint materializes state to main DB file and truncates
// the WAL prefix"). A row whose delete is still pending counts as
// undeleted. Checkpoint takes no snapshot watermark: it always writes the
// full committed state and then drops every WAL record, including those
// of transactions still in flight.
func (m *Manager) Checkpoint() error {
	m.mu.RLock()
	var buf bytes.Buffer
	putUvarint(&buf, uint64(len(m.tables)))
	for name, t := range m.tables {
		putString(&buf, name)
		t.mu.RLock()
		var rows [][]types.Value
		for _, g := range t.Groups {
			for off, v := range g.Versions {
				if v != nil && v.InsertedCommit != txn.Pending && (v.DeletedBy == 0 || v.DeletedCommit == txn.Pending) {
					rows = append(rows, g.Rows[off])
				}
			}
		}
		t.mu.RUnlock()
		putUvarint(&buf, uint64(len(rows)))
		for _, row := range rows {
			putUvarint(&buf, uint64(len(row)))
			for _, val := range row {
				putValue(&buf, val)
			}
		}
	}
	m.mu.RUnlock()

	if m.checkpointPath != "" {
		tmp := m.checkpointPath + ".tmp"
		if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
			return err
		}
		if err := os.Rename(tmp, m.checkpointPath); err != nil {
			return err
		}
	}

	size, err := m.wal.Size()
	if err != nil {
		return err
	}
	return m.wal.Truncate(size)
}

// LoadCheckpoint restores tables from a prior Checkpoint's snapshot file,
// if one exists. Callers must have already created each table's schema
// (via CreateTable) before calling this, since the snapshot stores only
// row bytes, not column definitions.
func (m *Manager) LoadCheckpoint() error {
	if m.checkpointPath == "" {
		return nil
	}
	data, err := os.ReadFile(m.checkpointPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	r := bytes.NewReader(data)
	ntables, err := binary.ReadUvarint(r)
	if err != nil {
		return err
	}
	for i := uint64(0); i < ntables; i++ {
		name, err := readString(r)
		if err != nil {
			return err
		}
		nrows, err := binary.ReadUvarint(r)
		if err != nil {
			return err
		}
		t, err := m.lookup(name)
		if err != nil {
			return err
		}
		for j := uint64(0); j < nrows; j++ {
			width, err := binary.ReadUvarint(r)
			if err != nil {
				return err
			}
			row := make([]types.Value, width)
			for k := range row {
				if row[k], err = readValue(r); err != nil {
					return err
				}
			}
			t.loadInserted(0, row)
		}
	}
	return nil
}

// RecoverFromWAL replays committed mutations recorded after the last
// checkpoint, reconstructing row-group state for tables already created
// via CreateTable (spec §4.9 "replay skips records whose transaction
// lacks a COMMIT marker").
func (m *Manager) RecoverFromWAL() error {
	committed := map[int64]bool{}
	var pending []Record
	if err := m.wal.Replay(func(r Record) {
		if r.Kind == RecCommit {
			committed[r.TxnID] = true
			return
		}
		pending = append(pending, r)
	}); err != nil {
		return err
	}
	for _, r := range pending {
		if r.TxnID != 0 && !committed[r.TxnID] {
			continue // transaction never committed; discard per spec
		}
		switch r.Kind {
		case RecInsert:
			table, id, row, err := decodeInsert(r.Payload)
			if err != nil {
				return err
			}
			t, err := m.lookup(table)
			if err != nil {
				return err
			}
			t.placeAt(id, &Version{InsertedBy: 0, InsertedCommit: 0, DeletedBy: 0, DeletedCommit: txn.Pending}, row)
		case RecDelete:
			table, rowIDs, err := decodeDelete(r.Payload)
			if err != nil {
				return err
			}
			t, err := m.lookup(table)
			if err != nil {
				return err
			}
			for _, id := range rowIDs {
				gi, off := locate(id)
				t.mu.Lock()
				if gi < len(t.Groups) && off < len(t.Groups[gi].Versions) {
					if v := t.Groups[gi].Versions[off]; v != nil {
						v.DeletedBy = r.TxnID
						v.DeletedCommit = 0
					}
				}
				t.mu.Unlock()
			}
		}
	}
	return nil
}
