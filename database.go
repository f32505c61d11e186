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
Package corvusdb is the embeddable analytical SQL engine's public surface
(spec §6 External Interfaces): Open a Database, Connect to it, and drive
statements through Connection.Query/Prepare/Execute/Deallocate.

A Database owns exactly one on-disk (or in-memory) storage backend — one
internal/storage.Manager shared as both the catalog's journal and the
transaction manager's commit journal (component C9 serving three roles,
see DESIGN.md) — and one internal/catalog.Catalog. Any number of
Connections may be opened against it; each Connection owns its own
transaction state and its own internal/planner.Cache of prepared
statements, the way the teacher's server hands every client session its
own parser/session state over a single shared storage.Engine.
*/
package corvusdb

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"corvusdb/internal/catalog"
	cfgpkg "corvusdb/internal/config"
	cerrors "corvusdb/internal/errors"
	"corvusdb/internal/logging"
	"corvusdb/internal/storage"
	"corvusdb/internal/txn"
)

// Config re-exports internal/config.Config so callers never need to
// import an internal package to call Open.
type Config = cfgpkg.Config

// Default returns the package's documented default configuration.
func Default() *Config { return cfgpkg.Default() }

// Database is one opened corvusdb instance: shared catalog, storage and
// transaction manager for every Connection opened against it.
type Database struct {
	cfg *Config
	log *logging.Logger

	mu      sync.Mutex
	storage *storage.Manager
	catalog *catalog.Catalog
	txns    *txn.Manager

	schemaFile string // empty for an in-memory database
	walFile    string // temp file backing an in-memory database's WAL
	tables     []catalog.TableSchema

	checkpointStop chan struct{}
	checkpointDone chan struct{}
}

// Open resolves cfg (applying environment overlays and validating it, per
// internal/config's documented precedence) and opens or creates the
// database it names. A nil cfg opens an in-memory, non-durable database
// with otherwise-default settings.
func Open(cfg *Config) (*Database, error) {
	if cfg == nil {
		cfg = Default()
		cfg.InMemory = true
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, cerrors.Io("invalid configuration: %v", err)
	}

	logging.Configure(logging.ParseLevel(cfg.LogLevel), cfg.LogJSON, os.Stderr)
	log := logging.New("database")

	var (
		wal            *storage.WAL
		checkpointPath string
		schemaFile     string
		walFile        string
		err            error
	)
	if cfg.InMemory {
		// storage.Manager always durability-journals through a real WAL
		// handle, so an in-memory database still gets one backed by a
		// scratch file — deleted in Close, never checkpointed, so nothing
		// meaningful survives a restart (Config.InMemory's documented
		// contract).
		tmp, terr := os.CreateTemp("", "corvusdb-*.wal")
		if terr != nil {
			return nil, cerrors.Io("creating in-memory wal: %v", terr)
		}
		walFile = tmp.Name()
		tmp.Close()
		wal, err = storage.OpenWAL(walFile)
	} else {
		if err = os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, cerrors.Io("creating data dir %q: %v", cfg.DataDir, err)
		}
		base := filepath.Join(cfg.DataDir, "corvus.cdb")
		checkpointPath = base
		schemaFile = schemaPath(base)
		if cfg.EncryptionEnabled {
			econf, eerr := encryptionConfigFromEnv(cfg)
			if eerr != nil {
				return nil, eerr
			}
			wal, err = storage.OpenWALWithEncryption(base+".wal", econf)
		} else {
			wal, err = storage.OpenWAL(base + ".wal")
		}
	}
	if err != nil {
		return nil, cerrors.Io("opening wal: %v", err)
	}

	sm := storage.NewManager(wal, checkpointPath)
	cat := catalog.New(sm)
	tm := txn.NewManager(sm)

	db := &Database{
		cfg:        cfg,
		log:        log,
		storage:    sm,
		catalog:    cat,
		txns:       tm,
		schemaFile: schemaFile,
		walFile:    walFile,
	}

	if schemaFile != "" {
		tables, err := loadSchemaSnapshot(schemaFile)
		if err != nil {
			return nil, cerrors.Io("loading schema snapshot: %v", err)
		}
		for _, t := range tables {
			if err := cat.CreateTable(t); err != nil {
				return nil, err
			}
			sm.CreateTable(t)
			db.tables = append(db.tables, t)
		}
		if err := sm.LoadCheckpoint(); err != nil {
			return nil, cerrors.Io("loading checkpoint: %v", err)
		}
		if err := sm.RecoverFromWAL(); err != nil {
			return nil, cerrors.Io("replaying wal: %v", err)
		}
	}

	db.startCheckpointLoop()

	log.Info("database opened", "in_memory", cfg.InMemory, "data_dir", cfg.DataDir)
	return db, nil
}

// startCheckpointLoop runs a background checkpoint every
// Config.CheckpointIntervalSecs, the way the teacher's disk.CheckpointManager
// bounds WAL replay time on recovery. Disabled for in-memory databases
// (nothing durable to checkpoint) and when the interval is non-positive.
func (db *Database) startCheckpointLoop() {
	if db.schemaFile == "" || db.cfg.CheckpointIntervalSecs <= 0 {
		return
	}
	db.checkpointStop = make(chan struct{})
	db.checkpointDone = make(chan struct{})
	go db.checkpointLoop()
}

func (db *Database) checkpointLoop() {
	defer close(db.checkpointDone)

	interval := time.Duration(db.cfg.CheckpointIntervalSecs) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := db.storage.Checkpoint(); err != nil {
				db.log.Warn("background checkpoint failed", "error", err)
			}
		case <-db.checkpointStop:
			return
		}
	}
}

// stopCheckpointLoop signals the background checkpoint goroutine, if
// running, and waits for it to exit before Close performs the final
// checkpoint itself.
func (db *Database) stopCheckpointLoop() {
	if db.checkpointStop == nil {
		return
	}
	close(db.checkpointStop)
	<-db.checkpointDone
}

func encryptionConfigFromEnv(cfg *Config) (storage.EncryptionConfig, error) {
	pass := os.Getenv(cfg.EncryptionPassphraseEnv)
	if pass == "" {
		return storage.EncryptionConfig{}, cerrors.Io("encryption enabled but %s is empty", cfg.EncryptionPassphraseEnv)
	}
	return storage.EncryptionConfig{Enabled: true, Passphrase: pass}, nil
}

// Connect opens a new Connection against db. Connections are independent:
// each has its own transaction/autocommit state and prepared-statement
// cache, so different goroutines may each use their own Connection at the
// same time; one Connection is not safe for concurrent use (spec §5
// single-writer/multiple-reader concurrency is enforced by txn.Manager,
// not by Connection).
func (db *Database) Connect() *Connection {
	return newConnection(db)
}

// Checkpoint forces the storage manager to materialize committed state to
// disk and truncate the WAL (spec §4.9). A no-op for an in-memory
// database.
func (db *Database) Checkpoint() error {
	return db.storage.Checkpoint()
}

// Close flushes a final checkpoint and closes the underlying WAL. The
// Database must not be used after Close returns.
func (db *Database) Close() error {
	db.stopCheckpointLoop()
	if db.schemaFile != "" {
		if err := db.storage.Checkpoint(); err != nil {
			return err
		}
	}
	if err := db.storage.Sync(); err != nil {
		return err
	}
	if err := db.storage.Close(); err != nil {
		return err
	}
	if db.walFile != "" {
		return os.Remove(db.walFile)
	}
	return nil
}

// snapshotTables returns a deep-enough copy of db's current table list, for
// a Connection to restore wholesale if the DDL statement that's about to
// mutate it gets rolled back (spec §8 scenario 6: ALTER TABLE RENAME
// COLUMN inside an explicit transaction reverts on ROLLBACK).
func (db *Database) snapshotTables() []catalog.TableSchema {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]catalog.TableSchema(nil), db.tables...)
}

// restoreTables replaces db's in-memory table list with before (the
// snapshot a DDL undo closure captured), without touching the Catalog or
// Storage Manager, whose own DDL undo the same closure also runs.
func (db *Database) restoreTables(before []catalog.TableSchema) {
	db.mu.Lock()
	db.tables = before
	db.mu.Unlock()
}

func (db *Database) recordTableCreated(schema catalog.TableSchema) {
	db.mu.Lock()
	db.tables = append(db.tables, schema)
	db.mu.Unlock()
}

func (db *Database) recordTableDropped(name string, cascaded []string) {
	db.mu.Lock()
	dropped := map[string]bool{tkeyFold(name): true}
	for _, c := range cascaded {
		dropped[tkeyFold(c)] = true
	}
	kept := db.tables[:0:0]
	for _, t := range db.tables {
		if !dropped[tkeyFold(t.Name)] {
			kept = append(kept, t)
		}
	}
	db.tables = kept
	db.mu.Unlock()
}

func (db *Database) recordColumnRenamed(tableName, oldName, newName string) {
	db.mu.Lock()
	for i, t := range db.tables {
		if tkeyFold(t.Name) == tkeyFold(tableName) {
			for ci, c := range t.Columns {
				if tkeyFold(c.Name) == tkeyFold(oldName) {
					db.tables[i].Columns[ci].Name = newName
				}
			}
		}
	}
	db.mu.Unlock()
}

// persistSchema rewrites the schema snapshot file from db's current table
// list. Called by a Connection right after a transaction that performed
// DDL commits — never eagerly per-statement, so a rolled-back CREATE/DROP/
// ALTER never reaches disk.
func (db *Database) persistSchema() error {
	if db.schemaFile == "" {
		return nil
	}
	return saveSchemaSnapshot(db.schemaFile, db.snapshotTables())
}

func tableByName(tables []catalog.TableSchema, name string) (catalog.TableSchema, bool) {
	for _, t := range tables {
		if tkeyFold(t.Name) == tkeyFold(name) {
			return t, true
		}
	}
	return catalog.TableSchema{}, false
}

func tkeyFold(s string) string { return strings.ToLower(s) }
