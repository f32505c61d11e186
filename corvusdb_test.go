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

package corvusdb

import (
	"testing"

	cerrors "corvusdb/internal/errors"
)

func openMemory(t *testing.T) *Database {
	t.Helper()
	db, err := Open(nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustQuery(t *testing.T, conn *Connection, sql string) *QueryResult {
	t.Helper()
	res, err := conn.Query(sql)
	if err != nil {
		t.Fatalf("Query(%q): %v", sql, err)
	}
	return res
}

func TestCreateInsertSelectRoundTrip(t *testing.T) {
	db := openMemory(t)
	conn := db.Connect()

	mustQuery(t, conn, "CREATE TABLE widgets (id INTEGER, name VARCHAR)")
	if _, err := conn.Query("INSERT INTO widgets VALUES (1, 'gear')"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := conn.Query("INSERT INTO widgets VALUES (2, 'cog')"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	res := mustQuery(t, conn, "SELECT id, name FROM widgets ORDER BY id")
	if len(res.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(res.Rows))
	}
	if res.Rows[0][1].GoString() != "gear" || res.Rows[1][1].GoString() != "cog" {
		t.Fatalf("unexpected row contents: %+v", res.Rows)
	}
}

// TINYINT is a signed 8-bit type; binding a value outside [-128, 127]
// through a prepared statement parameter must fail with a ConversionError
// rather than silently truncating.
func TestPreparedExecuteOutOfRangeTinyint(t *testing.T) {
	db := openMemory(t)
	conn := db.Connect()
	mustQuery(t, conn, "CREATE TABLE bytes (v TINYINT)")

	handle, err := conn.Prepare("PREPARE ins AS INSERT INTO bytes VALUES ($1)")
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	_, err = conn.Execute(handle, []string{"200"})
	if err == nil {
		t.Fatalf("expected out-of-range error, got none")
	}
	if !cerrors.Is(err, cerrors.KindConversion) {
		t.Fatalf("expected ConversionError, got %v", err)
	}
}

func TestPreparedExecuteRoundTripViaBareSQL(t *testing.T) {
	db := openMemory(t)
	conn := db.Connect()
	mustQuery(t, conn, "CREATE TABLE nums (v INTEGER)")

	if _, err := conn.Query("PREPARE ins AS INSERT INTO nums VALUES ($1)"); err != nil {
		t.Fatalf("PREPARE: %v", err)
	}
	if _, err := conn.Query("EXECUTE ins USING 7"); err != nil {
		t.Fatalf("EXECUTE: %v", err)
	}
	if _, err := conn.Query("EXECUTE ins USING 9"); err != nil {
		t.Fatalf("EXECUTE: %v", err)
	}

	res := mustQuery(t, conn, "SELECT v FROM nums ORDER BY v")
	if len(res.Rows) != 2 || res.Rows[0][0].Int64() != 7 || res.Rows[1][0].Int64() != 9 {
		t.Fatalf("unexpected rows: %+v", res.Rows)
	}

	if _, err := conn.Query("DEALLOCATE ins"); err != nil {
		t.Fatalf("DEALLOCATE: %v", err)
	}
	// Deallocating an unknown name is a no-op, not an error, whether it
	// arrives through the typed API or as raw SQL.
	if err := conn.Deallocate("ins"); err != nil {
		t.Fatalf("Deallocate of unknown statement should succeed, got %v", err)
	}
	if _, err := conn.Query("DEALLOCATE ins"); err != nil {
		t.Fatalf("DEALLOCATE of unknown statement should succeed, got %v", err)
	}
}

func TestCloseReopenDurabilityWithPreparedInserts(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.DataDir = dir

	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	conn := db.Connect()
	mustQuery(t, conn, "CREATE TABLE events (id INTEGER, label VARCHAR)")

	handle, err := conn.Prepare("PREPARE rec AS INSERT INTO events VALUES ($1, $2)")
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if _, err := conn.Execute(handle, []string{"1", "boot"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, err := conn.Execute(handle, []string{"2", "warm"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db2, err := Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()
	conn2 := db2.Connect()
	res := mustQuery(t, conn2, "SELECT id, label FROM events ORDER BY id")
	if len(res.Rows) != 2 {
		t.Fatalf("expected 2 rows to survive close/reopen, got %d", len(res.Rows))
	}
	if res.Rows[0][1].GoString() != "boot" || res.Rows[1][1].GoString() != "warm" {
		t.Fatalf("unexpected rows after reopen: %+v", res.Rows)
	}
}

// An explicit transaction that ALTER TABLE RENAMEs a column, then rolls
// back, must leave the original column name resolvable again.
func TestExplicitTransactionRenameColumnRollback(t *testing.T) {
	db := openMemory(t)
	conn := db.Connect()
	mustQuery(t, conn, "CREATE TABLE test (a INTEGER)")
	if _, err := conn.Query("INSERT INTO test VALUES (1)"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := conn.Query("BEGIN"); err != nil {
		t.Fatalf("BEGIN: %v", err)
	}
	if _, err := conn.Query("ALTER TABLE test RENAME COLUMN a TO k"); err != nil {
		t.Fatalf("ALTER: %v", err)
	}
	if _, err := conn.Query("SELECT k FROM test"); err != nil {
		t.Fatalf("SELECT k inside transaction: %v", err)
	}
	if _, err := conn.Query("ROLLBACK"); err != nil {
		t.Fatalf("ROLLBACK: %v", err)
	}

	res := mustQuery(t, conn, "SELECT a FROM test")
	if len(res.Rows) != 1 {
		t.Fatalf("expected the original column to still resolve, got %+v", res)
	}
}

// A mutating statement that fails mid-explicit-transaction aborts the
// transaction: only ROLLBACK is accepted afterward.
func TestExplicitTransactionAbortsOnError(t *testing.T) {
	db := openMemory(t)
	conn := db.Connect()
	mustQuery(t, conn, "CREATE TABLE things (v TINYINT)")

	if _, err := conn.Query("BEGIN"); err != nil {
		t.Fatalf("BEGIN: %v", err)
	}
	if _, err := conn.Query("INSERT INTO things VALUES (500)"); err == nil {
		t.Fatalf("expected out-of-range insert to fail")
	}
	if _, err := conn.Query("SELECT v FROM things"); err == nil {
		t.Fatalf("expected aborted transaction to reject further statements")
	} else if !cerrors.Is(err, cerrors.KindTransaction) {
		t.Fatalf("expected TransactionError, got %v", err)
	}
	if _, err := conn.Query("ROLLBACK"); err != nil {
		t.Fatalf("ROLLBACK should still be accepted: %v", err)
	}

	// The connection is usable again for a fresh implicit statement.
	res := mustQuery(t, conn, "SELECT v FROM things")
	if len(res.Rows) != 0 {
		t.Fatalf("expected no rows committed, got %+v", res.Rows)
	}
}

// DROP TABLE ... CASCADE must drop prepared statements that reference the
// table along with it, so a later EXECUTE reports NotFound rather than
// touching a table that no longer exists.
func TestDropTableCascadeRemovesDependentPrepared(t *testing.T) {
	db := openMemory(t)
	conn := db.Connect()
	mustQuery(t, conn, "CREATE TABLE doomed (id INTEGER)")

	if _, err := conn.Prepare("PREPARE ins AS INSERT INTO doomed VALUES ($1)"); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if _, err := conn.Query("DROP TABLE doomed CASCADE"); err != nil {
		t.Fatalf("DROP TABLE CASCADE: %v", err)
	}
	if _, err := conn.Query("EXECUTE ins USING 1"); err == nil {
		t.Fatalf("expected EXECUTE of a cascade-dropped statement to fail")
	}
}
