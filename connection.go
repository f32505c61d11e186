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
	"time"

	"corvusdb/internal/binder"
	"corvusdb/internal/catalog"
	cerrors "corvusdb/internal/errors"
	"corvusdb/internal/exec"
	"corvusdb/internal/logging"
	"corvusdb/internal/parser"
	"corvusdb/internal/planner"
	"corvusdb/internal/txn"
	"corvusdb/internal/types"
)

// Connection is one session against a Database: its own transaction
// state (spec §6 "Connection.query/prepare/execute") and its own
// internal/planner.Cache of prepared statements (spec §4.5 "cached by
// name in the owning connection"). A Connection is not safe for
// concurrent use by multiple goroutines at once — open one Connection per
// goroutine from the shared Database instead.
type Connection struct {
	db    *Database
	cache *planner.Cache
	log   *logging.Logger

	tx          *txn.Txn
	explicit    bool // true once BEGIN has opened a transaction this Connection owns
	aborted     bool // a statement failed inside the explicit transaction; only ROLLBACK is accepted
	schemaDirty bool // DDL ran against tx; persist the schema snapshot at commit
}

func newConnection(db *Database) *Connection {
	return &Connection{db: db, cache: planner.NewCache(), log: logging.New("connection")}
}

// Query parses, binds, plans and runs sql, returning its result (spec §6
// Connection.query). A parse, bind or plan error inside an explicit
// transaction aborts it the same way an execution error does.
func (c *Connection) Query(sql string) (*QueryResult, error) {
	stmt, err := parser.NewParser(parser.NewLexer(sql)).Parse()
	var bound binder.BoundStatement
	if err == nil {
		bound, err = binder.Bind(c.db.catalog, stmt)
	}
	var plan planner.PhysicalPlan
	if err == nil {
		plan, err = planner.Plan(c.db.catalog, bound)
	}
	if err != nil {
		if c.explicit {
			c.aborted = true
		}
		return nil, err
	}
	return c.run(plan)
}

// Prepare binds and plans sql, caching the resulting physical tree under
// its PREPARE name for later Execute calls (spec §6 Connection.prepare).
// The returned PreparedHandle is opaque; callers pass it back to Execute.
func (c *Connection) Prepare(sql string) (*PreparedHandle, error) {
	stmt, err := parser.NewParser(parser.NewLexer(sql)).Parse()
	if err != nil {
		return nil, err
	}
	bound, err := binder.Bind(c.db.catalog, stmt)
	if err != nil {
		return nil, err
	}
	plan, err := planner.Plan(c.db.catalog, bound)
	if err != nil {
		return nil, err
	}
	prep, ok := plan.(*planner.PreparePlan)
	if !ok {
		return nil, cerrors.Internal("corvusdb: PREPARE did not produce a PreparePlan (got %T)", plan)
	}
	if err := c.storePrepared(prep); err != nil {
		return nil, err
	}
	return &PreparedHandle{Name: prep.Name, ParamCount: prep.ParamCount}, nil
}

// storePrepared caches prep under its name and mirrors it into the
// Catalog's dependency graph. Used both by Prepare and by a bare PREPARE
// statement arriving through Query.
func (c *Connection) storePrepared(prep *planner.PreparePlan) error {
	c.cache.Store(prep)
	if err := c.registerPrepared(prep); err != nil {
		c.cache.Deallocate(prep.Name)
		return err
	}
	return nil
}

// registerPrepared mirrors prep into the shared Catalog's dependency
// graph so DROP TABLE can refuse (or CASCADE through) it while it is
// live. A re-PREPARE of the same name silently replaces the old
// registration, matching Cache.Store's own overwrite semantics.
func (c *Connection) registerPrepared(prep *planner.PreparePlan) error {
	tables := referencedTables(prep.Inner)
	entry := catalog.PreparedStatementEntry{Name: prep.Name, ParamCount: prep.ParamCount}
	err := c.db.catalog.RegisterPrepared(entry, tables)
	if err != nil && cerrors.Is(err, cerrors.KindCatalog) {
		c.db.catalog.DeallocatePrepared(prep.Name)
		c.db.catalog.DropDependent(prep.Name)
		err = c.db.catalog.RegisterPrepared(entry, tables)
	}
	return err
}

// PreparedHandle is the opaque token Prepare returns and Execute consumes
// (spec §6 Connection.prepare -> PreparedHandle).
type PreparedHandle struct {
	Name       string
	ParamCount int
}

// Execute substitutes params into handle's cached plan and runs it (spec
// §6 Connection.execute). params are raw argument text in $1.. order;
// each is cast to its parameter's bound type during substitution.
func (c *Connection) Execute(handle *PreparedHandle, params []string) (*QueryResult, error) {
	return c.run(&planner.ExecutePlan{Name: handle.Name, Params: params})
}

// Deallocate forgets a prepared statement. Idempotent: deallocating an
// unknown name succeeds (spec §8 "DEALLOCATE s for unknown s succeeds").
func (c *Connection) Deallocate(name string) error {
	c.cache.Deallocate(name)
	_ = c.db.catalog.DeallocatePrepared(name)
	c.db.catalog.DropDependent(name)
	return nil
}

// run dispatches plan to the right execution path, wrapping it in an
// implicit transaction when the Connection has no explicit one open
// (spec §7 "Execution errors abort the current statement and, if inside
// an implicit transaction, roll it back").
func (c *Connection) run(plan planner.PhysicalPlan) (*QueryResult, error) {
	switch plan.(type) {
	case *planner.BeginPlan:
		return c.beginExplicit()
	case *planner.CommitPlan:
		return c.commitExplicit()
	case *planner.RollbackPlan:
		return c.rollbackExplicit()
	}

	if c.explicit {
		if c.aborted {
			return nil, cerrors.Aborted("current transaction is aborted, only ROLLBACK is accepted")
		}
		res, err := c.dispatch(plan, c.tx)
		if err != nil {
			c.aborted = true
			c.log.Debug("transaction aborted by statement error", "error", err)
		}
		return res, err
	}

	tx := c.beginForPlan(plan)
	res, err := c.dispatch(plan, tx)
	if err != nil {
		c.log.Debug("implicit transaction rolled back", "error", err)
		c.db.txns.Rollback(tx)
		c.db.storage.ForgetTouched(tx.ID)
		return nil, err
	}
	if err := c.db.txns.Commit(tx); err != nil {
		return nil, err
	}
	c.db.storage.StampCommit(tx.ID, tx.CommitID)
	if c.schemaDirty {
		c.schemaDirty = false
		if err := c.db.persistSchema(); err != nil {
			return res, err
		}
	}
	return res, nil
}

// beginForPlan picks a read-only snapshot for plans that cannot mutate
// and a write transaction for everything else, so implicit read-only
// statements never contend on the single-writer lock. An EXECUTE is
// resolved through the prepared-statement cache to see what it actually
// runs, since Substitute hasn't been called yet at this point.
func (c *Connection) beginForPlan(plan planner.PhysicalPlan) *txn.Txn {
	if c.needsWrite(plan) {
		return c.db.txns.BeginWrite()
	}
	return c.db.txns.Begin()
}

func (c *Connection) needsWrite(plan planner.PhysicalPlan) bool {
	switch p := plan.(type) {
	case *planner.InsertPlan, *planner.UpdatePlan, *planner.DeletePlan,
		*planner.CreateTablePlan, *planner.DropTablePlan, *planner.AlterRenameColumnPlan:
		return true
	case *planner.ExecutePlan:
		prep, ok := c.cache.Lookup(p.Name)
		if !ok {
			return true // let dispatch produce NotFound under a safe write txn
		}
		return c.needsWrite(prep.Inner)
	default:
		return false
	}
}

func (c *Connection) beginExplicit() (*QueryResult, error) {
	if c.explicit {
		return nil, cerrors.Aborted("a transaction is already open on this connection")
	}
	c.tx = c.db.txns.BeginWrite()
	c.explicit = true
	c.aborted = false
	c.schemaDirty = false
	return &QueryResult{}, nil
}

func (c *Connection) commitExplicit() (*QueryResult, error) {
	if !c.explicit {
		return nil, cerrors.Aborted("no transaction is open on this connection")
	}
	if c.aborted {
		return nil, cerrors.Aborted("current transaction is aborted, only ROLLBACK is accepted")
	}
	tx := c.tx
	c.clearExplicit()
	if err := c.db.txns.Commit(tx); err != nil {
		return nil, err
	}
	c.db.storage.StampCommit(tx.ID, tx.CommitID)
	if err := c.db.persistSchema(); err != nil {
		return nil, err
	}
	return &QueryResult{}, nil
}

func (c *Connection) rollbackExplicit() (*QueryResult, error) {
	if !c.explicit {
		return nil, cerrors.Aborted("no transaction is open on this connection")
	}
	tx := c.tx
	c.clearExplicit()
	c.db.txns.Rollback(tx)
	c.db.storage.ForgetTouched(tx.ID)
	return &QueryResult{}, nil
}

func (c *Connection) clearExplicit() {
	c.tx = nil
	c.explicit = false
	c.aborted = false
	c.schemaDirty = false
}

// dispatch runs plan to completion under tx: DDL mutates the Catalog and
// Storage Manager directly (component C3/C9's own operations, spec §4.3/
// §4.9), Insert/Update/Delete go through exec.ExecuteMutation (C6/C7),
// and everything else is a query operator tree drained into a
// QueryResult.
func (c *Connection) dispatch(plan planner.PhysicalPlan, tx *txn.Txn) (*QueryResult, error) {
	switch p := plan.(type) {
	case *planner.CreateTablePlan:
		return c.execCreateTable(p, tx)
	case *planner.DropTablePlan:
		return c.execDropTable(p, tx)
	case *planner.AlterRenameColumnPlan:
		return c.execRenameColumn(p, tx)
	case *planner.InsertPlan, *planner.UpdatePlan, *planner.DeletePlan:
		return c.execMutation(plan, tx)
	case *planner.PreparePlan:
		return &QueryResult{}, c.storePrepared(p)
	case *planner.ExecutePlan:
		prep, ok := c.cache.Lookup(p.Name)
		if !ok {
			return nil, cerrors.NotFound("prepared statement", p.Name)
		}
		substituted, err := planner.Substitute(prep, p.Params)
		if err != nil {
			return nil, err
		}
		return c.dispatch(substituted, tx)
	case *planner.DeallocatePlan:
		return &QueryResult{}, c.Deallocate(p.Name)
	default:
		return c.execQuery(plan, tx)
	}
}

func (c *Connection) env(tx *txn.Txn) *exec.Env {
	return &exec.Env{Txn: tx, Storage: c.db.storage, Ctx: exec.NewContext(time.Now().UnixNano())}
}

func (c *Connection) execMutation(plan planner.PhysicalPlan, tx *txn.Txn) (*QueryResult, error) {
	n, err := exec.ExecuteMutation(plan, c.env(tx))
	if err != nil {
		return nil, err
	}
	return &QueryResult{RowsAffected: n}, nil
}

func (c *Connection) execQuery(plan planner.PhysicalPlan, tx *txn.Txn) (*QueryResult, error) {
	op, err := exec.Build(plan, c.env(tx))
	if err != nil {
		return nil, err
	}
	names := columnNames(plan)
	var rows [][]types.Value
	for {
		chunk, err := op.Next()
		if err != nil {
			return nil, err
		}
		if chunk == nil {
			break
		}
		for k := 0; k < chunk.Count(); k++ {
			rows = append(rows, append([]types.Value(nil), chunk.Row(k)...))
		}
	}
	return &QueryResult{Columns: names, Rows: rows, RowsAffected: int64(len(rows))}, nil
}

func (c *Connection) execCreateTable(p *planner.CreateTablePlan, tx *txn.Txn) (*QueryResult, error) {
	if p.IfNotExists {
		if _, err := c.db.catalog.Lookup("main", p.Schema.Name); err == nil {
			return &QueryResult{}, nil
		}
	}
	before := c.db.snapshotTables()
	if err := c.db.catalog.CreateTable(p.Schema); err != nil {
		return nil, err
	}
	c.db.storage.CreateTable(p.Schema)
	c.db.recordTableCreated(p.Schema)
	c.schemaDirty = true

	name := p.Schema.Name
	tx.RecordUndo(func() {
		_ = c.db.catalog.DropTable(name, true)
		c.db.storage.DropTable(name)
		c.db.restoreTables(before)
	})
	return &QueryResult{}, nil
}

func (c *Connection) execDropTable(p *planner.DropTablePlan, tx *txn.Txn) (*QueryResult, error) {
	if p.IfExists {
		if _, err := c.db.catalog.Lookup("main", p.TableName); err != nil {
			return &QueryResult{}, nil
		}
	}
	before := c.db.snapshotTables()
	if err := c.db.catalog.DropTable(p.TableName, p.Cascade); err != nil {
		return nil, err
	}

	var dropped []string
	for _, t := range before {
		if _, err := c.db.catalog.Lookup("main", t.Name); err != nil {
			dropped = append(dropped, t.Name)
			c.db.storage.DropTable(t.Name)
		}
	}
	c.db.recordTableDropped(p.TableName, dropped)
	c.schemaDirty = true

	tx.RecordUndo(func() {
		for _, t := range before {
			if _, ok := tableByName(c.db.snapshotTables(), t.Name); !ok {
				_ = c.db.catalog.CreateTable(t)
				c.db.storage.CreateTable(t)
			}
		}
		c.db.restoreTables(before)
	})
	return &QueryResult{}, nil
}

func (c *Connection) execRenameColumn(p *planner.AlterRenameColumnPlan, tx *txn.Txn) (*QueryResult, error) {
	before := c.db.snapshotTables()
	if err := c.db.catalog.RenameColumn(p.TableName, p.OldColumnName, p.NewColumnName); err != nil {
		return nil, err
	}
	schema, err := c.db.catalog.Lookup("main", p.TableName)
	if err != nil {
		return nil, err
	}
	c.db.storage.RenameColumn(p.TableName, schema)
	c.db.recordColumnRenamed(p.TableName, p.OldColumnName, p.NewColumnName)
	c.schemaDirty = true

	tableName, oldName, newName := p.TableName, p.OldColumnName, p.NewColumnName
	tx.RecordUndo(func() {
		_ = c.db.catalog.RenameColumn(tableName, newName, oldName)
		if schema, err := c.db.catalog.Lookup("main", tableName); err == nil {
			c.db.storage.RenameColumn(tableName, schema)
		}
		c.db.restoreTables(before)
	})
	return &QueryResult{}, nil
}
