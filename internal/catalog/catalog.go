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
Package catalog is corvusdb's schema registry (component C3).

Catalog Overview:
=================

The Catalog tracks every table's column definitions plus a dependency
graph between catalog objects (tables and prepared statements). It
serves three purposes:

 1. Schema validation during bind (column existence/type lookup)
 2. Dependency tracking so DROP can refuse or CASCADE correctly
 3. Durability: every DDL mutation is journalled before it takes effect

Storage Strategy:
=================

The Catalog keeps its authoritative state in memory, guarded by a single
RWMutex (DDL takes the writer, binding takes a reader for the duration of
bind+plan). Mutations are journalled through a JournalWriter before the
in-memory map is updated, mirroring the teacher's write-through schema
cache but replacing "storage.Engine" with an append-only DDL log record.
*/
package catalog

import (
	"strings"
	"sync"
	"time"

	cerrors "corvusdb/internal/errors"
	"corvusdb/internal/types"
)

// JournalWriter persists a DDL record before the Catalog applies it in
// memory. The Storage Manager (C9) implements this over the WAL.
type JournalWriter interface {
	AppendDDL(kind string, payload []byte) error
}

// ColumnDefinition is a single column's name and logical type.
type ColumnDefinition struct {
	Name    string
	Type    types.LogicalType
	NotNull bool
}

// TableSchema is the ordered column list backing a table (spec §4.3).
type TableSchema struct {
	Name       string
	Columns    []ColumnDefinition
	CreatedAt  time.Time
	ModifiedAt time.Time

	// RowCountHint is the Storage Manager's last-known row count for this
	// table, consulted by the Planner (spec §4.5 "cardinality hints") when
	// choosing between hash and nested-loop join or hash- and sorted-group
	// aggregation. Zero means "unknown" and biases the Planner toward the
	// cheaper-to-plan nested-loop/hash-group defaults.
	RowCountHint int64
}

// ColumnIndex returns the position of name in the schema, or -1.
func (s TableSchema) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

// Catalog is corvusdb's schema registry plus dependency graph.
type Catalog struct {
	mu       sync.RWMutex
	tables   map[string]*TableSchema // keyed by lower-cased name
	prepared map[string]*PreparedStatementEntry
	deps     *dependencyGraph
	journal  JournalWriter
}

// New creates an empty Catalog. journal may be nil in tests that don't
// care about durability.
func New(journal JournalWriter) *Catalog {
	return &Catalog{
		tables:   make(map[string]*TableSchema),
		prepared: make(map[string]*PreparedStatementEntry),
		deps:     newDependencyGraph(),
		journal:  journal,
	}
}

func key(name string) string { return strings.ToLower(name) }

// CreateTable registers a new table schema (spec §4.3 "CreateTable").
func (c *Catalog) CreateTable(schema TableSchema) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(schema.Name)
	if _, exists := c.tables[k]; exists {
		return cerrors.DuplicateName("table", schema.Name)
	}
	now := time.Now()
	schema.CreatedAt, schema.ModifiedAt = now, now

	if err := c.appendJournal("CREATE_TABLE", schema.Name); err != nil {
		return err
	}
	cp := schema
	c.tables[k] = &cp
	return nil
}

// Lookup resolves (schema, name) to a TableSchema (spec §4.3 "Lookup").
// The schema argument is accepted for forward compatibility with
// multi-schema catalogs; corvusdb today has a single implicit "main"
// schema, so it is otherwise ignored.
func (c *Catalog) Lookup(schema, name string) (TableSchema, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tables[key(name)]
	if !ok {
		return TableSchema{}, cerrors.NotFound("table", name)
	}
	return *t, nil
}

// DropTable removes a table (spec §4.3 "DropTable(cascade)"). Without
// cascade, dropping a table with live dependents fails with
// DependencyExists; with cascade, dependents (including prepared
// statements bound against it) are removed transitively first.
func (c *Catalog) DropTable(name string, cascade bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(name)
	if _, ok := c.tables[k]; !ok {
		return cerrors.NotFound("table", name)
	}

	dependents := c.deps.dependentsOf(k)
	if len(dependents) > 0 {
		if !cascade {
			return cerrors.DependencyExists(name, dependents)
		}
		if err := c.dropDependentsLocked(dependents); err != nil {
			return err
		}
	}

	if err := c.appendJournal("DROP_TABLE", name); err != nil {
		return err
	}
	delete(c.tables, k)
	c.deps.removeObject(k)
	return nil
}

// dropDependentsLocked removes every dependent object (table or prepared
// statement) transitively. Caller holds c.mu.
func (c *Catalog) dropDependentsLocked(owners []string) error {
	for _, owner := range owners {
		if _, isTable := c.tables[owner]; isTable {
			transitive := c.deps.dependentsOf(owner)
			if len(transitive) > 0 {
				if err := c.dropDependentsLocked(transitive); err != nil {
					return err
				}
			}
			delete(c.tables, owner)
			c.deps.removeObject(owner)
			continue
		}
		if _, isPrepared := c.prepared[owner]; isPrepared {
			delete(c.prepared, owner)
			c.deps.removeObject(owner)
			continue
		}
	}
	return nil
}

// RenameColumn renames a column in place (spec §4.3 "RenameColumn").
func (c *Catalog) RenameColumn(tableName, oldName, newName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(tableName)
	t, ok := c.tables[k]
	if !ok {
		return cerrors.NotFound("table", tableName)
	}
	idx := t.ColumnIndex(oldName)
	if idx < 0 {
		return cerrors.NotFound("column", oldName)
	}
	if t.ColumnIndex(newName) >= 0 {
		return cerrors.DuplicateName("column", newName)
	}

	if err := c.appendJournal("ALTER_RENAME_COLUMN", tableName+"."+oldName+"->"+newName); err != nil {
		return err
	}
	t.Columns[idx].Name = newName
	t.ModifiedAt = time.Now()
	return nil
}

// AddDependency records that owner depends on target (spec §4.3
// "AddDependency(owner,target)"): dropping target without CASCADE is
// refused while owner is live.
func (c *Catalog) AddDependency(owner, target string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deps.add(key(owner), key(target))
}

// DropDependent removes every dependency edge that names owner, as owner
// or as target (spec §4.3 "DropDependent(owner)"), e.g. when a prepared
// statement is deallocated.
func (c *Catalog) DropDependent(owner string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deps.removeObject(key(owner))
}

func (c *Catalog) appendJournal(kind, payload string) error {
	if c.journal == nil {
		return nil
	}
	if err := c.journal.AppendDDL(kind, []byte(payload)); err != nil {
		return cerrors.Io("failed to journal %s: %v", kind, err)
	}
	return nil
}
