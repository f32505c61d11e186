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

package binder

import (
	"regexp"
	"strconv"
	"strings"

	"corvusdb/internal/catalog"
	cerrors "corvusdb/internal/errors"
	"corvusdb/internal/parser"
	"corvusdb/internal/types"
)

// BoundStatement is the Binder's output: a parse tree with every
// expression typed against the Catalog (spec §4.4 "Output: bound plan
// with all expressions typed").
type BoundStatement interface {
	boundStatementNode()
}

// Binder binds one parser.Statement at a time against a Catalog. A
// Binder is not reused across statements: each Bind call constructs a
// fresh one so that parameter slots never leak between statements.
type Binder struct {
	catalog *catalog.Catalog
	params  map[int]*paramSlot
}

// New creates a Binder bound to cat. cat may be consulted read-only
// (column/table resolution) for the lifetime of one Bind call.
func New(cat *catalog.Catalog) *Binder {
	return &Binder{catalog: cat, params: make(map[int]*paramSlot)}
}

func (b *Binder) paramSlot(idx int) *paramSlot {
	s, ok := b.params[idx]
	if !ok {
		s = &paramSlot{}
		b.params[idx] = s
	}
	return s
}

// finalizeParams enforces spec §4.4: every parameter referenced by the
// statement must have reached a concrete type by the time binding
// finishes, or the statement fails with UnresolvedParameterType.
func (b *Binder) finalizeParams() error {
	for idx, slot := range b.params {
		if !slot.known {
			return cerrors.UnresolvedParameterType(idx)
		}
	}
	return nil
}

// Bind type-checks stmt against the Catalog and returns a BoundStatement
// ready for the Planner (C5).
func Bind(cat *catalog.Catalog, stmt parser.Statement) (BoundStatement, error) {
	b := New(cat)
	bound, err := b.bindStatement(stmt)
	if err != nil {
		return nil, err
	}
	if err := b.finalizeParams(); err != nil {
		return nil, err
	}
	return bound, nil
}

func (b *Binder) bindStatement(stmt parser.Statement) (BoundStatement, error) {
	switch s := stmt.(type) {
	case *parser.CreateTableStmt:
		return b.bindCreateTable(s)
	case *parser.DropTableStmt:
		return b.bindDropTable(s)
	case *parser.AlterTableStmt:
		return b.bindAlterTable(s)
	case *parser.InsertStmt:
		return b.bindInsert(s)
	case *parser.UpdateStmt:
		return b.bindUpdate(s)
	case *parser.DeleteStmt:
		return b.bindDelete(s)
	case *parser.SelectStmt:
		return b.bindSelect(s, nil)
	case *parser.UnionStmt:
		return b.bindUnion(s)
	case *parser.BeginStmt:
		return &BoundBegin{}, nil
	case *parser.CommitStmt:
		return &BoundCommit{}, nil
	case *parser.RollbackStmt:
		return &BoundRollback{ToSavepoint: s.ToSavepoint}, nil
	case *parser.PrepareStmt:
		return b.bindPrepare(s)
	case *parser.ExecuteStmt:
		return b.bindExecute(s)
	case *parser.DeallocateStmt:
		return &BoundDeallocate{Name: s.Name}, nil
	default:
		return nil, cerrors.Internal("binder: unsupported statement type %T", stmt)
	}
}

// --- DDL ---

// BoundCreateTable is CREATE TABLE (spec §4.3 "CreateTable").
type BoundCreateTable struct {
	Schema      catalog.TableSchema
	IfNotExists bool
}

func (*BoundCreateTable) boundStatementNode() {}

func (b *Binder) bindCreateTable(s *parser.CreateTableStmt) (BoundStatement, error) {
	cols := make([]catalog.ColumnDefinition, 0, len(s.Columns))
	for _, c := range s.Columns {
		lt, err := logicalTypeFromSQL(c.Type)
		if err != nil {
			return nil, err
		}
		cols = append(cols, catalog.ColumnDefinition{
			Name:    c.Name,
			Type:    lt,
			NotNull: c.IsNotNull(),
		})
	}
	schema := catalog.TableSchema{Name: s.TableName, Columns: cols}

	// Table-level FOREIGN KEY constraints register a dependency edge so
	// CASCADE drop ordering accounts for them (spec §4.3 AddDependency).
	for _, tc := range s.Constraints {
		if tc.Type == parser.ConstraintForeignKey && tc.ForeignKey != nil {
			b.catalog.AddDependency(s.TableName, tc.ForeignKey.Table)
		}
	}
	for _, c := range s.Columns {
		if fk := c.GetForeignKey(); fk != nil {
			b.catalog.AddDependency(s.TableName, fk.Table)
		}
	}

	return &BoundCreateTable{Schema: schema, IfNotExists: s.IfNotExists}, nil
}

// logicalTypeFromSQL maps the parser's free-form type name to a
// LogicalType. SERIAL is INTEGER with AUTO_INCREMENT handled at the
// column-constraint level, not as a distinct logical kind.
func logicalTypeFromSQL(sqlType string) (types.LogicalType, error) {
	switch strings.ToUpper(strings.TrimSpace(sqlType)) {
	case "BOOL", "BOOLEAN":
		return types.T(types.BOOLEAN), nil
	case "TINYINT":
		return types.T(types.TINYINT), nil
	case "SMALLINT":
		return types.T(types.SMALLINT), nil
	case "INT", "INTEGER", "SERIAL":
		return types.T(types.INTEGER), nil
	case "BIGINT", "BIGSERIAL":
		return types.T(types.BIGINT), nil
	case "REAL", "FLOAT":
		return types.T(types.REAL), nil
	case "DOUBLE", "DOUBLE PRECISION", "DECIMAL", "NUMERIC":
		return types.T(types.DOUBLE), nil
	case "DATE":
		return types.T(types.DATE), nil
	case "TIMESTAMP", "DATETIME":
		return types.T(types.TIMESTAMP), nil
	case "TEXT", "VARCHAR", "CHAR", "STRING":
		return types.T(types.VARCHAR), nil
	case "BLOB", "BYTEA":
		return types.T(types.BLOB), nil
	default:
		return types.LogicalType{}, cerrors.TypeMismatch("unknown column type %q", sqlType)
	}
}

// BoundDropTable is DROP TABLE [CASCADE] (spec §4.3 "DropTable(cascade)").
type BoundDropTable struct {
	TableName string
	IfExists  bool
	Cascade   bool
}

func (*BoundDropTable) boundStatementNode() {}

func (b *Binder) bindDropTable(s *parser.DropTableStmt) (BoundStatement, error) {
	if _, err := b.catalog.Lookup("main", s.TableName); err != nil {
		if s.IfExists {
			return &BoundDropTable{TableName: s.TableName, IfExists: true, Cascade: s.Cascade}, nil
		}
		return nil, err
	}
	return &BoundDropTable{TableName: s.TableName, IfExists: s.IfExists, Cascade: s.Cascade}, nil
}

// BoundAlterRenameColumn is ALTER TABLE ... RENAME COLUMN (spec §4.3
// "RenameColumn"). Other ALTER TABLE actions are rejected here:
// ADD/DROP/MODIFY COLUMN and ADD/DROP CONSTRAINT are not named by the
// Catalog's operation set.
type BoundAlterRenameColumn struct {
	TableName     string
	OldColumnName string
	NewColumnName string
}

func (*BoundAlterRenameColumn) boundStatementNode() {}

func (b *Binder) bindAlterTable(s *parser.AlterTableStmt) (BoundStatement, error) {
	if s.Action != parser.AlterActionRenameColumn {
		return nil, cerrors.TypeMismatch("ALTER TABLE action %v is not supported", s.Action)
	}
	schema, err := b.catalog.Lookup("main", s.TableName)
	if err != nil {
		return nil, err
	}
	if schema.ColumnIndex(s.ColumnName) < 0 {
		return nil, cerrors.UnknownColumn(s.ColumnName)
	}
	return &BoundAlterRenameColumn{
		TableName:     s.TableName,
		OldColumnName: s.ColumnName,
		NewColumnName: s.NewColumnName,
	}, nil
}

// --- Transactions (spec §4.8) ---

type BoundBegin struct{}
type BoundCommit struct{}
type BoundRollback struct{ ToSavepoint string }

func (*BoundBegin) boundStatementNode()    {}
func (*BoundCommit) boundStatementNode()   {}
func (*BoundRollback) boundStatementNode() {}

// --- Prepared statements ---

// BoundPrepare binds the inner statement eagerly, the way DuckDB-style
// engines validate a prepared statement's shape at PREPARE time rather
// than at first EXECUTE.
type BoundPrepare struct {
	Name       string
	SQL        string
	Inner      BoundStatement
	ParamCount int
}

func (*BoundPrepare) boundStatementNode() {}

// BoundExecute substitutes Params for the Inner statement's parameters
// without re-binding (spec §4.5 "parameter substitution rewrites
// Parameter(i) nodes to Constant(v_i) without re-binding"): the Planner
// performs the actual rewrite using the cached bound plan.
type BoundExecute struct {
	Name   string
	Params []string
}

func (*BoundExecute) boundStatementNode() {}

type BoundDeallocate struct{ Name string }

func (*BoundDeallocate) boundStatementNode() {}

func (b *Binder) bindPrepare(s *parser.PrepareStmt) (BoundStatement, error) {
	inner, err := parser.NewParser(parser.NewLexer(s.Query)).Parse()
	if err != nil {
		return nil, cerrors.Syntax("%v", err)
	}
	boundInner, err := Bind(b.catalog, inner)
	if err != nil {
		return nil, err
	}
	switch boundInner.(type) {
	case *BoundSelect, *BoundSetOp, *BoundInsert, *BoundUpdate, *BoundDelete:
	default:
		return nil, cerrors.TypeMismatch("PREPARE does not support statement type %T", boundInner)
	}
	return &BoundPrepare{Name: s.Name, SQL: s.Query, Inner: boundInner, ParamCount: countParams(s.Query)}, nil
}

// scanParamPattern finds every "$N" occurring anywhere in a raw SQL
// string, unlike paramPattern (scope.go) which anchors a whole operand.
var scanParamPattern = regexp.MustCompile(`\$([0-9]+)`)

func countParams(sql string) int {
	max := 0
	for _, m := range scanParamPattern.FindAllStringSubmatch(sql, -1) {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > max {
			max = n
		}
	}
	return max
}

func (b *Binder) bindExecute(s *parser.ExecuteStmt) (BoundStatement, error) {
	return &BoundExecute{Name: s.Name, Params: s.Params}, nil
}
