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
	"corvusdb/internal/catalog"
	cerrors "corvusdb/internal/errors"
	"corvusdb/internal/parser"
)

// BoundInsert is INSERT INTO (spec §4.7 Insert: "evaluates row-list
// expressions, applies per-column bound defaults, casts to column
// types").
type BoundInsert struct {
	Table      catalog.TableSchema
	TargetCols []int // index into Table.Columns for each position in Rows[*]
	Rows       [][]BoundExpr
	OnConflict *BoundOnConflict
}

func (*BoundInsert) boundStatementNode() {}

type BoundOnConflict struct {
	DoNothing bool
	DoUpdate  bool
	Updates   map[string]BoundExpr
}

func (b *Binder) bindInsert(s *parser.InsertStmt) (BoundStatement, error) {
	schema, err := b.catalog.Lookup("main", s.TableName)
	if err != nil {
		return nil, err
	}

	targetCols := make([]int, 0)
	if len(s.Columns) > 0 {
		for _, name := range s.Columns {
			idx := schema.ColumnIndex(name)
			if idx < 0 {
				return nil, cerrors.UnknownColumn(name)
			}
			targetCols = append(targetCols, idx)
		}
	} else {
		for i := range schema.Columns {
			targetCols = append(targetCols, i)
		}
	}

	rawRows := s.MultiValues
	if len(rawRows) == 0 && len(s.Values) > 0 {
		rawRows = [][]string{s.Values}
	}

	rows := make([][]BoundExpr, 0, len(rawRows))
	sc := newScope()
	sc.add(s.TableName, schema)
	for _, raw := range rawRows {
		if len(raw) != len(targetCols) {
			return nil, cerrors.TypeMismatch(
				"INSERT has %d value(s) but %d target column(s)", len(raw), len(targetCols))
		}
		row := make([]BoundExpr, len(raw))
		for i, v := range raw {
			colType := schema.Columns[targetCols[i]].Type
			expr, err := b.resolveOperand(sc, v, &colType)
			if err != nil {
				return nil, err
			}
			row[i] = expr
		}
		rows = append(rows, row)
	}

	var onConflict *BoundOnConflict
	if s.OnConflict != nil {
		onConflict = &BoundOnConflict{DoNothing: s.OnConflict.DoNothing, DoUpdate: s.OnConflict.DoUpdate}
		if s.OnConflict.DoUpdate {
			onConflict.Updates = make(map[string]BoundExpr, len(s.OnConflict.Updates))
			for col, raw := range s.OnConflict.Updates {
				idx := schema.ColumnIndex(col)
				if idx < 0 {
					return nil, cerrors.UnknownColumn(col)
				}
				colType := schema.Columns[idx].Type
				expr, err := b.resolveOperand(sc, raw, &colType)
				if err != nil {
					return nil, err
				}
				onConflict.Updates[schema.Columns[idx].Name] = expr
			}
		}
	}

	return &BoundInsert{Table: schema, TargetCols: targetCols, Rows: rows, OnConflict: onConflict}, nil
}

// BoundUpdate is UPDATE ... SET ... [WHERE ...] (spec §4.7 Update).
type BoundUpdate struct {
	Table       catalog.TableSchema
	Assignments map[string]BoundExpr // keyed by canonical column name
	Where       BoundExpr            // nil means "all rows"
}

func (*BoundUpdate) boundStatementNode() {}

func (b *Binder) bindUpdate(s *parser.UpdateStmt) (BoundStatement, error) {
	schema, err := b.catalog.Lookup("main", s.TableName)
	if err != nil {
		return nil, err
	}
	sc := newScope()
	sc.add(s.TableName, schema)

	assignments := make(map[string]BoundExpr, len(s.Updates))
	for col, raw := range s.Updates {
		idx := schema.ColumnIndex(col)
		if idx < 0 {
			return nil, cerrors.UnknownColumn(col)
		}
		colType := schema.Columns[idx].Type
		expr, err := b.resolveOperand(sc, raw, &colType)
		if err != nil {
			return nil, err
		}
		assignments[schema.Columns[idx].Name] = expr
	}

	var where BoundExpr
	if s.Where != nil {
		where, err = b.bindCondition(sc, s.Where)
		if err != nil {
			return nil, err
		}
	}
	return &BoundUpdate{Table: schema, Assignments: assignments, Where: where}, nil
}

// BoundDelete is DELETE FROM ... [WHERE ...] (spec §4.7 Delete).
type BoundDelete struct {
	Table catalog.TableSchema
	Where BoundExpr
}

func (*BoundDelete) boundStatementNode() {}

func (b *Binder) bindDelete(s *parser.DeleteStmt) (BoundStatement, error) {
	schema, err := b.catalog.Lookup("main", s.TableName)
	if err != nil {
		return nil, err
	}
	sc := newScope()
	sc.add(s.TableName, schema)

	var where BoundExpr
	if s.Where != nil {
		where, err = b.bindCondition(sc, s.Where)
		if err != nil {
			return nil, err
		}
	}
	return &BoundDelete{Table: schema, Where: where}, nil
}

// bindCondition binds the parser's simple equality Condition (used by
// UPDATE/DELETE's backward-compatible WHERE and by JOIN ON clauses).
func (b *Binder) bindCondition(sc *scope, c *parser.Condition) (BoundExpr, error) {
	left, err := b.resolveOperand(sc, c.Column, nil)
	if err != nil {
		return nil, err
	}
	lt := left.Type()
	right, err := b.resolveOperand(sc, c.Value, &lt)
	if err != nil {
		return nil, err
	}
	operandType, err := joinOperandTypes("=", left, right)
	if err != nil {
		return nil, err
	}
	return BoundComparison{Op: "=", Left: left, Right: right, OperandType: operandType}, nil
}
