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
	"corvusdb/internal/types"
)

// scope is the set of tables visible while binding one SELECT/UPDATE/
// DELETE/INSERT body: the FROM table, any JOINed table, and (for
// UPDATE/DELETE) the single target table.
type scope struct {
	tables []tableBinding
}

type tableBinding struct {
	alias  string
	schema catalog.TableSchema
}

func newScope() *scope { return &scope{} }

func (s *scope) add(alias string, schema catalog.TableSchema) {
	if alias == "" {
		alias = schema.Name
	}
	s.tables = append(s.tables, tableBinding{alias: alias, schema: schema})
}

// resolveColumn resolves a possibly "table.column" or "alias.column"
// name against every table bound into scope. It mirrors the teacher's
// row-map lookup in spirit: first narrow by prefix if one is given,
// then take the first schema that has the column.
func (s *scope) resolveColumn(raw string) (BoundColumnRef, bool) {
	prefix, name := "", raw
	if i := strings.LastIndex(raw, "."); i >= 0 {
		prefix, name = raw[:i], raw[i+1:]
	}

	for _, tb := range s.tables {
		if prefix != "" && !strings.EqualFold(prefix, tb.alias) && !strings.EqualFold(prefix, tb.schema.Name) {
			continue
		}
		idx := tb.schema.ColumnIndex(name)
		if idx < 0 {
			continue
		}
		return BoundColumnRef{
			Table: tb.alias,
			Name:  tb.schema.Columns[idx].Name,
			Index: idx,
			Typ:   tb.schema.Columns[idx].Type,
		}, true
	}
	return BoundColumnRef{}, false
}

var paramPattern = regexp.MustCompile(`^\$([0-9]+)$`)

// paramIndex reports whether raw is a "$N" placeholder, as produced by
// the lexer's dedicated $-digit token (internal/parser/lexer.go).
func paramIndex(raw string) (int, bool) {
	m := paramPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// inferLiteral types an untyped parser string the same way the parser's
// own lexer distinguishes keywords from other tokens (internal/parser
// keeps TRUE/FALSE/NULL as reserved keywords but a literal's quotes are
// stripped before it ever reaches the AST, so "123" and '123' are
// indistinguishable here; resolveOperand always tries a column lookup
// first, exactly like the teacher's executor.go combinedRow[...] lookup
// falling back to the literal value).
func inferLiteral(raw string) types.Value {
	switch strings.ToUpper(raw) {
	case "NULL":
		return types.NullValue(types.T(types.VARCHAR))
	case "TRUE":
		return types.BoolValue(true)
	case "FALSE":
		return types.BoolValue(false)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n >= -(1<<31) && n <= (1<<31-1) {
			return types.Int32Value(int32(n))
		}
		return types.Int64Value(n)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return types.Float64Value(f)
	}
	return types.StringValue(raw)
}

// resolveOperand turns one of the parser's raw strings into a
// BoundExpr: a parameter, a column reference, or a typed literal, in
// that priority order (spec §4.4).
//
// expected, if non-nil, is the type this operand is expected to take
// from its surrounding context (e.g. the other side of a comparison);
// it is how a bare "$1" becomes a typed BoundParameter.
func (b *Binder) resolveOperand(sc *scope, raw string, expected *types.LogicalType) (BoundExpr, error) {
	if idx, ok := paramIndex(raw); ok {
		slot := b.paramSlot(idx)
		if expected != nil {
			slot.typ = *expected
			slot.known = true
		}
		return BoundParameter{Index: idx, slot: slot}, nil
	}
	if col, ok := sc.resolveColumn(raw); ok {
		return col, nil
	}
	lit := inferLiteral(raw)
	if expected != nil && !lit.Null {
		cast, err := types.TryCast(lit, *expected)
		if err == nil {
			return BoundConstant{Value: cast}, nil
		}
		return BoundConstant{}, cerrors.TypeMismatch("cannot use %q as %s", raw, expected.Kind)
	}
	return BoundConstant{Value: lit}, nil
}
