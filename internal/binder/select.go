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
	"strings"

	"corvusdb/internal/catalog"
	cerrors "corvusdb/internal/errors"
	"corvusdb/internal/parser"
	"corvusdb/internal/types"
)

// BoundProjection is one output column of a SELECT list.
type BoundProjection struct {
	Expr  BoundExpr
	Alias string
}

// BoundJoin is a single JOIN clause (spec §4.7 "Nested loop join").
type BoundJoin struct {
	Type  parser.JoinType
	Table catalog.TableSchema
	On    BoundExpr
}

// BoundOrderBy is a single-key ORDER BY (spec §4.7 Order: "NULLs sort
// first for ASC, last for DESC").
type BoundOrderBy struct {
	Expr       BoundExpr
	Descending bool
}

// BoundSelect is a fully bound SELECT (spec §4.4/§4.5). Subqueries bind
// to another *BoundSelect; a derived table (FROM (SELECT ...) alias)
// binds its inner query the same way.
type BoundSelect struct {
	FromTable    catalog.TableSchema
	FromAlias    string
	FromSubquery *BoundSelect

	Join *BoundJoin

	Distinct    bool
	Projections []BoundProjection

	Where   BoundExpr
	GroupBy []BoundColumnRef
	Having  BoundExpr
	OrderBy *BoundOrderBy
	Limit   int
	Offset  int
}

func (*BoundSelect) boundStatementNode() {}

// BoundSetOp is UNION/INTERSECT/EXCEPT (spec §2 "set operations" surface
// of the SQL front-end; the Planner treats it as a physical set-op node
// over two bound children).
type BoundSetOp struct {
	Op    string // "UNION", "INTERSECT", "EXCEPT"
	All   bool
	Left  *BoundSelect
	Right *BoundSelect
	Next  *BoundSetOp // chained UNIONs
}

func (*BoundSetOp) boundStatementNode() {}

func (b *Binder) bindUnion(s *parser.UnionStmt) (BoundStatement, error) {
	left, err := b.bindSelect(s.Left, nil)
	if err != nil {
		return nil, err
	}
	right, err := b.bindSelect(s.Right, nil)
	if err != nil {
		return nil, err
	}
	op := &BoundSetOp{Op: "UNION", All: s.All, Left: left, Right: right}
	if s.NextUnion != nil {
		next, err := b.bindUnion(s.NextUnion)
		if err != nil {
			return nil, err
		}
		nextOp, ok := next.(*BoundSetOp)
		if !ok {
			return nil, cerrors.Internal("binder: chained UNION did not bind to a set op")
		}
		op.Next = nextOp
	}
	return op, nil
}

// bindSelect binds a SELECT. outer, if non-nil, is the enclosing
// query's scope — reserved for correlated subquery support; today's
// planner only unnests uncorrelated scalar subqueries (spec §4.5), so
// outer is accepted but not consulted for column resolution.
func (b *Binder) bindSelect(s *parser.SelectStmt, outer *scope) (*BoundSelect, error) {
	sc := newScope()
	bs := &BoundSelect{Distinct: s.Distinct, Limit: s.Limit, Offset: s.Offset}

	if s.Subquery != nil {
		inner, err := b.bindSelect(s.Subquery, outer)
		if err != nil {
			return nil, err
		}
		bs.FromSubquery = inner
		bs.FromAlias = s.FromAlias
		sc.add(s.FromAlias, derivedSchema(inner, s.FromAlias))
	} else {
		schema, err := b.catalog.Lookup("main", s.TableName)
		if err != nil {
			return nil, err
		}
		bs.FromTable = schema
		bs.FromAlias = s.FromAlias
		sc.add(s.FromAlias, schema)
	}

	if s.Join != nil {
		joinSchema, err := b.catalog.Lookup("main", s.Join.TableName)
		if err != nil {
			return nil, err
		}
		sc.add("", joinSchema)
		var on BoundExpr
		if s.Join.On != nil {
			on, err = b.bindCondition(sc, s.Join.On)
			if err != nil {
				return nil, err
			}
		}
		bs.Join = &BoundJoin{Type: s.Join.JoinType, Table: joinSchema, On: on}
	}

	projections, err := b.bindProjections(sc, s)
	if err != nil {
		return nil, err
	}
	bs.Projections = projections

	switch {
	case s.WhereExt != nil:
		bs.Where, err = b.bindWhereClause(sc, s.WhereExt)
	case s.Where != nil:
		bs.Where, err = b.bindCondition(sc, s.Where)
	}
	if err != nil {
		return nil, err
	}

	for _, g := range s.GroupBy {
		col, ok := sc.resolveColumn(g)
		if !ok {
			return nil, cerrors.UnknownColumn(g)
		}
		bs.GroupBy = append(bs.GroupBy, col)
	}

	if s.Having != nil {
		bs.Having, err = b.bindHaving(sc, s.Having)
		if err != nil {
			return nil, err
		}
	}

	if s.OrderBy != nil {
		expr, ok := sc.resolveColumn(s.OrderBy.Column)
		var oexpr BoundExpr = expr
		if !ok {
			oexpr = findProjectionAlias(projections, s.OrderBy.Column)
			if oexpr == nil {
				return nil, cerrors.UnknownColumn(s.OrderBy.Column)
			}
		}
		bs.OrderBy = &BoundOrderBy{Expr: oexpr, Descending: strings.EqualFold(s.OrderBy.Direction, "DESC")}
	}

	return bs, nil
}

func findProjectionAlias(projections []BoundProjection, name string) BoundExpr {
	for _, p := range projections {
		if strings.EqualFold(p.Alias, name) {
			return p.Expr
		}
	}
	return nil
}

// derivedSchema turns a bound subquery's projection list into a
// TableSchema so the outer scope can resolve "alias.column" against it,
// the way a real optimizer materializes a derived table's output type.
func derivedSchema(inner *BoundSelect, alias string) catalog.TableSchema {
	cols := make([]catalog.ColumnDefinition, len(inner.Projections))
	for i, p := range inner.Projections {
		name := p.Alias
		if name == "" {
			if ref, ok := p.Expr.(BoundColumnRef); ok {
				name = ref.Name
			} else {
				name = "?column?"
			}
		}
		cols[i] = catalog.ColumnDefinition{Name: name, Type: p.Expr.Type()}
	}
	return catalog.TableSchema{Name: alias, Columns: cols}
}

func (b *Binder) bindProjections(sc *scope, s *parser.SelectStmt) ([]BoundProjection, error) {
	var out []BoundProjection

	wantsAll := false
	for _, c := range s.Columns {
		if c == "*" {
			wantsAll = true
			continue
		}
		col, ok := sc.resolveColumn(c)
		if !ok {
			return nil, cerrors.UnknownColumn(c)
		}
		out = append(out, BoundProjection{Expr: col})
	}
	if wantsAll {
		var all []BoundProjection
		for _, tb := range sc.tables {
			for _, c := range tb.schema.Columns {
				all = append(all, BoundProjection{Expr: BoundColumnRef{
					Table: tb.alias, Name: c.Name, Index: tb.schema.ColumnIndex(c.Name), Typ: c.Type,
				}})
			}
		}
		out = append(all, out...)
	}

	for _, fn := range s.Functions {
		bound, err := b.bindFunctionExpr(sc, fn)
		if err != nil {
			return nil, err
		}
		out = append(out, BoundProjection{Expr: bound, Alias: fn.Alias})
	}

	for _, agg := range s.Aggregates {
		bound, err := b.bindAggregateExpr(sc, agg)
		if err != nil {
			return nil, err
		}
		out = append(out, BoundProjection{Expr: bound, Alias: agg.Alias})
	}

	return out, nil
}

// aggregateResultType applies spec §4.4's TIMESTAMP restriction ("Forbidden
// on timestamps: ... SUM, AVG. Allowed: comparisons, MIN, MAX") and picks
// the aggregate's result type.
func aggregateResultType(fn string, argType types.LogicalType, star bool) (types.LogicalType, error) {
	switch fn {
	case "COUNT":
		return types.T(types.BIGINT), nil
	case "SUM", "AVG":
		if star {
			return types.LogicalType{}, cerrors.TypeMismatch("%s does not accept *", fn)
		}
		if argType.Kind == types.TIMESTAMP {
			return types.LogicalType{}, cerrors.DisallowedAggregate(fn, "TIMESTAMP")
		}
		if !argType.Kind.IsNumeric() {
			return types.LogicalType{}, cerrors.TypeMismatch("%s requires a numeric argument", fn)
		}
		return types.T(types.DOUBLE), nil
	case "MIN", "MAX":
		if star {
			return types.LogicalType{}, cerrors.TypeMismatch("%s does not accept *", fn)
		}
		return argType, nil
	case "GROUP_CONCAT", "STRING_AGG":
		return types.T(types.VARCHAR), nil
	default:
		return types.LogicalType{}, cerrors.TypeMismatch("unknown aggregate function %q", fn)
	}
}

func (b *Binder) bindAggregateExpr(sc *scope, agg *parser.AggregateExpr) (BoundAggregate, error) {
	fn := strings.ToUpper(agg.Function)
	star := agg.Column == "*" || agg.Column == ""

	var arg BoundExpr
	var argType types.LogicalType
	if !star {
		col, ok := sc.resolveColumn(agg.Column)
		if !ok {
			return BoundAggregate{}, cerrors.UnknownColumn(agg.Column)
		}
		arg = col
		argType = col.Typ
	}

	result, err := aggregateResultType(fn, argType, star)
	if err != nil {
		return BoundAggregate{}, err
	}
	return BoundAggregate{Function: fn, Arg: arg, Star: star, Alias: agg.Alias, Result: result}, nil
}

// scalarFunctionResultType is a small dispatch table grounded in the
// function catalog documented on parser.FunctionExpr.
func scalarFunctionResultType(name string, args []BoundExpr) types.LogicalType {
	switch strings.ToUpper(name) {
	case "UPPER", "LOWER", "TRIM", "CONCAT", "SUBSTRING", "REPLACE", "LEFT", "RIGHT":
		return types.T(types.VARCHAR)
	case "LENGTH":
		return types.T(types.BIGINT)
	case "ABS", "ROUND", "CEIL", "FLOOR", "MOD", "POWER", "SQRT":
		return types.T(types.DOUBLE)
	case "NOW":
		return types.T(types.TIMESTAMP)
	case "CURRENT_DATE":
		return types.T(types.DATE)
	case "CURRENT_TIME":
		return types.T(types.TIMESTAMP)
	case "COALESCE", "NULLIF", "IFNULL", "NVL", "ISNULL":
		if len(args) > 0 {
			return args[0].Type()
		}
		return types.T(types.VARCHAR)
	default:
		return types.T(types.VARCHAR)
	}
}

func (b *Binder) bindFunctionExpr(sc *scope, fn *parser.FunctionExpr) (BoundExpr, error) {
	args := make([]BoundExpr, len(fn.Arguments))
	for i, raw := range fn.Arguments {
		expr, err := b.resolveOperand(sc, raw, nil)
		if err != nil {
			return nil, err
		}
		args[i] = expr
	}
	result := scalarFunctionResultType(fn.Function, args)
	return BoundFunction{Name: strings.ToUpper(fn.Function), Args: args, Alias: fn.Alias, Result: result}, nil
}

func (b *Binder) bindHaving(sc *scope, h *parser.HavingClause) (BoundExpr, error) {
	agg, err := b.bindAggregateExpr(sc, h.Aggregate)
	if err != nil {
		return nil, err
	}
	rt := agg.Result
	right, err := b.resolveOperand(sc, h.Value, &rt)
	if err != nil {
		return nil, err
	}
	operandType, err := joinOperandTypes(h.Operator, agg, right)
	if err != nil {
		return nil, err
	}
	return BoundComparison{Op: h.Operator, Left: agg, Right: right, OperandType: operandType}, nil
}

// bindWhereClause recursively binds an extended WHERE clause, including
// IN/EXISTS/BETWEEN/LIKE forms and AND/OR chaining (spec §4.4).
func (b *Binder) bindWhereClause(sc *scope, wc *parser.WhereClause) (BoundExpr, error) {
	var expr BoundExpr
	var err error

	switch wc.Operator {
	case "EXISTS", "NOT EXISTS":
		sub, ierr := b.bindSelect(wc.Subquery, sc)
		if ierr != nil {
			return nil, ierr
		}
		expr = BoundSubquery{Kind: "EXISTS", Query: sub, Negate: wc.Operator == "NOT EXISTS"}

	case "IN", "NOT IN":
		left, ierr := b.resolveOperand(sc, wc.Column, nil)
		if ierr != nil {
			return nil, ierr
		}
		if wc.IsSubquery && wc.Subquery != nil {
			sub, serr := b.bindSelect(wc.Subquery, sc)
			if serr != nil {
				return nil, serr
			}
			expr = BoundSubquery{Kind: "IN", Input: left, Query: sub, Negate: wc.Operator == "NOT IN"}
		} else {
			lt := left.Type()
			list := make([]BoundExpr, len(wc.Values))
			for i, v := range wc.Values {
				list[i], err = b.resolveOperand(sc, v, &lt)
				if err != nil {
					return nil, err
				}
			}
			expr = BoundInList{Input: left, List: list, Negate: wc.Operator == "NOT IN"}
		}

	case "IS NULL", "IS NOT NULL":
		left, ierr := b.resolveOperand(sc, wc.Column, nil)
		if ierr != nil {
			return nil, ierr
		}
		expr = BoundIsNull{Input: left, Negate: wc.Operator == "IS NOT NULL"}

	case "BETWEEN":
		left, ierr := b.resolveOperand(sc, wc.Column, nil)
		if ierr != nil {
			return nil, ierr
		}
		lt := left.Type()
		low, lerr := b.resolveOperand(sc, wc.BetweenLow, &lt)
		if lerr != nil {
			return nil, lerr
		}
		high, herr := b.resolveOperand(sc, wc.BetweenHigh, &lt)
		if herr != nil {
			return nil, herr
		}
		expr = BoundBetween{Input: left, Low: low, High: high}

	case "LIKE", "NOT LIKE":
		left, ierr := b.resolveOperand(sc, wc.Column, nil)
		if ierr != nil {
			return nil, ierr
		}
		varcharType := types.T(types.VARCHAR)
		pattern, perr := b.resolveOperand(sc, wc.Value, &varcharType)
		if perr != nil {
			return nil, perr
		}
		expr = BoundLike{Input: left, Pattern: pattern, Negate: wc.Operator == "NOT LIKE"}

	default:
		left, ierr := b.resolveOperand(sc, wc.Column, nil)
		if ierr != nil {
			return nil, ierr
		}
		lt := left.Type()
		right, rerr := b.resolveOperand(sc, wc.Value, &lt)
		if rerr != nil {
			return nil, rerr
		}
		operandType, jerr := joinOperandTypes(wc.Operator, left, right)
		if jerr != nil {
			return nil, jerr
		}
		expr = BoundComparison{Op: wc.Operator, Left: left, Right: right, OperandType: operandType}
	}

	if wc.And != nil {
		right, aerr := b.bindWhereClause(sc, wc.And)
		if aerr != nil {
			return nil, aerr
		}
		expr = BoundConjunction{Op: "AND", Left: expr, Right: right}
	} else if wc.Or != nil {
		right, oerr := b.bindWhereClause(sc, wc.Or)
		if oerr != nil {
			return nil, oerr
		}
		expr = BoundConjunction{Op: "OR", Left: expr, Right: right}
	}

	return expr, nil
}
