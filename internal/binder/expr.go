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
Package binder is corvusdb's component C4: it turns the parser's untyped,
string-based parse tree into a bound tree with every expression typed
against the Catalog, per spec §4.4.

The parser (internal/parser) never carries type information; literal
values, column references, and even "$1" parameter placeholders all
arrive as plain strings. The Binder is where a string first becomes
either a BoundColumnRef (resolved against a TableSchema), a BoundConstant
(a typed types.Value), or a BoundParameter (a type discovered from
surrounding context).
*/
package binder

import (
	cerrors "corvusdb/internal/errors"
	"corvusdb/internal/types"
)

// BoundExpr is a fully typed expression node produced by the Binder.
type BoundExpr interface {
	Type() types.LogicalType
	Foldable() bool
}

// BoundConstant is a literal value, already typed.
type BoundConstant struct {
	Value types.Value
}

func (b BoundConstant) Type() types.LogicalType { return b.Value.Type() }
func (b BoundConstant) Foldable() bool           { return true }

// paramSlot is shared by every BoundParameter referencing the same
// ordinal, so resolving it once (from whichever occurrence first reaches
// a concrete type) resolves every occurrence.
type paramSlot struct {
	typ   types.LogicalType
	known bool
}

// BoundParameter is a "$N" placeholder (spec §4.4 "Parameter typing").
// Its type is only known once some reachability rule has fired; Type()
// is meaningless until then, which is why Binder.finalizeParams runs
// before a bound statement is handed back.
type BoundParameter struct {
	Index int
	slot  *paramSlot
}

func (p BoundParameter) Type() types.LogicalType { return p.slot.typ }
func (p BoundParameter) Foldable() bool           { return false }

// BoundColumnRef resolves a column name against a bound scope (spec §4.4
// input: "parse tree + connection context").
type BoundColumnRef struct {
	Table string
	Name  string
	Index int
	Typ   types.LogicalType
}

func (c BoundColumnRef) Type() types.LogicalType { return c.Typ }
func (c BoundColumnRef) Foldable() bool           { return false }

// BoundComparison is a binary comparison (=, <, >, <=, >=, <>). Its
// operand type is the join of both sides (spec §4.4 "Operator typing").
type BoundComparison struct {
	Op          string
	Left, Right BoundExpr
	OperandType types.LogicalType
}

func (c BoundComparison) Type() types.LogicalType { return types.T(types.BOOLEAN) }
func (c BoundComparison) Foldable() bool {
	return c.Left.Foldable() && c.Right.Foldable()
}

// BoundConjunction is AND/OR of two boolean expressions.
type BoundConjunction struct {
	Op          string
	Left, Right BoundExpr
}

func (c BoundConjunction) Type() types.LogicalType { return types.T(types.BOOLEAN) }
func (c BoundConjunction) Foldable() bool {
	return c.Left.Foldable() && c.Right.Foldable()
}

// BoundArithmetic is a binary arithmetic expression (+, -, *, /, %)
// promoted through the numeric lattice (spec §4.4).
type BoundArithmetic struct {
	Op          string
	Left, Right BoundExpr
	Result      types.LogicalType
}

func (a BoundArithmetic) Type() types.LogicalType { return a.Result }
func (a BoundArithmetic) Foldable() bool {
	return a.Left.Foldable() && a.Right.Foldable()
}

// BoundCast is an explicit CAST, and is itself one of the reachability
// rules for parameter typing (spec §4.4): CAST($1 AS INTEGER) resolves
// $1's type even with no comparison sibling.
type BoundCast struct {
	Input  BoundExpr
	Target types.LogicalType
}

func (c BoundCast) Type() types.LogicalType { return c.Target }
func (c BoundCast) Foldable() bool           { return c.Input.Foldable() }

// BoundIsNull implements IS [NOT] NULL.
type BoundIsNull struct {
	Input  BoundExpr
	Negate bool
}

func (n BoundIsNull) Type() types.LogicalType { return types.T(types.BOOLEAN) }
func (n BoundIsNull) Foldable() bool           { return n.Input.Foldable() }

// BoundBetween implements BETWEEN low AND high.
type BoundBetween struct {
	Input, Low, High BoundExpr
}

func (b BoundBetween) Type() types.LogicalType { return types.T(types.BOOLEAN) }
func (b BoundBetween) Foldable() bool {
	return b.Input.Foldable() && b.Low.Foldable() && b.High.Foldable()
}

// BoundInList implements IN (v1, v2, ...); every sibling in List is a
// parameter-typing reachability point (spec §4.4 "an IN-list sibling").
type BoundInList struct {
	Input  BoundExpr
	List   []BoundExpr
	Negate bool
}

func (n BoundInList) Type() types.LogicalType { return types.T(types.BOOLEAN) }
func (n BoundInList) Foldable() bool {
	if !n.Input.Foldable() {
		return false
	}
	for _, e := range n.List {
		if !e.Foldable() {
			return false
		}
	}
	return true
}

// BoundLike implements LIKE / NOT LIKE.
type BoundLike struct {
	Input, Pattern BoundExpr
	Negate         bool
}

func (l BoundLike) Type() types.LogicalType { return types.T(types.BOOLEAN) }
func (l BoundLike) Foldable() bool           { return l.Input.Foldable() && l.Pattern.Foldable() }

// BoundSubquery wraps an uncorrelated IN/EXISTS subquery. The Planner
// (C5) is responsible for unnesting it (spec §4.5); the Binder only
// establishes that it type-checks to boolean.
type BoundSubquery struct {
	Kind   string // "IN" or "EXISTS"
	Input  BoundExpr
	Query  *BoundSelect
	Negate bool
}

func (s BoundSubquery) Type() types.LogicalType { return types.T(types.BOOLEAN) }
func (s BoundSubquery) Foldable() bool           { return false }

// sideEffectingFunctions never fold (spec §4.4 "Expression foldability":
// "Functions with side effects (e.g., random) are never folded").
var sideEffectingFunctions = map[string]bool{
	"RANDOM": true,
	"NOW":    true,
}

// BoundAggregate is COUNT/SUM/AVG/MIN/MAX/etc. Aggregates are never
// foldable: their value depends on the whole group, not on their
// argument alone.
type BoundAggregate struct {
	Function string
	Arg      BoundExpr // nil for COUNT(*)
	Star     bool
	Alias    string
	Result   types.LogicalType
}

func (a BoundAggregate) Type() types.LogicalType { return a.Result }
func (a BoundAggregate) Foldable() bool           { return false }

// BoundFunction is a scalar function call (spec §4.6 "BoundFunction
// dispatches to its function implementation").
type BoundFunction struct {
	Name   string
	Args   []BoundExpr
	Alias  string
	Result types.LogicalType
}

func (f BoundFunction) Type() types.LogicalType { return f.Result }
func (f BoundFunction) Foldable() bool {
	if sideEffectingFunctions[f.Name] {
		return false
	}
	for _, a := range f.Args {
		if !a.Foldable() {
			return false
		}
	}
	return true
}

// joinOperandTypes applies spec §4.4's "Operator typing" rule and
// rejects the operator when either side is a forbidden TIMESTAMP
// operation.
func joinOperandTypes(op string, left, right BoundExpr) (types.LogicalType, error) {
	lt, rt := left.Type(), right.Type()
	if (lt.Kind == types.TIMESTAMP || rt.Kind == types.TIMESTAMP) && types.ForbiddenOnTimestamp(op) {
		return types.LogicalType{}, cerrors.TypeMismatch("operator %s is not allowed on TIMESTAMP", op)
	}
	joined, err := types.Join(lt, rt)
	if err != nil {
		return types.LogicalType{}, cerrors.TypeMismatch("%v", err)
	}
	return joined, nil
}
