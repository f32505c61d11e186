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

package planner

import (
	"strings"

	"corvusdb/internal/binder"
	"corvusdb/internal/types"
)

// foldExpr applies spec §4.5's first rule, constant folding: "Foldable
// subexpressions are evaluated once at plan time" (spec §4.6). Only the
// node kinds with a cheap, side-effect-free evaluation here are folded;
// BoundFunction/BoundLike/BoundAggregate/BoundSubquery are left for the
// Expression Executor (C6), which owns the full function catalog.
func foldExpr(e binder.BoundExpr) binder.BoundExpr {
	switch n := e.(type) {
	case nil:
		return nil
	case binder.BoundComparison:
		n.Left = foldExpr(n.Left)
		n.Right = foldExpr(n.Right)
		if lv, ok := asConstant(n.Left); ok {
			if rv, ok := asConstant(n.Right); ok {
				if folded, ok := foldComparison(n.Op, lv, rv); ok {
					return folded
				}
			}
		}
		return n

	case binder.BoundConjunction:
		n.Left = foldExpr(n.Left)
		n.Right = foldExpr(n.Right)
		if lv, ok := asConstant(n.Left); ok && !lv.Value.Null {
			// short-circuit: TRUE OR x = TRUE, FALSE AND x = FALSE
			if n.Op == "OR" && lv.Value.Bool() {
				return lv
			}
			if n.Op == "AND" && !lv.Value.Bool() {
				return lv
			}
			if rv, ok := asConstant(n.Right); ok && !rv.Value.Null {
				if n.Op == "AND" {
					return binder.BoundConstant{Value: types.BoolValue(lv.Value.Bool() && rv.Value.Bool())}
				}
				return binder.BoundConstant{Value: types.BoolValue(lv.Value.Bool() || rv.Value.Bool())}
			}
		}
		return n

	case binder.BoundArithmetic:
		n.Left = foldExpr(n.Left)
		n.Right = foldExpr(n.Right)
		if lv, ok := asConstant(n.Left); ok {
			if rv, ok := asConstant(n.Right); ok {
				if folded, ok := foldArithmetic(n.Op, lv, rv, n.Result); ok {
					return folded
				}
			}
		}
		return n

	case binder.BoundCast:
		n.Input = foldExpr(n.Input)
		if v, ok := asConstant(n.Input); ok {
			if cast, err := types.TryCast(v.Value, n.Target); err == nil {
				return binder.BoundConstant{Value: cast}
			}
		}
		return n

	case binder.BoundIsNull:
		n.Input = foldExpr(n.Input)
		if v, ok := asConstant(n.Input); ok {
			isNull := v.Value.Null
			if n.Negate {
				isNull = !isNull
			}
			return binder.BoundConstant{Value: types.BoolValue(isNull)}
		}
		return n

	case binder.BoundBetween:
		n.Input = foldExpr(n.Input)
		n.Low = foldExpr(n.Low)
		n.High = foldExpr(n.High)
		iv, iok := asConstant(n.Input)
		lv, lok := asConstant(n.Low)
		hv, hok := asConstant(n.High)
		if iok && lok && hok {
			ge, ok1 := foldComparison(">=", iv, lv)
			le, ok2 := foldComparison("<=", iv, hv)
			if ok1 && ok2 {
				return binder.BoundConstant{Value: types.BoolValue(ge.Value.Bool() && le.Value.Bool())}
			}
		}
		return n

	case binder.BoundInList:
		n.Input = foldExpr(n.Input)
		for i := range n.List {
			n.List[i] = foldExpr(n.List[i])
		}
		return n

	default:
		return e
	}
}

func asConstant(e binder.BoundExpr) (binder.BoundConstant, bool) {
	c, ok := e.(binder.BoundConstant)
	return c, ok
}

// foldComparison evaluates a comparison of two already-constant operands.
// The operator set is the one the parser produces for a simple predicate:
// "=", "<", ">", "<=", ">=" (spec §6 grammar).
func foldComparison(op string, l, r binder.BoundConstant) (binder.BoundConstant, bool) {
	if l.Value.Null || r.Value.Null {
		return binder.BoundConstant{Value: types.NullValue(types.T(types.BOOLEAN))}, true
	}
	cmp, ok := compareConst(l.Value, r.Value)
	if !ok {
		return binder.BoundConstant{}, false
	}
	var result bool
	switch op {
	case "=":
		result = cmp == 0
	case "<":
		result = cmp < 0
	case ">":
		result = cmp > 0
	case "<=":
		result = cmp <= 0
	case ">=":
		result = cmp >= 0
	default:
		return binder.BoundConstant{}, false
	}
	return binder.BoundConstant{Value: types.BoolValue(result)}, true
}

// compareConst orders two non-NULL Values of comparable kinds, returning
// -1/0/1 and false if the kinds are incomparable at fold time (the
// executor's runtime comparator, not this optimizer shortcut, is the
// authority for every case; folding simply declines when unsure).
func compareConst(l, r types.Value) (int, bool) {
	switch {
	case l.Type().Kind == types.VARCHAR || r.Type().Kind == types.VARCHAR:
		if l.Type().Kind != types.VARCHAR || r.Type().Kind != types.VARCHAR {
			return 0, false
		}
		return strings.Compare(l.String(), r.String()), true
	case l.Type().Kind.IsNumeric() && r.Type().Kind.IsNumeric():
		lf, rf := l.AsFloat(), r.AsFloat()
		switch {
		case lf < rf:
			return -1, true
		case lf > rf:
			return 1, true
		default:
			return 0, true
		}
	case l.Type().Kind == types.BOOLEAN && r.Type().Kind == types.BOOLEAN:
		switch {
		case l.Bool() == r.Bool():
			return 0, true
		case !l.Bool():
			return -1, true
		default:
			return 1, true
		}
	case (l.Type().Kind == types.DATE || l.Type().Kind == types.TIMESTAMP) &&
		(r.Type().Kind == types.DATE || r.Type().Kind == types.TIMESTAMP):
		li, ri := l.Int64(), r.Int64()
		switch {
		case li < ri:
			return -1, true
		case li > ri:
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}

// foldArithmetic evaluates a binary arithmetic expression of two constant
// operands, widening through float64 and casting the result to Result
// (the type joinOperandTypes already computed at bind time).
func foldArithmetic(op string, l, r binder.BoundConstant, result types.LogicalType) (binder.BoundConstant, bool) {
	if l.Value.Null || r.Value.Null {
		return binder.BoundConstant{Value: types.NullValue(result)}, true
	}
	lf, rf := l.Value.AsFloat(), r.Value.AsFloat()
	var f float64
	switch op {
	case "+":
		f = lf + rf
	case "-":
		f = lf - rf
	case "*":
		f = lf * rf
	case "/":
		if rf == 0 {
			return binder.BoundConstant{}, false // let the executor raise DivisionByZero
		}
		f = lf / rf
	case "%":
		if rf == 0 {
			return binder.BoundConstant{}, false
		}
		f = float64(int64(lf) % int64(rf))
	default:
		return binder.BoundConstant{}, false
	}
	cast, err := types.TryCast(types.Float64Value(f), result)
	if err != nil {
		return binder.BoundConstant{}, false
	}
	return binder.BoundConstant{Value: cast}, true
}
