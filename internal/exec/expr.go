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

package exec

import (
	"regexp"
	"strings"

	"corvusdb/internal/binder"
	cerrors "corvusdb/internal/errors"
	"corvusdb/internal/types"
	"corvusdb/internal/vector"
)

// Execute evaluates expr against chunk's rows, producing one output
// Vector (spec §4.6 "Execute(expr, input_chunk) -> result_vector"). Every
// case materializes its operand vectors with Normalify before combining
// them: two Vectors sharing a chunk can carry independent selections
// (e.g. one column referenced directly, another the output of a nested
// CAST), so aligning both to a dense buffer is what makes "read physical
// slot k from vector A and vector B" safe.
func Execute(env *Env, expr binder.BoundExpr, chunk *vector.DataChunk) (*vector.Vector, error) {
	switch e := expr.(type) {
	case binder.BoundConstant:
		return vector.NewConstant(e.Value, chunk.Count()), nil

	case binder.BoundColumnRef:
		return chunk.Columns[e.Index], nil

	case binder.BoundParameter:
		return nil, cerrors.Internal("exec: unresolved parameter $%d reached the executor", e.Index)

	case binder.BoundComparison:
		return execComparison(env, e, chunk)

	case binder.BoundConjunction:
		return execConjunction(env, e, chunk)

	case binder.BoundArithmetic:
		return execArithmetic(env, e, chunk)

	case binder.BoundCast:
		return execCast(env, e, chunk)

	case binder.BoundIsNull:
		return execIsNull(env, e, chunk)

	case binder.BoundBetween:
		return execBetween(env, e, chunk)

	case binder.BoundInList:
		return execInList(env, e, chunk)

	case binder.BoundLike:
		return execLike(env, e, chunk)

	case binder.BoundFunction:
		return execFunction(env, e, chunk)

	case binder.BoundAggregate:
		return nil, cerrors.Internal("exec: aggregate %s reached the scalar executor; the Aggregate operator evaluates it directly", e.Function)

	case binder.BoundSubquery:
		return nil, cerrors.Internal("exec: an un-unnested subquery reached the scalar executor")

	default:
		return nil, cerrors.Internal("exec: unhandled expression type %T", expr)
	}
}

// compareVals orders two same-kind values: string comparison for
// PSTRING_REF, numeric comparison (through AsFloat, which already
// widens every integer physical type) otherwise.
func compareVals(a, b types.Value) int {
	if a.Physical == types.PSTRING_REF {
		as, bs := a.String(), b.String()
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	}
	af, bf := a.AsFloat(), b.AsFloat()
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	default:
		return 0
	}
}

func newBoolVector(count int) *vector.Vector {
	v := vector.Initialize(types.T(types.BOOLEAN), count)
	v.SetCount(count)
	return v
}

func execComparison(env *Env, e binder.BoundComparison, chunk *vector.DataChunk) (*vector.Vector, error) {
	lv, err := Execute(env, e.Left, chunk)
	if err != nil {
		return nil, err
	}
	rv, err := Execute(env, e.Right, chunk)
	if err != nil {
		return nil, err
	}
	lv, rv = lv.Normalify(), rv.Normalify()

	out := newBoolVector(chunk.Count())
	for k := 0; k < chunk.Count(); k++ {
		if lv.IsNull(k) || rv.IsNull(k) {
			out.SetNull(k)
			continue
		}
		la, err := types.TryCast(lv.ValueAt(k), e.OperandType)
		if err != nil {
			return nil, err
		}
		ra, err := types.TryCast(rv.ValueAt(k), e.OperandType)
		if err != nil {
			return nil, err
		}
		cmp := compareVals(la, ra)
		var result bool
		switch e.Op {
		case "=":
			result = cmp == 0
		case "<>", "!=":
			result = cmp != 0
		case "<":
			result = cmp < 0
		case "<=":
			result = cmp <= 0
		case ">":
			result = cmp > 0
		case ">=":
			result = cmp >= 0
		default:
			return nil, cerrors.Internal("exec: unknown comparison operator %q", e.Op)
		}
		out.SetValue(k, types.BoolValue(result))
	}
	return out, nil
}

func execConjunction(env *Env, e binder.BoundConjunction, chunk *vector.DataChunk) (*vector.Vector, error) {
	lv, err := Execute(env, e.Left, chunk)
	if err != nil {
		return nil, err
	}
	rv, err := Execute(env, e.Right, chunk)
	if err != nil {
		return nil, err
	}
	lv, rv = lv.Normalify(), rv.Normalify()

	out := newBoolVector(chunk.Count())
	isAnd := strings.EqualFold(e.Op, "AND")
	for k := 0; k < chunk.Count(); k++ {
		lNull, rNull := lv.IsNull(k), rv.IsNull(k)
		var lb, rb bool
		if !lNull {
			lb = lv.ValueAt(k).Bool()
		}
		if !rNull {
			rb = rv.ValueAt(k).Bool()
		}
		if isAnd {
			switch {
			case (!lNull && !lb) || (!rNull && !rb):
				out.SetValue(k, types.BoolValue(false))
			case lNull || rNull:
				out.SetNull(k)
			default:
				out.SetValue(k, types.BoolValue(true))
			}
		} else {
			switch {
			case (!lNull && lb) || (!rNull && rb):
				out.SetValue(k, types.BoolValue(true))
			case lNull || rNull:
				out.SetNull(k)
			default:
				out.SetValue(k, types.BoolValue(false))
			}
		}
	}
	return out, nil
}

func numericValue(t types.LogicalType, f float64) types.Value {
	v, err := types.TryCast(types.Float64Value(f), t)
	if err != nil {
		return types.Float64Value(f)
	}
	return v
}

func execArithmetic(env *Env, e binder.BoundArithmetic, chunk *vector.DataChunk) (*vector.Vector, error) {
	lv, err := Execute(env, e.Left, chunk)
	if err != nil {
		return nil, err
	}
	rv, err := Execute(env, e.Right, chunk)
	if err != nil {
		return nil, err
	}
	lv, rv = lv.Normalify(), rv.Normalify()

	out := vector.Initialize(e.Result, chunk.Count())
	out.SetCount(chunk.Count())
	for k := 0; k < chunk.Count(); k++ {
		if lv.IsNull(k) || rv.IsNull(k) {
			out.SetNull(k)
			continue
		}
		a, b := lv.ValueAt(k).AsFloat(), rv.ValueAt(k).AsFloat()
		var r float64
		switch e.Op {
		case "+":
			r = a + b
		case "-":
			r = a - b
		case "*":
			r = a * b
		case "/":
			if b == 0 {
				return nil, cerrors.Internal("division by zero").WithRow(k)
			}
			r = a / b
		case "%":
			if b == 0 {
				return nil, cerrors.Internal("division by zero").WithRow(k)
			}
			r = float64(int64(a) % int64(b))
		default:
			return nil, cerrors.Internal("exec: unknown arithmetic operator %q", e.Op)
		}
		out.SetValue(k, numericValue(e.Result, r))
	}
	return out, nil
}

func execCast(env *Env, e binder.BoundCast, chunk *vector.DataChunk) (*vector.Vector, error) {
	in, err := Execute(env, e.Input, chunk)
	if err != nil {
		return nil, err
	}
	in = in.Normalify()

	out := vector.Initialize(e.Target, chunk.Count())
	out.SetCount(chunk.Count())
	var firstErr error
	for k := 0; k < chunk.Count(); k++ {
		if in.IsNull(k) {
			out.SetNull(k)
			continue
		}
		cast, err := types.TryCast(in.ValueAt(k), e.Target)
		if err != nil {
			if firstErr == nil {
				if ce, ok := err.(*cerrors.Error); ok {
					firstErr = ce.WithRow(k)
				} else {
					firstErr = err
				}
			}
			continue
		}
		out.SetValue(k, cast)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func execIsNull(env *Env, e binder.BoundIsNull, chunk *vector.DataChunk) (*vector.Vector, error) {
	in, err := Execute(env, e.Input, chunk)
	if err != nil {
		return nil, err
	}
	in = in.Normalify()

	out := newBoolVector(chunk.Count())
	for k := 0; k < chunk.Count(); k++ {
		isNull := in.IsNull(k)
		result := isNull
		if e.Negate {
			result = !isNull
		}
		out.SetValue(k, types.BoolValue(result))
	}
	return out, nil
}

func execBetween(env *Env, e binder.BoundBetween, chunk *vector.DataChunk) (*vector.Vector, error) {
	in, err := Execute(env, e.Input, chunk)
	if err != nil {
		return nil, err
	}
	lo, err := Execute(env, e.Low, chunk)
	if err != nil {
		return nil, err
	}
	hi, err := Execute(env, e.High, chunk)
	if err != nil {
		return nil, err
	}
	in, lo, hi = in.Normalify(), lo.Normalify(), hi.Normalify()

	out := newBoolVector(chunk.Count())
	for k := 0; k < chunk.Count(); k++ {
		if in.IsNull(k) || lo.IsNull(k) || hi.IsNull(k) {
			out.SetNull(k)
			continue
		}
		v := in.ValueAt(k)
		loV, err := types.TryCast(lo.ValueAt(k), v.Type())
		if err != nil {
			return nil, err
		}
		hiV, err := types.TryCast(hi.ValueAt(k), v.Type())
		if err != nil {
			return nil, err
		}
		result := compareVals(v, loV) >= 0 && compareVals(v, hiV) <= 0
		out.SetValue(k, types.BoolValue(result))
	}
	return out, nil
}

func execInList(env *Env, e binder.BoundInList, chunk *vector.DataChunk) (*vector.Vector, error) {
	in, err := Execute(env, e.Input, chunk)
	if err != nil {
		return nil, err
	}
	in = in.Normalify()

	list := make([]*vector.Vector, len(e.List))
	for i, item := range e.List {
		v, err := Execute(env, item, chunk)
		if err != nil {
			return nil, err
		}
		list[i] = v.Normalify()
	}

	out := newBoolVector(chunk.Count())
	for k := 0; k < chunk.Count(); k++ {
		if in.IsNull(k) {
			out.SetNull(k)
			continue
		}
		v := in.ValueAt(k)
		found := false
		sawNull := false
		for _, item := range list {
			if item.IsNull(k) {
				sawNull = true
				continue
			}
			cast, err := types.TryCast(item.ValueAt(k), v.Type())
			if err != nil {
				return nil, err
			}
			if compareVals(v, cast) == 0 {
				found = true
				break
			}
		}
		result := found
		if e.Negate {
			result = !found
		}
		switch {
		case found:
			out.SetValue(k, types.BoolValue(result))
		case sawNull:
			out.SetNull(k)
		default:
			out.SetValue(k, types.BoolValue(result))
		}
	}
	return out, nil
}

// likeToRegex is grounded on the plain SQL LIKE wildcard set (% and _,
// with backslash escaping neither supported nor needed by the grammar
// this binds from).
func likeToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString("(?s)^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexQuoteRune(r))
		}
	}
	b.WriteString("$")
	return b.String()
}

func regexQuoteRune(r rune) string {
	switch r {
	case '.', '+', '*', '?', '(', ')', '|', '[', ']', '{', '}', '^', '$', '\\':
		return "\\" + string(r)
	default:
		return string(r)
	}
}

func execLike(env *Env, e binder.BoundLike, chunk *vector.DataChunk) (*vector.Vector, error) {
	in, err := Execute(env, e.Input, chunk)
	if err != nil {
		return nil, err
	}
	pat, err := Execute(env, e.Pattern, chunk)
	if err != nil {
		return nil, err
	}
	in, pat = in.Normalify(), pat.Normalify()

	out := newBoolVector(chunk.Count())
	reCache := make(map[string]*regexp.Regexp)
	for k := 0; k < chunk.Count(); k++ {
		if in.IsNull(k) || pat.IsNull(k) {
			out.SetNull(k)
			continue
		}
		p := pat.ValueAt(k).String()
		re, ok := reCache[p]
		if !ok {
			var err error
			re, err = regexp.Compile(likeToRegex(p))
			if err != nil {
				return nil, cerrors.Internal("exec: invalid LIKE pattern %q", p)
			}
			reCache[p] = re
		}
		result := re.MatchString(in.ValueAt(k).String())
		if e.Negate {
			result = !result
		}
		out.SetValue(k, types.BoolValue(result))
	}
	return out, nil
}
