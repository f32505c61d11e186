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
	"math"
	"strings"

	"corvusdb/internal/binder"
	cerrors "corvusdb/internal/errors"
	"corvusdb/internal/types"
	"corvusdb/internal/vector"
)

// scalarFn computes one row's natural result for a function call. It
// receives the already-Normalify'd argument vectors and the logical row
// k, and returns a NULL Value (rather than an error) for ordinary
// argument-is-NULL propagation; an error return aborts the whole batch.
type scalarFn func(env *Env, args []*vector.Vector, k int) (types.Value, error)

// functionTable is corvusdb's scalar function catalog, grounded in the
// exact name set the binder already resolves a result type for
// (internal/binder/select.go's scalarFunctionResultType). Execute casts
// every function's natural result to the BoundFunction's Result type, so
// a function here need only compute its conventional answer — it never
// has to second-guess what the binder decided the column's type is.
var functionTable = map[string]scalarFn{
	"UPPER":        fnUpper,
	"LOWER":        fnLower,
	"TRIM":         fnTrim,
	"CONCAT":       fnConcat,
	"SUBSTRING":    fnSubstring,
	"REPLACE":      fnReplace,
	"LEFT":         fnLeft,
	"RIGHT":        fnRight,
	"LENGTH":       fnLength,
	"ABS":          fnAbs,
	"ROUND":        fnRound,
	"CEIL":         fnCeil,
	"FLOOR":        fnFloor,
	"MOD":          fnMod,
	"POWER":        fnPower,
	"SQRT":         fnSqrt,
	"NOW":          fnNow,
	"CURRENT_DATE": fnCurrentDate,
	"CURRENT_TIME": fnNow,
	"COALESCE":     fnCoalesce,
	"NULLIF":       fnNullIf,
	"IFNULL":       fnIfNull,
	"NVL":          fnIfNull,
	"ISNULL":       fnIsNullFn,
	"AGE":          fnAge,
	"RANDOM":       fnRandom,
}

func execFunction(env *Env, e binder.BoundFunction, chunk *vector.DataChunk) (*vector.Vector, error) {
	impl, ok := functionTable[strings.ToUpper(e.Name)]
	if !ok {
		return nil, cerrors.Internal("exec: unknown function %q", e.Name)
	}

	args := make([]*vector.Vector, len(e.Args))
	for i, a := range e.Args {
		v, err := Execute(env, a, chunk)
		if err != nil {
			return nil, err
		}
		args[i] = v.Normalify()
	}

	out := vector.Initialize(e.Result, chunk.Count())
	out.SetCount(chunk.Count())
	for k := 0; k < chunk.Count(); k++ {
		val, err := impl(env, args, k)
		if err != nil {
			if ce, ok := err.(*cerrors.Error); ok {
				return nil, ce.WithRow(k)
			}
			return nil, err
		}
		if val.Null {
			out.SetNull(k)
			continue
		}
		cast, err := types.TryCast(val, e.Result)
		if err != nil {
			return nil, err
		}
		out.SetValue(k, cast)
	}
	return out, nil
}

// anyNull reports whether any of args is NULL at row k. Every function
// below except the NULL-testing family (COALESCE, NULLIF, IFNULL, ISNULL)
// and CONCAT, which skips NULL arguments, propagates NULL this way rather
// than seeing a NULL argument at all.
func anyNull(args []*vector.Vector, k int) bool {
	for _, a := range args {
		if a.IsNull(k) {
			return true
		}
	}
	return false
}

func nullValue() types.Value { return types.NullValue(types.T(types.VARCHAR)) }

func fnUpper(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	if anyNull(args, k) {
		return nullValue(), nil
	}
	return types.StringValue(strings.ToUpper(args[0].ValueAt(k).String())), nil
}

func fnLower(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	if anyNull(args, k) {
		return nullValue(), nil
	}
	return types.StringValue(strings.ToLower(args[0].ValueAt(k).String())), nil
}

func fnTrim(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	if anyNull(args, k) {
		return nullValue(), nil
	}
	return types.StringValue(strings.TrimSpace(args[0].ValueAt(k).String())), nil
}

func fnConcat(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	var b strings.Builder
	for _, a := range args {
		if a.IsNull(k) {
			continue
		}
		b.WriteString(a.ValueAt(k).String())
	}
	return types.StringValue(b.String()), nil
}

func fnSubstring(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	if anyNull(args, k) || len(args) < 2 {
		return nullValue(), nil
	}
	s := args[0].ValueAt(k).String()
	start := int(args[1].ValueAt(k).AsFloat())
	length := len(s) - start + 1
	if len(args) > 2 {
		length = int(args[2].ValueAt(k).AsFloat())
	}
	return types.StringValue(substr(s, start, length)), nil
}

// substr implements 1-based, SQL-standard SUBSTRING(str, start, length)
// index clamping: a start before the first character truncates the
// requested length rather than erroring.
func substr(s string, start, length int) string {
	if length < 0 {
		length = 0
	}
	end := start + length - 1
	if start < 1 {
		start = 1
	}
	if end < start {
		return ""
	}
	if start > len(s) {
		return ""
	}
	if end > len(s) {
		end = len(s)
	}
	return s[start-1 : end]
}

func fnReplace(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	if anyNull(args, k) || len(args) < 3 {
		return nullValue(), nil
	}
	s := args[0].ValueAt(k).String()
	old := args[1].ValueAt(k).String()
	new := args[2].ValueAt(k).String()
	return types.StringValue(strings.ReplaceAll(s, old, new)), nil
}

func fnLeft(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	if anyNull(args, k) || len(args) < 2 {
		return nullValue(), nil
	}
	s := args[0].ValueAt(k).String()
	n := int(args[1].ValueAt(k).AsFloat())
	if n < 0 {
		n = 0
	}
	if n > len(s) {
		n = len(s)
	}
	return types.StringValue(s[:n]), nil
}

func fnRight(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	if anyNull(args, k) || len(args) < 2 {
		return nullValue(), nil
	}
	s := args[0].ValueAt(k).String()
	n := int(args[1].ValueAt(k).AsFloat())
	if n < 0 {
		n = 0
	}
	if n > len(s) {
		n = len(s)
	}
	return types.StringValue(s[len(s)-n:]), nil
}

func fnLength(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	if anyNull(args, k) {
		return nullValue(), nil
	}
	return types.Int64Value(int64(len(args[0].ValueAt(k).String()))), nil
}

func fnAbs(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	if anyNull(args, k) {
		return nullValue(), nil
	}
	return types.Float64Value(math.Abs(args[0].ValueAt(k).AsFloat())), nil
}

func fnRound(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	if anyNull(args, k) {
		return nullValue(), nil
	}
	x := args[0].ValueAt(k).AsFloat()
	places := 0
	if len(args) > 1 {
		places = int(args[1].ValueAt(k).AsFloat())
	}
	scale := math.Pow(10, float64(places))
	return types.Float64Value(math.Round(x*scale) / scale), nil
}

func fnCeil(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	if anyNull(args, k) {
		return nullValue(), nil
	}
	return types.Float64Value(math.Ceil(args[0].ValueAt(k).AsFloat())), nil
}

func fnFloor(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	if anyNull(args, k) {
		return nullValue(), nil
	}
	return types.Float64Value(math.Floor(args[0].ValueAt(k).AsFloat())), nil
}

func fnMod(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	if anyNull(args, k) || len(args) < 2 {
		return nullValue(), nil
	}
	a, b := args[0].ValueAt(k).AsFloat(), args[1].ValueAt(k).AsFloat()
	if b == 0 {
		return types.Value{}, cerrors.Internal("division by zero")
	}
	return types.Float64Value(math.Mod(a, b)), nil
}

func fnPower(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	if anyNull(args, k) || len(args) < 2 {
		return nullValue(), nil
	}
	return types.Float64Value(math.Pow(args[0].ValueAt(k).AsFloat(), args[1].ValueAt(k).AsFloat())), nil
}

func fnSqrt(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	if anyNull(args, k) {
		return nullValue(), nil
	}
	return types.Float64Value(math.Sqrt(args[0].ValueAt(k).AsFloat())), nil
}

func fnNow(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	return types.TimestampValue(env.Ctx.now.UnixMicro()), nil
}

func fnCurrentDate(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	return types.DateValue(int32(env.Ctx.now.Unix() / 86400)), nil
}

func fnCoalesce(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	for _, a := range args {
		if !a.IsNull(k) {
			return a.ValueAt(k), nil
		}
	}
	return nullValue(), nil
}

func fnNullIf(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	if len(args) < 2 {
		return nullValue(), nil
	}
	if args[0].IsNull(k) {
		return nullValue(), nil
	}
	a := args[0].ValueAt(k)
	if !args[1].IsNull(k) {
		b, err := types.TryCast(args[1].ValueAt(k), a.Type())
		if err == nil && compareVals(a, b) == 0 {
			return nullValue(), nil
		}
	}
	return a, nil
}

func fnIfNull(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	if len(args) < 2 {
		return nullValue(), nil
	}
	if !args[0].IsNull(k) {
		return args[0].ValueAt(k), nil
	}
	return args[1].ValueAt(k), nil
}

func fnIsNullFn(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	if len(args) == 0 {
		return types.BoolValue(true), nil
	}
	return types.BoolValue(args[0].IsNull(k)), nil
}

func fnAge(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	var a, b int64
	switch len(args) {
	case 1:
		if args[0].IsNull(k) {
			return nullValue(), nil
		}
		a = env.Ctx.now.UnixMicro()
		b = args[0].ValueAt(k).Int64()
	case 2:
		if anyNull(args, k) {
			return nullValue(), nil
		}
		a = args[0].ValueAt(k).Int64()
		b = args[1].ValueAt(k).Int64()
	default:
		return nullValue(), nil
	}
	return types.StringValue(types.Age(a, b).String()), nil
}

// fnRandom draws from the per-execution PRNG seeded in the Context
// (spec §4.6 "bind_data ... a seeded PRNG"), not a fresh source per
// call, so a prepared statement's randomness is reproducible run to run
// when it is re-seeded deliberately (e.g. in tests).
func fnRandom(env *Env, args []*vector.Vector, k int) (types.Value, error) {
	return types.Float64Value(env.Ctx.rand.Float64()), nil
}
