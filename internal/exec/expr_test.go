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
	"testing"
	"time"

	"corvusdb/internal/binder"
	"corvusdb/internal/types"
	"corvusdb/internal/vector"
)

func testEnv() *Env {
	return &Env{Ctx: &Context{now: time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)}}
}

func intChunk(vals ...int32) *vector.DataChunk {
	c := vector.NewDataChunk([]types.LogicalType{types.T(types.INTEGER)}, len(vals))
	for _, v := range vals {
		if err := c.AppendRow([]types.Value{types.Int32Value(v)}); err != nil {
			panic(err)
		}
	}
	return c
}

func boolAt(t *testing.T, v *vector.Vector, k int) (bool, bool) {
	t.Helper()
	v = v.Normalify()
	if v.IsNull(k) {
		return false, true
	}
	return v.ValueAt(k).Bool(), false
}

func TestExecuteConstantBroadcastsOverChunk(t *testing.T) {
	chunk := intChunk(1, 2, 3)
	v, err := Execute(testEnv(), binder.BoundConstant{Value: types.Int32Value(7)}, chunk)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if v.Count() != 3 {
		t.Fatalf("expected count 3, got %d", v.Count())
	}
	nv := v.Normalify()
	for k := 0; k < 3; k++ {
		if nv.ValueAt(k).Int64() != 7 {
			t.Errorf("row %d: expected 7, got %d", k, nv.ValueAt(k).Int64())
		}
	}
}

func TestExecuteComparison(t *testing.T) {
	chunk := intChunk(1, 5, 10)
	expr := binder.BoundComparison{
		Op:          ">",
		Left:        binder.BoundColumnRef{Index: 0, Typ: types.T(types.INTEGER)},
		Right:       binder.BoundConstant{Value: types.Int32Value(4)},
		OperandType: types.T(types.INTEGER),
	}
	v, err := Execute(testEnv(), expr, chunk)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []bool{false, true, true}
	for k, w := range want {
		got, isNull := boolAt(t, v, k)
		if isNull || got != w {
			t.Errorf("row %d: expected %v, got %v (null=%v)", k, w, got, isNull)
		}
	}
}

func TestExecuteComparisonNullPropagates(t *testing.T) {
	chunk := vector.NewDataChunk([]types.LogicalType{types.T(types.INTEGER)}, 1)
	if err := chunk.AppendRow([]types.Value{types.NullValue(types.T(types.INTEGER))}); err != nil {
		t.Fatal(err)
	}
	expr := binder.BoundComparison{
		Op:          "=",
		Left:        binder.BoundColumnRef{Index: 0, Typ: types.T(types.INTEGER)},
		Right:       binder.BoundConstant{Value: types.Int32Value(1)},
		OperandType: types.T(types.INTEGER),
	}
	v, err := Execute(testEnv(), expr, chunk)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, isNull := boolAt(t, v, 0); !isNull {
		t.Error("expected NULL = 1 to be NULL")
	}
}

func TestExecuteConjunctionThreeValuedLogic(t *testing.T) {
	// false AND NULL = false; true AND NULL = NULL.
	falseExpr := binder.BoundConstant{Value: types.BoolValue(false)}
	trueExpr := binder.BoundConstant{Value: types.BoolValue(true)}
	nullExpr := binder.BoundConstant{Value: types.NullValue(types.T(types.BOOLEAN))}
	chunk := intChunk(1)

	v, err := Execute(testEnv(), binder.BoundConjunction{Op: "AND", Left: falseExpr, Right: nullExpr}, chunk)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got, isNull := boolAt(t, v, 0); isNull || got != false {
		t.Errorf("false AND NULL: got %v null=%v, want false", got, isNull)
	}

	v, err = Execute(testEnv(), binder.BoundConjunction{Op: "AND", Left: trueExpr, Right: nullExpr}, chunk)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, isNull := boolAt(t, v, 0); !isNull {
		t.Error("true AND NULL: expected NULL")
	}
}

func TestExecuteArithmeticDivisionByZero(t *testing.T) {
	chunk := intChunk(10)
	expr := binder.BoundArithmetic{
		Op:     "/",
		Left:   binder.BoundColumnRef{Index: 0, Typ: types.T(types.INTEGER)},
		Right:  binder.BoundConstant{Value: types.Int32Value(0)},
		Result: types.T(types.DOUBLE),
	}
	if _, err := Execute(testEnv(), expr, chunk); err == nil {
		t.Fatal("expected division by zero error")
	}
}

func TestExecuteCastReportsFirstFailingRow(t *testing.T) {
	chunk := vector.NewDataChunk([]types.LogicalType{types.T(types.VARCHAR)}, 3)
	for _, s := range []string{"1", "not-a-number", "3"} {
		if err := chunk.AppendRow([]types.Value{types.StringValue(s)}); err != nil {
			t.Fatal(err)
		}
	}
	expr := binder.BoundCast{
		Input:  binder.BoundColumnRef{Index: 0, Typ: types.T(types.VARCHAR)},
		Target: types.T(types.INTEGER),
	}
	_, err := Execute(testEnv(), expr, chunk)
	if err == nil {
		t.Fatal("expected a cast error for row 1")
	}
}

func TestExecuteBetween(t *testing.T) {
	chunk := intChunk(1, 5, 10)
	expr := binder.BoundBetween{
		Input: binder.BoundColumnRef{Index: 0, Typ: types.T(types.INTEGER)},
		Low:   binder.BoundConstant{Value: types.Int32Value(2)},
		High:  binder.BoundConstant{Value: types.Int32Value(9)},
	}
	v, err := Execute(testEnv(), expr, chunk)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []bool{false, true, false}
	for k, w := range want {
		got, isNull := boolAt(t, v, k)
		if isNull || got != w {
			t.Errorf("row %d: expected %v, got %v", k, w, got)
		}
	}
}

func TestExecuteInListNullSemantics(t *testing.T) {
	// 3 IN (1, NULL) -> NULL (not found, but a NULL was present)
	// 1 IN (1, NULL) -> true (found)
	chunk := intChunk(3, 1)
	list := []binder.BoundExpr{
		binder.BoundConstant{Value: types.Int32Value(1)},
		binder.BoundConstant{Value: types.NullValue(types.T(types.INTEGER))},
	}
	expr := binder.BoundInList{Input: binder.BoundColumnRef{Index: 0, Typ: types.T(types.INTEGER)}, List: list}
	v, err := Execute(testEnv(), expr, chunk)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, isNull := boolAt(t, v, 0); !isNull {
		t.Error("expected 3 IN (1, NULL) to be NULL")
	}
	if got, isNull := boolAt(t, v, 1); isNull || !got {
		t.Error("expected 1 IN (1, NULL) to be true")
	}
}

func TestExecuteLike(t *testing.T) {
	chunk := vector.NewDataChunk([]types.LogicalType{types.T(types.VARCHAR)}, 3)
	for _, s := range []string{"hello", "help", "world"} {
		if err := chunk.AppendRow([]types.Value{types.StringValue(s)}); err != nil {
			t.Fatal(err)
		}
	}
	expr := binder.BoundLike{
		Input:   binder.BoundColumnRef{Index: 0, Typ: types.T(types.VARCHAR)},
		Pattern: binder.BoundConstant{Value: types.StringValue("hel%")},
	}
	v, err := Execute(testEnv(), expr, chunk)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []bool{true, true, false}
	for k, w := range want {
		got, isNull := boolAt(t, v, k)
		if isNull || got != w {
			t.Errorf("row %d: expected %v, got %v", k, w, got)
		}
	}
}

func TestExecuteFunctionUpperAndConcat(t *testing.T) {
	chunk := vector.NewDataChunk([]types.LogicalType{types.T(types.VARCHAR)}, 1)
	if err := chunk.AppendRow([]types.Value{types.StringValue("abc")}); err != nil {
		t.Fatal(err)
	}
	expr := binder.BoundFunction{
		Name:   "UPPER",
		Args:   []binder.BoundExpr{binder.BoundColumnRef{Index: 0, Typ: types.T(types.VARCHAR)}},
		Result: types.T(types.VARCHAR),
	}
	v, err := Execute(testEnv(), expr, chunk)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := v.Normalify().ValueAt(0).String(); got != "ABC" {
		t.Errorf("expected ABC, got %q", got)
	}
}

func TestExecuteFunctionAgeOneArg(t *testing.T) {
	env := testEnv()
	then := env.Ctx.now.AddDate(0, -1, -2).UnixMicro()
	chunk := vector.NewDataChunk([]types.LogicalType{types.T(types.TIMESTAMP)}, 1)
	if err := chunk.AppendRow([]types.Value{types.TimestampValue(then)}); err != nil {
		t.Fatal(err)
	}
	expr := binder.BoundFunction{
		Name:   "AGE",
		Args:   []binder.BoundExpr{binder.BoundColumnRef{Index: 0, Typ: types.T(types.TIMESTAMP)}},
		Result: types.T(types.VARCHAR),
	}
	v, err := Execute(env, expr, chunk)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := v.Normalify().ValueAt(0).String(); got == "" {
		t.Error("expected a non-empty AGE() interval string")
	}
}

func TestExecuteFunctionRandomIsDeterministicPerSeed(t *testing.T) {
	env1 := &Env{Ctx: NewContext(42)}
	env2 := &Env{Ctx: NewContext(42)}
	chunk := intChunk(1)
	expr := binder.BoundFunction{Name: "RANDOM", Result: types.T(types.DOUBLE)}

	v1, err := Execute(env1, expr, chunk)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	v2, err := Execute(env2, expr, chunk)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if v1.Normalify().ValueAt(0).AsFloat() != v2.Normalify().ValueAt(0).AsFloat() {
		t.Error("expected RANDOM() to be reproducible given the same seed")
	}
}

func TestExecuteUnresolvedParameterIsInternalError(t *testing.T) {
	chunk := intChunk(1)
	if _, err := Execute(testEnv(), binder.BoundParameter{Index: 1}, chunk); err == nil {
		t.Fatal("expected an error for an unresolved parameter reaching the executor")
	}
}
