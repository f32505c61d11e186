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
	"path/filepath"
	"testing"

	"corvusdb/internal/binder"
	"corvusdb/internal/catalog"
	"corvusdb/internal/parser"
	"corvusdb/internal/planner"
	"corvusdb/internal/storage"
	"corvusdb/internal/txn"
	"corvusdb/internal/types"
)

func peopleSchema() catalog.TableSchema {
	return catalog.TableSchema{
		Name: "people",
		Columns: []catalog.ColumnDefinition{
			{Name: "id", Type: types.T(types.INTEGER), NotNull: true},
			{Name: "name", Type: types.T(types.VARCHAR)},
			{Name: "age", Type: types.T(types.INTEGER)},
		},
	}
}

// testDB wires a fresh Manager+Transaction Manager the same way
// internal/storage's own tests do, plus one people table.
func testDB(t *testing.T) (*storage.Manager, *txn.Manager, catalog.TableSchema) {
	t.Helper()
	wal, err := storage.OpenWAL(filepath.Join(t.TempDir(), "test.wal"))
	if err != nil {
		t.Fatalf("OpenWAL: %v", err)
	}
	sm := storage.NewManager(wal, filepath.Join(t.TempDir(), "checkpoint.snap"))
	tm := txn.NewManager(sm)
	schema := peopleSchema()
	sm.CreateTable(schema)
	return sm, tm, schema
}

func seedPeople(t *testing.T, sm *storage.Manager, tm *txn.Manager, schema catalog.TableSchema, rows [][]types.Value) {
	t.Helper()
	w := tm.BeginWrite()
	for _, r := range rows {
		if _, err := sm.Insert(w, schema.Name, r); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	if err := tm.Commit(w); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	sm.StampCommit(w.ID, w.CommitID)
}

func drainAll(t *testing.T, op Operator) [][]types.Value {
	t.Helper()
	var out [][]types.Value
	for {
		chunk, err := op.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if chunk == nil {
			return out
		}
		for k := 0; k < chunk.Count(); k++ {
			out = append(out, chunk.Row(k))
		}
	}
}

func TestScanOperatorReadsCommittedRows(t *testing.T) {
	sm, tm, schema := testDB(t)
	seedPeople(t, sm, tm, schema, [][]types.Value{
		{types.Int32Value(1), types.StringValue("alice"), types.Int32Value(30)},
		{types.Int32Value(2), types.StringValue("bob"), types.Int32Value(25)},
	})

	env := &Env{Txn: tm.Begin(), Storage: sm, Ctx: NewContext(1)}
	op, err := Build(&planner.ScanPlan{Table: schema}, env)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	rows := drainAll(t, op)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
}

func TestScanOperatorPushesDownFilter(t *testing.T) {
	sm, tm, schema := testDB(t)
	seedPeople(t, sm, tm, schema, [][]types.Value{
		{types.Int32Value(1), types.StringValue("alice"), types.Int32Value(30)},
		{types.Int32Value(2), types.StringValue("bob"), types.Int32Value(25)},
	})

	env := &Env{Txn: tm.Begin(), Storage: sm, Ctx: NewContext(1)}
	filter := binder.BoundComparison{
		Op:          ">=",
		Left:        binder.BoundColumnRef{Index: 2, Typ: types.T(types.INTEGER)},
		Right:       binder.BoundConstant{Value: types.Int32Value(30)},
		OperandType: types.T(types.INTEGER),
	}
	op, err := Build(&planner.ScanPlan{Table: schema, Filter: filter}, env)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	rows := drainAll(t, op)
	if len(rows) != 1 || rows[0][1].String() != "alice" {
		t.Fatalf("expected only alice to survive the age>=30 pushdown, got %+v", rows)
	}
}

func TestProjectionOperator(t *testing.T) {
	sm, tm, schema := testDB(t)
	seedPeople(t, sm, tm, schema, [][]types.Value{
		{types.Int32Value(1), types.StringValue("alice"), types.Int32Value(30)},
	})

	env := &Env{Txn: tm.Begin(), Storage: sm, Ctx: NewContext(1)}
	proj := &planner.ProjectionPlan{
		Input: &planner.ScanPlan{Table: schema},
		Projections: []binder.BoundProjection{
			{Expr: binder.BoundColumnRef{Index: 1, Typ: types.T(types.VARCHAR)}, Alias: "name"},
		},
	}
	op, err := Build(proj, env)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	rows := drainAll(t, op)
	if len(rows) != 1 || len(rows[0]) != 1 || rows[0][0].String() != "alice" {
		t.Fatalf("unexpected projection result: %+v", rows)
	}
}

func TestJoinOperatorInnerAndLeft(t *testing.T) {
	sm, tm, schema := testDB(t)
	seedPeople(t, sm, tm, schema, [][]types.Value{
		{types.Int32Value(1), types.StringValue("alice"), types.Int32Value(30)},
		{types.Int32Value(2), types.StringValue("bob"), types.Int32Value(25)},
	})

	deptSchema := catalog.TableSchema{
		Name: "depts",
		Columns: []catalog.ColumnDefinition{
			{Name: "person_id", Type: types.T(types.INTEGER)},
			{Name: "dept", Type: types.T(types.VARCHAR)},
		},
	}
	sm.CreateTable(deptSchema)
	w := tm.BeginWrite()
	sm.Insert(w, "depts", []types.Value{types.Int32Value(1), types.StringValue("eng")})
	tm.Commit(w)
	sm.StampCommit(w.ID, w.CommitID)

	env := &Env{Txn: tm.Begin(), Storage: sm, Ctx: NewContext(1)}
	on := binder.BoundComparison{
		Op:          "=",
		Left:        binder.BoundColumnRef{Index: 0, Typ: types.T(types.INTEGER)},
		Right:       binder.BoundColumnRef{Index: 3, Typ: types.T(types.INTEGER)},
		OperandType: types.T(types.INTEGER),
	}
	joinPlan := &planner.JoinPlan{
		Left:  &planner.ScanPlan{Table: schema},
		Right: &planner.ScanPlan{Table: deptSchema},
		Type:  parser.JoinTypeLeft,
		On:    on,
	}
	op, err := Build(joinPlan, env)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	rows := drainAll(t, op)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows (alice matched, bob unmatched), got %d: %+v", len(rows), rows)
	}
	var sawBobNullDept, sawAliceEng bool
	for _, r := range rows {
		if r[1].String() == "bob" && r[4].Null {
			sawBobNullDept = true
		}
		if r[1].String() == "alice" && r[4].String() == "eng" {
			sawAliceEng = true
		}
	}
	if !sawBobNullDept || !sawAliceEng {
		t.Fatalf("unexpected LEFT JOIN result: %+v", rows)
	}
}

func TestAggregateOperatorGroupByWithNullGroup(t *testing.T) {
	sm, tm, schema := testDB(t)
	seedPeople(t, sm, tm, schema, [][]types.Value{
		{types.Int32Value(1), types.StringValue("alice"), types.Int32Value(30)},
		{types.Int32Value(2), types.StringValue("bob"), types.Int32Value(30)},
		{types.Int32Value(3), types.StringValue("carol"), types.NullValue(types.T(types.INTEGER))},
		{types.Int32Value(4), types.StringValue("dave"), types.NullValue(types.T(types.INTEGER))},
	})

	env := &Env{Txn: tm.Begin(), Storage: sm, Ctx: NewContext(1)}
	aggPlan := &planner.AggregatePlan{
		Input:   &planner.ScanPlan{Table: schema},
		GroupBy: []binder.BoundColumnRef{{Index: 2, Typ: types.T(types.INTEGER)}},
		Aggregates: []binder.BoundAggregate{
			{Function: "COUNT", Star: true, Result: types.T(types.BIGINT)},
		},
	}
	op, err := Build(aggPlan, env)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	rows := drainAll(t, op)
	if len(rows) != 2 {
		t.Fatalf("expected 2 groups (age=30, age=NULL), got %d: %+v", len(rows), rows)
	}
	for _, r := range rows {
		if r[1].Int64() != 2 {
			t.Errorf("expected each group to have count 2, got %+v", r)
		}
	}
}

func TestOrderOperatorNullsFirstAscending(t *testing.T) {
	sm, tm, schema := testDB(t)
	seedPeople(t, sm, tm, schema, [][]types.Value{
		{types.Int32Value(1), types.StringValue("alice"), types.Int32Value(30)},
		{types.Int32Value(2), types.StringValue("bob"), types.NullValue(types.T(types.INTEGER))},
		{types.Int32Value(3), types.StringValue("carol"), types.Int32Value(20)},
	})

	env := &Env{Txn: tm.Begin(), Storage: sm, Ctx: NewContext(1)}
	orderPlan := &planner.OrderPlan{
		Input: &planner.ScanPlan{Table: schema},
		Key:   binder.BoundColumnRef{Index: 2, Typ: types.T(types.INTEGER)},
	}
	op, err := Build(orderPlan, env)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	rows := drainAll(t, op)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if !rows[0][2].Null {
		t.Errorf("expected NULL age to sort first ascending, got %+v", rows[0])
	}
	if rows[1][2].Int64() != 20 || rows[2][2].Int64() != 30 {
		t.Errorf("expected 20 then 30 after the NULL, got %+v", rows)
	}
}

func TestLimitOperatorOffsetAndLimit(t *testing.T) {
	sm, tm, schema := testDB(t)
	seedPeople(t, sm, tm, schema, [][]types.Value{
		{types.Int32Value(1), types.StringValue("a"), types.Int32Value(1)},
		{types.Int32Value(2), types.StringValue("b"), types.Int32Value(2)},
		{types.Int32Value(3), types.StringValue("c"), types.Int32Value(3)},
		{types.Int32Value(4), types.StringValue("d"), types.Int32Value(4)},
	})

	env := &Env{Txn: tm.Begin(), Storage: sm, Ctx: NewContext(1)}
	limitPlan := &planner.LimitPlan{
		Input:  &planner.ScanPlan{Table: schema},
		Limit:  2,
		Offset: 1,
	}
	op, err := Build(limitPlan, env)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	rows := drainAll(t, op)
	if len(rows) != 2 || rows[0][1].String() != "b" || rows[1][1].String() != "c" {
		t.Fatalf("expected rows b,c from OFFSET 1 LIMIT 2, got %+v", rows)
	}
}

func TestExecuteMutationInsertUpdateDelete(t *testing.T) {
	sm, tm, schema := testDB(t)

	w := tm.BeginWrite()
	env := &Env{Txn: w, Storage: sm, Ctx: NewContext(1)}
	insertPlan := &planner.InsertPlan{
		Table:      schema,
		TargetCols: []int{0, 1, 2},
		Rows: [][]binder.BoundExpr{
			{
				binder.BoundConstant{Value: types.Int32Value(1)},
				binder.BoundConstant{Value: types.StringValue("alice")},
				binder.BoundConstant{Value: types.Int32Value(30)},
			},
		},
	}
	n, err := ExecuteMutation(insertPlan, env)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row inserted, got %d", n)
	}
	if err := tm.Commit(w); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	sm.StampCommit(w.ID, w.CommitID)

	w2 := tm.BeginWrite()
	env2 := &Env{Txn: w2, Storage: sm, Ctx: NewContext(1)}
	updatePlan := &planner.UpdatePlan{
		Table: schema,
		Assignments: map[string]binder.BoundExpr{
			"age": binder.BoundConstant{Value: types.Int32Value(31)},
		},
		Source: &planner.ScanPlan{Table: schema},
	}
	n, err = ExecuteMutation(updatePlan, env2)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row updated, got %d", n)
	}
	if err := tm.Commit(w2); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	sm.StampCommit(w2.ID, w2.CommitID)

	reader := tm.Begin()
	cur, err := sm.NewCursor(reader, "people")
	if err != nil {
		t.Fatalf("NewCursor: %v", err)
	}
	_, row, ok := cur.Next()
	if !ok {
		t.Fatal("expected updated row to be visible")
	}
	if row[2].Int64() != 31 {
		t.Fatalf("expected age 31 after update, got %d", row[2].Int64())
	}

	w3 := tm.BeginWrite()
	env3 := &Env{Txn: w3, Storage: sm, Ctx: NewContext(1)}
	deletePlan := &planner.DeletePlan{Table: schema, Source: &planner.ScanPlan{Table: schema}}
	n, err = ExecuteMutation(deletePlan, env3)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row deleted, got %d", n)
	}
	if err := tm.Commit(w3); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	sm.StampCommit(w3.ID, w3.CommitID)

	reader2 := tm.Begin()
	cur2, err := sm.NewCursor(reader2, "people")
	if err != nil {
		t.Fatalf("NewCursor: %v", err)
	}
	if _, _, ok := cur2.Next(); ok {
		t.Fatal("expected the row to be gone after delete")
	}
}

func TestExecuteMutationUpdateAppliesMultipleAssignments(t *testing.T) {
	// One UPDATE with two assignments, each computed from the row's current
	// value of its own column (age = age + 1, name = name): both must land.
	sm, tm, schema := testDB(t)
	w := tm.BeginWrite()
	sm.Insert(w, "people", []types.Value{types.Int32Value(1), types.StringValue("alice"), types.Int32Value(30)})
	tm.Commit(w)
	sm.StampCommit(w.ID, w.CommitID)

	w2 := tm.BeginWrite()
	env := &Env{Txn: w2, Storage: sm, Ctx: NewContext(1)}
	updatePlan := &planner.UpdatePlan{
		Table: schema,
		Assignments: map[string]binder.BoundExpr{
			"age": binder.BoundArithmetic{
				Op:     "+",
				Left:   binder.BoundColumnRef{Index: 2, Typ: types.T(types.INTEGER)},
				Right:  binder.BoundConstant{Value: types.Int32Value(1)},
				Result: types.T(types.INTEGER),
			},
			"name": binder.BoundColumnRef{Index: 1, Typ: types.T(types.VARCHAR)},
		},
		Source: &planner.ScanPlan{Table: schema},
	}
	if _, err := ExecuteMutation(updatePlan, env); err != nil {
		t.Fatalf("update: %v", err)
	}
	tm.Commit(w2)
	sm.StampCommit(w2.ID, w2.CommitID)

	reader := tm.Begin()
	cur, _ := sm.NewCursor(reader, "people")
	_, row, ok := cur.Next()
	if !ok {
		t.Fatal("expected updated row")
	}
	if row[2].Int64() != 31 || row[1].String() != "alice" {
		t.Fatalf("expected age=31 name=alice, got %+v", row)
	}
}
