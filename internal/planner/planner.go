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
	"corvusdb/internal/binder"
	"corvusdb/internal/catalog"
	cerrors "corvusdb/internal/errors"
)

// hashJoinThreshold is the row-count hint above which the Planner prefers
// a HashJoin over a NestedLoopJoin, given an equality ON clause (spec
// §4.5 "cardinality hints"). Below it, nested loop's lower constant
// factor and lack of a build-side hash table win.
const hashJoinThreshold = 128

// Plan lowers a bound statement into a physical operator tree.
func Plan(cat *catalog.Catalog, stmt binder.BoundStatement) (PhysicalPlan, error) {
	switch s := stmt.(type) {
	case *binder.BoundCreateTable:
		return &CreateTablePlan{Schema: s.Schema, IfNotExists: s.IfNotExists}, nil
	case *binder.BoundDropTable:
		return &DropTablePlan{TableName: s.TableName, IfExists: s.IfExists, Cascade: s.Cascade}, nil
	case *binder.BoundAlterRenameColumn:
		return &AlterRenameColumnPlan{TableName: s.TableName, OldColumnName: s.OldColumnName, NewColumnName: s.NewColumnName}, nil
	case *binder.BoundInsert:
		return planInsert(s), nil
	case *binder.BoundUpdate:
		return planUpdate(s), nil
	case *binder.BoundDelete:
		return planDelete(s), nil
	case *binder.BoundSelect:
		return planSelect(s)
	case *binder.BoundSetOp:
		return planSetOp(s)
	case *binder.BoundBegin:
		return &BeginPlan{}, nil
	case *binder.BoundCommit:
		return &CommitPlan{}, nil
	case *binder.BoundRollback:
		return &RollbackPlan{ToSavepoint: s.ToSavepoint}, nil
	case *binder.BoundPrepare:
		inner, err := Plan(cat, s.Inner)
		if err != nil {
			return nil, err
		}
		return &PreparePlan{Name: s.Name, Inner: inner, ParamCount: s.ParamCount}, nil
	case *binder.BoundExecute:
		return &ExecutePlan{Name: s.Name, Params: s.Params}, nil
	case *binder.BoundDeallocate:
		return &DeallocatePlan{Name: s.Name}, nil
	default:
		return nil, cerrors.Internal("planner: unsupported bound statement %T", stmt)
	}
}

func planInsert(s *binder.BoundInsert) PhysicalPlan {
	rows := make([][]binder.BoundExpr, len(s.Rows))
	for i, row := range s.Rows {
		folded := make([]binder.BoundExpr, len(row))
		for j, e := range row {
			folded[j] = foldExpr(e)
		}
		rows[i] = folded
	}
	return &InsertPlan{Table: s.Table, TargetCols: s.TargetCols, Rows: rows, OnConflict: s.OnConflict}
}

func planUpdate(s *binder.BoundUpdate) PhysicalPlan {
	assignments := make(map[string]binder.BoundExpr, len(s.Assignments))
	for k, v := range s.Assignments {
		assignments[k] = foldExpr(v)
	}
	where := foldExpr(s.Where)
	scan := &ScanPlan{Table: s.Table, Alias: s.Table.Name, Filter: where}
	return &UpdatePlan{Table: s.Table, Assignments: assignments, Source: scan}
}

func planDelete(s *binder.BoundDelete) PhysicalPlan {
	where := foldExpr(s.Where)
	scan := &ScanPlan{Table: s.Table, Alias: s.Table.Name, Filter: where}
	return &DeletePlan{Table: s.Table, Source: scan}
}

func planSetOp(s *binder.BoundSetOp) (PhysicalPlan, error) {
	left, err := planSelect(s.Left)
	if err != nil {
		return nil, err
	}
	right, err := planSelect(s.Right)
	if err != nil {
		return nil, err
	}
	op := &SetOpPlan{Op: s.Op, All: s.All, Left: left, Right: right}
	if s.Next != nil {
		next, err := planSetOp(s.Next)
		if err != nil {
			return nil, err
		}
		nextOp, ok := next.(*SetOpPlan)
		if !ok {
			return nil, cerrors.Internal("planner: chained set op did not lower to a SetOpPlan")
		}
		op.Next = nextOp
	}
	return op, nil
}

// planSelect lowers one SELECT applying, in spec §4.5's order: constant
// folding, predicate pushdown through Join, projection pruning, subquery
// unnesting, then join/aggregate algorithm selection.
func planSelect(s *binder.BoundSelect) (PhysicalPlan, error) {
	if s.FromSubquery != nil {
		return planDerivedSelect(s)
	}

	where, subqueries := extractSubqueries(foldExpr(s.Where))
	having := foldExpr(s.Having)
	for i := range s.Projections {
		s.Projections[i].Expr = foldExpr(s.Projections[i].Expr)
	}

	baseAlias := s.FromAlias
	if baseAlias == "" {
		baseAlias = s.FromTable.Name
	}

	var plan PhysicalPlan
	if s.Join != nil {
		joinAlias := s.Join.Table.Name

		var baseFilter, joinFilter, residual binder.BoundExpr
		splitConjuncts(where, func(pred binder.BoundExpr) {
			switch {
			case referencesOnly(pred, baseAlias):
				baseFilter = conjoin(baseFilter, pred)
			case referencesOnly(pred, joinAlias):
				joinFilter = conjoin(joinFilter, pred)
			default:
				residual = conjoin(residual, pred)
			}
		})

		exprsForPruning := append(collectSelectExprs(s), s.Join.On)
		baseScan := &ScanPlan{
			Table:   s.FromTable,
			Alias:   baseAlias,
			Filter:  baseFilter,
			Columns: requiredColumns(baseAlias, exprsForPruning),
		}
		joinScan := &ScanPlan{
			Table:   s.Join.Table,
			Alias:   joinAlias,
			Filter:  joinFilter,
			Columns: requiredColumns(joinAlias, exprsForPruning),
		}

		algorithm := NestedLoopJoin
		if isEquiJoin(s.Join.On) {
			hint := s.FromTable.RowCountHint
			if s.Join.Table.RowCountHint > hint {
				hint = s.Join.Table.RowCountHint
			}
			if hint >= hashJoinThreshold {
				algorithm = HashJoin
			}
		}

		plan = &JoinPlan{Left: baseScan, Right: joinScan, Type: s.Join.Type, On: s.Join.On, Algorithm: algorithm}
		if residual != nil {
			plan = &FilterPlan{Input: plan, Predicate: residual}
		}
	} else {
		exprsForPruning := collectSelectExprs(s)
		plan = &ScanPlan{
			Table:   s.FromTable,
			Alias:   baseAlias,
			Filter:  where,
			Columns: requiredColumns(baseAlias, exprsForPruning),
		}
	}

	for _, sub := range subqueries {
		var err error
		plan, err = applySemiJoin(plan, sub)
		if err != nil {
			return nil, err
		}
	}

	if len(s.GroupBy) > 0 || hasAggregate(s.Projections) {
		aggregates := collectAggregates(s.Projections)
		algorithm := HashGroup
		if s.OrderBy != nil && groupByMatchesOrder(s.GroupBy, s.OrderBy) {
			algorithm = SortedGroup
		}
		plan = &AggregatePlan{Input: plan, GroupBy: s.GroupBy, Aggregates: aggregates, Having: having, Algorithm: algorithm}
	}

	if s.OrderBy != nil {
		plan = &OrderPlan{Input: plan, Key: s.OrderBy.Expr, Descending: s.OrderBy.Descending}
	}

	if s.Limit > 0 || s.Offset > 0 {
		plan = &LimitPlan{Input: plan, Limit: s.Limit, Offset: s.Offset}
	}

	plan = &ProjectionPlan{Input: plan, Projections: s.Projections}
	return plan, nil
}

// planDerivedSelect lowers a SELECT whose FROM clause is itself a bound
// subquery: the inner query is planned independently (it prunes and
// pushes down on its own base tables), and the outer query's filter and
// projection sit above it unchanged, since the derived table has no
// catalog row groups of its own for the outer Scan to push into.
func planDerivedSelect(s *binder.BoundSelect) (PhysicalPlan, error) {
	inner, err := planSelect(s.FromSubquery)
	if err != nil {
		return nil, err
	}
	where, subqueries := extractSubqueries(foldExpr(s.Where))
	having := foldExpr(s.Having)
	for i := range s.Projections {
		s.Projections[i].Expr = foldExpr(s.Projections[i].Expr)
	}

	plan := inner
	if where != nil {
		plan = &FilterPlan{Input: plan, Predicate: where}
	}
	for _, sub := range subqueries {
		plan, err = applySemiJoin(plan, sub)
		if err != nil {
			return nil, err
		}
	}

	if len(s.GroupBy) > 0 || hasAggregate(s.Projections) {
		aggregates := collectAggregates(s.Projections)
		plan = &AggregatePlan{Input: plan, GroupBy: s.GroupBy, Aggregates: aggregates, Having: having, Algorithm: HashGroup}
	}
	if s.OrderBy != nil {
		plan = &OrderPlan{Input: plan, Key: s.OrderBy.Expr, Descending: s.OrderBy.Descending}
	}
	if s.Limit > 0 || s.Offset > 0 {
		plan = &LimitPlan{Input: plan, Limit: s.Limit, Offset: s.Offset}
	}
	plan = &ProjectionPlan{Input: plan, Projections: s.Projections}
	return plan, nil
}

// collectSelectExprs gathers every expression a projection-pruning pass
// must treat as "used": the SELECT list, WHERE, GROUP BY, HAVING and
// ORDER BY.
func collectSelectExprs(s *binder.BoundSelect) []binder.BoundExpr {
	var out []binder.BoundExpr
	for _, p := range s.Projections {
		out = append(out, p.Expr)
	}
	out = append(out, s.Where, s.Having)
	for _, g := range s.GroupBy {
		out = append(out, g)
	}
	if s.OrderBy != nil {
		out = append(out, s.OrderBy.Expr)
	}
	return out
}

// splitConjuncts flattens a WHERE tree's top-level AND chain, invoking
// visit once per leaf conjunct; a top-level OR (or any non-AND
// expression) is treated as a single, unsplittable conjunct — pushing an
// OR down would require duplicating it across branches, which is a
// further optimization this Planner does not attempt.
func splitConjuncts(e binder.BoundExpr, visit func(binder.BoundExpr)) {
	if e == nil {
		return
	}
	if c, ok := e.(binder.BoundConjunction); ok && c.Op == "AND" {
		splitConjuncts(c.Left, visit)
		splitConjuncts(c.Right, visit)
		return
	}
	visit(e)
}

func conjoin(existing, add binder.BoundExpr) binder.BoundExpr {
	if existing == nil {
		return add
	}
	return binder.BoundConjunction{Op: "AND", Left: existing, Right: add}
}

// isEquiJoin reports whether on is a single "=" comparison, the shape a
// hash join can exploit.
func isEquiJoin(on binder.BoundExpr) bool {
	c, ok := on.(binder.BoundComparison)
	return ok && c.Op == "="
}

func hasAggregate(projections []binder.BoundProjection) bool {
	for _, p := range projections {
		if _, ok := p.Expr.(binder.BoundAggregate); ok {
			return true
		}
	}
	return false
}

func collectAggregates(projections []binder.BoundProjection) []binder.BoundAggregate {
	var out []binder.BoundAggregate
	for _, p := range projections {
		if agg, ok := p.Expr.(binder.BoundAggregate); ok {
			out = append(out, agg)
		}
	}
	return out
}

// groupByMatchesOrder reports whether the ORDER BY key is the same
// column as (one of) the GROUP BY keys; the answer chooses the
// AggregatePlan's Algorithm. The executor does not read Algorithm: every
// Aggregate operator groups by hashing, whatever the input order.
func groupByMatchesOrder(groupBy []binder.BoundColumnRef, orderBy *binder.BoundOrderBy) bool {
	col, ok := orderBy.Expr.(binder.BoundColumnRef)
	if !ok {
		return false
	}
	for _, g := range groupBy {
		if g.Table == col.Table && g.Index == col.Index {
			return true
		}
	}
	return false
}

// extractSubqueries splits where's top-level AND chain into the
// conjuncts a Scan/Filter predicate can evaluate directly and the
// BoundSubquery conjuncts, which the Planner unnests into SemiJoinPlan
// nodes instead (spec §4.5 "subquery unnesting").
func extractSubqueries(where binder.BoundExpr) (binder.BoundExpr, []binder.BoundSubquery) {
	var remaining binder.BoundExpr
	var subs []binder.BoundSubquery
	splitConjuncts(where, func(e binder.BoundExpr) {
		if s, ok := e.(binder.BoundSubquery); ok {
			subs = append(subs, s)
			return
		}
		remaining = conjoin(remaining, e)
	})
	return remaining, subs
}

// applySemiJoin materializes sub's inner query once and stacks a
// SemiJoinPlan over plan to probe it, rather than leaving the subquery
// embedded as an expression the executor would have to re-run per outer
// row (spec §4.5 "subquery unnesting for uncorrelated scalar
// subqueries" — see SemiJoinPlan's doc comment for why every subquery
// produced by this Binder is uncorrelated by construction).
func applySemiJoin(plan PhysicalPlan, sub binder.BoundSubquery) (PhysicalPlan, error) {
	inner, err := planSelect(sub.Query)
	if err != nil {
		return nil, err
	}
	return &SemiJoinPlan{Input: plan, Sub: inner, Kind: sub.Kind, Probe: sub.Input, Negate: sub.Negate}, nil
}
