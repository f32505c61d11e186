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

import "corvusdb/internal/binder"

// walkColumns visits every BoundColumnRef reachable from e without
// descending into a nested BoundSubquery's own Query (that query is
// planned, pruned and pushed down independently of its enclosing
// statement).
func walkColumns(e binder.BoundExpr, visit func(binder.BoundColumnRef)) {
	switch n := e.(type) {
	case nil:
		return
	case binder.BoundColumnRef:
		visit(n)
	case binder.BoundComparison:
		walkColumns(n.Left, visit)
		walkColumns(n.Right, visit)
	case binder.BoundConjunction:
		walkColumns(n.Left, visit)
		walkColumns(n.Right, visit)
	case binder.BoundArithmetic:
		walkColumns(n.Left, visit)
		walkColumns(n.Right, visit)
	case binder.BoundCast:
		walkColumns(n.Input, visit)
	case binder.BoundIsNull:
		walkColumns(n.Input, visit)
	case binder.BoundBetween:
		walkColumns(n.Input, visit)
		walkColumns(n.Low, visit)
		walkColumns(n.High, visit)
	case binder.BoundInList:
		walkColumns(n.Input, visit)
		for _, v := range n.List {
			walkColumns(v, visit)
		}
	case binder.BoundLike:
		walkColumns(n.Input, visit)
		walkColumns(n.Pattern, visit)
	case binder.BoundSubquery:
		walkColumns(n.Input, visit)
	case binder.BoundAggregate:
		walkColumns(n.Arg, visit)
	case binder.BoundFunction:
		for _, a := range n.Args {
			walkColumns(a, visit)
		}
	}
}

// referencesOnly reports whether every column ref reachable from e
// belongs to table (by alias/name, matching binder.BoundColumnRef.Table).
func referencesOnly(e binder.BoundExpr, table string) bool {
	only := true
	walkColumns(e, func(c binder.BoundColumnRef) {
		if c.Table != table {
			only = false
		}
	})
	return only
}

// requiredColumns collects the set of column indices from table that any
// of exprs actually reads, used to prune a ScanPlan's materialized
// columns (spec §4.5 "projection pruning").
func requiredColumns(table string, exprs []binder.BoundExpr) []int {
	seen := make(map[int]bool)
	var order []int
	for _, e := range exprs {
		walkColumns(e, func(c binder.BoundColumnRef) {
			if c.Table == table && !seen[c.Index] {
				seen[c.Index] = true
				order = append(order, c.Index)
			}
		})
	}
	return order
}
