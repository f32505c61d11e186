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

package corvusdb

import (
	"corvusdb/internal/binder"
	"corvusdb/internal/planner"
	"corvusdb/internal/types"
)

// QueryResult is what Connection.Query/Execute hands back: a column-named
// row set for SELECT/UNION statements, or just an affected-row count for
// DML and DDL. Columns is nil for a statement that produced no row set.
type QueryResult struct {
	Columns []string
	Rows    [][]types.Value

	// RowsAffected is the insert/update/delete count (spec §4.7 Insert,
	// Update, Delete return value), meaningless for a row-set result.
	RowsAffected int64
}

// columnNames walks a physical plan's spine to recover display names for
// its output columns, the same shape of type switch planner.Plan's own
// lowering passes use to walk PhysicalPlan trees.
func columnNames(plan planner.PhysicalPlan) []string {
	switch p := plan.(type) {
	case *planner.ProjectionPlan:
		names := make([]string, len(p.Projections))
		for i, proj := range p.Projections {
			if proj.Alias != "" {
				names[i] = proj.Alias
			} else if col, ok := proj.Expr.(binder.BoundColumnRef); ok && col.Name != "" {
				names[i] = col.Name
			} else {
				names[i] = columnFallbackName(i)
			}
		}
		return names
	case *planner.AggregatePlan:
		names := make([]string, 0, len(p.GroupBy)+len(p.Aggregates))
		for _, g := range p.GroupBy {
			names = append(names, g.Name)
		}
		for _, agg := range p.Aggregates {
			if agg.Alias != "" {
				names = append(names, agg.Alias)
			} else {
				names = append(names, agg.Function)
			}
		}
		return names
	case *planner.ScanPlan:
		return scanColumnNames(p)
	case *planner.FilterPlan:
		return columnNames(p.Input)
	case *planner.OrderPlan:
		return columnNames(p.Input)
	case *planner.LimitPlan:
		return columnNames(p.Input)
	case *planner.SemiJoinPlan:
		return columnNames(p.Input)
	case *planner.SetOpPlan:
		return columnNames(p.Left)
	case *planner.JoinPlan:
		return append(columnNames(p.Left), columnNames(p.Right)...)
	default:
		return nil
	}
}

func scanColumnNames(p *planner.ScanPlan) []string {
	if p.Columns == nil {
		names := make([]string, len(p.Table.Columns))
		for i, c := range p.Table.Columns {
			names[i] = c.Name
		}
		return names
	}
	names := make([]string, len(p.Columns))
	for i, idx := range p.Columns {
		names[i] = p.Table.Columns[idx].Name
	}
	return names
}

func columnFallbackName(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	if i < len(letters) {
		return "col_" + string(letters[i])
	}
	return "col_n"
}
