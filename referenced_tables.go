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

import "corvusdb/internal/planner"

// referencedTables walks plan's spine collecting every table name a
// PREPARE'd statement touches, so the Catalog's dependency graph can
// refuse (or CASCADE through) a DROP TABLE while the statement is live.
func referencedTables(plan planner.PhysicalPlan) []string {
	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	var walk func(planner.PhysicalPlan)
	walk = func(p planner.PhysicalPlan) {
		switch n := p.(type) {
		case *planner.ScanPlan:
			add(n.Table.Name)
		case *planner.FilterPlan:
			walk(n.Input)
		case *planner.ProjectionPlan:
			walk(n.Input)
		case *planner.JoinPlan:
			walk(n.Left)
			walk(n.Right)
		case *planner.SemiJoinPlan:
			walk(n.Input)
			walk(n.Sub)
		case *planner.AggregatePlan:
			walk(n.Input)
		case *planner.OrderPlan:
			walk(n.Input)
		case *planner.LimitPlan:
			walk(n.Input)
		case *planner.SetOpPlan:
			walk(n.Left)
			walk(n.Right)
			if n.Next != nil {
				walk(n.Next)
			}
		case *planner.InsertPlan:
			add(n.Table.Name)
		case *planner.UpdatePlan:
			add(n.Table.Name)
			walk(n.Source)
		case *planner.DeletePlan:
			add(n.Table.Name)
			walk(n.Source)
		}
	}
	walk(plan)
	return out
}
