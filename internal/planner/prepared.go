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
	"sync"

	"corvusdb/internal/binder"
	cerrors "corvusdb/internal/errors"
	"corvusdb/internal/types"
)

// Cache holds prepared-statement plans by name for one connection (spec
// §4.5 "Prepared-statement plans are cached by name in the owning
// connection"). Each connection owns exactly one Cache.
type Cache struct {
	mu    sync.Mutex
	plans map[string]*PreparePlan
}

// NewCache creates an empty prepared-statement cache.
func NewCache() *Cache {
	return &Cache{plans: make(map[string]*PreparePlan)}
}

// Store registers p under its own Name, replacing any existing plan of
// the same name (re-PREPARE of a name is a silent overwrite, matching
// PREPARE's usual semantics).
func (c *Cache) Store(p *PreparePlan) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plans[p.Name] = p
}

// Lookup resolves name to its cached PreparePlan.
func (c *Cache) Lookup(name string) (*PreparePlan, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.plans[name]
	return p, ok
}

// Deallocate drops name from the cache (DEALLOCATE).
func (c *Cache) Deallocate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.plans, name)
}

// Substitute rewrites every Parameter(i) node reachable from prepared's
// physical tree into Constant(v_i), without re-binding or re-planning
// (spec §4.5 "parameter substitution rewrites Parameter(i) nodes to
// Constant(v_i) without re-binding"). args holds the raw EXECUTE
// argument text in $1.. order; each is cast to the parameter's bound
// type (discovered during Bind, carried on the BoundParameter node
// itself).
//
// Substitute never mutates prepared.Inner: it builds fresh copies of
// every node on the path to a parameter, since prepared.Inner is shared
// across every future EXECUTE of the same name.
func Substitute(prepared *PreparePlan, args []string) (PhysicalPlan, error) {
	if len(args) != prepared.ParamCount {
		return nil, cerrors.TypeMismatch("EXECUTE %s expects %d parameter(s), got %d", prepared.Name, prepared.ParamCount, len(args))
	}
	var firstErr error
	out := substitutePlan(prepared.Inner, args, &firstErr)
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func substituteValue(idx int, args []string, target types.LogicalType) (types.Value, error) {
	if idx < 1 || idx > len(args) {
		return types.Value{}, cerrors.OutOfRange("", idx, "parameter index")
	}
	return types.TryCast(types.StringValue(args[idx-1]), target)
}

// substituteExpr rewrites every BoundParameter reachable from e into a
// BoundConstant. A cast failure (malformed EXECUTE argument text) is
// recorded in errOut rather than returned directly, since it surfaces
// deep inside a tree walk whose callers (substitutePlan) otherwise have
// no error to propagate; Substitute checks errOut once the whole plan
// has been rebuilt.
func substituteExpr(e binder.BoundExpr, args []string, errOut *error) binder.BoundExpr {
	switch n := e.(type) {
	case nil:
		return nil
	case binder.BoundParameter:
		v, err := substituteValue(n.Index, args, n.Type())
		if err != nil {
			if *errOut == nil {
				*errOut = err
			}
			return binder.BoundConstant{Value: types.NullValue(n.Type())}
		}
		return binder.BoundConstant{Value: v}
	case binder.BoundComparison:
		n.Left = substituteExpr(n.Left, args, errOut)
		n.Right = substituteExpr(n.Right, args, errOut)
		return n
	case binder.BoundConjunction:
		n.Left = substituteExpr(n.Left, args, errOut)
		n.Right = substituteExpr(n.Right, args, errOut)
		return n
	case binder.BoundArithmetic:
		n.Left = substituteExpr(n.Left, args, errOut)
		n.Right = substituteExpr(n.Right, args, errOut)
		return n
	case binder.BoundCast:
		n.Input = substituteExpr(n.Input, args, errOut)
		return n
	case binder.BoundIsNull:
		n.Input = substituteExpr(n.Input, args, errOut)
		return n
	case binder.BoundBetween:
		n.Input = substituteExpr(n.Input, args, errOut)
		n.Low = substituteExpr(n.Low, args, errOut)
		n.High = substituteExpr(n.High, args, errOut)
		return n
	case binder.BoundInList:
		n.Input = substituteExpr(n.Input, args, errOut)
		newList := make([]binder.BoundExpr, len(n.List))
		for i, v := range n.List {
			newList[i] = substituteExpr(v, args, errOut)
		}
		n.List = newList
		return n
	case binder.BoundLike:
		n.Input = substituteExpr(n.Input, args, errOut)
		n.Pattern = substituteExpr(n.Pattern, args, errOut)
		return n
	case binder.BoundAggregate:
		n.Arg = substituteExpr(n.Arg, args, errOut)
		return n
	case binder.BoundFunction:
		newArgs := make([]binder.BoundExpr, len(n.Args))
		for i, a := range n.Args {
			newArgs[i] = substituteExpr(a, args, errOut)
		}
		n.Args = newArgs
		return n
	default:
		return e
	}
}

func substituteProjections(projections []binder.BoundProjection, args []string, errOut *error) []binder.BoundProjection {
	out := make([]binder.BoundProjection, len(projections))
	for i, p := range projections {
		out[i] = binder.BoundProjection{Expr: substituteExpr(p.Expr, args, errOut), Alias: p.Alias}
	}
	return out
}

// substitutePlan rebuilds plan's spine with every embedded expression
// passed through substituteExpr. Node kinds that carry no BoundExpr
// (DDL, transaction control, PREPARE/EXECUTE/DEALLOCATE) are returned
// unchanged: a prepared statement is always DML or a query (spec §4.6
// "PREPARE rejects statements whose own analysis is meta"), so those
// kinds never actually occur under a PreparePlan, but Substitute still
// has to pass them through harmlessly when recursion reaches a leaf.
func substitutePlan(p PhysicalPlan, args []string, errOut *error) PhysicalPlan {
	switch n := p.(type) {
	case nil:
		return nil
	case *ScanPlan:
		cp := *n
		cp.Filter = substituteExpr(n.Filter, args, errOut)
		return &cp
	case *FilterPlan:
		cp := *n
		cp.Input = substitutePlan(n.Input, args, errOut)
		cp.Predicate = substituteExpr(n.Predicate, args, errOut)
		return &cp
	case *ProjectionPlan:
		cp := *n
		cp.Input = substitutePlan(n.Input, args, errOut)
		cp.Projections = substituteProjections(n.Projections, args, errOut)
		return &cp
	case *JoinPlan:
		cp := *n
		cp.Left = substitutePlan(n.Left, args, errOut)
		cp.Right = substitutePlan(n.Right, args, errOut)
		cp.On = substituteExpr(n.On, args, errOut)
		return &cp
	case *SemiJoinPlan:
		cp := *n
		cp.Input = substitutePlan(n.Input, args, errOut)
		cp.Sub = substitutePlan(n.Sub, args, errOut)
		cp.Probe = substituteExpr(n.Probe, args, errOut)
		return &cp
	case *AggregatePlan:
		cp := *n
		cp.Input = substitutePlan(n.Input, args, errOut)
		newAggs := make([]binder.BoundAggregate, len(n.Aggregates))
		for i, a := range n.Aggregates {
			a.Arg = substituteExpr(a.Arg, args, errOut)
			newAggs[i] = a
		}
		cp.Aggregates = newAggs
		cp.Having = substituteExpr(n.Having, args, errOut)
		return &cp
	case *OrderPlan:
		cp := *n
		cp.Input = substitutePlan(n.Input, args, errOut)
		cp.Key = substituteExpr(n.Key, args, errOut)
		return &cp
	case *LimitPlan:
		cp := *n
		cp.Input = substitutePlan(n.Input, args, errOut)
		return &cp
	case *SetOpPlan:
		cp := *n
		cp.Left = substitutePlan(n.Left, args, errOut)
		cp.Right = substitutePlan(n.Right, args, errOut)
		if n.Next != nil {
			cp.Next = substitutePlan(n.Next, args, errOut).(*SetOpPlan)
		}
		return &cp
	case *InsertPlan:
		cp := *n
		newRows := make([][]binder.BoundExpr, len(n.Rows))
		for i, row := range n.Rows {
			newRow := make([]binder.BoundExpr, len(row))
			for j, e := range row {
				newRow[j] = substituteExpr(e, args, errOut)
			}
			newRows[i] = newRow
		}
		cp.Rows = newRows
		if n.OnConflict != nil {
			oc := *n.OnConflict
			if n.OnConflict.Updates != nil {
				updates := make(map[string]binder.BoundExpr, len(n.OnConflict.Updates))
				for k, v := range n.OnConflict.Updates {
					updates[k] = substituteExpr(v, args, errOut)
				}
				oc.Updates = updates
			}
			cp.OnConflict = &oc
		}
		return &cp
	case *UpdatePlan:
		cp := *n
		cp.Source = substitutePlan(n.Source, args, errOut)
		assignments := make(map[string]binder.BoundExpr, len(n.Assignments))
		for k, v := range n.Assignments {
			assignments[k] = substituteExpr(v, args, errOut)
		}
		cp.Assignments = assignments
		return &cp
	case *DeletePlan:
		cp := *n
		cp.Source = substitutePlan(n.Source, args, errOut)
		return &cp
	default:
		return p
	}
}
