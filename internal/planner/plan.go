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

/*
Package planner is corvusdb's component C5: it lowers a bound statement
(internal/binder) into a physical operator tree ready for the pull-based
execution loop (C6/C7), per spec §4.5.

Lowering applies, in order: constant folding, predicate pushdown through
Projection and Join, projection pruning, subquery unnesting for
uncorrelated subqueries, and physical join/aggregate algorithm selection
based on cardinality hints.
*/
package planner

import (
	"corvusdb/internal/binder"
	"corvusdb/internal/catalog"
	"corvusdb/internal/parser"
)

// PhysicalPlan is one node of the physical operator tree.
type PhysicalPlan interface {
	planNode()
}

// JoinAlgorithm records the planner's join algorithm choice for JoinPlan
// (spec §4.5 "hash vs. sort-merge"). The executor does not read it: every
// join runs as a nested loop.
type JoinAlgorithm int

const (
	NestedLoopJoin JoinAlgorithm = iota
	HashJoin
)

// GroupAlgorithm records the planner's grouping choice for AggregatePlan
// (spec §4.5 "hash-group vs. sorted-group"). The executor does not read
// it: every aggregate groups by hashing.
type GroupAlgorithm int

const (
	HashGroup GroupAlgorithm = iota
	SortedGroup
)

// ScanPlan iterates a table's visible row groups under the current
// transaction's snapshot (spec §4.7 Scan). Filter is a predicate pushed
// down from an enclosing WHERE/ON that references only this table
// (predicate pushdown). Columns, when non-nil, lists the schema column
// indices actually needed by the rest of the plan (projection pruning);
// nil means every column is needed.
type ScanPlan struct {
	Table   catalog.TableSchema
	Alias   string
	Filter  binder.BoundExpr
	Columns []int
}

func (*ScanPlan) planNode() {}

// FilterPlan applies a residual predicate that pushdown could not place
// on a single Scan (e.g. it references both sides of a Join).
type FilterPlan struct {
	Input     PhysicalPlan
	Predicate binder.BoundExpr
}

func (*FilterPlan) planNode() {}

// ProjectionPlan evaluates the SELECT list once per chunk (spec §4.7
// Projection).
type ProjectionPlan struct {
	Input       PhysicalPlan
	Projections []binder.BoundProjection
}

func (*ProjectionPlan) planNode() {}

// JoinPlan is a two-way join (spec §4.7; algorithm choice spec §4.5).
type JoinPlan struct {
	Left, Right PhysicalPlan
	Type        parser.JoinType
	On          binder.BoundExpr
	Algorithm   JoinAlgorithm
}

func (*JoinPlan) planNode() {}

// SemiJoinPlan implements an unnested IN/EXISTS subquery predicate (spec
// §4.5 "subquery unnesting for uncorrelated scalar subqueries"): rather
// than re-running Sub once per outer row, the executor materializes Sub
// once and probes it, since the Binder never produces a correlated
// reference (no outer-scope column can appear inside Sub).
type SemiJoinPlan struct {
	Input  PhysicalPlan
	Sub    PhysicalPlan
	Kind   string // "IN" or "EXISTS"
	Probe  binder.BoundExpr
	Negate bool
}

func (*SemiJoinPlan) planNode() {}

// AggregatePlan implements GROUP BY / aggregate projections (spec §4.7
// Aggregate).
type AggregatePlan struct {
	Input      PhysicalPlan
	GroupBy    []binder.BoundColumnRef
	Aggregates []binder.BoundAggregate
	Having     binder.BoundExpr
	Algorithm  GroupAlgorithm
}

func (*AggregatePlan) planNode() {}

// OrderPlan is a full sort of the accumulated input (spec §4.7 Order).
type OrderPlan struct {
	Input      PhysicalPlan
	Key        binder.BoundExpr
	Descending bool
}

func (*OrderPlan) planNode() {}

// LimitPlan truncates/skips rows after Order (or directly after the
// producing operator when there is no ORDER BY).
type LimitPlan struct {
	Input  PhysicalPlan
	Limit  int
	Offset int
}

func (*LimitPlan) planNode() {}

// SetOpPlan is UNION/INTERSECT/EXCEPT.
type SetOpPlan struct {
	Op    string
	All   bool
	Left  PhysicalPlan
	Right PhysicalPlan
	Next  *SetOpPlan
}

func (*SetOpPlan) planNode() {}

// InsertPlan is spec §4.7 Insert.
type InsertPlan struct {
	Table      catalog.TableSchema
	TargetCols []int
	Rows       [][]binder.BoundExpr
	OnConflict *binder.BoundOnConflict
}

func (*InsertPlan) planNode() {}

// UpdatePlan produces row_ids from Source then hands them to Storage
// (spec §4.7 Update).
type UpdatePlan struct {
	Table       catalog.TableSchema
	Assignments map[string]binder.BoundExpr
	Source      PhysicalPlan
}

func (*UpdatePlan) planNode() {}

// DeletePlan produces row_ids from Source then hands them to Storage
// (spec §4.7 Delete).
type DeletePlan struct {
	Table  catalog.TableSchema
	Source PhysicalPlan
}

func (*DeletePlan) planNode() {}

// CreateTablePlan, DropTablePlan and AlterRenameColumnPlan carry the DDL
// straight through: the Catalog (C3) does the actual mutation, so there
// is nothing left for the optimizer to rewrite.
type CreateTablePlan struct {
	Schema      catalog.TableSchema
	IfNotExists bool
}

func (*CreateTablePlan) planNode() {}

type DropTablePlan struct {
	TableName string
	IfExists  bool
	Cascade   bool
}

func (*DropTablePlan) planNode() {}

type AlterRenameColumnPlan struct {
	TableName     string
	OldColumnName string
	NewColumnName string
}

func (*AlterRenameColumnPlan) planNode() {}

type BeginPlan struct{}
type CommitPlan struct{}
type RollbackPlan struct{ ToSavepoint string }

func (*BeginPlan) planNode()    {}
func (*CommitPlan) planNode()   {}
func (*RollbackPlan) planNode() {}

// PreparePlan holds the fully-optimized physical tree for a named
// prepared statement, cached by the owning connection (spec §4.5
// "Prepared-statement plans are cached by name").
type PreparePlan struct {
	Name       string
	Inner      PhysicalPlan
	ParamCount int
}

func (*PreparePlan) planNode() {}

// ExecutePlan resolves Name against the connection's PreparedCache; the
// actual Parameter(i)->Constant(v_i) rewrite happens in Substitute, not
// during lowering, since it needs the caller-supplied argument values.
type ExecutePlan struct {
	Name   string
	Params []string
}

func (*ExecutePlan) planNode() {}

type DeallocatePlan struct{ Name string }

func (*DeallocatePlan) planNode() {}
