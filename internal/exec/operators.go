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
	"sort"
	"strings"

	"corvusdb/internal/binder"
	cerrors "corvusdb/internal/errors"
	"corvusdb/internal/parser"
	"corvusdb/internal/planner"
	"corvusdb/internal/storage"
	"corvusdb/internal/types"
	"corvusdb/internal/vector"
)

// Operator is a pull-based physical operator (spec §4.7 "GetChunk(state)
// -> Option<DataChunk>"). Next returns (nil, nil) at end of input.
type Operator interface {
	Next() (*vector.DataChunk, error)
}

// Build constructs a fresh Operator tree from plan. It must be called
// once per statement execution — never cached across calls against the
// same PreparePlan — since the returned tree owns mutable cursors and
// hash tables that a concurrent or later execution must not share.
func Build(plan planner.PhysicalPlan, env *Env) (Operator, error) {
	switch p := plan.(type) {
	case *planner.ScanPlan:
		return newScanOperator(env, p)
	case *planner.FilterPlan:
		child, err := Build(p.Input, env)
		if err != nil {
			return nil, err
		}
		return &filterOperator{env: env, input: child, predicate: p.Predicate}, nil
	case *planner.ProjectionPlan:
		child, err := Build(p.Input, env)
		if err != nil {
			return nil, err
		}
		return &projectionOperator{env: env, input: child, projections: p.Projections}, nil
	case *planner.JoinPlan:
		left, err := Build(p.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := Build(p.Right, env)
		if err != nil {
			return nil, err
		}
		return &joinOperator{env: env, left: left, right: right, joinType: p.Type, on: p.On}, nil
	case *planner.SemiJoinPlan:
		input, err := Build(p.Input, env)
		if err != nil {
			return nil, err
		}
		sub, err := Build(p.Sub, env)
		if err != nil {
			return nil, err
		}
		return &semiJoinOperator{env: env, input: input, sub: sub, kind: p.Kind, probe: p.Probe, negate: p.Negate}, nil
	case *planner.AggregatePlan:
		child, err := Build(p.Input, env)
		if err != nil {
			return nil, err
		}
		return &aggregateOperator{env: env, input: child, plan: p}, nil
	case *planner.OrderPlan:
		child, err := Build(p.Input, env)
		if err != nil {
			return nil, err
		}
		return &orderOperator{env: env, input: child, plan: p}, nil
	case *planner.LimitPlan:
		child, err := Build(p.Input, env)
		if err != nil {
			return nil, err
		}
		return &limitOperator{env: env, input: child, limit: p.Limit, offset: p.Offset}, nil
	case *planner.SetOpPlan:
		return buildSetOp(p, env)
	default:
		return nil, cerrors.Internal("exec: unbuildable plan node %T", plan)
	}
}

// toSelection compacts vec's true, non-null logical positions into a
// SelectionVector, the operator-layer bridge between Execute's uniform
// BOOLEAN-vector return and DataChunk.Slice.
func toSelection(vec *vector.Vector) *vector.SelectionVector {
	vec = vec.Normalify()
	idx := make([]uint32, 0, vec.Count())
	for k := 0; k < vec.Count(); k++ {
		if vec.IsNull(k) {
			continue
		}
		if vec.ValueAt(k).Bool() {
			idx = append(idx, uint32(k))
		}
	}
	return vector.NewSelectionVector(idx)
}

func chunkTypes(c *vector.DataChunk) []types.LogicalType {
	out := make([]types.LogicalType, len(c.Columns))
	for i, col := range c.Columns {
		out[i] = col.Logical
	}
	return out
}

// --- Scan ---

type scanOperator struct {
	env      *Env
	plan     *planner.ScanPlan
	cur      *storage.Cursor
	colTypes []types.LogicalType
	cols     []int
}

func newScanOperator(env *Env, plan *planner.ScanPlan) (*scanOperator, error) {
	cur, err := env.Storage.NewCursor(env.Txn, plan.Table.Name)
	if err != nil {
		return nil, err
	}
	var colTypes []types.LogicalType
	if plan.Columns == nil {
		for _, c := range plan.Table.Columns {
			colTypes = append(colTypes, c.Type)
		}
	} else {
		for _, idx := range plan.Columns {
			colTypes = append(colTypes, plan.Table.Columns[idx].Type)
		}
	}
	return &scanOperator{env: env, plan: plan, cur: cur, colTypes: colTypes, cols: plan.Columns}, nil
}

func (s *scanOperator) Next() (*vector.DataChunk, error) {
	chunk := vector.NewDataChunk(s.colTypes, batchSize)
	n := 0
	for n < batchSize {
		id, row, ok := s.cur.Next()
		_ = id
		if !ok {
			break
		}
		vals := row
		if s.cols != nil {
			vals = make([]types.Value, len(s.cols))
			for i, idx := range s.cols {
				vals[i] = row[idx]
			}
		}
		if err := chunk.AppendRow(vals); err != nil {
			return nil, err
		}
		n++
	}
	if n == 0 {
		return nil, nil
	}
	if s.plan.Filter != nil {
		pred, err := Execute(s.env, s.plan.Filter, chunk)
		if err != nil {
			return nil, err
		}
		chunk = chunk.Slice(toSelection(pred))
	}
	return chunk, nil
}

// --- Filter ---

type filterOperator struct {
	env       *Env
	input     Operator
	predicate binder.BoundExpr
}

func (f *filterOperator) Next() (*vector.DataChunk, error) {
	for {
		chunk, err := f.input.Next()
		if err != nil || chunk == nil {
			return chunk, err
		}
		pred, err := Execute(f.env, f.predicate, chunk)
		if err != nil {
			return nil, err
		}
		sel := toSelection(pred)
		if sel.Len() == 0 {
			continue
		}
		return chunk.Slice(sel), nil
	}
}

// --- Projection ---

type projectionOperator struct {
	env         *Env
	input       Operator
	projections []binder.BoundProjection
}

func (p *projectionOperator) Next() (*vector.DataChunk, error) {
	chunk, err := p.input.Next()
	if err != nil || chunk == nil {
		return chunk, err
	}
	cols := make([]*vector.Vector, len(p.projections))
	for i, proj := range p.projections {
		v, err := Execute(p.env, proj.Expr, chunk)
		if err != nil {
			return nil, err
		}
		cols[i] = v
	}
	out := &vector.DataChunk{Columns: cols}
	out.SetCount(chunk.Count())
	return out, nil
}

// --- Join (nested loop; materializes its whole output once, then emits
// it in standard_vector_size batches) ---

type joinOperator struct {
	env      *Env
	left     Operator
	right    Operator
	joinType parser.JoinType
	on       binder.BoundExpr

	built bool
	rows  [][]types.Value
	types []types.LogicalType
	pos   int
}

func rowChunk(colTypes []types.LogicalType, row []types.Value) (*vector.DataChunk, error) {
	c := vector.NewDataChunk(colTypes, 1)
	if err := c.AppendRow(row); err != nil {
		return nil, err
	}
	return c, nil
}

func (j *joinOperator) build() error {
	var rightRows [][]types.Value
	var rightTypes []types.LogicalType
	for {
		chunk, err := j.right.Next()
		if err != nil {
			return err
		}
		if chunk == nil {
			break
		}
		if rightTypes == nil {
			rightTypes = chunkTypes(chunk)
		}
		for k := 0; k < chunk.Count(); k++ {
			rightRows = append(rightRows, chunk.Row(k))
		}
	}
	rightMatched := make([]bool, len(rightRows))

	var leftTypes []types.LogicalType
	var out [][]types.Value
	leftSeenAny := false
	for {
		chunk, err := j.left.Next()
		if err != nil {
			return err
		}
		if chunk == nil {
			break
		}
		if leftTypes == nil {
			leftTypes = chunkTypes(chunk)
		}
		leftSeenAny = true
		for k := 0; k < chunk.Count(); k++ {
			leftRow := chunk.Row(k)
			matchedAny := false
			for ri, rightRow := range rightRows {
				combined := append(append([]types.Value{}, leftRow...), rightRow...)
				ok, err := j.evalOn(leftTypes, rightTypes, combined)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				matchedAny = true
				rightMatched[ri] = true
				out = append(out, combined)
			}
			if !matchedAny && (j.joinType == parser.JoinTypeLeft || j.joinType == parser.JoinTypeFull) {
				out = append(out, append(append([]types.Value{}, leftRow...), nullRow(rightTypes)...))
			}
		}
	}
	if !leftSeenAny {
		leftTypes = nil
	}

	if j.joinType == parser.JoinTypeRight || j.joinType == parser.JoinTypeFull {
		for ri, matched := range rightMatched {
			if matched {
				continue
			}
			out = append(out, append(nullRow(leftTypes), rightRows[ri]...))
		}
	}

	j.rows = out
	j.types = append(append([]types.LogicalType{}, leftTypes...), rightTypes...)
	j.built = true
	return nil
}

func nullRow(colTypes []types.LogicalType) []types.Value {
	row := make([]types.Value, len(colTypes))
	for i, t := range colTypes {
		row[i] = types.NullValue(t)
	}
	return row
}

func (j *joinOperator) evalOn(leftTypes, rightTypes []types.LogicalType, combined []types.Value) (bool, error) {
	if j.on == nil {
		return true, nil
	}
	colTypes := append(append([]types.LogicalType{}, leftTypes...), rightTypes...)
	chunk, err := rowChunk(colTypes, combined)
	if err != nil {
		return false, err
	}
	v, err := Execute(j.env, j.on, chunk)
	if err != nil {
		return false, err
	}
	v = v.Normalify()
	return !v.IsNull(0) && v.ValueAt(0).Bool(), nil
}

func (j *joinOperator) Next() (*vector.DataChunk, error) {
	if !j.built {
		if err := j.build(); err != nil {
			return nil, err
		}
	}
	if j.pos >= len(j.rows) {
		return nil, nil
	}
	chunk := vector.NewDataChunk(j.types, batchSize)
	for j.pos < len(j.rows) && chunk.Count() < batchSize {
		if err := chunk.AppendRow(j.rows[j.pos]); err != nil {
			return nil, err
		}
		j.pos++
	}
	return chunk, nil
}

// --- SemiJoin (unnested IN/EXISTS) ---

type semiJoinOperator struct {
	env    *Env
	input  Operator
	sub    Operator
	kind   string
	probe  binder.BoundExpr
	negate bool

	built   bool
	values  []types.Value
	anyRows bool
}

func (s *semiJoinOperator) build() error {
	for {
		chunk, err := s.sub.Next()
		if err != nil {
			return err
		}
		if chunk == nil {
			break
		}
		s.anyRows = s.anyRows || chunk.Count() > 0
		if len(chunk.Columns) > 0 {
			col := chunk.Columns[0].Normalify()
			for k := 0; k < chunk.Count(); k++ {
				s.values = append(s.values, col.ValueAt(k))
			}
		}
	}
	s.built = true
	return nil
}

func (s *semiJoinOperator) Next() (*vector.DataChunk, error) {
	if !s.built {
		if err := s.build(); err != nil {
			return nil, err
		}
	}
	for {
		chunk, err := s.input.Next()
		if err != nil || chunk == nil {
			return chunk, err
		}
		if s.kind == "EXISTS" {
			keep := s.anyRows
			if s.negate {
				keep = !keep
			}
			if !keep {
				continue
			}
			return chunk, nil
		}

		probe, err := Execute(s.env, s.probe, chunk)
		if err != nil {
			return nil, err
		}
		probe = probe.Normalify()
		sel := make([]uint32, 0, chunk.Count())
		for k := 0; k < chunk.Count(); k++ {
			if probe.IsNull(k) {
				continue
			}
			pv := probe.ValueAt(k)
			found := false
			for _, v := range s.values {
				cast, err := types.TryCast(v, pv.Type())
				if err != nil {
					continue
				}
				if compareVals(pv, cast) == 0 {
					found = true
					break
				}
			}
			keep := found
			if s.negate {
				keep = !found
			}
			if keep {
				sel = append(sel, uint32(k))
			}
		}
		if len(sel) == 0 {
			continue
		}
		return chunk.Slice(vector.NewSelectionVector(sel)), nil
	}
}

// --- Aggregate ---

type aggState struct {
	groupKey []types.Value
	counts   map[int]int64
	sums     map[int]float64
	mins     map[int]types.Value
	maxs     map[int]types.Value
	concats  map[int][]string
	hasValue map[int]bool
}

func newAggState(key []types.Value) *aggState {
	return &aggState{
		groupKey: key,
		counts:   map[int]int64{},
		sums:     map[int]float64{},
		mins:     map[int]types.Value{},
		maxs:     map[int]types.Value{},
		concats:  map[int][]string{},
		hasValue: map[int]bool{},
	}
}

type aggregateOperator struct {
	env   *Env
	input Operator
	plan  *planner.AggregatePlan

	built   bool
	order   []string
	groups  map[string]*aggState
	colTypes []types.LogicalType
	emitted int
}

func groupKeyString(vals []types.Value) string {
	var b strings.Builder
	for _, v := range vals {
		if v.Null {
			b.WriteString("\x00N\x01")
			continue
		}
		b.WriteString(v.GoString())
		b.WriteByte('\x01')
	}
	return b.String()
}

func (a *aggregateOperator) build() error {
	a.groups = map[string]*aggState{}
	if len(a.plan.GroupBy) == 0 {
		a.order = append(a.order, "")
		a.groups[""] = newAggState(nil)
	}

	for {
		chunk, err := a.input.Next()
		if err != nil {
			return err
		}
		if chunk == nil {
			break
		}

		groupVecs := make([]*vector.Vector, len(a.plan.GroupBy))
		for i, g := range a.plan.GroupBy {
			v, err := Execute(a.env, g, chunk)
			if err != nil {
				return err
			}
			groupVecs[i] = v.Normalify()
		}
		argVecs := make([]*vector.Vector, len(a.plan.Aggregates))
		for i, agg := range a.plan.Aggregates {
			if agg.Arg == nil {
				continue
			}
			v, err := Execute(a.env, agg.Arg, chunk)
			if err != nil {
				return err
			}
			argVecs[i] = v.Normalify()
		}

		for k := 0; k < chunk.Count(); k++ {
			var key []types.Value
			if len(a.plan.GroupBy) > 0 {
				key = make([]types.Value, len(groupVecs))
				for i, v := range groupVecs {
					key[i] = v.ValueAt(k)
				}
			}
			ks := groupKeyString(key)
			st, ok := a.groups[ks]
			if !ok {
				st = newAggState(key)
				a.groups[ks] = st
				a.order = append(a.order, ks)
			}
			for i, agg := range a.plan.Aggregates {
				a.accumulate(st, i, agg, argVecs[i], k)
			}
		}
	}
	a.built = true
	return nil
}

func (a *aggregateOperator) accumulate(st *aggState, i int, agg binder.BoundAggregate, arg *vector.Vector, k int) {
	if strings.EqualFold(agg.Function, "COUNT") {
		if agg.Star {
			st.counts[i]++
			return
		}
		if arg != nil && !arg.IsNull(k) {
			st.counts[i]++
		}
		return
	}
	if arg == nil || arg.IsNull(k) {
		return
	}
	v := arg.ValueAt(k)
	switch strings.ToUpper(agg.Function) {
	case "SUM", "AVG":
		st.sums[i] += v.AsFloat()
		st.counts[i]++
	case "MIN":
		if cur, ok := st.mins[i]; !ok || compareVals(v, cur) < 0 {
			st.mins[i] = v
		}
	case "MAX":
		if cur, ok := st.maxs[i]; !ok || compareVals(v, cur) > 0 {
			st.maxs[i] = v
		}
	case "GROUP_CONCAT", "STRING_AGG":
		st.concats[i] = append(st.concats[i], v.String())
	}
	st.hasValue[i] = true
}

func (a *aggregateOperator) finalizeRow(st *aggState) ([]types.Value, error) {
	row := make([]types.Value, 0, len(a.plan.GroupBy)+len(a.plan.Aggregates))
	row = append(row, st.groupKey...)
	for i, agg := range a.plan.Aggregates {
		switch strings.ToUpper(agg.Function) {
		case "COUNT":
			row = append(row, types.Int64Value(st.counts[i]))
		case "SUM":
			if !st.hasValue[i] {
				row = append(row, types.NullValue(agg.Result))
				continue
			}
			v, err := types.TryCast(types.Float64Value(st.sums[i]), agg.Result)
			if err != nil {
				return nil, err
			}
			row = append(row, v)
		case "AVG":
			if st.counts[i] == 0 {
				row = append(row, types.NullValue(agg.Result))
				continue
			}
			v, err := types.TryCast(types.Float64Value(st.sums[i]/float64(st.counts[i])), agg.Result)
			if err != nil {
				return nil, err
			}
			row = append(row, v)
		case "MIN":
			if v, ok := st.mins[i]; ok {
				row = append(row, v)
			} else {
				row = append(row, types.NullValue(agg.Result))
			}
		case "MAX":
			if v, ok := st.maxs[i]; ok {
				row = append(row, v)
			} else {
				row = append(row, types.NullValue(agg.Result))
			}
		case "GROUP_CONCAT", "STRING_AGG":
			row = append(row, types.StringValue(strings.Join(st.concats[i], ",")))
		default:
			return nil, cerrors.Internal("exec: unknown aggregate function %q", agg.Function)
		}
	}
	return row, nil
}

func (a *aggregateOperator) outputTypes() []types.LogicalType {
	out := make([]types.LogicalType, 0, len(a.plan.GroupBy)+len(a.plan.Aggregates))
	for _, g := range a.plan.GroupBy {
		out = append(out, g.Typ)
	}
	for _, agg := range a.plan.Aggregates {
		out = append(out, agg.Result)
	}
	return out
}

func (a *aggregateOperator) Next() (*vector.DataChunk, error) {
	if !a.built {
		if err := a.build(); err != nil {
			return nil, err
		}
		a.colTypes = a.outputTypes()
	}
	if a.emitted >= len(a.order) {
		return nil, nil
	}
	chunk := vector.NewDataChunk(a.colTypes, batchSize)
	for a.emitted < len(a.order) && chunk.Count() < batchSize {
		st := a.groups[a.order[a.emitted]]
		a.emitted++
		row, err := a.finalizeRow(st)
		if err != nil {
			return nil, err
		}
		if a.plan.Having != nil {
			keep, err := a.evalHaving(row)
			if err != nil {
				return nil, err
			}
			if !keep {
				continue
			}
		}
		if err := chunk.AppendRow(row); err != nil {
			return nil, err
		}
	}
	if chunk.Count() == 0 {
		return a.Next()
	}
	return chunk, nil
}

func (a *aggregateOperator) evalHaving(row []types.Value) (bool, error) {
	c, err := rowChunk(a.colTypes, row)
	if err != nil {
		return false, err
	}
	v, err := Execute(a.env, a.plan.Having, c)
	if err != nil {
		return false, err
	}
	v = v.Normalify()
	return !v.IsNull(0) && v.ValueAt(0).Bool(), nil
}

// --- Order ---

type orderOperator struct {
	env   *Env
	input Operator
	plan  *planner.OrderPlan

	built    bool
	rows     [][]types.Value
	colTypes []types.LogicalType
	pos      int
}

func (o *orderOperator) build() error {
	type keyedRow struct {
		key types.Value
		row []types.Value
	}
	var kr []keyedRow
	for {
		chunk, err := o.input.Next()
		if err != nil {
			return err
		}
		if chunk == nil {
			break
		}
		if o.colTypes == nil {
			o.colTypes = chunkTypes(chunk)
		}
		keyVec, err := Execute(o.env, o.plan.Key, chunk)
		if err != nil {
			return err
		}
		keyVec = keyVec.Normalify()
		for k := 0; k < chunk.Count(); k++ {
			kr = append(kr, keyedRow{key: keyVec.ValueAt(k), row: chunk.Row(k)})
		}
	}

	sort.SliceStable(kr, func(i, j int) bool {
		a, b := kr[i].key, kr[j].key
		switch {
		case a.Null && b.Null:
			return false
		case a.Null:
			return !o.plan.Descending
		case b.Null:
			return o.plan.Descending
		}
		cmp := compareVals(a, b)
		if o.plan.Descending {
			return cmp > 0
		}
		return cmp < 0
	})

	o.rows = make([][]types.Value, len(kr))
	for i, e := range kr {
		o.rows[i] = e.row
	}
	o.built = true
	return nil
}

func (o *orderOperator) Next() (*vector.DataChunk, error) {
	if !o.built {
		if err := o.build(); err != nil {
			return nil, err
		}
	}
	if o.pos >= len(o.rows) {
		return nil, nil
	}
	chunk := vector.NewDataChunk(o.colTypes, batchSize)
	for o.pos < len(o.rows) && chunk.Count() < batchSize {
		if err := chunk.AppendRow(o.rows[o.pos]); err != nil {
			return nil, err
		}
		o.pos++
	}
	return chunk, nil
}

// --- Limit ---

type limitOperator struct {
	env    *Env
	input  Operator
	limit  int
	offset int

	skipped int
	emitted int
}

func (l *limitOperator) Next() (*vector.DataChunk, error) {
	if l.limit > 0 && l.emitted >= l.limit {
		return nil, nil
	}
	for {
		chunk, err := l.input.Next()
		if err != nil || chunk == nil {
			return chunk, err
		}
		if l.skipped < l.offset {
			skip := l.offset - l.skipped
			if skip >= chunk.Count() {
				l.skipped += chunk.Count()
				continue
			}
			sel := make([]uint32, 0, chunk.Count()-skip)
			for k := skip; k < chunk.Count(); k++ {
				sel = append(sel, uint32(k))
			}
			l.skipped = l.offset
			chunk = chunk.Slice(vector.NewSelectionVector(sel))
		}
		if l.limit > 0 && l.emitted+chunk.Count() > l.limit {
			keep := l.limit - l.emitted
			sel := make([]uint32, keep)
			for k := 0; k < keep; k++ {
				sel[k] = uint32(k)
			}
			chunk = chunk.Slice(vector.NewSelectionVector(sel))
		}
		l.emitted += chunk.Count()
		return chunk, nil
	}
}

// --- SetOp (UNION/INTERSECT/EXCEPT) ---

type setOpOperator struct {
	rows     [][]types.Value
	colTypes []types.LogicalType
	pos      int
}

func buildSetOp(plan *planner.SetOpPlan, env *Env) (Operator, error) {
	left, err := Build(plan.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := Build(plan.Right, env)
	if err != nil {
		return nil, err
	}

	leftRows, colTypes, err := drain(left)
	if err != nil {
		return nil, err
	}
	rightRows, rightTypes, err := drain(right)
	if err != nil {
		return nil, err
	}
	if colTypes == nil {
		colTypes = rightTypes
	}

	rows, err := combineSetOp(plan.Op, plan.All, leftRows, rightRows)
	if err != nil {
		return nil, err
	}

	if plan.Next != nil {
		nextOp, err := buildSetOp(plan.Next, env)
		if err != nil {
			return nil, err
		}
		nextRows, nextTypes, err := drain(nextOp)
		if err != nil {
			return nil, err
		}
		if colTypes == nil {
			colTypes = nextTypes
		}
		rows, err = combineSetOp(plan.Next.Op, plan.Next.All, rows, nextRows)
		if err != nil {
			return nil, err
		}
	}

	return &setOpOperator{rows: rows, colTypes: colTypes}, nil
}

func drain(op Operator) ([][]types.Value, []types.LogicalType, error) {
	var rows [][]types.Value
	var colTypes []types.LogicalType
	for {
		chunk, err := op.Next()
		if err != nil {
			return nil, nil, err
		}
		if chunk == nil {
			break
		}
		if colTypes == nil {
			colTypes = chunkTypes(chunk)
		}
		for k := 0; k < chunk.Count(); k++ {
			rows = append(rows, chunk.Row(k))
		}
	}
	return rows, colTypes, nil
}

func combineSetOp(op string, all bool, left, right [][]types.Value) ([][]types.Value, error) {
	switch strings.ToUpper(op) {
	case "UNION":
		out := append(append([][]types.Value{}, left...), right...)
		if all {
			return out, nil
		}
		return dedupRows(out), nil
	case "INTERSECT":
		rightKeys := map[string]int{}
		for _, r := range right {
			rightKeys[rowKey(r)]++
		}
		var out [][]types.Value
		seen := map[string]int{}
		for _, r := range left {
			k := rowKey(r)
			if rightKeys[k] > seen[k] {
				out = append(out, r)
				seen[k]++
				if !all {
					rightKeys[k] = seen[k]
				}
			}
		}
		return out, nil
	case "EXCEPT":
		rightKeys := map[string]bool{}
		for _, r := range right {
			rightKeys[rowKey(r)] = true
		}
		var out [][]types.Value
		seen := map[string]bool{}
		for _, r := range left {
			k := rowKey(r)
			if rightKeys[k] {
				continue
			}
			if !all {
				if seen[k] {
					continue
				}
				seen[k] = true
			}
			out = append(out, r)
		}
		return out, nil
	default:
		return nil, cerrors.Internal("exec: unknown set operator %q", op)
	}
}

func rowKey(row []types.Value) string {
	var b strings.Builder
	for _, v := range row {
		if v.Null {
			b.WriteString("\x00N\x01")
			continue
		}
		b.WriteString(v.GoString())
		b.WriteByte('\x01')
	}
	return b.String()
}

func dedupRows(rows [][]types.Value) [][]types.Value {
	seen := map[string]bool{}
	var out [][]types.Value
	for _, r := range rows {
		k := rowKey(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

func (s *setOpOperator) Next() (*vector.DataChunk, error) {
	if s.pos >= len(s.rows) {
		return nil, nil
	}
	chunk := vector.NewDataChunk(s.colTypes, batchSize)
	for s.pos < len(s.rows) && chunk.Count() < batchSize {
		if err := chunk.AppendRow(s.rows[s.pos]); err != nil {
			return nil, err
		}
		s.pos++
	}
	return chunk, nil
}

// --- Mutations (Insert/Update/Delete) ---

// ExecuteMutation runs an Insert/Update/Delete plan to completion and
// returns the number of rows affected. Unlike query plans, mutations
// don't stream through the Operator interface: spec §4.7's Insert/Update/
// Delete each describe a single all-at-once effect on Storage, not a
// sequence of chunks a caller pulls from.
func ExecuteMutation(plan planner.PhysicalPlan, env *Env) (int64, error) {
	switch p := plan.(type) {
	case *planner.InsertPlan:
		return execInsert(p, env)
	case *planner.UpdatePlan:
		return execUpdate(p, env)
	case *planner.DeletePlan:
		return execDelete(p, env)
	default:
		return 0, cerrors.Internal("exec: unsupported mutation plan %T", plan)
	}
}

func execInsert(p *planner.InsertPlan, env *Env) (int64, error) {
	var n int64
	emptyChunk := vector.NewDataChunk(nil, 1)
	emptyChunk.SetCount(1)
	for _, exprRow := range p.Rows {
		row := make([]types.Value, len(p.Table.Columns))
		for i, col := range p.Table.Columns {
			row[i] = types.NullValue(col.Type)
		}
		for j, colIdx := range p.TargetCols {
			v, err := Execute(env, exprRow[j], emptyChunk)
			if err != nil {
				return n, err
			}
			v = v.Normalify()
			val := v.ValueAt(0)
			cast, err := types.TryCast(val, p.Table.Columns[colIdx].Type)
			if err != nil {
				return n, err
			}
			if cast.Null && p.Table.Columns[colIdx].NotNull {
				return n, cerrors.TypeMismatch("column %q does not allow NULL", p.Table.Columns[colIdx].Name)
			}
			row[colIdx] = cast
		}
		if _, err := env.Storage.Insert(env.Txn, p.Table.Name, row); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func combinePredicate(base, extra binder.BoundExpr) binder.BoundExpr {
	if base == nil {
		return extra
	}
	if extra == nil {
		return base
	}
	return binder.BoundConjunction{Op: "AND", Left: base, Right: extra}
}

func resolveMutationSource(p planner.PhysicalPlan) (*planner.ScanPlan, binder.BoundExpr, error) {
	switch n := p.(type) {
	case *planner.ScanPlan:
		return n, n.Filter, nil
	case *planner.FilterPlan:
		scan, pred, err := resolveMutationSource(n.Input)
		if err != nil {
			return nil, nil, err
		}
		return scan, combinePredicate(pred, n.Predicate), nil
	default:
		return nil, nil, cerrors.Internal("exec: unsupported mutation source %T", p)
	}
}

func matchingRowIDs(env *Env, scan *planner.ScanPlan, pred binder.BoundExpr) ([]int64, error) {
	cur, err := env.Storage.NewCursor(env.Txn, scan.Table.Name)
	if err != nil {
		return nil, err
	}
	colTypes := make([]types.LogicalType, len(scan.Table.Columns))
	for i, c := range scan.Table.Columns {
		colTypes[i] = c.Type
	}
	var ids []int64
	for {
		id, row, ok := cur.Next()
		if !ok {
			break
		}
		if pred != nil {
			chunk, err := rowChunk(colTypes, row)
			if err != nil {
				return nil, err
			}
			v, err := Execute(env, pred, chunk)
			if err != nil {
				return nil, err
			}
			v = v.Normalify()
			if v.IsNull(0) || !v.ValueAt(0).Bool() {
				continue
			}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func execDelete(p *planner.DeletePlan, env *Env) (int64, error) {
	scan, pred, err := resolveMutationSource(p.Source)
	if err != nil {
		return 0, err
	}
	ids, err := matchingRowIDs(env, scan, pred)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := env.Storage.Delete(env.Txn, p.Table.Name, ids); err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

func execUpdate(p *planner.UpdatePlan, env *Env) (int64, error) {
	scan, pred, err := resolveMutationSource(p.Source)
	if err != nil {
		return 0, err
	}
	ids, err := matchingRowIDs(env, scan, pred)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	colTypes := make([]types.LogicalType, len(p.Table.Columns))
	for i, c := range p.Table.Columns {
		colTypes[i] = c.Type
	}

	columnValues := map[int][]types.Value{}
	for colName, expr := range p.Assignments {
		colIdx := p.Table.ColumnIndex(colName)
		if colIdx < 0 {
			return 0, cerrors.NotFound("column", colName)
		}
		values := make([]types.Value, len(ids))
		for i, id := range ids {
			row, err := env.Storage.RowAt(p.Table.Name, id)
			if err != nil {
				return 0, err
			}
			chunk, err := rowChunk(colTypes, row)
			if err != nil {
				return 0, err
			}
			v, err := Execute(env, expr, chunk)
			if err != nil {
				return 0, err
			}
			v = v.Normalify()
			cast, err := types.TryCast(v.ValueAt(0), p.Table.Columns[colIdx].Type)
			if err != nil {
				return 0, err
			}
			values[i] = cast
		}
		columnValues[colIdx] = values
	}

	currentIDs := ids
	for colIdx, values := range columnValues {
		newIDs, err := env.Storage.Update(env.Txn, p.Table.Name, currentIDs, colIdx, values)
		if err != nil {
			return 0, err
		}
		currentIDs = newIDs
	}
	return int64(len(ids)), nil
}

