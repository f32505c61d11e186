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

package catalog

import "github.com/google/btree"

// dependencyGraph tracks owner -> target edges (spec §4.3
// AddDependency/DropDependent). It is indexed twice: once ordered by
// (owner, target) for DropDependent, once ordered by (target, owner) for
// CASCADE traversal, so dependentsOf returns a deterministic order
// instead of Go's randomized map iteration.
type dependencyGraph struct {
	forward *btree.BTree // ordered by (owner, target)
	reverse *btree.BTree // ordered by (target, owner)
}

type depEdge struct {
	a, b string
}

func (e depEdge) Less(than btree.Item) bool {
	o := than.(depEdge)
	if e.a != o.a {
		return e.a < o.a
	}
	return e.b < o.b
}

func newDependencyGraph() *dependencyGraph {
	const degree = 32
	return &dependencyGraph{
		forward: btree.New(degree),
		reverse: btree.New(degree),
	}
}

func (g *dependencyGraph) add(owner, target string) {
	g.forward.ReplaceOrInsert(depEdge{owner, target})
	g.reverse.ReplaceOrInsert(depEdge{target, owner})
}

// dependentsOf returns every owner with a live edge to target, in
// ascending owner-name order.
func (g *dependencyGraph) dependentsOf(target string) []string {
	var out []string
	pivot := depEdge{a: target}
	g.reverse.AscendGreaterOrEqual(pivot, func(item btree.Item) bool {
		e := item.(depEdge)
		if e.a != target {
			return false
		}
		out = append(out, e.b)
		return true
	})
	return out
}

// removeObject deletes every edge mentioning name, as either owner or
// target (spec §4.3: "DropDependent(owner)" plus cleanup when a target is
// finally dropped).
func (g *dependencyGraph) removeObject(name string) {
	var ownedEdges []depEdge
	pivot := depEdge{a: name}
	g.forward.AscendGreaterOrEqual(pivot, func(item btree.Item) bool {
		e := item.(depEdge)
		if e.a != name {
			return false
		}
		ownedEdges = append(ownedEdges, e)
		return true
	})
	for _, e := range ownedEdges {
		g.forward.Delete(e)
		g.reverse.Delete(depEdge{e.b, e.a})
	}

	var incomingEdges []depEdge
	revPivot := depEdge{a: name}
	g.reverse.AscendGreaterOrEqual(revPivot, func(item btree.Item) bool {
		e := item.(depEdge)
		if e.a != name {
			return false
		}
		incomingEdges = append(incomingEdges, e)
		return true
	})
	for _, e := range incomingEdges {
		g.reverse.Delete(e)
		g.forward.Delete(depEdge{e.b, e.a})
	}
}
