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
Package exec is corvusdb's execution engine: component C6 (the expression
executor, spec §4.6) and component C7 (the pull-based physical operators,
spec §4.7). Together they are the part of the pipeline that actually
touches Vectors and Storage — everything upstream (Binder, Planner)
produces trees describing what to compute; exec is where computation
happens.

A physical plan tree is built once per statement (during Prepare) and
reused across every Execute call against it (spec §4.5 "Prepared-statement
plans are cached by name"). Because of that, an operator's mutable
state — its Storage cursor, its hash table, its output cursor — can never
live on the planner.PhysicalPlan node itself: Build constructs a fresh
tree of stateful Operators from the immutable plan on every call, so two
concurrent executions of the same prepared statement never share a
cursor.
*/
package exec

import (
	"math/rand"
	"time"

	"corvusdb/internal/storage"
	"corvusdb/internal/txn"
)

// batchSize bounds every DataChunk exec produces, corvusdb's
// standard_vector_size (spec §3).
const batchSize = 2048

// Context carries per-statement-execution state a BoundFunction
// implementation may need: a PRNG seeded once per execution for
// `random()` (spec §4.6 "bind_data ... a seeded PRNG"), and a fixed
// "now" so every NOW()/CURRENT_DATE call within one statement agrees,
// the same way a real clock read once at statement start would.
type Context struct {
	rand *rand.Rand
	now  time.Time
}

// NewContext builds a Context seeded from seed. Passing a fixed seed
// (rather than always reading a live clock) is what lets tests assert on
// random()'s output deterministically.
func NewContext(seed int64) *Context {
	return &Context{rand: rand.New(rand.NewSource(seed)), now: time.Now().UTC()}
}

// Env is everything an operator or expression needs to reach outside the
// plan tree itself: the transaction whose snapshot it reads through, the
// Storage Manager it reads and writes, and the per-execution Context.
type Env struct {
	Txn     *txn.Txn
	Storage *storage.Manager
	Ctx     *Context
}
