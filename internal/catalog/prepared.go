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

import cerrors "corvusdb/internal/errors"

// PreparedStatementEntry is a catalog object standing in for one PREPARE
// (spec §4.3: CASCADE "removes dependents (including prepared
// statements)"). Plan is opaque here (the Planner's cached physical tree);
// the catalog only needs enough to participate in the dependency graph.
type PreparedStatementEntry struct {
	Name       string
	SQL        string
	ParamCount int
	Plan       any
}

// RegisterPrepared adds a prepared statement and records its dependency
// edges on every table it references, so dropping one of those tables
// (without CASCADE) is refused while the statement is live.
func (c *Catalog) RegisterPrepared(entry PreparedStatementEntry, referencedTables []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(entry.Name)
	if _, exists := c.prepared[k]; exists {
		return cerrors.DuplicateName("prepared statement", entry.Name)
	}
	c.prepared[k] = &entry
	for _, t := range referencedTables {
		c.deps.add(k, key(t))
	}
	return nil
}

// GetPrepared looks up a prepared statement by name.
func (c *Catalog) GetPrepared(name string) (PreparedStatementEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.prepared[key(name)]
	if !ok {
		return PreparedStatementEntry{}, cerrors.NotFound("prepared statement", name)
	}
	return *p, nil
}

// DeallocatePrepared removes a prepared statement and its dependency
// edges (DEALLOCATE).
func (c *Catalog) DeallocatePrepared(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key(name)
	if _, ok := c.prepared[k]; !ok {
		return cerrors.NotFound("prepared statement", name)
	}
	delete(c.prepared, k)
	c.deps.removeObject(k)
	return nil
}
