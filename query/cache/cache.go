// Copyright 2026 The Millstone Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cache keeps materialized results of previously-run sub-plans and
// substitutes them into new logical plans. Sub-trees are matched by their
// canonical key, so two queries that spell the same sub-plan share one cache
// entry.
package cache

import (
	"sync"

	"github.com/google/btree"
	"github.com/millstonedb/millstone/query/plandef"
	"github.com/millstonedb/millstone/query/rows"
	"github.com/millstonedb/millstone/util/cmp"
)

// Manager owns the cached sub-plan results. It is safe for concurrent use.
type Manager struct {
	mu  sync.RWMutex
	idx *btree.BTreeG[*entry]
}

type entry struct {
	key  string
	cols []plandef.Column
	data []rows.Row
}

// New returns an empty cache manager.
func New() *Manager {
	return &Manager{
		idx: btree.NewG(8, func(a, b *entry) bool {
			return a.key < b.key
		}),
	}
}

// Put records the materialized result of the given resolved sub-plan. The
// rows are shared, not copied; the caller must not mutate them afterwards.
// A second Put for the same sub-plan replaces the first.
func (m *Manager) Put(plan plandef.Node, data []rows.Row) {
	e := &entry{
		key:  cmp.GetKey(plan),
		cols: plan.Columns(),
		data: data,
	}
	m.mu.Lock()
	m.idx.ReplaceOrInsert(e)
	m.mu.Unlock()
}

// Drop removes the cache entry for the given sub-plan, if present.
func (m *Manager) Drop(plan plandef.Node) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, found := m.idx.Delete(&entry{key: cmp.GetKey(plan)})
	return found
}

// Len returns the number of cached sub-plans.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.idx.Len()
}

// Keys returns the canonical keys of all cached sub-plans in order. Useful
// for diagnostics.
func (m *Manager) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, m.idx.Len())
	m.idx.Ascend(func(e *entry) bool {
		out = append(out, e.key)
		return true
	})
	return out
}

func (m *Manager) get(key string) (*entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.idx.Get(&entry{key: key})
}

// UseCachedData returns a plan with every cached sub-tree replaced by a
// CachedData leaf holding the materialized rows. Matching is top-down, so
// the largest cached sub-tree wins. The input plan is not modified.
func (m *Manager) UseCachedData(plan plandef.Node) (plandef.Node, error) {
	return m.substitute(plan), nil
}

func (m *Manager) substitute(n plandef.Node) plandef.Node {
	if e, ok := m.get(cmp.GetKey(n)); ok {
		return &plandef.CachedData{
			Source: e.key,
			Cols:   e.cols,
			Rows:   e.data,
		}
	}
	switch n := n.(type) {
	case *plandef.Filter:
		return &plandef.Filter{Input: m.substitute(n.Input), Predicate: n.Predicate}
	case *plandef.Project:
		return &plandef.Project{Input: m.substitute(n.Input), Refs: n.Refs}
	case *plandef.Distinct:
		return &plandef.Distinct{Input: m.substitute(n.Input)}
	case *plandef.Sort:
		return &plandef.Sort{Input: m.substitute(n.Input), By: n.By}
	case *plandef.Limit:
		return &plandef.Limit{Input: m.substitute(n.Input), Paging: n.Paging}
	}
	return n
}
