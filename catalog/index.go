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

package catalog

import (
	"math"

	"github.com/millstonedb/millstone/query/plandef"
	"github.com/millstonedb/millstone/query/rows"
	"github.com/tidwall/btree"
)

// Index is a secondary index over one column of a table, ordered by the
// column's value.
type Index struct {
	ord  int
	seq  uint64
	tree *btree.BTreeG[indexEntry]
}

// indexEntry is one row keyed by its indexed column value. seq disambiguates
// rows with equal keys so duplicates survive in the tree.
type indexEntry struct {
	key rows.Value
	seq uint64
	row rows.Row
}

func newIndex(ord int) *Index {
	return &Index{
		ord: ord,
		tree: btree.NewBTreeG(func(a, b indexEntry) bool {
			if c := a.key.Compare(b.key); c != 0 {
				return c < 0
			}
			return a.seq < b.seq
		}),
	}
}

// add inserts one row. Callers must hold the owning table's write lock.
func (idx *Index) add(row rows.Row) {
	idx.seq++
	idx.tree.Set(indexEntry{key: row[idx.ord], seq: idx.seq, row: row})
}

// Supports reports whether Lookup can serve the given operator.
func (idx *Index) Supports(op plandef.CompareOp) bool {
	switch op {
	case plandef.OpEq, plandef.OpLt, plandef.OpLe, plandef.OpGt, plandef.OpGe:
		return true
	}
	return false
}

// Lookup returns the rows whose indexed column satisfies `column op value`,
// in ascending key order. It works on a snapshot of the index, so a scan is
// not affected by concurrent inserts.
func (idx *Index) Lookup(op plandef.CompareOp, value rows.Value) []rows.Row {
	tree := idx.tree.Copy()
	var out []rows.Row
	switch op {
	case plandef.OpEq:
		tree.Ascend(indexEntry{key: value}, func(e indexEntry) bool {
			if e.key.Compare(value) != 0 {
				return false
			}
			out = append(out, e.row)
			return true
		})
	case plandef.OpGe:
		tree.Ascend(indexEntry{key: value}, func(e indexEntry) bool {
			out = append(out, e.row)
			return true
		})
	case plandef.OpGt:
		tree.Ascend(indexEntry{key: value, seq: math.MaxUint64}, func(e indexEntry) bool {
			out = append(out, e.row)
			return true
		})
	case plandef.OpLt:
		tree.Descend(indexEntry{key: value}, func(e indexEntry) bool {
			if e.key.Compare(value) >= 0 {
				return true
			}
			out = append(out, e.row)
			return true
		})
		reverse(out)
	case plandef.OpLe:
		tree.Descend(indexEntry{key: value, seq: math.MaxUint64}, func(e indexEntry) bool {
			out = append(out, e.row)
			return true
		})
		reverse(out)
	}
	return out
}

func reverse(rs []rows.Row) {
	for i, j := 0, len(rs)-1; i < j; i, j = i+1, j-1 {
		rs[i], rs[j] = rs[j], rs[i]
	}
}
