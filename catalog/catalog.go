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

// Package catalog holds the in-memory tables that queries run against:
// schemas, row storage and optional secondary indexes. The catalog is shared
// by every session and safe for concurrent use; readers see a snapshot of a
// table's rows taken when their scan starts.
package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/millstonedb/millstone/query/plandef"
	"github.com/millstonedb/millstone/query/rows"
	"github.com/puzpuzpuz/xsync/v3"
)

// Catalog is the registry of tables.
type Catalog struct {
	tables *xsync.MapOf[string, *Table]
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		tables: xsync.NewMapOf[string, *Table](),
	}
}

// CreateTable registers a new empty table. It returns an error if a table
// with that name already exists or the schema is empty.
func (c *Catalog) CreateTable(name string, cols []plandef.Column) (*Table, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %q must have at least one column", name)
	}
	seen := make(map[string]struct{}, len(cols))
	for _, col := range cols {
		if _, dup := seen[col.Name]; dup {
			return nil, fmt.Errorf("table %q has duplicate column %q", name, col.Name)
		}
		seen[col.Name] = struct{}{}
	}
	t := &Table{
		name:    name,
		cols:    append([]plandef.Column(nil), cols...),
		indexes: make(map[string]*Index),
	}
	if _, loaded := c.tables.LoadOrStore(name, t); loaded {
		return nil, fmt.Errorf("table %q already exists", name)
	}
	return t, nil
}

// Table looks up a table by name.
func (c *Catalog) Table(name string) (*Table, bool) {
	return c.tables.Load(name)
}

// Names returns the names of all tables, sorted.
func (c *Catalog) Names() []string {
	var names []string
	c.tables.Range(func(name string, _ *Table) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

// Table is one named relation: a schema plus its rows. Inserts take the
// table lock; reads work on snapshots.
type Table struct {
	name string
	cols []plandef.Column

	mu      sync.RWMutex
	data    []rows.Row
	indexes map[string]*Index
}

// Name returns the table's name.
func (t *Table) Name() string {
	return t.name
}

// Columns returns the table's schema. Callers must not modify it.
func (t *Table) Columns() []plandef.Column {
	return t.cols
}

// Insert appends one row after checking arity and column types. NULL is
// accepted in any column; an integer value is widened when the column is a
// float.
func (t *Table) Insert(row rows.Row) error {
	if len(row) != len(t.cols) {
		return fmt.Errorf("table %q expects %d values, got %d", t.name, len(t.cols), len(row))
	}
	stored := make(rows.Row, len(row))
	for i, v := range row {
		col := t.cols[i]
		if v.Kind() == rows.KindInt64 && col.Type == rows.KindFloat64 {
			v = rows.Float64(float64(v.AsInt64()))
		}
		if v.Kind() != rows.KindNull && v.Kind() != col.Type {
			return fmt.Errorf("column %q of table %q holds %v, got %v",
				col.Name, t.name, col.Type, v.Kind())
		}
		stored[i] = v
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data = append(t.data, stored)
	for _, idx := range t.indexes {
		idx.add(stored)
	}
	return nil
}

// Snapshot returns the table's rows as of now. The returned slice is
// immutable; later inserts do not affect it.
func (t *Table) Snapshot() []rows.Row {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.data[:len(t.data):len(t.data)]
}

// RowCount returns the current number of rows.
func (t *Table) RowCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.data)
}

// CreateIndex builds a secondary index over the named column, including all
// existing rows.
func (t *Table) CreateIndex(column string) error {
	ord := -1
	for i, col := range t.cols {
		if col.Name == column {
			ord = i
			break
		}
	}
	if ord < 0 {
		return fmt.Errorf("table %q has no column %q", t.name, column)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.indexes[column]; exists {
		return fmt.Errorf("table %q already has an index on %q", t.name, column)
	}
	idx := newIndex(ord)
	for _, row := range t.data {
		idx.add(row)
	}
	t.indexes[column] = idx
	return nil
}

// Index returns the secondary index over the named column, if one exists.
func (t *Table) Index(column string) (*Index, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	idx, ok := t.indexes[column]
	return idx, ok
}
