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

package plandef

import (
	"strconv"
	"strings"

	"github.com/millstonedb/millstone/query/rows"
	"github.com/millstonedb/millstone/util/cmp"
)

// Scan reads every row of a table. The parser emits scans with a nil Cols;
// the analyzer rebinds them with the table's schema from the catalog.
type Scan struct {
	Table string
	Cols  []Column
}

// Columns implements Node.
func (s *Scan) Columns() []Column {
	return s.Cols
}

// Inputs implements Node.
func (s *Scan) Inputs() []Node {
	return nil
}

func (s *Scan) String() string {
	if s.Cols == nil {
		return "UnresolvedScan " + s.Table
	}
	return "Scan " + s.Table
}

// Key implements cmp.Key.
func (s *Scan) Key(b *strings.Builder) {
	b.WriteString("Scan ")
	b.WriteString(s.Table)
	for _, c := range s.Cols {
		b.WriteByte(' ')
		c.Key(b)
	}
}

// CachedData replaces a sub-tree whose materialized result is held by the
// cache manager. Rows is shared with the cache entry and must be treated as
// read-only.
type CachedData struct {
	// Source is the canonical key of the sub-tree this node replaced.
	Source string
	Cols   []Column
	Rows   []rows.Row
}

// Columns implements Node.
func (c *CachedData) Columns() []Column {
	return c.Cols
}

// Inputs implements Node.
func (c *CachedData) Inputs() []Node {
	return nil
}

func (c *CachedData) String() string {
	return "CachedData (" + strconv.Itoa(len(c.Rows)) + " rows) " + c.Source
}

// Key implements cmp.Key.
func (c *CachedData) Key(b *strings.Builder) {
	b.WriteString("CachedData (")
	b.WriteString(c.Source)
	b.WriteByte(')')
}

// Empty produces no rows. The optimizer folds provably-false filters into
// this.
type Empty struct {
	Cols []Column
}

// Columns implements Node.
func (e *Empty) Columns() []Column {
	return e.Cols
}

// Inputs implements Node.
func (e *Empty) Inputs() []Node {
	return nil
}

func (e *Empty) String() string {
	return "Empty"
}

// Key implements cmp.Key.
func (e *Empty) Key(b *strings.Builder) {
	b.WriteString("Empty")
	for _, c := range e.Cols {
		b.WriteByte(' ')
		c.Key(b)
	}
}

// Filter keeps only input rows for which Predicate evaluates to true.
// Column refs in Predicate are bound against Input's schema.
type Filter struct {
	Input     Node
	Predicate Expr
}

// Columns implements Node.
func (f *Filter) Columns() []Column {
	return f.Input.Columns()
}

// Inputs implements Node.
func (f *Filter) Inputs() []Node {
	return []Node{f.Input}
}

func (f *Filter) String() string {
	return "Filter " + f.Predicate.String()
}

// Key implements cmp.Key.
func (f *Filter) Key(b *strings.Builder) {
	b.WriteString("Filter ")
	f.Predicate.Key(b)
	b.WriteString(" <- ")
	f.Input.Key(b)
}

// Project narrows and reorders the input to the referenced columns. Refs are
// bound against Input's schema.
type Project struct {
	Input Node
	Refs  []*ColumnRef
}

// Columns implements Node.
func (p *Project) Columns() []Column {
	out := make([]Column, len(p.Refs))
	for i, r := range p.Refs {
		out[i] = Column{Name: r.Name, Type: r.ColType}
	}
	return out
}

// Inputs implements Node.
func (p *Project) Inputs() []Node {
	return []Node{p.Input}
}

func (p *Project) String() string {
	b := strings.Builder{}
	b.Grow(64)
	b.WriteString("Project")
	for _, r := range p.Refs {
		b.WriteByte(' ')
		b.WriteString(r.String())
	}
	return b.String()
}

// Key implements cmp.Key.
func (p *Project) Key(b *strings.Builder) {
	b.WriteString("Project")
	for _, r := range p.Refs {
		b.WriteByte(' ')
		r.Key(b)
	}
	b.WriteString(" <- ")
	p.Input.Key(b)
}

// Distinct removes duplicate rows from its input.
type Distinct struct {
	Input Node
}

// Columns implements Node.
func (d *Distinct) Columns() []Column {
	return d.Input.Columns()
}

// Inputs implements Node.
func (d *Distinct) Inputs() []Node {
	return []Node{d.Input}
}

func (d *Distinct) String() string {
	return "Distinct"
}

// Key implements cmp.Key.
func (d *Distinct) Key(b *strings.Builder) {
	b.WriteString("Distinct <- ")
	d.Input.Key(b)
}

// Sort orders the input rows. Sort keys are bound against Input's schema.
type Sort struct {
	Input Node
	By    []SortKey
}

// Columns implements Node.
func (s *Sort) Columns() []Column {
	return s.Input.Columns()
}

// Inputs implements Node.
func (s *Sort) Inputs() []Node {
	return []Node{s.Input}
}

func (s *Sort) String() string {
	b := strings.Builder{}
	b.WriteString("OrderBy")
	for _, k := range s.By {
		b.WriteByte(' ')
		b.WriteString(k.String())
	}
	return b.String()
}

// Key implements cmp.Key.
func (s *Sort) Key(b *strings.Builder) {
	b.WriteString("OrderBy")
	for _, k := range s.By {
		b.WriteByte(' ')
		k.Key(b)
	}
	b.WriteString(" <- ")
	s.Input.Key(b)
}

// LimitOffset contains paging related values. Limit or Offset can be nil if
// not explicitly specified in the query.
type LimitOffset struct {
	Limit  *uint64
	Offset *uint64
}

// Key implements cmp.Key.
func (l *LimitOffset) Key(b *strings.Builder) {
	if l.Limit != nil {
		b.WriteString("Lmt ")
		b.WriteString(strconv.FormatUint(*l.Limit, 10))
	}
	if l.Limit != nil && l.Offset != nil {
		b.WriteByte(' ')
	}
	if l.Offset != nil {
		b.WriteString("Off ")
		b.WriteString(strconv.FormatUint(*l.Offset, 10))
	}
}

func (l *LimitOffset) String() string {
	return cmp.GetKey(l)
}

// Limit paginates the input rows.
type Limit struct {
	Input  Node
	Paging LimitOffset
}

// Columns implements Node.
func (l *Limit) Columns() []Column {
	return l.Input.Columns()
}

// Inputs implements Node.
func (l *Limit) Inputs() []Node {
	return []Node{l.Input}
}

func (l *Limit) String() string {
	return "LimitOffset (" + l.Paging.String() + ")"
}

// Key implements cmp.Key.
func (l *Limit) Key(b *strings.Builder) {
	b.WriteString("LimitOffset (")
	l.Paging.Key(b)
	b.WriteString(") <- ")
	l.Input.Key(b)
}
