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

package physical

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/millstonedb/millstone/catalog"
	"github.com/millstonedb/millstone/query/plandef"
	"github.com/millstonedb/millstone/query/rows"
	"github.com/millstonedb/millstone/util/cmp"
	"github.com/tidwall/btree"
)

// SeqScan reads every row of a table, fetching BatchSize rows at a time
// from the table snapshot.
type SeqScan struct {
	Table *catalog.Table
	Cols  []plandef.Column
	// BatchSize is the fetch granularity; 0 means fetch everything at once.
	// The prepare pass fills it in from session configuration.
	BatchSize int
}

// Columns implements Node.
func (s *SeqScan) Columns() []plandef.Column {
	return s.Cols
}

// Inputs implements Node.
func (s *SeqScan) Inputs() []Node {
	return nil
}

func (s *SeqScan) String() string {
	out := "SeqScan " + s.Table.Name()
	if s.BatchSize > 0 {
		out += " batch=" + strconv.Itoa(s.BatchSize)
	}
	return out
}

// Run implements Node. The snapshot is taken here, so the scan is not
// affected by inserts that land while the query streams.
func (s *SeqScan) Run(ctx context.Context) rows.Iterator {
	return &seqScanIterator{
		pending: s.Table.Snapshot(),
		batch:   s.BatchSize,
	}
}

type seqScanIterator struct {
	pending []rows.Row
	buf     []rows.Row
	pos     int
	batch   int
}

func (it *seqScanIterator) Next(ctx context.Context) (rows.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if it.pos >= len(it.buf) {
		if len(it.pending) == 0 {
			return nil, io.EOF
		}
		n := len(it.pending)
		if it.batch > 0 && it.batch < n {
			n = it.batch
		}
		it.buf, it.pending = it.pending[:n], it.pending[n:]
		it.pos = 0
	}
	row := it.buf[it.pos]
	it.pos++
	return row, nil
}

// IndexScan reads the rows matching `Column Op Value` from a secondary
// index, in key order.
type IndexScan struct {
	Table  *catalog.Table
	Index  *catalog.Index
	Column string
	Op     plandef.CompareOp
	Value  rows.Value
	Cols   []plandef.Column
}

// Columns implements Node.
func (s *IndexScan) Columns() []plandef.Column {
	return s.Cols
}

// Inputs implements Node.
func (s *IndexScan) Inputs() []Node {
	return nil
}

func (s *IndexScan) String() string {
	return fmt.Sprintf("IndexScan %s (%s %v %v)",
		s.Table.Name(), s.Column, s.Op, s.Value)
}

// Run implements Node. The index is probed here; rows stream lazily.
func (s *IndexScan) Run(ctx context.Context) rows.Iterator {
	return rows.NewSliceIterator(s.Index.Lookup(s.Op, s.Value))
}

// CachedScan replays the materialized result of a cached sub-plan.
type CachedScan struct {
	Source string
	Cols   []plandef.Column
	Data   []rows.Row
}

// Columns implements Node.
func (s *CachedScan) Columns() []plandef.Column {
	return s.Cols
}

// Inputs implements Node.
func (s *CachedScan) Inputs() []Node {
	return nil
}

func (s *CachedScan) String() string {
	return "CachedScan (" + strconv.Itoa(len(s.Data)) + " rows)"
}

// Run implements Node.
func (s *CachedScan) Run(ctx context.Context) rows.Iterator {
	return rows.NewSliceIterator(s.Data)
}

// Empty produces no rows.
type Empty struct {
	Cols []plandef.Column
}

// Columns implements Node.
func (e *Empty) Columns() []plandef.Column {
	return e.Cols
}

// Inputs implements Node.
func (e *Empty) Inputs() []Node {
	return nil
}

func (e *Empty) String() string {
	return "Empty"
}

// Run implements Node.
func (e *Empty) Run(ctx context.Context) rows.Iterator {
	return rows.NewSliceIterator(nil)
}

// Filter passes through the input rows matching the predicate.
type Filter struct {
	Input     Node
	Predicate plandef.Expr
}

// Columns implements Node.
func (f *Filter) Columns() []plandef.Column {
	return f.Input.Columns()
}

// Inputs implements Node.
func (f *Filter) Inputs() []Node {
	return []Node{f.Input}
}

func (f *Filter) String() string {
	return "Filter " + f.Predicate.String()
}

// Run implements Node.
func (f *Filter) Run(ctx context.Context) rows.Iterator {
	return &filterIterator{input: f.Input.Run(ctx), pred: f.Predicate}
}

type filterIterator struct {
	input rows.Iterator
	pred  plandef.Expr
}

func (it *filterIterator) Next(ctx context.Context) (rows.Row, error) {
	for {
		row, err := it.input.Next(ctx)
		if err != nil {
			return nil, err
		}
		keep, err := EvalPredicate(it.pred, row)
		if err != nil {
			return nil, err
		}
		if keep {
			return row, nil
		}
	}
}

// Project narrows each input row to the referenced columns.
type Project struct {
	Input Node
	Refs  []*plandef.ColumnRef
}

// Columns implements Node.
func (p *Project) Columns() []plandef.Column {
	out := make([]plandef.Column, len(p.Refs))
	for i, r := range p.Refs {
		out[i] = plandef.Column{Name: r.Name, Type: r.ColType}
	}
	return out
}

// Inputs implements Node.
func (p *Project) Inputs() []Node {
	return []Node{p.Input}
}

func (p *Project) String() string {
	out := "Project"
	for _, r := range p.Refs {
		out += " " + r.String()
	}
	return out
}

// Run implements Node.
func (p *Project) Run(ctx context.Context) rows.Iterator {
	return &projectIterator{input: p.Input.Run(ctx), refs: p.Refs}
}

type projectIterator struct {
	input rows.Iterator
	refs  []*plandef.ColumnRef
}

func (it *projectIterator) Next(ctx context.Context) (rows.Row, error) {
	row, err := it.input.Next(ctx)
	if err != nil {
		return nil, err
	}
	out := make(rows.Row, len(it.refs))
	for i, r := range it.refs {
		if r.Index < 0 || r.Index >= len(row) {
			return nil, fmt.Errorf("projection ref %v out of range for %d-column row", r, len(row))
		}
		out[i] = row[r.Index]
	}
	return out, nil
}

// Distinct drops duplicate rows, keeping first occurrences in input order.
type Distinct struct {
	Input Node
}

// Columns implements Node.
func (d *Distinct) Columns() []plandef.Column {
	return d.Input.Columns()
}

// Inputs implements Node.
func (d *Distinct) Inputs() []Node {
	return []Node{d.Input}
}

func (d *Distinct) String() string {
	return "Distinct"
}

// Run implements Node.
func (d *Distinct) Run(ctx context.Context) rows.Iterator {
	return &distinctIterator{
		input: d.Input.Run(ctx),
		seen:  make(map[string]struct{}),
	}
}

type distinctIterator struct {
	input rows.Iterator
	seen  map[string]struct{}
}

func (it *distinctIterator) Next(ctx context.Context) (rows.Row, error) {
	for {
		row, err := it.input.Next(ctx)
		if err != nil {
			return nil, err
		}
		key := cmp.GetKey(row)
		if _, dup := it.seen[key]; dup {
			continue
		}
		it.seen[key] = struct{}{}
		return row, nil
	}
}

// MemSort buffers the whole input and sorts it in memory.
type MemSort struct {
	Input Node
	By    []plandef.SortKey
}

// Columns implements Node.
func (s *MemSort) Columns() []plandef.Column {
	return s.Input.Columns()
}

// Inputs implements Node.
func (s *MemSort) Inputs() []Node {
	return []Node{s.Input}
}

func (s *MemSort) String() string {
	out := "MemSort"
	for _, k := range s.By {
		out += " " + k.String()
	}
	return out
}

// Run implements Node.
func (s *MemSort) Run(ctx context.Context) rows.Iterator {
	return &memSortIterator{input: s.Input.Run(ctx), by: s.By}
}

type memSortIterator struct {
	input  rows.Iterator
	by     []plandef.SortKey
	sorted rows.Iterator
}

func (it *memSortIterator) Next(ctx context.Context) (rows.Row, error) {
	if it.sorted == nil {
		buf, err := rows.Collect(ctx, it.input)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(buf, func(i, j int) bool {
			return compareByKeys(buf[i], buf[j], it.by) < 0
		})
		it.sorted = rows.NewSliceIterator(buf)
	}
	return it.sorted.Next(ctx)
}

// BTreeSort feeds the input through an ordered tree, trading allocations
// for not re-sorting on repeated key ranges. It is equivalent to MemSort in
// output; the planner offers both as equally valid candidates.
type BTreeSort struct {
	Input Node
	By    []plandef.SortKey
}

// Columns implements Node.
func (s *BTreeSort) Columns() []plandef.Column {
	return s.Input.Columns()
}

// Inputs implements Node.
func (s *BTreeSort) Inputs() []Node {
	return []Node{s.Input}
}

func (s *BTreeSort) String() string {
	out := "BTreeSort"
	for _, k := range s.By {
		out += " " + k.String()
	}
	return out
}

// Run implements Node.
func (s *BTreeSort) Run(ctx context.Context) rows.Iterator {
	return &btreeSortIterator{input: s.Input.Run(ctx), by: s.By}
}

type btreeSortEntry struct {
	row rows.Row
	seq uint64
}

type btreeSortIterator struct {
	input  rows.Iterator
	by     []plandef.SortKey
	sorted rows.Iterator
}

func (it *btreeSortIterator) Next(ctx context.Context) (rows.Row, error) {
	if it.sorted == nil {
		by := it.by
		tree := btree.NewBTreeG(func(a, b btreeSortEntry) bool {
			if c := compareByKeys(a.row, b.row, by); c != 0 {
				return c < 0
			}
			return a.seq < b.seq // stable order for equal keys
		})
		var seq uint64
		for {
			row, err := it.input.Next(ctx)
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, err
			}
			seq++
			tree.Set(btreeSortEntry{row: row, seq: seq})
		}
		buf := make([]rows.Row, 0, tree.Len())
		tree.Scan(func(e btreeSortEntry) bool {
			buf = append(buf, e.row)
			return true
		})
		it.sorted = rows.NewSliceIterator(buf)
	}
	return it.sorted.Next(ctx)
}

func compareByKeys(a, b rows.Row, by []plandef.SortKey) int {
	for _, k := range by {
		c := a[k.On.Index].Compare(b[k.On.Index])
		if k.Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// Limit applies LIMIT/OFFSET paging and stops pulling its input once the
// limit is satisfied.
type Limit struct {
	Input  Node
	Paging plandef.LimitOffset
}

// Columns implements Node.
func (l *Limit) Columns() []plandef.Column {
	return l.Input.Columns()
}

// Inputs implements Node.
func (l *Limit) Inputs() []Node {
	return []Node{l.Input}
}

func (l *Limit) String() string {
	return "LimitOffset (" + l.Paging.String() + ")"
}

// Run implements Node.
func (l *Limit) Run(ctx context.Context) rows.Iterator {
	it := &limitIterator{input: l.Input.Run(ctx)}
	if l.Paging.Offset != nil {
		it.toSkip = *l.Paging.Offset
	}
	if l.Paging.Limit != nil {
		it.remaining = *l.Paging.Limit
		it.limited = true
	}
	return it
}

type limitIterator struct {
	input     rows.Iterator
	toSkip    uint64
	remaining uint64
	limited   bool
}

func (it *limitIterator) Next(ctx context.Context) (rows.Row, error) {
	for it.toSkip > 0 {
		if _, err := it.input.Next(ctx); err != nil {
			return nil, err
		}
		it.toSkip--
	}
	if it.limited && it.remaining == 0 {
		return nil, io.EOF
	}
	row, err := it.input.Next(ctx)
	if err != nil {
		return nil, err
	}
	if it.limited {
		it.remaining--
	}
	return row, nil
}

// SchemaGuard is inserted at the plan root by the prepare pass. It checks
// that every produced row matches the declared schema arity, turning operator
// bugs into errors instead of corrupt results.
type SchemaGuard struct {
	Input Node
}

// Columns implements Node.
func (g *SchemaGuard) Columns() []plandef.Column {
	return g.Input.Columns()
}

// Inputs implements Node.
func (g *SchemaGuard) Inputs() []Node {
	return []Node{g.Input}
}

func (g *SchemaGuard) String() string {
	return "SchemaGuard"
}

// Run implements Node.
func (g *SchemaGuard) Run(ctx context.Context) rows.Iterator {
	return &guardIterator{input: g.Input.Run(ctx), want: len(g.Columns())}
}

type guardIterator struct {
	input rows.Iterator
	want  int
}

func (it *guardIterator) Next(ctx context.Context) (rows.Row, error) {
	row, err := it.input.Next(ctx)
	if err != nil {
		return nil, err
	}
	if len(row) != it.want {
		return nil, fmt.Errorf("operator produced a %d-column row, schema has %d columns",
			len(row), it.want)
	}
	return row, nil
}

// EvalPredicate evaluates a boolean expression against a row. Comparisons
// involving NULL are false, matching SQL's treatment of unknown.
func EvalPredicate(e plandef.Expr, row rows.Row) (bool, error) {
	switch e := e.(type) {
	case *plandef.Literal:
		if e.Value.Kind() != rows.KindBool {
			return false, fmt.Errorf("predicate literal %v is not boolean", e)
		}
		return e.Value.AsBool(), nil
	case *plandef.Comparison:
		left, err := evalOperand(e.Left, row)
		if err != nil {
			return false, err
		}
		right, err := evalOperand(e.Right, row)
		if err != nil {
			return false, err
		}
		if left.Kind() == rows.KindNull || right.Kind() == rows.KindNull {
			return false, nil
		}
		return e.Op.Eval(left.Compare(right)), nil
	case *plandef.And:
		left, err := EvalPredicate(e.Left, row)
		if err != nil || !left {
			return false, err
		}
		return EvalPredicate(e.Right, row)
	}
	return false, fmt.Errorf("unsupported predicate %T", e)
}

func evalOperand(e plandef.Expr, row rows.Row) (rows.Value, error) {
	switch e := e.(type) {
	case *plandef.ColumnRef:
		if e.Index < 0 || e.Index >= len(row) {
			return rows.Null(), fmt.Errorf("column ref %v out of range for %d-column row", e, len(row))
		}
		return row[e.Index], nil
	case *plandef.Literal:
		return e.Value, nil
	}
	return rows.Null(), fmt.Errorf("unsupported operand %T", e)
}
