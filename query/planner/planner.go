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

// Package planner turns optimized logical plans into executable physical
// plans. Where more than one implementation strategy applies (index versus
// sequential scan, sort algorithm), the planner emits every combination as
// an equally valid candidate; it does not rank them. Callers take the first.
//
// The planner runs inside an ambient session published by the pipeline (see
// the session package); it reads the catalog and planning configuration from
// there rather than taking them as parameters.
package planner

import (
	"fmt"

	"github.com/millstonedb/millstone/catalog"
	"github.com/millstonedb/millstone/query/physical"
	"github.com/millstonedb/millstone/query/plandef"
	"github.com/millstonedb/millstone/session"
)

// Planner implements strategy-based physical planning.
type Planner struct{}

// New returns a Planner.
func New() *Planner {
	return &Planner{}
}

// choices pins down one alternative at every choice point the plan has.
type choices struct {
	useIndexes bool
	btreeSort  bool
}

// Plan returns the lazy sequence of candidate physical plans for the given
// logical plan, preferred strategies first. It must be called with a session
// published on the calling goroutine.
func (p *Planner) Plan(plan plandef.Node) (*physical.Candidates, error) {
	sess := session.Planning()
	if sess == nil {
		return nil, fmt.Errorf("planner invoked with no session published on this goroutine")
	}
	cat := sess.Catalog()

	indexChoice := sess.Config().UseIndexes && hasIndexableFilter(plan, cat)
	sortChoice := hasSort(plan)

	var combos []choices
	for _, useIdx := range boolAlternatives(indexChoice) {
		for _, btSort := range boolAlternatives(sortChoice) {
			combos = append(combos, choices{useIndexes: useIdx, btreeSort: btSort})
		}
	}
	builders := make([]func() (physical.Node, error), len(combos))
	for i, combo := range combos {
		combo := combo
		builders[i] = func() (physical.Node, error) {
			return build(plan, combo, cat)
		}
	}
	return physical.NewCandidates(builders...), nil
}

// boolAlternatives returns the orderings tried at a choice point: the
// preferred strategy first, and the fallback only if the plan actually has
// the choice.
func boolAlternatives(present bool) []bool {
	if present {
		return []bool{true, false}
	}
	return []bool{false}
}

func build(n plandef.Node, c choices, cat *catalog.Catalog) (physical.Node, error) {
	switch n := n.(type) {
	case *plandef.Scan:
		tbl, ok := cat.Table(n.Table)
		if !ok {
			return nil, fmt.Errorf("table %q disappeared between analysis and planning", n.Table)
		}
		return &physical.SeqScan{Table: tbl, Cols: n.Cols}, nil
	case *plandef.CachedData:
		return &physical.CachedScan{Source: n.Source, Cols: n.Cols, Data: n.Rows}, nil
	case *plandef.Empty:
		return &physical.Empty{Cols: n.Cols}, nil
	case *plandef.Filter:
		if c.useIndexes {
			if idxScan, ok := planIndexScan(n, cat); ok {
				return idxScan, nil
			}
		}
		in, err := build(n.Input, c, cat)
		if err != nil {
			return nil, err
		}
		return &physical.Filter{Input: in, Predicate: n.Predicate}, nil
	case *plandef.Project:
		in, err := build(n.Input, c, cat)
		if err != nil {
			return nil, err
		}
		return &physical.Project{Input: in, Refs: n.Refs}, nil
	case *plandef.Distinct:
		in, err := build(n.Input, c, cat)
		if err != nil {
			return nil, err
		}
		return &physical.Distinct{Input: in}, nil
	case *plandef.Sort:
		in, err := build(n.Input, c, cat)
		if err != nil {
			return nil, err
		}
		if c.btreeSort {
			return &physical.BTreeSort{Input: in, By: n.By}, nil
		}
		return &physical.MemSort{Input: in, By: n.By}, nil
	case *plandef.Limit:
		in, err := build(n.Input, c, cat)
		if err != nil {
			return nil, err
		}
		return &physical.Limit{Input: in, Paging: n.Paging}, nil
	}
	return nil, fmt.Errorf("no implementation strategy for %T", n)
}

// planIndexScan implements Filter(Scan) as an index probe when the predicate
// compares an indexed column to a literal.
func planIndexScan(f *plandef.Filter, cat *catalog.Catalog) (physical.Node, bool) {
	scan, ok := f.Input.(*plandef.Scan)
	if !ok {
		return nil, false
	}
	ref, op, lit, ok := splitComparison(f.Predicate)
	if !ok {
		return nil, false
	}
	tbl, ok := cat.Table(scan.Table)
	if !ok {
		return nil, false
	}
	idx, ok := tbl.Index(ref.Name)
	if !ok || !idx.Supports(op) {
		return nil, false
	}
	return &physical.IndexScan{
		Table:  tbl,
		Index:  idx,
		Column: ref.Name,
		Op:     op,
		Value:  lit.Value,
		Cols:   scan.Cols,
	}, true
}

// splitComparison matches `col op literal` and `literal op col` predicates,
// normalizing the latter by mirroring the operator.
func splitComparison(e plandef.Expr) (*plandef.ColumnRef, plandef.CompareOp, *plandef.Literal, bool) {
	comparison, ok := e.(*plandef.Comparison)
	if !ok {
		return nil, 0, nil, false
	}
	if ref, ok := comparison.Left.(*plandef.ColumnRef); ok {
		if lit, ok := comparison.Right.(*plandef.Literal); ok && ref.Resolved() {
			return ref, comparison.Op, lit, true
		}
	}
	if lit, ok := comparison.Left.(*plandef.Literal); ok {
		if ref, ok := comparison.Right.(*plandef.ColumnRef); ok && ref.Resolved() {
			return ref, mirror(comparison.Op), lit, true
		}
	}
	return nil, 0, nil, false
}

func mirror(op plandef.CompareOp) plandef.CompareOp {
	switch op {
	case plandef.OpLt:
		return plandef.OpGt
	case plandef.OpLe:
		return plandef.OpGe
	case plandef.OpGt:
		return plandef.OpLt
	case plandef.OpGe:
		return plandef.OpLe
	}
	return op
}

func hasIndexableFilter(plan plandef.Node, cat *catalog.Catalog) bool {
	found := false
	plandef.Walk(plan, func(n plandef.Node) {
		if f, ok := n.(*plandef.Filter); ok && !found {
			_, found = planIndexScan(f, cat)
		}
	})
	return found
}

func hasSort(plan plandef.Node) bool {
	found := false
	plandef.Walk(plan, func(n plandef.Node) {
		if _, ok := n.(*plandef.Sort); ok {
			found = true
		}
	})
	return found
}
