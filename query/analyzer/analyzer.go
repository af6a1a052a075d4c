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

// Package analyzer resolves names and types in a logical plan against the
// catalog. Resolution is best-effort: anything that cannot be bound is left
// unresolved in the output tree, and CheckAnalysis reports every leftover as
// an analysis error. The two halves are split so that a partially-resolved
// plan can still be printed for debugging.
package analyzer

import (
	"fmt"
	"strings"

	"github.com/millstonedb/millstone/catalog"
	"github.com/millstonedb/millstone/query/plandef"
	"github.com/millstonedb/millstone/query/rows"
)

// Error reports why a plan failed analysis. It lists every problem found,
// not just the first.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	return "analysis error: " + strings.Join(e.Problems, "; ")
}

// Analyzer binds logical plans to the catalog.
type Analyzer struct {
	catalog *catalog.Catalog
}

// New returns an Analyzer resolving against the given catalog.
func New(cat *catalog.Catalog) *Analyzer {
	return &Analyzer{catalog: cat}
}

// Execute resolves as much of the plan as it can and returns the resolved
// tree. It does not fail on unresolvable names; use CheckAnalysis for that.
// The input tree is not modified.
func (a *Analyzer) Execute(plan plandef.Node) (plandef.Node, error) {
	return a.resolve(plan), nil
}

func (a *Analyzer) resolve(n plandef.Node) plandef.Node {
	switch n := n.(type) {
	case *plandef.Scan:
		if n.Cols != nil {
			return n
		}
		tbl, ok := a.catalog.Table(n.Table)
		if !ok {
			return n
		}
		return &plandef.Scan{Table: n.Table, Cols: tbl.Columns()}
	case *plandef.Filter:
		in := a.resolve(n.Input)
		return &plandef.Filter{
			Input:     in,
			Predicate: bindExpr(n.Predicate, in.Columns()),
		}
	case *plandef.Project:
		in := a.resolve(n.Input)
		refs := make([]*plandef.ColumnRef, len(n.Refs))
		for i, r := range n.Refs {
			refs[i] = bindRef(r, in.Columns())
		}
		return &plandef.Project{Input: in, Refs: refs}
	case *plandef.Distinct:
		return &plandef.Distinct{Input: a.resolve(n.Input)}
	case *plandef.Sort:
		in := a.resolve(n.Input)
		by := make([]plandef.SortKey, len(n.By))
		for i, k := range n.By {
			by[i] = plandef.SortKey{
				On:         bindRef(k.On, in.Columns()),
				Descending: k.Descending,
			}
		}
		return &plandef.Sort{Input: in, By: by}
	case *plandef.Limit:
		return &plandef.Limit{Input: a.resolve(n.Input), Paging: n.Paging}
	}
	return n
}

// bindRef resolves a column reference against the input schema, returning
// the ref unchanged if it cannot be bound (unknown name, or the input is
// itself unresolved).
func bindRef(ref *plandef.ColumnRef, cols []plandef.Column) *plandef.ColumnRef {
	if ref.Resolved() || cols == nil {
		return ref
	}
	for i, col := range cols {
		if col.Name == ref.Name {
			return &plandef.ColumnRef{Name: ref.Name, Index: i, ColType: col.Type}
		}
	}
	return ref
}

func bindExpr(e plandef.Expr, cols []plandef.Column) plandef.Expr {
	switch e := e.(type) {
	case *plandef.ColumnRef:
		return bindRef(e, cols)
	case *plandef.Comparison:
		left := bindExpr(e.Left, cols)
		right := bindExpr(e.Right, cols)
		left, right = coerce(left, right)
		return &plandef.Comparison{Op: e.Op, Left: left, Right: right}
	case *plandef.And:
		return &plandef.And{
			Left:  bindExpr(e.Left, cols),
			Right: bindExpr(e.Right, cols),
		}
	}
	return e
}

// coerce widens an integer literal to a float when compared against a float
// operand, so `price > 10` works on a FLOAT column.
func coerce(left, right plandef.Expr) (plandef.Expr, plandef.Expr) {
	if l, ok := left.(*plandef.Literal); ok {
		return widen(l, right), right
	}
	if r, ok := right.(*plandef.Literal); ok {
		return left, widen(r, left)
	}
	return left, right
}

func widen(lit *plandef.Literal, other plandef.Expr) plandef.Expr {
	if lit.Value.Kind() == rows.KindInt64 && other.Resolved() && other.Type() == rows.KindFloat64 {
		return &plandef.Literal{Value: rows.Float64(float64(lit.Value.AsInt64()))}
	}
	return lit
}

// CheckAnalysis walks the plan and returns an *Error listing everything
// still unresolved or ill-typed. A nil return means the plan is fully
// analyzable and safe to hand to later stages.
func (a *Analyzer) CheckAnalysis(plan plandef.Node) error {
	var problems []string
	plandef.Walk(plan, func(n plandef.Node) {
		switch n := n.(type) {
		case *plandef.Scan:
			if n.Cols == nil {
				problems = append(problems, fmt.Sprintf("unknown table %q", n.Table))
			}
		case *plandef.Filter:
			problems = append(problems, checkExpr(n.Predicate)...)
			if n.Predicate.Resolved() && n.Predicate.Type() != rows.KindBool {
				problems = append(problems,
					fmt.Sprintf("filter predicate %v is not boolean", n.Predicate))
			}
		case *plandef.Project:
			for _, r := range n.Refs {
				problems = append(problems, checkExpr(r)...)
			}
		case *plandef.Sort:
			for _, k := range n.By {
				problems = append(problems, checkExpr(k.On)...)
			}
		}
	})
	if len(problems) > 0 {
		return &Error{Problems: problems}
	}
	return nil
}

func checkExpr(e plandef.Expr) []string {
	switch e := e.(type) {
	case *plandef.ColumnRef:
		if !e.Resolved() {
			return []string{fmt.Sprintf("unknown column %q", e.Name)}
		}
	case *plandef.Comparison:
		problems := append(checkExpr(e.Left), checkExpr(e.Right)...)
		if e.Left.Resolved() && e.Right.Resolved() &&
			e.Left.Type() != e.Right.Type() &&
			e.Left.Type() != rows.KindNull && e.Right.Type() != rows.KindNull {
			problems = append(problems,
				fmt.Sprintf("cannot compare %v to %v in %v",
					e.Left.Type(), e.Right.Type(), e))
		}
		return problems
	case *plandef.And:
		return append(checkExpr(e.Left), checkExpr(e.Right)...)
	}
	return nil
}
