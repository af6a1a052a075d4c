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

// Package optimizer applies rewrite rules to resolved logical plans. Rules
// are pure tree rewrites run to a fixpoint; there is no cost model.
package optimizer

import (
	"github.com/millstonedb/millstone/query/plandef"
	"github.com/millstonedb/millstone/query/rows"
	log "github.com/sirupsen/logrus"
)

// A Rule rewrites a single node, after that node's inputs have already been
// rewritten. It returns the replacement node and whether it changed
// anything.
type Rule struct {
	Name  string
	Apply func(plandef.Node) (plandef.Node, bool)
}

var rules = []Rule{
	{Name: "FoldConstantComparisons", Apply: foldConstantComparisons},
	{Name: "MergeFilters", Apply: mergeFilters},
	{Name: "CollapseProjects", Apply: collapseProjects},
	{Name: "DropNoopProject", Apply: dropNoopProject},
	{Name: "PruneEmpty", Apply: pruneEmpty},
}

// maxPasses bounds the fixpoint loop. The rule set shrinks the tree, so it
// converges long before this; the bound guards against a future rule pair
// that flip-flops.
const maxPasses = 10

// Optimizer rewrites resolved logical plans.
type Optimizer struct {
	rules []Rule
}

// New returns an Optimizer with the standard rule set.
func New() *Optimizer {
	return &Optimizer{rules: rules}
}

// Execute rewrites the plan with every rule until no rule fires. The input
// tree is not modified.
func (o *Optimizer) Execute(plan plandef.Node) (plandef.Node, error) {
	for pass := 0; pass < maxPasses; pass++ {
		changed := false
		plan = plandef.Transform(plan, func(n plandef.Node) plandef.Node {
			for _, rule := range o.rules {
				out, fired := rule.Apply(n)
				if fired {
					log.WithFields(log.Fields{
						"rule": rule.Name,
						"pass": pass,
					}).Debug("Applied optimizer rule")
					changed = true
					n = out
				}
			}
			return n
		})
		if !changed {
			break
		}
	}
	return plan, nil
}

// foldConstantComparisons evaluates comparisons between two literals inside
// a filter predicate. A predicate that folds to true drops the filter; one
// that folds to false replaces the whole filter with Empty.
func foldConstantComparisons(n plandef.Node) (plandef.Node, bool) {
	filter, ok := n.(*plandef.Filter)
	if !ok {
		return n, false
	}
	pred, changed := foldExpr(filter.Predicate)
	if lit, ok := pred.(*plandef.Literal); ok && lit.Value.Kind() == rows.KindBool {
		if lit.Value.AsBool() {
			return filter.Input, true
		}
		return &plandef.Empty{Cols: filter.Columns()}, true
	}
	if !changed {
		return n, false
	}
	return &plandef.Filter{Input: filter.Input, Predicate: pred}, true
}

func foldExpr(e plandef.Expr) (plandef.Expr, bool) {
	switch e := e.(type) {
	case *plandef.Comparison:
		left, lok := e.Left.(*plandef.Literal)
		right, rok := e.Right.(*plandef.Literal)
		if !lok || !rok || left.Value.Kind() != right.Value.Kind() {
			return e, false
		}
		verdict := e.Op.Eval(left.Value.Compare(right.Value))
		return &plandef.Literal{Value: rows.Bool(verdict)}, true
	case *plandef.And:
		left, lchanged := foldExpr(e.Left)
		right, rchanged := foldExpr(e.Right)
		if lit, ok := left.(*plandef.Literal); ok && lit.Value.Kind() == rows.KindBool {
			if lit.Value.AsBool() {
				return right, true
			}
			return lit, true
		}
		if lit, ok := right.(*plandef.Literal); ok && lit.Value.Kind() == rows.KindBool {
			if lit.Value.AsBool() {
				return left, true
			}
			return lit, true
		}
		if !lchanged && !rchanged {
			return e, false
		}
		return &plandef.And{Left: left, Right: right}, true
	}
	return e, false
}

// mergeFilters combines directly nested filters into one with a conjoined
// predicate, so the executor evaluates a single filter operator.
func mergeFilters(n plandef.Node) (plandef.Node, bool) {
	outer, ok := n.(*plandef.Filter)
	if !ok {
		return n, false
	}
	inner, ok := outer.Input.(*plandef.Filter)
	if !ok {
		return n, false
	}
	return &plandef.Filter{
		Input:     inner.Input,
		Predicate: &plandef.And{Left: inner.Predicate, Right: outer.Predicate},
	}, true
}

// collapseProjects rewrites Project(Project(x)) into a single Project by
// mapping the outer refs through the inner projection. Requires both levels
// to be resolved.
func collapseProjects(n plandef.Node) (plandef.Node, bool) {
	outer, ok := n.(*plandef.Project)
	if !ok {
		return n, false
	}
	inner, ok := outer.Input.(*plandef.Project)
	if !ok {
		return n, false
	}
	refs := make([]*plandef.ColumnRef, len(outer.Refs))
	for i, r := range outer.Refs {
		if !r.Resolved() || r.Index >= len(inner.Refs) || !inner.Refs[r.Index].Resolved() {
			return n, false
		}
		refs[i] = inner.Refs[r.Index]
	}
	return &plandef.Project{Input: inner.Input, Refs: refs}, true
}

// dropNoopProject removes a Project that keeps all of its input's columns in
// their original order.
func dropNoopProject(n plandef.Node) (plandef.Node, bool) {
	proj, ok := n.(*plandef.Project)
	if !ok {
		return n, false
	}
	in := proj.Input.Columns()
	if in == nil || len(proj.Refs) != len(in) {
		return n, false
	}
	for i, r := range proj.Refs {
		if !r.Resolved() || r.Index != i || r.Name != in[i].Name {
			return n, false
		}
	}
	return proj.Input, true
}

// pruneEmpty propagates Empty upwards: any row-preserving operator over no
// rows produces no rows.
func pruneEmpty(n plandef.Node) (plandef.Node, bool) {
	ins := n.Inputs()
	if len(ins) != 1 {
		return n, false
	}
	if _, ok := ins[0].(*plandef.Empty); !ok {
		return n, false
	}
	switch n.(type) {
	case *plandef.Filter, *plandef.Project, *plandef.Distinct, *plandef.Sort, *plandef.Limit:
		return &plandef.Empty{Cols: n.Columns()}, true
	}
	return n, false
}
