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

// Package plandef defines the logical query plan: an immutable operator tree
// produced by the parser, resolved by the analyzer, rewritten by the cache
// manager and the optimizer, and finally handed to the physical planner.
// Trees are never mutated in place; every rewrite builds new nodes.
package plandef

import (
	"strings"

	"github.com/millstonedb/millstone/query/rows"
	"github.com/millstonedb/millstone/util/cmp"
)

// Column describes one output column of a plan node: a name plus the kind of
// value the column carries.
type Column struct {
	Name string
	Type rows.Kind
}

func (c Column) String() string {
	return c.Name + ":" + c.Type.String()
}

// Key implements cmp.Key.
func (c Column) Key(b *strings.Builder) {
	b.WriteString(c.Name)
	b.WriteByte(':')
	b.WriteString(c.Type.String())
}

// A Node is one operator in the logical plan tree. Nodes are immutable once
// constructed.
type Node interface {
	// Columns returns the node's output schema. It returns nil on nodes that
	// have not been resolved by the analyzer yet.
	Columns() []Column
	// Inputs returns the node's child operators, outermost first.
	Inputs() []Node
	// String returns a single-line description of this operator alone (not
	// its inputs).
	String() string
	cmp.Key
}

// Transform rebuilds the tree bottom-up, replacing each node with f(node)
// after its inputs have been transformed. f must return a node with the same
// arity; it may return its argument unchanged. The input tree is not
// modified.
func Transform(n Node, f func(Node) Node) Node {
	switch n := n.(type) {
	case *Scan, *CachedData, *Empty:
		return f(n)
	case *Filter:
		return f(&Filter{Input: Transform(n.Input, f), Predicate: n.Predicate})
	case *Project:
		return f(&Project{Input: Transform(n.Input, f), Refs: n.Refs})
	case *Distinct:
		return f(&Distinct{Input: Transform(n.Input, f)})
	case *Sort:
		return f(&Sort{Input: Transform(n.Input, f), By: n.By})
	case *Limit:
		return f(&Limit{Input: Transform(n.Input, f), Paging: n.Paging})
	}
	// Unknown node types pass through untouched so that injected collaborator
	// stubs can carry their own operators.
	return f(n)
}

// Walk calls f for n and every node beneath it, parents before children.
func Walk(n Node, f func(Node)) {
	f(n)
	for _, in := range n.Inputs() {
		Walk(in, f)
	}
}

// Dump renders the tree as an indented multi-line string, one operator per
// line, children indented below their parent.
func Dump(n Node) string {
	var b strings.Builder
	dumpInto(&b, n, 0)
	return b.String()
}

func dumpInto(b *strings.Builder, n Node, depth int) {
	b.WriteString(strings.Repeat("    ", depth))
	b.WriteString(n.String())
	b.WriteByte('\n')
	for _, in := range n.Inputs() {
		dumpInto(b, in, depth+1)
	}
}
