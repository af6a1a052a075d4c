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

// Expr is a scalar expression evaluated against an operator's input rows.
type Expr interface {
	// Type returns the kind of value the expression produces. It is only
	// meaningful once the expression is resolved.
	Type() rows.Kind
	// Resolved reports whether the expression and everything below it has
	// been bound by the analyzer.
	Resolved() bool
	String() string
	cmp.Key
}

// ColumnRef names a column of the operator's input. The parser emits
// unresolved refs (Index == -1); the analyzer rebinds them with the input
// ordinal and type filled in.
type ColumnRef struct {
	Name string
	// Index is the ordinal of the column in the operator's input schema, or
	// -1 while unresolved.
	Index   int
	ColType rows.Kind
}

// UnresolvedColumn returns a ColumnRef that has not been bound yet.
func UnresolvedColumn(name string) *ColumnRef {
	return &ColumnRef{Name: name, Index: -1}
}

// Type implements Expr.
func (c *ColumnRef) Type() rows.Kind {
	return c.ColType
}

// Resolved implements Expr.
func (c *ColumnRef) Resolved() bool {
	return c.Index >= 0
}

func (c *ColumnRef) String() string {
	if !c.Resolved() {
		return "'" + c.Name
	}
	return c.Name + "#" + strconv.Itoa(c.Index)
}

// Key implements cmp.Key.
func (c *ColumnRef) Key(b *strings.Builder) {
	b.WriteString(c.String())
}

// Literal is a constant value.
type Literal struct {
	Value rows.Value
}

// Type implements Expr.
func (l *Literal) Type() rows.Kind {
	return l.Value.Kind()
}

// Resolved implements Expr.
func (l *Literal) Resolved() bool {
	return true
}

func (l *Literal) String() string {
	if l.Value.Kind() == rows.KindString {
		return strconv.Quote(l.Value.AsString())
	}
	return l.Value.String()
}

// Key implements cmp.Key.
func (l *Literal) Key(b *strings.Builder) {
	l.Value.Key(b)
}

// CompareOp is the operator of a Comparison.
type CompareOp uint8

// The supported comparison operators.
const (
	OpEq CompareOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

func (op CompareOp) String() string {
	switch op {
	case OpEq:
		return "="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	}
	return "?op"
}

// Eval applies the operator to the result of comparing two values.
func (op CompareOp) Eval(cmp int) bool {
	switch op {
	case OpEq:
		return cmp == 0
	case OpNe:
		return cmp != 0
	case OpLt:
		return cmp < 0
	case OpLe:
		return cmp <= 0
	case OpGt:
		return cmp > 0
	case OpGe:
		return cmp >= 0
	}
	return false
}

// Comparison is a boolean expression comparing two operands.
type Comparison struct {
	Op    CompareOp
	Left  Expr
	Right Expr
}

// Type implements Expr.
func (c *Comparison) Type() rows.Kind {
	return rows.KindBool
}

// Resolved implements Expr.
func (c *Comparison) Resolved() bool {
	return c.Left.Resolved() && c.Right.Resolved()
}

func (c *Comparison) String() string {
	return c.Left.String() + " " + c.Op.String() + " " + c.Right.String()
}

// Key implements cmp.Key.
func (c *Comparison) Key(b *strings.Builder) {
	b.WriteByte('(')
	c.Left.Key(b)
	b.WriteByte(' ')
	b.WriteString(c.Op.String())
	b.WriteByte(' ')
	c.Right.Key(b)
	b.WriteByte(')')
}

// And is the conjunction of two boolean expressions. The parser emits one
// Filter per WHERE conjunct; the optimizer merges adjacent filters into And
// chains.
type And struct {
	Left  Expr
	Right Expr
}

// Type implements Expr.
func (a *And) Type() rows.Kind {
	return rows.KindBool
}

// Resolved implements Expr.
func (a *And) Resolved() bool {
	return a.Left.Resolved() && a.Right.Resolved()
}

func (a *And) String() string {
	return a.Left.String() + " AND " + a.Right.String()
}

// Key implements cmp.Key.
func (a *And) Key(b *strings.Builder) {
	b.WriteByte('(')
	a.Left.Key(b)
	b.WriteString(" AND ")
	a.Right.Key(b)
	b.WriteByte(')')
}

// SortKey is one ORDER BY term: a column of the operator's input plus a
// direction.
type SortKey struct {
	On         *ColumnRef
	Descending bool
}

func (s SortKey) String() string {
	dir := "asc"
	if s.Descending {
		dir = "desc"
	}
	return dir + "(" + s.On.String() + ")"
}

// Key implements cmp.Key.
func (s SortKey) Key(b *strings.Builder) {
	b.WriteString(s.String())
}
