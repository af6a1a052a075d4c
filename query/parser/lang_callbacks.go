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

package parser

import (
	"fmt"
	"strings"

	"github.com/millstonedb/millstone/query/plandef"
	"github.com/millstonedb/millstone/query/rows"
	"github.com/vektah/goparsify"
)

// distinctMarker is the parse result of the DISTINCT keyword.
type distinctMarker struct{}

// starList is the parse result of a `*` select list.
type starList struct{}

func literalNull(n *goparsify.Result) {
	n.Result = rows.Null()
}

func literalBool(n *goparsify.Result) {
	n.Result = rows.Bool(strings.EqualFold(n.Token, "TRUE"))
}

func literalNumber(n *goparsify.Result) {
	switch v := n.Result.(type) {
	case int64:
		n.Result = rows.Int64(v)
	case float64:
		n.Result = rows.Float64(v)
	default:
		panic(fmt.Sprintf("unsupported number literal: '%s' %v", n.Token, v))
	}
}

func literalString(n *goparsify.Result) {
	n.Result = rows.String(n.Token)
}

func literalExpr(n *goparsify.Result) {
	n.Result = &plandef.Literal{Value: n.Result.(rows.Value)}
}

func columnRef(n *goparsify.Result) {
	n.Result = plandef.UnresolvedColumn(n.Token)
}

func compareOp(n *goparsify.Result) {
	switch n.Token {
	case "=":
		n.Result = plandef.OpEq
	case "!=", "<>":
		n.Result = plandef.OpNe
	case "<":
		n.Result = plandef.OpLt
	case "<=":
		n.Result = plandef.OpLe
	case ">":
		n.Result = plandef.OpGt
	case ">=":
		n.Result = plandef.OpGe
	default:
		panic(fmt.Sprintf("unsupported comparison operator: %s", n.Token))
	}
}

func comparison(n *goparsify.Result) {
	n.Result = &plandef.Comparison{
		Op:    n.Child[1].Result.(plandef.CompareOp),
		Left:  n.Child[0].Result.(plandef.Expr),
		Right: n.Child[2].Result.(plandef.Expr),
	}
}

func whereClause(n *goparsify.Result) {
	conjuncts := make([]plandef.Expr, 0, len(n.Child[2].Child))
	for _, c := range n.Child[2].Child {
		conjuncts = append(conjuncts, c.Result.(plandef.Expr))
	}
	n.Result = conjuncts
}

func limitOffset(n *goparsify.Result) {
	limit := n.Child[0].Result.(uint64)
	res := plandef.LimitOffset{
		Limit: &limit,
	}
	if n.Child[1].Result != nil {
		offset := n.Child[1].Result.(uint64)
		res.Offset = &offset
	}
	n.Result = res
}

func offsetLimit(n *goparsify.Result) {
	offset := n.Child[0].Result.(uint64)
	res := plandef.LimitOffset{
		Offset: &offset,
	}
	if n.Child[1].Result != nil {
		limit := n.Child[1].Result.(uint64)
		res.Limit = &limit
	}
	n.Result = res
}

func sortItem(n *goparsify.Result) {
	n.Result = plandef.SortKey{
		On:         plandef.UnresolvedColumn(n.Child[0].Token),
		Descending: strings.EqualFold(n.Child[1].Token, "DESC"),
	}
}

func orderBys(n *goparsify.Result) {
	items := n.Child[3]
	res := make([]plandef.SortKey, 0, len(items.Child))
	for _, c := range items.Child {
		res = append(res, c.Result.(plandef.SortKey))
	}
	n.Result = res
}

func selectExprs(n *goparsify.Result) {
	if n.Token == "*" {
		n.Result = starList{}
		return
	}
	refs := make([]*plandef.ColumnRef, 0, len(n.Child))
	for _, c := range n.Child {
		refs = append(refs, plandef.UnresolvedColumn(c.Token))
	}
	n.Result = refs
}

// selectStmt assembles the unresolved logical plan bottom-up: scan, one
// filter per WHERE conjunct, sort, projection, distinct, then paging. The
// sort sits below the projection so a query may order by a column it does
// not return.
func selectStmt(n *goparsify.Result) {
	var plan plandef.Node = &plandef.Scan{Table: n.Child[4].Token}
	if n.Child[5].Result != nil {
		for _, pred := range n.Child[5].Result.([]plandef.Expr) {
			plan = &plandef.Filter{Input: plan, Predicate: pred}
		}
	}
	if n.Child[6].Result != nil {
		plan = &plandef.Sort{Input: plan, By: n.Child[6].Result.([]plandef.SortKey)}
	}
	if refs, ok := n.Child[2].Result.([]*plandef.ColumnRef); ok {
		plan = &plandef.Project{Input: plan, Refs: refs}
	}
	if n.Child[1].Result != nil {
		plan = &plandef.Distinct{Input: plan}
	}
	if n.Child[7].Result != nil {
		plan = &plandef.Limit{Input: plan, Paging: n.Child[7].Result.(plandef.LimitOffset)}
	}
	n.Result = &Select{Plan: plan}
}

func typeName(n *goparsify.Result) {
	switch strings.ToUpper(n.Token) {
	case "INT":
		n.Result = rows.KindInt64
	case "FLOAT":
		n.Result = rows.KindFloat64
	case "STRING":
		n.Result = rows.KindString
	case "BOOL":
		n.Result = rows.KindBool
	default:
		panic(fmt.Sprintf("unsupported column type: %s", n.Token))
	}
}

func columnDef(n *goparsify.Result) {
	n.Result = plandef.Column{
		Name: n.Child[0].Token,
		Type: n.Child[1].Result.(rows.Kind),
	}
}

func createTable(n *goparsify.Result) {
	defs := n.Child[5]
	cols := make([]plandef.Column, 0, len(defs.Child))
	for _, c := range defs.Child {
		cols = append(cols, c.Result.(plandef.Column))
	}
	n.Result = &CreateTable{Table: n.Child[3].Token, Cols: cols}
}

func createIndex(n *goparsify.Result) {
	n.Result = &CreateIndex{Table: n.Child[4].Token, Column: n.Child[6].Token}
}

func rowLit(n *goparsify.Result) {
	vals := n.Child[2]
	row := make(rows.Row, 0, len(vals.Child))
	for _, c := range vals.Child {
		row = append(row, c.Result.(rows.Value))
	}
	n.Result = row
}

func insertStmt(n *goparsify.Result) {
	literals := n.Child[5]
	res := &Insert{Table: n.Child[3].Token}
	res.Rows = make([]rows.Row, 0, len(literals.Child))
	for _, c := range literals.Child {
		res.Rows = append(res.Rows, c.Result.(rows.Row))
	}
	n.Result = res
}

// child is a helper to generate a goparsify Map function that will grab a
// child result at a specific index and set it as the result for this node.
// This is useful for picking out the interesting part of a Seq().
func child(idx int) func(*goparsify.Result) {
	return func(n *goparsify.Result) {
		n.Result = n.Child[idx].Result
	}
}
