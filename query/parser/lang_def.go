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
	p "github.com/vektah/goparsify"
)

var (
	// statementRoot is the parser function called by Parse. It extracts a
	// complete statement in its entirety.
	statementRoot p.Parser
	// literal is the parser function for a single literal value. INSERT rows
	// and comparison operands are built from it.
	literal p.Parser
)

func init() {
	// If you need to debug what the parser is doing, you can enable
	// goparsify's built in debug support by building with -tags debug. See
	// https://github.com/vektah/goparsify#debugging-parsers for details.

	nullLit := ignoreCase("NULL").Map(literalNull)
	boolLit := p.Any(ignoreCase("TRUE"), ignoreCase("FALSE")).Map(literalBool) // true || false
	numberLit := p.NumberLit().Map(literalNumber)                              // 9 || 3.14159
	stringLit := p.StringLit(`"'`).Map(literalString)                          // "Heat" || 'Heat'
	literal = p.Any(nullLit, boolLit, numberLit, stringLit)

	columnRef := identifier().Map(columnRef) // year
	operand := p.Any(literal.Map(literalExpr), columnRef)

	// Multi-character operators must come before their single-character
	// prefixes or Any stops at the shorter match.
	compareOp := p.Any("<=", ">=", "<>", "!=", "=", "<", ">").Map(compareOp)
	comparison := p.Seq(operand, compareOp, operand).Map(comparison) // year >= 1990
	whereClause := p.Seq(ignoreCase("WHERE"), p.Cut(), repeatOneOrMore(comparison, ignoreCase("AND"))).Map(whereClause)

	// SolutionModifiers
	limit := p.Seq(ignoreCase("LIMIT"), p.Cut(), uint64Literal()).Map(child(2))
	offset := p.Seq(ignoreCase("OFFSET"), p.Cut(), uint64Literal()).Map(child(2))
	limitOffset := p.Any(
		p.Seq(limit, p.Maybe(offset)).Map(limitOffset),
		p.Seq(offset, p.Maybe(limit)).Map(offsetLimit))
	sortItem := p.Seq(identifier(), p.Maybe(p.Any(ignoreCase("ASC"), ignoreCase("DESC")))).Map(sortItem)
	orderBy := p.Seq(ignoreCase("ORDER"), p.Cut(), ignoreCase("BY"), repeatOneOrMore(sortItem, ",")).Map(orderBys)

	distinct := ignoreCase("DISTINCT").Map(func(n *p.Result) {
		n.Result = distinctMarker{}
	})
	selectExprs := p.Any("*", repeatOneOrMore(identifier(), ",")).Map(selectExprs)
	selectStmt := p.Seq(ignoreCase("SELECT"), p.Maybe(distinct), selectExprs,
		ignoreCase("FROM"), identifier(), p.Maybe(whereClause), p.Maybe(orderBy),
		p.Maybe(limitOffset)).Map(selectStmt)

	typeName := p.Any(ignoreCase("INT"), ignoreCase("FLOAT"), ignoreCase("STRING"), ignoreCase("BOOL")).Map(typeName)
	columnDef := p.Seq(identifier(), typeName).Map(columnDef) // year INT
	createTable := p.Seq(ignoreCase("CREATE"), ignoreCase("TABLE"), p.Cut(),
		identifier(), "(", repeatOneOrMore(columnDef, ","), ")").Map(createTable)
	createIndex := p.Seq(ignoreCase("CREATE"), ignoreCase("INDEX"), p.Cut(),
		ignoreCase("ON"), identifier(), "(", identifier(), ")").Map(createIndex)

	rowLit := p.Seq("(", p.Cut(), repeatZeroOrMore(literal, ","), ")").Map(rowLit)
	insertStmt := p.Seq(ignoreCase("INSERT"), ignoreCase("INTO"), p.Cut(),
		identifier(), ignoreCase("VALUES"), repeatOneOrMore(rowLit, ",")).Map(insertStmt)

	statementRoot = p.Any(selectStmt, insertStmt, createTable, createIndex)
}
