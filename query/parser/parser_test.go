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
	"strings"
	"testing"

	"github.com/millstonedb/millstone/query/plandef"
	"github.com/millstonedb/millstone/query/rows"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// selectPlan parses in and returns the dumped unresolved plan.
func selectPlan(t *testing.T, in string) string {
	t.Helper()
	stmt, err := Parse(in)
	require.NoError(t, err)
	sel, ok := stmt.(*Select)
	require.True(t, ok, "expected a query, got %T", stmt)
	return plandef.Dump(sel.Plan)
}

func Test_Parse_selectStar(t *testing.T) {
	assert.Equal(t, "UnresolvedScan movies\n",
		selectPlan(t, "SELECT * FROM movies"))
}

func Test_Parse_selectFull(t *testing.T) {
	got := selectPlan(t,
		`SELECT DISTINCT title, year FROM movies
		 WHERE year >= 1990 AND title != 'Heat'
		 ORDER BY year DESC LIMIT 10 OFFSET 2`)
	want := strings.Join([]string{
		"LimitOffset (Lmt 10 Off 2)",
		"    Distinct",
		"        Project 'title 'year",
		"            OrderBy desc('year)",
		"                Filter 'title != \"Heat\"",
		"                    Filter 'year >= 1990",
		"                        UnresolvedScan movies",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func Test_Parse_whereOperators(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SELECT * FROM t WHERE a = 1", "Filter 'a = 1"},
		{"SELECT * FROM t WHERE a != 1", "Filter 'a != 1"},
		{"SELECT * FROM t WHERE a <> 1", "Filter 'a != 1"},
		{"SELECT * FROM t WHERE a < 1", "Filter 'a < 1"},
		{"SELECT * FROM t WHERE a <= 1", "Filter 'a <= 1"},
		{"SELECT * FROM t WHERE a > 1", "Filter 'a > 1"},
		{"SELECT * FROM t WHERE a >= 1", "Filter 'a >= 1"},
		{"SELECT * FROM t WHERE 1 < a", "Filter 1 < 'a"},
		{"SELECT * FROM t WHERE a = true", "Filter 'a = true"},
		{"SELECT * FROM t WHERE a = 3.25", "Filter 'a = 3.25"},
	}
	for _, test := range tests {
		got := selectPlan(t, test.in)
		assert.Equal(t, test.want+"\n    UnresolvedScan t\n", got, "for %s", test.in)
	}
}

func Test_Parse_caseInsensitiveKeywords(t *testing.T) {
	got := selectPlan(t, "select title from movies order by title")
	want := strings.Join([]string{
		"Project 'title",
		"    OrderBy asc('title)",
		"        UnresolvedScan movies",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func Test_Parse_offsetBeforeLimit(t *testing.T) {
	got := selectPlan(t, "SELECT * FROM t OFFSET 5 LIMIT 2")
	assert.Equal(t, "LimitOffset (Lmt 2 Off 5)\n    UnresolvedScan t\n", got)
}

func Test_Parse_createTable(t *testing.T) {
	stmt := MustParse("CREATE TABLE movies (title STRING, year INT, rating FLOAT, seen BOOL)")
	create, ok := stmt.(*CreateTable)
	require.True(t, ok)
	assert.Equal(t, "movies", create.Table)
	assert.Equal(t, []plandef.Column{
		{Name: "title", Type: rows.KindString},
		{Name: "year", Type: rows.KindInt64},
		{Name: "rating", Type: rows.KindFloat64},
		{Name: "seen", Type: rows.KindBool},
	}, create.Cols)
}

func Test_Parse_createIndex(t *testing.T) {
	stmt := MustParse("CREATE INDEX ON movies (year)")
	idx, ok := stmt.(*CreateIndex)
	require.True(t, ok)
	assert.Equal(t, "movies", idx.Table)
	assert.Equal(t, "year", idx.Column)
}

func Test_Parse_insert(t *testing.T) {
	stmt := MustParse(`INSERT INTO movies VALUES ("Heat", 1995), ('Alien', 1979), (NULL, 2000)`)
	ins, ok := stmt.(*Insert)
	require.True(t, ok)
	assert.Equal(t, "movies", ins.Table)
	assert.Equal(t, []rows.Row{
		{rows.String("Heat"), rows.Int64(1995)},
		{rows.String("Alien"), rows.Int64(1979)},
		{rows.Null(), rows.Int64(2000)},
	}, ins.Rows)
}

func Test_Parse_errors(t *testing.T) {
	tests := []struct {
		in      string
		details string
	}{
		{"SELECT", "expected"},
		{"SELECT * FROM", "expected identifier"},
		{"SELECT * FROM t WHERE", "expected"},
		{"SELECT * FROM t LIMIT x", "expected number"},
		{"CREATE TABLE t (a WIDGET)", "expected"},
		{"SELECT * FROM t garbage", "unparsed text: 'garbage'"},
	}
	for _, test := range tests {
		_, err := Parse(test.in)
		require.Error(t, err, "for %s", test.in)
		parseErr, ok := err.(*ParseError)
		require.True(t, ok, "for %s got %T", test.in, err)
		assert.Contains(t, parseErr.Error(), test.details, "for %s", test.in)
	}
}

func Test_Parse_errorCoordinates(t *testing.T) {
	_, err := Parse("SELECT *\nFROM t\nLIMIT x")
	require.Error(t, err)
	parseErr := err.(*ParseError)
	assert.Equal(t, 3, parseErr.Line)
	assert.Equal(t, "statement", parseErr.ParseType)
}
