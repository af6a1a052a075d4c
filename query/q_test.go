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

package query

import (
	"context"
	"strings"
	"testing"

	"github.com/millstonedb/millstone/catalog"
	"github.com/millstonedb/millstone/query/cache"
	"github.com/millstonedb/millstone/query/parser"
	"github.com/millstonedb/millstone/query/rows"
	"github.com/millstonedb/millstone/session"
	"github.com/millstonedb/millstone/util/clocks"
	"github.com/millstonedb/millstone/util/parallel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes one statement and returns the drained rows.
func run(t *testing.T, e *Engine, statement string) (*Result, []rows.Row) {
	t.Helper()
	resCh := make(chan rows.Row, 16)
	var got []rows.Row
	wait := parallel.Go(func() {
		for row := range resCh {
			got = append(got, row)
		}
	})
	res, err := e.Query(context.Background(), statement, Options{}, resCh)
	wait()
	require.NoError(t, err, "statement: %s", statement)
	return res, got
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(session.New(catalog.New(), cache.New()))
	_, err := e.Query(context.Background(), "CREATE TABLE movies (title STRING, year INT)", Options{}, make(chan rows.Row))
	require.NoError(t, err)
	res, _ := run(t, e, `INSERT INTO movies VALUES ("Alien", 1979), ("Blade Runner", 1982), ("Heat", 1995), ("Memento", 2000)`)
	require.Equal(t, 4, res.RowCount)
	return e
}

func Test_Engine_selectEndToEnd(t *testing.T) {
	e := testEngine(t)
	res, got := run(t, e, "SELECT title FROM movies WHERE year > 1980 ORDER BY year DESC LIMIT 2")
	assert.Equal(t, 2, res.RowCount)
	assert.Equal(t, []rows.Row{
		{rows.String("Memento")},
		{rows.String("Heat")},
	}, got)
	require.Len(t, res.Columns, 1)
	assert.Equal(t, "title", res.Columns[0].Name)
}

func Test_Engine_selectStar(t *testing.T) {
	e := testEngine(t)
	res, got := run(t, e, "SELECT * FROM movies")
	assert.Equal(t, 4, res.RowCount)
	assert.Len(t, got, 4)
	assert.Equal(t, rows.Row{rows.String("Alien"), rows.Int64(1979)}, got[0])
}

func Test_Engine_indexedQuery(t *testing.T) {
	e := testEngine(t)
	_, err := e.Query(context.Background(), "CREATE INDEX ON movies (year)", Options{}, make(chan rows.Row))
	require.NoError(t, err)
	_, got := run(t, e, "SELECT title FROM movies WHERE year >= 1995")
	assert.Equal(t, []rows.Row{
		{rows.String("Heat")},
		{rows.String("Memento")},
	}, got)
	// The explain trace shows the index probe was chosen.
	out, err := e.Explain("SELECT title FROM movies WHERE year >= 1995")
	require.NoError(t, err)
	assert.Contains(t, out, "IndexScan")
}

func Test_Engine_analysisFailure(t *testing.T) {
	e := testEngine(t)
	resCh := make(chan rows.Row)
	_, err := e.Query(context.Background(), "SELECT ghost FROM movies", Options{}, resCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis error")
	_, open := <-resCh
	assert.False(t, open, "the result channel is closed on failure")
}

func Test_Engine_unknownTable(t *testing.T) {
	e := testEngine(t)
	_, err := e.Query(context.Background(), `INSERT INTO nowhere VALUES (1)`, Options{}, make(chan rows.Row, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func Test_Engine_parseError(t *testing.T) {
	e := testEngine(t)
	resCh := make(chan rows.Row)
	_, err := e.Query(context.Background(), "SELEKT *", Options{}, resCh)
	require.Error(t, err)
	_, ok := err.(*parser.ParseError)
	assert.True(t, ok, "got %T", err)
	_, open := <-resCh
	assert.False(t, open)
}

func Test_Engine_explain(t *testing.T) {
	e := testEngine(t)
	out, err := e.Explain("SELECT title FROM movies WHERE year > 1980")
	require.NoError(t, err)
	for _, header := range []string{
		"== Parsed Logical Plan ==",
		"== Analyzed Logical Plan ==",
		"== With Cached Data ==",
		"== Optimized Logical Plan ==",
		"== Physical Plan ==",
		"== Prepared Physical Plan ==",
		"Codegen: off",
	} {
		assert.Contains(t, out, header)
	}
	assert.Contains(t, out, "SchemaGuard")

	_, err = e.Explain("CREATE TABLE t (a INT)")
	assert.Error(t, err, "explain requires a query")
}

func Test_Engine_explainFinal(t *testing.T) {
	e := testEngine(t)
	out, err := e.ExplainFinal("SELECT title FROM movies WHERE year > 1980")
	require.NoError(t, err)
	assert.Contains(t, out, "== Prepared Physical Plan ==")
	assert.Contains(t, out, "SchemaGuard")
	assert.NotContains(t, out, "== Parsed Logical Plan ==")

	// Analysis failures show up as the section body, not as an error.
	out, err = e.ExplainFinal("SELECT ghost FROM movies")
	require.NoError(t, err)
	assert.Contains(t, out, `unknown column "ghost"`)

	_, err = e.ExplainFinal("CREATE TABLE t (a INT)")
	assert.Error(t, err, "explain requires a query")
}

func Test_Engine_cachedData(t *testing.T) {
	e := testEngine(t)
	// Prime the cache with the analyzed form of a sub-query, then check the
	// trace substitutes it.
	sel := parser.MustParse("SELECT * FROM movies").(*parser.Select)
	p := NewPipeline(e.Session(), sel.Plan)
	analyzed, err := p.Analyzed()
	require.NoError(t, err)
	e.Session().Cache().Put(analyzed, []rows.Row{{rows.String("Cached"), rows.Int64(1999)}})

	out, err := e.Explain("SELECT * FROM movies")
	require.NoError(t, err)
	assert.Contains(t, out, "CachedData")
	_, got := run(t, e, "SELECT * FROM movies")
	assert.Equal(t, []rows.Row{{rows.String("Cached"), rows.Int64(1999)}}, got)
}

func Test_Engine_debugReport(t *testing.T) {
	e := testEngine(t)
	var report strings.Builder
	opt := Options{Debug: true, DebugOut: &report, Clock: clocks.NewMock()}
	resCh := make(chan rows.Row, 16)
	go func() {
		for range resCh {
		}
	}()
	_, err := e.Query(context.Background(), "SELECT title FROM movies LIMIT 1", opt, resCh)
	require.NoError(t, err)
	out := report.String()
	assert.Contains(t, out, "Parsed Statement:")
	assert.Contains(t, out, "Analyzed Plan:")
	assert.Contains(t, out, "Prepared Plan:")
	assert.Contains(t, out, "1 row(s)")
}
