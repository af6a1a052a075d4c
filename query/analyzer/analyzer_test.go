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

package analyzer

import (
	"testing"

	"github.com/millstonedb/millstone/catalog"
	"github.com/millstonedb/millstone/query/plandef"
	"github.com/millstonedb/millstone/query/rows"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.New()
	_, err := c.CreateTable("movies", []plandef.Column{
		{Name: "title", Type: rows.KindString},
		{Name: "year", Type: rows.KindInt64},
		{Name: "rating", Type: rows.KindFloat64},
	})
	require.NoError(t, err)
	return c
}

func Test_Execute_resolvesScanAndRefs(t *testing.T) {
	assert := assert.New(t)
	a := New(testCatalog(t))
	plan := &plandef.Project{
		Input: &plandef.Filter{
			Input: &plandef.Scan{Table: "movies"},
			Predicate: &plandef.Comparison{
				Op:    plandef.OpGe,
				Left:  plandef.UnresolvedColumn("year"),
				Right: &plandef.Literal{Value: rows.Int64(1990)},
			},
		},
		Refs: []*plandef.ColumnRef{plandef.UnresolvedColumn("title")},
	}
	got, err := a.Execute(plan)
	require.NoError(t, err)
	assert.NoError(a.CheckAnalysis(got))

	proj := got.(*plandef.Project)
	assert.Equal("title#0", proj.Refs[0].String())
	assert.Equal([]plandef.Column{{Name: "title", Type: rows.KindString}}, proj.Columns())
	filter := proj.Input.(*plandef.Filter)
	pred := filter.Predicate.(*plandef.Comparison)
	assert.Equal("year#1", pred.Left.String())
	// The original plan is left unresolved.
	assert.False(plan.Refs[0].Resolved())
}

func Test_Execute_widensIntLiteralToFloat(t *testing.T) {
	a := New(testCatalog(t))
	plan := &plandef.Filter{
		Input: &plandef.Scan{Table: "movies"},
		Predicate: &plandef.Comparison{
			Op:    plandef.OpGt,
			Left:  plandef.UnresolvedColumn("rating"),
			Right: &plandef.Literal{Value: rows.Int64(8)},
		},
	}
	got, err := a.Execute(plan)
	require.NoError(t, err)
	require.NoError(t, a.CheckAnalysis(got))
	pred := got.(*plandef.Filter).Predicate.(*plandef.Comparison)
	lit := pred.Right.(*plandef.Literal)
	assert.Equal(t, rows.Float64(8), lit.Value)
}

func Test_CheckAnalysis_reportsAllProblems(t *testing.T) {
	assert := assert.New(t)
	a := New(testCatalog(t))
	plan := &plandef.Project{
		Input: &plandef.Filter{
			Input: &plandef.Scan{Table: "nope"},
			Predicate: &plandef.Comparison{
				Op:    plandef.OpEq,
				Left:  plandef.UnresolvedColumn("color"),
				Right: &plandef.Literal{Value: rows.String("red")},
			},
		},
		Refs: []*plandef.ColumnRef{plandef.UnresolvedColumn("title")},
	}
	got, err := a.Execute(plan)
	require.NoError(t, err)
	err = a.CheckAnalysis(got)
	require.Error(t, err)
	analysisErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Len(analysisErr.Problems, 3)
	assert.Contains(err.Error(), `unknown table "nope"`)
	assert.Contains(err.Error(), `unknown column "color"`)
	assert.Contains(err.Error(), `unknown column "title"`)
}

func Test_CheckAnalysis_typeMismatch(t *testing.T) {
	a := New(testCatalog(t))
	plan := &plandef.Filter{
		Input: &plandef.Scan{Table: "movies"},
		Predicate: &plandef.Comparison{
			Op:    plandef.OpEq,
			Left:  plandef.UnresolvedColumn("year"),
			Right: &plandef.Literal{Value: rows.String("1990")},
		},
	}
	got, err := a.Execute(plan)
	require.NoError(t, err)
	err = a.CheckAnalysis(got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot compare")
}

func Test_CheckAnalysis_sortKey(t *testing.T) {
	a := New(testCatalog(t))
	plan := &plandef.Sort{
		Input: &plandef.Project{
			Input: &plandef.Scan{Table: "movies"},
			Refs:  []*plandef.ColumnRef{plandef.UnresolvedColumn("title")},
		},
		// year is projected away, so the sort key must not resolve.
		By: []plandef.SortKey{{On: plandef.UnresolvedColumn("year")}},
	}
	got, err := a.Execute(plan)
	require.NoError(t, err)
	err = a.CheckAnalysis(got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown column "year"`)
}
