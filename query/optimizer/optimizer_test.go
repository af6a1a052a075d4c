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

package optimizer

import (
	"testing"

	"github.com/millstonedb/millstone/query/plandef"
	"github.com/millstonedb/millstone/query/rows"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scan() *plandef.Scan {
	return &plandef.Scan{
		Table: "movies",
		Cols: []plandef.Column{
			{Name: "title", Type: rows.KindString},
			{Name: "year", Type: rows.KindInt64},
		},
	}
}

func yearGT(n int64) *plandef.Comparison {
	return &plandef.Comparison{
		Op:    plandef.OpGt,
		Left:  &plandef.ColumnRef{Name: "year", Index: 1, ColType: rows.KindInt64},
		Right: &plandef.Literal{Value: rows.Int64(n)},
	}
}

func optimize(t *testing.T, plan plandef.Node) plandef.Node {
	t.Helper()
	got, err := New().Execute(plan)
	require.NoError(t, err)
	return got
}

func Test_MergeFilters(t *testing.T) {
	plan := &plandef.Filter{
		Input: &plandef.Filter{
			Input:     scan(),
			Predicate: yearGT(1980),
		},
		Predicate: yearGT(1990),
	}
	got := optimize(t, plan)
	assert.Equal(t, `Filter year#1 > 1980 AND year#1 > 1990
    Scan movies
`, plandef.Dump(got))
}

func Test_FoldConstantComparisons_true(t *testing.T) {
	plan := &plandef.Filter{
		Input: scan(),
		Predicate: &plandef.Comparison{
			Op:    plandef.OpEq,
			Left:  &plandef.Literal{Value: rows.Int64(1)},
			Right: &plandef.Literal{Value: rows.Int64(1)},
		},
	}
	got := optimize(t, plan)
	_, ok := got.(*plandef.Scan)
	assert.True(t, ok, "always-true filter must be dropped, got:\n%v", plandef.Dump(got))
}

func Test_FoldConstantComparisons_false(t *testing.T) {
	plan := &plandef.Project{
		Input: &plandef.Filter{
			Input: scan(),
			Predicate: &plandef.Comparison{
				Op:    plandef.OpGt,
				Left:  &plandef.Literal{Value: rows.Int64(1)},
				Right: &plandef.Literal{Value: rows.Int64(2)},
			},
		},
		Refs: []*plandef.ColumnRef{{Name: "title", Index: 0, ColType: rows.KindString}},
	}
	got := optimize(t, plan)
	// The contradiction becomes Empty and PruneEmpty lifts it through the
	// projection, keeping the projected schema.
	empty, ok := got.(*plandef.Empty)
	require.True(t, ok, "got:\n%v", plandef.Dump(got))
	assert.Equal(t, []plandef.Column{{Name: "title", Type: rows.KindString}}, empty.Cols)
}

func Test_FoldConstantComparisons_insideAnd(t *testing.T) {
	plan := &plandef.Filter{
		Input: scan(),
		Predicate: &plandef.And{
			Left: &plandef.Comparison{
				Op:    plandef.OpEq,
				Left:  &plandef.Literal{Value: rows.Bool(true)},
				Right: &plandef.Literal{Value: rows.Bool(true)},
			},
			Right: yearGT(1990),
		},
	}
	got := optimize(t, plan)
	filter, ok := got.(*plandef.Filter)
	require.True(t, ok)
	assert.Equal(t, "year#1 > 1990", filter.Predicate.String())
}

func Test_CollapseProjects(t *testing.T) {
	inner := &plandef.Project{
		Input: scan(),
		Refs: []*plandef.ColumnRef{
			{Name: "year", Index: 1, ColType: rows.KindInt64},
			{Name: "title", Index: 0, ColType: rows.KindString},
		},
	}
	plan := &plandef.Project{
		Input: inner,
		Refs:  []*plandef.ColumnRef{{Name: "title", Index: 1, ColType: rows.KindString}},
	}
	got := optimize(t, plan)
	proj, ok := got.(*plandef.Project)
	require.True(t, ok)
	_, ok = proj.Input.(*plandef.Scan)
	assert.True(t, ok, "projects must collapse into one, got:\n%v", plandef.Dump(got))
	require.Len(t, proj.Refs, 1)
	assert.Equal(t, "title#0", proj.Refs[0].String())
}

func Test_DropNoopProject(t *testing.T) {
	plan := &plandef.Project{
		Input: scan(),
		Refs: []*plandef.ColumnRef{
			{Name: "title", Index: 0, ColType: rows.KindString},
			{Name: "year", Index: 1, ColType: rows.KindInt64},
		},
	}
	got := optimize(t, plan)
	_, ok := got.(*plandef.Scan)
	assert.True(t, ok, "identity projection must be dropped, got:\n%v", plandef.Dump(got))
}

func Test_Optimizer_leavesUsefulPlansAlone(t *testing.T) {
	plan := &plandef.Limit{
		Input: &plandef.Filter{
			Input:     scan(),
			Predicate: yearGT(1990),
		},
		Paging: plandef.LimitOffset{Limit: ptr(5)},
	}
	got := optimize(t, plan)
	assert.Equal(t, plandef.Dump(plan), plandef.Dump(got))
}

func ptr(v uint64) *uint64 {
	return &v
}
