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

package catalog

import (
	"testing"

	"github.com/millstonedb/millstone/query/plandef"
	"github.com/millstonedb/millstone/query/rows"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbersTable(t *testing.T) *Table {
	t.Helper()
	c := New()
	tbl, err := c.CreateTable("numbers", []plandef.Column{
		{Name: "n", Type: rows.KindInt64},
		{Name: "name", Type: rows.KindString},
	})
	require.NoError(t, err)
	for i, name := range []string{"zero", "one", "two", "three", "four"} {
		require.NoError(t, tbl.Insert(rows.Row{rows.Int64(int64(i)), rows.String(name)}))
	}
	return tbl
}

func Test_CreateTable_errors(t *testing.T) {
	assert := assert.New(t)
	c := New()
	_, err := c.CreateTable("t", nil)
	assert.Error(err)
	_, err = c.CreateTable("t", []plandef.Column{
		{Name: "a", Type: rows.KindInt64},
		{Name: "a", Type: rows.KindString},
	})
	assert.Error(err)
	_, err = c.CreateTable("t", []plandef.Column{{Name: "a", Type: rows.KindInt64}})
	assert.NoError(err)
	_, err = c.CreateTable("t", []plandef.Column{{Name: "a", Type: rows.KindInt64}})
	assert.Error(err, "duplicate table must be rejected")
	assert.Equal([]string{"t"}, c.Names())
}

func Test_Insert_typeChecks(t *testing.T) {
	assert := assert.New(t)
	c := New()
	tbl, err := c.CreateTable("t", []plandef.Column{
		{Name: "a", Type: rows.KindInt64},
		{Name: "b", Type: rows.KindFloat64},
	})
	require.NoError(t, err)
	assert.Error(tbl.Insert(rows.Row{rows.Int64(1)}), "arity mismatch")
	assert.Error(tbl.Insert(rows.Row{rows.String("x"), rows.Float64(1)}), "kind mismatch")
	// NULL fits any column, ints widen to float columns.
	assert.NoError(tbl.Insert(rows.Row{rows.Null(), rows.Int64(3)}))
	snap := tbl.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(rows.Float64(3), snap[0][1])
}

func Test_Snapshot_isolation(t *testing.T) {
	tbl := numbersTable(t)
	snap := tbl.Snapshot()
	require.NoError(t, tbl.Insert(rows.Row{rows.Int64(5), rows.String("five")}))
	assert.Len(t, snap, 5)
	assert.Equal(t, 6, tbl.RowCount())
}

func Test_Index_Lookup(t *testing.T) {
	assert := assert.New(t)
	tbl := numbersTable(t)
	require.NoError(t, tbl.CreateIndex("n"))
	// Duplicate keys must survive.
	require.NoError(t, tbl.Insert(rows.Row{rows.Int64(2), rows.String("deux")}))
	idx, ok := tbl.Index("n")
	require.True(t, ok)

	names := func(op plandef.CompareOp, n int64) []string {
		var out []string
		for _, row := range idx.Lookup(op, rows.Int64(n)) {
			out = append(out, row[1].AsString())
		}
		return out
	}
	assert.Equal([]string{"two", "deux"}, names(plandef.OpEq, 2))
	assert.Equal([]string{"three", "four"}, names(plandef.OpGt, 2))
	assert.Equal([]string{"two", "deux", "three", "four"}, names(plandef.OpGe, 2))
	assert.Equal([]string{"zero", "one"}, names(plandef.OpLt, 2))
	assert.Equal([]string{"zero", "one", "two", "deux"}, names(plandef.OpLe, 2))
	assert.Empty(names(plandef.OpGt, 100))

	assert.True(idx.Supports(plandef.OpEq))
	assert.False(idx.Supports(plandef.OpNe))
}

func Test_Index_coversExistingRows(t *testing.T) {
	tbl := numbersTable(t)
	require.NoError(t, tbl.CreateIndex("name"))
	idx, ok := tbl.Index("name")
	require.True(t, ok)
	got := idx.Lookup(plandef.OpEq, rows.String("three"))
	require.Len(t, got, 1)
	assert.Equal(t, rows.Int64(3), got[0][0])
	assert.Error(t, tbl.CreateIndex("name"), "double create must fail")
	assert.Error(t, tbl.CreateIndex("nope"), "unknown column must fail")
}
