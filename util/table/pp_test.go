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

package table

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_PrettyPrint_utf8(t *testing.T) {
	assert := assert.New(t)
	var buf strings.Builder
	PrettyPrint(&buf, [][]string{
		{"Beyoncé"},
		{"A longer thing"},
	}, RightJustify)
	assert.Equal(`
        Beyoncé |
 A longer thing |
`, "\n"+buf.String())
}

func Test_PrettyPrint_justify(t *testing.T) {
	table := [][]string{
		{"name", "qty"},
		{"bolt", "12"},
	}
	t.Run("Left", func(t *testing.T) {
		buf := strings.Builder{}
		PrettyPrint(&buf, table, HeaderRow)
		assert.Equal(t, `
 name | qty |
 ---- | --- |
 bolt | 12  |
`, "\n"+buf.String())
	})
	t.Run("Right", func(t *testing.T) {
		buf := strings.Builder{}
		PrettyPrint(&buf, table, HeaderRow|RightJustify)
		assert.Equal(t, `
 name | qty |
 ---- | --- |
 bolt |  12 |
`, "\n"+buf.String())
	})
}

func Test_PrettyPrint_skipEmpty(t *testing.T) {
	assert := assert.New(t)
	headers := [][]string{
		{"model", "make"},
	}
	buf := strings.Builder{}
	PrettyPrint(&buf, headers, SkipEmpty|HeaderRow)
	assert.Equal("", buf.String())

	buf.Reset()
	PrettyPrint(&buf, headers, HeaderRow)
	assert.Equal(`
 model | make |
 ----- | ---- |
`, "\n"+buf.String())
}

func Test_PrettyPrint_multiline(t *testing.T) {
	buf := strings.Builder{}
	PrettyPrint(&buf, [][]string{
		{"a\nb", "c"},
	}, 0)
	assert.Equal(t, `
 a | c |
 b |   |
`, "\n"+buf.String())
}
