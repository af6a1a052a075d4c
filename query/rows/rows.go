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

// Package rows defines the value and row types that flow between physical
// operators, along with the pull-based iterator they are consumed through.
// Rows at this layer are schema-less; the schema lives on the plan that
// produced them.
package rows

import (
	"context"
	"io"
	"strconv"
	"strings"
)

// Kind identifies which of the value representations is in use.
type Kind uint8

// The supported value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindFloat64
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindBool:
		return "BOOL"
	case KindInt64:
		return "INT"
	case KindFloat64:
		return "FLOAT"
	case KindString:
		return "STRING"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a single typed cell value. The zero Value is NULL.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
}

// Null returns the NULL value.
func Null() Value {
	return Value{}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Int64 returns an integer value.
func Int64(i int64) Value {
	return Value{kind: KindInt64, i: i}
}

// Float64 returns a floating point value.
func Float64(f float64) Value {
	return Value{kind: KindFloat64, f: f}
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Kind returns which kind of value this is.
func (v Value) Kind() Kind {
	return v.kind
}

// AsBool returns the boolean representation, valid only for KindBool.
func (v Value) AsBool() bool {
	return v.b
}

// AsInt64 returns the integer representation, valid only for KindInt64.
func (v Value) AsInt64() int64 {
	return v.i
}

// AsFloat64 returns the float representation, valid only for KindFloat64.
func (v Value) AsFloat64() float64 {
	return v.f
}

// AsString returns the string representation, valid only for KindString.
func (v Value) AsString() string {
	return v.s
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt64:
		return strconv.FormatInt(v.i, 10)
	case KindFloat64:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	}
	return "?"
}

// Key implements cmp.Key. Unlike String, the serialization is unambiguous
// across kinds.
func (v Value) Key(b *strings.Builder) {
	switch v.kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		b.WriteString("b:")
		b.WriteString(strconv.FormatBool(v.b))
	case KindInt64:
		b.WriteString("i:")
		b.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat64:
		b.WriteString("f:")
		b.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindString:
		b.WriteString("s:")
		b.WriteString(strconv.Quote(v.s))
	}
}

// Compare defines a total order over values: first by kind, then by the
// natural order within the kind. NULL sorts before everything else.
func (v Value) Compare(o Value) int {
	if v.kind != o.kind {
		if v.kind < o.kind {
			return -1
		}
		return 1
	}
	switch v.kind {
	case KindNull:
		return 0
	case KindBool:
		switch {
		case v.b == o.b:
			return 0
		case o.b:
			return -1
		}
		return 1
	case KindInt64:
		switch {
		case v.i < o.i:
			return -1
		case v.i > o.i:
			return 1
		}
		return 0
	case KindFloat64:
		switch {
		case v.f < o.f:
			return -1
		case v.f > o.f:
			return 1
		}
		return 0
	case KindString:
		return strings.Compare(v.s, o.s)
	}
	return 0
}

// Equal reports whether the two values have the same kind and contents.
func (v Value) Equal(o Value) bool {
	return v.Compare(o) == 0
}

// Row is one record produced by a physical operator.
type Row []Value

// Key implements cmp.Key.
func (r Row) Key(b *strings.Builder) {
	b.WriteByte('[')
	for i, v := range r {
		if i > 0 {
			b.WriteByte(' ')
		}
		v.Key(b)
	}
	b.WriteByte(']')
}

// Clone returns a copy of the row that does not share backing storage.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// Iterator is a pull-based stream of rows. Next returns io.EOF once the
// stream is exhausted; any other error is fatal to the stream.
type Iterator interface {
	Next(ctx context.Context) (Row, error)
}

// sliceIterator yields rows from an in-memory slice.
type sliceIterator struct {
	rows []Row
	pos  int
}

// NewSliceIterator returns an Iterator over the given rows. The slice is not
// copied; the caller must not mutate it afterwards.
func NewSliceIterator(rows []Row) Iterator {
	return &sliceIterator{rows: rows}
}

func (it *sliceIterator) Next(ctx context.Context) (Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if it.pos >= len(it.rows) {
		return nil, io.EOF
	}
	row := it.rows[it.pos]
	it.pos++
	return row, nil
}

// Collect drains the iterator into a slice. It is mostly useful in tests and
// small clients; large results should be streamed instead.
func Collect(ctx context.Context, it Iterator) ([]Row, error) {
	var out []Row
	for {
		row, err := it.Next(ctx)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
}
