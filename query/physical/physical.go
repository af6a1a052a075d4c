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

// Package physical defines the executable operator tree. Constructing a
// node never touches data; Run opens a lazy row iterator over the node and
// its inputs.
package physical

import (
	"context"
	"strings"

	"github.com/millstonedb/millstone/query/plandef"
	"github.com/millstonedb/millstone/query/rows"
)

// A Node is one executable operator. Like logical plans, physical plans are
// immutable trees.
type Node interface {
	// Columns returns the operator's output schema.
	Columns() []plandef.Column
	// Inputs returns the child operators.
	Inputs() []Node
	// String returns a single-line description of this operator alone.
	String() string
	// Run opens a lazy iterator over the operator's output. Run itself may
	// do bounded up-front work (taking a storage snapshot, probing an
	// index); row production happens as the iterator is pulled.
	Run(ctx context.Context) rows.Iterator
}

// Dump renders the tree as an indented multi-line string.
func Dump(n Node) string {
	var b strings.Builder
	dumpInto(&b, n, 0)
	return b.String()
}

func dumpInto(b *strings.Builder, n Node, depth int) {
	b.WriteString(strings.Repeat("    ", depth))
	b.WriteString(n.String())
	b.WriteByte('\n')
	for _, in := range n.Inputs() {
		dumpInto(b, in, depth+1)
	}
}

// Candidates is a lazy sequence of alternative physical plans for one
// logical plan. Plans are only built as the sequence is advanced; a caller
// that takes the first candidate never pays for the rest.
type Candidates struct {
	builders []func() (Node, error)
	pos      int
}

// NewCandidates wraps the given deferred plan builders, in preference
// order.
func NewCandidates(builders ...func() (Node, error)) *Candidates {
	return &Candidates{builders: builders}
}

// Next builds and returns the next candidate plan. It returns (nil, nil)
// once the sequence is exhausted.
func (c *Candidates) Next() (Node, error) {
	if c.pos >= len(c.builders) {
		return nil, nil
	}
	build := c.builders[c.pos]
	c.pos++
	return build()
}

// Remaining returns how many candidates have not been built yet.
func (c *Candidates) Remaining() int {
	return len(c.builders) - c.pos
}
