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
)

// A Statement is one parsed input. Queries carry an unresolved logical plan;
// DDL and DML statements carry plain descriptions for the engine to apply to
// the catalog directly.
type Statement interface {
	isStatement()
	String() string
}

// Select is a parsed query. Plan is the unresolved logical plan: scans have
// no schema and column references have no index until analysis binds them.
type Select struct {
	Plan plandef.Node
}

func (*Select) isStatement() {}

func (s *Select) String() string {
	return strings.TrimSuffix(plandef.Dump(s.Plan), "\n")
}

// CreateTable describes a CREATE TABLE statement.
type CreateTable struct {
	Table string
	Cols  []plandef.Column
}

func (*CreateTable) isStatement() {}

func (c *CreateTable) String() string {
	cols := make([]string, len(c.Cols))
	for i, col := range c.Cols {
		cols[i] = fmt.Sprintf("%v %v", col.Name, col.Type)
	}
	return fmt.Sprintf("create table %v (%v)", c.Table, strings.Join(cols, ", "))
}

// CreateIndex describes a CREATE INDEX statement.
type CreateIndex struct {
	Table  string
	Column string
}

func (*CreateIndex) isStatement() {}

func (c *CreateIndex) String() string {
	return fmt.Sprintf("create index on %v (%v)", c.Table, c.Column)
}

// Insert describes an INSERT statement. Row arity and types are not checked
// here; the catalog rejects rows that do not fit the table.
type Insert struct {
	Table string
	Rows  []rows.Row
}

func (*Insert) isStatement() {}

func (i *Insert) String() string {
	return fmt.Sprintf("insert %d row(s) into %v", len(i.Rows), i.Table)
}
