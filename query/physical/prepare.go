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

package physical

// PreparePass is the final pass before execution. It applies the session's
// fetch granularity to scans and wraps the plan root in a SchemaGuard so
// malformed operator output fails loudly.
type PreparePass struct {
	// BatchSize is stamped onto every SeqScan that does not have one.
	BatchSize int
}

// Execute returns the prepared plan. The input tree is not modified.
// Execute is idempotent: preparing an already-prepared plan is a no-op.
func (p *PreparePass) Execute(plan Node) (Node, error) {
	if _, done := plan.(*SchemaGuard); done {
		return plan, nil
	}
	return &SchemaGuard{Input: p.apply(plan)}, nil
}

func (p *PreparePass) apply(n Node) Node {
	switch n := n.(type) {
	case *SeqScan:
		if n.BatchSize > 0 || p.BatchSize <= 0 {
			return n
		}
		return &SeqScan{Table: n.Table, Cols: n.Cols, BatchSize: p.BatchSize}
	case *Filter:
		return &Filter{Input: p.apply(n.Input), Predicate: n.Predicate}
	case *Project:
		return &Project{Input: p.apply(n.Input), Refs: n.Refs}
	case *Distinct:
		return &Distinct{Input: p.apply(n.Input)}
	case *MemSort:
		return &MemSort{Input: p.apply(n.Input), By: n.By}
	case *BTreeSort:
		return &BTreeSort{Input: p.apply(n.Input), By: n.By}
	case *Limit:
		return &Limit{Input: p.apply(n.Input), Paging: n.Paging}
	}
	return n
}
