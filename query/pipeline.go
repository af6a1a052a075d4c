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
	"errors"
	"sync"

	"github.com/millstonedb/millstone/query/analyzer"
	"github.com/millstonedb/millstone/query/optimizer"
	"github.com/millstonedb/millstone/query/physical"
	"github.com/millstonedb/millstone/query/plandef"
	"github.com/millstonedb/millstone/query/planner"
	"github.com/millstonedb/millstone/query/rows"
	"github.com/millstonedb/millstone/session"
)

// The Pipeline drives a query through a fixed chain of stages, each
// delegated to one of these collaborators. The default implementations live
// in the analyzer, cache, optimizer, planner and physical packages; tests
// substitute stubs.

// An Analyzer resolves names and types against the catalog. Execute is
// best-effort; CheckAnalysis reports everything Execute could not resolve.
type Analyzer interface {
	Execute(plandef.Node) (plandef.Node, error)
	CheckAnalysis(plandef.Node) error
}

// A CacheManager substitutes cached results for matching sub-trees.
type CacheManager interface {
	UseCachedData(plandef.Node) (plandef.Node, error)
}

// An Optimizer rewrites a resolved logical plan.
type Optimizer interface {
	Execute(plandef.Node) (plandef.Node, error)
}

// A Planner turns a logical plan into a sequence of candidate physical
// plans. The sequence is non-empty by contract.
type Planner interface {
	Plan(plandef.Node) (*physical.Candidates, error)
}

// A PreparePass makes a chosen physical plan executable.
type PreparePass interface {
	Execute(physical.Node) (physical.Node, error)
}

// Collaborators bundles the delegated stage implementations for
// NewCustomPipeline.
type Collaborators struct {
	Analyzer  Analyzer
	Cache     CacheManager
	Optimizer Optimizer
	Planner   Planner
	Prepare   PreparePass
}

// StageError reports a failure in one named pipeline stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return "stage " + e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// cell memoizes one stage result. The first force records either the value
// or the error; either way the outcome is final for the cell's lifetime and
// the compute function never runs again.
type cell[T any] struct {
	once  sync.Once
	value T
	err   error
}

func (c *cell[T]) force(compute func() (T, error)) (T, error) {
	c.once.Do(func() {
		c.value, c.err = compute()
	})
	return c.value, c.err
}

// Pipeline carries one query from an unresolved logical plan to a row
// stream. Each stage is lazy and memoized: asking for a stage forces every
// earlier stage exactly once, and repeated asks return the recorded outcome,
// including failures. A Pipeline serves a single query and is driven by one
// goroutine; the session it holds is shared and outlives it.
type Pipeline struct {
	sess *session.Session
	plan plandef.Node

	analyzer  Analyzer
	cache     CacheManager
	optimizer Optimizer
	planner   Planner
	prepare   PreparePass

	analyzed   cell[plandef.Node]
	withCached cell[plandef.Node]
	optimized  cell[plandef.Node]
	chosen     cell[physical.Node]
	prepared   cell[physical.Node]
	results    cell[rows.Iterator]
}

// NewPipeline creates a Pipeline over the standard collaborators, wired to
// the session's catalog and cache. plan is the unresolved logical plan; the
// Pipeline takes ownership of it.
func NewPipeline(sess *session.Session, plan plandef.Node) *Pipeline {
	return NewCustomPipeline(sess, plan, Collaborators{
		Analyzer:  analyzer.New(sess.Catalog()),
		Cache:     sess.Cache(),
		Optimizer: optimizer.New(),
		Planner:   planner.New(),
		Prepare:   &physical.PreparePass{BatchSize: sess.Config().BatchSize},
	})
}

// NewCustomPipeline creates a Pipeline with the given collaborators. It
// exists so tests can observe or rig individual stages.
func NewCustomPipeline(sess *session.Session, plan plandef.Node, c Collaborators) *Pipeline {
	return &Pipeline{
		sess:      sess,
		plan:      plan,
		analyzer:  c.Analyzer,
		cache:     c.Cache,
		optimizer: c.Optimizer,
		planner:   c.Planner,
		prepare:   c.Prepare,
	}
}

// Plan returns the initial unresolved logical plan.
func (p *Pipeline) Plan() plandef.Node {
	return p.plan
}

// Analyzed resolves the plan. It fails if analysis leaves any name or type
// unresolved; a plan that cannot be fully analyzed never reaches the later
// stages.
func (p *Pipeline) Analyzed() (plandef.Node, error) {
	return p.analyzed.force(func() (plandef.Node, error) {
		resolved, err := p.analyzer.Execute(p.plan)
		if err != nil {
			return nil, err
		}
		if err := p.analyzer.CheckAnalysis(resolved); err != nil {
			return nil, err
		}
		return resolved, nil
	})
}

// AssertAnalyzed forces the analysis stage and reports its outcome,
// discarding the resolved plan.
func (p *Pipeline) AssertAnalyzed() error {
	_, err := p.Analyzed()
	return err
}

// WithCachedData returns the analyzed plan with cached results substituted
// for matching sub-trees.
func (p *Pipeline) WithCachedData() (plandef.Node, error) {
	return p.withCached.force(func() (plandef.Node, error) {
		analyzed, err := p.Analyzed()
		if err != nil {
			return nil, err
		}
		substituted, err := p.cache.UseCachedData(analyzed)
		if err != nil {
			return nil, &StageError{Stage: "withCachedData", Err: err}
		}
		return substituted, nil
	})
}

// OptimizedPlan returns the logical plan after the optimizer's rule set.
func (p *Pipeline) OptimizedPlan() (plandef.Node, error) {
	return p.optimized.force(func() (plandef.Node, error) {
		withCached, err := p.WithCachedData()
		if err != nil {
			return nil, err
		}
		optimized, err := p.optimizer.Execute(withCached)
		if err != nil {
			return nil, &StageError{Stage: "optimizedPlan", Err: err}
		}
		return optimized, nil
	})
}

// ChosenPhysicalPlan returns the first candidate physical plan. The planner
// may propose several equally valid strategies; taking the first keeps plan
// choice deterministic without a cost model. The session is published as the
// ambient planning context for the duration of the planner call, candidate
// construction included, and released on every exit path.
func (p *Pipeline) ChosenPhysicalPlan() (physical.Node, error) {
	return p.chosen.force(func() (physical.Node, error) {
		optimized, err := p.OptimizedPlan()
		if err != nil {
			return nil, err
		}
		release := p.sess.EnterPlanning()
		defer release()
		candidates, err := p.planner.Plan(optimized)
		if err != nil {
			return nil, &StageError{Stage: "chosenPhysicalPlan", Err: err}
		}
		first, err := candidates.Next()
		if err != nil {
			return nil, &StageError{Stage: "chosenPhysicalPlan", Err: err}
		}
		if first == nil {
			return nil, &StageError{Stage: "chosenPhysicalPlan",
				Err: errors.New("planner produced no candidate plans")}
		}
		return first, nil
	})
}

// PreparedPhysicalPlan returns the executable form of the chosen plan.
func (p *Pipeline) PreparedPhysicalPlan() (physical.Node, error) {
	return p.prepared.force(func() (physical.Node, error) {
		chosen, err := p.ChosenPhysicalPlan()
		if err != nil {
			return nil, err
		}
		prepared, err := p.prepare.Execute(chosen)
		if err != nil {
			return nil, &StageError{Stage: "preparedPhysicalPlan", Err: err}
		}
		return prepared, nil
	})
}

// ResultStream opens the row iterator over the prepared plan. Opening takes
// a storage snapshot; rows are produced as the iterator is pulled. Like
// every other stage the iterator is memoized, so a second call returns the
// same partially-consumed iterator rather than re-running the query.
func (p *Pipeline) ResultStream(ctx context.Context) (rows.Iterator, error) {
	return p.results.force(func() (rows.Iterator, error) {
		prepared, err := p.PreparedPhysicalPlan()
		if err != nil {
			return nil, err
		}
		return prepared.Run(ctx), nil
	})
}
