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

// Package query provides a high level entry point for executing millstone
// statements. It runs the entire statement processor, including the parser,
// the staged query pipeline, and the executor.
package query

import (
	"context"
	"fmt"
	"io"

	"github.com/millstonedb/millstone/query/internal/debug"
	"github.com/millstonedb/millstone/query/parser"
	"github.com/millstonedb/millstone/query/plandef"
	"github.com/millstonedb/millstone/query/rows"
	"github.com/millstonedb/millstone/session"
	"github.com/millstonedb/millstone/util/clocks"
	"github.com/millstonedb/millstone/util/tracing"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
)

// Options contains various settings that affect the statement processing.
type Options struct {
	// If set diagnostic information about the statement processing will be
	// collected into a report.
	Debug bool
	// By default the report is written to a file in $TMPDIR. If DebugOut is
	// set, the report will be written to that instead.
	DebugOut io.Writer
	// If set the Debug tracker will use this clock for generating timing
	// information, if not set it'll use clocks.Wall.
	Clock clocks.Source
}

// Result summarizes a completed statement. For queries, Columns carries the
// output schema of the rows that were sent to the result channel. For DDL
// and DML statements Columns is nil and RowCount counts the affected rows.
type Result struct {
	Columns  []plandef.Column
	RowCount int
}

// Engine provides a high level interface for running statements against one
// session.
type Engine struct {
	sess *session.Session
}

// New creates a new Engine over the given session. The resulting Engine can
// be used concurrently to execute statements.
func New(sess *session.Session) *Engine {
	return &Engine{sess: sess}
}

// Session returns the session this engine runs against.
func (e *Engine) Session() *session.Session {
	return e.sess
}

// Query executes a statement starting from its string representation all the
// way through parse, analyze, optimize, plan and execute. Query rows are
// written to 'resCh'; the caller can apply backpressure by reading slowly
// from it. DDL and DML statements produce no rows.
//
// This function blocks until the statement has completed and all results
// have been passed to the 'resCh' channel, or an error occurs. In all cases
// resCh will be closed before this function returns.
func (e *Engine) Query(ctx context.Context, statement string, opt Options, resCh chan<- rows.Row) (*Result, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Statement")
	defer span.Finish()

	tracker := debug.New(opt.Debug, opt.DebugOut, opt.Clock, statement)
	defer tracker.Close()

	span, _ = opentracing.StartSpanFromContext(ctx, "parse statement")
	tracing.UpdateMetric(span, metrics.parseQueryDurationSeconds)
	stmt, err := parser.Parse(statement)
	tracker.Parsed(stmt, err)
	span.Finish()
	if err != nil {
		// You can't close an already closed channel. We can't defer
		// close(resCh) because the query path closes it after draining, but
		// we need to close it if we don't get that far.
		close(resCh)
		return nil, err
	}

	switch stmt := stmt.(type) {
	case *parser.Select:
		return e.query(ctx, stmt, tracker, resCh)
	case *parser.CreateTable:
		close(resCh)
		_, err := e.sess.Catalog().CreateTable(stmt.Table, stmt.Cols)
		return &Result{}, err
	case *parser.CreateIndex:
		close(resCh)
		tbl, ok := e.sess.Catalog().Table(stmt.Table)
		if !ok {
			return nil, fmt.Errorf("table %q does not exist", stmt.Table)
		}
		return &Result{}, tbl.CreateIndex(stmt.Column)
	case *parser.Insert:
		close(resCh)
		return e.insert(stmt)
	}
	close(resCh)
	return nil, fmt.Errorf("unsupported statement type: %T", stmt)
}

// query drives a Select statement through the pipeline and drains the row
// stream into resCh.
func (e *Engine) query(ctx context.Context, stmt *parser.Select, tracker debug.Tracker, resCh chan<- rows.Row) (*Result, error) {
	pipeline := NewPipeline(e.sess, stmt.Plan)

	span, _ := opentracing.StartSpanFromContext(ctx, "analyze statement")
	tracing.UpdateMetric(span, metrics.analyzeQueryDurationSeconds)
	analyzed, err := pipeline.Analyzed()
	tracker.Analyzed(analyzed, err)
	if err == nil {
		var optimized plandef.Node
		optimized, err = pipeline.OptimizedPlan()
		tracker.Optimized(optimized, err)
	}
	span.Finish()
	if err != nil {
		metrics.failedQueries.Inc()
		close(resCh)
		return nil, err
	}

	span, _ = opentracing.StartSpanFromContext(ctx, "plan statement")
	tracing.UpdateMetric(span, metrics.planQueryDurationSeconds)
	prepared, err := pipeline.PreparedPhysicalPlan()
	tracker.Planned(prepared, err)
	span.Finish()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"error": err,
		}).Warn("Planner failed")
		metrics.failedQueries.Inc()
		close(resCh)
		return nil, err
	}

	span, cctx := opentracing.StartSpanFromContext(ctx, "execute statement")
	tracing.UpdateMetric(span, metrics.executeQueryDurationSeconds)
	defer span.Finish()
	defer close(resCh)
	stream, err := pipeline.ResultStream(cctx)
	if err != nil {
		tracker.Executed(0, err)
		metrics.failedQueries.Inc()
		return nil, err
	}
	count := 0
	for {
		row, err := stream.Next(cctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			tracker.Executed(count, err)
			metrics.failedQueries.Inc()
			return nil, err
		}
		count++
		select {
		case resCh <- row:
		case <-cctx.Done():
			tracker.Executed(count, cctx.Err())
			return nil, cctx.Err()
		}
	}
	tracker.Executed(count, nil)
	return &Result{Columns: prepared.Columns(), RowCount: count}, nil
}

func (e *Engine) insert(stmt *parser.Insert) (*Result, error) {
	tbl, ok := e.sess.Catalog().Table(stmt.Table)
	if !ok {
		return nil, fmt.Errorf("table %q does not exist", stmt.Table)
	}
	for i, row := range stmt.Rows {
		if err := tbl.Insert(row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return &Result{RowCount: len(stmt.Rows)}, nil
}

// Explain parses a query and renders its full multi-stage pipeline trace.
// The trace itself never fails; Explain only returns an error if the input
// does not parse or is not a query.
func (e *Engine) Explain(statement string) (string, error) {
	p, err := e.explainPipeline(statement)
	if err != nil {
		return "", err
	}
	return p.Explain(), nil
}

// ExplainFinal is like Explain but renders only the prepared physical plan.
func (e *Engine) ExplainFinal(statement string) (string, error) {
	p, err := e.explainPipeline(statement)
	if err != nil {
		return "", err
	}
	return p.ExplainFinal(), nil
}

func (e *Engine) explainPipeline(statement string) (*Pipeline, error) {
	stmt, err := parser.Parse(statement)
	if err != nil {
		return nil, err
	}
	sel, ok := stmt.(*parser.Select)
	if !ok {
		return nil, fmt.Errorf("explain requires a query, got %T", stmt)
	}
	return NewPipeline(e.sess, sel.Plan), nil
}
