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

// Package debug collects a per-statement diagnostic report: what each
// processing step produced and how long it took. The engine calls the
// Tracker at the appropriate points; with debugging off the calls are
// no-ops.
package debug

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/millstonedb/millstone/query/parser"
	"github.com/millstonedb/millstone/query/physical"
	"github.com/millstonedb/millstone/query/plandef"
	"github.com/millstonedb/millstone/util/clocks"
	"github.com/sirupsen/logrus"
)

// timestampFormat is used to format the timestamps written to the report.
const timestampFormat = "2006-01-02 15:04:05.000000 MST"

// Tracker defines points in the statement processing sequence. The engine
// will call these at the appropriate places in the processing.
type Tracker interface {
	Parsed(parser.Statement, error)
	Analyzed(plandef.Node, error)
	Optimized(plandef.Node, error)
	Planned(physical.Node, error)
	Executed(rowCount int, err error)
	Close()
}

// trackerID is used by New() to assign an id to the statement, via an
// atomic.Add. Nothing else should need to be reading or writing this.
var trackerID uint64

// New returns a new Tracker. The caller is expected to arrange for the
// various methods on Tracker to get called at the right time. If 'debug' is
// set the tracker will accumulate a detailed report and write it to
// debugOut. If debugOut is nil, the report will be written to a file in
// $TMPDIR. If 'debug' is false, a no-op Tracker is returned.
func New(debug bool, debugOut io.Writer, clock clocks.Source, statement string) Tracker {
	if !debug {
		return noopTracker{}
	}
	if clock == nil {
		clock = clocks.Wall
	}
	t := &debugTracker{
		id:    atomic.AddUint64(&trackerID, 1),
		clock: clock,
	}
	if debugOut == nil {
		f, err := os.Create(filepath.Join(os.TempDir(), fmt.Sprintf("statement_debug_%d", t.id)))
		if err != nil {
			logrus.Warnf("Unable to create statement debug file: %v", err)
			return noopTracker{}
		}
		logrus.Infof("Statement debug info %d being written to %s", t.id, f.Name())
		t.close = f
		debugOut = f
	}
	t.out = bufio.NewWriter(debugOut)
	t.started = t.clock.Now()
	fmt.Fprintf(&t.report.header, "Started at: %s\n", t.started.UTC().Format(timestampFormat))
	t.report.input = statement
	return t
}

// debugTracker implements the Tracker interface. It will generate a human
// readable report containing diagnostic information about the statement
// processing.
type debugTracker struct {
	id        uint64
	clock     clocks.Source
	started   time.Time
	parsed    time.Time
	analyzed  time.Time
	optimized time.Time
	planned   time.Time
	// out is where the report will be written to.
	out *bufio.Writer
	// close if set will be closed once the report is written.
	close io.Closer
	// The created report contains the below sections, in the order you see.
	report struct {
		header    strings.Builder
		input     string
		parsed    string
		analyzed  string
		optimized string
		planned   string
		execution string
	}
}

func (t *debugTracker) Parsed(stmt parser.Statement, err error) {
	t.parsed = t.clock.Now()
	fmt.Fprintf(&t.report.header, "Parsing   %v\n", t.parsed.Sub(t.started))
	if err != nil {
		t.report.parsed = fmt.Sprintf("Error: %v\n", err)
		return
	}
	t.report.parsed = stmt.String() + "\n"
}

func (t *debugTracker) Analyzed(plan plandef.Node, err error) {
	t.analyzed = t.clock.Now()
	fmt.Fprintf(&t.report.header, "Analyzing %v\n", t.analyzed.Sub(t.parsed))
	if err != nil {
		t.report.analyzed = fmt.Sprintf("Error: %v\n", err)
		return
	}
	t.report.analyzed = plandef.Dump(plan)
}

func (t *debugTracker) Optimized(plan plandef.Node, err error) {
	t.optimized = t.clock.Now()
	fmt.Fprintf(&t.report.header, "Optimizing %v\n", t.optimized.Sub(t.analyzed))
	if err != nil {
		t.report.optimized = fmt.Sprintf("Error: %v\n", err)
		return
	}
	t.report.optimized = plandef.Dump(plan)
}

func (t *debugTracker) Planned(plan physical.Node, err error) {
	t.planned = t.clock.Now()
	fmt.Fprintf(&t.report.header, "Planning  %v\n", t.planned.Sub(t.optimized))
	if err != nil {
		t.report.planned = fmt.Sprintf("Error: %v\n", err)
		return
	}
	t.report.planned = physical.Dump(plan)
}

func (t *debugTracker) Executed(rowCount int, err error) {
	if err != nil {
		t.report.execution = fmt.Sprintf("Error: %v\n", err)
		return
	}
	t.report.execution = fmt.Sprintf("%d row(s)\n", rowCount)
}

func (t *debugTracker) Close() {
	end := t.clock.Now()
	t.out.WriteString(t.report.header.String())
	if !t.planned.IsZero() {
		fmt.Fprintf(t.out, "Executing %v\n", end.Sub(t.planned))
	}
	fmt.Fprintf(t.out, "Statement ended at: %s\n", end.UTC().Format(timestampFormat))
	fmt.Fprintf(t.out, "Total: %v\n\n", end.Sub(t.started))
	t.out.WriteString(t.report.input)
	t.out.WriteString("\n\nParsed Statement:\n")
	t.out.WriteString(t.report.parsed)
	if t.report.analyzed != "" {
		t.out.WriteString("\nAnalyzed Plan:\n")
		t.out.WriteString(t.report.analyzed)
	}
	if t.report.optimized != "" {
		t.out.WriteString("\nOptimized Plan:\n")
		t.out.WriteString(t.report.optimized)
	}
	if t.report.planned != "" {
		t.out.WriteString("\nPrepared Plan:\n")
		t.out.WriteString(t.report.planned)
	}
	if t.report.execution != "" {
		t.out.WriteString("\nExecution Summary:\n")
		t.out.WriteString(t.report.execution)
	}
	t.out.WriteByte('\n')

	flushErr := t.out.Flush()
	if flushErr != nil {
		logrus.WithFields(logrus.Fields{
			"statement_id": t.id,
			"error":        flushErr,
		}).Warn("Error writing report for statement")
	}
	// even if the flush failed, we should still try and close the output if
	// needed.
	if t.close != nil {
		closeErr := t.close.Close()
		if closeErr != nil {
			logrus.WithFields(logrus.Fields{
				"statement_id": t.id,
				"error":        closeErr,
			}).Warn("Error closing report for statement")
			return
		}
	}
	if flushErr != nil {
		return
	}
	logrus.WithField("statement_id", t.id).Info("Completed statement debug report")
}

// noopTracker implements the Tracker interface, everything is effectively a
// no-op
type noopTracker struct {
}

func (noopTracker) Parsed(parser.Statement, error)   {}
func (noopTracker) Analyzed(plandef.Node, error)     {}
func (noopTracker) Optimized(plandef.Node, error)    {}
func (noopTracker) Planned(physical.Node, error)     {}
func (noopTracker) Executed(rowCount int, err error) {}
func (noopTracker) Close()                           {}
