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

// Command millstone runs an interactive SQL shell over an in-memory
// millstone session. Statements run against a catalog that lives for the
// duration of the process; EXPLAIN in front of a query prints the pipeline
// trace instead of executing it, and EXPLAIN FINAL prints just the prepared
// physical plan.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/millstonedb/millstone/catalog"
	"github.com/millstonedb/millstone/query"
	"github.com/millstonedb/millstone/query/cache"
	"github.com/millstonedb/millstone/query/rows"
	"github.com/millstonedb/millstone/session"
	"github.com/millstonedb/millstone/util/parallel"
	"github.com/millstonedb/millstone/util/table"
	"github.com/millstonedb/millstone/util/tracing"
	log "github.com/sirupsen/logrus"
)

func main() {
	debug := flag.Bool("debug", false, "write a per-statement debug report to $TMPDIR")
	flag.Parse()

	tracer, err := tracing.New("millstone")
	if err != nil {
		log.Fatalf("Unable to initialize distributed tracing: %v", err)
	}
	defer tracer.Close()

	engine := query.New(session.New(catalog.New(), cache.New()))

	rl, err := readline.New("millstone> ")
	if err != nil {
		log.Fatalf("Unable to initialize line editor: %v", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			break
		}
		rl.SaveHistory(line)
		if err := execute(engine, line, *debug); err != nil {
			fmt.Println(err)
		}
	}
	fmt.Println("Bye!")
}

func execute(engine *query.Engine, line string, debug bool) error {
	if rest, ok := trimKeyword(line, "EXPLAIN"); ok {
		explain := engine.Explain
		if final, ok := trimKeyword(rest, "FINAL"); ok {
			explain = engine.ExplainFinal
			rest = final
		}
		out, err := explain(rest)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	}

	resCh := make(chan rows.Row, 64)
	var got []rows.Row
	wait := parallel.Go(func() {
		for row := range resCh {
			got = append(got, row)
		}
	})
	res, err := engine.Query(context.Background(), line, query.Options{Debug: debug}, resCh)
	wait()
	if err != nil {
		return err
	}
	if res.Columns == nil {
		fmt.Printf("OK, %d row(s) affected\n", res.RowCount)
		return nil
	}

	out := make([][]string, 0, len(got)+1)
	header := make([]string, len(res.Columns))
	for i, col := range res.Columns {
		header[i] = col.Name
	}
	out = append(out, header)
	for _, row := range got {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.String()
		}
		out = append(out, cells)
	}
	table.PrettyPrint(os.Stdout, out, table.HeaderRow)
	fmt.Printf("%d row(s)\n", res.RowCount)
	return nil
}

// trimKeyword strips a leading keyword (case-insensitive, followed by
// whitespace) and reports whether it was present.
func trimKeyword(line, keyword string) (string, bool) {
	if len(line) <= len(keyword) || !strings.EqualFold(line[:len(keyword)], keyword) {
		return line, false
	}
	rest := line[len(keyword):]
	trimmed := strings.TrimLeft(rest, " \t")
	if trimmed == rest {
		return line, false
	}
	return trimmed, true
}
