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
	"fmt"
	"strings"

	"github.com/millstonedb/millstone/query/plandef"
	"github.com/millstonedb/millstone/query/physical"
)

// Explain renders every pipeline stage, from the parsed plan through the
// prepared physical plan, plus whether codegen is enabled. Stages that have
// not been forced yet are forced now. Explain never fails: a stage that
// fails to evaluate, or to render, contributes its error text as that
// section's body and the remaining sections render normally.
func (p *Pipeline) Explain() string {
	var b strings.Builder
	section(&b, "Parsed Logical Plan", func() (string, error) {
		return plandef.Dump(p.plan), nil
	})
	section(&b, "Analyzed Logical Plan", func() (string, error) {
		plan, err := p.Analyzed()
		if err != nil {
			return "", err
		}
		return plandef.Dump(plan), nil
	})
	section(&b, "With Cached Data", func() (string, error) {
		plan, err := p.WithCachedData()
		if err != nil {
			return "", err
		}
		return plandef.Dump(plan), nil
	})
	section(&b, "Optimized Logical Plan", func() (string, error) {
		plan, err := p.OptimizedPlan()
		if err != nil {
			return "", err
		}
		return plandef.Dump(plan), nil
	})
	section(&b, "Physical Plan", func() (string, error) {
		plan, err := p.ChosenPhysicalPlan()
		if err != nil {
			return "", err
		}
		return physical.Dump(plan), nil
	})
	section(&b, "Prepared Physical Plan", func() (string, error) {
		plan, err := p.PreparedPhysicalPlan()
		if err != nil {
			return "", err
		}
		return physical.Dump(plan), nil
	})
	codegen := "off"
	if p.sess.Config().CodegenEnabled {
		codegen = "on"
	}
	fmt.Fprintf(&b, "Codegen: %s\n", codegen)
	return b.String()
}

// ExplainFinal renders only the prepared physical plan. Like Explain it
// never fails.
func (p *Pipeline) ExplainFinal() string {
	var b strings.Builder
	section(&b, "Prepared Physical Plan", func() (string, error) {
		plan, err := p.PreparedPhysicalPlan()
		if err != nil {
			return "", err
		}
		return physical.Dump(plan), nil
	})
	return b.String()
}

func section(b *strings.Builder, title string, render func() (string, error)) {
	fmt.Fprintf(b, "== %s ==\n", title)
	text := renderSafely(render)
	b.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		b.WriteByte('\n')
	}
}

// renderSafely returns the rendered text, or the failure's description if
// evaluation or rendering fails. Panics during rendering are captured too; a
// broken String method on one plan node must not take down the whole report.
func renderSafely(render func() (text string, err error)) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprintf("<failed to render: %v>", r)
		}
	}()
	text, err := render()
	if err != nil {
		return err.Error()
	}
	return text
}
