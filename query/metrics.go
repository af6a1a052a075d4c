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
	metricsutil "github.com/millstonedb/millstone/util/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type queryMetrics struct {
	parseQueryDurationSeconds   prometheus.Summary
	analyzeQueryDurationSeconds prometheus.Summary
	planQueryDurationSeconds    prometheus.Summary
	executeQueryDurationSeconds prometheus.Summary
	failedQueries               prometheus.Counter
}

var metrics queryMetrics

func init() {
	mr := metricsutil.Registry{R: prometheus.DefaultRegisterer}
	metrics = queryMetrics{
		parseQueryDurationSeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace:  "millstone",
			Subsystem:  "query",
			Name:       "parse_duration_seconds",
			Help:       `The time it takes to parse a statement.`,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.95: 0.005, 0.99: 0.001},
		}),
		analyzeQueryDurationSeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace: "millstone",
			Subsystem: "query",
			Name:      "analyze_duration_seconds",
			Help: `The time it takes to resolve a query against the catalog.

This includes the analysis validity check, the cache substitution pass and
the optimizer rules, since forcing the optimized plan forces everything
before it.
`,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.95: 0.005, 0.99: 0.001},
		}),
		planQueryDurationSeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace: "millstone",
			Subsystem: "query",
			Name:      "planning_duration_seconds",
			Help: `The time it takes to come up with an executable plan.

This covers physical strategy selection and the prepare-for-execution pass.
Strategy selection takes the first valid candidate rather than costing the
alternatives, so these observations should stay small and flat; a shift in
the distribution would indicate a change in the code rather than in usage.
`,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.95: 0.005, 0.99: 0.001},
		}),
		executeQueryDurationSeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace: "millstone",
			Subsystem: "query",
			Name:      "execute_duration_seconds",
			Help: `The time it takes to execute a query.

This happens after planning, and it covers draining the row stream to the
caller's channel.
`,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.95: 0.005, 0.99: 0.001},
		}),
		failedQueries: mr.NewCounter(prometheus.CounterOpts{
			Namespace: "millstone",
			Subsystem: "query",
			Name:      "failed_total",
			Help:      `The number of queries that returned an error instead of completing.`,
		}),
	}
}
