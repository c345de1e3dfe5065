// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hiero

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "hiero_client"

// Metrics tracks request execution for a client. Counters are atomic and safe to update
// from concurrent executions
type Metrics struct {
	executions      atomic.Uint64
	attempts        atomic.Uint64
	retries         atomic.Uint64
	nodeFailures    atomic.Uint64
	fatalPrechecks  atomic.Uint64
	successes       atomic.Uint64
	failures        atomic.Uint64
	timeouts        atomic.Uint64
	resubmissions   atomic.Uint64
	receiptPolls    atomic.Uint64
	lastSuccessNano atomic.Int64

	mu        sync.RWMutex
	startTime time.Time
}

// MetricsStats is a point-in-time snapshot of Metrics
type MetricsStats struct {
	Executions     uint64
	Attempts       uint64
	Retries        uint64
	NodeFailures   uint64
	FatalPrechecks uint64
	Successes      uint64
	Failures       uint64
	Timeouts       uint64
	Resubmissions  uint64
	ReceiptPolls   uint64
	LastSuccess    time.Time
	StartTime      time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),
	}
}

func (m *Metrics) recordExecution() {
	m.executions.Add(1)
}

func (m *Metrics) recordAttempt() {
	m.attempts.Add(1)
}

func (m *Metrics) recordRetry(nodeFailure bool) {
	m.retries.Add(1)
	if nodeFailure {
		m.nodeFailures.Add(1)
	}
}

func (m *Metrics) recordResult(err error, kind ErrorKind) {
	if err == nil {
		m.successes.Add(1)
		m.lastSuccessNano.Store(time.Now().UnixNano())
		return
	}
	m.failures.Add(1)
	switch kind {
	case ErrorKindTimeout:
		m.timeouts.Add(1)
	case ErrorKindFatalPrecheck:
		m.fatalPrechecks.Add(1)
	}
}

func (m *Metrics) recordResubmission() {
	m.resubmissions.Add(1)
}

func (m *Metrics) recordReceiptPoll() {
	m.receiptPolls.Add(1)
}

// Stats returns a snapshot of the current metrics
func (m *Metrics) Stats() MetricsStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ret := MetricsStats{
		Executions:     m.executions.Load(),
		Attempts:       m.attempts.Load(),
		Retries:        m.retries.Load(),
		NodeFailures:   m.nodeFailures.Load(),
		FatalPrechecks: m.fatalPrechecks.Load(),
		Successes:      m.successes.Load(),
		Failures:       m.failures.Load(),
		Timeouts:       m.timeouts.Load(),
		Resubmissions:  m.resubmissions.Load(),
		ReceiptPolls:   m.receiptPolls.Load(),
		StartTime:      m.startTime,
	}
	if nanos := m.lastSuccessNano.Load(); nanos != 0 {
		ret.LastSuccess = time.Unix(0, nanos)
	}
	return ret
}

// Reset resets all metrics
func (m *Metrics) Reset() {
	m.executions.Store(0)
	m.attempts.Store(0)
	m.retries.Store(0)
	m.nodeFailures.Store(0)
	m.fatalPrechecks.Store(0)
	m.successes.Store(0)
	m.failures.Store(0)
	m.timeouts.Store(0)
	m.resubmissions.Store(0)
	m.receiptPolls.Store(0)
	m.lastSuccessNano.Store(0)

	m.mu.Lock()
	m.startTime = time.Now()
	m.mu.Unlock()
}

type metricDesc struct {
	desc  *prometheus.Desc
	value func(MetricsStats) uint64
}

var metricDescs = []metricDesc{
	{
		desc:  newCounterDesc("executions_total", "Requests passed to the execution engine"),
		value: func(s MetricsStats) uint64 { return s.Executions },
	},
	{
		desc:  newCounterDesc("attempts_total", "Attempts sent to a node"),
		value: func(s MetricsStats) uint64 { return s.Attempts },
	},
	{
		desc:  newCounterDesc("retries_total", "Attempts that were retried"),
		value: func(s MetricsStats) uint64 { return s.Retries },
	},
	{
		desc:  newCounterDesc("node_failures_total", "Attempts that put a node into backoff"),
		value: func(s MetricsStats) uint64 { return s.NodeFailures },
	},
	{
		desc:  newCounterDesc("fatal_prechecks_total", "Requests rejected by a node precheck"),
		value: func(s MetricsStats) uint64 { return s.FatalPrechecks },
	},
	{
		desc:  newCounterDesc("successes_total", "Requests that completed"),
		value: func(s MetricsStats) uint64 { return s.Successes },
	},
	{
		desc:  newCounterDesc("failures_total", "Requests that failed"),
		value: func(s MetricsStats) uint64 { return s.Failures },
	},
	{
		desc:  newCounterDesc("timeouts_total", "Requests that ran out of time"),
		value: func(s MetricsStats) uint64 { return s.Timeouts },
	},
	{
		desc:  newCounterDesc("resubmissions_total", "Transactions resubmitted after consensus throttling"),
		value: func(s MetricsStats) uint64 { return s.Resubmissions },
	},
	{
		desc:  newCounterDesc("receipt_polls_total", "Receipt lookups issued while waiting for consensus"),
		value: func(s MetricsStats) uint64 { return s.ReceiptPolls },
	},
}

func newCounterDesc(name string, help string) *prometheus.Desc {
	return prometheus.NewDesc(
		prometheus.BuildFQName(metricsNamespace, "", name),
		help,
		nil,
		nil,
	)
}

// Describe implements prometheus.Collector
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range metricDescs {
		ch <- d.desc
	}
}

// Collect implements prometheus.Collector
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	stats := m.Stats()
	for _, d := range metricDescs {
		ch <- prometheus.MustNewConstMetric(
			d.desc,
			prometheus.CounterValue,
			float64(d.value(stats)),
		)
	}
}
