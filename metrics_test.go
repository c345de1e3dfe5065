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

package hiero_test

import (
	"context"
	"testing"

	hiero "github.com/blinklabs-io/gohiero"
	"github.com/blinklabs-io/gohiero/internal/test/mocknode"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCollector(t *testing.T) {
	metrics := hiero.NewMetrics()
	assert.Equal(t, 10, testutil.CollectAndCount(metrics))
	registry := prometheus.NewPedanticRegistry()
	require.NoError(t, registry.Register(metrics))
}

func TestMetricsRecordExecutions(t *testing.T) {
	metrics := hiero.NewMetrics()
	mock := mocknode.New(
		submitEntry(testNode3, hiero.StatusBusy),
		submitEntry(testNode3, hiero.StatusOk),
		submitEntry(testNode3, hiero.StatusInvalidSignature),
	)
	c := newTestClient(t, mock, hiero.WithMetrics(metrics))
	defer c.Close()
	_, err := newFileDelete(t, testNode3).Execute(context.Background(), c)
	require.NoError(t, err)
	_, err = newFileDelete(t, testNode3).Execute(context.Background(), c)
	require.Error(t, err)
	noUnexpectedCalls(t, mock)

	stats := metrics.Stats()
	assert.Equal(t, uint64(2), stats.Executions)
	assert.Equal(t, uint64(3), stats.Attempts)
	assert.Equal(t, uint64(1), stats.Retries)
	assert.Equal(t, uint64(0), stats.NodeFailures)
	assert.Equal(t, uint64(1), stats.Successes)
	assert.Equal(t, uint64(1), stats.Failures)
	assert.Equal(t, uint64(1), stats.FatalPrechecks)
	assert.False(t, stats.LastSuccess.IsZero())

	metrics.Reset()
	stats = metrics.Stats()
	assert.Zero(t, stats.Executions)
	assert.Zero(t, stats.Attempts)
	assert.True(t, stats.LastSuccess.IsZero())
}
