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
	"errors"
	"sync"
	"testing"
	"time"

	hiero "github.com/blinklabs-io/gohiero"
	"github.com/blinklabs-io/gohiero/ids"
	"github.com/blinklabs-io/gohiero/internal/test/mocknode"
	"github.com/blinklabs-io/gohiero/node"
	"github.com/blinklabs-io/gohiero/transport"
	"github.com/blinklabs-io/gohiero/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

type attemptRecorder struct {
	mu     sync.Mutex
	events []hiero.AttemptEvent
}

func (r *attemptRecorder) record(event hiero.AttemptEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *attemptRecorder) Events() []hiero.AttemptEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]hiero.AttemptEvent(nil), r.events...)
}

func TestExecuteRetriesWithIncreasingBackoff(t *testing.T) {
	defer goleak.VerifyNone(t)
	const failures = 3
	mock := mocknode.New()
	for range failures {
		mock.Add(mocknode.Entry{Node: testNode3, Err: mocknode.Unavailable()})
	}
	mock.Add(submitEntry(testNode3, hiero.StatusOk))
	recorder := &attemptRecorder{}
	c := newTestClient(t, mock, hiero.WithAttemptFunc(recorder.record))
	defer c.Close()
	resp, err := newFileDelete(t, testNode3).Execute(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, testNode3, resp.NodeID())
	noUnexpectedCalls(t, mock)
	events := recorder.Events()
	require.Len(t, events, failures+1)
	for idx, event := range events[:failures] {
		assert.Equal(t, idx+1, event.Attempt)
		assert.Equal(t, "node-failure", event.Outcome)
		assert.ErrorIs(t, event.Err, transport.ErrTransport)
		if idx > 0 {
			if event.Delay <= events[idx-1].Delay {
				t.Fatalf(
					"did not get increasing delay: attempt %d waited %s, attempt %d waited %s",
					idx,
					events[idx-1].Delay,
					idx+1,
					event.Delay,
				)
			}
			assert.Greater(t, event.NodeBackoff, events[idx-1].NodeBackoff)
		}
	}
	last := events[failures]
	assert.Equal(t, failures+1, last.Attempt)
	assert.Equal(t, "finished", last.Outcome)
	stats := c.Metrics().Stats()
	assert.Equal(t, uint64(failures+1), stats.Attempts)
	assert.Equal(t, uint64(failures), stats.NodeFailures)
	assert.Equal(t, uint64(1), stats.Successes)
}

func TestExecuteFatalPrecheckMakesOneAttempt(t *testing.T) {
	defer goleak.VerifyNone(t)
	mock := mocknode.New(
		submitEntry(ids.AccountID{}, hiero.StatusInvalidSignature),
		submitEntry(ids.AccountID{}, hiero.StatusOk),
	)
	c := newTestClient(t, mock)
	defer c.Close()
	_, err := newFileDelete(t).Execute(context.Background(), c)
	require.Error(t, err)
	var precheckErr *hiero.PrecheckError
	require.ErrorAs(t, err, &precheckErr)
	assert.Equal(t, hiero.StatusInvalidSignature, precheckErr.Status)
	assert.False(t, precheckErr.Retryable)
	assert.Equal(t, hiero.ErrorKindFatalPrecheck, hiero.KindOf(err))
	assert.Len(t, mock.Calls(), 1)
	assert.Equal(t, 1, mock.Remaining())
	// Precheck rejections do not count against the node
	for _, id := range []ids.AccountID{testNode3, testNode4} {
		endpoint, ok := c.Registry().Endpoint(id)
		require.True(t, ok)
		assert.Zero(t, endpoint.Health().Failures)
	}
}

func TestExecuteFailsOverToHealthyNode(t *testing.T) {
	defer goleak.VerifyNone(t)
	mock := mocknode.New(
		mocknode.Entry{Node: testNode3, Err: mocknode.Unavailable()},
		submitEntry(testNode4, hiero.StatusOk),
	)
	c := newTestClient(t, mock)
	defer c.Close()
	resp, err := newFileDelete(t, testNode3, testNode4).Execute(context.Background(), c)
	require.NoError(t, err)
	noUnexpectedCalls(t, mock)
	assert.Equal(t, testNode4, resp.NodeID())
	calls := mock.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, testNode3, calls[0].Target.NodeID)
	assert.Equal(t, "node3.test:50211", calls[0].Target.Address)
	assert.Equal(t, testNode4, submittedBody(t, calls[1].Request).NodeAccountID)
	n3, _ := c.Registry().Endpoint(testNode3)
	health := n3.Health()
	assert.Positive(t, health.CurrentBackoff)
	assert.Equal(t, uint64(1), health.Failures)
	n4, _ := c.Registry().Endpoint(testNode4)
	assert.True(t, n4.Health().BackoffUntil.IsZero())
}

func TestExecuteBusyRetriesWithoutPenalty(t *testing.T) {
	defer goleak.VerifyNone(t)
	mock := mocknode.New(
		submitEntry(testNode3, hiero.StatusBusy),
		submitEntry(testNode3, hiero.StatusOk),
	)
	recorder := &attemptRecorder{}
	c := newTestClient(t, mock, hiero.WithAttemptFunc(recorder.record))
	defer c.Close()
	_, err := newFileDelete(t, testNode3).Execute(context.Background(), c)
	require.NoError(t, err)
	events := recorder.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "retry", events[0].Outcome)
	assert.Equal(t, hiero.StatusBusy, events[0].Status)
	assert.Zero(t, events[0].NodeBackoff)
	n3, _ := c.Registry().Endpoint(testNode3)
	assert.Zero(t, n3.Health().Failures)
}

func TestExecutePlatformNotActivePenalizesNode(t *testing.T) {
	defer goleak.VerifyNone(t)
	mock := mocknode.New(
		submitEntry(testNode3, hiero.StatusPlatformNotActive),
		submitEntry(testNode4, hiero.StatusOk),
	)
	c := newTestClient(t, mock)
	defer c.Close()
	resp, err := newFileDelete(t, testNode3, testNode4).Execute(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, testNode4, resp.NodeID())
	n3, _ := c.Registry().Endpoint(testNode3)
	assert.Equal(t, uint64(1), n3.Health().Failures)
}

func TestExecuteMaxAttempts(t *testing.T) {
	defer goleak.VerifyNone(t)
	mock := mocknode.New(
		mocknode.Entry{Err: mocknode.Unavailable()},
		mocknode.Entry{Err: mocknode.Unavailable()},
	)
	c := newTestClient(t, mock, hiero.WithMaxAttempts(2))
	defer c.Close()
	_, err := newFileDelete(t).Execute(context.Background(), c)
	var exhausted *hiero.MaxAttemptsExceededError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 2, exhausted.Attempts)
	assert.ErrorIs(t, err, transport.ErrTransport)
	assert.Equal(t, hiero.ErrorKindExhausted, hiero.KindOf(err))
	assert.Zero(t, mock.Remaining())
}

func TestExecuteTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)
	mock := mocknode.New(
		mocknode.Entry{Delay: time.Minute, Response: mocknode.SubmitResponse(0)},
	)
	c := newTestClient(t, mock)
	defer c.Close()
	start := time.Now()
	_, err := newFileDelete(t, testNode3).ExecuteWithTimeout(
		context.Background(),
		c,
		50*time.Millisecond,
	)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	var timeoutErr *hiero.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, hiero.ErrorKindTimeout, hiero.KindOf(err))
	assert.Equal(t, uint64(1), c.Metrics().Stats().Timeouts)
}

func TestExecuteNoHealthyNodes(t *testing.T) {
	defer goleak.VerifyNone(t)
	mock := mocknode.New()
	c := newTestClient(t, mock)
	defer c.Close()
	_, err := newFileDelete(t, ids.NewAccountID(99)).Execute(context.Background(), c)
	require.ErrorIs(t, err, node.ErrNoHealthyNodes)
	assert.Equal(t, hiero.ErrorKindNoHealthyNodes, hiero.KindOf(err))
	assert.Empty(t, mock.Calls())
}

func TestExecuteNonRetryableTransportError(t *testing.T) {
	defer goleak.VerifyNone(t)
	mock := mocknode.New(
		mocknode.Entry{Err: mocknode.Rejected()},
		submitEntry(ids.AccountID{}, hiero.StatusOk),
	)
	c := newTestClient(t, mock)
	defer c.Close()
	_, err := newFileDelete(t).Execute(context.Background(), c)
	require.Error(t, err)
	assert.Equal(t, hiero.ErrorKindTransport, hiero.KindOf(err))
	assert.Len(t, mock.Calls(), 1)
}

func TestExecuteMalformedResponseRetries(t *testing.T) {
	defer goleak.VerifyNone(t)
	mock := mocknode.New(
		mocknode.Entry{Node: testNode3, Response: []byte{0xff}},
		submitEntry(testNode3, hiero.StatusOk),
	)
	c := newTestClient(t, mock)
	defer c.Close()
	_, err := newFileDelete(t, testNode3).Execute(context.Background(), c)
	require.NoError(t, err)
	assert.Zero(t, mock.Remaining())
}

func TestExecuteConcurrentRequests(t *testing.T) {
	defer goleak.VerifyNone(t)
	const requests = 20
	mock := mocknode.New()
	for range requests {
		mock.Add(submitEntry(ids.AccountID{}, hiero.StatusOk))
	}
	c := newTestClient(t, mock)
	defer c.Close()
	txs := make([]*hiero.FileDeleteTransaction, requests)
	for idx := range txs {
		txs[idx] = newFileDelete(t)
	}
	var eg errgroup.Group
	for _, tx := range txs {
		eg.Go(func() error {
			_, err := tx.Execute(context.Background(), c)
			return err
		})
	}
	require.NoError(t, eg.Wait())
	seen := map[ids.AccountID]bool{}
	for _, call := range mock.Calls() {
		seen[call.Target.NodeID] = true
	}
	assert.Len(t, seen, 2)
}

func TestExecuteAsync(t *testing.T) {
	defer goleak.VerifyNone(t)
	mock := mocknode.New(
		submitEntry(testNode3, hiero.StatusOk),
		submitEntry(testNode3, hiero.StatusInvalidSignature),
	)
	c := newTestClient(t, mock)
	defer c.Close()
	future := newFileDelete(t, testNode3).ExecuteAsync(context.Background(), c)
	resp, err := future.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testNode3, resp.NodeID())

	failed := make(chan error, 1)
	newFileDelete(t, testNode3).
		ExecuteAsync(context.Background(), c).
		OnSuccessOrFailure(
			func(*hiero.TransactionResponse) { failed <- errors.New("unexpected success") },
			func(err error) { failed <- err },
		)
	select {
	case err := <-failed:
		assert.Equal(t, hiero.ErrorKindFatalPrecheck, hiero.KindOf(err))
	case <-time.After(5 * time.Second):
		t.Fatalf("did not get expected failure callback")
	}
}

func TestExecuteAsyncBusyWorkers(t *testing.T) {
	defer goleak.VerifyNone(t)
	const count = 100
	entries := []mocknode.Entry{
		{
			Node:     testNode3,
			Method:   wire.MethodDeleteFile,
			Response: mocknode.SubmitResponse(uint32(hiero.StatusOk)),
			Delay:    2 * time.Second,
		},
	}
	for range count - 1 {
		entries = append(entries, submitEntry(testNode3, hiero.StatusOk))
	}
	mock := mocknode.New(entries...)
	c := newTestClient(t, mock, hiero.WithAsyncWorkers(1))
	defer c.Close()
	// The single worker is stuck on the delayed answer while the rest queue up
	start := time.Now()
	futures := make([]*hiero.Future[*hiero.TransactionResponse], 0, count)
	for range count {
		futures = append(
			futures,
			newFileDelete(t, testNode3).ExecuteAsync(context.Background(), c),
		)
	}
	assert.Less(t, time.Since(start), time.Second)
	for _, future := range futures {
		resp, err := future.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, testNode3, resp.NodeID())
	}
}

func TestExecuteClosedClient(t *testing.T) {
	defer goleak.VerifyNone(t)
	mock := mocknode.New()
	c := newTestClient(t, mock)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	_, err := newFileDelete(t).Execute(context.Background(), c)
	assert.ErrorIs(t, err, hiero.ErrClientClosed)
	_, err = newFileDelete(t).ExecuteAsync(context.Background(), c).Await(context.Background())
	assert.ErrorIs(t, err, hiero.ErrClientClosed)
	_, err = hiero.NewReceiptQuery().
		SetTransactionID(ids.NewTransactionID(testOperatorID)).
		Execute(context.Background(), c)
	assert.ErrorIs(t, err, hiero.ErrClientClosed)
	assert.Empty(t, mock.Calls())
}
