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
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestSchedulerRunsTasks(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := newScheduler(4)
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := 0
	for range 20 {
		wg.Add(1)
		err := s.submit(context.Background(), func(context.Context) {
			defer wg.Done()
			mu.Lock()
			seen++
			mu.Unlock()
		})
		require.NoError(t, err)
	}
	wg.Wait()
	s.stop()
	assert.Equal(t, 20, seen)
}

func TestSchedulerSubmitDoesNotWaitForWorkers(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := newScheduler(1)
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, s.submit(context.Background(), func(context.Context) {
		defer wg.Done()
		<-release
	}))
	// The only worker is busy, so every task below stays queued
	start := time.Now()
	for range 500 {
		wg.Add(1)
		require.NoError(t, s.submit(context.Background(), func(context.Context) {
			wg.Done()
		}))
	}
	assert.Less(t, time.Since(start), time.Second)
	close(release)
	wg.Wait()
	s.stop()
}

func TestSchedulerStopDrainsQueue(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := newScheduler(1)
	release := make(chan struct{})
	require.NoError(t, s.submit(context.Background(), func(context.Context) {
		<-release
	}))
	queued := make(chan error, 10)
	for range 10 {
		require.NoError(t, s.submit(context.Background(), func(ctx context.Context) {
			select {
			case <-ctx.Done():
				queued <- ctx.Err()
			case <-time.After(5 * time.Second):
				queued <- errors.New("task context not canceled")
			}
		}))
	}
	done := make(chan struct{})
	go func() {
		s.stop()
		close(done)
	}()
	close(release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("stop did not return")
	}
	// Tasks still queued at stop run with a canceled context
	require.Len(t, queued, 10)
	for range 10 {
		assert.ErrorIs(t, <-queued, context.Canceled)
	}
}

func TestSchedulerStopCancelsTasks(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := newScheduler(1)
	started := make(chan struct{})
	canceled := make(chan error, 1)
	require.NoError(t, s.submit(context.Background(), func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		canceled <- ctx.Err()
	}))
	<-started
	s.stop()
	assert.ErrorIs(t, <-canceled, context.Canceled)
	err := s.submit(context.Background(), func(context.Context) {})
	assert.ErrorIs(t, err, ErrClientClosed)
	// A second stop is a no-op
	s.stop()
}

func TestSchedulerTaskFollowsCallerContext(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := newScheduler(1)
	defer s.stop()
	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	require.NoError(t, s.submit(ctx, func(taskCtx context.Context) {
		<-taskCtx.Done()
		result <- taskCtx.Err()
	}))
	cancel()
	select {
	case err := <-result:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatalf("task did not observe caller cancellation")
	}
}

func TestFutureCallbacks(t *testing.T) {
	f := newFuture[int]()
	var got []int
	f.OnComplete(func(v int, err error) {
		assert.NoError(t, err)
		got = append(got, v)
	})
	f.OnSuccessOrFailure(
		func(v int) { got = append(got, v*10) },
		func(error) { t.Errorf("unexpected failure callback") },
	)
	f.complete(4, nil)
	// Only the first completion counts
	f.complete(5, errors.New("late"))
	value, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, value)
	assert.Equal(t, []int{4, 40}, got)
	// Registered after completion, runs immediately
	f.OnComplete(func(v int, _ error) { got = append(got, v+1) })
	assert.Equal(t, []int{4, 40, 5}, got)
	select {
	case <-f.Done():
	default:
		t.Fatalf("done channel not closed")
	}
}

func TestFutureFailure(t *testing.T) {
	failure := errors.New("failed")
	f := completedFuture("", failure)
	var gotErr error
	f.OnSuccessOrFailure(
		func(string) { t.Errorf("unexpected success callback") },
		func(err error) { gotErr = err },
	)
	assert.ErrorIs(t, gotErr, failure)
}

func TestFutureAwaitContext(t *testing.T) {
	f := newFuture[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
