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
	"sync"
)

// Future is the handle for a request running in the background
type Future[T any] struct {
	done      chan struct{}
	once      sync.Once
	mu        sync.Mutex
	value     T
	err       error
	callbacks []func(T, error)
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{
		done: make(chan struct{}),
	}
}

func completedFuture[T any](value T, err error) *Future[T] {
	f := newFuture[T]()
	f.complete(value, err)
	return f
}

// runAsync runs fn on the client's scheduler
func runAsync[T any](
	ctx context.Context,
	c *Client,
	fn func(ctx context.Context) (T, error),
) *Future[T] {
	future := newFuture[T]()
	err := c.scheduler.submit(
		ctx,
		func(taskCtx context.Context) {
			future.complete(fn(taskCtx))
		},
	)
	if err != nil {
		var zero T
		future.complete(zero, err)
	}
	return future
}

func (f *Future[T]) complete(value T, err error) {
	f.once.Do(func() {
		f.mu.Lock()
		f.value = value
		f.err = err
		callbacks := f.callbacks
		f.callbacks = nil
		close(f.done)
		f.mu.Unlock()
		for _, cb := range callbacks {
			cb(value, err)
		}
	})
}

// Done returns a channel that is closed when the result is available
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the result is available or the context is done. Canceling the
// context does not stop the background request
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// OnComplete registers a callback that receives the result. A callback registered
// after completion runs immediately on the calling goroutine
func (f *Future[T]) OnComplete(cb func(T, error)) {
	f.mu.Lock()
	select {
	case <-f.done:
		f.mu.Unlock()
		cb(f.value, f.err)
		return
	default:
	}
	f.callbacks = append(f.callbacks, cb)
	f.mu.Unlock()
}

// OnSuccessOrFailure registers separate callbacks for the two outcomes
func (f *Future[T]) OnSuccessOrFailure(onSuccess func(T), onFailure func(error)) {
	f.OnComplete(func(value T, err error) {
		if err != nil {
			if onFailure != nil {
				onFailure(err)
			}
			return
		}
		if onSuccess != nil {
			onSuccess(value)
		}
	})
}
