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

type schedulerTask func(ctx context.Context)

// scheduler runs background executions on a fixed set of workers. Its queue is
// unbounded so submit never waits for a worker
type scheduler struct {
	numWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.Mutex
	cond       *sync.Cond
	queue      []schedulerTask
	started    bool
	stopped    bool
}

func newScheduler(numWorkers int) *scheduler {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &scheduler{
		numWorkers: numWorkers,
		ctx:        ctx,
		cancel:     cancel,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// start launches the workers on first use. The caller holds mu
func (s *scheduler) start() {
	if s.started {
		return
	}
	s.started = true
	for i := 0; i < s.numWorkers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

// submit queues a task and returns without waiting for a worker. The task's context
// is canceled when either the caller's context or the scheduler is done
func (s *scheduler) submit(ctx context.Context, task schedulerTask) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrClientClosed
	}
	s.start()
	taskCtx, taskCancel := context.WithCancel(ctx)
	stopLink := context.AfterFunc(s.ctx, taskCancel)
	s.queue = append(
		s.queue,
		func(context.Context) {
			defer taskCancel()
			defer stopLink()
			task(taskCtx)
		},
	)
	s.cond.Signal()
	return nil
}

// stop cancels in-flight tasks, lets the workers drain the queue, and waits for them
func (s *scheduler) stop() {
	s.cancel()
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.cond.Broadcast()
	s.mu.Unlock()
	s.wg.Wait()
}

// next blocks until a task is queued. It returns false once the scheduler is stopped
// and the queue is empty
func (s *scheduler) next() (schedulerTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.queue) == 0 && !s.stopped {
		s.cond.Wait()
	}
	if len(s.queue) == 0 {
		return nil, false
	}
	task := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	return task, true
}

func (s *scheduler) worker() {
	defer s.wg.Done()
	for {
		task, ok := s.next()
		if !ok {
			return
		}
		task(s.ctx)
	}
}
