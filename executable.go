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
	"fmt"
	"time"

	"github.com/blinklabs-io/gohiero/ids"
	"github.com/blinklabs-io/gohiero/transport"
	"github.com/blinklabs-io/gohiero/wire"
)

// executable supplies the request-specific parts of an execution. R is the decoded
// node response and T the result handed to the caller
type executable[R any, T any] interface {
	operationName() string
	method() wire.Method
	// Nodes the request may be sent to. Empty means any node known to the client
	nodeAccountIDs() []ids.AccountID
	// Transaction the request is about, used to annotate precheck errors
	transactionID() ids.TransactionID
	makeRequest(nodeID ids.AccountID) ([]byte, error)
	parseResponse(data []byte) (R, Status, error)
	shouldRetry(status Status, resp R) executionState
	mapResponse(nodeID ids.AccountID, resp R, request []byte) (T, error)
}

// execute runs e until it succeeds, fails with a fatal error, runs out of attempts, or
// the timeout expires. A timeout of zero uses the client's request timeout
func execute[R any, T any](
	ctx context.Context,
	c *Client,
	e executable[R, T],
	timeout time.Duration,
) (T, error) {
	var zero T
	if c.isClosed() {
		return zero, ErrClientClosed
	}
	if timeout <= 0 {
		timeout = c.requestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	c.metrics.recordExecution()
	ret, err := runAttempts(ctx, c, e)
	c.metrics.recordResult(err, KindOf(err))
	if err != nil {
		c.logger.Debug(
			"request failed",
			"component", "executor",
			"operation", e.operationName(),
			"error", err,
		)
	}
	return ret, err
}

// executeAsync runs the same execution as execute on the client's scheduler
func executeAsync[R any, T any](
	ctx context.Context,
	c *Client,
	e executable[R, T],
	timeout time.Duration,
) *Future[T] {
	return runAsync(
		ctx,
		c,
		func(taskCtx context.Context) (T, error) {
			return execute(taskCtx, c, e, timeout)
		},
	)
}

func runAttempts[R any, T any](
	ctx context.Context,
	c *Client,
	e executable[R, T],
) (T, error) {
	var zero T
	candidates := e.nodeAccountIDs()
	tried := make(map[ids.AccountID]bool)
	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, &TimeoutError{Attempts: attempt - 1, LastErr: lastErr, Err: err}
		}
		sel, err := c.registry.Select(candidates, tried)
		if err != nil && len(tried) > 0 {
			// Every candidate has been tried. Allow them again
			clear(tried)
			sel, err = c.registry.Select(candidates, tried)
		}
		if err != nil {
			return zero, err
		}
		if sel.Wait > 0 {
			if err := sleepContext(ctx, sel.Wait); err != nil {
				return zero, &TimeoutError{Attempts: attempt - 1, LastErr: lastErr, Err: err}
			}
		}
		endpoint := sel.Endpoint
		nodeID := endpoint.AccountID()
		tried[nodeID] = true
		request, err := e.makeRequest(nodeID)
		if err != nil {
			return zero, err
		}
		c.metrics.recordAttempt()
		c.logger.Debug(
			"sending request",
			"component", "executor",
			"operation", e.operationName(),
			"node", nodeID.String(),
			"attempt", attempt,
			"method", e.method().FullName(),
		)
		target := transport.Target{
			NodeID:   nodeID,
			Address:  endpoint.Address(),
			CertHash: endpoint.CertHash(),
		}
		attemptCtx, attemptCancel := context.WithTimeout(ctx, c.maxAttemptTimeout)
		respData, sendErr := c.transport.Send(
			attemptCtx,
			target,
			e.method().FullName(),
			request,
		)
		attemptCancel()
		var resp R
		var status Status
		var state executionState
		var attemptErr error
		switch {
		case sendErr != nil:
			attemptErr = sendErr
			if ctx.Err() != nil {
				return zero, &TimeoutError{Attempts: attempt, LastErr: sendErr, Err: ctx.Err()}
			}
			if !transport.IsRetryable(sendErr) {
				c.emitAttempt(AttemptEvent{
					Operation: e.operationName(),
					NodeID:    nodeID,
					Attempt:   attempt,
					Outcome:   executionStateError.String(),
					Err:       sendErr,
				})
				return zero, sendErr
			}
			state = executionStateNodeFailure
		default:
			var parseErr error
			resp, status, parseErr = e.parseResponse(respData)
			if parseErr != nil {
				attemptErr = fmt.Errorf(
					"%w from node %s: %w",
					ErrMalformedMessage,
					nodeID,
					parseErr,
				)
				state = executionStateNodeFailure
			} else {
				state = e.shouldRetry(status, resp)
			}
		}
		event := AttemptEvent{
			Operation: e.operationName(),
			NodeID:    nodeID,
			Attempt:   attempt,
			Outcome:   state.String(),
			Status:    status,
		}
		switch state {
		case executionStateFinished:
			c.registry.ReportSuccess(nodeID)
			c.emitAttempt(event)
			return e.mapResponse(nodeID, resp, request)
		case executionStateError:
			event.Err = &PrecheckError{
				Status:        status,
				TransactionID: e.transactionID(),
				NodeID:        nodeID,
			}
			c.emitAttempt(event)
			return zero, event.Err
		case executionStateNodeFailure:
			if attemptErr == nil {
				attemptErr = &PrecheckError{
					Status:        status,
					TransactionID: e.transactionID(),
					NodeID:        nodeID,
					Retryable:     true,
				}
			}
			event.NodeBackoff = c.registry.ReportFailure(nodeID)
			c.metrics.recordRetry(true)
			c.logger.Warn(
				"node failure, backing off",
				"component", "executor",
				"operation", e.operationName(),
				"node", nodeID.String(),
				"attempt", attempt,
				"backoff", event.NodeBackoff,
				"error", attemptErr,
			)
		case executionStateRetry:
			attemptErr = &PrecheckError{
				Status:        status,
				TransactionID: e.transactionID(),
				NodeID:        nodeID,
				Retryable:     true,
			}
			c.metrics.recordRetry(false)
		}
		lastErr = attemptErr
		event.Err = attemptErr
		if attempt >= c.maxAttempts {
			c.emitAttempt(event)
			return zero, &MaxAttemptsExceededError{Attempts: attempt, LastErr: lastErr}
		}
		event.Delay = c.attemptDelay(ctx, attempt)
		c.emitAttempt(event)
		if err := sleepContext(ctx, event.Delay); err != nil {
			return zero, &TimeoutError{Attempts: attempt, LastErr: lastErr, Err: err}
		}
	}
}

// attemptDelay returns the delay before the attempt following the given one. It grows
// exponentially from the minimum backoff up to the maximum, and never takes more than
// half of the time left before the deadline
func (c *Client) attemptDelay(ctx context.Context, attempt int) time.Duration {
	delay := c.minBackoff
	for i := 1; i < attempt && delay < c.maxBackoff; i++ {
		delay *= 2
	}
	delay = min(delay, c.maxBackoff)
	if deadline, ok := ctx.Deadline(); ok {
		delay = min(delay, time.Until(deadline)/2)
	}
	return max(delay, 0)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
