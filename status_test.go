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
	"fmt"
	"testing"
	"time"

	"github.com/blinklabs-io/gohiero/ids"
	"github.com/blinklabs-io/gohiero/keys"
	"github.com/blinklabs-io/gohiero/node"
	"github.com/blinklabs-io/gohiero/transport"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestStatusString(t *testing.T) {
	testDefs := []struct {
		status   Status
		expected string
	}{
		{StatusOk, "OK"},
		{StatusBusy, "BUSY"},
		{StatusSuccess, "SUCCESS"},
		{StatusThrottledAtConsensus, "THROTTLED_AT_CONSENSUS"},
		{StatusPlatformNotActive, "PLATFORM_NOT_ACTIVE"},
		{Status(9999), "STATUS_9999"},
	}
	for _, testDef := range testDefs {
		assert.Equal(t, testDef.expected, testDef.status.String())
	}
}

func TestPrecheckState(t *testing.T) {
	testDefs := []struct {
		status   Status
		expected executionState
	}{
		{StatusOk, executionStateFinished},
		{StatusBusy, executionStateRetry},
		{StatusPlatformNotActive, executionStateNodeFailure},
		{StatusPlatformTransactionNotCreated, executionStateNodeFailure},
		{StatusInvalidSignature, executionStateError},
		{StatusInsufficientPayerBalance, executionStateError},
		{StatusThrottledAtConsensus, executionStateError},
		{Status(9999), executionStateError},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.status.String(), func(t *testing.T) {
			assert.Equal(t, testDef.expected.String(), precheckState(testDef.status).String())
		})
	}
}

func TestPendingReceiptStatuses(t *testing.T) {
	for _, s := range []Status{StatusUnknown, StatusReceiptNotFound, StatusOk, StatusBusy} {
		assert.True(t, s.isPendingReceipt(), s.String())
	}
	for _, s := range []Status{StatusSuccess, StatusThrottledAtConsensus, StatusFailInvalid} {
		assert.False(t, s.isPendingReceipt(), s.String())
	}
}

func TestKindOf(t *testing.T) {
	txID := ids.TransactionIDWithValidStart(ids.NewAccountID(2), time.Unix(1700000000, 0))
	transportErr := transport.NewTransportError(
		transport.Target{NodeID: ids.NewAccountID(3)},
		"/proto.FileService/deleteFile",
		status.Error(codes.Unavailable, "down"),
	)
	testDefs := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{"nil", nil, ErrorKindUnknown},
		{"other", errors.New("boom"), ErrorKindUnknown},
		{"usage", fmt.Errorf("freeze: %w", ErrMissingIdentity), ErrorKindUsage},
		{"frozen", &FrozenRequestError{Field: "memo"}, ErrorKindUsage},
		{"invalid key", fmt.Errorf("parse: %w", keys.ErrInvalidKeyEncoding), ErrorKindInvalidKey},
		{"transport", transportErr, ErrorKindTransport},
		{"fatal precheck", &PrecheckError{Status: StatusInvalidSignature, TransactionID: txID}, ErrorKindFatalPrecheck},
		{"retryable precheck", &PrecheckError{Status: StatusBusy, Retryable: true}, ErrorKindRetryablePrecheck},
		{"overloaded", &NetworkOverloadedError{TransactionID: txID, Resubmissions: 5}, ErrorKindNetworkOverloaded},
		{"timeout", &TimeoutError{Attempts: 3, LastErr: transportErr, Err: context.DeadlineExceeded}, ErrorKindTimeout},
		{"deadline", context.DeadlineExceeded, ErrorKindTimeout},
		{"exhausted", &MaxAttemptsExceededError{Attempts: 10, LastErr: transportErr}, ErrorKindExhausted},
		{"no healthy nodes", node.ErrNoHealthyNodes, ErrorKindNoHealthyNodes},
		{"receipt status", &ReceiptStatusError{Status: StatusFailInvalid, TransactionID: txID}, ErrorKindReceiptStatus},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			assert.Equal(t, testDef.expected, KindOf(testDef.err), KindOf(testDef.err).String())
		})
	}
}

func TestAttemptDelay(t *testing.T) {
	c := &Client{
		minBackoff: 250 * time.Millisecond,
		maxBackoff: 8 * time.Second,
	}
	ctx := context.Background()
	assert.Equal(t, 250*time.Millisecond, c.attemptDelay(ctx, 1))
	assert.Equal(t, 500*time.Millisecond, c.attemptDelay(ctx, 2))
	assert.Equal(t, time.Second, c.attemptDelay(ctx, 3))
	assert.Equal(t, 8*time.Second, c.attemptDelay(ctx, 6))
	assert.Equal(t, 8*time.Second, c.attemptDelay(ctx, 40))
	// The delay never uses up more than half of the remaining time
	deadlineCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	delay := c.attemptDelay(deadlineCtx, 10)
	assert.LessOrEqual(t, delay, time.Second)
	assert.Greater(t, delay, time.Duration(0))
}
