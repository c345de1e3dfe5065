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
	"slices"
	"sync"
	"time"

	"github.com/blinklabs-io/gohiero/ids"
	"github.com/blinklabs-io/gohiero/wire"
)

type submission struct {
	nodeID      ids.AccountID
	txID        ids.TransactionID
	hash        []byte
	transaction *Transaction
}

// TransactionResponse is the handle for a submitted transaction. It follows the
// transaction through consensus, including any resubmission under a new transaction
// ID after the network throttles it
type TransactionResponse struct {
	mu             sync.Mutex
	resubmitMu     sync.Mutex
	validateStatus bool
	original       submission
	current        submission
	resubmissions  int
}

func newTransactionResponse(
	tx *Transaction,
	nodeID ids.AccountID,
	hash []byte,
) *TransactionResponse {
	sub := submission{
		nodeID:      nodeID,
		txID:        tx.id,
		hash:        hash,
		transaction: tx,
	}
	return &TransactionResponse{
		validateStatus: true,
		original:       sub,
		current:        sub,
	}
}

// NodeID returns the node that accepted the latest submission
func (r *TransactionResponse) NodeID() ids.AccountID {
	return r.submission().nodeID
}

// TransactionID returns the ID of the latest submission
func (r *TransactionResponse) TransactionID() ids.TransactionID {
	return r.submission().txID
}

// TransactionHash returns the SHA-384 hash of the latest submitted signed transaction
func (r *TransactionResponse) TransactionHash() []byte {
	return slices.Clone(r.submission().hash)
}

// OriginalTransactionID returns the ID the transaction was first submitted with
func (r *TransactionResponse) OriginalTransactionID() ids.TransactionID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.original.txID
}

// Resubmissions returns how many times the transaction was resubmitted after being
// throttled at consensus
func (r *TransactionResponse) Resubmissions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resubmissions
}

// SetValidateStatus controls whether a receipt without SUCCESS is returned as a
// ReceiptStatusError. It is enabled by default
func (r *TransactionResponse) SetValidateStatus(validate bool) *TransactionResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validateStatus = validate
	return r
}

func (r *TransactionResponse) ValidateStatus() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.validateStatus
}

func (r *TransactionResponse) submission() submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// ReceiptQuery returns a query for the receipt of the latest submission on the node
// that accepted it
func (r *TransactionResponse) ReceiptQuery() *ReceiptQuery {
	sub := r.submission()
	return NewReceiptQuery().
		SetTransactionID(sub.txID).
		SetNodeAccountIDs(sub.nodeID)
}

// RecordQuery returns a query for the record of the latest submission on the node
// that accepted it
func (r *TransactionResponse) RecordQuery() *RecordQuery {
	sub := r.submission()
	return NewRecordQuery().
		SetTransactionID(sub.txID).
		SetNodeAccountIDs(sub.nodeID)
}

// GetReceipt waits for the transaction to reach consensus and returns its receipt,
// using the client's request timeout
func (r *TransactionResponse) GetReceipt(
	ctx context.Context,
	c *Client,
) (TransactionReceipt, error) {
	return r.GetReceiptWithTimeout(ctx, c, 0)
}

// GetReceiptWithTimeout waits up to timeout for the transaction to reach consensus.
// A transaction throttled at consensus is resubmitted under a new transaction ID and
// the wait continues with the new ID
func (r *TransactionResponse) GetReceiptWithTimeout(
	ctx context.Context,
	c *Client,
	timeout time.Duration,
) (TransactionReceipt, error) {
	if c.isClosed() {
		return TransactionReceipt{}, ErrClientClosed
	}
	if timeout <= 0 {
		timeout = c.requestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	receipt, err := r.waitReceipt(ctx, c)
	if err != nil {
		return receipt, err
	}
	return receipt, receipt.ValidateStatus(r.ValidateStatus())
}

func (r *TransactionResponse) GetReceiptAsync(
	ctx context.Context,
	c *Client,
) *Future[TransactionReceipt] {
	return runAsync(
		ctx,
		c,
		func(taskCtx context.Context) (TransactionReceipt, error) {
			return r.GetReceipt(taskCtx, c)
		},
	)
}

// GetRecord waits for the receipt and then fetches the transaction record from the
// node that accepted the latest submission
func (r *TransactionResponse) GetRecord(
	ctx context.Context,
	c *Client,
) (TransactionRecord, error) {
	return r.GetRecordWithTimeout(ctx, c, 0)
}

func (r *TransactionResponse) GetRecordWithTimeout(
	ctx context.Context,
	c *Client,
	timeout time.Duration,
) (TransactionRecord, error) {
	if c.isClosed() {
		return TransactionRecord{}, ErrClientClosed
	}
	if timeout <= 0 {
		timeout = c.requestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	receipt, err := r.waitReceipt(ctx, c)
	if err != nil {
		return TransactionRecord{}, err
	}
	if err := receipt.ValidateStatus(r.ValidateStatus()); err != nil {
		return TransactionRecord{}, err
	}
	return r.RecordQuery().Execute(ctx, c)
}

func (r *TransactionResponse) GetRecordAsync(
	ctx context.Context,
	c *Client,
) *Future[TransactionRecord] {
	return runAsync(
		ctx,
		c,
		func(taskCtx context.Context) (TransactionRecord, error) {
			return r.GetRecord(taskCtx, c)
		},
	)
}

func (r *TransactionResponse) waitReceipt(
	ctx context.Context,
	c *Client,
) (TransactionReceipt, error) {
	for {
		sub := r.submission()
		receipt, err := r.pollReceipt(ctx, c, sub)
		if err != nil {
			return receipt, err
		}
		if receipt.Status != StatusThrottledAtConsensus {
			return receipt, nil
		}
		if err := r.resubmit(ctx, c, sub); err != nil {
			return receipt, err
		}
	}
}

// pollReceipt queries the receipt of a submission until it leaves the pending state.
// Each query goes through the retry engine, and the delay between queries grows
// from the poll interval up to the maximum
func (r *TransactionResponse) pollReceipt(
	ctx context.Context,
	c *Client,
	sub submission,
) (TransactionReceipt, error) {
	query := NewReceiptQuery().
		SetTransactionID(sub.txID).
		SetNodeAccountIDs(sub.nodeID)
	interval := c.receiptPollInterval
	for polls := 1; ; polls++ {
		c.metrics.recordReceiptPoll()
		receipt, err := query.Execute(ctx, c)
		if err != nil {
			return receipt, err
		}
		if !receipt.Status.isPendingReceipt() {
			return receipt, nil
		}
		c.logger.Debug(
			"receipt pending",
			"component", "receipt",
			"transaction_id", sub.txID.String(),
			"status", receipt.Status.String(),
			"poll", polls,
		)
		if err := sleepContext(ctx, interval); err != nil {
			return receipt, &TimeoutError{Attempts: polls, Err: err}
		}
		interval = min(
			time.Duration(float64(interval)*c.receiptPollGrowth),
			c.maxReceiptPollInterval,
		)
	}
}

// resubmit submits a copy of the throttled transaction under a new transaction ID.
// Concurrent waiters share a single resubmission
func (r *TransactionResponse) resubmit(
	ctx context.Context,
	c *Client,
	throttled submission,
) error {
	r.resubmitMu.Lock()
	defer r.resubmitMu.Unlock()
	r.mu.Lock()
	if !r.current.txID.Equal(throttled.txID) {
		// Another waiter already resubmitted
		r.mu.Unlock()
		return nil
	}
	count := r.resubmissions
	r.mu.Unlock()
	if count >= c.maxThrottleResubmissions {
		return &NetworkOverloadedError{
			TransactionID: throttled.txID,
			Resubmissions: count,
		}
	}
	derived, err := throttled.transaction.derive(c)
	if err != nil {
		return &NetworkOverloadedError{
			TransactionID: throttled.txID,
			Resubmissions: count,
			Err:           err,
		}
	}
	resp, err := execute[*wire.TransactionResponse, *TransactionResponse](
		ctx,
		c,
		&transactionExecutable{tx: derived},
		0,
	)
	if err != nil {
		return err
	}
	c.metrics.recordResubmission()
	next := resp.submission()
	c.logger.Info(
		"transaction throttled at consensus, resubmitted",
		"component", "receipt",
		"transaction_id", throttled.txID.String(),
		"new_transaction_id", next.txID.String(),
		"node", next.nodeID.String(),
	)
	r.mu.Lock()
	r.current = next
	r.resubmissions = count + 1
	r.mu.Unlock()
	return nil
}
