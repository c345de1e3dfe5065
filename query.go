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
	"slices"
	"time"

	"github.com/blinklabs-io/gohiero/ids"
	"github.com/blinklabs-io/gohiero/wire"
)

type queryBase struct {
	txID              ids.TransactionID
	nodeIds           []ids.AccountID
	includeDuplicates bool
}

func (q *queryBase) nodeAccountIDs() []ids.AccountID {
	return q.nodeIds
}

func (q *queryBase) transactionID() ids.TransactionID {
	return q.txID
}

func (q *queryBase) encode(kind wire.QueryKind) ([]byte, error) {
	return wire.Marshal(
		&wire.Query{
			Kind:              kind,
			TransactionID:     q.txID,
			IncludeDuplicates: q.includeDuplicates,
		},
	)
}

func parseQueryResponse(data []byte) (*wire.Response, Status, error) {
	resp := &wire.Response{}
	if err := wire.Unmarshal(data, resp); err != nil {
		return nil, StatusUnknown, err
	}
	return resp, Status(resp.Precheck), nil
}

// ReceiptQuery fetches the receipt of a transaction. A receipt fetched before the
// transaction reaches consensus carries a pending status such as UNKNOWN
type ReceiptQuery struct {
	queryBase
}

func NewReceiptQuery() *ReceiptQuery {
	return &ReceiptQuery{}
}

func (q *ReceiptQuery) SetTransactionID(txID ids.TransactionID) *ReceiptQuery {
	q.txID = txID
	return q
}

// SetNodeAccountIDs restricts the nodes the query may be sent to
func (q *ReceiptQuery) SetNodeAccountIDs(nodeIds ...ids.AccountID) *ReceiptQuery {
	q.nodeIds = slices.Clone(nodeIds)
	return q
}

func (q *ReceiptQuery) SetIncludeDuplicates(include bool) *ReceiptQuery {
	q.includeDuplicates = include
	return q
}

func (q *ReceiptQuery) TransactionID() ids.TransactionID {
	return q.txID
}

func (q *ReceiptQuery) NodeAccountIDs() []ids.AccountID {
	return slices.Clone(q.nodeIds)
}

// Execute fetches the receipt once consensus on the query itself succeeds. The
// receipt status is not validated
func (q *ReceiptQuery) Execute(ctx context.Context, c *Client) (TransactionReceipt, error) {
	return q.ExecuteWithTimeout(ctx, c, 0)
}

func (q *ReceiptQuery) ExecuteWithTimeout(
	ctx context.Context,
	c *Client,
	timeout time.Duration,
) (TransactionReceipt, error) {
	if q.txID.IsZero() {
		return TransactionReceipt{}, ErrMissingIdentity
	}
	return execute[*wire.Response, TransactionReceipt](ctx, c, q, timeout)
}

func (q *ReceiptQuery) ExecuteAsync(ctx context.Context, c *Client) *Future[TransactionReceipt] {
	if q.txID.IsZero() {
		return completedFuture(TransactionReceipt{}, ErrMissingIdentity)
	}
	return executeAsync[*wire.Response, TransactionReceipt](ctx, c, q, 0)
}

func (q *ReceiptQuery) operationName() string {
	return "receipt-query"
}

func (q *ReceiptQuery) method() wire.Method {
	return wire.MethodGetReceipt
}

func (q *ReceiptQuery) makeRequest(ids.AccountID) ([]byte, error) {
	return q.encode(wire.QueryKindReceipt)
}

func (q *ReceiptQuery) parseResponse(data []byte) (*wire.Response, Status, error) {
	resp, status, err := parseQueryResponse(data)
	if err != nil {
		return nil, status, err
	}
	if status == StatusOk && resp.Receipt == nil {
		return nil, status, errors.New("receipt response without receipt")
	}
	return resp, status, nil
}

func (q *ReceiptQuery) shouldRetry(status Status, _ *wire.Response) executionState {
	switch status {
	case StatusReceiptNotFound, StatusUnknown:
		// The node does not know the transaction yet, which is a pending receipt
		return executionStateFinished
	}
	return precheckState(status)
}

func (q *ReceiptQuery) mapResponse(
	nodeID ids.AccountID,
	resp *wire.Response,
	_ []byte,
) (TransactionReceipt, error) {
	if resp.Receipt == nil {
		return TransactionReceipt{
			Status:        Status(resp.Precheck),
			TransactionID: q.txID,
			NodeID:        nodeID,
		}, nil
	}
	return receiptFromWire(*resp.Receipt, q.txID, nodeID), nil
}

// RecordQuery fetches the record of a transaction. Nodes answer RECORD_NOT_FOUND until
// the transaction reaches consensus, and the query retries until the record arrives
type RecordQuery struct {
	queryBase
}

func NewRecordQuery() *RecordQuery {
	return &RecordQuery{}
}

func (q *RecordQuery) SetTransactionID(txID ids.TransactionID) *RecordQuery {
	q.txID = txID
	return q
}

// SetNodeAccountIDs restricts the nodes the query may be sent to
func (q *RecordQuery) SetNodeAccountIDs(nodeIds ...ids.AccountID) *RecordQuery {
	q.nodeIds = slices.Clone(nodeIds)
	return q
}

func (q *RecordQuery) SetIncludeDuplicates(include bool) *RecordQuery {
	q.includeDuplicates = include
	return q
}

func (q *RecordQuery) TransactionID() ids.TransactionID {
	return q.txID
}

func (q *RecordQuery) NodeAccountIDs() []ids.AccountID {
	return slices.Clone(q.nodeIds)
}

func (q *RecordQuery) Execute(ctx context.Context, c *Client) (TransactionRecord, error) {
	return q.ExecuteWithTimeout(ctx, c, 0)
}

func (q *RecordQuery) ExecuteWithTimeout(
	ctx context.Context,
	c *Client,
	timeout time.Duration,
) (TransactionRecord, error) {
	if q.txID.IsZero() {
		return TransactionRecord{}, ErrMissingIdentity
	}
	return execute[*wire.Response, TransactionRecord](ctx, c, q, timeout)
}

func (q *RecordQuery) ExecuteAsync(ctx context.Context, c *Client) *Future[TransactionRecord] {
	if q.txID.IsZero() {
		return completedFuture(TransactionRecord{}, ErrMissingIdentity)
	}
	return executeAsync[*wire.Response, TransactionRecord](ctx, c, q, 0)
}

func (q *RecordQuery) operationName() string {
	return "record-query"
}

func (q *RecordQuery) method() wire.Method {
	return wire.MethodGetRecord
}

func (q *RecordQuery) makeRequest(ids.AccountID) ([]byte, error) {
	return q.encode(wire.QueryKindRecord)
}

func (q *RecordQuery) parseResponse(data []byte) (*wire.Response, Status, error) {
	return parseQueryResponse(data)
}

func (q *RecordQuery) shouldRetry(status Status, resp *wire.Response) executionState {
	switch status {
	case StatusRecordNotFound, StatusReceiptNotFound, StatusUnknown:
		return executionStateRetry
	case StatusOk:
		if resp.Record == nil || Status(resp.Record.Receipt.Status).isPendingReceipt() {
			return executionStateRetry
		}
		return executionStateFinished
	}
	return precheckState(status)
}

func (q *RecordQuery) mapResponse(
	nodeID ids.AccountID,
	resp *wire.Response,
	_ []byte,
) (TransactionRecord, error) {
	return recordFromWire(*resp.Record, nodeID), nil
}
