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

package mocknode

import (
	"time"

	"github.com/blinklabs-io/gohiero/ids"
	"github.com/blinklabs-io/gohiero/wire"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Entry is one scripted exchange. The first pending entry that matches the node and
// method of a call answers it
type Entry struct {
	// Node to match. The zero value matches any node
	Node ids.AccountID
	// Method to match. The zero value matches any method
	Method wire.Method
	// Response returned to the caller when Err is nil
	Response []byte
	Err      error
	// Delay before answering, cut short by the call's context
	Delay time.Duration
	// Check is called with the request bytes and fails the call if it returns an error
	Check func(request []byte) error
}

func (e Entry) matches(nodeID ids.AccountID, method string) bool {
	if !e.Node.IsZero() && e.Node != nodeID {
		return false
	}
	if e.Method != (wire.Method{}) && e.Method.FullName() != method {
		return false
	}
	return true
}

// Unavailable returns the error a node gives when it cannot be reached
func Unavailable() error {
	return status.Error(codes.Unavailable, "node unavailable")
}

// Rejected returns an error that is not retryable
func Rejected() error {
	return status.Error(codes.PermissionDenied, "rejected")
}

// SubmitResponse returns an encoded submission response with the precheck status
func SubmitResponse(precheck uint32) []byte {
	return mustMarshal(&wire.TransactionResponse{Precheck: precheck})
}

// ReceiptResponse returns an encoded receipt query response
func ReceiptResponse(precheck uint32, receiptStatus uint32) []byte {
	return mustMarshal(
		&wire.Response{
			Precheck: precheck,
			Receipt:  &wire.TransactionReceipt{Status: receiptStatus},
		},
	)
}

// ReceiptResponseWith returns an encoded receipt query response carrying the receipt
func ReceiptResponseWith(receipt wire.TransactionReceipt) []byte {
	return mustMarshal(&wire.Response{Receipt: &receipt})
}

// RecordResponse returns an encoded record query response. A nil record gives a
// response with only the precheck status
func RecordResponse(precheck uint32, record *wire.TransactionRecord) []byte {
	return mustMarshal(&wire.Response{Precheck: precheck, Record: record})
}

func mustMarshal(msg any) []byte {
	data, err := wire.Marshal(msg)
	if err != nil {
		panic(err)
	}
	return data
}
