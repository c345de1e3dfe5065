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

import "fmt"

// Status is a response code returned by ledger nodes, either as a precheck result
// or as the consensus status of a receipt
type Status uint32

const (
	StatusOk                            Status = 0
	StatusInvalidTransaction            Status = 1
	StatusPayerAccountNotFound          Status = 2
	StatusInvalidNodeAccount            Status = 3
	StatusTransactionExpired            Status = 4
	StatusInvalidTransactionStart       Status = 5
	StatusInvalidTransactionDuration    Status = 6
	StatusInvalidSignature              Status = 7
	StatusMemoTooLong                   Status = 8
	StatusInsufficientTxFee             Status = 9
	StatusInsufficientPayerBalance      Status = 10
	StatusDuplicateTransaction          Status = 11
	StatusBusy                          Status = 12
	StatusNotSupported                  Status = 13
	StatusInvalidFileID                 Status = 14
	StatusInvalidAccountID              Status = 15
	StatusInvalidTransactionID          Status = 17
	StatusReceiptNotFound               Status = 18
	StatusRecordNotFound                Status = 19
	StatusUnknown                       Status = 21
	StatusSuccess                       Status = 22
	StatusFailInvalid                   Status = 23
	StatusFailFee                       Status = 24
	StatusFailBalance                   Status = 25
	StatusKeyRequired                   Status = 26
	StatusBadEncoding                   Status = 27
	StatusInsufficientAccountBalance    Status = 28
	StatusInvalidKeyEncoding            Status = 38
	StatusInvalidPayerSignature         Status = 43
	StatusInvalidAccountAmounts         Status = 48
	StatusEmptyTransactionBody          Status = 49
	StatusInvalidTransactionBody        Status = 50
	StatusPlatformTransactionNotCreated Status = 64
	StatusFileDeleted                   Status = 68
	StatusUnauthorized                  Status = 105
	StatusInvalidTopicID                Status = 150
	StatusTransactionOversize           Status = 187
	StatusPlatformNotActive             Status = 246
	StatusThrottledAtConsensus          Status = 366
)

var statusNames = map[Status]string{
	StatusOk:                            "OK",
	StatusInvalidTransaction:            "INVALID_TRANSACTION",
	StatusPayerAccountNotFound:          "PAYER_ACCOUNT_NOT_FOUND",
	StatusInvalidNodeAccount:            "INVALID_NODE_ACCOUNT",
	StatusTransactionExpired:            "TRANSACTION_EXPIRED",
	StatusInvalidTransactionStart:       "INVALID_TRANSACTION_START",
	StatusInvalidTransactionDuration:    "INVALID_TRANSACTION_DURATION",
	StatusInvalidSignature:              "INVALID_SIGNATURE",
	StatusMemoTooLong:                   "MEMO_TOO_LONG",
	StatusInsufficientTxFee:             "INSUFFICIENT_TX_FEE",
	StatusInsufficientPayerBalance:      "INSUFFICIENT_PAYER_BALANCE",
	StatusDuplicateTransaction:          "DUPLICATE_TRANSACTION",
	StatusBusy:                          "BUSY",
	StatusNotSupported:                  "NOT_SUPPORTED",
	StatusInvalidFileID:                 "INVALID_FILE_ID",
	StatusInvalidAccountID:              "INVALID_ACCOUNT_ID",
	StatusInvalidTransactionID:          "INVALID_TRANSACTION_ID",
	StatusReceiptNotFound:               "RECEIPT_NOT_FOUND",
	StatusRecordNotFound:                "RECORD_NOT_FOUND",
	StatusUnknown:                       "UNKNOWN",
	StatusSuccess:                       "SUCCESS",
	StatusFailInvalid:                   "FAIL_INVALID",
	StatusFailFee:                       "FAIL_FEE",
	StatusFailBalance:                   "FAIL_BALANCE",
	StatusKeyRequired:                   "KEY_REQUIRED",
	StatusBadEncoding:                   "BAD_ENCODING",
	StatusInsufficientAccountBalance:    "INSUFFICIENT_ACCOUNT_BALANCE",
	StatusInvalidKeyEncoding:            "INVALID_KEY_ENCODING",
	StatusInvalidPayerSignature:         "INVALID_PAYER_SIGNATURE",
	StatusInvalidAccountAmounts:         "INVALID_ACCOUNT_AMOUNTS",
	StatusEmptyTransactionBody:          "EMPTY_TRANSACTION_BODY",
	StatusInvalidTransactionBody:        "INVALID_TRANSACTION_BODY",
	StatusPlatformTransactionNotCreated: "PLATFORM_TRANSACTION_NOT_CREATED",
	StatusFileDeleted:                   "FILE_DELETED",
	StatusUnauthorized:                  "UNAUTHORIZED",
	StatusInvalidTopicID:                "INVALID_TOPIC_ID",
	StatusTransactionOversize:           "TRANSACTION_OVERSIZE",
	StatusPlatformNotActive:             "PLATFORM_NOT_ACTIVE",
	StatusThrottledAtConsensus:          "THROTTLED_AT_CONSENSUS",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATUS_%d", uint32(s))
}

// isPendingReceipt returns true for receipt statuses that mean consensus has not been
// reached yet
func (s Status) isPendingReceipt() bool {
	switch s {
	case StatusUnknown, StatusReceiptNotFound, StatusOk, StatusBusy:
		return true
	}
	return false
}

// executionState is the outcome of a single attempt, as decided by the executable
type executionState int

const (
	// The attempt produced a result
	executionStateFinished executionState = iota
	// The node reported a transient condition of its own. Retry without penalizing it
	executionStateRetry
	// The node is unhealthy. Back it off and retry elsewhere
	executionStateNodeFailure
	// The request was rejected and retrying will not change that
	executionStateError
)

func (e executionState) String() string {
	switch e {
	case executionStateFinished:
		return "finished"
	case executionStateRetry:
		return "retry"
	case executionStateNodeFailure:
		return "node-failure"
	default:
		return "error"
	}
}

// precheckState classifies node precheck codes shared by every request type. Codes
// that are not listed here are treated as fatal
func precheckState(s Status) executionState {
	switch s {
	case StatusOk:
		return executionStateFinished
	case StatusBusy:
		return executionStateRetry
	case StatusPlatformNotActive, StatusPlatformTransactionNotCreated:
		return executionStateNodeFailure
	}
	return executionStateError
}
