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

	"github.com/blinklabs-io/gohiero/ids"
	"github.com/blinklabs-io/gohiero/keys"
	"github.com/blinklabs-io/gohiero/node"
	"github.com/blinklabs-io/gohiero/transport"
)

var (
	ErrMissingIdentity   = errors.New("transaction ID is not set and the client has no operator")
	ErrMissingNodes      = errors.New("no node account IDs are set and the client has no network")
	ErrFrozenRequest     = errors.New("request is frozen and can no longer be modified")
	ErrRequestNotFrozen  = errors.New("request must be frozen before it can be signed or submitted")
	ErrFreezeInProgress  = errors.New("request is already being frozen")
	ErrSignatureNotFound = errors.New("no signature found for key")
	ErrMissingOperator   = errors.New("client has no operator")
	ErrClientClosed      = errors.New("client is closed")
	ErrUnknownKind       = errors.New("unknown transaction kind")
	ErrInconsistentBody  = errors.New("transaction bodies differ between nodes")

	ErrPrecheck         = errors.New("precheck failed")
	ErrTimeout          = errors.New("request timed out")
	ErrMaxAttempts      = errors.New("maximum attempts exceeded")
	ErrReceiptStatus    = errors.New("receipt raised a failure status")
	ErrNetworkOverload  = errors.New("network is overloaded")
	ErrMalformedMessage = errors.New("malformed response")
)

// FrozenRequestError is returned when a frozen request is modified
type FrozenRequestError struct {
	Field string
}

func (e *FrozenRequestError) Error() string {
	return fmt.Sprintf("cannot set %s: %s", e.Field, ErrFrozenRequest)
}

func (*FrozenRequestError) Is(target error) bool {
	return target == ErrFrozenRequest
}

// PrecheckError is returned when a node rejects a request before it reaches consensus
type PrecheckError struct {
	Status        Status
	TransactionID ids.TransactionID
	NodeID        ids.AccountID
	Retryable     bool
}

func (e *PrecheckError) Error() string {
	if e.TransactionID.IsZero() {
		return fmt.Sprintf("precheck failed on node %s with status %s", e.NodeID, e.Status)
	}
	return fmt.Sprintf(
		"transaction %s failed precheck on node %s with status %s",
		e.TransactionID,
		e.NodeID,
		e.Status,
	)
}

func (*PrecheckError) Is(target error) bool {
	return target == ErrPrecheck
}

// TimeoutError is returned when the overall deadline expires before any attempt succeeds
type TimeoutError struct {
	Attempts int
	LastErr  error
	Err      error
}

func (e *TimeoutError) Error() string {
	if e.LastErr == nil {
		return fmt.Sprintf("request timed out after %d attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf(
		"request timed out after %d attempts: %v (last error: %v)",
		e.Attempts,
		e.Err,
		e.LastErr,
	)
}

func (e *TimeoutError) Unwrap() []error {
	ret := []error{e.Err}
	if e.LastErr != nil {
		ret = append(ret, e.LastErr)
	}
	return ret
}

func (*TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// MaxAttemptsExceededError is returned when the attempt budget runs out
type MaxAttemptsExceededError struct {
	Attempts int
	LastErr  error
}

func (e *MaxAttemptsExceededError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *MaxAttemptsExceededError) Unwrap() error { return e.LastErr }

func (*MaxAttemptsExceededError) Is(target error) bool {
	return target == ErrMaxAttempts
}

// ReceiptStatusError is returned when a receipt carries a terminal status other than
// SUCCESS and status validation is enabled
type ReceiptStatusError struct {
	Status        Status
	TransactionID ids.TransactionID
	Receipt       TransactionReceipt
}

func (e *ReceiptStatusError) Error() string {
	return fmt.Sprintf(
		"receipt for transaction %s raised status %s",
		e.TransactionID,
		e.Status,
	)
}

func (*ReceiptStatusError) Is(target error) bool {
	return target == ErrReceiptStatus
}

// NetworkOverloadedError is returned when a transaction keeps being throttled at
// consensus after the allowed number of resubmissions
type NetworkOverloadedError struct {
	TransactionID ids.TransactionID
	Resubmissions int
	// Set when the transaction could not be resubmitted
	Err error
}

func (e *NetworkOverloadedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"transaction %s throttled at consensus and cannot be resubmitted: %v",
			e.TransactionID,
			e.Err,
		)
	}
	return fmt.Sprintf(
		"transaction %s throttled at consensus after %d resubmissions",
		e.TransactionID,
		e.Resubmissions,
	)
}

func (e *NetworkOverloadedError) Unwrap() error { return e.Err }

func (*NetworkOverloadedError) Is(target error) bool {
	return target == ErrNetworkOverload
}

// ErrorKind groups errors by how a caller can recover from them
type ErrorKind int

const (
	ErrorKindUnknown ErrorKind = iota
	ErrorKindUsage
	ErrorKindInvalidKey
	ErrorKindTransport
	ErrorKindFatalPrecheck
	ErrorKindRetryablePrecheck
	ErrorKindNetworkOverloaded
	ErrorKindTimeout
	ErrorKindExhausted
	ErrorKindNoHealthyNodes
	ErrorKindReceiptStatus
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindUsage:
		return "usage"
	case ErrorKindInvalidKey:
		return "invalid-key"
	case ErrorKindTransport:
		return "transport"
	case ErrorKindFatalPrecheck:
		return "fatal-precheck"
	case ErrorKindRetryablePrecheck:
		return "retryable-precheck"
	case ErrorKindNetworkOverloaded:
		return "network-overloaded"
	case ErrorKindTimeout:
		return "timeout"
	case ErrorKindExhausted:
		return "exhausted"
	case ErrorKindNoHealthyNodes:
		return "no-healthy-nodes"
	case ErrorKindReceiptStatus:
		return "receipt-status"
	default:
		return "unknown"
	}
}

// KindOf classifies an error returned by this package
func KindOf(err error) ErrorKind {
	if err == nil {
		return ErrorKindUnknown
	}
	// Terminal wrappers are checked first since they may wrap a transport or
	// precheck error as their last cause
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return ErrorKindTimeout
	case errors.Is(err, ErrMaxAttempts):
		return ErrorKindExhausted
	case errors.Is(err, node.ErrNoHealthyNodes):
		return ErrorKindNoHealthyNodes
	case errors.Is(err, ErrNetworkOverload):
		return ErrorKindNetworkOverloaded
	case errors.Is(err, ErrReceiptStatus):
		return ErrorKindReceiptStatus
	case errors.Is(err, keys.ErrInvalidKeyEncoding), errors.Is(err, keys.ErrInvalidKeyList):
		return ErrorKindInvalidKey
	case errors.Is(err, transport.ErrTransport):
		return ErrorKindTransport
	}
	var precheckErr *PrecheckError
	if errors.As(err, &precheckErr) {
		if precheckErr.Retryable {
			return ErrorKindRetryablePrecheck
		}
		return ErrorKindFatalPrecheck
	}
	switch {
	case errors.Is(err, ErrMissingIdentity),
		errors.Is(err, ErrMissingNodes),
		errors.Is(err, ErrFrozenRequest),
		errors.Is(err, ErrRequestNotFrozen),
		errors.Is(err, ErrFreezeInProgress),
		errors.Is(err, ErrSignatureNotFound),
		errors.Is(err, ErrMissingOperator),
		errors.Is(err, ErrClientClosed),
		errors.Is(err, ErrUnknownKind),
		errors.Is(err, ErrInconsistentBody):
		return ErrorKindUsage
	}
	return ErrorKindUnknown
}
