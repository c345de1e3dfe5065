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

// Package transport moves serialized requests to ledger nodes and brings back
// their serialized responses.
package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blinklabs-io/gohiero/ids"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrTransport = errors.New("transport error")
	ErrClosed    = errors.New("transport is closed")
)

// Target identifies the node a request is sent to
type Target struct {
	NodeID   ids.AccountID
	Address  string
	CertHash []byte
}

func (t Target) String() string {
	return fmt.Sprintf("%s (%s)", t.NodeID, t.Address)
}

// Transport sends a serialized request to a node and returns the serialized
// response. Implementations must be safe for concurrent use
type Transport interface {
	Send(ctx context.Context, target Target, method string, request []byte) ([]byte, error)
	Close() error
}

// TransportError is a failure to exchange a request with a node
type TransportError struct {
	Target    Target
	Method    string
	Code      codes.Code
	Retryable bool
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf(
		"transport error calling %s on node %s: %s",
		e.Method,
		e.Target,
		e.Err,
	)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// NewTransportError classifies err from a call to the target. gRPC statuses that
// indicate a transient condition at the node or in the network are retryable, as is
// any failure that does not carry a gRPC status
func NewTransportError(target Target, method string, err error) *TransportError {
	ret := &TransportError{
		Target: target,
		Method: method,
		Err:    err,
	}
	st, ok := status.FromError(err)
	if !ok {
		ret.Code = codes.Unknown
		ret.Retryable = !errors.Is(err, ErrClosed)
		return ret
	}
	ret.Code = st.Code()
	ret.Retryable = isRetryableStatus(st)
	return ret
}

func isRetryableStatus(st *status.Status) bool {
	switch st.Code() {
	case codes.Unavailable,
		codes.ResourceExhausted,
		codes.DeadlineExceeded,
		codes.Aborted:
		return true
	case codes.Internal:
		return strings.Contains(st.Message(), "RST_STREAM") ||
			strings.Contains(st.Message(), "received a RST")
	}
	return false
}

// IsRetryable returns true if err is a retryable transport error
func IsRetryable(err error) bool {
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return tErr.Retryable
	}
	return false
}
