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

package ids

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/blinklabs-io/gohiero/cbor"
)

// ValidStartOffset is subtracted from the local clock when generating a valid start
// so that nodes with a slightly slower clock still accept the transaction
const ValidStartOffset = 5 * time.Second

var ErrInvalidTransactionID = errors.New("invalid transaction ID")

// lastValidStart holds the most recently issued valid start, in nanoseconds. It makes
// generated IDs unique within the process, even when the clock does not advance
var lastValidStart atomic.Int64

// nowFunc is swapped out by tests
var nowFunc = time.Now

// TransactionID identifies a transaction: the paying account plus the time from which
// the transaction is valid. It is immutable once assigned to a transaction
type TransactionID struct {
	cbor.StructAsArray
	AccountID  AccountID
	ValidStart Timestamp
	Scheduled  bool
	Nonce      int32
}

// NewTransactionID generates a transaction ID for the payer with a valid start that is
// unique within this process
func NewTransactionID(payer AccountID) TransactionID {
	return TransactionID{
		AccountID:  payer,
		ValidStart: nextValidStart(0),
	}
}

// TransactionIDWithValidStart builds a transaction ID with an explicit valid start
func TransactionIDWithValidStart(payer AccountID, validStart time.Time) TransactionID {
	return TransactionID{
		AccountID:  payer,
		ValidStart: NewTimestamp(validStart),
	}
}

// Regenerate returns a new transaction ID for the same payer with a strictly later
// valid start. Scheduled and nonce markers are preserved
func (t TransactionID) Regenerate() TransactionID {
	return TransactionID{
		AccountID:  t.AccountID,
		ValidStart: nextValidStart(t.ValidStart.UnixNano()),
		Scheduled:  t.Scheduled,
		Nonce:      t.Nonce,
	}
}

// IsZero returns true for a transaction ID that has not been set
func (t TransactionID) IsZero() bool {
	return t.AccountID.IsZero() && t.ValidStart.IsZero()
}

// Equal compares two transaction IDs
func (t TransactionID) Equal(o TransactionID) bool {
	return t.AccountID == o.AccountID &&
		t.ValidStart.Seconds == o.ValidStart.Seconds &&
		t.ValidStart.Nanos == o.ValidStart.Nanos &&
		t.Scheduled == o.Scheduled &&
		t.Nonce == o.Nonce
}

// String returns the ID in the form 0.0.100@1554158542.000000000, with an optional
// ?scheduled suffix and /nonce suffix
func (t TransactionID) String() string {
	var sb strings.Builder
	sb.WriteString(t.AccountID.String())
	sb.WriteString("@")
	sb.WriteString(t.ValidStart.String())
	if t.Scheduled {
		sb.WriteString("?scheduled")
	}
	if t.Nonce != 0 {
		sb.WriteString("/")
		sb.WriteString(strconv.FormatInt(int64(t.Nonce), 10))
	}
	return sb.String()
}

// TransactionIDFromString parses the format produced by String
func TransactionIDFromString(s string) (TransactionID, error) {
	var ret TransactionID
	account, rest, ok := strings.Cut(s, "@")
	if !ok {
		return ret, fmt.Errorf("%w: %q", ErrInvalidTransactionID, s)
	}
	accountID, err := AccountIDFromString(account)
	if err != nil {
		return ret, fmt.Errorf("%w: %q", ErrInvalidTransactionID, s)
	}
	ret.AccountID = accountID
	if before, after, found := strings.Cut(rest, "/"); found {
		nonce, err := strconv.ParseInt(after, 10, 32)
		if err != nil {
			return ret, fmt.Errorf("%w: %q", ErrInvalidTransactionID, s)
		}
		ret.Nonce = int32(nonce)
		rest = before
	}
	if before, found := strings.CutSuffix(rest, "?scheduled"); found {
		ret.Scheduled = true
		rest = before
	}
	secStr, nanoStr, ok := strings.Cut(rest, ".")
	if !ok {
		return ret, fmt.Errorf("%w: %q", ErrInvalidTransactionID, s)
	}
	secs, err := strconv.ParseInt(secStr, 10, 64)
	if err != nil {
		return ret, fmt.Errorf("%w: %q", ErrInvalidTransactionID, s)
	}
	nanos, err := strconv.ParseInt(nanoStr, 10, 32)
	if err != nil || nanos < 0 || nanos >= int64(time.Second) {
		return ret, fmt.Errorf("%w: %q", ErrInvalidTransactionID, s)
	}
	ret.ValidStart = Timestamp{Seconds: secs, Nanos: int32(nanos)}
	return ret, nil
}

// nextValidStart returns a timestamp later than both the last issued valid start and
// the provided floor
func nextValidStart(floor int64) Timestamp {
	for {
		last := lastValidStart.Load()
		next := nowFunc().Add(-ValidStartOffset).UnixNano()
		if next <= last {
			next = last + 1
		}
		if next <= floor {
			next = floor + 1
		}
		if lastValidStart.CompareAndSwap(last, next) {
			return Timestamp{
				Seconds: next / int64(time.Second),
				Nanos:   int32(next % int64(time.Second)), // #nosec G115
			}
		}
	}
}
