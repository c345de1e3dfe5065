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

// Package node tracks the ledger nodes a client talks to and their health.
package node

import (
	"bytes"
	"slices"
	"sync"
	"time"

	"github.com/blinklabs-io/gohiero/ids"
)

// Endpoint is a single ledger node: the account it runs under, the addresses it
// listens on and an optional certificate fingerprint. Its health state is guarded
// by a per-endpoint lock
type Endpoint struct {
	accountID ids.AccountID
	addresses []string
	certHash  []byte

	mu             sync.Mutex
	addressIdx     int
	lastAttempt    time.Time
	backoffUntil   time.Time
	currentBackoff time.Duration
	attempts       uint64
	failures       uint64
}

// Health is a snapshot of an endpoint's health state
type Health struct {
	LastAttempt    time.Time
	BackoffUntil   time.Time
	CurrentBackoff time.Duration
	Attempts       uint64
	Failures       uint64
}

func NewEndpoint(accountID ids.AccountID, addresses ...string) *Endpoint {
	return &Endpoint{
		accountID: accountID,
		addresses: slices.Clone(addresses),
	}
}

// WithCertHash sets the expected certificate fingerprint and returns the endpoint
func (e *Endpoint) WithCertHash(certHash []byte) *Endpoint {
	e.certHash = bytes.Clone(certHash)
	return e
}

func (e *Endpoint) AccountID() ids.AccountID {
	return e.accountID
}

func (e *Endpoint) Addresses() []string {
	return slices.Clone(e.addresses)
}

func (e *Endpoint) CertHash() []byte {
	return bytes.Clone(e.certHash)
}

// Address returns the address to use for the next attempt. Failures move on to the
// next address of the node
func (e *Endpoint) Address() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.addresses) == 0 {
		return ""
	}
	return e.addresses[e.addressIdx%len(e.addresses)]
}

func (e *Endpoint) Health() Health {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Health{
		LastAttempt:    e.lastAttempt,
		BackoffUntil:   e.backoffUntil,
		CurrentBackoff: e.currentBackoff,
		Attempts:       e.attempts,
		Failures:       e.failures,
	}
}

func (e *Endpoint) String() string {
	return e.accountID.String()
}

func (e *Endpoint) backoffState() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.backoffUntil
}

func (e *Endpoint) markAttempt(at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastAttempt = at
	e.attempts++
}

func (e *Endpoint) increaseBackoff(now time.Time, floor, ceiling time.Duration) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.currentBackoff < floor {
		e.currentBackoff = floor
	}
	e.currentBackoff = min(e.currentBackoff*2, ceiling)
	e.backoffUntil = now.Add(e.currentBackoff)
	e.failures++
	if len(e.addresses) > 1 {
		e.addressIdx = (e.addressIdx + 1) % len(e.addresses)
	}
	return e.currentBackoff
}

func (e *Endpoint) resetBackoff(floor time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.currentBackoff = floor
	e.backoffUntil = time.Time{}
}

// sameAs returns true when both endpoints describe the same node at the same addresses
func (e *Endpoint) sameAs(other *Endpoint) bool {
	return e.accountID == other.accountID &&
		slices.Equal(e.addresses, other.addresses) &&
		bytes.Equal(e.certHash, other.certHash)
}
