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

package node

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blinklabs-io/gohiero/ids"
)

const (
	DefaultMinBackoff     = 250 * time.Millisecond
	DefaultMaxBackoff     = 1 * time.Minute
	DefaultBackoffCeiling = 10 * time.Second
)

var ErrNoHealthyNodes = errors.New("no healthy nodes available")

// NoHealthyNodesError is returned when every candidate is excluded or backing off
// for longer than the configured ceiling
type NoHealthyNodesError struct {
	Candidates int
	Excluded   int
	// Wait is the shortest time until a candidate leaves its backoff, if any
	Wait time.Duration
}

func (e *NoHealthyNodesError) Error() string {
	return fmt.Sprintf(
		"no healthy nodes available: %d candidates, %d excluded, next recovery in %s",
		e.Candidates,
		e.Excluded,
		e.Wait,
	)
}

func (e *NoHealthyNodesError) Is(target error) bool {
	return target == ErrNoHealthyNodes
}

type Config struct {
	// MinBackoff is the floor of a node's backoff duration
	MinBackoff time.Duration
	// MaxBackoff caps a node's backoff duration
	MaxBackoff time.Duration
	// BackoffCeiling is the longest a selection will wait for a backing-off node
	BackoffCeiling time.Duration
}

func (c Config) withDefaults() Config {
	if c.MinBackoff <= 0 {
		c.MinBackoff = DefaultMinBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = DefaultMaxBackoff
	}
	if c.MaxBackoff < c.MinBackoff {
		c.MaxBackoff = c.MinBackoff
	}
	if c.BackoffCeiling <= 0 {
		c.BackoffCeiling = DefaultBackoffCeiling
	}
	return c
}

// Selection is the result of choosing a node. Wait is non-zero when the node is still
// backing off and the caller should wait before using it
type Selection struct {
	Endpoint *Endpoint
	Wait     time.Duration
}

// Registry owns the set of nodes known to a client and their health state. It is
// safe for concurrent use
type Registry struct {
	config    Config
	mu        sync.RWMutex
	endpoints map[ids.AccountID]*Endpoint
	nodeIds   []ids.AccountID
	rotation  atomic.Uint64
	nowFunc   func() time.Time
}

func NewRegistry(cfg Config, endpoints ...*Endpoint) *Registry {
	r := &Registry{
		config:    cfg.withDefaults(),
		endpoints: make(map[ids.AccountID]*Endpoint),
		nowFunc:   time.Now,
	}
	r.SetNetwork(endpoints...)
	return r
}

// SetNetwork replaces the set of known nodes. Nodes that are unchanged keep their
// health state
func (r *Registry) SetNetwork(endpoints ...*Endpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	newEndpoints := make(map[ids.AccountID]*Endpoint, len(endpoints))
	for _, endpoint := range endpoints {
		if existing, ok := r.endpoints[endpoint.accountID]; ok && existing.sameAs(endpoint) {
			newEndpoints[endpoint.accountID] = existing
			continue
		}
		endpoint.resetBackoff(r.config.MinBackoff)
		newEndpoints[endpoint.accountID] = endpoint
	}
	r.endpoints = newEndpoints
	r.nodeIds = make([]ids.AccountID, 0, len(newEndpoints))
	for id := range newEndpoints {
		r.nodeIds = append(r.nodeIds, id)
	}
	slices.SortFunc(r.nodeIds, ids.AccountID.Compare)
}

// Endpoint returns the node running under the provided account
func (r *Registry) Endpoint(id ids.AccountID) (*Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret, ok := r.endpoints[id]
	return ret, ok
}

// NodeIDs returns the accounts of all known nodes in ascending order
func (r *Registry) NodeIDs() []ids.AccountID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.nodeIds)
}

// Select chooses a node from the candidates, or from all known nodes when no
// candidates are given. Excluded nodes are never chosen. Among nodes that are not
// backing off, the one with the earliest backoff expiry wins, with ties broken by a
// rotating index. When every remaining node is backing off, the one that recovers
// first is returned along with the time to wait, unless that wait exceeds the
// configured ceiling
func (r *Registry) Select(
	candidates []ids.AccountID,
	excluded map[ids.AccountID]bool,
) (Selection, error) {
	r.mu.RLock()
	if len(candidates) == 0 {
		candidates = r.nodeIds
	}
	available := make([]*Endpoint, 0, len(candidates))
	excludedCount := 0
	for _, id := range candidates {
		if excluded[id] {
			excludedCount++
			continue
		}
		if endpoint, ok := r.endpoints[id]; ok {
			available = append(available, endpoint)
		}
	}
	r.mu.RUnlock()
	if len(available) == 0 {
		return Selection{}, &NoHealthyNodesError{
			Candidates: len(candidates),
			Excluded:   excludedCount,
		}
	}
	now := r.nowFunc()
	start := int((r.rotation.Add(1) - 1) % uint64(len(available))) // #nosec G115
	var best, bestWaiting *Endpoint
	var bestUntil, bestWaitingUntil time.Time
	for i := range available {
		endpoint := available[(start+i)%len(available)]
		until := endpoint.backoffState()
		if !until.After(now) {
			if best == nil || until.Before(bestUntil) {
				best = endpoint
				bestUntil = until
			}
			continue
		}
		if bestWaiting == nil || until.Before(bestWaitingUntil) {
			bestWaiting = endpoint
			bestWaitingUntil = until
		}
	}
	if best != nil {
		best.markAttempt(now)
		return Selection{Endpoint: best}, nil
	}
	wait := bestWaitingUntil.Sub(now)
	if wait > r.config.BackoffCeiling {
		return Selection{}, &NoHealthyNodesError{
			Candidates: len(candidates),
			Excluded:   excludedCount,
			Wait:       wait,
		}
	}
	bestWaiting.markAttempt(bestWaitingUntil)
	return Selection{Endpoint: bestWaiting, Wait: wait}, nil
}

// ReportFailure doubles the node's backoff, up to the configured maximum, and keeps
// it out of selection until the backoff expires. It returns the new backoff
func (r *Registry) ReportFailure(id ids.AccountID) time.Duration {
	endpoint, ok := r.Endpoint(id)
	if !ok {
		return 0
	}
	return endpoint.increaseBackoff(
		r.nowFunc(),
		r.config.MinBackoff,
		r.config.MaxBackoff,
	)
}

// ReportSuccess clears the node's backoff
func (r *Registry) ReportSuccess(id ids.AccountID) {
	endpoint, ok := r.Endpoint(id)
	if !ok {
		return
	}
	endpoint.resetBackoff(r.config.MinBackoff)
}
