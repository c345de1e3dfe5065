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

// Package hiero implements a client for submitting transactions to a Hiero ledger network
// and following them through consensus.
package hiero

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blinklabs-io/gohiero/ids"
	"github.com/blinklabs-io/gohiero/keys"
	"github.com/blinklabs-io/gohiero/node"
	"github.com/blinklabs-io/gohiero/transport"
)

const (
	DefaultRequestTimeout           = 2 * time.Minute
	DefaultMaxAttempts              = 10
	DefaultMinBackoff               = 250 * time.Millisecond
	DefaultMaxBackoff               = 8 * time.Second
	DefaultMaxAttemptTimeout        = 10 * time.Second
	DefaultBackoffCeiling           = 8 * time.Second
	DefaultReceiptPollInterval      = 250 * time.Millisecond
	DefaultReceiptPollGrowth        = 1.5
	DefaultMaxReceiptPollInterval   = 2 * time.Second
	DefaultMaxThrottleResubmissions = 5
	DefaultMaxTransactionFee        = 200_000_000
	DefaultValidDuration            = 120 * time.Second
	DefaultAsyncWorkers             = 8
)

// Operator is the account that pays for transactions built without an explicit
// transaction ID, along with the means to sign for it
type Operator struct {
	AccountID ids.AccountID
	PublicKey keys.PublicKey
	Signer    keys.SignerFunc
}

// AttemptEvent describes the outcome of a single attempt made by the execution engine
type AttemptEvent struct {
	Operation string
	NodeID    ids.AccountID
	Attempt   int
	Outcome   string
	Status    Status
	Err       error
	// Backoff applied to the node, when the attempt counted as a node failure
	NodeBackoff time.Duration
	// Delay before the next attempt
	Delay time.Duration
}

// The Client type holds the node registry, transport, and operator shared by every
// request executed through it. It is safe for concurrent use
type Client struct {
	registry                 *node.Registry
	nodeConfig               node.Config
	endpoints                []*node.Endpoint
	transport                transport.Transport
	ownsTransport            bool
	transportOptions         []transport.GRPCOptionFunc
	operator                 *Operator
	logger                   *slog.Logger
	metrics                  *Metrics
	attemptFunc              func(AttemptEvent)
	requestTimeout           time.Duration
	maxAttempts              int
	minBackoff               time.Duration
	maxBackoff               time.Duration
	maxAttemptTimeout        time.Duration
	receiptPollInterval      time.Duration
	receiptPollGrowth        float64
	maxReceiptPollInterval   time.Duration
	maxThrottleResubmissions int
	maxNodesPerTransaction   int
	defaultMaxTransactionFee uint64
	asyncWorkers             int
	scheduler                *scheduler
	closed                   atomic.Bool
	onceClose                sync.Once
}

// NewClient returns a new Client with the specified options. A gRPC transport is
// created when none is provided
func NewClient(options ...ClientOptionFunc) (*Client, error) {
	c := &Client{
		nodeConfig: node.Config{
			BackoffCeiling: DefaultBackoffCeiling,
		},
		requestTimeout:           DefaultRequestTimeout,
		maxAttempts:              DefaultMaxAttempts,
		minBackoff:               DefaultMinBackoff,
		maxBackoff:               DefaultMaxBackoff,
		maxAttemptTimeout:        DefaultMaxAttemptTimeout,
		receiptPollInterval:      DefaultReceiptPollInterval,
		receiptPollGrowth:        DefaultReceiptPollGrowth,
		maxReceiptPollInterval:   DefaultMaxReceiptPollInterval,
		maxThrottleResubmissions: DefaultMaxThrottleResubmissions,
		defaultMaxTransactionFee: DefaultMaxTransactionFee,
		asyncWorkers:             DefaultAsyncWorkers,
	}
	// Apply provided options functions
	for _, option := range options {
		option(c)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.metrics == nil {
		c.metrics = NewMetrics()
	}
	if c.transport == nil {
		opts := append(
			[]transport.GRPCOptionFunc{transport.WithLogger(c.logger)},
			c.transportOptions...,
		)
		c.transport = transport.NewGRPC(opts...)
		c.ownsTransport = true
	}
	c.registry = node.NewRegistry(c.nodeConfig, c.endpoints...)
	c.scheduler = newScheduler(c.asyncWorkers)
	return c, nil
}

func (c *Client) validate() error {
	switch {
	case c.maxAttempts < 1:
		return errors.New("max attempts must be at least 1")
	case c.requestTimeout <= 0:
		return errors.New("request timeout must be positive")
	case c.minBackoff <= 0 || c.maxBackoff < c.minBackoff:
		return errors.New("backoff bounds must be positive with max >= min")
	case c.maxAttemptTimeout <= 0:
		return errors.New("attempt timeout must be positive")
	case c.receiptPollInterval <= 0 || c.maxReceiptPollInterval < c.receiptPollInterval:
		return errors.New("receipt poll bounds must be positive with max >= interval")
	case c.receiptPollGrowth < 1:
		return errors.New("receipt poll growth must be at least 1")
	case c.maxThrottleResubmissions < 0:
		return errors.New("max throttle resubmissions must not be negative")
	case c.maxNodesPerTransaction < 0:
		return errors.New("max nodes per transaction must not be negative")
	}
	return nil
}

// Operator returns the client's operator, if one is configured
func (c *Client) Operator() (Operator, bool) {
	if c.operator == nil {
		return Operator{}, false
	}
	return *c.operator, true
}

// OperatorAccountID returns the operator account, or the zero account if none is configured
func (c *Client) OperatorAccountID() ids.AccountID {
	if c.operator == nil {
		return ids.AccountID{}
	}
	return c.operator.AccountID
}

// Registry returns the client's node registry
func (c *Client) Registry() *node.Registry {
	return c.registry
}

// SetNetwork replaces the client's nodes. Health state is kept for nodes that do not change
func (c *Client) SetNetwork(endpoints ...*node.Endpoint) {
	c.registry.SetNetwork(endpoints...)
}

// NodeAccountIDs returns the account IDs of the client's nodes
func (c *Client) NodeAccountIDs() []ids.AccountID {
	return c.registry.NodeIDs()
}

// Metrics returns the client's execution metrics
func (c *Client) Metrics() *Metrics {
	return c.metrics
}

// Logger returns the client's logger
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Transport returns the client's transport
func (c *Client) Transport() transport.Transport {
	return c.transport
}

// Close stops background executions and closes the transport if the client created it
func (c *Client) Close() error {
	var err error
	c.onceClose.Do(func() {
		c.closed.Store(true)
		c.scheduler.stop()
		if c.ownsTransport {
			err = c.transport.Close()
		}
	})
	return err
}

func (c *Client) isClosed() bool {
	return c.closed.Load()
}

// transactionNodes picks the nodes a transaction is frozen for when none are set
func (c *Client) transactionNodes() []ids.AccountID {
	nodeIds := c.registry.NodeIDs()
	if c.maxNodesPerTransaction > 0 && len(nodeIds) > c.maxNodesPerTransaction {
		nodeIds = nodeIds[:c.maxNodesPerTransaction]
	}
	return nodeIds
}

func (c *Client) emitAttempt(event AttemptEvent) {
	if c.attemptFunc != nil {
		c.attemptFunc(event)
	}
}
