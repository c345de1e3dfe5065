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
	"log/slog"
	"time"

	"github.com/blinklabs-io/gohiero/ids"
	"github.com/blinklabs-io/gohiero/keys"
	"github.com/blinklabs-io/gohiero/node"
	"github.com/blinklabs-io/gohiero/transport"
)

// ClientOptionFunc is a type that represents functions that modify the Client config
type ClientOptionFunc func(*Client)

// WithNetwork specifies a predefined network. Its nodes replace any nodes set earlier
func WithNetwork(network Network) ClientOptionFunc {
	return func(c *Client) {
		c.endpoints = network.Endpoints()
	}
}

// WithNodes specifies the consensus nodes to use. Nodes are added to any set earlier
func WithNodes(endpoints ...*node.Endpoint) ClientOptionFunc {
	return func(c *Client) {
		c.endpoints = append(c.endpoints, endpoints...)
	}
}

// WithOperator specifies the operator account and its private key
func WithOperator(accountID ids.AccountID, key keys.PrivateKey) ClientOptionFunc {
	return func(c *Client) {
		c.operator = &Operator{
			AccountID: accountID,
			PublicKey: key.PublicKey(),
			Signer:    key.SignerFunc(),
		}
	}
}

// WithOperatorSigner specifies the operator account with an external signer, such as
// a hardware wallet
func WithOperatorSigner(
	accountID ids.AccountID,
	publicKey keys.PublicKey,
	signer keys.SignerFunc,
) ClientOptionFunc {
	return func(c *Client) {
		c.operator = &Operator{
			AccountID: accountID,
			PublicKey: publicKey,
			Signer:    signer,
		}
	}
}

// WithTransport specifies the transport to use. The client does not close a transport
// provided this way
func WithTransport(t transport.Transport) ClientOptionFunc {
	return func(c *Client) {
		c.transport = t
	}
}

// WithTransportOptions specifies options for the gRPC transport created by the client
func WithTransportOptions(opts ...transport.GRPCOptionFunc) ClientOptionFunc {
	return func(c *Client) {
		c.transportOptions = append(c.transportOptions, opts...)
	}
}

// WithLogger specifies the logger. The default is slog.Default()
func WithLogger(logger *slog.Logger) ClientOptionFunc {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRequestTimeout specifies the overall deadline for a request across all attempts
func WithRequestTimeout(timeout time.Duration) ClientOptionFunc {
	return func(c *Client) {
		c.requestTimeout = timeout
	}
}

// WithMaxAttempts specifies the maximum number of attempts for a request
func WithMaxAttempts(maxAttempts int) ClientOptionFunc {
	return func(c *Client) {
		c.maxAttempts = maxAttempts
	}
}

// WithMinBackoff specifies the delay after the first failed attempt
func WithMinBackoff(backoff time.Duration) ClientOptionFunc {
	return func(c *Client) {
		c.minBackoff = backoff
	}
}

// WithMaxBackoff specifies the upper bound for the delay between attempts
func WithMaxBackoff(backoff time.Duration) ClientOptionFunc {
	return func(c *Client) {
		c.maxBackoff = backoff
	}
}

// WithMaxAttemptTimeout specifies the deadline for a single attempt
func WithMaxAttemptTimeout(timeout time.Duration) ClientOptionFunc {
	return func(c *Client) {
		c.maxAttemptTimeout = timeout
	}
}

// WithNodeBackoff specifies the floor and cap of the per-node backoff applied after a
// node failure
func WithNodeBackoff(minBackoff, maxBackoff time.Duration) ClientOptionFunc {
	return func(c *Client) {
		c.nodeConfig.MinBackoff = minBackoff
		c.nodeConfig.MaxBackoff = maxBackoff
	}
}

// WithBackoffCeiling specifies the longest the client waits for a backing-off node
// when no healthy node is available
func WithBackoffCeiling(ceiling time.Duration) ClientOptionFunc {
	return func(c *Client) {
		c.nodeConfig.BackoffCeiling = ceiling
	}
}

// WithReceiptPollInterval specifies the delay between the first receipt polls
func WithReceiptPollInterval(interval time.Duration) ClientOptionFunc {
	return func(c *Client) {
		c.receiptPollInterval = interval
	}
}

// WithReceiptPollGrowth specifies the factor the receipt poll delay grows by after
// each poll. A factor of 1 keeps the delay fixed
func WithReceiptPollGrowth(growth float64) ClientOptionFunc {
	return func(c *Client) {
		c.receiptPollGrowth = growth
	}
}

// WithMaxReceiptPollInterval specifies the upper bound for the receipt poll delay
func WithMaxReceiptPollInterval(interval time.Duration) ClientOptionFunc {
	return func(c *Client) {
		c.maxReceiptPollInterval = interval
	}
}

// WithMaxThrottleResubmissions specifies how many times a transaction throttled at
// consensus is resubmitted under a new transaction ID
func WithMaxThrottleResubmissions(count int) ClientOptionFunc {
	return func(c *Client) {
		c.maxThrottleResubmissions = count
	}
}

// WithMaxNodesPerTransaction limits the number of nodes a transaction is frozen for
// when it has no explicit nodes. Zero means all nodes
func WithMaxNodesPerTransaction(count int) ClientOptionFunc {
	return func(c *Client) {
		c.maxNodesPerTransaction = count
	}
}

// WithDefaultMaxTransactionFee specifies the fee used by transactions that do not set one
func WithDefaultMaxTransactionFee(fee uint64) ClientOptionFunc {
	return func(c *Client) {
		c.defaultMaxTransactionFee = fee
	}
}

// WithAsyncWorkers specifies the number of workers running asynchronous requests
func WithAsyncWorkers(workers int) ClientOptionFunc {
	return func(c *Client) {
		c.asyncWorkers = workers
	}
}

// WithMetrics specifies the metrics to record into. One is created by default
func WithMetrics(metrics *Metrics) ClientOptionFunc {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// WithAttemptFunc specifies a function that is called after every attempt
func WithAttemptFunc(fn func(AttemptEvent)) ClientOptionFunc {
	return func(c *Client) {
		c.attemptFunc = fn
	}
}
