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

package transport

import (
	"bytes"
	"context"
	"crypto/sha512"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	grpc_metric "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

var ErrCertificateMismatch = errors.New("node certificate does not match the expected hash")

// GRPC is a Transport that calls unary gRPC methods on ledger nodes
type GRPC struct {
	pool        *Pool
	logger      *slog.Logger
	metrics     *grpc_metric.ClientMetrics
	dialOptions []grpc.DialOption
}

// GRPCOptionFunc is a type that represents functions that modify the GRPC transport config
type GRPCOptionFunc func(*GRPC)

// WithLogger specifies the logger to use. This defaults to slog.Default()
func WithLogger(logger *slog.Logger) GRPCOptionFunc {
	return func(g *GRPC) {
		g.logger = logger
	}
}

// WithClientMetrics specifies the Prometheus metrics that record every call. The
// caller is responsible for registering them
func WithClientMetrics(metrics *grpc_metric.ClientMetrics) GRPCOptionFunc {
	return func(g *GRPC) {
		g.metrics = metrics
	}
}

// WithDialOptions adds extra options used when creating client connections
func WithDialOptions(opts ...grpc.DialOption) GRPCOptionFunc {
	return func(g *GRPC) {
		g.dialOptions = append(g.dialOptions, opts...)
	}
}

func NewGRPC(opts ...GRPCOptionFunc) *GRPC {
	g := &GRPC{}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	g.pool = NewPool(g.dial)
	return g
}

// Pool returns the connection pool used by the transport
func (g *GRPC) Pool() *Pool {
	return g.pool
}

func (g *GRPC) dial(_ context.Context, target Target) (*grpc.ClientConn, error) {
	opts := []grpc.DialOption{
		grpc.WithDefaultCallOptions(grpc.ForceCodec(rawCodec{})),
	}
	if len(target.CertHash) > 0 {
		opts = append(
			opts,
			grpc.WithTransportCredentials(credentials.NewTLS(pinnedTLSConfig(target.CertHash))),
		)
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	if g.metrics != nil {
		opts = append(opts, grpc.WithUnaryInterceptor(g.metrics.UnaryClientInterceptor()))
	}
	opts = append(opts, g.dialOptions...)
	g.logger.Debug(
		"creating node connection",
		"component", "transport",
		"node", target.NodeID.String(),
		"address", target.Address,
		"tls", len(target.CertHash) > 0,
	)
	conn, err := grpc.NewClient(target.Address, opts...)
	if err != nil {
		return nil, fmt.Errorf("create client for %s: %w", target.Address, err)
	}
	return conn, nil
}

// Send invokes the method on the target node. The pooled connection is released when
// the call returns, whatever the outcome
func (g *GRPC) Send(
	ctx context.Context,
	target Target,
	method string,
	request []byte,
) ([]byte, error) {
	conn, release, err := g.pool.Acquire(ctx, target)
	if err != nil {
		return nil, NewTransportError(target, method, err)
	}
	defer release()
	var resp Frame
	if err := conn.Invoke(ctx, method, Frame(request), &resp); err != nil {
		tErr := NewTransportError(target, method, err)
		g.logger.Debug(
			"node call failed",
			"component", "transport",
			"node", target.NodeID.String(),
			"method", method,
			"code", tErr.Code.String(),
			"retryable", tErr.Retryable,
		)
		return nil, tErr
	}
	return resp, nil
}

func (g *GRPC) Close() error {
	return g.pool.Close()
}

// pinnedTLSConfig accepts a node certificate when the SHA-384 hash of its leaf
// matches certHash. The hash may be given as raw bytes or as hex text
func pinnedTLSConfig(certHash []byte) *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		// The chain is not verified against roots: the node is pinned by its hash
		InsecureSkipVerify: true, // #nosec G402
		VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			if len(rawCerts) == 0 {
				return ErrCertificateMismatch
			}
			return verifyCertHash(rawCerts[0], certHash)
		},
	}
}

func verifyCertHash(leaf []byte, certHash []byte) error {
	sum := sha512.Sum384(leaf)
	if bytes.Equal(sum[:], certHash) {
		return nil
	}
	if bytes.EqualFold([]byte(hex.EncodeToString(sum[:])), certHash) {
		return nil
	}
	return ErrCertificateMismatch
}
