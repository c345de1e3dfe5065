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
	"context"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/blinklabs-io/gohiero/ids"
	grpc_metric "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	methodEcho        = "/proto.TestService/echo"
	methodUnavailable = "/proto.TestService/unavailable"
	methodInvalid     = "/proto.TestService/invalid"
	methodReset       = "/proto.TestService/reset"
)

func startTestServer(t *testing.T) (string, func()) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	server := grpc.NewServer(
		grpc.ForceServerCodec(rawCodec{}),
		grpc.UnknownServiceHandler(func(_ any, stream grpc.ServerStream) error {
			method, _ := grpc.MethodFromServerStream(stream)
			var req Frame
			if err := stream.RecvMsg(&req); err != nil {
				return err
			}
			switch method {
			case methodEcho:
				return stream.SendMsg(append(Frame("echo:"), req...))
			case methodUnavailable:
				return status.Error(codes.Unavailable, "node is restarting")
			case methodReset:
				return status.Error(codes.Internal, "stream terminated by RST_STREAM with error code: PROTOCOL_ERROR")
			default:
				return status.Error(codes.InvalidArgument, "bad request")
			}
		}),
	)
	go func() {
		_ = server.Serve(listener)
	}()
	return listener.Addr().String(), server.Stop
}

func testTarget(addr string) Target {
	return Target{NodeID: ids.NewAccountID(3), Address: addr}
}

func TestGRPCSend(t *testing.T) {
	defer goleak.VerifyNone(t)
	addr, stop := startTestServer(t)
	defer stop()
	metrics := grpc_metric.NewClientMetrics()
	g := NewGRPC(WithClientMetrics(metrics))
	defer g.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := g.Send(ctx, testTarget(addr), methodEcho, []byte("ping"))
	require.NoError(t, err)
	assert.Equal(t, "echo:ping", string(resp))
	assert.Equal(t, 0, g.Pool().InUse(testTarget(addr)))
	assert.Equal(t, 1, g.Pool().Len())
	assert.Equal(t, 1, testutil.CollectAndCount(metrics, "grpc_client_handled_total"))
}

func TestGRPCErrorClassification(t *testing.T) {
	defer goleak.VerifyNone(t)
	addr, stop := startTestServer(t)
	defer stop()
	g := NewGRPC()
	defer g.Close()
	testDefs := map[string]struct {
		method    string
		code      codes.Code
		retryable bool
	}{
		"unavailable": {method: methodUnavailable, code: codes.Unavailable, retryable: true},
		"reset":       {method: methodReset, code: codes.Internal, retryable: true},
		"invalid":     {method: methodInvalid, code: codes.InvalidArgument, retryable: false},
	}
	for name, testDef := range testDefs {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, err := g.Send(ctx, testTarget(addr), testDef.method, []byte("x"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrTransport))
			var tErr *TransportError
			require.True(t, errors.As(err, &tErr))
			assert.Equal(t, testDef.code, tErr.Code)
			assert.Equal(t, testDef.retryable, tErr.Retryable)
			assert.Equal(t, testDef.retryable, IsRetryable(err))
			// The connection is released on failure too
			assert.Equal(t, 0, g.Pool().InUse(testTarget(addr)))
		})
	}
}

func TestGRPCConcurrentSendsShareConnection(t *testing.T) {
	defer goleak.VerifyNone(t)
	addr, stop := startTestServer(t)
	defer stop()
	g := NewGRPC()
	defer g.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := g.Send(ctx, testTarget(addr), methodEcho, []byte("x")); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("unexpected error: %s", err)
	}
	assert.Equal(t, 1, g.Pool().Len())
	assert.Equal(t, 0, g.Pool().InUse(testTarget(addr)))
}

func TestGRPCDeadline(t *testing.T) {
	defer goleak.VerifyNone(t)
	// Nothing listens on this address once the listener is closed
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())
	g := NewGRPC()
	defer g.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = g.Send(ctx, testTarget(addr), methodEcho, []byte("x"))
	require.Error(t, err)
	assert.True(t, IsRetryable(err), "got: %v", err)
	assert.Equal(t, 0, g.Pool().InUse(testTarget(addr)))
}

func TestGRPCClosed(t *testing.T) {
	defer goleak.VerifyNone(t)
	g := NewGRPC()
	require.NoError(t, g.Close())
	require.NoError(t, g.Close())
	_, err := g.Send(context.Background(), testTarget("127.0.0.1:1"), methodEcho, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrClosed))
	assert.False(t, IsRetryable(err))
}

func TestVerifyCertHash(t *testing.T) {
	leaf := []byte("not really a certificate")
	sum := sha512.Sum384(leaf)
	assert.NoError(t, verifyCertHash(leaf, sum[:]))
	assert.NoError(t, verifyCertHash(leaf, []byte(hex.EncodeToString(sum[:]))))
	assert.ErrorIs(t, verifyCertHash(leaf, []byte("abcd")), ErrCertificateMismatch)
	cfg := pinnedTLSConfig(sum[:])
	assert.ErrorIs(t, cfg.VerifyPeerCertificate(nil, nil), ErrCertificateMismatch)
	assert.NoError(t, cfg.VerifyPeerCertificate([][]byte{leaf}, nil))
}

func TestRawCodec(t *testing.T) {
	codec := rawCodec{}
	data, err := codec.Marshal(Frame("abc"))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)
	var f Frame
	require.NoError(t, codec.Unmarshal([]byte("xyz"), &f))
	assert.Equal(t, Frame("xyz"), f)
	_, err = codec.Marshal(42)
	assert.Error(t, err)
	assert.Error(t, codec.Unmarshal(nil, new(int)))
}
