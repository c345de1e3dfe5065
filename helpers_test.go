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

package hiero_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	hiero "github.com/blinklabs-io/gohiero"
	"github.com/blinklabs-io/gohiero/ids"
	"github.com/blinklabs-io/gohiero/internal/test/mocknode"
	"github.com/blinklabs-io/gohiero/keys"
	"github.com/blinklabs-io/gohiero/node"
	"github.com/blinklabs-io/gohiero/wire"
	"github.com/stretchr/testify/require"
)

var (
	testNode3      = ids.NewAccountID(3)
	testNode4      = ids.NewAccountID(4)
	testOperatorID = ids.NewAccountID(1001)
	testFileID     = ids.FileID{Num: 150}
)

func testOperatorKey(t *testing.T) keys.PrivateKey {
	t.Helper()
	key, err := keys.GenerateEd25519()
	require.NoError(t, err)
	return key
}

// newTestClient returns a client with fast timings talking to the mock. Callers close it
func newTestClient(
	t *testing.T,
	mock *mocknode.Transport,
	opts ...hiero.ClientOptionFunc,
) *hiero.Client {
	t.Helper()
	base := []hiero.ClientOptionFunc{
		hiero.WithTransport(mock),
		hiero.WithNodes(
			node.NewEndpoint(testNode3, "node3.test:50211"),
			node.NewEndpoint(testNode4, "node4.test:50211"),
		),
		hiero.WithOperator(testOperatorID, testOperatorKey(t)),
		hiero.WithMinBackoff(time.Millisecond),
		hiero.WithMaxBackoff(10 * time.Millisecond),
		hiero.WithNodeBackoff(time.Millisecond, 10*time.Millisecond),
		hiero.WithReceiptPollInterval(time.Millisecond),
		hiero.WithMaxReceiptPollInterval(5 * time.Millisecond),
		hiero.WithRequestTimeout(5 * time.Second),
		hiero.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	c, err := hiero.NewClient(append(base, opts...)...)
	require.NoError(t, err)
	return c
}

func newFileDelete(t *testing.T, nodeIds ...ids.AccountID) *hiero.FileDeleteTransaction {
	t.Helper()
	tx := hiero.NewFileDeleteTransaction()
	require.NoError(t, tx.SetFileID(testFileID))
	if len(nodeIds) > 0 {
		require.NoError(t, tx.SetNodeAccountIDs(nodeIds...))
	}
	return tx
}

func submitEntry(node ids.AccountID, status hiero.Status) mocknode.Entry {
	return mocknode.Entry{
		Node:     node,
		Method:   wire.MethodDeleteFile,
		Response: mocknode.SubmitResponse(uint32(status)),
	}
}

func receiptEntry(node ids.AccountID, status hiero.Status) mocknode.Entry {
	return mocknode.Entry{
		Node:     node,
		Method:   wire.MethodGetReceipt,
		Response: mocknode.ReceiptResponse(uint32(hiero.StatusOk), uint32(status)),
	}
}

func noUnexpectedCalls(t *testing.T, mock *mocknode.Transport) {
	t.Helper()
	select {
	case err := <-mock.ErrorChan():
		t.Fatalf("unexpected error from mock node: %s", err)
	default:
	}
}

// submittedBody decodes the transaction body of a submission request
func submittedBody(t *testing.T, request []byte) *wire.TransactionBody {
	t.Helper()
	var signed wire.SignedTransaction
	require.NoError(t, wire.Unmarshal(request, &signed))
	body, err := signed.Body()
	require.NoError(t, err)
	return body
}
