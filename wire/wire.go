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

// Package wire defines the messages exchanged with ledger nodes and the
// serialized form of requests. All messages are deterministic CBOR.
package wire

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/gohiero/cbor"
)

// Method describes a unary RPC exposed by ledger nodes
type Method struct {
	Service string
	Name    string
}

// FullName returns the gRPC method path
func (m Method) FullName() string {
	return fmt.Sprintf("/proto.%s/%s", m.Service, m.Name)
}

func (m Method) String() string {
	return m.FullName()
}

var (
	MethodCryptoTransfer = Method{Service: "CryptoService", Name: "cryptoTransfer"}
	MethodDeleteFile     = Method{Service: "FileService", Name: "deleteFile"}
	MethodDeleteTopic    = Method{Service: "ConsensusService", Name: "deleteTopic"}
	MethodGetReceipt     = Method{Service: "CryptoService", Name: "getTransactionReceipts"}
	MethodGetRecord      = Method{Service: "CryptoService", Name: "getTxRecordByTxID"}
)

var ErrUnsupportedVersion = errors.New("unsupported serialization version")

// Marshal encodes a message
func Marshal(msg any) ([]byte, error) {
	return cbor.Encode(msg)
}

// Unmarshal decodes a message and rejects trailing data
func Unmarshal(data []byte, msg any) error {
	n, err := cbor.Decode(data, msg)
	if err != nil {
		return err
	}
	if n != len(data) {
		return fmt.Errorf("trailing data after message: %d bytes", len(data)-n)
	}
	return nil
}
