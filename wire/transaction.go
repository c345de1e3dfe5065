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

package wire

import (
	"fmt"

	"github.com/blinklabs-io/gohiero/cbor"
	"github.com/blinklabs-io/gohiero/ids"
)

// TransactionKind identifies the operation carried in a transaction body
type TransactionKind uint16

const (
	TransactionKindUnknown        TransactionKind = 0
	TransactionKindCryptoTransfer TransactionKind = 1
	TransactionKindFileDelete     TransactionKind = 2
	TransactionKindTopicDelete    TransactionKind = 3
)

func (k TransactionKind) String() string {
	switch k {
	case TransactionKindCryptoTransfer:
		return "CryptoTransfer"
	case TransactionKindFileDelete:
		return "FileDelete"
	case TransactionKindTopicDelete:
		return "TopicDelete"
	}
	return fmt.Sprintf("Unknown(%d)", uint16(k))
}

// TransactionBody is the signed content of a transaction. Each node gets its own
// copy, since the body names the node that submits it
type TransactionBody struct {
	cbor.StructAsArray
	TransactionID  ids.TransactionID
	NodeAccountID  ids.AccountID
	TransactionFee uint64
	ValidDuration  ids.Duration
	Memo           string
	Kind           TransactionKind
	Data           cbor.RawMessage
}

// Key types used in signature pairs
const (
	KeyTypeEd25519        uint8 = 1
	KeyTypeECDSASecp256k1 uint8 = 2
)

// SignaturePair is a signature along with the raw public key that produced it
type SignaturePair struct {
	cbor.StructAsArray
	KeyType   uint8
	PublicKey []byte
	Signature []byte
}

// SignedTransaction is a serialized body plus the signatures over those bytes. Its
// original CBOR is kept when decoded so that re-encoding is byte-identical
type SignedTransaction struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	BodyBytes []byte
	SigMap    []SignaturePair
}

func (s *SignedTransaction) UnmarshalCBOR(data []byte) error {
	return s.UnmarshalCborGeneric(data, s)
}

func (s *SignedTransaction) MarshalCBOR() ([]byte, error) {
	if c := s.Cbor(); c != nil {
		return c, nil
	}
	return cbor.EncodeGeneric(s)
}

// Body decodes the body bytes
func (s *SignedTransaction) Body() (*TransactionBody, error) {
	var body TransactionBody
	if err := Unmarshal(s.BodyBytes, &body); err != nil {
		return nil, fmt.Errorf("decode transaction body: %w", err)
	}
	return &body, nil
}

// TransactionListVersion is the current version of the serialized request envelope
const TransactionListVersion = 1

// TransactionList is the serialized form of a request: either the body template and
// chosen nodes of a request that has not been frozen yet, or one signed transaction
// per node
type TransactionList struct {
	cbor.StructAsArray
	Version      uint
	Kind         TransactionKind
	Template     *TransactionBody
	Nodes        []ids.AccountID
	Transactions []SignedTransaction
}

// DecodeTransactionList decodes and checks a serialized request
func DecodeTransactionList(data []byte) (*TransactionList, error) {
	// The version leads the envelope and decides the layout of the rest
	version, err := cbor.DecodeIdFromList(data)
	if err != nil {
		return nil, fmt.Errorf("decode transaction list: %w", err)
	}
	if version != TransactionListVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	var ret TransactionList
	if err := Unmarshal(data, &ret); err != nil {
		return nil, fmt.Errorf("decode transaction list: %w", err)
	}
	if ret.Template == nil && len(ret.Transactions) == 0 {
		return nil, fmt.Errorf("decode transaction list: no transactions")
	}
	return &ret, nil
}

// TransactionResponse is a node's answer to a submission
type TransactionResponse struct {
	cbor.StructAsArray
	Precheck uint32
	Cost     uint64
}

// AccountAmount is a single balance change of a transfer
type AccountAmount struct {
	cbor.StructAsArray
	AccountID ids.AccountID
	Amount    int64
}

type CryptoTransferBody struct {
	cbor.StructAsArray
	Transfers []AccountAmount
}

type FileDeleteBody struct {
	cbor.StructAsArray
	FileID ids.FileID
}

type TopicDeleteBody struct {
	cbor.StructAsArray
	TopicID ids.TopicID
}
