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

// QueryKind identifies the information requested by a query
type QueryKind uint16

const (
	QueryKindUnknown QueryKind = 0
	QueryKindReceipt QueryKind = 1
	QueryKindRecord  QueryKind = 2
)

func (k QueryKind) String() string {
	switch k {
	case QueryKindReceipt:
		return "TransactionGetReceipt"
	case QueryKindRecord:
		return "TransactionGetRecord"
	}
	return fmt.Sprintf("Unknown(%d)", uint16(k))
}

// Query asks a node about a transaction
type Query struct {
	cbor.StructAsArray
	Kind              QueryKind
	TransactionID     ids.TransactionID
	IncludeDuplicates bool
}

// Response is a node's answer to a query
type Response struct {
	cbor.StructAsArray
	Precheck uint32
	Cost     uint64
	Receipt  *TransactionReceipt
	Record   *TransactionRecord
}

// TransactionReceipt is the minimal consensus outcome of a transaction
type TransactionReceipt struct {
	cbor.StructAsArray
	Status              uint32
	AccountID           *ids.AccountID
	FileID              *ids.FileID
	TopicID             *ids.TopicID
	TopicSequenceNumber uint64
}

// TransactionRecord is the detailed consensus outcome of a transaction
type TransactionRecord struct {
	cbor.StructAsArray
	Receipt            TransactionReceipt
	TransactionHash    []byte
	ConsensusTimestamp ids.Timestamp
	TransactionID      ids.TransactionID
	Memo               string
	TransactionFee     uint64
	Transfers          []AccountAmount
}
