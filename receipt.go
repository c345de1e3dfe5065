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
	"time"

	"github.com/blinklabs-io/gohiero/ids"
	"github.com/blinklabs-io/gohiero/wire"
)

// TransactionReceipt is the consensus outcome of a transaction
type TransactionReceipt struct {
	Status        Status
	TransactionID ids.TransactionID
	// Node that reported the receipt
	NodeID              ids.AccountID
	AccountID           *ids.AccountID
	FileID              *ids.FileID
	TopicID             *ids.TopicID
	TopicSequenceNumber uint64
}

// ValidateStatus returns a ReceiptStatusError if validate is true and the receipt
// does not carry SUCCESS
func (r TransactionReceipt) ValidateStatus(validate bool) error {
	if validate && r.Status != StatusSuccess {
		return &ReceiptStatusError{
			Status:        r.Status,
			TransactionID: r.TransactionID,
			Receipt:       r,
		}
	}
	return nil
}

func receiptFromWire(
	w wire.TransactionReceipt,
	txID ids.TransactionID,
	nodeID ids.AccountID,
) TransactionReceipt {
	return TransactionReceipt{
		Status:              Status(w.Status),
		TransactionID:       txID,
		NodeID:              nodeID,
		AccountID:           w.AccountID,
		FileID:              w.FileID,
		TopicID:             w.TopicID,
		TopicSequenceNumber: w.TopicSequenceNumber,
	}
}

// Transfer is a change in an account balance
type Transfer struct {
	AccountID ids.AccountID
	Amount    int64
}

// TransactionRecord is the detailed consensus outcome of a transaction
type TransactionRecord struct {
	Receipt            TransactionReceipt
	TransactionID      ids.TransactionID
	TransactionHash    []byte
	ConsensusTimestamp time.Time
	Memo               string
	TransactionFee     uint64
	Transfers          []Transfer
}

func recordFromWire(w wire.TransactionRecord, nodeID ids.AccountID) TransactionRecord {
	ret := TransactionRecord{
		Receipt:            receiptFromWire(w.Receipt, w.TransactionID, nodeID),
		TransactionID:      w.TransactionID,
		TransactionHash:    w.TransactionHash,
		ConsensusTimestamp: w.ConsensusTimestamp.Time(),
		Memo:               w.Memo,
		TransactionFee:     w.TransactionFee,
	}
	for _, aa := range w.Transfers {
		ret.Transfers = append(
			ret.Transfers,
			Transfer{AccountID: aa.AccountID, Amount: aa.Amount},
		)
	}
	return ret
}
