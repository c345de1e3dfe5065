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
	"errors"
	"slices"

	"github.com/blinklabs-io/gohiero/cbor"
	"github.com/blinklabs-io/gohiero/ids"
	"github.com/blinklabs-io/gohiero/wire"
)

var ErrEmptyTransfer = errors.New("transfer has no balance changes")

// TransferTransaction moves value between accounts. Every account with a negative
// amount must sign
type TransferTransaction struct {
	Transaction
	transfers []Transfer
}

func NewTransferTransaction() *TransferTransaction {
	ret := &TransferTransaction{}
	ret.init(ret)
	return ret
}

// AddTransfer adds a balance change. Amounts for the same account are combined
func (t *TransferTransaction) AddTransfer(accountID ids.AccountID, amount int64) error {
	if err := t.checkMutable("transfers"); err != nil {
		return err
	}
	for idx := range t.transfers {
		if t.transfers[idx].AccountID == accountID {
			t.transfers[idx].Amount += amount
			return nil
		}
	}
	t.transfers = append(t.transfers, Transfer{AccountID: accountID, Amount: amount})
	return nil
}

func (t *TransferTransaction) Transfers() []Transfer {
	return slices.Clone(t.transfers)
}

func (t *TransferTransaction) kind() wire.TransactionKind {
	return wire.TransactionKindCryptoTransfer
}

func (t *TransferTransaction) method() wire.Method {
	return wire.MethodCryptoTransfer
}

func (t *TransferTransaction) buildData() (any, error) {
	if len(t.transfers) == 0 {
		return nil, ErrEmptyTransfer
	}
	body := &wire.CryptoTransferBody{
		Transfers: make([]wire.AccountAmount, 0, len(t.transfers)),
	}
	for _, transfer := range t.transfers {
		body.Transfers = append(
			body.Transfers,
			wire.AccountAmount{AccountID: transfer.AccountID, Amount: transfer.Amount},
		)
	}
	return body, nil
}

func (t *TransferTransaction) decodeData(data cbor.RawMessage) error {
	var body wire.CryptoTransferBody
	if err := wire.Unmarshal(data, &body); err != nil {
		return err
	}
	t.transfers = nil
	for _, aa := range body.Transfers {
		t.transfers = append(t.transfers, Transfer{AccountID: aa.AccountID, Amount: aa.Amount})
	}
	return nil
}
