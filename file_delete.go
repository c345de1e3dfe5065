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

	"github.com/blinklabs-io/gohiero/cbor"
	"github.com/blinklabs-io/gohiero/ids"
	"github.com/blinklabs-io/gohiero/wire"
)

var ErrMissingFileID = errors.New("file ID is not set")

// FileDeleteTransaction marks a file as deleted. It must be signed by the file's keys
type FileDeleteTransaction struct {
	Transaction
	fileID *ids.FileID
}

func NewFileDeleteTransaction() *FileDeleteTransaction {
	ret := &FileDeleteTransaction{}
	ret.init(ret)
	return ret
}

func (t *FileDeleteTransaction) FileID() ids.FileID {
	if t.fileID == nil {
		return ids.FileID{}
	}
	return *t.fileID
}

func (t *FileDeleteTransaction) SetFileID(fileID ids.FileID) error {
	if err := t.checkMutable("file ID"); err != nil {
		return err
	}
	t.fileID = &fileID
	return nil
}

func (t *FileDeleteTransaction) kind() wire.TransactionKind {
	return wire.TransactionKindFileDelete
}

func (t *FileDeleteTransaction) method() wire.Method {
	return wire.MethodDeleteFile
}

func (t *FileDeleteTransaction) buildData() (any, error) {
	if t.fileID == nil {
		return nil, ErrMissingFileID
	}
	return &wire.FileDeleteBody{FileID: *t.fileID}, nil
}

func (t *FileDeleteTransaction) decodeData(data cbor.RawMessage) error {
	var body wire.FileDeleteBody
	if err := wire.Unmarshal(data, &body); err != nil {
		return err
	}
	t.fileID = &body.FileID
	return nil
}
