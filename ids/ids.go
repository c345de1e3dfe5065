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

// Package ids contains the entity and transaction identifiers used on the ledger.
package ids

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/blinklabs-io/gohiero/cbor"
)

var ErrInvalidEntityID = errors.New("invalid entity ID")

// AccountID identifies an account, including the accounts that nodes run under
type AccountID struct {
	cbor.StructAsArray
	Shard uint64
	Realm uint64
	Num   uint64
}

// NewAccountID returns an account ID in shard 0, realm 0
func NewAccountID(num uint64) AccountID {
	return AccountID{Num: num}
}

func (a AccountID) String() string {
	return formatEntity(a.Shard, a.Realm, a.Num)
}

// IsZero returns true for the unset account ID
func (a AccountID) IsZero() bool {
	return a.Shard == 0 && a.Realm == 0 && a.Num == 0
}

// Compare orders account IDs by shard, realm and number
func (a AccountID) Compare(b AccountID) int {
	switch {
	case a.Shard != b.Shard:
		return cmpUint(a.Shard, b.Shard)
	case a.Realm != b.Realm:
		return cmpUint(a.Realm, b.Realm)
	default:
		return cmpUint(a.Num, b.Num)
	}
}

// AccountIDFromString parses an account ID in the form shard.realm.num
func AccountIDFromString(s string) (AccountID, error) {
	shard, realm, num, err := parseEntity(s)
	if err != nil {
		return AccountID{}, err
	}
	return AccountID{Shard: shard, Realm: realm, Num: num}, nil
}

// FileID identifies a file entity
type FileID struct {
	cbor.StructAsArray
	Shard uint64
	Realm uint64
	Num   uint64
}

func (f FileID) String() string {
	return formatEntity(f.Shard, f.Realm, f.Num)
}

func FileIDFromString(s string) (FileID, error) {
	shard, realm, num, err := parseEntity(s)
	if err != nil {
		return FileID{}, err
	}
	return FileID{Shard: shard, Realm: realm, Num: num}, nil
}

// TopicID identifies a consensus topic
type TopicID struct {
	cbor.StructAsArray
	Shard uint64
	Realm uint64
	Num   uint64
}

func (t TopicID) String() string {
	return formatEntity(t.Shard, t.Realm, t.Num)
}

func TopicIDFromString(s string) (TopicID, error) {
	shard, realm, num, err := parseEntity(s)
	if err != nil {
		return TopicID{}, err
	}
	return TopicID{Shard: shard, Realm: realm, Num: num}, nil
}

func formatEntity(shard, realm, num uint64) string {
	return fmt.Sprintf("%d.%d.%d", shard, realm, num)
}

func parseEntity(s string) (uint64, uint64, uint64, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidEntityID, s)
	}
	var vals [3]uint64
	for i, part := range parts {
		val, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidEntityID, s)
		}
		vals[i] = val
	}
	return vals[0], vals[1], vals[2], nil
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
