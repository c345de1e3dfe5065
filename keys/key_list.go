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

package keys

import (
	"fmt"
	"strings"
)

// MaxKeyListDepth is the deepest nesting of key lists accepted. Lists that contain
// themselves exceed it and are invalid
const MaxKeyListDepth = 16

// KeyList is an ordered list of keys, which may include nested lists, that is
// satisfied when at least Threshold entries are satisfied. A zero Threshold means
// every entry must be satisfied
type KeyList struct {
	Keys      []Key
	Threshold int
}

func (*KeyList) isKey() {}

// NewKeyList returns a list that requires all of the provided keys
func NewKeyList(keys ...Key) *KeyList {
	return &KeyList{Keys: keys}
}

// NewThresholdKeyList returns a list that requires threshold of the provided keys
func NewThresholdKeyList(threshold int, keys ...Key) *KeyList {
	return &KeyList{Keys: keys, Threshold: threshold}
}

func (k *KeyList) Add(keys ...Key) *KeyList {
	k.Keys = append(k.Keys, keys...)
	return k
}

func (k *KeyList) Len() int {
	return len(k.Keys)
}

// EffectiveThreshold returns the number of entries that must be satisfied
func (k *KeyList) EffectiveThreshold() int {
	if k.Threshold == 0 {
		return len(k.Keys)
	}
	return k.Threshold
}

// Validate checks the threshold of this list and every nested list
func (k *KeyList) Validate() error {
	return k.validate(1)
}

func (k *KeyList) validate(depth int) error {
	if depth > MaxKeyListDepth {
		return fmt.Errorf(
			"%w: nested deeper than %d lists",
			ErrInvalidKeyList,
			MaxKeyListDepth,
		)
	}
	threshold := k.EffectiveThreshold()
	if len(k.Keys) == 0 {
		if k.Threshold != 0 {
			return fmt.Errorf(
				"%w: threshold %d on empty list",
				ErrInvalidKeyList,
				k.Threshold,
			)
		}
		return nil
	}
	if threshold < 1 || threshold > len(k.Keys) {
		return fmt.Errorf(
			"%w: threshold %d outside of [1, %d]",
			ErrInvalidKeyList,
			threshold,
			len(k.Keys),
		)
	}
	for _, key := range k.Keys {
		switch v := key.(type) {
		case *KeyList:
			if v == nil {
				return fmt.Errorf("%w: nil nested list", ErrInvalidKeyList)
			}
			if err := v.validate(depth + 1); err != nil {
				return err
			}
		case PublicKey:
			if v.IsZero() {
				return fmt.Errorf("%w: empty public key", ErrInvalidKeyList)
			}
		case nil:
			return fmt.Errorf("%w: nil key", ErrInvalidKeyList)
		}
	}
	return nil
}

// IsSatisfiedBy reports whether the list is satisfied when hasSigned reports which
// public keys have signed. Duplicate entries only count once
func (k *KeyList) IsSatisfiedBy(hasSigned func(PublicKey) bool) bool {
	if k.Validate() != nil {
		return false
	}
	return k.isSatisfiedBy(hasSigned)
}

func (k *KeyList) isSatisfiedBy(hasSigned func(PublicKey) bool) bool {
	threshold := k.EffectiveThreshold()
	if threshold == 0 {
		return true
	}
	satisfied := 0
	seenKeys := map[string]bool{}
	seenLists := map[*KeyList]bool{}
	for _, key := range k.Keys {
		switch v := key.(type) {
		case PublicKey:
			id := v.alg.String() + ":" + string(v.raw)
			if seenKeys[id] {
				continue
			}
			seenKeys[id] = true
			if hasSigned(v) {
				satisfied++
			}
		case *KeyList:
			if seenLists[v] {
				continue
			}
			seenLists[v] = true
			if v.isSatisfiedBy(hasSigned) {
				satisfied++
			}
		}
		if satisfied >= threshold {
			return true
		}
	}
	return false
}

// PublicKeys returns every public key in the list, including nested lists, in order.
// Lists nested deeper than MaxKeyListDepth are not followed
func (k *KeyList) PublicKeys() []PublicKey {
	return k.publicKeys(nil, 1)
}

func (k *KeyList) publicKeys(ret []PublicKey, depth int) []PublicKey {
	if depth > MaxKeyListDepth {
		return ret
	}
	for _, key := range k.Keys {
		switch v := key.(type) {
		case PublicKey:
			ret = append(ret, v)
		case *KeyList:
			if v != nil {
				ret = v.publicKeys(ret, depth+1)
			}
		}
	}
	return ret
}

func (k *KeyList) String() string {
	return k.string(1)
}

func (k *KeyList) string(depth int) string {
	if depth > MaxKeyListDepth {
		return "KeyList{...}"
	}
	parts := make([]string, 0, len(k.Keys))
	for _, key := range k.Keys {
		switch v := key.(type) {
		case nil:
			parts = append(parts, "<nil>")
		case *KeyList:
			if v == nil {
				parts = append(parts, "<nil>")
				continue
			}
			parts = append(parts, v.string(depth+1))
		default:
			parts = append(parts, v.String())
		}
	}
	return fmt.Sprintf(
		"KeyList{threshold=%d, keys=[%s]}",
		k.EffectiveThreshold(),
		strings.Join(parts, ", "),
	)
}

// IsSatisfiedBy is a convenience for checking any Key
func IsSatisfiedBy(key Key, hasSigned func(PublicKey) bool) bool {
	switch v := key.(type) {
	case PublicKey:
		return !v.IsZero() && hasSigned(v)
	case *KeyList:
		return v != nil && v.IsSatisfiedBy(hasSigned)
	}
	return false
}
