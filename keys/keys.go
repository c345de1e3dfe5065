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

// Package keys implements the key material used to authorize ledger requests.
//
// Two algorithm families are supported, Ed25519 and ECDSA over secp256k1. Both
// private and public keys are closed tagged values: the Algorithm field selects
// the behavior of every encode, sign and verify operation. Public keys and
// threshold key lists both satisfy the Key interface.
package keys

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Algorithm identifies a key family
type Algorithm uint8

const (
	AlgorithmUnknown Algorithm = iota
	AlgorithmEd25519
	AlgorithmECDSASecp256k1
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmEd25519:
		return "Ed25519"
	case AlgorithmECDSASecp256k1:
		return "ECDSA(secp256k1)"
	default:
		return "Unknown"
	}
}

const (
	Ed25519PublicKeyLength  = 32
	Ed25519PrivateKeyLength = 32
	Ed25519SignatureLength  = 64

	ECDSAPublicKeyLength  = 33
	ECDSAPrivateKeyLength = 32
	ECDSASignatureLength  = 64
)

var (
	ErrInvalidKeyEncoding = errors.New("invalid key encoding")
	ErrInvalidKeyList     = errors.New("invalid key list")
)

// InvalidKeyEncodingError describes why a key blob could not be decoded
type InvalidKeyEncodingError struct {
	Reason string
	Length int
}

func (e *InvalidKeyEncodingError) Error() string {
	return fmt.Sprintf("invalid key encoding (%d bytes): %s", e.Length, e.Reason)
}

func (e *InvalidKeyEncodingError) Is(target error) bool {
	return target == ErrInvalidKeyEncoding
}

func invalidEncoding(data []byte, reason string) error {
	return &InvalidKeyEncodingError{Reason: reason, Length: len(data)}
}

// Key is either a single public key or a threshold key list. The set of
// implementations is closed
type Key interface {
	String() string
	isKey()
}

// SignerFunc produces a signature over the provided message. It allows signing with
// key material that lives outside the process, such as a hardware module
type SignerFunc func(message []byte) ([]byte, error)

func decodeHexString(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	ret, err := hex.DecodeString(s)
	if err != nil {
		return nil, &InvalidKeyEncodingError{Reason: "not valid hex", Length: len(s)}
	}
	return ret, nil
}

func isAllZero(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
