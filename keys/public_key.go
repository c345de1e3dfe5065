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
	"bytes"
	"crypto/ed25519"
	"encoding/hex"

	"filippo.io/edwards25519"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"golang.org/x/crypto/sha3"
)

// PublicKey holds the raw public encoding of a key: 32 bytes for Ed25519 and a
// 33-byte compressed point for secp256k1. The point itself is only decoded when
// verifying
type PublicKey struct {
	alg Algorithm
	raw []byte
}

func (PublicKey) isKey() {}

// PublicKeyFromBytes detects the key type of the provided blob. DER is tried first,
// followed by the raw Ed25519 and raw compressed secp256k1 lengths
func PublicKeyFromBytes(data []byte) (PublicKey, error) {
	if alg, raw, ok := parsePublicKeyDER(data); ok {
		return newPublicKey(alg, raw)
	}
	switch len(data) {
	case Ed25519PublicKeyLength:
		return newPublicKey(AlgorithmEd25519, data)
	case ECDSAPublicKeyLength:
		return newPublicKey(AlgorithmECDSASecp256k1, data)
	}
	return PublicKey{}, invalidEncoding(data, "unrecognized public key format")
}

// PublicKeyFromBytesEd25519 accepts a raw 32-byte key or an Ed25519 DER key
func PublicKeyFromBytesEd25519(data []byte) (PublicKey, error) {
	if len(data) == Ed25519PublicKeyLength {
		return newPublicKey(AlgorithmEd25519, data)
	}
	if alg, raw, ok := parsePublicKeyDER(data); ok && alg == AlgorithmEd25519 {
		return newPublicKey(alg, raw)
	}
	return PublicKey{}, invalidEncoding(data, "not an Ed25519 public key")
}

// PublicKeyFromBytesECDSA accepts a raw compressed or uncompressed point, or a
// secp256k1 DER key
func PublicKeyFromBytesECDSA(data []byte) (PublicKey, error) {
	if alg, raw, ok := parsePublicKeyDER(data); ok {
		if alg != AlgorithmECDSASecp256k1 {
			return PublicKey{}, invalidEncoding(data, "not a secp256k1 public key")
		}
		return newPublicKey(alg, raw)
	}
	return newPublicKey(AlgorithmECDSASecp256k1, data)
}

// PublicKeyFromBytesDER accepts only DER encoded keys
func PublicKeyFromBytesDER(data []byte) (PublicKey, error) {
	alg, raw, ok := parsePublicKeyDER(data)
	if !ok {
		return PublicKey{}, invalidEncoding(data, "not a DER public key")
	}
	return newPublicKey(alg, raw)
}

// PublicKeyFromString decodes a hex string, with an optional 0x prefix, and then
// detects the key type as PublicKeyFromBytes does
func PublicKeyFromString(s string) (PublicKey, error) {
	data, err := decodeHexString(s)
	if err != nil {
		return PublicKey{}, err
	}
	return PublicKeyFromBytes(data)
}

func PublicKeyFromStringEd25519(s string) (PublicKey, error) {
	data, err := decodeHexString(s)
	if err != nil {
		return PublicKey{}, err
	}
	return PublicKeyFromBytesEd25519(data)
}

func PublicKeyFromStringECDSA(s string) (PublicKey, error) {
	data, err := decodeHexString(s)
	if err != nil {
		return PublicKey{}, err
	}
	return PublicKeyFromBytesECDSA(data)
}

func newPublicKey(alg Algorithm, raw []byte) (PublicKey, error) {
	switch alg {
	case AlgorithmEd25519:
		if len(raw) != Ed25519PublicKeyLength {
			return PublicKey{}, invalidEncoding(raw, "wrong Ed25519 public key length")
		}
	case AlgorithmECDSASecp256k1:
		// An all-zero compressed point is kept as-is and never verifies
		if len(raw) == ECDSAPublicKeyLength && isAllZero(raw) {
			break
		}
		pub, err := btcec.ParsePubKey(raw)
		if err != nil {
			return PublicKey{}, invalidEncoding(raw, "not a secp256k1 point")
		}
		raw = pub.SerializeCompressed()
	default:
		return PublicKey{}, invalidEncoding(raw, "unknown algorithm")
	}
	return PublicKey{alg: alg, raw: bytes.Clone(raw)}, nil
}

func (k PublicKey) Algorithm() Algorithm {
	return k.alg
}

// Bytes returns the raw encoding, which PublicKeyFromBytes classifies by length
func (k PublicKey) Bytes() []byte {
	return k.BytesRaw()
}

func (k PublicKey) BytesRaw() []byte {
	return bytes.Clone(k.raw)
}

func (k PublicKey) BytesDER() []byte {
	if k.alg == AlgorithmUnknown {
		return nil
	}
	return marshalPublicKeyDER(k.alg, k.raw)
}

// String returns the hex DER encoding
func (k PublicKey) String() string {
	return hex.EncodeToString(k.BytesDER())
}

func (k PublicKey) StringRaw() string {
	return hex.EncodeToString(k.raw)
}

func (k PublicKey) StringDER() string {
	return k.String()
}

func (k PublicKey) IsZero() bool {
	return k.alg == AlgorithmUnknown
}

func (k PublicKey) Equal(other PublicKey) bool {
	return k.alg == other.alg && bytes.Equal(k.raw, other.raw)
}

// Verify checks a signature over the message. Malformed keys or signatures result
// in false
func (k PublicKey) Verify(message []byte, signature []byte) bool {
	switch k.alg {
	case AlgorithmEd25519:
		return verifyEd25519(k.raw, message, signature)
	case AlgorithmECDSASecp256k1:
		return verifyECDSA(k.raw, message, signature)
	}
	return false
}

func verifyEd25519(pubKey []byte, message []byte, signature []byte) bool {
	if len(pubKey) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	// validate key
	point := &edwards25519.Point{}
	if _, err := point.SetBytes(pubKey); err != nil {
		return false
	}
	isSmallOrder := (&edwards25519.Point{}).MultByCofactor(point).
		Equal(edwards25519.NewIdentityPoint()) ==
		1
	if isSmallOrder {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pubKey), message, signature)
}

func verifyECDSA(pubKey []byte, message []byte, signature []byte) bool {
	if len(signature) != ECDSASignatureLength {
		return false
	}
	pub, err := btcec.ParsePubKey(pubKey)
	if err != nil {
		return false
	}
	var r, s btcec.ModNScalar
	if overflow := r.SetByteSlice(signature[:32]); overflow || r.IsZero() {
		return false
	}
	if overflow := s.SetByteSlice(signature[32:]); overflow || s.IsZero() {
		return false
	}
	return ecdsa.NewSignature(&r, &s).Verify(keccak256(message), pub)
}

func keccak256(message []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(message)
	return h.Sum(nil)
}
