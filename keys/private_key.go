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
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
)

// PrivateKey owns the secret scalar of a key pair
type PrivateKey struct {
	alg Algorithm
	ed  ed25519.PrivateKey
	ec  *btcec.PrivateKey
}

// GeneratePrivateKey creates a new random key of the requested algorithm
func GeneratePrivateKey(alg Algorithm) (PrivateKey, error) {
	switch alg {
	case AlgorithmEd25519:
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return PrivateKey{}, err
		}
		return PrivateKey{alg: alg, ed: priv}, nil
	case AlgorithmECDSASecp256k1:
		priv, err := btcec.NewPrivateKey()
		if err != nil {
			return PrivateKey{}, err
		}
		return PrivateKey{alg: alg, ec: priv}, nil
	}
	return PrivateKey{}, fmt.Errorf("unsupported key algorithm: %s", alg)
}

func GenerateEd25519() (PrivateKey, error) {
	return GeneratePrivateKey(AlgorithmEd25519)
}

func GenerateECDSA() (PrivateKey, error) {
	return GeneratePrivateKey(AlgorithmECDSASecp256k1)
}

// PrivateKeyFromBytes detects the key type of the provided blob. DER is tried first.
// Raw 32-byte keys are ambiguous and treated as Ed25519, as are 64-byte Ed25519
// seed plus public key blobs
func PrivateKeyFromBytes(data []byte) (PrivateKey, error) {
	if alg, raw, ok := parsePrivateKeyDER(data); ok {
		return newPrivateKey(alg, raw)
	}
	switch len(data) {
	case Ed25519PrivateKeyLength:
		return newPrivateKey(AlgorithmEd25519, data)
	case ed25519.PrivateKeySize:
		return newPrivateKey(AlgorithmEd25519, data[:ed25519.SeedSize])
	}
	return PrivateKey{}, invalidEncoding(data, "unrecognized private key format")
}

func PrivateKeyFromBytesEd25519(data []byte) (PrivateKey, error) {
	if alg, raw, ok := parsePrivateKeyDER(data); ok {
		if alg != AlgorithmEd25519 {
			return PrivateKey{}, invalidEncoding(data, "not an Ed25519 private key")
		}
		return newPrivateKey(alg, raw)
	}
	switch len(data) {
	case Ed25519PrivateKeyLength:
		return newPrivateKey(AlgorithmEd25519, data)
	case ed25519.PrivateKeySize:
		return newPrivateKey(AlgorithmEd25519, data[:ed25519.SeedSize])
	}
	return PrivateKey{}, invalidEncoding(data, "not an Ed25519 private key")
}

func PrivateKeyFromBytesECDSA(data []byte) (PrivateKey, error) {
	if alg, raw, ok := parsePrivateKeyDER(data); ok {
		if alg != AlgorithmECDSASecp256k1 {
			return PrivateKey{}, invalidEncoding(data, "not a secp256k1 private key")
		}
		return newPrivateKey(alg, raw)
	}
	if len(data) != ECDSAPrivateKeyLength {
		return PrivateKey{}, invalidEncoding(data, "not a secp256k1 private key")
	}
	return newPrivateKey(AlgorithmECDSASecp256k1, data)
}

func PrivateKeyFromBytesDER(data []byte) (PrivateKey, error) {
	alg, raw, ok := parsePrivateKeyDER(data)
	if !ok {
		return PrivateKey{}, invalidEncoding(data, "not a DER private key")
	}
	return newPrivateKey(alg, raw)
}

func PrivateKeyFromString(s string) (PrivateKey, error) {
	data, err := decodeHexString(s)
	if err != nil {
		return PrivateKey{}, err
	}
	return PrivateKeyFromBytes(data)
}

func PrivateKeyFromStringEd25519(s string) (PrivateKey, error) {
	data, err := decodeHexString(s)
	if err != nil {
		return PrivateKey{}, err
	}
	return PrivateKeyFromBytesEd25519(data)
}

func PrivateKeyFromStringECDSA(s string) (PrivateKey, error) {
	data, err := decodeHexString(s)
	if err != nil {
		return PrivateKey{}, err
	}
	return PrivateKeyFromBytesECDSA(data)
}

func newPrivateKey(alg Algorithm, raw []byte) (PrivateKey, error) {
	switch alg {
	case AlgorithmEd25519:
		if len(raw) != ed25519.SeedSize {
			return PrivateKey{}, invalidEncoding(raw, "wrong Ed25519 seed length")
		}
		return PrivateKey{alg: alg, ed: ed25519.NewKeyFromSeed(raw)}, nil
	case AlgorithmECDSASecp256k1:
		if len(raw) != ECDSAPrivateKeyLength {
			return PrivateKey{}, invalidEncoding(raw, "wrong secp256k1 scalar length")
		}
		var scalar btcec.ModNScalar
		if overflow := scalar.SetByteSlice(raw); overflow || scalar.IsZero() {
			return PrivateKey{}, invalidEncoding(raw, "secp256k1 scalar out of range")
		}
		priv, _ := btcec.PrivKeyFromBytes(raw)
		return PrivateKey{alg: alg, ec: priv}, nil
	}
	return PrivateKey{}, invalidEncoding(raw, "unknown algorithm")
}

func (k PrivateKey) Algorithm() Algorithm {
	return k.alg
}

func (k PrivateKey) IsZero() bool {
	return k.alg == AlgorithmUnknown
}

// PublicKey derives the public half of the key pair
func (k PrivateKey) PublicKey() PublicKey {
	switch k.alg {
	case AlgorithmEd25519:
		pub, _ := k.ed.Public().(ed25519.PublicKey)
		return PublicKey{alg: k.alg, raw: bytes.Clone(pub)}
	case AlgorithmECDSASecp256k1:
		return PublicKey{alg: k.alg, raw: k.ec.PubKey().SerializeCompressed()}
	}
	return PublicKey{}
}

// BytesRaw returns the 32-byte secret
func (k PrivateKey) BytesRaw() []byte {
	switch k.alg {
	case AlgorithmEd25519:
		ret := make([]byte, ed25519.SeedSize)
		copy(ret, k.ed.Seed())
		return ret
	case AlgorithmECDSASecp256k1:
		return k.ec.Serialize()
	}
	return nil
}

func (k PrivateKey) BytesDER() []byte {
	if k.alg == AlgorithmUnknown {
		return nil
	}
	return marshalPrivateKeyDER(k.alg, k.BytesRaw())
}

// Bytes returns the DER encoding, which is the only unambiguous form for secp256k1 keys
func (k PrivateKey) Bytes() []byte {
	return k.BytesDER()
}

// String returns the hex DER encoding
func (k PrivateKey) String() string {
	return hex.EncodeToString(k.BytesDER())
}

func (k PrivateKey) StringRaw() string {
	return hex.EncodeToString(k.BytesRaw())
}

func (k PrivateKey) StringDER() string {
	return k.String()
}

// Sign signs the message. Ed25519 signatures are deterministic. ECDSA signatures are
// computed over the Keccak-256 digest of the message with a fresh random nonce and
// returned as 32-byte r followed by 32-byte low-S s
func (k PrivateKey) Sign(message []byte) ([]byte, error) {
	switch k.alg {
	case AlgorithmEd25519:
		return ed25519.Sign(k.ed, message), nil
	case AlgorithmECDSASecp256k1:
		return signECDSA(k.ec, message)
	}
	return nil, errors.New("cannot sign with an empty private key")
}

// SignerFunc returns a SignerFunc backed by this key
func (k PrivateKey) SignerFunc() SignerFunc {
	return k.Sign
}

func signECDSA(key *btcec.PrivateKey, message []byte) ([]byte, error) {
	rBig, sBig, err := ecdsa.Sign(rand.Reader, key.ToECDSA(), keccak256(message))
	if err != nil {
		return nil, err
	}
	var r, s btcec.ModNScalar
	if overflow := r.SetByteSlice(rBig.Bytes()); overflow {
		return nil, errors.New("ECDSA signature r out of range")
	}
	if overflow := s.SetByteSlice(sBig.Bytes()); overflow {
		return nil, errors.New("ECDSA signature s out of range")
	}
	if s.IsOverHalfOrder() {
		s.Negate()
	}
	rBytes := r.Bytes()
	sBytes := s.Bytes()
	ret := make([]byte, 0, ECDSASignatureLength)
	ret = append(ret, rBytes[:]...)
	ret = append(ret, sBytes[:]...)
	return ret, nil
}
