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
	encoding_asn1 "encoding/asn1"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

var (
	oidEd25519       = encoding_asn1.ObjectIdentifier{1, 3, 101, 112}
	oidEcPublicKey   = encoding_asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}
	oidCurveSecp256k = encoding_asn1.ObjectIdentifier{1, 3, 132, 0, 10}
)

var (
	tagEcParams    = asn1.Tag(0).ContextSpecific().Constructed()
	tagEcPublicKey = asn1.Tag(1).ContextSpecific().Constructed()
)

// SubjectPublicKeyInfo
func marshalPublicKeyDER(alg Algorithm, raw []byte) []byte {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			switch alg {
			case AlgorithmEd25519:
				b.AddASN1ObjectIdentifier(oidEd25519)
			case AlgorithmECDSASecp256k1:
				b.AddASN1ObjectIdentifier(oidEcPublicKey)
				b.AddASN1ObjectIdentifier(oidCurveSecp256k)
			}
		})
		b.AddASN1BitString(raw)
	})
	return b.BytesOrPanic()
}

// parsePublicKeyDER returns the algorithm and the raw key bytes. For secp256k1 keys, both
// the id-ecPublicKey form and the legacy form naming only the curve are accepted
func parsePublicKeyDER(der []byte) (Algorithm, []byte, bool) {
	input := cryptobyte.String(der)
	var spki, algId cryptobyte.String
	var oid encoding_asn1.ObjectIdentifier
	var key encoding_asn1.BitString
	if !input.ReadASN1(&spki, asn1.SEQUENCE) || !input.Empty() ||
		!spki.ReadASN1(&algId, asn1.SEQUENCE) ||
		!algId.ReadASN1ObjectIdentifier(&oid) ||
		!spki.ReadASN1BitString(&key) || !spki.Empty() ||
		key.BitLength%8 != 0 {
		return AlgorithmUnknown, nil, false
	}
	switch {
	case oid.Equal(oidEd25519):
		if !algId.Empty() || len(key.Bytes) != Ed25519PublicKeyLength {
			return AlgorithmUnknown, nil, false
		}
		return AlgorithmEd25519, key.Bytes, true
	case oid.Equal(oidEcPublicKey):
		var curve encoding_asn1.ObjectIdentifier
		if !algId.ReadASN1ObjectIdentifier(&curve) || !algId.Empty() ||
			!curve.Equal(oidCurveSecp256k) {
			return AlgorithmUnknown, nil, false
		}
		return AlgorithmECDSASecp256k1, key.Bytes, true
	case oid.Equal(oidCurveSecp256k):
		if !algId.Empty() {
			return AlgorithmUnknown, nil, false
		}
		return AlgorithmECDSASecp256k1, key.Bytes, true
	}
	return AlgorithmUnknown, nil, false
}

// Ed25519 keys use PKCS#8, secp256k1 keys use the RFC 5915 ECPrivateKey structure
func marshalPrivateKeyDER(alg Algorithm, raw []byte) []byte {
	var b cryptobyte.Builder
	switch alg {
	case AlgorithmEd25519:
		b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1Int64(0)
			b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
				b.AddASN1ObjectIdentifier(oidEd25519)
			})
			b.AddASN1(asn1.OCTET_STRING, func(b *cryptobyte.Builder) {
				b.AddASN1OctetString(raw)
			})
		})
	case AlgorithmECDSASecp256k1:
		b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1Int64(1)
			b.AddASN1OctetString(raw)
			b.AddASN1(tagEcParams, func(b *cryptobyte.Builder) {
				b.AddASN1ObjectIdentifier(oidCurveSecp256k)
			})
		})
	}
	return b.BytesOrPanic()
}

// parsePrivateKeyDER accepts PKCS#8 (Ed25519 or EC) and bare RFC 5915 structures
func parsePrivateKeyDER(der []byte) (Algorithm, []byte, bool) {
	input := cryptobyte.String(der)
	var seq cryptobyte.String
	var version int64
	if !input.ReadASN1(&seq, asn1.SEQUENCE) || !input.Empty() ||
		!seq.ReadASN1Integer(&version) {
		return AlgorithmUnknown, nil, false
	}
	switch version {
	case 0:
		return parsePKCS8Body(seq)
	case 1:
		raw, ok := parseECPrivateKeyBody(seq)
		if !ok {
			return AlgorithmUnknown, nil, false
		}
		return AlgorithmECDSASecp256k1, raw, true
	}
	return AlgorithmUnknown, nil, false
}

func parsePKCS8Body(seq cryptobyte.String) (Algorithm, []byte, bool) {
	var algId, privKey cryptobyte.String
	var oid encoding_asn1.ObjectIdentifier
	if !seq.ReadASN1(&algId, asn1.SEQUENCE) ||
		!algId.ReadASN1ObjectIdentifier(&oid) ||
		!seq.ReadASN1(&privKey, asn1.OCTET_STRING) {
		return AlgorithmUnknown, nil, false
	}
	// Trailing optional attributes and public key fields are ignored
	switch {
	case oid.Equal(oidEd25519):
		var seed cryptobyte.String
		if !algId.Empty() || !privKey.ReadASN1(&seed, asn1.OCTET_STRING) ||
			!privKey.Empty() || len(seed) != Ed25519PrivateKeyLength {
			return AlgorithmUnknown, nil, false
		}
		return AlgorithmEd25519, []byte(seed), true
	case oid.Equal(oidEcPublicKey):
		var curve encoding_asn1.ObjectIdentifier
		if !algId.ReadASN1ObjectIdentifier(&curve) || !curve.Equal(oidCurveSecp256k) {
			return AlgorithmUnknown, nil, false
		}
		var inner cryptobyte.String
		var version int64
		if !privKey.ReadASN1(&inner, asn1.SEQUENCE) || !privKey.Empty() ||
			!inner.ReadASN1Integer(&version) || version != 1 {
			return AlgorithmUnknown, nil, false
		}
		raw, ok := parseECPrivateKeyBody(inner)
		if !ok {
			return AlgorithmUnknown, nil, false
		}
		return AlgorithmECDSASecp256k1, raw, true
	}
	return AlgorithmUnknown, nil, false
}

// parseECPrivateKeyBody reads the remainder of an ECPrivateKey after the version
func parseECPrivateKeyBody(seq cryptobyte.String) ([]byte, bool) {
	var scalar cryptobyte.String
	if !seq.ReadASN1(&scalar, asn1.OCTET_STRING) || len(scalar) > ECDSAPrivateKeyLength {
		return nil, false
	}
	var params cryptobyte.String
	var hasParams bool
	if !seq.ReadOptionalASN1(&params, &hasParams, tagEcParams) {
		return nil, false
	}
	if hasParams {
		var curve encoding_asn1.ObjectIdentifier
		if !params.ReadASN1ObjectIdentifier(&curve) || !curve.Equal(oidCurveSecp256k) {
			return nil, false
		}
	}
	// The embedded public key is derived again from the scalar
	var pub cryptobyte.String
	var hasPub bool
	if !seq.ReadOptionalASN1(&pub, &hasPub, tagEcPublicKey) || !seq.Empty() {
		return nil, false
	}
	raw := make([]byte, ECDSAPrivateKeyLength)
	copy(raw[ECDSAPrivateKeyLength-len(scalar):], scalar)
	return raw, true
}
