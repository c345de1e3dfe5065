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

package keys_test

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/blinklabs-io/gohiero/internal/test"
	"github.com/blinklabs-io/gohiero/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RFC 8032 section 7.1, test 1
const (
	rfcSeedHex      = "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"
	rfcPublicHex    = "d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a"
	rfcSignatureHex = "e5564300c360ac729086e2cc806e828a84877f1eb8e5d974d873e065" +
		"224901555fb8821590a33bacc61e39701cf9b46bd25bf5f0595bbe24655141438e7a100b"
)

const (
	testEd25519PublicDER = "302a300506032b6570032100e0c8ec2758a5879ffac226a13c0c516b799e72e35141a0dd828f94d37988a4b7"
	testEd25519PublicRaw = "e0c8ec2758a5879ffac226a13c0c516b799e72e35141a0dd828f94d37988a4b7"
)

func generate(t *testing.T, alg keys.Algorithm) keys.PrivateKey {
	t.Helper()
	key, err := keys.GeneratePrivateKey(alg)
	require.NoError(t, err)
	return key
}

var algorithms = []keys.Algorithm{keys.AlgorithmEd25519, keys.AlgorithmECDSASecp256k1}

func TestEd25519KnownVector(t *testing.T) {
	priv, err := keys.PrivateKeyFromStringEd25519(rfcSeedHex)
	require.NoError(t, err)
	assert.Equal(t, rfcPublicHex, priv.PublicKey().StringRaw())
	sig, err := priv.Sign([]byte{})
	require.NoError(t, err)
	assert.Equal(t, rfcSignatureHex, hex.EncodeToString(sig))
	assert.True(t, priv.PublicKey().Verify([]byte{}, sig))
	assert.Equal(
		t,
		"302e020100300506032b657004220420"+rfcSeedHex,
		priv.String(),
	)
}

func TestPublicKeyFromDERString(t *testing.T) {
	key, err := keys.PublicKeyFromString(testEd25519PublicDER)
	require.NoError(t, err)
	assert.Equal(t, keys.AlgorithmEd25519, key.Algorithm())
	assert.Equal(t, testEd25519PublicRaw, key.StringRaw())
	assert.Equal(t, testEd25519PublicDER, key.String())

	raw, err := keys.PublicKeyFromString("0x" + testEd25519PublicRaw)
	require.NoError(t, err)
	assert.True(t, raw.Equal(key))
}

func TestPublicKeyRoundTrip(t *testing.T) {
	for _, alg := range algorithms {
		t.Run(alg.String(), func(t *testing.T) {
			pub := generate(t, alg).PublicKey()
			fromRaw, err := keys.PublicKeyFromBytes(pub.BytesRaw())
			require.NoError(t, err)
			assert.True(t, fromRaw.Equal(pub))
			fromDER, err := keys.PublicKeyFromBytes(pub.BytesDER())
			require.NoError(t, err)
			assert.True(t, fromDER.Equal(pub))
			fromDER2, err := keys.PublicKeyFromBytesDER(pub.BytesDER())
			require.NoError(t, err)
			assert.True(t, fromDER2.Equal(pub))
			fromString, err := keys.PublicKeyFromString(pub.String())
			require.NoError(t, err)
			assert.True(t, fromString.Equal(pub))
			fromStringRaw, err := keys.PublicKeyFromString(pub.StringRaw())
			require.NoError(t, err)
			assert.True(t, fromStringRaw.Equal(pub))
			assert.Equal(t, pub.BytesDER(), fromString.BytesDER())
		})
	}
}

func TestPrivateKeyRoundTrip(t *testing.T) {
	for _, alg := range algorithms {
		t.Run(alg.String(), func(t *testing.T) {
			priv := generate(t, alg)
			fromDER, err := keys.PrivateKeyFromBytes(priv.BytesDER())
			require.NoError(t, err)
			assert.Equal(t, alg, fromDER.Algorithm())
			assert.Equal(t, priv.BytesRaw(), fromDER.BytesRaw())
			fromString, err := keys.PrivateKeyFromString(priv.String())
			require.NoError(t, err)
			assert.Equal(t, priv.String(), fromString.String())
			assert.True(t, fromString.PublicKey().Equal(priv.PublicKey()))
		})
	}
	// Raw 32-byte secrets need the algorithm to be named for secp256k1
	ecKey := generate(t, keys.AlgorithmECDSASecp256k1)
	fromRaw, err := keys.PrivateKeyFromStringECDSA(ecKey.StringRaw())
	require.NoError(t, err)
	assert.True(t, fromRaw.PublicKey().Equal(ecKey.PublicKey()))
	ambiguous, err := keys.PrivateKeyFromBytes(ecKey.BytesRaw())
	require.NoError(t, err)
	assert.Equal(t, keys.AlgorithmEd25519, ambiguous.Algorithm())
}

func TestECDSADerPrefixes(t *testing.T) {
	priv := generate(t, keys.AlgorithmECDSASecp256k1)
	assert.True(
		t,
		strings.HasPrefix(priv.String(), "302e0201010420"),
		"unexpected private DER: %s", priv.String(),
	)
	assert.True(t, strings.HasSuffix(priv.String(), "a00706052b8104000a"))
	pubDER := priv.PublicKey().String()
	assert.True(
		t,
		strings.HasPrefix(pubDER, "3036301006072a8648ce3d020106052b8104000a032200"),
		"unexpected public DER: %s", pubDER,
	)
	// The legacy encoding which only names the curve is also accepted
	legacy := "302d300706052b8104000a032200" + priv.PublicKey().StringRaw()
	key, err := keys.PublicKeyFromString(legacy)
	require.NoError(t, err)
	assert.True(t, key.Equal(priv.PublicKey()))
}

func TestECDSAPKCS8PrivateKey(t *testing.T) {
	priv := generate(t, keys.AlgorithmECDSASecp256k1)
	// PKCS#8 wrapping of an ECPrivateKey without curve parameters
	inner := "30250201010420" + priv.StringRaw()
	pkcs8Bytes := test.DecodeHexString(
		"303e020100301006072a8648ce3d020106052b8104000a0427" + inner,
	)
	key, err := keys.PrivateKeyFromBytesDER(pkcs8Bytes)
	require.NoError(t, err)
	assert.Equal(t, keys.AlgorithmECDSASecp256k1, key.Algorithm())
	assert.True(t, key.PublicKey().Equal(priv.PublicKey()))
}

func TestSignVerify(t *testing.T) {
	message := []byte("hello ledger")
	for _, alg := range algorithms {
		t.Run(alg.String(), func(t *testing.T) {
			priv := generate(t, alg)
			pub := priv.PublicKey()
			sig, err := priv.Sign(message)
			require.NoError(t, err)
			assert.Len(t, sig, 64)
			assert.True(t, pub.Verify(message, sig))
			// Flipping any single bit breaks the signature
			for i := range sig {
				flipped := bytes.Clone(sig)
				flipped[i] ^= 0x01
				if pub.Verify(message, flipped) {
					t.Fatalf("signature with flipped byte %d verified", i)
				}
			}
			assert.False(t, pub.Verify([]byte("other message"), sig))
			other := generate(t, alg).PublicKey()
			assert.False(t, other.Verify(message, sig))
			// Malformed signatures never panic
			assert.False(t, pub.Verify(message, nil))
			assert.False(t, pub.Verify(message, sig[:10]))
			assert.False(t, pub.Verify(message, append(bytes.Clone(sig), 0x00)))
		})
	}
}

func TestSignatureDeterminism(t *testing.T) {
	message := []byte("determinism")
	ed := generate(t, keys.AlgorithmEd25519)
	sig1, _ := ed.Sign(message)
	sig2, _ := ed.Sign(message)
	assert.Equal(t, sig1, sig2)
	ec := generate(t, keys.AlgorithmECDSASecp256k1)
	sig1, _ = ec.Sign(message)
	sig2, _ = ec.Sign(message)
	assert.NotEqual(t, sig1, sig2)
	assert.True(t, ec.PublicKey().Verify(message, sig1))
	assert.True(t, ec.PublicKey().Verify(message, sig2))
}

func TestZeroKeys(t *testing.T) {
	zeroEd, err := keys.PublicKeyFromBytes(make([]byte, 32))
	require.NoError(t, err)
	assert.Equal(t, keys.AlgorithmEd25519, zeroEd.Algorithm())
	_, err = keys.PublicKeyFromBytesEd25519(make([]byte, 32))
	require.NoError(t, err)
	assert.False(t, zeroEd.Verify([]byte("msg"), make([]byte, 64)))

	zeroEc, err := keys.PublicKeyFromBytes(make([]byte, 33))
	require.NoError(t, err)
	assert.Equal(t, keys.AlgorithmECDSASecp256k1, zeroEc.Algorithm())
	assert.False(t, zeroEc.Verify([]byte("msg"), make([]byte, 64)))
	sig, err := generate(t, keys.AlgorithmECDSASecp256k1).Sign([]byte("msg"))
	require.NoError(t, err)
	assert.False(t, zeroEc.Verify([]byte("msg"), sig))
}

func TestInvalidKeyEncoding(t *testing.T) {
	badKey := test.DecodeHexString(
		"00ca354b7cf487d1bc435a25667709c1ab980c114d3594e6259e812e6a703d4f51",
	)
	testDefs := map[string]func() error{
		"ed25519 33 bytes": func() error {
			_, err := keys.PublicKeyFromBytesEd25519(badKey)
			return err
		},
		"ed25519 3 bytes": func() error {
			_, err := keys.PublicKeyFromBytesEd25519([]byte{0x00, 0x01, 0x02})
			return err
		},
		"bad 33 byte point": func() error {
			_, err := keys.PublicKeyFromBytes(badKey)
			return err
		},
		"unknown length": func() error {
			_, err := keys.PublicKeyFromBytes(make([]byte, 40))
			return err
		},
		"bad hex": func() error {
			_, err := keys.PublicKeyFromString("zz")
			return err
		},
		"private unknown length": func() error {
			_, err := keys.PrivateKeyFromBytes(make([]byte, 20))
			return err
		},
		"ecdsa zero scalar": func() error {
			_, err := keys.PrivateKeyFromBytesECDSA(make([]byte, 32))
			return err
		},
		"ed25519 DER as ecdsa": func() error {
			_, err := keys.PublicKeyFromStringECDSA(testEd25519PublicDER)
			return err
		},
	}
	for name, fn := range testDefs {
		t.Run(name, func(t *testing.T) {
			err := fn()
			require.Error(t, err)
			assert.True(
				t,
				errors.Is(err, keys.ErrInvalidKeyEncoding),
				"did not get expected error type: %v", err,
			)
		})
	}
	// A valid Ed25519 DER key is accepted by the Ed25519-specific decoder
	_, err := keys.PublicKeyFromStringEd25519(testEd25519PublicDER)
	require.NoError(t, err)
}
