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
	"errors"
	"testing"

	"github.com/blinklabs-io/gohiero/keys"
	"github.com/stretchr/testify/assert"
)

func signedBy(pubs ...keys.PublicKey) func(keys.PublicKey) bool {
	return func(k keys.PublicKey) bool {
		for _, pub := range pubs {
			if pub.Equal(k) {
				return true
			}
		}
		return false
	}
}

func TestKeyListThreshold(t *testing.T) {
	var pubs []keys.PublicKey
	var list []keys.Key
	for i := range 3 {
		alg := keys.AlgorithmEd25519
		if i%2 == 1 {
			alg = keys.AlgorithmECDSASecp256k1
		}
		pub := generate(t, alg).PublicKey()
		pubs = append(pubs, pub)
		list = append(list, pub)
	}
	all := keys.NewKeyList(list...)
	assert.Equal(t, 3, all.EffectiveThreshold())
	assert.True(t, all.IsSatisfiedBy(signedBy(pubs...)))
	assert.False(t, all.IsSatisfiedBy(signedBy(pubs[0], pubs[1])))

	twoOfThree := keys.NewThresholdKeyList(2, list...)
	testDefs := []struct {
		signers  []keys.PublicKey
		expected bool
	}{
		{signers: nil, expected: false},
		{signers: pubs[:1], expected: false},
		{signers: pubs[1:], expected: true},
		{signers: []keys.PublicKey{pubs[0], pubs[2]}, expected: true},
		{signers: pubs, expected: true},
	}
	for _, testDef := range testDefs {
		if got := twoOfThree.IsSatisfiedBy(signedBy(testDef.signers...)); got != testDef.expected {
			t.Fatalf(
				"did not get expected result with %d signers: got %v, wanted %v",
				len(testDef.signers),
				got,
				testDef.expected,
			)
		}
	}
}

func TestKeyListDuplicateEntries(t *testing.T) {
	pub := generate(t, keys.AlgorithmEd25519).PublicKey()
	other := generate(t, keys.AlgorithmEd25519).PublicKey()
	// The same key listed twice only counts once
	list := keys.NewThresholdKeyList(2, pub, pub, other)
	assert.False(t, list.IsSatisfiedBy(signedBy(pub)))
	assert.True(t, list.IsSatisfiedBy(signedBy(pub, other)))
}

func TestKeyListNested(t *testing.T) {
	a := generate(t, keys.AlgorithmEd25519).PublicKey()
	b := generate(t, keys.AlgorithmECDSASecp256k1).PublicKey()
	c := generate(t, keys.AlgorithmEd25519).PublicKey()
	inner := keys.NewThresholdKeyList(1, b, c)
	outer := keys.NewKeyList(a, inner)
	assert.True(t, outer.IsSatisfiedBy(signedBy(a, b)))
	assert.True(t, outer.IsSatisfiedBy(signedBy(a, c)))
	assert.False(t, outer.IsSatisfiedBy(signedBy(a)))
	assert.False(t, outer.IsSatisfiedBy(signedBy(b, c)))
	assert.Len(t, outer.PublicKeys(), 3)
	assert.True(t, keys.IsSatisfiedBy(outer, signedBy(a, b, c)))
	assert.True(t, keys.IsSatisfiedBy(a, signedBy(a)))
	assert.False(t, keys.IsSatisfiedBy(a, signedBy(b)))
}

func TestKeyListValidate(t *testing.T) {
	pub := generate(t, keys.AlgorithmEd25519).PublicKey()
	testDefs := map[string]struct {
		list  *keys.KeyList
		valid bool
	}{
		"empty":              {list: keys.NewKeyList(), valid: true},
		"empty threshold":    {list: keys.NewThresholdKeyList(1), valid: false},
		"threshold too high": {list: keys.NewThresholdKeyList(2, pub), valid: false},
		"negative":           {list: keys.NewThresholdKeyList(-1, pub), valid: false},
		"ok":                 {list: keys.NewThresholdKeyList(1, pub), valid: true},
		"bad nested": {
			list:  keys.NewKeyList(pub, keys.NewThresholdKeyList(3, pub)),
			valid: false,
		},
		"zero key": {list: keys.NewKeyList(keys.PublicKey{}), valid: false},
	}
	for name, testDef := range testDefs {
		t.Run(name, func(t *testing.T) {
			err := testDef.list.Validate()
			if testDef.valid {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, keys.ErrInvalidKeyList), "got: %v", err)
		})
	}
	// An empty list is vacuously satisfied, but only with a zero threshold
	assert.True(t, keys.NewKeyList().IsSatisfiedBy(signedBy()))
	assert.False(t, keys.NewThresholdKeyList(1).IsSatisfiedBy(signedBy(pub)))
	assert.False(t, keys.NewThresholdKeyList(2, pub).IsSatisfiedBy(signedBy(pub)))
}

func TestKeyListNilAndCyclicEntries(t *testing.T) {
	pub := generate(t, keys.AlgorithmEd25519).PublicKey()
	var nilList *keys.KeyList
	withNil := keys.NewKeyList(pub, nil, nilList)
	assert.NotPanics(t, func() {
		assert.Contains(t, withNil.String(), "<nil>")
	})
	assert.ErrorIs(t, withNil.Validate(), keys.ErrInvalidKeyList)
	assert.False(t, withNil.IsSatisfiedBy(signedBy(pub)))
	assert.Len(t, withNil.PublicKeys(), 1)

	// A list that contains itself never terminates on its own
	cyclic := keys.NewThresholdKeyList(1, pub)
	cyclic.Add(cyclic)
	assert.NotPanics(t, func() {
		assert.Contains(t, cyclic.String(), "KeyList{...}")
		assert.ErrorIs(t, cyclic.Validate(), keys.ErrInvalidKeyList)
		assert.False(t, cyclic.IsSatisfiedBy(signedBy(pub)))
		assert.Len(t, cyclic.PublicKeys(), keys.MaxKeyListDepth)
	})

	// Nesting right at the limit is still accepted
	deep := keys.NewKeyList(pub)
	for range keys.MaxKeyListDepth - 1 {
		deep = keys.NewKeyList(deep)
	}
	assert.NoError(t, deep.Validate())
	assert.True(t, deep.IsSatisfiedBy(signedBy(pub)))
	assert.ErrorIs(t, keys.NewKeyList(deep).Validate(), keys.ErrInvalidKeyList)
}
