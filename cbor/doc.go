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

// Package cbor provides the deterministic CBOR encoding used for every message
// exchanged with ledger nodes.
//
// It wraps github.com/fxamacker/cbor/v2 with a few conventions:
//   - StructAsArray: embed to encode struct fields as a CBOR array instead of a map
//   - DecodeStoreCbor: embed to keep the original CBOR bytes of a decoded object
//   - RawMessage: deferred decoding of a nested item
//
// Encoding always uses core deterministic map ordering, so two encodings of the
// same value are byte-identical. Types that embed DecodeStoreCbor re-emit their
// original bytes when re-encoded, which keeps signed payloads stable across a
// decode/encode round trip:
//
//	type SignedThing struct {
//	    cbor.StructAsArray
//	    cbor.DecodeStoreCbor
//	    Body []byte
//	}
//
//	func (s *SignedThing) UnmarshalCBOR(data []byte) error {
//	    return s.UnmarshalCborGeneric(data, s)
//	}
package cbor
