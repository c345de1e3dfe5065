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

// Package utils provides helpers for inspecting serialized requests
package utils

import (
	"fmt"
	"strings"

	"github.com/blinklabs-io/gohiero/cbor"
)

// DumpCbor decodes arbitrary CBOR data and returns an indented outline of its structure
func DumpCbor(data []byte) (string, error) {
	var tmp any
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return "", err
	}
	var sb strings.Builder
	dumpValue(&sb, tmp, "")
	return sb.String(), nil
}

func dumpValue(sb *strings.Builder, value any, indent string) {
	switch v := value.(type) {
	case []byte:
		fmt.Fprintf(sb, "%s<bytes> (length %d) %x\n", indent, len(v), truncate(v, 16))
	case []any:
		fmt.Fprintf(sb, "%s[\n", indent)
		for _, item := range v {
			dumpValue(sb, item, indent+"  ")
		}
		fmt.Fprintf(sb, "%s]\n", indent)
	case map[any]any:
		fmt.Fprintf(sb, "%s{\n", indent)
		for key, item := range v {
			fmt.Fprintf(sb, "%s  %#v =>\n", indent, key)
			dumpValue(sb, item, indent+"    ")
		}
		fmt.Fprintf(sb, "%s}\n", indent)
	default:
		fmt.Fprintf(sb, "%s%#v\n", indent, v)
	}
}

func truncate(data []byte, n int) []byte {
	if len(data) > n {
		return data[:n]
	}
	return data
}
