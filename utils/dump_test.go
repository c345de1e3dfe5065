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

package utils_test

import (
	"strings"
	"testing"

	"github.com/blinklabs-io/gohiero/internal/test"
	"github.com/blinklabs-io/gohiero/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpCbor(t *testing.T) {
	// [1, h'0102', ["a"]]
	out, err := utils.DumpCbor(test.DecodeHexString("83 01 42 0102 81 61 61"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(
		t,
		[]string{
			"[",
			"  0x1",
			"  <bytes> (length 2) 0102",
			"  [",
			"    \"a\"",
			"  ]",
			"]",
		},
		lines,
	)
}

func TestDumpCborInvalid(t *testing.T) {
	_, err := utils.DumpCbor([]byte{0x83, 0x01})
	assert.Error(t, err)
}
