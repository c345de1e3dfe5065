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

package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	hiero "github.com/blinklabs-io/gohiero"
	"github.com/blinklabs-io/gohiero/utils"
	"github.com/spf13/cobra"
)

const rawKey = "raw"

func decodeCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "decode <file>",
		Short: "Decode serialized transaction bytes and show their contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			raw, err := c.Flags().GetBool(rawKey)
			if err != nil {
				return err
			}
			if !raw {
				data, err = hex.DecodeString(strings.TrimSpace(string(data)))
				if err != nil {
					return fmt.Errorf("decode hex: %w", err)
				}
			}
			out := c.OutOrStdout()
			req, err := hiero.TransactionFromBytes(data)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "kind:            %s\n", req.Kind())
			fmt.Fprintf(out, "transaction ID:  %s\n", req.TransactionID())
			fmt.Fprintf(out, "nodes:           %v\n", req.NodeAccountIDs())
			fmt.Fprintf(out, "max fee:         %d\n", req.MaxTransactionFee())
			fmt.Fprintf(out, "memo:            %q\n", req.TransactionMemo())
			fmt.Fprintf(out, "frozen:          %t\n", req.IsFrozen())
			for nodeID, sigs := range req.Signatures() {
				for _, sig := range sigs {
					fmt.Fprintf(out, "signature:       node %s key %s\n", nodeID, sig.PublicKey.StringRaw())
				}
			}
			dump, err := utils.DumpCbor(data)
			if err != nil {
				return err
			}
			fmt.Fprint(out, dump)
			return nil
		},
	}
	c.Flags().Bool(rawKey, false, "the file holds raw bytes instead of hex")
	return c
}
