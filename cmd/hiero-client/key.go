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
	"fmt"

	"github.com/blinklabs-io/gohiero/keys"
	"github.com/spf13/cobra"
)

const algorithmKey = "algorithm"

func keygenCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new private key",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			name, err := c.Flags().GetString(algorithmKey)
			if err != nil {
				return err
			}
			var alg keys.Algorithm
			switch name {
			case "ed25519":
				alg = keys.AlgorithmEd25519
			case "ecdsa":
				alg = keys.AlgorithmECDSASecp256k1
			default:
				return fmt.Errorf("unsupported algorithm: %s", name)
			}
			key, err := keys.GeneratePrivateKey(alg)
			if err != nil {
				return err
			}
			printKey(c, key)
			return nil
		},
	}
	c.Flags().String(algorithmKey, "ed25519", "key algorithm (ed25519 or ecdsa)")
	return c
}

func keyInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "key-inspect <private key hex>",
		Short: "Show the public key and encodings of a private key",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			key, err := keys.PrivateKeyFromString(args[0])
			if err != nil {
				return err
			}
			printKey(c, key)
			return nil
		},
	}
}

func printKey(c *cobra.Command, key keys.PrivateKey) {
	out := c.OutOrStdout()
	pub := key.PublicKey()
	fmt.Fprintf(out, "algorithm:       %s\n", key.Algorithm())
	fmt.Fprintf(out, "private key:     %s\n", key.StringDER())
	fmt.Fprintf(out, "private key raw: %s\n", key.StringRaw())
	fmt.Fprintf(out, "public key:      %s\n", pub.StringDER())
	fmt.Fprintf(out, "public key raw:  %s\n", pub.StringRaw())
}
