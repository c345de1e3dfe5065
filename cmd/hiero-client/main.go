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
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/blinklabs-io/gohiero/cmd/common"
	"github.com/spf13/cobra"
)

var globalFlags common.GlobalFlags

func rootCommand() *cobra.Command {
	c := &cobra.Command{
		Use:           "hiero-client",
		Short:         "Submit requests to a Hiero network",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	common.AddGlobalFlags(c.PersistentFlags(), &globalFlags)
	c.AddCommand(
		keygenCommand(),
		keyInspectCommand(),
		fileDeleteCommand(),
		topicDeleteCommand(),
		transferCommand(),
		decodeCommand(),
	)
	return c
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
}
