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
	"strconv"
	"strings"

	hiero "github.com/blinklabs-io/gohiero"
	"github.com/blinklabs-io/gohiero/ids"
	"github.com/spf13/cobra"
)

const (
	memoKey   = "memo"
	recordKey = "record"
)

func fileDeleteCommand() *cobra.Command {
	return submitCommand(
		"file-delete <file ID>",
		"Delete a file",
		func(args []string) (hiero.Request, error) {
			fileID, err := ids.FileIDFromString(args[0])
			if err != nil {
				return nil, err
			}
			tx := hiero.NewFileDeleteTransaction()
			if err := tx.SetFileID(fileID); err != nil {
				return nil, err
			}
			return tx, nil
		},
		cobra.ExactArgs(1),
	)
}

func topicDeleteCommand() *cobra.Command {
	return submitCommand(
		"topic-delete <topic ID>",
		"Delete a consensus topic",
		func(args []string) (hiero.Request, error) {
			topicID, err := ids.TopicIDFromString(args[0])
			if err != nil {
				return nil, err
			}
			tx := hiero.NewTopicDeleteTransaction()
			if err := tx.SetTopicID(topicID); err != nil {
				return nil, err
			}
			return tx, nil
		},
		cobra.ExactArgs(1),
	)
}

func transferCommand() *cobra.Command {
	return submitCommand(
		"transfer <account>:<amount>...",
		"Transfer tinybars between accounts. Amounts must sum to zero",
		func(args []string) (hiero.Request, error) {
			tx := hiero.NewTransferTransaction()
			for _, arg := range args {
				account, amount, ok := strings.Cut(arg, ":")
				if !ok {
					return nil, fmt.Errorf("invalid transfer %q: expected <account>:<amount>", arg)
				}
				accountID, err := ids.AccountIDFromString(account)
				if err != nil {
					return nil, err
				}
				value, err := strconv.ParseInt(amount, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
				}
				if err := tx.AddTransfer(accountID, value); err != nil {
					return nil, err
				}
			}
			return tx, nil
		},
		cobra.MinimumNArgs(2),
	)
}

type memoSetter interface {
	SetTransactionMemo(memo string) error
}

// submitCommand builds a command that executes a transaction, waits for its receipt
// and optionally fetches the record
func submitCommand(
	use string,
	short string,
	build func(args []string) (hiero.Request, error),
	argsFunc cobra.PositionalArgs,
) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  argsFunc,
		RunE: func(c *cobra.Command, args []string) error {
			memo, err := c.Flags().GetString(memoKey)
			if err != nil {
				return err
			}
			withRecord, err := c.Flags().GetBool(recordKey)
			if err != nil {
				return err
			}
			req, err := build(args)
			if err != nil {
				return err
			}
			if setter, ok := req.(memoSetter); ok && memo != "" {
				if err := setter.SetTransactionMemo(memo); err != nil {
					return err
				}
			}
			logger, err := globalFlags.NewLogger()
			if err != nil {
				return err
			}
			client, err := globalFlags.CreateClient(logger)
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := c.Context()
			resp, err := req.Execute(ctx, client)
			if err != nil {
				return err
			}
			out := c.OutOrStdout()
			fmt.Fprintf(out, "transaction %s submitted to node %s\n", resp.TransactionID(), resp.NodeID())
			receipt, err := resp.GetReceipt(ctx, client)
			if err != nil {
				return fmt.Errorf("%s: %w", hiero.KindOf(err), err)
			}
			if resp.Resubmissions() > 0 {
				fmt.Fprintf(
					out,
					"resubmitted %d time(s) after throttling, final transaction %s\n",
					resp.Resubmissions(),
					resp.TransactionID(),
				)
			}
			fmt.Fprintf(out, "status: %s\n", receipt.Status)
			if !withRecord {
				return nil
			}
			record, err := resp.GetRecord(ctx, client)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "consensus timestamp: %s\n", record.ConsensusTimestamp)
			fmt.Fprintf(out, "transaction fee: %d\n", record.TransactionFee)
			for _, transfer := range record.Transfers {
				fmt.Fprintf(out, "  %s %d\n", transfer.AccountID, transfer.Amount)
			}
			return nil
		},
	}
	c.Flags().String(memoKey, "", "transaction memo")
	c.Flags().Bool(recordKey, false, "fetch and print the transaction record")
	return c
}
