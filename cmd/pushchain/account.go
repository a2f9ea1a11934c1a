// Copyright (c) 2025 - for information on the respective copyright owner
// see the NOTICE file and/or the repository at
// https://github.com/push-protocol/push-chain-sdk
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

	"github.com/spf13/cobra"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/account"
	"github.com/push-protocol/push-chain-sdk/blockchain/evm"
	"github.com/push-protocol/push-chain-sdk/chain"
)

const (
	chainF   = "chain"
	addressF = "address"
	onchainF = "onchain"
)

type loadFn func(*cobra.Command) (pushchain.Config, error)

func newAccountCmd(load loadFn) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Derive the executor account of a user",
		Long: `
Derive the address of the executor account on Push Chain of a user on any
supported chain. The address is computed locally. With --onchain, the factory
on Push Chain is asked for the address, and whether the account is deployed,
its nonce and balance are printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			acc, err := accountFromFlags(cmd)
			if err != nil {
				return err
			}
			onchain, err := cmd.Flags().GetBool(onchainF)
			if err != nil {
				return err
			}
			push, err := chain.PushChain(cfg.Network)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			addr, err := account.NewDeriver(push, nil).Offchain(acc)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Executor account on %s: %s\n", push.Chain, greenf("%s", addr.Hex()))
			if !onchain {
				return nil
			}
			return printOnchainAccount(cmd.Context(), cmd, cfg, push, acc)
		},
	}
	cmd.Flags().String(chainF, "", "Chain of the user, as CAIP-2 identifier")
	cmd.Flags().String(addressF, "", "Address of the user in the native format of the chain")
	cmd.Flags().Bool(onchainF, false, "Read the executor account from Push Chain")
	_ = cmd.MarkFlagRequired(chainF)
	_ = cmd.MarkFlagRequired(addressF)
	return cmd
}

func accountFromFlags(cmd *cobra.Command) (pushchain.UniversalAccount, error) {
	c, err := cmd.Flags().GetString(chainF)
	if err != nil {
		return pushchain.UniversalAccount{}, err
	}
	addr, err := cmd.Flags().GetString(addressF)
	if err != nil {
		return pushchain.UniversalAccount{}, err
	}
	return pushchain.UniversalAccount{Chain: pushchain.Chain(c), Address: addr}, nil
}

func printOnchainAccount(ctx context.Context, cmd *cobra.Command, cfg pushchain.Config,
	push pushchain.PushChainInfo, acc pushchain.UniversalAccount) error {
	if ctx == nil {
		ctx = context.Background()
	}
	urls, err := chain.RPCURLs(push.Chain, cfg.RPCURLs)
	if err != nil {
		return err
	}
	client, err := evm.NewClient(string(push.Chain), urls, cfg.ConnTimeout, cfg.RPCRetryDelay)
	if err != nil {
		return err
	}
	d := account.NewDeriver(push, client)
	executor, err := d.Onchain(ctx, acc)
	if err != nil {
		return err
	}
	balance, err := client.GetBalance(ctx, executor.Address)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	pc := chain.NativeCurrency(chain.MustDescribe(push.Chain))
	fmt.Fprintf(out, "Address reported by factory: %s\n", executor.Address.Hex())
	fmt.Fprintf(out, "Balance: %s\n", pc.PrintWithSymbol(balance))
	if !executor.Deployed {
		fmt.Fprintln(out, redf("Not deployed. It is deployed with the first execution, which must lock fees."))
		return nil
	}
	nonce, err := d.Nonce(ctx, executor.Address)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Deployed, nonce: %s\n", nonce)
	return nil
}
