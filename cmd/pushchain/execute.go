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

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/chain"
	"github.com/push-protocol/push-chain-sdk/log"
	"github.com/push-protocol/push-chain-sdk/orchestrator"
	"github.com/push-protocol/push-chain-sdk/signer"
)

const (
	keyF        = "key"
	feeLockRefF = "fee-lock-ref"
)

func newExecuteCmd(load loadFn) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Execute a transaction on Push Chain",
		Long: `
Execute a transaction on Push Chain from an account on Push Chain. The key is a
hex encoded secp256k1 key.

Executions from other chains submit cosmos txs that must be signed by a tx
encoder, which this command does not hold. Use the account and hash commands
to prepare them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			if err := log.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
				return errors.WithMessage(err, "initializing logger")
			}
			fs := cmd.Flags()
			params, err := parseExecuteParams(fs)
			if err != nil {
				return err
			}
			if params.FeeLockReference, err = fs.GetString(feeLockRefF); err != nil {
				return err
			}
			s, err := signerFromFlags(cmd, cfg)
			if err != nil {
				return err
			}

			o, err := orchestrator.Dial(cfg, s, nil, nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			receipt, err := o.Execute(ctx, params)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", greenf("Executed"), prettify(receipt))
			return nil
		},
	}
	defineExecuteParamFlags(cmd.Flags())
	cmd.Flags().String(chainF, "", "Chain of the signer. Defaults to Push Chain of the configured network")
	cmd.Flags().String(keyF, "", "Private key of the signer")
	cmd.Flags().String(feeLockRefF, "", "Fee lock tx of an earlier attempt of the same execution")
	_ = cmd.MarkFlagRequired(toF)
	_ = cmd.MarkFlagRequired(keyF)
	return cmd
}

// signerFromFlags returns an in-memory signer for the key on the chain. The
// key is hex encoded for EVM chains and base58 encoded for SVM chains.
func signerFromFlags(cmd *cobra.Command, cfg pushchain.Config) (pushchain.UniversalSigner, error) {
	fs := cmd.Flags()
	c, err := fs.GetString(chainF)
	if err != nil {
		return nil, err
	}
	if c == "" {
		pushChain, err := chain.PushChainFor(cfg.Network)
		if err != nil {
			return nil, err
		}
		c = string(pushChain)
	}
	key, err := fs.GetString(keyF)
	if err != nil {
		return nil, err
	}

	desc, err := chain.Describe(pushchain.Chain(c))
	if err != nil {
		return nil, err
	}
	switch desc.VM {
	case pushchain.EVM:
		return signer.NewEVMSignerFromHex(key, desc.Chain)
	case pushchain.SVM:
		urls, err := chain.RPCURLs(desc.Chain, cfg.RPCURLs)
		if err != nil {
			return nil, err
		}
		return signer.NewSVMSignerFromBase58(key, desc.Chain, urls[0])
	}
	return nil, pushchain.NewAPIErrUnsupportedVM(desc.Chain, desc.VM)
}
