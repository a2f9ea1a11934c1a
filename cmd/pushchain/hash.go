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
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/chain"
	"github.com/push-protocol/push-chain-sdk/orchestrator"
	"github.com/push-protocol/push-chain-sdk/payload"
)

const (
	executorF  = "executor"
	nonceF     = "nonce"
	typedDataF = "typed-data"
)

func newHashCmd(load loadFn) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Compute the execution hash of a payload",
		Long: `
Compute the digest a user signs to authorize a payload on an executor account.
Unspecified payload fields take the defaults used for executions. With
--typed-data, the EIP-712 typed data is printed as json as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			push, err := chain.PushChain(cfg.Network)
			if err != nil {
				return err
			}
			fs := cmd.Flags()
			params, err := parseExecuteParams(fs)
			if err != nil {
				return err
			}
			executor, err := fs.GetString(executorF)
			if err != nil {
				return err
			}
			if !common.IsHexAddress(executor) {
				return pushchain.NewAPIErrInvalidArgument(errors.New("not a hex address"), "executor", executor,
					"20 byte hex address")
			}
			nonceStr, err := fs.GetString(nonceF)
			if err != nil {
				return err
			}
			nonce, err := parseUint(nonceStr, "nonce")
			if err != nil {
				return err
			}
			withTypedData, err := fs.GetBool(typedDataF)
			if err != nil {
				return err
			}

			if err := orchestrator.ValidateParams(params); err != nil {
				return err
			}
			p := orchestrator.BuildPayload(params, params.GasLimit, nonce)
			verifier := common.HexToAddress(executor)
			hash := payload.ComputeExecutionHash(push.EVMChainID, verifier, p, payload.DefaultVersion)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Execution hash: %s\n", greenf("%s", hash.Hex()))
			if !withTypedData {
				return nil
			}
			td, err := json.MarshalIndent(payload.TypedData(push.EVMChainID, verifier, p, payload.DefaultVersion),
				"", "  ")
			if err != nil {
				return errors.Wrap(err, "encoding typed data")
			}
			fmt.Fprintln(out, string(td))
			return nil
		},
	}
	defineExecuteParamFlags(cmd.Flags())
	cmd.Flags().String(executorF, "", "Executor account address, see the account command")
	cmd.Flags().String(nonceF, "0", "Nonce of the executor account")
	cmd.Flags().Bool(typedDataF, false, "Print the EIP-712 typed data")
	_ = cmd.MarkFlagRequired(toF)
	_ = cmd.MarkFlagRequired(executorF)
	return cmd
}
