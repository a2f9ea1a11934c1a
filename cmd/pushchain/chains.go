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
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/chain"
)

const shortF = "short"

// chainView is the yaml representation of a chain descriptor.
type chainView struct {
	Chain          string   `yaml:"chain"`
	VM             string   `yaml:"vm"`
	ChainID        string   `yaml:"chainId"`
	Mainnet        bool     `yaml:"mainnet"`
	NativeSymbol   string   `yaml:"nativeSymbol"`
	NativeDecimals uint8    `yaml:"nativeDecimals"`
	Confirmations  uint64   `yaml:"confirmations"`
	FeeLocker      string   `yaml:"feeLocker,omitempty"`
	Implementation string   `yaml:"implementation,omitempty"`
	PriceFeed      string   `yaml:"priceFeed,omitempty"`
	DefaultRPC     []string `yaml:"defaultRPC,omitempty"`
	EVMChainID     string   `yaml:"evmChainId,omitempty"`
	Factory        string   `yaml:"factory,omitempty"`
}

func newChainView(d pushchain.ChainDescriptor) chainView {
	cv := chainView{
		Chain:          string(d.Chain),
		VM:             d.VM.String(),
		ChainID:        d.ChainID,
		Mainnet:        d.Mainnet,
		NativeSymbol:   d.NativeSymbol,
		NativeDecimals: d.NativeDecimals,
		Confirmations:  d.Confirmations,
		FeeLocker:      d.FeeLocker,
		DefaultRPC:     d.DefaultRPC,
	}
	if d.Implementation != (common.Address{}) {
		cv.Implementation = d.Implementation.Hex()
	}
	if d.PriceFeed != nil {
		cv.PriceFeed = fmt.Sprintf("%s %s on %s", d.PriceFeed.Kind, d.PriceFeed.Address, d.PriceFeed.Chain)
	}
	if info, err := chain.PushInfo(d.Chain); err == nil {
		cv.EVMChainID = info.EVMChainID.String()
		if info.Factory != (common.Address{}) {
			cv.Factory = info.Factory.Hex()
		}
	}
	return cv
}

func newChainsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chains",
		Short: "List the supported chains",
		Long: `
List the supported chains with their parameters in yaml format. Use --short to
print one line per chain.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			short, err := cmd.Flags().GetBool(shortF)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			views := make([]chainView, 0, len(chain.Chains()))
			for _, c := range chain.Chains() {
				d := chain.MustDescribe(c)
				if short {
					locker := redf("no fee locker")
					if d.HasFeeLocker() {
						locker = greenf("fee locker")
					}
					fmt.Fprintf(out, "%-48s %s %-4s %s\n", boldf("%s", c), d.VM, d.NativeSymbol, locker)
					continue
				}
				views = append(views, newChainView(d))
			}
			if short {
				return nil
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(views); err != nil {
				return errors.Wrap(err, "encoding chains")
			}
			return enc.Close()
		},
	}
	cmd.Flags().Bool(shortF, false, "Print one line per chain")
	return cmd
}
