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
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/chain"
	"github.com/push-protocol/push-chain-sdk/currency"
)

// flag names for the parameters of an execution.
const (
	toF                   = "to"
	valueF                = "value"
	dataF                 = "data"
	gasLimitF             = "gas-limit"
	maxFeePerGasF         = "max-fee-per-gas"
	maxPriorityFeePerGasF = "max-priority-fee-per-gas"
	deadlineF             = "deadline"
)

func defineExecuteParamFlags(fs *pflag.FlagSet) {
	fs.String(toF, "", "Target address on Push Chain as hex string with 0x prefix")
	fs.String(valueF, "0", "Value to send in PC, e.g. 0.5")
	fs.String(dataF, "", "Calldata as hex string with 0x prefix")
	fs.String(gasLimitF, "", "Gas limit. Estimated when not specified")
	fs.String(maxFeePerGasF, "", "Max fee per gas in the smallest PC unit")
	fs.String(maxPriorityFeePerGasF, "", "Max priority fee per gas in the smallest PC unit")
	fs.String(deadlineF, "", "Unix time after which the payload is rejected")
}

// parseExecuteParams reads the execute params from the flags. Integer
// params left unspecified are nil, so that defaults apply.
func parseExecuteParams(fs *pflag.FlagSet) (pushchain.ExecuteParams, error) {
	var p pushchain.ExecuteParams
	to, err := fs.GetString(toF)
	if err != nil {
		return p, err
	}
	if !common.IsHexAddress(to) {
		return p, pushchain.NewAPIErrInvalidArgument(errors.New("not a hex address"), "to", to,
			"20 byte hex address")
	}
	p.To = common.HexToAddress(to)

	value, err := fs.GetString(valueF)
	if err != nil {
		return p, err
	}
	if p.Value, err = currency.New("PC", chain.PushDecimals).Parse(value); err != nil {
		return p, pushchain.NewAPIErrInvalidArgument(err, "value", value, "decimal amount in PC")
	}

	data, err := fs.GetString(dataF)
	if err != nil {
		return p, err
	}
	if data != "" {
		if p.Data, err = hexutil.Decode(data); err != nil {
			return p, pushchain.NewAPIErrInvalidArgument(err, "data", data, "hex string with 0x prefix")
		}
	}

	ints := []struct {
		flag string
		name pushchain.ArgumentName
		dst  **big.Int
	}{
		{gasLimitF, "gasLimit", &p.GasLimit},
		{maxFeePerGasF, "maxFeePerGas", &p.MaxFeePerGas},
		{maxPriorityFeePerGasF, "maxPriorityFeePerGas", &p.MaxPriorityFeePerGas},
		{deadlineF, "deadline", &p.Deadline},
	}
	for _, i := range ints {
		s, err := fs.GetString(i.flag)
		if err != nil {
			return p, err
		}
		if *i.dst, err = parseUint(s, i.name); err != nil {
			return p, err
		}
	}
	return p, nil
}

// parseUint parses a decimal integer. It returns nil for an empty string.
func parseUint(s string, name pushchain.ArgumentName) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 || v.BitLen() > 256 {
		return nil, pushchain.NewAPIErrInvalidArgument(errors.New("out of range"), name, s,
			"non negative 256 bit decimal integer")
	}
	return v, nil
}
