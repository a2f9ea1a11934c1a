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
	"bytes"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/account"
	"github.com/push-protocol/push-chain-sdk/chain"
	"github.com/push-protocol/push-chain-sdk/orchestrator"
	"github.com/push-protocol/push-chain-sdk/payload"
	"github.com/push-protocol/push-chain-sdk/pushchaintest"
)

const userAddress = "0x527F3692F5C53CfA83F7689885995606F93b6164"

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func Test_ChainsCmd(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		out, err := runCmd(t, "chains")
		require.NoError(t, err)
		var views []chainView
		require.NoError(t, yaml.Unmarshal([]byte(out), &views))
		require.Len(t, views, len(chain.Chains()))
		for i, c := range chain.Chains() {
			assert.Equal(t, string(c), views[i].Chain)
		}
		assert.Equal(t, "42101", views[1].EVMChainID)
		assert.Equal(t, chain.FactoryAddress.Hex(), views[1].Factory)
	})
	t.Run("short", func(t *testing.T) {
		out, err := runCmd(t, "chains", "--short")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		assert.Len(t, lines, len(chain.Chains()))
	})
}

func Test_AccountCmd(t *testing.T) {
	t.Run("happy_offline", func(t *testing.T) {
		out, err := runCmd(t, "account", "--network", "localnet", "--chain", string(pushchain.EthereumSepolia),
			"--address", userAddress)
		require.NoError(t, err)
		desc := chain.MustDescribe(pushchain.EthereumSepolia)
		want := account.Address(chain.FactoryAddress, desc.Implementation, pushchain.EthereumSepolia,
			common.HexToAddress(userAddress).Bytes())
		assert.Contains(t, out, want.Hex())
	})
	t.Run("happy_push_chain_identity", func(t *testing.T) {
		out, err := runCmd(t, "account", "--chain", string(pushchain.PushTestnetDonut), "--address", userAddress)
		require.NoError(t, err)
		assert.Contains(t, out, common.HexToAddress(userAddress).Hex())
	})
	t.Run("err_unknown_chain", func(t *testing.T) {
		_, err := runCmd(t, "account", "--chain", "eip155:5", "--address", userAddress)
		pushchaintest.RequireAPIError(t, err, pushchain.ClientError, pushchain.ErrUnknownChain)
	})
	t.Run("err_invalid_network_flag", func(t *testing.T) {
		_, err := runCmd(t, "account", "--network", "devnet", "--chain", string(pushchain.EthereumSepolia),
			"--address", userAddress)
		pushchaintest.RequireAPIError(t, err, pushchain.ClientError, pushchain.ErrInvalidConfig)
	})
	t.Run("err_missing_flag", func(t *testing.T) {
		_, err := runCmd(t, "account", "--chain", string(pushchain.EthereumSepolia))
		require.Error(t, err)
	})
}

func Test_HashCmd(t *testing.T) {
	executor := common.HexToAddress("0x48445e02796af0b076f96fc013536f1c879e282c")
	target := common.HexToAddress("0x00000000000000000000000000000000000C0C0C")

	out, err := runCmd(t, "hash", "--network", "localnet", "--executor", executor.Hex(), "--to", target.Hex(),
		"--value", "0.5", "--data", "0xdead", "--nonce", "3", "--typed-data")
	require.NoError(t, err)

	p := orchestrator.BuildPayload(pushchain.ExecuteParams{
		To:    target,
		Value: big.NewInt(5e17),
		Data:  []byte{0xde, 0xad},
	}, nil, big.NewInt(3))
	want := payload.ComputeExecutionHash(big.NewInt(9000), executor, p, payload.DefaultVersion)
	assert.Contains(t, out, want.Hex())
	assert.Contains(t, out, `"primaryType": "UniversalPayload"`)

	t.Run("err_executor", func(t *testing.T) {
		_, err := runCmd(t, "hash", "--executor", "0x12", "--to", target.Hex())
		pushchaintest.RequireAPIError(t, err, pushchain.ClientError, pushchain.ErrInvalidArgument)
	})
}

func Test_ExecuteCmd_NeedsEncoder(t *testing.T) {
	key := "0x" + strings.Repeat("11", 32)
	_, err := runCmd(t, "execute", "--network", "localnet", "--chain", string(pushchain.EthereumSepolia),
		"--key", key, "--to", userAddress)
	apiErr := pushchaintest.RequireAPIError(t, err, pushchain.ClientError, pushchain.ErrInvalidConfig)
	pushchaintest.AssertErrInfoInvalidConfig(t, apiErr.AddInfo(), "txEncoder", string(pushchain.EthereumSepolia))
}

func Test_VersionCmd(t *testing.T) {
	out, err := runCmd(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "0.1.0-unstable\n", out)
}

func Test_parseExecuteParams(t *testing.T) {
	parse := func(args ...string) (pushchain.ExecuteParams, error) {
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		defineExecuteParamFlags(fs)
		require.NoError(t, fs.Parse(args))
		return parseExecuteParams(fs)
	}

	t.Run("happy_defaults_nil", func(t *testing.T) {
		p, err := parse("--to", userAddress)
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress(userAddress), p.To)
		assert.Equal(t, 0, p.Value.Sign())
		assert.Nil(t, p.Data)
		assert.Nil(t, p.GasLimit)
		assert.Nil(t, p.Deadline)
	})
	t.Run("happy_all", func(t *testing.T) {
		p, err := parse("--to", userAddress, "--value", "1.25", "--data", "0x01", "--gas-limit", "21000",
			"--max-fee-per-gas", "7", "--max-priority-fee-per-gas", "1", "--deadline", "100")
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(125e16), p.Value)
		assert.Equal(t, []byte{1}, p.Data)
		assert.Equal(t, big.NewInt(21000), p.GasLimit)
		assert.Equal(t, big.NewInt(7), p.MaxFeePerGas)
		assert.Equal(t, big.NewInt(1), p.MaxPriorityFeePerGas)
		assert.Equal(t, big.NewInt(100), p.Deadline)
	})

	tests := []struct {
		name string
		args []string
		arg  pushchain.ArgumentName
	}{
		{"to", []string{"--to", "0x1"}, "to"},
		{"value", []string{"--to", userAddress, "--value", "-1"}, "value"},
		{"value_precision", []string{"--to", userAddress, "--value", "0.0000000000000000001"}, "value"},
		{"data", []string{"--to", userAddress, "--data", "xyz"}, "data"},
		{"gas_limit", []string{"--to", userAddress, "--gas-limit", "-5"}, "gasLimit"},
		{"deadline_overflow", []string{"--to", userAddress, "--deadline", "1" + strings.Repeat("0", 80)}, "deadline"},
	}
	for _, tt := range tests {
		t.Run("err_"+tt.name, func(t *testing.T) {
			_, err := parse(tt.args...)
			apiErr := pushchaintest.RequireAPIError(t, err, pushchain.ClientError, pushchain.ErrInvalidArgument)
			info, ok := apiErr.AddInfo().(pushchain.ErrInfoInvalidArgument)
			require.True(t, ok)
			assert.Equal(t, string(tt.arg), info.Name)
		})
	}
}
