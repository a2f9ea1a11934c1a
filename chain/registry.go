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

package chain

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/currency"
)

// Decimals and conversion ratio of the Push Chain native token (PC).
// 1 PC = 0.1 USD.
const (
	PushDecimals uint8 = 18
	USDDecimals  uint8 = 8

	pushDenom  = "upc"
	pushPrefix = "push"
)

var (
	// FactoryAddress is the address of the UEA factory on Push Chain
	// testnet and localnet.
	FactoryAddress = common.HexToAddress("0x00000000000000000000000000000000000000eA")

	// SolanaPriceUpdateAccount is the pyth SOL/USD price account passed to the
	// fee locker program.
	SolanaPriceUpdateAccount = "7UVimffxr9ow1uXYxsr4LHAcV58mLzhmwaeKvJ1pjLiE"

	pushToUSDNumerator   = big.NewInt(1e7)
	pushToUSDDenominator = big.NewInt(1e18)
)

const (
	evmConfirmations       = 3
	evmConfirmationTimeout = 3 * time.Minute
	svmConfirmations       = 3
	svmConfirmationTimeout = 90 * time.Second
)

var descriptors = map[pushchain.Chain]pushchain.ChainDescriptor{
	pushchain.PushMainnet: {
		Chain:          pushchain.PushMainnet,
		VM:             pushchain.EVM,
		ChainID:        "9",
		Mainnet:        true,
		NativeSymbol:   "PC",
		NativeDecimals: PushDecimals,
		Confirmations:  1,
	},
	pushchain.PushTestnetDonut: {
		Chain:   pushchain.PushTestnetDonut,
		VM:      pushchain.EVM,
		ChainID: "42101",
		DefaultRPC: []string{
			"https://evm.rpc-testnet-donut-node1.push.org/",
			"https://evm.rpc-testnet-donut-node2.push.org/",
		},
		NativeSymbol:        "PC",
		NativeDecimals:      PushDecimals,
		Confirmations:       1,
		ConfirmationTimeout: evmConfirmationTimeout,
	},
	pushchain.PushLocalnet: {
		Chain:               pushchain.PushLocalnet,
		VM:                  pushchain.EVM,
		ChainID:             "9000",
		DefaultRPC:          []string{"http://localhost:8545"},
		NativeSymbol:        "PC",
		NativeDecimals:      PushDecimals,
		Confirmations:       1,
		ConfirmationTimeout: evmConfirmationTimeout,
	},
	pushchain.EthereumMainnet: {
		Chain:               pushchain.EthereumMainnet,
		VM:                  pushchain.EVM,
		ChainID:             "1",
		Mainnet:             true,
		DefaultRPC:          []string{"https://eth.merkle.io"},
		NativeSymbol:        "ETH",
		NativeDecimals:      18,
		Confirmations:       evmConfirmations,
		ConfirmationTimeout: evmConfirmationTimeout,
		PriceFeed: &pushchain.PriceFeed{
			Kind:    pushchain.ChainlinkFeed,
			Chain:   pushchain.EthereumMainnet,
			Address: "0x5f4eC3Df9cbd43714FE2740f5E3616155c5b8419",
		},
	},
	pushchain.EthereumSepolia: {
		Chain:               pushchain.EthereumSepolia,
		VM:                  pushchain.EVM,
		ChainID:             "11155111",
		DefaultRPC:          []string{"https://sepolia.drpc.org"},
		FeeLocker:           "0x28E0F09bE2321c1420Dc60Ee146aACbD68B335Fe",
		Implementation:      common.HexToAddress("0x523294411f0CBFE40Ff8B7b415ef0e92f01ac38f"),
		NativeSymbol:        "ETH",
		NativeDecimals:      18,
		Confirmations:       evmConfirmations,
		ConfirmationTimeout: evmConfirmationTimeout,
		PriceFeed: &pushchain.PriceFeed{
			Kind:    pushchain.ChainlinkFeed,
			Chain:   pushchain.EthereumSepolia,
			Address: "0x694AA1769357215DE4FAC081bf1f309aDC325306",
		},
	},
	pushchain.SolanaMainnet: {
		Chain:               pushchain.SolanaMainnet,
		VM:                  pushchain.SVM,
		ChainID:             "5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp",
		Mainnet:             true,
		DefaultRPC:          []string{"https://api.mainnet-beta.solana.com"},
		NativeSymbol:        "SOL",
		NativeDecimals:      9,
		Confirmations:       svmConfirmations,
		ConfirmationTimeout: svmConfirmationTimeout,
		PriceFeed: &pushchain.PriceFeed{
			Kind:    pushchain.PythFeed,
			Chain:   pushchain.SolanaMainnet,
			Address: SolanaPriceUpdateAccount,
		},
	},
	pushchain.SolanaTestnet: {
		Chain:               pushchain.SolanaTestnet,
		VM:                  pushchain.SVM,
		ChainID:             "4uhcVJyU9pJkvQyS88uRDiswHXSCkY3z",
		DefaultRPC:          []string{"https://api.testnet.solana.com"},
		NativeSymbol:        "SOL",
		NativeDecimals:      9,
		Confirmations:       svmConfirmations,
		ConfirmationTimeout: svmConfirmationTimeout,
	},
	pushchain.SolanaDevnet: {
		Chain:               pushchain.SolanaDevnet,
		VM:                  pushchain.SVM,
		ChainID:             "EtWTRABZaYq6iMfeYKouRu166VU2xqa1",
		DefaultRPC:          []string{"https://api.devnet.solana.com"},
		FeeLocker:           "3zrWaMknHTRQpZSxY4BvQxw9TStSXiHcmcp3NMPTFkke",
		Implementation:      common.HexToAddress("0xCA0C5E6F002A389E1580F0DB7cd06e4549B5F9d3"),
		NativeSymbol:        "SOL",
		NativeDecimals:      9,
		Confirmations:       svmConfirmations,
		ConfirmationTimeout: svmConfirmationTimeout,
		PriceFeed: &pushchain.PriceFeed{
			Kind:    pushchain.PythFeed,
			Chain:   pushchain.SolanaDevnet,
			Address: SolanaPriceUpdateAccount,
		},
	},
}

// pushChains holds the Push Chain specific properties, in addition to the
// descriptors above.
var pushChains = map[pushchain.Chain]pushchain.PushChainInfo{
	pushchain.PushMainnet: {
		EVMChainID: big.NewInt(9),
		Denom:      pushDenom,
		Prefix:     pushPrefix,
	},
	pushchain.PushTestnetDonut: {
		EVMChainID:    big.NewInt(42101),
		Denom:         pushDenom,
		Prefix:        pushPrefix,
		TendermintRPC: []string{"https://rpc-testnet-donut-node1.push.org/"},
		Factory:       FactoryAddress,
	},
	pushchain.PushLocalnet: {
		EVMChainID:    big.NewInt(9000),
		Denom:         pushDenom,
		Prefix:        pushPrefix,
		TendermintRPC: []string{"http://localhost:26657"},
		Factory:       FactoryAddress,
	},
}

// order in which Chains lists the chains.
var order = []pushchain.Chain{
	pushchain.PushMainnet,
	pushchain.PushTestnetDonut,
	pushchain.PushLocalnet,
	pushchain.EthereumMainnet,
	pushchain.EthereumSepolia,
	pushchain.SolanaMainnet,
	pushchain.SolanaTestnet,
	pushchain.SolanaDevnet,
}

var (
	currenciesOnce sync.Once
	currencies     *currency.Registry
)

// Currencies returns the registry of the native currencies of all supported
// chains, in the order of Chains.
func Currencies() *currency.Registry {
	currenciesOnce.Do(func() {
		descs := make([]pushchain.ChainDescriptor, 0, len(order))
		for _, c := range order {
			descs = append(descs, descriptors[c])
		}
		currencies = currency.NewRegistryFromDescriptors(descs...)
	})
	return currencies
}

// NativeCurrency returns the native currency of the chain. Chains that are
// not supported get one built from the descriptor.
func NativeCurrency(d pushchain.ChainDescriptor) currency.Currency {
	if c, ok := Currencies().Currency(d.Chain); ok {
		return c
	}
	return currency.New(d.NativeSymbol, d.NativeDecimals)
}

// Describe returns the descriptor of the given chain.
func Describe(c pushchain.Chain) (pushchain.ChainDescriptor, error) {
	d, ok := descriptors[c]
	if !ok {
		return pushchain.ChainDescriptor{}, pushchain.NewAPIErrUnknownChain(c)
	}
	return copyDescriptor(d), nil
}

// MustDescribe is like Describe, but panics for unknown chains. Use it only
// with the chain constants defined in the root package.
func MustDescribe(c pushchain.Chain) pushchain.ChainDescriptor {
	d, err := Describe(c)
	if err != nil {
		panic(err)
	}
	return d
}

// IsPushChain returns true if the chain is a Push Chain deployment.
func IsPushChain(c pushchain.Chain) bool {
	_, ok := pushChains[c]
	return ok
}

// Chains returns all supported chains.
func Chains() []pushchain.Chain {
	chains := make([]pushchain.Chain, len(order))
	copy(chains, order)
	return chains
}

// PushChainFor returns the Push Chain deployment used for the given network.
func PushChainFor(n pushchain.Network) (pushchain.Chain, error) {
	switch n {
	case pushchain.Mainnet:
		return pushchain.PushMainnet, nil
	case pushchain.TestnetDonut, pushchain.Testnet:
		return pushchain.PushTestnetDonut, nil
	case pushchain.Localnet:
		return pushchain.PushLocalnet, nil
	}
	return "", pushchain.NewAPIErrInvalidConfig(errors.New("unknown network"), "network", string(n))
}

// PushChain returns the Push Chain deployment used for the given network.
func PushChain(n pushchain.Network) (pushchain.PushChainInfo, error) {
	c, err := PushChainFor(n)
	if err != nil {
		return pushchain.PushChainInfo{}, err
	}
	return PushInfo(c)
}

// PushInfo returns the properties of the given Push Chain deployment.
func PushInfo(c pushchain.Chain) (pushchain.PushChainInfo, error) {
	info, ok := pushChains[c]
	if !ok {
		return pushchain.PushChainInfo{}, pushchain.NewAPIErrUnknownChain(c)
	}
	info.ChainDescriptor = copyDescriptor(descriptors[c])
	info.EVMChainID = new(big.Int).Set(info.EVMChainID)
	info.TendermintRPC = copyStrings(info.TendermintRPC)
	info.PushDecimals = PushDecimals
	info.USDDecimals = USDDecimals
	info.PushToUSDNumerator = new(big.Int).Set(pushToUSDNumerator)
	info.PushToUSDDenominator = new(big.Int).Set(pushToUSDDenominator)
	return info, nil
}

// RPCURLs returns the endpoints to use for the given chain: the override if
// one is configured, else the default endpoints.
func RPCURLs(c pushchain.Chain, overrides map[pushchain.Chain][]string) ([]string, error) {
	d, err := Describe(c)
	if err != nil {
		return nil, err
	}
	if urls := overrides[c]; len(urls) > 0 {
		return copyStrings(urls), nil
	}
	if len(d.DefaultRPC) == 0 {
		return nil, pushchain.NewAPIErrInvalidConfig(errors.New("no default rpc endpoints"),
			"rpcURLs", string(c))
	}
	return d.DefaultRPC, nil
}

func copyDescriptor(d pushchain.ChainDescriptor) pushchain.ChainDescriptor {
	d.DefaultRPC = copyStrings(d.DefaultRPC)
	if d.PriceFeed != nil {
		feed := *d.PriceFeed
		d.PriceFeed = &feed
	}
	return d
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}
