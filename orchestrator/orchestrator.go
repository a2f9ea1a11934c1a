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

// Package orchestrator executes the intents of a user of any supported chain
// on Push Chain.
//
// An execution from an origin chain other than Push Chain derives the
// executor account of the user, locks fees on the origin chain when the
// executor account cannot pay for the execution, has the user sign the
// payload and submits it to Push Chain. An execution from Push Chain itself
// is sent as a plain EVM tx.
package orchestrator

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/account"
	"github.com/push-protocol/push-chain-sdk/blockchain/evm"
	"github.com/push-protocol/push-chain-sdk/blockchain/origin"
	"github.com/push-protocol/push-chain-sdk/blockchain/svm"
	"github.com/push-protocol/push-chain-sdk/chain"
	"github.com/push-protocol/push-chain-sdk/fee"
	"github.com/push-protocol/push-chain-sdk/log"
	"github.com/push-protocol/push-chain-sdk/metrics"
	"github.com/push-protocol/push-chain-sdk/payload"
	"github.com/push-protocol/push-chain-sdk/price"
	"github.com/push-protocol/push-chain-sdk/pushclient"
)

// Deps are the collaborators of an orchestrator. Adapter and Oracle are
// only required for signers on chains other than Push Chain. Metrics may be
// nil.
type Deps struct {
	Adapter     pushchain.ChainAdapter
	Destination pushchain.DestinationClient
	Oracle      pushchain.PriceOracle
	Metrics     *metrics.Metrics
}

// Orchestrator executes intents of one signer. It holds no state across
// executions and is safe for concurrent use.
type Orchestrator struct {
	log.Logger

	signer  pushchain.UniversalSigner
	origin  pushchain.ChainDescriptor
	push    pushchain.PushChainInfo
	adapter pushchain.ChainAdapter
	dest    pushchain.DestinationClient
	deriver *account.Deriver
	locker  *fee.Locker
	gas     GasEstimator
	metrics *metrics.Metrics

	printTraces bool
}

// New returns an orchestrator for the signer using the given collaborators.
// It does not access the network.
func New(cfg pushchain.Config, signer pushchain.UniversalSigner, deps Deps) (*Orchestrator, error) {
	if signer == nil {
		return nil, pushchain.NewAPIErrInvalidArgument(errors.New("nil signer"), "signer", "", "non nil")
	}
	push, err := chain.PushChain(cfg.Network)
	if err != nil {
		return nil, err
	}
	originDesc, err := chain.Describe(signer.Account().Chain)
	if err != nil {
		return nil, err
	}
	if deps.Destination == nil {
		return nil, pushchain.NewAPIErrInvalidConfig(errors.New("no destination client"), "destination",
			string(push.Chain))
	}
	gas, err := NewGasEstimator(cfg.GasEstimation, cfg.DefaultGasLimit)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		Logger: log.NewDerivedLoggerWithField(log.NewLoggerWithField(log.ComponentKey, "orchestrator"),
			log.ChainKey, string(originDesc.Chain)),
		signer:      signer,
		origin:      originDesc,
		push:        push,
		dest:        deps.Destination,
		deriver:     account.NewDeriver(push, deps.Destination),
		gas:         gas,
		metrics:     deps.Metrics,
		printTraces: cfg.PrintTraces,
	}
	if chain.IsPushChain(originDesc.Chain) {
		return o, nil
	}

	if deps.Adapter == nil || deps.Oracle == nil {
		return nil, pushchain.NewAPIErrInvalidConfig(errors.New("no chain adapter or price oracle"), "origin",
			string(originDesc.Chain))
	}
	if deps.Adapter.VM() != originDesc.VM {
		return nil, pushchain.NewAPIErrUnsupportedVM(originDesc.Chain, deps.Adapter.VM())
	}
	o.adapter = deps.Adapter
	o.locker = fee.NewLocker(originDesc, push, deps.Adapter, deps.Oracle, deps.Metrics)
	o.locker.SetLogger(log.NewDerivedLoggerWithField(o.Logger, log.ComponentKey, "fee"))
	return o, nil
}

// Dial connects to the endpoints of Push Chain and of the origin chain of the
// signer, as configured, and returns an orchestrator for the signer. encoder
// signs the cosmos txs submitted to Push Chain and may only be nil for
// signers on Push Chain. m may be nil.
func Dial(cfg pushchain.Config, signer pushchain.UniversalSigner, encoder pushclient.TxEncoder,
	m *metrics.Metrics) (*Orchestrator, error) {
	if signer == nil {
		return nil, pushchain.NewAPIErrInvalidArgument(errors.New("nil signer"), "signer", "", "non nil")
	}
	if encoder == nil && !chain.IsPushChain(signer.Account().Chain) {
		return nil, pushchain.NewAPIErrInvalidConfig(errors.New("executions from other chains need a tx encoder"),
			"txEncoder", string(signer.Account().Chain))
	}
	push, err := chain.PushChain(cfg.Network)
	if err != nil {
		return nil, err
	}
	pushURLs, err := chain.RPCURLs(push.Chain, cfg.RPCURLs)
	if err != nil {
		return nil, err
	}
	dest, err := pushclient.New(push, pushURLs, push.TendermintRPC, encoder, pushclient.Options{
		ConnTimeout: cfg.ConnTimeout,
		RetryDelay:  cfg.RPCRetryDelay,
	})
	if err != nil {
		return nil, errors.WithMessage(err, "connecting to push chain")
	}
	deps := Deps{Destination: dest, Metrics: m}

	originDesc, err := chain.Describe(signer.Account().Chain)
	if err != nil {
		return nil, err
	}
	if !chain.IsPushChain(originDesc.Chain) {
		opts := origin.Options{ConnTimeout: cfg.ConnTimeout, RetryDelay: cfg.RPCRetryDelay}
		urls, err := chain.RPCURLs(originDesc.Chain, cfg.RPCURLs)
		if err != nil {
			return nil, err
		}
		if deps.Adapter, err = origin.NewAdapter(originDesc, urls, opts); err != nil {
			return nil, errors.WithMessage(err, "connecting to origin chain")
		}
		if deps.Oracle, err = newOracle(cfg, originDesc, deps.Adapter, opts); err != nil {
			return nil, err
		}
	}
	return New(cfg, signer, deps)
}

// newOracle returns an oracle for the price feed of the origin chain,
// reusing the connection of the adapter when the feed is published on the
// origin chain.
func newOracle(cfg pushchain.Config, desc pushchain.ChainDescriptor, adapter pushchain.ChainAdapter,
	opts origin.Options) (*price.Oracle, error) {
	oracle := price.NewOracle(cfg.PriceCacheTTL)
	if cfg.MaxPriceAge > 0 {
		oracle.SetMaxPriceAge(cfg.MaxPriceAge)
	}
	feed := desc.PriceFeed
	if feed == nil {
		return oracle, nil
	}

	if feed.Chain == desc.Chain {
		switch a := adapter.(type) {
		case *evm.Adapter:
			oracle.AddChainlinkReader(feed.Chain, a.Client())
			return oracle, nil
		case *svm.Adapter:
			oracle.AddPythReader(feed.Chain, a.Client())
			return oracle, nil
		}
	}

	urls, err := chain.RPCURLs(feed.Chain, cfg.RPCURLs)
	if err != nil {
		return nil, err
	}
	switch feed.Kind {
	case pushchain.ChainlinkFeed:
		client, err := evm.NewClient(string(feed.Chain), urls, opts.ConnTimeout, opts.RetryDelay)
		if err != nil {
			return nil, err
		}
		oracle.AddChainlinkReader(feed.Chain, client)
	case pushchain.PythFeed:
		client, err := svm.NewClient(string(feed.Chain), urls, opts.RetryDelay)
		if err != nil {
			return nil, err
		}
		oracle.AddPythReader(feed.Chain, client)
	}
	return oracle, nil
}

// Origin returns the account of the signer.
func (o *Orchestrator) Origin() pushchain.UniversalAccount {
	return o.signer.Account()
}

// ExecutorAccount returns the executor account of the signer on Push Chain
// as reported by the factory, and whether it is deployed.
func (o *Orchestrator) ExecutorAccount(ctx context.Context) (pushchain.ExecutorAccount, error) {
	return o.deriver.Onchain(ctx, o.signer.Account())
}

// ExecutorAddressOffchain computes the address of the executor account of
// the signer without network access.
func (o *Orchestrator) ExecutorAddressOffchain() (common.Address, error) {
	return o.deriver.Offchain(o.signer.Account())
}

// ComputeExecutionHash returns the digest the signer signs to authorize the
// payload on the executor account.
func (o *Orchestrator) ComputeExecutionHash(executor common.Address, p pushchain.UniversalPayload) common.Hash {
	return payload.ComputeExecutionHash(o.push.EVMChainID, executor, p, payload.DefaultVersion)
}

// validateNetwork rejects executions from a mainnet chain on a test
// deployment of Push Chain, and executions from another Push Chain
// deployment.
func (o *Orchestrator) validateNetwork() error {
	mismatch := o.origin.Mainnet && !o.push.Mainnet
	if chain.IsPushChain(o.origin.Chain) && o.origin.Chain != o.push.Chain {
		mismatch = true
	}
	if mismatch {
		return pushchain.NewAPIErrNetworkMismatch(o.origin.Chain, o.push.Chain)
	}
	return nil
}

func (o *Orchestrator) isFastPath() bool {
	return o.origin.Chain == o.push.Chain
}
