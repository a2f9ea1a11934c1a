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

// Package origin constructs the chain adapter matching the VM of an origin
// chain.
package origin

import (
	"time"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/blockchain/evm"
	"github.com/push-protocol/push-chain-sdk/blockchain/svm"
)

// Options for the rpc endpoints of an adapter.
type Options struct {
	ConnTimeout time.Duration
	RetryDelay  time.Duration
}

// NewAdapter returns the adapter for the chain, connected to the given
// endpoints.
func NewAdapter(desc pushchain.ChainDescriptor, urls []string, opts Options) (pushchain.ChainAdapter, error) {
	switch desc.VM {
	case pushchain.EVM:
		client, err := evm.NewClient(string(desc.Chain), urls, opts.ConnTimeout, opts.RetryDelay)
		if err != nil {
			return nil, err
		}
		return evm.NewAdapter(desc, client), nil
	case pushchain.SVM:
		client, err := svm.NewClient(string(desc.Chain), urls, opts.RetryDelay)
		if err != nil {
			return nil, err
		}
		return svm.NewAdapter(desc, client), nil
	}
	return nil, pushchain.NewAPIErrUnsupportedVM(desc.Chain, desc.VM)
}

// NormalizeOwnerKey returns the owner key bytes of an address on a chain of
// the given VM.
func NormalizeOwnerKey(vm pushchain.VM, chain pushchain.Chain, address string) ([]byte, error) {
	switch vm {
	case pushchain.EVM:
		return evm.NormalizeOwnerKey(address)
	case pushchain.SVM:
		return svm.NormalizeOwnerKey(address)
	}
	return nil, pushchain.NewAPIErrUnsupportedVM(chain, vm)
}
