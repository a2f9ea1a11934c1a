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

package currency

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/push-protocol/push-chain-sdk"
)

// Registry holds the native currency of each chain.
//
// It uses a slice to keep track of registered chains because iterating over
// map to retrieve the chains each time will result in different ordering.
type Registry struct {
	mtx        sync.RWMutex
	chains     []pushchain.Chain
	currencies map[pushchain.Chain]Currency
}

// NewRegistry initializes a currency registry.
func NewRegistry() *Registry {
	return &Registry{
		currencies: make(map[pushchain.Chain]Currency),
	}
}

// NewRegistryFromDescriptors returns a registry with the native currency of
// each of the given chains registered.
func NewRegistryFromDescriptors(descs ...pushchain.ChainDescriptor) *Registry {
	r := NewRegistry()
	for _, d := range descs {
		//nolint: errcheck	// duplicates are skipped.
		r.Register(d.Chain, d.NativeSymbol, d.NativeDecimals)
	}
	return r
}

// Chains returns the registered chains in order of registration.
func (r *Registry) Chains() []pushchain.Chain {
	r.mtx.RLock()
	chains := make([]pushchain.Chain, len(r.chains))
	copy(chains, r.chains)
	r.mtx.RUnlock()
	return chains
}

// Register registers the native currency of the chain and returns it.
//
// Returns an error if a currency is already registered for the chain.
func (r *Registry) Register(chain pushchain.Chain, symbol string, decimals uint8) (Currency, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.currencies[chain]; ok {
		return Currency{}, errors.Errorf("currency already registered for chain %s", chain)
	}
	c := New(symbol, decimals)
	r.currencies[chain] = c
	r.chains = append(r.chains, chain)
	return c, nil
}

// Currency returns the currency registered for the chain.
func (r *Registry) Currency(chain pushchain.Chain) (Currency, bool) {
	r.mtx.RLock()
	c, ok := r.currencies[chain]
	r.mtx.RUnlock()
	return c, ok
}
