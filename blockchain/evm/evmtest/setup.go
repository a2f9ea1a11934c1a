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

// Package evmtest provides a simulated EVM chain and stub contracts for
// tests.
package evmtest

import (
	"math/big"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/stretchr/testify/require"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/blockchain/evm"
	"github.com/push-protocol/push-chain-sdk/rpcpool"
	"github.com/push-protocol/push-chain-sdk/signer"
)

// Parameters of the simulated chain.
const (
	RandSeedForTestAccs = 1729
	ChainID             = 1337
	Chain               = pushchain.Chain("eip155:1337")
	PollInterval        = 10 * time.Millisecond
)

// InitialBalance of each test account, 10 ETH.
var InitialBalance = new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18))

// Setup is a simulated chain with funded accounts and a client connected to
// it.
type Setup struct {
	Backend *simulated.Backend
	Client  *evm.Client
	Signers []*signer.EVMSigner
}

// NewSetup starts a simulated chain with numAccs funded accounts and the
// given contract code deployed at the given addresses.
func NewSetup(t *testing.T, rng *rand.Rand, numAccs int, contracts map[common.Address][]byte) *Setup {
	t.Helper()
	alloc := types.GenesisAlloc{}
	signers := make([]*signer.EVMSigner, numAccs)
	for i := range signers {
		signers[i] = NewRandomSigner(t, rng)
		alloc[signers[i].Address()] = types.Account{Balance: new(big.Int).Set(InitialBalance)}
	}
	for addr, code := range contracts {
		alloc[addr] = types.Account{Code: code, Balance: new(big.Int)}
	}

	backend := simulated.NewBackend(alloc)
	t.Cleanup(func() {
		if err := backend.Close(); err != nil {
			t.Log("error in cleanup - ", err)
		}
	})

	pool, err := rpcpool.NewWithClients(string(Chain), []string{"simulated"},
		[]evm.Backend{backend.Client()}, 0)
	require.NoError(t, err)
	client := evm.NewClientFromPool(pool)
	client.SetPollInterval(PollInterval)

	return &Setup{Backend: backend, Client: client, Signers: signers}
}

// Commit mines n blocks.
func (s *Setup) Commit(n int) {
	for i := 0; i < n; i++ {
		s.Backend.Commit()
	}
}

// NewRandomSigner returns a signer for a key generated from rng.
func NewRandomSigner(t *testing.T, rng *rand.Rand) *signer.EVMSigner {
	t.Helper()
	seed := make([]byte, 32)
	rng.Read(seed)
	seed[0] &= 0x7f // Keep the key below the curve order.
	key, err := crypto.ToECDSA(seed)
	require.NoError(t, err)
	s, err := signer.NewEVMSigner(key, Chain)
	require.NoError(t, err)
	return s
}

// NewRandomAddress returns an address generated from rng.
func NewRandomAddress(rng *rand.Rand) common.Address {
	var addr common.Address
	rng.Read(addr[:])
	return addr
}

// Selector returns the 4 byte selector of the method signature, for example
// "decimals()".
func Selector(sig string) [4]byte {
	var sel [4]byte
	copy(sel[:], crypto.Keccak256([]byte(sig)))
	return sel
}

// RevertCode is runtime code that reverts every call.
var RevertCode = []byte{0x60, 0x00, 0x80, 0xfd}

// StubCode returns runtime code that answers calls to each selector with the
// given ABI encoded return data and reverts on any other call. It does not
// check the call value, so stubbed methods behave as payable.
func StubCode(returns map[[4]byte][]byte) []byte {
	sels := make([][4]byte, 0, len(returns))
	for sel := range returns {
		sels = append(sels, sel)
	}
	sort.Slice(sels, func(i, j int) bool { return string(sels[i][:]) < string(sels[j][:]) })

	// PUSH1 0 CALLDATALOAD PUSH1 0xe0 SHR
	head := []byte{0x60, 0x00, 0x35, 0x60, 0xe0, 0x1c}
	const entryLen = 11
	bodyStart := len(head) + entryLen*len(sels) + len(RevertCode)

	var dispatch, bodies []byte
	for _, sel := range sels {
		dest := bodyStart + len(bodies)
		// DUP1 PUSH4 sel EQ PUSH2 dest JUMPI
		dispatch = append(dispatch, 0x80, 0x63, sel[0], sel[1], sel[2], sel[3], 0x14,
			0x61, byte(dest>>8), byte(dest), 0x57)
		bodies = append(bodies, returnBody(returns[sel])...)
	}

	code := append([]byte{}, head...)
	code = append(code, dispatch...)
	code = append(code, RevertCode...)
	return append(code, bodies...)
}

func returnBody(data []byte) []byte {
	body := []byte{0x5b} // JUMPDEST
	padded := common.RightPadBytes(data, (len(data)+31)/32*32)
	for off := 0; off < len(padded); off += 32 {
		// PUSH32 word PUSH2 off MSTORE
		body = append(body, 0x7f)
		body = append(body, padded[off:off+32]...)
		body = append(body, 0x61, byte(off>>8), byte(off), 0x52)
	}
	n := len(data)
	// PUSH2 n PUSH1 0 RETURN
	return append(body, 0x61, byte(n>>8), byte(n), 0x60, 0x00, 0xf3)
}
