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

package pushclient_test

import (
	"context"
	"math/big"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/cometbft/cometbft/libs/bytes"
	cometrpctypes "github.com/cometbft/cometbft/rpc/core/types"
	comettypes "github.com/cometbft/cometbft/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/blockchain/evm/evmtest"
	"github.com/push-protocol/push-chain-sdk/chain"
	"github.com/push-protocol/push-chain-sdk/pushchaintest"
	"github.com/push-protocol/push-chain-sdk/pushclient"
	"github.com/push-protocol/push-chain-sdk/rpcpool"
)

const relayer = "push1relayer"

// fakeComet is an in-memory CometBFT node. Txs become queryable after
// indexAfter lookups.
type fakeComet struct {
	mtx        sync.Mutex
	broadcast  []comettypes.Tx
	checkCode  uint32
	deliver    abci.ExecTxResult
	indexAfter int
	lookups    int
	byEVMHash  map[string]*cometrpctypes.ResultTx
	queries    []string
}

func (f *fakeComet) BroadcastTxSync(_ context.Context, tx comettypes.Tx) (*cometrpctypes.ResultBroadcastTx, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.broadcast = append(f.broadcast, tx)
	return &cometrpctypes.ResultBroadcastTx{
		Code:      f.checkCode,
		Codespace: codespace(f.checkCode),
		Log:       "check log",
		Hash:      tx.Hash(),
	}, nil
}

func (f *fakeComet) Tx(_ context.Context, hash []byte, _ bool) (*cometrpctypes.ResultTx, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.lookups++
	if f.lookups <= f.indexAfter {
		return nil, errors.Errorf("tx (%X) not found", hash)
	}
	return &cometrpctypes.ResultTx{Hash: hash, Height: 42, TxResult: f.deliver}, nil
}

func (f *fakeComet) TxSearch(_ context.Context, query string, _ bool, _, _ *int, _ string) (
	*cometrpctypes.ResultTxSearch, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.queries = append(f.queries, query)
	f.lookups++
	if f.lookups <= f.indexAfter {
		return &cometrpctypes.ResultTxSearch{}, nil
	}
	for h, tx := range f.byEVMHash {
		if strings.Contains(query, h) {
			return &cometrpctypes.ResultTxSearch{Txs: []*cometrpctypes.ResultTx{tx}, TotalCount: 1}, nil
		}
	}
	return &cometrpctypes.ResultTxSearch{}, nil
}

func codespace(code uint32) string {
	if code == 0 {
		return ""
	}
	return "ue"
}

type fakeEncoder struct {
	msgs []pushchain.Msg
	err  error
}

func (e *fakeEncoder) SignerAddress() string { return relayer }

func (e *fakeEncoder) EncodeTx(_ context.Context, msgs []pushchain.Msg, _ string) ([]byte, error) {
	e.msgs = msgs
	if e.err != nil {
		return nil, e.err
	}
	return []byte("tx with " + msgs[0].TypeURL()), nil
}

func newClient(t *testing.T, comet *fakeComet, encoder pushclient.TxEncoder) (*pushclient.Client, *evmtest.Setup) {
	rng := rand.New(rand.NewSource(evmtest.RandSeedForTestAccs))
	setup := evmtest.NewSetup(t, rng, 1, nil)
	info, err := chain.PushChain(pushchain.Localnet)
	require.NoError(t, err)
	pool, err := rpcpool.NewWithClients(string(info.Chain)+"/comet", []string{"fake"},
		[]pushclient.CometClient{comet}, 0)
	require.NoError(t, err)

	c := pushclient.NewWithClients(info, setup.Client, pool, encoder)
	pushclient.SetPolling(c, time.Millisecond, time.Second)
	return c, setup
}

func Test_Client_Messages(t *testing.T) {
	c, _ := newClient(t, &fakeComet{}, &fakeEncoder{})
	acc := pushchain.UniversalAccount{Chain: pushchain.EthereumSepolia, Address: "0x527F3692F5C53CfA83F7689885995606F93b6164"}
	owner := common.HexToAddress(acc.Address).Bytes()

	deploy := c.CreateDeployMessage(acc, owner, "0xlock")
	assert.Equal(t, pushclient.TypeURLDeployUEA, deploy.TypeURL())
	assert.Equal(t, pushclient.MsgDeployUEA{
		Signer: relayer,
		UniversalAccountID: pushclient.UniversalAccountID{
			Chain: "eip155:11155111",
			Owner: "0x527f3692f5c53cfa83f7689885995606f93b6164",
		},
		TxHash: "0xlock",
	}, deploy)

	mint := c.CreateMintMessage(acc, owner, "0xlock")
	assert.Equal(t, pushclient.TypeURLMintPC, mint.TypeURL())

	p := pushchain.UniversalPayload{
		To:                   common.HexToAddress("0x01"),
		Value:                uint256.NewInt(5),
		Data:                 []byte{0xab},
		GasLimit:             uint256.NewInt(1e7),
		MaxFeePerGas:         uint256.NewInt(1e10),
		MaxPriorityFeePerGas: uint256.NewInt(0),
		Nonce:                uint256.NewInt(1),
		Deadline:             uint256.NewInt(9999999999),
		SigType:              pushchain.SignedVerification,
	}
	exec := c.CreateExecuteMessage(acc, owner, p, []byte{1, 2})
	require.IsType(t, pushclient.MsgExecutePayload{}, exec)
	got := exec.(pushclient.MsgExecutePayload)
	assert.Equal(t, pushclient.TypeURLExecutePayload, got.TypeURL())
	assert.Equal(t, "0x0102", got.Signature)
	assert.Equal(t, pushclient.UniversalPayload{
		To:                   "0x0000000000000000000000000000000000000001",
		Value:                "5",
		Data:                 "0xab",
		GasLimit:             "10000000",
		MaxFeePerGas:         "10000000000",
		MaxPriorityFeePerGas: "0",
		Nonce:                "1",
		Deadline:             "9999999999",
		VType:                0,
	}, got.UniversalPayload)
}

func Test_Client_SignAndBroadcast(t *testing.T) {
	ctx := context.Background()
	msgs := []pushchain.Msg{pushclient.MsgMintPC{Signer: relayer}}

	t.Run("happy_after_indexing", func(t *testing.T) {
		comet := &fakeComet{indexAfter: 2, deliver: abci.ExecTxResult{GasWanted: 100, GasUsed: 80}}
		enc := &fakeEncoder{}
		c, _ := newClient(t, comet, enc)

		receipt, err := c.SignAndBroadcast(ctx, msgs)
		require.NoError(t, err)
		require.Len(t, comet.broadcast, 1)
		assert.Equal(t, msgs, enc.msgs)
		assert.Equal(t, bytes.HexBytes(comet.broadcast[0].Hash()).String(), receipt.TxHash)
		assert.Equal(t, int64(42), receipt.Height)
		assert.Equal(t, int64(80), receipt.GasUsed)
		assert.Equal(t, 3, comet.lookups)
	})

	t.Run("err_check_tx_rejected", func(t *testing.T) {
		comet := &fakeComet{checkCode: 5}
		c, _ := newClient(t, comet, &fakeEncoder{})
		_, err := c.SignAndBroadcast(ctx, msgs)
		apiErr := pushchaintest.RequireAPIError(t, err, pushchain.ChainError, pushchain.ErrSubmissionFailed)
		info, ok := apiErr.AddInfo().(pushchain.ErrInfoSubmissionFailed)
		require.True(t, ok)
		assert.Equal(t, uint32(5), info.Code)
		assert.Equal(t, "ue", info.Codespace)
		assert.Equal(t, "check log", info.Log)
		assert.Zero(t, comet.lookups, "rejected tx must not be waited for")
		assert.Len(t, comet.broadcast, 1, "rejected tx must not be retried")
	})

	t.Run("err_deliver_tx_failed", func(t *testing.T) {
		comet := &fakeComet{deliver: abci.ExecTxResult{Code: 7, Codespace: "evm", Log: "out of gas"}}
		c, _ := newClient(t, comet, &fakeEncoder{})
		receipt, err := c.SignAndBroadcast(ctx, msgs)
		pushchaintest.RequireAPIError(t, err, pushchain.ChainError, pushchain.ErrSubmissionFailed)
		require.NotNil(t, receipt)
		assert.Equal(t, uint32(7), receipt.Code)
	})

	t.Run("err_encoder", func(t *testing.T) {
		comet := &fakeComet{}
		c, _ := newClient(t, comet, &fakeEncoder{err: errors.New("no key")})
		_, err := c.SignAndBroadcast(ctx, msgs)
		require.Error(t, err)
		assert.Empty(t, comet.broadcast)
	})

	t.Run("err_no_encoder", func(t *testing.T) {
		c, _ := newClient(t, &fakeComet{}, nil)
		_, err := c.SignAndBroadcast(ctx, msgs)
		pushchaintest.RequireAPIError(t, err, pushchain.ClientError, pushchain.ErrInvalidConfig)
	})

	t.Run("err_never_indexed", func(t *testing.T) {
		comet := &fakeComet{indexAfter: 1 << 30}
		c, _ := newClient(t, comet, &fakeEncoder{})
		pushclient.SetPolling(c, time.Millisecond, 50*time.Millisecond)
		_, err := c.SignAndBroadcast(ctx, msgs)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func Test_Client_GetCosmosTx(t *testing.T) {
	evmHash := common.HexToHash("0xbeef")
	comet := &fakeComet{
		indexAfter: 1,
		byEVMHash: map[string]*cometrpctypes.ResultTx{
			evmHash.Hex(): {Hash: bytes.HexBytes{0xca, 0xfe}, Height: 9},
		},
	}
	c, _ := newClient(t, comet, &fakeEncoder{})

	receipt, err := c.GetCosmosTx(context.Background(), evmHash)
	require.NoError(t, err)
	assert.Equal(t, "CAFE", receipt.TxHash)
	assert.Equal(t, evmHash.Hex(), receipt.EVMTxHash)
	assert.Equal(t, int64(9), receipt.Height)
	assert.Equal(t, "ethereum_tx.ethereumTxHash='"+evmHash.Hex()+"'", comet.queries[0])
}

func Test_Client_EVMReads(t *testing.T) {
	c, setup := newClient(t, &fakeComet{}, &fakeEncoder{})
	ctx := context.Background()

	bal, err := c.GetBalance(ctx, setup.Signers[0].Address())
	require.NoError(t, err)
	assert.Equal(t, evmtest.InitialBalance, bal)

	gas, err := c.EstimateGas(ctx, setup.Signers[0].Address(), common.HexToAddress("0x1234567890"), big.NewInt(1), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(21000), gas)

	assert.Equal(t, pushchain.PushLocalnet, c.Info().Chain)
}

func Test_Client_SendTransaction(t *testing.T) {
	evmHashes := map[string]*cometrpctypes.ResultTx{}
	comet := &fakeComet{byEVMHash: evmHashes}
	c, setup := newClient(t, comet, &fakeEncoder{})
	ctx := context.Background()
	to := common.HexToAddress("0x1234567890")

	hash, err := c.SendTransaction(ctx, pushchain.SendTxParams{
		To:     to,
		Value:  big.NewInt(1000),
		Signer: setup.Signers[0],
	})
	require.NoError(t, err)
	setup.Commit(1)

	bal, err := c.GetBalance(ctx, to)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), bal)

	comet.mtx.Lock()
	evmHashes[hash.Hex()] = &cometrpctypes.ResultTx{Hash: bytes.HexBytes{1}, Height: 2}
	comet.mtx.Unlock()
	receipt, err := c.GetCosmosTx(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, hash.Hex(), receipt.EVMTxHash)
}
