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

package evm_test

import (
	"context"
	"math/big"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/blockchain"
	"github.com/push-protocol/push-chain-sdk/blockchain/evm"
	"github.com/push-protocol/push-chain-sdk/blockchain/evm/evmtest"
	"github.com/push-protocol/push-chain-sdk/pushchaintest"
	"github.com/push-protocol/push-chain-sdk/rpcpool"
)

var (
	lockerAddr   = common.HexToAddress("0x00000000000000000000000000000000000010cc")
	revertAddr   = common.HexToAddress("0x00000000000000000000000000000000000010dd")
	accountAddr  = common.HexToAddress("0x00000000000000000000000000000000000010ee")
	nonceABI, _  = abi.JSON(strings.NewReader(`[{"inputs":[],"name":"nonce","outputs":[{"type":"uint256"}],"stateMutability":"view","type":"function"}]`))
	wantNonce    = big.NewInt(7)
	lockerReturn = map[[4]byte][]byte{evmtest.Selector("addFunds(bytes32)"): nil}
)

func newSetup(t *testing.T) *evmtest.Setup {
	rng := rand.New(rand.NewSource(evmtest.RandSeedForTestAccs))
	return evmtest.NewSetup(t, rng, 2, map[common.Address][]byte{
		lockerAddr:  evmtest.StubCode(lockerReturn),
		revertAddr:  evmtest.RevertCode,
		accountAddr: evmtest.StubCode(map[[4]byte][]byte{evmtest.Selector("nonce()"): math.U256Bytes(wantNonce)}),
	})
}

func descriptor(locker common.Address) pushchain.ChainDescriptor {
	d := pushchain.ChainDescriptor{
		Chain:         evmtest.Chain,
		VM:            pushchain.EVM,
		ChainID:       "1337",
		Confirmations: 3,
	}
	if locker != (common.Address{}) {
		d.FeeLocker = locker.Hex()
	}
	return d
}

type messageOnlySigner struct {
	pushchain.UniversalSigner
}

func Test_NormalizeOwnerKey(t *testing.T) {
	t.Run("happy", func(t *testing.T) {
		key, err := evm.NormalizeOwnerKey("0x527F3692F5C53CfA83F7689885995606F93b6164")
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress("0x527f3692f5c53cfa83f7689885995606f93b6164").Bytes(), key)
	})
	t.Run("happy_without_prefix", func(t *testing.T) {
		key, err := evm.NormalizeOwnerKey("527F3692F5C53CfA83F7689885995606F93b6164")
		require.NoError(t, err)
		assert.Len(t, key, common.AddressLength)
	})
	for _, addr := range []string{"", "0x1234", "8ZJ6Tq4Jb4nPNbKLMdMJjQ6Hx1E2B4D8sPjYSgiFCq1a"} {
		_, err := evm.NormalizeOwnerKey(addr)
		pushchaintest.RequireAPIError(t, err, pushchain.ClientError, pushchain.ErrInvalidArgument)
	}
}

func Test_Client_Reads(t *testing.T) {
	setup := newSetup(t)
	ctx := context.Background()

	t.Run("balance", func(t *testing.T) {
		bal, err := setup.Client.GetBalance(ctx, setup.Signers[0].Address())
		require.NoError(t, err)
		assert.Equal(t, evmtest.InitialBalance, bal)
	})
	t.Run("code", func(t *testing.T) {
		code, err := setup.Client.GetCode(ctx, revertAddr)
		require.NoError(t, err)
		assert.Equal(t, evmtest.RevertCode, code)

		code, err = setup.Client.GetCode(ctx, setup.Signers[0].Address())
		require.NoError(t, err)
		assert.Empty(t, code)
	})
	t.Run("gas_price", func(t *testing.T) {
		price, err := setup.Client.GetGasPrice(ctx)
		require.NoError(t, err)
		assert.Positive(t, price.Sign())
	})
	t.Run("read_contract", func(t *testing.T) {
		out, err := setup.Client.ReadContract(ctx, accountAddr, nonceABI, "nonce")
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, wantNonce, out[0])
	})
	t.Run("read_contract_reverts", func(t *testing.T) {
		_, err := setup.Client.ReadContract(ctx, revertAddr, nonceABI, "nonce")
		require.Error(t, err)
		_, isAPIErr := pushchain.AsAPIError(err)
		assert.False(t, isAPIErr, "revert must not be reported as unavailable endpoint")
	})
	t.Run("read_contract_no_code", func(t *testing.T) {
		_, err := setup.Client.ReadContract(ctx, evmtest.NewRandomAddress(rand.New(rand.NewSource(1))),
			nonceABI, "nonce")
		require.Error(t, err)
		var invalid blockchain.InvalidContractError
		assert.ErrorAs(t, err, &invalid)
	})
}

func Test_Adapter_LockFee(t *testing.T) {
	ctx := context.Background()
	execHash := crypto.Keccak256Hash([]byte("payload"))
	amount := big.NewInt(1e15)

	t.Run("happy", func(t *testing.T) {
		setup := newSetup(t)
		adapter := evm.NewAdapter(descriptor(lockerAddr), setup.Client)
		req := pushchain.LockFeeRequest{Signer: setup.Signers[0], Amount: amount, ExecutionHash: execHash}

		txRef, err := adapter.LockFee(ctx, req)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(txRef, "0x"))
		assert.Len(t, txRef, 66)

		setup.Commit(3)
		require.NoError(t, adapter.WaitForConfirmation(ctx, txRef, 3, 5*time.Second))
		require.NoError(t, adapter.VerifyLock(ctx, txRef))

		bal, err := setup.Client.GetBalance(ctx, lockerAddr)
		require.NoError(t, err)
		assert.Equal(t, amount, bal)
	})

	t.Run("timeout_when_not_mined", func(t *testing.T) {
		setup := newSetup(t)
		adapter := evm.NewAdapter(descriptor(lockerAddr), setup.Client)
		req := pushchain.LockFeeRequest{Signer: setup.Signers[0], Amount: amount, ExecutionHash: execHash}

		txRef, err := adapter.LockFee(ctx, req)
		require.NoError(t, err)
		err = adapter.WaitForConfirmation(ctx, txRef, 1, 100*time.Millisecond)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("timeout_when_not_enough_confirmations", func(t *testing.T) {
		setup := newSetup(t)
		adapter := evm.NewAdapter(descriptor(lockerAddr), setup.Client)
		req := pushchain.LockFeeRequest{Signer: setup.Signers[0], Amount: amount, ExecutionHash: execHash}

		txRef, err := adapter.LockFee(ctx, req)
		require.NoError(t, err)
		setup.Commit(1)
		err = adapter.WaitForConfirmation(ctx, txRef, 3, 100*time.Millisecond)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("timeout_when_endpoint_lags", func(t *testing.T) {
		setup := newSetup(t)
		adapter := evm.NewAdapter(descriptor(lockerAddr), setup.Client)
		req := pushchain.LockFeeRequest{Signer: setup.Signers[0], Amount: amount, ExecutionHash: execHash}

		txRef, err := adapter.LockFee(ctx, req)
		require.NoError(t, err)
		setup.Commit(3)

		pool, err := rpcpool.NewWithClients(string(evmtest.Chain), []string{"lagging"},
			[]evm.Backend{laggingBackend{setup.Backend.Client()}}, 0)
		require.NoError(t, err)
		lagging := evm.NewClientFromPool(pool)
		lagging.SetPollInterval(evmtest.PollInterval)
		err = evm.NewAdapter(descriptor(lockerAddr), lagging).WaitForConfirmation(ctx, txRef, 1, 100*time.Millisecond)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("err_locker_reverts", func(t *testing.T) {
		setup := newSetup(t)
		adapter := evm.NewAdapter(descriptor(revertAddr), setup.Client)
		req := pushchain.LockFeeRequest{Signer: setup.Signers[0], Amount: amount, ExecutionHash: execHash}
		_, err := adapter.LockFee(ctx, req)
		assert.Error(t, err)
	})

	t.Run("err_no_locker", func(t *testing.T) {
		setup := newSetup(t)
		adapter := evm.NewAdapter(descriptor(common.Address{}), setup.Client)
		req := pushchain.LockFeeRequest{Signer: setup.Signers[0], Amount: amount, ExecutionHash: execHash}
		_, err := adapter.LockFee(ctx, req)
		apiErr := pushchaintest.RequireAPIError(t, err, pushchain.ClientError, pushchain.ErrFeeLockingUnsupported)
		pushchaintest.AssertErrInfoFeeLockingUnsupported(t, apiErr.AddInfo(), evmtest.Chain)
	})

	t.Run("err_signer_cannot_sign_tx", func(t *testing.T) {
		setup := newSetup(t)
		adapter := evm.NewAdapter(descriptor(lockerAddr), setup.Client)
		req := pushchain.LockFeeRequest{
			Signer:        messageOnlySigner{setup.Signers[0]},
			Amount:        amount,
			ExecutionHash: execHash,
		}
		_, err := adapter.LockFee(ctx, req)
		pushchaintest.RequireAPIError(t, err, pushchain.ClientError, pushchain.ErrSigningCapabilityMissing)
	})
}

// laggingBackend reports a head behind every block it serves receipts for.
type laggingBackend struct {
	evm.Backend
}

func (laggingBackend) BlockNumber(context.Context) (uint64, error) {
	return 0, nil
}

func Test_Adapter_VerifyLock(t *testing.T) {
	setup := newSetup(t)
	adapter := evm.NewAdapter(descriptor(lockerAddr), setup.Client)
	ctx := context.Background()

	t.Run("err_unknown_tx", func(t *testing.T) {
		err := adapter.VerifyLock(ctx, crypto.Keccak256Hash([]byte("unknown")).Hex())
		assert.ErrorIs(t, err, blockchain.ErrTxNotFound)
	})
	t.Run("err_malformed_ref", func(t *testing.T) {
		err := adapter.VerifyLock(ctx, "0x1234")
		pushchaintest.RequireAPIError(t, err, pushchain.ClientError, pushchain.ErrInvalidArgument)
	})
}

func Test_Adapter_Sign(t *testing.T) {
	setup := newSetup(t)
	adapter := evm.NewAdapter(descriptor(lockerAddr), setup.Client)
	td := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {{Name: "version", Type: "string"}},
			"Mail":         {{Name: "contents", Type: "string"}},
		},
		PrimaryType: "Mail",
		Domain:      apitypes.TypedDataDomain{Version: "0.1.0"},
		Message:     apitypes.TypedDataMessage{"contents": "hello"},
	}

	t.Run("happy", func(t *testing.T) {
		sig, err := adapter.Sign(context.Background(), pushchain.SignRequest{Signer: setup.Signers[0], TypedData: td})
		require.NoError(t, err)
		require.Len(t, sig, 65)

		hash, _, err := apitypes.TypedDataAndHash(td)
		require.NoError(t, err)
		sig[64] -= 27
		pub, err := crypto.SigToPub(hash, sig)
		require.NoError(t, err)
		assert.Equal(t, setup.Signers[0].Address(), crypto.PubkeyToAddress(*pub))
	})
	t.Run("err_no_typed_data_support", func(t *testing.T) {
		_, err := adapter.Sign(context.Background(),
			pushchain.SignRequest{Signer: messageOnlySigner{setup.Signers[0]}, TypedData: td})
		apiErr := pushchaintest.RequireAPIError(t, err, pushchain.ClientError, pushchain.ErrSigningCapabilityMissing)
		pushchaintest.AssertErrInfoSigningCapabilityMissing(t, apiErr.AddInfo(),
			setup.Signers[0].Account(), pushchain.CapabilitySignTypedData)
	})
}
