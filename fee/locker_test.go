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

package fee_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/blockchain"
	"github.com/push-protocol/push-chain-sdk/chain"
	"github.com/push-protocol/push-chain-sdk/fee"
	"github.com/push-protocol/push-chain-sdk/internal/mocks"
	"github.com/push-protocol/push-chain-sdk/metrics"
	"github.com/push-protocol/push-chain-sdk/pushchaintest"
)

const lockTx = "0x9f5e1bd1f8a0c6cb1aa75b1bdd8ab28fd0fbc1df72dc8d5e51e9d10ec70b7f1a"

var execHash = common.HexToHash("0xabcdef")

type setup struct {
	locker  *fee.Locker
	adapter *mocks.ChainAdapter
	oracle  *mocks.PriceOracle
	metrics *metrics.Metrics
	states  []fee.State
}

func newSetup(t *testing.T, origin pushchain.Chain) *setup {
	push, err := chain.PushChain(pushchain.TestnetDonut)
	require.NoError(t, err)
	s := &setup{
		adapter: &mocks.ChainAdapter{},
		oracle:  &mocks.PriceOracle{},
		metrics: metrics.New(nil),
	}
	s.locker = fee.NewLocker(chain.MustDescribe(origin), push, s.adapter, s.oracle, s.metrics)
	fee.SetObserver(s.locker, func(st fee.State) { s.states = append(s.states, st) })
	t.Cleanup(func() {
		s.adapter.AssertExpectations(t)
		s.oracle.AssertExpectations(t)
	})
	return s
}

func pc(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func Test_Locker_Quote(t *testing.T) {
	s := newSetup(t, pushchain.EthereumSepolia)
	// 2500 USD per ETH.
	s.oracle.On("Price", mock.Anything, pushchain.EthereumSepolia).Return(big.NewInt(250000000000), nil)

	// 10 PC = 1 USD = 0.0004 ETH.
	q, err := s.locker.Quote(context.Background(), pc(10))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1e8), q.USD)
	assert.Equal(t, big.NewInt(400000000000000), q.Native)

	// 1 wei of PC rounds up to the smallest USD and ETH units.
	q, err = s.locker.Quote(context.Background(), big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1), q.USD)
	assert.Equal(t, big.NewInt(4000000), q.Native)
}

func Test_Locker_Lock(t *testing.T) {
	signer := &mocks.UniversalSigner{}
	ctx := context.Background()

	t.Run("not_needed", func(t *testing.T) {
		s := newSetup(t, pushchain.EthereumSepolia)
		record, err := s.locker.Lock(ctx, fee.Request{Required: pc(1), Balance: pc(1), Signer: signer})
		require.NoError(t, err)
		assert.Nil(t, record)
		assert.Equal(t, []fee.State{fee.NotNeeded}, s.states)
		s.adapter.AssertNotCalled(t, "LockFee", mock.Anything, mock.Anything)
	})

	t.Run("happy_evm", func(t *testing.T) {
		s := newSetup(t, pushchain.EthereumSepolia)
		desc := chain.MustDescribe(pushchain.EthereumSepolia)
		s.oracle.On("Price", mock.Anything, pushchain.EthereumSepolia).Return(big.NewInt(250000000000), nil)
		s.adapter.On("LockFee", mock.Anything, pushchain.LockFeeRequest{
			Origin:        desc,
			Signer:        signer,
			Amount:        big.NewInt(400000000000000),
			ExecutionHash: execHash,
		}).Return(lockTx, nil).Once()
		s.adapter.On("WaitForConfirmation", mock.Anything, lockTx, desc.Confirmations, desc.ConfirmationTimeout).
			Return(nil).Once()

		record, err := s.locker.Lock(ctx, fee.Request{
			Required: pc(12), Balance: pc(2), ExecutionHash: execHash, Signer: signer,
		})
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, pushchain.EthereumSepolia, record.Chain)
		assert.Equal(t, lockTx, record.TxRef)
		assert.Equal(t, execHash, record.ExecutionHash)
		assert.Equal(t, []fee.State{fee.AmountComputed, fee.LockSubmitted, fee.LockConfirmed}, s.states)

		ref, err := record.Consume()
		require.NoError(t, err)
		assert.Equal(t, lockTx, ref)
		_, err = record.Consume()
		assert.Error(t, err)

		assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.FeeLocks.WithLabelValues(
			string(pushchain.EthereumSepolia), metrics.ResultSuccess)))
	})

	t.Run("happy_svm", func(t *testing.T) {
		s := newSetup(t, pushchain.SolanaDevnet)
		// 150 USD per SOL: 1 USD = 6666667 lamports rounded up.
		s.oracle.On("Price", mock.Anything, pushchain.SolanaDevnet).Return(big.NewInt(15000000000), nil)
		s.adapter.On("LockFee", mock.Anything, mock.MatchedBy(func(req pushchain.LockFeeRequest) bool {
			return req.Amount.Cmp(big.NewInt(6666667)) == 0
		})).Return("sig", nil)
		s.adapter.On("WaitForConfirmation", mock.Anything, "sig", mock.Anything, mock.Anything).Return(nil)

		record, err := s.locker.Lock(ctx, fee.Request{Required: pc(10), Balance: big.NewInt(0), Signer: signer})
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(6666667), record.NativeAmount)
	})

	t.Run("err_unsupported_before_price_lookup", func(t *testing.T) {
		s := newSetup(t, pushchain.SolanaTestnet)
		_, err := s.locker.Lock(ctx, fee.Request{Required: pc(1), Balance: big.NewInt(0), Signer: signer})
		apiErr := pushchaintest.RequireAPIError(t, err, pushchain.ClientError, pushchain.ErrFeeLockingUnsupported)
		pushchaintest.AssertErrInfoFeeLockingUnsupported(t, apiErr.AddInfo(), pushchain.SolanaTestnet)
		s.oracle.AssertNotCalled(t, "Price", mock.Anything, mock.Anything)
		assert.Empty(t, s.states)
	})

	t.Run("err_price", func(t *testing.T) {
		s := newSetup(t, pushchain.EthereumSepolia)
		s.oracle.On("Price", mock.Anything, pushchain.EthereumSepolia).Return(nil, assert.AnError)
		_, err := s.locker.Lock(ctx, fee.Request{Required: pc(1), Balance: big.NewInt(0), Signer: signer})
		assert.ErrorIs(t, err, assert.AnError)
		assert.Empty(t, s.states)
	})

	t.Run("err_submission", func(t *testing.T) {
		s := newSetup(t, pushchain.EthereumSepolia)
		s.oracle.On("Price", mock.Anything, mock.Anything).Return(big.NewInt(250000000000), nil)
		s.adapter.On("LockFee", mock.Anything, mock.Anything).Return("", assert.AnError)
		_, err := s.locker.Lock(ctx, fee.Request{Required: pc(1), Balance: big.NewInt(0), Signer: signer})
		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, []fee.State{fee.AmountComputed}, s.states)
	})

	t.Run("err_lock_timeout", func(t *testing.T) {
		s := newSetup(t, pushchain.EthereumSepolia)
		desc := chain.MustDescribe(pushchain.EthereumSepolia)
		s.oracle.On("Price", mock.Anything, mock.Anything).Return(big.NewInt(250000000000), nil)
		s.adapter.On("LockFee", mock.Anything, mock.Anything).Return(lockTx, nil)
		s.adapter.On("WaitForConfirmation", mock.Anything, lockTx, mock.Anything, mock.Anything).
			Return(errors.Wrap(context.DeadlineExceeded, "waiting for confirmations"))

		_, err := s.locker.Lock(ctx, fee.Request{Required: pc(1), Balance: big.NewInt(0), Signer: signer})
		apiErr := pushchaintest.RequireAPIError(t, err, pushchain.ProtocolFatalError, pushchain.ErrLockTimeout)
		pushchaintest.AssertErrInfoLockTimeout(t, apiErr.AddInfo(), pushchain.EthereumSepolia, lockTx,
			desc.ConfirmationTimeout.String())
		assert.Equal(t, lockTx, apiErr.FeeLockReference())
		assert.Equal(t, []fee.State{fee.AmountComputed, fee.LockSubmitted}, s.states)
	})

	t.Run("err_lock_failed", func(t *testing.T) {
		s := newSetup(t, pushchain.EthereumSepolia)
		s.oracle.On("Price", mock.Anything, mock.Anything).Return(big.NewInt(250000000000), nil)
		s.adapter.On("LockFee", mock.Anything, mock.Anything).Return(lockTx, nil)
		s.adapter.On("WaitForConfirmation", mock.Anything, lockTx, mock.Anything, mock.Anything).
			Return(assert.AnError)

		_, err := s.locker.Lock(ctx, fee.Request{Required: pc(1), Balance: big.NewInt(0), Signer: signer})
		assert.ErrorIs(t, err, assert.AnError)
		_, isAPIErr := pushchain.AsAPIError(err)
		assert.False(t, isAPIErr)
	})
}

func Test_Locker_Verify(t *testing.T) {
	ctx := context.Background()
	desc := chain.MustDescribe(pushchain.EthereumSepolia)
	timeout := errors.Wrap(context.DeadlineExceeded, "waiting for confirmations")

	t.Run("happy_waits_for_confirmations", func(t *testing.T) {
		s := newSetup(t, pushchain.EthereumSepolia)
		s.adapter.On("WaitForConfirmation", mock.Anything, lockTx, desc.Confirmations, desc.ConfirmationTimeout).
			Return(nil).Once()

		require.NoError(t, s.locker.Verify(ctx, lockTx))
		assert.Equal(t, []fee.State{fee.LockConfirmed}, s.states)
	})

	t.Run("err_not_enough_confirmations", func(t *testing.T) {
		s := newSetup(t, pushchain.EthereumSepolia)
		s.adapter.On("WaitForConfirmation", mock.Anything, lockTx, desc.Confirmations, desc.ConfirmationTimeout).
			Return(timeout)
		s.adapter.On("VerifyLock", mock.Anything, lockTx).Return(nil)

		err := s.locker.Verify(ctx, lockTx)
		apiErr := pushchaintest.RequireAPIError(t, err, pushchain.ProtocolFatalError, pushchain.ErrLockTimeout)
		pushchaintest.AssertErrInfoLockTimeout(t, apiErr.AddInfo(), pushchain.EthereumSepolia, lockTx,
			desc.ConfirmationTimeout.String())
		assert.Equal(t, lockTx, apiErr.FeeLockReference())
		assert.Empty(t, s.states)
	})

	t.Run("err_stale", func(t *testing.T) {
		tests := map[string]struct {
			waitErr   error
			statusErr error
		}{
			"reverted":       {waitErr: blockchain.NewTxFailedError(lockTx, "reverted")},
			"never_included": {waitErr: timeout, statusErr: errors.Wrap(blockchain.ErrTxNotFound, lockTx)},
		}
		for name, tc := range tests {
			tc := tc
			t.Run(name, func(t *testing.T) {
				s := newSetup(t, pushchain.EthereumSepolia)
				s.adapter.On("WaitForConfirmation", mock.Anything, lockTx, mock.Anything, mock.Anything).
					Return(tc.waitErr)
				if tc.statusErr != nil {
					s.adapter.On("VerifyLock", mock.Anything, lockTx).Return(tc.statusErr)
				}

				err := s.locker.Verify(ctx, lockTx)
				apiErr := pushchaintest.RequireAPIError(t, err, pushchain.ClientError,
					pushchain.ErrStaleFeeLockReference)
				pushchaintest.AssertErrInfoStaleFeeLockReference(t, apiErr.AddInfo(), pushchain.EthereumSepolia,
					lockTx)
			})
		}
	})

	t.Run("err_rpc", func(t *testing.T) {
		s := newSetup(t, pushchain.EthereumSepolia)
		s.adapter.On("WaitForConfirmation", mock.Anything, lockTx, mock.Anything, mock.Anything).
			Return(assert.AnError)

		err := s.locker.Verify(ctx, lockTx)
		assert.ErrorIs(t, err, assert.AnError)
		_, isAPIErr := pushchain.AsAPIError(err)
		assert.False(t, isAPIErr)
	})

	t.Run("err_caller_context_done", func(t *testing.T) {
		s := newSetup(t, pushchain.EthereumSepolia)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		s.adapter.On("WaitForConfirmation", mock.Anything, lockTx, mock.Anything, mock.Anything).
			Return(context.Canceled)

		err := s.locker.Verify(cctx, lockTx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func Test_State_String(t *testing.T) {
	assert.Equal(t, "not needed", fee.NotNeeded.String())
	assert.Equal(t, "lock confirmed", fee.LockConfirmed.String())
}
