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

package mocks

import (
	"context"
	"math/big"

	abi "github.com/ethereum/go-ethereum/accounts/abi"
	common "github.com/ethereum/go-ethereum/common"
	mock "github.com/stretchr/testify/mock"

	pushchain "github.com/push-protocol/push-chain-sdk"
)

// DestinationClient is a mock type for the DestinationClient type.
type DestinationClient struct {
	mock.Mock
}

// Info provides a mock function with given fields:
func (_m *DestinationClient) Info() pushchain.PushChainInfo {
	ret := _m.Called()

	var r0 pushchain.PushChainInfo
	if rf, ok := ret.Get(0).(func() pushchain.PushChainInfo); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(pushchain.PushChainInfo)
	}

	return r0
}

// GetBalance provides a mock function with given fields: ctx, addr
func (_m *DestinationClient) GetBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	ret := _m.Called(ctx, addr)

	var r0 *big.Int
	if rf, ok := ret.Get(0).(func(context.Context, common.Address) *big.Int); ok {
		r0 = rf(ctx, addr)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*big.Int)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, common.Address) error); ok {
		r1 = rf(ctx, addr)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetCode provides a mock function with given fields: ctx, addr
func (_m *DestinationClient) GetCode(ctx context.Context, addr common.Address) ([]byte, error) {
	ret := _m.Called(ctx, addr)

	var r0 []byte
	if rf, ok := ret.Get(0).(func(context.Context, common.Address) []byte); ok {
		r0 = rf(ctx, addr)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, common.Address) error); ok {
		r1 = rf(ctx, addr)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetGasPrice provides a mock function with given fields: ctx
func (_m *DestinationClient) GetGasPrice(ctx context.Context) (*big.Int, error) {
	ret := _m.Called(ctx)

	var r0 *big.Int
	if rf, ok := ret.Get(0).(func(context.Context) *big.Int); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*big.Int)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// EstimateGas provides a mock function with given fields: ctx, from, to, value, data
func (_m *DestinationClient) EstimateGas(ctx context.Context, from common.Address, to common.Address, value *big.Int, data []byte) (uint64, error) {
	ret := _m.Called(ctx, from, to, value, data)

	var r0 uint64
	if rf, ok := ret.Get(0).(func(context.Context, common.Address, common.Address, *big.Int, []byte) uint64); ok {
		r0 = rf(ctx, from, to, value, data)
	} else {
		r0 = ret.Get(0).(uint64)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, common.Address, common.Address, *big.Int, []byte) error); ok {
		r1 = rf(ctx, from, to, value, data)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// SendTransaction provides a mock function with given fields: ctx, params
func (_m *DestinationClient) SendTransaction(ctx context.Context, params pushchain.SendTxParams) (common.Hash, error) {
	ret := _m.Called(ctx, params)

	var r0 common.Hash
	if rf, ok := ret.Get(0).(func(context.Context, pushchain.SendTxParams) common.Hash); ok {
		r0 = rf(ctx, params)
	} else {
		r0 = ret.Get(0).(common.Hash)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, pushchain.SendTxParams) error); ok {
		r1 = rf(ctx, params)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetCosmosTx provides a mock function with given fields: ctx, evmTxHash
func (_m *DestinationClient) GetCosmosTx(ctx context.Context, evmTxHash common.Hash) (*pushchain.Receipt, error) {
	ret := _m.Called(ctx, evmTxHash)

	var r0 *pushchain.Receipt
	if rf, ok := ret.Get(0).(func(context.Context, common.Hash) *pushchain.Receipt); ok {
		r0 = rf(ctx, evmTxHash)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*pushchain.Receipt)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, common.Hash) error); ok {
		r1 = rf(ctx, evmTxHash)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// CreateDeployMessage provides a mock function with given fields: account, ownerKey, feeLockTxRef
func (_m *DestinationClient) CreateDeployMessage(account pushchain.UniversalAccount, ownerKey []byte, feeLockTxRef string) pushchain.Msg {
	ret := _m.Called(account, ownerKey, feeLockTxRef)

	var r0 pushchain.Msg
	if rf, ok := ret.Get(0).(func(pushchain.UniversalAccount, []byte, string) pushchain.Msg); ok {
		r0 = rf(account, ownerKey, feeLockTxRef)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(pushchain.Msg)
	}

	return r0
}

// CreateMintMessage provides a mock function with given fields: account, ownerKey, feeLockTxRef
func (_m *DestinationClient) CreateMintMessage(account pushchain.UniversalAccount, ownerKey []byte, feeLockTxRef string) pushchain.Msg {
	ret := _m.Called(account, ownerKey, feeLockTxRef)

	var r0 pushchain.Msg
	if rf, ok := ret.Get(0).(func(pushchain.UniversalAccount, []byte, string) pushchain.Msg); ok {
		r0 = rf(account, ownerKey, feeLockTxRef)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(pushchain.Msg)
	}

	return r0
}

// CreateExecuteMessage provides a mock function with given fields: account, ownerKey, p, signature
func (_m *DestinationClient) CreateExecuteMessage(account pushchain.UniversalAccount, ownerKey []byte, p pushchain.UniversalPayload, signature []byte) pushchain.Msg {
	ret := _m.Called(account, ownerKey, p, signature)

	var r0 pushchain.Msg
	if rf, ok := ret.Get(0).(func(pushchain.UniversalAccount, []byte, pushchain.UniversalPayload, []byte) pushchain.Msg); ok {
		r0 = rf(account, ownerKey, p, signature)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(pushchain.Msg)
	}

	return r0
}

// SignAndBroadcast provides a mock function with given fields: ctx, msgs
func (_m *DestinationClient) SignAndBroadcast(ctx context.Context, msgs []pushchain.Msg) (*pushchain.Receipt, error) {
	ret := _m.Called(ctx, msgs)

	var r0 *pushchain.Receipt
	if rf, ok := ret.Get(0).(func(context.Context, []pushchain.Msg) *pushchain.Receipt); ok {
		r0 = rf(ctx, msgs)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*pushchain.Receipt)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, []pushchain.Msg) error); ok {
		r1 = rf(ctx, msgs)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ReadContract provides a mock function with given fields: ctx, addr, contractABI, method, args
func (_m *DestinationClient) ReadContract(ctx context.Context, addr common.Address, contractABI abi.ABI, method string,
	args ...interface{}) ([]interface{}, error) {
	var _ca []interface{}
	_ca = append(_ca, ctx, addr, contractABI, method)
	_ca = append(_ca, args...)
	ret := _m.Called(_ca...)

	var r0 []interface{}
	if rf, ok := ret.Get(0).(func(context.Context, common.Address, abi.ABI, string, ...interface{}) []interface{}); ok {
		r0 = rf(ctx, addr, contractABI, method, args...)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]interface{})
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, common.Address, abi.ABI, string, ...interface{}) error); ok {
		r1 = rf(ctx, addr, contractABI, method, args...)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
