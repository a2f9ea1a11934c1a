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
	"time"

	mock "github.com/stretchr/testify/mock"

	pushchain "github.com/push-protocol/push-chain-sdk"
)

// ChainAdapter is a mock type for the ChainAdapter type.
type ChainAdapter struct {
	mock.Mock
}

// VM provides a mock function with given fields:
func (_m *ChainAdapter) VM() pushchain.VM {
	ret := _m.Called()

	var r0 pushchain.VM
	if rf, ok := ret.Get(0).(func() pushchain.VM); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(pushchain.VM)
	}

	return r0
}

// NormalizeOwnerKey provides a mock function with given fields: address
func (_m *ChainAdapter) NormalizeOwnerKey(address string) ([]byte, error) {
	ret := _m.Called(address)

	var r0 []byte
	if rf, ok := ret.Get(0).(func(string) []byte); ok {
		r0 = rf(address)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(string) error); ok {
		r1 = rf(address)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// LockFee provides a mock function with given fields: ctx, req
func (_m *ChainAdapter) LockFee(ctx context.Context, req pushchain.LockFeeRequest) (string, error) {
	ret := _m.Called(ctx, req)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, pushchain.LockFeeRequest) string); ok {
		r0 = rf(ctx, req)
	} else {
		r0 = ret.Get(0).(string)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, pushchain.LockFeeRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// WaitForConfirmation provides a mock function with given fields: ctx, txRef, confirmations, timeout
func (_m *ChainAdapter) WaitForConfirmation(ctx context.Context, txRef string, confirmations uint64,
	timeout time.Duration) error {
	ret := _m.Called(ctx, txRef, confirmations, timeout)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, uint64, time.Duration) error); ok {
		r0 = rf(ctx, txRef, confirmations, timeout)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// VerifyLock provides a mock function with given fields: ctx, txRef
func (_m *ChainAdapter) VerifyLock(ctx context.Context, txRef string) error {
	ret := _m.Called(ctx, txRef)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		r0 = rf(ctx, txRef)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Sign provides a mock function with given fields: ctx, req
func (_m *ChainAdapter) Sign(ctx context.Context, req pushchain.SignRequest) ([]byte, error) {
	ret := _m.Called(ctx, req)

	var r0 []byte
	if rf, ok := ret.Get(0).(func(context.Context, pushchain.SignRequest) []byte); ok {
		r0 = rf(ctx, req)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, pushchain.SignRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
