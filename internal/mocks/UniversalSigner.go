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

	mock "github.com/stretchr/testify/mock"

	pushchain "github.com/push-protocol/push-chain-sdk"
)

// UniversalSigner is a mock type for the UniversalSigner type.
type UniversalSigner struct {
	mock.Mock
}

// Account provides a mock function with given fields:
func (_m *UniversalSigner) Account() pushchain.UniversalAccount {
	ret := _m.Called()

	var r0 pushchain.UniversalAccount
	if rf, ok := ret.Get(0).(func() pushchain.UniversalAccount); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(pushchain.UniversalAccount)
	}

	return r0
}

// SignMessage provides a mock function with given fields: ctx, msg
func (_m *UniversalSigner) SignMessage(ctx context.Context, msg []byte) ([]byte, error) {
	ret := _m.Called(ctx, msg)

	var r0 []byte
	if rf, ok := ret.Get(0).(func(context.Context, []byte) []byte); ok {
		r0 = rf(ctx, msg)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, []byte) error); ok {
		r1 = rf(ctx, msg)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
