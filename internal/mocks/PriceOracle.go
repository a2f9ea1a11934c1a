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

	mock "github.com/stretchr/testify/mock"

	pushchain "github.com/push-protocol/push-chain-sdk"
)

// PriceOracle is a mock type for the PriceOracle type.
type PriceOracle struct {
	mock.Mock
}

// Price provides a mock function with given fields: ctx, chain
func (_m *PriceOracle) Price(ctx context.Context, chain pushchain.Chain) (*big.Int, error) {
	ret := _m.Called(ctx, chain)

	var r0 *big.Int
	if rf, ok := ret.Get(0).(func(context.Context, pushchain.Chain) *big.Int); ok {
		r0 = rf(ctx, chain)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*big.Int)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, pushchain.Chain) error); ok {
		r1 = rf(ctx, chain)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
