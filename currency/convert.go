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
	"math/big"

	"github.com/pkg/errors"

	"github.com/push-protocol/push-chain-sdk"
)

// MulDivCeil returns ceil(x * num / den) for non negative x, num and positive
// den.
func MulDivCeil(x, num, den *big.Int) *big.Int {
	prod := new(big.Int).Mul(x, num)
	q, r := new(big.Int).QuoRem(prod, den, new(big.Int))
	if r.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// Pow10 returns 10^n.
func Pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// PushToUSD converts an amount in PC base units to USD with info.USDDecimals
// decimals. The result is rounded up.
func PushToUSD(amount *big.Int, info pushchain.PushChainInfo) *big.Int {
	return MulDivCeil(amount, info.PushToUSDNumerator, info.PushToUSDDenominator)
}

// USDToNative converts an amount in USD to base units of a token, given the
// token price in USD. Both usd and price use the same number of decimals.
// The result is rounded up, so that the converted amount is never worth less
// than usd.
func USDToNative(usd, price *big.Int, nativeDecimals uint8) (*big.Int, error) {
	if price == nil || price.Sign() <= 0 {
		return nil, errors.Errorf("invalid token price %v", price)
	}
	if usd.Sign() < 0 {
		return nil, errors.Errorf("negative usd amount %v", usd)
	}
	return MulDivCeil(usd, Pow10(nativeDecimals), price), nil
}

// Rescale converts a value with from decimals to to decimals, truncating
// extra precision.
func Rescale(v *big.Int, from, to uint8) *big.Int {
	switch {
	case from == to:
		return new(big.Int).Set(v)
	case from < to:
		return new(big.Int).Mul(v, Pow10(to-from))
	default:
		return new(big.Int).Quo(v, Pow10(from-to))
	}
}
