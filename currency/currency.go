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
	"github.com/shopspring/decimal"
)

// placesToRound is the number of decimal places used by Print.
const placesToRound = 6

// Currency parses and prints amounts of a token with a fixed number of
// decimals. Amounts are handled in base units as big.Int.
type Currency struct {
	symbol     string
	decimals   uint8
	multiplier decimal.Decimal
}

// New returns a currency with the given symbol and decimals.
func New(symbol string, decimals uint8) Currency {
	return Currency{
		symbol:     symbol,
		decimals:   decimals,
		multiplier: decimal.New(1, int32(decimals)),
	}
}

// Symbol returns the symbol of the currency.
func (c Currency) Symbol() string { return c.symbol }

// Decimals returns the number of decimals of the base unit.
func (c Currency) Decimals() uint8 { return c.decimals }

// Parse parses the given amount string in the main unit, converts it to base
// units and returns it.
//
// It can parse decimal values up to the smallest base unit without loss of
// accuracy. Values with finer resolution are rejected.
func (c Currency) Parse(input string) (*big.Int, error) {
	amount, err := decimal.NewFromString(input)
	if err != nil {
		return nil, errors.Wrap(err, "invalid decimal string")
	}
	if amount.IsNegative() {
		return nil, errors.New("amount should not be negative")
	}

	amountBaseUnit := amount.Mul(c.multiplier)
	if !amountBaseUnit.Equal(amountBaseUnit.Truncate(0)) {
		return nil, errors.Errorf("amount has more than %d decimal places", c.decimals)
	}
	return amountBaseUnit.BigInt(), nil
}

// Print converts the input in base units to the main unit and returns a
// string representation of it, rounded off to 6 decimal places.
func (c Currency) Print(input *big.Int) string {
	if input == nil {
		input = new(big.Int)
	}
	amount := decimal.NewFromBigInt(input, 0)
	return amount.Div(c.multiplier).StringFixedBank(placesToRound)
}

// PrintWithSymbol is like Print, with the symbol appended.
func (c Currency) PrintWithSymbol(input *big.Int) string {
	return c.Print(input) + " " + c.symbol
}
