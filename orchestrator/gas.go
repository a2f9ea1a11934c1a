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

package orchestrator

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/push-protocol/push-chain-sdk"
)

// Gas estimation strategies accepted in the config.
const (
	GasEstimationFixed    = "fixed"
	GasEstimationSimulate = "simulate"
)

// GasEstimator returns the gas limit of an execution when the caller does
// not set one.
type GasEstimator interface {
	EstimateGas(ctx context.Context, dest pushchain.DestinationClient, executor, to common.Address,
		value *big.Int, data []byte) (*big.Int, error)
}

// FixedGas uses the same gas limit for every execution.
type FixedGas struct {
	Limit uint64
}

// EstimateGas returns the fixed limit, or DefaultGasLimit if it is zero.
func (f FixedGas) EstimateGas(context.Context, pushchain.DestinationClient, common.Address, common.Address,
	*big.Int, []byte) (*big.Int, error) {
	if f.Limit == 0 {
		return big.NewInt(DefaultGasLimit), nil
	}
	return new(big.Int).SetUint64(f.Limit), nil
}

// SimulatedGas asks Push Chain for an estimate of the call made by the
// executor account.
type SimulatedGas struct{}

// EstimateGas simulates the call from the executor account.
func (SimulatedGas) EstimateGas(ctx context.Context, dest pushchain.DestinationClient, executor, to common.Address,
	value *big.Int, data []byte) (*big.Int, error) {
	gas, err := dest.EstimateGas(ctx, executor, to, value, data)
	if err != nil {
		return nil, errors.WithMessage(err, "simulating execution")
	}
	return new(big.Int).SetUint64(gas), nil
}

// NewGasEstimator returns the estimator for the strategy. An empty strategy
// selects the fixed one.
func NewGasEstimator(strategy string, defaultLimit uint64) (GasEstimator, error) {
	switch strategy {
	case "", GasEstimationFixed:
		return FixedGas{Limit: defaultLimit}, nil
	case GasEstimationSimulate:
		return SimulatedGas{}, nil
	}
	return nil, pushchain.NewAPIErrInvalidConfig(errors.New("unknown strategy"), "gasEstimation", strategy)
}
