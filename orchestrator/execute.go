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
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/fee"
	"github.com/push-protocol/push-chain-sdk/log"
	"github.com/push-protocol/push-chain-sdk/metrics"
	"github.com/push-protocol/push-chain-sdk/payload"
)

// Payload defaults for unset execute params.
const (
	DefaultGasLimit             = 10_000_000
	DefaultMaxFeePerGas         = 10_000_000_000
	DefaultMaxPriorityFeePerGas = 0
	DefaultDeadline             = 9_999_999_999
)

// Execute runs the intent on Push Chain and returns the receipt of the
// Push Chain tx.
//
// The returned error is always an APIError. Notable codes:
// - ErrNetworkMismatch, before any network access.
// - ErrFeeLockingUnsupported, ErrLockTimeout from the fee locking protocol.
// - ErrStaleFeeLockReference if params.FeeLockReference is not a
// successful tx on the origin chain.
// - ErrDeploymentRequiresFeeLock if the executor account is not deployed and
// no fee lock was needed or given.
// - ErrSigningCapabilityMissing if the signer cannot sign as required.
// - ErrSubmissionFailed if Push Chain rejected the tx. It is not retried.
// - ErrRPCUnavailable if all endpoints of a chain failed.
func (o *Orchestrator) Execute(ctx context.Context, params pushchain.ExecuteParams) (*pushchain.Receipt, error) {
	start := time.Now()
	logger := o.WithField(log.ExecutionKey, uuid.New().String())
	logger.WithField("method", "Execute").Infof("Received request to %s with value %v", params.To.Hex(),
		params.Value)

	path := metrics.PathUniversal
	if o.isFastPath() {
		path = metrics.PathFastPath
	}
	receipt, err := o.execute(ctx, logger, params)
	o.metrics.ObserveExecution(path, start, err)
	if err != nil {
		apiErr, ok := pushchain.AsAPIError(err)
		if !ok {
			apiErr = pushchain.NewAPIErrUnknownInternal(err)
		}
		logger.WithFields(pushchain.APIErrAsMap("Execute", apiErr)).Error(apiErr.Message())
		return receipt, apiErr
	}
	logger.WithField("tx", receipt.TxHash).Info("Executed")
	return receipt, nil
}

func (o *Orchestrator) execute(ctx context.Context, logger log.Logger, params pushchain.ExecuteParams) (
	*pushchain.Receipt, error) {
	o.trace(logger, "ValidateNetwork", nil)
	if err := o.validateNetwork(); err != nil {
		return nil, err
	}
	if err := ValidateParams(params); err != nil {
		return nil, err
	}
	if o.isFastPath() {
		return o.executeFastPath(ctx, logger, params)
	}
	return o.executeUniversal(ctx, logger, params)
}

func (o *Orchestrator) executeFastPath(ctx context.Context, logger log.Logger, params pushchain.ExecuteParams) (
	*pushchain.Receipt, error) {
	o.trace(logger, "FastPath", log.Fields{"to": params.To.Hex()})
	hash, err := o.dest.SendTransaction(ctx, pushchain.SendTxParams{
		To:     params.To,
		Value:  orZero(params.Value),
		Data:   params.Data,
		Signer: o.signer,
	})
	if err != nil {
		return nil, err
	}
	o.trace(logger, "Submitted", log.Fields{"evmTx": hash.Hex()})
	return o.dest.GetCosmosTx(ctx, hash)
}

// funds holds the reads made before building the payload.
type funds struct {
	gasPrice *big.Int
	balance  *big.Int
	nonce    *big.Int
}

func (o *Orchestrator) executeUniversal(ctx context.Context, logger log.Logger, params pushchain.ExecuteParams) (
	*pushchain.Receipt, error) {
	acc := o.signer.Account()

	o.trace(logger, "DeriveAccount", nil)
	executor, err := o.deriver.Onchain(ctx, acc)
	if err != nil {
		return nil, err
	}
	o.trace(logger, "DerivedAccount", log.Fields{"executor": executor.Address.Hex(), "deployed": executor.Deployed})

	value := orZero(params.Value)
	gasLimit := params.GasLimit
	if gasLimit == nil {
		if gasLimit, err = o.gas.EstimateGas(ctx, o.dest, executor.Address, params.To, value, params.Data); err != nil {
			return nil, err
		}
	}

	f, err := o.readFunds(ctx, executor)
	if err != nil {
		return nil, err
	}
	required := new(big.Int).Mul(gasLimit, f.gasPrice)
	required.Add(required, value)
	o.trace(logger, "EstimateFunds", log.Fields{
		"gasLimit": gasLimit.String(),
		"gasPrice": f.gasPrice.String(),
		"required": required.String(),
		"balance":  f.balance.String(),
		"nonce":    f.nonce.String(),
	})

	p := BuildPayload(params, gasLimit, f.nonce)
	hash := o.ComputeExecutionHash(executor.Address, p)
	o.trace(logger, "BuildPayload", log.Fields{"executionHash": hash.Hex()})

	lockRef, err := o.lockFee(ctx, logger, params.FeeLockReference, fee.Request{
		Required:      required,
		Balance:       f.balance,
		ExecutionHash: hash,
		Signer:        o.signer,
	})
	if err != nil {
		return nil, err
	}
	if !executor.Deployed && lockRef == "" {
		return nil, pushchain.NewAPIErrDeploymentRequiresFeeLock(executor.Address.Hex())
	}

	receipt, err := o.signAndSubmit(ctx, logger, acc, executor, p, hash, lockRef)
	if err != nil && lockRef != "" {
		logger.WithField("feeLockReference", lockRef).Warn(
			"Execution failed after fee lock, retry with the fee lock reference")
		return receipt, pushchain.WithFeeLockReference(err, lockRef)
	}
	return receipt, err
}

func (o *Orchestrator) readFunds(ctx context.Context, executor pushchain.ExecutorAccount) (funds, error) {
	f := funds{nonce: new(big.Int)}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		f.gasPrice, err = o.dest.GetGasPrice(gctx)
		return errors.WithMessage(err, "reading gas price")
	})
	g.Go(func() (err error) {
		f.balance, err = o.dest.GetBalance(gctx, executor.Address)
		return errors.WithMessage(err, "reading executor account balance")
	})
	if executor.Deployed {
		g.Go(func() (err error) {
			f.nonce, err = o.deriver.Nonce(gctx, executor.Address)
			return err
		})
	}
	err := g.Wait()
	return f, err
}

// lockFee returns the reference of the fee lock funding the execution: the
// given one once it has the required confirmations, or that of a new lock if
// the balance does not cover the required funds. It returns an empty
// reference if no lock is needed.
func (o *Orchestrator) lockFee(ctx context.Context, logger log.Logger, ref string, req fee.Request) (
	string, error) {
	if ref != "" {
		o.trace(logger, "VerifyFeeLock", log.Fields{"feeLockReference": ref})
		if err := o.locker.Verify(ctx, ref); err != nil {
			return "", err
		}
		return ref, nil
	}

	o.trace(logger, "LockFee", log.Fields{"required": req.Required.String(), "balance": req.Balance.String()})
	record, err := o.locker.Lock(ctx, req)
	if err != nil || record == nil {
		return "", err
	}
	o.trace(logger, "LockedFee", log.Fields{"feeLockReference": record.TxRef, "amount": record.NativeAmount})
	return record.Consume()
}

func (o *Orchestrator) signAndSubmit(ctx context.Context, logger log.Logger, acc pushchain.UniversalAccount,
	executor pushchain.ExecutorAccount, p pushchain.UniversalPayload, hash common.Hash, lockRef string) (
	*pushchain.Receipt, error) {
	o.trace(logger, "Sign", nil)
	sig, err := o.adapter.Sign(ctx, pushchain.SignRequest{
		Signer:            o.signer,
		Payload:           p,
		Digest:            hash,
		TypedData:         payload.TypedData(o.push.EVMChainID, executor.Address, p, payload.DefaultVersion),
		VerifyingContract: executor.Address,
	})
	if err != nil {
		return nil, err
	}

	ownerKey, err := o.adapter.NormalizeOwnerKey(acc.Address)
	if err != nil {
		return nil, err
	}
	var msgs []pushchain.Msg
	if !executor.Deployed {
		msgs = append(msgs, o.dest.CreateDeployMessage(acc, ownerKey, lockRef))
	}
	if lockRef != "" {
		msgs = append(msgs, o.dest.CreateMintMessage(acc, ownerKey, lockRef))
	}
	msgs = append(msgs, o.dest.CreateExecuteMessage(acc, ownerKey, p, sig))

	o.trace(logger, "Submit", log.Fields{"messages": len(msgs)})
	o.metrics.ObserveMessages(len(msgs))
	return o.dest.SignAndBroadcast(ctx, msgs)
}

func (o *Orchestrator) trace(logger log.Logger, step string, fields log.Fields) {
	entry := logger.WithField("step", step).WithFields(fields)
	if o.printTraces {
		entry.Info("Step")
		return
	}
	entry.Debug("Step")
}

// ValidateParams checks that the integer params fit the uint256 payload
// fields.
func ValidateParams(params pushchain.ExecuteParams) error {
	values := []struct {
		name pushchain.ArgumentName
		v    *big.Int
	}{
		{"value", params.Value},
		{"gasLimit", params.GasLimit},
		{"maxFeePerGas", params.MaxFeePerGas},
		{"maxPriorityFeePerGas", params.MaxPriorityFeePerGas},
		{"deadline", params.Deadline},
	}
	for _, arg := range values {
		if arg.v != nil && (arg.v.Sign() < 0 || arg.v.BitLen() > 256) {
			return pushchain.NewAPIErrInvalidArgument(errors.New("out of range"), arg.name, arg.v.String(),
				"non negative 256 bit integer")
		}
	}
	return nil
}

// BuildPayload returns the payload of the execution, applying the defaults
// to unset params. The params must be valid.
func BuildPayload(params pushchain.ExecuteParams, gasLimit, nonce *big.Int) pushchain.UniversalPayload {
	return pushchain.UniversalPayload{
		To:                   params.To,
		Value:                u256(params.Value, 0),
		Data:                 params.Data,
		GasLimit:             u256(gasLimit, DefaultGasLimit),
		MaxFeePerGas:         u256(params.MaxFeePerGas, DefaultMaxFeePerGas),
		MaxPriorityFeePerGas: u256(params.MaxPriorityFeePerGas, DefaultMaxPriorityFeePerGas),
		Nonce:                u256(nonce, 0),
		Deadline:             u256(params.Deadline, DefaultDeadline),
		SigType:              pushchain.SignedVerification,
	}
}

// u256 converts v, which is in range, or returns def if v is nil.
func u256(v *big.Int, def uint64) *uint256.Int {
	if v == nil {
		return uint256.NewInt(def)
	}
	return uint256.MustFromBig(v)
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
