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

// Package fee implements the fee locking protocol: when the executor account
// on Push Chain cannot pay for an execution, the shortfall is locked on the
// origin chain and minted as PC to the executor account.
package fee

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/blockchain"
	"github.com/push-protocol/push-chain-sdk/chain"
	"github.com/push-protocol/push-chain-sdk/currency"
	"github.com/push-protocol/push-chain-sdk/log"
	"github.com/push-protocol/push-chain-sdk/metrics"
)

// State of a fee lock.
type State int

// Fee lock states. NotNeeded and LockConfirmed are terminal.
const (
	NotNeeded State = iota
	AmountComputed
	LockSubmitted
	LockConfirmed
)

// String implements the stringer interface for State.
func (s State) String() string {
	return [...]string{
		"not needed",
		"amount computed",
		"lock submitted",
		"lock confirmed",
	}[s]
}

// Request describes the funds needed by an execution.
type Request struct {
	// Required and Balance are in the smallest PC unit.
	Required      *big.Int
	Balance       *big.Int
	ExecutionHash common.Hash
	Signer        pushchain.UniversalSigner
}

// Quote is the amount to lock for a shortfall.
type Quote struct {
	Shortfall *big.Int // smallest PC unit.
	USD       *big.Int // USD with 8 decimals.
	Price     *big.Int // USD price of the origin native token with 8 decimals.
	Native    *big.Int // smallest unit of the origin native token.
}

// Locker runs the fee locking protocol for one origin chain.
type Locker struct {
	origin  pushchain.ChainDescriptor
	push    pushchain.PushChainInfo
	adapter pushchain.ChainAdapter
	oracle  pushchain.PriceOracle
	metrics *metrics.Metrics
	logger  log.Logger
	native  currency.Currency

	observer func(State)
}

// NewLocker returns a locker that locks fees on the origin chain through the
// adapter, for executions on the given Push Chain deployment. m may be nil.
func NewLocker(origin pushchain.ChainDescriptor, push pushchain.PushChainInfo, adapter pushchain.ChainAdapter,
	oracle pushchain.PriceOracle, m *metrics.Metrics) *Locker {
	return &Locker{
		origin:  origin,
		push:    push,
		adapter: adapter,
		oracle:  oracle,
		metrics: m,
		logger:  log.NewLoggerWithField(log.ChainKey, string(origin.Chain)),
		native:  chain.NativeCurrency(origin),
	}
}

// SetLogger sets the logger used for state transitions.
func (l *Locker) SetLogger(logger log.Logger) {
	l.logger = logger
}

// setObserver sets a function called on each state transition.
func (l *Locker) setObserver(fn func(State)) {
	l.observer = fn
}

// Quote converts the shortfall in PC to the amount of origin native token
// to lock. Each conversion rounds up, so that the locked amount covers the
// shortfall.
func (l *Locker) Quote(ctx context.Context, shortfall *big.Int) (Quote, error) {
	usd := currency.PushToUSD(shortfall, l.push)
	p, err := l.oracle.Price(ctx, l.origin.Chain)
	if err != nil {
		return Quote{}, errors.WithMessage(err, "reading native token price")
	}
	native, err := currency.USDToNative(usd, p, l.origin.NativeDecimals)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Shortfall: shortfall, USD: usd, Price: p, Native: native}, nil
}

// Lock locks the shortfall between the required funds and the balance on
// the origin chain and waits for the confirmations defined for the chain.
// It returns a nil record if the balance covers the required funds.
//
// If the lock tx is not confirmed in time, it returns an ErrLockTimeout API
// error carrying the tx reference, which the caller must pass as fee lock
// reference when retrying the execution.
func (l *Locker) Lock(ctx context.Context, req Request) (*pushchain.FeeLockRecord, error) {
	if req.Balance.Cmp(req.Required) >= 0 {
		l.transition(NotNeeded)
		l.metrics.ObserveFeeLock(string(l.origin.Chain), time.Time{}, metrics.ResultSkipped)
		return nil, nil
	}
	if !l.origin.HasFeeLocker() {
		return nil, pushchain.NewAPIErrFeeLockingUnsupported(l.origin.Chain)
	}

	shortfall := new(big.Int).Sub(req.Required, req.Balance)
	q, err := l.Quote(ctx, shortfall)
	if err != nil {
		return nil, err
	}
	l.transition(AmountComputed)
	l.logger.WithFields(log.Fields{
		"shortfall": shortfall.String(),
		"usd":       q.USD.String(),
		"price":     q.Price.String(),
		"amount":    l.native.PrintWithSymbol(q.Native),
	}).Debug("Computed fee lock amount")

	start := time.Now()
	txRef, err := l.adapter.LockFee(ctx, pushchain.LockFeeRequest{
		Origin:        l.origin,
		Signer:        req.Signer,
		Amount:        q.Native,
		ExecutionHash: req.ExecutionHash,
	})
	if err != nil {
		l.metrics.ObserveFeeLock(string(l.origin.Chain), time.Time{}, metrics.ResultFailure)
		return nil, errors.WithMessage(err, "submitting fee lock")
	}
	l.transition(LockSubmitted)
	l.logger.WithField("txRef", txRef).Info("Submitted fee lock")

	err = l.adapter.WaitForConfirmation(ctx, txRef, l.origin.Confirmations, l.origin.ConfirmationTimeout)
	if err != nil {
		l.metrics.ObserveFeeLock(string(l.origin.Chain), time.Time{}, metrics.ResultFailure)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, pushchain.WithFeeLockReference(pushchain.NewAPIErrLockTimeout(err, l.origin.Chain, txRef,
				l.origin.ConfirmationTimeout.String()), txRef)
		}
		return nil, errors.WithMessage(err, "waiting for fee lock "+txRef)
	}
	l.transition(LockConfirmed)
	l.metrics.ObserveFeeLock(string(l.origin.Chain), start, metrics.ResultSuccess)
	return pushchain.NewFeeLockRecord(l.origin.Chain, txRef, q.Native, req.ExecutionHash), nil
}

// Verify waits until the fee lock tx referenced by txRef, submitted by an
// earlier execution attempt, has the confirmations required on the origin
// chain.
//
// A lock that reverted, or that is still unknown to the chain when the
// confirmation timeout expires, is stale. A lock that is included but not
// yet confirmed in time gives an ErrLockTimeout carrying txRef, so that the
// caller can retry with it again later.
func (l *Locker) Verify(ctx context.Context, txRef string) error {
	err := l.adapter.WaitForConfirmation(ctx, txRef, l.origin.Confirmations, l.origin.ConfirmationTimeout)
	switch {
	case err == nil:
		l.transition(LockConfirmed)
		return nil
	case errors.As(err, new(blockchain.TxFailedError)):
		return pushchain.NewAPIErrStaleFeeLockReference(err, l.origin.Chain, txRef)
	case !errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil:
		return errors.WithMessage(err, "waiting for fee lock "+txRef)
	}

	statusErr := l.adapter.VerifyLock(ctx, txRef)
	if errors.Is(statusErr, blockchain.ErrTxNotFound) || errors.As(statusErr, new(blockchain.TxFailedError)) {
		return pushchain.NewAPIErrStaleFeeLockReference(statusErr, l.origin.Chain, txRef)
	}
	return pushchain.WithFeeLockReference(pushchain.NewAPIErrLockTimeout(err, l.origin.Chain, txRef,
		l.origin.ConfirmationTimeout.String()), txRef)
}

func (l *Locker) transition(s State) {
	l.logger.WithField("state", s.String()).Debug("Fee lock state")
	if l.observer != nil {
		l.observer(s)
	}
}
