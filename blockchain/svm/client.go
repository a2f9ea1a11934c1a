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

package svm

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/blockchain"
	"github.com/push-protocol/push-chain-sdk/log"
	"github.com/push-protocol/push-chain-sdk/rpcpool"
)

// DefaultPollInterval is the interval between signature status lookups
// while waiting for confirmations.
const DefaultPollInterval = 500 * time.Millisecond

// Client reads from an SVM chain over a pool of endpoints.
type Client struct {
	pool         *rpcpool.Pool[*rpc.Client]
	pollInterval time.Duration
	logger       log.Logger
}

// Dial returns an rpc client for the endpoint. No connection is made until
// the first request.
func Dial(_ context.Context, url string) (*rpc.Client, error) {
	return rpc.New(url), nil
}

// NewClient returns a client for the chain with the given endpoints.
func NewClient(name string, urls []string, retryDelay time.Duration) (*Client, error) {
	pool, err := rpcpool.New(name, urls, Dial, retryDelay)
	if err != nil {
		return nil, err
	}
	return NewClientFromPool(pool), nil
}

// NewClientFromPool returns a client using the given pool.
func NewClientFromPool(pool *rpcpool.Pool[*rpc.Client]) *Client {
	return &Client{
		pool:         pool,
		pollInterval: DefaultPollInterval,
		logger:       log.NewLoggerWithField(log.ChainKey, pool.Name()),
	}
}

// SetPollInterval sets the interval used by WaitForConfirmations.
func (c *Client) SetPollInterval(d time.Duration) {
	c.pollInterval = d
}

// GetBalance returns the balance of the account in lamports.
func (c *Client) GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	return rpcpool.Call(ctx, c.pool, func(ctx context.Context, rc *rpc.Client) (uint64, error) {
		out, err := rc.GetBalance(ctx, account, rpc.CommitmentConfirmed)
		if err != nil {
			return 0, errors.Wrap(err, "reading balance of "+account.String())
		}
		return out.Value, nil
	})
}

// LatestBlockhash returns the latest finalized blockhash.
func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	return rpcpool.Call(ctx, c.pool, func(ctx context.Context, rc *rpc.Client) (solana.Hash, error) {
		out, err := rc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
		if err != nil {
			return solana.Hash{}, errors.Wrap(err, "reading latest blockhash")
		}
		return out.Value.Blockhash, nil
	})
}

// WriteInstruction builds a tx with the instructions, paid by the signer,
// has the signer sign and send it, and returns its signature. The signer
// must implement pushchain.TransactionSender.
func (c *Client) WriteInstruction(ctx context.Context, signer pushchain.UniversalSigner,
	ixs ...solana.Instruction) (solana.Signature, error) {
	sender, ok := signer.(pushchain.TransactionSender)
	if !ok {
		return solana.Signature{}, pushchain.NewAPIErrSigningCapabilityMissing(signer.Account(),
			pushchain.CapabilitySignAndSendTransaction)
	}
	payer, err := solana.PublicKeyFromBase58(signer.Account().Address)
	if err != nil {
		return solana.Signature{}, pushchain.NewAPIErrInvalidArgument(err, "signer", signer.Account().Address,
			"base58 ed25519 public key")
	}
	blockhash, err := c.LatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, err
	}
	raw, err := UnsignedTx(ixs, blockhash, payer)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := sender.SignAndSendTransaction(ctx, raw)
	if err != nil {
		return solana.Signature{}, errors.WithMessage(err, "signing and sending tx")
	}
	if len(sig) != solana.SignatureLength {
		return solana.Signature{}, errors.Errorf("signer returned %d byte signature", len(sig))
	}
	c.logger.WithField("tx", solana.SignatureFromBytes(sig).String()).Debug("Sent tx")
	return solana.SignatureFromBytes(sig), nil
}

// AccountData returns the data of the account.
func (c *Client) AccountData(ctx context.Context, account solana.PublicKey) ([]byte, error) {
	return rpcpool.Call(ctx, c.pool, func(ctx context.Context, rc *rpc.Client) ([]byte, error) {
		out, err := rc.GetAccountInfo(ctx, account)
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, backoff.Permanent(errors.Wrap(err, "reading account "+account.String()))
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading account "+account.String())
		}
		return out.Value.Data.GetBinary(), nil
	})
}

// SignatureStatus returns the status of the tx. It returns
// blockchain.ErrTxNotFound if the tx is unknown.
func (c *Client) SignatureStatus(ctx context.Context, sig solana.Signature) (*rpc.SignatureStatusesResult, error) {
	return rpcpool.Call(ctx, c.pool, func(ctx context.Context, rc *rpc.Client) (*rpc.SignatureStatusesResult, error) {
		out, err := rc.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return nil, errors.Wrap(err, "reading signature status")
		}
		if len(out.Value) == 0 || out.Value[0] == nil {
			return nil, backoff.Permanent(errors.Wrap(blockchain.ErrTxNotFound, sig.String()))
		}
		return out.Value[0], nil
	})
}

// WaitForConfirmations polls until the tx is finalized or has the given
// number of confirmations.
//
// It returns an error wrapping context.DeadlineExceeded if the timeout
// expires first, and a blockchain.TxFailedError if the tx failed.
func (c *Client) WaitForConfirmations(ctx context.Context, sig solana.Signature, confirmations uint64,
	timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	op := func() error {
		status, err := c.SignatureStatus(ctx, sig)
		if err != nil {
			return err
		}
		if status.Err != nil {
			return backoff.Permanent(blockchain.NewTxFailedError(sig.String(), fmt.Sprintf("%v", status.Err)))
		}
		if confirmed(status, confirmations) {
			return nil
		}
		return errors.Errorf("tx at slot %d not yet confirmed", status.Slot)
	}
	b := backoff.WithContext(backoff.NewConstantBackOff(c.pollInterval), ctx)
	return errors.Wrap(backoff.Retry(op, b), "waiting for confirmations")
}

// TransactionStatus returns nil if the tx was included and succeeded.
func (c *Client) TransactionStatus(ctx context.Context, sig solana.Signature) error {
	status, err := c.SignatureStatus(ctx, sig)
	if err != nil {
		return err
	}
	if status.Err != nil {
		return blockchain.NewTxFailedError(sig.String(), fmt.Sprintf("%v", status.Err))
	}
	return nil
}

// confirmed is true for finalized txs, which the node reports without a
// confirmation count, and for txs with enough confirmations.
func confirmed(status *rpc.SignatureStatusesResult, confirmations uint64) bool {
	if status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
		return true
	}
	return status.Confirmations != nil && *status.Confirmations >= confirmations
}
