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

package evm

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/blockchain"
	"github.com/push-protocol/push-chain-sdk/log"
	"github.com/push-protocol/push-chain-sdk/rpcpool"
)

// DefaultPollInterval is the interval between receipt lookups while waiting
// for confirmations.
const DefaultPollInterval = 2 * time.Second

// gasMarginPercent is added on top of the estimated gas of a tx.
const gasMarginPercent = 20

// Backend is the subset of the go-ethereum client API used by Client. It is
// implemented by ethclient.Client and the simulated backend client.
type Backend interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// Client reads from and writes to an EVM chain over a pool of endpoints.
type Client struct {
	pool         *rpcpool.Pool[Backend]
	pollInterval time.Duration
	logger       log.Logger
}

// Dialer returns a dial function for ethereum JSON-RPC endpoints that gives
// up after connTimeout.
func Dialer(connTimeout time.Duration) rpcpool.DialFunc[Backend] {
	return func(ctx context.Context, url string) (Backend, error) {
		if connTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, connTimeout)
			defer cancel()
		}
		c, err := ethclient.DialContext(ctx, url)
		if err != nil {
			return nil, errors.Wrap(err, "connecting to ethereum node at "+url)
		}
		return c, nil
	}
}

// NewClient returns a client for the chain with the given endpoints.
func NewClient(name string, urls []string, connTimeout, retryDelay time.Duration) (*Client, error) {
	pool, err := rpcpool.New(name, urls, Dialer(connTimeout), retryDelay)
	if err != nil {
		return nil, err
	}
	return NewClientFromPool(pool), nil
}

// NewClientFromPool returns a client using the given pool.
func NewClientFromPool(pool *rpcpool.Pool[Backend]) *Client {
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

// GetBalance returns the balance of the address in wei.
func (c *Client) GetBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	return rpcpool.Call(ctx, c.pool, func(ctx context.Context, b Backend) (*big.Int, error) {
		bal, err := b.BalanceAt(ctx, addr, nil)
		return bal, errors.Wrap(err, "reading balance of "+addr.Hex())
	})
}

// GetCode returns the code at the address.
func (c *Client) GetCode(ctx context.Context, addr common.Address) ([]byte, error) {
	return rpcpool.Call(ctx, c.pool, func(ctx context.Context, b Backend) ([]byte, error) {
		code, err := b.CodeAt(ctx, addr, nil)
		return code, errors.Wrap(err, "reading code at "+addr.Hex())
	})
}

// GetGasPrice returns the suggested gas price.
func (c *Client) GetGasPrice(ctx context.Context) (*big.Int, error) {
	return rpcpool.Call(ctx, c.pool, func(ctx context.Context, b Backend) (*big.Int, error) {
		price, err := b.SuggestGasPrice(ctx)
		return price, errors.Wrap(err, "reading gas price")
	})
}

// EstimateGas returns the gas needed for the call.
func (c *Client) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return rpcpool.Call(ctx, c.pool, func(ctx context.Context, b Backend) (uint64, error) {
		gas, err := b.EstimateGas(ctx, msg)
		if err != nil && isRevert(err) {
			return 0, backoff.Permanent(errors.Wrap(err, "estimating gas"))
		}
		return gas, errors.Wrap(err, "estimating gas")
	})
}

// ReadContract calls a view method of the contract and returns the unpacked
// results.
func (c *Client) ReadContract(ctx context.Context, addr common.Address, contractABI abi.ABI, method string,
	args ...interface{}) ([]interface{}, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrap(err, "packing args for "+method)
	}
	out, err := rpcpool.Call(ctx, c.pool, func(ctx context.Context, b Backend) ([]byte, error) {
		out, err := b.CallContract(ctx, ethereum.CallMsg{To: &addr, Data: data}, nil)
		if err != nil {
			if isRevert(err) {
				return nil, backoff.Permanent(errors.Wrap(err, "calling "+method))
			}
			return nil, errors.Wrap(err, "calling "+method)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, blockchain.NewInvalidContractError(method, addr.Hex(), errors.New("empty result"))
	}
	res, err := contractABI.Unpack(method, out)
	return res, errors.Wrap(err, "unpacking result of "+method)
}

// WriteContract sends a tx calling the method of the contract, signed by
// the signer, and returns its hash. The signer must implement
// pushchain.TransactionSigner.
func (c *Client) WriteContract(ctx context.Context, signer pushchain.UniversalSigner, addr common.Address,
	contractABI abi.ABI, method string, value *big.Int, args ...interface{}) (common.Hash, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "packing args for "+method)
	}
	return c.SendTransaction(ctx, signer, addr, value, data)
}

// SendTransaction builds an EIP-1559 tx, has it signed by the signer and
// sends it. The signer must implement pushchain.TransactionSigner.
func (c *Client) SendTransaction(ctx context.Context, signer pushchain.UniversalSigner, to common.Address,
	value *big.Int, data []byte) (common.Hash, error) {
	txSigner, ok := signer.(pushchain.TransactionSigner)
	if !ok {
		return common.Hash{}, pushchain.NewAPIErrSigningCapabilityMissing(signer.Account(),
			pushchain.CapabilitySignTransaction)
	}
	if !common.IsHexAddress(signer.Account().Address) {
		return common.Hash{}, pushchain.NewAPIErrInvalidArgument(errors.New("not an evm address"),
			"signer", signer.Account().Address, "hex address")
	}
	if value == nil {
		value = new(big.Int)
	}
	from := common.HexToAddress(signer.Account().Address)

	unsigned, err := c.buildTx(ctx, from, to, value, data)
	if err != nil {
		return common.Hash{}, err
	}
	unsignedBytes, err := unsigned.MarshalBinary()
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "encoding tx")
	}
	signedBytes, err := txSigner.SignTransaction(ctx, unsignedBytes)
	if err != nil {
		return common.Hash{}, errors.WithMessage(err, "signing tx")
	}
	signed := new(types.Transaction)
	if err = signed.UnmarshalBinary(signedBytes); err != nil {
		return common.Hash{}, errors.Wrap(err, "decoding signed tx")
	}

	err = c.pool.Do(ctx, func(ctx context.Context, b Backend) error {
		err := b.SendTransaction(ctx, signed)
		if err != nil && strings.Contains(err.Error(), "already known") {
			return nil
		}
		return errors.Wrap(err, "sending tx")
	})
	if err != nil {
		return common.Hash{}, err
	}
	c.logger.WithField("tx", signed.Hash().Hex()).Debug("Sent tx")
	return signed.Hash(), nil
}

func (c *Client) buildTx(ctx context.Context, from, to common.Address, value *big.Int, data []byte) (
	*types.Transaction, error) {
	var tx *types.Transaction
	err := c.pool.Do(ctx, func(ctx context.Context, b Backend) error {
		chainID, err := b.ChainID(ctx)
		if err != nil {
			return errors.Wrap(err, "reading chain id")
		}
		nonce, err := b.PendingNonceAt(ctx, from)
		if err != nil {
			return errors.Wrap(err, "reading nonce")
		}
		tip, err := b.SuggestGasTipCap(ctx)
		if err != nil {
			return errors.Wrap(err, "reading gas tip cap")
		}
		price, err := b.SuggestGasPrice(ctx)
		if err != nil {
			return errors.Wrap(err, "reading gas price")
		}
		gas, err := b.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &to, Value: value, Data: data})
		if err != nil {
			if isRevert(err) {
				return backoff.Permanent(errors.Wrap(err, "estimating gas"))
			}
			return errors.Wrap(err, "estimating gas")
		}

		feeCap := new(big.Int).Mul(price, big.NewInt(2))
		if feeCap.Cmp(tip) < 0 {
			feeCap.Set(tip)
		}
		tx = types.NewTx(&types.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     nonce,
			GasTipCap: tip,
			GasFeeCap: feeCap,
			Gas:       gas + gas*gasMarginPercent/100,
			To:        &to,
			Value:     value,
			Data:      data,
		})
		return nil
	})
	return tx, err
}

// WaitForConfirmations polls until the tx is included and has the given
// number of confirmations, including the block it was included in.
//
// It returns an error wrapping context.DeadlineExceeded if the timeout
// expires first, and a blockchain.TxFailedError if the tx reverted.
func (c *Client) WaitForConfirmations(ctx context.Context, txHash common.Hash, confirmations uint64,
	timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	op := func() error {
		receipt, err := c.receipt(ctx, txHash)
		if err != nil {
			return err
		}
		if receipt.Status != types.ReceiptStatusSuccessful {
			return backoff.Permanent(blockchain.NewTxFailedError(txHash.Hex(), "reverted"))
		}
		head, err := rpcpool.Call(ctx, c.pool, func(ctx context.Context, b Backend) (uint64, error) {
			n, err := b.BlockNumber(ctx)
			return n, errors.Wrap(err, "reading block number")
		})
		if err != nil {
			return err
		}
		if have := confirmationDepth(head, receipt.BlockNumber.Uint64()); have < confirmations {
			return errors.Errorf("tx has %d of %d confirmations", have, confirmations)
		}
		return nil
	}
	b := backoff.WithContext(backoff.NewConstantBackOff(c.pollInterval), ctx)
	return errors.Wrap(backoff.Retry(op, b), "waiting for confirmations")
}

// confirmationDepth returns the number of blocks from included up to head,
// both inclusive. A head behind included, as read from a lagging endpoint,
// has no confirmations.
func confirmationDepth(head, included uint64) uint64 {
	if head < included {
		return 0
	}
	return head - included + 1
}

// TransactionStatus returns nil if the tx was included and succeeded,
// blockchain.ErrTxNotFound if it is unknown and a blockchain.TxFailedError
// if it reverted.
func (c *Client) TransactionStatus(ctx context.Context, txHash common.Hash) error {
	receipt, err := c.receipt(ctx, txHash)
	if err != nil {
		return err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return blockchain.NewTxFailedError(txHash.Hex(), "reverted")
	}
	return nil
}

func (c *Client) receipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return rpcpool.Call(ctx, c.pool, func(ctx context.Context, b Backend) (*types.Receipt, error) {
		r, err := b.TransactionReceipt(ctx, txHash)
		if errors.Is(err, ethereum.NotFound) {
			return nil, backoff.Permanent(errors.Wrap(blockchain.ErrTxNotFound, txHash.Hex()))
		}
		return r, errors.Wrap(err, "reading receipt")
	})
}

func isRevert(err error) bool {
	return strings.Contains(err.Error(), "execution reverted")
}
