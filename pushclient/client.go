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

// Package pushclient implements pushchain.DestinationClient for Push Chain:
// EVM reads and txs over the ethereum JSON-RPC endpoints, cosmos txs over
// the CometBFT RPC endpoints.
package pushclient

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	comethttp "github.com/cometbft/cometbft/rpc/client/http"
	cometrpctypes "github.com/cometbft/cometbft/rpc/core/types"
	comettypes "github.com/cometbft/cometbft/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/blockchain"
	"github.com/push-protocol/push-chain-sdk/blockchain/evm"
	"github.com/push-protocol/push-chain-sdk/log"
	"github.com/push-protocol/push-chain-sdk/rpcpool"
)

// Defaults for waiting on cosmos txs.
const (
	DefaultPollInterval = time.Second
	DefaultIndexTimeout = 30 * time.Second
)

// CometClient is the part of the CometBFT RPC client used by Client. It is
// implemented by the http client of cometbft.
type CometClient interface {
	BroadcastTxSync(ctx context.Context, tx comettypes.Tx) (*cometrpctypes.ResultBroadcastTx, error)
	Tx(ctx context.Context, hash []byte, prove bool) (*cometrpctypes.ResultTx, error)
	TxSearch(ctx context.Context, query string, prove bool, page, perPage *int,
		orderBy string) (*cometrpctypes.ResultTxSearch, error)
}

// TxEncoder builds and signs the cosmos tx carrying the messages with the
// key of the relayer. Keys for cosmos txs are managed outside this module.
type TxEncoder interface {
	// SignerAddress returns the bech32 address of the relayer.
	SignerAddress() string
	// EncodeTx returns the signed, binary encoded tx.
	EncodeTx(ctx context.Context, msgs []pushchain.Msg, memo string) ([]byte, error)
}

// Options of a Client.
type Options struct {
	ConnTimeout  time.Duration
	RetryDelay   time.Duration
	PollInterval time.Duration
	IndexTimeout time.Duration
}

// Client implements pushchain.DestinationClient.
type Client struct {
	info    pushchain.PushChainInfo
	evm     *evm.Client
	comet   *rpcpool.Pool[CometClient]
	encoder TxEncoder

	pollInterval time.Duration
	indexTimeout time.Duration
	logger       log.Logger
}

// DialComet returns a CometBFT http client for the endpoint.
func DialComet(_ context.Context, url string) (CometClient, error) {
	c, err := comethttp.New(url, "/websocket")
	if err != nil {
		return nil, errors.Wrap(err, "creating comet client for "+url)
	}
	return c, nil
}

// New returns a client for the Push Chain deployment using the given
// ethereum and CometBFT endpoints. encoder may be nil, in which case
// SignAndBroadcast fails.
func New(info pushchain.PushChainInfo, evmURLs, cometURLs []string, encoder TxEncoder, opts Options) (
	*Client, error) {
	evmClient, err := evm.NewClient(string(info.Chain), evmURLs, opts.ConnTimeout, opts.RetryDelay)
	if err != nil {
		return nil, err
	}
	comet, err := rpcpool.New(string(info.Chain)+"/comet", cometURLs, DialComet, opts.RetryDelay)
	if err != nil {
		return nil, err
	}
	c := NewWithClients(info, evmClient, comet, encoder)
	if opts.PollInterval > 0 {
		c.pollInterval = opts.PollInterval
	}
	if opts.IndexTimeout > 0 {
		c.indexTimeout = opts.IndexTimeout
	}
	return c, nil
}

// NewWithClients returns a client using the given connections.
func NewWithClients(info pushchain.PushChainInfo, evmClient *evm.Client, comet *rpcpool.Pool[CometClient],
	encoder TxEncoder) *Client {
	return &Client{
		info:         info,
		evm:          evmClient,
		comet:        comet,
		encoder:      encoder,
		pollInterval: DefaultPollInterval,
		indexTimeout: DefaultIndexTimeout,
		logger:       log.NewLoggerWithField(log.ChainKey, string(info.Chain)),
	}
}

// setPolling sets the interval and the timeout used when waiting for cosmos
// txs to be indexed.
func (c *Client) setPolling(interval, timeout time.Duration) {
	c.pollInterval = interval
	c.indexTimeout = timeout
}

// Info returns the properties of the Push Chain deployment.
func (c *Client) Info() pushchain.PushChainInfo {
	return c.info
}

// GetBalance returns the balance of addr in the smallest PC unit.
func (c *Client) GetBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	return c.evm.GetBalance(ctx, addr)
}

// GetCode returns the code at addr.
func (c *Client) GetCode(ctx context.Context, addr common.Address) ([]byte, error) {
	return c.evm.GetCode(ctx, addr)
}

// GetGasPrice returns the suggested gas price.
func (c *Client) GetGasPrice(ctx context.Context) (*big.Int, error) {
	return c.evm.GetGasPrice(ctx)
}

// EstimateGas returns the gas needed for the call from the given address.
func (c *Client) EstimateGas(ctx context.Context, from, to common.Address, value *big.Int, data []byte) (
	uint64, error) {
	return c.evm.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &to, Value: value, Data: data})
}

// ReadContract calls a view method of the contract.
func (c *Client) ReadContract(ctx context.Context, addr common.Address, contractABI abi.ABI, method string,
	args ...interface{}) ([]interface{}, error) {
	return c.evm.ReadContract(ctx, addr, contractABI, method, args...)
}

// SendTransaction sends an EVM tx signed by the signer, which must be an
// account on Push Chain that implements pushchain.TransactionSigner.
func (c *Client) SendTransaction(ctx context.Context, params pushchain.SendTxParams) (common.Hash, error) {
	return c.evm.SendTransaction(ctx, params.Signer, params.To, params.Value, params.Data)
}

// GetCosmosTx waits until the cosmos tx wrapping the EVM tx is indexed and
// returns its receipt.
func (c *Client) GetCosmosTx(ctx context.Context, evmTxHash common.Hash) (*pushchain.Receipt, error) {
	query := fmt.Sprintf("ethereum_tx.ethereumTxHash='%s'", evmTxHash.Hex())
	page, perPage := 1, 1

	var found *cometrpctypes.ResultTx
	err := c.poll(ctx, func() error {
		res, err := rpcpool.Call(ctx, c.comet, func(ctx context.Context, cc CometClient) (
			*cometrpctypes.ResultTxSearch, error) {
			res, err := cc.TxSearch(ctx, query, false, &page, &perPage, "")
			return res, errors.Wrap(err, "searching tx")
		})
		if err != nil {
			return err
		}
		if len(res.Txs) == 0 {
			return errors.Wrap(blockchain.ErrTxNotFound, evmTxHash.Hex())
		}
		found = res.Txs[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	receipt := toReceipt(found)
	receipt.EVMTxHash = evmTxHash.Hex()
	return receipt, nil
}

// CreateDeployMessage returns the message deploying the executor account of
// acc, funded by the fee lock tx.
func (c *Client) CreateDeployMessage(acc pushchain.UniversalAccount, ownerKey []byte,
	feeLockTxRef string) pushchain.Msg {
	return MsgDeployUEA{
		Signer:             c.signerAddress(),
		UniversalAccountID: accountID(acc, ownerKey),
		TxHash:             feeLockTxRef,
	}
}

// CreateMintMessage returns the message minting the locked fee as PC to the
// executor account of acc.
func (c *Client) CreateMintMessage(acc pushchain.UniversalAccount, ownerKey []byte,
	feeLockTxRef string) pushchain.Msg {
	return MsgMintPC{
		Signer:             c.signerAddress(),
		UniversalAccountID: accountID(acc, ownerKey),
		TxHash:             feeLockTxRef,
	}
}

// CreateExecuteMessage returns the message executing the signed payload.
func (c *Client) CreateExecuteMessage(acc pushchain.UniversalAccount, ownerKey []byte, p pushchain.UniversalPayload,
	signature []byte) pushchain.Msg {
	return MsgExecutePayload{
		Signer:             c.signerAddress(),
		UniversalAccountID: accountID(acc, ownerKey),
		UniversalPayload:   payloadFields(p),
		Signature:          hexutil.Encode(signature),
	}
}

// SignAndBroadcast sends the messages in one cosmos tx and waits until it
// is included. A tx rejected by the chain is not retried and gives an
// ErrSubmissionFailed API error.
func (c *Client) SignAndBroadcast(ctx context.Context, msgs []pushchain.Msg) (*pushchain.Receipt, error) {
	if c.encoder == nil {
		return nil, pushchain.NewAPIErrInvalidConfig(errors.New("no tx encoder configured"), "txEncoder", "")
	}
	txBytes, err := c.encoder.EncodeTx(ctx, msgs, "")
	if err != nil {
		return nil, errors.WithMessage(err, "encoding cosmos tx")
	}

	res, err := rpcpool.Call(ctx, c.comet, func(ctx context.Context, cc CometClient) (
		*cometrpctypes.ResultBroadcastTx, error) {
		res, err := cc.BroadcastTxSync(ctx, txBytes)
		return res, errors.Wrap(err, "broadcasting tx")
	})
	if err != nil {
		return nil, err
	}
	if res.Code != 0 {
		return nil, pushchain.NewAPIErrSubmissionFailed(nil, res.Hash.String(), res.Code, res.Codespace, res.Log)
	}
	c.logger.WithField("tx", res.Hash.String()).Debug("Broadcast cosmos tx")

	var included *cometrpctypes.ResultTx
	err = c.poll(ctx, func() error {
		tx, err := rpcpool.Call(ctx, c.comet, func(ctx context.Context, cc CometClient) (
			*cometrpctypes.ResultTx, error) {
			tx, err := cc.Tx(ctx, res.Hash, false)
			if err != nil && strings.Contains(err.Error(), "not found") {
				return nil, backoff.Permanent(errors.Wrap(blockchain.ErrTxNotFound, res.Hash.String()))
			}
			return tx, errors.Wrap(err, "reading tx")
		})
		if err != nil {
			return err
		}
		included = tx
		return nil
	})
	if err != nil {
		return nil, err
	}

	receipt := toReceipt(included)
	if receipt.Code != 0 {
		return receipt, pushchain.NewAPIErrSubmissionFailed(nil, receipt.TxHash, receipt.Code, receipt.Codespace,
			receipt.Log)
	}
	return receipt, nil
}

func (c *Client) signerAddress() string {
	if c.encoder == nil {
		return ""
	}
	return c.encoder.SignerAddress()
}

// poll calls fn until it succeeds or the index timeout expires.
func (c *Client) poll(ctx context.Context, fn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, c.indexTimeout)
	defer cancel()
	b := backoff.WithContext(backoff.NewConstantBackOff(c.pollInterval), ctx)
	return errors.Wrap(backoff.Retry(fn, b), "waiting for cosmos tx")
}

func toReceipt(tx *cometrpctypes.ResultTx) *pushchain.Receipt {
	return &pushchain.Receipt{
		TxHash:    tx.Hash.String(),
		Height:    tx.Height,
		Code:      tx.TxResult.Code,
		Codespace: tx.TxResult.Codespace,
		Log:       tx.TxResult.Log,
		GasWanted: tx.TxResult.GasWanted,
		GasUsed:   tx.TxResult.GasUsed,
	}
}
