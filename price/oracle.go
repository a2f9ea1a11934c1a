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

// Package price implements pushchain.PriceOracle over on-chain price feeds:
// Chainlink aggregators on EVM chains and Pyth price update accounts on SVM
// chains. Prices are returned in USD with 8 decimals.
package price

import (
	"context"
	"encoding/binary"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pkg/errors"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/chain"
	"github.com/push-protocol/push-chain-sdk/currency"
	"github.com/push-protocol/push-chain-sdk/log"
)

// Decimals of the prices returned by the oracle.
const Decimals uint8 = 8

// DefaultCacheTTL is the time for which a price is reused.
const DefaultCacheTTL = 30 * time.Second

// DefaultMaxPriceAge is the age after which a published price is rejected.
const DefaultMaxPriceAge = 24 * time.Hour

const cacheSize = 64

// AggregatorABI is the part of the Chainlink AggregatorV3Interface read by
// the oracle.
const AggregatorABI = `[
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"latestRoundData","stateMutability":"view","inputs":[],
	 "outputs":[
		{"name":"roundId","type":"uint80"},
		{"name":"answer","type":"int256"},
		{"name":"startedAt","type":"uint256"},
		{"name":"updatedAt","type":"uint256"},
		{"name":"answeredInRound","type":"uint80"}]}
]`

var aggregatorABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(AggregatorABI))
	if err != nil {
		panic(err)
	}
	return parsed
}()

type (
	// ContractReader reads view methods of EVM contracts. It is implemented
	// by evm.Client.
	ContractReader interface {
		ReadContract(ctx context.Context, addr common.Address, contractABI abi.ABI, method string,
			args ...interface{}) ([]interface{}, error)
	}

	// AccountReader reads the data of SVM accounts. It is implemented by
	// svm.Client.
	AccountReader interface {
		AccountData(ctx context.Context, account solana.PublicKey) ([]byte, error)
	}
)

// Oracle implements pushchain.PriceOracle. Readers are registered per chain
// on which feeds are published.
type Oracle struct {
	chainlink map[pushchain.Chain]ContractReader
	pyth      map[pushchain.Chain]AccountReader
	cache     *expirable.LRU[pushchain.Chain, *big.Int]
	maxAge    time.Duration
	logger    log.Logger
}

// NewOracle returns an oracle without readers. Prices are cached for ttl;
// zero disables caching.
func NewOracle(ttl time.Duration) *Oracle {
	o := &Oracle{
		chainlink: make(map[pushchain.Chain]ContractReader),
		pyth:      make(map[pushchain.Chain]AccountReader),
		maxAge:    DefaultMaxPriceAge,
		logger:    log.NewLoggerWithField(log.ComponentKey, "price"),
	}
	if ttl > 0 {
		o.cache = expirable.NewLRU[pushchain.Chain, *big.Int](cacheSize, nil, ttl)
	}
	return o
}

// SetMaxPriceAge sets the age after which a published price is rejected.
// Zero accepts prices of any age.
func (o *Oracle) SetMaxPriceAge(d time.Duration) {
	o.maxAge = d
}

// AddChainlinkReader registers the reader used for Chainlink feeds published
// on the chain.
func (o *Oracle) AddChainlinkReader(c pushchain.Chain, r ContractReader) {
	o.chainlink[c] = r
}

// AddPythReader registers the reader used for Pyth feeds published on the
// chain.
func (o *Oracle) AddPythReader(c pushchain.Chain, r AccountReader) {
	o.pyth[c] = r
}

// Price returns the USD price of the native token of the chain, with 8
// decimals.
func (o *Oracle) Price(ctx context.Context, c pushchain.Chain) (*big.Int, error) {
	if o.cache != nil {
		if p, ok := o.cache.Get(c); ok {
			return new(big.Int).Set(p), nil
		}
	}
	desc, err := chain.Describe(c)
	if err != nil {
		return nil, err
	}
	if desc.PriceFeed == nil {
		return nil, pushchain.NewAPIErrInvalidConfig(errors.New("no price feed"), "priceFeed", string(c))
	}

	var p *big.Int
	switch desc.PriceFeed.Kind {
	case pushchain.ChainlinkFeed:
		p, err = o.chainlinkPrice(ctx, *desc.PriceFeed)
	case pushchain.PythFeed:
		p, err = o.pythPrice(ctx, *desc.PriceFeed)
	default:
		err = errors.Errorf("unknown price feed kind %d", desc.PriceFeed.Kind)
	}
	if err != nil {
		return nil, errors.WithMessage(err, "reading price of "+string(c))
	}
	if p.Sign() <= 0 {
		return nil, errors.Errorf("non positive price %v for %s", p, c)
	}

	o.logger.WithField(log.ChainKey, string(c)).Debugf("Read price %v", p)
	if o.cache != nil {
		o.cache.Add(c, new(big.Int).Set(p))
	}
	return p, nil
}

func (o *Oracle) chainlinkPrice(ctx context.Context, feed pushchain.PriceFeed) (*big.Int, error) {
	r, ok := o.chainlink[feed.Chain]
	if !ok {
		return nil, pushchain.NewAPIErrInvalidConfig(errors.New("no reader for chainlink feed"), "rpcURLs",
			string(feed.Chain))
	}
	addr := common.HexToAddress(feed.Address)

	out, err := r.ReadContract(ctx, addr, aggregatorABI, "decimals")
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, errors.Errorf("decimals returned %d values", len(out))
	}
	decimals, ok := out[0].(uint8)
	if !ok {
		return nil, errors.Errorf("unexpected decimals type %T", out[0])
	}

	out, err = r.ReadContract(ctx, addr, aggregatorABI, "latestRoundData")
	if err != nil {
		return nil, err
	}
	if len(out) != 5 {
		return nil, errors.Errorf("latestRoundData returned %d values", len(out))
	}
	answer, ok := out[1].(*big.Int)
	if !ok {
		return nil, errors.Errorf("unexpected answer type %T", out[1])
	}
	updatedAt, ok := out[3].(*big.Int)
	if !ok || !updatedAt.IsInt64() {
		return nil, errors.Errorf("unexpected updatedAt %v", out[3])
	}
	if err := o.checkAge(updatedAt.Int64()); err != nil {
		return nil, err
	}
	return currency.Rescale(answer, decimals, Decimals), nil
}

// checkAge returns an error if a price published at the unix time is older
// than the max price age.
func (o *Oracle) checkAge(published int64) error {
	if o.maxAge == 0 {
		return nil
	}
	age := time.Since(time.Unix(published, 0))
	if age > o.maxAge {
		return errors.Errorf("stale price published %s ago, max age is %s", age.Round(time.Second), o.maxAge)
	}
	return nil
}

func (o *Oracle) pythPrice(ctx context.Context, feed pushchain.PriceFeed) (*big.Int, error) {
	r, ok := o.pyth[feed.Chain]
	if !ok {
		return nil, pushchain.NewAPIErrInvalidConfig(errors.New("no reader for pyth feed"), "rpcURLs",
			string(feed.Chain))
	}
	account, err := solana.PublicKeyFromBase58(feed.Address)
	if err != nil {
		return nil, pushchain.NewAPIErrInvalidConfig(err, "priceFeed", feed.Address)
	}
	data, err := r.AccountData(ctx, account)
	if err != nil {
		return nil, err
	}
	update, err := DecodePriceUpdate(data)
	if err != nil {
		return nil, err
	}
	if err := o.checkAge(update.PublishTime); err != nil {
		return nil, err
	}
	return update.USD(), nil
}

// PriceUpdate is the price message of a Pyth PriceUpdateV2 account.
type PriceUpdate struct {
	FeedID      [32]byte
	Price       int64
	Conf        uint64
	Exponent    int32
	PublishTime int64
}

// Verification levels of a price update.
const (
	verificationPartial = 0
	verificationFull    = 1
)

// DecodePriceUpdate decodes the data of a PriceUpdateV2 account: an 8 byte
// discriminator, the write authority, the verification level and the price
// message.
func DecodePriceUpdate(data []byte) (PriceUpdate, error) {
	var u PriceUpdate
	dec := bin.NewBorshDecoder(data)
	if _, err := dec.ReadNBytes(8 + solana.PublicKeyLength); err != nil {
		return u, errors.Wrap(err, "decoding price update header")
	}
	level, err := dec.ReadUint8()
	if err != nil {
		return u, errors.Wrap(err, "decoding verification level")
	}
	switch level {
	case verificationPartial:
		if _, err = dec.ReadUint8(); err != nil {
			return u, errors.Wrap(err, "decoding number of signatures")
		}
	case verificationFull:
	default:
		return u, errors.Errorf("unknown verification level %d", level)
	}

	feedID, err := dec.ReadNBytes(32)
	if err != nil {
		return u, errors.Wrap(err, "decoding feed id")
	}
	copy(u.FeedID[:], feedID)
	if u.Price, err = dec.ReadInt64(binary.LittleEndian); err != nil {
		return u, errors.Wrap(err, "decoding price")
	}
	if u.Conf, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return u, errors.Wrap(err, "decoding confidence")
	}
	if u.Exponent, err = dec.ReadInt32(binary.LittleEndian); err != nil {
		return u, errors.Wrap(err, "decoding exponent")
	}
	if u.PublishTime, err = dec.ReadInt64(binary.LittleEndian); err != nil {
		return u, errors.Wrap(err, "decoding publish time")
	}
	return u, nil
}

// USD returns the price with 8 decimals.
func (u PriceUpdate) USD() *big.Int {
	p := big.NewInt(u.Price)
	shift := int64(u.Exponent) + int64(Decimals)
	if shift >= 0 {
		return p.Mul(p, new(big.Int).Exp(big.NewInt(10), big.NewInt(shift), nil))
	}
	return p.Quo(p, new(big.Int).Exp(big.NewInt(10), big.NewInt(-shift), nil))
}
