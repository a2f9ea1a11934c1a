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

// Package account derives the address of the executor account (UEA) that
// represents a universal account on Push Chain.
package account

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/blockchain"
	"github.com/push-protocol/push-chain-sdk/blockchain/origin"
	"github.com/push-protocol/push-chain-sdk/chain"
)

// FactoryABI is the part of the UEA factory used to compute addresses.
const FactoryABI = `[{"inputs":[{"components":[{"internalType":"string","name":"chain","type":"string"},` +
	`{"internalType":"bytes","name":"owner","type":"bytes"}],"internalType":"struct UniversalAccountId",` +
	`"name":"_id","type":"tuple"}],"name":"computeUEA","outputs":[{"internalType":"address","name":"",` +
	`"type":"address"}],"stateMutability":"view","type":"function"}]`

// ExecutorABI is the part of the executor account used to read its nonce.
const ExecutorABI = `[{"inputs":[],"name":"nonce","outputs":[{"internalType":"uint256","name":"",` +
	`"type":"uint256"}],"stateMutability":"view","type":"function"}]`

// EIP-1167 minimal proxy creation code, split around the implementation
// address.
var (
	proxyPrefix = hexutil.MustDecode("0x3d602d80600a3d3981f3363d3d373d3d3d363d73")
	proxySuffix = hexutil.MustDecode("0x5af43d82803e903d91602b57fd5bf3")
)

var (
	factoryABI  = mustParseABI(FactoryABI)
	executorABI = mustParseABI(ExecutorABI)

	idArgs = abi.Arguments{{Type: mustNewType("tuple", "struct UniversalAccountId", []abi.ArgumentMarshaling{
		{Name: "chain", Type: "string"},
		{Name: "owner", Type: "bytes"},
	})}}
)

// ID identifies a universal account to the factory: the chain it lives on
// and its normalized owner key.
type ID struct {
	Chain string
	Owner []byte
}

// Reader is the part of the destination client needed to read factory and
// executor account state.
type Reader interface {
	GetCode(ctx context.Context, addr common.Address) ([]byte, error)
	ReadContract(ctx context.Context, addr common.Address, contractABI abi.ABI, method string,
		args ...interface{}) ([]interface{}, error)
}

// Salt returns the CREATE2 salt of the account: keccak256 of the ABI
// encoded (string chain, bytes owner) tuple.
func Salt(c pushchain.Chain, ownerKey []byte) common.Hash {
	enc, err := idArgs.Pack(ID{Chain: string(c), Owner: ownerKey})
	if err != nil {
		panic(err)
	}
	return crypto.Keccak256Hash(enc)
}

// ProxyInitCode returns the EIP-1167 creation code of a clone of impl.
func ProxyInitCode(impl common.Address) []byte {
	code := make([]byte, 0, len(proxyPrefix)+common.AddressLength+len(proxySuffix))
	code = append(code, proxyPrefix...)
	code = append(code, impl.Bytes()...)
	return append(code, proxySuffix...)
}

// Address returns the CREATE2 address at which factory deploys the clone of
// impl for the account.
func Address(factory, impl common.Address, c pushchain.Chain, ownerKey []byte) common.Address {
	return crypto.CreateAddress2(factory, Salt(c, ownerKey), crypto.Keccak256(ProxyInitCode(impl)))
}

// Deriver computes executor account addresses for one Push Chain
// deployment.
type Deriver struct {
	push   pushchain.PushChainInfo
	reader Reader
}

// NewDeriver returns a deriver for the Push Chain deployment. reader is only
// used by the on-chain methods and may be nil otherwise.
func NewDeriver(push pushchain.PushChainInfo, reader Reader) *Deriver {
	return &Deriver{push: push, reader: reader}
}

// Offchain computes the executor account address of acc without network
// access. Accounts on Push Chain are their own executor.
func (d *Deriver) Offchain(acc pushchain.UniversalAccount) (common.Address, error) {
	if chain.IsPushChain(acc.Chain) {
		return pushAddress(acc)
	}
	if err := d.checkFactory(); err != nil {
		return common.Address{}, err
	}
	desc, ownerKey, err := ownerKeyOf(acc)
	if err != nil {
		return common.Address{}, err
	}
	if desc.Implementation == (common.Address{}) {
		return common.Address{}, pushchain.NewAPIErrInvalidConfig(errors.New("no implementation address"),
			"implementation", string(acc.Chain))
	}
	return Address(d.push.Factory, desc.Implementation, acc.Chain, ownerKey), nil
}

// Onchain asks the factory for the executor account address of acc and
// checks whether it is deployed. Accounts on Push Chain are their own,
// already deployed, executor.
func (d *Deriver) Onchain(ctx context.Context, acc pushchain.UniversalAccount) (pushchain.ExecutorAccount, error) {
	if chain.IsPushChain(acc.Chain) {
		addr, err := pushAddress(acc)
		return pushchain.ExecutorAccount{Address: addr, Deployed: err == nil}, err
	}
	if err := d.checkFactory(); err != nil {
		return pushchain.ExecutorAccount{}, err
	}
	_, ownerKey, err := ownerKeyOf(acc)
	if err != nil {
		return pushchain.ExecutorAccount{}, err
	}

	out, err := d.reader.ReadContract(ctx, d.push.Factory, factoryABI, "computeUEA",
		ID{Chain: string(acc.Chain), Owner: ownerKey})
	if err != nil {
		return pushchain.ExecutorAccount{}, errors.WithMessage(err, "computing executor account")
	}
	addr, ok := firstAs[common.Address](out)
	if !ok {
		return pushchain.ExecutorAccount{}, blockchain.NewInvalidContractError(blockchain.Factory,
			d.push.Factory.Hex(), errors.New("unexpected computeUEA result"))
	}

	code, err := d.reader.GetCode(ctx, addr)
	if err != nil {
		return pushchain.ExecutorAccount{}, errors.WithMessage(err, "reading executor account code")
	}
	return pushchain.ExecutorAccount{Address: addr, Deployed: len(code) > 0}, nil
}

// Nonce returns the nonce of a deployed executor account.
func (d *Deriver) Nonce(ctx context.Context, executor common.Address) (*big.Int, error) {
	out, err := d.reader.ReadContract(ctx, executor, executorABI, "nonce")
	if err != nil {
		return nil, errors.WithMessage(err, "reading executor account nonce")
	}
	nonce, ok := firstAs[*big.Int](out)
	if !ok {
		return nil, blockchain.NewInvalidContractError(blockchain.ExecutorAccount, executor.Hex(),
			errors.New("unexpected nonce result"))
	}
	return nonce, nil
}

func (d *Deriver) checkFactory() error {
	if d.push.Factory == (common.Address{}) {
		return pushchain.NewAPIErrInvalidConfig(errors.New("no factory address"), "factory", string(d.push.Chain))
	}
	return nil
}

func ownerKeyOf(acc pushchain.UniversalAccount) (pushchain.ChainDescriptor, []byte, error) {
	desc, err := chain.Describe(acc.Chain)
	if err != nil {
		return desc, nil, err
	}
	key, err := origin.NormalizeOwnerKey(desc.VM, acc.Chain, acc.Address)
	return desc, key, err
}

func pushAddress(acc pushchain.UniversalAccount) (common.Address, error) {
	if !common.IsHexAddress(acc.Address) {
		return common.Address{}, pushchain.NewAPIErrInvalidArgument(errors.New("not a hex address"),
			"address", acc.Address, "20 byte hex address")
	}
	return common.HexToAddress(acc.Address), nil
}

func firstAs[T any](out []interface{}) (T, bool) {
	var zero T
	if len(out) == 0 {
		return zero, false
	}
	v, ok := out[0].(T)
	return v, ok
}

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

func mustNewType(t, internalType string, components []abi.ArgumentMarshaling) abi.Type {
	typ, err := abi.NewType(t, internalType, components)
	if err != nil {
		panic(err)
	}
	return typ
}
