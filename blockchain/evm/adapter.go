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
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/push-protocol/push-chain-sdk"
)

// FeeLockerABI is the part of the fee locker contract used to lock fees.
const FeeLockerABI = `[{"inputs":[{"internalType":"bytes32","name":"_transactionHash","type":"bytes32"}],` +
	`"name":"addFunds","outputs":[],"stateMutability":"payable","type":"function"}]`

var feeLockerABI = mustParseABI(FeeLockerABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// Adapter implements pushchain.ChainAdapter for EVM origin chains.
type Adapter struct {
	desc   pushchain.ChainDescriptor
	client *Client
}

// NewAdapter returns an adapter for the chain that uses the client.
func NewAdapter(desc pushchain.ChainDescriptor, client *Client) *Adapter {
	return &Adapter{desc: desc, client: client}
}

// VM returns pushchain.EVM.
func (a *Adapter) VM() pushchain.VM {
	return pushchain.EVM
}

// Client returns the underlying client.
func (a *Adapter) Client() *Client {
	return a.client
}

// NormalizeOwnerKey returns the 20 address bytes of the account.
func (a *Adapter) NormalizeOwnerKey(address string) ([]byte, error) {
	return NormalizeOwnerKey(address)
}

// NormalizeOwnerKey returns the 20 bytes of a hex encoded EVM address.
func NormalizeOwnerKey(address string) ([]byte, error) {
	if !common.IsHexAddress(address) {
		return nil, pushchain.NewAPIErrInvalidArgument(errors.New("not a hex address"),
			pushchain.ArgumentName("address"), address, "20 byte hex address")
	}
	return common.HexToAddress(address).Bytes(), nil
}

// LockFee calls addFunds on the fee locker with the execution hash, sending
// the amount as value.
func (a *Adapter) LockFee(ctx context.Context, req pushchain.LockFeeRequest) (string, error) {
	if !a.desc.HasFeeLocker() {
		return "", pushchain.NewAPIErrFeeLockingUnsupported(a.desc.Chain)
	}
	locker := common.HexToAddress(a.desc.FeeLocker)
	txHash, err := a.client.WriteContract(ctx, req.Signer, locker, feeLockerABI, "addFunds", req.Amount,
		[32]byte(req.ExecutionHash))
	if err != nil {
		return "", err
	}
	return txHash.Hex(), nil
}

// WaitForConfirmation waits until the tx has the given number of
// confirmations.
func (a *Adapter) WaitForConfirmation(ctx context.Context, txRef string, confirmations uint64,
	timeout time.Duration) error {
	txHash, err := parseTxHash(txRef)
	if err != nil {
		return err
	}
	return a.client.WaitForConfirmations(ctx, txHash, confirmations, timeout)
}

// VerifyLock returns nil if the tx referenced by txRef succeeded.
func (a *Adapter) VerifyLock(ctx context.Context, txRef string) error {
	txHash, err := parseTxHash(txRef)
	if err != nil {
		return err
	}
	return a.client.TransactionStatus(ctx, txHash)
}

// Sign signs the payload as EIP-712 typed data.
func (a *Adapter) Sign(ctx context.Context, req pushchain.SignRequest) ([]byte, error) {
	s, ok := req.Signer.(pushchain.TypedDataSigner)
	if !ok {
		return nil, pushchain.NewAPIErrSigningCapabilityMissing(req.Signer.Account(),
			pushchain.CapabilitySignTypedData)
	}
	sig, err := s.SignTypedData(ctx, req.TypedData)
	return sig, errors.WithMessage(err, "signing typed data")
}

func parseTxHash(txRef string) (common.Hash, error) {
	b, err := hexutil.Decode(txRef)
	if err != nil || len(b) != common.HashLength {
		if err == nil {
			err = errors.New("wrong length")
		}
		return common.Hash{}, pushchain.NewAPIErrInvalidArgument(err, pushchain.ArgumentName("txRef"), txRef,
			"32 byte hex tx hash")
	}
	return common.BytesToHash(b), nil
}
