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
	"bytes"
	"context"
	"encoding/binary"
	"math/big"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/chain"
)

// lockerSeed is the seed of the program derived address holding the locked
// funds.
const lockerSeed = "locker"

// NormalizeOwnerKey returns the 32 bytes of a base58 encoded public key.
func NormalizeOwnerKey(address string) ([]byte, error) {
	pk, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, pushchain.NewAPIErrInvalidArgument(err, pushchain.ArgumentName("address"), address,
			"base58 ed25519 public key")
	}
	return pk.Bytes(), nil
}

// Adapter implements pushchain.ChainAdapter for SVM origin chains.
type Adapter struct {
	desc   pushchain.ChainDescriptor
	client *Client
}

// NewAdapter returns an adapter for the chain that uses the client.
func NewAdapter(desc pushchain.ChainDescriptor, client *Client) *Adapter {
	return &Adapter{desc: desc, client: client}
}

// VM returns pushchain.SVM.
func (a *Adapter) VM() pushchain.VM {
	return pushchain.SVM
}

// Client returns the underlying client.
func (a *Adapter) Client() *Client {
	return a.client
}

// NormalizeOwnerKey returns the 32 public key bytes of the account.
func (a *Adapter) NormalizeOwnerKey(address string) ([]byte, error) {
	return NormalizeOwnerKey(address)
}

// LockFee calls add_funds on the fee locker program with the amount in
// lamports and the execution hash. The signer must implement
// pushchain.TransactionSender.
func (a *Adapter) LockFee(ctx context.Context, req pushchain.LockFeeRequest) (string, error) {
	if !a.desc.HasFeeLocker() {
		return "", pushchain.NewAPIErrFeeLockingUnsupported(a.desc.Chain)
	}
	user, err := solana.PublicKeyFromBase58(req.Signer.Account().Address)
	if err != nil {
		return "", pushchain.NewAPIErrInvalidArgument(err, "signer", req.Signer.Account().Address,
			"base58 ed25519 public key")
	}
	if req.Amount == nil || req.Amount.Sign() < 0 || !req.Amount.IsUint64() {
		return "", pushchain.NewAPIErrInvalidArgument(errors.New("out of range"), "amount",
			bigString(req.Amount), "lamports fitting in u64")
	}
	program, err := solana.PublicKeyFromBase58(a.desc.FeeLocker)
	if err != nil {
		return "", pushchain.NewAPIErrInvalidConfig(err, "feeLocker", a.desc.FeeLocker)
	}
	ix, err := NewAddFundsInstruction(program, user, req.Amount.Uint64(), req.ExecutionHash)
	if err != nil {
		return "", err
	}
	sig, err := a.client.WriteInstruction(ctx, req.Signer, ix)
	if err != nil {
		return "", errors.WithMessage(err, "sending add_funds tx")
	}
	return sig.String(), nil
}

// WaitForConfirmation waits until the tx has the given number of
// confirmations.
func (a *Adapter) WaitForConfirmation(ctx context.Context, txRef string, confirmations uint64,
	timeout time.Duration) error {
	sig, err := parseSignature(txRef)
	if err != nil {
		return err
	}
	return a.client.WaitForConfirmations(ctx, sig, confirmations, timeout)
}

// VerifyLock returns nil if the tx referenced by txRef succeeded.
func (a *Adapter) VerifyLock(ctx context.Context, txRef string) error {
	sig, err := parseSignature(txRef)
	if err != nil {
		return err
	}
	return a.client.TransactionStatus(ctx, sig)
}

// Sign signs the raw 32 byte digest with the signer key.
func (a *Adapter) Sign(ctx context.Context, req pushchain.SignRequest) ([]byte, error) {
	sig, err := req.Signer.SignMessage(ctx, req.Digest.Bytes())
	return sig, errors.WithMessage(err, "signing digest")
}

// LockerAddress returns the program derived address of the fee locker
// account.
func LockerAddress(program solana.PublicKey) (solana.PublicKey, error) {
	pda, _, err := solana.FindProgramAddress([][]byte{[]byte(lockerSeed)}, program)
	return pda, errors.Wrap(err, "deriving locker address")
}

// AddFundsInstruction is the add_funds instruction of the fee locker
// program.
type AddFundsInstruction struct {
	program  solana.PublicKey
	accounts []*solana.AccountMeta
	Amount   uint64
	TxHash   [32]byte
}

// NewAddFundsInstruction returns an add_funds instruction locking amount
// lamports from user for the execution hash.
func NewAddFundsInstruction(program, user solana.PublicKey, amount uint64, execHash [32]byte) (
	*AddFundsInstruction, error) {
	locker, err := LockerAddress(program)
	if err != nil {
		return nil, err
	}
	priceUpdate, err := solana.PublicKeyFromBase58(chain.SolanaPriceUpdateAccount)
	if err != nil {
		return nil, errors.Wrap(err, "parsing price update account")
	}
	return &AddFundsInstruction{
		program: program,
		accounts: []*solana.AccountMeta{
			solana.Meta(locker).WRITE(),
			solana.Meta(user).WRITE().SIGNER(),
			solana.Meta(priceUpdate),
			solana.Meta(solana.SystemProgramID),
		},
		Amount: amount,
		TxHash: execHash,
	}, nil
}

// ProgramID implements solana.Instruction.
func (ix *AddFundsInstruction) ProgramID() solana.PublicKey {
	return ix.program
}

// Accounts implements solana.Instruction.
func (ix *AddFundsInstruction) Accounts() []*solana.AccountMeta {
	return ix.accounts
}

// Data implements solana.Instruction. It is the anchor discriminator
// followed by the borsh encoded arguments.
func (ix *AddFundsInstruction) Data() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	disc := bin.SighashTypeID(bin.SIGHASH_GLOBAL_NAMESPACE, "add_funds")
	if err := enc.WriteBytes(disc[:], false); err != nil {
		return nil, errors.Wrap(err, "encoding discriminator")
	}
	if err := enc.WriteUint64(ix.Amount, binary.LittleEndian); err != nil {
		return nil, errors.Wrap(err, "encoding amount")
	}
	if err := enc.WriteBytes(ix.TxHash[:], false); err != nil {
		return nil, errors.Wrap(err, "encoding tx hash")
	}
	return buf.Bytes(), nil
}

// UnsignedTx returns the binary encoded tx with the instructions, paid by
// payer. Its signatures are zero placeholders to be replaced by the signer.
func UnsignedTx(ixs []solana.Instruction, blockhash solana.Hash, payer solana.PublicKey) ([]byte, error) {
	tx, err := solana.NewTransaction(ixs, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, errors.Wrap(err, "building tx")
	}
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)
	raw, err := tx.MarshalBinary()
	return raw, errors.Wrap(err, "encoding tx")
}

func parseSignature(txRef string) (solana.Signature, error) {
	sig, err := solana.SignatureFromBase58(txRef)
	if err != nil {
		return solana.Signature{}, pushchain.NewAPIErrInvalidArgument(err, pushchain.ArgumentName("txRef"), txRef,
			"base58 tx signature")
	}
	return sig, nil
}

func bigString(v *big.Int) string {
	if v == nil {
		return "<nil>"
	}
	return v.String()
}
