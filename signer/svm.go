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

package signer

import (
	"context"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"

	"github.com/push-protocol/push-chain-sdk"
)

// SVMSigner signs with an ed25519 key held in memory. If it has an rpc
// client, it can also send transactions.
type SVMSigner struct {
	key    solana.PrivateKey
	chain  pushchain.Chain
	client *rpc.Client
}

// NewSVMSigner returns a signer for the key on the given chain. rpcURL may be
// empty, in which case SignAndSendTransaction is not usable.
func NewSVMSigner(key solana.PrivateKey, chain pushchain.Chain, rpcURL string) *SVMSigner {
	s := &SVMSigner{key: key, chain: chain}
	if rpcURL != "" {
		s.client = rpc.New(rpcURL)
	}
	return s
}

// NewSVMSignerFromBase58 is like NewSVMSigner for a base58 encoded key.
func NewSVMSignerFromBase58(key string, chain pushchain.Chain, rpcURL string) (*SVMSigner, error) {
	pk, err := solana.PrivateKeyFromBase58(key)
	if err != nil {
		return nil, pushchain.NewAPIErrInvalidArgument(errors.Wrap(err, "parsing key"), "privateKey", "***",
			"base58 ed25519 key")
	}
	return NewSVMSigner(pk, chain, rpcURL), nil
}

// Account returns the universal account of the signer.
func (s *SVMSigner) Account() pushchain.UniversalAccount {
	return pushchain.UniversalAccount{Chain: s.chain, Address: s.key.PublicKey().String()}
}

// PublicKey returns the public key of the signer.
func (s *SVMSigner) PublicKey() solana.PublicKey {
	return s.key.PublicKey()
}

// SignMessage returns the 64 byte ed25519 signature of the raw msg.
func (s *SVMSigner) SignMessage(_ context.Context, msg []byte) ([]byte, error) {
	sig, err := s.key.Sign(msg)
	if err != nil {
		return nil, errors.Wrap(err, "signing")
	}
	return sig[:], nil
}

// SignTransaction signs the binary encoded tx and returns the encoded signed
// tx. Placeholder signatures in the input are replaced.
func (s *SVMSigner) SignTransaction(_ context.Context, unsignedTx []byte) ([]byte, error) {
	tx, err := s.signTx(unsignedTx)
	if err != nil {
		return nil, err
	}
	enc, err := tx.MarshalBinary()
	return enc, errors.Wrap(err, "encoding signed tx")
}

// SignAndSendTransaction signs the binary encoded tx, sends it and returns
// the tx signature.
func (s *SVMSigner) SignAndSendTransaction(ctx context.Context, unsignedTx []byte) ([]byte, error) {
	if s.client == nil {
		return nil, errors.New("signer has no rpc endpoint")
	}
	tx, err := s.signTx(unsignedTx)
	if err != nil {
		return nil, err
	}
	sig, err := s.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, errors.Wrap(err, "sending tx")
	}
	return sig[:], nil
}

func (s *SVMSigner) signTx(unsignedTx []byte) (*solana.Transaction, error) {
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(unsignedTx))
	if err != nil {
		return nil, errors.Wrap(err, "decoding tx")
	}
	tx.Signatures = nil
	pub := s.key.PublicKey()
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(pub) {
			return &s.key
		}
		return nil
	})
	return tx, errors.Wrap(err, "signing tx")
}
