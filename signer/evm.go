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

// Package signer provides local implementations of pushchain.UniversalSigner
// for EVM and SVM accounts.
package signer

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"

	"github.com/push-protocol/push-chain-sdk"
)

// Scrypt parameters for keystores. Weak parameters unlock faster and must
// only be used in tests.
const (
	StandardScryptN = keystore.StandardScryptN
	StandardScryptP = keystore.StandardScryptP
	WeakScryptN     = 2
	WeakScryptP     = 1
)

const evmNamespace = "eip155:"

// EVMSigner signs with a secp256k1 key held in memory.
type EVMSigner struct {
	key     *ecdsa.PrivateKey
	addr    common.Address
	chain   pushchain.Chain
	chainID *big.Int
}

// NewEVMSigner returns a signer for the key on the given EVM chain.
func NewEVMSigner(key *ecdsa.PrivateKey, chain pushchain.Chain) (*EVMSigner, error) {
	ref, ok := strings.CutPrefix(string(chain), evmNamespace)
	if !ok {
		return nil, pushchain.NewAPIErrInvalidArgument(errors.New("not an evm chain"), "chain", string(chain),
			"eip155 chain")
	}
	chainID, ok := new(big.Int).SetString(ref, 10)
	if !ok {
		return nil, pushchain.NewAPIErrUnknownChain(chain)
	}
	return &EVMSigner{
		key:     key,
		addr:    crypto.PubkeyToAddress(key.PublicKey),
		chain:   chain,
		chainID: chainID,
	}, nil
}

// NewEVMSignerFromHex is like NewEVMSigner for a hex encoded key.
func NewEVMSignerFromHex(hexKey string, chain pushchain.Chain) (*EVMSigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, pushchain.NewAPIErrInvalidArgument(errors.Wrap(err, "parsing key"), "privateKey", "***",
			"32 byte hex key")
	}
	return NewEVMSigner(key, chain)
}

// NewEVMSignerFromKeystore unlocks the key of the address in the keystore
// directory and returns a signer for it.
func NewEVMSignerFromKeystore(keystorePath, address, password string, chain pushchain.Chain) (*EVMSigner, error) {
	if _, err := os.Stat(keystorePath); os.IsNotExist(err) {
		return nil, errors.Wrap(err, "cannot find keystore directory")
	}
	if !common.IsHexAddress(address) {
		return nil, pushchain.NewAPIErrInvalidArgument(errors.New("not a hex address"), "address", address,
			"20 byte hex address")
	}
	ks := keystore.NewKeyStore(keystorePath, StandardScryptN, StandardScryptP)
	acc, err := ks.Find(accounts.Account{Address: common.HexToAddress(address)})
	if err != nil {
		return nil, errors.Wrap(err, "finding account in keystore")
	}
	keyJSON, err := os.ReadFile(acc.URL.Path)
	if err != nil {
		return nil, errors.Wrap(err, "reading key file")
	}
	key, err := keystore.DecryptKey(keyJSON, password)
	if err != nil {
		return nil, errors.Wrap(err, "unlocking account")
	}
	return NewEVMSigner(key.PrivateKey, chain)
}

// Account returns the universal account of the signer.
func (s *EVMSigner) Account() pushchain.UniversalAccount {
	return pushchain.UniversalAccount{Chain: s.chain, Address: s.addr.Hex()}
}

// Address returns the address of the signer.
func (s *EVMSigner) Address() common.Address {
	return s.addr
}

// SignMessage signs the msg as a personal message (EIP-191).
func (s *EVMSigner) SignMessage(_ context.Context, msg []byte) ([]byte, error) {
	return s.sign(accounts.TextHash(msg))
}

// SignTypedData signs the EIP-712 hash of the typed data.
func (s *EVMSigner) SignTypedData(_ context.Context, data apitypes.TypedData) ([]byte, error) {
	hash, _, err := apitypes.TypedDataAndHash(data)
	if err != nil {
		return nil, errors.Wrap(err, "hashing typed data")
	}
	return s.sign(hash)
}

// SignTransaction signs the binary encoded tx and returns the encoded signed
// tx.
func (s *EVMSigner) SignTransaction(_ context.Context, unsignedTx []byte) ([]byte, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(unsignedTx); err != nil {
		return nil, errors.Wrap(err, "decoding tx")
	}
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(s.chainID), s.key)
	if err != nil {
		return nil, errors.Wrap(err, "signing tx")
	}
	enc, err := signed.MarshalBinary()
	return enc, errors.Wrap(err, "encoding signed tx")
}

// sign returns a 65 byte signature with the recovery id in {27, 28}.
func (s *EVMSigner) sign(hash []byte) ([]byte, error) {
	sig, err := crypto.Sign(hash, s.key)
	if err != nil {
		return nil, errors.Wrap(err, "signing")
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}
