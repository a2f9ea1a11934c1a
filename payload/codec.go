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

package payload

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/holiman/uint256"

	"github.com/push-protocol/push-chain-sdk"
)

// DefaultVersion is the EIP-712 domain version of the executor accounts.
const DefaultVersion = "0.1.0"

const domainType = "EIP712Domain"

// Schema selects the typed-data signature of the payload.
type Schema int

const (
	// SchemaUniversal is the payload signature verified by current executor
	// accounts.
	SchemaUniversal Schema = iota
	// SchemaLegacyCrossChain is the signature used before the sigType field
	// was introduced. Kept to verify hashes produced by older clients.
	SchemaLegacyCrossChain
)

type schemaDef struct {
	primaryType string
	fields      []apitypes.Type
	withSigType bool
	typeHash    common.Hash
}

var (
	domainFields = []apitypes.Type{
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	}
	domainTypeHash = typeHash(domainType, domainFields)

	schemas = map[Schema]schemaDef{
		SchemaUniversal:        newSchemaDef("UniversalPayload", "to", true),
		SchemaLegacyCrossChain: newSchemaDef("CrossChainPayload", "target", false),
	}

	bytes32Ty, _ = abi.NewType("bytes32", "", nil)
	uint256Ty, _ = abi.NewType("uint256", "", nil)
	uint8Ty, _   = abi.NewType("uint8", "", nil)
	addressTy, _ = abi.NewType("address", "", nil)
)

func newSchemaDef(primaryType, toField string, withSigType bool) schemaDef {
	fields := []apitypes.Type{
		{Name: toField, Type: "address"},
		{Name: "value", Type: "uint256"},
		{Name: "data", Type: "bytes"},
		{Name: "gasLimit", Type: "uint256"},
		{Name: "maxFeePerGas", Type: "uint256"},
		{Name: "maxPriorityFeePerGas", Type: "uint256"},
		{Name: "nonce", Type: "uint256"},
		{Name: "deadline", Type: "uint256"},
	}
	if withSigType {
		fields = append(fields, apitypes.Type{Name: "sigType", Type: "uint8"})
	}
	return schemaDef{
		primaryType: primaryType,
		fields:      fields,
		withSigType: withSigType,
		typeHash:    typeHash(primaryType, fields),
	}
}

// TypeString returns the EIP-712 encoded type of the schema.
func (s Schema) TypeString() string {
	def := schemas[s]
	return encodeType(def.primaryType, def.fields)
}

func encodeType(name string, fields []apitypes.Type) string {
	enc := name + "("
	for i, f := range fields {
		if i > 0 {
			enc += ","
		}
		enc += f.Type + " " + f.Name
	}
	return enc + ")"
}

func typeHash(name string, fields []apitypes.Type) common.Hash {
	return crypto.Keccak256Hash([]byte(encodeType(name, fields)))
}

// DomainSeparator returns the EIP-712 domain separator of the executor
// account at verifyingContract.
func DomainSeparator(chainID *big.Int, verifyingContract common.Address, version string) common.Hash {
	args := abi.Arguments{{Type: bytes32Ty}, {Type: bytes32Ty}, {Type: uint256Ty}, {Type: addressTy}}
	enc, err := args.Pack(
		[32]byte(domainTypeHash),
		[32]byte(crypto.Keccak256Hash([]byte(version))),
		bigOrZero(chainID),
		verifyingContract,
	)
	if err != nil {
		// Static types with valid values cannot fail to pack.
		panic(err)
	}
	return crypto.Keccak256Hash(enc)
}

// StructHash returns the EIP-712 hash of the payload under the given schema.
func StructHash(schema Schema, p pushchain.UniversalPayload) common.Hash {
	def := schemas[schema]
	args := abi.Arguments{
		{Type: bytes32Ty}, {Type: addressTy}, {Type: uint256Ty}, {Type: bytes32Ty},
		{Type: uint256Ty}, {Type: uint256Ty}, {Type: uint256Ty}, {Type: uint256Ty}, {Type: uint256Ty},
	}
	values := []interface{}{
		[32]byte(def.typeHash),
		p.To,
		toBig(p.Value),
		[32]byte(crypto.Keccak256Hash(p.Data)),
		toBig(p.GasLimit),
		toBig(p.MaxFeePerGas),
		toBig(p.MaxPriorityFeePerGas),
		toBig(p.Nonce),
		toBig(p.Deadline),
	}
	if def.withSigType {
		args = append(args, abi.Argument{Type: uint8Ty})
		values = append(values, uint8(p.SigType))
	}
	enc, err := args.Pack(values...)
	if err != nil {
		panic(err)
	}
	return crypto.Keccak256Hash(enc)
}

// ComputeExecutionHash returns the digest the user signs to authorize the
// payload on the executor account at verifyingContract.
//
// The function is pure and deterministic: equal inputs always give equal
// digests and changing any input changes the digest.
func ComputeExecutionHash(chainID *big.Int, verifyingContract common.Address, p pushchain.UniversalPayload,
	version string) common.Hash {
	return ComputeExecutionHashWithSchema(SchemaUniversal, chainID, verifyingContract, p, version)
}

// ComputeExecutionHashWithSchema is like ComputeExecutionHash, for the given
// schema.
func ComputeExecutionHashWithSchema(schema Schema, chainID *big.Int, verifyingContract common.Address,
	p pushchain.UniversalPayload, version string) common.Hash {
	ds := DomainSeparator(chainID, verifyingContract, version)
	sh := StructHash(schema, p)
	return crypto.Keccak256Hash([]byte{0x19, 0x01}, ds[:], sh[:])
}

// TypedData returns the payload as EIP-712 typed data, for signers that
// implement eth_signTypedData_v4. Its hash equals ComputeExecutionHash.
func TypedData(chainID *big.Int, verifyingContract common.Address, p pushchain.UniversalPayload,
	version string) apitypes.TypedData {
	def := schemas[SchemaUniversal]
	return apitypes.TypedData{
		Types: apitypes.Types{
			domainType:      domainFields,
			def.primaryType: def.fields,
		},
		PrimaryType: def.primaryType,
		Domain: apitypes.TypedDataDomain{
			Version:           version,
			ChainId:           (*math.HexOrDecimal256)(bigOrZero(chainID)),
			VerifyingContract: verifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"to":                   p.To.Hex(),
			"value":                toBig(p.Value),
			"data":                 common.CopyBytes(p.Data),
			"gasLimit":             toBig(p.GasLimit),
			"maxFeePerGas":         toBig(p.MaxFeePerGas),
			"maxPriorityFeePerGas": toBig(p.MaxPriorityFeePerGas),
			"nonce":                toBig(p.Nonce),
			"deadline":             toBig(p.Deadline),
			"sigType":              big.NewInt(int64(p.SigType)),
		},
	}
}

func toBig(v *uint256.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v.ToBig()
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
