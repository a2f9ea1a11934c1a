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

package pushchain

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// Chain is the CAIP-2 identifier (namespace:reference) of a blockchain.
type Chain string

// Supported chains.
const (
	PushMainnet      Chain = "eip155:9"
	PushTestnetDonut Chain = "eip155:42101"
	PushLocalnet     Chain = "eip155:9000"

	EthereumMainnet Chain = "eip155:1"
	EthereumSepolia Chain = "eip155:11155111"

	SolanaMainnet Chain = "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp"
	SolanaTestnet Chain = "solana:4uhcVJyU9pJkvQyS88uRDiswHXSCkY3z"
	SolanaDevnet  Chain = "solana:EtWTRABZaYq6iMfeYKouRu166VU2xqa1"
)

// VM identifies the execution environment family of a chain.
type VM int

// Supported VM families. The numeric values match the vm type enum used on
// Push Chain.
const (
	EVM VM = iota
	SVM
)

// String implements the stringer interface for VM.
func (v VM) String() string {
	switch v {
	case EVM:
		return "EVM"
	case SVM:
		return "SVM"
	}
	return "UNKNOWN_VM"
}

// Namespace returns the CAIP-2 namespace used by chains of this VM family.
func (v VM) Namespace() string {
	switch v {
	case EVM:
		return "eip155"
	case SVM:
		return "solana"
	}
	return ""
}

// Network selects the Push Chain deployment used as destination.
type Network string

// Supported networks.
const (
	Mainnet      Network = "mainnet"
	TestnetDonut Network = "testnet_donut"
	Testnet      Network = "testnet"
	Localnet     Network = "localnet"
)

// PriceFeedKind is the type of an on-chain price feed.
type PriceFeedKind int

// Supported price feeds.
const (
	ChainlinkFeed PriceFeedKind = iota // AggregatorV3 contract on an EVM chain.
	PythFeed                           // PriceUpdateV2 account on an SVM chain.
)

// String implements the stringer interface for PriceFeedKind.
func (k PriceFeedKind) String() string {
	switch k {
	case ChainlinkFeed:
		return "chainlink"
	case PythFeed:
		return "pyth"
	}
	return "unknown"
}

type (
	// PriceFeed locates the USD price feed for the native token of a chain.
	PriceFeed struct {
		Kind    PriceFeedKind
		Chain   Chain  // Chain on which the feed is published.
		Address string // Aggregator contract (chainlink) or price account (pyth).
	}

	// ChainDescriptor holds the static properties of a supported chain.
	ChainDescriptor struct {
		Chain   Chain
		VM      VM
		ChainID string // CAIP-2 reference part of Chain.
		Mainnet bool

		DefaultRPC []string

		// FeeLocker is the address of the fee locker contract (EVM) or program
		// (SVM). Empty if fee locking is not supported on this chain.
		FeeLocker string
		// Implementation is the UEA implementation the executor account of a
		// user from this chain is a proxy of. Empty if not deployed yet.
		Implementation common.Address

		NativeSymbol   string
		NativeDecimals uint8

		Confirmations       uint64
		ConfirmationTimeout time.Duration

		PriceFeed *PriceFeed
	}

	// PushChainInfo holds the properties of a Push Chain deployment in addition
	// to its ChainDescriptor.
	PushChainInfo struct {
		ChainDescriptor

		EVMChainID    *big.Int
		Denom         string
		Prefix        string
		TendermintRPC []string
		Factory       common.Address

		PushDecimals uint8
		USDDecimals  uint8
		// 1 PC (10^PushDecimals units) is worth PushToUSDNumerator/PushToUSDDenominator
		// USD units (10^-USDDecimals USD).
		PushToUSDNumerator   *big.Int
		PushToUSDDenominator *big.Int
	}
)

// HasFeeLocker returns true if fee locking is supported on the chain.
func (d ChainDescriptor) HasFeeLocker() bool {
	return d.FeeLocker != ""
}

// UniversalAccount identifies an account by its chain and its address in the
// chain's native format (hex for EVM, base58 for SVM).
type UniversalAccount struct {
	Chain   Chain
	Address string
}

// String returns the account in CAIP-10 format.
func (a UniversalAccount) String() string {
	return string(a.Chain) + ":" + a.Address
}

//go:generate mockery --name UniversalSigner --output ./internal/mocks

// UniversalSigner is a signer for an account on any supported chain.
//
// Signing capabilities beyond SignMessage are optional and discovered by type
// assertion against TypedDataSigner, TransactionSigner and TransactionSender.
type UniversalSigner interface {
	Account() UniversalAccount
	SignMessage(ctx context.Context, msg []byte) ([]byte, error)
}

// TypedDataSigner signs EIP-712 typed data.
type TypedDataSigner interface {
	SignTypedData(ctx context.Context, data apitypes.TypedData) ([]byte, error)
}

// TransactionSigner signs a serialized unsigned transaction and returns the
// serialized signed transaction.
type TransactionSigner interface {
	SignTransaction(ctx context.Context, unsignedTx []byte) ([]byte, error)
}

// TransactionSender signs a serialized transaction, submits it and returns
// the transaction signature.
type TransactionSender interface {
	SignAndSendTransaction(ctx context.Context, unsignedTx []byte) ([]byte, error)
}

// SignatureType tells the executor account how the payload is authorized.
type SignatureType uint8

// Supported signature types.
const (
	SignedVerification SignatureType = iota
	UniversalTxVerification
)

// UniversalPayload is the intent executed by the executor account.
type UniversalPayload struct {
	To                   common.Address
	Value                *uint256.Int
	Data                 []byte
	GasLimit             *uint256.Int
	MaxFeePerGas         *uint256.Int
	MaxPriorityFeePerGas *uint256.Int
	Nonce                *uint256.Int
	Deadline             *uint256.Int
	SigType              SignatureType
}

// ExecuteParams are the caller supplied parameters of an execution.
// Optional fields are nil when unset.
type ExecuteParams struct {
	To    common.Address
	Value *big.Int
	Data  []byte

	GasLimit             *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	Deadline             *big.Int

	// FeeLockReference is the origin chain tx of an earlier fee lock for the
	// same intent. When set, no new lock is submitted.
	FeeLockReference string
}

// ExecutorAccount is the executor account of a user on Push Chain.
type ExecutorAccount struct {
	Address  common.Address
	Deployed bool
}

// Receipt describes a transaction included on Push Chain.
type Receipt struct {
	TxHash    string
	EVMTxHash string
	Height    int64
	Code      uint32
	Codespace string
	Log       string
	GasWanted int64
	GasUsed   int64
}

// FeeLockRecord is a confirmed fee lock on an origin chain. It can be used
// for exactly one submission.
type FeeLockRecord struct {
	Chain         Chain
	TxRef         string
	NativeAmount  *big.Int
	ExecutionHash common.Hash

	mtx      sync.Mutex
	consumed bool
}

// NewFeeLockRecord returns a fee lock record.
func NewFeeLockRecord(chain Chain, txRef string, amount *big.Int, execHash common.Hash) *FeeLockRecord {
	return &FeeLockRecord{
		Chain:         chain,
		TxRef:         txRef,
		NativeAmount:  amount,
		ExecutionHash: execHash,
	}
}

// Consume marks the record as used and returns its tx reference. It fails if
// the record was already consumed.
func (r *FeeLockRecord) Consume() (string, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if r.consumed {
		return "", errors.Errorf("fee lock %s already consumed", r.TxRef)
	}
	r.consumed = true
	return r.TxRef, nil
}

// Msg is a message in a Push Chain transaction.
type Msg interface {
	TypeURL() string
}

// LockFeeRequest is the input for locking fees on an origin chain.
type LockFeeRequest struct {
	Origin        ChainDescriptor
	Signer        UniversalSigner
	Amount        *big.Int // in native units of the origin chain.
	ExecutionHash common.Hash
}

// SignRequest is the input for authorizing a payload.
type SignRequest struct {
	Signer            UniversalSigner
	Payload           UniversalPayload
	Digest            common.Hash
	TypedData         apitypes.TypedData
	VerifyingContract common.Address
}

//go:generate mockery --name ChainAdapter --output ./internal/mocks

// ChainAdapter groups the VM specific operations on an origin chain.
type ChainAdapter interface {
	VM() VM
	// NormalizeOwnerKey converts an address in native format to the owner key
	// bytes used for executor account derivation.
	NormalizeOwnerKey(address string) ([]byte, error)
	// LockFee submits the fee lock tx and returns its reference.
	LockFee(ctx context.Context, req LockFeeRequest) (string, error)
	// WaitForConfirmation blocks until the tx has the required confirmations
	// or the timeout expires.
	WaitForConfirmation(ctx context.Context, txRef string, confirmations uint64, timeout time.Duration) error
	// VerifyLock checks that a previously submitted fee lock tx succeeded.
	VerifyLock(ctx context.Context, txRef string) error
	// Sign authorizes the payload with the signer's native scheme.
	Sign(ctx context.Context, req SignRequest) ([]byte, error)
}

// SendTxParams are the parameters of a plain EVM tx on Push Chain.
type SendTxParams struct {
	To     common.Address
	Value  *big.Int
	Data   []byte
	Signer UniversalSigner
}

//go:generate mockery --name DestinationClient --output ./internal/mocks

// DestinationClient is the client for Push Chain.
type DestinationClient interface {
	Info() PushChainInfo

	GetBalance(ctx context.Context, addr common.Address) (*big.Int, error)
	GetCode(ctx context.Context, addr common.Address) ([]byte, error)
	GetGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, from, to common.Address, value *big.Int, data []byte) (uint64, error)
	ReadContract(ctx context.Context, addr common.Address, contractABI abi.ABI, method string,
		args ...interface{}) ([]interface{}, error)

	SendTransaction(ctx context.Context, params SendTxParams) (common.Hash, error)
	GetCosmosTx(ctx context.Context, evmTxHash common.Hash) (*Receipt, error)

	CreateDeployMessage(account UniversalAccount, ownerKey []byte, feeLockTxRef string) Msg
	CreateMintMessage(account UniversalAccount, ownerKey []byte, feeLockTxRef string) Msg
	CreateExecuteMessage(account UniversalAccount, ownerKey []byte, p UniversalPayload, signature []byte) Msg
	SignAndBroadcast(ctx context.Context, msgs []Msg) (*Receipt, error)
}

//go:generate mockery --name PriceOracle --output ./internal/mocks

// PriceOracle returns the USD price of the native token of a chain, scaled by
// 10^8.
type PriceOracle interface {
	Price(ctx context.Context, chain Chain) (*big.Int, error)
}

// Config holds the parameters for setting up a Push Chain client.
type Config struct {
	Network     Network
	RPCURLs     map[Chain][]string // Overrides the default RPC endpoints per chain.
	PrintTraces bool

	LogLevel string
	LogFile  string

	GasEstimation   string // "fixed" or "simulate".
	DefaultGasLimit uint64

	ConnTimeout   time.Duration // Timeout for dialing an RPC endpoint.
	RPCRetryDelay time.Duration // Delay between attempts on successive endpoints.
	PriceCacheTTL time.Duration
	MaxPriceAge   time.Duration // Prices published earlier are rejected. Zero uses the oracle default.
}

// APIError represents the error returned by the public operations of this
// module.
//
// Along with the error message, this error type assigns to each error
// an error category that describes how the error should be handled,
// an error code that identifies specific types of error and
// additional info that contains data related to the error.
type APIError interface {
	Category() ErrorCategory
	Code() ErrorCode
	Message() string
	AddInfo() interface{}
	// FeeLockReference is the fee lock that funds the failed execution, if
	// any. Retrying with it avoids locking fees again.
	FeeLockReference() string
	Error() string
}

// ErrorCategory represents the category of the error, which describes how the
// error should be handled by the caller.
type ErrorCategory int

const (
	// ClientError is caused by the errors in the request from the caller. It
	// could be errors in arguments, configuration or signer capabilities.
	//
	// To resolve this, the caller should fix the request and retry.
	ClientError ErrorCategory = iota

	// ChainError is caused by an external chain being unreachable or
	// rejecting a transaction.
	//
	// To resolve this, the caller should inspect the chain response attached
	// to the error, and retry once the cause is resolved.
	ChainError

	// ProtocolFatalError is caused when the execution aborts after a state
	// changing operation on an origin chain, so that funds could be locked
	// without the intent being executed.
	//
	// To resolve this, the caller should resume using the tx reference in
	// the additional info.
	ProtocolFatalError

	// InternalError is caused due to unintended behavior in this module.
	InternalError
)

// String implements the stringer interface for ErrorCategory.
func (c ErrorCategory) String() string {
	return [...]string{
		"Client",
		"Chain",
		"Protocol Fatal",
		"Internal",
	}[c]
}

// ErrorCode is a numeric code assigned to identify the specific type of error.
// The type of the additional info is fixed for each error code.
type ErrorCode int

// Error code definitions.
const (
	ErrUnknownChain              ErrorCode = 201
	ErrUnsupportedVM             ErrorCode = 202
	ErrFeeLockingUnsupported     ErrorCode = 203
	ErrNetworkMismatch           ErrorCode = 204
	ErrSigningCapabilityMissing  ErrorCode = 205
	ErrDeploymentRequiresFeeLock ErrorCode = 206
	ErrStaleFeeLockReference     ErrorCode = 207
	ErrInvalidArgument           ErrorCode = 208
	ErrInvalidConfig             ErrorCode = 209
	ErrRPCUnavailable            ErrorCode = 301
	ErrLockTimeout               ErrorCode = 302
	ErrSubmissionFailed          ErrorCode = 303
	ErrUnknownInternal           ErrorCode = 401
)

type (
	// ErrInfoUnknownChain represents the fields in the additional info for
	// ErrUnknownChain.
	ErrInfoUnknownChain struct {
		Chain string
	}

	// ErrInfoUnsupportedVM represents the fields in the additional info for
	// ErrUnsupportedVM.
	ErrInfoUnsupportedVM struct {
		Chain string
		VM    string
	}

	// ErrInfoFeeLockingUnsupported represents the fields in the additional
	// info for ErrFeeLockingUnsupported.
	ErrInfoFeeLockingUnsupported struct {
		Chain string
	}

	// ErrInfoNetworkMismatch represents the fields in the additional info for
	// ErrNetworkMismatch.
	ErrInfoNetworkMismatch struct {
		Origin      string
		Destination string
	}

	// ErrInfoSigningCapabilityMissing represents the fields in the additional
	// info for ErrSigningCapabilityMissing.
	ErrInfoSigningCapabilityMissing struct {
		Account    string
		Capability string
	}

	// ErrInfoDeploymentRequiresFeeLock represents the fields in the additional
	// info for ErrDeploymentRequiresFeeLock.
	ErrInfoDeploymentRequiresFeeLock struct {
		ExecutorAddress string
	}

	// ErrInfoStaleFeeLockReference represents the fields in the additional
	// info for ErrStaleFeeLockReference.
	ErrInfoStaleFeeLockReference struct {
		Chain string
		TxRef string
	}

	// ErrInfoInvalidArgument represents the fields in the additional info for
	// ErrInvalidArgument.
	ErrInfoInvalidArgument struct {
		Name        string
		Value       string
		Requirement string
	}

	// ErrInfoInvalidConfig represents the fields in the additional info for
	// ErrInvalidConfig.
	ErrInfoInvalidConfig struct {
		Name  string
		Value string
	}

	// ErrInfoRPCUnavailable represents the fields in the additional info for
	// ErrRPCUnavailable.
	ErrInfoRPCUnavailable struct {
		Chain     string
		Endpoints []string
	}

	// ErrInfoLockTimeout represents the fields in the additional info for
	// ErrLockTimeout.
	ErrInfoLockTimeout struct {
		Chain   string
		TxRef   string
		Timeout string
	}

	// ErrInfoSubmissionFailed represents the fields in the additional info for
	// ErrSubmissionFailed.
	ErrInfoSubmissionFailed struct {
		TxHash    string
		Code      uint32
		Codespace string
		Log       string
	}
)
