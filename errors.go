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
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// apiError is the implementation of APIError.
//
// It implements Cause() and Unwrap() methods that return the underlying
// error, which can further be unwrapped, inspected.
//
// It also implements a custom Formatter, so that the stack trace of
// underlying error is printed when using "%+v" verb.
type apiError struct {
	category ErrorCategory
	code     ErrorCode
	err      error
	addInfo  interface{}

	feeLockRef string
}

// Category returns the error category for this API Error.
func (e apiError) Category() ErrorCategory { return e.category }

// Code returns the error code for this API Error.
func (e apiError) Code() ErrorCode { return e.code }

// Message returns the error message for this API Error.
func (e apiError) Message() string { return e.err.Error() }

// AddInfo returns the additional info for this API Error.
func (e apiError) AddInfo() interface{} {
	return e.addInfo
}

// FeeLockReference returns the fee lock that funded the failed execution.
func (e apiError) FeeLockReference() string {
	return e.feeLockRef
}

// Error implement the error interface for API error.
func (e apiError) Error() string {
	return fmt.Sprintf("%s %d:%v", e.Category(), e.Code(), e.Message())
}

func (e apiError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "%s %d:%+v", e.Category(), e.Code(), e.err)
			return
		}
		fallthrough
	case 's':
		//nolint: errcheck,gosec	// Error of ioString need not be checked.
		io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

func (e apiError) Cause() error { return e.err }

func (e apiError) Unwrap() error { return e.err }

// NewAPIErr returns an APIErr with given parameters.
//
// For most use cases, call the error code specific constructor functions.
func NewAPIErr(category ErrorCategory, code ErrorCode, err error, addInfo interface{}) APIError {
	return apiError{
		category: category,
		code:     code,
		err:      err,
		addInfo:  addInfo,
	}
}

// AsAPIError returns the APIError in the chain of err, if any.
func AsAPIError(err error) (APIError, bool) {
	var apiErr apiError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// WithFeeLockReference returns err as an API error that carries the
// reference of the fee lock funding the execution it aborted.
// Category, code and additional info are retained. Errors that are not API
// errors become ErrUnknownInternal.
func WithFeeLockReference(err error, txRef string) APIError {
	var apiErr apiError
	if !errors.As(err, &apiErr) {
		apiErr, _ = NewAPIErrUnknownInternal(err).(apiError)
	}
	apiErr.err = errors.WithMessagef(apiErr.err, "retry with fee lock reference %s", txRef)
	apiErr.feeLockRef = txRef
	return apiErr
}

// NewAPIErrUnknownChain returns an ErrUnknownChain API Error for the given
// chain.
func NewAPIErrUnknownChain(chain Chain) APIError {
	message := fmt.Sprintf("chain %s is not supported", chain)
	return NewAPIErr(
		ClientError,
		ErrUnknownChain,
		errors.New(message),
		ErrInfoUnknownChain{
			Chain: string(chain),
		},
	)
}

// NewAPIErrUnsupportedVM returns an ErrUnsupportedVM API Error for the given
// chain and VM.
func NewAPIErrUnsupportedVM(chain Chain, vm VM) APIError {
	message := fmt.Sprintf("vm %s of chain %s is not supported", vm, chain)
	return NewAPIErr(
		ClientError,
		ErrUnsupportedVM,
		errors.New(message),
		ErrInfoUnsupportedVM{
			Chain: string(chain),
			VM:    vm.String(),
		},
	)
}

// NewAPIErrFeeLockingUnsupported returns an ErrFeeLockingUnsupported API
// Error for the given chain.
func NewAPIErrFeeLockingUnsupported(chain Chain) APIError {
	message := fmt.Sprintf("fee locking is not supported on chain %s", chain)
	return NewAPIErr(
		ClientError,
		ErrFeeLockingUnsupported,
		errors.New(message),
		ErrInfoFeeLockingUnsupported{
			Chain: string(chain),
		},
	)
}

// NewAPIErrNetworkMismatch returns an ErrNetworkMismatch API Error for the
// given origin and destination chains.
func NewAPIErrNetworkMismatch(origin, destination Chain) APIError {
	message := fmt.Sprintf("signer on %s cannot execute on %s, which belongs to another network",
		origin, destination)
	return NewAPIErr(
		ClientError,
		ErrNetworkMismatch,
		errors.New(message),
		ErrInfoNetworkMismatch{
			Origin:      string(origin),
			Destination: string(destination),
		},
	)
}

// Signer capabilities.
const (
	CapabilitySignTypedData          = "signTypedData"
	CapabilitySignTransaction        = "signTransaction"
	CapabilitySignAndSendTransaction = "signAndSendTransaction"
)

// NewAPIErrSigningCapabilityMissing returns an ErrSigningCapabilityMissing
// API Error for the given account and capability.
func NewAPIErrSigningCapabilityMissing(account UniversalAccount, capability string) APIError {
	message := fmt.Sprintf("signer for %s does not implement %s", account, capability)
	return NewAPIErr(
		ClientError,
		ErrSigningCapabilityMissing,
		errors.New(message),
		ErrInfoSigningCapabilityMissing{
			Account:    account.String(),
			Capability: capability,
		},
	)
}

// NewAPIErrDeploymentRequiresFeeLock returns an ErrDeploymentRequiresFeeLock
// API Error for the given executor account address.
func NewAPIErrDeploymentRequiresFeeLock(executor string) APIError {
	message := fmt.Sprintf("executor account %s is not deployed and no fee lock is available", executor)
	return NewAPIErr(
		ClientError,
		ErrDeploymentRequiresFeeLock,
		errors.New(message),
		ErrInfoDeploymentRequiresFeeLock{
			ExecutorAddress: executor,
		},
	)
}

// NewAPIErrStaleFeeLockReference returns an ErrStaleFeeLockReference API
// Error for the given fee lock tx.
func NewAPIErrStaleFeeLockReference(err error, chain Chain, txRef string) APIError {
	message := fmt.Sprintf("fee lock %s on %s is not usable", txRef, chain)
	return NewAPIErr(
		ClientError,
		ErrStaleFeeLockReference,
		errors.WithMessage(err, message),
		ErrInfoStaleFeeLockReference{
			Chain: string(chain),
			TxRef: txRef,
		},
	)
}

// ArgumentName type is used enumerate valid argument names for use
// InvalidArgument error.
//
// The enumeration of valid constants should be defined in the package using
// the error constructors.
type ArgumentName string

// NewAPIErrInvalidArgument returns an ErrInvalidArgument API Error with the given
// argument name and value.
func NewAPIErrInvalidArgument(err error, name ArgumentName, value, requirement string) APIError {
	message := fmt.Sprintf("invalid value for %s: %s", name, value)
	return NewAPIErr(
		ClientError,
		ErrInvalidArgument,
		errors.WithMessage(err, message),
		ErrInfoInvalidArgument{
			Name:        string(name),
			Value:       value,
			Requirement: requirement,
		},
	)
}

// NewAPIErrInvalidConfig returns an ErrInvalidConfig, API Error with the given
// config name and value.
func NewAPIErrInvalidConfig(err error, name, value string) APIError {
	message := fmt.Sprintf("invalid value for %s: %s", name, value)
	return NewAPIErr(
		ClientError,
		ErrInvalidConfig,
		errors.WithMessage(err, message),
		ErrInfoInvalidConfig{
			Name:  name,
			Value: value,
		},
	)
}

// NewAPIErrRPCUnavailable returns an ErrRPCUnavailable API Error with the
// last error returned by the endpoints of the chain.
func NewAPIErrRPCUnavailable(err error, chain string, endpoints []string) APIError {
	message := fmt.Sprintf("all %d rpc endpoints of %s failed", len(endpoints), chain)
	return NewAPIErr(
		ChainError,
		ErrRPCUnavailable,
		errors.WithMessage(err, message),
		ErrInfoRPCUnavailable{
			Chain:     chain,
			Endpoints: endpoints,
		},
	)
}

// NewAPIErrLockTimeout returns an ErrLockTimeout API Error for the fee lock
// tx that was not confirmed in time.
func NewAPIErrLockTimeout(err error, chain Chain, txRef, timeout string) APIError {
	message := fmt.Sprintf("timed out waiting for fee lock tx %s on %s to be confirmed in %s", txRef, chain, timeout)
	return NewAPIErr(
		ProtocolFatalError,
		ErrLockTimeout,
		errors.WithMessage(err, message),
		ErrInfoLockTimeout{
			Chain:   string(chain),
			TxRef:   txRef,
			Timeout: timeout,
		},
	)
}

// NewAPIErrSubmissionFailed returns an ErrSubmissionFailed API Error with the
// response of Push Chain.
func NewAPIErrSubmissionFailed(err error, txHash string, code uint32, codespace, log string) APIError {
	message := fmt.Sprintf("tx %s rejected with code %d (%s): %s", txHash, code, codespace, log)
	if err == nil {
		err = errors.New(message)
	} else {
		err = errors.WithMessage(err, message)
	}
	return NewAPIErr(
		ChainError,
		ErrSubmissionFailed,
		err,
		ErrInfoSubmissionFailed{
			TxHash:    txHash,
			Code:      code,
			Codespace: codespace,
			Log:       log,
		},
	)
}

// NewAPIErrUnknownInternal returns an ErrUnknownInternal API Error with the given
// error message.
func NewAPIErrUnknownInternal(err error) APIError {
	message := "unknown internal error"
	return NewAPIErr(
		InternalError,
		ErrUnknownInternal,
		errors.WithMessage(err, message),
		nil,
	)
}

// APIErrAsMap returns a map containing entries for the method and each of
// the fields in the api error (except message). The map can be directly passed
// to the logger for logging the data in a structured format.
func APIErrAsMap(method string, err APIError) map[string]interface{} {
	m := map[string]interface{}{
		"method":   method,
		"category": err.Category().String(),
		"code":     err.Code(),
	}
	if ref := err.FeeLockReference(); ref != "" {
		m["feeLockReference"] = ref
	}
	return m
}
