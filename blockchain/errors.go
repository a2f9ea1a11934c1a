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

// Package blockchain holds the types shared by the origin chain clients in
// its sub packages.
package blockchain

import (
	"fmt"

	"github.com/pkg/errors"
)

// Contract names used in errors.
const (
	FeeLocker       = "fee locker"
	Factory         = "factory"
	ExecutorAccount = "executor account"
	PriceFeed       = "price feed"
)

// InvalidContractError indicates that a contract on the blockchain could not
// be used, for example because there is no code at its address.
type InvalidContractError struct {
	Name    string
	Address string
	err     error
}

// Error implements error interface.
func (e InvalidContractError) Error() string {
	return fmt.Sprintf("invalid %s contract at address %s: %v", e.Name, e.Address, e.err)
}

// Unwrap returns the original error.
func (e InvalidContractError) Unwrap() error {
	return e.err
}

// NewInvalidContractError constructs and returns an InvalidContractError.
func NewInvalidContractError(name string, address string, err error) error {
	return errors.WithStack(InvalidContractError{
		Name:    name,
		Address: address,
		err:     err,
	})
}

// TxFailedError indicates that a transaction was included but did not
// succeed.
type TxFailedError struct {
	TxRef  string
	Reason string
}

// Error implements error interface.
func (e TxFailedError) Error() string {
	return fmt.Sprintf("tx %s failed: %s", e.TxRef, e.Reason)
}

// NewTxFailedError constructs and returns a TxFailedError.
func NewTxFailedError(txRef, reason string) error {
	return errors.WithStack(TxFailedError{TxRef: txRef, Reason: reason})
}

// ErrTxNotFound is returned when a transaction is not known to the chain.
var ErrTxNotFound = errors.New("tx not found")
