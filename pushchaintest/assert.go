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

package pushchaintest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/push-protocol/push-chain-sdk"
)

// AssertAPIError tests if the passed error contains expected category, code
// and phrases in the message.
func AssertAPIError(t *testing.T, e pushchain.APIError, categ pushchain.ErrorCategory, code pushchain.ErrorCode,
	msgs ...string) {
	t.Helper()

	require.Error(t, e)
	assert.Equal(t, categ, e.Category())
	assert.Equal(t, code, e.Code())
	for _, msg := range msgs {
		assert.Contains(t, e.Message(), msg)
	}
}

// RequireAPIError tests if err is an APIError with the expected category and
// code, and returns it.
func RequireAPIError(t *testing.T, err error, categ pushchain.ErrorCategory, code pushchain.ErrorCode,
	msgs ...string) pushchain.APIError {
	t.Helper()

	require.Error(t, err)
	apiErr, ok := pushchain.AsAPIError(err)
	require.Truef(t, ok, "error %v is not an api error", err)
	AssertAPIError(t, apiErr, categ, code, msgs...)
	return apiErr
}

// AssertErrInfoUnknownChain tests if additional info field is of
// correct type and has expected values.
func AssertErrInfoUnknownChain(t *testing.T, info interface{}, chain pushchain.Chain) {
	t.Helper()

	addInfo, ok := info.(pushchain.ErrInfoUnknownChain)
	require.True(t, ok)
	assert.Equal(t, string(chain), addInfo.Chain)
}

// AssertErrInfoUnsupportedVM tests if additional info field is of
// correct type and has expected values.
func AssertErrInfoUnsupportedVM(t *testing.T, info interface{}, chain pushchain.Chain, vm pushchain.VM) {
	t.Helper()

	addInfo, ok := info.(pushchain.ErrInfoUnsupportedVM)
	require.True(t, ok)
	assert.Equal(t, string(chain), addInfo.Chain)
	assert.Equal(t, vm.String(), addInfo.VM)
}

// AssertErrInfoFeeLockingUnsupported tests if additional info field is of
// correct type and has expected values.
func AssertErrInfoFeeLockingUnsupported(t *testing.T, info interface{}, chain pushchain.Chain) {
	t.Helper()

	addInfo, ok := info.(pushchain.ErrInfoFeeLockingUnsupported)
	require.True(t, ok)
	assert.Equal(t, string(chain), addInfo.Chain)
}

// AssertErrInfoNetworkMismatch tests if additional info field is of
// correct type and has expected values.
func AssertErrInfoNetworkMismatch(t *testing.T, info interface{}, origin, destination pushchain.Chain) {
	t.Helper()

	addInfo, ok := info.(pushchain.ErrInfoNetworkMismatch)
	require.True(t, ok)
	assert.Equal(t, string(origin), addInfo.Origin)
	assert.Equal(t, string(destination), addInfo.Destination)
}

// AssertErrInfoSigningCapabilityMissing tests if additional info field is of
// correct type and has expected values.
func AssertErrInfoSigningCapabilityMissing(t *testing.T, info interface{}, account pushchain.UniversalAccount,
	capability string) {
	t.Helper()

	addInfo, ok := info.(pushchain.ErrInfoSigningCapabilityMissing)
	require.True(t, ok)
	assert.Equal(t, account.String(), addInfo.Account)
	assert.Equal(t, capability, addInfo.Capability)
}

// AssertErrInfoDeploymentRequiresFeeLock tests if additional info field is of
// correct type and has expected values.
func AssertErrInfoDeploymentRequiresFeeLock(t *testing.T, info interface{}, executor string) {
	t.Helper()

	addInfo, ok := info.(pushchain.ErrInfoDeploymentRequiresFeeLock)
	require.True(t, ok)
	assert.Equal(t, executor, addInfo.ExecutorAddress)
}

// AssertErrInfoStaleFeeLockReference tests if additional info field is of
// correct type and has expected values.
func AssertErrInfoStaleFeeLockReference(t *testing.T, info interface{}, chain pushchain.Chain, txRef string) {
	t.Helper()

	addInfo, ok := info.(pushchain.ErrInfoStaleFeeLockReference)
	require.True(t, ok)
	assert.Equal(t, string(chain), addInfo.Chain)
	assert.Equal(t, txRef, addInfo.TxRef)
}

// AssertErrInfoInvalidArgument tests if additional info field is of
// correct type and has expected values.
func AssertErrInfoInvalidArgument(t *testing.T, info interface{}, name pushchain.ArgumentName, value string) {
	t.Helper()

	addInfo, ok := info.(pushchain.ErrInfoInvalidArgument)
	require.True(t, ok)
	assert.Equal(t, string(name), addInfo.Name)
	assert.Equal(t, value, addInfo.Value)
	t.Log("requirement:", addInfo.Requirement)
}

// AssertErrInfoInvalidConfig tests if additional info field is of
// correct type and has expected values.
func AssertErrInfoInvalidConfig(t *testing.T, info interface{}, name, value string) {
	t.Helper()

	addInfo, ok := info.(pushchain.ErrInfoInvalidConfig)
	require.True(t, ok)
	assert.Equal(t, name, addInfo.Name)
	assert.Equal(t, value, addInfo.Value)
}

// AssertErrInfoRPCUnavailable tests if additional info field is of
// correct type and has expected values.
func AssertErrInfoRPCUnavailable(t *testing.T, info interface{}, chain string, endpoints []string) {
	t.Helper()

	addInfo, ok := info.(pushchain.ErrInfoRPCUnavailable)
	require.True(t, ok)
	assert.Equal(t, chain, addInfo.Chain)
	assert.Equal(t, endpoints, addInfo.Endpoints)
}

// AssertErrInfoLockTimeout tests if additional info field is of
// correct type and has expected values.
func AssertErrInfoLockTimeout(t *testing.T, info interface{}, chain pushchain.Chain, txRef, timeout string) {
	t.Helper()

	addInfo, ok := info.(pushchain.ErrInfoLockTimeout)
	require.True(t, ok)
	assert.Equal(t, string(chain), addInfo.Chain)
	assert.Equal(t, txRef, addInfo.TxRef)
	assert.Equal(t, timeout, addInfo.Timeout)
}

// AssertErrInfoSubmissionFailed tests if additional info field is of
// correct type and has expected values.
func AssertErrInfoSubmissionFailed(t *testing.T, info interface{}, txHash string, code uint32,
	codespace, log string) {
	t.Helper()

	addInfo, ok := info.(pushchain.ErrInfoSubmissionFailed)
	require.True(t, ok)
	assert.Equal(t, txHash, addInfo.TxHash)
	assert.Equal(t, code, addInfo.Code)
	assert.Equal(t, codespace, addInfo.Codespace)
	assert.Equal(t, log, addInfo.Log)
}
