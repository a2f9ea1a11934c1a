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

package pushclient

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/push-protocol/push-chain-sdk"
)

// Type URLs of the universal executor messages.
const (
	TypeURLDeployUEA      = "/ue.v1.MsgDeployUEA"
	TypeURLMintPC         = "/ue.v1.MsgMintPC"
	TypeURLExecutePayload = "/ue.v1.MsgExecutePayload"
)

// UniversalAccountID identifies the origin account of a message.
type UniversalAccountID struct {
	Chain string `json:"chain"`
	Owner string `json:"owner"` // Hex of the normalized owner key.
}

// UniversalPayload is the payload as carried in MsgExecutePayload, with
// integers as decimal strings.
type UniversalPayload struct {
	To                   string `json:"to"`
	Value                string `json:"value"`
	Data                 string `json:"data"`
	GasLimit             string `json:"gas_limit"`
	MaxFeePerGas         string `json:"max_fee_per_gas"`
	MaxPriorityFeePerGas string `json:"max_priority_fee_per_gas"`
	Nonce                string `json:"nonce"`
	Deadline             string `json:"deadline"`
	VType                uint8  `json:"v_type"`
}

// MsgDeployUEA deploys the executor account of the origin account, funded
// by the fee lock in TxHash.
type MsgDeployUEA struct {
	Signer             string             `json:"signer"`
	UniversalAccountID UniversalAccountID `json:"universal_account_id"`
	TxHash             string             `json:"tx_hash"`
}

// TypeURL implements pushchain.Msg.
func (MsgDeployUEA) TypeURL() string { return TypeURLDeployUEA }

// MsgMintPC mints the PC equivalent of the fee lock in TxHash to the
// executor account.
type MsgMintPC struct {
	Signer             string             `json:"signer"`
	UniversalAccountID UniversalAccountID `json:"universal_account_id"`
	TxHash             string             `json:"tx_hash"`
}

// TypeURL implements pushchain.Msg.
func (MsgMintPC) TypeURL() string { return TypeURLMintPC }

// MsgExecutePayload executes the signed payload from the executor account.
type MsgExecutePayload struct {
	Signer             string             `json:"signer"`
	UniversalAccountID UniversalAccountID `json:"universal_account_id"`
	UniversalPayload   UniversalPayload   `json:"universal_payload"`
	Signature          string             `json:"signature"`
}

// TypeURL implements pushchain.Msg.
func (MsgExecutePayload) TypeURL() string { return TypeURLExecutePayload }

func accountID(acc pushchain.UniversalAccount, ownerKey []byte) UniversalAccountID {
	return UniversalAccountID{Chain: string(acc.Chain), Owner: hexutil.Encode(ownerKey)}
}

func payloadFields(p pushchain.UniversalPayload) UniversalPayload {
	return UniversalPayload{
		To:                   p.To.Hex(),
		Value:                dec(p.Value),
		Data:                 hexutil.Encode(p.Data),
		GasLimit:             dec(p.GasLimit),
		MaxFeePerGas:         dec(p.MaxFeePerGas),
		MaxPriorityFeePerGas: dec(p.MaxPriorityFeePerGas),
		Nonce:                dec(p.Nonce),
		Deadline:             dec(p.Deadline),
		VType:                uint8(p.SigType),
	}
}

func dec(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}
