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
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ConfirmationDepth(t *testing.T) {
	tests := []struct {
		name     string
		head     uint64
		included uint64
		want     uint64
	}{
		{"same_block", 10, 10, 1},
		{"three_blocks", 12, 10, 3},
		{"head_behind_inclusion", 9, 10, 0},
		{"head_at_zero", 0, 10, 0},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, confirmationDepth(tc.head, tc.included))
		})
	}
}
