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

package metrics_test

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/push-protocol/push-chain-sdk/metrics"
)

func Test_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveExecution(metrics.PathUniversal, time.Now(), nil)
	m.ObserveExecution(metrics.PathUniversal, time.Now(), errors.New("failed"))
	m.ObserveExecution(metrics.PathFastPath, time.Now(), nil)
	m.ObserveFeeLock("eip155:11155111", time.Now(), metrics.ResultSuccess)
	m.ObserveFeeLock("eip155:11155111", time.Time{}, metrics.ResultSkipped)
	m.ObserveMessages(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Executions.WithLabelValues(metrics.PathUniversal, metrics.ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Executions.WithLabelValues(metrics.PathUniversal, metrics.ResultFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Executions.WithLabelValues(metrics.PathFastPath, metrics.ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeeLocks.WithLabelValues("eip155:11155111", metrics.ResultSkipped)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.FeeLockWait))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, len(families))
	for i, f := range families {
		names[i] = f.GetName()
	}
	assert.ElementsMatch(t, []string{
		"pushchain_executions_total",
		"pushchain_execution_duration_seconds",
		"pushchain_fee_locks_total",
		"pushchain_fee_lock_confirmation_seconds",
		"pushchain_messages_per_tx",
	}, names)
}

func Test_Metrics_Nil(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveExecution(metrics.PathUniversal, time.Now(), nil)
		m.ObserveFeeLock("solana:x", time.Now(), metrics.ResultFailure)
		m.ObserveMessages(1)
	})
}
