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

// Package metrics defines the prometheus collectors updated during
// executions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pushchain"

// Label values.
const (
	PathFastPath  = "fast_path"
	PathUniversal = "universal"

	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultSkipped = "skipped"
)

// Metrics holds the collectors. The zero value is not usable, use New.
type Metrics struct {
	Executions        *prometheus.CounterVec
	ExecutionDuration *prometheus.HistogramVec
	FeeLocks          *prometheus.CounterVec
	FeeLockWait       *prometheus.HistogramVec
	MessagesPerTx     prometheus.Histogram
}

// New creates the collectors and registers them with reg. When reg is nil,
// the collectors are not registered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Executions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "executions_total",
				Help:      "Total number of executions by path and result",
			},
			[]string{"path", "result"},
		),
		ExecutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "execution_duration_seconds",
				Help:      "Duration of executions in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
			},
			[]string{"path"},
		),
		FeeLocks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fee_locks_total",
				Help:      "Total number of fee locks by origin chain and result",
			},
			[]string{"chain", "result"},
		),
		FeeLockWait: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fee_lock_confirmation_seconds",
				Help:      "Time from fee lock submission to confirmation in seconds",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
			[]string{"chain"},
		),
		MessagesPerTx: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "messages_per_tx",
			Help:      "Number of messages in each submitted cosmos tx",
			Buckets:   []float64{1, 2, 3},
		}),
	}
}

// ObserveExecution records the result and the duration of an execution.
func (m *Metrics) ObserveExecution(path string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.Executions.WithLabelValues(path, result(err)).Inc()
	m.ExecutionDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
}

// ObserveFeeLock records the result of a fee lock. A zero start skips the
// wait time, as for locks that were not submitted.
func (m *Metrics) ObserveFeeLock(chain string, start time.Time, res string) {
	if m == nil {
		return
	}
	m.FeeLocks.WithLabelValues(chain, res).Inc()
	if !start.IsZero() && res == ResultSuccess {
		m.FeeLockWait.WithLabelValues(chain).Observe(time.Since(start).Seconds())
	}
}

// ObserveMessages records the number of messages in a submitted tx.
func (m *Metrics) ObserveMessages(n int) {
	if m == nil {
		return
	}
	m.MessagesPerTx.Observe(float64(n))
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
