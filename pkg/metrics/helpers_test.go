// Copyright 2025 Philipp Hossner
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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCounter(t *testing.T) {
	registry := prometheus.NewRegistry()

	counter := NewCounter(registry, "test_counter_total", "Test counter")
	counter.Inc()
	counter.Add(5)

	assert.Equal(t, float64(6), testutil.ToFloat64(counter))

	families, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "flyrender_test_counter_total", families[0].GetName())
}

func TestNewCounterVec(t *testing.T) {
	registry := prometheus.NewRegistry()

	counter := NewCounterVec(registry, "test_labeled_total", "Test labeled counter", []string{"kind"})
	counter.WithLabelValues("a").Inc()
	counter.WithLabelValues("a").Inc()
	counter.WithLabelValues("b").Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(counter.WithLabelValues("a")))
	assert.Equal(t, float64(1), testutil.ToFloat64(counter.WithLabelValues("b")))
	assert.Equal(t, 2, testutil.CollectAndCount(counter))
}

func TestNewHistogramWithBuckets(t *testing.T) {
	registry := prometheus.NewRegistry()

	histogram := NewHistogramWithBuckets(registry, "test_duration_seconds", "Test duration", []float64{0.1, 1})
	histogram.Observe(0.05)
	histogram.Observe(5)

	families, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)

	h := families[0].GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(2), h.GetSampleCount())
	assert.InDelta(t, 5.05, h.GetSampleSum(), 1e-9)
	require.Len(t, h.GetBucket(), 2)
	assert.Equal(t, uint64(1), h.GetBucket()[0].GetCumulativeCount())
}

func TestDurationBuckets(t *testing.T) {
	buckets := DurationBuckets()
	require.NotEmpty(t, buckets)

	for i := 1; i < len(buckets); i++ {
		assert.Greater(t, buckets[i], buckets[i-1], "buckets must be increasing")
	}
}

func TestHelpers_NoGlobalState(t *testing.T) {
	// Registering the same name in two registries must not panic.
	first := prometheus.NewRegistry()
	second := prometheus.NewRegistry()

	assert.NotPanics(t, func() {
		NewCounter(first, "isolated_total", "Isolated")
		NewCounter(second, "isolated_total", "Isolated")
	})

	// The same name twice in one registry panics.
	assert.Panics(t, func() {
		NewCounter(first, "isolated_total", "Isolated")
	})
}
