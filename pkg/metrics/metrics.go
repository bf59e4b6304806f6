// Package metrics is a small in-process collector for request counters,
// operation latencies and attachment sizes, served as JSON by the router.
package metrics

import (
	"sort"
	"strings"
	"sync"
	"time"
)

const maxObservations = 100

type MetricsCollector struct {
	mu        sync.RWMutex
	counters  map[string]map[string]int64
	latencies map[string][]time.Duration
	sizes     map[string][]float64
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		counters:  make(map[string]map[string]int64),
		latencies: make(map[string][]time.Duration),
		sizes:     make(map[string][]float64),
	}
}

// IncrementCounter bumps the named counter. Labels are flattened into a
// single stable key so the same label set always hits the same bucket.
func (mc *MetricsCollector) IncrementCounter(name string, labels map[string]string) {
	key := labelKey(labels)

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if _, exists := mc.counters[name]; !exists {
		mc.counters[name] = make(map[string]int64)
	}
	mc.counters[name][key]++
}

// ObserveLatency records an operation duration, keeping the most recent
// observations only.
func (mc *MetricsCollector) ObserveLatency(name string, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	observations := append(mc.latencies[name], duration)
	if len(observations) > maxObservations {
		observations = observations[len(observations)-maxObservations:]
	}
	mc.latencies[name] = observations
}

// ObserveSize records a payload size in bytes.
func (mc *MetricsCollector) ObserveSize(name string, size float64) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	observations := append(mc.sizes[name], size)
	if len(observations) > maxObservations {
		observations = observations[len(observations)-maxObservations:]
	}
	mc.sizes[name] = observations
}

func (mc *MetricsCollector) GetCounters() map[string]map[string]int64 {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	snapshot := make(map[string]map[string]int64, len(mc.counters))
	for name, buckets := range mc.counters {
		snapshot[name] = make(map[string]int64, len(buckets))
		for key, value := range buckets {
			snapshot[name][key] = value
		}
	}
	return snapshot
}

func (mc *MetricsCollector) GetLatencies() map[string]map[string]float64 {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make(map[string]map[string]float64)
	for name, durations := range mc.latencies {
		if len(durations) == 0 {
			continue
		}
		var sum time.Duration
		max := durations[0]
		for _, d := range durations {
			sum += d
			if d > max {
				max = d
			}
		}
		result[name] = map[string]float64{
			"avg_ms": float64(sum) / float64(len(durations)) / float64(time.Millisecond),
			"max_ms": float64(max) / float64(time.Millisecond),
		}
	}
	return result
}

func (mc *MetricsCollector) GetSizes() map[string]map[string]float64 {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make(map[string]map[string]float64)
	for name, observations := range mc.sizes {
		if len(observations) == 0 {
			continue
		}
		var sum, max float64
		for _, size := range observations {
			sum += size
			if size > max {
				max = size
			}
		}
		result[name] = map[string]float64{
			"avg_bytes": sum / float64(len(observations)),
			"max_bytes": max,
		}
	}
	return result
}

func labelKey(labels map[string]string) string {
	if len(labels) == 0 {
		return "default"
	}
	parts := make([]string, 0, len(labels))
	for k, v := range labels {
		parts = append(parts, k+":"+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
