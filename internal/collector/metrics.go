package collector

import (
	"sort"
	"time"
)

// Metrics summarises one run.
type Metrics struct {
	TotalRequests  int
	SuccessCount   int
	FailureCount   int
	SuccessRate    float64
	RequestsPerSec float64
	TestDuration   time.Duration
	Duration       DurationMetrics
	Steps          map[string]*StepMetrics
	// Kinds counts events per outcome kind, successes included.
	Kinds map[string]int
	// Dropped counts events the collector could not buffer.
	Dropped int64
}

// DurationMetrics contains latency statistics.
type DurationMetrics struct {
	Min time.Duration
	Max time.Duration
	Avg time.Duration
	P50 time.Duration
	P90 time.Duration
	P95 time.Duration
	P99 time.Duration
}

// StepMetrics contains per-target statistics.
type StepMetrics struct {
	Count    int
	Success  int
	Failed   int
	Duration DurationMetrics
	Kinds    map[string]int
}

// SuccessRate returns the step's success percentage.
func (s *StepMetrics) SuccessRate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Success) / float64(s.Count) * 100
}

// ComputePercentile returns the p-th percentile (0..1) of sorted durations
// using the nearest-rank method.
func ComputePercentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	index := int(float64(len(sorted)-1) * p)
	return sorted[index]
}

// ComputeDurationMetrics calculates latency statistics. The input is not modified.
func ComputeDurationMetrics(durations []time.Duration) DurationMetrics {
	if len(durations) == 0 {
		return DurationMetrics{}
	}

	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, d := range sorted {
		total += d
	}

	return DurationMetrics{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: total / time.Duration(len(sorted)),
		P50: ComputePercentile(sorted, 0.50),
		P90: ComputePercentile(sorted, 0.90),
		P95: ComputePercentile(sorted, 0.95),
		P99: ComputePercentile(sorted, 0.99),
	}
}

// SortedSteps returns step names in alphabetical order.
func (m *Metrics) SortedSteps() []string {
	return sortedKeys(m.Steps)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
