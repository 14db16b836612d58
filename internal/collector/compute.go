package collector

import (
	"time"

	"trainload/internal/core"
)

// ComputeMetrics computes metrics from events. Pure function, no side effects.
func ComputeMetrics(events []core.Event, testDuration time.Duration) *Metrics {
	m := &Metrics{
		Steps:        make(map[string]*StepMetrics),
		Kinds:        make(map[string]int),
		TestDuration: testDuration,
	}

	if len(events) == 0 {
		return m
	}

	allDurations := make([]time.Duration, 0, len(events))
	stepDurations := make(map[string][]time.Duration)

	for _, e := range events {
		m.TotalRequests++
		if e.Success {
			m.SuccessCount++
		} else {
			m.FailureCount++
		}
		kind := eventKind(e)
		m.Kinds[kind]++

		allDurations = append(allDurations, e.Duration)

		step, exists := m.Steps[e.Step]
		if !exists {
			step = &StepMetrics{Kinds: make(map[string]int)}
			m.Steps[e.Step] = step
		}
		step.Count++
		if e.Success {
			step.Success++
		} else {
			step.Failed++
		}
		step.Kinds[kind]++
		stepDurations[e.Step] = append(stepDurations[e.Step], e.Duration)
	}

	m.SuccessRate = float64(m.SuccessCount) / float64(m.TotalRequests) * 100

	if m.TestDuration > 0 {
		m.RequestsPerSec = float64(m.TotalRequests) / m.TestDuration.Seconds()
	}

	m.Duration = ComputeDurationMetrics(allDurations)

	for step, durations := range stepDurations {
		m.Steps[step].Duration = ComputeDurationMetrics(durations)
	}

	return m
}

// eventKind falls back to success/failure for events without a kind, such as
// recovered panics.
func eventKind(e core.Event) string {
	switch {
	case e.Kind != "":
		return e.Kind
	case e.Success:
		return "success"
	default:
		return "error"
	}
}
