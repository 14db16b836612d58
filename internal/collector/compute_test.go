package collector

import (
	"reflect"
	"testing"
	"time"

	"trainload/internal/core"
)

func TestComputeMetrics_EmptyEvents(t *testing.T) {
	m := ComputeMetrics(nil, 10*time.Second)

	if m.TotalRequests != 0 || m.SuccessRate != 0 {
		t.Errorf("unexpected metrics for no events: %+v", m)
	}
	if m.Steps == nil || m.Kinds == nil {
		t.Error("expected maps to be initialized")
	}
}

func TestComputeMetrics_StepsAndKinds(t *testing.T) {
	events := []core.Event{
		{Step: "MainTraining", Success: true, Kind: "success", Duration: 10 * time.Millisecond},
		{Step: "MainTraining", Success: false, Kind: "application_error", Duration: 20 * time.Millisecond},
		{Step: "AltTraining-Node.js Training 10", Success: false, Kind: "conflict", Duration: 30 * time.Millisecond},
		{Step: "panic", Success: false, Error: "panic: boom"},
	}

	m := ComputeMetrics(events, 2*time.Second)

	if m.TotalRequests != 4 || m.SuccessCount != 1 || m.FailureCount != 3 {
		t.Errorf("unexpected counts %+v", m)
	}
	if m.SuccessRate != 25 {
		t.Errorf("SuccessRate = %v, want 25", m.SuccessRate)
	}
	if m.RequestsPerSec != 2 {
		t.Errorf("RequestsPerSec = %v, want 2", m.RequestsPerSec)
	}

	wantKinds := map[string]int{"success": 1, "application_error": 1, "conflict": 1, "error": 1}
	if !reflect.DeepEqual(m.Kinds, wantKinds) {
		t.Errorf("Kinds = %v, want %v", m.Kinds, wantKinds)
	}

	main := m.Steps["MainTraining"]
	if main == nil || main.Count != 2 || main.Success != 1 || main.Failed != 1 {
		t.Fatalf("unexpected MainTraining metrics %+v", main)
	}
	if main.SuccessRate() != 50 {
		t.Errorf("step SuccessRate = %v, want 50", main.SuccessRate())
	}
	if main.Duration.Max != 20*time.Millisecond {
		t.Errorf("step Max = %v", main.Duration.Max)
	}

	if got := m.SortedSteps(); !reflect.DeepEqual(got, []string{"AltTraining-Node.js Training 10", "MainTraining", "panic"}) {
		t.Errorf("SortedSteps = %v", got)
	}
}

func TestComputeMetrics_DoesNotModifyInput(t *testing.T) {
	events := []core.Event{
		{Step: "s", Success: true, Duration: 30 * time.Millisecond},
		{Step: "s", Success: true, Duration: 10 * time.Millisecond},
	}
	before := append([]core.Event(nil), events...)

	first := ComputeMetrics(events, time.Second)
	second := ComputeMetrics(events, time.Second)

	if !reflect.DeepEqual(events, before) {
		t.Error("ComputeMetrics modified its input")
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("ComputeMetrics is not deterministic")
	}
}

func TestComputePercentile(t *testing.T) {
	sorted := []time.Duration{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	tests := []struct {
		p    float64
		want time.Duration
	}{
		{0, 10},
		{0.5, 50},
		{0.9, 90},
		{1, 100},
	}
	for _, tt := range tests {
		if got := ComputePercentile(sorted, tt.p); got != tt.want {
			t.Errorf("ComputePercentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if got := ComputePercentile(nil, 0.5); got != 0 {
		t.Errorf("empty percentile = %v", got)
	}
}

func TestComputeDurationMetrics(t *testing.T) {
	d := ComputeDurationMetrics([]time.Duration{40, 10, 30, 20})
	if d.Min != 10 || d.Max != 40 || d.Avg != 25 {
		t.Errorf("unexpected duration metrics %+v", d)
	}
}

func BenchmarkComputeMetrics(b *testing.B) {
	events := make([]core.Event, 10000)
	for i := range events {
		events[i] = core.Event{Step: "GetTrainingList", Success: i%10 != 0, Kind: "success", Duration: time.Duration(i) * time.Microsecond}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ComputeMetrics(events, 10*time.Second)
	}
}
