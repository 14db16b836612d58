package collector_test

import (
	"fmt"
	"time"

	"trainload/internal/collector"
	"trainload/internal/core"
)

func ExampleComputeMetrics() {
	events := []core.Event{
		{Step: "MainTraining", Success: true, Kind: "success", Duration: 10 * time.Millisecond},
		{Step: "MainTraining", Success: true, Kind: "success", Duration: 20 * time.Millisecond},
		{Step: "MainTraining", Success: true, Kind: "success", Duration: 30 * time.Millisecond},
		{Step: "MainTraining", Success: false, Kind: "conflict", Duration: 5 * time.Millisecond},
	}

	m := collector.ComputeMetrics(events, time.Second)

	fmt.Printf("Total: %d, Success: %d, Rate: %.0f%%, Conflicts: %d\n",
		m.TotalRequests, m.SuccessCount, m.SuccessRate, m.Kinds["conflict"])
	// Output: Total: 4, Success: 3, Rate: 75%, Conflicts: 1
}

func ExampleCollector_DroppedEvents() {
	c := collector.NewCollector()
	c.Report(core.Event{Step: "GetTrainingList", Success: true})
	c.Close()

	fmt.Printf("collected %d, dropped %d\n", len(c.Events()), c.DroppedEvents())
	// Output: collected 1, dropped 0
}
