package collector

import (
	"sync"
	"testing"
	"time"

	"trainload/internal/core"
)

func TestCollector_CollectsEvents(t *testing.T) {
	c := NewCollector()
	c.Report(core.Event{ActorID: 1, Step: "MainTraining", Success: true, Kind: "success", Duration: 10 * time.Millisecond})
	c.Report(core.Event{ActorID: 2, Step: "MainTraining", Success: false, Kind: "conflict", Duration: 20 * time.Millisecond})
	c.Close()

	events := c.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if c.DroppedEvents() != 0 {
		t.Errorf("expected no dropped events, got %d", c.DroppedEvents())
	}
}

func TestCollector_ConcurrentReporters(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for a := 0; a < 50; a++ {
		wg.Add(1)
		go func(actorID int) {
			defer wg.Done()
			for i := 0; i < 40; i++ {
				c.Report(core.Event{ActorID: actorID, Sequence: int64(i + 1), Step: "GetTrainingList", Success: true})
			}
		}(a)
	}
	wg.Wait()
	c.Close()

	got := int64(len(c.Events())) + c.DroppedEvents()
	if got != 2000 {
		t.Errorf("collected+dropped = %d, want 2000", got)
	}
}

func TestCollector_DropsWhenFull(t *testing.T) {
	c := &Collector{
		ch:    make(chan core.Event), // unbuffered and never drained
		clock: core.RealClock{},
	}
	c.Report(core.Event{Step: "x"})
	c.Report(core.Event{Step: "x"})
	if c.DroppedEvents() != 2 {
		t.Errorf("expected 2 dropped events, got %d", c.DroppedEvents())
	}
}

func TestCollector_DurationUsesClock(t *testing.T) {
	clock := core.NewFakeClock(time.Unix(1000, 0))
	c := NewCollectorWithClock(clock)

	clock.Advance(3 * time.Second)
	if d := c.Duration(); d != 3*time.Second {
		t.Errorf("running Duration = %v, want 3s", d)
	}
	c.Close()
	clock.Advance(time.Hour)
	if d := c.Duration(); d != 3*time.Second {
		t.Errorf("closed Duration = %v, want 3s", d)
	}
}

func TestCollector_Compute(t *testing.T) {
	clock := core.NewFakeClock(time.Unix(0, 0))
	c := NewCollectorWithClock(clock)
	for i := 0; i < 4; i++ {
		c.Report(core.Event{Step: "Create Post Fast", Success: true, Kind: "success", Duration: 10 * time.Millisecond})
	}
	c.Report(core.Event{Step: "Create Post Fast", Success: false, Kind: "connection_failed"})
	clock.Advance(time.Second)
	c.Close()

	m := c.Compute()
	if m.TotalRequests != 5 || m.SuccessCount != 4 || m.FailureCount != 1 {
		t.Errorf("unexpected counts %+v", m)
	}
	if m.RequestsPerSec != 5 {
		t.Errorf("RequestsPerSec = %v, want 5", m.RequestsPerSec)
	}
	if m.Kinds["connection_failed"] != 1 {
		t.Errorf("Kinds = %v", m.Kinds)
	}
}
