// Package collector aggregates request events and computes run metrics.
package collector

import (
	"sync"
	"sync/atomic"
	"time"

	"trainload/internal/core"
)

// bufferSize is how many events may queue before Report starts dropping.
const bufferSize = 4096

// Collector aggregates events from actors over one run.
type Collector struct {
	events    []core.Event
	ch        chan core.Event
	done      chan struct{}
	mu        sync.Mutex
	dropped   atomic.Int64
	clock     core.Clock
	startTime time.Time
	endTime   time.Time
}

// NewCollector creates a Collector and starts its collection goroutine.
func NewCollector() *Collector {
	return NewCollectorWithClock(core.RealClock{})
}

// NewCollectorWithClock is NewCollector with an explicit clock for tests.
func NewCollectorWithClock(clock core.Clock) *Collector {
	c := &Collector{
		events:    make([]core.Event, 0, 256),
		ch:        make(chan core.Event, bufferSize),
		done:      make(chan struct{}),
		clock:     clock,
		startTime: clock.Now(),
	}
	go c.collect()
	return c
}

func (c *Collector) collect() {
	for event := range c.ch {
		c.mu.Lock()
		c.events = append(c.events, event)
		c.mu.Unlock()
	}
	close(c.done)
}

// Report queues an event. It never blocks an actor: when the buffer is full
// the event is counted as dropped.
func (c *Collector) Report(event core.Event) {
	select {
	case c.ch <- event:
	default:
		c.dropped.Add(1)
	}
}

// Close stops accepting events and waits for the queue to drain. Events
// must not be reported after Close.
func (c *Collector) Close() {
	c.mu.Lock()
	c.endTime = c.clock.Now()
	c.mu.Unlock()
	close(c.ch)
	<-c.done
}

// DroppedEvents returns how many events did not fit in the buffer.
func (c *Collector) DroppedEvents() int64 {
	return c.dropped.Load()
}

// Events returns a copy of collected events.
func (c *Collector) Events() []core.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]core.Event, len(c.events))
	copy(result, c.events)
	return result
}

// Duration is the time from creation to Close, or to now while running.
func (c *Collector) Duration() time.Duration {
	c.mu.Lock()
	end := c.endTime
	c.mu.Unlock()
	if !end.IsZero() {
		return end.Sub(c.startTime)
	}
	return c.clock.Since(c.startTime)
}

// Compute returns the metrics of everything collected so far.
func (c *Collector) Compute() *Metrics {
	m := ComputeMetrics(c.Events(), c.Duration())
	m.Dropped = c.DroppedEvents()
	return m
}
