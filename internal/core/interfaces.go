// Package core defines the fundamental interfaces and types for trainload.
package core

import (
	"context"
	"time"
)

// Event represents a single measurement from one actor request cycle.
type Event struct {
	ActorID    int
	Sequence   int64 // actor-local request number, 0 for non-request events
	Timestamp  time.Time
	Step       string // target name, e.g. "MainTraining"
	Protocol   string
	Duration   time.Duration
	Success    bool
	Kind       string // outcome kind, e.g. "success", "conflict"
	Error      string
	StatusCode int
	BytesSent  int64
	BytesRecv  int64
}

// Scenario produces one Actor per simulated user.
// NewActor binds the actor-local fixtures; an error is fatal to that actor only.
type Scenario interface {
	Name() string
	NewActor(ctx context.Context, actorID int) (Actor, error)
}

// Actor is one simulated user. It owns its counters and fixtures and is
// driven from a single goroutine.
type Actor interface {
	// Iterate runs one task cycle: pick a task, wait, send, classify, report.
	Iterate(ctx context.Context, rep Reporter) error
}

// Reporter is the interface actors use to send events to the Collector.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) { f(e) }

// MultiReporter fans an event out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) Report(e Event) {
	for _, r := range m {
		r.Report(e)
	}
}
