package ratelimit

import (
	"time"

	"trainload/internal/config"
	"trainload/internal/core"
)

// PhaseManager maps elapsed run time onto the phases of a load profile.
type PhaseManager struct {
	phases    []config.Phase
	startTime time.Time
	clock     core.Clock
}

// Snapshot is the profile state at one instant.
type Snapshot struct {
	// Index is len(phases) once the profile is complete.
	Index        int
	Phase        *config.Phase
	TargetActors int
	RPS          int
	Elapsed      time.Duration
}

// Complete reports whether every phase has run.
func (s Snapshot) Complete() bool {
	return s.Phase == nil
}

// NewPhaseManager creates a PhaseManager with a real clock.
func NewPhaseManager(phases []config.Phase) *PhaseManager {
	return NewPhaseManagerWithClock(phases, core.RealClock{})
}

// NewPhaseManagerWithClock creates a PhaseManager with a custom clock (for testing).
func NewPhaseManagerWithClock(phases []config.Phase, clock core.Clock) *PhaseManager {
	return &PhaseManager{
		phases:    phases,
		startTime: clock.Now(),
		clock:     clock,
	}
}

func (pm *PhaseManager) Elapsed() time.Duration {
	return pm.clock.Since(pm.startTime)
}

// Snapshot evaluates the profile at the current clock time.
func (pm *PhaseManager) Snapshot() Snapshot {
	elapsed := pm.Elapsed()
	s := Snapshot{Index: len(pm.phases), Elapsed: elapsed}

	var phaseStart time.Duration
	for i := range pm.phases {
		p := &pm.phases[i]
		if elapsed < phaseStart+p.Duration {
			s.Index = i
			s.Phase = p
			s.TargetActors = targetActors(p, elapsed-phaseStart)
			s.RPS = p.RPS
			return s
		}
		phaseStart += p.Duration
	}
	return s
}

// targetActors interpolates a ramp linearly over the phase.
func targetActors(p *config.Phase, into time.Duration) int {
	if p.Actors > 0 {
		return p.Actors
	}
	if p.StartActors == p.EndActors || p.Duration <= 0 {
		return p.StartActors
	}
	progress := float64(into) / float64(p.Duration)
	if progress > 1 {
		progress = 1
	}
	delta := float64(p.EndActors - p.StartActors)
	return p.StartActors + int(delta*progress)
}

// InitialRPS is the rate of the first phase, used to size the limiter
// before the run starts.
func InitialRPS(phases []config.Phase) int {
	if len(phases) == 0 {
		return 0
	}
	return phases[0].RPS
}

// HasRPS reports whether any phase limits the request rate.
func HasRPS(phases []config.Phase) bool {
	for _, p := range phases {
		if p.RPS > 0 {
			return true
		}
	}
	return false
}
