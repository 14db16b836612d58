// Package progress prints a live status line on stderr during a run.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"trainload/internal/collector"
)

const defaultInterval = time.Second

// Source supplies the metrics shown on each tick. *collector.Collector
// satisfies it.
type Source interface {
	Compute() *collector.Metrics
}

type Progress struct {
	source    Source
	actors    func() int
	interval  time.Duration
	startTime time.Time
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopped   atomic.Bool
	quiet     bool
	output    io.Writer
	mu        sync.Mutex
}

func NewProgress(src Source, quiet bool) *Progress {
	return &Progress{
		source:   src,
		quiet:    quiet,
		interval: defaultInterval,
		output:   os.Stderr,
	}
}

func (p *Progress) SetOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output = w
}

// SetActors adds the live actor count to the status line.
func (p *Progress) SetActors(fn func() int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.actors = fn
}

// SetInterval changes the refresh period. It must be called before Start.
func (p *Progress) SetInterval(d time.Duration) {
	if d > 0 {
		p.interval = d
	}
}

func (p *Progress) Start() {
	if p.quiet {
		return
	}
	p.startTime = time.Now()
	p.stopCh = make(chan struct{})
	p.ticker = time.NewTicker(p.interval)
	go p.run()
}

func (p *Progress) run() {
	for {
		select {
		case <-p.stopCh:
			return
		case <-p.ticker.C:
			p.mu.Lock()
			fmt.Fprint(p.output, "\r\033[K"+p.line(time.Since(p.startTime)))
			p.mu.Unlock()
		}
	}
}

// line renders the status for the given elapsed time. Callers hold mu.
func (p *Progress) line(elapsed time.Duration) string {
	m := p.source.Compute()
	elapsed = elapsed.Round(time.Second)
	mins := int(elapsed.Minutes())
	secs := int(elapsed.Seconds()) % 60

	errorRate := 0.0
	if m.TotalRequests > 0 {
		errorRate = float64(m.FailureCount) / float64(m.TotalRequests) * 100
	}
	s := fmt.Sprintf("[%02d:%02d] Requests: %d | RPS: %.1f | Errors: %d (%.1f%%)",
		mins, secs, m.TotalRequests, m.RequestsPerSec, m.FailureCount, errorRate)
	if n := m.Kinds["conflict"] + m.Kinds["application_error"]; n > 0 {
		s += fmt.Sprintf(" | Rejected: %d", n)
	}
	if p.actors != nil {
		s += fmt.Sprintf(" | Actors: %d", p.actors())
	}
	return s
}

func (p *Progress) Stop() {
	if p.quiet || p.stopped.Swap(true) {
		return
	}
	if p.ticker != nil {
		p.ticker.Stop()
	}
	if p.stopCh != nil {
		close(p.stopCh)
	}
	p.mu.Lock()
	fmt.Fprint(p.output, "\r\033[K")
	p.mu.Unlock()
}

func (p *Progress) Printf(format string, args ...any) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	fmt.Fprintf(p.output, "\r\033[K"+format+"\n", args...)
	p.mu.Unlock()
}
