package collector

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trainload/internal/core"
)

// PromExporter is a Reporter that mirrors events into Prometheus metrics.
type PromExporter struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPromExporter registers the run metrics on reg.
func NewPromExporter(reg prometheus.Registerer) (*PromExporter, error) {
	p := &PromExporter{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trainload_requests_total",
			Help: "Requests sent, by target and outcome kind.",
		}, []string{"step", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trainload_request_duration_seconds",
			Help:    "Request latency by target.",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"step"}),
	}
	for _, c := range []prometheus.Collector{p.requests, p.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}
	return p, nil
}

func (p *PromExporter) Report(e core.Event) {
	p.requests.WithLabelValues(e.Step, eventKind(e)).Inc()
	p.duration.WithLabelValues(e.Step).Observe(e.Duration.Seconds())
}

// MetricsHandler serves the metrics gathered by g.
func MetricsHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
