// Package metrics exposes scan and poll-cycle counters on a private
// Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "spreadbot"

// Poll cycle outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
	OutcomePanic    = "panic"
	OutcomeSkipped  = "skipped"
)

// Scan paths.
const (
	PathPoller   = "poller"
	PathOnDemand = "on_demand"
)

// Metrics holds every collector the service exports.
type Metrics struct {
	registry *prometheus.Registry

	pollCycles       *prometheus.CounterVec
	pollDuration     prometheus.Histogram
	opportunities    prometheus.Gauge
	newOpportunities prometheus.Counter
	commonPairs      prometheus.Gauge
	fetchFailures    *prometheus.CounterVec
	scans            *prometheus.CounterVec
}

// New creates the collectors and registers them, with the Go runtime and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pollCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_cycles_total",
			Help:      "Poll cycles by outcome.",
		}, []string{"outcome"}),
		pollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_cycle_seconds",
			Help:      "Wall time of one poll cycle.",
			Buckets:   prometheus.DefBuckets,
		}),
		opportunities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "opportunities",
			Help:      "Opportunities found by the last poll cycle.",
		}),
		newOpportunities: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "new_opportunities_total",
			Help:      "Opportunities reported as newly appeared.",
		}),
		commonPairs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "common_pairs",
			Help:      "Pairs listed on both venues in the last scan.",
		}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Venue fetches absorbed into an empty result.",
		}, []string{"venue", "kind"}),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Scans run, by caller.",
		}, []string{"path"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.pollCycles,
		m.pollDuration,
		m.opportunities,
		m.newOpportunities,
		m.commonPairs,
		m.fetchFailures,
		m.scans,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// ObserveCycle records a finished poll cycle.
func (m *Metrics) ObserveCycle(outcome string, d time.Duration) {
	m.pollCycles.WithLabelValues(outcome).Inc()
	if outcome != OutcomeSkipped {
		m.pollDuration.Observe(d.Seconds())
	}
}

// ObserveScan records the shape of one scan.
func (m *Metrics) ObserveScan(path string, commonPairs int) {
	m.scans.WithLabelValues(path).Inc()
	m.commonPairs.Set(float64(commonPairs))
}

// SetOpportunities records the size of the latest poll result.
func (m *Metrics) SetOpportunities(n int) {
	m.opportunities.Set(float64(n))
}

// AddNewOpportunities counts newly appeared opportunities.
func (m *Metrics) AddNewOpportunities(n int) {
	m.newOpportunities.Add(float64(n))
}

// FetchFailure counts one absorbed venue failure.
func (m *Metrics) FetchFailure(venue, kind string) {
	m.fetchFailures.WithLabelValues(venue, kind).Inc()
}
