// Package metrics exposes the service's Prometheus counters on a private registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "devicehub"

// Recorder owns the registry and every metric the service reports.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	refreshesTotal  *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	salesTotal      *prometheus.CounterVec
	compensations   *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.refreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "refreshes_total",
			Help:      "Dashboard refresh cycles by result.",
		},
		[]string{"result"},
	)
	r.refreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "refresh_duration_seconds",
			Help:      "Time spent loading and composing the dashboard.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	r.salesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_total",
			Help:      "Sales recorded by source.",
		},
		[]string{"source"},
	)
	r.compensations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compensations_total",
			Help:      "Multi-step writes rolled back by compensation, by operation.",
		},
		[]string{"operation"},
	)
	r.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Dashboard cache lookups by result.",
		},
		[]string{"result"},
	)

	r.registry.MustRegister(
		r.refreshesTotal,
		r.refreshDuration,
		r.salesTotal,
		r.compensations,
		r.cacheLookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) ObserveRefresh(d time.Duration, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.refreshesTotal.WithLabelValues(result).Inc()
	r.refreshDuration.Observe(d.Seconds())
}

func (r *Recorder) SaleRecorded(source string) {
	if r == nil {
		return
	}
	r.salesTotal.WithLabelValues(source).Inc()
}

func (r *Recorder) Compensated(operation string) {
	if r == nil {
		return
	}
	r.compensations.WithLabelValues(operation).Inc()
}

func (r *Recorder) CacheLookup(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}
