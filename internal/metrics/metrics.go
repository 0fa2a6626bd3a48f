package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/scorekeeper/internal/model"
)

const namespace = "scorekeeper"

// Metrics holds the application's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	registrations  *prometheus.CounterVec
	submissions    *prometheus.CounterVec
	ledgerSaves    *prometheus.CounterVec
	ledgerSaveTime prometheus.Histogram
	migrated       *prometheus.CounterVec
	users          prometheus.Gauge
	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Register calls by outcome (created or existing)",
		}, []string{"outcome"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_submissions_total",
			Help:      "Accepted score submissions by game mode",
		}, []string{"mode"}),
		ledgerSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "saves_total",
			Help:      "Ledger saves by result",
		}, []string{"result"}),
		ledgerSaveTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "save_duration_seconds",
			Help:      "Time to persist the full ledger document",
			Buckets:   prometheus.DefBuckets,
		}),
		migrated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "records_migrated_total",
			Help:      "Records upgraded to the current schema by source version",
		}, []string{"from_version"}),
		users: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registered_users",
			Help:      "Users currently in the registry",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route",
		}, []string{"route", "method", "code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_latency_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "code"}),
	}

	m.registry.MustRegister(
		m.registrations,
		m.submissions,
		m.ledgerSaves,
		m.ledgerSaveTime,
		m.migrated,
		m.users,
		m.httpRequests,
		m.httpLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry (for tests and custom collectors)
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registration(created bool) {
	if m == nil {
		return
	}
	outcome := "existing"
	if created {
		outcome = "created"
	}
	m.registrations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Submission(mode model.Mode) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(string(mode)).Inc()
}

func (m *Metrics) LedgerSave(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ledgerSaves.WithLabelValues(result).Inc()
	m.ledgerSaveTime.Observe(d.Seconds())
}

func (m *Metrics) Migrated(fromVersion, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.migrated.WithLabelValues(strconv.Itoa(fromVersion)).Add(float64(n))
}

func (m *Metrics) SetUsers(n int) {
	if m == nil {
		return
	}
	m.users.Set(float64(n))
}

func (m *Metrics) HTTPRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{"route": route, "method": method, "code": strconv.Itoa(status)}
	m.httpRequests.With(labels).Inc()
	m.httpLatency.With(labels).Observe(d.Seconds())
}
