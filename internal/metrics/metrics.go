// Package metrics defines the Prometheus collectors exported by the daemon.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector on its own registry, so several daemons
// (or tests) can coexist in one process.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestDuration *prometheus.HistogramVec
	StoreOperations     *prometheus.CounterVec
	StoreDuration       *prometheus.HistogramVec
	Records             prometheus.Gauge
	CurrentWeightKg     prometheus.Gauge
	ProgressRatio       prometheus.Gauge
	Subscribers         prometheus.Gauge
	ConfigReloads       *prometheus.CounterVec
}

// New registers the collectors plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scalelog_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
			[]string{"method", "route", "status"},
		),
		StoreOperations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scalelog_store_operations_total",
				Help: "Storage calls by operation and result",
			},
			[]string{"op", "result"},
		),
		StoreDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scalelog_store_duration_seconds",
				Help:    "Storage call duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // remote sheets can take seconds
			},
			[]string{"op"},
		),
		Records: f.NewGauge(prometheus.GaugeOpts{
			Name: "scalelog_records",
			Help: "Number of journal entries at the last listing",
		}),
		CurrentWeightKg: f.NewGauge(prometheus.GaugeOpts{
			Name: "scalelog_current_weight_kg",
			Help: "Most recent logged weight",
		}),
		ProgressRatio: f.NewGauge(prometheus.GaugeOpts{
			Name: "scalelog_progress_ratio",
			Help: "Loss so far divided by the target loss",
		}),
		Subscribers: f.NewGauge(prometheus.GaugeOpts{
			Name: "scalelog_stream_subscribers",
			Help: "Open event stream connections",
		}),
		ConfigReloads: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scalelog_config_reloads_total",
				Help: "Config file reloads by result",
			},
			[]string{"result"},
		),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// ObserveStore records one storage call.
func (m *Metrics) ObserveStore(op string, err error, d time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.StoreOperations.WithLabelValues(op, result).Inc()
	m.StoreDuration.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveReload records a config reload attempt.
func (m *Metrics) ObserveReload(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ConfigReloads.WithLabelValues(result).Inc()
}
