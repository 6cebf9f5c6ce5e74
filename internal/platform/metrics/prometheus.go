package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/logger"
)

// MetricsManager holds the service's Prometheus metrics on a private registry.
type MetricsManager struct {
	Registry *prometheus.Registry

	SearchesTotal  *prometheus.CounterVec   // by category
	SearchLatency  *prometheus.HistogramVec // by category
	SearchResults  *prometheus.HistogramVec // by category
	SweepPasses    *prometheus.CounterVec   // by outcome: completed, skipped, failed
	SweepDuration  prometheus.Histogram
	BoostActivated *prometheus.CounterVec // by plan
	BoostBumps     prometheus.Counter
	BoostExpired   prometheus.Counter
	PresenceChange *prometheus.CounterVec // by kind
	ReportsFiled   *prometheus.CounterVec // by severity
	ReportsClosed  *prometheus.CounterVec // by resolution
	APIErrorsTotal *prometheus.CounterVec // by method, error_type
	APILatency     *prometheus.HistogramVec
}

// NewMetricsManager registers all metrics under a namespace derived from serviceName.
func NewMetricsManager(serviceName string) *MetricsManager {
	ns := strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(serviceName)
	registry := prometheus.NewRegistry()

	m := &MetricsManager{
		Registry: registry,
		SearchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "searches_total",
			Help:      "Total number of discovery searches.",
		}, []string{"category"}),
		SearchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "search_latency_seconds",
			Help:      "Latency of discovery searches including listing load.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"category"}),
		SearchResults: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "search_results",
			Help:      "Number of listings matched per search before paging.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 7),
		}, []string{"category"}),
		SweepPasses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "sweep_passes_total",
			Help:      "Sweep passes by outcome.",
		}, []string{"outcome"}),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of completed sweep passes.",
			Buckets:   prometheus.DefBuckets,
		}),
		BoostActivated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "boost_activations_total",
			Help:      "Boost windows activated by plan.",
		}, []string{"plan"}),
		BoostBumps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "boost_bumps_total",
			Help:      "Scheduled bumps applied by the sweep.",
		}),
		BoostExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "boost_expirations_total",
			Help:      "Boost windows moved to expired by the sweep.",
		}),
		PresenceChange: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "presence_transitions_total",
			Help:      "Presence flag transitions by kind.",
		}, []string{"kind"}),
		ReportsFiled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "reports_filed_total",
			Help:      "Moderation reports filed by severity.",
		}, []string{"severity"}),
		ReportsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "reports_resolved_total",
			Help:      "Moderation reports resolved by outcome.",
		}, []string{"resolution"}),
		APIErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "api_errors_total",
			Help:      "Total number of API errors by method.",
		}, []string{"method", "error_type"}),
		APILatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "api_request_latency_seconds",
			Help:      "Latency of API requests by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	registry.MustRegister(
		m.SearchesTotal,
		m.SearchLatency,
		m.SearchResults,
		m.SweepPasses,
		m.SweepDuration,
		m.BoostActivated,
		m.BoostBumps,
		m.BoostExpired,
		m.PresenceChange,
		m.ReportsFiled,
		m.ReportsClosed,
		m.APIErrorsTotal,
		m.APILatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveAPI records latency and, when errType is set, one error of that type.
func (m *MetricsManager) ObserveAPI(method string, start time.Time, errType string) {
	if m == nil {
		return
	}
	m.APILatency.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if errType != "" {
		m.APIErrorsTotal.WithLabelValues(method, errType).Inc()
	}
}

// NewMetricsServer builds the /metrics HTTP server for registry.
func NewMetricsServer(port string, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// StartMetricsServer serves metrics until the server fails. An empty port disables it.
func StartMetricsServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		appLogger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}
	appLogger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))
	return NewMetricsServer(port, registry).ListenAndServe()
}
