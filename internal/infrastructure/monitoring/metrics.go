package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	ScoreRequests      *prometheus.CounterVec
	ScoreLatency       *prometheus.HistogramVec
	ScoreProbability   prometheus.Histogram
	ArtifactLoads      *prometheus.CounterVec
	ArtifactLoadTime   prometheus.Histogram
	CacheAccess        *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	HTTPLatency        *prometheus.HistogramVec
	HTTPActiveRequests *prometheus.GaugeVec
}

// NewMetrics creates the metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ScoreRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "score_requests_total",
				Help:      "Total number of scoring calls by result and tier.",
			},
			[]string{"result", "tier"},
		),
		ScoreLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "score_latency_seconds",
				Help:      "Latency of scoring calls.",
				Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .05},
			},
			[]string{"result"},
		),
		ScoreProbability: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "score_probability",
				Help:      "Distribution of returned purchase probabilities.",
				Buckets:   prometheus.LinearBuckets(0.05, 0.05, 19),
			},
		),
		ArtifactLoads: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "artifact_loads_total",
				Help:      "Total number of underlying artifact loads by source and result.",
			},
			[]string{"source", "result"},
		),
		ArtifactLoadTime: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "artifact_load_seconds",
				Help:      "Duration of artifact loads.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		CacheAccess: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_access_total",
				Help:      "Cache lookups by cache and outcome.",
			},
			[]string{"cache", "outcome"},
		),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests.",
			},
			[]string{"path", "method", "status"},
		),
		HTTPLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Latency of HTTP requests.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		HTTPActiveRequests: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_active_requests",
				Help:      "HTTP requests currently being served.",
			},
			[]string{"path", "method"},
		),
	}
}

// RecordScore records a scoring call.
func (m *Metrics) RecordScore(result, tier string, duration time.Duration) {
	m.ScoreRequests.WithLabelValues(result, tier).Inc()
	m.ScoreLatency.WithLabelValues(result).Observe(duration.Seconds())
}

// ObserveProbability records a returned probability.
func (m *Metrics) ObserveProbability(p float64) {
	m.ScoreProbability.Observe(p)
}

// RecordArtifactLoad records an artifact load.
func (m *Metrics) RecordArtifactLoad(source string, success bool, duration time.Duration) {
	m.ArtifactLoads.WithLabelValues(source, resultLabel(success)).Inc()
	m.ArtifactLoadTime.Observe(duration.Seconds())
}

// RecordCacheAccess records a cache hit or miss.
func (m *Metrics) RecordCacheAccess(cacheType string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.CacheAccess.WithLabelValues(cacheType, outcome).Inc()
}

func (m *Metrics) ActiveRequestsInc(path, method string) {
	m.HTTPActiveRequests.WithLabelValues(path, method).Inc()
}

func (m *Metrics) ActiveRequestsDec(path, method string) {
	m.HTTPActiveRequests.WithLabelValues(path, method).Dec()
}

// ObserveRequest records a finished HTTP request.
func (m *Metrics) ObserveRequest(path, method string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(path, method).Observe(duration.Seconds())
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

//Personal.AI order the ending
