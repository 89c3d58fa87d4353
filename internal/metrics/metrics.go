package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Engagement metrics
	OpensRecordedTotal     prometheus.Counter
	OpensDedupedTotal      prometheus.Counter
	ClicksRecordedTotal    *prometheus.CounterVec // labeled by campaign presence
	LeadsCreatedTotal      *prometheus.CounterVec // labeled by mode: explicit | implicit
	TrackingFailuresTotal  *prometheus.CounterVec // labeled by path kind: open | click | event
	RateLimitExceededTotal prometheus.Counter
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			OpensRecordedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "tracking_opens_recorded_total",
				Help: "First opens recorded per tracking id",
			}),
			OpensDedupedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "tracking_opens_deduped_total",
				Help: "Pixel hits skipped because an open already existed",
			}),
			ClicksRecordedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "tracking_clicks_recorded_total",
					Help: "Click events recorded",
				},
				[]string{"with_campaign"},
			),
			LeadsCreatedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "leads_created_total",
					Help: "Leads created, by creation mode",
				},
				[]string{"mode"},
			),
			TrackingFailuresTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "tracking_failures_total",
					Help: "Recording failures swallowed by the best-effort tracking endpoints",
				},
				[]string{"kind"},
			),
			RateLimitExceededTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "rate_limit_exceeded_total",
				Help: "Requests rejected by the management-API rate limiter",
			}),
		}
	})
	return instance
}

// Get returns the metrics instance, initializing it on first use
func Get() *Metrics {
	return Initialize()
}
