package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects upload counters and timings for the orchestrator.
type Metrics struct {
	UploadsTotal   *prometheus.CounterVec
	UploadDuration prometheus.Histogram
	handler        http.Handler
}

// InitMetrics registers the upload metrics with the default registry and
// returns the /metrics handler.
func InitMetrics() (*Metrics, error) {
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tiktok_uploads_total",
			Help: "Upload submissions by outcome (posted, draft, failed, rejected).",
		},
		[]string{"outcome"},
	)
	uploadDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tiktok_upload_duration_seconds",
			Help:    "Wall-clock duration of automation runs.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	for _, c := range []prometheus.Collector{uploadsTotal, uploadDuration} {
		if err := prometheus.Register(c); err != nil {
			// If already registered, that's okay (useful for testing)
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}

	return &Metrics{
		UploadsTotal:   uploadsTotal,
		UploadDuration: uploadDuration,
		handler:        promhttp.Handler(),
	}, nil
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// ObserveOutcome records one finished submission.
func (m *Metrics) ObserveOutcome(outcome string, seconds float64) {
	m.UploadsTotal.WithLabelValues(outcome).Inc()
	m.UploadDuration.Observe(seconds)
}
