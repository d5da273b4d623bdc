package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultSuccess   = "success"
	ResultHTTPError = "http_error"
	ResultTransport = "transport_error"
	ResultBadShape  = "bad_response"
	ResultEmpty     = "empty_reply"
	ResultBuild     = "build_error"
)

var (
	once sync.Once

	// ProviderAttemptsTotal counts outbound provider calls by provider key and outcome.
	ProviderAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chat_relay",
		Subsystem: "dispatcher",
		Name:      "provider_attempts_total",
		Help:      "Total number of provider calls made by the dispatcher, labeled by provider and result.",
	}, []string{"provider", "result"})

	// ProviderDurationSeconds is the wall time of a single provider call.
	ProviderDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chat_relay",
		Subsystem: "dispatcher",
		Name:      "provider_duration_seconds",
		Help:      "Time spent on a single provider call, including response parsing.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
	}, []string{"provider"})

	// FallbackTotal counts replies served by the rule-based responder, by bucket.
	FallbackTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chat_relay",
		Subsystem: "dispatcher",
		Name:      "fallback_replies_total",
		Help:      "Total number of replies produced by the rule-based responder, labeled by matched topic.",
	}, []string{"topic"})

	EnabledProviders = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "chat_relay",
		Subsystem: "registry",
		Name:      "enabled_providers",
		Help:      "Number of providers enabled at startup.",
	})
)

// Register registers relay metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ProviderAttemptsTotal,
			ProviderDurationSeconds,
			FallbackTotal,
			EnabledProviders,
		)
	})
}
