package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records cart and checkout activity. All methods are safe
// on a nil receiver so callers can run without a registry.
type EngineMetrics struct {
	cartMutations    *prometheus.CounterVec
	refreshFailures  prometheus.Counter
	uploadFailures   prometheus.Counter
	checkoutDuration prometheus.Histogram
	checkoutOutcomes *prometheus.CounterVec
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations issued against the remote store.",
	}, []string{"op"})
	refreshFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_refresh_failures_total",
		Help: "Failed cart snapshot refreshes.",
	})
	uploadFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "customization_upload_failures_total",
		Help: "Failed customization artifact uploads.",
	})
	checkoutDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	checkoutOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Checkout submissions by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(cartMutations, refreshFailures, uploadFailures, checkoutDuration, checkoutOutcomes)
	return &EngineMetrics{
		cartMutations:    cartMutations,
		refreshFailures:  refreshFailures,
		uploadFailures:   uploadFailures,
		checkoutDuration: checkoutDuration,
		checkoutOutcomes: checkoutOutcomes,
	}
}

// IncCartMutation increments the mutation counter for the named operation.
func (m *EngineMetrics) IncCartMutation(op string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncRefreshFailure increments the refresh failure counter.
func (m *EngineMetrics) IncRefreshFailure() {
	if m == nil || m.refreshFailures == nil {
		return
	}
	m.refreshFailures.Inc()
}

// IncUploadFailure increments the upload failure counter.
func (m *EngineMetrics) IncUploadFailure() {
	if m == nil || m.uploadFailures == nil {
		return
	}
	m.uploadFailures.Inc()
}

// ObserveCheckoutDuration records how long a checkout submission took.
func (m *EngineMetrics) ObserveCheckoutDuration(duration time.Duration) {
	if m == nil || m.checkoutDuration == nil {
		return
	}
	m.checkoutDuration.Observe(duration.Seconds())
}

// IncCheckoutOutcome increments the submission counter for the outcome.
func (m *EngineMetrics) IncCheckoutOutcome(outcome string) {
	if m == nil || m.checkoutOutcomes == nil {
		return
	}
	m.checkoutOutcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
