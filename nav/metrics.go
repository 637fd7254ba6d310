package nav

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ChoreographerMetrics exposes Prometheus metrics for the navigation
// dispatch loop, namespaced "navchoreo_":
//
//   - queue_depth (gauge): intents waiting in the local intent source.
//   - command_buffer_depth (gauge): commands buffered awaiting the view layer.
//   - intent_dispatch_latency_ms (histogram): time from admission to command emission.
//   - validator_invocations_total (counter): validator chain evaluations, by result kind.
//   - redirect_chains_total (counter): transactions opened via Redirect.
//   - intent_retries_total (counter): IllegalState retry attempts.
//   - debounce_suppressed_total (counter): intents dropped by debounce-distinct.
//   - timeouts_fired_total (counter): InteractionTimeout intents admitted.
//   - transactions_active (gauge): redirect chains currently in progress (0 or 1).
type ChoreographerMetrics struct {
	queueDepth           prometheus.Gauge
	commandBufferDepth   prometheus.Gauge
	dispatchLatency      prometheus.Histogram
	validatorInvocations *prometheus.CounterVec
	redirectChains       prometheus.Counter
	intentRetries        prometheus.Counter
	debounceSuppressed   prometheus.Counter
	timeoutsFired        prometheus.Counter
	transactionsActive   prometheus.Gauge

	mu      sync.RWMutex
	enabled bool
}

// NewChoreographerMetrics registers all choreographer metrics with
// registry. Pass prometheus.DefaultRegisterer for the global registry.
func NewChoreographerMetrics(registry prometheus.Registerer) *ChoreographerMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &ChoreographerMetrics{
		enabled: true,
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "navchoreo",
			Name:      "queue_depth",
			Help:      "Intents currently waiting in the local intent source",
		}),
		commandBufferDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "navchoreo",
			Name:      "command_buffer_depth",
			Help:      "Commands buffered awaiting consumption by the view layer",
		}),
		dispatchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "navchoreo",
			Name:      "intent_dispatch_latency_ms",
			Help:      "Time from intent admission to resulting command emission, in milliseconds",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		validatorInvocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "navchoreo",
			Name:      "validator_invocations_total",
			Help:      "Validator chain evaluations, labeled by resulting kind",
		}, []string{"result"}),
		redirectChains: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "navchoreo",
			Name:      "redirect_chains_total",
			Help:      "Transactions opened in response to a Redirect validation result",
		}),
		intentRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "navchoreo",
			Name:      "intent_retries_total",
			Help:      "IllegalState retry attempts across all intents",
		}),
		debounceSuppressed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "navchoreo",
			Name:      "debounce_suppressed_total",
			Help:      "Intents dropped by debounce-distinct",
		}),
		timeoutsFired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "navchoreo",
			Name:      "timeouts_fired_total",
			Help:      "InteractionTimeout intents admitted into the dispatch loop",
		}),
		transactionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "navchoreo",
			Name:      "transactions_active",
			Help:      "Redirect-chain transactions currently in progress (0 or 1)",
		}),
	}
}

func (m *ChoreographerMetrics) isEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// SetQueueDepth records the current local-intent-source backlog.
func (m *ChoreographerMetrics) SetQueueDepth(n int) {
	if !m.isEnabled() {
		return
	}
	m.queueDepth.Set(float64(n))
}

// SetCommandBufferDepth records the current command-channel backlog.
func (m *ChoreographerMetrics) SetCommandBufferDepth(n int) {
	if !m.isEnabled() {
		return
	}
	m.commandBufferDepth.Set(float64(n))
}

// RecordDispatchLatency records the admission-to-emission latency of a
// single intent.
func (m *ChoreographerMetrics) RecordDispatchLatency(d time.Duration) {
	if !m.isEnabled() {
		return
	}
	m.dispatchLatency.Observe(float64(d.Milliseconds()))
}

// RecordValidatorInvocation increments the validator-invocation counter
// for the given result kind label ("valid", "ignore", "invalid",
// "redirect").
func (m *ChoreographerMetrics) RecordValidatorInvocation(result string) {
	if !m.isEnabled() {
		return
	}
	m.validatorInvocations.WithLabelValues(result).Inc()
}

// IncrementRedirectChains records a newly-opened redirect transaction.
func (m *ChoreographerMetrics) IncrementRedirectChains() {
	if !m.isEnabled() {
		return
	}
	m.redirectChains.Inc()
}

// IncrementIntentRetries records one IllegalState retry attempt.
func (m *ChoreographerMetrics) IncrementIntentRetries() {
	if !m.isEnabled() {
		return
	}
	m.intentRetries.Inc()
}

// IncrementDebounceSuppressed records one debounced-away intent.
func (m *ChoreographerMetrics) IncrementDebounceSuppressed() {
	if !m.isEnabled() {
		return
	}
	m.debounceSuppressed.Inc()
}

// IncrementTimeoutsFired records one admitted InteractionTimeout intent.
func (m *ChoreographerMetrics) IncrementTimeoutsFired() {
	if !m.isEnabled() {
		return
	}
	m.timeoutsFired.Inc()
}

// SetTransactionsActive reports whether a redirect chain is in progress.
func (m *ChoreographerMetrics) SetTransactionsActive(active bool) {
	if !m.isEnabled() {
		return
	}
	if active {
		m.transactionsActive.Set(1)
		return
	}
	m.transactionsActive.Set(0)
}

// Disable stops metric recording (useful for tests).
func (m *ChoreographerMetrics) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = false
}

// Enable resumes metric recording after Disable.
func (m *ChoreographerMetrics) Enable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = true
}
