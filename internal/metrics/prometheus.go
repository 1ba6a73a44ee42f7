package metrics

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/arnavshah/housekeeping-api-go/pkg/allocator"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements allocator.Recorder backed by Prometheus.
// Collectors are created and registered on first use.
type PrometheusRecorder struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	attempts        *prometheus.CounterVec
	attemptPenalty  prometheus.Histogram
	attemptDuration prometheus.Histogram
	searches        *prometheus.CounterVec
	searchDuration  prometheus.Histogram
	searchCompleted prometheus.Histogram
	bestPenalty     prometheus.Gauge
}

var _ allocator.Recorder = (*PrometheusRecorder)(nil)

// NewPrometheus creates a recorder. A nil registerer means the default one;
// an empty namespace means "housekeeping".
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "housekeeping"
	}
	return &PrometheusRecorder{reg: reg, namespace: namespace}
}

func (p *PrometheusRecorder) ensureRegistered() {
	p.once.Do(func() {
		p.attempts = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "attempts_total",
			Help:      "Finished allocation attempts by strategy family and outcome (clean, penalised).",
		}, []string{"strategy", "outcome"})

		p.attemptPenalty = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "attempt_penalty",
			Help:      "Penalty of each finished attempt.",
			Buckets:   []float64{0, 10, 100, 1_000, 10_000, 100_000, 1_000_000},
		})

		p.attemptDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "attempt_duration_seconds",
			Help:      "Wall time of a single attempt.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms .. ~1s
		})

		p.searches = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "searches_total",
			Help:      "Searches by result (ok, infeasible, no_candidate, error).",
		}, []string{"result"})

		p.searchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "search_duration_seconds",
			Help:      "Wall time of a whole search.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms .. ~10s
		})

		p.searchCompleted = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "search_completed_attempts",
			Help:      "Attempts that finished within a search.",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512},
		})

		p.bestPenalty = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "last_best_penalty",
			Help:      "Penalty of the candidate returned by the latest successful search.",
		})

		p.reg.MustRegister(
			p.attempts, p.attemptPenalty, p.attemptDuration,
			p.searches, p.searchDuration, p.searchCompleted, p.bestPenalty,
		)
	})
}

// ObserveAttempt records one finished attempt
func (p *PrometheusRecorder) ObserveAttempt(strategy string, penalty float64, clean bool, elapsed time.Duration) {
	p.ensureRegistered()
	outcome := "penalised"
	if clean {
		outcome = "clean"
	}
	p.attempts.WithLabelValues(family(strategy), outcome).Inc()
	p.attemptPenalty.Observe(penalty)
	p.attemptDuration.Observe(elapsed.Seconds())
}

// ObserveSearch records the end of a search
func (p *PrometheusRecorder) ObserveSearch(completed int, penalty float64, elapsed time.Duration, err error) {
	p.ensureRegistered()
	p.searches.WithLabelValues(result(err)).Inc()
	p.searchDuration.Observe(elapsed.Seconds())
	if err != nil {
		return
	}
	p.searchCompleted.Observe(float64(completed))
	p.bestPenalty.Set(penalty)
}

// family drops the attempt index so shuffled strategies share one series
func family(strategy string) string {
	if i := strings.IndexByte(strategy, '#'); i >= 0 {
		return strategy[:i]
	}
	return strategy
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, allocator.ErrInfeasible):
		return "infeasible"
	case errors.Is(err, allocator.ErrNoCandidate):
		return "no_candidate"
	}
	return "error"
}
