package programs

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "mutator_set"
	subsystem        = "programs"
)

// Outcome labels of RunsTotal.
const (
	outcomeAccepted       = "accepted"
	outcomeIntegrityError = "integrity_error"
	outcomeAssertionError = "assertion_error"
	outcomeError          = "error"
)

var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "runs_total",
			Help:      "Total number of program runs",
		},
		[]string{"program", "outcome"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "run_duration_seconds",
			Help:      "Time taken to run a program",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"program"},
	)

	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "batch_size",
			Help:      "Number of programs run together by Run",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		},
	)
)

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeAccepted
	case errors.Is(err, ErrIntegrity):
		return outcomeIntegrityError
	case errors.Is(err, ErrAssertion):
		return outcomeAssertionError
	default:
		return outcomeError
	}
}
