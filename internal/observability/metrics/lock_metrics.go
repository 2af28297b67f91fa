package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/sathi/pkg/db"
)

const (
	ConflictReasonInsufficientQuantity = "insufficient_quantity"
	ConflictReasonDeadlineExceeded     = "deadline_exceeded"
	ConflictReasonDBLockTimeout        = "db_lock_timeout"
	ConflictReasonSerialization        = "serialization_failure"
	ConflictReasonCheckViolation       = "check_violation"
	ConflictReasonUnknown              = "unknown"
)

const (
	LockResourceByID      = "resource_by_id"
	LockCrisisRequestByID = "crisis_request_by_id"
)

// LockMetrics tracks row lock waits and contention in the dispatch and
// replenishment critical sections. They are exported through the
// prometheus registry served on /metrics.
type LockMetrics struct {
	lockWait  *prometheus.HistogramVec
	conflicts *prometheus.CounterVec
}

var (
	lockMetricsOnce sync.Once
	lockMetrics     *LockMetrics
)

// Locks returns the process-wide lock metrics registered on the default
// prometheus registerer.
func Locks(cfg Config) *LockMetrics {
	lockMetricsOnce.Do(func() {
		lockMetrics = newLockMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return lockMetrics
}

func newLockMetrics(registerer prometheus.Registerer, cfg Config) *LockMetrics {
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName(cfg),
		"env":     environment,
	}

	lockWait := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "sathi_db_lock_wait_seconds",
		Help:        "Time spent acquiring SELECT FOR UPDATE row locks.",
		Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		ConstLabels: constLabels,
	}, []string{"resource"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "sathi_dispatch_conflicts_total",
		Help:        "Dispatch attempts rejected because of contention or exhausted stock.",
		ConstLabels: constLabels,
	}, []string{"reason"})

	registerer.MustRegister(lockWait, conflicts)

	return &LockMetrics{lockWait: lockWait, conflicts: conflicts}
}

// ObserveLockWait records how long a row lock took to acquire.
func (m *LockMetrics) ObserveLockWait(resource string, d time.Duration) {
	if m == nil {
		return
	}
	m.lockWait.WithLabelValues(resource).Observe(d.Seconds())
}

func (m *LockMetrics) IncConflict(reason string) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(reason).Inc()
}

// ClassifyConflictReason maps storage errors to a low-cardinality reason.
func ClassifyConflictReason(err error) string {
	switch {
	case err == nil:
		return ConflictReasonUnknown
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ConflictReasonDeadlineExceeded
	case db.IsLockNotAvailable(err):
		return ConflictReasonDBLockTimeout
	case db.IsSerializationFailure(err):
		return ConflictReasonSerialization
	case db.IsCheckViolation(err):
		return ConflictReasonCheckViolation
	default:
		return ConflictReasonUnknown
	}
}
