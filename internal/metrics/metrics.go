package metrics

import (
	"errors"
	"time"

	"github.com/Domenick1991/officeseats/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ledgerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "officeseats_ledger_operations_total",
			Help: "Ledger write operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	ledgerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "officeseats_ledger_operation_duration_seconds",
			Help:    "Duration of ledger write operations including lock wait",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	lockWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "officeseats_seat_lock_wait_seconds",
			Help:    "Time spent waiting for a per-seat lock",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	seatCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "officeseats_seat_cache_requests_total",
			Help: "Seat list cache lookups",
		},
		[]string{"result"},
	)

	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "officeseats_events_published_total",
			Help: "Seat events handed to the broker",
		},
		[]string{"type", "status"},
	)
)

var outcomes = []struct {
	err   error
	label string
}{
	{domain.ErrPastDate, "past_date"},
	{domain.ErrSeatTaken, "seat_taken"},
	{domain.ErrSeatReserved, "seat_reserved"},
	{domain.ErrTooEarly, "too_early"},
	{domain.ErrNotOwner, "not_owner"},
	{domain.ErrNotHolder, "not_holder"},
	{domain.ErrSeatNotDesignated, "seat_not_designated"},
	{domain.ErrNotFound, "not_found"},
	{domain.ErrLockTimeout, "lock_timeout"},
}

// Outcome maps err to a bounded label value.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	for _, o := range outcomes {
		if errors.Is(err, o.err) {
			return o.label
		}
	}
	return "error"
}

// ObserveLedger records one ledger write.
func ObserveLedger(operation, outcome string, started time.Time) {
	ledgerOperations.WithLabelValues(operation, outcome).Inc()
	ledgerDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func ObserveLockWait(d time.Duration) {
	lockWait.Observe(d.Seconds())
}

func SeatCacheHit() {
	seatCache.WithLabelValues("hit").Inc()
}

func SeatCacheMiss() {
	seatCache.WithLabelValues("miss").Inc()
}

func EventPublished(eventType string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	eventsPublished.WithLabelValues(eventType, status).Inc()
}
