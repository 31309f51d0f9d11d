package eligibility

import (
	"time"

	"github.com/Domenick1991/officeseats/internal/domain"
)

// Input is everything a decision depends on. Parity and Weekday are resolved by the caller.
type Input struct {
	UserID     string
	Batch      domain.Batch
	Seat       domain.Seat
	Date       time.Time
	Weekday    time.Weekday
	Parity     domain.WeekParity
	Now        time.Time
	Assignment domain.Assignment
}

type Decision struct {
	Allowed bool
	// Reason is one of ErrPastDate, ErrSeatReserved or ErrTooEarly when not allowed.
	Reason error
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason error) Decision {
	return Decision{Reason: reason}
}

// Evaluator applies the booking rules. It holds no state besides its configuration.
type Evaluator struct {
	schedule     domain.BatchSchedule
	loc          *time.Location
	cutoffHour   int
	cutoffMinute int
}

type Option func(*Evaluator)

// WithCutoff sets the local time of day on the prior working day after which
// floater seats open for non-office days. Default 15:00.
func WithCutoff(hour, minute int) Option {
	return func(e *Evaluator) {
		e.cutoffHour = hour
		e.cutoffMinute = minute
	}
}

func WithLocation(loc *time.Location) Option {
	return func(e *Evaluator) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func NewEvaluator(schedule domain.BatchSchedule, opts ...Option) *Evaluator {
	e := &Evaluator{
		schedule:   schedule,
		loc:        time.UTC,
		cutoffHour: 15,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Evaluator) Location() *time.Location {
	return e.loc
}

// Evaluate runs the rules in order; the first that matches decides.
func (e *Evaluator) Evaluate(in Input) Decision {
	if in.Date.Before(domain.Day(in.Now, e.loc)) {
		return deny(domain.ErrPastDate)
	}

	if in.Seat.IsDesignated() && in.Seat.OwnerID != nil && !in.Seat.OwnedBy(in.UserID) && !in.Assignment.Released {
		return deny(domain.ErrSeatReserved)
	}

	if !in.Seat.IsDesignated() && !e.schedule.IsOfficeDay(in.Batch, in.Parity, in.Weekday) {
		if in.Now.Before(e.OpensAt(in.Date)) {
			return deny(domain.ErrTooEarly)
		}
	}

	return allow()
}

// OpensAt is the instant a non-office day becomes bookable: the cutoff time on the
// working day before date, in the evaluator's zone.
func (e *Evaluator) OpensAt(date time.Time) time.Time {
	prior := domain.PriorWorkingDay(date)
	return time.Date(prior.Year(), prior.Month(), prior.Day(), e.cutoffHour, e.cutoffMinute, 0, 0, e.loc)
}
