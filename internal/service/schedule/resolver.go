package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/Domenick1991/officeseats/internal/repository"
)

type ScheduleUseCase interface {
	Parity(day time.Time) domain.WeekParity
	IsOfficeDay(batch domain.Batch, day time.Time) bool
	Week(batch domain.Batch, day time.Time) Week
	Schedule() domain.BatchSchedule
}

// Week describes a batch's office days for both parities, as shown on the dashboard.
type Week struct {
	Batch         domain.Batch                          `json:"batch"`
	CurrentParity domain.WeekParity                     `json:"current_parity"`
	WeekStart     string                                `json:"week_start"`
	Days          map[domain.WeekParity][]time.Weekday `json:"-"`
}

// DayNames returns Days as short English names ("Mon"), keyed by parity.
func (w Week) DayNames() map[domain.WeekParity][]string {
	names := make(map[domain.WeekParity][]string, len(w.Days))
	for parity, days := range w.Days {
		names[parity] = make([]string, 0, len(days))
		for _, d := range days {
			names[parity] = append(names[parity], d.String()[:3])
		}
	}
	return names
}

// Resolver turns calendar days into week parities. Weeks are counted from epoch,
// a Monday that starts a week1 week.
type Resolver struct {
	epoch    time.Time
	schedule domain.BatchSchedule
}

func NewResolver(epoch time.Time, schedule domain.BatchSchedule) *Resolver {
	return &Resolver{epoch: domain.WeekStart(epoch), schedule: schedule}
}

// Load builds a resolver from the stored schedule, seeding the store with fallback when it is empty.
func Load(ctx context.Context, repo repository.ScheduleRepository, epoch time.Time, fallback domain.BatchSchedule) (*Resolver, error) {
	stored, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load batch schedule: %w", err)
	}
	if stored == nil {
		if err := repo.Replace(ctx, fallback); err != nil {
			return nil, fmt.Errorf("seed batch schedule: %w", err)
		}
		stored = fallback
	}
	if err := stored.Validate(); err != nil {
		return nil, err
	}
	return NewResolver(epoch, stored), nil
}

func (r *Resolver) Parity(day time.Time) domain.WeekParity {
	weeks := int(domain.WeekStart(day).Sub(r.epoch).Hours() / (24 * 7))
	if weeks%2 == 0 {
		return domain.Week1
	}
	return domain.Week2
}

func (r *Resolver) IsOfficeDay(batch domain.Batch, day time.Time) bool {
	return r.schedule.IsOfficeDay(batch, r.Parity(day), day.Weekday())
}

func (r *Resolver) Week(batch domain.Batch, day time.Time) Week {
	days := make(map[domain.WeekParity][]time.Weekday, len(domain.Parities))
	for _, parity := range domain.Parities {
		days[parity] = r.schedule.Days(batch, parity)
	}
	return Week{
		Batch:         batch,
		CurrentParity: r.Parity(day),
		WeekStart:     domain.FormatDay(domain.WeekStart(day)),
		Days:          days,
	}
}

func (r *Resolver) Schedule() domain.BatchSchedule {
	return r.schedule
}

var _ ScheduleUseCase = (*Resolver)(nil)
