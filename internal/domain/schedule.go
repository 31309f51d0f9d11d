package domain

import (
	"fmt"
	"sort"
	"time"
)

type Batch string

const (
	Batch1 Batch = "Batch 1"
	Batch2 Batch = "Batch 2"
)

func (b Batch) Valid() bool {
	return b == Batch1 || b == Batch2
}

func ParseBatch(s string) (Batch, error) {
	b := Batch(s)
	if !b.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidBatch, s)
	}
	return b, nil
}

type WeekParity string

const (
	Week1 WeekParity = "week1"
	Week2 WeekParity = "week2"
)

var Parities = []WeekParity{Week1, Week2}

// BatchSchedule maps a batch and week parity to the weekdays the batch is in the office.
type BatchSchedule map[Batch]map[WeekParity][]time.Weekday

// DefaultBatchSchedule is the alternating two-week pattern used when nothing else is configured.
func DefaultBatchSchedule() BatchSchedule {
	return BatchSchedule{
		Batch1: {
			Week1: {time.Monday, time.Tuesday, time.Wednesday},
			Week2: {time.Thursday, time.Friday},
		},
		Batch2: {
			Week1: {time.Thursday, time.Friday},
			Week2: {time.Monday, time.Tuesday, time.Wednesday},
		},
	}
}

func (s BatchSchedule) IsOfficeDay(batch Batch, parity WeekParity, day time.Weekday) bool {
	for _, d := range s[batch][parity] {
		if d == day {
			return true
		}
	}
	return false
}

// Days returns the sorted office weekdays of batch for parity.
func (s BatchSchedule) Days(batch Batch, parity WeekParity) []time.Weekday {
	days := append([]time.Weekday(nil), s[batch][parity]...)
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// Validate checks that only Monday..Friday are used and that, within a week parity,
// no weekday belongs to two batches.
func (s BatchSchedule) Validate() error {
	for _, parity := range Parities {
		seen := make(map[time.Weekday]Batch)
		for batch, weeks := range s {
			if !batch.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidBatch, batch)
			}
			for _, day := range weeks[parity] {
				if day < time.Monday || day > time.Friday {
					return fmt.Errorf("batch %s %s: %s is not a working day", batch, parity, day)
				}
				if other, ok := seen[day]; ok && other != batch {
					return fmt.Errorf("%s %s is scheduled for both %s and %s", parity, day, other, batch)
				}
				seen[day] = batch
			}
		}
	}
	return nil
}

// ParseWeekday accepts the short English day names used in schedules ("Mon".."Fri").
func ParseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s == d.String()[:3] || s == d.String() {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
