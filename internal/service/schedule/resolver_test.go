package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/Domenick1991/officeseats/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDay(s)
	require.NoError(t, err)
	return d
}

func TestResolver_Parity(t *testing.T) {
	r := NewResolver(day(t, "2025-01-06"), domain.DefaultBatchSchedule())

	tests := []struct {
		day  string
		want domain.WeekParity
	}{
		{"2025-01-06", domain.Week1},
		{"2025-01-10", domain.Week1},
		{"2025-01-12", domain.Week1},
		{"2025-01-13", domain.Week2},
		{"2025-01-20", domain.Week1},
		{"2025-03-10", domain.Week2},
		{"2025-03-07", domain.Week1},
		{"2024-12-30", domain.Week2},
		{"2024-12-23", domain.Week1},
	}
	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Parity(day(t, tt.day)))
		})
	}
}

func TestResolver_IsOfficeDay(t *testing.T) {
	r := NewResolver(day(t, "2025-01-06"), domain.DefaultBatchSchedule())

	// 2025-03-10 is a week2 Monday.
	assert.False(t, r.IsOfficeDay(domain.Batch1, day(t, "2025-03-10")))
	assert.True(t, r.IsOfficeDay(domain.Batch2, day(t, "2025-03-10")))
	// 2025-03-13 is a week2 Thursday.
	assert.True(t, r.IsOfficeDay(domain.Batch1, day(t, "2025-03-13")))
	assert.False(t, r.IsOfficeDay(domain.Batch2, day(t, "2025-03-13")))
	assert.False(t, r.IsOfficeDay(domain.Batch1, day(t, "2025-03-15")))
	assert.False(t, r.IsOfficeDay("", day(t, "2025-03-13")))
}

func TestResolver_Week(t *testing.T) {
	r := NewResolver(day(t, "2025-01-06"), domain.DefaultBatchSchedule())

	w := r.Week(domain.Batch1, day(t, "2025-03-12"))
	assert.Equal(t, domain.Week2, w.CurrentParity)
	assert.Equal(t, "2025-03-10", w.WeekStart)
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Wednesday}, w.Days[domain.Week1])
	assert.Equal(t, []string{"Thu", "Fri"}, w.DayNames()[domain.Week2])
}

func TestLoad_SeedsEmptyStore(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryScheduleRepository()

	r, err := Load(ctx, repo, day(t, "2025-01-06"), domain.DefaultBatchSchedule())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultBatchSchedule(), r.Schedule())

	stored, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultBatchSchedule(), stored)
}

func TestLoad_PrefersStoredSchedule(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryScheduleRepository()
	custom := domain.BatchSchedule{
		domain.Batch1: {domain.Week1: {time.Monday}, domain.Week2: {time.Tuesday}},
		domain.Batch2: {domain.Week1: {time.Friday}, domain.Week2: {time.Friday}},
	}
	require.NoError(t, repo.Replace(ctx, custom))

	r, err := Load(ctx, repo, day(t, "2025-01-06"), domain.DefaultBatchSchedule())
	require.NoError(t, err)
	assert.Equal(t, custom, r.Schedule())
}

type failingScheduleRepo struct{}

func (failingScheduleRepo) Load(context.Context) (domain.BatchSchedule, error) {
	return nil, errors.New("connection refused")
}

func (failingScheduleRepo) Replace(context.Context, domain.BatchSchedule) error { return nil }

func TestLoad_StoreError(t *testing.T) {
	_, err := Load(context.Background(), failingScheduleRepo{}, day(t, "2025-01-06"), domain.DefaultBatchSchedule())
	assert.ErrorContains(t, err, "connection refused")
}
