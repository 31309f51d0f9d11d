package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type MockOccupancy struct {
	mock.Mock
}

func (m *MockOccupancy) WeeklyOccupancy(ctx context.Context, weekOf time.Time) ([]domain.DailyOccupancy, error) {
	args := m.Called(ctx, weekOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyOccupancy), args.Error(1)
}

func TestExportService_ExportOccupancy(t *testing.T) {
	occ := &MockOccupancy{}
	svc := NewExportService(occ, zap.NewNop())
	ctx := context.Background()
	wednesday := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

	week := make([]domain.DailyOccupancy, 0, 5)
	for i := 0; i < 5; i++ {
		d := time.Date(2025, 3, 10+i, 0, 0, 0, 0, time.UTC)
		week = append(week, domain.DailyOccupancy{Date: d, Weekday: d.Weekday(), Occupied: 40 + i, Capacity: 50})
	}
	occ.On("WeeklyOccupancy", ctx, wednesday).Return(week, nil).Once()

	buf, filename, err := svc.ExportOccupancy(ctx, wednesday)
	require.NoError(t, err)
	assert.Equal(t, "occupancy_2025-03-10.xlsx", filename)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())

	header, err := f.GetCellValue(sheetName, "C2")
	require.NoError(t, err)
	assert.Equal(t, "Occupied", header)

	day, err := f.GetCellValue(sheetName, "A6")
	require.NoError(t, err)
	assert.Equal(t, "Thursday", day)

	occupied, err := f.GetCellValue(sheetName, "C7")
	require.NoError(t, err)
	assert.Equal(t, "44", occupied)
}

func TestExportService_ExportOccupancy_Error(t *testing.T) {
	occ := &MockOccupancy{}
	svc := NewExportService(occ, zap.NewNop())
	ctx := context.Background()
	weekOf := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

	occ.On("WeeklyOccupancy", ctx, weekOf).Return(nil, errors.New("db down")).Once()

	_, _, err := svc.ExportOccupancy(ctx, weekOf)
	assert.EqualError(t, err, "db down")
}
