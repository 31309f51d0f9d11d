package api

import (
	"bytes"
	"context"
	"time"

	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/Domenick1991/officeseats/internal/service/schedule"
	"github.com/Domenick1991/officeseats/internal/service/users"
	"github.com/stretchr/testify/mock"
)

// MockSeatUseCase is a mock implementation of seats.SeatUseCase
type MockSeatUseCase struct {
	mock.Mock
}

func (m *MockSeatUseCase) ListSeats(ctx context.Context) ([]domain.Seat, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Seat), args.Error(1)
}

func (m *MockSeatUseCase) GetSeat(ctx context.Context, id string) (*domain.Seat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Seat), args.Error(1)
}

func (m *MockSeatUseCase) SeatByLabel(ctx context.Context, label string) (*domain.Seat, error) {
	args := m.Called(ctx, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Seat), args.Error(1)
}

func (m *MockSeatUseCase) SeatOwnedBy(ctx context.Context, userID string) (*domain.Seat, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Seat), args.Error(1)
}

func (m *MockSeatUseCase) RebindSeat(ctx context.Context, seatID string, ownerID *string) (*domain.Seat, error) {
	args := m.Called(ctx, seatID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Seat), args.Error(1)
}

func (m *MockSeatUseCase) Provision(ctx context.Context, designated, floater int) error {
	return m.Called(ctx, designated, floater).Error(0)
}

// MockLedgerUseCase is a mock implementation of ledger.LedgerUseCase
type MockLedgerUseCase struct {
	mock.Mock
}

func (m *MockLedgerUseCase) GetDayView(ctx context.Context, date time.Time, viewerID string, now time.Time) (*domain.DayView, error) {
	args := m.Called(ctx, date, viewerID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DayView), args.Error(1)
}

func (m *MockLedgerUseCase) Book(ctx context.Context, intent domain.BookingIntent, now time.Time) (*domain.DayAssignment, error) {
	args := m.Called(ctx, intent, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DayAssignment), args.Error(1)
}

func (m *MockLedgerUseCase) Release(ctx context.Context, seatID string, date time.Time, userID string, now time.Time) (*domain.DayAssignment, error) {
	args := m.Called(ctx, seatID, date, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DayAssignment), args.Error(1)
}

func (m *MockLedgerUseCase) CancelBooking(ctx context.Context, seatID string, date time.Time, userID string, now time.Time) (*domain.DayAssignment, error) {
	args := m.Called(ctx, seatID, date, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DayAssignment), args.Error(1)
}

func (m *MockLedgerUseCase) WeeklyOccupancy(ctx context.Context, weekOf time.Time) ([]domain.DailyOccupancy, error) {
	args := m.Called(ctx, weekOf)
	return args.Get(0).([]domain.DailyOccupancy), args.Error(1)
}

func (m *MockLedgerUseCase) BookingsOf(ctx context.Context, userID string, from, to time.Time) ([]domain.DayAssignment, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Get(0).([]domain.DayAssignment), args.Error(1)
}

// MockUserUseCase is a mock implementation of users.UserUseCase
type MockUserUseCase struct {
	mock.Mock
}

func (m *MockUserUseCase) SignUp(ctx context.Context, input users.SignUpInput) (*users.Profile, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.Profile), args.Error(1)
}

func (m *MockUserUseCase) Get(ctx context.Context, id string) (*users.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.Profile), args.Error(1)
}

func (m *MockUserUseCase) Search(ctx context.Context, query string) ([]users.Profile, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]users.Profile), args.Error(1)
}

func (m *MockUserUseCase) UpdateAssignment(ctx context.Context, id string, input users.UpdateAssignmentInput) (*users.Profile, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.Profile), args.Error(1)
}

func (m *MockUserUseCase) BatchOf(ctx context.Context, userID string) (domain.Batch, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Batch), args.Error(1)
}

func (m *MockUserUseCase) Dashboard(ctx context.Context, userID string, now time.Time) (*users.Dashboard, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.Dashboard), args.Error(1)
}

// MockExportUseCase is a mock implementation of report.ExportUseCase
type MockExportUseCase struct {
	mock.Mock
}

func (m *MockExportUseCase) ExportOccupancy(ctx context.Context, weekOf time.Time) (*bytes.Buffer, string, error) {
	args := m.Called(ctx, weekOf)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*bytes.Buffer), args.String(1), args.Error(2)
}

// MockScheduleUseCase is a mock implementation of schedule.ScheduleUseCase
type MockScheduleUseCase struct {
	mock.Mock
}

func (m *MockScheduleUseCase) Parity(day time.Time) domain.WeekParity {
	return m.Called(day).Get(0).(domain.WeekParity)
}

func (m *MockScheduleUseCase) IsOfficeDay(batch domain.Batch, day time.Time) bool {
	return m.Called(batch, day).Bool(0)
}

func (m *MockScheduleUseCase) Week(batch domain.Batch, day time.Time) schedule.Week {
	return m.Called(batch, day).Get(0).(schedule.Week)
}

func (m *MockScheduleUseCase) Schedule() domain.BatchSchedule {
	return m.Called().Get(0).(domain.BatchSchedule)
}
