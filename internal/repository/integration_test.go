//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

type PGSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	pool      *pgxpool.Pool
}

func TestPGSuite(t *testing.T) {
	suite.Run(t, new(PGSuite))
}

func (s *PGSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:17-alpine",
		postgres.WithDatabase("officeseats"),
		postgres.WithUsername("officeseats"),
		postgres.WithPassword("officeseats"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.pool, err = pgxpool.New(ctx, dsn)
	s.Require().NoError(err)
	s.Require().NoError(RunMigrations(s.pool, zap.NewNop()))
}

func (s *PGSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *PGSuite) TestSeatsAssignmentsAndUsers() {
	ctx := context.Background()
	t := s.T()

	users := NewUserRepository(s.pool)
	alex := &domain.User{ID: "u-alex", Name: "Alex Johnson", Email: "alex@company.com", Squad: "Squad 3", Batch: domain.Batch1, Role: domain.RoleEmployee, PasswordHash: []byte("x")}
	require.NoError(t, users.Create(ctx, alex))
	require.ErrorIs(t, users.Create(ctx, &domain.User{ID: "u-dup", Name: "Dup", Email: "alex@company.com", Batch: domain.Batch1, Role: domain.RoleEmployee, PasswordHash: []byte("x")}), domain.ErrEmailTaken)

	seats := NewSeatRepository(s.pool)
	require.NoError(t, seats.Insert(ctx, []domain.Seat{
		domain.NewSeat(domain.SeatKindFloater, 1),
		domain.NewSeat(domain.SeatKindDesignated, 12),
	}))
	list, err := seats.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "D-12", list[0].Label)

	owner := alex.ID
	seat, err := seats.UpdateOwner(ctx, "d-12", &owner)
	require.NoError(t, err)
	require.True(t, seat.OwnedBy(alex.ID))

	assignments := NewAssignmentRepository(s.pool)
	day, _ := domain.ParseDay("2025-03-10")
	require.NoError(t, assignments.Save(ctx, domain.Assignment{SeatID: "d-12", Date: day, Released: true}))
	got, err := assignments.Get(ctx, "d-12", day)
	require.NoError(t, err)
	require.True(t, got.Released)
	require.True(t, got.Date.Equal(day))

	require.NoError(t, assignments.Save(ctx, domain.Assignment{SeatID: "d-12", Date: day}))
	got, err = assignments.Get(ctx, "d-12", day)
	require.NoError(t, err)
	require.True(t, got.IsZero())

	schedules := NewScheduleRepository(s.pool)
	require.NoError(t, schedules.Replace(ctx, domain.DefaultBatchSchedule()))
	loaded, err := schedules.Load(ctx)
	require.NoError(t, err)
	require.True(t, loaded.IsOfficeDay(domain.Batch2, domain.Week2, time.Wednesday))
	require.False(t, loaded.IsOfficeDay(domain.Batch2, domain.Week1, time.Wednesday))
}
