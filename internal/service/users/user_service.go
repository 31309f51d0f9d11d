package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/Domenick1991/officeseats/internal/repository"
	"github.com/Domenick1991/officeseats/internal/service/schedule"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// upcomingDays is how far ahead the dashboard lists a user's bookings.
const upcomingDays = 14

type UserUseCase interface {
	SignUp(ctx context.Context, input SignUpInput) (*Profile, error)
	Get(ctx context.Context, id string) (*Profile, error)
	Search(ctx context.Context, query string) ([]Profile, error)
	UpdateAssignment(ctx context.Context, id string, input UpdateAssignmentInput) (*Profile, error)
	BatchOf(ctx context.Context, userID string) (domain.Batch, error)
	Dashboard(ctx context.Context, userID string, now time.Time) (*Dashboard, error)
}

type SeatRegistry interface {
	ListSeats(ctx context.Context) ([]domain.Seat, error)
	SeatByLabel(ctx context.Context, label string) (*domain.Seat, error)
	SeatOwnedBy(ctx context.Context, userID string) (*domain.Seat, error)
	RebindSeat(ctx context.Context, seatID string, ownerID *string) (*domain.Seat, error)
}

type Bookings interface {
	BookingsOf(ctx context.Context, userID string, from, to time.Time) ([]domain.DayAssignment, error)
}

type SignUpInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Squad    string `json:"squad" validate:"required,squad"`
	Batch    string `json:"batch" validate:"required,batch"`
}

// UpdateAssignmentInput is an admin edit. A nil SeatLabel leaves the seat alone,
// an empty one unbinds the user's designated seat.
type UpdateAssignmentInput struct {
	Batch     string  `json:"batch" validate:"omitempty,batch"`
	SeatLabel *string `json:"seat_label"`
}

// Profile is a user together with their designated seat, if any.
type Profile struct {
	User      domain.User
	SeatID    string
	SeatLabel string
}

type Dashboard struct {
	Profile
	Today       time.Time
	Parity      domain.WeekParity
	OfficeToday bool
	Week        schedule.Week
	Upcoming    []domain.DayAssignment
}

// BatchDirectory resolves user batches straight from the store. Unknown users have no batch.
type BatchDirectory struct {
	repo repository.UserRepository
}

func NewBatchDirectory(repo repository.UserRepository) *BatchDirectory {
	return &BatchDirectory{repo: repo}
}

func (d *BatchDirectory) BatchOf(ctx context.Context, userID string) (domain.Batch, error) {
	user, err := d.repo.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return user.Batch, nil
}

type UserService struct {
	repo       repository.UserRepository
	batches    *BatchDirectory
	seats      SeatRegistry
	bookings   Bookings
	schedule   schedule.ScheduleUseCase
	validate   *validator.Validate
	loc        *time.Location
	bcryptCost int
	logger     *zap.Logger
}

type UserServiceOption func(*UserService)

func WithBookings(bookings Bookings) UserServiceOption {
	return func(s *UserService) {
		s.bookings = bookings
	}
}

func WithLocation(loc *time.Location) UserServiceOption {
	return func(s *UserService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithBcryptCost(cost int) UserServiceOption {
	return func(s *UserService) {
		s.bcryptCost = cost
	}
}

func NewUserService(
	repo repository.UserRepository,
	seats SeatRegistry,
	sched schedule.ScheduleUseCase,
	logger *zap.Logger,
	opts ...UserServiceOption,
) *UserService {
	s := &UserService{
		repo:       repo,
		batches:    NewBatchDirectory(repo),
		seats:      seats,
		schedule:   sched,
		validate:   newValidator(),
		loc:        time.UTC,
		bcryptCost: bcrypt.DefaultCost,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *UserService) SignUp(ctx context.Context, input SignUpInput) (*Profile, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		Squad:        input.Squad,
		Batch:        domain.Batch(input.Batch),
		Role:         domain.RoleEmployee,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", zap.String("user_id", user.ID), zap.String("batch", string(user.Batch)))
	return &Profile{User: *user}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*Profile, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, *user)
}

// Search matches name or email case-insensitively; an empty query lists everyone.
func (s *UserService) Search(ctx context.Context, query string) ([]Profile, error) {
	found, err := s.repo.Search(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, err
	}

	seats, err := s.seats.ListSeats(ctx)
	if err != nil {
		return nil, err
	}
	owned := make(map[string]domain.Seat)
	for _, seat := range seats {
		if seat.OwnerID != nil {
			owned[*seat.OwnerID] = seat
		}
	}

	profiles := make([]Profile, 0, len(found))
	for _, u := range found {
		p := Profile{User: u}
		if seat, ok := owned[u.ID]; ok {
			p.SeatID, p.SeatLabel = seat.ID, seat.Label
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// UpdateAssignment changes a user's batch and/or designated seat.
func (s *UserService) UpdateAssignment(ctx context.Context, id string, input UpdateAssignmentInput) (*Profile, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// The seat move runs first so an unknown label leaves the batch untouched.
	if input.SeatLabel != nil {
		if err := s.moveSeat(ctx, id, strings.TrimSpace(*input.SeatLabel)); err != nil {
			return nil, err
		}
	}

	if input.Batch != "" && domain.Batch(input.Batch) != user.Batch {
		if user, err = s.repo.UpdateBatch(ctx, id, domain.Batch(input.Batch)); err != nil {
			return nil, err
		}
		s.logger.Info("user batch changed", zap.String("user_id", id), zap.String("batch", input.Batch))
	}

	return s.profile(ctx, *user)
}

func (s *UserService) moveSeat(ctx context.Context, userID, label string) error {
	if label == "" {
		current, err := s.seats.SeatOwnedBy(ctx, userID)
		if err != nil || current == nil {
			return err
		}
		_, err = s.seats.RebindSeat(ctx, current.ID, nil)
		return err
	}

	seat, err := s.seats.SeatByLabel(ctx, label)
	if err != nil {
		return err
	}
	if seat.OwnedBy(userID) {
		return nil
	}
	_, err = s.seats.RebindSeat(ctx, seat.ID, &userID)
	return err
}

func (s *UserService) BatchOf(ctx context.Context, userID string) (domain.Batch, error) {
	return s.batches.BatchOf(ctx, userID)
}

func (s *UserService) Dashboard(ctx context.Context, userID string, now time.Time) (*Dashboard, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := domain.Day(now, s.loc)
	d := &Dashboard{
		Profile:     *p,
		Today:       today,
		Parity:      s.schedule.Parity(today),
		OfficeToday: s.schedule.IsOfficeDay(p.User.Batch, today),
		Week:        s.schedule.Week(p.User.Batch, today),
		Upcoming:    []domain.DayAssignment{},
	}
	if s.bookings != nil {
		upcoming, err := s.bookings.BookingsOf(ctx, userID, today, today.AddDate(0, 0, upcomingDays))
		if err != nil {
			return nil, err
		}
		d.Upcoming = upcoming
	}
	return d, nil
}

func (s *UserService) profile(ctx context.Context, user domain.User) (*Profile, error) {
	p := &Profile{User: user}
	seat, err := s.seats.SeatOwnedBy(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if seat != nil {
		p.SeatID, p.SeatLabel = seat.ID, seat.Label
	}
	return p, nil
}

var _ UserUseCase = (*UserService)(nil)
