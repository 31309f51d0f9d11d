package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/Domenick1991/officeseats/internal/metrics"
	"github.com/Domenick1991/officeseats/internal/repository"
	"github.com/Domenick1991/officeseats/internal/service/eligibility"
	"go.uber.org/zap"
)

var ErrUserRequired = errors.New("user id is required")

type LedgerUseCase interface {
	GetDayView(ctx context.Context, date time.Time, viewerID string, now time.Time) (*domain.DayView, error)
	Book(ctx context.Context, intent domain.BookingIntent, now time.Time) (*domain.DayAssignment, error)
	Release(ctx context.Context, seatID string, date time.Time, userID string, now time.Time) (*domain.DayAssignment, error)
	CancelBooking(ctx context.Context, seatID string, date time.Time, userID string, now time.Time) (*domain.DayAssignment, error)
	WeeklyOccupancy(ctx context.Context, weekOf time.Time) ([]domain.DailyOccupancy, error)
	BookingsOf(ctx context.Context, userID string, from, to time.Time) ([]domain.DayAssignment, error)
}

// SeatRegistry is the read side of the seat registry.
type SeatRegistry interface {
	ListSeats(ctx context.Context) ([]domain.Seat, error)
	GetSeat(ctx context.Context, id string) (*domain.Seat, error)
}

// KeyLocker serializes writers of one key. The returned func releases the lock.
type KeyLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// BatchLookup returns the batch of a user, or "" when the user has none.
type BatchLookup interface {
	BatchOf(ctx context.Context, userID string) (domain.Batch, error)
}

type ParityResolver interface {
	Parity(day time.Time) domain.WeekParity
}

type Evaluator interface {
	Evaluate(in eligibility.Input) eligibility.Decision
	Location() *time.Location
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type LedgerService struct {
	seats              SeatRegistry
	assignments        repository.AssignmentRepository
	locker             KeyLocker
	batches            BatchLookup
	parity             ParityResolver
	evaluator          Evaluator
	producer           Producer
	seatEventsTopic    string
	notificationsTopic string
	logger             *zap.Logger
}

type LedgerServiceOption func(*LedgerService)

func WithProducer(producer Producer, seatEventsTopic string) LedgerServiceOption {
	return func(s *LedgerService) {
		s.producer = producer
		s.seatEventsTopic = seatEventsTopic
	}
}

func WithNotificationsTopic(topic string) LedgerServiceOption {
	return func(s *LedgerService) {
		s.notificationsTopic = topic
	}
}

func WithLogger(logger *zap.Logger) LedgerServiceOption {
	return func(s *LedgerService) {
		s.logger = logger
	}
}

func NewLedgerService(
	seats SeatRegistry,
	assignments repository.AssignmentRepository,
	locker KeyLocker,
	batches BatchLookup,
	parity ParityResolver,
	evaluator Evaluator,
	opts ...LedgerServiceOption,
) *LedgerService {
	s := &LedgerService{
		seats:       seats,
		assignments: assignments,
		locker:      locker,
		batches:     batches,
		parity:      parity,
		evaluator:   evaluator,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetDayView resolves every seat for date and marks what viewerID could book.
func (s *LedgerService) GetDayView(ctx context.Context, date time.Time, viewerID string, now time.Time) (*domain.DayView, error) {
	date = domain.Day(date, time.UTC)

	seats, err := s.seats.ListSeats(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.assignments.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Assignment, len(rows))
	for _, a := range rows {
		byID[a.SeatID] = a
	}

	var batch domain.Batch
	if viewerID != "" {
		if batch, err = s.batches.BatchOf(ctx, viewerID); err != nil {
			return nil, err
		}
	}
	parity := s.parity.Parity(date)

	view := &domain.DayView{
		Date:   date,
		Parity: parity,
		Seats:  make([]domain.SeatView, 0, len(seats)),
	}
	for _, seat := range seats {
		a, ok := byID[seat.ID]
		if !ok {
			a = domain.Assignment{SeatID: seat.ID, Date: date}
		}
		resolved := domain.Resolve(seat, a)
		sv := domain.SeatView{
			Seat:     seat,
			Status:   resolved.Status,
			HolderID: resolved.HolderID,
		}
		if viewerID != "" {
			sv.Reason = s.check(viewerID, batch, parity, seat, a, now)
			sv.Bookable = sv.Reason == nil
		}
		view.Seats = append(view.Seats, sv)
	}
	return view, nil
}

// Book assigns the seat to the intent's user for the day. Rebooking a seat the user
// already holds returns the current assignment unchanged.
func (s *LedgerService) Book(ctx context.Context, intent domain.BookingIntent, now time.Time) (res *domain.DayAssignment, err error) {
	started := time.Now()
	defer func() { metrics.ObserveLedger("book", metrics.Outcome(err), started) }()

	if intent.UserID == "" {
		return nil, ErrUserRequired
	}
	date := domain.Day(intent.Date, time.UTC)

	seat, err := s.seats.GetSeat(ctx, intent.SeatID)
	if err != nil {
		return nil, err
	}
	if s.isPast(date, now) {
		return nil, domain.ErrPastDate
	}

	unlock, err := s.lock(ctx, seat.ID, date)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err := s.assignments.Get(ctx, seat.ID, date)
	if err != nil {
		return nil, err
	}
	if current.HolderID == intent.UserID {
		resolved := domain.Resolve(*seat, current)
		return &resolved, nil
	}
	if current.HolderID != "" {
		return nil, domain.ErrSeatTaken
	}

	batch, err := s.batches.BatchOf(ctx, intent.UserID)
	if err != nil {
		return nil, err
	}
	decision := s.evaluator.Evaluate(eligibility.Input{
		UserID:     intent.UserID,
		Batch:      batch,
		Seat:       *seat,
		Date:       date,
		Weekday:    date.Weekday(),
		Parity:     s.parity.Parity(date),
		Now:        now,
		Assignment: current,
	})
	if !decision.Allowed {
		return nil, domain.Ineligible(decision.Reason)
	}

	next := domain.Assignment{
		SeatID:   seat.ID,
		Date:     date,
		HolderID: intent.UserID,
		Released: current.Released && !seat.OwnedBy(intent.UserID),
	}
	if err := s.assignments.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("save assignment: %w", err)
	}

	resolved := domain.Resolve(*seat, next)
	s.logger.Info("seat booked",
		zap.String("seat", seat.Label),
		zap.String("date", domain.FormatDay(date)),
		zap.String("user", intent.UserID),
	)
	s.publish(ctx, domain.EventSeatBooked, seat, resolved, intent.UserID)
	return &resolved, nil
}

// Release lets the bound owner give up a designated seat for one day.
func (s *LedgerService) Release(ctx context.Context, seatID string, date time.Time, userID string, now time.Time) (res *domain.DayAssignment, err error) {
	started := time.Now()
	defer func() { metrics.ObserveLedger("release", metrics.Outcome(err), started) }()

	date = domain.Day(date, time.UTC)

	seat, err := s.seats.GetSeat(ctx, seatID)
	if err != nil {
		return nil, err
	}
	if !seat.IsDesignated() {
		return nil, domain.ErrSeatNotDesignated
	}
	if userID == "" || !seat.OwnedBy(userID) {
		return nil, domain.ErrNotOwner
	}
	if s.isPast(date, now) {
		return nil, domain.ErrPastDate
	}

	unlock, err := s.lock(ctx, seat.ID, date)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err := s.assignments.Get(ctx, seat.ID, date)
	if err != nil {
		return nil, err
	}
	if current.HolderID != "" && current.HolderID != userID {
		return nil, domain.ErrSeatTaken
	}
	if current.Released && current.HolderID == "" {
		resolved := domain.Resolve(*seat, current)
		return &resolved, nil
	}

	next := domain.Assignment{SeatID: seat.ID, Date: date, Released: true}
	if err := s.assignments.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("save assignment: %w", err)
	}

	resolved := domain.Resolve(*seat, next)
	s.logger.Info("seat released",
		zap.String("seat", seat.Label),
		zap.String("date", domain.FormatDay(date)),
		zap.String("user", userID),
	)
	s.publish(ctx, domain.EventSeatReleased, seat, resolved, userID)
	return &resolved, nil
}

// CancelBooking clears the holder. The release flag is kept, so a released seat goes back to released.
func (s *LedgerService) CancelBooking(ctx context.Context, seatID string, date time.Time, userID string, now time.Time) (res *domain.DayAssignment, err error) {
	started := time.Now()
	defer func() { metrics.ObserveLedger("cancel", metrics.Outcome(err), started) }()

	date = domain.Day(date, time.UTC)

	seat, err := s.seats.GetSeat(ctx, seatID)
	if err != nil {
		return nil, err
	}
	if s.isPast(date, now) {
		return nil, domain.ErrPastDate
	}

	unlock, err := s.lock(ctx, seat.ID, date)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err := s.assignments.Get(ctx, seat.ID, date)
	if err != nil {
		return nil, err
	}
	if userID == "" || current.HolderID != userID {
		return nil, domain.ErrNotHolder
	}

	next := domain.Assignment{SeatID: seat.ID, Date: date, Released: current.Released}
	if err := s.assignments.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("save assignment: %w", err)
	}

	resolved := domain.Resolve(*seat, next)
	s.logger.Info("booking cancelled",
		zap.String("seat", seat.Label),
		zap.String("date", domain.FormatDay(date)),
		zap.String("user", userID),
		zap.String("status", string(resolved.Status)),
	)
	s.publish(ctx, domain.EventBookingCancelled, seat, resolved, userID)
	return &resolved, nil
}

// WeeklyOccupancy counts, for Monday..Friday of the week containing weekOf, the seats that
// are booked or left to their bound owner.
func (s *LedgerService) WeeklyOccupancy(ctx context.Context, weekOf time.Time) ([]domain.DailyOccupancy, error) {
	monday := domain.WeekStart(domain.Day(weekOf, time.UTC))
	friday := monday.AddDate(0, 0, 4)

	seats, err := s.seats.ListSeats(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.assignments.ListByRange(ctx, monday, friday)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]map[string]domain.Assignment)
	for _, a := range rows {
		key := domain.FormatDay(a.Date)
		if byDay[key] == nil {
			byDay[key] = make(map[string]domain.Assignment)
		}
		byDay[key][a.SeatID] = a
	}

	out := make([]domain.DailyOccupancy, 0, 5)
	for d := monday; !d.After(friday); d = d.AddDate(0, 0, 1) {
		day := domain.DailyOccupancy{Date: d, Weekday: d.Weekday(), Capacity: len(seats)}
		for _, seat := range seats {
			a := byDay[domain.FormatDay(d)][seat.ID]
			switch domain.DeriveStatus(seat, a) {
			case domain.SeatStatusBooked:
				day.Occupied++
			case domain.SeatStatusDesignatedDefault:
				if seat.OwnerID != nil {
					day.Occupied++
				}
			}
		}
		out = append(out, day)
	}
	return out, nil
}

// BookingsOf lists the seats userID holds between from and to, inclusive.
func (s *LedgerService) BookingsOf(ctx context.Context, userID string, from, to time.Time) ([]domain.DayAssignment, error) {
	rows, err := s.assignments.ListByHolder(ctx, userID, domain.Day(from, time.UTC), domain.Day(to, time.UTC))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []domain.DayAssignment{}, nil
	}

	seats, err := s.seats.ListSeats(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Seat, len(seats))
	for _, seat := range seats {
		byID[seat.ID] = seat
	}

	out := make([]domain.DayAssignment, 0, len(rows))
	for _, a := range rows {
		seat, ok := byID[a.SeatID]
		if !ok {
			continue
		}
		out = append(out, domain.Resolve(seat, a))
	}
	return out, nil
}

// check mirrors Book's validation without writing, for the day view.
func (s *LedgerService) check(userID string, batch domain.Batch, parity domain.WeekParity, seat domain.Seat, a domain.Assignment, now time.Time) error {
	if a.HolderID == userID {
		return nil
	}
	if s.isPast(a.Date, now) {
		return domain.ErrPastDate
	}
	if a.HolderID != "" {
		return domain.ErrSeatTaken
	}
	decision := s.evaluator.Evaluate(eligibility.Input{
		UserID:     userID,
		Batch:      batch,
		Seat:       seat,
		Date:       a.Date,
		Weekday:    a.Date.Weekday(),
		Parity:     parity,
		Now:        now,
		Assignment: a,
	})
	if !decision.Allowed {
		return decision.Reason
	}
	return nil
}

func (s *LedgerService) isPast(date, now time.Time) bool {
	return date.Before(domain.Day(now, s.evaluator.Location()))
}

func (s *LedgerService) lock(ctx context.Context, seatID string, date time.Time) (func(), error) {
	started := time.Now()
	unlock, err := s.locker.Lock(ctx, lockKey(seatID, date))
	metrics.ObserveLockWait(time.Since(started))
	if err != nil {
		s.logger.Warn("seat lock not acquired", zap.String("seat", seatID), zap.String("date", domain.FormatDay(date)), zap.Error(err))
		return nil, err
	}
	return unlock, nil
}

func lockKey(seatID string, date time.Time) string {
	return "seat:" + seatID + ":" + domain.FormatDay(date)
}

// publish is best-effort: the assignment is already committed.
func (s *LedgerService) publish(ctx context.Context, eventType string, seat *domain.Seat, a domain.DayAssignment, userID string) {
	if s.producer == nil || s.seatEventsTopic == "" {
		return
	}
	event := domain.SeatEvent{
		Type:       eventType,
		SeatID:     seat.ID,
		SeatLabel:  seat.Label,
		Date:       domain.FormatDay(a.Date),
		UserID:     userID,
		Status:     string(a.Status),
		OccurredAt: time.Now().UTC(),
	}
	err := s.producer.Publish(ctx, s.seatEventsTopic, seat.ID, event)
	if err == nil && s.notificationsTopic != "" {
		err = s.producer.Publish(ctx, s.notificationsTopic, seat.ID, event)
	}
	metrics.EventPublished(eventType, err)
	if err != nil {
		s.logger.Warn("failed to publish seat event",
			zap.String("type", eventType),
			zap.String("seat", seat.ID),
			zap.Error(err),
		)
	}
}

var _ LedgerUseCase = (*LedgerService)(nil)
