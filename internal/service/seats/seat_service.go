package seats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/Domenick1991/officeseats/internal/metrics"
	"github.com/Domenick1991/officeseats/internal/repository"
	"go.uber.org/zap"
)

type SeatUseCase interface {
	ListSeats(ctx context.Context) ([]domain.Seat, error)
	GetSeat(ctx context.Context, id string) (*domain.Seat, error)
	SeatByLabel(ctx context.Context, label string) (*domain.Seat, error)
	SeatOwnedBy(ctx context.Context, userID string) (*domain.Seat, error)
	RebindSeat(ctx context.Context, seatID string, ownerID *string) (*domain.Seat, error)
	Provision(ctx context.Context, designated, floater int) error
}

type Cache interface {
	GetSeats(ctx context.Context) ([]domain.Seat, error)
	SetSeats(ctx context.Context, seats []domain.Seat) error
	InvalidateSeats(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type SeatService struct {
	repo     repository.SeatRepository
	cache    Cache
	producer Producer
	topic    string
	logger   *zap.Logger
	now      func() time.Time
}

type SeatServiceOption func(*SeatService)

func WithCache(cache Cache) SeatServiceOption {
	return func(s *SeatService) {
		s.cache = cache
	}
}

func WithProducer(producer Producer, topic string) SeatServiceOption {
	return func(s *SeatService) {
		s.producer = producer
		s.topic = topic
	}
}

func NewSeatService(repo repository.SeatRepository, logger *zap.Logger, opts ...SeatServiceOption) *SeatService {
	s := &SeatService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListSeats returns designated seats before floaters, each group by number.
func (s *SeatService) ListSeats(ctx context.Context) ([]domain.Seat, error) {
	if s.cache != nil {
		cached, err := s.cache.GetSeats(ctx)
		if err != nil {
			s.logger.Warn("seat cache read failed", zap.Error(err))
		}
		if err == nil && cached != nil {
			metrics.SeatCacheHit()
			return cached, nil
		}
		metrics.SeatCacheMiss()
	}

	seats, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && len(seats) > 0 {
		if err := s.cache.SetSeats(ctx, seats); err != nil {
			s.logger.Warn("seat cache write failed", zap.Error(err))
		}
	}
	return seats, nil
}

func (s *SeatService) GetSeat(ctx context.Context, id string) (*domain.Seat, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *SeatService) SeatByLabel(ctx context.Context, label string) (*domain.Seat, error) {
	return s.repo.GetByLabel(ctx, label)
}

// SeatOwnedBy returns nil, nil when userID has no designated seat.
func (s *SeatService) SeatOwnedBy(ctx context.Context, userID string) (*domain.Seat, error) {
	seat, err := s.repo.GetByOwner(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return seat, err
}

// RebindSeat changes the bound owner of a designated seat. A nil owner unbinds it.
// A user has at most one designated seat, so any seat previously bound to the new
// owner is unbound first.
func (s *SeatService) RebindSeat(ctx context.Context, seatID string, ownerID *string) (*domain.Seat, error) {
	seat, err := s.repo.GetByID(ctx, seatID)
	if err != nil {
		return nil, err
	}
	if !seat.IsDesignated() {
		return nil, domain.ErrSeatNotDesignated
	}
	if ownerID != nil && *ownerID == "" {
		ownerID = nil
	}

	if ownerID != nil {
		previous, err := s.repo.GetByOwner(ctx, *ownerID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			return nil, err
		case previous.ID != seat.ID:
			if _, err := s.repo.UpdateOwner(ctx, previous.ID, nil); err != nil {
				return nil, fmt.Errorf("unbind %s: %w", previous.Label, err)
			}
			s.publish(ctx, previous, "")
		}
	}

	updated, err := s.repo.UpdateOwner(ctx, seat.ID, ownerID)
	if err != nil {
		return nil, err
	}

	owner := ""
	if ownerID != nil {
		owner = *ownerID
	}
	s.logger.Info("seat rebound", zap.String("seat", updated.Label), zap.String("owner", owner))
	s.publish(ctx, updated, owner)
	s.invalidate(ctx)
	return updated, nil
}

// Provision seeds the registry when it is empty. An already provisioned registry is left untouched.
func (s *SeatService) Provision(ctx context.Context, designated, floater int) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Info("seat registry already provisioned", zap.Int("seats", count))
		return nil
	}
	if designated < 0 || floater < 0 {
		return fmt.Errorf("invalid seat counts %d/%d", designated, floater)
	}

	seats := make([]domain.Seat, 0, designated+floater)
	for i := 1; i <= designated; i++ {
		seats = append(seats, domain.NewSeat(domain.SeatKindDesignated, i))
	}
	for i := 1; i <= floater; i++ {
		seats = append(seats, domain.NewSeat(domain.SeatKindFloater, i))
	}
	if err := s.repo.Insert(ctx, seats); err != nil {
		return fmt.Errorf("provision seats: %w", err)
	}

	s.logger.Info("seat registry provisioned", zap.Int("designated", designated), zap.Int("floater", floater))
	s.invalidate(ctx)
	return nil
}

func (s *SeatService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSeats(ctx); err != nil {
		s.logger.Warn("seat cache invalidation failed", zap.Error(err))
	}
}

func (s *SeatService) publish(ctx context.Context, seat *domain.Seat, ownerID string) {
	if s.producer == nil || s.topic == "" {
		return
	}
	event := domain.SeatEvent{
		Type:       domain.EventSeatRebound,
		SeatID:     seat.ID,
		SeatLabel:  seat.Label,
		UserID:     ownerID,
		OccurredAt: s.now().UTC(),
	}
	err := s.producer.Publish(ctx, s.topic, seat.ID, event)
	metrics.EventPublished(event.Type, err)
	if err != nil {
		s.logger.Warn("failed to publish seat event", zap.String("type", event.Type), zap.String("seat", seat.ID), zap.Error(err))
	}
}

var _ SeatUseCase = (*SeatService)(nil)
