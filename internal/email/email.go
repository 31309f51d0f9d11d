package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/officeseats/internal/domain"
	"go.uber.org/zap"
)

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Sender turns seat events into user notifications. Delivery is a structured log line
// until an SMTP relay is configured.
type Sender struct {
	users  UserLookup
	logger *zap.Logger
}

func NewSender(users UserLookup, logger *zap.Logger) *Sender {
	return &Sender{users: users, logger: logger}
}

func (s *Sender) Send(ctx context.Context, event domain.SeatEvent) error {
	if event.UserID == "" {
		return nil
	}

	user, err := s.users.GetByID(ctx, event.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.logger.Warn("notification for unknown user dropped", zap.String("user_id", event.UserID), zap.String("type", event.Type))
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Info("email sent",
		zap.String("to", user.Email),
		zap.String("subject", Subject(event)),
		zap.String("seat", event.SeatLabel),
		zap.String("date", event.Date),
	)
	return nil
}

func Subject(event domain.SeatEvent) string {
	switch event.Type {
	case domain.EventSeatBooked:
		return fmt.Sprintf("Seat %s booked for %s", event.SeatLabel, event.Date)
	case domain.EventSeatReleased:
		return fmt.Sprintf("You released seat %s for %s", event.SeatLabel, event.Date)
	case domain.EventBookingCancelled:
		return fmt.Sprintf("Booking of seat %s for %s cancelled", event.SeatLabel, event.Date)
	case domain.EventSeatRebound:
		return fmt.Sprintf("Seat %s is now your designated seat", event.SeatLabel)
	default:
		return "Seat update"
	}
}
