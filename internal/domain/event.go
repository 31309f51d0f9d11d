package domain

import "time"

const (
	EventSeatBooked       = "seat_booked"
	EventSeatReleased     = "seat_released"
	EventBookingCancelled = "booking_cancelled"
	EventSeatRebound      = "seat_rebound"
)

type SeatEvent struct {
	Type       string    `json:"type"`
	SeatID     string    `json:"seat_id"`
	SeatLabel  string    `json:"seat_label"`
	Date       string    `json:"date,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
