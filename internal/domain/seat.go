package domain

import (
	"fmt"
	"strings"
	"time"
)

type SeatKind string

const (
	SeatKindDesignated SeatKind = "designated"
	SeatKindFloater    SeatKind = "floater"
)

type SeatStatus string

const (
	SeatStatusDesignatedDefault SeatStatus = "designated-default"
	SeatStatusFloaterDefault    SeatStatus = "floater-default"
	SeatStatusBooked            SeatStatus = "booked"
	SeatStatusReleased          SeatStatus = "released"
)

type Seat struct {
	ID      string
	Label   string
	Kind    SeatKind
	Number  int
	OwnerID *string
}

func (s Seat) IsDesignated() bool {
	return s.Kind == SeatKindDesignated
}

// OwnedBy reports whether the seat is bound to userID.
func (s Seat) OwnedBy(userID string) bool {
	return s.OwnerID != nil && *s.OwnerID == userID
}

// NewSeat builds the seat with the given kind and 1-based number, e.g. d-12 / D-12.
func NewSeat(kind SeatKind, number int) Seat {
	prefix := "d"
	if kind == SeatKindFloater {
		prefix = "f"
	}
	return Seat{
		ID:     fmt.Sprintf("%s-%d", prefix, number),
		Label:  fmt.Sprintf("%s-%02d", strings.ToUpper(prefix), number),
		Kind:   kind,
		Number: number,
	}
}

// Assignment is the stored state for one (seat, day) key. Status is never stored;
// see DeriveStatus.
type Assignment struct {
	SeatID   string
	Date     time.Time
	HolderID string
	Released bool
}

// IsZero reports whether the assignment carries no state and can be dropped.
func (a Assignment) IsZero() bool {
	return a.HolderID == "" && !a.Released
}

type DayAssignment struct {
	SeatID   string
	Date     time.Time
	Status   SeatStatus
	HolderID string
}

// DeriveStatus computes the status of seat for the day described by a.
func DeriveStatus(seat Seat, a Assignment) SeatStatus {
	switch {
	case a.HolderID != "":
		return SeatStatusBooked
	case seat.Kind == SeatKindFloater:
		return SeatStatusFloaterDefault
	case a.Released:
		return SeatStatusReleased
	default:
		return SeatStatusDesignatedDefault
	}
}

// Resolve turns a stored assignment into its derived view.
func Resolve(seat Seat, a Assignment) DayAssignment {
	return DayAssignment{
		SeatID:   seat.ID,
		Date:     a.Date,
		Status:   DeriveStatus(seat, a),
		HolderID: a.HolderID,
	}
}

type BookingIntent struct {
	UserID string
	SeatID string
	Date   time.Time
}

type SeatView struct {
	Seat     Seat
	Status   SeatStatus
	HolderID string
	Bookable bool
	// Reason is set when Bookable is false.
	Reason error
}

type DayView struct {
	Date   time.Time
	Parity WeekParity
	Seats  []SeatView
}

type DailyOccupancy struct {
	Date     time.Time
	Weekday  time.Weekday
	Occupied int
	Capacity int
}
