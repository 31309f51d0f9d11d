package domain

import "errors"

var (
	ErrPastDate          = errors.New("cannot book seats for past dates")
	ErrSeatTaken         = errors.New("seat is already booked for this date")
	ErrSeatReserved      = errors.New("seat is reserved for its designated owner")
	ErrTooEarly          = errors.New("booking for this day opens after the cutoff on the previous working day")
	ErrNotOwner          = errors.New("only the seat's designated owner can release it")
	ErrNotHolder         = errors.New("only the booking holder can cancel it")
	ErrSeatNotDesignated = errors.New("seat is not a designated seat")
	ErrNotFound          = errors.New("seat not found")
	ErrIneligible        = errors.New("not eligible to book this seat")

	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email is already registered")
	ErrInvalidBatch = errors.New("invalid batch")
	ErrLockTimeout  = errors.New("timed out waiting for seat lock")
)

// IneligibleError carries the evaluator's reason. It matches both ErrIneligible
// and the reason with errors.Is.
type IneligibleError struct {
	Reason error
}

func (e *IneligibleError) Error() string {
	return ErrIneligible.Error() + ": " + e.Reason.Error()
}

func (e *IneligibleError) Is(target error) bool {
	return target == ErrIneligible
}

func (e *IneligibleError) Unwrap() error {
	return e.Reason
}

// Ineligible wraps an evaluator denial reason.
func Ineligible(reason error) error {
	return &IneligibleError{Reason: reason}
}
