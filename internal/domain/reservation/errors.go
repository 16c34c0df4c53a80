package reservation

import "errors"

var (
	ErrReservationNotFound   = errors.New("reservation not found")
	ErrGuestNotFound         = errors.New("guest not found")
	ErrInvalidName           = errors.New("full name must be at least 3 characters")
	ErrInvalidPartySize      = errors.New("party must have at least one adult and no negative counts")
	ErrInvalidDate           = errors.New("reservation date is required")
	ErrInvalidStatus         = errors.New("invalid reservation status")
	ErrActiveForContact      = errors.New("contact already has an outstanding reservation")
	ErrDayBlocked            = errors.New("reservations are blocked for this area and period")
	ErrNoCapacity            = errors.New("area has no remaining capacity for this period")
	ErrAlreadyCheckedIn      = errors.New("reservation already checked in")
	ErrQRExpired             = errors.New("qr token expired")
	ErrGuestEmailTaken       = errors.New("guest email already registered for this reservation")
	ErrCodeGenerationFailed  = errors.New("could not generate a unique reservation code")
	ErrTokenGenerationFailed = errors.New("could not generate a unique qr token")
)
