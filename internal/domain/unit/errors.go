package unit

import "errors"

var (
	ErrUnitNotFound        = errors.New("unit not found")
	ErrAreaNotFound        = errors.New("area not found")
	ErrSlugTaken           = errors.New("unit slug already taken")
	ErrAreaNameTaken       = errors.New("area name already taken in unit")
	ErrInvalidCapacity     = errors.New("capacity must be a non-negative integer")
	ErrUnitHasReservations = errors.New("unit still has reservations")
	ErrAreaHasReservations = errors.New("area still has reservations")
)
