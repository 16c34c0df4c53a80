package reservation

import (
	"context"
	"time"
)

// ListFilter narrows List queries. Zero values mean "no constraint".
type ListFilter struct {
	UnitID string
	AreaID string
	From   *time.Time
	To     *time.Time
	Status Status
	Limit  int
	Offset int
}

type Repository interface {
	// Transaction runs fn against a repository bound to a single database
	// transaction, committing on nil and rolling back on error.
	Transaction(ctx context.Context, fn func(Repository) error) error

	// LockArea serializes concurrent admissions against one area. Inside a
	// transaction it takes a row lock that is held until commit.
	LockArea(ctx context.Context, areaID string) error

	Create(ctx context.Context, r *Reservation) error
	GetByID(ctx context.Context, id string) (*Reservation, error)
	GetByCode(ctx context.Context, code string) (*Reservation, error)
	GetByQRToken(ctx context.Context, token string) (*Reservation, error)
	Update(ctx context.Context, r *Reservation) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ListFilter) ([]Reservation, int64, error)

	// UsedByArea sums people+kids of capacity-counting reservations whose
	// timestamp falls inside [from, to], grouped by area. Areas with no
	// usage are absent from the map.
	UsedByArea(ctx context.Context, areaIDs []string, from, to time.Time) (map[string]int, error)

	// HasActiveByContact reports whether email or phone already holds an
	// AWAITING_CHECKIN reservation anywhere, ignoring excludeID. Checked-in
	// and cancelled history never blocks a new booking.
	HasActiveByContact(ctx context.Context, email, phone, excludeID string) (bool, error)

	IsCodeTaken(ctx context.Context, code string) (bool, error)
	IsQRTokenTaken(ctx context.Context, token string) (bool, error)

	AddGuest(ctx context.Context, g *Guest) error
	ListGuests(ctx context.Context, reservationID string) ([]Guest, error)
	DeleteGuest(ctx context.Context, reservationID, guestID string) error

	// ListAwaitingBetween returns AWAITING_CHECKIN reservations dated inside
	// [from, to], for reminder delivery.
	ListAwaitingBetween(ctx context.Context, from, to time.Time) ([]Reservation, error)

	// MarkNoShows flips AWAITING_CHECKIN reservations dated before cutoff to
	// NO_SHOW and returns how many rows changed.
	MarkNoShows(ctx context.Context, cutoff time.Time) (int64, error)
}
