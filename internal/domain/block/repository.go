package block

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	Create(ctx context.Context, b *ReservationBlock) error
	GetByID(ctx context.Context, id string) (*ReservationBlock, error)
	Delete(ctx context.Context, id string) error
	// ListForDay returns every block of the unit whose date falls inside the
	// calendar day bounds [dayStart, dayEnd].
	ListForDay(ctx context.Context, unitID string, dayStart, dayEnd time.Time) ([]ReservationBlock, error)
	ListForUnit(ctx context.Context, unitID string, from, to *time.Time) ([]ReservationBlock, error)
	// Exists reports whether a block row already covers the exact
	// (unit, area, date, period) tuple; areaID nil matches unit-wide rows.
	Exists(ctx context.Context, unitID string, areaID *string, date time.Time, period BlockPeriod) (bool, error)
}
