package unit

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	CreateUnit(ctx context.Context, u *Unit) error
	GetUnitByID(ctx context.Context, id string) (*Unit, error)
	GetUnitBySlug(ctx context.Context, slug string) (*Unit, error)
	// FindUnitByName matches case-insensitively, exact name first and then a
	// bounded substring search, both database-side.
	FindUnitByName(ctx context.Context, name string) (*Unit, error)
	ListUnits(ctx context.Context) ([]Unit, error)
	UpdateUnit(ctx context.Context, u *Unit) error
	DeleteUnit(ctx context.Context, id string) error
	IsSlugTaken(ctx context.Context, slug string) (bool, error)
	CountUnitReservations(ctx context.Context, unitID string) (int64, error)

	CreateArea(ctx context.Context, a *Area) error
	GetAreaByID(ctx context.Context, id string) (*Area, error)
	FindAreaByName(ctx context.Context, unitID, name string) (*Area, error)
	ListAreas(ctx context.Context, unitID string) ([]Area, error)
	ListAreasByIDs(ctx context.Context, unitID string, ids []string) ([]Area, error)
	UpdateArea(ctx context.Context, a *Area) error
	DeleteArea(ctx context.Context, id string) error
	CountAreaReservations(ctx context.Context, areaID string) (int64, error)
}
