package staff

import "context"

type Repository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id string) (*Member, error)
	GetByEmail(ctx context.Context, email string) (*Member, error)
	List(ctx context.Context) ([]Member, error)
	Update(ctx context.Context, m *Member) error
	Delete(ctx context.Context, id string) error
}
