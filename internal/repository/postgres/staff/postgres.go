package staff

import (
	"context"
	"errors"

	"gorm.io/gorm"

	staffdomain "reserva-go/internal/domain/staff"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, m *staffdomain.Member) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*staffdomain.Member, error) {
	var m staffdomain.Member
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, staffdomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*staffdomain.Member, error) {
	var m staffdomain.Member
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, staffdomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]staffdomain.Member, error) {
	var members []staffdomain.Member
	if err := r.db.WithContext(ctx).Order("name asc").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *PostgresRepository) Update(ctx context.Context, m *staffdomain.Member) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&staffdomain.Member{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return staffdomain.ErrMemberNotFound
	}
	return nil
}
