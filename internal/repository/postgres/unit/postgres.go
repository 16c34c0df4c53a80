package unit

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	unitdomain "reserva-go/internal/domain/unit"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(unitdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateUnit(ctx context.Context, u *unitdomain.Unit) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *PostgresRepository) GetUnitByID(ctx context.Context, id string) (*unitdomain.Unit, error) {
	var u unitdomain.Unit
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unitdomain.ErrUnitNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *PostgresRepository) GetUnitBySlug(ctx context.Context, slug string) (*unitdomain.Unit, error) {
	var u unitdomain.Unit
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unitdomain.ErrUnitNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *PostgresRepository) FindUnitByName(ctx context.Context, name string) (*unitdomain.Unit, error) {
	var u unitdomain.Unit
	err := r.db.WithContext(ctx).
		Where("lower(name) = lower(?)", name).
		First(&u).Error
	if err == nil {
		return &u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Legacy payloads carry loose free text, fall back to a substring match.
	err = r.db.WithContext(ctx).
		Where("lower(name) LIKE ?", "%"+strings.ToLower(name)+"%").
		Order("name asc").
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, unitdomain.ErrUnitNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresRepository) ListUnits(ctx context.Context) ([]unitdomain.Unit, error) {
	var units []unitdomain.Unit
	if err := r.db.WithContext(ctx).Order("name asc").Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

func (r *PostgresRepository) UpdateUnit(ctx context.Context, u *unitdomain.Unit) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *PostgresRepository) DeleteUnit(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&unitdomain.Unit{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return unitdomain.ErrUnitNotFound
	}
	return nil
}

func (r *PostgresRepository) IsSlugTaken(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&unitdomain.Unit{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) CountUnitReservations(ctx context.Context, unitID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("reservations").
		Where("unit_id = ?", unitID).
		Count(&count).Error
	return count, err
}

func (r *PostgresRepository) CreateArea(ctx context.Context, a *unitdomain.Area) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *PostgresRepository) GetAreaByID(ctx context.Context, id string) (*unitdomain.Area, error) {
	var a unitdomain.Area
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unitdomain.ErrAreaNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *PostgresRepository) FindAreaByName(ctx context.Context, unitID, name string) (*unitdomain.Area, error) {
	var a unitdomain.Area
	err := r.db.WithContext(ctx).
		Where("unit_id = ? AND lower(name) = lower(?)", unitID, name).
		First(&a).Error
	if err == nil {
		return &a, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Where("unit_id = ? AND lower(name) LIKE ?", unitID, "%"+strings.ToLower(name)+"%").
		Order("name asc").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, unitdomain.ErrAreaNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PostgresRepository) ListAreas(ctx context.Context, unitID string) ([]unitdomain.Area, error) {
	var areas []unitdomain.Area
	if err := r.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Order("name asc").
		Find(&areas).Error; err != nil {
		return nil, err
	}
	return areas, nil
}

func (r *PostgresRepository) ListAreasByIDs(ctx context.Context, unitID string, ids []string) ([]unitdomain.Area, error) {
	var areas []unitdomain.Area
	if err := r.db.WithContext(ctx).
		Where("unit_id = ? AND id IN ?", unitID, ids).
		Order("name asc").
		Find(&areas).Error; err != nil {
		return nil, err
	}
	return areas, nil
}

func (r *PostgresRepository) UpdateArea(ctx context.Context, a *unitdomain.Area) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *PostgresRepository) DeleteArea(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&unitdomain.Area{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return unitdomain.ErrAreaNotFound
	}
	return nil
}

func (r *PostgresRepository) CountAreaReservations(ctx context.Context, areaID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("reservations").
		Where("area_id = ?", areaID).
		Count(&count).Error
	return count, err
}
