package block

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	blockdomain "reserva-go/internal/domain/block"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(blockdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) Create(ctx context.Context, b *blockdomain.ReservationBlock) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*blockdomain.ReservationBlock, error) {
	var b blockdomain.ReservationBlock
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, blockdomain.ErrBlockNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&blockdomain.ReservationBlock{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return blockdomain.ErrBlockNotFound
	}
	return nil
}

func (r *PostgresRepository) ListForDay(ctx context.Context, unitID string, dayStart, dayEnd time.Time) ([]blockdomain.ReservationBlock, error) {
	var blocks []blockdomain.ReservationBlock
	if err := r.db.WithContext(ctx).
		Where("unit_id = ? AND date BETWEEN ? AND ?", unitID, dayStart, dayEnd).
		Find(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *PostgresRepository) ListForUnit(ctx context.Context, unitID string, from, to *time.Time) ([]blockdomain.ReservationBlock, error) {
	q := r.db.WithContext(ctx).Where("unit_id = ?", unitID)
	if from != nil {
		q = q.Where("date >= ?", *from)
	}
	if to != nil {
		q = q.Where("date <= ?", *to)
	}
	var blocks []blockdomain.ReservationBlock
	if err := q.Order("date asc").Find(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, unitID string, areaID *string, date time.Time, period blockdomain.BlockPeriod) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&blockdomain.ReservationBlock{}).
		Where("unit_id = ? AND date = ? AND period = ?", unitID, date, period)
	if areaID == nil {
		q = q.Where("area_id IS NULL")
	} else {
		q = q.Where("area_id = ?", *areaID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
