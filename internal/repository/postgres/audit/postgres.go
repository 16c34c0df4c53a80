package audit

import (
	"context"

	"gorm.io/gorm"

	auditdomain "reserva-go/internal/domain/audit"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, e *auditdomain.Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *PostgresRepository) List(ctx context.Context, entity, entityID string, limit int) ([]auditdomain.Entry, error) {
	q := r.db.WithContext(ctx).Order("created_at desc").Limit(limit)
	if entity != "" {
		q = q.Where("entity = ?", entity)
	}
	if entityID != "" {
		q = q.Where("entity_id = ?", entityID)
	}
	var entries []auditdomain.Entry
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
