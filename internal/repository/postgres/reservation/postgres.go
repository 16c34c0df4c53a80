package reservation

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	reservationdomain "reserva-go/internal/domain/reservation"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(reservationdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

// LockArea takes FOR UPDATE on the area row. Concurrent admissions against
// the same area queue up here until the holder commits, which is what keeps
// the usage sum and the insert atomic.
func (r *PostgresRepository) LockArea(ctx context.Context, areaID string) error {
	var id string
	return r.db.WithContext(ctx).
		Table("areas").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", areaID).
		Select("id").
		Take(&id).Error
}

func (r *PostgresRepository) Create(ctx context.Context, res *reservationdomain.Reservation) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*reservationdomain.Reservation, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (*reservationdomain.Reservation, error) {
	return r.getOne(ctx, "reservation_code = ?", code)
}

func (r *PostgresRepository) GetByQRToken(ctx context.Context, token string) (*reservationdomain.Reservation, error) {
	return r.getOne(ctx, "qr_token = ?", token)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*reservationdomain.Reservation, error) {
	var res reservationdomain.Reservation
	if err := r.db.WithContext(ctx).Where(query, arg).First(&res).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reservationdomain.ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

func (r *PostgresRepository) Update(ctx context.Context, res *reservationdomain.Reservation) error {
	return r.db.WithContext(ctx).Save(res).Error
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&reservationdomain.Reservation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return reservationdomain.ErrReservationNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, f reservationdomain.ListFilter) ([]reservationdomain.Reservation, int64, error) {
	q := r.db.WithContext(ctx).Model(&reservationdomain.Reservation{})
	if f.UnitID != "" {
		q = q.Where("unit_id = ?", f.UnitID)
	}
	if f.AreaID != "" {
		q = q.Where("area_id = ?", f.AreaID)
	}
	if f.From != nil {
		q = q.Where("reservation_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("reservation_date <= ?", *f.To)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []reservationdomain.Reservation
	if err := q.Order("reservation_date asc").
		Limit(limit).
		Offset(f.Offset).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostgresRepository) UsedByArea(ctx context.Context, areaIDs []string, from, to time.Time) (map[string]int, error) {
	type row struct {
		AreaID string `gorm:"column:area_id"`
		Seats  int    `gorm:"column:seats"`
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&reservationdomain.Reservation{}).
		Select("area_id, COALESCE(SUM(people + kids), 0) as seats").
		Where("area_id IN ?", areaIDs).
		Where("reservation_date BETWEEN ? AND ?", from, to).
		Where("status IN ?", reservationdomain.CountingStatuses).
		Group("area_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	used := make(map[string]int, len(rows))
	for _, rw := range rows {
		used[rw.AreaID] = rw.Seats
	}
	return used, nil
}

func (r *PostgresRepository) HasActiveByContact(ctx context.Context, email, phone, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&reservationdomain.Reservation{}).
		Where("status = ?", reservationdomain.StatusAwaitingCheckin)
	switch {
	case email != "" && phone != "":
		q = q.Where("email = ? OR phone = ?", email, phone)
	case email != "":
		q = q.Where("email = ?", email)
	case phone != "":
		q = q.Where("phone = ?", phone)
	default:
		return false, nil
	}
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	return r.exists(ctx, "reservation_code = ?", code)
}

func (r *PostgresRepository) IsQRTokenTaken(ctx context.Context, token string) (bool, error) {
	return r.exists(ctx, "qr_token = ?", token)
}

func (r *PostgresRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&reservationdomain.Reservation{}).
		Where(query, arg).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) AddGuest(ctx context.Context, g *reservationdomain.Guest) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *PostgresRepository) ListGuests(ctx context.Context, reservationID string) ([]reservationdomain.Guest, error) {
	var guests []reservationdomain.Guest
	if err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("created_at asc").
		Find(&guests).Error; err != nil {
		return nil, err
	}
	return guests, nil
}

func (r *PostgresRepository) DeleteGuest(ctx context.Context, reservationID, guestID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND reservation_id = ?", guestID, reservationID).
		Delete(&reservationdomain.Guest{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return reservationdomain.ErrGuestNotFound
	}
	return nil
}

func (r *PostgresRepository) ListAwaitingBetween(ctx context.Context, from, to time.Time) ([]reservationdomain.Reservation, error) {
	var out []reservationdomain.Reservation
	if err := r.db.WithContext(ctx).
		Where("status = ?", reservationdomain.StatusAwaitingCheckin).
		Where("reservation_date BETWEEN ? AND ?", from, to).
		Order("reservation_date asc").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresRepository) MarkNoShows(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&reservationdomain.Reservation{}).
		Where("status = ?", reservationdomain.StatusAwaitingCheckin).
		Where("reservation_date < ?", cutoff).
		Update("status", reservationdomain.StatusNoShow)
	return result.RowsAffected, result.Error
}
