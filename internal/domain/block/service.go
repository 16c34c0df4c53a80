package block

import (
	"context"
	"time"

	"github.com/google/uuid"

	"reserva-go/internal/domain/schedule"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	UnitID string
	AreaID *string
	Date   time.Time
	Period BlockPeriod
	Reason string
}

// Create inserts a block after a query-before-insert duplicate check; the
// table has no uniqueness constraint for the tuple.
func (s *Service) Create(ctx context.Context, input CreateInput) (*ReservationBlock, error) {
	switch input.Period {
	case PeriodAfternoon, PeriodNight, PeriodAllDay:
	default:
		return nil, ErrInvalidPeriod
	}

	date := schedule.Midnight(input.Date)

	var created ReservationBlock
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		exists, err := tx.Exists(ctx, input.UnitID, input.AreaID, date, input.Period)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateBlock
		}

		b := ReservationBlock{
			ID:     uuid.New().String(),
			UnitID: input.UnitID,
			AreaID: input.AreaID,
			Date:   date,
			Mode:   ModePeriod,
			Period: input.Period,
			Reason: input.Reason,
		}
		if err := tx.Create(ctx, &b); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, unitID string, from, to *time.Time) ([]ReservationBlock, error) {
	return s.repo.ListForUnit(ctx, unitID, from, to)
}

// IsBlocked answers the single-area question used by the admission path: is
// there any block for the unit on this day whose period is ALL_DAY or matches,
// and whose area is unit-wide or the target area.
func (s *Service) IsBlocked(ctx context.Context, unitID, areaID string, day time.Time, p schedule.Period) (bool, error) {
	set, err := s.ForDay(ctx, unitID, day)
	if err != nil {
		return false, err
	}
	return set.Blocked(areaID, p), nil
}

// ForDay fetches all of the unit's blocks for the calendar day in one query
// and returns the partitioned set for batch rendering.
func (s *Service) ForDay(ctx context.Context, unitID string, day time.Time) (*DaySet, error) {
	dayStart, dayEnd := schedule.DayBounds(day)
	blocks, err := s.repo.ListForDay(ctx, unitID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	return NewDaySet(blocks), nil
}
