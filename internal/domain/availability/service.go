package availability

import (
	"context"
	"time"

	"reserva-go/internal/domain/block"
	"reserva-go/internal/domain/schedule"
	"reserva-go/internal/domain/unit"
)

// UsageReader exposes the reservation usage aggregation without pulling the
// whole reservation write side into this package.
type UsageReader interface {
	UsedByArea(ctx context.Context, areaIDs []string, from, to time.Time) (map[string]int, error)
}

// BlockReader hands back the resolved block set for one unit and day.
type BlockReader interface {
	ForDay(ctx context.Context, unitID string, day time.Time) (*block.DaySet, error)
}

type Service struct {
	units  *unit.Service
	blocks BlockReader
	usage  UsageReader
}

func NewService(units *unit.Service, blocks BlockReader, usage UsageReader) *Service {
	return &Service{units: units, blocks: blocks, usage: usage}
}

type Query struct {
	UnitID   string
	UnitName string
	AreaIDs  []string
	Date     time.Time
}

// Compute builds the availability read model for every active area of the
// unit on the query's calendar day. It is a pure read, so two identical calls
// with no writes in between return identical results.
func (s *Service) Compute(ctx context.Context, q Query) ([]AreaAvailability, error) {
	u, err := s.units.ResolveUnit(ctx, q.UnitID, q.UnitName)
	if err != nil {
		return nil, err
	}
	areas, err := s.units.ListAreasByIDs(ctx, u.ID, q.AreaIDs)
	if err != nil {
		return nil, err
	}

	blocks, err := s.blocks.ForDay(ctx, u.ID, q.Date)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(areas))
	for _, a := range areas {
		if a.IsActive {
			ids = append(ids, a.ID)
		}
	}

	afternoonFrom, afternoonTo := schedule.Window(q.Date, schedule.PeriodAfternoon)
	nightFrom, nightTo := schedule.Window(q.Date, schedule.PeriodNight)

	usedAfternoon := map[string]int{}
	usedNight := map[string]int{}
	if len(ids) > 0 {
		if usedAfternoon, err = s.usage.UsedByArea(ctx, ids, afternoonFrom, afternoonTo); err != nil {
			return nil, err
		}
		if usedNight, err = s.usage.UsedByArea(ctx, ids, nightFrom, nightTo); err != nil {
			return nil, err
		}
	}

	out := make([]AreaAvailability, 0, len(areas))
	for _, a := range areas {
		if !a.IsActive {
			continue
		}
		afternoon := periodSlice(
			a.CapacityFor(false),
			usedAfternoon[a.ID],
			blocks.Blocked(a.ID, schedule.PeriodAfternoon),
		)
		night := periodSlice(
			a.CapacityFor(true),
			usedNight[a.ID],
			blocks.Blocked(a.ID, schedule.PeriodNight),
		)
		// The day slice deliberately ignores single-period blocks. A
		// day-level view cannot reflect a half-blocked day, so only an
		// ALL_DAY block suppresses it.
		day := periodSlice(
			a.DayCapacity(),
			afternoon.Used+night.Used,
			blocks.BlockedAllDay(a.ID),
		)
		out = append(out, AreaAvailability{
			AreaID:      a.ID,
			AreaName:    a.Name,
			Photo:       a.Photo,
			Description: a.Description,
			Icon:        a.Icon,
			Afternoon:   afternoon,
			Night:       night,
			Day:         day,
		})
	}
	return out, nil
}

func periodSlice(capacity, used int, blocked bool) PeriodAvailability {
	remaining := capacity - used
	if remaining < 0 {
		remaining = 0
	}
	if blocked {
		remaining = 0
	}
	return PeriodAvailability{
		Capacity:    capacity,
		Used:        used,
		Remaining:   remaining,
		Blocked:     blocked,
		IsAvailable: remaining > 0,
	}
}
