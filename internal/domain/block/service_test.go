package block

import (
	"context"
	"errors"
	"testing"
	"time"

	"reserva-go/internal/domain/schedule"
)

type fakeBlockRepo struct {
	blocks map[string]*ReservationBlock
}

func newFakeBlockRepo() *fakeBlockRepo {
	return &fakeBlockRepo{blocks: make(map[string]*ReservationBlock)}
}

func (r *fakeBlockRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeBlockRepo) Create(ctx context.Context, b *ReservationBlock) error {
	r.blocks[b.ID] = b
	return nil
}

func (r *fakeBlockRepo) GetByID(ctx context.Context, id string) (*ReservationBlock, error) {
	b, ok := r.blocks[id]
	if !ok {
		return nil, ErrBlockNotFound
	}
	return b, nil
}

func (r *fakeBlockRepo) Delete(ctx context.Context, id string) error {
	delete(r.blocks, id)
	return nil
}

func (r *fakeBlockRepo) ListForDay(ctx context.Context, unitID string, dayStart, dayEnd time.Time) ([]ReservationBlock, error) {
	result := make([]ReservationBlock, 0)
	for _, b := range r.blocks {
		if b.UnitID == unitID && !b.Date.Before(dayStart) && !b.Date.After(dayEnd) {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (r *fakeBlockRepo) ListForUnit(ctx context.Context, unitID string, from, to *time.Time) ([]ReservationBlock, error) {
	result := make([]ReservationBlock, 0)
	for _, b := range r.blocks {
		if b.UnitID != unitID {
			continue
		}
		if from != nil && b.Date.Before(*from) {
			continue
		}
		if to != nil && b.Date.After(*to) {
			continue
		}
		result = append(result, *b)
	}
	return result, nil
}

func (r *fakeBlockRepo) Exists(ctx context.Context, unitID string, areaID *string, date time.Time, period BlockPeriod) (bool, error) {
	for _, b := range r.blocks {
		if b.UnitID != unitID || !b.Date.Equal(date) || b.Period != period {
			continue
		}
		if (b.AreaID == nil) != (areaID == nil) {
			continue
		}
		if b.AreaID != nil && *b.AreaID != *areaID {
			continue
		}
		return true, nil
	}
	return false, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func strPtr(s string) *string { return &s }

func TestCreateNormalizesDateToMidnight(t *testing.T) {
	repo := newFakeBlockRepo()
	svc := NewService(repo)

	b, err := svc.Create(context.Background(), CreateInput{
		UnitID: "u1",
		Date:   time.Date(2025, 6, 14, 19, 45, 0, 0, time.Local),
		Period: PeriodNight,
		Reason: "private event",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !b.Date.Equal(day(2025, 6, 14)) {
		t.Fatalf("date not normalized: %s", b.Date)
	}
	if b.Mode != ModePeriod {
		t.Fatalf("mode = %s, want PERIOD", b.Mode)
	}
}

func TestCreateRejectsDuplicate(t *testing.T) {
	repo := newFakeBlockRepo()
	svc := NewService(repo)

	input := CreateInput{UnitID: "u1", AreaID: strPtr("a1"), Date: day(2025, 6, 14), Period: PeriodAfternoon}
	if _, err := svc.Create(context.Background(), input); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), input); !errors.Is(err, ErrDuplicateBlock) {
		t.Fatalf("expected ErrDuplicateBlock, got %v", err)
	}
}

func TestCreateRejectsUnknownPeriod(t *testing.T) {
	svc := NewService(newFakeBlockRepo())
	_, err := svc.Create(context.Background(), CreateInput{UnitID: "u1", Date: day(2025, 6, 14), Period: "BRUNCH"})
	if !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestIsBlockedUnitWide(t *testing.T) {
	repo := newFakeBlockRepo()
	repo.blocks["b1"] = &ReservationBlock{ID: "b1", UnitID: "u1", Date: day(2025, 6, 14), Mode: ModePeriod, Period: PeriodNight}

	svc := NewService(repo)
	blocked, err := svc.IsBlocked(context.Background(), "u1", "any-area", day(2025, 6, 14), schedule.PeriodNight)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !blocked {
		t.Fatalf("unit-wide night block must cover every area")
	}

	blocked, _ = svc.IsBlocked(context.Background(), "u1", "any-area", day(2025, 6, 14), schedule.PeriodAfternoon)
	if blocked {
		t.Fatalf("night block must not cover the afternoon")
	}
}

func TestIsBlockedAllDayMatchesBothPeriods(t *testing.T) {
	repo := newFakeBlockRepo()
	repo.blocks["b1"] = &ReservationBlock{ID: "b1", UnitID: "u1", AreaID: strPtr("a1"), Date: day(2025, 6, 14), Mode: ModePeriod, Period: PeriodAllDay}

	svc := NewService(repo)
	for _, p := range []schedule.Period{schedule.PeriodAfternoon, schedule.PeriodNight} {
		blocked, err := svc.IsBlocked(context.Background(), "u1", "a1", day(2025, 6, 14), p)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !blocked {
			t.Fatalf("ALL_DAY block must cover period %s", p)
		}
	}
	if blocked, _ := svc.IsBlocked(context.Background(), "u1", "a2", day(2025, 6, 14), schedule.PeriodNight); blocked {
		t.Fatalf("area block must not leak to another area")
	}
}

func TestDaySetPartition(t *testing.T) {
	set := NewDaySet([]ReservationBlock{
		{UnitID: "u1", Period: PeriodAfternoon},
		{UnitID: "u1", AreaID: strPtr("a1"), Period: PeriodNight},
	})

	if !set.Blocked("a2", schedule.PeriodAfternoon) {
		t.Fatalf("unit-wide afternoon block must apply to a2")
	}
	if set.Blocked("a2", schedule.PeriodNight) {
		t.Fatalf("a2 has no night block")
	}
	if !set.Blocked("a1", schedule.PeriodNight) {
		t.Fatalf("a1 night block missing")
	}
	if set.BlockedAllDay("a1") {
		t.Fatalf("period blocks must not suppress the whole-day view")
	}
}

func TestDaySetAllDayUnitWide(t *testing.T) {
	set := NewDaySet([]ReservationBlock{{UnitID: "u1", Period: PeriodAllDay}})
	if !set.BlockedAllDay("anything") {
		t.Fatalf("unit-wide ALL_DAY must suppress the day view for every area")
	}
	if !set.Blocked("anything", schedule.PeriodAfternoon) || !set.Blocked("anything", schedule.PeriodNight) {
		t.Fatalf("unit-wide ALL_DAY must suppress both periods")
	}
}
