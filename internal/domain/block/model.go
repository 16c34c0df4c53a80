package block

import (
	"time"

	"reserva-go/internal/domain/schedule"
)

type Mode string

const (
	// ModePeriod is the only mode currently written; the column exists so day
	// and period blocking can diverge later without a migration.
	ModePeriod Mode = "PERIOD"
)

type BlockPeriod string

const (
	PeriodAfternoon BlockPeriod = "AFTERNOON"
	PeriodNight     BlockPeriod = "NIGHT"
	PeriodAllDay    BlockPeriod = "ALL_DAY"
)

// ReservationBlock zeroes availability for a unit (or one area of it) on a
// given day and period. AreaID nil means the block covers every area of the
// unit. Storage enforces no uniqueness; the create path deduplicates.
type ReservationBlock struct {
	ID        string      `gorm:"type:uuid;primaryKey" json:"id"`
	UnitID    string      `gorm:"type:uuid;not null;index" json:"unit_id"`
	AreaID    *string     `gorm:"type:uuid;index" json:"area_id"`
	Date      time.Time   `gorm:"not null;index" json:"date"`
	Mode      Mode        `gorm:"type:varchar(16);not null;default:'PERIOD'" json:"mode"`
	Period    BlockPeriod `gorm:"type:varchar(16);not null" json:"period"`
	Reason    string      `json:"reason,omitempty"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// Covers reports whether the block suppresses the given area and period.
func (b *ReservationBlock) Covers(areaID string, p schedule.Period) bool {
	if b.AreaID != nil && *b.AreaID != areaID {
		return false
	}
	return b.Period == PeriodAllDay || b.Period == BlockPeriod(p)
}

// DaySet partitions one day's blocks for batch availability rendering:
// unit-wide periods on one side, per-area periods on the other, so a whole
// dashboard renders from a single block query.
type DaySet struct {
	unitWide map[BlockPeriod]bool
	byArea   map[string]map[BlockPeriod]bool
}

func NewDaySet(blocks []ReservationBlock) *DaySet {
	s := &DaySet{
		unitWide: make(map[BlockPeriod]bool),
		byArea:   make(map[string]map[BlockPeriod]bool),
	}
	for _, b := range blocks {
		if b.AreaID == nil {
			s.unitWide[b.Period] = true
			continue
		}
		periods, ok := s.byArea[*b.AreaID]
		if !ok {
			periods = make(map[BlockPeriod]bool)
			s.byArea[*b.AreaID] = periods
		}
		periods[b.Period] = true
	}
	return s
}

// Blocked reports whether the area is suppressed for the period. ALL_DAY
// matches either period.
func (s *DaySet) Blocked(areaID string, p schedule.Period) bool {
	if s.unitWide[PeriodAllDay] || s.unitWide[BlockPeriod(p)] {
		return true
	}
	periods, ok := s.byArea[areaID]
	if !ok {
		return false
	}
	return periods[PeriodAllDay] || periods[BlockPeriod(p)]
}

// BlockedAllDay reports whether the area is suppressed for the whole-day
// view. Only ALL_DAY blocks count here; a period block does not suppress the
// day-level view.
func (s *DaySet) BlockedAllDay(areaID string) bool {
	if s.unitWide[PeriodAllDay] {
		return true
	}
	periods, ok := s.byArea[areaID]
	return ok && periods[PeriodAllDay]
}
