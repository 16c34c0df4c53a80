package unit

import "time"

// Unit is a venue/location owning one or more bookable areas.
type Unit struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Slug      string    `gorm:"not null;uniqueIndex" json:"slug"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Areas []Area `gorm:"foreignKey:UnitID;constraint:OnDelete:CASCADE" json:"areas,omitempty"`
}

// Area is a bookable sub-space with its own per-period seating capacity.
// A nil capacity means unset and is always treated as zero, never unlimited.
type Area struct {
	ID                string    `gorm:"type:uuid;primaryKey" json:"id"`
	UnitID            string    `gorm:"type:uuid;not null;index;uniqueIndex:idx_unit_area_name,priority:1" json:"unit_id"`
	Name              string    `gorm:"not null;uniqueIndex:idx_unit_area_name,priority:2" json:"name"`
	CapacityAfternoon *int      `json:"capacity_afternoon"`
	CapacityNight     *int      `json:"capacity_night"`
	IsActive          bool      `gorm:"default:true" json:"is_active"`
	Photo             string    `json:"photo,omitempty"`
	Description       string    `json:"description,omitempty"`
	Icon              string    `json:"icon,omitempty"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// CapacityFor returns the seat count for one period, nil treated as zero.
func (a *Area) CapacityFor(night bool) int {
	if night {
		return derefCapacity(a.CapacityNight)
	}
	return derefCapacity(a.CapacityAfternoon)
}

// DayCapacity is the whole-day capacity, the sum of both periods.
func (a *Area) DayCapacity() int {
	return derefCapacity(a.CapacityAfternoon) + derefCapacity(a.CapacityNight)
}

func derefCapacity(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
