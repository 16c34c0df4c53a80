package reservation

import "time"

type Status string

const (
	StatusAwaitingCheckin Status = "AWAITING_CHECKIN"
	StatusCheckedIn       Status = "CHECKED_IN"
	StatusCancelled       Status = "CANCELLED"
	StatusNoShow          Status = "NO_SHOW"
)

// CountingStatuses are the statuses that consume capacity. Cancelled and
// no-show rows keep their history but free their seats.
var CountingStatuses = []Status{StatusAwaitingCheckin, StatusCheckedIn}

func (s Status) CountsTowardCapacity() bool {
	return s == StatusAwaitingCheckin || s == StatusCheckedIn
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusAwaitingCheckin, StatusCheckedIn, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Reservation holds a party against an area for the period its timestamp
// classifies into. UnitID/AreaID are nullable because legacy rows carried
// only the free-text unit/area names; the admission path always resolves and
// sets both.
type Reservation struct {
	ID              string     `gorm:"type:uuid;primaryKey" json:"id"`
	FullName        string     `gorm:"not null" json:"full_name"`
	People          int        `gorm:"not null" json:"people"`
	Kids            int        `gorm:"not null;default:0" json:"kids"`
	ReservationDate time.Time  `gorm:"not null;index" json:"reservation_date"`
	UnitID          *string    `gorm:"type:uuid;index" json:"unit_id"`
	AreaID          *string    `gorm:"type:uuid;index" json:"area_id"`
	UnitName        string     `json:"unit_name,omitempty"`
	AreaName        string     `json:"area_name,omitempty"`
	Status          Status     `gorm:"type:varchar(24);not null;index" json:"status"`
	ReservationCode string     `gorm:"size:6;not null;uniqueIndex" json:"reservation_code"`
	QRToken         string     `gorm:"size:64;not null;uniqueIndex" json:"-"`
	QRExpiresAt     time.Time  `gorm:"not null" json:"qr_expires_at"`
	CheckedInAt     *time.Time `json:"checked_in_at"`
	Email           string     `gorm:"index" json:"email,omitempty"`
	Phone           string     `gorm:"index" json:"phone,omitempty"`
	UTMSource       string     `json:"utm_source,omitempty"`
	UTMMedium       string     `json:"utm_medium,omitempty"`
	UTMCampaign     string     `json:"utm_campaign,omitempty"`
	UTMContent      string     `json:"utm_content,omitempty"`
	UTMTerm         string     `json:"utm_term,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Guests []Guest `gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE" json:"guests,omitempty"`
}

// PartySize is the full seat demand, adults plus kids.
func (r *Reservation) PartySize() int {
	return r.People + r.Kids
}

type GuestRole string

const (
	GuestRoleGuest GuestRole = "GUEST"
	GuestRoleHost  GuestRole = "HOST"
)

// Guest belongs to exactly one reservation and is removed with it. Email is
// unique within the reservation, not globally.
type Guest struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	ReservationID string    `gorm:"type:uuid;not null;index;uniqueIndex:idx_reservation_guest_email,priority:1" json:"reservation_id"`
	Name          string    `gorm:"not null" json:"name"`
	Email         string    `gorm:"not null;uniqueIndex:idx_reservation_guest_email,priority:2" json:"email"`
	Role          GuestRole `gorm:"type:varchar(8);not null;default:'GUEST'" json:"role"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}
