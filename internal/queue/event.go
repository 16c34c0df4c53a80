package queue

import "time"

const (
	QueueReservationEvents = "reservation.events"

	TypeConfirmed = "reservation.confirmed"
	TypeCheckedIn = "reservation.checked_in"
	TypeCancelled = "reservation.cancelled"
)

// Event is the wire shape for reservation lifecycle messages. It carries
// everything the notification consumer needs so it never has to query the
// database.
type Event struct {
	Type            string    `json:"type"`
	ReservationID   string    `json:"reservation_id"`
	ReservationCode string    `json:"reservation_code"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	UnitName        string    `json:"unit_name"`
	AreaName        string    `json:"area_name"`
	ReservationDate time.Time `json:"reservation_date"`
	People          int       `json:"people"`
	Kids            int       `json:"kids"`
	OccurredAt      time.Time `json:"occurred_at"`
}
