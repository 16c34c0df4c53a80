package audit

import "time"

// Entry is an append-only record of a staff action. Entries are never
// updated or deleted by the application.
type Entry struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID    string    `gorm:"type:uuid;index" json:"actor_id"`
	ActorEmail string    `json:"actor_email"`
	Action     string    `gorm:"not null;index" json:"action"`
	Entity     string    `gorm:"not null" json:"entity"`
	EntityID   string    `gorm:"index" json:"entity_id"`
	Detail     string    `json:"detail,omitempty"`
	IP         string    `json:"ip,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Entry) TableName() string { return "audit_logs" }

// Actions recorded across the back office.
const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionCheckIn = "check_in"
	ActionBlock   = "block"
	ActionUnblock = "unblock"
	ActionLogin   = "login"
	ActionSetRole = "set_role"
	ActionQRRenew = "qr_renew"
	ActionStatus  = "set_status"
)
