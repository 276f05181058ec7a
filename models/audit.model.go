package models

import "time"

// AuditLog records who did what to which entity. Writes are best effort and
// never fail the primary request.
type AuditLog struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Actor    string `gorm:"size:100" json:"actor"`
	ActorID  uint   `gorm:"index" json:"actor_id"`
	Role     Role   `gorm:"size:20" json:"role"`
	Action   string `gorm:"size:120" json:"action"`
	Category string `gorm:"size:40;index" json:"category"`
	Entity   string `gorm:"size:40" json:"entity"`
	EntityID string `gorm:"size:40" json:"entity_id"`
	Status   string `gorm:"size:20;default:'success'" json:"status"`
	Details  string `gorm:"type:text" json:"details"`
	IP       string `gorm:"size:45" json:"ip"`

	CreatedAt time.Time `json:"created_at"`
}
