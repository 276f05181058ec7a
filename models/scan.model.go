package models

import "time"

// ScanHistory is one stored grading result. Inference runs in an external
// service; this table only keeps the outcome for history and moderation.
type ScanHistory struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	UserID    uint    `gorm:"index" json:"user_id"`
	Label     string  `gorm:"size:100" json:"label"`
	Score     float64 `json:"score"`
	Grade     string  `gorm:"size:10" json:"grade"`
	ImageURL  string  `json:"image_url"`
	StorageID string  `gorm:"size:120" json:"storage_id"`

	IsDisabled     bool       `gorm:"default:false" json:"is_disabled"`
	DisabledAt     *time.Time `json:"disabled_at"`
	DisabledReason string     `gorm:"size:255" json:"disabled_reason"`
	DisabledBy     uint       `json:"disabled_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
