package models

import (
	"time"

	"gorm.io/gorm"
)

// Community content is created elsewhere; it lives here so the admin
// moderation toggles have rows to act on.

type CommunityPost struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"index;not null" json:"user_id"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Content  string `gorm:"type:text" json:"content"`
	Category string `gorm:"size:50;index" json:"category"`
	Likes    int    `gorm:"default:0" json:"likes"`

	IsDisabled     bool       `gorm:"default:false" json:"is_disabled"`
	DisabledAt     *time.Time `json:"disabled_at"`
	DisabledReason string     `gorm:"size:255" json:"disabled_reason"`
	DisabledBy     uint       `json:"disabled_by,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

type CommunityComment struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	PostID uint   `gorm:"index;not null" json:"post_id"`
	UserID uint   `gorm:"index;not null" json:"user_id"`
	Text   string `gorm:"type:text;not null" json:"text"`

	IsDisabled     bool       `gorm:"default:false" json:"is_disabled"`
	DisabledAt     *time.Time `json:"disabled_at"`
	DisabledReason string     `gorm:"size:255" json:"disabled_reason"`
	DisabledBy     uint       `json:"disabled_by,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}
