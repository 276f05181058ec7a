package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Role is the closed set of account roles. Handlers never compare raw
// strings; guards go through middleware.RequireRole.
type Role string

const (
	RoleUser   Role = "user"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// ParseRole validates a role string against the closed set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleSeller, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

// StringList stores a []string as a JSON text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("unsupported type %T for StringList", value)
}

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Username string  `gorm:"unique;not null;size:50" json:"username"`
	Email    string  `gorm:"unique;not null;size:100" json:"email"`
	Password string  `gorm:"not null" json:"-"`
	FullName string  `gorm:"size:100" json:"full_name"`
	Phone    *string `gorm:"size:20" json:"phone"`
	ImageURL string  `json:"image_url"`
	Address  string  `gorm:"type:text" json:"address"`

	Role       Role       `gorm:"default:'user';size:20" json:"role"`
	IsVerified bool       `gorm:"default:false" json:"is_verified"`
	Status     UserStatus `gorm:"default:'active';size:20" json:"status"`

	// Moderation state. ReactivateAt is nil for permanent deactivations.
	DeactivationReasons  StringList `gorm:"type:text" json:"deactivation_reasons"`
	DeactivationDuration string     `gorm:"size:40" json:"deactivation_duration"`
	DeactivatedAt        *time.Time `json:"deactivated_at"`
	DeactivatedBy        uint       `json:"deactivated_by,omitempty"`
	ReactivateAt         *time.Time `json:"reactivate_at"`
	ReactivatedAt        *time.Time `json:"reactivated_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

func (u *User) IsActive() bool {
	return u.Status == UserActive
}
