package models

import "time"

type DiscountType string

const (
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
)

// Voucher is a seller-issued discount code. Codes are stored uppercased and
// matched case-insensitively. Value must be > 0; percentage values <= 100.
type Voucher struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	SellerID uint   `gorm:"index" json:"seller_id"`
	Code     string `gorm:"uniqueIndex;size:40;not null" json:"code"`

	DiscountType DiscountType `gorm:"size:20;not null" json:"discount_type"`
	Value        float64      `gorm:"not null" json:"value"`

	ExpirationDate *time.Time `json:"expiration_date"`
	MaxUses        *int       `json:"max_uses"`
	CurrentUses    int        `gorm:"not null;default:0" json:"current_uses"`
	PerUserLimit   *int       `json:"per_user_limit"`
	MinOrderAmount *float64   `json:"min_order_amount"`
	Active         bool       `gorm:"default:true" json:"active"`

	Usages []VoucherUsage `gorm:"constraint:OnDelete:CASCADE" json:"used_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type VoucherUsage struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	VoucherID uint `gorm:"uniqueIndex:idx_voucher_user;not null" json:"voucher_id"`
	UserID    uint `gorm:"uniqueIndex:idx_voucher_user;not null" json:"user_id"`
	UsedCount int  `gorm:"not null;default:0" json:"used_count"`
}

// UsageFor returns how many times the user has redeemed this voucher.
func (v *Voucher) UsageFor(userID uint) int {
	for _, u := range v.Usages {
		if u.UserID == userID {
			return u.UsedCount
		}
	}
	return 0
}
