// Package voucher evaluates discount codes against a candidate order total.
// Validation is pure: it never mutates usage counters. The checkout engine
// commits usage after its orders persist.
package voucher

import (
	"errors"
	"time"

	"github.com/nxough-jxhn/daingGraderWeb/models"
)

var (
	ErrInactive  = errors.New("voucher is not active")
	ErrExpired   = errors.New("voucher has expired")
	ErrMaxUses   = errors.New("voucher has reached its usage limit")
	ErrUserLimit = errors.New("you have already used this voucher the maximum number of times")
	ErrMinOrder  = errors.New("order total is below the voucher minimum")
)

// Result is a successful validation: the discount to subtract from the
// order total, plus enough identity to commit usage later.
type Result struct {
	VoucherID    uint                `json:"voucher_id"`
	DiscountType models.DiscountType `json:"discount_type"`
	Discount     float64             `json:"discount"`
}

// Validate checks every eligibility rule in order and computes the discount.
// A percentage voucher of value 20 on total 1000 yields 200; a fixed voucher
// yields its value regardless of total.
func Validate(v *models.Voucher, userID uint, orderTotal float64, now time.Time) (*Result, error) {
	if v == nil || !v.Active {
		return nil, ErrInactive
	}
	if v.ExpirationDate != nil && !now.Before(*v.ExpirationDate) {
		return nil, ErrExpired
	}
	if v.MaxUses != nil && v.CurrentUses >= *v.MaxUses {
		return nil, ErrMaxUses
	}
	if v.PerUserLimit != nil && v.UsageFor(userID) >= *v.PerUserLimit {
		return nil, ErrUserLimit
	}
	if v.MinOrderAmount != nil && orderTotal < *v.MinOrderAmount {
		return nil, ErrMinOrder
	}

	discount := v.Value
	if v.DiscountType == models.DiscountPercentage {
		discount = orderTotal * v.Value / 100
	}

	return &Result{
		VoucherID:    v.ID,
		DiscountType: v.DiscountType,
		Discount:     discount,
	}, nil
}
