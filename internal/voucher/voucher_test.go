package voucher

import (
	"testing"
	"time"

	"github.com/nxough-jxhn/daingGraderWeb/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int              { return &v }
func floatPtr(v float64) *float64    { return &v }
func timePtr(t time.Time) *time.Time { return &t }

func activeVoucher() *models.Voucher {
	return &models.Voucher{
		ID:           1,
		Code:         "WELCOME10",
		DiscountType: models.DiscountPercentage,
		Value:        10,
		Active:       true,
	}
}

func TestValidatePercentageDiscount(t *testing.T) {
	now := time.Now()
	v := activeVoucher()
	v.Value = 20

	res, err := Validate(v, 7, 1000, now)
	require.NoError(t, err)
	assert.Equal(t, uint(1), res.VoucherID)
	assert.Equal(t, models.DiscountPercentage, res.DiscountType)
	assert.InDelta(t, 200.0, res.Discount, 0.001)
}

func TestValidateFixedDiscount(t *testing.T) {
	now := time.Now()
	v := activeVoucher()
	v.DiscountType = models.DiscountFixed
	v.Value = 150

	res, err := Validate(v, 7, 99999, now)
	require.NoError(t, err)
	assert.InDelta(t, 150.0, res.Discount, 0.001)
}

func TestValidateInactive(t *testing.T) {
	now := time.Now()
	v := activeVoucher()
	v.Active = false

	_, err := Validate(v, 7, 1000, now)
	assert.ErrorIs(t, err, ErrInactive)
}

func TestValidateNilVoucher(t *testing.T) {
	_, err := Validate(nil, 7, 1000, time.Now())
	assert.ErrorIs(t, err, ErrInactive)
}

func TestValidateExpired(t *testing.T) {
	now := time.Now()
	v := activeVoucher()
	v.ExpirationDate = timePtr(now.Add(-time.Hour))

	_, err := Validate(v, 7, 1000, now)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestValidateExpiresExactlyNow(t *testing.T) {
	now := time.Now()
	v := activeVoucher()
	v.ExpirationDate = timePtr(now)

	_, err := Validate(v, 7, 1000, now)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestValidateMaxUsesReached(t *testing.T) {
	now := time.Now()
	v := activeVoucher()
	v.MaxUses = intPtr(5)
	v.CurrentUses = 5

	_, err := Validate(v, 7, 1000, now)
	assert.ErrorIs(t, err, ErrMaxUses)
}

func TestValidatePerUserLimitReached(t *testing.T) {
	now := time.Now()
	v := activeVoucher()
	v.PerUserLimit = intPtr(1)
	v.Usages = []models.VoucherUsage{{VoucherID: 1, UserID: 7, UsedCount: 1}}

	_, err := Validate(v, 7, 1000, now)
	assert.ErrorIs(t, err, ErrUserLimit)

	// A different user is still eligible.
	res, err := Validate(v, 8, 1000, now)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, res.Discount, 0.001)
}

func TestValidateMinOrderAmount(t *testing.T) {
	now := time.Now()
	v := activeVoucher()
	v.MinOrderAmount = floatPtr(500)

	_, err := Validate(v, 7, 499.99, now)
	assert.ErrorIs(t, err, ErrMinOrder)

	_, err = Validate(v, 7, 500, now)
	assert.NoError(t, err)
}

func TestValidateUnlimitedWhenFieldsNil(t *testing.T) {
	// nil MaxUses / PerUserLimit / MinOrderAmount mean no constraint.
	now := time.Now()
	v := activeVoucher()
	v.CurrentUses = 1000000
	v.Usages = []models.VoucherUsage{{VoucherID: 1, UserID: 7, UsedCount: 50}}

	_, err := Validate(v, 7, 1, now)
	assert.NoError(t, err)
}
