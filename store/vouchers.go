package store

import (
	"context"
	"errors"

	"github.com/nxough-jxhn/daingGraderWeb/internal/checkout"
	"github.com/nxough-jxhn/daingGraderWeb/models"
	"gorm.io/gorm"
)

type Vouchers struct {
	db *gorm.DB
}

func NewVouchers(db *gorm.DB) *Vouchers {
	return &Vouchers{db: db}
}

// FindByCode looks up a voucher by its uppercased code.
func (s *Vouchers) FindByCode(ctx context.Context, code string) (*models.Voucher, error) {
	var v models.Voucher
	err := s.db.WithContext(ctx).
		Preload("Usages").
		Where("code = ?", code).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, checkout.ErrVoucherNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CommitUsage increments the voucher's global counter and the per-user
// usage row in one transaction.
func (s *Vouchers) CommitUsage(ctx context.Context, voucherID, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Voucher{}).Where("id = ?", voucherID).
			Update("current_uses", gorm.Expr("current_uses + 1")).Error
		if err != nil {
			return err
		}

		res := tx.Model(&models.VoucherUsage{}).
			Where("voucher_id = ? AND user_id = ?", voucherID, userID).
			Update("used_count", gorm.Expr("used_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return tx.Create(&models.VoucherUsage{
				VoucherID: voucherID,
				UserID:    userID,
				UsedCount: 1,
			}).Error
		}
		return nil
	})
}
