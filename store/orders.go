package store

import (
	"context"
	"errors"

	"github.com/nxough-jxhn/daingGraderWeb/internal/orderstate"
	"github.com/nxough-jxhn/daingGraderWeb/models"
	"gorm.io/gorm"
)

type Orders struct {
	db *gorm.DB
}

func NewOrders(db *gorm.DB) *Orders {
	return &Orders{db: db}
}

// Create inserts one order with its item snapshots.
func (s *Orders) Create(ctx context.Context, order *models.Order) error {
	return s.db.WithContext(ctx).Create(order).Error
}

func (s *Orders) Get(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("StockDeductions").
		First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, orderstate.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Apply runs a status transition and its stock deduction in one transaction,
// so a crash mid-loop can no longer leave some items deducted and others not.
func (s *Orders) Apply(ctx context.Context, t orderstate.Transition) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": t.Status}
		if t.DeliveredAt != nil {
			updates["delivered_at"] = *t.DeliveredAt
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", t.OrderID).Updates(updates).Error; err != nil {
			return err
		}

		if t.Deduct == nil {
			return nil
		}
		for _, it := range t.Deduct.Items {
			// Floor at zero: a qty larger than remaining stock empties the
			// shelf instead of going negative.
			err := tx.Model(&models.Product{}).Where("id = ?", it.ProductID).
				Updates(map[string]interface{}{
					"stock_qty":  gorm.Expr("CASE WHEN stock_qty > ? THEN stock_qty - ? ELSE 0 END", it.Qty, it.Qty),
					"sold_count": gorm.Expr("sold_count + ?", it.Qty),
				}).Error
			if err != nil {
				return err
			}
		}
		return tx.Create(&models.OrderStockDeduction{
			OrderID:  t.OrderID,
			SellerID: t.Deduct.SellerID,
		}).Error
	})
}
