package store

import (
	"context"
	"errors"

	"github.com/nxough-jxhn/daingGraderWeb/models"
	"gorm.io/gorm"
)

type Carts struct {
	db *gorm.DB
}

func NewCarts(db *gorm.DB) *Carts {
	return &Carts{db: db}
}

// Get returns the user's cart with items in the order they were added, or
// nil when the user has never carted anything.
func (s *Carts) Get(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("added_at asc, id asc") }).
		Where("user_id = ?", userID).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveItems deletes the consumed lines after checkout.
func (s *Carts) RemoveItems(ctx context.Context, userID uint, productIDs []uint) error {
	var cart models.Cart
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Where("cart_id = ? AND product_id IN ?", cart.ID, productIDs).
		Delete(&models.CartItem{}).Error
}
