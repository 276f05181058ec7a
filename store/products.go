// Package store holds the gorm-backed implementations of the engine store
// interfaces. Each mutation is a single statement or one transaction; there
// is no application-level locking.
package store

import (
	"context"

	"github.com/nxough-jxhn/daingGraderWeb/models"
	"gorm.io/gorm"
)

type Products struct {
	db *gorm.DB
}

func NewProducts(db *gorm.DB) *Products {
	return &Products{db: db}
}

// ByIDs resolves products with their images and seller. Missing ids are
// simply absent from the map.
func (s *Products) ByIDs(ctx context.Context, ids []uint) (map[uint]*models.Product, error) {
	var rows []models.Product
	err := s.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Seller").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uint]*models.Product, len(rows))
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

// SellerProductIDs returns the id set of every product the seller owns,
// used for the order-membership authorization test.
func (s *Products) SellerProductIDs(ctx context.Context, sellerID uint) (map[uint]struct{}, error) {
	var ids []uint
	err := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("seller_id = ?", sellerID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}
