package models

import (
	"time"

	"gorm.io/gorm"
)

type ProductStatus string

const (
	ProductAvailable ProductStatus = "available"
	ProductDraft     ProductStatus = "draft"
)

// ProductImage is one entry of a product's ordered image list. Upload to the
// object storage happens outside this service; we only keep url + storage id.
type ProductImage struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProductID uint   `gorm:"index;not null" json:"product_id"`
	URL       string `gorm:"not null" json:"url"`
	StorageID string `gorm:"size:120" json:"storage_id"`
	Position  int    `gorm:"not null;default:0" json:"position"`
}

type Product struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	SellerID    uint   `gorm:"index" json:"seller_id"`
	SellerName  string `gorm:"size:100" json:"seller_name"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	Price        float64 `gorm:"not null" json:"price"`
	CategoryID   *uint   `gorm:"index" json:"category_id"`
	CategoryName string  `gorm:"size:100" json:"category_name"`

	// StockQty never goes negative; SoldCount only grows, via the one-time
	// deduction on the shipped transition.
	StockQty  int `gorm:"not null;default:0" json:"stock_qty"`
	SoldCount int `gorm:"not null;default:0" json:"sold_count"`

	Status     ProductStatus `gorm:"default:'available';size:20" json:"status"`
	IsDisabled bool          `gorm:"default:false" json:"is_disabled"`

	DisabledAt     *time.Time `json:"disabled_at"`
	DisabledReason string     `gorm:"size:255" json:"disabled_reason"`
	DisabledBy     uint       `json:"disabled_by,omitempty"`

	Images         []ProductImage `gorm:"constraint:OnDelete:CASCADE" json:"images"`
	MainImageIndex int            `gorm:"default:0" json:"main_image_index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	Seller User `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
}

// MainImageURL returns the url of the image at main_image_index, or the
// first image, or "".
func (p *Product) MainImageURL() string {
	if len(p.Images) == 0 {
		return ""
	}
	if p.MainImageIndex >= 0 && p.MainImageIndex < len(p.Images) {
		return p.Images[p.MainImageIndex].URL
	}
	return p.Images[0].URL
}

// Purchasable reports whether the product can be added to a cart.
func (p *Product) Purchasable() bool {
	return !p.IsDisabled && p.Status == ProductAvailable
}
