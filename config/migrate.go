package config

import (
	"log"

	"github.com/nxough-jxhn/daingGraderWeb/models"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// Migrate the schema
	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStockDeduction{},
		&models.Voucher{},
		&models.VoucherUsage{},
		&models.WishlistItem{},
		&models.CommunityPost{},
		&models.CommunityComment{},
		&models.ScanHistory{},
		&models.AuditLog{},
	)

	if err != nil {
		log.Printf("Failed to migrate database schema: %v", err)
		return err
	}

	log.Println("Database Migrations completed succesfully...")

	// Ensure categories are seeded even on normal migration
	SeedCategories(db)

	return err
}
