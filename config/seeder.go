package config

import (
	"log"
	"time"

	"github.com/nxough-jxhn/daingGraderWeb/models"
	"github.com/nxough-jxhn/daingGraderWeb/utils"
	"gorm.io/gorm"
)

func SeedCategories(db *gorm.DB) {
	categories := []models.Category{
		{Name: "Dried Fish", Description: "Daing, tuyo and other dried seafood"},
		{Name: "Fresh Catch", Description: "Fresh fish and seafood"},
		{Name: "Condiments", Description: "Bagoong, patis and sauces"},
	}

	for _, category := range categories {
		var existing models.Category
		if err := db.Where("name = ?", category.Name).First(&existing).Error; err == gorm.ErrRecordNotFound {
			if err := db.Create(&category).Error; err != nil {
				log.Printf("Failed to seed category %s: %v", category.Name, err)
			}
		}
	}
}

func SeedUsers(db *gorm.DB) {
	log.Println("Seeding users...")

	password, _ := utils.HashPassword("password123")

	users := []models.User{
		{
			Username: "buyer1",
			Email:    "buyer1@example.com",
			Password: password,
			FullName: "Buyer One",
			Role:     models.RoleUser,
		},
		{
			Username: "seller1",
			Email:    "seller1@example.com",
			Password: password,
			FullName: "Seller One",
			Role:     models.RoleSeller,
		},
		{
			Username: "admin",
			Email:    "admin@example.com",
			Password: password,
			FullName: "Site Admin",
			Role:     models.RoleAdmin,
		},
	}

	for _, user := range users {
		var existingUser models.User
		if err := db.Where("email = ?", user.Email).First(&existingUser).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := db.Create(&user).Error; err != nil {
					log.Printf("Failed to seed user %s: %v", user.Username, err)
				} else {
					log.Printf("User seeded: %s (ID: %d)", user.Username, user.ID)
				}
			}
		} else {
			log.Printf("User already exists: %s", user.Username)
		}
	}

	log.Println("Seeding complete.")
}

func SeedProducts(db *gorm.DB) {
	var seller models.User
	if err := db.Where("role = ?", models.RoleSeller).First(&seller).Error; err != nil {
		log.Printf("No seller to attach seeded products to: %v", err)
		return
	}

	var category models.Category
	db.First(&category)

	products := []models.Product{
		{
			SellerID:     seller.ID,
			SellerName:   seller.FullName,
			Name:         "Premium Daing na Bangus",
			Description:  "Butterflied, marinated milkfish",
			Price:        180,
			CategoryID:   &category.ID,
			CategoryName: category.Name,
			StockQty:     50,
			Status:       models.ProductAvailable,
		},
		{
			SellerID:     seller.ID,
			SellerName:   seller.FullName,
			Name:         "Tuyo Bundle",
			Description:  "Sun-dried herring, pack of 20",
			Price:        95,
			CategoryID:   &category.ID,
			CategoryName: category.Name,
			StockQty:     120,
			Status:       models.ProductAvailable,
		},
	}

	for _, product := range products {
		var existing models.Product
		if err := db.Where("name = ? AND seller_id = ?", product.Name, seller.ID).First(&existing).Error; err == gorm.ErrRecordNotFound {
			if err := db.Create(&product).Error; err != nil {
				log.Printf("Failed to seed product %s: %v", product.Name, err)
			}
		}
	}
}

func SeedVouchers(db *gorm.DB) {
	var seller models.User
	if err := db.Where("role = ?", models.RoleSeller).First(&seller).Error; err != nil {
		return
	}

	expiry := time.Now().AddDate(0, 3, 0)
	maxUses := 100
	minOrder := 500.0

	vouchers := []models.Voucher{
		{
			SellerID:       seller.ID,
			Code:           "WELCOME10",
			DiscountType:   models.DiscountPercentage,
			Value:          10,
			ExpirationDate: &expiry,
			MaxUses:        &maxUses,
			MinOrderAmount: &minOrder,
			Active:         true,
		},
	}

	for _, voucher := range vouchers {
		var existing models.Voucher
		if err := db.Where("code = ?", voucher.Code).First(&existing).Error; err == gorm.ErrRecordNotFound {
			if err := db.Create(&voucher).Error; err != nil {
				log.Printf("Failed to seed voucher %s: %v", voucher.Code, err)
			}
		}
	}
}

// ResetAndMigrate drops everything and rebuilds with seed data.
func ResetAndMigrate(db *gorm.DB) error {
	tables := []interface{}{
		&models.AuditLog{},
		&models.ScanHistory{},
		&models.CommunityComment{},
		&models.CommunityPost{},
		&models.WishlistItem{},
		&models.VoucherUsage{},
		&models.Voucher{},
		&models.OrderStockDeduction{},
		&models.OrderItem{},
		&models.Order{},
		&models.CartItem{},
		&models.Cart{},
		&models.ProductImage{},
		&models.Product{},
		&models.Category{},
		&models.User{},
	}

	if err := db.Migrator().DropTable(tables...); err != nil {
		log.Printf("Failed to drop tables: %v", err)
		return err
	}

	if err := Migrate(db); err != nil {
		return err
	}

	SeedUsers(db)
	SeedProducts(db)
	SeedVouchers(db)

	log.Println("Database reset and migration completed successfully.")
	return nil
}
