package handlers

import (
	"strconv"

	"github.com/nxough-jxhn/daingGraderWeb/middleware"
	"github.com/nxough-jxhn/daingGraderWeb/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type WishlistHandler struct {
	DB *gorm.DB
}

func NewWishlistHandler(db *gorm.DB) *WishlistHandler {
	return &WishlistHandler{DB: db}
}

// ToggleWishlist - POST /api/wishlist/:productId
// Adds the product if absent, removes it if present.
func (h *WishlistHandler) ToggleWishlist(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	productID, err := strconv.Atoi(c.Params("productId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid product ID"))
	}

	var product models.Product
	if err := h.DB.First(&product, productID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Product not found"))
	}

	var existing models.WishlistItem
	err = h.DB.Where("user_id = ? AND product_id = ?", user.ID, productID).First(&existing).Error
	if err == nil {
		if err := h.DB.Delete(&existing).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not update wishlist"))
		}
		return c.JSON(models.SuccessResponse("Removed from wishlist", fiber.Map{"wishlisted": false}, nil))
	}
	if err != gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not update wishlist"))
	}

	item := models.WishlistItem{UserID: user.ID, ProductID: uint(productID)}
	if err := h.DB.Create(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not update wishlist"))
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse("Added to wishlist", fiber.Map{"wishlisted": true}, nil))
}

// GetWishlist - GET /api/wishlist
func (h *WishlistHandler) GetWishlist(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var items []models.WishlistItem
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not fetch wishlist"))
	}

	if len(items) == 0 {
		return c.JSON(models.SuccessResponse("", []models.Product{}, nil))
	}

	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}

	var products []models.Product
	if err := h.DB.Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("id IN ? AND is_disabled = ?", ids, false).
		Find(&products).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not fetch wishlist"))
	}

	return c.JSON(models.SuccessResponse("", products, nil))
}

// CheckWishlist - GET /api/wishlist/:productId
func (h *WishlistHandler) CheckWishlist(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	productID, err := strconv.Atoi(c.Params("productId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid product ID"))
	}

	var count int64
	if err := h.DB.Model(&models.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", user.ID, productID).
		Count(&count).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not check wishlist"))
	}

	return c.JSON(models.SuccessResponse("", fiber.Map{"wishlisted": count > 0}, nil))
}
