package handlers

import (
	"strconv"
	"time"

	"github.com/nxough-jxhn/daingGraderWeb/middleware"
	"github.com/nxough-jxhn/daingGraderWeb/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProductHandler struct {
	DB *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{DB: db}
}

// ProductRequest covers create and update payloads for seller products.
type ProductRequest struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	CategoryID     *uint   `json:"category_id"`
	StockQty       *int    `json:"stock_qty"`
	Status         string  `json:"status"`
	MainImageIndex *int    `json:"main_image_index"`
}

// GetCatalogProducts - GET /api/catalog/products (public)
func (h *ProductHandler) GetCatalogProducts(c *fiber.Ctx) error {
	page, pageSize, err := pagination(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid pagination parameters"))
	}

	query := h.DB.Model(&models.Product{}).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("is_disabled = ? AND status = ?", false, models.ProductAvailable)

	if category := c.Query("category_id"); category != "" {
		query = query.Where("category_id = ?", category)
	}
	if q := c.Query("q"); q != "" {
		query = query.Where("name ILIKE ?", "%"+q+"%")
	}
	if seller := c.Query("seller_id"); seller != "" {
		query = query.Where("seller_id = ?", seller)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not fetch products"))
	}

	var products []models.Product
	if err := query.Order("created_at desc").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&products).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not fetch products"))
	}

	meta := models.NewPaginationMeta(page, pageSize, total)
	return c.JSON(models.SuccessResponse("", products, meta))
}

// GetCatalogProduct - GET /api/catalog/products/:id (public)
func (h *ProductHandler) GetCatalogProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid product ID"))
	}

	var product models.Product
	err = h.DB.Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("is_disabled = ?", false).
		First(&product, id).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Product not found"))
	}

	return c.JSON(models.SuccessResponse("", product, nil))
}

// GetSellerProducts - GET /api/seller/products
func (h *ProductHandler) GetSellerProducts(c *fiber.Ctx) error {
	seller := middleware.CurrentUser(c)
	page, pageSize, err := pagination(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid pagination parameters"))
	}

	query := h.DB.Model(&models.Product{}).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("seller_id = ?", seller.ID)

	if q := c.Query("q"); q != "" {
		query = query.Where("name ILIKE ?", "%"+q+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not fetch products"))
	}

	var products []models.Product
	if err := query.Order("created_at desc").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&products).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not fetch products"))
	}

	meta := models.NewPaginationMeta(page, pageSize, total)
	return c.JSON(models.SuccessResponse("", products, meta))
}

// CreateProduct - POST /api/seller/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	seller := middleware.CurrentUser(c)

	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid input"))
	}
	if req.Name == "" || req.Price <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Name and a positive price are required"))
	}

	status := models.ProductAvailable
	if req.Status == string(models.ProductDraft) {
		status = models.ProductDraft
	}

	product := models.Product{
		SellerID:    seller.ID,
		SellerName:  seller.FullName,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Status:      status,
	}
	if req.StockQty != nil {
		if *req.StockQty < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Stock cannot be negative"))
		}
		product.StockQty = *req.StockQty
	}
	if req.CategoryID != nil {
		var category models.Category
		if err := h.DB.First(&category, *req.CategoryID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Category not found"))
		}
		product.CategoryID = req.CategoryID
		product.CategoryName = category.Name
	}

	if err := h.DB.Create(&product).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not create product"))
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse("Product created", product, nil))
}

// UpdateProduct - PATCH /api/seller/products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	product, errResp := h.ownedProduct(c)
	if errResp != nil {
		return errResp(c)
	}

	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid input"))
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Price > 0 {
		product.Price = req.Price
	}
	if req.StockQty != nil {
		if *req.StockQty < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Stock cannot be negative"))
		}
		product.StockQty = *req.StockQty
	}
	if req.Status != "" {
		if req.Status != string(models.ProductAvailable) && req.Status != string(models.ProductDraft) {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid status value"))
		}
		product.Status = models.ProductStatus(req.Status)
	}
	if req.MainImageIndex != nil {
		product.MainImageIndex = *req.MainImageIndex
	}
	if req.CategoryID != nil {
		var category models.Category
		if err := h.DB.First(&category, *req.CategoryID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Category not found"))
		}
		product.CategoryID = req.CategoryID
		product.CategoryName = category.Name
	}

	if err := h.DB.Save(product).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not update product"))
	}

	return c.JSON(models.SuccessResponse("Product updated", product, nil))
}

// DisableProduct - POST /api/seller/products/:id/disable
// Sellers hide their own listing; the admin moderation toggle lives in the
// admin handler.
func (h *ProductHandler) DisableProduct(c *fiber.Ctx) error {
	product, errResp := h.ownedProduct(c)
	if errResp != nil {
		return errResp(c)
	}

	var req struct {
		Disabled *bool  `json:"disabled"`
		Reason   string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid input"))
	}

	disabled := !product.IsDisabled
	if req.Disabled != nil {
		disabled = *req.Disabled
	}

	product.IsDisabled = disabled
	if disabled {
		now := time.Now().UTC()
		product.DisabledAt = &now
		product.DisabledReason = req.Reason
	} else {
		product.DisabledAt = nil
		product.DisabledReason = ""
	}

	if err := h.DB.Save(product).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not update product"))
	}

	return c.JSON(models.SuccessResponse("Product visibility updated", product, nil))
}

// DeleteProduct - DELETE /api/seller/products/:id
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	product, errResp := h.ownedProduct(c)
	if errResp != nil {
		return errResp(c)
	}

	if err := h.DB.Delete(product).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not delete product"))
	}

	return c.JSON(models.SuccessResponse("Product deleted", nil, nil))
}

// AddProductImage - POST /api/seller/products/:id/images
// The upload itself happens against the object storage; this records the
// resulting url + storage id at the end of the ordered list.
func (h *ProductHandler) AddProductImage(c *fiber.Ctx) error {
	product, errResp := h.ownedProduct(c)
	if errResp != nil {
		return errResp(c)
	}

	var req struct {
		URL       string `json:"url"`
		StorageID string `json:"storage_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Image url is required"))
	}

	image := models.ProductImage{
		ProductID: product.ID,
		URL:       req.URL,
		StorageID: req.StorageID,
		Position:  len(product.Images),
	}
	if err := h.DB.Create(&image).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not add image"))
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse("Image added", image, nil))
}

// RemoveProductImage - DELETE /api/seller/products/:id/images/:index
func (h *ProductHandler) RemoveProductImage(c *fiber.Ctx) error {
	product, errResp := h.ownedProduct(c)
	if errResp != nil {
		return errResp(c)
	}

	index, err := strconv.Atoi(c.Params("index"))
	if err != nil || index < 0 || index >= len(product.Images) {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid image index"))
	}

	target := product.Images[index]
	if err := h.DB.Delete(&target).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not remove image"))
	}

	// Re-pack positions so the list stays dense.
	for i := index + 1; i < len(product.Images); i++ {
		h.DB.Model(&models.ProductImage{}).
			Where("id = ?", product.Images[i].ID).
			Update("position", i-1)
	}
	if product.MainImageIndex >= len(product.Images)-1 && product.MainImageIndex > 0 {
		h.DB.Model(product).Update("main_image_index", 0)
	}

	return c.JSON(models.SuccessResponse("Image removed", nil, nil))
}

// ownedProduct loads the :id product and checks seller ownership. On failure
// it returns a responder for the right status code.
func (h *ProductHandler) ownedProduct(c *fiber.Ctx) (*models.Product, func(*fiber.Ctx) error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid product ID"))
		}
	}

	var product models.Product
	if err := h.DB.Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&product, id).Error; err != nil {
		return nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Product not found"))
		}
	}

	seller := middleware.CurrentUser(c)
	if product.SellerID != seller.ID {
		return nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("Not authorized"))
		}
	}

	return &product, nil
}

// pagination parses page/page_size with the original bounds (max 50).
func pagination(c *fiber.Ctx) (int, int, error) {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil {
		return 0, 0, err
	}
	pageSize, err := strconv.Atoi(c.Query("page_size", "10"))
	if err != nil {
		return 0, 0, err
	}
	if page < 1 || pageSize < 1 || pageSize > 50 {
		return 0, 0, fiber.ErrBadRequest
	}
	return page, pageSize, nil
}
