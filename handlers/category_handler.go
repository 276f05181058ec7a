package handlers

import (
	"strconv"

	"github.com/nxough-jxhn/daingGraderWeb/middleware"
	"github.com/nxough-jxhn/daingGraderWeb/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CategoryHandler struct {
	DB *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{DB: db}
}

// GetCatalogCategories - GET /api/catalog/categories (public)
func (h *CategoryHandler) GetCatalogCategories(c *fiber.Ctx) error {
	var categories []models.Category
	if err := h.DB.Order("name asc").Find(&categories).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not fetch categories"))
	}
	return c.JSON(models.SuccessResponse("", categories, nil))
}

// GetCategories - GET /api/categories (seller view)
func (h *CategoryHandler) GetCategories(c *fiber.Ctx) error {
	var categories []models.Category
	if err := h.DB.Order("name asc").Find(&categories).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not fetch categories"))
	}
	return c.JSON(models.SuccessResponse("", categories, nil))
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateCategory - POST /api/categories
func (h *CategoryHandler) CreateCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Category name is required"))
	}

	seller := middleware.CurrentUser(c)
	category := models.Category{
		SellerID:    seller.ID,
		Name:        req.Name,
		Description: req.Description,
	}

	if err := h.DB.Create(&category).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse("Category already exists"))
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse("Category created", category, nil))
}

// UpdateCategory - PATCH /api/categories/:id
func (h *CategoryHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid category ID"))
	}

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Category not found"))
	}

	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid input"))
	}

	if req.Name != "" {
		category.Name = req.Name
	}
	if req.Description != "" {
		category.Description = req.Description
	}

	if err := h.DB.Save(&category).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not update category"))
	}

	return c.JSON(models.SuccessResponse("Category updated", category, nil))
}

// DeleteCategory - DELETE /api/categories/:id
func (h *CategoryHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid category ID"))
	}

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Category not found"))
	}

	if err := h.DB.Delete(&category).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not delete category"))
	}

	return c.JSON(models.SuccessResponse("Category deleted", nil, nil))
}
