package handlers

import (
	"github.com/nxough-jxhn/daingGraderWeb/middleware"
	"github.com/nxough-jxhn/daingGraderWeb/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserHandler struct {
	DB *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

// Me - GET /api/me
func (h *UserHandler) Me(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	return c.JSON(models.SuccessResponse("", user, nil))
}

type UpdateProfileRequest struct {
	FullName string  `json:"full_name"`
	Phone    *string `json:"phone"`
	Address  string  `json:"address"`
	ImageURL string  `json:"image_url"`
}

// UpdateProfile - PATCH /api/me
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid input"))
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Address != "" {
		user.Address = req.Address
	}
	if req.ImageURL != "" {
		user.ImageURL = req.ImageURL
	}

	if err := h.DB.Save(user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not update profile"))
	}

	return c.JSON(models.SuccessResponse("Profile updated", user, nil))
}
