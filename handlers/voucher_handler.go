package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/nxough-jxhn/daingGraderWeb/internal/voucher"
	"github.com/nxough-jxhn/daingGraderWeb/middleware"
	"github.com/nxough-jxhn/daingGraderWeb/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type VoucherHandler struct {
	DB *gorm.DB
}

func NewVoucherHandler(db *gorm.DB) *VoucherHandler {
	return &VoucherHandler{DB: db}
}

type VoucherRequest struct {
	Code           string   `json:"code"`
	DiscountType   string   `json:"discount_type"`
	Value          float64  `json:"value"`
	ExpirationDate *string  `json:"expiration_date"`
	MaxUses        *int     `json:"max_uses"`
	PerUserLimit   *int     `json:"per_user_limit"`
	MinOrderAmount *float64 `json:"min_order_amount"`
	Active         *bool    `json:"active"`
}

// GetVouchers - GET /api/seller/vouchers
func (h *VoucherHandler) GetVouchers(c *fiber.Ctx) error {
	seller := middleware.CurrentUser(c)

	var vouchers []models.Voucher
	if err := h.DB.Preload("Usages").
		Where("seller_id = ?", seller.ID).
		Order("created_at desc").
		Find(&vouchers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not fetch vouchers"))
	}

	return c.JSON(models.SuccessResponse("", vouchers, nil))
}

// CreateVoucher - POST /api/seller/vouchers
func (h *VoucherHandler) CreateVoucher(c *fiber.Ctx) error {
	seller := middleware.CurrentUser(c)

	var req VoucherRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid input"))
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Code is required"))
	}
	dt, msg := validateVoucherValue(req.DiscountType, req.Value)
	if msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(msg))
	}

	var count int64
	h.DB.Model(&models.Voucher{}).Where("code = ?", code).Count(&count)
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse("A voucher with this code already exists"))
	}

	v := models.Voucher{
		SellerID:       seller.ID,
		Code:           code,
		DiscountType:   dt,
		Value:          req.Value,
		MaxUses:        req.MaxUses,
		PerUserLimit:   req.PerUserLimit,
		MinOrderAmount: req.MinOrderAmount,
		Active:         true,
	}
	if req.Active != nil {
		v.Active = *req.Active
	}
	if req.ExpirationDate != nil {
		exp, err := parseVoucherTime(*req.ExpirationDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid expiration date"))
		}
		v.ExpirationDate = exp
	}

	if err := h.DB.Create(&v).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not create voucher"))
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse("Voucher created", v, nil))
}

// UpdateVoucher - PATCH /api/seller/vouchers/:id
func (h *VoucherHandler) UpdateVoucher(c *fiber.Ctx) error {
	v, errResp := h.ownedVoucher(c)
	if errResp != nil {
		return errResp(c)
	}

	var req VoucherRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid input"))
	}

	if req.DiscountType != "" || req.Value != 0 {
		dt := string(v.DiscountType)
		if req.DiscountType != "" {
			dt = req.DiscountType
		}
		value := v.Value
		if req.Value != 0 {
			value = req.Value
		}
		parsed, msg := validateVoucherValue(dt, value)
		if msg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(msg))
		}
		v.DiscountType = parsed
		v.Value = value
	}
	if req.MaxUses != nil {
		v.MaxUses = req.MaxUses
	}
	if req.PerUserLimit != nil {
		v.PerUserLimit = req.PerUserLimit
	}
	if req.MinOrderAmount != nil {
		v.MinOrderAmount = req.MinOrderAmount
	}
	if req.Active != nil {
		v.Active = *req.Active
	}
	if req.ExpirationDate != nil {
		if *req.ExpirationDate == "" {
			v.ExpirationDate = nil
		} else {
			exp, err := parseVoucherTime(*req.ExpirationDate)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid expiration date"))
			}
			v.ExpirationDate = exp
		}
	}

	if err := h.DB.Save(v).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not update voucher"))
	}

	return c.JSON(models.SuccessResponse("Voucher updated", v, nil))
}

// DeleteVoucher - DELETE /api/seller/vouchers/:id
func (h *VoucherHandler) DeleteVoucher(c *fiber.Ctx) error {
	v, errResp := h.ownedVoucher(c)
	if errResp != nil {
		return errResp(c)
	}

	if err := h.DB.Delete(v).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not delete voucher"))
	}

	return c.JSON(models.SuccessResponse("Voucher deleted", nil, nil))
}

// ValidateVoucher - POST /api/vouchers/validate
// Dry run for the cart page: reports eligibility and the computed discount
// without committing usage.
func (h *VoucherHandler) ValidateVoucher(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req struct {
		Code       string  `json:"code"`
		OrderTotal float64 `json:"order_total"`
	}
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Code is required"))
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	var v models.Voucher
	if err := h.DB.Preload("Usages").Where("code = ?", code).First(&v).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Invalid voucher code"))
	}

	result, err := voucher.Validate(&v, user.ID, req.OrderTotal, time.Now().UTC())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse("Voucher is valid", result, nil))
}

func validateVoucherValue(discountType string, value float64) (models.DiscountType, string) {
	dt := models.DiscountType(discountType)
	if dt != models.DiscountFixed && dt != models.DiscountPercentage {
		return "", "discount_type must be fixed or percentage"
	}
	if value <= 0 {
		return "", "Value must be greater than zero"
	}
	if dt == models.DiscountPercentage && value > 100 {
		return "", "Percentage value cannot exceed 100"
	}
	return dt, ""
}

func parseVoucherTime(s string) (*time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02", s)
		if err != nil {
			return nil, err
		}
	}
	t = t.UTC()
	return &t, nil
}

func (h *VoucherHandler) ownedVoucher(c *fiber.Ctx) (*models.Voucher, func(*fiber.Ctx) error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid voucher ID"))
		}
	}

	var v models.Voucher
	if err := h.DB.First(&v, id).Error; err != nil {
		return nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Voucher not found"))
		}
	}

	seller := middleware.CurrentUser(c)
	if v.SellerID != seller.ID && seller.Role != models.RoleAdmin {
		return nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("Not authorized"))
		}
	}

	return &v, nil
}
