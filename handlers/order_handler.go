package handlers

import (
	"errors"
	"strconv"

	"github.com/nxough-jxhn/daingGraderWeb/internal/checkout"
	"github.com/nxough-jxhn/daingGraderWeb/internal/orderstate"
	"github.com/nxough-jxhn/daingGraderWeb/internal/payments"
	"github.com/nxough-jxhn/daingGraderWeb/internal/voucher"
	"github.com/nxough-jxhn/daingGraderWeb/middleware"
	"github.com/nxough-jxhn/daingGraderWeb/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type OrderHandler struct {
	DB       *gorm.DB
	Engine   *checkout.Engine
	Machine  *orderstate.Machine
	Redirect string
}

func NewOrderHandler(db *gorm.DB, engine *checkout.Engine, machine *orderstate.Machine, redirect string) *OrderHandler {
	return &OrderHandler{DB: db, Engine: engine, Machine: machine, Redirect: redirect}
}

type CheckoutRequest struct {
	PaymentMethod string         `json:"payment_method"`
	SellerID      uint           `json:"seller_id"`
	VoucherCode   string         `json:"voucher_code"`
	Address       models.Address `json:"address"`
	RedirectURL   string         `json:"redirect_url"`
}

// Checkout - POST /api/checkout
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid input"))
	}
	if req.PaymentMethod == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("payment_method is required"))
	}
	if req.Address.FullName == "" || req.Address.Line1 == "" || req.Address.City == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Shipping address is incomplete"))
	}

	redirect := req.RedirectURL
	if redirect == "" {
		redirect = h.Redirect
	}

	result, err := h.Engine.Checkout(c.Context(), checkout.Input{
		User:          user,
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
		SellerID:      req.SellerID,
		VoucherCode:   req.VoucherCode,
		RedirectURL:   redirect,
		IP:            c.IP(),
	})
	if err != nil {
		return checkoutError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse("Order placed", result, nil))
}

// checkoutError maps the engine's sentinel errors onto HTTP codes.
func checkoutError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, checkout.ErrCartEmpty),
		errors.Is(err, checkout.ErrNoSellerItems),
		errors.Is(err, checkout.ErrVoucherNotFound),
		errors.Is(err, voucher.ErrInactive),
		errors.Is(err, voucher.ErrExpired),
		errors.Is(err, voucher.ErrMaxUses),
		errors.Is(err, voucher.ErrUserLimit),
		errors.Is(err, voucher.ErrMinOrder):
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	case errors.Is(err, payments.ErrGateway):
		return c.Status(fiber.StatusBadGateway).JSON(models.ErrorResponse("Payment provider is unavailable, please try again"))
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Checkout failed"))
	}
}

// GetOrders - GET /api/orders (buyer's own orders, newest first)
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	page, pageSize, err := pagination(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid pagination parameters"))
	}

	query := h.DB.Model(&models.Order{}).Where("user_id = ?", user.ID)
	if status := c.Query("status"); status != "" {
		if _, ok := models.ParseOrderStatus(status); !ok {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid status value"))
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not fetch orders"))
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("created_at desc").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&orders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not fetch orders"))
	}

	meta := models.NewPaginationMeta(page, pageSize, total)
	return c.JSON(models.SuccessResponse("", orders, meta))
}

// GetOrder - GET /api/orders/:id
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid order ID"))
	}

	var order models.Order
	if err := h.DB.Preload("Items").Preload("StockDeductions").
		Where("id = ? AND user_id = ?", id, user.ID).
		First(&order).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Order not found"))
	}

	return c.JSON(models.SuccessResponse("", order, nil))
}

// SellerOrderView restricts an order to the acting seller's slice of it:
// only their items, with totals recomputed over that subset.
type SellerOrderView struct {
	models.Order
	SellerTotal      float64 `json:"seller_total"`
	SellerTotalItems int     `json:"seller_total_items"`
	StockDeducted    bool    `json:"stock_deducted"`
}

// GetSellerOrders - GET /api/seller/orders
func (h *OrderHandler) GetSellerOrders(c *fiber.Ctx) error {
	seller := middleware.CurrentUser(c)
	page, pageSize, err := pagination(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid pagination parameters"))
	}

	var productIDs []uint
	if err := h.DB.Model(&models.Product{}).
		Where("seller_id = ?", seller.ID).
		Pluck("id", &productIDs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not fetch orders"))
	}
	if len(productIDs) == 0 {
		return c.JSON(models.SuccessResponse("", []SellerOrderView{}, models.NewPaginationMeta(page, pageSize, 0)))
	}

	owned := make(map[uint]struct{}, len(productIDs))
	for _, id := range productIDs {
		owned[id] = struct{}{}
	}

	query := h.DB.Model(&models.Order{}).
		Where("id IN (?)", h.DB.Model(&models.OrderItem{}).
			Select("DISTINCT order_id").
			Where("product_id IN ?", productIDs))
	if status := c.Query("status"); status != "" {
		if _, ok := models.ParseOrderStatus(status); !ok {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid status value"))
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not fetch orders"))
	}

	var orders []models.Order
	if err := query.Preload("Items").Preload("StockDeductions").
		Order("created_at desc").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&orders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not fetch orders"))
	}

	views := make([]SellerOrderView, 0, len(orders))
	for _, o := range orders {
		view := SellerOrderView{Order: o, StockDeducted: o.HasDeductionFor(seller.ID)}
		var sellerItems []models.OrderItem
		for _, it := range o.Items {
			if _, ok := owned[it.ProductID]; ok {
				sellerItems = append(sellerItems, it)
				view.SellerTotal += it.Price * float64(it.Qty)
				view.SellerTotalItems += it.Qty
			}
		}
		view.Items = sellerItems
		views = append(views, view)
	}

	meta := models.NewPaginationMeta(page, pageSize, total)
	return c.JSON(models.SuccessResponse("", views, meta))
}

// UpdateOrderStatus - PATCH /api/seller/orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	seller := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid order ID"))
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid input"))
	}

	order, err := h.Machine.SellerUpdateStatus(c.Context(), uint(id), seller, models.OrderStatus(req.Status))
	if err != nil {
		return orderStateError(c, err)
	}

	return c.JSON(models.SuccessResponse("Order status updated", order, nil))
}

// CancelOrder - POST /api/orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid order ID"))
	}

	order, err := h.Machine.CustomerCancel(c.Context(), uint(id), user)
	if err != nil {
		return orderStateError(c, err)
	}

	return c.JSON(models.SuccessResponse("Order cancelled", order, nil))
}

// MarkDelivered - POST /api/orders/:id/delivered
func (h *OrderHandler) MarkDelivered(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid order ID"))
	}

	order, err := h.Machine.CustomerMarkDelivered(c.Context(), uint(id), user)
	if err != nil {
		return orderStateError(c, err)
	}

	return c.JSON(models.SuccessResponse("Order delivered", order, nil))
}

func orderStateError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, orderstate.ErrOrderNotFound):
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Order not found"))
	case errors.Is(err, orderstate.ErrNotSellerOrder):
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse(err.Error()))
	case errors.Is(err, orderstate.ErrInvalidStatus),
		errors.Is(err, orderstate.ErrCancelNotAllowed),
		errors.Is(err, orderstate.ErrNotShipped):
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not update order"))
	}
}
