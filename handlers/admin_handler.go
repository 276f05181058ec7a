package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nxough-jxhn/daingGraderWeb/internal/audit"
	"github.com/nxough-jxhn/daingGraderWeb/internal/mailer"
	"github.com/nxough-jxhn/daingGraderWeb/internal/moderation"
	"github.com/nxough-jxhn/daingGraderWeb/internal/orderstate"
	"github.com/nxough-jxhn/daingGraderWeb/middleware"
	"github.com/nxough-jxhn/daingGraderWeb/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AdminHandler struct {
	DB      *gorm.DB
	Machine *orderstate.Machine
	Mail    mailer.Sender
	Audit   audit.Recorder
	Log     *zap.Logger
}

func NewAdminHandler(db *gorm.DB, machine *orderstate.Machine, mail mailer.Sender, rec audit.Recorder, log *zap.Logger) *AdminHandler {
	return &AdminHandler{DB: db, Machine: machine, Mail: mail, Audit: rec, Log: log}
}

// ListUsers - GET /api/admin/users
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page, pageSize, err := pagination(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid pagination parameters"))
	}

	query := h.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		if _, ok := models.ParseRole(role); !ok {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid role value"))
		}
		query = query.Where("role = ?", role)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("username ILIKE ? OR email ILIKE ? OR full_name ILIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not fetch users"))
	}

	var users []models.User
	if err := query.Order("created_at desc").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not fetch users"))
	}

	meta := models.NewPaginationMeta(page, pageSize, total)
	return c.JSON(models.SuccessResponse("", users, meta))
}

type ToggleUserRequest struct {
	Reasons  []string `json:"reasons"`
	Duration string   `json:"duration"`
}

// ToggleUserStatus - POST /api/admin/users/:id/toggle-status
// Deactivating requires a duration (1d/3d/7d/14d/30d, "permanent", or a
// future ISO timestamp). Reactivating clears all moderation fields.
func (h *AdminHandler) ToggleUserStatus(c *fiber.Ctx) error {
	admin := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid user ID"))
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("User not found"))
	}
	if user.Role == models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("Admin accounts cannot be deactivated"))
	}

	now := time.Now().UTC()
	var action, details string

	if user.IsActive() {
		var req ToggleUserRequest
		if err := c.BodyParser(&req); err != nil || req.Duration == "" {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Duration is required to deactivate"))
		}
		if err := moderation.Deactivate(&user, req.Reasons, req.Duration, admin.ID, now); err != nil {
			if errors.Is(err, moderation.ErrInvalidDuration) {
				return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
			}
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not update user"))
		}
		action = "Deactivated user"
		details = fmt.Sprintf("Duration %s, %d reason(s)", req.Duration, len(req.Reasons))

		h.sendDeactivationEmail(&user)
	} else {
		moderation.Reactivate(&user, now)
		action = "Reactivated user"
		details = "Manual reactivation"
	}

	if err := h.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not update user"))
	}

	h.record(c, admin, action, "User", fmt.Sprint(user.ID), details)
	return c.JSON(models.SuccessResponse("User status updated", user, nil))
}

// ListOrders - GET /api/admin/orders
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	page, pageSize, err := pagination(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid pagination parameters"))
	}

	query := h.DB.Model(&models.Order{})
	if status := c.Query("status"); status != "" {
		if _, ok := models.ParseOrderStatus(status); !ok {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid status value"))
		}
		query = query.Where("status = ?", status)
	}
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
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

// GetOrder - GET /api/admin/orders/:id
func (h *AdminHandler) GetOrder(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid order ID"))
	}

	var order models.Order
	if err := h.DB.Preload("Items").Preload("StockDeductions").
		First(&order, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Order not found"))
	}

	return c.JSON(models.SuccessResponse("", order, nil))
}

// SetOrderStatus - PATCH /api/admin/orders/:id/status
func (h *AdminHandler) SetOrderStatus(c *fiber.Ctx) error {
	admin := middleware.CurrentUser(c)

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

	order, err := h.Machine.AdminSetStatus(c.Context(), uint(id), admin, models.OrderStatus(req.Status))
	if err != nil {
		return orderStateError(c, err)
	}

	return c.JSON(models.SuccessResponse("Order status updated", order, nil))
}

// moderated is the common shape of content rows the admin can toggle.
type moderated struct {
	itemType string
	name     string
	ownerID  uint
	disabled bool
	save     func(disabled bool, reason string, adminID uint, now *time.Time) error
}

// ToggleProduct - POST /api/admin/products/:id/toggle
func (h *AdminHandler) ToggleProduct(c *fiber.Ctx) error {
	var p models.Product
	return h.toggle(c, &p, func() *moderated {
		return &moderated{
			itemType: "product",
			name:     p.Name,
			ownerID:  p.SellerID,
			disabled: p.IsDisabled,
			save: func(disabled bool, reason string, adminID uint, now *time.Time) error {
				p.IsDisabled = disabled
				p.DisabledAt = now
				p.DisabledReason = reason
				p.DisabledBy = adminID
				return h.DB.Save(&p).Error
			},
		}
	})
}

// TogglePost - POST /api/admin/posts/:id/toggle
func (h *AdminHandler) TogglePost(c *fiber.Ctx) error {
	var p models.CommunityPost
	return h.toggle(c, &p, func() *moderated {
		return &moderated{
			itemType: "post",
			name:     p.Title,
			ownerID:  p.UserID,
			disabled: p.IsDisabled,
			save: func(disabled bool, reason string, adminID uint, now *time.Time) error {
				p.IsDisabled = disabled
				p.DisabledAt = now
				p.DisabledReason = reason
				p.DisabledBy = adminID
				return h.DB.Save(&p).Error
			},
		}
	})
}

// ToggleComment - POST /api/admin/comments/:id/toggle
func (h *AdminHandler) ToggleComment(c *fiber.Ctx) error {
	var cm models.CommunityComment
	return h.toggle(c, &cm, func() *moderated {
		name := cm.Text
		if len(name) > 60 {
			name = name[:60] + "..."
		}
		return &moderated{
			itemType: "comment",
			name:     name,
			ownerID:  cm.UserID,
			disabled: cm.IsDisabled,
			save: func(disabled bool, reason string, adminID uint, now *time.Time) error {
				cm.IsDisabled = disabled
				cm.DisabledAt = now
				cm.DisabledReason = reason
				cm.DisabledBy = adminID
				return h.DB.Save(&cm).Error
			},
		}
	})
}

// ToggleScan - POST /api/admin/scans/:id/toggle
func (h *AdminHandler) ToggleScan(c *fiber.Ctx) error {
	var s models.ScanHistory
	return h.toggle(c, &s, func() *moderated {
		return &moderated{
			itemType: "scan",
			name:     fmt.Sprintf("%s (%s)", s.Label, s.Grade),
			ownerID:  s.UserID,
			disabled: s.IsDisabled,
			save: func(disabled bool, reason string, adminID uint, now *time.Time) error {
				s.IsDisabled = disabled
				s.DisabledAt = now
				s.DisabledReason = reason
				s.DisabledBy = adminID
				return h.DB.Save(&s).Error
			},
		}
	})
}

// toggle flips the is_disabled flag on any moderated row, emails the owner,
// and records the action. Disabling stamps when/why/who; enabling clears them.
func (h *AdminHandler) toggle(c *fiber.Ctx, dest interface{}, view func() *moderated) error {
	admin := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid ID"))
	}
	if err := h.DB.First(dest, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Not found"))
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.BodyParser(&req)

	m := view()
	disabled := !m.disabled

	if disabled {
		now := time.Now().UTC()
		if err := m.save(true, req.Reason, admin.ID, &now); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not update item"))
		}
	} else {
		if err := m.save(false, "", 0, nil); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not update item"))
		}
	}

	h.sendToggleEmail(m, disabled, req.Reason)

	verb := "Enabled"
	if disabled {
		verb = "Disabled"
	}
	h.record(c, admin, verb+" "+m.itemType, m.itemType, fmt.Sprint(id), req.Reason)

	return c.JSON(models.SuccessResponse("Item visibility updated", fiber.Map{"disabled": disabled}, nil))
}

// ListAuditLogs - GET /api/admin/audit-logs
func (h *AdminHandler) ListAuditLogs(c *fiber.Ctx) error {
	page, pageSize, err := pagination(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid pagination parameters"))
	}

	query := h.DB.Model(&models.AuditLog{})
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if actor := c.Query("actor_id"); actor != "" {
		query = query.Where("actor_id = ?", actor)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not fetch audit logs"))
	}

	var logs []models.AuditLog
	if err := query.Order("created_at desc").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&logs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not fetch audit logs"))
	}

	meta := models.NewPaginationMeta(page, pageSize, total)
	return c.JSON(models.SuccessResponse("", logs, meta))
}

func (h *AdminHandler) sendDeactivationEmail(user *models.User) {
	if h.Mail == nil {
		return
	}
	name := user.FullName
	if name == "" {
		name = user.Username
	}
	html, err := mailer.AccountDeactivatedHTML(name, user.DeactivationReasons, user.ReactivateAt)
	if err != nil {
		h.Log.Warn("deactivation email render failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return
	}
	if err := h.Mail.Send(user.Email, "Your DaingGrader account has been deactivated", html); err != nil {
		h.Log.Warn("deactivation email failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}
}

func (h *AdminHandler) sendToggleEmail(m *moderated, disabled bool, reason string) {
	if h.Mail == nil || m.ownerID == 0 {
		return
	}
	var owner models.User
	if err := h.DB.First(&owner, m.ownerID).Error; err != nil {
		return
	}
	name := owner.FullName
	if name == "" {
		name = owner.Username
	}
	html, err := mailer.ItemToggleHTML(m.itemType, m.name, name, reason, disabled)
	if err != nil {
		h.Log.Warn("toggle email render failed", zap.String("item", m.itemType), zap.Error(err))
		return
	}
	subject := "Your " + m.itemType + " was re-enabled"
	if disabled {
		subject = "Your " + m.itemType + " was disabled"
	}
	if err := h.Mail.Send(owner.Email, subject, html); err != nil {
		h.Log.Warn("toggle email failed", zap.String("item", m.itemType), zap.Error(err))
	}
}

func (h *AdminHandler) record(c *fiber.Ctx, admin *models.User, action, entity, entityID, details string) {
	if h.Audit == nil {
		return
	}
	h.Audit.Record(c.Context(), audit.Entry{
		Actor:    admin.Username,
		ActorID:  admin.ID,
		Role:     admin.Role,
		Action:   action,
		Category: "Moderation",
		Entity:   entity,
		EntityID: entityID,
		Details:  details,
		IP:       c.IP(),
	})
}
