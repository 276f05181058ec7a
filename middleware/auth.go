package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nxough-jxhn/daingGraderWeb/internal/moderation"
	"github.com/nxough-jxhn/daingGraderWeb/models"
	"github.com/nxough-jxhn/daingGraderWeb/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Auth verifies the bearer token, loads the account, and runs the
// check-on-access reactivation: an inactive user whose timed ban has lapsed
// is flipped back to active right here. Still-inactive accounts get 403.
func Auth(db *gorm.DB, secret string, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("No token provided"))
		}

		var tokenString string
		fmt.Sscanf(authHeader, "Bearer %s", &tokenString)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Token format is invalid"))
		}

		userID, _, err := utils.ParseToken(tokenString, secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Token is invalid"))
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not found"))
		}

		if moderation.MaybeReactivate(&user, time.Now().UTC()) {
			if err := db.Save(&user).Error; err != nil {
				log.Warn("auto-reactivation save failed", zap.Uint("user_id", user.ID), zap.Error(err))
			} else {
				log.Info("account auto-reactivated", zap.Uint("user_id", user.ID))
			}
		}

		if !user.IsActive() {
			return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("Account is deactivated"))
		}

		c.Locals("user", &user)
		c.Locals("user_id", user.ID)
		c.Locals("role", user.Role)

		return c.Next()
	}
}

// RequireRole guards a route group behind the closed role set. It must run
// after Auth.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(models.Role)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Not authenticated"))
		}
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("Insufficient permissions"))
	}
}

// CurrentUser pulls the authenticated account loaded by Auth.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
