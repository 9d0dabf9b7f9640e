package middleware

import (
	"errors"

	"lms/backend/config"
	"lms/backend/models"
	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const userKey = "user"

// AuthMiddleware resolves the access token to an active user and stores it in Locals.
func AuthMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := utils.ExtractBearerToken(c.Get(fiber.HeaderAuthorization))
		if tokenString == "" {
			return utils.Unauthorized(c, utils.MsgNotAuthenticated)
		}

		claims, err := utils.ParseJWTToken(tokenString, utils.TokenTypeAccess, cfg)
		if err != nil {
			return utils.Unauthorized(c, err.Error())
		}

		var user models.User
		if err := db.Preload("Groups").First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.Unauthorized(c, "User not found")
			}
			return utils.InternalServerError(c, "Could not query database")
		}
		if !user.IsActive {
			return utils.Unauthorized(c, "User is inactive")
		}

		c.Locals(userKey, &user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}
