package controllers

import (
	"log"

	"lms/backend/config"
	"lms/backend/middleware"
	"lms/backend/models"
	"lms/backend/serializers"
	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Logger *log.Logger
}

func NewUserController(db *gorm.DB, cfg *config.Config, logger *log.Logger) *UserController {
	return &UserController{DB: db, Cfg: cfg, Logger: logger}
}

type UpdateUserRequest struct {
	Phone    *string `json:"phone" example:"+79990000000" maxLength:"35"`
	City     *string `json:"city" example:"Moscow" maxLength:"50"`
	Avatar   *string `json:"avatar"`
	Password *string `json:"password" minLength:"8"`
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} serializers.UserResponse
// @Security ApiKeyAuth
// @Router /users [get]
func (uc *UserController) ListUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := uc.DB.Preload("Groups").Order("id").Find(&users).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(serializers.Users(users))
}

// GetUser godoc
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} serializers.UserResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/{id} [get]
func (uc *UserController) GetUser(c *fiber.Ctx) error {
	user, err := uc.find(c)
	if err != nil {
		return err
	}
	return c.JSON(serializers.User(user))
}

// UpdateUser godoc
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param input body UpdateUserRequest true "Profile update data"
// @Success 200 {object} serializers.UserResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/{id} [patch]
func (uc *UserController) UpdateUser(c *fiber.Ctx) error {
	user, err := uc.find(c)
	if err != nil {
		return err
	}
	if user.ID != middleware.CurrentUser(c).ID {
		return utils.Forbidden(c)
	}

	var input UpdateUserRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	updates := map[string]interface{}{}
	errs := map[string][]string{}
	if input.Phone != nil {
		if len(*input.Phone) > 35 {
			errs["phone"] = append(errs["phone"], "Ensure this field has no more than 35 characters.")
		}
		updates["phone"] = *input.Phone
	}
	if input.City != nil {
		if len(*input.City) > 50 {
			errs["city"] = append(errs["city"], "Ensure this field has no more than 50 characters.")
		}
		updates["city"] = *input.City
	}
	if input.Avatar != nil {
		updates["avatar"] = *input.Avatar
	}
	if input.Password != nil {
		if len(*input.Password) < 8 {
			errs["password"] = append(errs["password"], "Ensure this field has at least 8 characters.")
		} else {
			hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
			if err != nil {
				return utils.InternalServerError(c, "Could not hash password")
			}
			updates["password_hash"] = string(hashed)
		}
	}
	if len(errs) > 0 {
		return utils.ValidationError(c, errs)
	}

	if len(updates) > 0 {
		if err := uc.DB.Model(user).Updates(updates).Error; err != nil {
			uc.Logger.Printf("[USERS] update user %d: %v", user.ID, err)
			return utils.InternalServerError(c, "Could not update user")
		}
	}
	return c.JSON(serializers.User(user))
}

// DeleteUser godoc
// @Summary Delete own account
// @Tags users
// @Param id path int true "User ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/{id} [delete]
func (uc *UserController) DeleteUser(c *fiber.Ctx) error {
	user, err := uc.find(c)
	if err != nil {
		return err
	}
	if user.ID != middleware.CurrentUser(c).ID {
		return utils.Forbidden(c)
	}

	if err := uc.DB.Select("Groups").Delete(user).Error; err != nil {
		uc.Logger.Printf("[USERS] delete user %d: %v", user.ID, err)
		return utils.InternalServerError(c, "Could not delete user")
	}
	return utils.NoContent(c)
}

func (uc *UserController) find(c *fiber.Ctx) (*models.User, error) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, utils.MsgNotFound)
	}
	var user models.User
	if err := uc.DB.Preload("Groups").First(&user, id).Error; err != nil {
		if isNotFound(err) {
			return nil, fiber.NewError(fiber.StatusNotFound, utils.MsgNotFound)
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}
	return &user, nil
}
