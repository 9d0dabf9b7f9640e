package controllers

import (
	"errors"
	"log"
	"strings"
	"time"

	"lms/backend/config"
	"lms/backend/models"
	"lms/backend/serializers"
	"lms/backend/services"
	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const msgNoActiveAccount = "No active account found with the given credentials"

type AuthController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Tokens *services.TokenStore
	Logger *log.Logger
}

func NewAuthController(db *gorm.DB, cfg *config.Config, tokens *services.TokenStore, logger *log.Logger) *AuthController {
	return &AuthController{DB: db, Cfg: cfg, Tokens: tokens, Logger: logger}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254" example:"user@example.com"`
	Password string `json:"password" validate:"required,min=8" example:"secret123"`
	Phone    string `json:"phone" validate:"max=35"`
	City     string `json:"city" validate:"max=50"`
	Avatar   string `json:"avatar"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "User registration data"
// @Success 201 {object} serializers.UserResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if errs := validate.Struct(&input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var count int64
	if err := ac.DB.Model(&models.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if count > 0 {
		return utils.ValidationError(c, fieldErrors("email", "user with this email already exists."))
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	user := models.User{
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Phone:        input.Phone,
		City:         input.City,
		Avatar:       input.Avatar,
		IsActive:     true,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.ValidationError(c, fieldErrors("email", "user with this email already exists."))
		}
		ac.Logger.Printf("[AUTH] create user: %v", err)
		return utils.InternalServerError(c, "Could not create user")
	}

	return utils.Created(c, serializers.User(&user))
}

// Login godoc
// @Summary Obtain an access/refresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} map[string]string
// @Failure 401 {object} utils.ErrorResponse
// @Router /login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input LoginRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := validate.Struct(&input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	// Find user
	var user models.User
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if err := ac.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if isNotFound(err) {
			return utils.Unauthorized(c, msgNoActiveAccount)
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	// Check password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Unauthorized(c, msgNoActiveAccount)
	}
	if !user.IsActive {
		return utils.Unauthorized(c, msgNoActiveAccount)
	}

	refresh, refreshClaims, err := utils.GenerateJWTToken(user.ID, utils.TokenTypeRefresh, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}
	access, _, err := utils.GenerateJWTToken(user.ID, utils.TokenTypeAccess, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}
	if err := ac.Tokens.SaveRefresh(c.UserContext(), refreshClaims.ID, user.ID, ac.Cfg.RefreshTokenTTL); err != nil {
		ac.Logger.Printf("[AUTH] save refresh token: %v", err)
		return utils.InternalServerError(c, "Could not store token")
	}

	now := time.Now()
	if err := ac.DB.Model(&user).Update("last_login", now).Error; err != nil {
		ac.Logger.Printf("[AUTH] update last_login for user %d: %v", user.ID, err)
	}

	return c.JSON(fiber.Map{
		"refresh": refresh,
		"access":  access,
	})
}

// Refresh godoc
// @Summary Exchange a refresh token for a new access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} map[string]string
// @Failure 401 {object} utils.ErrorResponse
// @Router /token/refresh [post]
func (ac *AuthController) Refresh(c *fiber.Ctx) error {
	var input RefreshRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := validate.Struct(&input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	claims, err := utils.ParseJWTToken(input.Refresh, utils.TokenTypeRefresh, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, err.Error())
	}

	userID, err := ac.Tokens.CheckRefresh(c.UserContext(), claims.ID)
	if err != nil {
		if errors.Is(err, services.ErrRefreshTokenRevoked) {
			return utils.Unauthorized(c, err.Error())
		}
		ac.Logger.Printf("[AUTH] check refresh token: %v", err)
		return utils.InternalServerError(c, "Could not check token")
	}
	if userID != claims.UserID {
		return utils.Unauthorized(c, utils.ErrInvalidToken.Error())
	}

	var user models.User
	if err := ac.DB.First(&user, userID).Error; err != nil || !user.IsActive {
		return utils.Unauthorized(c, msgNoActiveAccount)
	}

	access, _, err := utils.GenerateJWTToken(user.ID, utils.TokenTypeAccess, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}
	return c.JSON(fiber.Map{"access": access})
}
