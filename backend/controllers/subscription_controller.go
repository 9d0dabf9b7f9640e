package controllers

import (
	"errors"
	"log"

	"lms/backend/config"
	"lms/backend/middleware"
	"lms/backend/serializers"
	"lms/backend/services"
	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SubscriptionController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Logger *log.Logger
}

func NewSubscriptionController(db *gorm.DB, cfg *config.Config, logger *log.Logger) *SubscriptionController {
	return &SubscriptionController{DB: db, Cfg: cfg, Logger: logger}
}

type ToggleSubscriptionRequest struct {
	CourseID uint `json:"course_id" validate:"required"`
}

// ListSubscriptions godoc
// @Summary List own subscriptions
// @Tags subscription
// @Produce json
// @Success 200 {array} serializers.SubscriptionResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /subscription [get]
func (sc *SubscriptionController) ListSubscriptions(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	subs, err := services.ListSubscriptions(c.UserContext(), sc.DB, user.ID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(serializers.Subscriptions(subs))
}

// ToggleSubscription godoc
// @Summary Subscribe to a course, or unsubscribe if already subscribed
// @Tags subscription
// @Accept json
// @Produce json
// @Param request body ToggleSubscriptionRequest true "Course to toggle"
// @Success 200 {object} map[string]string
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /subscription [post]
func (sc *SubscriptionController) ToggleSubscription(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input ToggleSubscriptionRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := validate.Struct(&input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	message, err := services.ToggleSubscription(c.UserContext(), sc.DB, user.ID, input.CourseID)
	switch {
	case errors.Is(err, services.ErrCourseNotFound):
		return utils.NotFound(c)
	case errors.Is(err, services.ErrSubscriptionConflict):
		return utils.Error(c, fiber.StatusConflict, err.Error())
	case err != nil:
		sc.Logger.Printf("[SUBSCRIPTION] toggle user %d course %d: %v", user.ID, input.CourseID, err)
		return utils.InternalServerError(c, "Could not update subscription")
	}

	return c.JSON(fiber.Map{"message": message})
}
