package controllers

import (
	"errors"
	"log"

	"lms/backend/config"
	"lms/backend/middleware"
	"lms/backend/models"
	"lms/backend/permissions"
	"lms/backend/serializers"
	"lms/backend/services"
	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Payments *services.PaymentService
	Logger   *log.Logger
}

func NewPaymentController(db *gorm.DB, cfg *config.Config, payments *services.PaymentService, logger *log.Logger) *PaymentController {
	return &PaymentController{DB: db, Cfg: cfg, Payments: payments, Logger: logger}
}

type CreatePaymentRequest struct {
	CourseID      *uint                `json:"course_id"`
	LessonID      *uint                `json:"lesson_id"`
	Amount        decimal.Decimal      `json:"amount" swaggertype:"string" example:"500.00"`
	PaymentMethod models.PaymentMethod `json:"payment_method" enums:"cash,transfer"`
}

var paymentOrdering = map[string]string{
	"payment_date":  "payment_date ASC, id ASC",
	"-payment_date": "payment_date DESC, id DESC",
}

// ListPayments godoc
// @Summary List payments
// @Description Moderators see every payment, other users only their own
// @Tags payment
// @Produce json
// @Param course query int false "Course ID"
// @Param lesson query int false "Lesson ID"
// @Param payment_method query string false "cash or transfer"
// @Param ordering query string false "payment_date or -payment_date"
// @Success 200 {array} serializers.PaymentResponse
// @Security ApiKeyAuth
// @Router /payment [get]
func (pc *PaymentController) ListPayments(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	query := pc.DB.Model(&models.Payment{})
	if !permissions.IsModerator(user) {
		query = query.Where("user_id = ?", user.ID)
	}
	if courseID := c.QueryInt("course", 0); courseID > 0 {
		query = query.Where("course_id = ?", courseID)
	}
	if lessonID := c.QueryInt("lesson", 0); lessonID > 0 {
		query = query.Where("lesson_id = ?", lessonID)
	}
	if method := c.Query("payment_method"); method != "" {
		query = query.Where("payment_method = ?", method)
	}

	order, ok := paymentOrdering[c.Query("ordering")]
	if !ok {
		order = "id ASC"
	}

	var payments []models.Payment
	if err := query.Order(order).Find(&payments).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(serializers.Payments(payments))
}

// CreatePayment godoc
// @Summary Record a payment and open a checkout session
// @Tags payment
// @Accept json
// @Produce json
// @Param payment body CreatePaymentRequest true "Payment data"
// @Success 201 {object} serializers.PaymentResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /payment [post]
func (pc *PaymentController) CreatePayment(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input CreatePaymentRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	payment, err := pc.Payments.CreatePayment(c.UserContext(), user, services.PaymentInput{
		CourseID:      input.CourseID,
		LessonID:      input.LessonID,
		Amount:        input.Amount,
		PaymentMethod: input.PaymentMethod,
	})
	switch {
	case errors.Is(err, services.ErrInvalidAmount):
		return utils.ValidationError(c, fieldErrors("amount", err.Error()))
	case errors.Is(err, services.ErrInvalidPaymentMethod):
		return utils.ValidationError(c, fieldErrors("payment_method", err.Error()))
	case errors.Is(err, services.ErrPaymentTarget):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrRateUnavailable), errors.Is(err, services.ErrCheckoutFailed):
		return utils.Error(c, fiber.StatusBadGateway, err.Error())
	case err != nil:
		pc.Logger.Printf("[PAYMENT] create payment for user %d: %v", user.ID, err)
		return utils.InternalServerError(c, "Could not create payment")
	}

	return utils.Created(c, serializers.Payment(payment))
}
