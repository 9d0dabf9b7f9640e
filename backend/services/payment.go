package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"lms/backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidAmount        = errors.New("amount must be greater than zero with at most 2 decimal places and below 100000000")
	ErrInvalidPaymentMethod = errors.New("payment_method must be cash or transfer")
	ErrPaymentTarget        = errors.New("referenced course or lesson does not exist")
)

// CurrencyConverter turns a domestic amount into whole US dollars.
type CurrencyConverter interface {
	ConvertToUSD(ctx context.Context, amount decimal.Decimal) (int64, error)
}

// CheckoutProvider creates hosted checkout sessions.
type CheckoutProvider interface {
	CreatePrice(ctx context.Context, name string, usd int64) (string, error)
	CreateSession(ctx context.Context, priceID string) (*CheckoutSession, error)
	ExpireSession(ctx context.Context, sessionID string) error
}

// maxAmount is the first value that no longer fits the decimal(10,2) column.
var maxAmount = decimal.New(1, 8)

type PaymentInput struct {
	CourseID      *uint
	LessonID      *uint
	Amount        decimal.Decimal
	PaymentMethod models.PaymentMethod
}

type PaymentService struct {
	db       *gorm.DB
	rates    CurrencyConverter
	checkout CheckoutProvider
	logger   *log.Logger
	now      func() time.Time
}

func NewPaymentService(db *gorm.DB, rates CurrencyConverter, checkout CheckoutProvider, logger *log.Logger) *PaymentService {
	return &PaymentService{
		db:       db,
		rates:    rates,
		checkout: checkout,
		logger:   logger,
		now:      time.Now,
	}
}

// CreatePayment records a payment and opens a checkout session for it.
// When any external step fails the recorded payment is removed again, and a
// session opened before the failure is expired.
func (s *PaymentService) CreatePayment(ctx context.Context, user *models.User, input PaymentInput) (*models.Payment, error) {
	if !validAmount(input.Amount) {
		return nil, ErrInvalidAmount
	}
	if !input.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	name, err := s.productName(ctx, input)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		UserID:        user.ID,
		PaymentDate:   s.now(),
		CourseID:      input.CourseID,
		LessonID:      input.LessonID,
		Amount:        input.Amount,
		PaymentMethod: input.PaymentMethod,
	}
	if err := s.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	if name == "" {
		name = fmt.Sprintf("Payment #%d", payment.ID)
	}

	usd, err := s.rates.ConvertToUSD(ctx, payment.Amount)
	if err != nil {
		return nil, s.compensate(payment, "", err)
	}

	priceID, err := s.checkout.CreatePrice(ctx, name, usd)
	if err != nil {
		return nil, s.compensate(payment, "", err)
	}

	session, err := s.checkout.CreateSession(ctx, priceID)
	if err != nil {
		return nil, s.compensate(payment, "", err)
	}

	payment.SessionID = session.ID
	payment.PaymentLink = session.URL
	if err := s.db.WithContext(ctx).Model(payment).Updates(map[string]interface{}{
		"session_id":   session.ID,
		"payment_link": session.URL,
	}).Error; err != nil {
		return nil, s.compensate(payment, session.ID, fmt.Errorf("save payment session: %w", err))
	}

	s.logger.Printf("[PAYMENT] payment %d for user %d: %s USD %d session %s",
		payment.ID, user.ID, payment.Amount.StringFixed(2), usd, session.ID)
	return payment, nil
}

func validAmount(amount decimal.Decimal) bool {
	if !amount.IsPositive() || amount.GreaterThanOrEqual(maxAmount) {
		return false
	}
	// trailing zeros beyond cents are fine, "10.500" is still 10.50
	return amount.Equal(amount.Round(2))
}

func (s *PaymentService) productName(ctx context.Context, input PaymentInput) (string, error) {
	db := s.db.WithContext(ctx)
	if input.LessonID != nil {
		var lesson models.Lesson
		if err := db.Select("id", "title").First(&lesson, *input.LessonID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrPaymentTarget
			}
			return "", err
		}
		if input.CourseID == nil {
			return lesson.Title, nil
		}
	}
	if input.CourseID != nil {
		var course models.Course
		if err := db.Select("id", "title").First(&course, *input.CourseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrPaymentTarget
			}
			return "", err
		}
		return course.Title, nil
	}
	return "", nil
}

// compensate undoes the steps already taken and returns cause.
// It runs on a fresh context so a cancelled request still cleans up.
func (s *PaymentService) compensate(payment *models.Payment, sessionID string, cause error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if sessionID != "" {
		if err := s.checkout.ExpireSession(ctx, sessionID); err != nil {
			s.logger.Printf("[PAYMENT] could not expire session %s: %v", sessionID, err)
		}
	}
	if err := s.db.WithContext(ctx).Delete(&models.Payment{}, payment.ID).Error; err != nil {
		s.logger.Printf("[PAYMENT] could not remove payment %d: %v", payment.ID, err)
	}

	s.logger.Printf("[PAYMENT] payment %d rolled back: %v", payment.ID, cause)
	return cause
}
