package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lms/backend/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateModerator makes sure the moderator group exists and that an active
// user with the given credentials belongs to it.
func CreateModerator(ctx context.Context, db *gorm.DB, email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var user models.User
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group := models.Group{Name: models.ModeratorGroup}
		if err := tx.Where(models.Group{Name: models.ModeratorGroup}).FirstOrCreate(&group).Error; err != nil {
			return fmt.Errorf("ensure group: %w", err)
		}

		if err := tx.Where(models.User{Email: email}).
			Attrs(models.User{PasswordHash: string(hash), IsActive: true}).
			FirstOrCreate(&user).Error; err != nil {
			return fmt.Errorf("ensure user: %w", err)
		}
		if err := tx.Model(&user).Updates(map[string]interface{}{
			"password_hash": string(hash),
			"is_active":     true,
		}).Error; err != nil {
			return fmt.Errorf("update user: %w", err)
		}

		return tx.Model(&user).Association("Groups").Append(&group)
	})
	if err != nil {
		return nil, err
	}

	if err := db.WithContext(ctx).Preload("Groups").First(&user, user.ID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

type demoUser struct {
	email string
	phone string
	city  string
}

var demoUsers = []demoUser{
	{email: "user1@example.com", phone: "1234567890", city: "City1"},
	{email: "user2@example.com", phone: "0987654321", city: "City2"},
}

const demoPassword = "password123"

// SeedPayments creates two demo users and a payment for each: course 1 paid
// in cash and lesson 1 paid by transfer. A payment is skipped when its
// course or lesson does not exist. It returns the number of payments added.
func SeedPayments(ctx context.Context, db *gorm.DB) (int, error) {
	db = db.WithContext(ctx)

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	users := make([]models.User, len(demoUsers))
	for i, d := range demoUsers {
		candidate := models.User{Email: d.email, PasswordHash: string(hash), Phone: d.phone, City: d.city, IsActive: true}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&candidate).Error; err != nil {
			return 0, fmt.Errorf("create %s: %w", d.email, err)
		}
		if err := db.Where("email = ?", d.email).First(&users[i]).Error; err != nil {
			return 0, fmt.Errorf("load %s: %w", d.email, err)
		}
	}

	var payments []models.Payment

	var course models.Course
	if err := db.First(&course, 1).Error; err == nil {
		payments = append(payments, models.Payment{
			UserID:        users[0].ID,
			PaymentDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			CourseID:      &course.ID,
			Amount:        decimal.RequireFromString("500.00"),
			PaymentMethod: models.PaymentMethodCash,
		})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	var lesson models.Lesson
	if err := db.First(&lesson, 1).Error; err == nil {
		payments = append(payments, models.Payment{
			UserID:        users[1].ID,
			PaymentDate:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			LessonID:      &lesson.ID,
			Amount:        decimal.RequireFromString("200.00"),
			PaymentMethod: models.PaymentMethodTransfer,
		})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	if len(payments) == 0 {
		return 0, nil
	}
	if err := db.Create(&payments).Error; err != nil {
		return 0, fmt.Errorf("create payments: %w", err)
	}
	return len(payments), nil
}
