package services

import (
	"context"
	"errors"

	"lms/backend/models"

	"gorm.io/gorm"
)

var (
	ErrCourseNotFound       = errors.New("course not found")
	ErrSubscriptionConflict = errors.New("subscription changed concurrently, retry")
)

const (
	SubscriptionAdded   = "subscription added"
	SubscriptionRemoved = "subscription removed"
)

// ToggleSubscription subscribes the user to the course, or unsubscribes if a
// subscription already exists. It returns the message describing the outcome.
func ToggleSubscription(ctx context.Context, db *gorm.DB, userID, courseID uint) (string, error) {
	var message string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.Select("id").First(&course, courseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return err
		}

		res := tx.Where("user_id = ? AND course_id = ?", userID, courseID).Delete(&models.Subscription{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			message = SubscriptionRemoved
			return nil
		}

		if err := tx.Create(&models.Subscription{UserID: userID, CourseID: courseID}).Error; err != nil {
			return err
		}
		message = SubscriptionAdded
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", ErrSubscriptionConflict
	}
	return message, err
}

// ListSubscriptions returns the user's subscriptions, oldest first.
func ListSubscriptions(ctx context.Context, db *gorm.DB, userID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	if err := db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// SubscriberEmails returns the addresses of active users subscribed to the course.
func SubscriberEmails(ctx context.Context, db *gorm.DB, courseID uint) ([]string, error) {
	var emails []string
	err := db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.user_id = users.id").
		Where("subscriptions.course_id = ? AND users.is_active = ?", courseID, true).
		Order("users.id").
		Pluck("users.email", &emails).Error
	return emails, err
}
