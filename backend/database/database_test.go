package database

import (
	"testing"

	"lms/backend/config"
	"lms/backend/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectorForUnknownDriver(t *testing.T) {
	_, err := dialectorFor(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestDialectorForKnownDrivers(t *testing.T) {
	for _, driver := range []string{"postgres", "mysql", "sqlite"} {
		d, err := dialectorFor(&config.Config{DBDriver: driver, DBName: "x"})
		require.NoError(t, err, driver)
		assert.NotNil(t, d, driver)
	}
}

func TestDeleteCourseCascades(t *testing.T) {
	db := NewTestDB(t)

	owner := models.User{Email: "owner@test.com", PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Create(&owner).Error)

	course := models.Course{Title: "Go", OwnerID: &owner.ID}
	require.NoError(t, db.Create(&course).Error)
	lesson := models.Lesson{Title: "Intro", CourseID: course.ID, OwnerID: &owner.ID, VideoLink: "youtube.com/watch"}
	require.NoError(t, db.Create(&lesson).Error)
	require.NoError(t, db.Create(&models.Subscription{UserID: owner.ID, CourseID: course.ID}).Error)

	coursePayment := models.Payment{
		UserID: owner.ID, CourseID: &course.ID, Amount: decimal.NewFromInt(500),
		PaymentMethod: models.PaymentMethodCash,
	}
	lessonPayment := models.Payment{
		UserID: owner.ID, LessonID: &lesson.ID, Amount: decimal.NewFromInt(200),
		PaymentMethod: models.PaymentMethodTransfer,
	}
	require.NoError(t, db.Create(&coursePayment).Error)
	require.NoError(t, db.Create(&lessonPayment).Error)

	require.NoError(t, db.Delete(&course).Error)

	var count int64
	db.Model(&models.Course{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Lesson{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Subscription{}).Count(&count)
	assert.Zero(t, count)

	var payments []models.Payment
	require.NoError(t, db.Order("id").Find(&payments).Error)
	require.Len(t, payments, 2)
	assert.Nil(t, payments[0].CourseID)
	assert.Nil(t, payments[1].LessonID)
}

func TestDeleteLessonDetachesPayments(t *testing.T) {
	db := NewTestDB(t)

	user := models.User{Email: "u@test.com", PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	course := models.Course{Title: "Go"}
	require.NoError(t, db.Create(&course).Error)
	lesson := models.Lesson{Title: "Intro", CourseID: course.ID}
	require.NoError(t, db.Create(&lesson).Error)
	payment := models.Payment{
		UserID: user.ID, LessonID: &lesson.ID, Amount: decimal.NewFromInt(200),
		PaymentMethod: models.PaymentMethodTransfer,
	}
	require.NoError(t, db.Create(&payment).Error)

	require.NoError(t, db.Delete(&lesson).Error)

	var reloaded models.Payment
	require.NoError(t, db.First(&reloaded, payment.ID).Error)
	assert.Nil(t, reloaded.LessonID)
	assert.True(t, decimal.NewFromInt(200).Equal(reloaded.Amount))
}
