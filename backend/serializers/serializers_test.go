package serializers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"lms/backend/database"
	"lms/backend/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoursesCountsLessonsAndSubscription(t *testing.T) {
	db := database.NewTestDB(t)
	user := &models.User{Email: "s@lms.test", PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Create(user).Error)

	first := &models.Course{Title: "first", OwnerID: &user.ID}
	second := &models.Course{Title: "second"}
	require.NoError(t, db.Create(first).Error)
	require.NoError(t, db.Create(second).Error)
	require.NoError(t, db.Create(&models.Lesson{Title: "l1", CourseID: first.ID}).Error)
	require.NoError(t, db.Create(&models.Lesson{Title: "l2", CourseID: first.ID}).Error)
	require.NoError(t, db.Create(&models.Subscription{UserID: user.ID, CourseID: second.ID}).Error)

	out, err := Courses(context.Background(), db, user.ID, []models.Course{*first, *second})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, 2, out[0].LessonsCount)
	assert.Len(t, out[0].Lessons, 2)
	assert.False(t, out[0].IsSubscribed)
	assert.Equal(t, user.ID, *out[0].Owner)

	assert.Equal(t, 0, out[1].LessonsCount)
	assert.NotNil(t, out[1].Lessons)
	assert.True(t, out[1].IsSubscribed)
	assert.Nil(t, out[1].Owner)
}

func TestPaymentAmountIsFixedPoint(t *testing.T) {
	p := &models.Payment{
		ID:            3,
		UserID:        1,
		PaymentDate:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Amount:        decimal.NewFromInt(500),
		PaymentMethod: models.PaymentMethodCash,
	}
	raw, err := json.Marshal(Payment(p))
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "500.00", body["amount"])
	assert.Equal(t, "cash", body["payment_method"])
	assert.Nil(t, body["course"])
	assert.Nil(t, body["lesson"])
}

func TestUserHidesPassword(t *testing.T) {
	u := &models.User{ID: 1, Email: "m@lms.test", PasswordHash: "hash", Groups: []models.Group{{Name: models.ModeratorGroup}}}
	raw, err := json.Marshal(User(u))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash")
	assert.Contains(t, string(raw), `"groups":["Moderator"]`)
}
