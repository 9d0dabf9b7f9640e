package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"lms/backend/models"
	"lms/backend/serializers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countPayments(env *testEnv) int64 {
	var n int64
	env.db.Model(&models.Payment{}).Count(&n)
	return n
}

func TestCreatePayment(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "buyer@lms.test", false)
	course := models.Course{Title: "Go"}
	require.NoError(t, env.db.Create(&course).Error)

	status, raw := env.do(t, http.MethodPost, "/api/payment/", env.token(t, user), map[string]interface{}{
		"course_id":      course.ID,
		"amount":         "1000.00",
		"payment_method": "transfer",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))

	var payment serializers.PaymentResponse
	decode(t, raw, &payment)
	assert.Equal(t, "cs_test_1", payment.SessionID)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_test_1", payment.PaymentLink)
	assert.Equal(t, "1000.00", payment.Amount)
	assert.Equal(t, user.ID, payment.User)
	assert.Equal(t, int64(1), countPayments(env))
}

func TestCreatePaymentProviderFailure(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "buyer@lms.test", false)
	env.providers.sessionStatus.Store(http.StatusPaymentRequired)

	status, raw := env.do(t, http.MethodPost, "/api/payment/", env.token(t, user), map[string]interface{}{
		"amount":         500,
		"payment_method": "cash",
	})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, detail(t, raw), "card declined")
	assert.Zero(t, countPayments(env))
}

func TestCreatePaymentRateFailure(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "buyer@lms.test", false)
	env.providers.rateStatus.Store(http.StatusInternalServerError)

	status, _ := env.do(t, http.MethodPost, "/api/payment/", env.token(t, user), map[string]interface{}{
		"amount":         500,
		"payment_method": "cash",
	})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Zero(t, countPayments(env))
}

func TestCreatePaymentValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, env.createUser(t, "buyer@lms.test", false))

	status, raw := env.do(t, http.MethodPost, "/api/payment/", token, map[string]interface{}{
		"amount":         500,
		"payment_method": "card",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(raw), `"payment_method"`)

	status, raw = env.do(t, http.MethodPost, "/api/payment/", token, map[string]interface{}{
		"amount":         0,
		"payment_method": "cash",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(raw), `"amount"`)

	for _, amount := range []string{"0.004", "123456789012.00"} {
		status, raw = env.do(t, http.MethodPost, "/api/payment/", token, map[string]interface{}{
			"amount":         amount,
			"payment_method": "cash",
		})
		assert.Equal(t, http.StatusBadRequest, status, amount)
		assert.Contains(t, string(raw), `"amount"`, amount)
	}

	var count int64
	require.NoError(t, env.db.Model(&models.Payment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListPayments(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "buyer@lms.test", false)
	other := env.createUser(t, "other@lms.test", false)
	moderator := env.createUser(t, "moderator@lms.test", true)
	course := models.Course{Title: "Go"}
	require.NoError(t, env.db.Create(&course).Error)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	payments := []models.Payment{
		{UserID: user.ID, PaymentDate: base, CourseID: &course.ID, Amount: decimal.NewFromInt(500), PaymentMethod: models.PaymentMethodCash},
		{UserID: user.ID, PaymentDate: base.Add(48 * time.Hour), Amount: decimal.NewFromInt(200), PaymentMethod: models.PaymentMethodTransfer},
		{UserID: other.ID, PaymentDate: base.Add(24 * time.Hour), Amount: decimal.NewFromInt(300), PaymentMethod: models.PaymentMethodCash},
	}
	require.NoError(t, env.db.Create(&payments).Error)

	var list []serializers.PaymentResponse

	status, raw := env.do(t, http.MethodGet, "/api/payment/?ordering=-payment_date", env.token(t, user), nil)
	require.Equal(t, http.StatusOK, status)
	decode(t, raw, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "200.00", list[0].Amount)
	assert.Equal(t, "500.00", list[1].Amount)

	status, raw = env.do(t, http.MethodGet, "/api/payment/?payment_method=cash", env.token(t, moderator), nil)
	require.Equal(t, http.StatusOK, status)
	list = nil
	decode(t, raw, &list)
	assert.Len(t, list, 2)

	status, raw = env.do(t, http.MethodGet, "/api/payment/?ordering=payment_date", env.token(t, moderator), nil)
	require.Equal(t, http.StatusOK, status)
	list = nil
	decode(t, raw, &list)
	require.Len(t, list, 3)
	assert.Equal(t, "500.00", list[0].Amount)
	assert.Equal(t, "300.00", list[1].Amount)

	status, raw = env.do(t, http.MethodGet, "/api/payment/?course=1", env.token(t, moderator), nil)
	require.Equal(t, http.StatusOK, status)
	list = nil
	decode(t, raw, &list)
	require.Len(t, list, 1)
	assert.Equal(t, course.ID, *list[0].Course)
}
