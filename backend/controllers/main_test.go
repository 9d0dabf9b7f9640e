package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"lms/backend/config"
	"lms/backend/database"
	"lms/backend/jobs"
	"lms/backend/mail"
	"lms/backend/models"
	"lms/backend/routes"
	"lms/backend/services"
	"lms/backend/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

// providers stands in for currencyapi.com and Stripe.
type providers struct {
	srv           *httptest.Server
	rateStatus    atomic.Int32
	sessionStatus atomic.Int32
	expired       atomic.Int32
}

func newProviders(t *testing.T) *providers {
	p := &providers{}
	p.rateStatus.Store(http.StatusOK)
	p.sessionStatus.Store(http.StatusOK)
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v3/latest":
			if status := int(p.rateStatus.Load()); status != http.StatusOK {
				w.WriteHeader(status)
				io.WriteString(w, `{"message":"unavailable"}`)
				return
			}
			io.WriteString(w, `{"data":{"RUB":{"code":"RUB","value":100}}}`)
		case "/v1/products":
			io.WriteString(w, `{"id":"prod_1"}`)
		case "/v1/prices":
			io.WriteString(w, `{"id":"price_1"}`)
		case "/v1/checkout/sessions":
			if status := int(p.sessionStatus.Load()); status != http.StatusOK {
				w.WriteHeader(status)
				io.WriteString(w, `{"error":{"message":"card declined"}}`)
				return
			}
			io.WriteString(w, `{"id":"cs_test_1","url":"https://checkout.stripe.com/pay/cs_test_1"}`)
		case "/v1/checkout/sessions/cs_test_1/expire":
			p.expired.Add(1)
			io.WriteString(w, `{"id":"cs_test_1"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(p.srv.Close)
	return p
}

type testEnv struct {
	app       *fiber.App
	db        *gorm.DB
	cfg       *config.Config
	redis     *miniredis.Miniredis
	mailer    *recordingMailer
	queue     *jobs.Queue
	providers *providers
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:        "testsecret",
		AccessTokenTTL:   5 * time.Minute,
		RefreshTokenTTL:  24 * time.Hour,
		DomesticCurrency: "RUB",
	}
	db := database.NewTestDB(t)
	logger := log.New(io.Discard, "", 0)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	mailer := &recordingMailer{}
	queue := jobs.NewQueue(1, 10, logger)
	queue.Start(context.Background())
	t.Cleanup(queue.Stop)

	p := newProviders(t)
	rates := services.NewRatesService(p.srv.URL, "key", "RUB", time.Second, logger)
	checkout := services.NewStripeCheckout(p.srv.URL, "sk_test", "http://localhost:8080/", time.Second)

	app := routes.NewApp(routes.Deps{
		DB:       db,
		Cfg:      cfg,
		Logger:   logger,
		Tokens:   services.NewTokenStore(rdb),
		Payments: services.NewPaymentService(db, rates, checkout, logger),
		Queue:    queue,
		Mailer:   mailer,
	})

	return &testEnv{app: app, db: db, cfg: cfg, redis: mr, mailer: mailer, queue: queue, providers: p}
}

func (e *testEnv) createUser(t *testing.T, email string, moderator bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{Email: email, PasswordHash: string(hash), IsActive: true}
	if moderator {
		var group models.Group
		require.NoError(t, e.db.Where(models.Group{Name: models.ModeratorGroup}).FirstOrCreate(&group).Error)
		user.Groups = []models.Group{group}
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, _, err := utils.GenerateJWTToken(user.ID, utils.TokenTypeAccess, e.cfg)
	require.NoError(t, err)
	return token
}

// do sends a JSON request and returns the status code and raw body.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode(t *testing.T, raw []byte, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v), string(raw))
}

func detail(t *testing.T, raw []byte) string {
	t.Helper()
	var body utils.ErrorResponse
	decode(t, raw, &body)
	return body.Detail
}
