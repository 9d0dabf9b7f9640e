package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "secret"

type Config struct {
	ServerPort string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CurrencyAPIURL   string
	CurrencyAPIKey   string
	DomesticCurrency string

	StripeAPIURL      string
	StripeAPIKey      string
	PaymentSuccessURL string

	SendGridAPIKey string
	SendGridHost   string
	EmailFrom      string

	InactivityPeriod   time.Duration
	DeactivateSchedule string
	WorkerCount        int
	QueueSize          int

	HTTPClientTimeout time.Duration
}

var defaults = map[string]interface{}{
	"SERVER_PORT": "8080",

	"DB_DRIVER":   "postgres",
	"DB_HOST":     "localhost",
	"DB_PORT":     "5432",
	"DB_USER":     "postgres",
	"DB_PASSWORD": "postgres",
	"DB_NAME":     "learning_platform",

	"JWT_SECRET":        defaultJWTSecret,
	"ACCESS_TOKEN_TTL":  "5m",
	"REFRESH_TOKEN_TTL": "24h",

	"REDIS_ADDR":     "localhost:6379",
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,

	"CURRENCY_API_URL":  "https://api.currencyapi.com",
	"CURRENCY_API_KEY":  "",
	"DOMESTIC_CURRENCY": "RUB",

	"STRIPE_API_URL":      "https://api.stripe.com",
	"STRIPE_API_KEY":      "",
	"PAYMENT_SUCCESS_URL": "http://localhost:8080/",

	"SENDGRID_API_KEY": "",
	"SENDGRID_HOST":    "https://api.sendgrid.com",
	"EMAIL_FROM":       "noreply@example.com",

	"INACTIVITY_PERIOD":   "720h",
	"DEACTIVATE_SCHEDULE": "@daily",
	"WORKER_COUNT":        2,
	"QUEUE_SIZE":          100,

	"HTTP_CLIENT_TIMEOUT": "10s",
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := &Config{
		ServerPort: v.GetString("SERVER_PORT"),

		DBDriver:   v.GetString("DB_DRIVER"),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),

		JWTSecret:       v.GetString("JWT_SECRET"),
		AccessTokenTTL:  v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL: v.GetDuration("REFRESH_TOKEN_TTL"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		CurrencyAPIURL:   v.GetString("CURRENCY_API_URL"),
		CurrencyAPIKey:   v.GetString("CURRENCY_API_KEY"),
		DomesticCurrency: v.GetString("DOMESTIC_CURRENCY"),

		StripeAPIURL:      v.GetString("STRIPE_API_URL"),
		StripeAPIKey:      v.GetString("STRIPE_API_KEY"),
		PaymentSuccessURL: v.GetString("PAYMENT_SUCCESS_URL"),

		SendGridAPIKey: v.GetString("SENDGRID_API_KEY"),
		SendGridHost:   v.GetString("SENDGRID_HOST"),
		EmailFrom:      v.GetString("EMAIL_FROM"),

		InactivityPeriod:   v.GetDuration("INACTIVITY_PERIOD"),
		DeactivateSchedule: v.GetString("DEACTIVATE_SCHEDULE"),
		WorkerCount:        v.GetInt("WORKER_COUNT"),
		QueueSize:          v.GetInt("QUEUE_SIZE"),

		HTTPClientTimeout: v.GetDuration("HTTP_CLIENT_TIMEOUT"),
	}

	if cfg.JWTSecret == defaultJWTSecret {
		log.Println("Warning: Using default JWT_SECRET. Update it in your environment.")
	}

	return cfg, nil
}
