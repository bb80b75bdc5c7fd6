package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// EmailConfig holds the SES credentials for the outbound notifier.
type EmailConfig struct {
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	SenderEmail        string
}

// Config is the full application configuration, read from the environment.
// godotenv loads a .env file in main before this runs.
type Config struct {
	Port        string
	DSN         string
	JWTSecret   string
	RedisAddr   string
	FrontendURL string
	Email       EmailConfig

	// CheckoutTimeout bounds a whole checkout transaction, including lock
	// waits on product rows.
	CheckoutTimeout time.Duration

	// CheckoutRateLimit is the max POST /orders per user per minute.
	CheckoutRateLimit int

	// StaleOrderAge is how long an order may sit in 'pending' before the
	// background sweeper cancels it.
	StaleOrderAge time.Duration
}

// Load reads configuration from the environment. DB_DSN and JWT_SECRET have
// no fallback: refusing to boot beats running with a guessable secret.
func Load() (*Config, error) {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		return nil, errors.New("DB_DSN environment variable is not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET environment variable is not set")
	}

	return &Config{
		Port:        getEnvOrDefault("PORT", "8080"),
		DSN:         dsn,
		JWTSecret:   secret,
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		FrontendURL: getEnvOrDefault("FRONTEND_URL", "*"),
		Email: EmailConfig{
			AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			AWSRegion:          getEnvOrDefault("AWS_REGION", "us-east-1"),
			SenderEmail:        os.Getenv("AWS_SENDER_ADDRESS"),
		},
		CheckoutTimeout:   getDurationOrDefault("CHECKOUT_TIMEOUT", 10*time.Second),
		CheckoutRateLimit: getIntOrDefault("CHECKOUT_RATE_LIMIT", 30),
		StaleOrderAge:     getDurationOrDefault("STALE_ORDER_AGE", 24*time.Hour),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
