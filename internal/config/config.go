package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/crediario/crediario-backend/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Auth0
	Auth0Domain   string
	Auth0Audience string
	Auth0ClientID string

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// Redis (optional, dashboard caching)
	RedisAddr     string
	RedisPassword string

	// Tracing (optional)
	OTLPEndpoint string

	// Overdue sweep
	SweepSchedule string

	// Default and late fee policies
	DefaultPolicy domain.DefaultPolicy
	LateFeePolicy domain.LateFeePolicy

	// SMTP for overdue notices
	SMTP SMTPConfig

	// S3 Storage for contract documents
	S3 S3Config
}

// SMTPConfig holds the outgoing mail configuration. Empty host disables
// email notifications.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		Auth0Domain:   getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience: getEnv("AUTH0_AUDIENCE", ""),
		Auth0ClientID: getEnv("AUTH0_CLIENT_ID", ""),
		Port:          getEnv("PORT", "8080"),
		CORSOrigins:   strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:           getEnv("ENV", "development"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		OTLPEndpoint:  getEnv("OTLP_ENDPOINT", ""),
		SweepSchedule: getEnv("OVERDUE_SWEEP_SCHEDULE", "0 6 * * *"),
		DefaultPolicy: domain.DefaultPolicy{
			MaxOverdueInstallments: int32(getEnvInt("DEFAULT_MAX_OVERDUE_INSTALLMENTS", 3)),
			MaxOverdueFraction:     getEnvDecimal("DEFAULT_MAX_OVERDUE_FRACTION", "0.25"),
			ReinstateCured:         getEnvBool("DEFAULT_REINSTATE_CURED", true),
		},
		LateFeePolicy: domain.LateFeePolicy{
			DailyRatePercent: getEnvDecimal("LATE_FEE_DAILY_PERCENT", "0.1"),
			CapPercent:       getEnvDecimal("LATE_FEE_CAP_PERCENT", "10"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", "crediario-documents"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth0Domain == "" {
		return fmt.Errorf("AUTH0_DOMAIN is required")
	}
	if c.Auth0Audience == "" {
		return fmt.Errorf("AUTH0_AUDIENCE is required")
	}
	if c.DefaultPolicy.MaxOverdueInstallments < 0 {
		return fmt.Errorf("DEFAULT_MAX_OVERDUE_INSTALLMENTS must not be negative")
	}
	if c.DefaultPolicy.MaxOverdueFraction.IsNegative() {
		return fmt.Errorf("DEFAULT_MAX_OVERDUE_FRACTION must not be negative")
	}
	if c.LateFeePolicy.DailyRatePercent.IsNegative() {
		return fmt.Errorf("LATE_FEE_DAILY_PERCENT must not be negative")
	}
	if c.LateFeePolicy.CapPercent.IsNegative() {
		return fmt.Errorf("LATE_FEE_CAP_PERCENT must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDecimal(key, defaultValue string) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	d, _ := decimal.NewFromString(defaultValue)
	return d
}
