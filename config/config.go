package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	ErrMissingJWTSecret     = errors.New("JWT_SECRET environment variable is required")
	ErrBypassInProduction   = errors.New("USE_LOCAL_ADMIN cannot be enabled when GO_ENV=production")
	ErrUnknownStorageDriver = errors.New("STORAGE_DRIVER must be one of: s3, local")
	ErrMissingStorageCreds  = errors.New("STORAGE_ACCESS_KEY, STORAGE_SECRET_KEY and STORAGE_ENDPOINT are required for the s3 driver")
)

// LoadENV loads .env when GO_ENV is unset or "development". A missing .env
// file is not an error; the process environment is used as is.
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	return nil
}

type EnvironmentVariable struct {
	GO_ENV          string
	PORT            int
	LOG_LEVEL       string
	PUBLIC_BASE_URL string
	// Database
	DATABASE_URL string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	// JWT
	JWT_SECRET     string
	JWT_ISSUER     string
	JWT_EXPIRES_IN time.Duration
	// Redis
	REDIS_URL string
	// HTTP
	ALLOWED_ORIGINS       string
	RATE_LIMIT_PER_MINUTE int
	READ_TIMEOUT          time.Duration
	WRITE_TIMEOUT         time.Duration
	// Storage
	STORAGE_DRIVER      string
	STORAGE_ENDPOINT    string
	STORAGE_REGION      string
	STORAGE_ACCESS_KEY  string
	STORAGE_SECRET_KEY  string
	STORAGE_PUBLIC_URL  string
	STORAGE_LOCAL_DIR   string
	MAX_FILE_SIZE       int64
	ALLOWED_FILE_TYPES  []string
	IMAGE_MAX_DIMENSION int
	// Integrations
	CRM_WEBHOOK_URL   string
	SMTP_HOST         string
	SMTP_PORT         int
	SMTP_USERNAME     string
	SMTP_PASSWORD     string
	SMTP_FROM         string
	LEAD_NOTIFY_EMAIL string
	// Local admin bypass, development only
	USE_LOCAL_ADMIN      bool
	LOCAL_ADMIN_EMAIL    string
	LOCAL_ADMIN_PASSWORD string
	CRON_ENABLED         bool
}

// IsProduction reports whether GO_ENV is "production".
func (e *EnvironmentVariable) IsProduction() bool {
	return e.GO_ENV == "production"
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from
// the DB_* variables.
func (e *EnvironmentVariable) DSN() string {
	if e.DATABASE_URL != "" {
		return e.DATABASE_URL
	}
	sslMode := e.DB_SSL_MODE
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		e.DB_HOST, e.DB_USER_NAME, e.DB_PASSWORD, e.DB_NAME, e.DB_PORT, sslMode)
}

// Validate rejects configurations that must never reach a running server.
func (e *EnvironmentVariable) Validate() error {
	if e.JWT_SECRET == "" && !e.USE_LOCAL_ADMIN {
		return ErrMissingJWTSecret
	}
	if e.USE_LOCAL_ADMIN && e.IsProduction() {
		return ErrBypassInProduction
	}
	switch e.STORAGE_DRIVER {
	case "local":
	case "s3":
		if e.STORAGE_ACCESS_KEY == "" || e.STORAGE_SECRET_KEY == "" || e.STORAGE_ENDPOINT == "" {
			return ErrMissingStorageCreds
		}
	default:
		return ErrUnknownStorageDriver
	}
	return nil
}

func Get() (*EnvironmentVariable, error) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	jwtExpiry, err := durationEnv("JWT_EXPIRES_IN", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	readTimeout, err := durationEnv("READ_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := durationEnv("WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}

	maxFileSize, err := strconv.ParseInt(getenv("MAX_FILE_SIZE", "5242880"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_FILE_SIZE: %w", err)
	}
	maxDimension, err := strconv.Atoi(getenv("IMAGE_MAX_DIMENSION", "2000"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMAGE_MAX_DIMENSION: %w", err)
	}
	rateLimit, err := strconv.Atoi(getenv("RATE_LIMIT_PER_MINUTE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}
	smtpPort, err := strconv.Atoi(getenv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	storageDriver := getenv("STORAGE_DRIVER", "s3")
	if storageDriver == "s3" && os.Getenv("STORAGE_ACCESS_KEY") == "" && os.Getenv("GO_ENV") != "production" {
		storageDriver = "local"
	}

	envVariables := &EnvironmentVariable{
		GO_ENV:          getenv("GO_ENV", "development"),
		PORT:            port,
		LOG_LEVEL:       getenv("LOG_LEVEL", "info"),
		PUBLIC_BASE_URL: getenv("PUBLIC_BASE_URL", fmt.Sprintf("http://localhost:%d", port)),

		DATABASE_URL: os.Getenv("DATABASE_URL"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      getenv("DB_HOST", "localhost"),
		DB_PORT:      getenv("DB_PORT", "5432"),
		DB_SSL_MODE:  os.Getenv("DB_SSL_MODE"),

		JWT_SECRET:     os.Getenv("JWT_SECRET"),
		JWT_ISSUER:     getenv("JWT_ISSUER", "mathwa-api"),
		JWT_EXPIRES_IN: jwtExpiry,

		REDIS_URL: getenv("REDIS_URL", "redis://localhost:6379/0"),

		ALLOWED_ORIGINS:       getenv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		RATE_LIMIT_PER_MINUTE: rateLimit,
		READ_TIMEOUT:          readTimeout,
		WRITE_TIMEOUT:         writeTimeout,

		STORAGE_DRIVER:      storageDriver,
		STORAGE_ENDPOINT:    os.Getenv("STORAGE_ENDPOINT"),
		STORAGE_REGION:      getenv("STORAGE_REGION", "us-east-1"),
		STORAGE_ACCESS_KEY:  os.Getenv("STORAGE_ACCESS_KEY"),
		STORAGE_SECRET_KEY:  os.Getenv("STORAGE_SECRET_KEY"),
		STORAGE_PUBLIC_URL:  os.Getenv("STORAGE_PUBLIC_URL"),
		STORAGE_LOCAL_DIR:   getenv("STORAGE_LOCAL_DIR", "./storage"),
		MAX_FILE_SIZE:       maxFileSize,
		ALLOWED_FILE_TYPES:  splitList(getenv("ALLOWED_FILE_TYPES", "image/jpeg,image/png,image/webp,application/pdf")),
		IMAGE_MAX_DIMENSION: maxDimension,

		CRM_WEBHOOK_URL:   os.Getenv("CRM_WEBHOOK_URL"),
		SMTP_HOST:         getenv("SMTP_HOST", "smtp.gmail.com"),
		SMTP_PORT:         smtpPort,
		SMTP_USERNAME:     os.Getenv("SMTP_USERNAME"),
		SMTP_PASSWORD:     os.Getenv("SMTP_PASSWORD"),
		SMTP_FROM:         os.Getenv("SMTP_FROM"),
		LEAD_NOTIFY_EMAIL: os.Getenv("LEAD_NOTIFY_EMAIL"),

		USE_LOCAL_ADMIN:      os.Getenv("USE_LOCAL_ADMIN") == "true",
		LOCAL_ADMIN_EMAIL:    getenv("LOCAL_ADMIN_EMAIL", "admin@mathwa.com"),
		LOCAL_ADMIN_PASSWORD: os.Getenv("LOCAL_ADMIN_PASSWORD"),
		CRON_ENABLED:         os.Getenv("CRON_ENABLED") != "false",
	}

	return envVariables, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
