package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Session
	SessionSecret string
	SessionExpiry time.Duration

	// Auth rate limit (login/signup POSTs per IP)
	AuthRateLimit  int
	AuthRateWindow time.Duration

	// Business search provider
	SearchAPIURL string
	SearchAPIKey string

	// Media
	StorageDriver           string // "local" or "s3"
	MediaPath               string // local root, one directory per user
	MediaURL                string // public prefix for local media
	UploadMaxSize           int64
	EnforceUploadExtensions bool

	// Storage (S3-compatible, only when STORAGE_DRIVER=s3)
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string
	S3PresignExpiry time.Duration

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Observability (optional)
	SentryDSN string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		AppName: envString("APP_NAME", "Greenflash"),
		AppEnv:  envRequired("APP_ENV"), // 'development' or 'production'
		AppURL:  envString("APP_URL", "http://localhost:8090"),
		Port:    envString("PORT", "8090"),

		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/greenflash.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		SessionSecret: envRequired("SESSION_SECRET"),
		SessionExpiry: envDuration("SESSION_EXPIRY", 168*time.Hour),

		AuthRateLimit:  envInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindow: envDuration("AUTH_RATE_WINDOW", 15*time.Minute),

		SearchAPIURL: envString("SEARCH_API_URL", "https://api.yelp.com/v3/businesses"),
		SearchAPIKey: envString("SEARCH_API_KEY", ""),

		StorageDriver:           envString("STORAGE_DRIVER", StorageLocal),
		MediaPath:               envString("MEDIA_PATH", "static/images"),
		MediaURL:                envString("MEDIA_URL", "/static/images"),
		UploadMaxSize:           int64(envInt("UPLOAD_MAX_SIZE", 10<<20)),
		EnforceUploadExtensions: envBool("ENFORCE_UPLOAD_EXTENSIONS", false),

		S3Region:        envString("S3_REGION", ""),
		S3Bucket:        envString("S3_BUCKET", ""),
		S3AccessKey:     envString("S3_ACCESS_KEY", ""),
		S3SecretKey:     envString("S3_SECRET_KEY", ""),
		S3Endpoint:      envString("S3_ENDPOINT", ""),
		S3PresignExpiry: envDuration("S3_PRESIGN_EXPIRY", 168*time.Hour),

		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		SentryDSN: envString("SENTRY_DSN", ""),
	}

	if cfg.StorageDriver == StorageS3 {
		validateS3(cfg)
	}

	if cfg.SearchAPIKey == "" {
		slog.Warn("SEARCH_API_KEY is empty, business search will be rejected by the provider")
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

func validateS3(cfg *Config) {
	if cfg.S3Region == "" || cfg.S3Bucket == "" {
		slog.Error("STORAGE_DRIVER=s3 requires S3_REGION and S3_BUCKET")
		os.Exit(1)
	}
}

// validateProduction ensures required services are configured for production deployments.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development for local testing with email log mode")
		os.Exit(1)
	}
	if len(cfg.SessionSecret) < 32 {
		slog.Error("production deployment requires SESSION_SECRET of at least 32 bytes")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Sanitized returns a copy of the config with only public fields.
// Safe to expose in ctx and templates.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:       c.AppName,
		AppEnv:        c.AppEnv,
		AppURL:        c.AppURL,
		Port:          c.Port,
		StorageDriver: c.StorageDriver,
		MediaURL:      c.MediaURL,
		S3Endpoint:    c.S3Endpoint, // needed for CSP img-src
		UploadMaxSize: c.UploadMaxSize,
	}
}
