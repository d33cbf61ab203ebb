package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL string

	// Redis (shared rate-limit counters)
	RedisHost     string
	RedisPort     int
	RedisPassword string

	// Blob store (encrypted file payloads)
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// TLS/mTLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string
	TLSCAFile   string // CA for verifying client certs (mTLS)

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Crypto
	KDFIterations int

	// Policy
	MaxPayloadBytes       int64 // Maximum raw payload size
	RequestTimeoutSeconds int

	// Rate-limit budgets
	CreateSharesPerHour   int // per creator URN
	GenerateUrnsPerHour   int // per client IP
	RetrieveAttempts      int // per target identifier
	RetrieveWindowMinutes int

	// Housekeeping
	ReaperIntervalMinutes int

	// Policy overlays (see yaml_config.go)
	ReservedSlugs map[string]bool

	// SMTP (optional share notifications to a urn's contact email)
	SiteTitle    string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      string // "tls", "starttls", or "none"
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:         getEnv("ENV", "development"),
		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/sealshare?sslmode=disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnvInt("REDIS_PORT", 6379),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "sealshare"),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", "sealshare"),
		MinioBucket:    getEnv("MINIO_BUCKET", "shared-content"),
		MinioUseSSL:    getEnv("MINIO_USE_SSL", "") != "",

		TLSEnabled:  getEnv("TLS_ENABLED", "") != "",
		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),
		TLSCAFile:   getEnv("TLS_CA_FILE", ""),

		CORSOrigins: getEnv("CORS_ORIGINS", ""),

		KDFIterations: getEnvInt("KDF_ITERATIONS", 100000),

		MaxPayloadBytes:       int64(getEnvInt("MAX_PAYLOAD_BYTES", 40<<20)),
		RequestTimeoutSeconds: getEnvInt("REQUEST_TIMEOUT_SECONDS", 30),

		CreateSharesPerHour:   getEnvInt("CREATE_SHARES_PER_HOUR", 20),
		GenerateUrnsPerHour:   getEnvInt("GENERATE_URNS_PER_HOUR", 5),
		RetrieveAttempts:      getEnvInt("RETRIEVE_ATTEMPTS", 10),
		RetrieveWindowMinutes: getEnvInt("RETRIEVE_WINDOW_MINUTES", 15),

		ReaperIntervalMinutes: getEnvInt("REAPER_INTERVAL_MINUTES", 60),

		SiteTitle:    getEnv("SITE_TITLE", "SealShare"),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", ""),
		SMTPTLS:      getEnv("SMTP_TLS", "starttls"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsMTLSEnabled returns true if mTLS is configured with a CA file.
func (c *Config) IsMTLSEnabled() bool {
	return c.TLSEnabled && c.TLSCAFile != ""
}

// IsEmailEnabled returns true if SMTP is configured for notifications.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}
