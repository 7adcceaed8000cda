package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env
	AppEnv  string

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Redis (optional; enables the poll lock and the scheduled inbox poll)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Server
	ApiPort        string
	ServiceApiPort string // empty disables the service API
	FrontendURL    string

	// Outbound mail
	SmtpHost        string
	SmtpPort        int
	SmtpUsername    string
	SmtpPassword    string
	SmtpFromAddress string
	SmtpFromName    string
	MockServices    bool
	LogEmailsPath   string

	// Inbound mail
	ImapHost               string
	ImapPort               int
	ImapUsername           string
	ImapPassword           string
	ImapInsecureSkipVerify bool
	InboxSubjectMarker     string
	PollLockTTL            time.Duration
	InboxPollInterval      time.Duration

	// Gemini
	GeminiAPIKey  string
	GeminiModel   string
	AITimeout     time.Duration
	AIMaxLogLen   int
	AIPromptsFile string

	// AWS S3 (optional raw email archive)
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	EmailArchiveBucket string
	EmailArchivePrefix string

	// Logging
	LogJSON  bool
	LogDebug bool

	// Rate Limiting Defaults
	RateLimitBucketSize int
	RateLimitRefillRate int // tokens per second
}

// IsProduction reports whether error details must be hidden from API callers.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// InboxConfigured reports whether IMAP polling can be attempted.
func (c *Config) InboxConfigured() bool {
	return c.ImapHost != ""
}

// ArchiveConfigured reports whether ingested raw emails are copied to S3.
func (c *Config) ArchiveConfigured() bool {
	return c.EmailArchiveBucket != ""
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		RunMode: runMode,
	}

	var err error

	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists || strings.TrimSpace(value) == "" {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	getBool := func(key string, defaultValue bool) (bool, error) {
		raw := getEnv(key, "")
		if raw == "" {
			return defaultValue, nil
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return false, fmt.Errorf("invalid %s: %w", key, err)
		}
		return v, nil
	}

	getSeconds := func(key, defaultValue string) (time.Duration, error) {
		secs, err := strconv.ParseInt(getEnv(key, defaultValue), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		if secs < 0 {
			return 0, fmt.Errorf("invalid %s: must not be negative", key)
		}
		return time.Duration(secs) * time.Second, nil
	}

	cfg.AppEnv = getEnv("APP_ENV", getEnv("NODE_ENV", "development"))

	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "rfp_management")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.ApiPort = getEnv("API_PORT", getEnv("PORT", "5000"))
	cfg.ServiceApiPort = getEnv("SERVICE_API_PORT", "")
	cfg.FrontendURL = getEnv("FRONTEND_URL", "*")

	cfg.SmtpHost = getEnv("SMTP_HOST", "")
	cfg.SmtpUsername = getEnv("EMAIL_USER", "")
	cfg.SmtpPassword = getEnv("EMAIL_PASSWORD", "")
	cfg.SmtpFromAddress = getEnv("SMTP_FROM_ADDRESS", cfg.SmtpUsername)
	cfg.SmtpFromName = getEnv("SMTP_FROM_NAME", "RFP System")
	cfg.LogEmailsPath = getEnv("LOG_EMAILS", "")

	cfg.ImapHost = getEnv("IMAP_HOST", "")
	cfg.ImapUsername = getEnv("IMAP_USER", cfg.SmtpUsername)
	cfg.ImapPassword = getEnv("IMAP_PASSWORD", cfg.SmtpPassword)
	cfg.InboxSubjectMarker = getEnv("INBOX_SUBJECT_MARKER", "RFP")

	cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", "")
	cfg.GeminiModel = getEnv("GEMINI_MODEL", "")
	cfg.AIPromptsFile = getEnv("AI_PROMPTS_FILE", "")

	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "")
	cfg.EmailArchiveBucket = getEnv("EMAIL_ARCHIVE_BUCKET", "")
	cfg.EmailArchivePrefix = getEnv("EMAIL_ARCHIVE_PREFIX", "inbound/")

	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg.SmtpPort, err = strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	cfg.ImapPort, err = strconv.Atoi(getEnv("IMAP_PORT", "993"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMAP_PORT: %w", err)
	}

	if cfg.ImapInsecureSkipVerify, err = getBool("IMAP_INSECURE_SKIP_VERIFY", false); err != nil {
		return nil, err
	}
	if cfg.MockServices, err = getBool("MOCK_SERVICES", false); err != nil {
		return nil, err
	}
	if cfg.LogJSON, err = getBool("LOG_JSON", false); err != nil {
		return nil, err
	}
	if cfg.LogDebug, err = getBool("LOG_DEBUG", false); err != nil {
		return nil, err
	}

	if cfg.PollLockTTL, err = getSeconds("POLL_LOCK_TTL_SECONDS", "300"); err != nil {
		return nil, err
	}
	if cfg.InboxPollInterval, err = getSeconds("INBOX_POLL_INTERVAL_SECONDS", "0"); err != nil {
		return nil, err
	}
	if cfg.AITimeout, err = getSeconds("AI_TIMEOUT_SECONDS", "0"); err != nil {
		return nil, err
	}

	cfg.AIMaxLogLen, err = strconv.Atoi(getEnv("AI_MAX_LOG_LENGTH", "200"))
	if err != nil {
		return nil, fmt.Errorf("invalid AI_MAX_LOG_LENGTH: %w", err)
	}

	cfg.RateLimitBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_BUCKET_SIZE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_REFILL_RATE", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFILL_RATE: %w", err)
	}

	return cfg, nil
}
