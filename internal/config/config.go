package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAllowedOrigins are the browser origins served by the marketplace front-end.
var DefaultAllowedOrigins = []string{"https://rafi-a12.netlify.app", "http://localhost:5173"}

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env
	Env     string // development | production

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT
	JwtSecret string
	JwtTTL    time.Duration

	// Server
	ApiPort        string
	ServiceApiPort string
	AllowedOrigins []string

	// Stripe
	StripeSecretKey     string
	StripeWebhookSecret string
	PaymentCurrency     string

	// Firebase
	FirebaseCredentialsFile string
	FirebaseProjectID       string
	FirebaseWebAPIKey       string

	// Kafka
	KafkaBrokers []string
	KafkaTopic   string

	// Tracing
	JaegerEndpoint string

	// Email
	SmtpHost        string
	SmtpPort        int
	SmtpUsername    string
	SmtpPassword    string
	SmtpFromAddress string
	EmailLocale     string

	// AWS S3
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string
	ImageBaseS3URL     string
	ImageMaxDimension  int
	ImageMaxSizeMB     int

	// App Defaults
	AppName         string
	GetCacheTTL     time.Duration
	AcceptLockTTL   time.Duration
	WebhookDedupTTL time.Duration

	// Rate Limiting Defaults
	RateLimitSoftBucketSize int
	RateLimitSoftRefillRate int // tokens per second
	RateLimitHardBucketSize int
	RateLimitHardRefillRate int // tokens per second
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
		if !exists || value == "" {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	getSeconds := func(key, defaultValue string) (time.Duration, error) {
		seconds, err := strconv.ParseInt(getEnv(key, defaultValue), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}

	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.JwtSecret, err = getRequiredEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}

	cfg.Env = getEnv("APP_ENV", "development")
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "realestate")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.ApiPort = getEnv("API_PORT", getEnv("PORT", "4000"))
	cfg.ServiceApiPort = getEnv("SERVICE_API_PORT", "12345")
	cfg.AllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", strings.Join(DefaultAllowedOrigins, ",")))
	cfg.StripeSecretKey = getEnv("STRIPE_SECRET_KEY", "")
	cfg.StripeWebhookSecret = getEnv("STRIPE_WEBHOOK_SECRET", "")
	cfg.PaymentCurrency = strings.ToLower(getEnv("PAYMENT_CURRENCY", "usd"))
	cfg.FirebaseCredentialsFile = getEnv("FIREBASE_CREDENTIALS_FILE", "")
	cfg.FirebaseProjectID = getEnv("FIREBASE_PROJECT_ID", "")
	cfg.FirebaseWebAPIKey = getEnv("FIREBASE_WEB_API_KEY", "")
	cfg.KafkaBrokers = splitList(getEnv("KAFKA_BROKERS", ""))
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "marketplace-events")
	cfg.JaegerEndpoint = getEnv("JAEGER_ENDPOINT", "")
	cfg.SmtpHost = getEnv("SMTP_HOST", "")
	cfg.SmtpUsername = getEnv("SMTP_USERNAME", "")
	cfg.SmtpPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SmtpFromAddress = getEnv("SMTP_FROM_ADDRESS", "noreply@realestate.example.com")
	cfg.EmailLocale = getEnv("EMAIL_LOCALE", "en-US")
	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "")
	cfg.AwsS3Bucket = getEnv("AWS_S3_BUCKET", "")
	cfg.ImageBaseS3URL = strings.TrimSuffix(getEnv("IMAGE_BASE_S3_URL", ""), "/")
	cfg.AppName = getEnv("APP_NAME", "Real Estate")

	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	// Tokens live for one day unless overridden.
	if cfg.JwtTTL, err = getSeconds("JWT_TTL_SECONDS", "86400"); err != nil {
		return nil, err
	}
	if cfg.GetCacheTTL, err = getSeconds("GET_CACHE_TTL_SECONDS", "60"); err != nil {
		return nil, err
	}
	if cfg.AcceptLockTTL, err = getSeconds("ACCEPT_LOCK_TTL_SECONDS", "10"); err != nil {
		return nil, err
	}
	if cfg.WebhookDedupTTL, err = getSeconds("WEBHOOK_DEDUP_TTL_SECONDS", "86400"); err != nil {
		return nil, err
	}

	cfg.SmtpPort, err = strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	cfg.ImageMaxDimension, err = strconv.Atoi(getEnv("IMAGE_MAX_DIMENSION", "2048"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMAGE_MAX_DIMENSION: %w", err)
	}

	cfg.ImageMaxSizeMB, err = strconv.Atoi(getEnv("IMAGE_MAX_SIZE_MB", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMAGE_MAX_SIZE_MB: %w", err)
	}

	// Rate Limiting
	cfg.RateLimitSoftBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_SOFT_BUCKET_SIZE", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SOFT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitSoftRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_SOFT_REFILL_RATE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SOFT_REFILL_RATE: %w", err)
	}
	cfg.RateLimitHardBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_HARD_BUCKET_SIZE", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_HARD_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitHardRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_HARD_REFILL_RATE", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_HARD_REFILL_RATE: %w", err)
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
