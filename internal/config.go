package internal

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	Port        int
	LogLevel    string
	DatabaseUrl string

	// Identity provider (bearer token verification)
	AuthProvider string // "jwks" or "mock"
	AuthJWKSURL  string
	AuthIssuer   string
	AuthAudience string

	// Upstream generation API
	AIProvider     string // "longcat" or "mock"
	LongCatBaseURL string
	LongCatAPIKeys []string // Ordered; failover walks the list front to back
	LongCatTimeout time.Duration

	// Billing webhook
	LemonSqueezyWebhookSecret string

	// Storage Configuration
	StorageProvider string // "local", "r2", or "none"

	// Local Storage (development)
	LocalStoragePath string
	LocalStorageURL  string

	// R2 Storage (production)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string // Optional custom domain URL

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		// Identity provider
		AuthProvider: getEnv("AUTH_PROVIDER", "jwks"),
		AuthJWKSURL:  getEnv("AUTH_JWKS_URL", ""),
		AuthIssuer:   getEnv("AUTH_ISSUER", ""),
		AuthAudience: getEnv("AUTH_AUDIENCE", ""),

		// Upstream generation defaults
		AIProvider:     getEnv("AI_PROVIDER", "longcat"),
		LongCatBaseURL: getEnv("LONGCAT_BASE_URL", "https://api.longcat.chat/openai/v1/chat/completions"),
		LongCatTimeout: getEnvDuration("LONGCAT_ATTEMPT_TIMEOUT", 45*time.Second),

		// Billing
		LemonSqueezyWebhookSecret: getEnv("LEMONSQUEEZY_WEBHOOK_SECRET", ""),

		// Storage defaults to local filesystem for development
		StorageProvider:  getEnv("STORAGE_PROVIDER", "local"),
		LocalStoragePath: getEnv("LOCAL_STORAGE_PATH", "./storage"),
		LocalStorageURL:  getEnv("LOCAL_STORAGE_URL", "http://localhost:8080/files"),

		// R2 configuration (production only)
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),

		// Metrics authentication
		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	// Ordered, comma-separated API keys. Failover preserves this order.
	keysStr := getEnv("LONGCAT_API_KEYS", "")
	if keysStr != "" {
		for _, key := range strings.Split(keysStr, ",") {
			trimmed := strings.TrimSpace(key)
			if trimmed != "" {
				cfg.LongCatAPIKeys = append(cfg.LongCatAPIKeys, trimmed)
			}
		}
	}

	// Required
	cfg.DatabaseUrl = os.Getenv("DATABASE_URL")
	if cfg.DatabaseUrl == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	// Validate identity provider configuration
	if cfg.AuthProvider == "jwks" {
		if cfg.AuthJWKSURL == "" {
			return nil, fmt.Errorf("AUTH_JWKS_URL is required when AUTH_PROVIDER is 'jwks'")
		}
		if cfg.AuthIssuer == "" {
			return nil, fmt.Errorf("AUTH_ISSUER is required when AUTH_PROVIDER is 'jwks'")
		}
	} else if cfg.AuthProvider != "mock" {
		return nil, fmt.Errorf("AUTH_PROVIDER must be either 'jwks' or 'mock', got: %s", cfg.AuthProvider)
	}

	// Validate AI provider configuration
	if cfg.AIProvider == "longcat" {
		if len(cfg.LongCatAPIKeys) == 0 {
			return nil, fmt.Errorf("LONGCAT_API_KEYS is required when AI_PROVIDER is 'longcat'")
		}
	} else if cfg.AIProvider != "mock" {
		return nil, fmt.Errorf("AI_PROVIDER must be either 'longcat' or 'mock', got: %s", cfg.AIProvider)
	}

	// The webhook endpoint is useless without its shared secret; refuse to
	// start in production rather than reject every delivery at runtime.
	if cfg.Env != "development" && cfg.LemonSqueezyWebhookSecret == "" {
		return nil, fmt.Errorf("LEMONSQUEEZY_WEBHOOK_SECRET is required outside development")
	}

	// Validate storage configuration
	if cfg.StorageProvider == "r2" {
		if cfg.R2AccountID == "" {
			return nil, fmt.Errorf("R2_ACCOUNT_ID is required when STORAGE_PROVIDER is 'r2'")
		}
		if cfg.R2AccessKeyID == "" {
			return nil, fmt.Errorf("R2_ACCESS_KEY_ID is required when STORAGE_PROVIDER is 'r2'")
		}
		if cfg.R2SecretAccessKey == "" {
			return nil, fmt.Errorf("R2_SECRET_ACCESS_KEY is required when STORAGE_PROVIDER is 'r2'")
		}
		if cfg.R2BucketName == "" {
			return nil, fmt.Errorf("R2_BUCKET_NAME is required when STORAGE_PROVIDER is 'r2'")
		}
	} else if cfg.StorageProvider != "local" && cfg.StorageProvider != "none" {
		return nil, fmt.Errorf("STORAGE_PROVIDER must be 'local', 'r2', or 'none', got: %s", cfg.StorageProvider)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
