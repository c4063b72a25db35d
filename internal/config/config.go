package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port string
	Mode string

	// Database configuration
	DatabaseURL string

	// Redis configuration
	RedisURL string

	// Asaas provider configuration
	AsaasAPIURL      string
	AsaasAPIKey      string
	AsaasWalletID    string
	WebhookAuthToken string

	// Commission configuration
	PlatformSplitPercent   float64
	AffiliateSplitPercent  float64
	MensalidadeRatePercent float64

	// Sync job configuration
	SyncConcurrency    int
	HTTPTimeoutSeconds int

	// Recognized for the session layer; the core does not consume it
	InactivityTimeoutMinutes int
}

// Load reads configuration from the environment (and .env when present).
func Load() *Config {
	// Ignore error if .env file doesn't exist
	_ = godotenv.Load()

	return &Config{
		Port:                     getEnv("PORT", "8080"),
		Mode:                     getEnv("GIN_MODE", "debug"),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		RedisURL:                 getEnv("REDIS_URL", ""),
		AsaasAPIURL:              getEnv("ASAAS_API_URL", "https://api.asaas.com/v3"),
		AsaasAPIKey:              getEnv("ASAAS_API_KEY", ""),
		AsaasWalletID:            getEnv("ASAAS_WALLET_ID", ""),
		WebhookAuthToken:         getEnv("WEBHOOK_AUTH_TOKEN", ""),
		PlatformSplitPercent:     getEnvFloat("COMMISSION_PLATFORM_PERCENT", 70),
		AffiliateSplitPercent:    getEnvFloat("COMMISSION_AFFILIATE_PERCENT", 30),
		MensalidadeRatePercent:   getEnvFloat("MENSALIDADE_COMMISSION_PERCENT", 3),
		SyncConcurrency:          getEnvInt("SYNC_CONCURRENCY", 5),
		HTTPTimeoutSeconds:       getEnvInt("HTTP_TIMEOUT_SECONDS", 30),
		InactivityTimeoutMinutes: getEnvInt("INACTIVITY_TIMEOUT_MINUTES", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
