// Package config loads and validates application configuration from
// environment variables. Loading collects every problem it finds and reports
// them as a single error, so a misconfigured deployment fails fast with a
// complete list instead of one variable at a time.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds connection settings for the PostgreSQL pool.
type DatabaseConfig struct {
	URL      string
	PoolSize int
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	SecretKey     string        // HMAC signing key for bearer tokens
	TokenDuration time.Duration // access token lifetime
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
}

// AppConfig is the top-level configuration for the application.
type AppConfig struct {
	Database *DatabaseConfig
	Auth     *AuthConfig
	Server   *ServerConfig
}

const (
	defaultTokenDuration = 30 * time.Minute
	defaultPoolSize      = 10
	minPoolSize          = 2
	maxPoolSize          = 100
)

func getRequiredEnv(key string, errs *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errs = append(*errs, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getOptionalEnvInt(key string, defaultValue int, errs *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got %q: %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

func getOptionalEnvDuration(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected duration string, got %q: %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// clampPoolSize keeps the pool size within sane bounds without failing the load.
func clampPoolSize(size int) int {
	if size < minPoolSize {
		return minPoolSize
	}
	if size > maxPoolSize {
		return maxPoolSize
	}
	return size
}

// LoadConfig reads all configuration from the environment.
//
// Required: DATABASE_URL, SECRET_KEY.
// Optional: TOKEN_DURATION (default 30m), PORT (default 8080),
// DB_POOL_SIZE (default 10, clamped to [2,100]).
func LoadConfig() (*AppConfig, error) {
	var errs []string

	databaseURL := getRequiredEnv("DATABASE_URL", &errs)
	poolSize := clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", defaultPoolSize, &errs))

	secretKey := getRequiredEnv("SECRET_KEY", &errs)
	tokenDuration := getOptionalEnvDuration("TOKEN_DURATION", defaultTokenDuration, &errs)
	if tokenDuration <= 0 {
		errs = append(errs, fmt.Sprintf("TOKEN_DURATION must be positive, got %s", tokenDuration))
	}

	serverPort := getOptionalEnv("PORT", "8080")

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}

	return &AppConfig{
		Database: &DatabaseConfig{
			URL:      databaseURL,
			PoolSize: poolSize,
		},
		Auth: &AuthConfig{
			SecretKey:     secretKey,
			TokenDuration: tokenDuration,
		},
		Server: &ServerConfig{
			Port: serverPort,
		},
	}, nil
}
