package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port             string
	ActivitiesAPIURL string        // Base URL of the remote activities API
	APITimeout       time.Duration // Zero leaves upstream calls without a client timeout
	RedisURL         string        // Empty keeps status messages in memory
	MessageTTL       time.Duration
	LogLevel         string
	Environment      string
	SecureCookies    bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	apiTimeout, err := getDurationEnv("API_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}
	messageTTL, err := getDurationEnv("MESSAGE_TTL", 5*time.Second)
	if err != nil {
		return nil, err
	}
	if messageTTL <= 0 {
		return nil, fmt.Errorf("MESSAGE_TTL must be positive, got %s", messageTTL)
	}

	apiURL := strings.TrimRight(getEnv("ACTIVITIES_API_URL", "http://localhost:8000"), "/")
	if u, err := url.Parse(apiURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("ACTIVITIES_API_URL must be an absolute URL, got %q", apiURL)
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		ActivitiesAPIURL: apiURL,
		APITimeout:       apiTimeout,
		RedisURL:         getEnv("REDIS_URL", ""),
		MessageTTL:       messageTTL,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Environment:      getEnv("ENVIRONMENT", "production"),
		SecureCookies:    getBoolEnv("SECURE_COOKIES", false),
	}, nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getDurationEnv parses a Go duration string such as "5s"
func getDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}
