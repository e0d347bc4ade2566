package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Port        string
	Environment string
	MongoURI    string
	JWTSecret   string

	// Rate limiting (requests per minute)
	GlobalRateLimit int
	UserRateLimit   int
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "3001"),
		Environment: getEnv("ENVIRONMENT", "development"),
		MongoURI:    getEnv("MONGODB_URI", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),

		GlobalRateLimit: getIntEnv("RATE_LIMIT_GLOBAL_API", 200),
		UserRateLimit:   getIntEnv("RATE_LIMIT_AUTHENTICATED", 60),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
