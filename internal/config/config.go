package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	BackendURL      string
	RequestTimeout  time.Duration
	TokenValidity   time.Duration
	DatabaseType    string
	DatabasePath    string
	DatabaseURL     string
	KeyPath         string
	StaticFilesPath string
	TemplatesPath   string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		BackendURL:      getEnv("BACKEND_URL", "https://testtiim.pythonanywhere.com/api/v1"),
		RequestTimeout:  getEnvSeconds("REQUEST_TIMEOUT_SECONDS", 30*time.Second),
		TokenValidity:   getEnvSeconds("TOKEN_VALIDITY_SECONDS", 1*time.Hour),
		DatabaseType:    getEnv("DB_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./testdash.db"),
		DatabaseURL:     getEnv("DB_URL", ""),
		KeyPath:         getEnv("KEY_PATH", "./testdash.key"),
		StaticFilesPath: getEnv("STATIC_PATH", "./web/static"),
		TemplatesPath:   getEnv("TEMPLATES_PATH", "./web/templates"),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvSeconds reads a duration expressed in whole seconds or returns a default value
func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}
