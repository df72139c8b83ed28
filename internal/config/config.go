package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort          int
	DatabasePath        string
	UploadDir           string // Base path for uploaded cat images
	JWTSecret           string
	AppEnv              string
	UploadPruneSchedule string // Standard cron expression
}

// Load loads configuration from environment variables or sets defaults.
// A local .env file is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	portStr := getEnv("PORT", "3000")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	return &Config{
		ServerPort:          port,
		DatabasePath:        getEnv("DATABASE_PATH", "./catregistry.db"),
		UploadDir:           getEnv("UPLOAD_DIR", "./uploads"),
		JWTSecret:           secret,
		AppEnv:              getEnv("APP_ENV", "development"),
		UploadPruneSchedule: getEnv("UPLOAD_PRUNE_SCHEDULE", "0 3 * * *"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
