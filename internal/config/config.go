package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port  int
	Debug bool

	// Database. A postgres:// URL selects the pgx backend; anything else
	// is treated as a SQLite file path.
	DatabaseURL string

	// RabbitMQ. Empty disables outcome publishing.
	RabbitMQURL string

	// Telegram
	TelegramToken string

	// Challenges. Empty uses the embedded catalog.
	ChallengesPath string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnvInt("PORT", 8080),
		Debug:          getEnvBool("DEBUG", false),
		DatabaseURL:    getEnv("DATABASE_URL", "trainer.db"),
		RabbitMQURL:    getEnv("RABBITMQ_URL", ""),
		TelegramToken:  getEnv("TELEGRAM_TOKEN", ""),
		ChallengesPath: getEnv("CHALLENGES_PATH", ""),
	}

	// Validate required settings
	if cfg.TelegramToken == "" && !cfg.Debug {
		return nil, fmt.Errorf("TELEGRAM_TOKEN must be set in production")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
