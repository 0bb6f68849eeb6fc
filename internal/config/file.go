package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config for operators who prefer a YAML file over
// environment variables. Environment variables win over file values.
type FileConfig struct {
	Port           int    `yaml:"port"`
	Debug          bool   `yaml:"debug"`
	DatabaseURL    string `yaml:"database_url"`
	RabbitMQURL    string `yaml:"rabbitmq_url"`
	TelegramToken  string `yaml:"telegram_token"`
	ChallengesPath string `yaml:"challenges_path"`
}

// DefaultConfigPath is checked when TRAINER_CONFIG is not set.
const DefaultConfigPath = "trainer.yaml"

// LoadWithFile loads the YAML config file (if present) and then applies
// environment variables on top of it.
func LoadWithFile() (*Config, error) {
	path := getEnv("TRAINER_CONFIG", DefaultConfigPath)

	file, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:           getEnvInt("PORT", orInt(file.Port, 8080)),
		Debug:          getEnvBool("DEBUG", file.Debug),
		DatabaseURL:    getEnv("DATABASE_URL", orString(file.DatabaseURL, "trainer.db")),
		RabbitMQURL:    getEnv("RABBITMQ_URL", file.RabbitMQURL),
		TelegramToken:  getEnv("TELEGRAM_TOKEN", file.TelegramToken),
		ChallengesPath: getEnv("CHALLENGES_PATH", file.ChallengesPath),
	}

	if cfg.TelegramToken == "" && !cfg.Debug {
		return nil, fmt.Errorf("TELEGRAM_TOKEN must be set in production")
	}

	return cfg, nil
}

// loadFile reads and parses the config file. A missing file is not an
// error; the zero FileConfig falls through to env vars and defaults.
func loadFile(path string) (*FileConfig, error) {
	var file FileConfig

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &file, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &file, nil
}

func orInt(value, fallback int) int {
	if value != 0 {
		return value
	}
	return fallback
}

func orString(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
