package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/atlasops/salesops-bot-go/pkg/errors"
	"github.com/joho/godotenv"
)

type Config struct {
	Slack      SlackConfig
	Salesforce SalesforceConfig
	Redis      RedisConfig
	Postgres   PostgresConfig
	Catalog    CatalogConfig
	Logging    LoggingConfig
	Bot        BotConfig
}

type SlackConfig struct {
	AppToken string
	BotToken string
	Channels []string
}

type SalesforceConfig struct {
	InstanceURL  string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type CatalogConfig struct {
	// Path to a pattern catalog file. Empty means the embedded catalog.
	Path string
}

type LoggingConfig struct {
	Level string
	File  string
}

type BotConfig struct {
	DefaultOwner string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Slack: SlackConfig{
			AppToken: getEnv("SLACK_APP_TOKEN", ""),
			BotToken: getEnv("SLACK_BOT_TOKEN", ""),
			Channels: parseCommaSeparated(getEnv("SLACK_CHANNELS", "")),
		},
		Salesforce: SalesforceConfig{
			InstanceURL:  getEnv("SF_INSTANCE_URL", ""),
			ClientID:     getEnv("SF_CLIENT_ID", ""),
			ClientSecret: getEnv("SF_CLIENT_SECRET", ""),
			Username:     getEnv("SF_USERNAME", ""),
			Password:     getEnv("SF_PASSWORD", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "salesops"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "salesops"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Catalog: CatalogConfig{
			Path: getEnv("PATTERN_CATALOG_PATH", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", "logs/bot.log"),
		},
		Bot: BotConfig{
			DefaultOwner: getEnv("BOT_DEFAULT_OWNER", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Slack.AppToken == "" {
		return errors.NewValidationError("SLACK_APP_TOKEN is required", "slack.app_token", nil)
	}
	if c.Slack.BotToken == "" {
		return errors.NewValidationError("SLACK_BOT_TOKEN is required", "slack.bot_token", nil)
	}
	if c.Salesforce.InstanceURL == "" {
		return errors.NewValidationError("SF_INSTANCE_URL is required", "salesforce.instance_url", nil)
	}
	if c.Salesforce.ClientID == "" || c.Salesforce.ClientSecret == "" {
		return errors.NewValidationError("SF_CLIENT_ID and SF_CLIENT_SECRET are required", "salesforce.client_id", nil)
	}
	if c.Redis.Host == "" {
		return errors.NewValidationError("REDIS_HOST is required", "redis.host", nil)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
