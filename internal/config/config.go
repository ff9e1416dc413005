package config

import (
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	DBDSN             string        `envconfig:"DB_DSN" required:"true"`
	Environment       string        `envconfig:"ENV" default:"development"`
	HTTPAddr          string        `envconfig:"HTTP_ADDR" default:":8080"`
	TelegramToken     string        `envconfig:"TELEGRAM_TOKEN"`
	SchedulerInterval time.Duration `envconfig:"SCHEDULER_INTERVAL" default:"1m"`
	AdminTelegramIDs  []int64       `envconfig:"ADMIN_TELEGRAM_IDS"`
	APIVersion        string        `envconfig:"API_VERSION" default:"v1"`
	LogLevel          string        `envconfig:"LOG_LEVEL"`
}

// Load читает .env (если есть), затем переменные окружения
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	}

	return FromEnv()
}

// FromEnv заполняет конфиг только из окружения
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}

	// required:"true" не ловит пустое значение
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.SchedulerInterval <= 0 {
		return nil, fmt.Errorf("SCHEDULER_INTERVAL must be positive, got %s", cfg.SchedulerInterval)
	}

	return &cfg, nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

// BotEnabled: бот запускается только при заданном токене
func (c *Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

func (c *Config) IsAdminTelegramID(id int64) bool {
	return slices.Contains(c.AdminTelegramIDs, id)
}
