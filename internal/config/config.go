package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"PettyCash"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"pettycash"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
		JWTSecret      string        `envconfig:"JWT_SECRET"`
	}

	Ledger struct {
		// MaxExpenseAmount is the per-expense hard cap in cents. Zero disables it.
		MaxExpenseAmount int64 `envconfig:"MAX_EXPENSE_AMOUNT" default:"100000000"`
		// ConsumptionThreshold is the consumed fraction at which the dashboard
		// starts suggesting consolidation.
		ConsumptionThreshold float64 `envconfig:"CONSUMPTION_THRESHOLD" default:"0.9"`
	}

	Archive struct {
		BaseURL string        `envconfig:"ARCHIVE_BASE_URL" default:"http://localhost:8085"`
		Token   string        `envconfig:"ARCHIVE_TOKEN"`
		Timeout time.Duration `envconfig:"ARCHIVE_TIMEOUT" default:"30s"`
	}

	Notify struct {
		WebhookURL string        `envconfig:"NOTIFY_WEBHOOK_URL"`
		Recipients []string      `envconfig:"NOTIFY_RECIPIENTS"`
		Timeout    time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"10s"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
