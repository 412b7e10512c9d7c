package config

import (
	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Runtime
	Env string `mapstructure:"APP_ENV"` // development | production

	// Backend
	BackendURL string `mapstructure:"BACKEND_URL"`

	// Redis (offline sale spool)
	RedisURL    string `mapstructure:"REDIS_URL"`
	SyncWorkers int    `mapstructure:"SYNC_WORKERS"`

	// Session
	PollIntervalSeconds     int    `mapstructure:"POLL_INTERVAL_SECONDS"`
	LimitePagamentoCentavos int64  `mapstructure:"LIMITE_PAGAMENTO_CENTAVOS"`
	TokenPath               string `mapstructure:"TOKEN_PATH"`

	// Reports
	ReportDir       string `mapstructure:"REPORT_DIR"`
	SupervisorEmail string `mapstructure:"SUPERVISOR_EMAIL"`

	// SMTP
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Sensible defaults for development
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("BACKEND_URL", "http://localhost:8000")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("SYNC_WORKERS", 2)
	viper.SetDefault("POLL_INTERVAL_SECONDS", 5)
	viper.SetDefault("LIMITE_PAGAMENTO_CENTAVOS", 50000) // R$ 500,00
	viper.SetDefault("TOKEN_PATH", ".caixapos/token.json")
	viper.SetDefault("REPORT_DIR", ".caixapos/fechamentos")
	viper.SetDefault("SMTP_PORT", 587)

	// Optional .env file for local development — does not fail if missing
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
