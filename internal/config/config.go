// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"auction-house/pkg/db"
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort    string        `mapstructure:"server_port"`
	DB            db.Config     `mapstructure:"db"`
	NATSUrl       string        `mapstructure:"nats_url"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// LoadConfig loads configuration from configs/config.yaml (optional) with
// environment variable overrides.
func LoadConfig() (*AppConfig, error) {
	viper.AddConfigPath("./configs")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // db.host -> DB_HOST
	viper.AutomaticEnv()

	viper.SetDefault("server_port", "8080")
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", 5432)
	viper.SetDefault("db.user", "user")
	viper.SetDefault("db.password", "password")
	viper.SetDefault("db.name", "auctiondb")
	viper.SetDefault("db.sslmode", "disable")
	viper.SetDefault("nats_url", "") // empty disables event publishing and mail queueing
	viper.SetDefault("sweep_interval", time.Minute)

	var notFound viper.ConfigFileNotFoundError
	if err := viper.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("sweep_interval must be positive, got %s", cfg.SweepInterval)
	}
	return &cfg, nil
}
