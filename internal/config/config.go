package config

import (
	"fmt"

	"github.com/orbitsaas/credit-ledger/pkg/mq"
	"github.com/orbitsaas/credit-ledger/pkg/mysql"
	"github.com/spf13/viper"
)

type Config struct {
	API      API          `mapstructure:"api"`
	Database mysql.Config `mapstructure:"database"`
	RabbitMQ mq.Config    `mapstructure:"rabbitmq"`
	Ledger   Ledger       `mapstructure:"ledger"`
}

type API struct {
	Port string `mapstructure:"port"`
}

type Ledger struct {
	MaxConflictRetries  int `mapstructure:"max_conflict_retries"`
	DefaultHistoryLimit int `mapstructure:"default_history_limit"`
}

func Load() (cfg *Config, err error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath("./config")

	viper.SetDefault("ledger.max_conflict_retries", 3)
	viper.SetDefault("ledger.default_history_limit", 20)

	err = viper.ReadInConfig()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
