package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode          string        `mapstructure:"mode"`
	Port          int           `mapstructure:"port"`
	PortRetries   int           `mapstructure:"port_retries"`
	CORSOrigin    string        `mapstructure:"cors_origin"`
	WebhookSecret string        `mapstructure:"webhook_secret"`
	RedisURL      string        `mapstructure:"redis_url"`
	DBPath        string        `mapstructure:"db_path"`
	SessionSecret string        `mapstructure:"session_secret"`
	ReadLimit     int64         `mapstructure:"read_limit"`
	PingPeriod    time.Duration `mapstructure:"ping_period"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 4000)
	v.SetDefault("port_retries", 10)
	v.SetDefault("cors_origin", "*")
	v.SetDefault("webhook_secret", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("db_path", "./data/love4pets.sqlite")
	v.SetDefault("session_secret", "love4pets")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")

	// Deployment environments configure through plain env vars
	// (PORT, CORS_ORIGIN, WEBHOOK_SECRET, REDIS_URL, DB_PATH).
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
