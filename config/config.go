package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	str2duration "github.com/xhit/go-str2duration/v2"
)

type TelegramConfig struct {
	Token       string
	Debug       bool
	AdminChatID int64 `mapstructure:"admin_chat_id"`
}

type ExchangeConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout string
}

func (e ExchangeConfig) HTTPTimeout() (time.Duration, error) {
	if e.Timeout == "" {
		return 15 * time.Second, nil
	}
	return str2duration.ParseDuration(e.Timeout)
}

type DatabaseConfig struct {
	Path string
}

type AssetsConfig struct {
	File string
}

type RateLimitConfig struct {
	MaxRequests int    `mapstructure:"max_requests"`
	Window      string // e.g. "60s", "1m"
}

func (r RateLimitConfig) WindowDuration() (time.Duration, error) {
	return str2duration.ParseDuration(r.Window)
}

type MetricsConfig struct {
	Addr string
}

type Config struct {
	Telegram  TelegramConfig
	Exchange  ExchangeConfig
	Database  DatabaseConfig
	Assets    AssetsConfig
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Metrics   MetricsConfig
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")

	viper.SetDefault("database.path", "orders.db")
	viper.SetDefault("assets.file", "config/assets.json")
	viper.SetDefault("rate_limit.max_requests", 10)
	viper.SetDefault("rate_limit.window", "60s")
	viper.SetDefault("exchange.timeout", "15s")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("telegram.token is required")
	}
	if cfg.Telegram.AdminChatID == 0 {
		return nil, fmt.Errorf("telegram.admin_chat_id is required")
	}
	if cfg.Exchange.BaseURL == "" {
		return nil, fmt.Errorf("exchange.base_url is required")
	}
	if _, err := cfg.RateLimit.WindowDuration(); err != nil {
		return nil, fmt.Errorf("invalid rate_limit.window: %w", err)
	}
	if _, err := cfg.Exchange.HTTPTimeout(); err != nil {
		return nil, fmt.Errorf("invalid exchange.timeout: %w", err)
	}
	return &cfg, nil
}
