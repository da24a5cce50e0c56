package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type APIConfig struct {
	Port          int           `yaml:"port"`
	SessionSecret string        `yaml:"session_secret"` // HMAC key for session tokens minted by the identity service
	RateLimit     int           `yaml:"rate_limit"`     // purchase requests per user per window
	RateWindow    time.Duration `yaml:"rate_window"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

// DriverConfig configures one gateway driver. Drivers not listed under
// payment.enabled stay registered off.
type DriverConfig struct {
	APIKey        string `yaml:"api_key"`
	Secret        string `yaml:"secret"` // callback signature secret
	BaseURL       string `yaml:"base_url"`
	CallbackURL   string `yaml:"callback_url"`
	Sandbox       bool   `yaml:"sandbox"`
	HTTPTimeoutMS int    `yaml:"http_timeout_ms"`
}

type PricingConfig struct {
	SubscriptionCap int64 `yaml:"subscription_cap"` // max base subscription price, minor units
	DiscountCap     int   `yaml:"discount_cap"`     // max bundle discount percent
}

type PaymentConfig struct {
	Enabled  []string      `yaml:"enabled"` // ordered driver ids; order is the selection order
	Paywall  DriverConfig  `yaml:"paywall"`
	Cardlink DriverConfig  `yaml:"cardlink"`
	Pricing  PricingConfig `yaml:"pricing"`
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	API      APIConfig      `yaml:"api"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Payment  PaymentConfig  `yaml:"payment"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.API.Port == 0 {
		cfg.API.Port = 8080
	}
	if cfg.API.RateLimit <= 0 {
		cfg.API.RateLimit = 30
	}
	if cfg.API.RateWindow <= 0 {
		cfg.API.RateWindow = time.Minute
	}
	if cfg.Redis.LockTTL <= 0 {
		cfg.Redis.LockTTL = 5 * time.Second
	}
	if cfg.Payment.Pricing.SubscriptionCap <= 0 {
		cfg.Payment.Pricing.SubscriptionCap = 1_000_000 // minor units
	}
	if cfg.Payment.Pricing.DiscountCap <= 0 {
		cfg.Payment.Pricing.DiscountCap = 90
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.API.SessionSecret == "" {
		return nil, errors.New("api.session_secret is required")
	}
	if len(cfg.Payment.Enabled) == 0 {
		return nil, errors.New("payment.enabled must list at least one driver")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
