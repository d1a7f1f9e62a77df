package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration values.
type Config struct {
	Secret           string        `mapstructure:"SECRET"`
	HTTPPort         string        `mapstructure:"HTTP_PORT"`
	Env              string        `mapstructure:"ENV"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	StorageDriver    string        `mapstructure:"STORAGE_DRIVER"`
	DatabaseDSN      string        `mapstructure:"DATABASE_DSN"`
	SeedCSV          string        `mapstructure:"SEED_CSV"`
	ExpiryWindowDays int           `mapstructure:"EXPIRY_WINDOW_DAYS"`
	DeleteConfirmTTL time.Duration `mapstructure:"DELETE_CONFIRM_TTL"`
	DemoEmail        string        `mapstructure:"DEMO_EMAIL"`
	DemoPassword     string        `mapstructure:"DEMO_PASSWORD"`
	DemoName         string        `mapstructure:"DEMO_NAME"`
	AutoLogin        bool          `mapstructure:"AUTO_LOGIN"`
	CORSOrigins      []string      `mapstructure:"-"`
}

var keys = []string{
	"SECRET", "HTTP_PORT", "ENV", "LOG_LEVEL", "STORAGE_DRIVER", "DATABASE_DSN",
	"SEED_CSV", "EXPIRY_WINDOW_DAYS", "DELETE_CONFIRM_TTL", "DEMO_EMAIL",
	"DEMO_PASSWORD", "DEMO_NAME", "AUTO_LOGIN", "CORS_ORIGINS",
}

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("SECRET", "dev_secret")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", "memory")
	v.SetDefault("DATABASE_DSN", "file:pharmacy.db?cache=shared")
	v.SetDefault("SEED_CSV", "assets/medicines.csv")
	v.SetDefault("EXPIRY_WINDOW_DAYS", 90)
	v.SetDefault("DELETE_CONFIRM_TTL", "5m")
	v.SetDefault("DEMO_EMAIL", "pharmacist@helio.local")
	v.SetDefault("DEMO_PASSWORD", "demo1234")
	v.SetDefault("DEMO_NAME", "Dr. Pharmacist")
	v.SetDefault("AUTO_LOGIN", false)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// A missing .env is fine.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	for _, o := range strings.Split(v.GetString("CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	if _, err := strconv.Atoi(cfg.HTTPPort); err != nil {
		return nil, fmt.Errorf("invalid HTTP_PORT %q", cfg.HTTPPort)
	}
	switch cfg.StorageDriver {
	case "memory", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if cfg.ExpiryWindowDays <= 0 {
		return nil, fmt.Errorf("EXPIRY_WINDOW_DAYS must be positive")
	}
	if cfg.DeleteConfirmTTL <= 0 {
		return nil, fmt.Errorf("DELETE_CONFIRM_TTL must be positive")
	}
	if cfg.IsProduction() && cfg.Secret == "dev_secret" {
		return nil, fmt.Errorf("SECRET must be set in production")
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ExpiryWindow is the look-ahead used for expiring-soon flags.
func (c *Config) ExpiryWindow() time.Duration {
	return time.Duration(c.ExpiryWindowDays) * 24 * time.Hour
}
