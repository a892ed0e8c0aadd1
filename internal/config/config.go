package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	minProductionSecretLen = 32
)

// Config holds every runtime setting. Values come from the process
// environment, optionally seeded from a .env file.
type Config struct {
	AppEnv          string        `mapstructure:"APP_ENV"`
	Port            string        `mapstructure:"PORT"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	SessionSecret   string        `mapstructure:"SESSION_SECRET"`
	SessionName     string        `mapstructure:"SESSION_NAME"`
	SessionTTL      time.Duration `mapstructure:"SESSION_TTL"`
	BcryptCost      int           `mapstructure:"BCRYPT_COST"`
	LoginRateLimit  float64       `mapstructure:"LOGIN_RATE_LIMIT"`
	LoginRateBurst  int           `mapstructure:"LOGIN_RATE_BURST"`
	OTELEndpoint    string        `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTELServiceName string        `mapstructure:"OTEL_SERVICE_NAME"`
}

var defaults = map[string]any{
	"APP_ENV":                     EnvDevelopment,
	"PORT":                        "3001",
	"DATABASE_URL":                "sqlite://technews.db",
	"SESSION_SECRET":              "super secret secret",
	"SESSION_NAME":                "technews_session",
	"SESSION_TTL":                 "24h",
	"BCRYPT_COST":                 bcrypt.DefaultCost,
	"LOGIN_RATE_LIMIT":            1.0,
	"LOGIN_RATE_BURST":            5,
	"OTEL_EXPORTER_OTLP_ENDPOINT": "",
	"OTEL_SERVICE_NAME":           "technews",
}

// Load reads .env (if present) and the environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// Validate rejects settings the server cannot run safely with.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL must not be empty"))
	}
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET must not be empty"))
	} else if c.IsProduction() && len(c.SessionSecret) < minProductionSecretLen {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least %d characters in production", minProductionSecretLen))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.LoginRateLimit <= 0 || c.LoginRateBurst <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_LIMIT and LOGIN_RATE_BURST must be positive"))
	}
	return errors.Join(errs...)
}
