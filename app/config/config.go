// Package config loads application settings with viper.
//
// Values come from three layers, later ones winning: built-in defaults, an
// optional YAML file named by CONFIG_FILE, and environment variables. A
// .env file in the working directory is loaded into the environment first
// when present. Every key can also be set as MWM_<KEY>, with dots turned
// into underscores (MWM_MAIL_FROM); those win over the plain names.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dmitrymomot/mwm/pkg/cookie"
)

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// EnvPrefix prefixes the automatic environment names.
const EnvPrefix = "MWM"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the full application configuration.
type Config struct {
	Env           string         `mapstructure:"env"`
	Address       string         `mapstructure:"address"`
	BaseURL       string         `mapstructure:"base_url"`
	CookieSecret  string         `mapstructure:"cookie_secret"`
	DatabaseURL   string         `mapstructure:"database_url"`
	RedisURL      string         `mapstructure:"redis_url"`
	SentryDSN     string         `mapstructure:"sentry_dsn"`
	Mail          MailConfig     `mapstructure:"mail"`
	Storage       StorageConfig  `mapstructure:"storage"`
	Password      PasswordConfig `mapstructure:"password"`
	SessionMaxAge time.Duration  `mapstructure:"session_max_age"`
}

// MailConfig configures outgoing email through Resend.
type MailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
	FromName     string `mapstructure:"from_name"`
}

// StorageConfig configures S3-compatible object storage for avatars.
type StorageConfig struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	PublicURL string `mapstructure:"public_url"`
	PathStyle bool   `mapstructure:"path_style"`
}

// PasswordConfig holds the argon2id cost parameters.
type PasswordConfig struct {
	Memory uint32 `mapstructure:"memory"` // KiB
	Time   uint32 `mapstructure:"time"`
}

// envNames maps config keys to their conventional environment variables.
var envNames = map[string]string{
	"env":                 "APP_ENV",
	"address":             "ADDRESS",
	"base_url":            "BASE_URL",
	"cookie_secret":       "COOKIE_SECRET",
	"database_url":        "DATABASE_URL",
	"redis_url":           "REDIS_URL",
	"sentry_dsn":          "SENTRY_DSN",
	"mail.resend_api_key": "RESEND_API_KEY",
	"mail.from":           "MAIL_FROM",
	"mail.from_name":      "MAIL_FROM_NAME",
	"storage.bucket":      "S3_BUCKET",
	"storage.region":      "S3_REGION",
	"storage.endpoint":    "S3_ENDPOINT",
	"storage.access_key":  "S3_ACCESS_KEY",
	"storage.secret_key":  "S3_SECRET_KEY",
	"storage.public_url":  "S3_PUBLIC_URL",
	"storage.path_style":  "S3_PATH_STYLE",
	"password.memory":     "ARGON2_MEMORY",
	"password.time":       "ARGON2_TIME",
	"session_max_age":     "SESSION_MAX_AGE",
	"port":                "PORT",
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Env:           EnvDevelopment,
		Address:       ":8080",
		BaseURL:       "http://localhost:8080",
		Mail:          MailConfig{From: "noreply@example.com", FromName: "mwm"},
		Storage:       StorageConfig{Region: "us-east-1"},
		Password:      PasswordConfig{Memory: 64 * 1024, Time: 2},
		SessionMaxAge: 30 * 24 * time.Hour,
	}
}

func newViper() *viper.Viper {
	v := viper.New()

	d := Default()
	v.SetDefault("env", d.Env)
	v.SetDefault("address", d.Address)
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("mail.from", d.Mail.From)
	v.SetDefault("mail.from_name", d.Mail.FromName)
	v.SetDefault("storage.region", d.Storage.Region)
	v.SetDefault("password.memory", d.Password.Memory)
	v.SetDefault("password.time", d.Password.Time)
	v.SetDefault("session_max_age", d.SessionMaxAge)

	for key, env := range envNames {
		_ = v.BindEnv(key, env)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads .env, the optional CONFIG_FILE and the environment, then
// validates the result.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := newViper()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if port := v.GetString("port"); port != "" && os.Getenv("ADDRESS") == "" {
		cfg.Address = ":" + port
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required settings.
func (c Config) Validate() error {
	var errs []error
	switch c.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		errs = append(errs, fmt.Errorf("APP_ENV must be one of development, production or test, got %q", c.Env))
	}
	if c.Address == "" {
		errs = append(errs, errors.New("ADDRESS is required"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.IsProduction() && cookie.ValidateSecret(c.CookieSecret) != nil {
		errs = append(errs, fmt.Errorf("COOKIE_SECRET must be at least %d bytes in production", cookie.MinSecretLen))
	}
	if c.Password.Memory < 8*1024 || c.Password.Time == 0 {
		errs = append(errs, errors.New("argon2 memory must be at least 8192 KiB and time at least 1"))
	}
	if c.SessionMaxAge <= 0 {
		errs = append(errs, errors.New("SESSION_MAX_AGE must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func (c Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Enabled reports whether a Resend key is configured.
func (c MailConfig) Enabled() bool {
	return c.ResendAPIKey != ""
}

// Enabled reports whether object storage is configured.
func (c StorageConfig) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}
