// Package config loads desk configuration from the environment, an optional
// .env file and an optional config file using Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/ticketflow/pkg/validate"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend names accepted by SESSION_BACKEND and TICKET_BACKEND.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds application configuration.
type Config struct {
	// HTTPAddr is the address of the HTTP transport (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// MetricsAddr serves /metrics when set.
	MetricsAddr string `mapstructure:"METRICS_ADDR"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	// SessionBackend is memory, file or redis.
	SessionBackend string `mapstructure:"SESSION_BACKEND"`
	// SessionDir is the directory of the file session backend.
	SessionDir string `mapstructure:"SESSION_DIR"`
	// SessionTTL expires idle sessions in the redis backend; zero keeps them.
	SessionTTL time.Duration `mapstructure:"SESSION_TTL"`
	// SessionEncryptionKey is a base64 32-byte AES key; empty disables encryption.
	SessionEncryptionKey string `mapstructure:"SESSION_ENCRYPTION_KEY"`
	// SessionFallbackKeys are retired keys still accepted for reads.
	SessionFallbackKeys []string `mapstructure:"SESSION_FALLBACK_KEYS"`
	// DistributedLock serializes a user's events across replicas through Redis.
	DistributedLock bool `mapstructure:"DISTRIBUTED_LOCK"`

	// TicketBackend is memory, redis or postgres.
	TicketBackend string `mapstructure:"TICKET_BACKEND"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPrefix   string `mapstructure:"REDIS_PREFIX"`

	// DatabaseURL is the Postgres DSN of the postgres ticket backend.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// FormSchema is a YAML form file; empty uses the built-in form.
	FormSchema     string `mapstructure:"FORM_SCHEMA"`
	PhoneMinDigits int    `mapstructure:"PHONE_MIN_DIGITS"`
	ListLimit      int    `mapstructure:"LIST_LIMIT"`
	// StorageTimeout bounds each ticket storage call; zero means no bound.
	StorageTimeout time.Duration `mapstructure:"STORAGE_TIMEOUT"`

	// NotifyWebhookURL receives admin notifications; empty logs them instead.
	NotifyWebhookURL string   `mapstructure:"NOTIFY_WEBHOOK_URL"`
	AdminIDs         []string `mapstructure:"ADMIN_IDS"`
	// NewTicketTemplate and TicketDeletedTemplate are text/template files.
	NewTicketTemplate     string `mapstructure:"NEW_TICKET_TEMPLATE"`
	TicketDeletedTemplate string `mapstructure:"TICKET_DELETED_TEMPLATE"`
}

// Keys lists every configuration key.
var Keys = []string{
	"HTTP_ADDR", "METRICS_ADDR", "LOG_LEVEL",
	"SESSION_BACKEND", "SESSION_DIR", "SESSION_TTL", "SESSION_ENCRYPTION_KEY", "SESSION_FALLBACK_KEYS", "DISTRIBUTED_LOCK",
	"TICKET_BACKEND",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_PREFIX",
	"DATABASE_URL",
	"FORM_SCHEMA", "PHONE_MIN_DIGITS", "LIST_LIMIT", "STORAGE_TIMEOUT",
	"NOTIFY_WEBHOOK_URL", "ADMIN_IDS", "NEW_TICKET_TEMPLATE", "TICKET_DELETED_TEMPLATE",
}

// New returns a Viper instance with defaults and environment binding.
// configFile, when set, is read as well (format from its extension).
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("METRICS_ADDR", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SESSION_BACKEND", BackendMemory)
	v.SetDefault("SESSION_DIR", ".ticketflow/sessions")
	v.SetDefault("SESSION_TTL", "0s")
	v.SetDefault("SESSION_ENCRYPTION_KEY", "")
	v.SetDefault("SESSION_FALLBACK_KEYS", "")
	v.SetDefault("DISTRIBUTED_LOCK", false)
	v.SetDefault("TICKET_BACKEND", BackendMemory)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PREFIX", "ticketflow:")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("FORM_SCHEMA", "")
	v.SetDefault("PHONE_MIN_DIGITS", validate.DefaultPhoneMinDigits)
	v.SetDefault("LIST_LIMIT", 5)
	v.SetDefault("STORAGE_TIMEOUT", "5s")
	v.SetDefault("NOTIFY_WEBHOOK_URL", "")
	v.SetDefault("ADMIN_IDS", "")
	v.SetDefault("NEW_TICKET_TEMPLATE", "")
	v.SetDefault("TICKET_DELETED_TEMPLATE", "")

	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if strings.HasSuffix(configFile, ".env") {
			v.SetConfigType("env")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}
	return v, nil
}

// Load reads .env (if present), then builds and validates Config.
// Env vars override .env; a missing .env is ignored.
func Load(configFile string) (*Config, error) {
	LoadDotEnv()
	v, err := New(configFile)
	if err != nil {
		return nil, err
	}
	return Decode(v)
}

// LoadDotEnv loads .env from the working directory, falling back to its
// parent. Variables already set are not overridden.
func LoadDotEnv() {
	for _, path := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err == nil {
			return
		}
	}
}

// Decode unmarshals and validates the configuration held by v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.AdminIDs = splitList(cfg.AdminIDs)
	cfg.SessionFallbackKeys = splitList(cfg.SessionFallbackKeys)
	cfg.SessionBackend = strings.ToLower(strings.TrimSpace(cfg.SessionBackend))
	cfg.TicketBackend = strings.ToLower(strings.TrimSpace(cfg.TicketBackend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks backend names and their required settings.
func (c *Config) Validate() error {
	switch c.SessionBackend {
	case BackendMemory, BackendRedis:
	case BackendFile:
		if c.SessionDir == "" {
			return errors.New("config: SESSION_DIR must be set for the file session backend")
		}
	default:
		return fmt.Errorf("config: unknown SESSION_BACKEND %q", c.SessionBackend)
	}

	switch c.TicketBackend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL must be set for the postgres ticket backend")
		}
	default:
		return fmt.Errorf("config: unknown TICKET_BACKEND %q", c.TicketBackend)
	}

	if c.UsesRedis() && c.RedisAddr == "" {
		return errors.New("config: REDIS_ADDR must be set")
	}
	if c.PhoneMinDigits < 1 {
		return errors.New("config: PHONE_MIN_DIGITS must be at least 1")
	}
	if c.ListLimit < 1 {
		return errors.New("config: LIST_LIMIT must be at least 1")
	}
	if c.StorageTimeout < 0 || c.SessionTTL < 0 {
		return errors.New("config: durations must not be negative")
	}
	return nil
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.SessionBackend == BackendRedis || c.TicketBackend == BackendRedis || c.DistributedLock
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, p := range strings.Split(item, ",") {
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
