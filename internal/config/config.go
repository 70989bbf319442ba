// Package config loads runtime settings for the donasi client from a .env
// file, an optional YAML file and the process environment, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every setting the client and the CLI need.
type Config struct {
	ServerURL   string        `yaml:"url_server"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	Env         string        `yaml:"env"`

	Log     LogConfig     `yaml:"log"`
	Session SessionConfig `yaml:"session"`
	Redis   RedisConfig   `yaml:"redis"`
	Outbox  OutboxConfig  `yaml:"outbox"`
	Stripe  StripeConfig  `yaml:"stripe"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// SessionConfig controls where the refresh cookie is persisted between runs.
// Backend is "file" or "redis".
type SessionConfig struct {
	Backend string `yaml:"backend"`
	File    string `yaml:"file"`
	Key     string `yaml:"key"`
}

type RedisConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DirectoryTTL time.Duration `yaml:"directory_ttl"`
}

// OutboxConfig selects the journal for history writes that failed after a
// successful balance update. Backend is "memory", "file" or "postgres".
type OutboxConfig struct {
	Backend string   `yaml:"backend"`
	File    string   `yaml:"file"`
	DB      DBConfig `yaml:"database"`
}

type DBConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN renders the postgres connection string gorm expects.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

type StripeConfig struct {
	SecretKey string `yaml:"secret_key"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	dir := defaultDir()
	return &Config{
		ServerURL:   "http://localhost:3000",
		HTTPTimeout: 15 * time.Second,
		Env:         "development",
		Log: LogConfig{
			Level: "info",
		},
		Session: SessionConfig{
			Backend: "file",
			File:    filepath.Join(dir, "session"),
		},
		Redis: RedisConfig{
			Host:         "localhost",
			Port:         "6379",
			DirectoryTTL: 10 * time.Minute,
		},
		Outbox: OutboxConfig{
			Backend: "file",
			File:    filepath.Join(dir, "outbox.json"),
			DB: DBConfig{
				Host:            "localhost",
				Port:            "5432",
				User:            "postgres",
				Password:        "postgres",
				Name:            "donasi",
				SSLMode:         "disable",
				MaxIdleConns:    2,
				MaxOpenConns:    5,
				ConnMaxLifetime: time.Hour,
			},
		},
	}
}

// Load reads .env, then the YAML file named by DONASI_CONFIG (if any), then
// the environment.
func Load() (*Config, error) {
	LoadEnv()

	cfg := Defaults()
	if path := GetEnv("DONASI_CONFIG", ""); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)

	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("DONASI_URL_SERVER must not be empty")
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.ServerURL = GetEnv("DONASI_URL_SERVER", cfg.ServerURL)
	cfg.HTTPTimeout = GetDurationEnv("DONASI_HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.Env = GetEnv("ENV", cfg.Env)

	cfg.Log.Level = GetEnv("DONASI_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Pretty = GetBoolEnv("DONASI_LOG_PRETTY", cfg.Log.Pretty)

	cfg.Session.Backend = GetEnv("DONASI_SESSION_BACKEND", cfg.Session.Backend)
	cfg.Session.File = GetEnv("DONASI_SESSION_FILE", cfg.Session.File)
	cfg.Session.Key = GetEnv("DONASI_SESSION_KEY", cfg.Session.Key)

	cfg.Redis.Enabled = GetBoolEnv("DONASI_REDIS_ENABLED", cfg.Redis.Enabled)
	cfg.Redis.Host = GetEnv("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Port = GetEnv("REDIS_PORT", cfg.Redis.Port)
	cfg.Redis.Password = GetEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = GetIntEnv("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.DirectoryTTL = GetDurationEnv("DONASI_DIRECTORY_TTL", cfg.Redis.DirectoryTTL)

	cfg.Outbox.Backend = GetEnv("DONASI_OUTBOX_BACKEND", cfg.Outbox.Backend)
	cfg.Outbox.File = GetEnv("DONASI_OUTBOX_FILE", cfg.Outbox.File)
	cfg.Outbox.DB.Host = GetEnv("DB_HOST", cfg.Outbox.DB.Host)
	cfg.Outbox.DB.Port = GetEnv("DB_PORT", cfg.Outbox.DB.Port)
	cfg.Outbox.DB.User = GetEnv("DB_USER", cfg.Outbox.DB.User)
	cfg.Outbox.DB.Password = GetEnv("DB_PASSWORD", cfg.Outbox.DB.Password)
	cfg.Outbox.DB.Name = GetEnv("DB_NAME", cfg.Outbox.DB.Name)
	cfg.Outbox.DB.SSLMode = GetEnv("DB_SSLMODE", cfg.Outbox.DB.SSLMode)
	cfg.Outbox.DB.MaxIdleConns = GetIntEnv("DB_MAX_IDLE_CONNS", cfg.Outbox.DB.MaxIdleConns)
	cfg.Outbox.DB.MaxOpenConns = GetIntEnv("DB_MAX_OPEN_CONNS", cfg.Outbox.DB.MaxOpenConns)
	cfg.Outbox.DB.ConnMaxLifetime = GetDurationEnv("DB_CONN_MAX_LIFETIME", cfg.Outbox.DB.ConnMaxLifetime)

	cfg.Stripe.SecretKey = GetEnv("STRIPE_SECRET_KEY", cfg.Stripe.SecretKey)
}

// IsProduction reports whether the client talks to a production backend.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	_ = godotenv.Load()
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetBoolEnv returns a bool environment variable or a default value.
func GetBoolEnv(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func defaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "donasi")
	}
	return ".donasi"
}
