package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr string `yaml:"http_addr" validate:"required"`
	GRPCAddr string `yaml:"grpc_addr"` // empty disables the gRPC listener

	// DB
	Env    string `yaml:"env" validate:"oneof=dev prod"`
	DBPath string `yaml:"db_path" validate:"required"`
	// SeedDev loads random fixtures on startup (dev only).
	SeedDev bool `yaml:"seed_dev"`

	// Entry timestamps are wall-clock text in this zone.
	TimeZone             string `yaml:"time_zone" validate:"required"`
	DefaultWindowMinutes int    `yaml:"default_window_minutes" validate:"gt=0"`

	// Entry retention
	EntryRetentionDays int `yaml:"entry_retention_days" validate:"gte=0"` // 0 = keep forever
	PruneIntervalHours int `yaml:"prune_interval_hours" validate:"gt=0"`

	LogFormat   string `yaml:"log_format" validate:"oneof=text json"`
	LogLevel    string `yaml:"log_level" validate:"oneof=debug info warn error"`
	TraceStdout bool   `yaml:"trace_stdout"`
}

func Default() Config {
	return Config{
		HTTPAddr:             ":8080",
		GRPCAddr:             ":9090",
		Env:                  "dev",
		DBPath:               "./data/parking.db",
		TimeZone:             "Local",
		DefaultWindowMinutes: 120,
		EntryRetentionDays:   0,
		PruneIntervalHours:   6,
		LogFormat:            "text",
		LogLevel:             "info",
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then PARKING_* environment variables, and
// validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg = applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv is Load without a config file. Invalid settings fall back to the
// defaults.
func FromEnv() Config {
	cfg, err := Load("")
	if err != nil {
		return Default()
	}
	return cfg
}

func applyEnv(cfg Config) Config {
	cfg.HTTPAddr = getenvDefault("PARKING_HTTP_ADDR", cfg.HTTPAddr)
	cfg.GRPCAddr = getenvDefault("PARKING_GRPC_ADDR", cfg.GRPCAddr)
	cfg.Env = strings.ToLower(getenvDefault("PARKING_ENV", cfg.Env))
	cfg.DBPath = getenvDefault("PARKING_DB_PATH", cfg.DBPath)
	cfg.SeedDev = getenvBool("PARKING_SEED_DEV", cfg.SeedDev)
	cfg.TimeZone = getenvDefault("PARKING_TIME_ZONE", cfg.TimeZone)
	cfg.DefaultWindowMinutes = getenvInt("PARKING_DEFAULT_WINDOW_MINUTES", cfg.DefaultWindowMinutes)
	cfg.EntryRetentionDays = getenvInt("PARKING_ENTRY_RETENTION_DAYS", cfg.EntryRetentionDays)
	cfg.PruneIntervalHours = getenvInt("PARKING_PRUNE_INTERVAL_HOURS", cfg.PruneIntervalHours)
	cfg.LogFormat = strings.ToLower(getenvDefault("PARKING_LOG_FORMAT", cfg.LogFormat))
	cfg.LogLevel = strings.ToLower(getenvDefault("PARKING_LOG_LEVEL", cfg.LogLevel))
	cfg.TraceStdout = getenvBool("PARKING_TRACE_STDOUT", cfg.TraceStdout)
	return cfg
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that TimeZone names a known zone.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config: %s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves TimeZone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("config: time_zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getenvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return strings.EqualFold(v, "true") || v == "1"
}
