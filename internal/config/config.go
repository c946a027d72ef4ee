// Package config loads the server configuration.
//
// Sources, later ones winning:
//
//  1. built-in defaults
//  2. a .env file in the working directory, if present (only sets variables
//     that are not already in the environment)
//  3. a YAML file, if present
//  4. environment variables
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/splitfree/internal/calculator"
	"github.com/mmynk/splitfree/internal/storage/sqlstore"
)

// DefaultPath is the YAML file read when CONFIG_PATH is not set.
const DefaultPath = "config.yaml"

// Config is the complete server configuration.
type Config struct {
	HTTPPort        int
	ShutdownTimeout time.Duration

	DBDriver string
	DBPath   string // SQLite file
	DBDSN    string // MySQL DSN

	LogLevel  string
	LogFormat string

	Settlement calculator.Limits

	// AuditSchedule is a robfig/cron spec. Empty disables the audit job.
	AuditSchedule string
}

type configFile struct {
	Server struct {
		HTTPPort        int           `yaml:"http_port"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		Path   string `yaml:"path"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Settlement struct {
		MaxParties   *int `yaml:"max_parties"`
		SearchBudget *int `yaml:"search_budget"`
	} `yaml:"settlement"`
	Audit struct {
		Schedule *string `yaml:"schedule"`
	} `yaml:"audit"`
}

func defaults() Config {
	return Config{
		HTTPPort:        8080,
		ShutdownTimeout: 10 * time.Second,
		DBDriver:        sqlstore.DriverSQLite,
		DBPath:          "./data/splitfree.db",
		LogLevel:        "info",
		LogFormat:       "text",
		Settlement:      calculator.DefaultLimits,
		AuditSchedule:   "@every 1h",
	}
}

// Load reads .env from the working directory, then the YAML file at path
// (CONFIG_PATH or DefaultPath when path is empty), then the environment.
func Load(path string) (Config, error) {
	return load(".env", path)
}

func load(envFile, path string) (Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	if path == "" {
		path = envString("CONFIG_PATH", DefaultPath)
	}

	cfg := defaults()
	if err := cfg.applyFile(path); err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if f.Server.HTTPPort > 0 {
		c.HTTPPort = f.Server.HTTPPort
	}
	if f.Server.ShutdownTimeout > 0 {
		c.ShutdownTimeout = f.Server.ShutdownTimeout
	}
	if f.Database.Driver != "" {
		c.DBDriver = f.Database.Driver
	}
	if f.Database.Path != "" {
		c.DBPath = f.Database.Path
	}
	if f.Database.DSN != "" {
		c.DBDSN = f.Database.DSN
	}
	if f.Log.Level != "" {
		c.LogLevel = f.Log.Level
	}
	if f.Log.Format != "" {
		c.LogFormat = f.Log.Format
	}
	if f.Settlement.MaxParties != nil {
		c.Settlement.MaxParties = *f.Settlement.MaxParties
	}
	if f.Settlement.SearchBudget != nil {
		c.Settlement.SearchBudget = *f.Settlement.SearchBudget
	}
	if f.Audit.Schedule != nil {
		c.AuditSchedule = *f.Audit.Schedule
	}
	return nil
}

func (c *Config) applyEnv() error {
	var err error
	if c.HTTPPort, err = envInt("HTTP_PORT", c.HTTPPort); err != nil {
		return err
	}
	if c.Settlement.MaxParties, err = envInt("SETTLE_MAX_PARTIES", c.Settlement.MaxParties); err != nil {
		return err
	}
	if c.Settlement.SearchBudget, err = envInt("SETTLE_SEARCH_BUDGET", c.Settlement.SearchBudget); err != nil {
		return err
	}
	c.DBDriver = envString("DB_DRIVER", c.DBDriver)
	c.DBPath = envString("DB_PATH", c.DBPath)
	c.DBDSN = envString("DB_DSN", c.DBDSN)
	c.LogLevel = envString("LOG_LEVEL", c.LogLevel)
	c.LogFormat = envString("LOG_FORMAT", c.LogFormat)

	// Set but empty disables the job.
	if schedule, ok := os.LookupEnv("AUDIT_SCHEDULE"); ok {
		c.AuditSchedule = strings.TrimSpace(schedule)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port %d", c.HTTPPort)
	}
	switch c.DBDriver {
	case sqlstore.DriverSQLite:
		if c.DBPath == "" {
			return errors.New("sqlite driver requires a database path")
		}
	case sqlstore.DriverMySQL:
		if c.DBDSN == "" {
			return errors.New("mysql driver requires DB_DSN")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.DBDriver)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.LogFormat)
	}
	if c.Settlement.MaxParties < 0 || c.Settlement.SearchBudget < 0 {
		return errors.New("settlement limits must not be negative")
	}
	if c.Settlement.MaxParties > calculator.PartiesCeiling {
		return fmt.Errorf("settlement max parties %d exceeds %d", c.Settlement.MaxParties, calculator.PartiesCeiling)
	}
	return nil
}

// DSN returns the data source name for DBDriver.
func (c *Config) DSN() string {
	if c.DBDriver == sqlstore.DriverMySQL {
		return c.DBDSN
	}
	return c.DBPath
}

func envInt(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

func envString(name, fallback string) string {
	if raw := os.Getenv(name); raw != "" {
		return raw
	}
	return fallback
}
