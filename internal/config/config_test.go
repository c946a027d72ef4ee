package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/splitfree/internal/calculator"
	"github.com/mmynk/splitfree/internal/storage/sqlstore"
)

var envVars = []string{
	"HTTP_PORT", "DB_DRIVER", "DB_PATH", "DB_DSN", "LOG_LEVEL", "LOG_FORMAT",
	"SETTLE_MAX_PARTIES", "SETTLE_SEARCH_BUDGET", "AUDIT_SCHEDULE", "CONFIG_PATH",
}

// clearEnv unsets every variable Load reads and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range envVars {
		if old, ok := os.LookupEnv(name); ok {
			t.Cleanup(func() { os.Setenv(name, old) })
		} else {
			t.Cleanup(func() { os.Unsetenv(name) })
		}
		os.Unsetenv(name)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults when nothing is configured", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		cfg, err := load(filepath.Join(dir, ".env"), filepath.Join(dir, "config.yaml"))
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if cfg.HTTPPort != 8080 {
			t.Errorf("Expected port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.DBDriver != sqlstore.DriverSQLite {
			t.Errorf("Expected sqlite driver, got %q", cfg.DBDriver)
		}
		if cfg.Settlement != calculator.DefaultLimits {
			t.Errorf("Expected default limits, got %+v", cfg.Settlement)
		}
		if cfg.AuditSchedule != "@every 1h" {
			t.Errorf("Expected hourly audit, got %q", cfg.AuditSchedule)
		}
		if cfg.DSN() != cfg.DBPath {
			t.Errorf("Expected sqlite DSN to be the path, got %q", cfg.DSN())
		}
	})

	t.Run("yaml file overrides defaults", func(t *testing.T) {
		clearEnv(t)
		path := writeFile(t, "config.yaml", `
server:
  http_port: 9090
  shutdown_timeout: 3s
database:
  driver: mysql
  dsn: "user:pass@tcp(localhost:3306)/splitfree"
log:
  level: debug
  format: json
settlement:
  max_parties: 0
  search_budget: 100
audit:
  schedule: ""
`)
		cfg, err := load(filepath.Join(t.TempDir(), ".env"), path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if cfg.HTTPPort != 9090 {
			t.Errorf("Expected port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.ShutdownTimeout != 3*time.Second {
			t.Errorf("Expected 3s shutdown timeout, got %s", cfg.ShutdownTimeout)
		}
		if cfg.DSN() != "user:pass@tcp(localhost:3306)/splitfree" {
			t.Errorf("Unexpected DSN %q", cfg.DSN())
		}
		if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
			t.Errorf("Unexpected log settings %q/%q", cfg.LogLevel, cfg.LogFormat)
		}
		if cfg.Settlement.MaxParties != 0 || cfg.Settlement.SearchBudget != 100 {
			t.Errorf("Unexpected limits %+v", cfg.Settlement)
		}
		if cfg.AuditSchedule != "" {
			t.Errorf("Expected audit disabled, got %q", cfg.AuditSchedule)
		}
	})

	t.Run("environment overrides yaml", func(t *testing.T) {
		clearEnv(t)
		path := writeFile(t, "config.yaml", "server:\n  http_port: 9090\n")
		t.Setenv("HTTP_PORT", "7070")
		t.Setenv("SETTLE_MAX_PARTIES", "12")
		t.Setenv("AUDIT_SCHEDULE", "")

		cfg, err := load(filepath.Join(t.TempDir(), ".env"), path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if cfg.HTTPPort != 7070 {
			t.Errorf("Expected port 7070, got %d", cfg.HTTPPort)
		}
		if cfg.Settlement.MaxParties != 12 {
			t.Errorf("Expected max parties 12, got %d", cfg.Settlement.MaxParties)
		}
		if cfg.AuditSchedule != "" {
			t.Errorf("Expected empty AUDIT_SCHEDULE to disable the job, got %q", cfg.AuditSchedule)
		}
	})

	t.Run("dotenv fills unset variables", func(t *testing.T) {
		clearEnv(t)
		envFile := writeFile(t, ".env", "DB_PATH=/tmp/from-dotenv.db\nLOG_LEVEL=warn\n")
		t.Setenv("LOG_LEVEL", "error")

		cfg, err := load(envFile, filepath.Join(t.TempDir(), "config.yaml"))
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if cfg.DBPath != "/tmp/from-dotenv.db" {
			t.Errorf("Expected DB path from .env, got %q", cfg.DBPath)
		}
		if cfg.LogLevel != "error" {
			t.Errorf("Expected environment to win over .env, got %q", cfg.LogLevel)
		}
	})

	t.Run("CONFIG_PATH selects the yaml file", func(t *testing.T) {
		clearEnv(t)
		path := writeFile(t, "custom.yaml", "log:\n  format: json\n")
		t.Setenv("CONFIG_PATH", path)

		cfg, err := load(filepath.Join(t.TempDir(), ".env"), "")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if cfg.LogFormat != "json" {
			t.Errorf("Expected json format, got %q", cfg.LogFormat)
		}
	})

	t.Run("invalid settings are rejected", func(t *testing.T) {
		tests := []struct {
			name string
			env  map[string]string
			yaml string
		}{
			{name: "non-numeric port", env: map[string]string{"HTTP_PORT": "http"}},
			{name: "port out of range", env: map[string]string{"HTTP_PORT": "70000"}},
			{name: "unknown driver", env: map[string]string{"DB_DRIVER": "postgres"}},
			{name: "mysql without dsn", env: map[string]string{"DB_DRIVER": "mysql"}},
			{name: "unknown log format", env: map[string]string{"LOG_FORMAT": "xml"}},
			{name: "negative budget", env: map[string]string{"SETTLE_SEARCH_BUDGET": "-1"}},
			{name: "max parties above ceiling", env: map[string]string{"SETTLE_MAX_PARTIES": "4096"}},
			{name: "malformed yaml", yaml: "server: [unclosed"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				clearEnv(t)
				for k, v := range tt.env {
					t.Setenv(k, v)
				}
				path := filepath.Join(t.TempDir(), "config.yaml")
				if tt.yaml != "" {
					path = writeFile(t, "config.yaml", tt.yaml)
				}
				if _, err := load(filepath.Join(t.TempDir(), ".env"), path); err == nil {
					t.Error("Expected error, got nil")
				}
			})
		}
	})
}
