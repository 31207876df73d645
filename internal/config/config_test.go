package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
[catalog]
url = "http://127.0.0.1:8080"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("expected default host, got %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 8796 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
	if cfg.Server.LogLevel != "info" {
		t.Errorf("expected default log level, got %q", cfg.Server.LogLevel)
	}
	if cfg.Database.Path != "./data/playhead.db" {
		t.Errorf("expected default db path, got %q", cfg.Database.Path)
	}
	if cfg.Policy.MinStartMS != 15_000 || cfg.Policy.MinStartExitMS != 5_000 {
		t.Errorf("expected default min-start thresholds, got %d/%d",
			cfg.Policy.MinStartMS, cfg.Policy.MinStartExitMS)
	}
	if cfg.Policy.FinishedRemainingMS != 45_000 || cfg.Policy.FinishedFraction != 0.97 {
		t.Errorf("expected default finished thresholds, got %d/%v",
			cfg.Policy.FinishedRemainingMS, cfg.Policy.FinishedFraction)
	}
	if cfg.Player.PollInterval.Duration != time.Second {
		t.Errorf("expected default poll interval, got %v", cfg.Player.PollInterval)
	}
}

func TestLoad_EnvSubstitution(t *testing.T) {
	t.Setenv("PLAYHEAD_TEST_CATALOG", "http://catalog.example:9000")

	path := writeConfig(t, `
[catalog]
url = "${PLAYHEAD_TEST_CATALOG}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Catalog.URL != "http://catalog.example:9000" {
		t.Errorf("expected substituted URL, got %q", cfg.Catalog.URL)
	}
}

func TestLoad_MissingEnvVar(t *testing.T) {
	path := writeConfig(t, `
[catalog]
url = "${PLAYHEAD_TEST_NONEXISTENT_VAR_98765}"
`)

	_, err := Load(path)
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if len(cerr.Missing) != 1 || cerr.Missing[0] != "PLAYHEAD_TEST_NONEXISTENT_VAR_98765" {
		t.Errorf("expected missing var reported, got %v", cerr.Missing)
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 99999

[catalog]
url = "http://127.0.0.1:8080"

[policy]
finished_fraction = 1.5
`)

	_, err := Load(path)
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if len(cerr.Errors) != 2 {
		t.Errorf("expected 2 validation errors, got %v", cerr.Errors)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWriteDefault_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("default config must load cleanly: %v", err)
	}
}
