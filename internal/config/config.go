// Package config handles TOML configuration loading with environment
// variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Player   PlayerConfig   `toml:"player"`
	Policy   PolicyConfig   `toml:"policy"`
	Events   EventsConfig   `toml:"events"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type CatalogConfig struct {
	URL      string   `toml:"url"`
	CacheTTL Duration `toml:"cache_ttl"`
}

type PlayerConfig struct {
	// PollInterval is how often the playing position is sampled.
	PollInterval Duration `toml:"poll_interval"`
}

// PolicyConfig tunes the continuation thresholds. Zero values take the
// built-in defaults.
type PolicyConfig struct {
	MinStartMS          int64   `toml:"min_start_ms"`
	MinStartExitMS      int64   `toml:"min_start_exit_ms"`
	FinishedRemainingMS int64   `toml:"finished_remaining_ms"`
	FinishedFraction    float64 `toml:"finished_fraction"`
}

type EventsConfig struct {
	// Retention bounds how long persisted events are kept before pruning.
	Retention Duration `toml:"retention"`
}

// Load reads and parses the configuration file. Unresolved environment
// variables and validation failures are both reported through ConfigError.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()

	cerr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cerr.HasErrors() {
		return nil, cerr
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8796
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/playhead.db"
	}
	if c.Catalog.CacheTTL.Duration == 0 {
		c.Catalog.CacheTTL.Duration = 6 * time.Hour
	}
	if c.Player.PollInterval.Duration == 0 {
		c.Player.PollInterval.Duration = time.Second
	}
	if c.Policy.MinStartMS == 0 {
		c.Policy.MinStartMS = 15_000
	}
	if c.Policy.MinStartExitMS == 0 {
		c.Policy.MinStartExitMS = 5_000
	}
	if c.Policy.FinishedRemainingMS == 0 {
		c.Policy.FinishedRemainingMS = 45_000
	}
	if c.Policy.FinishedFraction == 0 {
		c.Policy.FinishedFraction = 0.97
	}
	if c.Events.Retention.Duration == 0 {
		c.Events.Retention.Duration = 30 * 24 * time.Hour
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default}, and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*)|:\?([^}]*))?\}`)

// substituteEnvVars expands environment references in the raw config text.
// Unset variables without a default are reported in missing and left
// unchanged so the error message shows what was expected.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name := groups[1]

		if value := os.Getenv(name); value != "" {
			return value
		}

		switch {
		case strings.HasPrefix(groups[2], ":-"):
			return groups[3]
		case strings.HasPrefix(groups[2], ":?"):
			missing = append(missing, fmt.Sprintf("%s: %s", name, groups[4]))
			return match
		default:
			missing = append(missing, name)
			return match
		}
	})
	return result, missing
}
