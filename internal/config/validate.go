package config

import (
	"fmt"
	"net/url"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	if c.Catalog.URL == "" {
		errs = append(errs, "catalog.url: required")
	} else if u, err := url.Parse(c.Catalog.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("catalog.url: not a valid URL: %q", c.Catalog.URL))
	}
	if c.Catalog.CacheTTL.Duration < 0 {
		errs = append(errs, "catalog.cache_ttl: must not be negative")
	}

	if c.Player.PollInterval.Duration < 0 {
		errs = append(errs, "player.poll_interval: must not be negative")
	}

	if c.Policy.MinStartMS < 0 {
		errs = append(errs, "policy.min_start_ms: must not be negative")
	}
	if c.Policy.MinStartExitMS < 0 {
		errs = append(errs, "policy.min_start_exit_ms: must not be negative")
	}
	if c.Policy.MinStartExitMS > c.Policy.MinStartMS {
		errs = append(errs, fmt.Sprintf("policy.min_start_exit_ms: must not exceed policy.min_start_ms (%d > %d)",
			c.Policy.MinStartExitMS, c.Policy.MinStartMS))
	}
	if c.Policy.FinishedRemainingMS < 0 {
		errs = append(errs, "policy.finished_remaining_ms: must not be negative")
	}
	if c.Policy.FinishedFraction <= 0 || c.Policy.FinishedFraction > 1 {
		errs = append(errs, fmt.Sprintf("policy.finished_fraction: must be in (0, 1], got %v", c.Policy.FinishedFraction))
	}

	if c.Events.Retention.Duration < 0 {
		errs = append(errs, "events.retention: must not be negative")
	}

	return errs
}
