// ABOUTME: Environment-based configuration for providers, calendars, and cache
// ABOUTME: Validates provider setup before any fetch is attempted
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/harperreed/punchcard/cache"
)

// Provider name constants as they appear in PUNCHCARD_PROVIDERS and
// PUNCHCARD_CALENDARS.
const (
	ProviderGitHub = "github"
	ProviderGitLab = "gitlab"
	CalendarGoogle = "gcal"
	CalendarICS    = "ics"
)

// Config holds everything the CLI needs to build the provider set. Provider
// order is enablement order, which fixes the merge order of day payloads.
type Config struct {
	Providers []string
	Calendars []string

	GitHubUsername string
	GitHubToken    string
	GitLabToken    string
	ICSURL         string

	CacheTTL time.Duration
}

// Load reads configuration from the environment. A .env file, if present,
// has already been loaded by main via godotenv.
func Load() (*Config, error) {
	cfg := &Config{
		Providers:      splitList(os.Getenv("PUNCHCARD_PROVIDERS")),
		Calendars:      splitList(os.Getenv("PUNCHCARD_CALENDARS")),
		GitHubUsername: os.Getenv("GITHUB_USERNAME"),
		GitHubToken:    os.Getenv("GITHUB_TOKEN"),
		GitLabToken:    os.Getenv("GITLAB_TOKEN"),
		ICSURL:         os.Getenv("PUNCHCARD_ICS_URL"),
		CacheTTL:       cache.DefaultTTL,
	}

	if ttl := os.Getenv("PUNCHCARD_CACHE_TTL"); ttl != "" {
		parsed, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid PUNCHCARD_CACHE_TTL %q: %w", ttl, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("PUNCHCARD_CACHE_TTL must be positive, got %q", ttl)
		}
		cfg.CacheTTL = parsed
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate catches misconfiguration before any I/O happens.
func (c *Config) validate() error {
	if len(c.Providers) == 0 && len(c.Calendars) == 0 {
		return fmt.Errorf("no providers enabled: set PUNCHCARD_PROVIDERS and/or PUNCHCARD_CALENDARS")
	}

	for _, p := range c.Providers {
		switch p {
		case ProviderGitHub:
			if c.GitHubUsername == "" {
				return fmt.Errorf("github provider enabled but GITHUB_USERNAME is not set")
			}
		case ProviderGitLab:
			if c.GitLabToken == "" {
				return fmt.Errorf("gitlab provider enabled but GITLAB_TOKEN is not set")
			}
		default:
			return fmt.Errorf("unknown provider %q (valid: github, gitlab)", p)
		}
	}

	for _, cal := range c.Calendars {
		switch cal {
		case CalendarGoogle:
			// Token presence is checked at client build time; the OAuth
			// flow may not have run yet.
		case CalendarICS:
			if c.ICSURL == "" {
				return fmt.Errorf("ics calendar enabled but PUNCHCARD_ICS_URL is not set")
			}
		default:
			return fmt.Errorf("unknown calendar %q (valid: gcal, ics)", cal)
		}
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
