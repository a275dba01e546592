// Package config provides environment-driven configuration for the server
// and its collaborators.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// AutomationConfig holds configuration for the form automation layer
// (page fetching, headless browser, schema caching).
type AutomationConfig struct {
	NavTimeout    time.Duration // per-page navigation budget
	SubmitTimeout time.Duration // full fill-and-submit budget
	Headless      bool
	CacheTTL      time.Duration // how long an extracted form schema stays fresh
	SkipCache     bool          // force fresh extraction on every request
}

// NewAutomationConfig creates an automation configuration from environment
// variables. It reads AUTOMATION_NAV_TIMEOUT_SECONDS (default: 30),
// AUTOMATION_SUBMIT_TIMEOUT_SECONDS (default: 90), AUTOMATION_HEADLESS
// (default: true), AUTOMATION_CACHE_TTL_MINUTES (default: 15) and
// AUTOMATION_SKIP_CACHE (default: false).
func NewAutomationConfig() (*AutomationConfig, error) {
	navSeconds, err := envInt("AUTOMATION_NAV_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	submitSeconds, err := envInt("AUTOMATION_SUBMIT_TIMEOUT_SECONDS", 90)
	if err != nil {
		return nil, err
	}
	ttlMinutes, err := envInt("AUTOMATION_CACHE_TTL_MINUTES", 15)
	if err != nil {
		return nil, err
	}

	config := &AutomationConfig{
		NavTimeout:    time.Duration(navSeconds) * time.Second,
		SubmitTimeout: time.Duration(submitSeconds) * time.Second,
		Headless:      envBool("AUTOMATION_HEADLESS", true),
		CacheTTL:      time.Duration(ttlMinutes) * time.Minute,
		SkipCache:     envBool("AUTOMATION_SKIP_CACHE", false),
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *AutomationConfig) normalize() error {
	if c.NavTimeout < time.Second {
		return fmt.Errorf("AUTOMATION_NAV_TIMEOUT_SECONDS must be at least 1 second, got: %s", c.NavTimeout)
	}
	if c.SubmitTimeout < c.NavTimeout {
		return fmt.Errorf("AUTOMATION_SUBMIT_TIMEOUT_SECONDS must be at least the navigation timeout")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("AUTOMATION_CACHE_TTL_MINUTES must be non-negative")
	}
	return nil
}

// ExtractorConfig holds configuration for the external profile extraction
// service. BaseURL empty means extraction is disabled; CV uploads are then
// stored without attribute extraction.
type ExtractorConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewExtractorConfig creates an extractor configuration from environment
// variables. It reads PROFILE_EXTRACTOR_URL (optional), PROFILE_EXTRACTOR_KEY
// and PROFILE_EXTRACTOR_TIMEOUT_SECONDS (default: 20).
func NewExtractorConfig() (*ExtractorConfig, error) {
	timeoutSeconds, err := envInt("PROFILE_EXTRACTOR_TIMEOUT_SECONDS", 20)
	if err != nil {
		return nil, err
	}

	config := &ExtractorConfig{
		BaseURL: os.Getenv("PROFILE_EXTRACTOR_URL"),
		APIKey:  os.Getenv("PROFILE_EXTRACTOR_KEY"),
		Timeout: time.Duration(timeoutSeconds) * time.Second,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// Enabled reports whether an extraction service is configured.
func (c *ExtractorConfig) Enabled() bool {
	return c.BaseURL != ""
}

// normalize validates the configuration.
func (c *ExtractorConfig) normalize() error {
	if c.Timeout < time.Second {
		return fmt.Errorf("PROFILE_EXTRACTOR_TIMEOUT_SECONDS must be at least 1 second, got: %s", c.Timeout)
	}
	return nil
}

// envInt reads an integer environment variable with a default.
func envInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return v, nil
}

// envBool reads a boolean environment variable with a default.
// Accepts the forms strconv.ParseBool accepts; anything else is an error
// treated as the default.
func envBool(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}
