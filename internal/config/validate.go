package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. Blockfrost credentials are
// checked separately by RequireBlockfrost so catalog-only commands work
// without them.
func (c *Config) Validate() error {
	if err := c.validateEndpoints(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateBlockfrost(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

// RequireBlockfrost reports a descriptive error when no Blockfrost project id
// is configured.
func (c *Config) RequireBlockfrost() error {
	if c.Blockfrost.ProjectID != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/bookfetch/config.toml"
	}
	return fmt.Errorf("blockfrost.project_id is required. Set BLOCKFROST_PROJECT_ID env var or edit %s (create with 'bookfetch config init')", defaultPath)
}

func (c *Config) validateEndpoints() error {
	for _, endpoint := range []struct {
		key   string
		value string
	}{
		{"bookio.base_url", c.Bookio.BaseURL},
		{"blockfrost.base_url", c.Blockfrost.BaseURL},
		{"ipfs.gateway", c.IPFS.Gateway},
	} {
		parsed, err := url.Parse(endpoint.value)
		if err != nil {
			return fmt.Errorf("%s: %w", endpoint.key, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%s must be an http(s) url, got %q", endpoint.key, endpoint.value)
		}
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.FetchConcurrency < 1 {
		return errors.New("pipeline.fetch_concurrency must be at least 1")
	}
	if c.Pipeline.DownloadConcurrency < 1 {
		return errors.New("pipeline.download_concurrency must be at least 1")
	}
	if c.Pipeline.FetchRetries < 0 {
		return errors.New("pipeline.fetch_retries must not be negative")
	}
	switch c.Pipeline.Replenish {
	case ReplenishOnMiss, ReplenishAlways:
	default:
		return fmt.Errorf("pipeline.replenish: unsupported value %q (want %q or %q)", c.Pipeline.Replenish, ReplenishOnMiss, ReplenishAlways)
	}
	return nil
}

func (c *Config) validateBlockfrost() error {
	if c.Blockfrost.RateLimit < 0 {
		return errors.New("blockfrost.rate_limit must not be negative")
	}
	if c.Blockfrost.PageSize > 100 {
		return errors.New("blockfrost.page_size must not exceed 100")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic == "" {
		return nil
	}
	parsed, err := url.Parse(c.Notifications.NtfyTopic)
	if err != nil {
		return fmt.Errorf("notifications.ntfy_topic: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("notifications.ntfy_topic must be a full topic url, got %q", c.Notifications.NtfyTopic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
