package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBookio()
	c.normalizeBlockfrost()
	c.normalizeIPFS()
	c.normalizePipeline()
	if err := c.normalizeCatalogCache(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeBookio() {
	c.Bookio.BaseURL = strings.TrimRight(strings.TrimSpace(c.Bookio.BaseURL), "/")
	if c.Bookio.BaseURL == "" {
		c.Bookio.BaseURL = defaultBookioBaseURL
	}
	if c.Bookio.RequestTimeout <= 0 {
		c.Bookio.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeBlockfrost() {
	c.Blockfrost.ProjectID = strings.TrimSpace(c.Blockfrost.ProjectID)
	if c.Blockfrost.ProjectID == "" {
		if value, ok := os.LookupEnv("BLOCKFROST_PROJECT_ID"); ok {
			c.Blockfrost.ProjectID = strings.TrimSpace(value)
		}
	}
	c.Blockfrost.BaseURL = strings.TrimRight(strings.TrimSpace(c.Blockfrost.BaseURL), "/")
	if c.Blockfrost.BaseURL == "" {
		c.Blockfrost.BaseURL = defaultBlockfrostBaseURL
	}
	if c.Blockfrost.PageSize <= 0 {
		c.Blockfrost.PageSize = defaultBlockfrostPageSize
	}
	if c.Blockfrost.RateBurst <= 0 {
		c.Blockfrost.RateBurst = defaultBlockfrostRateBurst
	}
	if c.Blockfrost.RequestTimeout <= 0 {
		c.Blockfrost.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeIPFS() {
	c.IPFS.Gateway = strings.TrimSpace(c.IPFS.Gateway)
	if c.IPFS.Gateway == "" {
		c.IPFS.Gateway = defaultIPFSGateway
	}
	if !strings.HasSuffix(c.IPFS.Gateway, "/") {
		c.IPFS.Gateway += "/"
	}
	if c.IPFS.DownloadTimeout <= 0 {
		c.IPFS.DownloadTimeout = defaultDownloadTimeout
	}
}

func (c *Config) normalizePipeline() {
	c.Pipeline.Replenish = strings.ToLower(strings.TrimSpace(c.Pipeline.Replenish))
	if c.Pipeline.Replenish == "" {
		c.Pipeline.Replenish = defaultReplenish
	}
}

func (c *Config) normalizeCatalogCache() error {
	c.CatalogCache.Path = strings.TrimSpace(c.CatalogCache.Path)
	if c.CatalogCache.Path == "" {
		c.CatalogCache.Path = filepath.Join(c.Paths.CacheDir, "catalog.db")
	}
	var err error
	if c.CatalogCache.Path, err = expandPath(c.CatalogCache.Path); err != nil {
		return fmt.Errorf("catalog_cache.path: %w", err)
	}
	if c.CatalogCache.TTLSeconds <= 0 {
		c.CatalogCache.TTLSeconds = defaultCatalogCacheTTL
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
