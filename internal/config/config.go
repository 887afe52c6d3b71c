package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	CacheDir  string `toml:"cache_dir"`
}

// Bookio contains configuration for the Book.io collection catalog.
type Bookio struct {
	BaseURL        string `toml:"base_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Blockfrost contains configuration for the Blockfrost Cardano API.
type Blockfrost struct {
	ProjectID      string  `toml:"project_id"`
	BaseURL        string  `toml:"base_url"`
	PageSize       int     `toml:"page_size"`
	RateLimit      float64 `toml:"rate_limit"`
	RateBurst      int     `toml:"rate_burst"`
	RequestTimeout int     `toml:"request_timeout"`
}

// IPFS contains configuration for resolving and downloading ipfs:// sources.
type IPFS struct {
	Gateway         string `toml:"gateway"`
	DownloadTimeout int    `toml:"download_timeout"`
}

// Pipeline contains the fetch/download concurrency knobs.
type Pipeline struct {
	// FetchConcurrency bounds in-flight metadata requests.
	FetchConcurrency int `toml:"fetch_concurrency"`
	// DownloadConcurrency bounds in-flight image transfers.
	DownloadConcurrency int `toml:"download_concurrency"`
	// Replenish is "on-miss" (refill the fetch window only after an invalid
	// or failed outcome) or "always" (fixed-size window).
	Replenish string `toml:"replenish"`
	// FetchRetries is the number of extra attempts a fetch task makes before
	// reporting a failure. Zero disables retries.
	FetchRetries int `toml:"fetch_retries"`
}

// CatalogCache contains configuration for the local Book.io catalog cache.
type CatalogCache struct {
	Enabled    bool   `toml:"enabled"`
	Path       string `toml:"path"` // Default: <cache_dir>/catalog.db
	TTLSeconds int    `toml:"ttl_seconds"`
}

// Notifications contains the optional ntfy endpoint notified when a fetch
// run ends.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for bookfetch.
//
// Configuration sections by subsystem:
//   - Paths: output, log, and cache directories
//   - Bookio: collection catalog used to verify policy ids
//   - Blockfrost: asset listing and metadata API
//   - IPFS: gateway used to rewrite ipfs:// image sources
//   - Pipeline: fetch/download concurrency and replenish policy
//   - CatalogCache: SQLite cache of the Book.io catalog
//   - Notifications: ntfy topic for run summaries
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Bookio        Bookio        `toml:"bookio"`
	Blockfrost    Blockfrost    `toml:"blockfrost"`
	IPFS          IPFS          `toml:"ipfs"`
	Pipeline      Pipeline      `toml:"pipeline"`
	CatalogCache  CatalogCache  `toml:"catalog_cache"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bookfetch/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("bookfetch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and cache directories. The output
// directory is created lazily by the download dispatcher on first use.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.CacheDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// BookioTimeout returns the catalog request timeout.
func (c *Config) BookioTimeout() time.Duration {
	return time.Duration(c.Bookio.RequestTimeout) * time.Second
}

// BlockfrostTimeout returns the per-request Blockfrost timeout.
func (c *Config) BlockfrostTimeout() time.Duration {
	return time.Duration(c.Blockfrost.RequestTimeout) * time.Second
}

// DownloadTimeout returns the per-image transfer timeout.
func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.IPFS.DownloadTimeout) * time.Second
}

// NotificationTimeout returns the ntfy request timeout.
func (c *Config) NotificationTimeout() time.Duration {
	return time.Duration(c.Notifications.RequestTimeout) * time.Second
}

// CatalogCacheTTL returns how long a cached catalog stays fresh.
func (c *Config) CatalogCacheTTL() time.Duration {
	return time.Duration(c.CatalogCache.TTLSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
