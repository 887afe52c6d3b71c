package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"bookfetch/internal/catalogcache"
	"bookfetch/internal/config"
	"bookfetch/internal/logging"
	"bookfetch/internal/services"
	"bookfetch/internal/services/blockfrost"
	"bookfetch/internal/services/bookio"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "load config", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "ensure directories", "", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logLevel() string {
	if c.logLevelFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.logLevelFlag)
}

// consoleLogger builds a console-only logger for short commands.
func (c *commandContext) consoleLogger(cfg *config.Config) *slog.Logger {
	level := cfg.Logging.Level
	if override := c.logLevel(); override != "" {
		level = override
	}
	logger, err := logging.New(logging.Options{Level: level, Format: cfg.Logging.Format})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

// catalogClient builds the Book.io client, attaching the SQLite cache when it
// is enabled. The returned close function releases the cache.
func catalogClient(cfg *config.Config, logger *slog.Logger) (*bookio.Client, func(), error) {
	opts := []bookio.Option{bookio.WithLogger(logger)}
	closeFn := func() {}
	if cfg.CatalogCache.Enabled {
		store, err := catalogcache.Open(cfg.CatalogCache.Path)
		if err != nil {
			logging.WarnWithContext(logger, "catalog cache unavailable; using api only", "catalog_cache_unavailable",
				logging.String("path", cfg.CatalogCache.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "delete the cache file or set catalog_cache.enabled = false"),
				logging.String(logging.FieldImpact, "catalog fetched on every run"),
			)
		} else {
			opts = append(opts, bookio.WithCache(store, cfg.CatalogCacheTTL()))
			closeFn = func() { _ = store.Close() }
		}
	}
	client, err := bookio.New(cfg.Bookio.BaseURL, cfg.BookioTimeout(), opts...)
	if err != nil {
		closeFn()
		return nil, func() {}, services.Wrap(services.ErrConfiguration, "cli", "bookio client", "", err)
	}
	return client, closeFn, nil
}

func blockfrostClient(cfg *config.Config) (*blockfrost.Client, error) {
	if err := cfg.RequireBlockfrost(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "blockfrost client", "", err)
	}
	return blockfrost.New(cfg.Blockfrost.ProjectID, cfg.Blockfrost.BaseURL, cfg.BlockfrostTimeout(),
		blockfrost.WithPageSize(cfg.Blockfrost.PageSize),
		blockfrost.WithRateLimit(cfg.Blockfrost.RateLimit, cfg.Blockfrost.RateBurst),
	)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func policyArg(args []string, flag string) (string, error) {
	policy := strings.TrimSpace(flag)
	if policy == "" && len(args) > 0 {
		policy = strings.TrimSpace(args[0])
	}
	if policy == "" {
		return "", services.Wrap(services.ErrValidation, "cli", "arguments", "a policy id is required", nil)
	}
	return policy, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
