package testsupport

import (
	"path/filepath"
	"testing"

	"bookfetch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The catalog cache lives under the temp cache dir and the project id is a
// mainnet placeholder.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "images")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.CatalogCache.Path = filepath.Join(cfgVal.Paths.CacheDir, "catalog.db")
	cfgVal.Blockfrost.ProjectID = "mainnettest"
	cfgVal.Blockfrost.RateLimit = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithProjectID overrides the Blockfrost project id.
func WithProjectID(id string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Blockfrost.ProjectID = id
	}
}

// WithEndpoints points the catalog, Blockfrost, and gateway at test servers.
// Empty values keep the defaults.
func WithEndpoints(bookioURL, blockfrostURL, gatewayURL string) ConfigOption {
	return func(b *configBuilder) {
		if bookioURL != "" {
			b.cfg.Bookio.BaseURL = bookioURL
		}
		if blockfrostURL != "" {
			b.cfg.Blockfrost.BaseURL = blockfrostURL
		}
		if gatewayURL != "" {
			b.cfg.IPFS.Gateway = gatewayURL
		}
	}
}

// WithoutLogDir disables the per-run JSON log file.
func WithoutLogDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.LogDir = ""
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
