package config

const (
	defaultOutputDir           = "./images"
	defaultLogDir              = "~/.local/share/bookfetch/logs"
	defaultCacheDir            = "~/.cache/bookfetch"
	defaultLogRetentionDays    = 30
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultBookioBaseURL       = "https://api.book.io/api/v0"
	defaultBlockfrostBaseURL   = "https://cardano-mainnet.blockfrost.io/api/v0"
	defaultBlockfrostPageSize  = 20
	defaultBlockfrostRateLimit = 10
	defaultBlockfrostRateBurst = 500
	defaultIPFSGateway         = "https://ipfs.io/ipfs/"
	defaultFetchConcurrency    = 1
	defaultDownloadConcurrency = 3
	defaultReplenish           = ReplenishOnMiss
	defaultRequestTimeout      = 30
	defaultDownloadTimeout     = 300
	defaultCatalogCacheTTL     = 24 * 60 * 60
	defaultNotifyTimeout       = 10
)

// Replenish policies accepted by [pipeline] replenish.
const (
	ReplenishOnMiss = "on-miss"
	ReplenishAlways = "always"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			CacheDir:  defaultCacheDir,
		},
		Bookio: Bookio{
			BaseURL:        defaultBookioBaseURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Blockfrost: Blockfrost{
			BaseURL:        defaultBlockfrostBaseURL,
			PageSize:       defaultBlockfrostPageSize,
			RateLimit:      defaultBlockfrostRateLimit,
			RateBurst:      defaultBlockfrostRateBurst,
			RequestTimeout: defaultRequestTimeout,
		},
		IPFS: IPFS{
			Gateway:         defaultIPFSGateway,
			DownloadTimeout: defaultDownloadTimeout,
		},
		Pipeline: Pipeline{
			FetchConcurrency:    defaultFetchConcurrency,
			DownloadConcurrency: defaultDownloadConcurrency,
			Replenish:           defaultReplenish,
		},
		CatalogCache: CatalogCache{
			Enabled:    true,
			TTLSeconds: defaultCatalogCacheTTL,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
