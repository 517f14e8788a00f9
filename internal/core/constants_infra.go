package core

import "time"

// HTTP client settings for outbound calls.
const (
	HTTPMaxIdleConns        = 100
	HTTPMaxIdleConnsPerHost = 10
	HTTPMaxConnsPerHost     = 50
	HTTPIdleConnTimeout     = 90 * time.Second
	HTTPTLSHandshakeTimeout = 10 * time.Second
	HTTPRequestTimeout      = 5 * time.Minute
)

// Outbound timeouts for verifier network checks.
const (
	LinkCheckTimeout    = 15 * time.Second
	SearchAPITimeout    = 20 * time.Second
	DOIResolveTimeout   = 15 * time.Second
	WebSearchTimeout    = 20 * time.Second
	MaxResponseBodySize = 1 << 20 // 1MB cap when reading upstream bodies
)

// SearchRateInterval is the minimum spacing between consecutive calls to the
// primary bibliographic search API, enforced process-wide.
const SearchRateInterval = time.Second

// Cache settings.
const (
	CacheDefaultCapacity = 1000
	CacheCleanupInterval = 5 * time.Minute
	DOIMetadataCacheTTL  = 30 * time.Minute
	SearchResultCacheTTL = 10 * time.Minute
)

// Metrics settings.
const (
	MetricsHistorySize   = 1000
	MetricsSaveInterval  = 30 * time.Second
	HistoryBatchSize     = 50
	HistoryFlushInterval = 10 * time.Second
)

// Storage settings.
const (
	StatsFilePath           = "stats.json"
	FilePermissionReadWrite = 0o600
)

// Server settings.
const (
	DefaultPort             = "8080"
	RateLimitPerMinute      = 120
	ShutdownTimeout         = 10 * time.Second
	MaxDebugFilePathLength  = 255
	MaxReferencesBlockBytes = 64 << 10 // 64KB of raw references text
)
