package config

import (
	"os"
	"strconv"
	"time"

	"eapassist/internal/core"
	"eapassist/internal/util"
)

// ProviderSettings holds one upstream provider's endpoint and model.
type ProviderSettings struct {
	Name     string
	Endpoint string
	Model    string
}

// ProvidersConfig holds settings for the three upstream providers. The
// platform key lives in server environment; Kimi/DeepSeek keys arrive
// per request from caller headers.
type ProvidersConfig struct {
	Platform    ProviderSettings
	Kimi        ProviderSettings
	DeepSeek    ProviderSettings
	PlatformKey string
}

// VerifierConfig holds the reference verifier's external API settings and
// fuzzy-match thresholds.
type VerifierConfig struct {
	SemanticScholarKey   string
	TitleSimilarityFloor float64
	MatchScoreFloor      float64
	YearTolerance        int
}

// HTTPClientSettings HTTP client configuration
type HTTPClientSettings struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration
	RequestTimeout      time.Duration
}

// DefaultHTTPClientSettings default HTTP client settings
func DefaultHTTPClientSettings() HTTPClientSettings {
	return HTTPClientSettings{
		MaxIdleConns:        core.HTTPMaxIdleConns,
		MaxIdleConnsPerHost: core.HTTPMaxIdleConnsPerHost,
		MaxConnsPerHost:     core.HTTPMaxConnsPerHost,
		IdleConnTimeout:     core.HTTPIdleConnTimeout,
		TLSHandshakeTimeout: core.HTTPTLSHandshakeTimeout,
		RequestTimeout:      core.HTTPRequestTimeout,
	}
}

// ServerConfig server configuration
type ServerConfig struct {
	Port               string
	GinMode            string
	ClientAPIKeys      []string
	Providers          ProvidersConfig
	Verifier           VerifierConfig
	HTTPClientSettings HTTPClientSettings
	Storage            core.StorageInterface
	Logger             core.Logger
}

// LoadServerConfigFromEnv builds the server configuration from environment
// variables.
func LoadServerConfigFromEnv(logger core.Logger) (ServerConfig, error) {
	clientAPIKeys := util.ParseEnvList(os.Getenv("CLIENT_API_KEYS"))
	if len(clientAPIKeys) == 0 {
		logger.Warn("CLIENT_API_KEYS environment variable is empty")
	} else {
		logger.Info("Loaded %d client API keys", len(clientAPIKeys))
	}

	providers := loadProvidersFromEnv()
	if providers.PlatformKey == "" {
		logger.Warn("POE_API_KEY not set; platform-session requests will be rejected")
	}

	verifier := loadVerifierFromEnv()
	if verifier.SemanticScholarKey == "" {
		logger.Warn("SEMANTIC_SCHOLAR_API_KEY not set; unlinked references will be reported as no_links")
	}

	return ServerConfig{
		Port:               util.GetEnvWithDefault("PORT", core.DefaultPort),
		GinMode:            util.GetEnvWithDefault("GIN_MODE", "release"),
		ClientAPIKeys:      clientAPIKeys,
		Providers:          providers,
		Verifier:           verifier,
		HTTPClientSettings: DefaultHTTPClientSettings(),
	}, nil
}

func loadProvidersFromEnv() ProvidersConfig {
	return ProvidersConfig{
		Platform: ProviderSettings{
			Name:     core.ProviderPlatform,
			Endpoint: util.GetEnvWithDefault("POE_API_ENDPOINT", core.PoeAPIEndpoint),
			Model:    util.GetEnvWithDefault("POE_MODEL", core.PoeDefaultModel),
		},
		Kimi: ProviderSettings{
			Name:     core.ProviderKimi,
			Endpoint: util.GetEnvWithDefault("KIMI_API_ENDPOINT", core.KimiAPIEndpoint),
			Model:    util.GetEnvWithDefault("KIMI_MODEL", core.KimiDefaultModel),
		},
		DeepSeek: ProviderSettings{
			Name:     core.ProviderDeepSeek,
			Endpoint: util.GetEnvWithDefault("DEEPSEEK_API_ENDPOINT", core.DeepSeekAPIEndpoint),
			Model:    util.GetEnvWithDefault("DEEPSEEK_MODEL", core.DeepSeekDefaultModel),
		},
		PlatformKey: os.Getenv("POE_API_KEY"),
	}
}

func loadVerifierFromEnv() VerifierConfig {
	return VerifierConfig{
		SemanticScholarKey:   os.Getenv("SEMANTIC_SCHOLAR_API_KEY"),
		TitleSimilarityFloor: envFloat("MATCH_TITLE_SIMILARITY_FLOOR", core.DefaultTitleSimilarityFloor),
		MatchScoreFloor:      envFloat("MATCH_SCORE_FLOOR", core.DefaultMatchScoreFloor),
		YearTolerance:        envInt("MATCH_YEAR_TOLERANCE", core.DefaultYearTolerance),
	}
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
