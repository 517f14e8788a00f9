package provider

import (
	"context"
	"net/http"

	"eapassist/internal/config"
	"eapassist/internal/core"
)

// Router selects one upstream provider per call based on the caller's
// credential configuration and normalizes its answer into a ChatResult.
//
// Precedence is platform > Kimi > DeepSeek. Platform-session callers are
// billed against a shared pool, so their calls must never silently spend a
// user's personal key. The single Kimi-to-DeepSeek fallback reflects a fixed
// preference ordering between the two user-supplied providers, not a general
// retry policy.
type Router struct {
	providers  config.ProvidersConfig
	httpClient *http.Client
	logger     core.Logger

	// newProvider is swappable in tests to substitute fake backends.
	newProvider func(settings config.ProviderSettings, apiKey string) Provider
}

// NewRouter creates a router over the configured upstream providers.
func NewRouter(providers config.ProvidersConfig, httpClient *http.Client, logger core.Logger) *Router {
	r := &Router{
		providers:  providers,
		httpClient: httpClient,
		logger:     logger,
	}
	r.newProvider = func(settings config.ProviderSettings, apiKey string) Provider {
		return NewClient(settings, apiKey, r.httpClient, r.logger)
	}
	return r
}

// Complete selects a backend and issues one chat completion call.
//
//  1. Platform access with a platform key calls the platform provider
//     exclusively; its failure propagates with no fallback.
//  2. A Kimi key calls Kimi; on failure, if a DeepSeek key is also present,
//     DeepSeek is tried once and its outcome (result or failure) is returned.
//  3. A DeepSeek key alone calls DeepSeek; its failure propagates.
//  4. Otherwise ErrNoProviderAvailable.
func (r *Router) Complete(ctx context.Context, cfg core.ProviderConfig, request core.ChatRequest) (*core.ChatResult, error) {
	if cfg.HasPlatformAccess && cfg.PlatformKey != "" {
		return r.newProvider(r.providers.Platform, cfg.PlatformKey).Complete(ctx, request)
	}

	if cfg.KimiKey != "" {
		result, err := r.newProvider(r.providers.Kimi, cfg.KimiKey).Complete(ctx, request)
		if err == nil {
			return result, nil
		}
		if cfg.DeepSeekKey == "" {
			return nil, err
		}
		r.logger.Warn("Kimi call failed (%v), falling back to DeepSeek", err)
		return r.newProvider(r.providers.DeepSeek, cfg.DeepSeekKey).Complete(ctx, request)
	}

	if cfg.DeepSeekKey != "" {
		return r.newProvider(r.providers.DeepSeek, cfg.DeepSeekKey).Complete(ctx, request)
	}

	return nil, ErrNoProviderAvailable
}
