package config

import (
	"testing"

	"eapassist/internal/core"
)

func TestLoadServerConfigFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "GIN_MODE", "CLIENT_API_KEYS", "POE_API_KEY", "POE_API_ENDPOINT", "POE_MODEL",
		"KIMI_API_ENDPOINT", "KIMI_MODEL", "DEEPSEEK_API_ENDPOINT", "DEEPSEEK_MODEL",
		"SEMANTIC_SCHOLAR_API_KEY", "MATCH_TITLE_SIMILARITY_FLOOR", "MATCH_SCORE_FLOOR", "MATCH_YEAR_TOLERANCE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadServerConfigFromEnv(&core.NopLogger{})
	if err != nil {
		t.Fatalf("LoadServerConfigFromEnv failed: %v", err)
	}

	if cfg.Port != core.DefaultPort {
		t.Errorf("expected default port, got %q", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Errorf("expected release mode default, got %q", cfg.GinMode)
	}
	if cfg.Providers.Platform.Endpoint != core.PoeAPIEndpoint || cfg.Providers.Platform.Model != core.PoeDefaultModel {
		t.Errorf("unexpected platform defaults: %+v", cfg.Providers.Platform)
	}
	if cfg.Providers.Kimi.Name != core.ProviderKimi || cfg.Providers.DeepSeek.Name != core.ProviderDeepSeek {
		t.Errorf("unexpected provider names: %+v", cfg.Providers)
	}
	if cfg.Verifier.TitleSimilarityFloor != core.DefaultTitleSimilarityFloor ||
		cfg.Verifier.MatchScoreFloor != core.DefaultMatchScoreFloor ||
		cfg.Verifier.YearTolerance != core.DefaultYearTolerance {
		t.Errorf("unexpected verifier defaults: %+v", cfg.Verifier)
	}
}

func TestLoadServerConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CLIENT_API_KEYS", "alpha, beta")
	t.Setenv("POE_API_KEY", "platform-secret")
	t.Setenv("KIMI_MODEL", "moonshot-v1-32k")
	t.Setenv("SEMANTIC_SCHOLAR_API_KEY", "s2-key")
	t.Setenv("MATCH_TITLE_SIMILARITY_FLOOR", "0.75")
	t.Setenv("MATCH_SCORE_FLOOR", "0.5")
	t.Setenv("MATCH_YEAR_TOLERANCE", "2")

	cfg, err := LoadServerConfigFromEnv(&core.NopLogger{})
	if err != nil {
		t.Fatalf("LoadServerConfigFromEnv failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("expected port override, got %q", cfg.Port)
	}
	if len(cfg.ClientAPIKeys) != 2 || cfg.ClientAPIKeys[0] != "alpha" || cfg.ClientAPIKeys[1] != "beta" {
		t.Errorf("unexpected client keys: %v", cfg.ClientAPIKeys)
	}
	if cfg.Providers.PlatformKey != "platform-secret" {
		t.Errorf("expected platform key from env, got %q", cfg.Providers.PlatformKey)
	}
	if cfg.Providers.Kimi.Model != "moonshot-v1-32k" {
		t.Errorf("expected model override, got %q", cfg.Providers.Kimi.Model)
	}
	if cfg.Verifier.SemanticScholarKey != "s2-key" {
		t.Errorf("expected search key from env, got %q", cfg.Verifier.SemanticScholarKey)
	}
	if cfg.Verifier.TitleSimilarityFloor != 0.75 || cfg.Verifier.MatchScoreFloor != 0.5 || cfg.Verifier.YearTolerance != 2 {
		t.Errorf("threshold overrides not applied: %+v", cfg.Verifier)
	}
}

func TestLoadServerConfigFromEnv_BadThresholdsFallBack(t *testing.T) {
	t.Setenv("MATCH_TITLE_SIMILARITY_FLOOR", "not-a-number")
	t.Setenv("MATCH_YEAR_TOLERANCE", "two")

	cfg, err := LoadServerConfigFromEnv(&core.NopLogger{})
	if err != nil {
		t.Fatalf("LoadServerConfigFromEnv failed: %v", err)
	}
	if cfg.Verifier.TitleSimilarityFloor != core.DefaultTitleSimilarityFloor {
		t.Errorf("bad float must fall back to default, got %f", cfg.Verifier.TitleSimilarityFloor)
	}
	if cfg.Verifier.YearTolerance != core.DefaultYearTolerance {
		t.Errorf("bad int must fall back to default, got %d", cfg.Verifier.YearTolerance)
	}
}
