package provider

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"eapassist/internal/config"
	"eapassist/internal/core"
)

// fakeProvider returns a canned result or error and records that it was called.
type fakeProvider struct {
	name   string
	result *core.ChatResult
	err    error
	calls  *[]string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Complete(ctx context.Context, request core.ChatRequest) (*core.ChatResult, error) {
	*f.calls = append(*f.calls, f.name)
	return f.result, f.err
}

// testRouter builds a router whose backends are fakes keyed by provider name.
func testRouter(calls *[]string, fakes map[string]*fakeProvider) *Router {
	providers := config.ProvidersConfig{
		Platform: config.ProviderSettings{Name: core.ProviderPlatform},
		Kimi:     config.ProviderSettings{Name: core.ProviderKimi},
		DeepSeek: config.ProviderSettings{Name: core.ProviderDeepSeek},
	}
	r := NewRouter(providers, &http.Client{}, &core.NopLogger{})
	r.newProvider = func(settings config.ProviderSettings, apiKey string) Provider {
		fake, ok := fakes[settings.Name]
		if !ok {
			fake = &fakeProvider{name: settings.Name, err: errors.New("no fake configured"), calls: calls}
		}
		return fake
	}
	return r
}

func TestComplete_PlatformExclusive(t *testing.T) {
	var calls []string
	r := testRouter(&calls, map[string]*fakeProvider{
		core.ProviderPlatform: {name: core.ProviderPlatform, result: &core.ChatResult{Content: "hi", Provider: core.ProviderPlatform}, calls: &calls},
		core.ProviderKimi:      {name: core.ProviderKimi, result: &core.ChatResult{Content: "wrong"}, calls: &calls},
		core.ProviderDeepSeek:  {name: core.ProviderDeepSeek, result: &core.ChatResult{Content: "wrong"}, calls: &calls},
	})

	// User keys present too; platform access must still win.
	cfg := core.ProviderConfig{HasPlatformAccess: true, PlatformKey: "pk", KimiKey: "kk", DeepSeekKey: "dk"}
	result, err := r.Complete(context.Background(), cfg, core.ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Provider != core.ProviderPlatform {
		t.Errorf("expected platform provider, got %s", result.Provider)
	}
	if len(calls) != 1 {
		t.Errorf("expected exactly one upstream call, got %v", calls)
	}
}

func TestComplete_PlatformFailureDoesNotFallBack(t *testing.T) {
	var calls []string
	upstreamErr := &UpstreamError{Provider: core.ProviderPlatform, Status: 500}
	r := testRouter(&calls, map[string]*fakeProvider{
		core.ProviderPlatform: {name: core.ProviderPlatform, err: upstreamErr, calls: &calls},
		core.ProviderKimi:      {name: core.ProviderKimi, result: &core.ChatResult{}, calls: &calls},
	})

	cfg := core.ProviderConfig{HasPlatformAccess: true, PlatformKey: "pk", KimiKey: "kk"}
	_, err := r.Complete(context.Background(), cfg, core.ChatRequest{})
	if !errors.Is(err, upstreamErr) {
		t.Fatalf("expected the platform error to propagate, got %v", err)
	}
	if len(calls) != 1 {
		t.Errorf("platform failure must not trigger user-key fallback, calls: %v", calls)
	}
}

func TestComplete_KimiFallsBackToDeepSeekOnce(t *testing.T) {
	var calls []string
	r := testRouter(&calls, map[string]*fakeProvider{
		core.ProviderKimi:     {name: core.ProviderKimi, err: errors.New("kimi down"), calls: &calls},
		core.ProviderDeepSeek: {name: core.ProviderDeepSeek, result: &core.ChatResult{Content: "ok", Provider: core.ProviderDeepSeek}, calls: &calls},
	})

	cfg := core.ProviderConfig{KimiKey: "kk", DeepSeekKey: "dk"}
	result, err := r.Complete(context.Background(), cfg, core.ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Provider != core.ProviderDeepSeek {
		t.Errorf("expected DeepSeek fallback result, got %s", result.Provider)
	}
	if len(calls) != 2 || calls[0] != core.ProviderKimi || calls[1] != core.ProviderDeepSeek {
		t.Errorf("expected Kimi then DeepSeek, got %v", calls)
	}
}

func TestComplete_KimiFailureWithoutDeepSeekPropagates(t *testing.T) {
	var calls []string
	kimiErr := errors.New("kimi down")
	r := testRouter(&calls, map[string]*fakeProvider{
		core.ProviderKimi: {name: core.ProviderKimi, err: kimiErr, calls: &calls},
	})

	cfg := core.ProviderConfig{KimiKey: "kk"}
	_, err := r.Complete(context.Background(), cfg, core.ChatRequest{})
	if !errors.Is(err, kimiErr) {
		t.Fatalf("expected Kimi error to propagate, got %v", err)
	}
	if len(calls) != 1 {
		t.Errorf("expected a single upstream call, got %v", calls)
	}
}

func TestComplete_FallbackFailureIsReturned(t *testing.T) {
	var calls []string
	deepseekErr := &UpstreamError{Provider: core.ProviderDeepSeek, Status: 502}
	r := testRouter(&calls, map[string]*fakeProvider{
		core.ProviderKimi:     {name: core.ProviderKimi, err: errors.New("kimi down"), calls: &calls},
		core.ProviderDeepSeek: {name: core.ProviderDeepSeek, err: deepseekErr, calls: &calls},
	})

	cfg := core.ProviderConfig{KimiKey: "kk", DeepSeekKey: "dk"}
	_, err := r.Complete(context.Background(), cfg, core.ChatRequest{})
	if !errors.Is(err, deepseekErr) {
		t.Fatalf("expected the fallback's own error, got %v", err)
	}
	if len(calls) != 2 {
		t.Errorf("fallback is one hop only, got calls %v", calls)
	}
}

func TestComplete_DeepSeekOnly(t *testing.T) {
	var calls []string
	r := testRouter(&calls, map[string]*fakeProvider{
		core.ProviderDeepSeek: {name: core.ProviderDeepSeek, result: &core.ChatResult{Provider: core.ProviderDeepSeek}, calls: &calls},
	})

	cfg := core.ProviderConfig{DeepSeekKey: "dk"}
	result, err := r.Complete(context.Background(), cfg, core.ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Provider != core.ProviderDeepSeek {
		t.Errorf("expected DeepSeek, got %s", result.Provider)
	}
}

func TestComplete_NoCredentials(t *testing.T) {
	var calls []string
	r := testRouter(&calls, nil)

	_, err := r.Complete(context.Background(), core.ProviderConfig{}, core.ChatRequest{})
	if !errors.Is(err, ErrNoProviderAvailable) {
		t.Fatalf("expected ErrNoProviderAvailable, got %v", err)
	}
	if len(calls) != 0 {
		t.Errorf("no upstream must be called without credentials, got %v", calls)
	}
}

func TestComplete_PlatformAccessWithoutKeyFallsThrough(t *testing.T) {
	var calls []string
	r := testRouter(&calls, map[string]*fakeProvider{
		core.ProviderKimi: {name: core.ProviderKimi, result: &core.ChatResult{Provider: core.ProviderKimi}, calls: &calls},
	})

	// Session marker without a configured platform key: user keys apply.
	cfg := core.ProviderConfig{HasPlatformAccess: true, KimiKey: "kk"}
	result, err := r.Complete(context.Background(), cfg, core.ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Provider != core.ProviderKimi {
		t.Errorf("expected Kimi, got %s", result.Provider)
	}
}
