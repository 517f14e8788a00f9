package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eapassist/internal/config"
	"eapassist/internal/core"
	"eapassist/internal/util"
)

func testSettings(endpoint string) config.ProviderSettings {
	return config.ProviderSettings{Name: "test-backend", Endpoint: endpoint, Model: "test-model"}
}

func TestClientComplete_PayloadAndAuth(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get(core.HeaderAuthorization)
		body, _ := io.ReadAll(r.Body)
		_ = util.UnmarshalJSON(body, &gotBody)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hello"}}]}`))
	}))
	defer srv.Close()

	client := NewClient(testSettings(srv.URL), "secret-key", srv.Client(), &core.NopLogger{})

	request := core.ChatRequest{
		Messages: []core.ChatMessage{{Role: core.RoleUser, Content: "hi"}},
	}
	result, err := client.Complete(context.Background(), request)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer secret-key" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotBody["model"] != "test-model" {
		t.Errorf("expected configured model in payload, got %v", gotBody["model"])
	}
	if temp, ok := gotBody["temperature"].(float64); !ok || temp != core.DefaultTemperature {
		t.Errorf("expected default temperature %v, got %v", core.DefaultTemperature, gotBody["temperature"])
	}
	if _, present := gotBody["max_tokens"]; present {
		t.Error("unset max_tokens must be omitted from the payload")
	}

	if result.Content != "hello" || result.Provider != "test-backend" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestClientComplete_ExplicitTemperatureAndMaxTokens(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = util.UnmarshalJSON(body, &gotBody)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	client := NewClient(testSettings(srv.URL), "k", srv.Client(), &core.NopLogger{})

	temperature := 0.2
	maxTokens := 512
	request := core.ChatRequest{
		Messages:    []core.ChatMessage{{Role: core.RoleUser, Content: "hi"}},
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	}
	if _, err := client.Complete(context.Background(), request); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if temp := gotBody["temperature"].(float64); temp != 0.2 {
		t.Errorf("expected temperature 0.2, got %v", temp)
	}
	if mt := gotBody["max_tokens"].(float64); mt != 512 {
		t.Errorf("expected max_tokens 512, got %v", mt)
	}
}

func TestClientComplete_ToolCallsPassThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"","tool_calls":[{"id":"call_1","type":"function","function":{"name":"lookup","arguments":"{\"q\":\"genre\"}"}}]}}]}`))
	}))
	defer srv.Close()

	client := NewClient(testSettings(srv.URL), "k", srv.Client(), &core.NopLogger{})

	result, err := client.Complete(context.Background(), core.ChatRequest{
		Messages: []core.ChatMessage{{Role: core.RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.ToolCalls) != 1 {
		t.Fatalf("expected one tool call, got %d", len(result.ToolCalls))
	}
	call := result.ToolCalls[0]
	if call.Function.Name != "lookup" {
		t.Errorf("unexpected function name %q", call.Function.Name)
	}
	// Argument JSON stays an opaque string.
	if call.Function.Arguments != `{"q":"genre"}` {
		t.Errorf("arguments must pass through unparsed, got %q", call.Function.Arguments)
	}
}

func TestClientComplete_UpstreamErrorCapturesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	client := NewClient(testSettings(srv.URL), "k", srv.Client(), &core.NopLogger{})

	_, err := client.Complete(context.Background(), core.ChatRequest{})
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected *UpstreamError, got %v", err)
	}
	if upstream.Status != http.StatusTooManyRequests || upstream.Provider != "test-backend" {
		t.Errorf("unexpected upstream error: %+v", upstream)
	}
	if !strings.Contains(upstream.Body, "rate limited") {
		t.Errorf("expected response body captured, got %q", upstream.Body)
	}
}

func TestClientComplete_EmptyChoicesIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := NewClient(testSettings(srv.URL), "k", srv.Client(), &core.NopLogger{})

	_, err := client.Complete(context.Background(), core.ChatRequest{})
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected *UpstreamError for empty choices, got %v", err)
	}
}

func TestClientComplete_MalformedBodyIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewClient(testSettings(srv.URL), "k", srv.Client(), &core.NopLogger{})

	if _, err := client.Complete(context.Background(), core.ChatRequest{}); err == nil {
		t.Fatal("expected an error for a malformed response body")
	}
}
