package provider

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"eapassist/internal/config"
	"eapassist/internal/core"
	"eapassist/internal/util"
)

// Provider is one upstream text-generation backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, request core.ChatRequest) (*core.ChatResult, error)
}

// completionPayload is the OpenAI-compatible chat completions request body.
type completionPayload struct {
	Model       string             `json:"model"`
	Messages    []core.ChatMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
	MaxTokens   *int               `json:"max_tokens,omitempty"`
	Tools       []core.Tool        `json:"tools,omitempty"`
	ToolChoice  any                `json:"tool_choice,omitempty"`
}

// completionResponse is the subset of the chat completions response we unwrap.
type completionResponse struct {
	Choices []struct {
		Message struct {
			Content   string          `json:"content"`
			ToolCalls []core.ToolCall `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

// Client issues chat completion calls against one OpenAI-compatible endpoint.
// All three backends (platform, Kimi, DeepSeek) are instances of this type;
// they differ only in endpoint, model, and credential.
type Client struct {
	name       string
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
	logger     core.Logger
}

// NewClient creates a provider client for the given settings and credential.
func NewClient(settings config.ProviderSettings, apiKey string, httpClient *http.Client, logger core.Logger) *Client {
	return &Client{
		name:       settings.Name,
		endpoint:   settings.Endpoint,
		model:      settings.Model,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Name returns the provider identifier used in results and diagnostics.
func (c *Client) Name() string { return c.name }

// Complete issues a single synchronous chat completion call and normalizes
// the response into a ChatResult. Tool call argument JSON is passed through
// unparsed. A non-2xx status is reported as *UpstreamError with the body
// captured for diagnostics.
func (c *Client) Complete(ctx context.Context, request core.ChatRequest) (*core.ChatResult, error) {
	temperature := core.DefaultTemperature
	if request.Temperature != nil {
		temperature = *request.Temperature
	}

	payload := completionPayload{
		Model:       c.model,
		Messages:    request.Messages,
		Temperature: temperature,
		MaxTokens:   request.MaxTokens,
		Tools:       request.Tools,
		ToolChoice:  request.ToolChoice,
	}

	payloadBytes, err := util.MarshalJSON(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set(core.HeaderContentType, core.ContentTypeJSON)
	req.Header.Set(core.HeaderAuthorization, core.AuthBearerPrefix+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, core.MaxResponseBodySize))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("%s API error: status=%d, body=%s", c.name, resp.StatusCode, util.TruncateString(string(body), 200, 0, "..."))
		return nil, &UpstreamError{Provider: c.name, Status: resp.StatusCode, Body: string(body)}
	}

	var parsed completionResponse
	if err := util.UnmarshalJSON(body, &parsed); err != nil {
		c.logger.Error("%s API returned malformed body: %v", c.name, err)
		return nil, &UpstreamError{Provider: c.name, Status: resp.StatusCode, Body: string(body)}
	}
	if len(parsed.Choices) == 0 {
		return nil, &UpstreamError{Provider: c.name, Status: resp.StatusCode, Body: string(body)}
	}

	message := parsed.Choices[0].Message
	return &core.ChatResult{
		Content:   message.Content,
		Provider:  c.name,
		ToolCalls: message.ToolCalls,
	}, nil
}
