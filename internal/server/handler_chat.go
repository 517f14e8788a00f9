package server

import (
	"errors"
	"net/http"
	"time"

	"eapassist/internal/core"
	"eapassist/internal/metrics"
	"eapassist/internal/provider"
	"eapassist/internal/util"
	"eapassist/internal/validate"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const routeChat = "chat"

// chatCompletions proxies one chat completion request to whichever upstream
// the caller's credentials select, and returns the normalized result in
// OpenAI response shape.
func (s *Server) chatCompletions(c *gin.Context) {
	startTime := time.Now()

	var request core.ChatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		metrics.RecordFailureWithMetrics(s.metricsService, startTime, routeChat, "")
		respondWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(request.Messages) == 0 {
		metrics.RecordFailureWithMetrics(s.metricsService, startTime, routeChat, "")
		respondWithError(c, http.StatusBadRequest, "messages must not be empty")
		return
	}

	request.Tools = validate.ValidateTools(request.Tools, s.config.Logger)

	last := request.Messages[len(request.Messages)-1]
	s.config.Logger.Debug("Chat request: %d messages, last: %s",
		len(request.Messages), util.Snippet(util.ExtractTextContent(last.Content), 60))

	providerCfg := s.providerConfigFromHeaders(c)

	result, err := s.providerRouter.Complete(c.Request.Context(), providerCfg, request)
	if err != nil {
		s.respondWithRouterError(c, err, startTime)
		return
	}

	metrics.RecordSuccessWithMetrics(s.metricsService, startTime, routeChat, result.Provider)

	finishReason := core.FinishReasonStop
	if len(result.ToolCalls) > 0 {
		finishReason = core.FinishReasonToolCalls
	}

	c.JSON(http.StatusOK, core.ChatCompletionResponse{
		ID:      core.ResponseIDPrefix + uuid.New().String(),
		Object:  core.ChatCompletionObjectType,
		Created: time.Now().Unix(),
		Model:   result.Provider,
		Choices: []core.ChatCompletionChoice{{
			Message: core.ChatMessage{
				Role:      core.RoleAssistant,
				Content:   result.Content,
				ToolCalls: result.ToolCalls,
			},
			FinishReason: finishReason,
		}},
	})
}

// respondWithRouterError maps router failures to client-visible conditions:
// missing credentials become a "not configured" 503, upstream failures carry
// the upstream status for diagnostics.
func (s *Server) respondWithRouterError(c *gin.Context, err error, startTime time.Time) {
	var upstreamErr *provider.UpstreamError

	switch {
	case errors.Is(err, provider.ErrNoProviderAvailable):
		metrics.RecordFailureWithMetrics(s.metricsService, startTime, routeChat, "")
		respondWithError(c, http.StatusServiceUnavailable,
			"AI service unavailable: configure an API key or sign in with a platform session")
	case errors.As(err, &upstreamErr):
		metrics.RecordFailureWithMetrics(s.metricsService, startTime, routeChat, upstreamErr.Provider)
		respondWithError(c, http.StatusBadGateway, upstreamErr.Error())
	default:
		metrics.RecordFailureWithMetrics(s.metricsService, startTime, routeChat, "")
		respondWithError(c, http.StatusBadGateway, "upstream request failed: "+err.Error())
	}
}
