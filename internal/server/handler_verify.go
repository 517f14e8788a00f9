package server

import (
	"net/http"
	"time"

	"eapassist/internal/core"
	"eapassist/internal/metrics"
	"eapassist/internal/util"

	"github.com/gin-gonic/gin"
)

const routeVerify = "verify"

// verifyReferencesRequest is the inbound body for reference verification.
type verifyReferencesRequest struct {
	References string `json:"references"`
}

// verifyReferences streams per-reference validation verdicts over SSE. Each
// event is one JSON object on a data: line; the stream ends with a complete
// event followed by the [DONE] marker.
func (s *Server) verifyReferences(c *gin.Context) {
	startTime := time.Now()

	var request verifyReferencesRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		metrics.RecordFailureWithMetrics(s.metricsService, startTime, routeVerify, "")
		respondWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(request.References) > core.MaxReferencesBlockBytes {
		metrics.RecordFailureWithMetrics(s.metricsService, startTime, routeVerify, "")
		respondWithError(c, http.StatusRequestEntityTooLarge, "references block too large")
		return
	}

	setStreamingHeaders(c)

	clientGone := false
	emit := func(event core.VerifyEvent) bool {
		if clientGone {
			return false
		}
		eventJSON, err := util.MarshalJSON(event)
		if err != nil {
			s.config.Logger.Warn("Failed to marshal verification event: %v", err)
			return true
		}
		if _, err := writeSSEData(c.Writer, eventJSON); err != nil {
			// The next write after a disconnect fails; stop issuing
			// further external calls.
			clientGone = true
			return false
		}
		c.Writer.Flush()
		return true
	}

	s.verifier.Verify(c.Request.Context(), request.References, emit)

	if !clientGone {
		_, _ = writeSSEDone(c.Writer)
		c.Writer.Flush()
		metrics.RecordSuccessWithMetrics(s.metricsService, startTime, routeVerify, "")
		return
	}

	s.config.Logger.Debug("Client disconnected during reference verification")
	metrics.RecordFailureWithMetrics(s.metricsService, startTime, routeVerify, "")
}
