package provider

import (
	"errors"
	"fmt"
)

// ErrNoProviderAvailable indicates that no usable credential was found for
// any backend. Surfaced to callers as a "not configured" condition; never
// retried.
var ErrNoProviderAvailable = errors.New("no provider available: no usable credential configured")

// UpstreamError reports a non-success response from the chosen backend.
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.Provider, e.Status)
}
