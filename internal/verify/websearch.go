package verify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"eapassist/internal/core"
)

// scholarlyDomains are substrings whose presence in a search-results page is
// taken as evidence that the reference exists somewhere scholarly.
var scholarlyDomains = []string{
	"doi.org",
	"scholar.google.com",
	"pubmed",
	"jstor.org",
	"wiley.com",
	"springer.com",
	"sciencedirect.com",
}

// webSearchScholarly runs the raw web search fallback and reports whether the
// result page mentions any known scholarly domain.
func (v *Verifier) webSearchScholarly(ctx context.Context, query string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, core.WebSearchTimeout)
	defer cancel()

	params := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.webSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", "eapassist-reference-checker/1.0")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("web search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, core.MaxResponseBodySize))
	if err != nil {
		return false, err
	}

	page := strings.ToLower(string(body))
	for _, domain := range v.scholarDomains {
		if strings.Contains(page, domain) {
			return true, nil
		}
	}
	return false, nil
}
