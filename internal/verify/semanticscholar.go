package verify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"eapassist/internal/cache"
	"eapassist/internal/core"
	"eapassist/internal/util"
)

const semanticScholarFields = "title,authors,year,externalIds,url"

// semanticResponse is the Semantic Scholar paper search payload.
type semanticResponse struct {
	Data []struct {
		Title   string `json:"title"`
		Year    int    `json:"year"`
		URL     string `json:"url"`
		Authors []struct {
			Name string `json:"name"`
		} `json:"authors"`
		ExternalIDs struct {
			DOI string `json:"DOI"`
		} `json:"externalIds"`
	} `json:"data"`
}

// searchSemanticScholar queries the primary bibliographic search API for the
// parsed title. Calls are spaced through the process-wide limiter; results
// are cached per query.
func (v *Verifier) searchSemanticScholar(ctx context.Context, title string) ([]core.CandidateMatch, error) {
	cacheKey := cache.GenerateSearchCacheKey("s2", title)
	if v.cache != nil {
		if cached, found := v.cache.Get(cacheKey); found {
			if candidates, ok := cached.([]core.CandidateMatch); ok {
				return candidates, nil
			}
		}
	}

	if err := v.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"query":  {title},
		"limit":  {"10"},
		"fields": {semanticScholarFields},
	}

	ctx, cancel := context.WithTimeout(ctx, core.SearchAPITimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.searchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(core.HeaderXAPIKey, v.apiKey)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("semantic scholar returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, core.MaxResponseBodySize))
	if err != nil {
		return nil, err
	}

	var parsed semanticResponse
	if err := util.UnmarshalJSON(body, &parsed); err != nil {
		return nil, fmt.Errorf("malformed semantic scholar response: %w", err)
	}

	candidates := make([]core.CandidateMatch, 0, len(parsed.Data))
	for _, paper := range parsed.Data {
		candidate := core.CandidateMatch{
			Title: paper.Title,
			Year:  paper.Year,
			DOI:   paper.ExternalIDs.DOI,
			URL:   paper.URL,
		}
		for _, a := range paper.Authors {
			candidate.Authors = append(candidate.Authors, a.Name)
		}
		candidates = append(candidates, candidate)
	}

	if v.cache != nil {
		v.cache.Set(cacheKey, candidates, core.SearchResultCacheTTL)
	}
	return candidates, nil
}
