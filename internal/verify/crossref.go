package verify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"eapassist/internal/cache"
	"eapassist/internal/core"
	"eapassist/internal/util"
)

// crossrefWork is the subset of Crossref works metadata we surface.
type crossrefWork struct {
	Message struct {
		Title  []string `json:"title"`
		Author []struct {
			Given  string `json:"given"`
			Family string `json:"family"`
		} `json:"author"`
		Issued struct {
			DateParts [][]int `json:"date-parts"`
		} `json:"issued"`
	} `json:"message"`
}

// checkDOILink validates one DOI against the Crossref registry. Registry hits
// become valid results carrying the registered title and authors as details;
// misses and network failures degrade to invalid.
func (v *Verifier) checkDOILink(ctx context.Context, reference, doi string) *core.ValidationResult {
	work, err := v.crossrefLookup(ctx, doi)
	if err != nil {
		v.logger.Debug("Crossref lookup for %s failed: %v", doi, err)
		return &core.ValidationResult{
			Reference: reference,
			DOI:       doi,
			Status:    core.StatusInvalid,
			Message:   "DOI not found in registry",
		}
	}

	title := ""
	if len(work.Message.Title) > 0 {
		title = work.Message.Title[0]
	}

	var authors []string
	for _, a := range work.Message.Author {
		name := strings.TrimSpace(a.Given + " " + a.Family)
		if name != "" {
			authors = append(authors, name)
		}
	}

	details := title
	if len(authors) > 0 {
		details = fmt.Sprintf("%s - %s", title, strings.Join(authors, ", "))
	}

	// A registered DOI whose metadata plainly disagrees with the reference
	// text is worth flagging: students paste the wrong DOI more often than
	// a fabricated one.
	if parsed := ParseReference(reference); title != "" && parsed.Title != "" {
		if Similarity(parsed.Title, title) < core.ContentMismatchFloor {
			return &core.ValidationResult{
				Reference: reference,
				DOI:       doi,
				Status:    core.StatusContentMismatch,
				Message:   "DOI is registered but its metadata does not match this reference",
				Details:   details,
			}
		}
	}

	return &core.ValidationResult{
		Reference: reference,
		DOI:       doi,
		Status:    core.StatusValid,
		Message:   "DOI verified against registry",
		Details:   details,
	}
}

// crossrefLookup fetches works metadata for a DOI, with caching.
func (v *Verifier) crossrefLookup(ctx context.Context, doi string) (*crossrefWork, error) {
	cacheKey := cache.GenerateDOICacheKey(doi)
	if v.cache != nil {
		if cached, found := v.cache.Get(cacheKey); found {
			if work, ok := cached.(*crossrefWork); ok {
				v.logger.Debug("Registry cache hit for %s (key %s)", doi, cache.TruncateCacheKey(cacheKey, 12))
				return work, nil
			}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, core.LinkCheckTimeout)
	defer cancel()

	reqURL := v.crossrefBase + url.PathEscape(doi)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("crossref returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, core.MaxResponseBodySize))
	if err != nil {
		return nil, err
	}

	var work crossrefWork
	if err := util.UnmarshalJSON(body, &work); err != nil {
		return nil, fmt.Errorf("malformed crossref response: %w", err)
	}

	if v.cache != nil {
		v.cache.Set(cacheKey, &work, core.DOIMetadataCacheTTL)
	}
	return &work, nil
}

// resolveDOI confirms a DOI is reachable via the doi.org redirect with a HEAD
// request, following redirects.
func (v *Verifier) resolveDOI(ctx context.Context, doi string) bool {
	ctx, cancel := context.WithTimeout(ctx, core.DOIResolveTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, v.doiBase+doi, nil)
	if err != nil {
		return false
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode < 400
}

// checkPlainURL classifies a non-DOI link purely on HTTP status, following
// redirects with a bounded timeout. Network errors are reported as invalid
// with the error message as details.
func (v *Verifier) checkPlainURL(ctx context.Context, reference, link string) *core.ValidationResult {
	ctx, cancel := context.WithTimeout(ctx, core.LinkCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return &core.ValidationResult{
			Reference: reference,
			Status:    core.StatusInvalid,
			Message:   fmt.Sprintf("URL could not be requested: %s", link),
			Details:   err.Error(),
		}
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return &core.ValidationResult{
			Reference: reference,
			Status:    core.StatusInvalid,
			Message:   fmt.Sprintf("URL unreachable: %s", link),
			Details:   err.Error(),
		}
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, core.MaxResponseBodySize))

	if resp.StatusCode < 400 {
		return &core.ValidationResult{
			Reference: reference,
			Status:    core.StatusValid,
			Message:   fmt.Sprintf("URL reachable: %s", link),
		}
	}
	return &core.ValidationResult{
		Reference: reference,
		Status:    core.StatusInvalid,
		Message:   fmt.Sprintf("URL returned status %d: %s", resp.StatusCode, link),
	}
}
