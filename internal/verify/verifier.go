package verify

import (
	"context"
	"fmt"
	"net/http"

	"eapassist/internal/core"
	"eapassist/internal/util"

	"golang.org/x/time/rate"
)

// EmitFunc receives one stream event. Returning false signals that the
// consumer is gone (client disconnect); the verifier stops issuing further
// external calls as soon as practical.
type EmitFunc func(event core.VerifyEvent) bool

// Verifier turns a block of bibliography text into a stream of per-reference
// validation verdicts. References are processed strictly in input order, one
// at a time, so progress events stream deterministically and the self-imposed
// search-API rate limit stays trivial to enforce.
type Verifier struct {
	apiKey     string
	match      MatchConfig
	httpClient *http.Client
	cache      core.Cache
	logger     core.Logger

	// limiter spaces Semantic Scholar calls at least one interval apart,
	// process-wide, even across concurrent verification streams.
	limiter *rate.Limiter

	searchBase     string
	pubmedSearch   string
	pubmedSummary  string
	crossrefBase   string
	doiBase        string
	webSearchBase  string
	scholarDomains []string
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(v *Verifier) { v.httpClient = hc }
}

// WithCache sets the lookup cache.
func WithCache(c core.Cache) Option {
	return func(v *Verifier) { v.cache = c }
}

// WithMatchConfig overrides the fuzzy-match thresholds.
func WithMatchConfig(cfg MatchConfig) Option {
	return func(v *Verifier) { v.match = cfg }
}

// WithSearchBase overrides the Semantic Scholar endpoint (for testing).
func WithSearchBase(url string) Option {
	return func(v *Verifier) { v.searchBase = url }
}

// WithPubMedBase overrides the PubMed esearch/esummary endpoints (for testing).
func WithPubMedBase(esearch, esummary string) Option {
	return func(v *Verifier) {
		v.pubmedSearch = esearch
		v.pubmedSummary = esummary
	}
}

// WithCrossrefBase overrides the Crossref works endpoint (for testing).
func WithCrossrefBase(url string) Option {
	return func(v *Verifier) { v.crossrefBase = url }
}

// WithDOIBase overrides the doi.org resolver base (for testing).
func WithDOIBase(url string) Option {
	return func(v *Verifier) { v.doiBase = url }
}

// WithWebSearchBase overrides the web search endpoint (for testing).
func WithWebSearchBase(url string) Option {
	return func(v *Verifier) { v.webSearchBase = url }
}

// WithRateInterval overrides the search-API spacing (for testing).
func WithRateInterval(interval rate.Limit) Option {
	return func(v *Verifier) { v.limiter = rate.NewLimiter(interval, 1) }
}

// NewVerifier creates a reference verifier. An empty apiKey disables the
// search cascade: unlinked references are reported as no_links immediately.
func NewVerifier(apiKey string, logger core.Logger, opts ...Option) *Verifier {
	v := &Verifier{
		apiKey:         apiKey,
		match:          DefaultMatchConfig(),
		httpClient:     &http.Client{Timeout: core.SearchAPITimeout},
		logger:         logger,
		limiter:        rate.NewLimiter(rate.Every(core.SearchRateInterval), 1),
		searchBase:     core.SemanticScholarSearch,
		pubmedSearch:   core.PubMedESearchEndpoint,
		pubmedSummary:  core.PubMedESummaryEndpoint,
		crossrefBase:   core.CrossrefWorksEndpoint,
		doiBase:        core.DOIResolverBase,
		webSearchBase:  core.WebSearchEndpoint,
		scholarDomains: scholarlyDomains,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify processes the references block and pushes events to emit. It always
// finishes with exactly one complete event unless the consumer goes away or
// the context is cancelled first. External-API failures never abort the
// stream; they degrade to terminal statuses on the affected reference.
func (v *Verifier) Verify(ctx context.Context, referencesText string, emit EmitFunc) {
	refs := SplitReferences(referencesText)
	total := len(refs)

	for i, line := range refs {
		if ctx.Err() != nil {
			return
		}

		ok := emit(core.VerifyEvent{Progress: &core.VerifyProgress{
			Current: i + 1,
			Total:   total,
			Snippet: util.Snippet(line, 80),
		}})
		if !ok {
			return
		}

		ref := ExtractLinks(line)
		if ref.HasLinks() {
			if !v.verifyLinks(ctx, ref, emit) {
				return
			}
			continue
		}
		if !v.verifyBySearch(ctx, line, emit) {
			return
		}
	}

	emit(core.VerifyEvent{Complete: &core.VerifyComplete{Total: total}})
}

// verifyLinks validates every extracted link independently; each yields its
// own result sharing the reference string. Returns false when the consumer
// is gone.
func (v *Verifier) verifyLinks(ctx context.Context, ref core.Reference, emit EmitFunc) bool {
	for _, doi := range ref.DOIs {
		result := v.checkDOILink(ctx, ref.Raw, doi)
		if !emit(core.VerifyEvent{Result: result}) {
			return false
		}
	}
	for _, url := range ref.URLs {
		result := v.checkPlainURL(ctx, ref.Raw, url)
		if !emit(core.VerifyEvent{Result: result}) {
			return false
		}
	}
	return true
}

// verifyBySearch handles the no-links branch: the search cascade, or an
// immediate no_links verdict when no search key is configured.
func (v *Verifier) verifyBySearch(ctx context.Context, line string, emit EmitFunc) bool {
	if v.apiKey == "" {
		return emit(core.VerifyEvent{Result: &core.ValidationResult{
			Reference: line,
			Status:    core.StatusNoLinks,
			Message:   "No DOI or URL found in reference",
		}})
	}

	ok := emit(core.VerifyEvent{Result: &core.ValidationResult{
		Reference: line,
		Status:    core.StatusSearching,
		Message:   "No links found, searching bibliographic databases...",
	}})
	if !ok {
		return false
	}

	parsed := ParseReference(line)

	best := v.searchPrimary(ctx, parsed)
	if best == nil {
		best = v.searchSecondary(ctx, parsed)
	}
	if best == nil {
		return emit(core.VerifyEvent{Result: v.webSearchVerdict(ctx, line, parsed)})
	}

	if best.DOI != "" {
		if v.resolveDOI(ctx, best.DOI) {
			return emit(core.VerifyEvent{Result: &core.ValidationResult{
				Reference: line,
				DOI:       best.DOI,
				Status:    core.StatusFoundViaSearch,
				Message:   fmt.Sprintf("Found via search: %s", best.Title),
			}})
		}
		return emit(core.VerifyEvent{Result: &core.ValidationResult{
			Reference: line,
			DOI:       best.DOI,
			Status:    core.StatusInvalid,
			Message:   "Matched a record whose DOI does not resolve",
			Details:   best.DOI,
		}})
	}

	// URL-only match needs no second network check.
	return emit(core.VerifyEvent{Result: &core.ValidationResult{
		Reference: line,
		Status:    core.StatusFoundViaSearch,
		Message:   fmt.Sprintf("Found via search: %s", best.Title),
		Details:   best.URL,
	}})
}

// searchPrimary queries Semantic Scholar and scores candidates. Errors are
// logged and treated as "no match"; the cascade continues.
func (v *Verifier) searchPrimary(ctx context.Context, ref core.Reference) *core.CandidateMatch {
	if ref.Title == "" {
		return nil
	}
	candidates, err := v.searchSemanticScholar(ctx, ref.Title)
	if err != nil {
		v.logger.Warn("Semantic Scholar search failed: %v", err)
		return nil
	}
	return BestMatch(ref, candidates, v.match)
}

// searchSecondary queries PubMed with the same scoring function.
func (v *Verifier) searchSecondary(ctx context.Context, ref core.Reference) *core.CandidateMatch {
	if ref.Title == "" {
		return nil
	}
	candidates, err := v.searchPubMed(ctx, ref.Title)
	if err != nil {
		v.logger.Warn("PubMed search failed: %v", err)
		return nil
	}
	return BestMatch(ref, candidates, v.match)
}

// webSearchVerdict is the last-resort raw web search. Known weak point: it
// substring-matches scholarly domains in the result page and will break if
// the search provider changes its markup.
func (v *Verifier) webSearchVerdict(ctx context.Context, line string, ref core.Reference) *core.ValidationResult {
	query := ref.Title
	if query == "" {
		query = line
	}

	found, err := v.webSearchScholarly(ctx, query)
	if err != nil {
		v.logger.Warn("Web search failed: %v", err)
		found = false
	}

	if found {
		return &core.ValidationResult{
			Reference: line,
			Status:    core.StatusFoundViaSearch,
			Message:   "Web search results reference scholarly sources",
		}
	}
	return &core.ValidationResult{
		Reference: line,
		Status:    core.StatusNotFound,
		Message:   "Could not locate this reference in any database",
	}
}
