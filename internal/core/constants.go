package core

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Finish reasons in OpenAI format.
const (
	FinishReasonStop      = "stop"
	FinishReasonLength    = "length"
	FinishReasonToolCalls = "tool_calls"
)

// ToolTypeFunction is the only tool type forwarded upstream.
const ToolTypeFunction = "function"

// Response object types and ID prefixes.
const (
	ChatCompletionObjectType = "chat.completion"
	ResponseIDPrefix         = "chatcmpl-"
)

// Provider names.
const (
	ProviderPlatform = "poe-claude"
	ProviderKimi     = "kimi"
	ProviderDeepSeek = "deepseek"
)

// Default upstream endpoints (OpenAI-compatible chat completions).
const (
	PoeAPIEndpoint      = "https://api.poe.com/v1/chat/completions"
	KimiAPIEndpoint     = "https://api.moonshot.cn/v1/chat/completions"
	DeepSeekAPIEndpoint = "https://api.deepseek.com/v1/chat/completions"
)

// Default upstream models.
const (
	PoeDefaultModel      = "Claude-3.5-Sonnet"
	KimiDefaultModel     = "moonshot-v1-8k"
	DeepSeekDefaultModel = "deepseek-chat"
)

// DefaultTemperature is applied when a chat request does not set one.
const DefaultTemperature = 0.7

// HTTP header names.
const (
	HeaderAuthorization   = "Authorization"
	HeaderXAPIKey         = "x-api-key"
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderConnection      = "Connection"
	HeaderPlatformSession = "X-Platform-Session"
	HeaderKimiKey         = "X-Kimi-Key"
	HeaderDeepSeekKey     = "X-DeepSeek-Key"
)

// Header values.
const (
	AuthBearerPrefix       = "Bearer "
	ContentTypeJSON        = "application/json"
	ContentTypeEventStream = "text/event-stream"
	CacheControlNoCache    = "no-cache"
	ConnectionKeepAlive    = "keep-alive"
	CORSMaxAge             = "86400"
)

// SSE framing.
const (
	StreamChunkPrefix      = "data: "
	StreamChunkDoneMessage = "[DONE]"
)

// Bibliographic API endpoints.
const (
	DOIResolverBase        = "https://doi.org/"
	CrossrefWorksEndpoint  = "https://api.crossref.org/works/"
	SemanticScholarSearch  = "https://api.semanticscholar.org/graph/v1/paper/search"
	PubMedESearchEndpoint  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	PubMedESummaryEndpoint = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esummary.fcgi"
	WebSearchEndpoint      = "https://html.duckduckgo.com/html/"
)

// Default fuzzy-match thresholds for search candidates. Empirical values;
// overridable through configuration.
const (
	DefaultTitleSimilarityFloor = 0.6
	DefaultMatchScoreFloor      = 0.6
	DefaultYearTolerance        = 1
)

// ContentMismatchFloor is the registry-title similarity below which a
// registered DOI is reported as content_mismatch rather than valid. Set low
// so the heuristic title parse only trips it on clear disagreement.
const ContentMismatchFloor = 0.3

// Scoring weights for search candidates.
const (
	MatchWeightTitle   = 0.7
	MatchWeightYear    = 0.2
	MatchWeightAuthors = 0.1
)
