package core

// Validation statuses emitted by the reference verifier.
const (
	StatusNoLinks         = "no_links"
	StatusValid           = "valid"
	StatusInvalid         = "invalid"
	StatusContentMismatch = "content_mismatch"
	StatusSearching       = "searching"
	StatusFoundViaSearch  = "found_via_search"
	StatusNotFound        = "not_found"
)

// Reference is a single line of raw bibliography text with attributes
// derived at parse time.
type Reference struct {
	Raw     string
	DOIs    []string
	URLs    []string
	Title   string
	Authors []string
	Year    int
}

// HasLinks reports whether any DOI or URL was extracted from the line.
func (r *Reference) HasLinks() bool {
	return len(r.DOIs) > 0 || len(r.URLs) > 0
}

// ValidationResult is one verdict for a reference (or for one of its links).
// Created and streamed immediately; never persisted.
type ValidationResult struct {
	Reference string `json:"reference"`
	DOI       string `json:"doi,omitempty"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
}

// CandidateMatch is a record returned by an external search API, scored
// against a reference's parsed fields. Ephemeral; discarded after the best
// match is chosen.
type CandidateMatch struct {
	Title   string
	Authors []string
	Year    int
	DOI     string
	URL     string
}

// VerifyProgress reports position within the input block.
type VerifyProgress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Snippet string `json:"snippet"`
}

// VerifyComplete is the terminal event of a verification stream.
type VerifyComplete struct {
	Total int `json:"total"`
}

// VerifyEvent is one element of the verification stream. Exactly one of the
// pointer fields is set.
type VerifyEvent struct {
	Progress *VerifyProgress   `json:"progress,omitempty"`
	Result   *ValidationResult `json:"result,omitempty"`
	Complete *VerifyComplete   `json:"complete,omitempty"`
}
