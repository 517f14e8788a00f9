package verify

import (
	"regexp"
	"strings"

	"eapassist/internal/core"
)

var (
	// DOI pattern: 10.XXXX/... where XXXX is 4+ digits.
	doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

	// Generic URL pattern; trailing punctuation is stripped afterwards.
	urlPattern = regexp.MustCompile(`https?://[^\s<>"{}|\\^\[\]` + "`" + `]+`)

	yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

const linkTrailingPunct = ".,;:)!?'\""

// SplitReferences splits a bibliography block into individual reference
// lines, discarding blanks.
func SplitReferences(text string) []string {
	var refs []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			refs = append(refs, trimmed)
		}
	}
	return refs
}

// ExtractLinks derives the DOI and URL sets for one reference line. Every DOI
// is normalized to its canonical doi.org URL; doi.org URLs matched by the
// generic pattern are folded into the DOI set instead of being reported twice.
func ExtractLinks(line string) core.Reference {
	ref := core.Reference{Raw: line}
	seen := make(map[string]bool)

	for _, match := range doiPattern.FindAllString(line, -1) {
		doi := strings.TrimRight(match, linkTrailingPunct)
		if doi == "" || seen[strings.ToLower(doi)] {
			continue
		}
		seen[strings.ToLower(doi)] = true
		ref.DOIs = append(ref.DOIs, doi)
	}

	for _, match := range urlPattern.FindAllString(line, -1) {
		url := strings.TrimRight(match, linkTrailingPunct)
		if url == "" {
			continue
		}
		if isDOIURL(url) {
			// Already covered by the DOI set.
			continue
		}
		if seen[strings.ToLower(url)] {
			continue
		}
		seen[strings.ToLower(url)] = true
		ref.URLs = append(ref.URLs, url)
	}

	return ref
}

func isDOIURL(url string) bool {
	lower := strings.ToLower(url)
	return strings.Contains(lower, "doi.org/") || strings.Contains(lower, "dx.doi.org/")
}
