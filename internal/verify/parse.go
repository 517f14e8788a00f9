package verify

import (
	"strconv"
	"strings"

	"eapassist/internal/core"
)

var quotePairs = [][2]string{
	{`"`, `"`},
	{"“", "”"}, // curly double quotes
	{"'", "'"},
}

// ParseReference heuristically extracts title, authors, and year from a
// reference line that carries no links. The heuristics mirror common
// author-year citation styles and are intentionally loose; downstream fuzzy
// matching tolerates imprecision here.
func ParseReference(line string) core.Reference {
	ref := core.Reference{Raw: line}

	// Strip links so URL path segments never pollute year or title parsing.
	stripped := doiPattern.ReplaceAllString(line, " ")
	stripped = urlPattern.ReplaceAllString(stripped, " ")

	ref.Year = extractYear(stripped)
	ref.Title = extractTitle(stripped)
	ref.Authors = extractAuthors(stripped)

	return ref
}

// extractYear returns the first 4-digit token in the 1900-2099 range.
func extractYear(text string) int {
	match := yearPattern.FindString(text)
	if match == "" {
		return 0
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return year
}

// extractTitle prefers text between quotation marks; otherwise it falls back
// to the longest period-delimited segment, which in author-year styles is
// usually the title.
func extractTitle(text string) string {
	for _, pair := range quotePairs {
		start := strings.Index(text, pair[0])
		if start < 0 {
			continue
		}
		rest := text[start+len(pair[0]):]
		end := strings.Index(rest, pair[1])
		if end > 0 {
			return strings.TrimSpace(rest[:end])
		}
	}

	var best string
	for _, segment := range strings.Split(text, ".") {
		segment = strings.TrimSpace(segment)
		if len(segment) > len(best) {
			best = segment
		}
	}
	return strings.Trim(best, " ,;:")
}

// extractAuthors splits the text before the first period on commas and
// ampersands, keeping tokens longer than two characters.
func extractAuthors(text string) []string {
	head, _, _ := strings.Cut(text, ".")

	head = strings.ReplaceAll(head, " and ", "&")
	var authors []string
	for _, token := range strings.FieldsFunc(head, func(r rune) bool {
		return r == ',' || r == '&'
	}) {
		token = strings.TrimSpace(token)
		if len(token) > 2 {
			authors = append(authors, token)
		}
	}
	return authors
}
