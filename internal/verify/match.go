package verify

import (
	"strings"

	"eapassist/internal/core"
)

// MatchConfig holds the fuzzy-match thresholds for search candidates. The
// defaults are empirical and may need tuning per citation style, so they are
// configuration rather than constants.
type MatchConfig struct {
	TitleSimilarityFloor float64
	MatchScoreFloor      float64
	YearTolerance        int
}

// DefaultMatchConfig returns the stock thresholds.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		TitleSimilarityFloor: core.DefaultTitleSimilarityFloor,
		MatchScoreFloor:      core.DefaultMatchScoreFloor,
		YearTolerance:        core.DefaultYearTolerance,
	}
}

// Similarity computes normalized Levenshtein similarity between two strings,
// case-insensitive: 1 - editDistance/maxLen. Two empty strings score 0.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 0
	}
	return 1.0 - float64(levenshtein(a, b))/float64(maxLen)
}

// levenshtein computes edit distance over runes with a two-row table.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// scoredCandidate pairs a candidate with its computed scores.
type scoredCandidate struct {
	candidate core.CandidateMatch
	titleSim  float64
	score     float64
}

// ScoreCandidate computes the weighted match score of a candidate against the
// parsed reference: 0.7×titleSimilarity + 0.2×yearMatch + 0.1×authorOverlap.
func ScoreCandidate(ref core.Reference, candidate core.CandidateMatch, cfg MatchConfig) (titleSim, score float64) {
	titleSim = Similarity(ref.Title, candidate.Title)

	yearScore := 0.0
	if ref.Year != 0 && candidate.Year != 0 {
		diff := ref.Year - candidate.Year
		if diff < 0 {
			diff = -diff
		}
		if diff <= cfg.YearTolerance {
			yearScore = 1.0
		}
	}

	score = core.MatchWeightTitle*titleSim +
		core.MatchWeightYear*yearScore +
		core.MatchWeightAuthors*authorOverlap(ref.Authors, candidate.Authors)
	return titleSim, score
}

// BestMatch scores every candidate and returns the highest-scoring one,
// provided its title similarity and total score both clear the configured
// floors. Returns nil when no candidate qualifies.
func BestMatch(ref core.Reference, candidates []core.CandidateMatch, cfg MatchConfig) *core.CandidateMatch {
	var best *scoredCandidate
	for _, candidate := range candidates {
		titleSim, score := ScoreCandidate(ref, candidate, cfg)
		if best == nil || score > best.score {
			best = &scoredCandidate{candidate: candidate, titleSim: titleSim, score: score}
		}
	}

	if best == nil || best.titleSim <= cfg.TitleSimilarityFloor || best.score <= cfg.MatchScoreFloor {
		return nil
	}
	match := best.candidate
	return &match
}

// authorOverlap returns the fraction of reference authors whose surname
// appears among the candidate's author names.
func authorOverlap(refAuthors, candidateAuthors []string) float64 {
	if len(refAuthors) == 0 || len(candidateAuthors) == 0 {
		return 0
	}

	lowered := make([]string, len(candidateAuthors))
	for i, name := range candidateAuthors {
		lowered[i] = strings.ToLower(name)
	}

	matched := 0
	for _, author := range refAuthors {
		surname := strings.ToLower(surnameOf(author))
		if surname == "" {
			continue
		}
		for _, name := range lowered {
			if strings.Contains(name, surname) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(refAuthors))
}

// surnameOf picks the longest word of an author token, which survives both
// "Smith, J." and "J. Smith" orderings.
func surnameOf(author string) string {
	var longest string
	for _, word := range strings.Fields(author) {
		word = strings.Trim(word, ".,")
		if len(word) > len(longest) {
			longest = word
		}
	}
	return longest
}
