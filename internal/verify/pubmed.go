package verify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"eapassist/internal/core"
	"eapassist/internal/util"
)

// pubmedSearchResponse is the esearch payload (retmode=json).
type pubmedSearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// pubmedSummary is one esummary record (retmode=json).
type pubmedSummary struct {
	Title   string `json:"title"`
	PubDate string `json:"pubdate"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	ArticleIDs []struct {
		IDType string `json:"idtype"`
		Value  string `json:"value"`
	} `json:"articleids"`
}

// searchPubMed queries the secondary bibliographic database: an esearch for
// PubMed IDs followed by an esummary for their metadata. No API key required.
func (v *Verifier) searchPubMed(ctx context.Context, title string) ([]core.CandidateMatch, error) {
	ids, err := v.pubmedESearch(ctx, title)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return v.pubmedESummary(ctx, ids)
}

func (v *Verifier) pubmedESearch(ctx context.Context, title string) ([]string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {title},
		"retmax":  {"10"},
		"retmode": {"json"},
	}

	ctx, cancel := context.WithTimeout(ctx, core.SearchAPITimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.pubmedSearch+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pubmed esearch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, core.MaxResponseBodySize))
	if err != nil {
		return nil, err
	}

	var parsed pubmedSearchResponse
	if err := util.UnmarshalJSON(body, &parsed); err != nil {
		return nil, fmt.Errorf("malformed pubmed esearch response: %w", err)
	}
	return parsed.ESearchResult.IDList, nil
}

func (v *Verifier) pubmedESummary(ctx context.Context, ids []string) ([]core.CandidateMatch, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"json"},
	}

	ctx, cancel := context.WithTimeout(ctx, core.SearchAPITimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.pubmedSummary+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pubmed esummary returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, core.MaxResponseBodySize))
	if err != nil {
		return nil, err
	}

	// The esummary result object maps each PubMed ID to its record, plus a
	// "uids" index entry; decode loosely and pick records by ID.
	var envelope struct {
		Result map[string]any `json:"result"`
	}
	if err := util.UnmarshalJSON(body, &envelope); err != nil {
		return nil, fmt.Errorf("malformed pubmed esummary response: %w", err)
	}

	var candidates []core.CandidateMatch
	for _, id := range ids {
		raw, ok := envelope.Result[id]
		if !ok {
			continue
		}
		recordBytes, err := util.MarshalJSON(raw)
		if err != nil {
			continue
		}
		var record pubmedSummary
		if err := util.UnmarshalJSON(recordBytes, &record); err != nil {
			continue
		}

		candidate := core.CandidateMatch{
			Title: record.Title,
			Year:  yearFromPubDate(record.PubDate),
		}
		for _, a := range record.Authors {
			candidate.Authors = append(candidate.Authors, a.Name)
		}
		for _, aid := range record.ArticleIDs {
			if aid.IDType == "doi" {
				candidate.DOI = aid.Value
				break
			}
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

// yearFromPubDate parses the leading year of a PubMed pubdate like "2020 Jan 15".
func yearFromPubDate(pubdate string) int {
	fields := strings.Fields(pubdate)
	if len(fields) == 0 {
		return 0
	}
	year, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return year
}
