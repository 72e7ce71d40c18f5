package entities

// ScoredSite is one ranked entry of a search result. Score is the final
// fused relevance value; Rank is 1-based position in the returned order.
type ScoredSite struct {
	Site  *Site   `json:"site"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// SearchResult is the ordered result set the caller receives. It is
// constructed fresh per request and never persisted.
type SearchResult struct {
	Mode    string       `json:"mode"`
	Query   string       `json:"query,omitempty"`
	Results []ScoredSite `json:"results"`
}

// NewSearchResult assigns 1-based ranks in slice order.
func NewSearchResult(mode, query string, scored []ScoredSite) *SearchResult {
	for i := range scored {
		scored[i].Rank = i + 1
	}
	return &SearchResult{
		Mode:    mode,
		Query:   query,
		Results: scored,
	}
}
