// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RankedBook is one book entry of a ranking result: the identity columns
// plus the query-time similarity and the weighted composite score.
type RankedBook struct {
	Title         string  `json:"title"`
	Authors       string  `json:"authors"`
	Description   string  `json:"description"`
	Publisher     string  `json:"publisher"`
	PublishedDate string  `json:"publishedDate"`
	AvgRating     float64 `json:"avgrating"`
	PreviewLink   string  `json:"previewLink"`
	SimScore      float64 `json:"sim_score"`
	FinalScore    float64 `json:"final_score"`
}

// RankedPaper is one paper entry of a ranking result.
type RankedPaper struct {
	Title      string  `json:"Title"`
	Authors    string  `json:"Authors"`
	Year       int     `json:"Year"`
	Citations  int     `json:"Citations"`
	URL        string  `json:"URL"`
	SimScore   float64 `json:"sim_score"`
	FinalScore float64 `json:"final_score"`
}

// Ranking is the result of one rank call. It is created fresh per request
// and never persisted. CategoryErrors records categories whose artifacts
// could not be served; their lists are empty rather than failing the call.
type Ranking struct {
	Query          string        `json:"query"`
	TopBooks       []RankedBook  `json:"top_books"`
	TopPapers      []RankedPaper `json:"top_papers"`
	CategoryErrors []string      `json:"category_errors,omitempty"`
}
