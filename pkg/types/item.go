// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the recommender pipeline:
// raw catalog records, cleaned item rows, derived feature fields, ranking
// results, and per-stage configuration.
package types

// Category identifies one of the two item corpora the pipeline maintains.
// Every artifact (raw collection, cleaned table, feature table, similarity
// index) exists once per category.
type Category string

const (
	CategoryBooks  Category = "books"
	CategoryPapers Category = "papers"
)

// Book is one row of the books table. The identity and signal columns are
// written by the cleaning stage and immutable afterwards; the score columns
// and CombinedText are derived by the feature stage. Scores are in [0,1]
// and zero when the source signal is missing.
type Book struct {
	Title         string  `json:"title"`
	Authors       string  `json:"authors"`
	Description   string  `json:"description"`
	Categories    string  `json:"categories"`
	Publisher     string  `json:"publisher"`
	PublishedDate string  `json:"publishedDate"`
	AvgRating     float64 `json:"avgrating"`
	PageCount     int     `json:"pagecount"`
	PreviewLink   string  `json:"previewLink"`

	RecencyScore float64 `json:"recency_score"`
	RatingScore  float64 `json:"rating_score"`
	PageScore    float64 `json:"page_score"`
	CombinedText string  `json:"combined_text"`
}

// Paper is one row of the papers table. Year is 0 when the source record
// carried no parseable publication year.
type Paper struct {
	SearchQuery string `json:"SearchQuery"`
	Title       string `json:"Title"`
	Abstract    string `json:"Abstract"`
	Authors     string `json:"Authors"`
	Year        int    `json:"Year"`
	Citations   int    `json:"Citations"`
	Venue       string `json:"Venue"`
	URL         string `json:"URL"`

	RecencyScore   float64 `json:"recency_score"`
	CitationsScore float64 `json:"citations_score"`
	CombinedText   string  `json:"combined_text"`
}
