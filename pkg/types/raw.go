// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RawVolume mirrors one item of the Google Books volumes API response.
// The ingestion stage persists these verbatim; cleaning consumes them.
type RawVolume struct {
	VolumeInfo VolumeInfo `json:"volumeInfo"`
}

// VolumeInfo carries the volume fields the pipeline uses. Fields absent
// from the API response decode to their zero values.
type VolumeInfo struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Description   string   `json:"description"`
	Categories    []string `json:"categories"`
	Publisher     string   `json:"publisher"`
	PublishedDate string   `json:"publishedDate"`
	AverageRating float64  `json:"averageRating"`
	PageCount     int      `json:"pageCount"`
	PreviewLink   string   `json:"previewLink"`
}

// RawPaper mirrors one Semantic Scholar search record. SearchQuery is the
// keyword that produced the record; ingestion tags it before persisting.
type RawPaper struct {
	SearchQuery   string      `json:"searchQuery"`
	Title         string      `json:"title"`
	Abstract      string      `json:"abstract"`
	Authors       []RawAuthor `json:"authors"`
	Year          int         `json:"year"`
	CitationCount int         `json:"citationCount"`
	Venue         string      `json:"venue"`
	URL           string      `json:"url"`
}

// RawAuthor is a paper author as returned by the Semantic Scholar API.
type RawAuthor struct {
	Name string `json:"name"`
}
