package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "recommender-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// IngestConfig holds settings for the ingestion stage.
type IngestConfig struct {
	HTTPConfig `yaml:",inline"`

	// TopicsFile is the YAML file listing book and paper topic keywords.
	TopicsFile string `json:"topics_file" yaml:"topics_file"`

	// RawDir is the directory receiving the raw JSON collections
	// (books.json, papers.json).
	RawDir string `json:"raw_dir" yaml:"raw_dir"`

	// GoogleBooksAPIKey authenticates Google Books volume queries.
	GoogleBooksAPIKey string `json:"google_books_api_key,omitempty" yaml:"google_books_api_key,omitempty"`

	// SemanticScholarAPIKey is an optional key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// PageDelay is the delay between consecutive catalog page fetches (default 1s).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay"`

	// MaxBookResults caps the volumes fetched per book keyword (default 80).
	MaxBookResults int `json:"max_book_results" yaml:"max_book_results"`

	// MaxPaperResults caps the records fetched per paper keyword (default 300).
	MaxPaperResults int `json:"max_paper_results" yaml:"max_paper_results"`
}

// StoreConfig holds settings for the tabular artifact store.
type StoreConfig struct {
	// Path is the SQLite database file holding the cleaned and feature tables.
	Path string `json:"path" yaml:"path"`
}

// IndexStrategy selects the text-similarity model family. A deployment uses
// one strategy for both categories; strategies are never mixed within a run.
type IndexStrategy string

const (
	StrategyLexical   IndexStrategy = "lexical"
	StrategyEmbedding IndexStrategy = "embedding"
)

// EmbeddingConfig holds settings for the external embedding provider.
type EmbeddingConfig struct {
	HTTPConfig `yaml:",inline"`

	// Endpoint is the feature-extraction URL of the provider.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Model is the embedding model identifier
	// (e.g. "sentence-transformers/all-MiniLM-L6-v2").
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates provider calls.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BatchSize is the number of texts sent per provider call (default 64).
	BatchSize int `json:"batch_size" yaml:"batch_size"`
}

// IndexConfig holds settings for the indexing/training stage.
type IndexConfig struct {
	// Strategy selects lexical TF-IDF or dense embeddings (default lexical).
	Strategy IndexStrategy `json:"strategy" yaml:"strategy"`

	// IndexDir is the directory receiving model, matrix, and manifest files.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxFeatures bounds the TF-IDF vocabulary size (default 5000).
	MaxFeatures int `json:"max_features" yaml:"max_features"`

	// Embedding configures the provider used by the embedding strategy.
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Ingest IngestConfig `json:"ingest" yaml:"ingest"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	Index  IndexConfig  `json:"index" yaml:"index"`
}
