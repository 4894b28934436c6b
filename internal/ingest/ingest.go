// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest fetches raw item records from external catalogs (Google
// Books volumes, Semantic Scholar paper search) and persists them as one
// raw JSON collection per category. Downstream stages never call the
// catalog APIs; they consume these artifacts.
package ingest

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/recommender-engine/pkg/types"
)

const (
	// BooksFile and PapersFile are the raw collection file names under RawDir.
	BooksFile  = "books.json"
	PapersFile = "papers.json"
)

// Result summarizes one ingestion run.
type Result struct {
	Books      int
	Papers     int
	BooksPath  string
	PapersPath string
}

// Run fetches both categories and writes the raw collections. A failed
// category aborts the run before anything is written, so a partial artifact
// never replaces a complete one.
func Run(ctx context.Context, client *http.Client, cfg types.IngestConfig, log *logrus.Entry) (Result, error) {
	topics, err := LoadTopics(cfg.TopicsFile)
	if err != nil {
		return Result{}, fmt.Errorf("loading topics: %w", err)
	}

	books := &BooksClient{Client: client, APIKey: cfg.GoogleBooksAPIKey}
	volumes, err := books.FetchAll(ctx, topics.BookKeywords(), cfg)
	if err != nil {
		return Result{}, fmt.Errorf("fetching books: %w", err)
	}
	log.WithField("count", len(volumes)).Info("fetched book volumes")

	papers := &PapersClient{Client: client, APIKey: cfg.SemanticScholarAPIKey}
	records, err := papers.FetchAll(ctx, topics.PaperKeywords(), cfg)
	if err != nil {
		return Result{}, fmt.Errorf("fetching papers: %w", err)
	}
	log.WithField("count", len(records)).Info("fetched paper records")

	booksPath := filepath.Join(cfg.RawDir, BooksFile)
	if err := writeJSON(booksPath, volumes); err != nil {
		return Result{}, fmt.Errorf("writing %s: %w", booksPath, err)
	}

	papersPath := filepath.Join(cfg.RawDir, PapersFile)
	if err := writeJSON(papersPath, records); err != nil {
		return Result{}, fmt.Errorf("writing %s: %w", papersPath, err)
	}

	return Result{
		Books:      len(volumes),
		Papers:     len(records),
		BooksPath:  booksPath,
		PapersPath: papersPath,
	}, nil
}

// writeJSON marshals v and writes it to path via a temporary file renamed
// on success, so readers never observe a half-written collection.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling collection: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".ingest-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing collection: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
