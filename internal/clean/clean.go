// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package clean normalizes raw ingested collections into the flat cleaned
// tables. Books pass a keyword allow-list and a positive page-count filter;
// both categories are deduplicated by title, keeping the first occurrence.
// Missing source fields become empty or zero values rather than failing the
// row; an unreadable source file fails the whole stage and nothing is
// written.
package clean

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/recommender-engine/internal/ingest"
	"github.com/pdiddy/recommender-engine/internal/store"
	"github.com/pdiddy/recommender-engine/pkg/types"
)

// Result summarizes one cleaning run.
type Result struct {
	Books  int
	Papers int
}

// Run cleans both raw collections and replaces the cleaned tables. Both
// categories are cleaned before either table is written, so a bad source
// file leaves the store untouched.
func Run(ctx context.Context, st *store.Store, rawDir string, bookKeywords []string, log *logrus.Entry) (Result, error) {
	books, err := CleanBooks(filepath.Join(rawDir, ingest.BooksFile), bookKeywords)
	if err != nil {
		return Result{}, fmt.Errorf("cleaning books: %w", err)
	}
	log.WithField("rows", len(books)).Info("cleaned books")

	papers, err := CleanPapers(filepath.Join(rawDir, ingest.PapersFile))
	if err != nil {
		return Result{}, fmt.Errorf("cleaning papers: %w", err)
	}
	log.WithField("rows", len(papers)).Info("cleaned papers")

	if err := st.ReplaceCleanedBooks(ctx, books); err != nil {
		return Result{}, fmt.Errorf("writing cleaned books: %w", err)
	}
	if err := st.ReplaceCleanedPapers(ctx, papers); err != nil {
		return Result{}, fmt.Errorf("writing cleaned papers: %w", err)
	}

	return Result{Books: len(books), Papers: len(papers)}, nil
}

// CleanBooks reads a raw volumes collection and returns the cleaned rows.
// A volume is kept when its lowercased title or description contains any of
// the configured keywords and its page count is positive.
func CleanBooks(path string, keywords []string) ([]types.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading raw books collection: %w", err)
	}

	var volumes []types.RawVolume
	if err := json.Unmarshal(data, &volumes); err != nil {
		return nil, fmt.Errorf("parsing raw books collection: %w", err)
	}

	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}

	seen := make(map[string]bool)
	var books []types.Book
	for _, vol := range volumes {
		info := vol.VolumeInfo
		if !matchesAny(strings.ToLower(info.Title), strings.ToLower(info.Description), lowered) {
			continue
		}
		if info.PageCount <= 0 {
			continue
		}
		if seen[info.Title] {
			continue
		}
		seen[info.Title] = true

		books = append(books, types.Book{
			Title:         info.Title,
			Authors:       strings.Join(info.Authors, ", "),
			Description:   info.Description,
			Categories:    strings.Join(info.Categories, ", "),
			Publisher:     info.Publisher,
			PublishedDate: info.PublishedDate,
			AvgRating:     info.AverageRating,
			PageCount:     info.PageCount,
			PreviewLink:   info.PreviewLink,
		})
	}
	return books, nil
}

// CleanPapers reads a raw paper collection and returns the cleaned rows,
// deduplicated by title.
func CleanPapers(path string) ([]types.Paper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading raw papers collection: %w", err)
	}

	var records []types.RawPaper
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing raw papers collection: %w", err)
	}

	seen := make(map[string]bool)
	var papers []types.Paper
	for _, rec := range records {
		if seen[rec.Title] {
			continue
		}
		seen[rec.Title] = true

		names := make([]string, 0, len(rec.Authors))
		for _, a := range rec.Authors {
			names = append(names, a.Name)
		}

		papers = append(papers, types.Paper{
			SearchQuery: rec.SearchQuery,
			Title:       rec.Title,
			Abstract:    rec.Abstract,
			Authors:     strings.Join(names, ", "),
			Year:        rec.Year,
			Citations:   rec.CitationCount,
			Venue:       rec.Venue,
			URL:         rec.URL,
		})
	}
	return papers, nil
}

func matchesAny(title, description string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(title, kw) || strings.Contains(description, kw) {
			return true
		}
	}
	return false
}
