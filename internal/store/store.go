// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the pipeline's tabular artifacts in SQLite. Each
// stage owns its tables (cleaning writes cleaned_*, feature building writes
// feature_*) and replaces them wholesale inside one transaction, so readers
// see either the previous generation or the new one, never a mix. Rows keep
// a monotonically increasing seq column; every read returns rows ORDER BY
// seq, which is the row order the similarity matrices are aligned to.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/recommender-engine/pkg/types"
)

// Store manages the recommender SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at cfg.Path and ensures the schema.
func Open(cfg types.StoreConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS cleaned_books (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			authors TEXT,
			description TEXT,
			categories TEXT,
			publisher TEXT,
			published_date TEXT,
			avgrating REAL,
			pagecount INTEGER,
			preview_link TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS cleaned_papers (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			search_query TEXT,
			title TEXT NOT NULL,
			abstract TEXT,
			authors TEXT,
			year INTEGER,
			citations INTEGER,
			venue TEXT,
			url TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS feature_books (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			authors TEXT,
			description TEXT,
			categories TEXT,
			publisher TEXT,
			published_date TEXT,
			avgrating REAL,
			pagecount INTEGER,
			preview_link TEXT,
			recency_score REAL NOT NULL,
			rating_score REAL NOT NULL,
			page_score REAL NOT NULL,
			combined_text TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS feature_papers (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			search_query TEXT,
			title TEXT NOT NULL,
			abstract TEXT,
			authors TEXT,
			year INTEGER,
			citations INTEGER,
			venue TEXT,
			url TEXT,
			recency_score REAL NOT NULL,
			citations_score REAL NOT NULL,
			combined_text TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// replace clears table and runs insert for each index in [0, n) inside one
// transaction.
func (s *Store) replace(ctx context.Context, table, insertSQL string, n int, bind func(i int) []any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return fmt.Errorf("clearing %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, bind(i)...); err != nil {
			return fmt.Errorf("inserting row %d into %s: %w", i, table, err)
		}
	}
	return tx.Commit()
}

// ReplaceCleanedBooks overwrites the cleaned_books table with rows in order.
func (s *Store) ReplaceCleanedBooks(ctx context.Context, books []types.Book) error {
	return s.replace(ctx, "cleaned_books",
		`INSERT INTO cleaned_books
			(title, authors, description, categories, publisher, published_date,
			 avgrating, pagecount, preview_link)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		len(books), func(i int) []any {
			b := books[i]
			return []any{b.Title, b.Authors, b.Description, b.Categories,
				b.Publisher, b.PublishedDate, b.AvgRating, b.PageCount, b.PreviewLink}
		})
}

// ReplaceCleanedPapers overwrites the cleaned_papers table with rows in order.
func (s *Store) ReplaceCleanedPapers(ctx context.Context, papers []types.Paper) error {
	return s.replace(ctx, "cleaned_papers",
		`INSERT INTO cleaned_papers
			(search_query, title, abstract, authors, year, citations, venue, url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		len(papers), func(i int) []any {
			p := papers[i]
			return []any{p.SearchQuery, p.Title, p.Abstract, p.Authors,
				p.Year, p.Citations, p.Venue, p.URL}
		})
}

// ReplaceFeatureBooks overwrites the feature_books table with rows in order.
func (s *Store) ReplaceFeatureBooks(ctx context.Context, books []types.Book) error {
	return s.replace(ctx, "feature_books",
		`INSERT INTO feature_books
			(title, authors, description, categories, publisher, published_date,
			 avgrating, pagecount, preview_link,
			 recency_score, rating_score, page_score, combined_text)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		len(books), func(i int) []any {
			b := books[i]
			return []any{b.Title, b.Authors, b.Description, b.Categories,
				b.Publisher, b.PublishedDate, b.AvgRating, b.PageCount, b.PreviewLink,
				b.RecencyScore, b.RatingScore, b.PageScore, b.CombinedText}
		})
}

// ReplaceFeaturePapers overwrites the feature_papers table with rows in order.
func (s *Store) ReplaceFeaturePapers(ctx context.Context, papers []types.Paper) error {
	return s.replace(ctx, "feature_papers",
		`INSERT INTO feature_papers
			(search_query, title, abstract, authors, year, citations, venue, url,
			 recency_score, citations_score, combined_text)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		len(papers), func(i int) []any {
			p := papers[i]
			return []any{p.SearchQuery, p.Title, p.Abstract, p.Authors,
				p.Year, p.Citations, p.Venue, p.URL,
				p.RecencyScore, p.CitationsScore, p.CombinedText}
		})
}

// CleanedBooks returns the cleaned_books rows in insertion order.
func (s *Store) CleanedBooks(ctx context.Context) ([]types.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, authors, description, categories, publisher, published_date,
			avgrating, pagecount, preview_link
		 FROM cleaned_books ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying cleaned_books: %w", err)
	}
	defer rows.Close()

	var books []types.Book
	for rows.Next() {
		var b types.Book
		if err := rows.Scan(&b.Title, &b.Authors, &b.Description, &b.Categories,
			&b.Publisher, &b.PublishedDate, &b.AvgRating, &b.PageCount, &b.PreviewLink); err != nil {
			return nil, fmt.Errorf("scanning cleaned_books row: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// CleanedPapers returns the cleaned_papers rows in insertion order.
func (s *Store) CleanedPapers(ctx context.Context) ([]types.Paper, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT search_query, title, abstract, authors, year, citations, venue, url
		 FROM cleaned_papers ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying cleaned_papers: %w", err)
	}
	defer rows.Close()

	var papers []types.Paper
	for rows.Next() {
		var p types.Paper
		if err := rows.Scan(&p.SearchQuery, &p.Title, &p.Abstract, &p.Authors,
			&p.Year, &p.Citations, &p.Venue, &p.URL); err != nil {
			return nil, fmt.Errorf("scanning cleaned_papers row: %w", err)
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// FeatureBooks returns the feature_books rows in insertion order.
func (s *Store) FeatureBooks(ctx context.Context) ([]types.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, authors, description, categories, publisher, published_date,
			avgrating, pagecount, preview_link,
			recency_score, rating_score, page_score, combined_text
		 FROM feature_books ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying feature_books: %w", err)
	}
	defer rows.Close()

	var books []types.Book
	for rows.Next() {
		var b types.Book
		if err := rows.Scan(&b.Title, &b.Authors, &b.Description, &b.Categories,
			&b.Publisher, &b.PublishedDate, &b.AvgRating, &b.PageCount, &b.PreviewLink,
			&b.RecencyScore, &b.RatingScore, &b.PageScore, &b.CombinedText); err != nil {
			return nil, fmt.Errorf("scanning feature_books row: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// FeaturePapers returns the feature_papers rows in insertion order.
func (s *Store) FeaturePapers(ctx context.Context) ([]types.Paper, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT search_query, title, abstract, authors, year, citations, venue, url,
			recency_score, citations_score, combined_text
		 FROM feature_papers ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying feature_papers: %w", err)
	}
	defer rows.Close()

	var papers []types.Paper
	for rows.Next() {
		var p types.Paper
		if err := rows.Scan(&p.SearchQuery, &p.Title, &p.Abstract, &p.Authors,
			&p.Year, &p.Citations, &p.Venue, &p.URL,
			&p.RecencyScore, &p.CitationsScore, &p.CombinedText); err != nil {
			return nil, fmt.Errorf("scanning feature_papers row: %w", err)
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// FeatureRowCount returns the number of feature rows for a category. The
// indexing stage compares it against matrix row counts before any ranking.
func (s *Store) FeatureRowCount(ctx context.Context, cat types.Category) (int, error) {
	table, err := featureTable(cat)
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}

// CombinedTexts returns the combined_text column for a category, in row order.
func (s *Store) CombinedTexts(ctx context.Context, cat types.Category) ([]string, error) {
	table, err := featureTable(cat)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT combined_text FROM `+table+` ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning combined_text: %w", err)
		}
		texts = append(texts, t)
	}
	return texts, rows.Err()
}

func featureTable(cat types.Category) (string, error) {
	switch cat {
	case types.CategoryBooks:
		return "feature_books", nil
	case types.CategoryPapers:
		return "feature_papers", nil
	default:
		return "", fmt.Errorf("unknown category %q", cat)
	}
}
