// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank turns a free-text query into the top-K books and papers.
// Each category's composite score blends the query similarity with the
// precomputed quality signals from the feature table; the blend weights
// are fixed and sum to 1.0 per category, so final scores stay in [0, 1]
// and are comparable across queries.
package rank

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/recommender-engine/internal/index"
	"github.com/pdiddy/recommender-engine/internal/store"
	"github.com/pdiddy/recommender-engine/pkg/types"
)

// Book composite weights.
const (
	bookSimWeight     = 0.55
	bookRatingWeight  = 0.25
	bookRecencyWeight = 0.15
	bookPageWeight    = 0.05
)

// Paper composite weights.
const (
	paperSimWeight       = 0.60
	paperCitationsWeight = 0.30
	paperRecencyWeight   = 0.10
)

// Handle holds everything needed to serve rank calls: the loaded index and
// the feature rows per category, both from the same generation. Build it
// once and reuse it across queries.
type Handle struct {
	BookIndex  index.SimilarityIndex
	Books      []types.Book
	PaperIndex index.SimilarityIndex
	Papers     []types.Paper

	// CategoryErrors lists categories whose artifacts were missing at load
	// time. Those categories rank as empty lists instead of failing.
	CategoryErrors []string
}

// NewHandle loads both categories' indexes and feature rows. A category
// with missing artifacts is degraded: recorded in CategoryErrors and served
// as empty. Any other load failure — including a stale artifact pair — is
// fatal, as is both categories being unavailable.
func NewHandle(ctx context.Context, st *store.Store, cfg types.IndexConfig, log *logrus.Entry) (*Handle, error) {
	h := &Handle{}

	bookIx, err := index.Load(ctx, st, cfg, types.CategoryBooks)
	switch {
	case err == nil:
		h.BookIndex = bookIx
		if h.Books, err = st.FeatureBooks(ctx); err != nil {
			return nil, fmt.Errorf("loading book features: %w", err)
		}
	case errors.Is(err, index.ErrMissingArtifact):
		log.WithError(err).Warn("book artifacts missing, books will rank empty")
		h.CategoryErrors = append(h.CategoryErrors, fmt.Sprintf("books: %v", err))
	default:
		return nil, err
	}

	paperIx, err := index.Load(ctx, st, cfg, types.CategoryPapers)
	switch {
	case err == nil:
		h.PaperIndex = paperIx
		if h.Papers, err = st.FeaturePapers(ctx); err != nil {
			return nil, fmt.Errorf("loading paper features: %w", err)
		}
	case errors.Is(err, index.ErrMissingArtifact):
		log.WithError(err).Warn("paper artifacts missing, papers will rank empty")
		h.CategoryErrors = append(h.CategoryErrors, fmt.Sprintf("papers: %v", err))
	default:
		return nil, err
	}

	if h.BookIndex == nil && h.PaperIndex == nil {
		return nil, fmt.Errorf("no rankable categories: %w", index.ErrMissingArtifact)
	}
	return h, nil
}

// Rank scores the query against both categories and returns the top kBooks
// books and kPapers papers by composite score, descending. Ties keep table
// order, so repeated calls return identical results.
func Rank(ctx context.Context, h *Handle, query string, kBooks, kPapers int) (types.Ranking, error) {
	out := types.Ranking{
		Query:          query,
		TopBooks:       []types.RankedBook{},
		TopPapers:      []types.RankedPaper{},
		CategoryErrors: h.CategoryErrors,
	}

	if h.BookIndex != nil {
		sims, err := h.BookIndex.Scores(ctx, query)
		if err != nil {
			return types.Ranking{}, fmt.Errorf("scoring books: %w", err)
		}
		out.TopBooks = rankBooks(h.Books, sims, kBooks)
	}

	if h.PaperIndex != nil {
		sims, err := h.PaperIndex.Scores(ctx, query)
		if err != nil {
			return types.Ranking{}, fmt.Errorf("scoring papers: %w", err)
		}
		out.TopPapers = rankPapers(h.Papers, sims, kPapers)
	}
	return out, nil
}

// BookScore blends a similarity score with a book's quality signals.
func BookScore(sim float64, b types.Book) float64 {
	return bookSimWeight*sim +
		bookRatingWeight*b.RatingScore +
		bookRecencyWeight*b.RecencyScore +
		bookPageWeight*b.PageScore
}

// PaperScore blends a similarity score with a paper's quality signals.
func PaperScore(sim float64, p types.Paper) float64 {
	return paperSimWeight*sim +
		paperCitationsWeight*p.CitationsScore +
		paperRecencyWeight*p.RecencyScore
}

func rankBooks(books []types.Book, sims []float64, k int) []types.RankedBook {
	order := sortedOrder(len(books), func(i int) float64 { return BookScore(sims[i], books[i]) })
	if k > len(order) {
		k = len(order)
	}

	ranked := make([]types.RankedBook, 0, k)
	for _, i := range order[:k] {
		b := books[i]
		ranked = append(ranked, types.RankedBook{
			Title:         b.Title,
			Authors:       b.Authors,
			Description:   b.Description,
			Publisher:     b.Publisher,
			PublishedDate: b.PublishedDate,
			AvgRating:     b.AvgRating,
			PreviewLink:   b.PreviewLink,
			SimScore:      sims[i],
			FinalScore:    BookScore(sims[i], b),
		})
	}
	return ranked
}

func rankPapers(papers []types.Paper, sims []float64, k int) []types.RankedPaper {
	order := sortedOrder(len(papers), func(i int) float64 { return PaperScore(sims[i], papers[i]) })
	if k > len(order) {
		k = len(order)
	}

	ranked := make([]types.RankedPaper, 0, k)
	for _, i := range order[:k] {
		p := papers[i]
		ranked = append(ranked, types.RankedPaper{
			Title:      p.Title,
			Authors:    p.Authors,
			Year:       p.Year,
			Citations:  p.Citations,
			URL:        p.URL,
			SimScore:   sims[i],
			FinalScore: PaperScore(sims[i], p),
		})
	}
	return ranked
}

// sortedOrder returns row indices sorted by score descending; equal scores
// keep their original row order.
func sortedOrder(n int, score func(int) float64) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return score(order[a]) > score(order[b])
	})
	return order
}

// FormatTable writes a ranking as two human-readable tables to w.
func FormatTable(out types.Ranking, w io.Writer) {
	fmt.Fprintf(w, "Query: %s\n\n", out.Query)

	fmt.Fprintf(w, "Books (%d)\n", len(out.TopBooks))
	if len(out.TopBooks) == 0 {
		fmt.Fprintln(w, "  none")
	} else {
		fmt.Fprintf(w, "%-4s  %-50s  %-25s  %-6s  %-6s\n",
			"Rank", "Title", "Authors", "Rating", "Score")
		fmt.Fprintln(w, strings.Repeat("-", 100))
		for i, b := range out.TopBooks {
			fmt.Fprintf(w, "%-4d  %-50s  %-25s  %-6.1f  %-6.3f\n",
				i+1, truncate(b.Title, 50), truncate(b.Authors, 25), b.AvgRating, b.FinalScore)
		}
	}

	fmt.Fprintf(w, "\nPapers (%d)\n", len(out.TopPapers))
	if len(out.TopPapers) == 0 {
		fmt.Fprintln(w, "  none")
	} else {
		fmt.Fprintf(w, "%-4s  %-50s  %-25s  %-4s  %-9s  %-6s\n",
			"Rank", "Title", "Authors", "Year", "Citations", "Score")
		fmt.Fprintln(w, strings.Repeat("-", 110))
		for i, p := range out.TopPapers {
			fmt.Fprintf(w, "%-4d  %-50s  %-25s  %-4d  %-9d  %-6.3f\n",
				i+1, truncate(p.Title, 50), truncate(p.Authors, 25), p.Year, p.Citations, p.FinalScore)
		}
	}

	for _, ce := range out.CategoryErrors {
		fmt.Fprintf(w, "\nwarning: %s\n", ce)
	}
}

// FormatJSON writes a ranking as indented JSON to w.
func FormatJSON(out types.Ranking, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
