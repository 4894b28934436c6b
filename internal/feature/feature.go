// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feature derives the normalized ranking signals and the combined
// searchable text for each cleaned row. Scores use min-max scaling over the
// rows that carry a valid raw value; rows without one score 0 and are left
// out of the min/max computation entirely.
package feature

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/recommender-engine/internal/store"
	"github.com/pdiddy/recommender-engine/pkg/types"
)

// Result summarizes one feature-building run.
type Result struct {
	Books  int
	Papers int
}

// Run reads the cleaned tables, derives features, and replaces the feature
// tables. Scores are always re-derived from the raw columns, so re-running
// the stage over its own output is idempotent.
func Run(ctx context.Context, st *store.Store, log *logrus.Entry) (Result, error) {
	books, err := st.CleanedBooks(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("reading cleaned books: %w", err)
	}
	papers, err := st.CleanedPapers(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("reading cleaned papers: %w", err)
	}

	featured := BuildBookFeatures(books)
	for i := range featured {
		if featured[i].CombinedText == "" {
			log.WithField("title", featured[i].Title).Warn("book has empty combined text")
		}
	}
	if err := st.ReplaceFeatureBooks(ctx, featured); err != nil {
		return Result{}, fmt.Errorf("writing book features: %w", err)
	}
	log.WithField("rows", len(featured)).Info("built book features")

	featuredPapers := BuildPaperFeatures(papers)
	for i := range featuredPapers {
		if featuredPapers[i].CombinedText == "" {
			log.WithField("title", featuredPapers[i].Title).Warn("paper has empty combined text")
		}
	}
	if err := st.ReplaceFeaturePapers(ctx, featuredPapers); err != nil {
		return Result{}, fmt.Errorf("writing paper features: %w", err)
	}
	log.WithField("rows", len(featuredPapers)).Info("built paper features")

	return Result{Books: len(featured), Papers: len(featuredPapers)}, nil
}

// BuildBookFeatures returns a copy of books with recency, rating, and page
// scores plus the combined text filled in. Pure: no I/O, input unchanged.
func BuildBookFeatures(books []types.Book) []types.Book {
	out := make([]types.Book, len(books))
	copy(out, books)

	years := make([]float64, len(out))
	yearsValid := make([]bool, len(out))
	ratings := make([]float64, len(out))
	ratingsValid := make([]bool, len(out))
	pages := make([]float64, len(out))
	pagesValid := make([]bool, len(out))

	for i, b := range out {
		if y, ok := PublicationYear(b.PublishedDate); ok {
			years[i] = float64(y)
			yearsValid[i] = true
		}
		if b.AvgRating > 0 {
			ratings[i] = b.AvgRating
			ratingsValid[i] = true
		}
		if b.PageCount > 0 {
			pages[i] = float64(b.PageCount)
			pagesValid[i] = true
		}
	}

	recency := MinMaxScale(years, yearsValid)
	rating := MinMaxScale(ratings, ratingsValid)
	page := MinMaxScale(pages, pagesValid)

	for i := range out {
		out[i].RecencyScore = recency[i]
		out[i].RatingScore = rating[i]
		out[i].PageScore = page[i]
		out[i].CombinedText = CleanText(strings.Join([]string{
			out[i].Title, out[i].Description, out[i].Categories, out[i].Authors,
		}, " "))
	}
	return out
}

// BuildPaperFeatures returns a copy of papers with recency and citations
// scores plus the combined text filled in. Pure: no I/O, input unchanged.
// Zero citations is a real signal, so every row participates in the
// citations min/max; only a missing year excludes a row from recency.
func BuildPaperFeatures(papers []types.Paper) []types.Paper {
	out := make([]types.Paper, len(papers))
	copy(out, papers)

	years := make([]float64, len(out))
	yearsValid := make([]bool, len(out))
	citations := make([]float64, len(out))
	citationsValid := make([]bool, len(out))

	for i, p := range out {
		if p.Year > 0 {
			years[i] = float64(p.Year)
			yearsValid[i] = true
		}
		citations[i] = float64(p.Citations)
		citationsValid[i] = true
	}

	recency := MinMaxScale(years, yearsValid)
	cites := MinMaxScale(citations, citationsValid)

	for i := range out {
		out[i].RecencyScore = recency[i]
		out[i].CitationsScore = cites[i]
		out[i].CombinedText = CleanText(strings.Join([]string{
			out[i].SearchQuery, out[i].Title, out[i].Abstract, out[i].Authors,
		}, " "))
	}
	return out
}

// MinMaxScale maps values[i] to (x-min)/(max-min) over the valid entries.
// Invalid entries score 0 and do not influence min or max. When no entry is
// valid, or all valid entries are equal, every score is 0 — the scale is
// degenerate and dividing by the zero range would be meaningless.
func MinMaxScale(values []float64, valid []bool) []float64 {
	scores := make([]float64, len(values))

	min, max := 0.0, 0.0
	first := true
	for i, v := range values {
		if !valid[i] {
			continue
		}
		if first {
			min, max = v, v
			first = false
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if first || max == min {
		return scores
	}

	span := max - min
	for i, v := range values {
		if valid[i] {
			scores[i] = (v - min) / span
		}
	}
	return scores
}

// yearPattern matches a full date or a bare year at the start of the many
// publishedDate shapes Google Books returns ("2019-05-02", "2019-05", "2019").
var yearPattern = regexp.MustCompile(`(\d{4})(?:-\d{2})?(?:-\d{2})?`)

// PublicationYear extracts a publication year from a raw date string.
// The second return value is false when no year can be parsed.
func PublicationYear(date string) (int, bool) {
	m := yearPattern.FindStringSubmatch(date)
	if m == nil {
		return 0, false
	}
	y, err := strconv.Atoi(m[1])
	if err != nil || y == 0 {
		return 0, false
	}
	return y, true
}

// CleanText normalizes text for vectorization: lowercase, word characters
// only, single spaces, no leading or trailing whitespace. It is pure and
// total — any input, including empty, yields a valid (possibly empty)
// string.
func CleanText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
