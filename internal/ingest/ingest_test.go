// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/recommender-engine/pkg/types"
)

func testLog() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logrus.NewEntry(logger)
}

const topicsYAML = `book_topics:
  - name: ml
    keywords:
      - machine learning
      - deep learning
paper_topics:
  - name: ml
    keywords:
      - representation learning
`

func writeTopics(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "topics.yaml")
	if err := os.WriteFile(path, []byte(topicsYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// --- LoadTopics ---

func TestLoadTopics(t *testing.T) {
	topics, err := LoadTopics(writeTopics(t))
	if err != nil {
		t.Fatalf("LoadTopics: %v", err)
	}

	books := topics.BookKeywords()
	if len(books) != 2 || books[0] != "machine learning" || books[1] != "deep learning" {
		t.Errorf("BookKeywords = %v", books)
	}
	papers := topics.PaperKeywords()
	if len(papers) != 1 || papers[0] != "representation learning" {
		t.Errorf("PaperKeywords = %v", papers)
	}
}

func TestLoadTopicsMissingFile(t *testing.T) {
	if _, err := LoadTopics(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing topics file")
	}
}

// --- BooksClient ---

// booksTestServer serves `perPage` items until `total` items have been
// served for a keyword, then empty pages.
func booksTestServer(t *testing.T, total int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, _ := strconv.Atoi(r.URL.Query().Get("startIndex"))

		var items []types.RawVolume
		for i := start; i < total && i < start+booksPageSize; i++ {
			items = append(items, types.RawVolume{VolumeInfo: types.VolumeInfo{
				Title:     fmt.Sprintf("Volume %d", i),
				PageCount: 100,
			}})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"totalItems": total, "items": items})
	}))
}

func TestBooksClientPagination(t *testing.T) {
	ts := booksTestServer(t, 60)
	defer ts.Close()

	old := googleBooksAPIBase
	googleBooksAPIBase = ts.URL
	defer func() { googleBooksAPIBase = old }()

	c := &BooksClient{Client: ts.Client()}
	cfg := types.IngestConfig{MaxBookResults: 80}

	vols, err := c.FetchAll(context.Background(), []string{"machine learning"}, cfg)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	// 60 items arrive over a full page of 40 and a short page of 20.
	if len(vols) != 60 {
		t.Fatalf("len = %d, want 60", len(vols))
	}
	if vols[0].VolumeInfo.Title != "Volume 0" || vols[59].VolumeInfo.Title != "Volume 59" {
		t.Errorf("boundary titles = %q, %q", vols[0].VolumeInfo.Title, vols[59].VolumeInfo.Title)
	}
}

func TestBooksClientRespectsCap(t *testing.T) {
	ts := booksTestServer(t, 500)
	defer ts.Close()

	old := googleBooksAPIBase
	googleBooksAPIBase = ts.URL
	defer func() { googleBooksAPIBase = old }()

	c := &BooksClient{Client: ts.Client()}
	cfg := types.IngestConfig{MaxBookResults: 80}

	vols, err := c.FetchAll(context.Background(), []string{"machine learning"}, cfg)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(vols) != 80 {
		t.Errorf("len = %d, want the 80-volume cap", len(vols))
	}
}

func TestBooksClientSendsKey(t *testing.T) {
	var gotKey string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		fmt.Fprint(w, `{"totalItems": 0, "items": []}`)
	}))
	defer ts.Close()

	old := googleBooksAPIBase
	googleBooksAPIBase = ts.URL
	defer func() { googleBooksAPIBase = old }()

	c := &BooksClient{Client: ts.Client(), APIKey: "test-key"}
	if _, err := c.FetchAll(context.Background(), []string{"x"}, types.IngestConfig{}); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if gotKey != "test-key" {
		t.Errorf("key = %q, want test-key", gotKey)
	}
}

func TestBooksClientServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	old := googleBooksAPIBase
	googleBooksAPIBase = ts.URL
	defer func() { googleBooksAPIBase = old }()

	c := &BooksClient{Client: ts.Client()}
	if _, err := c.FetchAll(context.Background(), []string{"x"}, types.IngestConfig{}); err == nil {
		t.Fatal("expected error for HTTP 403")
	}
}

// --- PapersClient ---

func TestPapersClientTagsSearchQuery(t *testing.T) {
	var gotAPIKey string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("x-api-key")
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		if offset > 0 {
			fmt.Fprint(w, `{"total": 1, "offset": 100, "data": []}`)
			return
		}
		fmt.Fprint(w, `{"total": 1, "offset": 0, "data": [
			{"title": "Attention", "year": 2017, "citationCount": 90000}
		]}`)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	c := &PapersClient{Client: ts.Client(), APIKey: "s2-key"}
	cfg := types.IngestConfig{MaxPaperResults: 300}

	papers, err := c.FetchAll(context.Background(), []string{"transformers"}, cfg)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(papers) != 1 {
		t.Fatalf("len = %d, want 1", len(papers))
	}
	if papers[0].SearchQuery != "transformers" {
		t.Errorf("SearchQuery = %q, want the keyword that found the record", papers[0].SearchQuery)
	}
	if papers[0].Title != "Attention" || papers[0].CitationCount != 90000 {
		t.Errorf("paper = %+v", papers[0])
	}
	if gotAPIKey != "s2-key" {
		t.Errorf("x-api-key = %q, want s2-key", gotAPIKey)
	}
}

func TestPapersClientServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	c := &PapersClient{Client: ts.Client()}
	if _, err := c.FetchAll(context.Background(), []string{"x"}, types.IngestConfig{}); err == nil {
		t.Fatal("expected error for HTTP 502")
	}
}

// --- Run ---

func TestRunWritesRawCollections(t *testing.T) {
	booksTS := booksTestServer(t, 3)
	defer booksTS.Close()
	papersTS := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		if offset > 0 {
			fmt.Fprint(w, `{"total": 2, "offset": 100, "data": []}`)
			return
		}
		fmt.Fprint(w, `{"total": 2, "offset": 0, "data": [
			{"title": "P1"}, {"title": "P2"}
		]}`)
	}))
	defer papersTS.Close()

	oldBooks, oldPapers := googleBooksAPIBase, semanticAPIBase
	googleBooksAPIBase = booksTS.URL
	semanticAPIBase = papersTS.URL
	defer func() {
		googleBooksAPIBase = oldBooks
		semanticAPIBase = oldPapers
	}()

	rawDir := filepath.Join(t.TempDir(), "raw")
	cfg := types.IngestConfig{
		TopicsFile:      writeTopics(t),
		RawDir:          rawDir,
		MaxBookResults:  40,
		MaxPaperResults: 100,
	}

	result, err := Run(context.Background(), http.DefaultClient, cfg, testLog())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Two book keywords at 3 volumes each, one paper keyword at 2 records.
	if result.Books != 6 || result.Papers != 2 {
		t.Errorf("result = %+v, want 6 books and 2 papers", result)
	}

	data, err := os.ReadFile(filepath.Join(rawDir, BooksFile))
	if err != nil {
		t.Fatalf("reading books collection: %v", err)
	}
	var vols []types.RawVolume
	if err := json.Unmarshal(data, &vols); err != nil {
		t.Fatalf("parsing books collection: %v", err)
	}
	if len(vols) != 6 {
		t.Errorf("persisted %d volumes, want 6", len(vols))
	}

	if _, err := os.Stat(filepath.Join(rawDir, PapersFile)); err != nil {
		t.Errorf("papers collection not written: %v", err)
	}
}

func TestRunAbortsBeforeWritingOnFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	old := googleBooksAPIBase
	googleBooksAPIBase = ts.URL
	defer func() { googleBooksAPIBase = old }()

	rawDir := filepath.Join(t.TempDir(), "raw")
	cfg := types.IngestConfig{TopicsFile: writeTopics(t), RawDir: rawDir}

	if _, err := Run(context.Background(), http.DefaultClient, cfg, testLog()); err == nil {
		t.Fatal("expected error when the books fetch fails")
	}
	if _, err := os.Stat(filepath.Join(rawDir, BooksFile)); !os.IsNotExist(err) {
		t.Error("raw collection written despite the failed run")
	}
}
