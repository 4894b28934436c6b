// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"

	"github.com/pdiddy/recommender-engine/internal/httputil"
	"github.com/pdiddy/recommender-engine/pkg/types"
)

// googleBooksAPIBase is the Google Books volumes endpoint. Declared as a
// var so tests can substitute an httptest server.
var googleBooksAPIBase = "https://www.googleapis.com/books/v1/volumes"

// booksPageSize is the largest page the volumes API serves.
const booksPageSize = 40

// BooksClient queries the Google Books volumes API.
type BooksClient struct {
	Client *http.Client
	APIKey string
}

// FetchAll fetches volumes for every keyword, paging through results with
// startIndex until the per-keyword cap or an empty page. Each keyword is
// queried as an intitle phrase, matching how the corpora were built.
func (c *BooksClient) FetchAll(ctx context.Context, keywords []string, cfg types.IngestConfig) ([]types.RawVolume, error) {
	maxResults := cfg.MaxBookResults
	if maxResults <= 0 {
		maxResults = 80
	}

	var all []types.RawVolume
	for i, kw := range keywords {
		if i > 0 && cfg.PageDelay > 0 {
			time.Sleep(cfg.PageDelay)
		}
		vols, err := c.fetchKeyword(ctx, kw, maxResults, cfg)
		if err != nil {
			return nil, fmt.Errorf("keyword %q: %w", kw, err)
		}
		all = append(all, vols...)
	}
	return all, nil
}

func (c *BooksClient) fetchKeyword(ctx context.Context, keyword string, maxResults int, cfg types.IngestConfig) ([]types.RawVolume, error) {
	var vols []types.RawVolume

	for start := 0; start < maxResults; start += booksPageSize {
		if start > 0 && cfg.PageDelay > 0 {
			time.Sleep(cfg.PageDelay)
		}

		params := url.Values{
			"q":          {fmt.Sprintf("intitle:%q", keyword)},
			"maxResults": {fmt.Sprintf("%d", booksPageSize)},
			"startIndex": {fmt.Sprintf("%d", start)},
		}
		if c.APIKey != "" {
			params.Set("key", c.APIKey)
		}

		page, err := c.fetchPage(ctx, googleBooksAPIBase+"?"+params.Encode(), cfg)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		vols = append(vols, page...)
	}
	return vols, nil
}

func (c *BooksClient) fetchPage(ctx context.Context, reqURL string, cfg types.IngestConfig) ([]types.RawVolume, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Google Books API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Google Books API returned HTTP %d", resp.StatusCode)
	}

	var vr volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("parsing Google Books response: %w", err)
	}
	return vr.Items, nil
}

// Google Books API JSON envelope.
type volumesResponse struct {
	TotalItems int               `json:"totalItems"`
	Items      []types.RawVolume `json:"items"`
}
