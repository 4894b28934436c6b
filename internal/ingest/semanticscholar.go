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

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const paperFields = "title,abstract,authors,url,year,citationCount,venue"

// papersPageSize is the largest page the paper search API serves.
const papersPageSize = 100

// PapersClient queries the Semantic Scholar paper search API.
type PapersClient struct {
	Client *http.Client
	APIKey string
}

// FetchAll fetches paper records for every keyword, paging with offset
// until the per-keyword cap or an empty page. Every record is tagged with
// the keyword that found it; the tag becomes the SearchQuery column and
// later part of the paper's combined text.
func (c *PapersClient) FetchAll(ctx context.Context, keywords []string, cfg types.IngestConfig) ([]types.RawPaper, error) {
	maxResults := cfg.MaxPaperResults
	if maxResults <= 0 {
		maxResults = 300
	}

	var all []types.RawPaper
	for i, kw := range keywords {
		if i > 0 && cfg.PageDelay > 0 {
			time.Sleep(cfg.PageDelay)
		}
		papers, err := c.fetchKeyword(ctx, kw, maxResults, cfg)
		if err != nil {
			return nil, fmt.Errorf("keyword %q: %w", kw, err)
		}
		all = append(all, papers...)
	}
	return all, nil
}

func (c *PapersClient) fetchKeyword(ctx context.Context, keyword string, maxResults int, cfg types.IngestConfig) ([]types.RawPaper, error) {
	var papers []types.RawPaper

	for offset := 0; offset < maxResults; offset += papersPageSize {
		if offset > 0 && cfg.PageDelay > 0 {
			time.Sleep(cfg.PageDelay)
		}

		params := url.Values{
			"query":  {keyword},
			"limit":  {fmt.Sprintf("%d", papersPageSize)},
			"offset": {fmt.Sprintf("%d", offset)},
			"fields": {paperFields},
		}

		page, err := c.fetchPage(ctx, semanticAPIBase+"?"+params.Encode(), cfg)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		for i := range page {
			page[i].SearchQuery = keyword
		}
		papers = append(papers, page...)
	}
	return papers, nil
}

func (c *PapersClient) fetchPage(ctx context.Context, reqURL string, cfg types.IngestConfig) ([]types.RawPaper, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var sr paperSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	return sr.Data, nil
}

// Semantic Scholar API JSON envelope.
type paperSearchResponse struct {
	Total  int              `json:"total"`
	Offset int              `json:"offset"`
	Data   []types.RawPaper `json:"data"`
}
