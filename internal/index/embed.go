// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/pdiddy/recommender-engine/internal/httputil"
	"github.com/pdiddy/recommender-engine/pkg/types"
)

// EmbedClient calls an external feature-extraction endpoint that maps texts
// to fixed-dimension vectors. Provider failures propagate to the caller;
// retry policy beyond the shared 429 backoff is the provider's concern.
type EmbedClient struct {
	Client *http.Client
	Cfg    types.EmbeddingConfig
}

// NewEmbedClient builds a client from the embedding configuration.
func NewEmbedClient(cfg types.EmbeddingConfig) *EmbedClient {
	return &EmbedClient{
		Client: &http.Client{Timeout: cfg.Timeout},
		Cfg:    cfg,
	}
}

type embedRequest struct {
	Inputs []string `json:"inputs"`
	Model  string   `json:"model,omitempty"`
}

// Embed returns one L2-normalized vector per input text, in input order.
// Texts are sent in batches of Cfg.BatchSize (default 64).
func (c *EmbedClient) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	batchSize := c.Cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 64
	}

	vectors := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	for _, v := range vectors {
		normalize(v)
	}
	return vectors, nil
}

func (c *EmbedClient) embedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	body, err := json.Marshal(embedRequest{Inputs: texts, Model: c.Cfg.Model})
	if err != nil {
		return nil, fmt.Errorf("marshaling embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.Cfg.UserAgent)
	if c.Cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.Cfg.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("embedding provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding provider returned HTTP %d", resp.StatusCode)
	}

	var vectors [][]float64
	if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("parsing embedding response: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding provider returned %d vectors for %d texts", len(vectors), len(texts))
	}
	return vectors, nil
}

// normalize scales v to unit length in place. The zero vector stays zero.
func normalize(v []float64) {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] /= norm
	}
}

// CosineDense returns the cosine similarity of two dense vectors. Vectors
// of differing dimension have similarity 0.
func CosineDense(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
