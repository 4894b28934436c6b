// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/pdiddy/recommender-engine/pkg/types"
)

// embedTestServer returns one deterministic 3-dimensional vector per input
// and records how many texts each request carried.
func embedTestServer(t *testing.T, batchSizes *[]int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Inputs []string `json:"inputs"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		*batchSizes = append(*batchSizes, len(req.Inputs))

		vectors := make([][]float64, len(req.Inputs))
		for i := range vectors {
			vectors[i] = []float64{3, 0, 4}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(vectors)
	}))
}

func embedTestClient(ts *httptest.Server, batchSize int) *EmbedClient {
	c := NewEmbedClient(types.EmbeddingConfig{
		Endpoint:  ts.URL,
		Model:     "test-model",
		BatchSize: batchSize,
	})
	c.Client = ts.Client()
	return c
}

func TestEmbedNormalizes(t *testing.T) {
	var batches []int
	ts := embedTestServer(t, &batches)
	defer ts.Close()

	vecs, err := embedTestClient(ts, 0).Embed(context.Background(), []string{"hello"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 1 {
		t.Fatalf("len = %d, want 1", len(vecs))
	}
	// (3, 0, 4) has norm 5.
	want := []float64{0.6, 0, 0.8}
	for i := range want {
		if math.Abs(vecs[0][i]-want[i]) > 1e-9 {
			t.Errorf("vecs[0][%d] = %v, want %v", i, vecs[0][i], want[i])
		}
	}
}

func TestEmbedBatches(t *testing.T) {
	var batches []int
	ts := embedTestServer(t, &batches)
	defer ts.Close()

	texts := make([]string, 5)
	for i := range texts {
		texts[i] = fmt.Sprintf("doc %d", i)
	}

	vecs, err := embedTestClient(ts, 2).Embed(context.Background(), texts)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 5 {
		t.Fatalf("len = %d, want 5", len(vecs))
	}
	want := []int{2, 2, 1}
	if len(batches) != len(want) {
		t.Fatalf("batches = %v, want %v", batches, want)
	}
	for i := range want {
		if batches[i] != want[i] {
			t.Errorf("batch %d carried %d texts, want %d", i, batches[i], want[i])
		}
	}
}

func TestEmbedCountMismatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[[1, 0, 0]]`)
	}))
	defer ts.Close()

	_, err := embedTestClient(ts, 0).Embed(context.Background(), []string{"one", "two"})
	if err == nil {
		t.Fatal("expected error for vector count mismatch")
	}
}

func TestEmbedProviderError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := embedTestClient(ts, 0).Embed(context.Background(), []string{"one"})
	if err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}

func TestCosineDense(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"parallel", []float64{1, 0}, []float64{2, 0}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
		{"dimension mismatch", []float64{1}, []float64{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CosineDense(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineDense = %v, want %v", got, tt.want)
			}
		})
	}
}
