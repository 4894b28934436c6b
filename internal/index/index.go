// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index builds and serves the per-category similarity indexes. An
// index is a fitted text model plus a row-aligned matrix: row i of the
// matrix is the vector of row i of the category's feature table for the
// same generation. The two artifacts are a matched pair; loading verifies
// the pairing before any ranking can happen.
//
// Two strategies exist: lexical TF-IDF (sparse, canonical) and dense
// embeddings from an external provider. A deployment picks one; the
// manifest records it and a load under the other strategy is refused.
package index

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/recommender-engine/internal/store"
	"github.com/pdiddy/recommender-engine/pkg/types"
)

var (
	// ErrMissingArtifact reports that a category's model or matrix is
	// absent. Ranking degrades that category to an empty list.
	ErrMissingArtifact = errors.New("similarity artifacts missing")

	// ErrArtifactMismatch reports that the matrix and the feature table
	// disagree on row count — a stale pair from different generations.
	// Fatal: ranking against it would attach scores to the wrong items.
	ErrArtifactMismatch = errors.New("similarity matrix does not match feature table")
)

const defaultMaxFeatures = 5000

// Manifest describes one persisted model+matrix generation.
type Manifest struct {
	Generation string              `yaml:"generation"`
	Category   types.Category      `yaml:"category"`
	Strategy   types.IndexStrategy `yaml:"strategy"`
	Rows       int                 `yaml:"rows"`
	Dims       int                 `yaml:"dims"`
	CreatedAt  time.Time           `yaml:"created_at"`
}

func modelPath(dir string, cat types.Category) string {
	return filepath.Join(dir, string(cat)+"_model.gob")
}

func matrixPath(dir string, cat types.Category) string {
	return filepath.Join(dir, string(cat)+"_matrix.gob")
}

func manifestPath(dir string, cat types.Category) string {
	return filepath.Join(dir, string(cat)+"_manifest.yaml")
}

// ArtifactsExist reports whether a complete artifact set for the category
// and strategy is already on disk. It is the training skip gate: exists →
// skip refit, absent → build.
func ArtifactsExist(dir string, cat types.Category, strategy types.IndexStrategy) bool {
	required := []string{matrixPath(dir, cat), manifestPath(dir, cat)}
	if strategy == types.StrategyLexical {
		required = append(required, modelPath(dir, cat))
	}
	for _, p := range required {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

// RemoveArtifacts deletes every persisted artifact set under dir. Used by
// forced retraining to defeat the skip gate.
func RemoveArtifacts(dir string) error {
	for _, cat := range []types.Category{types.CategoryBooks, types.CategoryPapers} {
		for _, p := range []string{modelPath(dir, cat), matrixPath(dir, cat), manifestPath(dir, cat)} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing %s: %w", p, err)
			}
		}
	}
	return nil
}

// Train fits and persists the similarity index for every category whose
// artifacts are absent. Existing artifact sets are skipped, making re-runs
// cheap and idempotent.
func Train(ctx context.Context, st *store.Store, cfg types.IndexConfig, log *logrus.Entry) error {
	strategy := cfg.Strategy
	if strategy == "" {
		strategy = types.StrategyLexical
	}

	for _, cat := range []types.Category{types.CategoryBooks, types.CategoryPapers} {
		catLog := log.WithField("category", string(cat))

		if ArtifactsExist(cfg.IndexDir, cat, strategy) {
			catLog.Info("similarity artifacts exist, skipping training")
			continue
		}

		texts, err := st.CombinedTexts(ctx, cat)
		if err != nil {
			return fmt.Errorf("reading combined texts for %s: %w", cat, err)
		}

		if err := trainCategory(ctx, cfg, strategy, cat, texts); err != nil {
			return fmt.Errorf("training %s index: %w", cat, err)
		}
		catLog.WithField("rows", len(texts)).Info("trained similarity index")
	}
	return nil
}

func trainCategory(ctx context.Context, cfg types.IndexConfig, strategy types.IndexStrategy, cat types.Category, texts []string) error {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	manifest := Manifest{
		Generation: uuid.NewString(),
		Category:   cat,
		Strategy:   strategy,
		Rows:       len(texts),
		CreatedAt:  time.Now().UTC(),
	}

	switch strategy {
	case types.StrategyLexical:
		maxFeatures := cfg.MaxFeatures
		if maxFeatures <= 0 {
			maxFeatures = defaultMaxFeatures
		}
		vec := FitTFIDF(texts, maxFeatures)
		matrix := vec.TransformAll(texts)
		manifest.Dims = len(vec.IDF)

		if err := writeGob(modelPath(cfg.IndexDir, cat), vec); err != nil {
			return err
		}
		if err := writeGob(matrixPath(cfg.IndexDir, cat), matrix); err != nil {
			return err
		}

	case types.StrategyEmbedding:
		client := NewEmbedClient(cfg.Embedding)
		matrix, err := client.Embed(ctx, texts)
		if err != nil {
			return err
		}
		if len(matrix) > 0 {
			manifest.Dims = len(matrix[0])
		}
		if err := writeGob(matrixPath(cfg.IndexDir, cat), matrix); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown index strategy %q", strategy)
	}

	return writeManifest(manifestPath(cfg.IndexDir, cat), manifest)
}

// SimilarityIndex scores a free-text query against every indexed row.
// Scores come back in matrix row order, one per item.
type SimilarityIndex interface {
	Scores(ctx context.Context, query string) ([]float64, error)
	Rows() int
}

type lexicalIndex struct {
	vec    *TFIDFVectorizer
	matrix []SparseVector
}

func (ix *lexicalIndex) Rows() int { return len(ix.matrix) }

func (ix *lexicalIndex) Scores(_ context.Context, query string) ([]float64, error) {
	q := ix.vec.Transform(query)
	scores := make([]float64, len(ix.matrix))
	for i, row := range ix.matrix {
		scores[i] = CosineSparse(q, row)
	}
	return scores, nil
}

type denseIndex struct {
	client *EmbedClient
	matrix [][]float64
}

func (ix *denseIndex) Rows() int { return len(ix.matrix) }

func (ix *denseIndex) Scores(ctx context.Context, query string) ([]float64, error) {
	vecs, err := ix.client.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	q := vecs[0]
	scores := make([]float64, len(ix.matrix))
	for i, row := range ix.matrix {
		scores[i] = CosineDense(q, row)
	}
	return scores, nil
}

// Load reads a category's persisted index and verifies its generation
// against the feature table: manifest, matrix, and table must agree on row
// count (ErrArtifactMismatch otherwise), and the manifest's strategy must
// match the configured one. Absent artifacts return ErrMissingArtifact.
func Load(ctx context.Context, st *store.Store, cfg types.IndexConfig, cat types.Category) (SimilarityIndex, error) {
	strategy := cfg.Strategy
	if strategy == "" {
		strategy = types.StrategyLexical
	}

	manifest, err := readManifest(manifestPath(cfg.IndexDir, cat))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s manifest: %w", cat, ErrMissingArtifact)
		}
		return nil, fmt.Errorf("reading %s manifest: %w", cat, err)
	}
	if manifest.Strategy != strategy {
		return nil, fmt.Errorf("%s index was trained with strategy %q, configured %q: %w",
			cat, manifest.Strategy, strategy, ErrArtifactMismatch)
	}

	tableRows, err := st.FeatureRowCount(ctx, cat)
	if err != nil {
		return nil, fmt.Errorf("counting %s feature rows: %w", cat, err)
	}

	var ix SimilarityIndex
	switch strategy {
	case types.StrategyLexical:
		var vec TFIDFVectorizer
		if err := readGob(modelPath(cfg.IndexDir, cat), &vec); err != nil {
			return nil, missingOrFailed(cat, "model", err)
		}
		var matrix []SparseVector
		if err := readGob(matrixPath(cfg.IndexDir, cat), &matrix); err != nil {
			return nil, missingOrFailed(cat, "matrix", err)
		}
		ix = &lexicalIndex{vec: &vec, matrix: matrix}

	case types.StrategyEmbedding:
		var matrix [][]float64
		if err := readGob(matrixPath(cfg.IndexDir, cat), &matrix); err != nil {
			return nil, missingOrFailed(cat, "matrix", err)
		}
		ix = &denseIndex{client: NewEmbedClient(cfg.Embedding), matrix: matrix}

	default:
		return nil, fmt.Errorf("unknown index strategy %q", strategy)
	}

	if ix.Rows() != manifest.Rows || ix.Rows() != tableRows {
		return nil, fmt.Errorf("%s: matrix has %d rows, manifest %d, feature table %d: %w",
			cat, ix.Rows(), manifest.Rows, tableRows, ErrArtifactMismatch)
	}
	return ix, nil
}

func missingOrFailed(cat types.Category, artifact string, err error) error {
	if os.IsNotExist(err) {
		return fmt.Errorf("%s %s: %w", cat, artifact, ErrMissingArtifact)
	}
	return fmt.Errorf("reading %s %s: %w", cat, artifact, err)
}

// writeGob encodes v to path via a temporary file renamed on success.
func writeGob(path string, v any) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".index-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	encErr := gob.NewEncoder(tmpFile).Encode(v)
	closeErr := tmpFile.Close()
	if encErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("encoding %s: %w", path, encErr)
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

func readGob(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

func writeManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func readManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing manifest: %w", err)
	}
	return m, nil
}
