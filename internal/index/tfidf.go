// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"math"
	"sort"
)

// SparseVector is one row of a lexical similarity matrix: the non-zero
// TF-IDF weights of a document, with Indices sorted ascending.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// TFIDFVectorizer maps text to sparse TF-IDF vectors over a vocabulary
// learned by Fit. All fields are exported so the fitted model round-trips
// through gob unchanged.
type TFIDFVectorizer struct {
	// Vocabulary maps term to column index.
	Vocabulary map[string]int

	// IDF holds the inverse document frequency per column.
	IDF []float64
}

// FitTFIDF learns a vocabulary and IDF weights from docs. The vocabulary is
// bounded to the maxFeatures most frequent terms across the corpus, ties
// broken alphabetically so fitting is deterministic.
func FitTFIDF(docs []string, maxFeatures int) *TFIDFVectorizer {
	termCounts := make(map[string]int)
	docCounts := make(map[string]int)

	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, tok := range Tokenize(doc) {
			termCounts[tok]++
			if !seen[tok] {
				docCounts[tok]++
				seen[tok] = true
			}
		}
	}

	terms := make([]string, 0, len(termCounts))
	for t := range termCounts {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if termCounts[terms[i]] != termCounts[terms[j]] {
			return termCounts[terms[i]] > termCounts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if maxFeatures > 0 && len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}

	// Column order is alphabetical within the retained vocabulary.
	sort.Strings(terms)

	v := &TFIDFVectorizer{
		Vocabulary: make(map[string]int, len(terms)),
		IDF:        make([]float64, len(terms)),
	}
	n := float64(len(docs))
	for i, t := range terms {
		v.Vocabulary[t] = i
		// Smoothed IDF; keeps weights finite for terms in every document.
		v.IDF[i] = math.Log((1+n)/(1+float64(docCounts[t]))) + 1
	}
	return v
}

// Transform converts text into an L2-normalized sparse TF-IDF vector.
// Terms outside the fitted vocabulary are ignored, so a query with no
// lexical overlap yields the zero vector.
func (v *TFIDFVectorizer) Transform(text string) SparseVector {
	tf := make(map[int]float64)
	for _, tok := range Tokenize(text) {
		if col, ok := v.Vocabulary[tok]; ok {
			tf[col]++
		}
	}
	if len(tf) == 0 {
		return SparseVector{}
	}

	cols := make([]int, 0, len(tf))
	for col := range tf {
		cols = append(cols, col)
	}
	sort.Ints(cols)

	vec := SparseVector{
		Indices: cols,
		Values:  make([]float64, len(cols)),
	}
	var norm float64
	for i, col := range cols {
		w := tf[col] * v.IDF[col]
		vec.Values[i] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec.Values {
			vec.Values[i] /= norm
		}
	}
	return vec
}

// TransformAll converts docs into matrix rows, one per document, preserving
// document order.
func (v *TFIDFVectorizer) TransformAll(docs []string) []SparseVector {
	rows := make([]SparseVector, len(docs))
	for i, doc := range docs {
		rows[i] = v.Transform(doc)
	}
	return rows
}

// CosineSparse returns the cosine similarity of two sparse vectors. Rows
// produced by Transform are unit length, so this reduces to a sparse dot
// product, but the norms are still computed to keep the function correct
// for arbitrary inputs.
func CosineSparse(a, b SparseVector) float64 {
	var dot, normA, normB float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			dot += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	for _, v := range a.Values {
		normA += v * v
	}
	for _, v := range b.Values {
		normB += v * v
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
