// Package vectorstore holds the similarity search shared by the in-process
// vector store adapters. The memory, bolt and pinecone subpackages implement
// driven.VectorStore.
package vectorstore

import (
	"fmt"
	"math"
	"sort"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

// CosineSimilarity calculates the cosine similarity between two vectors.
// Zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TopK scores every entry against query and returns the best k matches in
// non-increasing score order. Ties break on id so results are deterministic.
func TopK(query []float32, entries []domain.IndexedEntry, k int, includeMetadata bool) []domain.Match {
	matches := make([]domain.Match, 0, len(entries))
	for _, e := range entries {
		m := domain.Match{ID: e.ID, Score: CosineSimilarity(query, e.Vector)}
		if includeMetadata {
			m.Text = e.Text()
		}
		matches = append(matches, m)
	}

	SortMatches(matches)
	if k < len(matches) {
		matches = matches[:k]
	}
	return matches
}

// SortMatches orders matches by descending score, then ascending id.
func SortMatches(matches []domain.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
}

// ValidateEntries checks every entry against the collection dimension before
// anything is written.
func ValidateEntries(collection string, dimension int, entries []domain.IndexedEntry) error {
	for _, e := range entries {
		if e.ID == "" {
			return &domain.EmptyInputError{What: "entry id"}
		}
		if len(e.Vector) != dimension {
			return &domain.DimensionMismatchError{Collection: collection, Expected: dimension, Actual: len(e.Vector)}
		}
		if err := ValidateVector(e.Vector); err != nil {
			return fmt.Errorf("entry %s: %w", e.ID, err)
		}
	}
	return nil
}

// ValidateVector rejects NaN and infinite components. A single NaN score
// makes the match order undefined.
func ValidateVector(vector []float32) error {
	for i, x := range vector {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("component %d is %v: %w", i, x, domain.ErrInvalidInput)
		}
	}
	return nil
}
