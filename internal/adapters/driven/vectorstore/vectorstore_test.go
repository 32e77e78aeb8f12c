package vectorstore

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

func entry(id string, vec ...float32) domain.IndexedEntry {
	return domain.IndexedEntry{ID: id, Vector: vec, Metadata: map[string]string{domain.MetadataText: "text of " + id}}
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Zero(t, CosineSimilarity([]float32{1}, []float32{1, 1}))
}

func TestTopK(t *testing.T) {
	entries := []domain.IndexedEntry{
		entry("far", 0, 1),
		entry("near", 1, 0.1),
		entry("exact", 1, 0),
		entry("opposite", -1, 0),
	}

	matches := TopK([]float32{1, 0}, entries, 3, true)

	require.Len(t, matches, 3)
	assert.Equal(t, []string{"exact", "near", "far"}, domain.QueryResult(matches).IDs())
	assert.Equal(t, "text of exact", matches[0].Text)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
}

func TestTopK_TiesBreakOnID(t *testing.T) {
	entries := []domain.IndexedEntry{entry("b", 1, 0), entry("a", 1, 0), entry("c", 1, 0)}

	matches := TopK([]float32{1, 0}, entries, 10, false)

	assert.Equal(t, []string{"a", "b", "c"}, domain.QueryResult(matches).IDs())
	assert.Empty(t, matches[0].Text)
}

func TestValidateEntries(t *testing.T) {
	assert.NoError(t, ValidateEntries("c", 2, []domain.IndexedEntry{entry("a", 1, 2)}))

	err := ValidateEntries("c", 2, []domain.IndexedEntry{entry("a", 1, 2), entry("b", 1)})
	var dm *domain.DimensionMismatchError
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, "c", dm.Collection)

	err = ValidateEntries("c", 2, []domain.IndexedEntry{entry("", 1, 2)})
	assert.ErrorIs(t, err, domain.ErrEmptyInput)

	for _, bad := range []float32{float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1))} {
		err = ValidateEntries("c", 2, []domain.IndexedEntry{entry("a", 1, 2), entry("b", bad, 1)})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%v", bad)
		assert.ErrorContains(t, err, "entry b")
	}
}

func TestValidateVector(t *testing.T) {
	assert.NoError(t, ValidateVector([]float32{0, -1.5, 3}))
	assert.NoError(t, ValidateVector(nil))
	assert.ErrorIs(t, ValidateVector([]float32{1, float32(math.NaN())}), domain.ErrInvalidInput)
}
