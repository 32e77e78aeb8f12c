package local

import (
	"errors"
	"fmt"
)

// errNoTokens is returned when the model produced no token vectors.
var errNoTokens = errors.New("model returned no token vectors")

// MeanPool averages per-token vectors elementwise:
//
//	v[j] = (1/N) * Σ_i tokens[i][j]
//
// Sums accumulate in float64 in token order. All rows must share one length.
func MeanPool(tokens [][]float32) ([]float32, error) {
	if len(tokens) == 0 {
		return nil, errNoTokens
	}
	dim := len(tokens[0])
	if dim == 0 {
		return nil, errors.New("token vectors are empty")
	}

	sums := make([]float64, dim)
	for i, tok := range tokens {
		if len(tok) != dim {
			return nil, fmt.Errorf("token %d has %d values, expected %d", i, len(tok), dim)
		}
		for j, v := range tok {
			sums[j] += float64(v)
		}
	}

	n := float64(len(tokens))
	pooled := make([]float32, dim)
	for j, s := range sums {
		pooled[j] = float32(s / n)
	}
	return pooled, nil
}
