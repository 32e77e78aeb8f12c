package domain

// DefaultTopK is the number of matches retrieved when no limit is given.
const DefaultTopK = 5

// Match is a single retrieval hit.
type Match struct {
	// ID is the matched chunk ID.
	ID string `json:"id"`

	// Score is the cosine similarity.
	Score float64 `json:"score"`

	// Text is the chunk text, empty when metadata was not requested.
	Text string `json:"text,omitempty"`
}

// QueryResult is an ordered list of matches, highest score first.
type QueryResult []Match

// IDs returns the match IDs in order.
func (r QueryResult) IDs() []string {
	ids := make([]string, len(r))
	for i := range r {
		ids[i] = r[i].ID
	}
	return ids
}
