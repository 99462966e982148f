package store

import "context"

// VectorRecord is one embedded chunk of knowledge. Records are write-once:
// re-ingesting a file creates new records instead of mutating old ones.
type VectorRecord struct {
	ID        string            `json:"id"`
	Embedding []float32         `json:"-"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata"`
}

// Match is a retrieved record with its similarity score.
type Match struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
	Score    float32           `json:"score"`
}

// VectorStore is the narrow contract the pipeline needs from a vector
// database. Both the local sqlite backend and the remote qdrant backend
// implement it.
type VectorStore interface {
	// Query returns up to topK records most similar to vector, dropping
	// anything scoring below minScore. Results are ordered best-first.
	Query(ctx context.Context, vector []float32, topK int, minScore float32) ([]Match, error)

	// Upsert stores a record keyed by its ID.
	Upsert(ctx context.Context, rec VectorRecord) error

	Close() error
}
