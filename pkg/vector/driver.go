// Package vector provides interfaces and implementations for vector storage and embedding.
package vector

import "context"

// Document represents a stored item with its embedding and metadata.
type Document struct {
	// ID is the caller supplied, unique identifier for the document.
	ID string

	// Content is the text the embedding was produced from.
	Content string

	// Metadata holds scalar attributes that exact filters match against.
	Metadata map[string]any

	// Embedding is the vector representation of the document content.
	Embedding []float32
}

// QueryResult represents a search result with its distance to the query.
type QueryResult struct {
	Document

	// Distance is non-negative, lower = closer.
	Distance float32
}

// Driver handles storage and retrieval of vector embeddings.
type Driver interface {
	// Add stores documents with their embeddings.
	// Documents are never overwritten: if any ID already exists, implementers
	// must return ErrDuplicateID and store nothing from that call.
	Add(ctx context.Context, docs []Document) error

	// Query finds the topK documents closest to the given embedding among those
	// whose metadata satisfies every equality in where. Results are ordered by
	// non-decreasing distance.
	Query(ctx context.Context, embedding []float32, where Where, topK int) ([]QueryResult, error)

	// Get retrieves documents by their IDs. Unknown IDs are skipped.
	Get(ctx context.Context, ids []string) ([]Document, error)

	// Close releases any resources held by the driver.
	Close() error
}
