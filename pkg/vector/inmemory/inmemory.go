// Package inmemory provides a process-local vector driver.
package inmemory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/papercomputeco/clerk/pkg/vector"
)

// Driver implements vector.Driver with an insertion-ordered slice and an id
// index. Query is a brute-force scan using squared L2 distance.
type Driver struct {
	// mu guards docs and index
	mu sync.RWMutex

	// docs in insertion order
	docs []vector.Document

	// index maps a document id to its position in docs
	index map[string]int
}

var _ vector.Driver = (*Driver)(nil)

// NewDriver creates an empty in-memory vector driver.
func NewDriver() *Driver {
	return &Driver{
		index: make(map[string]int),
	}
}

// Add stores documents. The whole call is rejected if any id is already
// present or repeated within docs.
func (d *Driver) Add(_ context.Context, docs []vector.Document) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	seen := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("document id is required")
		}
		if _, ok := d.index[doc.ID]; ok {
			return fmt.Errorf("%w: %s", vector.ErrDuplicateID, doc.ID)
		}
		if _, ok := seen[doc.ID]; ok {
			return fmt.Errorf("%w: %s", vector.ErrDuplicateID, doc.ID)
		}
		seen[doc.ID] = struct{}{}
	}

	for _, doc := range docs {
		d.index[doc.ID] = len(d.docs)
		d.docs = append(d.docs, copyDocument(doc))
	}

	return nil
}

// Query scans every stored document that matches where.
func (d *Driver) Query(_ context.Context, embedding []float32, where vector.Where, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	results := make([]vector.QueryResult, 0, len(d.docs))
	for _, doc := range d.docs {
		if !where.Matches(doc.Metadata) {
			continue
		}
		results = append(results, vector.QueryResult{
			Document: copyDocument(doc),
			Distance: vector.SquaredL2(embedding, doc.Embedding),
		})
	}

	return vector.RankByDistance(results, topK), nil
}

// Get retrieves documents by their IDs.
func (d *Driver) Get(_ context.Context, ids []string) ([]vector.Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	docs := make([]vector.Document, 0, len(ids))
	for _, id := range ids {
		pos, ok := d.index[id]
		if !ok {
			continue
		}
		docs = append(docs, copyDocument(d.docs[pos]))
	}
	return docs, nil
}

// Len returns the number of stored documents.
func (d *Driver) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.docs)
}

// Close is a no-op.
func (d *Driver) Close() error {
	return nil
}

func copyDocument(doc vector.Document) vector.Document {
	doc.Metadata = maps.Clone(doc.Metadata)
	doc.Embedding = slices.Clone(doc.Embedding)
	return doc
}
