// Package records is the invoice record store: it embeds document text and
// persists records through a vector.Driver, and answers similarity queries
// restricted by exact metadata filters.
package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/papercomputeco/clerk/pkg/embeddings"
	"github.com/papercomputeco/clerk/pkg/invoice"
	"github.com/papercomputeco/clerk/pkg/vector"
)

// ErrPersistence is returned when the backing driver fails to store a record.
var ErrPersistence = errors.New("record persistence failed")

// Result is one record returned by Query.
type Result struct {
	ID       string           `json:"id"`
	Document string           `json:"document"`
	Metadata invoice.Metadata `json:"metadata"`

	// Distance is non-negative, lower = closer.
	Distance float32 `json:"distance"`
}

// Store is safe for concurrent use.
type Store struct {
	driver   vector.Driver
	embedder embeddings.Embedder
	logger   *slog.Logger

	// insertMu covers the duplicate check and add so two inserts of one id
	// cannot both succeed, whatever the driver guarantees.
	insertMu sync.Mutex
	now      func() time.Time
}

// Config wires a Store to its collaborators.
type Config struct {
	Driver   vector.Driver
	Embedder embeddings.Embedder
	Logger   *slog.Logger
}

// NewStore creates a record store.
func NewStore(c Config) *Store {
	return &Store{
		driver:   c.Driver,
		embedder: c.Embedder,
		logger:   c.Logger,
		now:      time.Now,
	}
}

// Insert embeds documentText and stores it under id with normalized
// metadata. It returns an error wrapping vector.ErrEmbedding,
// vector.ErrDuplicateID or ErrPersistence.
func (s *Store) Insert(ctx context.Context, id, documentText string, metadata invoice.Metadata) error {
	if id == "" {
		return fmt.Errorf("%w: record id is required", ErrPersistence)
	}

	metadata = metadata.Normalize()
	if metadata.InvoiceID == "" {
		metadata.InvoiceID = id
	}
	if metadata.StoredAt == "" {
		metadata.StoredAt = s.now().UTC().Format(time.RFC3339)
	}
	if metadata.Date == "" {
		metadata.Date = metadata.StoredAt
	}

	embedding, err := s.embedder.Embed(ctx, documentText)
	if err != nil {
		s.logger.Error("embedding record failed", "id", id, "error", err)
		if !errors.Is(err, vector.ErrEmbedding) {
			err = fmt.Errorf("%w: %v", vector.ErrEmbedding, err)
		}
		return err
	}

	s.insertMu.Lock()
	defer s.insertMu.Unlock()

	existing, err := s.driver.Get(ctx, []string{id})
	if err != nil {
		s.logger.Error("checking record id failed", "id", id, "error", err)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if len(existing) > 0 {
		s.logger.Warn("duplicate record id", "id", id)
		return fmt.Errorf("%w: %s", vector.ErrDuplicateID, id)
	}

	err = s.driver.Add(ctx, []vector.Document{{
		ID:        id,
		Content:   documentText,
		Metadata:  metadata.Map(),
		Embedding: embedding,
	}})
	switch {
	case errors.Is(err, vector.ErrDuplicateID):
		s.logger.Warn("duplicate record id", "id", id)
		return err
	case err != nil:
		s.logger.Error("storing record failed", "id", id, "error", err)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.logger.Debug("stored record",
		"id", id,
		"employee_name", metadata.EmployeeName,
		"status", metadata.Status,
	)
	return nil
}

// Query returns up to limit records closest to queryText among those matching
// every equality in exact, in non-decreasing distance. It never fails: an
// empty store, an embedding failure or a driver failure all yield an empty
// slice, and failures are logged.
func (s *Store) Query(ctx context.Context, queryText string, exact vector.Where, limit int) []Result {
	embedding, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		s.logger.Error("embedding query failed", "error", err)
		return []Result{}
	}

	matches, err := s.driver.Query(ctx, embedding, exact, limit)
	if err != nil {
		s.logger.Error("querying records failed", "error", err, "filters", len(exact))
		return []Result{}
	}

	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		results = append(results, Result{
			ID:       m.ID,
			Document: m.Content,
			Metadata: invoice.MetadataFromMap(m.Metadata),
			Distance: m.Distance,
		})
	}
	return results
}
