// Package retrieval combines similarity search with structured constraints.
// Exact constraints are pushed down to the record store; approximate amount
// and date constraints are applied to the ranked candidates afterwards.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/clerk/pkg/records"
	"github.com/papercomputeco/clerk/pkg/vector"
)

// DefaultLimit is used when Search is called with a non-positive limit.
const DefaultLimit = 10

// Querier is the slice of records.Store the retriever needs.
type Querier interface {
	Query(ctx context.Context, queryText string, exact vector.Where, limit int) []records.Result
}

// Retriever runs the search pipeline.
type Retriever struct {
	store  Querier
	logger *slog.Logger
}

// NewRetriever creates a retriever over store.
func NewRetriever(store Querier, logger *slog.Logger) *Retriever {
	return &Retriever{
		store:  store,
		logger: logger,
	}
}

// Search returns records similar to query that satisfy the constraints in
// bag. It never fails: unparseable constraints are dropped and any failure
// inside the pipeline yields an empty slice, both logged.
func (r *Retriever) Search(ctx context.Context, query string, bag FilterBag, limit int) (results []records.Result) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("search pipeline panicked", "error", fmt.Sprint(rec))
			results = []records.Result{}
		}
	}()

	exact, approx, errs := bag.Partition()
	for _, err := range errs {
		r.logger.Warn("ignoring filter", "error", err)
	}

	candidates := r.store.Query(ctx, query, exact, limit)
	results = approx.Apply(candidates)

	r.logger.Debug("search complete",
		"exact_filters", len(exact),
		"candidates", len(candidates),
		"results", len(results),
	)
	return results
}
