package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/clerk/pkg/vector"
)

// MockVectorDriver is a test vector driver that records calls and returns
// configurable results.
type MockVectorDriver struct {
	mu sync.Mutex

	// Documents accumulates everything passed to Add.
	Documents []vector.Document

	// Results is returned by Query, truncated to topK.
	Results []vector.QueryResult

	// LastWhere is the filter passed to the most recent Query.
	LastWhere vector.Where

	AddErr   error
	QueryErr error
	GetErr   error

	// QueryPanic makes Query panic with this value when non-nil.
	QueryPanic any
}

func NewMockVectorDriver() *MockVectorDriver {
	return &MockVectorDriver{
		Documents: make([]vector.Document, 0),
		Results:   make([]vector.QueryResult, 0),
	}
}

func (m *MockVectorDriver) Add(_ context.Context, docs []vector.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddErr != nil {
		return m.AddErr
	}
	m.Documents = append(m.Documents, docs...)
	return nil
}

func (m *MockVectorDriver) Query(_ context.Context, _ []float32, where vector.Where, topK int) ([]vector.QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastWhere = where

	if m.QueryPanic != nil {
		panic(m.QueryPanic)
	}
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	if topK <= 0 || len(m.Results) < topK {
		return m.Results, nil
	}
	return m.Results[:topK], nil
}

func (m *MockVectorDriver) Get(_ context.Context, ids []string) ([]vector.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}

	var docs []vector.Document
	for _, id := range ids {
		for _, doc := range m.Documents {
			if doc.ID == id {
				docs = append(docs, doc)
			}
		}
	}
	return docs, nil
}

func (m *MockVectorDriver) Close() error {
	return nil
}
