package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/verde/pkg/websearch"
)

// MockSearcher is a test searcher that records queries and returns canned
// abstracts.
type MockSearcher struct {
	mu sync.Mutex

	// Queries accumulates every query passed to Search.
	Queries []string

	// Answers maps a query to its abstract. Unknown queries get Default.
	Answers map[string]string
	Default string

	// Fail causes Search to fall back to websearch.NoInformation.
	Fail bool
}

// NewMockSearcher creates a mock searcher answering every query with def.
func NewMockSearcher(def string) *MockSearcher {
	return &MockSearcher{
		Answers: make(map[string]string),
		Default: def,
	}
}

func (m *MockSearcher) Search(_ context.Context, query string) websearch.Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Queries = append(m.Queries, query)

	if m.Fail {
		return websearch.Result{
			Query: query,
			Text:  websearch.NoInformation,
			Err:   errors.New("mock search failure"),
		}
	}

	if text, ok := m.Answers[query]; ok {
		return websearch.Result{Query: query, Text: text}
	}
	return websearch.Result{Query: query, Text: m.Default}
}

// Calls returns the recorded queries.
func (m *MockSearcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Queries...)
}
