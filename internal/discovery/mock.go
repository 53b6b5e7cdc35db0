package discovery

import (
	"context"
	"sync"
)

// MockSearcher returns canned blocks per query, for tests and dry runs
// without provider calls.
type MockSearcher struct {
	mu        sync.Mutex
	responses map[string][]ContentBlock
	failures  map[string]error
	calls     []string
}

// NewMockSearcher creates an empty mock; unknown queries return no blocks.
func NewMockSearcher() *MockSearcher {
	return &MockSearcher{
		responses: make(map[string][]ContentBlock),
		failures:  make(map[string]error),
	}
}

// Name returns "mock".
func (m *MockSearcher) Name() string {
	return "mock"
}

// SetResponse makes query return blocks.
func (m *MockSearcher) SetResponse(query string, blocks ...ContentBlock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[query] = blocks
}

// SetText makes query return a single text block.
func (m *MockSearcher) SetText(query, text string) {
	m.SetResponse(query, ContentBlock{Type: BlockTypeText, Text: text})
}

// SetError makes query fail with err.
func (m *MockSearcher) SetError(query string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[query] = err
}

// Search returns the canned response for query.
func (m *MockSearcher) Search(ctx context.Context, query string) ([]ContentBlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, query)
	if err, ok := m.failures[query]; ok {
		return nil, err
	}
	return m.responses[query], nil
}

// Calls returns the queries searched so far, in order.
func (m *MockSearcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
