package insights

import (
	"context"
	"sync"

	"github.com/sells-group/cre-analytics/pkg/anthropic"
)

// mockClient implements anthropic.Client with canned responses. It records
// every request so tests can assert on prompts and call counts.
type mockClient struct {
	mu sync.Mutex

	response *anthropic.MessageResponse
	err      error
	requests []anthropic.MessageRequest

	batchResponse *anthropic.BatchResponse
	batchErr      error
	batchRequests []anthropic.BatchRequest

	polledResponse *anthropic.BatchResponse

	resultItems []anthropic.BatchResultItem
	resultsErr  error
}

func (m *mockClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *mockClient) CreateBatch(_ context.Context, req anthropic.BatchRequest) (*anthropic.BatchResponse, error) {
	m.mu.Lock()
	m.batchRequests = append(m.batchRequests, req)
	m.mu.Unlock()
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	return m.batchResponse, nil
}

func (m *mockClient) GetBatch(_ context.Context, _ string) (*anthropic.BatchResponse, error) {
	return m.polledResponse, nil
}

func (m *mockClient) GetBatchResults(_ context.Context, _ string) (anthropic.BatchResultIterator, error) {
	if m.resultsErr != nil {
		return nil, m.resultsErr
	}
	return &mockBatchIterator{items: m.resultItems, idx: -1}, nil
}

func (m *mockClient) messageCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// mockBatchIterator implements anthropic.BatchResultIterator over a slice.
type mockBatchIterator struct {
	items []anthropic.BatchResultItem
	idx   int
}

func (it *mockBatchIterator) Next() bool {
	it.idx++
	return it.idx < len(it.items)
}

func (it *mockBatchIterator) Item() anthropic.BatchResultItem {
	return it.items[it.idx]
}

func (it *mockBatchIterator) Err() error { return nil }

func (it *mockBatchIterator) Close() error { return nil }

// Ensure interface compliance.
var (
	_ anthropic.Client              = (*mockClient)(nil)
	_ anthropic.BatchResultIterator = (*mockBatchIterator)(nil)
)
