package insights

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/cre-analytics/internal/model"
	"github.com/sells-group/cre-analytics/pkg/anthropic"
)

func sampleAnalyses(n int) []model.PropertyCreditAnalysis {
	analyses := make([]model.PropertyCreditAnalysis, n)
	for i := range analyses {
		a := sampleAnalysis()
		a.ID = fmt.Sprintf("an-%03d", i+1)
		a.PropertyID = fmt.Sprintf("prop-%03d", i+1)
		analyses[i] = a
	}
	return analyses
}

func TestGenerateBatchEmpty(t *testing.T) {
	mc := &mockClient{}
	g := NewGenerator(mc, Options{})

	reports, err := g.GenerateBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, reports)
	assert.Equal(t, 0, mc.messageCalls())
	assert.Empty(t, mc.batchRequests)
}

func TestGenerateBatchDirect(t *testing.T) {
	mc := &mockClient{response: textResponse(reportJSON)}
	g := NewGenerator(mc, Options{})

	reports, err := g.GenerateBatch(context.Background(), sampleAnalyses(2))
	require.NoError(t, err)

	require.Len(t, reports, 2)
	require.Contains(t, reports, "prop-001")
	require.Contains(t, reports, "prop-002")
	assert.Equal(t, "Competitive within its suburban submarket", reports["prop-001"].MarketPosition)

	// Below the threshold the Batch API is never touched.
	assert.Equal(t, 2, mc.messageCalls())
	assert.Empty(t, mc.batchRequests)
}

func TestGenerateBatchDirectFailuresOmitted(t *testing.T) {
	mc := &mockClient{err: assert.AnError}
	g := NewGenerator(mc, Options{})

	reports, err := g.GenerateBatch(context.Background(), sampleAnalyses(2))
	require.NoError(t, err)
	assert.Empty(t, reports)

	// Each analysis is retried before being dropped.
	assert.Equal(t, 2*maxRetries, mc.messageCalls())
}

func TestGenerateBatchAPI(t *testing.T) {
	analyses := sampleAnalyses(5)

	mc := &mockClient{
		response:      textResponse(reportJSON), // primer
		batchResponse: &anthropic.BatchResponse{ID: "batch_001", ProcessingStatus: "in_progress"},
		polledResponse: &anthropic.BatchResponse{
			ID:               "batch_001",
			ProcessingStatus: "ended",
			RequestCounts:    anthropic.RequestCounts{Succeeded: 4, Errored: 1},
		},
		resultItems: []anthropic.BatchResultItem{
			{CustomID: "prop-001", Type: "succeeded", Message: textResponse(reportJSON)},
			{CustomID: "prop-002", Type: "succeeded", Message: textResponse(reportJSON)},
			{CustomID: "prop-003", Type: "succeeded", Message: textResponse("no json at all")},
			{CustomID: "prop-004", Type: "errored"},
			{CustomID: "prop-005", Type: "succeeded", Message: textResponse("```json\n" + reportJSON + "\n```")},
		},
	}
	g := NewGenerator(mc, Options{})

	reports, err := g.GenerateBatch(context.Background(), analyses)
	require.NoError(t, err)

	assert.Len(t, reports, 3)
	assert.Contains(t, reports, "prop-001")
	assert.Contains(t, reports, "prop-002")
	assert.Contains(t, reports, "prop-005")
	assert.NotContains(t, reports, "prop-003", "unparseable item dropped")
	assert.NotContains(t, reports, "prop-004", "errored item dropped")

	// Only the primer goes through CreateMessage.
	assert.Equal(t, 1, mc.messageCalls())

	require.Len(t, mc.batchRequests, 1)
	items := mc.batchRequests[0].Requests
	require.Len(t, items, 5)
	assert.Equal(t, "prop-001", items[0].CustomID)
	assert.Equal(t, "prop-005", items[4].CustomID)

	// Batch items share a cached system prompt.
	require.Len(t, items[0].Params.System, 1)
	require.NotNil(t, items[0].Params.System[0].CacheControl)
	assert.Equal(t, "1h", items[0].Params.System[0].CacheControl.TTL)
}

func TestGenerateBatchAPIPrimerFailureNonFatal(t *testing.T) {
	mc := &mockClient{
		err:           assert.AnError, // primer fails
		batchResponse: &anthropic.BatchResponse{ID: "batch_002", ProcessingStatus: "in_progress"},
		polledResponse: &anthropic.BatchResponse{
			ID:               "batch_002",
			ProcessingStatus: "ended",
			RequestCounts:    anthropic.RequestCounts{Succeeded: 2},
		},
		resultItems: []anthropic.BatchResultItem{
			{CustomID: "prop-001", Type: "succeeded", Message: textResponse(reportJSON)},
			{CustomID: "prop-002", Type: "succeeded", Message: textResponse(reportJSON)},
		},
	}
	g := NewGenerator(mc, Options{})

	reports, err := g.GenerateBatch(context.Background(), sampleAnalyses(5))
	require.NoError(t, err)
	assert.Len(t, reports, 2)
	assert.Equal(t, 1, mc.messageCalls())
}

func TestGenerateBatchAPICreateError(t *testing.T) {
	mc := &mockClient{
		response: textResponse(reportJSON),
		batchErr: assert.AnError,
	}
	g := NewGenerator(mc, Options{})

	_, err := g.GenerateBatch(context.Background(), sampleAnalyses(5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insights: create batch")
}
