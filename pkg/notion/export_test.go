package notion

import (
	"context"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/cre-analytics/internal/model"
)

func exportTestAnalysis() *model.PropertyCreditAnalysis {
	return &model.PropertyCreditAnalysis{
		ID:               "analysis-1",
		PropertyID:       "prop-1",
		OverallRiskScore: 78.1,
		OverallRiskLevel: model.RiskLevelModerate,
		Recommendations: model.Recommendations{
			RiskMitigation:  []string{"Require additional security deposits for new leases"},
			TenantRetention: []string{"Engage anchor tenant on early renewal"},
		},
		CreatedAt: time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
	}
}

// emptyQueryResponse simulates a database with no page for the property.
func emptyQueryResponse() *notionapi.DatabaseQueryResponse {
	return &notionapi.DatabaseQueryResponse{Results: []notionapi.Page{}}
}

func TestExport_CreatesPage(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "analyses-db", mock.AnythingOfType("*notionapi.DatabaseQueryRequest")).
		Return(emptyQueryResponse(), nil).Once()

	mc.On("CreatePage", ctx, mock.MatchedBy(func(req *notionapi.PageCreateRequest) bool {
		if req.Parent.DatabaseID != notionapi.DatabaseID("analyses-db") {
			return false
		}
		title, ok := req.Properties["Name"].(notionapi.TitleProperty)
		if !ok || len(title.Title) != 1 || title.Title[0].Text.Content != "Gateway Plaza" {
			return false
		}
		sel, ok := req.Properties["Risk Level"].(notionapi.SelectProperty)
		if !ok || sel.Select.Name != "Moderate" {
			return false
		}
		num, ok := req.Properties["Risk Score"].(notionapi.NumberProperty)
		if !ok || num.Number != 78.1 {
			return false
		}
		// Heading plus one bullet per recommendation line.
		return len(req.Children) == 3
	})).Return(&notionapi.Page{ID: "page-new"}, nil).Once()

	exp := NewExporter(mc, "analyses-db")
	pageID, created, err := exp.Export(ctx, "Gateway Plaza", exportTestAnalysis())
	require.NoError(t, err)
	assert.Equal(t, "page-new", pageID)
	assert.True(t, created)
	mc.AssertExpectations(t)
}

func TestExport_UpdatesExistingPage(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "analyses-db", mock.AnythingOfType("*notionapi.DatabaseQueryRequest")).
		Return(&notionapi.DatabaseQueryResponse{
			Results: []notionapi.Page{{ID: "page-existing"}},
		}, nil).Once()

	mc.On("UpdatePage", ctx, "page-existing", mock.MatchedBy(func(req *notionapi.PageUpdateRequest) bool {
		num, ok := req.Properties["Risk Score"].(notionapi.NumberProperty)
		return ok && num.Number == 78.1
	})).Return(&notionapi.Page{ID: "page-existing"}, nil).Once()

	exp := NewExporter(mc, "analyses-db")
	pageID, created, err := exp.Export(ctx, "Gateway Plaza", exportTestAnalysis())
	require.NoError(t, err)
	assert.Equal(t, "page-existing", pageID)
	assert.False(t, created)
	mc.AssertExpectations(t)
}

func TestExport_TitleDefaultsToPropertyID(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "analyses-db", mock.AnythingOfType("*notionapi.DatabaseQueryRequest")).
		Return(emptyQueryResponse(), nil).Once()

	mc.On("CreatePage", ctx, mock.MatchedBy(func(req *notionapi.PageCreateRequest) bool {
		title, ok := req.Properties["Name"].(notionapi.TitleProperty)
		return ok && title.Title[0].Text.Content == "prop-1"
	})).Return(&notionapi.Page{ID: "page-new"}, nil).Once()

	exp := NewExporter(mc, "analyses-db")
	_, _, err := exp.Export(ctx, "", exportTestAnalysis())
	require.NoError(t, err)
	mc.AssertExpectations(t)
}

func TestExport_NilAnalysis(t *testing.T) {
	exp := NewExporter(new(MockClient), "analyses-db")

	_, _, err := exp.Export(context.Background(), "Gateway Plaza", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil analysis")
}

func TestExport_MissingPropertyID(t *testing.T) {
	exp := NewExporter(new(MockClient), "analyses-db")

	a := exportTestAnalysis()
	a.PropertyID = ""
	_, _, err := exp.Export(context.Background(), "Gateway Plaza", a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no property ID")
}

func TestExport_LookupError(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "analyses-db", mock.AnythingOfType("*notionapi.DatabaseQueryRequest")).
		Return(nil, assert.AnError).Once()

	exp := NewExporter(mc, "analyses-db")
	_, _, err := exp.Export(ctx, "Gateway Plaza", exportTestAnalysis())
	require.Error(t, err)
	mc.AssertExpectations(t)
}

func TestRecommendationBlocks_Empty(t *testing.T) {
	assert.Nil(t, recommendationBlocks(model.Recommendations{}))
}

func TestRecommendationBlocks_CategoryOrder(t *testing.T) {
	blocks := recommendationBlocks(model.Recommendations{
		RiskMitigation:   []string{"mitigation"},
		PortfolioBalance: []string{"balance"},
	})
	require.Len(t, blocks, 3)

	first, ok := blocks[1].(notionapi.BulletedListItemBlock)
	require.True(t, ok)
	assert.Equal(t, "mitigation", first.BulletedListItem.RichText[0].Text.Content)

	second, ok := blocks[2].(notionapi.BulletedListItemBlock)
	require.True(t, ok)
	assert.Equal(t, "balance", second.BulletedListItem.RichText[0].Text.Content)
}
