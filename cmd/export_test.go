//go:build !integration

package main

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/cre-analytics/internal/config"
	"github.com/sells-group/cre-analytics/internal/model"
	"github.com/sells-group/cre-analytics/internal/store"
)

func exportNotionTestCmd() *cobra.Command {
	c := &cobra.Command{Use: "notion", RunE: runExportNotion}
	f := c.Flags()
	f.String("analysis", "", "")
	f.String("property", "", "")
	f.String("title", "", "")
	c.SetContext(context.Background())
	return c
}

type fakeAnalysisReader struct {
	byID   map[string]*model.PropertyCreditAnalysis
	latest map[string]*model.PropertyCreditAnalysis
}

var _ analysisReader = (*fakeAnalysisReader)(nil)

func (f *fakeAnalysisReader) GetAnalysis(_ context.Context, id string) (*model.PropertyCreditAnalysis, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return a, nil
}

func (f *fakeAnalysisReader) LatestAnalysisForProperty(_ context.Context, propertyID string) (*model.PropertyCreditAnalysis, error) {
	a, ok := f.latest[propertyID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return a, nil
}

func TestRunExportNotion_RequiresSelector(t *testing.T) {
	cfg = &config.Config{}

	c := exportNotionTestCmd()
	err := c.RunE(c, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--analysis or --property is required")
}

func TestRunExportNotion_MissingNotionConfig(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{Driver: "sqlite", Path: "x.db"},
		Batch: config.BatchConfig{MaxConcurrentProperties: 4},
	}

	c := exportNotionTestCmd()
	require.NoError(t, c.Flags().Set("property", "prop-001"))

	err := c.RunE(c, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notion.token is required")
	assert.Contains(t, err.Error(), "notion.analysis_db is required")
}

func TestLoadExportAnalysis_ByID(t *testing.T) {
	want := &model.PropertyCreditAnalysis{ID: "a1", PropertyID: "prop-001"}
	reader := &fakeAnalysisReader{byID: map[string]*model.PropertyCreditAnalysis{"a1": want}}

	got, err := loadExportAnalysis(context.Background(), reader, "a1", "")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadExportAnalysis_ByID_NotFound(t *testing.T) {
	reader := &fakeAnalysisReader{}

	_, err := loadExportAnalysis(context.Background(), reader, "missing", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export: load analysis missing")
}

func TestLoadExportAnalysis_LatestForProperty(t *testing.T) {
	want := &model.PropertyCreditAnalysis{ID: "a2", PropertyID: "prop-002"}
	reader := &fakeAnalysisReader{latest: map[string]*model.PropertyCreditAnalysis{"prop-002": want}}

	got, err := loadExportAnalysis(context.Background(), reader, "", "prop-002")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadExportAnalysis_Latest_NotFound(t *testing.T) {
	reader := &fakeAnalysisReader{}

	_, err := loadExportAnalysis(context.Background(), reader, "", "prop-404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latest analysis for property prop-404")
}

func TestExportNotionCmd_Metadata(t *testing.T) {
	assert.Equal(t, "notion", exportNotionCmd.Use)
	assert.NotEmpty(t, exportNotionCmd.Short)

	for _, name := range []string{"analysis", "property", "title"} {
		assert.NotNil(t, exportNotionCmd.Flags().Lookup(name), "export notion should have --%s flag", name)
	}
}
