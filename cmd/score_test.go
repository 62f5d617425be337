//go:build !integration

package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/cre-analytics/internal/config"
	"github.com/sells-group/cre-analytics/internal/scorer"
)

// scoreTestCmd builds a throwaway command sharing runScore's flag contract,
// so tests never mutate the registered command's flag state.
func scoreTestCmd() *cobra.Command {
	c := &cobra.Command{Use: "score", RunE: runScore}
	f := c.Flags()
	f.String("input", "", "")
	f.Float64("weight-industry", 0, "")
	f.Float64("weight-position", 0, "")
	f.Float64("weight-financial", 0, "")
	f.Float64("weight-history", 0, "")
	f.Float64("weight-payment", 0, "")
	f.Float64("weight-conditions", 0, "")
	f.String("output", "", "")
	f.String("format", "table", "")
	c.SetContext(context.Background())
	return c
}

func TestApplyWeightOverrides(t *testing.T) {
	c := scoreTestCmd()
	require.NoError(t, c.Flags().Set("weight-financial", "0.35"))
	require.NoError(t, c.Flags().Set("weight-industry", "0.10"))

	base := scorer.DefaultConfig()
	got := applyWeightOverrides(c, base)

	assert.InDelta(t, 0.35, got.Weights.FinancialStrength, 1e-9)
	assert.InDelta(t, 0.10, got.Weights.IndustryRisk, 1e-9)

	// Untouched weights keep their defaults.
	assert.InDelta(t, base.Weights.MarketPosition, got.Weights.MarketPosition, 1e-9)
	assert.InDelta(t, base.Weights.PaymentHistory, got.Weights.PaymentHistory, 1e-9)
}

func TestRunScore_JSON(t *testing.T) {
	cfg = &config.Config{}

	tenants, leases, concs := testRoster()
	market := testMarket()
	inputPath := writeAnalysisInput(t, analysisInput{
		Tenants:        tenants,
		Leases:         leases,
		Concentrations: concs,
		Market:         &market,
	})
	outputPath := filepath.Join(t.TempDir(), "scores.json")

	c := scoreTestCmd()
	require.NoError(t, c.Flags().Set("input", inputPath))
	require.NoError(t, c.Flags().Set("output", outputPath))
	require.NoError(t, c.Flags().Set("format", "json"))

	require.NoError(t, c.RunE(c, nil))

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	var results []tenantScore
	require.NoError(t, json.Unmarshal(data, &results))
	require.Len(t, results, 1)

	assert.Equal(t, "t1", results[0].Tenant.ID)
	assert.Greater(t, results[0].Credit.BaseScore, 0.0)
	assert.NotEmpty(t, results[0].Credit.RiskLevel)
	assert.Greater(t, results[0].Credit.ConfidenceLevel, 0.0)
}

func TestRunScore_CSV(t *testing.T) {
	cfg = &config.Config{}

	tenants, leases, concs := testRoster()
	market := testMarket()
	inputPath := writeAnalysisInput(t, analysisInput{
		Tenants:        tenants,
		Leases:         leases,
		Concentrations: concs,
		Market:         &market,
	})
	outputPath := filepath.Join(t.TempDir(), "scores.csv")

	c := scoreTestCmd()
	require.NoError(t, c.Flags().Set("input", inputPath))
	require.NoError(t, c.Flags().Set("output", outputPath))
	require.NoError(t, c.Flags().Set("format", "csv"))

	require.NoError(t, c.RunE(c, nil))

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "tenant_id,name,industry,base_score,adjusted_score,risk_level,confidence", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "t1,Vertex Systems,Technology,"), "row: %s", lines[1])
}

func TestRunScore_BadFormat(t *testing.T) {
	cfg = &config.Config{}

	c := scoreTestCmd()
	require.NoError(t, c.Flags().Set("input", "whatever.json"))
	require.NoError(t, c.Flags().Set("format", "xml"))

	err := c.RunE(c, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--format must be table, csv, or json")
}

func TestRunScore_NoTenants(t *testing.T) {
	cfg = &config.Config{}

	inputPath := writeAnalysisInput(t, analysisInput{})

	c := scoreTestCmd()
	require.NoError(t, c.Flags().Set("input", inputPath))

	err := c.RunE(c, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no tenants")
}

func TestRunScore_MissingLease(t *testing.T) {
	cfg = &config.Config{}

	tenants, _, concs := testRoster()
	market := testMarket()
	inputPath := writeAnalysisInput(t, analysisInput{
		Tenants:        tenants,
		Concentrations: concs,
		Market:         &market,
	})

	c := scoreTestCmd()
	require.NoError(t, c.Flags().Set("input", inputPath))

	err := c.RunE(c, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no lease record for tenant t1")
}

func TestRunScore_InvalidWeightSum(t *testing.T) {
	cfg = &config.Config{}

	tenants, leases, concs := testRoster()
	market := testMarket()
	inputPath := writeAnalysisInput(t, analysisInput{
		Tenants:        tenants,
		Leases:         leases,
		Concentrations: concs,
		Market:         &market,
	})

	c := scoreTestCmd()
	require.NoError(t, c.Flags().Set("input", inputPath))
	require.NoError(t, c.Flags().Set("weight-financial", "0.9"))

	err := c.RunE(c, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights should sum to 1.0")
}
