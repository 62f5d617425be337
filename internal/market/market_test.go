package market

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/cre-analytics/internal/model"
)

func TestStaticProviderMarketData(t *testing.T) {
	p := NewStaticProvider()

	md, err := p.MarketData(context.Background())
	require.NoError(t, err)

	assert.Empty(t, md.IndustryGrowth)
	assert.InDelta(t, 0.08, md.VacancyRate, 1e-9)
	assert.InDelta(t, 0.5, md.EconomicIndex, 1e-9)

	// With no per-industry figures, every industry resolves to the default.
	snap := md.SnapshotFor(model.IndustryTechnology)
	assert.InDelta(t, model.DefaultIndustryGrowth, snap.IndustryGrowth, 1e-9)
}

func TestStaticProviderBenchmarks(t *testing.T) {
	p := NewStaticProvider()

	metrics, err := p.Benchmarks(context.Background(), "Downtown Core")
	require.NoError(t, err)

	assert.InDelta(t, 5.5, metrics.MarketCapRate, 1e-9)
	assert.InDelta(t, 92.0, metrics.MarketOccupancy, 1e-9)
	assert.InDelta(t, 3.0, metrics.MarketRentGrowth, 1e-9)
	assert.Equal(t, "Downtown Core", metrics.Submarket)
}
