// Package market supplies market-wide scoring inputs and submarket benchmark
// figures to the analysis layers. A Provider abstracts where the data comes
// from: StaticProvider serves baked-in placeholders, FeedProvider reads a
// remote CSV, XML, or JSON feed.
package market

import (
	"context"

	"github.com/sells-group/cre-analytics/internal/model"
)

// Benchmark placeholders served until a live feed supplies real figures.
const (
	PlaceholderCapRate    = 5.5
	PlaceholderOccupancy  = 92.0
	PlaceholderRentGrowth = 3.0
)

// neutralEconomicIndex is the midpoint of the index's [0,1] range, used when
// no feed supplies a reading.
const neutralEconomicIndex = 0.5

// Provider supplies market data for credit scoring and benchmark figures for
// comparison metrics.
type Provider interface {
	// MarketData returns industry growth rates and market-wide conditions.
	MarketData(ctx context.Context) (model.MarketData, error)

	// Benchmarks returns comparison figures for a submarket.
	Benchmarks(ctx context.Context, submarket string) (model.MarketMetrics, error)
}

// StaticProvider serves the placeholder benchmarks and an empty industry
// growth map, so every industry resolves to the default growth rate.
type StaticProvider struct{}

// NewStaticProvider returns a provider backed by the placeholder figures.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{}
}

// MarketData returns placeholder market conditions. The vacancy rate is
// derived from the occupancy benchmark.
func (p *StaticProvider) MarketData(_ context.Context) (model.MarketData, error) {
	return model.MarketData{
		IndustryGrowth: map[model.Industry]float64{},
		VacancyRate:    1 - PlaceholderOccupancy/100,
		EconomicIndex:  neutralEconomicIndex,
	}, nil
}

// Benchmarks returns the placeholder benchmark figures for any submarket.
func (p *StaticProvider) Benchmarks(_ context.Context, submarket string) (model.MarketMetrics, error) {
	return model.MarketMetrics{
		MarketCapRate:    PlaceholderCapRate,
		MarketOccupancy:  PlaceholderOccupancy,
		MarketRentGrowth: PlaceholderRentGrowth,
		Submarket:        submarket,
	}, nil
}
