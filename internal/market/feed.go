package market

import (
	"context"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/cre-analytics/internal/fetcher"
	"github.com/sells-group/cre-analytics/internal/model"
)

// Feed is one parsed market data feed: scoring inputs plus submarket
// benchmark figures. Metrics the feed omits keep their placeholder values.
type Feed struct {
	Data       model.MarketData
	Benchmarks model.MarketMetrics
}

// Feed metric names. industry_growth rows carry an industry in the second
// column; the scalar metrics leave it blank.
const (
	metricIndustryGrowth = "industry_growth"
	metricVacancyRate    = "vacancy_rate"
	metricEconomicIndex  = "economic_index"
	metricCapRate        = "market_cap_rate"
	metricOccupancy      = "market_occupancy"
	metricRentGrowth     = "market_rent_growth"
)

func newFeed() *Feed {
	return &Feed{
		Data: model.MarketData{
			IndustryGrowth: map[model.Industry]float64{},
			VacancyRate:    1 - PlaceholderOccupancy/100,
			EconomicIndex:  neutralEconomicIndex,
		},
		Benchmarks: model.MarketMetrics{
			MarketCapRate:    PlaceholderCapRate,
			MarketOccupancy:  PlaceholderOccupancy,
			MarketRentGrowth: PlaceholderRentGrowth,
		},
	}
}

// apply records one metric row. Unknown metric names are skipped with a
// warning so feed additions don't break older builds.
func (f *Feed) apply(metric, industry, raw string) error {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return eris.Wrapf(err, "market: bad value %q for metric %q", raw, metric)
	}

	switch metric {
	case metricIndustryGrowth:
		if industry == "" {
			return eris.New("market: industry_growth row is missing the industry")
		}
		f.Data.IndustryGrowth[model.Industry(industry)] = value
	case metricVacancyRate:
		f.Data.VacancyRate = value
	case metricEconomicIndex:
		f.Data.EconomicIndex = value
	case metricCapRate:
		f.Benchmarks.MarketCapRate = value
	case metricOccupancy:
		f.Benchmarks.MarketOccupancy = value
	case metricRentGrowth:
		f.Benchmarks.MarketRentGrowth = value
	default:
		zap.L().Warn("market: skipping unknown feed metric",
			zap.String("metric", metric),
		)
	}

	return nil
}

// ParseCSV reads a metric,industry,value feed with a header row. Lines
// starting with # are comments.
func ParseCSV(ctx context.Context, r io.Reader) (*Feed, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rowCh, errCh := fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{
		HasHeader: true,
		Comment:   '#',
		TrimSpace: true,
	})

	feed := newFeed()
	for row := range rowCh {
		if len(row) < 3 {
			return nil, eris.Errorf("market: feed row has %d columns, want 3", len(row))
		}
		if err := feed.apply(row[0], row[1], row[2]); err != nil {
			return nil, err
		}
	}
	for err := range errCh {
		if err != nil {
			return nil, eris.Wrap(err, "market: read csv feed")
		}
	}

	return feed, nil
}

// feedEntry is one element of an XML market feed:
//
//	<entry metric="industry_growth" industry="Technology" value="0.035"/>
type feedEntry struct {
	Metric   string `xml:"metric,attr"`
	Industry string `xml:"industry,attr"`
	Value    string `xml:"value,attr"`
}

// ParseXML reads an XML feed of <entry> elements.
func ParseXML(ctx context.Context, r io.Reader) (*Feed, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	entryCh, errCh := fetcher.StreamXML[feedEntry](ctx, r, "entry")

	feed := newFeed()
	for entry := range entryCh {
		if err := feed.apply(entry.Metric, entry.Industry, entry.Value); err != nil {
			return nil, err
		}
	}
	for err := range errCh {
		if err != nil {
			return nil, eris.Wrap(err, "market: read xml feed")
		}
	}

	return feed, nil
}

// jsonFeed mirrors the JSON feed document shape.
type jsonFeed struct {
	IndustryGrowth map[string]float64 `json:"industry_growth"`
	VacancyRate    *float64           `json:"vacancy_rate"`
	EconomicIndex  *float64           `json:"economic_index"`
	Benchmarks     jsonBenchmarks     `json:"benchmarks"`
}

type jsonBenchmarks struct {
	CapRate    *float64 `json:"market_cap_rate"`
	Occupancy  *float64 `json:"market_occupancy"`
	RentGrowth *float64 `json:"market_rent_growth"`
}

// ParseJSON reads a single-document JSON feed. Absent fields keep their
// placeholder values.
func ParseJSON(r io.Reader) (*Feed, error) {
	doc, err := fetcher.DecodeJSONObject[jsonFeed](r)
	if err != nil {
		return nil, eris.Wrap(err, "market: read json feed")
	}

	feed := newFeed()
	for ind, growth := range doc.IndustryGrowth {
		feed.Data.IndustryGrowth[model.Industry(ind)] = growth
	}
	if doc.VacancyRate != nil {
		feed.Data.VacancyRate = *doc.VacancyRate
	}
	if doc.EconomicIndex != nil {
		feed.Data.EconomicIndex = *doc.EconomicIndex
	}
	if doc.Benchmarks.CapRate != nil {
		feed.Benchmarks.MarketCapRate = *doc.Benchmarks.CapRate
	}
	if doc.Benchmarks.Occupancy != nil {
		feed.Benchmarks.MarketOccupancy = *doc.Benchmarks.Occupancy
	}
	if doc.Benchmarks.RentGrowth != nil {
		feed.Benchmarks.MarketRentGrowth = *doc.Benchmarks.RentGrowth
	}

	return feed, nil
}
