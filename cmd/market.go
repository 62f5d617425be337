package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/cre-analytics/internal/fetcher"
	"github.com/sells-group/cre-analytics/internal/geo"
	"github.com/sells-group/cre-analytics/internal/market"
	"github.com/sells-group/cre-analytics/internal/model"
)

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Show market conditions and submarket benchmarks",
	Long: `Fetch current market data: industry growth rates, vacancy, and the
economic index used in scoring.

Data comes from the configured feed (market.feed_url, CSV, XML, or JSON over
HTTP or FTP) or from built-in baseline figures when no feed is set. With
--submarket, benchmark cap rate, occupancy, and rent growth for that
submarket are included. With --lat and --lon the location is classified
against the configured market-area shapefile and the resulting submarket
drives the benchmarks. --address geocodes a street address first and then
classifies it the same way.

Examples:
  # Baseline market data
  market

  # Feed-backed data plus downtown benchmarks
  market --url https://feeds.example.com/market.csv --submarket downtown

  # Classify a location and benchmark its submarket
  market --lat 30.2672 --lon -97.7431

  # Same, starting from a street address
  market --address "400 W 15th St, Austin, TX 78701"`,
	RunE: runMarket,
}

func init() {
	f := marketCmd.Flags()
	f.String("url", "", "market feed URL (overrides market.feed_url)")
	f.String("submarket", "", "submarket name for benchmarks")
	f.Float64("lat", 0, "latitude to classify (requires --lon)")
	f.Float64("lon", 0, "longitude to classify (requires --lat)")
	f.String("address", "", "street address to geocode and classify")
	f.String("format", "table", "output format: table or json")
	f.String("output", "", "output file path (default: stdout)")

	rootCmd.AddCommand(marketCmd)
}

// marketOutput is the market command's JSON shape. Benchmarks and Location
// appear only when requested.
type marketOutput struct {
	Data       model.MarketData     `json:"data"`
	Benchmarks *model.MarketMetrics `json:"benchmarks,omitempty"`
	Location   *geo.Classification  `json:"location,omitempty"`
}

func runMarket(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	feedURL, _ := cmd.Flags().GetString("url")
	submarket, _ := cmd.Flags().GetString("submarket")
	lat, _ := cmd.Flags().GetFloat64("lat")
	lon, _ := cmd.Flags().GetFloat64("lon")
	address, _ := cmd.Flags().GetString("address")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	if format != "table" && format != "json" {
		return eris.Errorf("market: --format must be table or json (got %q)", format)
	}
	if cmd.Flags().Changed("lat") != cmd.Flags().Changed("lon") {
		return eris.New("market: --lat and --lon must be set together")
	}
	if address != "" && cmd.Flags().Changed("lat") {
		return eris.New("market: --address cannot be combined with --lat/--lon")
	}

	var provider market.Provider = market.NewStaticProvider()
	if feedURL == "" {
		feedURL = cfg.Market.FeedURL
	}
	if feedURL != "" {
		provider = market.NewFeedProvider(feedFetcher(feedURL), feedURL)
	}

	data, err := provider.MarketData(ctx)
	if err != nil {
		return eris.Wrap(err, "market: fetch market data")
	}

	out := marketOutput{Data: data}

	classify := cmd.Flags().Changed("lat")
	if address != "" {
		r, err := initGeocoder().Geocode(ctx, model.Address{Street: address})
		if err != nil {
			return eris.Wrapf(err, "market: geocode %q", address)
		}
		if !r.Matched {
			return eris.Errorf("market: address %q did not match any location", address)
		}
		zap.L().Info("address geocoded",
			zap.Float64("lat", r.Latitude),
			zap.Float64("lon", r.Longitude),
			zap.String("source", r.Source),
		)
		lat, lon = r.Latitude, r.Longitude
		classify = true
	}

	if classify {
		loc, err := classifyLocation(ctx, lat, lon)
		if err != nil {
			return err
		}
		out.Location = &loc
		if submarket == "" {
			submarket = string(loc.Submarket)
		}
	}

	if submarket != "" {
		bm, err := provider.Benchmarks(ctx, submarket)
		if err != nil {
			return eris.Wrapf(err, "market: benchmarks for %s", submarket)
		}
		out.Benchmarks = &bm
	}

	w, closeOutput, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeOutput()

	if format == "json" {
		return printJSON(w, out)
	}
	return writeMarketTable(w, out)
}

// classifyLocation places a coordinate into a market area using the
// configured shapefile, downloading and caching it on first use.
func classifyLocation(ctx context.Context, lat, lon float64) (geo.Classification, error) {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{RateLimiters: fetcher.DefaultRateLimiters()})

	path, err := geo.FetchShapefile(ctx, f, cfg.Geo.ShapefileURL, cfg.Geo.CacheDir)
	if err != nil {
		return geo.Classification{}, eris.Wrap(err, "market: fetch shapefile")
	}
	idx, err := geo.LoadShapefile(path)
	if err != nil {
		return geo.Classification{}, eris.Wrap(err, "market: load shapefile")
	}
	zap.L().Debug("shapefile loaded", zap.String("path", path), zap.Int("areas", idx.Len()))

	loc, err := idx.Classify(lat, lon)
	if err != nil {
		return geo.Classification{}, eris.Wrapf(err, "market: classify %.4f,%.4f", lat, lon)
	}
	return loc, nil
}

func writeMarketTable(w io.Writer, out marketOutput) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%-24s %.2f%%\n", "Vacancy rate", out.Data.VacancyRate*100)
	fmt.Fprintf(&sb, "%-24s %.1f / 100\n", "Economic index", out.Data.EconomicIndex)

	sb.WriteString("\nIndustry growth:\n")
	industries := make([]model.Industry, 0, len(out.Data.IndustryGrowth))
	for ind := range out.Data.IndustryGrowth {
		industries = append(industries, ind)
	}
	sort.Slice(industries, func(i, j int) bool { return industries[i] < industries[j] })
	for _, ind := range industries {
		fmt.Fprintf(&sb, "  %-16s %+.1f%%\n", ind, out.Data.IndustryGrowth[ind]*100)
	}

	if out.Location != nil {
		loc := out.Location
		sb.WriteString("\nLocation:\n")
		fmt.Fprintf(&sb, "  %-16s %s (%s)\n", "Market area", loc.AreaName, loc.AreaCode)
		fmt.Fprintf(&sb, "  %-16s %s (strength %.2f)\n", "Submarket", loc.Submarket, loc.Submarket.Strength())
		if loc.IsWithin {
			fmt.Fprintf(&sb, "  %-16s %.1f km from centroid\n", "Position", loc.CentroidKM)
		} else {
			fmt.Fprintf(&sb, "  %-16s %.1f km outside boundary\n", "Position", loc.EdgeKM)
		}
	}

	if out.Benchmarks != nil {
		bm := out.Benchmarks
		sb.WriteString("\nBenchmarks")
		if bm.Submarket != "" {
			fmt.Fprintf(&sb, " (%s)", bm.Submarket)
		}
		sb.WriteString(":\n")
		fmt.Fprintf(&sb, "  %-16s %.2f%%\n", "Cap rate", bm.MarketCapRate)
		fmt.Fprintf(&sb, "  %-16s %.2f%%\n", "Occupancy", bm.MarketOccupancy)
		fmt.Fprintf(&sb, "  %-16s %.2f%%\n", "Rent growth", bm.MarketRentGrowth)
		if bm.MarketClass != "" {
			fmt.Fprintf(&sb, "  %-16s %s\n", "Class", bm.MarketClass)
		}
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return eris.Wrap(err, "market: write table")
	}
	return nil
}
