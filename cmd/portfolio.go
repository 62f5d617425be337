package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/cre-analytics/internal/analysis"
	"github.com/sells-group/cre-analytics/internal/model"
	"github.com/sells-group/cre-analytics/internal/portfolio"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Analyze a property portfolio",
	Long: `Run portfolio analytics over a JSON file of property entries.

Entries carrying a tenant roster are credit-scored first, concurrently,
bounded by batch.max_concurrent_properties; the computed risk level fills
the entry's risk profile. The portfolio aggregation then derives the
value-weighted cap rate, average occupancy, Shannon diversification score,
and value-weighted type and risk distributions.

Examples:
  # Aggregate pre-scored snapshots
  portfolio --input portfolio.json

  # Score tenant rosters first and persist the analyses
  portfolio --input portfolio.json --save`,
	RunE: runPortfolio,
}

func init() {
	f := portfolioCmd.Flags()
	f.String("input", "", "path to JSON portfolio file (required)")
	f.Bool("save", false, "persist computed credit analyses to the store")
	f.String("format", "table", "output format: table or json")
	f.String("output", "", "output file path (default: stdout)")
	_ = portfolioCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(portfolioCmd)
}

// portfolioEntry pairs a property snapshot with an optional tenant roster.
// Entries with tenants are credit-scored before aggregation.
type portfolioEntry struct {
	model.PropertySnapshot
	Tenants        []model.TenantProfile       `json:"tenants,omitempty"`
	Leases         []model.LeaseRisk           `json:"leases,omitempty"`
	Concentrations []model.TenantConcentration `json:"concentrations,omitempty"`
	Market         *model.MarketData           `json:"market,omitempty"`
}

func runPortfolio(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inputPath, _ := cmd.Flags().GetString("input")
	save, _ := cmd.Flags().GetBool("save")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	if format != "table" && format != "json" {
		return eris.Errorf("portfolio: --format must be table or json (got %q)", format)
	}
	if save {
		if err := cfg.Validate("store"); err != nil {
			return err
		}
	}

	entries, err := loadPortfolioEntries(inputPath)
	if err != nil {
		return err
	}

	s, err := initScorer()
	if err != nil {
		return err
	}
	agg := analysis.NewAggregator(s)

	// Fetch shared market data once, but only when an entry needs it.
	var defaultMarket model.MarketData
	for _, e := range entries {
		if len(e.Tenants) > 0 && e.Market == nil {
			if defaultMarket, err = initMarketProvider().MarketData(ctx); err != nil {
				return eris.Wrap(err, "portfolio: fetch market data")
			}
			break
		}
	}

	snapshots, analyses, err := scorePortfolioEntries(ctx, agg, entries, defaultMarket, cfg.Batch.MaxConcurrentProperties)
	if err != nil {
		return err
	}

	if save && len(analyses) > 0 {
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "portfolio: migrate")
		}
		for _, a := range analyses {
			if _, err := st.SaveAnalysis(ctx, a); err != nil {
				return eris.Wrapf(err, "portfolio: save analysis for property %s", a.PropertyID)
			}
		}
		fmt.Printf("Saved %d analyses\n", len(analyses))
	}

	result, err := portfolio.Analyze(snapshots)
	if err != nil {
		return eris.Wrap(err, "portfolio")
	}

	zap.L().Info("portfolio analysis complete",
		zap.Int("properties", len(snapshots)),
		zap.Int("scored", len(analyses)),
		zap.Float64("total_value", result.TotalValue),
	)

	w, closeOutput, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeOutput()

	if format == "json" {
		return printJSON(w, result)
	}
	return writePortfolioTable(w, result)
}

func loadPortfolioEntries(path string) ([]portfolioEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read portfolio file %s", path)
	}

	var entries []portfolioEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, eris.Wrapf(err, "parse portfolio file %s", path)
	}
	return entries, nil
}

// scorePortfolioEntries runs per-property credit analyses concurrently and
// returns the snapshots for aggregation. Entries without tenant data pass
// through with their declared risk profile.
func scorePortfolioEntries(ctx context.Context, agg *analysis.Aggregator, entries []portfolioEntry, defaultMarket model.MarketData, concurrency int) ([]model.PropertySnapshot, []model.PropertyCreditAnalysis, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	snapshots := make([]model.PropertySnapshot, len(entries))
	scored := make([]*model.PropertyCreditAnalysis, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, entry := range entries {
		snapshots[i] = entry.PropertySnapshot
		if len(entry.Tenants) == 0 {
			continue
		}

		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			market := defaultMarket
			if entry.Market != nil {
				market = *entry.Market
			}

			a, err := agg.Aggregate(entry.PropertyID, entry.Tenants, entry.Leases, entry.Concentrations, market)
			if err != nil {
				return eris.Wrapf(err, "portfolio: property %s", entry.PropertyID)
			}

			scored[i] = a
			snapshots[i].RiskProfile = a.OverallRiskLevel
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var analyses []model.PropertyCreditAnalysis
	for _, a := range scored {
		if a != nil {
			analyses = append(analyses, *a)
		}
	}
	return snapshots, analyses, nil
}

func writePortfolioTable(w io.Writer, p *model.PortfolioAnalysis) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%-24s $%s\n", "Total value", formatMoney(p.TotalValue))
	fmt.Fprintf(&sb, "%-24s %.2f%%\n", "Weighted cap rate", p.WeightedCapRate)
	fmt.Fprintf(&sb, "%-24s %.2f%%\n", "Average occupancy", p.AverageOccupancy)
	fmt.Fprintf(&sb, "%-24s %.1f / 100\n", "Diversification", p.DiversificationScore)

	sb.WriteString("\nProperty type distribution:\n")
	for _, pt := range model.PropertyTypes() {
		if share, ok := p.PropertyTypeDistribution[pt]; ok && share > 0 {
			fmt.Fprintf(&sb, "  %-14s %6.1f%%\n", pt, share)
		}
	}

	sb.WriteString("\nRisk distribution:\n")
	for _, level := range model.RiskLevels() {
		if share, ok := p.RiskDistribution[level]; ok && share > 0 {
			fmt.Fprintf(&sb, "  %-14s %6.1f%%\n", level, share)
		}
	}

	fmt.Fprintf(&sb, "\nProperties: %s\n", strings.Join(p.PropertyIDs, ", "))

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return eris.Wrap(err, "portfolio: write table")
	}
	return nil
}
