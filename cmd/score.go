package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/cre-analytics/internal/model"
	"github.com/sells-group/cre-analytics/internal/scorer"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score tenant credit risk from an input file",
	Long: `Score tenants using the credit risk model.

Reads a JSON input file carrying tenants with matching lease and
concentration records, plus optional market conditions. Each tenant scores
independently: a weighted base score from the factor tables, additive
lease/concentration/market adjustments, then banding into
Low/Moderate/High/Severe.

Weight overrides must still sum to 1.0 with the untouched weights.

Examples:
  # Score tenants with the default tables
  score --input tenants.json

  # Tilt the weights toward financial strength
  score --input tenants.json --weight-financial 0.35 --weight-industry 0.10

  # Export as CSV
  score --input tenants.json --format csv --output scores.csv`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("input", "", "path to JSON input file (required)")
	f.Float64("weight-industry", 0, "industry risk weight override")
	f.Float64("weight-position", 0, "market position weight override")
	f.Float64("weight-financial", 0, "financial strength weight override")
	f.Float64("weight-history", 0, "operating history weight override")
	f.Float64("weight-payment", 0, "payment history weight override")
	f.Float64("weight-conditions", 0, "market conditions weight override")
	f.String("output", "", "output file path (default: stdout)")
	f.String("format", "table", "output format: table, csv, or json")
	_ = scoreCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inputPath, _ := cmd.Flags().GetString("input")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	if format != "table" && format != "csv" && format != "json" {
		return eris.Errorf("score: --format must be table, csv, or json (got %q)", format)
	}

	in, err := loadAnalysisInput(inputPath)
	if err != nil {
		return err
	}
	if len(in.Tenants) == 0 {
		return eris.Errorf("score: input file %s has no tenants", inputPath)
	}

	scfg := scorer.DefaultConfig()
	if path := cfg.Scoring.ConfigPath; path != "" {
		if scfg, err = scorer.LoadConfigFile(path); err != nil {
			return err
		}
	}
	s, err := scorer.New(applyWeightOverrides(cmd, scfg))
	if err != nil {
		return err
	}

	market, err := resolveMarket(ctx, in)
	if err != nil {
		return err
	}

	log := zap.L().With(zap.String("command", "score"))
	log.Info("scoring tenants", zap.Int("tenants", len(in.Tenants)))

	leases := leaseByTenant(in.Leases)
	concs := concentrationByTenant(in.Concentrations)

	results := make([]tenantScore, 0, len(in.Tenants))
	for _, tenant := range in.Tenants {
		lease, ok := leases[tenant.ID]
		if !ok {
			return eris.Errorf("score: no lease record for tenant %s", tenant.ID)
		}
		conc, ok := concs[tenant.ID]
		if !ok {
			return eris.Errorf("score: no concentration record for tenant %s", tenant.ID)
		}

		calc := s.Score(tenant, lease, conc, market.SnapshotFor(tenant.Industry))
		results = append(results, tenantScore{Tenant: tenant, Credit: calc})
	}

	if err := outputTenantScores(results, format, outputPath); err != nil {
		return err
	}

	printScoreSummary(results)
	return nil
}

// applyWeightOverrides returns a copy of the config with CLI weight overrides applied.
func applyWeightOverrides(cmd *cobra.Command, base scorer.Config) scorer.Config {
	c := base

	if v, _ := cmd.Flags().GetFloat64("weight-industry"); v > 0 {
		c.Weights.IndustryRisk = v
	}
	if v, _ := cmd.Flags().GetFloat64("weight-position"); v > 0 {
		c.Weights.MarketPosition = v
	}
	if v, _ := cmd.Flags().GetFloat64("weight-financial"); v > 0 {
		c.Weights.FinancialStrength = v
	}
	if v, _ := cmd.Flags().GetFloat64("weight-history"); v > 0 {
		c.Weights.OperatingHistory = v
	}
	if v, _ := cmd.Flags().GetFloat64("weight-payment"); v > 0 {
		c.Weights.PaymentHistory = v
	}
	if v, _ := cmd.Flags().GetFloat64("weight-conditions"); v > 0 {
		c.Weights.MarketConditions = v
	}

	return c
}

// tenantScore pairs a tenant with its scoring result for output.
type tenantScore struct {
	Tenant model.TenantProfile         `json:"tenant"`
	Credit model.CreditRiskCalculation `json:"credit"`
}

func outputTenantScores(results []tenantScore, format, outputPath string) error {
	w, closeOutput, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeOutput()

	switch format {
	case "json":
		return printJSON(w, results)
	case "csv":
		return writeScoreCSV(w, results)
	case "table":
		return writeScoreTable(w, results)
	default:
		return eris.Errorf("score: unsupported format %q", format)
	}
}

func writeScoreCSV(w io.Writer, results []tenantScore) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"tenant_id", "name", "industry", "base_score", "adjusted_score", "risk_level", "confidence"}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "score: write CSV header")
	}

	for _, r := range results {
		row := []string{
			r.Tenant.ID,
			r.Tenant.Name,
			string(r.Tenant.Industry),
			fmt.Sprintf("%.1f", r.Credit.BaseScore),
			fmt.Sprintf("%.1f", r.Credit.AdjustedScore),
			string(r.Credit.RiskLevel),
			fmt.Sprintf("%.2f", r.Credit.ConfidenceLevel),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "score: write CSV row")
		}
	}
	return nil
}

func writeScoreTable(w io.Writer, results []tenantScore) error {
	header := fmt.Sprintf("%-14s %-30s %-15s %7s %9s %-9s\n",
		"Tenant", "Name", "Industry", "Base", "Adjusted", "Level")
	if _, err := fmt.Fprint(w, header); err != nil {
		return eris.Wrap(err, "score: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 88)); err != nil {
		return eris.Wrap(err, "score: write table separator")
	}

	for _, r := range results {
		line := fmt.Sprintf("%-14s %-30s %-15s %7.1f %9.1f %-9s\n",
			truncate(r.Tenant.ID, 14), truncate(r.Tenant.Name, 30), r.Tenant.Industry,
			r.Credit.BaseScore, r.Credit.AdjustedScore, r.Credit.RiskLevel)
		if _, err := fmt.Fprint(w, line); err != nil {
			return eris.Wrap(err, "score: write table row")
		}
	}
	return nil
}

func printScoreSummary(results []tenantScore) {
	if len(results) == 0 {
		fmt.Println("No results.")
		return
	}

	var sum float64
	counts := make(map[model.RiskLevel]int)
	for _, r := range results {
		sum += r.Credit.AdjustedScore
		counts[r.Credit.RiskLevel]++
	}

	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Tenants scored: %d\n", len(results))
	fmt.Printf("Average score:  %.1f\n", sum/float64(len(results)))
	for _, level := range model.RiskLevels() {
		if n := counts[level]; n > 0 {
			fmt.Printf("%-15s %d\n", level+":", n)
		}
	}
}
