package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/cre-analytics/internal/analysis"
	"github.com/sells-group/cre-analytics/internal/insights"
	"github.com/sells-group/cre-analytics/internal/model"
	"github.com/sells-group/cre-analytics/pkg/anthropic"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a full property credit analysis",
	Long: `Run a property-level credit analysis over an input file.

Every tenant in the file is scored, then aggregated into the property-level
record: revenue-weighted overall score and band, rent-weighted average lease
length, total default risk, portfolio impact, and recommendations.

Examples:
  # Analyze and print the record
  analyze --input property.json

  # Persist the analysis to the store
  analyze --input property.json --property prop-123 --save

  # Attach AI-generated insights
  analyze --input property.json --insights`,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.String("input", "", "path to JSON input file (required)")
	f.String("property", "", "property ID (overrides the input file)")
	f.Bool("save", false, "persist the analysis to the store")
	f.Bool("insights", false, "generate AI insights for the analysis")
	f.String("output", "", "output file path (default: stdout)")
	_ = analyzeCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(analyzeCmd)
}

// analysisOutput is the analyze command's JSON output: the analysis record
// plus the optional insight report.
type analysisOutput struct {
	Analysis *model.PropertyCreditAnalysis `json:"analysis"`
	Insights *insights.Report              `json:"insights,omitempty"`
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inputPath, _ := cmd.Flags().GetString("input")
	propertyID, _ := cmd.Flags().GetString("property")
	save, _ := cmd.Flags().GetBool("save")
	withInsights, _ := cmd.Flags().GetBool("insights")
	outputPath, _ := cmd.Flags().GetString("output")

	if save {
		if err := cfg.Validate("store"); err != nil {
			return err
		}
	}
	if withInsights {
		if err := cfg.Validate("insights"); err != nil {
			return err
		}
	}

	in, err := loadAnalysisInput(inputPath)
	if err != nil {
		return err
	}
	if propertyID == "" {
		propertyID = in.PropertyID
	}
	if propertyID == "" {
		return eris.New("analyze: property ID is required (--property or input file)")
	}

	s, err := initScorer()
	if err != nil {
		return err
	}

	market, err := resolveMarket(ctx, in)
	if err != nil {
		return err
	}

	result, err := analysis.NewAggregator(s).Aggregate(propertyID, in.Tenants, in.Leases, in.Concentrations, market)
	if err != nil {
		return eris.Wrapf(err, "analyze: property %s", propertyID)
	}

	log := zap.L().With(
		zap.String("command", "analyze"),
		zap.String("property_id", propertyID),
	)
	log.Info("analysis complete",
		zap.Float64("risk_score", result.OverallRiskScore),
		zap.String("risk_level", string(result.OverallRiskLevel)),
		zap.Int("tenants", len(result.TenantProfiles)),
	)

	out := analysisOutput{Analysis: result}

	if withInsights {
		gen := insights.NewGenerator(anthropic.NewClient(cfg.Anthropic.Key), insights.Options{
			Model:       cfg.Anthropic.Model,
			MaxTokens:   int64(cfg.Anthropic.MaxTokens),
			Temperature: cfg.Anthropic.Temperature,
		})
		// Insights never block the analysis; failures log and leave the field empty.
		out.Insights = gen.GenerateOrNil(ctx, *result)
	}

	if save {
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "analyze: migrate")
		}
		saved, err := st.SaveAnalysis(ctx, *result)
		if err != nil {
			return eris.Wrap(err, "analyze: save")
		}
		out.Analysis = saved
		fmt.Printf("Analysis %s saved\n", saved.ID)
	}

	w, closeOutput, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeOutput()

	return printJSON(w, out)
}
