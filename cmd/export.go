package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/cre-analytics/internal/model"
	"github.com/sells-group/cre-analytics/pkg/notion"
)

// analysisReader is the slice of the store the export command reads from.
type analysisReader interface {
	GetAnalysis(ctx context.Context, id string) (*model.PropertyCreditAnalysis, error)
	LatestAnalysisForProperty(ctx context.Context, propertyID string) (*model.PropertyCreditAnalysis, error)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export analyses to external systems",
	Long:  "Publishes stored credit analyses to a Notion database, one page per property.",
}

var exportNotionCmd = &cobra.Command{
	Use:   "notion",
	Short: "Export a credit analysis to Notion",
	Long: `Export a stored analysis as a Notion database page.

Pages key on property ID: exporting again for the same property updates the
existing page instead of creating a duplicate. Scores, risk level, lease
metrics, and recommendations land in database properties and page content.

Examples:
  # Export a specific analysis by ID
  export notion --analysis 2f1c9a6e-43cd-4f6e-9f2a-0b6a8a3d5f01

  # Export the latest analysis for a property
  export notion --property prop-001`,
	RunE: runExportNotion,
}

func init() {
	f := exportNotionCmd.Flags()
	f.String("analysis", "", "analysis ID to export")
	f.String("property", "", "property ID, exports its latest analysis")
	f.String("title", "", "page title (default: \"Credit Analysis <property>\")")

	exportCmd.AddCommand(exportNotionCmd)
	rootCmd.AddCommand(exportCmd)
}

func runExportNotion(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	analysisID, _ := cmd.Flags().GetString("analysis")
	propertyID, _ := cmd.Flags().GetString("property")
	title, _ := cmd.Flags().GetString("title")

	if analysisID == "" && propertyID == "" {
		return eris.New("export: --analysis or --property is required")
	}
	if err := cfg.Validate("export"); err != nil {
		return err
	}
	if err := cfg.Validate("store"); err != nil {
		return err
	}

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	a, err := loadExportAnalysis(ctx, st, analysisID, propertyID)
	if err != nil {
		return err
	}

	if title == "" {
		title = fmt.Sprintf("Credit Analysis %s", a.PropertyID)
	}

	client := notion.NewClient(cfg.Notion.Token, notion.WithRateLimit(cfg.Notion.RPS))
	exporter := notion.NewExporter(client, cfg.Notion.AnalysisDB)

	pageID, created, err := exporter.Export(ctx, title, a)
	if err != nil {
		return eris.Wrapf(err, "export: analysis %s", a.ID)
	}

	zap.L().Info("analysis exported",
		zap.String("analysis_id", a.ID),
		zap.String("property_id", a.PropertyID),
		zap.String("page_id", pageID),
		zap.Bool("created", created),
	)

	action := "updated"
	if created {
		action = "created"
	}
	fmt.Printf("Notion page %s %s\n", pageID, action)
	return nil
}

func loadExportAnalysis(ctx context.Context, st analysisReader, analysisID, propertyID string) (*model.PropertyCreditAnalysis, error) {
	if analysisID != "" {
		a, err := st.GetAnalysis(ctx, analysisID)
		if err != nil {
			return nil, eris.Wrapf(err, "export: load analysis %s", analysisID)
		}
		return a, nil
	}
	a, err := st.LatestAnalysisForProperty(ctx, propertyID)
	if err != nil {
		return nil, eris.Wrapf(err, "export: latest analysis for property %s", propertyID)
	}
	return a, nil
}
