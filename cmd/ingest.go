package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/cre-analytics/internal/analysis"
	"github.com/sells-group/cre-analytics/internal/ingest"
	"github.com/sells-group/cre-analytics/internal/model"
	"github.com/sells-group/cre-analytics/pkg/geocode"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Import properties and rent rolls",
	Long:  "Extracts rent roll spreadsheets into scoring inputs and bulk-imports property records into the store.",
}

var ingestRentrollCmd = &cobra.Command{
	Use:   "rentroll",
	Short: "Extract a rent roll document",
	Long: `Extract tenants, leases, and occupancy from a rent roll file.

Supports .xlsx, .csv, and .pdf files; PDFs go through the OCR provider
named by ocr.provider. Header detection is fuzzy: unit, tenant, square
footage, rent, and lease date columns are matched by name variants.
With --analyze the extracted roster is converted to scoring inputs and run
through a full credit analysis.

Examples:
  # Extract and print the roll as JSON
  ingest rentroll --file roll.xlsx

  # Extract a scanned PDF rent roll
  ingest rentroll --file roll.pdf

  # Extract, score, and persist the analysis
  ingest rentroll --file roll.xlsx --analyze --property prop-001 --save`,
	RunE: runIngestRentroll,
}

var ingestPropertiesCmd = &cobra.Command{
	Use:   "properties",
	Short: "Bulk-import property records",
	Long: `Import a JSON array of properties into the store in one transaction.

With --geocode, properties missing coordinates are resolved against the
Census Geocoder before the import.

Example:
  ingest properties --file properties.json --geocode`,
	RunE: runIngestProperties,
}

func init() {
	f := ingestRentrollCmd.Flags()
	f.String("file", "", "path to rent roll file: .xlsx, .csv, or .pdf (required)")
	f.Bool("analyze", false, "run a credit analysis on the extracted roster")
	f.String("property", "", "property ID for the analysis (required with --analyze)")
	f.Bool("save", false, "persist the analysis to the store (requires --analyze)")
	f.String("output", "", "output file path (default: stdout)")
	_ = ingestRentrollCmd.MarkFlagRequired("file")

	pf := ingestPropertiesCmd.Flags()
	pf.String("file", "", "path to JSON property array (required)")
	pf.Bool("geocode", false, "fill in missing coordinates before importing")
	_ = ingestPropertiesCmd.MarkFlagRequired("file")

	ingestCmd.AddCommand(ingestRentrollCmd)
	ingestCmd.AddCommand(ingestPropertiesCmd)
	rootCmd.AddCommand(ingestCmd)
}

// rentrollOutput is the rentroll command's JSON shape. Analysis is present
// only with --analyze.
type rentrollOutput struct {
	RentRoll *model.RentRoll               `json:"rent_roll"`
	Analysis *model.PropertyCreditAnalysis `json:"analysis,omitempty"`
}

func runIngestRentroll(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	filePath, _ := cmd.Flags().GetString("file")
	analyze, _ := cmd.Flags().GetBool("analyze")
	propertyID, _ := cmd.Flags().GetString("property")
	save, _ := cmd.Flags().GetBool("save")
	outputPath, _ := cmd.Flags().GetString("output")

	if analyze && propertyID == "" {
		return eris.New("ingest: --property is required with --analyze")
	}
	if save && !analyze {
		return eris.New("ingest: --save requires --analyze")
	}
	if save {
		if err := cfg.Validate("store"); err != nil {
			return err
		}
	}

	roll, err := extractRentRoll(ctx, filePath)
	if err != nil {
		return eris.Wrapf(err, "ingest: extract %s", filePath)
	}

	zap.L().Info("rent roll extracted",
		zap.String("file", filePath),
		zap.Int("units", roll.Summary.TotalUnits),
		zap.Float64("occupancy", roll.Summary.OccupancyRate),
		zap.Int("validation_errors", len(roll.ValidationErrors)),
	)
	for _, msg := range roll.ValidationErrors {
		zap.L().Warn("rent roll validation", zap.String("issue", msg))
	}

	out := rentrollOutput{RentRoll: roll}

	if analyze {
		inputs := ingest.Convert(roll, time.Now())
		if len(inputs.Tenants) == 0 {
			return eris.Errorf("ingest: rent roll %s has no occupied units to score", filePath)
		}

		s, err := initScorer()
		if err != nil {
			return err
		}
		market, err := initMarketProvider().MarketData(ctx)
		if err != nil {
			return eris.Wrap(err, "ingest: fetch market data")
		}

		a, err := analysis.NewAggregator(s).Aggregate(propertyID, inputs.Tenants, inputs.Leases, inputs.Concentrations, market)
		if err != nil {
			return eris.Wrapf(err, "ingest: analyze property %s", propertyID)
		}
		out.Analysis = a

		if save {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "ingest: migrate")
			}
			saved, err := st.SaveAnalysis(ctx, *a)
			if err != nil {
				return eris.Wrap(err, "ingest: save analysis")
			}
			fmt.Printf("Analysis %s saved\n", saved.ID)
		}
	}

	w, closeOutput, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeOutput()

	return printJSON(w, out)
}

// extractRentRoll routes the file to the parser matching its extension.
// PDFs need an OCR pass, everything else reads directly.
func extractRentRoll(ctx context.Context, path string) (*model.RentRoll, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return ingest.ExtractFile(path)
	}
	ex, err := initExtractor()
	if err != nil {
		return nil, err
	}
	return ingest.ExtractPDF(ctx, ex, path)
}

func runIngestProperties(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	filePath, _ := cmd.Flags().GetString("file")
	geocodeMissing, _ := cmd.Flags().GetBool("geocode")

	if err := cfg.Validate("store"); err != nil {
		return err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return eris.Wrapf(err, "ingest: read %s", filePath)
	}
	var props []model.Property
	if err := json.Unmarshal(data, &props); err != nil {
		return eris.Wrapf(err, "ingest: parse %s", filePath)
	}
	if len(props) == 0 {
		return eris.Errorf("ingest: %s contains no properties", filePath)
	}

	if geocodeMissing {
		if err := geocodeProperties(ctx, initGeocoder(), props); err != nil {
			return err
		}
	}

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	if err := st.Migrate(ctx); err != nil {
		return eris.Wrap(err, "ingest: migrate")
	}
	n, err := st.BulkImportProperties(ctx, props)
	if err != nil {
		return eris.Wrap(err, "ingest: bulk import")
	}

	zap.L().Info("properties imported", zap.Int64("count", n), zap.String("file", filePath))
	fmt.Printf("Imported %d properties\n", n)
	return nil
}

// geocodeProperties fills in missing coordinates on the records about to
// be imported. Unmatched addresses are logged and left blank, never
// fatal.
func geocodeProperties(ctx context.Context, gc geocode.Client, props []model.Property) error {
	var missing []int
	var addrs []model.Address
	for i := range props {
		if props[i].Address.Latitude == nil || props[i].Address.Longitude == nil {
			missing = append(missing, i)
			addrs = append(addrs, props[i].Address)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	results, err := gc.BatchGeocode(ctx, addrs)
	if err != nil {
		return eris.Wrap(err, "ingest: geocode properties")
	}

	matched := 0
	for j, r := range results {
		if !r.Matched {
			zap.L().Warn("address not geocoded", zap.String("property", props[missing[j]].ID))
			continue
		}
		lat, lon := r.Latitude, r.Longitude
		props[missing[j]].Address.Latitude = &lat
		props[missing[j]].Address.Longitude = &lon
		matched++
	}
	zap.L().Info("geocoded properties",
		zap.Int("matched", matched),
		zap.Int("unmatched", len(missing)-matched),
	)
	return nil
}
