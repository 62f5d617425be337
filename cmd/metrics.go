package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/cre-analytics/internal/finance"
	"github.com/sells-group/cre-analytics/internal/model"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Compute financial metrics for a property",
	Long: `Compute the financial metric set for one property from flags or a
JSON input file. Flags override file values.

Debt service must be non-zero and the property value must differ from the
loan amount; both feed denominators.

Examples:
  # From flags
  metrics --value 12500000 --noi 750000 --debt-service 500000 --loan 8750000

  # From a file, as JSON
  metrics --input metrics.json --format json`,
	RunE: runMetrics,
}

func init() {
	f := metricsCmd.Flags()
	f.String("input", "", "path to JSON file with metric inputs")
	f.Float64("value", 0, "property value")
	f.Float64("noi", 0, "net operating income")
	f.Float64("debt-service", 0, "annual debt service")
	f.Float64("expenses", 0, "operating expenses")
	f.Float64("loan", 0, "loan amount")
	f.Float64("break-even", 0, "break-even occupancy percentage")
	f.Float64("sqft", 0, "total square footage")
	f.Float64("revenue", 0, "total revenue")
	f.String("format", "table", "output format: table or json")

	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "table" && format != "json" {
		return eris.Errorf("metrics: --format must be table or json (got %q)", format)
	}

	in, err := metricsInputFromFlags(cmd)
	if err != nil {
		return err
	}

	m, err := finance.CalculateMetrics(in)
	if err != nil {
		return eris.Wrap(err, "metrics")
	}

	if format == "json" {
		return printJSON(os.Stdout, m)
	}
	printMetricsTable(m)
	return nil
}

// metricsInputFromFlags assembles the metric inputs, file first, flags on top.
func metricsInputFromFlags(cmd *cobra.Command) (finance.MetricsInput, error) {
	var in finance.MetricsInput

	if path, _ := cmd.Flags().GetString("input"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return in, eris.Wrapf(err, "metrics: read input file %s", path)
		}
		if err := json.Unmarshal(data, &in); err != nil {
			return in, eris.Wrapf(err, "metrics: parse input file %s", path)
		}
	}

	if v, _ := cmd.Flags().GetFloat64("value"); v != 0 {
		in.PropertyValue = v
	}
	if v, _ := cmd.Flags().GetFloat64("noi"); v != 0 {
		in.NOI = v
	}
	if v, _ := cmd.Flags().GetFloat64("debt-service"); v != 0 {
		in.DebtService = v
	}
	if v, _ := cmd.Flags().GetFloat64("expenses"); v != 0 {
		in.OperatingExpenses = v
	}
	if v, _ := cmd.Flags().GetFloat64("loan"); v != 0 {
		in.LoanAmount = v
	}
	if v, _ := cmd.Flags().GetFloat64("break-even"); v != 0 {
		in.BreakEvenOccupancy = v
	}
	if v, _ := cmd.Flags().GetFloat64("sqft"); v != 0 {
		in.SquareFootage = v
	}
	if v, _ := cmd.Flags().GetFloat64("revenue"); v != 0 {
		in.TotalRevenue = v
	}

	return in, nil
}

func printMetricsTable(m model.FinancialMetrics) {
	fmt.Printf("%-24s %10.2f%%\n", "Cap rate", m.CapRate)
	fmt.Printf("%-24s %10.2f%%\n", "Cash-on-cash", m.CashOnCash)
	fmt.Printf("%-24s %10.2fx\n", "DSCR", m.DebtServiceCoverage)
	fmt.Printf("%-24s %10.2f%%\n", "Loan-to-value", m.LoanToValue)
	fmt.Printf("%-24s %10.2f%%\n", "OpEx ratio", m.OperatingExpenseRatio)
	fmt.Printf("%-24s %10.2f%%\n", "Debt yield", m.DebtYield)
	fmt.Printf("%-24s %10.2f%%\n", "Operating margin", m.OperatingMargin)
	fmt.Printf("%-24s %10.2f%%\n", "IRR (placeholder)", m.IRR)
	fmt.Printf("%-24s %10.2f%%\n", "Break-even occupancy", m.BreakEvenOccupancy)
	fmt.Printf("%-24s $%s\n", "Equity required", formatMoney(m.EquityRequired))
	if m.PricePerSqFt > 0 {
		fmt.Printf("%-24s $%.2f\n", "Price per sqft", m.PricePerSqFt)
		fmt.Printf("%-24s $%.2f\n", "NOI per sqft", m.NOIPerSqFt)
	}
}
