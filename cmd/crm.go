package main

import (
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/cre-analytics/internal/model"
	sfpkg "github.com/sells-group/cre-analytics/pkg/salesforce"
)

var crmCmd = &cobra.Command{
	Use:   "crm",
	Short: "Salesforce CRM integration",
	Long:  "Pulls tenant data from Salesforce Accounts via JWT bearer auth and SOQL queries.",
}

var crmImportTenantsCmd = &cobra.Command{
	Use:   "import-tenants",
	Short: "Import tenant profiles from Salesforce Accounts",
	Long: `Query Salesforce Accounts and map them onto tenant profiles for scoring.

Industry picklist values normalize to scoring industry categories; ownership,
annual revenue, employee count, and year started map onto the profile fields.
The output feeds directly into the score and analyze commands.

Examples:
  # All accounts, capped at 200
  crm import-tenants --limit 200

  # Retail accounts only, written to a scoring input file
  crm import-tenants --industry Retail --output tenants.json --format json`,
	RunE: runCrmImportTenants,
}

func init() {
	f := crmImportTenantsCmd.Flags()
	f.String("industry", "", "filter on the Salesforce industry picklist value")
	f.Int("limit", 0, "maximum accounts to import (0 = no limit)")
	f.Float64("rps", 5, "Salesforce API requests per second")
	f.String("format", "table", "output format: table or json")
	f.String("output", "", "output file path (default: stdout)")

	crmCmd.AddCommand(crmImportTenantsCmd)
	rootCmd.AddCommand(crmCmd)
}

func runCrmImportTenants(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	industry, _ := cmd.Flags().GetString("industry")
	limit, _ := cmd.Flags().GetInt("limit")
	rps, _ := cmd.Flags().GetFloat64("rps")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	if format != "table" && format != "json" {
		return eris.Errorf("crm: --format must be table or json (got %q)", format)
	}
	if err := cfg.Validate("crm"); err != nil {
		return err
	}

	client, err := initSalesforce(rps)
	if err != nil {
		return err
	}

	tenants, err := sfpkg.ImportTenants(ctx, client, sfpkg.ImportOptions{
		Industry: industry,
		Limit:    limit,
	})
	if err != nil {
		return err
	}

	zap.L().Info("tenants imported",
		zap.Int("count", len(tenants)),
		zap.String("industry", industry),
	)

	w, closeOutput, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeOutput()

	if format == "json" {
		return printJSON(w, tenants)
	}
	return writeTenantTable(w, tenants)
}

func writeTenantTable(w io.Writer, tenants []model.TenantProfile) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%-20s %-30s %-15s %8s %9s %7s\n",
		"ID", "NAME", "INDUSTRY", "YEARS", "EMPLOYEES", "PUBLIC")
	sb.WriteString(strings.Repeat("-", 94))
	sb.WriteString("\n")

	for _, t := range tenants {
		employees := "-"
		if t.EmployeeCount != nil {
			employees = fmt.Sprintf("%d", *t.EmployeeCount)
		}
		public := "no"
		if t.PublicCompany {
			public = "yes"
		}
		fmt.Fprintf(&sb, "%-20s %-30s %-15s %8.1f %9s %7s\n",
			truncate(t.ID, 20), truncate(t.Name, 30), t.Industry, t.YearsInBusiness, employees, public)
	}
	fmt.Fprintf(&sb, "\n%d tenants\n", len(tenants))

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return eris.Wrap(err, "crm: write table")
	}
	return nil
}
