package salesforce

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/cre-analytics/internal/model"
)

// ImportOptions narrows the Account query backing a tenant import.
type ImportOptions struct {
	// Industry filters on the raw Salesforce industry picklist value.
	Industry string
	Limit    int
}

// ImportTenants queries Account records and maps each onto a TenantProfile.
func ImportTenants(ctx context.Context, c Client, opts ImportOptions) ([]model.TenantProfile, error) {
	where := ""
	if opts.Industry != "" {
		where = fmt.Sprintf("Industry = '%s'", escapeSoql(opts.Industry))
	}

	accounts, err := QueryAccounts(ctx, c, where, opts.Limit)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tenants := make([]model.TenantProfile, 0, len(accounts))
	for _, acct := range accounts {
		tenants = append(tenants, TenantFromAccount(acct, now))
	}
	return tenants, nil
}

// TenantFromAccount maps one Account onto a TenantProfile. The CRM does not
// track credit scores, so the profile carries none and scoring falls back to
// its documented default. Unparseable or future YearStarted values leave
// YearsInBusiness at zero.
func TenantFromAccount(acct Account, now time.Time) model.TenantProfile {
	t := model.TenantProfile{
		ID:            acct.ID,
		Name:          acct.Name,
		Industry:      NormalizeIndustry(acct.Industry),
		PublicCompany: strings.EqualFold(strings.TrimSpace(acct.Ownership), "Public"),
	}

	if acct.AnnualRevenue > 0 {
		rev := acct.AnnualRevenue
		t.AnnualRevenue = &rev
	}
	if acct.NumberOfEmployees > 0 {
		n := acct.NumberOfEmployees
		t.EmployeeCount = &n
	}
	if year, err := strconv.Atoi(strings.TrimSpace(acct.YearStarted)); err == nil {
		if age := now.Year() - year; age >= 0 {
			t.YearsInBusiness = float64(age)
		}
	}
	return t
}

// industryAliases maps Salesforce industry picklist values onto the scoring
// industries. Keys are lowercase.
var industryAliases = map[string]model.Industry{
	"technology":         model.IndustryTechnology,
	"software":           model.IndustryTechnology,
	"electronics":        model.IndustryTechnology,
	"telecommunications": model.IndustryTechnology,
	"communications":     model.IndustryTechnology,
	"biotechnology":      model.IndustryTechnology,

	"finance":   model.IndustryFinance,
	"banking":   model.IndustryFinance,
	"insurance": model.IndustryFinance,

	"healthcare": model.IndustryHealthcare,

	"retail":          model.IndustryRetail,
	"apparel":         model.IndustryRetail,
	"food & beverage": model.IndustryRetail,

	"manufacturing": model.IndustryManufacturing,
	"machinery":     model.IndustryManufacturing,
	"chemicals":     model.IndustryManufacturing,
	"construction":  model.IndustryManufacturing,

	"consulting":  model.IndustryProfessional,
	"engineering": model.IndustryProfessional,
	"legal":       model.IndustryProfessional,
	"accounting":  model.IndustryProfessional,

	"government": model.IndustryGovernment,
}

// NormalizeIndustry maps a raw CRM industry value onto the scoring Industry
// enum. Unknown or empty values become IndustryOther.
func NormalizeIndustry(raw string) model.Industry {
	key := strings.ToLower(strings.TrimSpace(raw))
	if ind, ok := industryAliases[key]; ok {
		return ind
	}
	return model.IndustryOther
}
