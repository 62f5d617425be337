package salesforce

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/cre-analytics/internal/model"
)

func TestTenantFromAccount(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	acct := Account{
		ID:                "001xx",
		Name:              "Vertex Systems",
		Industry:          "Software",
		AnnualRevenue:     5_000_000,
		NumberOfEmployees: 120,
		Ownership:         "public",
		YearStarted:       " 2016 ",
	}

	tenant := TenantFromAccount(acct, now)

	assert.Equal(t, "001xx", tenant.ID)
	assert.Equal(t, "Vertex Systems", tenant.Name)
	assert.Equal(t, model.IndustryTechnology, tenant.Industry)
	assert.True(t, tenant.PublicCompany)
	require.NotNil(t, tenant.AnnualRevenue)
	assert.Equal(t, 5_000_000.0, *tenant.AnnualRevenue)
	require.NotNil(t, tenant.EmployeeCount)
	assert.Equal(t, 120, *tenant.EmployeeCount)
	assert.Equal(t, 10.0, tenant.YearsInBusiness)
	assert.Nil(t, tenant.CreditScore)
}

func TestTenantFromAccount_MissingOptionalFields(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tenant := TenantFromAccount(Account{ID: "001yy", Name: "Corner Deli"}, now)

	assert.Nil(t, tenant.AnnualRevenue)
	assert.Nil(t, tenant.EmployeeCount)
	assert.False(t, tenant.PublicCompany)
	assert.Zero(t, tenant.YearsInBusiness)
	assert.Equal(t, model.IndustryOther, tenant.Industry)
}

func TestTenantFromAccount_YearStarted(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		started string
		want    float64
	}{
		{"valid year", "2000", 26},
		{"current year", "2026", 0},
		{"future year ignored", "2030", 0},
		{"garbage ignored", "est. 1999", 0},
		{"empty ignored", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tenant := TenantFromAccount(Account{YearStarted: tt.started}, now)
			assert.Equal(t, tt.want, tenant.YearsInBusiness)
		})
	}
}

func TestNormalizeIndustry(t *testing.T) {
	tests := []struct {
		raw  string
		want model.Industry
	}{
		{"Technology", model.IndustryTechnology},
		{"biotechnology", model.IndustryTechnology},
		{"Banking", model.IndustryFinance},
		{"Insurance", model.IndustryFinance},
		{"Healthcare", model.IndustryHealthcare},
		{"Food & Beverage", model.IndustryRetail},
		{"Construction", model.IndustryManufacturing},
		{"Legal", model.IndustryProfessional},
		{"Government", model.IndustryGovernment},
		{"  Retail  ", model.IndustryRetail},
		{"Shipping", model.IndustryOther},
		{"", model.IndustryOther},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeIndustry(tt.raw), "raw=%q", tt.raw)
	}
}

func TestImportTenants(t *testing.T) {
	var gotSoql string
	mock := &mockClient{
		queryFn: func(_ context.Context, soql string, out any) error {
			gotSoql = soql
			accounts := out.(*[]Account)
			*accounts = []Account{
				{ID: "001xx", Name: "Vertex Systems", Industry: "Technology"},
				{ID: "002xx", Name: "Lakeside Clinic", Industry: "Healthcare"},
			}
			return nil
		},
	}

	tenants, err := ImportTenants(context.Background(), mock, ImportOptions{
		Industry: "Tech's",
		Limit:    10,
	})
	require.NoError(t, err)

	assert.Contains(t, gotSoql, `WHERE Industry = 'Tech\'s'`)
	assert.Contains(t, gotSoql, "LIMIT 10")
	require.Len(t, tenants, 2)
	assert.Equal(t, model.IndustryTechnology, tenants[0].Industry)
	assert.Equal(t, model.IndustryHealthcare, tenants[1].Industry)
}

func TestImportTenants_NoFilter(t *testing.T) {
	var gotSoql string
	mock := &mockClient{
		queryFn: func(_ context.Context, soql string, _ any) error {
			gotSoql = soql
			return nil
		},
	}

	tenants, err := ImportTenants(context.Background(), mock, ImportOptions{})
	require.NoError(t, err)
	assert.Empty(t, tenants)
	assert.NotContains(t, gotSoql, "WHERE")
}
