package model

// Industry classifies a tenant's primary business sector. Unknown values are
// treated as IndustryOther at lookup time rather than rejected.
type Industry string

const (
	IndustryTechnology    Industry = "Technology"
	IndustryFinance       Industry = "Finance"
	IndustryHealthcare    Industry = "Healthcare"
	IndustryRetail        Industry = "Retail"
	IndustryManufacturing Industry = "Manufacturing"
	IndustryProfessional  Industry = "Professional"
	IndustryGovernment    Industry = "Government"
	IndustryOther         Industry = "Other"
)

// DefaultIndustryGrowth is assumed for industries absent from a market data map.
const DefaultIndustryGrowth = 0.02

// TenantProfile describes a commercial tenant's business fundamentals.
// CreditScore and AnnualRevenue are optional; scoring substitutes documented
// fallbacks when they are absent.
type TenantProfile struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Industry        Industry `json:"industry"`
	CreditScore     *float64 `json:"credit_score,omitempty"`
	AnnualRevenue   *float64 `json:"annual_revenue,omitempty"`
	YearsInBusiness float64  `json:"years_in_business"`
	PublicCompany   bool     `json:"public_company"`
	EmployeeCount   *int     `json:"employee_count,omitempty"`
}

// LeaseRisk captures the lease-level risk inputs for one tenant.
// LeaseTermRemaining is expressed in years. CreditRiskLevel is an output
// field populated by scoring, never an input.
type LeaseRisk struct {
	ID                 string    `json:"id"`
	TenantID           string    `json:"tenant_id"`
	LeaseTermRemaining float64   `json:"lease_term_remaining"`
	MonthlyRent        float64   `json:"monthly_rent"`
	RentPerSqFt        float64   `json:"rent_per_sqft"`
	Escalations        float64   `json:"escalations"`
	SecurityDeposit    float64   `json:"security_deposit"`
	DefaultProbability float64   `json:"default_probability"`
	MarketRentDelta    float64   `json:"market_rent_delta"`
	CreditRiskLevel    RiskLevel `json:"credit_risk_level,omitempty"`
}

// TenantConcentration describes a tenant's share of a property's footprint
// and revenue. PercentOfTotal and PercentOfRevenue are fractions in [0,1].
type TenantConcentration struct {
	TenantID         string   `json:"tenant_id"`
	SquareFootage    float64  `json:"square_footage"`
	PercentOfTotal   float64  `json:"percent_of_total"`
	AnnualRent       float64  `json:"annual_rent"`
	PercentOfRevenue float64  `json:"percent_of_revenue"`
	IndustryExposure Industry `json:"industry_exposure"`
}

// MarketData holds market-wide inputs for a full property analysis.
// IndustryGrowth is keyed by industry; SnapshotFor resolves the per-tenant view.
type MarketData struct {
	IndustryGrowth map[Industry]float64 `json:"industry_growth"`
	VacancyRate    float64              `json:"vacancy_rate"`
	EconomicIndex  float64              `json:"economic_index"`
}

// MarketSnapshot is the per-tenant view of market conditions with the
// industry growth rate already resolved to a scalar.
type MarketSnapshot struct {
	IndustryGrowth float64 `json:"industry_growth"`
	VacancyRate    float64 `json:"vacancy_rate"`
	EconomicIndex  float64 `json:"economic_index"`
}

// SnapshotFor resolves the market view for one industry, falling back to
// DefaultIndustryGrowth when the industry is absent from the map.
func (m MarketData) SnapshotFor(ind Industry) MarketSnapshot {
	growth, ok := m.IndustryGrowth[ind]
	if !ok {
		growth = DefaultIndustryGrowth
	}
	return MarketSnapshot{
		IndustryGrowth: growth,
		VacancyRate:    m.VacancyRate,
		EconomicIndex:  m.EconomicIndex,
	}
}
