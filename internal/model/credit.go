package model

import "time"

// RiskLevel bands a 0-100 credit score into a named tier.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "Low"
	RiskLevelModerate RiskLevel = "Moderate"
	RiskLevelHigh     RiskLevel = "High"
	RiskLevelSevere   RiskLevel = "Severe"
)

// RiskLevels returns every band from safest to most exposed. Distribution
// maps carry all of them, including zero-weight bands.
func RiskLevels() []RiskLevel {
	return []RiskLevel{RiskLevelLow, RiskLevelModerate, RiskLevelHigh, RiskLevelSevere}
}

// RiskThresholds holds the lower score bound of each band. Bands are
// evaluated high to low and partition [0,100] without overlap.
type RiskThresholds struct {
	Low      float64 `json:"low" yaml:"low" mapstructure:"low"`
	Moderate float64 `json:"moderate" yaml:"moderate" mapstructure:"moderate"`
	High     float64 `json:"high" yaml:"high" mapstructure:"high"`
}

// DefaultRiskThresholds returns the standard banding bounds.
func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{Low: 80, Moderate: 65, High: 50}
}

// Level maps a score to its risk band.
func (t RiskThresholds) Level(score float64) RiskLevel {
	switch {
	case score >= t.Low:
		return RiskLevelLow
	case score >= t.Moderate:
		return RiskLevelModerate
	case score >= t.High:
		return RiskLevelHigh
	default:
		return RiskLevelSevere
	}
}

// CreditRiskFactors are the six normalized sub-scores, each in [0,1].
type CreditRiskFactors struct {
	IndustryRisk      float64 `json:"industry_risk"`
	MarketPosition    float64 `json:"market_position"`
	FinancialStrength float64 `json:"financial_strength"`
	OperatingHistory  float64 `json:"operating_history"`
	PaymentHistory    float64 `json:"payment_history"`
	MarketConditions  float64 `json:"market_conditions"`
}

// CreditRiskWeights weight the six factors. A valid set sums to 1.0.
type CreditRiskWeights struct {
	IndustryRisk      float64 `json:"industry_risk" yaml:"industry_risk" mapstructure:"industry_risk"`
	MarketPosition    float64 `json:"market_position" yaml:"market_position" mapstructure:"market_position"`
	FinancialStrength float64 `json:"financial_strength" yaml:"financial_strength" mapstructure:"financial_strength"`
	OperatingHistory  float64 `json:"operating_history" yaml:"operating_history" mapstructure:"operating_history"`
	PaymentHistory    float64 `json:"payment_history" yaml:"payment_history" mapstructure:"payment_history"`
	MarketConditions  float64 `json:"market_conditions" yaml:"market_conditions" mapstructure:"market_conditions"`
}

// Sum returns the total of all six weights.
func (w CreditRiskWeights) Sum() float64 {
	return w.IndustryRisk + w.MarketPosition + w.FinancialStrength +
		w.OperatingHistory + w.PaymentHistory + w.MarketConditions
}

// CreditRiskCalculation is the full scoring result for one tenant.
type CreditRiskCalculation struct {
	TenantID        string            `json:"tenant_id"`
	Factors         CreditRiskFactors `json:"factors"`
	Weights         CreditRiskWeights `json:"weights"`
	BaseScore       float64           `json:"base_score"`
	AdjustedScore   float64           `json:"adjusted_score"`
	RiskLevel       RiskLevel         `json:"risk_level"`
	ConfidenceLevel float64           `json:"confidence_level"`
}

// MarketPosition classifies a lease's rent relative to market.
type MarketPosition string

const (
	MarketPositionAbove MarketPosition = "above_market"
	MarketPositionAt    MarketPosition = "at_market"
	MarketPositionBelow MarketPosition = "below_market"
)

// MarketComparison summarizes how a tenant's rent sits against market rents.
type MarketComparison struct {
	MarketRentDelta float64        `json:"market_rent_delta"`
	Position        MarketPosition `json:"position"`
}

// TenantRiskProfile joins a tenant's profile with all per-tenant scoring outputs.
type TenantRiskProfile struct {
	TenantProfile
	CreditRisk       CreditRiskCalculation `json:"credit_risk"`
	LeaseRisk        LeaseRisk             `json:"lease_risk"`
	Concentration    TenantConcentration   `json:"concentration"`
	MarketComparison MarketComparison      `json:"market_comparison"`
}

// PortfolioImpact summarizes how tenant mix shifts property-level risk.
type PortfolioImpact struct {
	DiversificationBenefit float64 `json:"diversification_benefit"`
	ConcentrationPenalty   float64 `json:"concentration_penalty"`
	NetRiskAdjustment      float64 `json:"net_risk_adjustment"`
}

// Recommendations holds rule-generated guidance grouped by category.
// Rules append independently; several categories may be populated at once.
type Recommendations struct {
	RiskMitigation   []string `json:"risk_mitigation,omitempty"`
	TenantRetention  []string `json:"tenant_retention,omitempty"`
	LeaseStructure   []string `json:"lease_structure,omitempty"`
	PortfolioBalance []string `json:"portfolio_balance,omitempty"`
}

// PropertyCreditAnalysis is the property-level aggregation of all tenant
// credit results for one property.
type PropertyCreditAnalysis struct {
	ID                         string                `json:"id"`
	PropertyID                 string                `json:"property_id"`
	OverallRiskScore           float64               `json:"overall_risk_score"`
	OverallRiskLevel           RiskLevel             `json:"overall_risk_level"`
	TenantRisks                []LeaseRisk           `json:"tenant_risks"`
	ConcentrationRisk          []TenantConcentration `json:"concentration_risk"`
	WeightedAverageLeaseLength float64               `json:"weighted_average_lease_length"`
	TotalDefaultRisk           float64               `json:"total_default_risk"`
	MarketVolatility           float64               `json:"market_volatility"`
	TenantProfiles             []TenantRiskProfile   `json:"tenant_profiles"`
	PortfolioImpact            PortfolioImpact       `json:"portfolio_impact"`
	MarketContext              MarketData            `json:"market_context"`
	Recommendations            Recommendations       `json:"recommendations"`
	CreatedAt                  time.Time             `json:"created_at"`
}
