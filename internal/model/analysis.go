package model

import "time"

// FinancialMetrics are the derived investment metrics for one property.
// IRR is a fixed placeholder pending a real cash-flow projection model.
type FinancialMetrics struct {
	NOI                   float64 `json:"noi"`
	CapRate               float64 `json:"cap_rate"`
	IRR                   float64 `json:"irr"`
	CashOnCash            float64 `json:"cash_on_cash"`
	DebtServiceCoverage   float64 `json:"debt_service_coverage"`
	LoanToValue           float64 `json:"loan_to_value"`
	OperatingExpenseRatio float64 `json:"operating_expense_ratio"`
	BreakEvenOccupancy    float64 `json:"break_even_occupancy"`
	PricePerSqFt          float64 `json:"price_per_sqft,omitempty"`
	NOIPerSqFt            float64 `json:"noi_per_sqft,omitempty"`
	EquityRequired        float64 `json:"equity_required,omitempty"`
	OperatingMargin       float64 `json:"operating_margin,omitempty"`
	DebtYield             float64 `json:"debt_yield,omitempty"`
}

// RiskCategoryScores holds the four composite risk category scores, each the
// arithmetic mean of its factor set, on a 0-100 scale where higher is safer.
type RiskCategoryScores struct {
	Market            float64 `json:"market"`
	Tenant            float64 `json:"tenant"`
	Location          float64 `json:"location"`
	PropertyCondition float64 `json:"property_condition"`
}

// RiskAnalysis is the composite risk result for one property.
type RiskAnalysis struct {
	Categories      RiskCategoryScores `json:"categories"`
	OverallRisk     float64            `json:"overall_risk"`
	RiskLevel       RiskLevel          `json:"risk_level"`
	Recommendations []string           `json:"recommendations,omitempty"`
}

// PropertySnapshot is the per-property input to portfolio aggregation.
// Full records are not carried; portfolio analysis references properties by ID.
type PropertySnapshot struct {
	PropertyID    string       `json:"property_id"`
	PropertyType  PropertyType `json:"property_type"`
	RiskProfile   RiskLevel    `json:"risk_profile"`
	Value         float64      `json:"value"`
	CapRate       float64      `json:"cap_rate"`
	OccupancyRate float64      `json:"occupancy_rate"`
}

// PortfolioAnalysis aggregates metrics over a set of properties.
// CorrelationMatrix is a placeholder heuristic pending historical return data.
type PortfolioAnalysis struct {
	TotalValue               float64                  `json:"total_value"`
	WeightedCapRate          float64                  `json:"weighted_cap_rate"`
	AverageOccupancy         float64                  `json:"average_occupancy"`
	DiversificationScore     float64                  `json:"diversification_score"`
	RiskDistribution         map[RiskLevel]float64    `json:"risk_distribution"`
	PropertyTypeDistribution map[PropertyType]float64 `json:"property_type_distribution"`
	CorrelationMatrix        [][]float64              `json:"correlation_matrix"`
	PropertyIDs              []string                 `json:"property_ids"`
}

// InsightReport is the structured output of AI-generated property insights.
type InsightReport struct {
	Strengths       []string `json:"strengths,omitempty"`
	Weaknesses      []string `json:"weaknesses,omitempty"`
	MarketPosition  string   `json:"market_position,omitempty"`
	RiskFactors     []string `json:"risk_factors,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	Model           string   `json:"model,omitempty"`
}

// AnalysisStatus represents an analysis record's lifecycle state.
type AnalysisStatus string

const (
	AnalysisStatusPending  AnalysisStatus = "pending"
	AnalysisStatusComplete AnalysisStatus = "complete"
	AnalysisStatusFailed   AnalysisStatus = "failed"
)

// AnalysisRecord is the persisted wrapper around one analysis run for a
// property. Sections are optional; an analysis may cover any subset.
type AnalysisRecord struct {
	ID         string                  `json:"id"`
	PropertyID string                  `json:"property_id"`
	Status     AnalysisStatus          `json:"status"`
	Credit     *PropertyCreditAnalysis `json:"credit,omitempty"`
	Metrics    *FinancialMetrics       `json:"metrics,omitempty"`
	Risk       *RiskAnalysis           `json:"risk,omitempty"`
	Insights   *InsightReport          `json:"insights,omitempty"`
	Error      string                  `json:"error,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}
