package scorer

import (
	"math"

	"github.com/sells-group/cre-analytics/internal/metrics"
	"github.com/sells-group/cre-analytics/internal/model"
)

// Scorer computes tenant credit risk calculations from an injected Config.
// A Scorer is stateless beyond its config and safe for concurrent use.
type Scorer struct {
	cfg Config
}

// New creates a Scorer after validating the config.
func New(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// Config returns the scoring tables in use.
func (s *Scorer) Config() Config {
	return s.cfg
}

// Score computes the full credit risk calculation for one tenant. Inputs are
// taken as given: missing optional fields fall back to documented defaults
// and no errors are raised here.
func (s *Scorer) Score(tenant model.TenantProfile, lease model.LeaseRisk, conc model.TenantConcentration, market model.MarketSnapshot) model.CreditRiskCalculation {
	factors := model.CreditRiskFactors{
		IndustryRisk:      s.industryRisk(tenant.Industry),
		MarketPosition:    marketPositionScore(tenant),
		FinancialStrength: financialStrengthScore(tenant.CreditScore),
		OperatingHistory:  operatingHistoryScore(tenant.YearsInBusiness),
		PaymentHistory:    paymentHistoryPlaceholder,
		MarketConditions:  marketConditionsScore(market),
	}

	base := baseScore(factors, s.cfg.Weights)

	adjustment := leaseTermAdjustment(lease) + concentrationAdjustment(conc) + marketAdjustment(lease)
	adjusted := metrics.Round2(metrics.Clamp(base+adjustment, 0, 100))

	return model.CreditRiskCalculation{
		TenantID:        tenant.ID,
		Factors:         factors,
		Weights:         s.cfg.Weights,
		BaseScore:       metrics.Round2(base),
		AdjustedScore:   adjusted,
		RiskLevel:       s.cfg.Thresholds.Level(adjusted),
		ConfidenceLevel: confidencePlaceholder,
	}
}

// industryRisk looks up the industry's risk factor, falling back to Other
// for industries outside the table.
func (s *Scorer) industryRisk(ind model.Industry) float64 {
	if f, ok := s.cfg.IndustryRisk[ind]; ok {
		return f
	}
	return s.cfg.IndustryRisk[model.IndustryOther]
}

// marketPositionScore blends revenue scale, public listing, and tenure.
// Missing revenue counts as zero. Soft-capped below 1 to keep adjustment
// headroom.
func marketPositionScore(t model.TenantProfile) float64 {
	var revenue float64
	if t.AnnualRevenue != nil {
		revenue = *t.AnnualRevenue
	}

	score := revenue / revenueScaleDollars * revenueWeight
	if t.PublicCompany {
		score += publicCompanyBonus
	}
	score += math.Min(t.YearsInBusiness/tenureScaleYears, 1) * tenureWeight

	return math.Min(marketPositionCap, score)
}

// financialStrengthScore maps a credit score onto [0,1]. A missing score
// falls back to 600 rather than failing.
func financialStrengthScore(creditScore *float64) float64 {
	cs := creditScoreFallback
	if creditScore != nil {
		cs = *creditScore
	}
	return metrics.Clamp((cs-creditScoreFloor)/creditScoreRange, 0, 1)
}

func operatingHistoryScore(years float64) float64 {
	return math.Min(operatingHistoryCap, years/historyScaleYears)
}

func marketConditionsScore(m model.MarketSnapshot) float64 {
	return m.IndustryGrowth*industryGrowthWeight +
		(1-m.VacancyRate)*occupancyWeight +
		m.EconomicIndex*economicIndexWeight
}

// baseScore is the weighted factor blend scaled to 0-100.
func baseScore(f model.CreditRiskFactors, w model.CreditRiskWeights) float64 {
	total, _ := metrics.WeightedAverage(
		[]float64{f.IndustryRisk, f.MarketPosition, f.FinancialStrength, f.OperatingHistory, f.PaymentHistory, f.MarketConditions},
		[]float64{w.IndustryRisk, w.MarketPosition, w.FinancialStrength, w.OperatingHistory, w.PaymentHistory, w.MarketConditions},
	)
	return total * 100
}

// leaseTermAdjustment rewards long remaining terms and penalizes leases
// inside their final year.
func leaseTermAdjustment(l model.LeaseRisk) float64 {
	switch {
	case l.LeaseTermRemaining > longLeaseYears:
		return longLeaseBonus
	case l.LeaseTermRemaining < shortLeaseYears:
		return shortLeasePenalty
	default:
		return 0
	}
}

// concentrationAdjustment penalizes tenants carrying an outsized share of
// property revenue.
func concentrationAdjustment(c model.TenantConcentration) float64 {
	switch {
	case c.PercentOfRevenue > heavyConcentrationShare:
		return heavyConcentrationPenalty
	case c.PercentOfRevenue > elevatedConcentrationShare:
		return elevatedConcentrationPenalty
	default:
		return 0
	}
}

// marketAdjustment penalizes rents well above market and rewards rents
// below it.
func marketAdjustment(l model.LeaseRisk) float64 {
	switch {
	case l.MarketRentDelta > overMarketDelta:
		return overMarketPenalty
	case l.MarketRentDelta < underMarketDelta:
		return underMarketBonus
	default:
		return 0
	}
}

// CompareMarket classifies a lease's rent position against market rents.
func CompareMarket(l model.LeaseRisk) model.MarketComparison {
	pos := model.MarketPositionAt
	switch {
	case l.MarketRentDelta > atMarketBand:
		pos = model.MarketPositionAbove
	case l.MarketRentDelta < -atMarketBand:
		pos = model.MarketPositionBelow
	}
	return model.MarketComparison{MarketRentDelta: l.MarketRentDelta, Position: pos}
}
