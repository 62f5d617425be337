// Package analysis rolls per-tenant credit scores up into property-level
// credit analyses: rent-weighted lease metrics, concentration penalties, and
// rule-based recommendations.
package analysis

import (
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/cre-analytics/internal/model"
	"github.com/sells-group/cre-analytics/internal/scorer"
)

const (
	// marketVolatilityPlaceholder stands in until a historical volatility
	// series is wired up.
	marketVolatilityPlaceholder = 0.15

	diversificationBenefitCap = 10

	// Concentration penalty tiers, keyed off the largest single-tenant
	// revenue share.
	heavyConcentrationShare      = 0.3
	heavyConcentrationPenalty    = 15
	elevatedConcentrationShare   = 0.2
	elevatedConcentrationPenalty = 10
	baselineConcentrationPenalty = 5

	// Recommendation rule bounds.
	anchorTenantShare      = 0.1
	shortAverageLeaseYears = 3
	industryExposureLimit  = 0.3
)

// Aggregator combines per-tenant credit scores into a property-level
// PropertyCreditAnalysis.
type Aggregator struct {
	scorer *scorer.Scorer
}

// NewAggregator creates an Aggregator backed by the given tenant scorer.
func NewAggregator(s *scorer.Scorer) *Aggregator {
	return &Aggregator{scorer: s}
}

// Aggregate scores every tenant and rolls the results up for one property.
// Tenants, leases, and concentrations must all be non-empty, every tenant
// needs a matching lease and concentration record, and every lease and
// concentration must reference a supplied tenant. At least one lease must
// carry positive rent so the rent-weighted metrics have a basis.
func (a *Aggregator) Aggregate(propertyID string, tenants []model.TenantProfile, leases []model.LeaseRisk, concs []model.TenantConcentration, market model.MarketData) (*model.PropertyCreditAnalysis, error) {
	if len(tenants) == 0 || len(leases) == 0 || len(concs) == 0 {
		return nil, model.NewValidationError("Cannot calculate credit analysis with empty data")
	}

	leaseByTenant := make(map[string]model.LeaseRisk, len(leases))
	for _, l := range leases {
		leaseByTenant[l.TenantID] = l
	}
	concByTenant := make(map[string]model.TenantConcentration, len(concs))
	for _, c := range concs {
		concByTenant[c.TenantID] = c
	}

	known := make(map[string]bool, len(tenants))
	for i := range tenants {
		known[tenants[i].ID] = true
	}
	for _, l := range leases {
		if !known[l.TenantID] {
			return nil, model.NewValidationError("Lease risk references unknown tenant %s", l.TenantID)
		}
	}
	for _, c := range concs {
		if !known[c.TenantID] {
			return nil, model.NewValidationError("Concentration record references unknown tenant %s", c.TenantID)
		}
	}

	calcByTenant := make(map[string]model.CreditRiskCalculation, len(tenants))
	profiles := make([]model.TenantRiskProfile, 0, len(tenants))
	for _, tenant := range tenants {
		lease, okLease := leaseByTenant[tenant.ID]
		conc, okConc := concByTenant[tenant.ID]
		if !okLease || !okConc {
			return nil, model.NewValidationError("Missing lease risk or concentration data for tenant %s", tenant.ID)
		}

		calc := a.scorer.Score(tenant, lease, conc, market.SnapshotFor(tenant.Industry))
		calcByTenant[tenant.ID] = calc
		lease.CreditRiskLevel = calc.RiskLevel

		profiles = append(profiles, model.TenantRiskProfile{
			TenantProfile:    tenant,
			CreditRisk:       calc,
			LeaseRisk:        lease,
			Concentration:    conc,
			MarketComparison: scorer.CompareMarket(lease),
		})
	}

	var totalRent float64
	for _, l := range leases {
		totalRent += l.MonthlyRent
	}
	if totalRent <= 0 {
		return nil, model.NewDivisionError("cannot rent-weight lease metrics for property %s: total monthly rent is zero", propertyID)
	}

	// Rent-weighted lease length and default risk across all leases.
	var leaseLength, defaultRisk float64
	scoredLeases := make([]model.LeaseRisk, 0, len(leases))
	for _, l := range leases {
		leaseLength += l.LeaseTermRemaining * l.MonthlyRent
		defaultRisk += l.DefaultProbability * l.MonthlyRent
		l.CreditRiskLevel = calcByTenant[l.TenantID].RiskLevel
		scoredLeases = append(scoredLeases, l)
	}
	leaseLength /= totalRent
	defaultRisk /= totalRent

	// Revenue-weighted overall score: each tenant contributes its adjusted
	// score scaled by its share of property revenue.
	var overall float64
	for i := range profiles {
		overall += profiles[i].CreditRisk.AdjustedScore * profiles[i].Concentration.PercentOfRevenue
	}
	level := a.scorer.Config().Thresholds.Level(overall)

	result := &model.PropertyCreditAnalysis{
		ID:                         uuid.NewString(),
		PropertyID:                 propertyID,
		OverallRiskScore:           overall,
		OverallRiskLevel:           level,
		TenantRisks:                scoredLeases,
		ConcentrationRisk:          concs,
		WeightedAverageLeaseLength: leaseLength,
		TotalDefaultRisk:           defaultRisk,
		MarketVolatility:           marketVolatilityPlaceholder,
		TenantProfiles:             profiles,
		PortfolioImpact:            portfolioImpact(len(tenants), concs),
		MarketContext:              market,
		Recommendations:            recommend(level, leaseLength, profiles),
		CreatedAt:                  time.Now().UTC(),
	}

	zap.L().Info("analysis: property credit analysis complete",
		zap.String("property_id", propertyID),
		zap.Int("tenants", len(profiles)),
		zap.Float64("overall_score", overall),
		zap.String("risk_level", string(level)),
	)

	return result, nil
}

// portfolioImpact nets the diversification benefit of tenant count against
// the penalty for the largest single-tenant revenue share.
func portfolioImpact(tenantCount int, concs []model.TenantConcentration) model.PortfolioImpact {
	benefit := math.Min(diversificationBenefitCap, float64(tenantCount))

	var maxShare float64
	for _, c := range concs {
		if c.PercentOfRevenue > maxShare {
			maxShare = c.PercentOfRevenue
		}
	}

	var penalty float64
	switch {
	case maxShare > heavyConcentrationShare:
		penalty = heavyConcentrationPenalty
	case maxShare > elevatedConcentrationShare:
		penalty = elevatedConcentrationPenalty
	default:
		penalty = baselineConcentrationPenalty
	}

	return model.PortfolioImpact{
		DiversificationBenefit: benefit,
		ConcentrationPenalty:   penalty,
		NetRiskAdjustment:      benefit - penalty,
	}
}

// recommend evaluates the four recommendation rules. Rules are independent;
// any subset can fire on the same analysis.
func recommend(level model.RiskLevel, avgLeaseYears float64, profiles []model.TenantRiskProfile) model.Recommendations {
	var recs model.Recommendations

	if level == model.RiskLevelHigh || level == model.RiskLevelSevere {
		recs.RiskMitigation = append(recs.RiskMitigation,
			"Require additional security deposits from higher-risk tenants",
			"Schedule more frequent financial monitoring of tenant performance",
		)
	}

	for i := range profiles {
		p := &profiles[i]
		if p.CreditRisk.RiskLevel == model.RiskLevelLow && p.Concentration.PercentOfRevenue > anchorTenantShare {
			recs.TenantRetention = append(recs.TenantRetention,
				"Prioritize retention strategies for low-risk anchor tenants",
				"Offer early renewal terms to strong-credit tenants ahead of expiry",
			)
			break
		}
	}

	if avgLeaseYears < shortAverageLeaseYears {
		recs.LeaseStructure = append(recs.LeaseStructure,
			"Negotiate lease extensions to lengthen the weighted average lease term",
			"Offer improvement incentives in exchange for longer lease commitments",
		)
	}

	exposure := make(map[model.Industry]float64, len(profiles))
	for i := range profiles {
		exposure[profiles[i].Industry] += profiles[i].Concentration.PercentOfRevenue
	}
	for _, share := range exposure {
		if share > industryExposureLimit {
			recs.PortfolioBalance = append(recs.PortfolioBalance,
				"Diversify the tenant mix to reduce concentrated industry exposure",
				"Target prospective tenants outside the dominant industries",
			)
			break
		}
	}

	return recs
}
