package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/sells-group/cre-analytics/internal/metrics"
	"github.com/sells-group/cre-analytics/internal/model"
)

// defaultProbabilityBaseline is applied to every converted lease. Rent rolls
// carry no default history, so scoring starts every tenant at the same prior.
const defaultProbabilityBaseline = 0.02

const hoursPerYear = 24 * 365.25

// ScoringInputs bundles the three slices a credit analysis consumes.
type ScoringInputs struct {
	Tenants        []model.TenantProfile
	Leases         []model.LeaseRisk
	Concentrations []model.TenantConcentration
}

// Convert builds scoring inputs from an extracted rent roll. Only occupied
// units with a unit number are converted; vacant space contributes to
// occupancy but has no tenant to score. Lease term remaining is measured
// from asOf.
func Convert(roll *model.RentRoll, asOf time.Time) ScoringInputs {
	var inputs ScoringInputs
	if roll == nil {
		return inputs
	}

	var totalSF, totalRent float64
	for _, u := range roll.Units {
		if !convertible(u) {
			continue
		}
		totalSF += u.SquareFootage
		totalRent += u.MonthlyRent
	}

	for _, u := range roll.Units {
		if !convertible(u) {
			continue
		}

		tenantID := tenantIDFor(u.Unit)

		inputs.Tenants = append(inputs.Tenants, model.TenantProfile{
			ID:       tenantID,
			Name:     u.Tenant,
			Industry: model.IndustryOther,
		})

		inputs.Leases = append(inputs.Leases, model.LeaseRisk{
			ID:                 fmt.Sprintf("lease-%s", strings.ToLower(u.Unit)),
			TenantID:           tenantID,
			LeaseTermRemaining: yearsRemaining(u.EndDate, asOf),
			MonthlyRent:        u.MonthlyRent,
			RentPerSqFt:        metrics.RatioOrZero(u.MonthlyRent*12, u.SquareFootage),
			SecurityDeposit:    u.SecurityDeposit,
			DefaultProbability: defaultProbabilityBaseline,
		})

		inputs.Concentrations = append(inputs.Concentrations, model.TenantConcentration{
			TenantID:         tenantID,
			SquareFootage:    u.SquareFootage,
			PercentOfTotal:   metrics.RatioOrZero(u.SquareFootage, totalSF),
			AnnualRent:       u.MonthlyRent * 12,
			PercentOfRevenue: metrics.RatioOrZero(u.MonthlyRent, totalRent),
			IndustryExposure: model.IndustryOther,
		})
	}

	return inputs
}

func convertible(u model.RentRollUnit) bool {
	return u.Occupied && u.Unit != "" && u.Tenant != ""
}

func tenantIDFor(unit string) string {
	return fmt.Sprintf("tenant-%s", strings.ToLower(unit))
}

func yearsRemaining(end *time.Time, asOf time.Time) float64 {
	if end == nil {
		return 0
	}
	years := end.Sub(asOf).Hours() / hoursPerYear
	if years < 0 {
		return 0
	}
	return years
}
