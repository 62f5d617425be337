// Package risk builds a composite property risk analysis from named factor
// sets across four categories: market, tenant, location, and condition.
package risk

import (
	"github.com/sells-group/cre-analytics/internal/metrics"
	"github.com/sells-group/cre-analytics/internal/model"
)

// Fixed category weights for the overall score.
const (
	marketWeight    = 0.25
	tenantWeight    = 0.35
	locationWeight  = 0.20
	conditionWeight = 0.20
)

// Category scores below these floors trigger recommendations. Each floor is
// evaluated independently; any subset of rules can fire.
const (
	marketScoreFloor    = 65
	tenantScoreFloor    = 70
	locationScoreFloor  = 70
	conditionScoreFloor = 60
)

// Factors carries the named factor scores for each risk category, each on a
// 0-100 scale where higher is safer. A category's score is the unweighted
// mean of its factors; an empty category scores 0.
type Factors struct {
	Market            map[string]float64 `json:"market"`
	Tenant            map[string]float64 `json:"tenant"`
	Location          map[string]float64 `json:"location"`
	PropertyCondition map[string]float64 `json:"property_condition"`
}

// Generate computes category means, the weighted overall score, and the
// threshold-triggered recommendations for one property.
func Generate(f Factors) model.RiskAnalysis {
	cats := model.RiskCategoryScores{
		Market:            mean(f.Market),
		Tenant:            mean(f.Tenant),
		Location:          mean(f.Location),
		PropertyCondition: mean(f.PropertyCondition),
	}

	overall := cats.Market*marketWeight +
		cats.Tenant*tenantWeight +
		cats.Location*locationWeight +
		cats.PropertyCondition*conditionWeight

	return model.RiskAnalysis{
		Categories:      cats,
		OverallRisk:     metrics.Round2(overall),
		RiskLevel:       model.DefaultRiskThresholds().Level(overall),
		Recommendations: recommend(cats),
	}
}

func mean(factors map[string]float64) float64 {
	if len(factors) == 0 {
		return 0
	}
	var sum float64
	for _, v := range factors {
		sum += v
	}
	return sum / float64(len(factors))
}

func recommend(cats model.RiskCategoryScores) []string {
	var recs []string
	if cats.Market < marketScoreFloor {
		recs = append(recs, "Monitor market conditions closely and stress-test rent growth assumptions")
	}
	if cats.Tenant < tenantScoreFloor {
		recs = append(recs, "Strengthen tenant credit quality through screening and lease guarantees")
	}
	if cats.Location < locationScoreFloor {
		recs = append(recs, "Reassess submarket positioning and invest in site accessibility")
	}
	if cats.PropertyCondition < conditionScoreFloor {
		recs = append(recs, "Budget near-term capital expenditures for deferred maintenance")
	}
	return recs
}
