// Package portfolio aggregates per-property snapshots into portfolio-level
// metrics: value-weighted cap rate, Shannon-based diversification, category
// distributions, and a placeholder correlation matrix.
package portfolio

import (
	"github.com/sells-group/cre-analytics/internal/metrics"
	"github.com/sells-group/cre-analytics/internal/model"
)

// Correlation placeholders pending historical return series: identical
// property types are assumed to co-move more than mixed types.
const (
	sameTypeCorrelation  = 0.7
	crossTypeCorrelation = 0.3
)

// Analyze rolls a set of property snapshots up into one PortfolioAnalysis.
// The set must be non-empty and carry positive total value, since every
// weighted metric uses value share as its basis.
func Analyze(props []model.PropertySnapshot) (*model.PortfolioAnalysis, error) {
	if len(props) == 0 {
		return nil, model.NewValidationError("Cannot calculate portfolio analysis with empty data")
	}

	var totalValue float64
	for i := range props {
		totalValue += props[i].Value
	}
	if totalValue <= 0 {
		return nil, model.NewDivisionError("cannot value-weight portfolio metrics: total property value is zero")
	}

	var capRate, occupancy float64
	typeCounts := make(map[model.PropertyType]int)
	riskCounts := make(map[model.RiskLevel]int)
	typeValue := make(map[model.PropertyType]float64)
	riskValue := make(map[model.RiskLevel]float64)
	ids := make([]string, len(props))

	for i := range props {
		p := &props[i]
		capRate += p.CapRate * (p.Value / totalValue)
		occupancy += p.OccupancyRate
		typeCounts[p.PropertyType]++
		riskCounts[p.RiskProfile]++
		typeValue[p.PropertyType] += p.Value
		riskValue[p.RiskProfile] += p.Value
		ids[i] = p.PropertyID
	}
	occupancy /= float64(len(props))

	diversification := (metrics.ShannonDiversity(typeCountSlice(typeCounts)) +
		metrics.ShannonDiversity(riskCountSlice(riskCounts))) / 2

	return &model.PortfolioAnalysis{
		TotalValue:               totalValue,
		WeightedCapRate:          metrics.Round2(capRate),
		AverageOccupancy:         metrics.Round2(occupancy),
		DiversificationScore:     metrics.Round2(diversification),
		RiskDistribution:         riskDistribution(riskValue, totalValue),
		PropertyTypeDistribution: typeDistribution(typeValue, totalValue),
		CorrelationMatrix:        correlationMatrix(props),
		PropertyIDs:              ids,
	}, nil
}

// typeDistribution returns each property type's value share as a percentage.
// Every type appears, zero-weight ones included.
func typeDistribution(value map[model.PropertyType]float64, total float64) map[model.PropertyType]float64 {
	dist := make(map[model.PropertyType]float64, len(model.PropertyTypes()))
	for _, pt := range model.PropertyTypes() {
		dist[pt] = metrics.Round2(value[pt] / total * 100)
	}
	return dist
}

// riskDistribution returns each risk band's value share as a percentage.
// Every band appears, zero-weight ones included.
func riskDistribution(value map[model.RiskLevel]float64, total float64) map[model.RiskLevel]float64 {
	dist := make(map[model.RiskLevel]float64, len(model.RiskLevels()))
	for _, rl := range model.RiskLevels() {
		dist[rl] = metrics.Round2(value[rl] / total * 100)
	}
	return dist
}

func typeCountSlice(counts map[model.PropertyType]int) []int {
	out := make([]int, 0, len(model.PropertyTypes()))
	for _, pt := range model.PropertyTypes() {
		out = append(out, counts[pt])
	}
	return out
}

func riskCountSlice(counts map[model.RiskLevel]int) []int {
	out := make([]int, 0, len(model.RiskLevels()))
	for _, rl := range model.RiskLevels() {
		out = append(out, counts[rl])
	}
	return out
}

// correlationMatrix builds the placeholder pairwise matrix aligned with the
// input (and PropertyIDs) order: 1 on the diagonal, 0.7 for same-type pairs,
// 0.3 otherwise.
func correlationMatrix(props []model.PropertySnapshot) [][]float64 {
	matrix := make([][]float64, len(props))
	for i := range props {
		row := make([]float64, len(props))
		for j := range props {
			switch {
			case i == j:
				row[j] = 1
			case props[i].PropertyType == props[j].PropertyType:
				row[j] = sameTypeCorrelation
			default:
				row[j] = crossTypeCorrelation
			}
		}
		matrix[i] = row
	}
	return matrix
}
