// Package geo classifies property locations against Census market-area
// polygons: shapefile loading, point-in-polygon containment, centroid and
// boundary distances, and the urban-to-rural submarket classification that
// feeds location risk factors and market benchmarks.
package geo

// Submarket is the urban classification of a property location.
type Submarket string

const (
	SubmarketUrbanCore Submarket = "urban_core"
	SubmarketSuburban  Submarket = "suburban"
	SubmarketExurban   Submarket = "exurban"
	SubmarketRural     Submarket = "rural"
)

// Distance thresholds for classification (kilometers).
const (
	urbanCoreCentroidKM = 8.0  // within area AND centroid distance <= 8km
	exurbanEdgeKM       = 40.0 // outside area AND boundary distance <= 40km
)

// ClassifyDistances buckets a location by its relationship to a market area:
//   - urban_core: within the area AND centroid distance <= 8km
//   - suburban: within the area, farther from the centroid
//   - exurban: outside the area AND boundary distance <= 40km
//   - rural: outside the area, beyond 40km from the boundary
func ClassifyDistances(isWithin bool, centroidKM, edgeKM float64) Submarket {
	if isWithin {
		if centroidKM <= urbanCoreCentroidKM {
			return SubmarketUrbanCore
		}
		return SubmarketSuburban
	}
	if edgeKM <= exurbanEdgeKM {
		return SubmarketExurban
	}
	return SubmarketRural
}

// submarketStrength maps each classification to a market-strength score on
// the 0-100 risk factor scale, higher meaning a stronger location.
var submarketStrength = map[Submarket]float64{
	SubmarketUrbanCore: 85,
	SubmarketSuburban:  75,
	SubmarketExurban:   60,
	SubmarketRural:     50,
}

// Strength returns the market-strength location factor for the submarket.
// Unrecognized values score as rural.
func (s Submarket) Strength() float64 {
	if v, ok := submarketStrength[s]; ok {
		return v
	}
	return submarketStrength[SubmarketRural]
}
