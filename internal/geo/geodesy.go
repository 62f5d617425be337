package geo

import (
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

const earthRadiusKM = 6371.0

const kmPerDegree = earthRadiusKM * math.Pi / 180

// HaversineKM returns the great-circle distance in kilometers between two
// lat/lon points.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}

// distanceToRingKM returns the distance in kilometers from a lat/lon point to
// the nearest segment of a ring holding lon/lat coordinate pairs. The ring is
// projected onto a tangent plane centered on the point, which holds up at
// market-area scales but degrades across continental distances.
func distanceToRingKM(lat, lon float64, ring []float64) float64 {
	if len(ring) < 4 {
		return math.Inf(1)
	}

	cosLat := math.Cos(lat * math.Pi / 180)
	projected := make([]float64, len(ring))
	for i := 0; i+1 < len(ring); i += 2 {
		projected[i] = (ring[i] - lon) * cosLat * kmPerDegree
		projected[i+1] = (ring[i+1] - lat) * kmPerDegree
	}

	return xy.DistanceFromPointToLineString(geom.XY, geom.Coord{0, 0}, projected)
}
