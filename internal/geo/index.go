package geo

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// Area is one market-area polygon with its Census identifiers.
type Area struct {
	Code string
	Name string
	LSAD string

	geometry *geom.MultiPolygon
	centroid geom.Coord
}

// Classification describes how a location relates to its market area: the
// containing area when one exists, otherwise the area with the nearest
// boundary.
type Classification struct {
	AreaCode   string    `json:"area_code"`
	AreaName   string    `json:"area_name"`
	IsWithin   bool      `json:"is_within"`
	CentroidKM float64   `json:"centroid_km"`
	EdgeKM     float64   `json:"edge_km"`
	Submarket  Submarket `json:"submarket"`
}

// Index holds market-area polygons for in-memory location classification.
type Index struct {
	areas []Area
}

// Len reports the number of loaded market areas.
func (idx *Index) Len() int {
	return len(idx.areas)
}

func (idx *Index) add(a Area, mp *geom.MultiPolygon) error {
	centroid, err := xy.Centroid(mp)
	if err != nil {
		return eris.Wrapf(err, "geo: centroid for area %s", a.Code)
	}
	a.geometry = mp
	a.centroid = centroid
	idx.areas = append(idx.areas, a)
	return nil
}

// Classify resolves the market area for a lat/lon point and buckets the
// location. A containing area always wins; otherwise the area with the
// nearest boundary is used.
func (idx *Index) Classify(lat, lon float64) (Classification, error) {
	if len(idx.areas) == 0 {
		return Classification{}, eris.New("geo: no market areas loaded")
	}

	point := geom.Coord{lon, lat}

	var nearest *Area
	nearestEdge := math.Inf(1)

	for i := range idx.areas {
		a := &idx.areas[i]
		edge := edgeDistanceKM(a.geometry, lat, lon)

		if containsPoint(a.geometry, point) {
			return idx.classification(a, true, lat, lon, edge), nil
		}
		if edge < nearestEdge {
			nearest = a
			nearestEdge = edge
		}
	}

	return idx.classification(nearest, false, lat, lon, nearestEdge), nil
}

func (idx *Index) classification(a *Area, within bool, lat, lon, edgeKM float64) Classification {
	centroidKM := HaversineKM(lat, lon, a.centroid[1], a.centroid[0])
	return Classification{
		AreaCode:   a.Code,
		AreaName:   a.Name,
		IsWithin:   within,
		CentroidKM: centroidKM,
		EdgeKM:     edgeKM,
		Submarket:  ClassifyDistances(within, centroidKM, edgeKM),
	}
}

// containsPoint tests containment against each polygon's exterior ring and
// rejects points falling in a hole.
func containsPoint(mp *geom.MultiPolygon, point geom.Coord) bool {
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		if poly.NumLinearRings() == 0 {
			continue
		}
		if !xy.IsPointInRing(geom.XY, point, poly.LinearRing(0).FlatCoords()) {
			continue
		}
		inHole := false
		for r := 1; r < poly.NumLinearRings(); r++ {
			if xy.IsPointInRing(geom.XY, point, poly.LinearRing(r).FlatCoords()) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}

// edgeDistanceKM returns the distance to the nearest ring segment across all
// polygons of the area.
func edgeDistanceKM(mp *geom.MultiPolygon, lat, lon float64) float64 {
	minKM := math.Inf(1)
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		for r := 0; r < poly.NumLinearRings(); r++ {
			if d := distanceToRingKM(lat, lon, poly.LinearRing(r).FlatCoords()); d < minKM {
				minKM = d
			}
		}
	}
	return minKM
}
