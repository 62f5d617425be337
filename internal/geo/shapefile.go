package geo

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// Census CBSA attribute fields carrying the area identity.
const (
	fieldCode = "CBSAFP"
	fieldName = "NAME"
	fieldLSAD = "LSAD"
)

// LoadShapefile reads a Census market-area shapefile into an Index. Records
// without a code or without a usable polygon are skipped.
func LoadShapefile(path string) (*Index, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	codeIdx := fieldIndex(reader, fieldCode)
	nameIdx := fieldIndex(reader, fieldName)
	lsadIdx := fieldIndex(reader, fieldLSAD)
	if codeIdx < 0 || nameIdx < 0 || lsadIdx < 0 {
		return nil, eris.Errorf("geo: required shapefile fields (%s, %s, %s) not found",
			fieldCode, fieldName, fieldLSAD)
	}

	idx := &Index{}
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		code := attribute(reader, codeIdx)
		if code == "" {
			skipped++
			continue
		}

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		mp := polygonToMultiPolygon(poly)
		if mp == nil {
			skipped++
			continue
		}

		area := Area{
			Code: code,
			Name: attribute(reader, nameIdx),
			LSAD: attribute(reader, lsadIdx),
		}
		if err := idx.add(area, mp); err != nil {
			zap.L().Debug("geo: skipping area", zap.String("code", code), zap.Error(err))
			skipped++
		}
	}

	if skipped > 0 {
		zap.L().Debug("geo: skipped shapefile records", zap.Int("skipped", skipped))
	}
	if idx.Len() == 0 {
		return nil, eris.Errorf("geo: no market areas loaded from %s", path)
	}

	zap.L().Info("geo: market areas loaded",
		zap.Int("areas", idx.Len()),
		zap.String("path", path),
	)
	return idx, nil
}

// attribute reads a DBF attribute with the NUL padding and whitespace
// stripped.
func attribute(reader *shp.Reader, idx int) string {
	return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
}

// fieldIndex returns the index of a named DBF field, or -1 when absent.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// polygonToMultiPolygon converts a shapefile polygon record, treating each
// part as its own single-ring polygon. Market-area boundaries carry no holes,
// so ring orientation is not inspected.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("geo: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("geo: skipping malformed part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
