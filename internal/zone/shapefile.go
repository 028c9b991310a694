package zone

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// Default DBF column names per category. FEMA NFHL flood layers and Census
// tract-based opportunity layers both ship these.
var defaultFields = map[Kind]map[string]string{
	KindFlood: {
		"zone_code":  "FLD_ZONE",
		"flood_type": "ZONE_SUBTY",
		"source_id":  "FLD_AR_ID",
	},
	KindOpportunity: {
		"geoid":      "GEOID",
		"tract_name": "NAME",
		"state_fips": "STATEFP",
	},
}

// ShapefileOptions configures shapefile parsing for one overlay category.
type ShapefileOptions struct {
	// Fields maps attribute keys to DBF column names; zero values fall back
	// to the category defaults.
	Fields map[string]string
	// Source labels the provenance recorded on every feature.
	Source string
}

// LoadShapefile reads a polygon shapefile and returns the features for the
// given category. Records without usable polygon geometry are skipped, not
// errors. DBF attribute strings are decoded from Latin-1.
func LoadShapefile(path string, kind Kind, opts ShapefileOptions) ([]Feature, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "zone: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToUpper(name)] = i
	}

	defaults, ok := defaultFields[kind]
	if !ok {
		return nil, eris.Errorf("zone: unknown kind %q", kind)
	}
	columns := make(map[string]string, len(defaults))
	for k, v := range defaults {
		columns[k] = v
	}
	for k, v := range opts.Fields {
		if v != "" {
			columns[k] = v
		}
	}

	attr := func(key string) string {
		col, ok := columns[key]
		if !ok {
			return ""
		}
		idx, ok := fieldIdx[strings.ToUpper(col)]
		if !ok {
			return ""
		}
		raw := strings.TrimRight(reader.Attribute(idx), "\x00")
		decoded, decErr := charmap.ISO8859_1.NewDecoder().String(raw)
		if decErr != nil {
			decoded = raw
		}
		return strings.TrimSpace(decoded)
	}

	var features []Feature
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		geometry := polygonToMultiPolygon(poly)
		if geometry == nil {
			skipped++
			continue
		}

		switch kind {
		case KindFlood:
			features = append(features, NewFloodFeature(FloodAttrs{
				ZoneCode:  attr("zone_code"),
				FloodType: attr("flood_type"),
				Source:    opts.Source,
				SourceID:  attr("source_id"),
			}, geometry))
		case KindOpportunity:
			features = append(features, NewOpportunityFeature(OpportunityAttrs{
				GEOID:     attr("geoid"),
				TractName: attr("tract_name"),
				StateFIPS: attr("state_fips"),
				Source:    opts.Source,
			}, geometry))
		}
	}

	if skipped > 0 {
		zap.L().Debug("zone: skipped shapefile records",
			zap.String("path", path),
			zap.String("kind", string(kind)),
			zap.Int("skipped", skipped),
		)
	}

	return features, nil
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
// Each part becomes its own single-ring polygon.
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
			zap.L().Debug("zone: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("zone: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
