package zone

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// ToGeoJSON encodes a slice of features as a GeoJSON FeatureCollection.
func ToGeoJSON(features []Feature) ([]byte, error) {
	fc := geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(features))}

	for _, f := range features {
		props := map[string]any{"kind": string(f.Kind)}
		switch f.Kind {
		case KindFlood:
			if f.Flood != nil {
				props["zone_code"] = f.Flood.ZoneCode
				props["flood_type"] = f.Flood.FloodType
				props["source"] = f.Flood.Source
				props["source_id"] = f.Flood.SourceID
			}
		case KindOpportunity:
			if f.Opportunity != nil {
				props["geoid"] = f.Opportunity.GEOID
				props["tract_name"] = f.Opportunity.TractName
				props["state_fips"] = f.Opportunity.StateFIPS
				props["designation"] = f.Opportunity.Designation
				props["source"] = f.Opportunity.Source
			}
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   f.Geometry,
			Properties: props,
		})
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "zone: encode geojson")
	}
	return data, nil
}
