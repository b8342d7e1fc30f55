package choropleth

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Feature is one region of the map. Features are loaded once and never
// mutated; the geometry is handed to the browser as-is.
type Feature struct {
	ID       string
	Name     string
	Density  float64
	Geometry orb.Geometry
}

// Bound returns the extent of the feature's geometry, or an empty bound
// when the feature has none.
func (f Feature) Bound() orb.Bound {
	if f.Geometry == nil {
		return orb.Bound{}
	}
	return f.Geometry.Bound()
}

// FeatureFromGeoJSON converts a GeoJSON feature. The id falls back to
// fallbackID when the feature carries none. A missing, non-numeric or
// negative density becomes 0.
func FeatureFromGeoJSON(gf *geojson.Feature, fallbackID string) Feature {
	id := fallbackID
	if gf.ID != nil {
		id = fmt.Sprint(gf.ID)
	}

	density := gf.Properties.MustFloat64("density", 0)
	if math.IsNaN(density) || math.IsInf(density, 0) || density < 0 {
		density = 0
	}

	return Feature{
		ID:       id,
		Name:     gf.Properties.MustString("name", ""),
		Density:  density,
		Geometry: gf.Geometry,
	}
}

// ParseFeatures decodes a GeoJSON FeatureCollection into features, keeping
// the collection order.
func ParseFeatures(data []byte) ([]Feature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing geojson: %w", err)
	}

	features := make([]Feature, 0, len(fc.Features))
	seen := make(map[string]bool, len(fc.Features))
	for i, gf := range fc.Features {
		f := FeatureFromGeoJSON(gf, fmt.Sprintf("f%d", i))
		if seen[f.ID] {
			return nil, fmt.Errorf("duplicate feature id %q", f.ID)
		}
		seen[f.ID] = true
		features = append(features, f)
	}
	return features, nil
}

// ToGeoJSON builds a FeatureCollection for the browser. Only the id, name and
// density properties are emitted.
func ToGeoJSON(features []Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		gf := geojson.NewFeature(f.Geometry)
		gf.ID = f.ID
		gf.Properties["name"] = f.Name
		gf.Properties["density"] = f.Density
		fc.Append(gf)
	}
	return fc
}
