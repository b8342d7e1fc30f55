package choropleth

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCollection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "06", "properties": {"name": "California", "density": 241.7},
     "geometry": {"type": "Polygon", "coordinates": [[[-124.4,32.5],[-114.1,32.5],[-114.1,42.0],[-124.4,42.0],[-124.4,32.5]]]}},
    {"type": "Feature", "properties": {"name": "Nowhere"},
     "geometry": {"type": "Point", "coordinates": [1, 2]}},
    {"type": "Feature", "id": 7, "properties": {"name": "Odd", "density": "lots"},
     "geometry": {"type": "Point", "coordinates": [3, 4]}},
    {"type": "Feature", "id": "neg", "properties": {"name": "Negative", "density": -3},
     "geometry": {"type": "Point", "coordinates": [5, 6]}}
  ]
}`

func TestParseFeatures(t *testing.T) {
	features, err := ParseFeatures([]byte(sampleCollection))
	require.NoError(t, err)
	require.Len(t, features, 4)

	ca := features[0]
	assert.Equal(t, "06", ca.ID)
	assert.Equal(t, "California", ca.Name)
	assert.Equal(t, 241.7, ca.Density)
	assert.Equal(t, orb.Bound{Min: orb.Point{-124.4, 32.5}, Max: orb.Point{-114.1, 42.0}}, ca.Bound())

	assert.Equal(t, "f1", features[1].ID, "missing id falls back to index")
	assert.Zero(t, features[1].Density)

	assert.Equal(t, "7", features[2].ID)
	assert.Zero(t, features[2].Density, "non-numeric density becomes 0")

	assert.Zero(t, features[3].Density, "negative density becomes 0")
}

func TestParseFeatures_errors(t *testing.T) {
	_, err := ParseFeatures([]byte(`{not json`))
	require.Error(t, err)

	_, err = ParseFeatures([]byte(`{"type":"FeatureCollection","features":[
	  {"type":"Feature","id":"a","properties":{},"geometry":{"type":"Point","coordinates":[0,0]}},
	  {"type":"Feature","id":"a","properties":{},"geometry":{"type":"Point","coordinates":[1,1]}}]}`))
	require.ErrorContains(t, err, "duplicate feature id")
}

func TestFeature_BoundWithoutGeometry(t *testing.T) {
	assert.Equal(t, orb.Bound{}, Feature{ID: "x"}.Bound())
}

func TestToGeoJSON(t *testing.T) {
	features, err := ParseFeatures([]byte(sampleCollection))
	require.NoError(t, err)

	data, err := json.Marshal(ToGeoJSON(features[:1]))
	require.NoError(t, err)

	back, err := ParseFeatures(data)
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, features[0].ID, back[0].ID)
	assert.Equal(t, features[0].Name, back[0].Name)
	assert.Equal(t, features[0].Density, back[0].Density)
}
