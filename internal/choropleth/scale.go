// Package choropleth classifies population density into a fixed palette and
// drives the hover/click behavior of the density map.
//
// The package has no transport of its own. Styles reach the browser through a
// [Surface], viewport changes through a [Viewport], and the info box through
// the update callback handed to [NewHandlers].
package choropleth

import "math"

// Color is a CSS color string.
type Color string

// Bucket is one density range of the scale. A density belongs to the first
// bucket (in [Buckets] order) whose Threshold it strictly exceeds.
type Bucket struct {
	Threshold float64 `json:"threshold" doc:"Lower bound, exclusive" example:"200"`
	Color     Color   `json:"color" doc:"Fill color (CSS)" example:"#E31A1C"`
}

// Buckets is checked from the highest threshold to the lowest.
var Buckets = []Bucket{
	{Threshold: 1000, Color: "#800026"},
	{Threshold: 500, Color: "#BD0026"},
	{Threshold: 200, Color: "#E31A1C"},
	{Threshold: 100, Color: "#FC4E2A"},
	{Threshold: 50, Color: "#FD8D3C"},
	{Threshold: 20, Color: "#FEB24C"},
	{Threshold: 10, Color: "#FED976"},
	{Threshold: 0, Color: "#FFEDA0"},
}

// Grades are the bucket thresholds in ascending order, as shown by the legend.
var Grades = []float64{0, 10, 20, 50, 100, 200, 500, 1000}

// BucketFor returns the bucket a density falls into. Zero, negative and NaN
// densities fall into the lowest bucket.
func BucketFor(density float64) Bucket {
	if math.IsNaN(density) {
		return Buckets[len(Buckets)-1]
	}
	for _, b := range Buckets {
		if density > b.Threshold {
			return b
		}
	}
	return Buckets[len(Buckets)-1]
}

// ColorFor returns the fill color for a density.
func ColorFor(density float64) Color {
	return BucketFor(density).Color
}
