// Package service contains the dataset and map session services behind the
// HTTP handlers.
package service

import "github.com/joeblew999/plat-choropleth/internal/choropleth"

// FeatureSummary is the API view of a feature: everything but the geometry.
type FeatureSummary struct {
	ID      string           `json:"id" doc:"Feature identifier" example:"06"`
	Name    string           `json:"name" doc:"Region name" example:"California"`
	Density float64          `json:"density" minimum:"0" doc:"People per square mile" example:"241.7"`
	Color   choropleth.Color `json:"color" doc:"Fill color (CSS)" example:"#E31A1C"`
	Bucket  float64          `json:"bucket" doc:"Lower bound of the density bucket" example:"200"`
	Bound   [4]float64       `json:"bound" doc:"Geometry extent as [west, south, east, north]"`
}

// Summarize builds the API view of f.
func Summarize(f choropleth.Feature) FeatureSummary {
	b := f.Bound()
	bucket := choropleth.BucketFor(f.Density)
	return FeatureSummary{
		ID:      f.ID,
		Name:    f.Name,
		Density: f.Density,
		Color:   bucket.Color,
		Bucket:  bucket.Threshold,
		Bound:   [4]float64{b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat()},
	}
}
