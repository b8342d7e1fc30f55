package service

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joeblew999/plat-choropleth/internal/choropleth"
)

// bundledStates is a coarse US states dataset: real densities, geometry
// reduced to each state's extent. Point --dataset at a full GeoJSON file for
// real outlines.
//
//go:embed data/us-states.geojson
var bundledStates []byte

// BundledSource names the embedded dataset.
const BundledSource = "bundled:us-states.geojson"

// DatasetService holds the static feature collection loaded at startup.
type DatasetService struct {
	source   string
	features []choropleth.Feature
	byID     map[string]int
	geojson  []byte
}

// NewDatasetService loads features from path, or the bundled dataset when
// path is empty.
func NewDatasetService(path string) (*DatasetService, error) {
	data, source := bundledStates, BundledSource
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading dataset: %w", err)
		}
		data, source = b, path
	}
	return NewDatasetServiceFromBytes(source, data)
}

// NewDatasetServiceFromBytes loads features from GeoJSON bytes.
func NewDatasetServiceFromBytes(source string, data []byte) (*DatasetService, error) {
	features, err := choropleth.ParseFeatures(data)
	if err != nil {
		return nil, fmt.Errorf("loading dataset %s: %w", source, err)
	}

	encoded, err := json.Marshal(choropleth.ToGeoJSON(features))
	if err != nil {
		return nil, fmt.Errorf("encoding dataset %s: %w", source, err)
	}

	byID := make(map[string]int, len(features))
	for i, f := range features {
		byID[f.ID] = i
	}

	return &DatasetService{
		source:   source,
		features: features,
		byID:     byID,
		geojson:  encoded,
	}, nil
}

// Source returns where the dataset was loaded from.
func (s *DatasetService) Source() string {
	return s.source
}

// Features returns a copy of the features in dataset order.
func (s *DatasetService) Features() []choropleth.Feature {
	out := make([]choropleth.Feature, len(s.features))
	copy(out, s.features)
	return out
}

// Get returns a feature by ID.
func (s *DatasetService) Get(id string) (choropleth.Feature, bool) {
	i, ok := s.byID[id]
	if !ok {
		return choropleth.Feature{}, false
	}
	return s.features[i], true
}

// Summaries returns the API view of every feature in dataset order.
func (s *DatasetService) Summaries() []FeatureSummary {
	out := make([]FeatureSummary, len(s.features))
	for i, f := range s.features {
		out[i] = Summarize(f)
	}
	return out
}

// GeoJSON returns the dataset as an encoded FeatureCollection.
func (s *DatasetService) GeoJSON() []byte {
	return s.geojson
}
