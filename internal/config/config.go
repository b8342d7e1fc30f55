// Package config holds the map settings shared by the page and the map
// sessions, with an optional YAML file overriding the defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Map describes the base map and tile backdrop.
type Map struct {
	Title           string     `yaml:"title" json:"title"`
	Center          [2]float64 `yaml:"center" json:"center"` // lat, lng
	Zoom            int        `yaml:"zoom" json:"zoom"`
	ScrollWheelZoom bool       `yaml:"scrollWheelZoom" json:"scrollWheelZoom"`
	Height          string     `yaml:"height" json:"height"`
	TileURL         string     `yaml:"tileURL" json:"tileURL"`
	Attribution     string     `yaml:"attribution" json:"attribution"`
}

// Default returns the US overview used when no file is given.
func Default() Map {
	return Map{
		Title:           "US Population Density",
		Center:          [2]float64{37.8, -96},
		Zoom:            4,
		ScrollWheelZoom: false,
		Height:          "600px",
		TileURL:         "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution:     `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
	}
}

// Load reads a YAML map file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Map, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Map{}, fmt.Errorf("reading map config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Map{}, fmt.Errorf("parsing map config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Map{}, fmt.Errorf("map config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges the browser library would reject.
func (m Map) Validate() error {
	if m.Center[0] < -90 || m.Center[0] > 90 {
		return fmt.Errorf("center latitude %v out of range", m.Center[0])
	}
	if m.Center[1] < -180 || m.Center[1] > 180 {
		return fmt.Errorf("center longitude %v out of range", m.Center[1])
	}
	if m.Zoom < 0 || m.Zoom > 22 {
		return fmt.Errorf("zoom %d out of range", m.Zoom)
	}
	if m.TileURL == "" {
		return fmt.Errorf("tileURL is required")
	}
	return nil
}
