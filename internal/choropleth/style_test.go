package choropleth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStyleFor(t *testing.T) {
	f := Feature{ID: "06", Name: "California", Density: 241.7}

	got := StyleFor(f)
	assert.Equal(t, VisualStyle{
		FillColor:   "#E31A1C",
		Color:       "white",
		Weight:      2,
		Opacity:     1,
		DashArray:   "3",
		FillOpacity: 0.7,
	}, got)
	assert.Equal(t, got, StyleFor(f), "styling is deterministic")
}

func TestStyle_highlighted(t *testing.T) {
	f := Feature{ID: "34", Name: "New Jersey", Density: 1189}

	got := Style(f, Highlighted)
	assert.Equal(t, VisualStyle{
		FillColor:   "#800026",
		Color:       "#666",
		Weight:      5,
		Opacity:     1,
		DashArray:   "",
		FillOpacity: 0.7,
	}, got)
	assert.Equal(t, StyleFor(f), Style(f, Idle))
}

func TestStyleFor_missingDensity(t *testing.T) {
	assert.Equal(t, ColorFor(0), StyleFor(Feature{ID: "x"}).FillColor)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "highlighted", Highlighted.String())
}
