package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "map.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_emptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, [2]float64{37.8, -96}, cfg.Center)
	assert.Equal(t, 4, cfg.Zoom)
	assert.False(t, cfg.ScrollWheelZoom)
}

func TestLoad_overridesDefaults(t *testing.T) {
	path := writeFile(t, "zoom: 6\ncenter: [40.7, -74.0]\nheight: 800px\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Zoom)
	assert.Equal(t, [2]float64{40.7, -74.0}, cfg.Center)
	assert.Equal(t, "800px", cfg.Height)
	assert.Equal(t, Default().TileURL, cfg.TileURL, "unset keys keep defaults")
}

func TestLoad_errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "reading map config")

	_, err = Load(writeFile(t, "zoom: [oops"))
	require.ErrorContains(t, err, "parsing map config")

	_, err = Load(writeFile(t, "zoom: 40\n"))
	require.ErrorContains(t, err, "zoom 40 out of range")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Center = [2]float64{95, 0}
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Center = [2]float64{0, 200}
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.TileURL = ""
	assert.Error(t, cfg.Validate())

	assert.NoError(t, Default().Validate())
}
