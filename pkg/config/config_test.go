package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"waterscan/pkg/indices"
	"waterscan/pkg/raster"
	"waterscan/pkg/waterbody"
)

// TestDefaultConfig verifies the defaults are valid
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected valid defaults, got %v", err)
	}
	if cfg.Raster.PixelSize != 30 {
		t.Errorf("Expected default pixel size 30, got %f", cfg.Raster.PixelSize)
	}
	idx, _ := cfg.WaterIndex()
	if idx != indices.IndexNDWI {
		t.Errorf("Expected NDWI, got %v", idx)
	}
	conn, _ := cfg.Connectivity()
	if conn != waterbody.Eight {
		t.Errorf("Expected 8-connectivity, got %v", conn)
	}
}

// TestLoadConfigMissing returns defaults for a missing file
func TestLoadConfigMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Output.Dir != "output" {
		t.Errorf("Expected default output dir, got %q", cfg.Output.Dir)
	}
}

// TestSaveAndLoad round-trips a modified configuration
func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "waterscan.yaml")
	cfg := DefaultConfig()
	cfg.Raster.PixelSize = 10
	cfg.Water.MinArea = 0.05
	cfg.Water.Connectivity = 4
	cfg.Processing.Index = "mndwi"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if loaded.Raster.PixelSize != 10 || loaded.Water.MinArea != 0.05 {
		t.Errorf("Unexpected raster/water settings %+v %+v", loaded.Raster, loaded.Water)
	}
	if conn, _ := loaded.Connectivity(); conn != waterbody.Four {
		t.Errorf("Expected 4-connectivity, got %v", conn)
	}
	if idx, _ := loaded.WaterIndex(); idx != indices.IndexMNDWI {
		t.Errorf("Expected MNDWI, got %v", idx)
	}
}

// TestPartialFileKeepsDefaults verifies unspecified keys keep their defaults
func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("water:\n  threshold: 0.3\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Water.Threshold != 0.3 {
		t.Errorf("Expected threshold 0.3, got %f", cfg.Water.Threshold)
	}
	if cfg.Raster.PixelSize != 30 {
		t.Errorf("Expected default pixel size to survive, got %f", cfg.Raster.PixelSize)
	}
}

// TestLoadConfigInvalid rejects unknown enumerations
func TestLoadConfigInvalid(t *testing.T) {
	cases := map[string]string{
		"index":        "processing:\n  index: ndvi\n",
		"resampling":   "processing:\n  resampling: lanczos\n",
		"connectivity": "water:\n  connectivity: 6\n",
		"pixel size":   "raster:\n  pixelSize: -1\n",
		"diff":         "change:\n  diffMethod: log\n",
		"smoothing":    "processing:\n  smoothing: bilateral\n",
		"window":       "processing:\n  smoothing: median\n  smoothingSize: 0\n",
	}
	for name, body := range cases {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}
		if _, err := LoadConfig(path); !errors.Is(err, raster.ErrInvalidParameter) {
			t.Errorf("%s: expected ErrInvalidParameter, got %v", name, err)
		}
	}

	path := filepath.Join(t.TempDir(), "broken.yaml")
	os.WriteFile(path, []byte("water: [unclosed"), 0644)
	if _, err := LoadConfig(path); err == nil {
		t.Errorf("Expected a parse error")
	}
}

// TestCreateDefaultConfigFile writes a loadable file
func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("Failed to create config: %v", err)
	}
	if _, err := LoadConfig(path); err != nil {
		t.Errorf("Expected the default file to load, got %v", err)
	}
}
