// Package config provides configuration loading and management for waterscan.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"waterscan/pkg/change"
	"waterscan/pkg/filter"
	"waterscan/pkg/indices"
	"waterscan/pkg/interpolation"
	"waterscan/pkg/raster"
	"waterscan/pkg/visualization"
	"waterscan/pkg/waterbody"
)

// ConfigEnv names the environment variable holding the default config path.
const ConfigEnv = "WATERSCAN_CONFIG"

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many CPU cores to use for parallel processing
		NumCores int `yaml:"numCores"`

		// Index is the spectral index used to detect water (ndwi or mndwi)
		Index string `yaml:"index"`

		// Resampling is the interpolation used to align scenes of different size
		Resampling string `yaml:"resampling"`

		// Smoothing filters the index before thresholding (none, median or gaussian)
		Smoothing string `yaml:"smoothing"`

		// SmoothingSize is the median window radius or the gaussian sigma, in pixels
		SmoothingSize float64 `yaml:"smoothingSize"`
	} `yaml:"processing"`

	// Raster input parameters
	Raster struct {
		// PixelSize is the ground sampling distance in metres, used when the
		// input files carry no geotransform
		PixelSize float64 `yaml:"pixelSize"`

		// NoData marks missing samples when UseNoData is set
		NoData    float64 `yaml:"noData"`
		UseNoData bool    `yaml:"useNoData"`

		// ReflectanceScale multiplies raw digital numbers (1e-4 for Sentinel-2 L2A)
		ReflectanceScale float64 `yaml:"reflectanceScale"`
	} `yaml:"raster"`

	// Water detection parameters
	Water struct {
		// Threshold is the index value above which a pixel is water
		Threshold float64 `yaml:"threshold"`

		// MinArea is the smallest water body kept, in km². 0 keeps all bodies
		MinArea float64 `yaml:"minArea"`

		// Connectivity is 8 (edges and corners) or 4 (edges only)
		Connectivity int `yaml:"connectivity"`
	} `yaml:"water"`

	// Change detection parameters
	Change struct {
		// DiffMethod is simple, ratio or norm
		DiffMethod string `yaml:"diffMethod"`
	} `yaml:"change"`

	// Output parameters
	Output struct {
		// Dir is where reports and images are written
		Dir string `yaml:"dir"`

		// SaveImages renders PNG maps of each stage
		SaveImages bool `yaml:"saveImages"`

		// SaveGeoJSON exports water body outlines
		SaveGeoJSON bool `yaml:"saveGeoJSON"`

		// Colormap is used for index images (blues, grey or rdylgn)
		Colormap string `yaml:"colormap"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default processing parameters
	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default
	cfg.Processing.Index = indices.IndexNDWI.String()
	cfg.Processing.Resampling = interpolation.DefaultMethod.String()
	cfg.Processing.Smoothing = filter.None.String()
	cfg.Processing.SmoothingSize = 1

	// Set default raster parameters (Landsat resolution)
	cfg.Raster.PixelSize = 30.0
	cfg.Raster.NoData = 0
	cfg.Raster.UseNoData = false
	cfg.Raster.ReflectanceScale = 1.0

	// Set default water parameters
	cfg.Water.Threshold = indices.DefaultWaterThreshold
	cfg.Water.MinArea = 0
	cfg.Water.Connectivity = 8

	cfg.Change.DiffMethod = change.Simple.String()

	// Set default output parameters
	cfg.Output.Dir = "output"
	cfg.Output.SaveImages = true
	cfg.Output.SaveGeoJSON = true
	cfg.Output.Colormap = "blues"
	cfg.Output.Verbose = false

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// Validate checks every enumerated and numeric setting.
func (c *Config) Validate() error {
	if c.Processing.NumCores < 0 {
		return fmt.Errorf("%w: numCores must be non-negative, got %d", raster.ErrInvalidParameter, c.Processing.NumCores)
	}
	if _, err := c.WaterIndex(); err != nil {
		return err
	}
	if _, err := c.ResampleMethod(); err != nil {
		return err
	}
	smoothing, err := c.Smoothing()
	if err != nil {
		return err
	}
	if smoothing != filter.None && !(c.Processing.SmoothingSize >= 1) {
		return fmt.Errorf("%w: smoothingSize must be at least 1, got %g", raster.ErrInvalidParameter, c.Processing.SmoothingSize)
	}
	if _, err := c.Diff(); err != nil {
		return err
	}
	if _, err := c.Connectivity(); err != nil {
		return err
	}
	if _, err := visualization.ParseColormap(c.Output.Colormap); err != nil {
		return err
	}
	if err := c.PixelSize().Validate(); err != nil {
		return err
	}
	if !(c.Raster.ReflectanceScale > 0) {
		return fmt.Errorf("%w: reflectanceScale must be positive, got %g", raster.ErrInvalidParameter, c.Raster.ReflectanceScale)
	}
	return nil
}

// WaterIndex returns the configured water index. Only indices that can be
// computed from a green band and a NIR or SWIR band qualify.
func (c *Config) WaterIndex() (indices.Index, error) {
	idx, err := indices.ParseIndex(c.Processing.Index)
	if err != nil {
		return 0, err
	}
	if idx != indices.IndexNDWI && idx != indices.IndexMNDWI {
		return 0, fmt.Errorf("%w: %s is not a water index", raster.ErrInvalidParameter, idx)
	}
	return idx, nil
}

// ResampleMethod returns the configured resampling method.
func (c *Config) ResampleMethod() (interpolation.Method, error) {
	return interpolation.ParseMethod(c.Processing.Resampling)
}

// Smoothing returns the configured index filter.
func (c *Config) Smoothing() (filter.Method, error) {
	return filter.ParseMethod(c.Processing.Smoothing)
}

// Diff returns the configured change difference method.
func (c *Config) Diff() (change.DiffMethod, error) {
	return change.ParseDiffMethod(c.Change.DiffMethod)
}

// Connectivity maps the configured neighbour count to a labeling mode.
func (c *Config) Connectivity() (waterbody.Connectivity, error) {
	switch c.Water.Connectivity {
	case 0, 8:
		return waterbody.Eight, nil
	case 4:
		return waterbody.Four, nil
	}
	return 0, fmt.Errorf("%w: connectivity must be 4 or 8, got %d", raster.ErrInvalidParameter, c.Water.Connectivity)
}

// PixelSize returns the configured square pixel size.
func (c *Config) PixelSize() raster.PixelSize {
	return raster.Square(c.Raster.PixelSize)
}
