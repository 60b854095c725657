package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/roiview/internal/lidar/colormap"
	"github.com/banshee-data/roiview/internal/lidar/roi"
	"github.com/banshee-data/roiview/internal/lidar/scene"
	"github.com/banshee-data/roiview/internal/lidar/synthetic"
)

// DefaultConfigPath is the path to the canonical scene defaults file.
const DefaultConfigPath = "config/scene.defaults.json"

// SceneConfig is the startup configuration for the viewer. Every field is
// optional; the Get* accessors supply defaults for omitted values.
type SceneConfig struct {
	// Point source
	PointCount *int            `json:"point_count,omitempty"`
	Seed       *int64          `json:"seed,omitempty"` // 0 or omitted draws from the clock
	Clusters   []ClusterConfig `json:"clusters,omitempty"`

	// Authoring
	CloseThreshold *float64 `json:"close_threshold,omitempty"` // metres, negative disables

	// Display
	ColorMapMode  *string  `json:"color_map_mode,omitempty"`
	ColorMapTable *string  `json:"color_map_table,omitempty"`
	PointSize     *float64 `json:"point_size,omitempty"`

	// Monitor
	Listen *string `json:"listen,omitempty"`
}

// ClusterConfig describes one synthetic point cluster.
type ClusterConfig struct {
	Center [3]float64 `json:"center"` // x, y, z
	Spread float64    `json:"spread"`
	Weight float64    `json:"weight"`
}

// EmptySceneConfig returns a SceneConfig with all fields unset.
func EmptySceneConfig() *SceneConfig {
	return &SceneConfig{}
}

// LoadSceneConfig loads a SceneConfig from a JSON file. The path must have a
// .json extension and the file must be under 1MB.
func LoadSceneConfig(path string) (*SceneConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptySceneConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *SceneConfig) Validate() error {
	if c.PointCount != nil && *c.PointCount < 0 {
		return fmt.Errorf("point_count must be non-negative, got %d", *c.PointCount)
	}

	totalWeight := 0.0
	for i, cl := range c.Clusters {
		if cl.Spread < 0 {
			return fmt.Errorf("clusters[%d].spread must be non-negative, got %f", i, cl.Spread)
		}
		if cl.Weight < 0 {
			return fmt.Errorf("clusters[%d].weight must be non-negative, got %f", i, cl.Weight)
		}
		totalWeight += cl.Weight
	}
	if len(c.Clusters) > 0 && totalWeight == 0 {
		return fmt.Errorf("clusters must have a positive total weight")
	}

	if c.ColorMapMode != nil {
		if _, err := colormap.ParseMode(*c.ColorMapMode); err != nil {
			return fmt.Errorf("invalid color_map_mode: %w", err)
		}
	}
	if c.ColorMapTable != nil {
		if _, err := colormap.ParseTable(*c.ColorMapTable); err != nil {
			return fmt.Errorf("invalid color_map_table: %w", err)
		}
	}

	if c.PointSize != nil && *c.PointSize <= 0 {
		return fmt.Errorf("point_size must be positive, got %f", *c.PointSize)
	}
	return nil
}

// GetPointCount returns the point_count value or the default.
func (c *SceneConfig) GetPointCount() int {
	if c.PointCount == nil {
		return synthetic.DefaultPointCount
	}
	return *c.PointCount
}

// GetSeed returns the seed value or 0 (clock seeded).
func (c *SceneConfig) GetSeed() int64 {
	if c.Seed == nil {
		return 0
	}
	return *c.Seed
}

// GetCloseThreshold returns the close_threshold value or the default.
func (c *SceneConfig) GetCloseThreshold() float64 {
	if c.CloseThreshold == nil {
		return roi.DefaultCloseThreshold
	}
	return *c.CloseThreshold
}

// GetColorMap returns the configured colour selection, falling back to
// height/plasma for omitted or unparsable fields.
func (c *SceneConfig) GetColorMap() colormap.Selection {
	sel := colormap.DefaultSelection()
	if c.ColorMapMode != nil {
		if m, err := colormap.ParseMode(*c.ColorMapMode); err == nil {
			sel.Mode = m
		}
	}
	if c.ColorMapTable != nil {
		if t, err := colormap.ParseTable(*c.ColorMapTable); err == nil {
			sel.Table = t
		}
	}
	return sel
}

// GetPointSize returns the point_size value or the default.
func (c *SceneConfig) GetPointSize() float64 {
	if c.PointSize == nil {
		return scene.DefaultPointSize
	}
	return *c.PointSize
}

// GetListen returns the monitor listen address or the default.
func (c *SceneConfig) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return ":8082"
	}
	return *c.Listen
}
