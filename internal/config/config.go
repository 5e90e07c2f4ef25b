// Package config handles meshopt command configuration loading and
// management.
package config

import (
	"fmt"
	"slices"

	"github.com/akmonengine/meshopt"
	"github.com/akmonengine/meshopt/meshlet"
)

// Shapes lists the procedural meshes the command can generate.
var Shapes = []string{"cube", "sharedcube", "sphere", "cylinder", "torus"}

// Config holds all command settings.
type Config struct {
	Mesh     MeshConfig     `yaml:"mesh"`
	Optimize OptimizeConfig `yaml:"optimize"`
	Meshlet  MeshletConfig  `yaml:"meshlet"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// MeshConfig describes the input mesh.
type MeshConfig struct {
	Shape        string  `yaml:"shape"`
	Size         float32 `yaml:"size"`      // Edge length or diameter
	Height       float32 `yaml:"height"`    // Cylinder only
	Thickness    float32 `yaml:"thickness"` // Torus only
	Tessellation int     `yaml:"tessellation"`
	Index16      bool    `yaml:"index16"` // Use 16-bit indices
}

// OptimizeConfig holds index and vertex buffer optimization settings.
type OptimizeConfig struct {
	Weld        bool    `yaml:"weld"`
	Epsilon     float32 `yaml:"epsilon"` // Position tolerance for welding and adjacency
	VertexCache int     `yaml:"vertex_cache"`
}

// MeshletConfig holds meshlet generation settings.
type MeshletConfig struct {
	MaxVerts int  `yaml:"max_verts"`
	MaxPrims int  `yaml:"max_prims"`
	Workers  int  `yaml:"workers"` // 0 uses every CPU
	WindCW   bool `yaml:"wind_cw"`
	Split    bool `yaml:"split"` // Group faces by dominant normal axis
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Mesh: MeshConfig{
			Shape:        "sphere",
			Size:         1,
			Height:       1,
			Thickness:    0.333,
			Tessellation: 16,
			Index16:      false,
		},
		Optimize: OptimizeConfig{
			Weld:        true,
			Epsilon:     1e-5,
			VertexCache: meshopt.OptFacesVDefault,
		},
		Meshlet: MeshletConfig{
			MaxVerts: meshlet.DefaultMaxVerts,
			MaxPrims: meshlet.DefaultMaxPrims,
			Workers:  0,
			WindCW:   false,
			Split:    false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first setting out of range.
func (c *Config) Validate() error {
	if !slices.Contains(Shapes, c.Mesh.Shape) {
		return fmt.Errorf("mesh.shape %q is not one of %v", c.Mesh.Shape, Shapes)
	}
	if c.Mesh.Size <= 0 || c.Mesh.Height <= 0 || c.Mesh.Thickness <= 0 {
		return fmt.Errorf("mesh dimensions must be positive")
	}
	if c.Mesh.Tessellation < 3 {
		return fmt.Errorf("mesh.tessellation %d is below 3", c.Mesh.Tessellation)
	}
	if c.Optimize.Epsilon < 0 {
		return fmt.Errorf("optimize.epsilon %v is negative", c.Optimize.Epsilon)
	}
	if c.Optimize.VertexCache < 0 || c.Optimize.VertexCache > meshopt.MaxVertexCache {
		return fmt.Errorf("optimize.vertex_cache %d is outside [0, %d]", c.Optimize.VertexCache, meshopt.MaxVertexCache)
	}
	if c.Meshlet.MaxVerts < meshlet.MinVerts || c.Meshlet.MaxVerts > meshlet.MaxSize {
		return fmt.Errorf("meshlet.max_verts %d is outside [%d, %d]", c.Meshlet.MaxVerts, meshlet.MinVerts, meshlet.MaxSize)
	}
	if c.Meshlet.MaxPrims < meshlet.MinPrims || c.Meshlet.MaxPrims > meshlet.MaxSize {
		return fmt.Errorf("meshlet.max_prims %d is outside [%d, %d]", c.Meshlet.MaxPrims, meshlet.MinPrims, meshlet.MaxSize)
	}
	if c.Meshlet.Workers < 0 {
		return fmt.Errorf("meshlet.workers %d is negative", c.Meshlet.Workers)
	}
	return nil
}
