package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the runtime parameters of the voxel core. Everything has a
// working default; a YAML file overrides selectively.
type Config struct {
	Seed       int64 `yaml:"seed"`
	ChunkSize  int   `yaml:"chunk_size"`
	LoadRadius int   `yaml:"load_radius"`
	// UnloadMargin is the hysteresis band past LoadRadius before a chunk is
	// marked for unload.
	UnloadMargin int `yaml:"unload_margin"`
	// Workers is the generation/meshing pool size; 0 means one per CPU.
	Workers int `yaml:"workers"`
	// Database is the optional path of the chunk archive; empty disables
	// persistence.
	Database string `yaml:"database,omitempty"`

	Terrain TerrainConfig `yaml:"terrain"`

	// Blocks overrides the compiled-in block set when non-empty. IDs are
	// assigned in order; the first entry must be "air".
	Blocks []BlockSpec `yaml:"blocks,omitempty"`
}

// TerrainConfig tunes the noise heightmap generator.
type TerrainConfig struct {
	Scale       float64 `yaml:"scale"`
	BaseHeight  int     `yaml:"base_height"`
	Amplitude   float64 `yaml:"amplitude"`
	Octaves     int     `yaml:"octaves"`
	Persistence float64 `yaml:"persistence"`
	Lacunarity  float64 `yaml:"lacunarity"`
}

// BlockSpec declares one block type of a configured block set.
type BlockSpec struct {
	Name     string `yaml:"name"`
	Opaque   bool   `yaml:"opaque"`
	Textures [6]int `yaml:"textures,omitempty"`
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path yields plain defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Defaults returns the stock configuration.
func Defaults() Config {
	return Config{
		Seed:         1,
		ChunkSize:    16,
		LoadRadius:   4,
		UnloadMargin: 1,
		Workers:      0,
		Terrain: TerrainConfig{
			Scale:       1.0 / 64.0,
			BaseHeight:  32,
			Amplitude:   24,
			Octaves:     4,
			Persistence: 0.5,
			Lacunarity:  2.0,
		},
	}
}

// Validate rejects configurations the core cannot run with.
func (c *Config) Validate() error {
	if c.ChunkSize < 2 {
		return fmt.Errorf("chunk_size must be at least 2, got %d", c.ChunkSize)
	}
	if c.LoadRadius < 0 {
		return fmt.Errorf("load_radius must not be negative, got %d", c.LoadRadius)
	}
	if c.UnloadMargin < 0 {
		return fmt.Errorf("unload_margin must not be negative, got %d", c.UnloadMargin)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Terrain.Octaves < 1 {
		return fmt.Errorf("terrain.octaves must be at least 1, got %d", c.Terrain.Octaves)
	}
	if c.Terrain.Scale <= 0 {
		return fmt.Errorf("terrain.scale must be positive, got %v", c.Terrain.Scale)
	}
	if len(c.Blocks) > 0 {
		if c.Blocks[0].Name != "air" {
			return fmt.Errorf("blocks[0] must be air, got %q", c.Blocks[0].Name)
		}
		if c.Blocks[0].Opaque {
			return fmt.Errorf("air must not be opaque")
		}
		seen := make(map[string]struct{}, len(c.Blocks))
		for _, b := range c.Blocks {
			if b.Name == "" {
				return fmt.Errorf("block with empty name")
			}
			if _, dup := seen[b.Name]; dup {
				return fmt.Errorf("duplicate block name %q", b.Name)
			}
			seen[b.Name] = struct{}{}
		}
	}
	return nil
}
