package world

import (
	"math"
)

// TerrainGenerator produces a chunk's initial block contents. Populate must
// be a pure function of (seed, chunk coordinate): no shared mutable state,
// no dependence on neighbor chunks, bit-identical output on repeat calls.
type TerrainGenerator interface {
	Populate(c *Chunk) error
	HeightAt(worldX, worldZ int) int
}

// NoiseParams tunes the heightmap generator.
type NoiseParams struct {
	Scale       float64
	BaseHeight  int
	Amplitude   float64
	Octaves     int
	Persistence float64
	Lacunarity  float64
}

// DefaultNoiseParams returns the stock terrain tuning.
func DefaultNoiseParams() NoiseParams {
	return NoiseParams{
		Scale:       1.0 / 64.0,
		BaseHeight:  32,
		Amplitude:   24,
		Octaves:     4,
		Persistence: 0.5,
		Lacunarity:  2.0,
	}
}

// NoiseGenerator builds height-mapped columns: bedrock at y=0, stone below
// a dirt cap, grass on top, air above.
type NoiseGenerator struct {
	seed   int64
	params NoiseParams
}

const dirtDepth = 3

// NewNoiseGenerator creates a generator with default tuning.
func NewNoiseGenerator(seed int64) *NoiseGenerator {
	return NewTunedNoiseGenerator(seed, DefaultNoiseParams())
}

// NewTunedNoiseGenerator creates a generator with explicit tuning.
func NewTunedNoiseGenerator(seed int64, params NoiseParams) *NoiseGenerator {
	return &NoiseGenerator{seed: seed, params: params}
}

// HeightAt computes the surface height (top solid block Y) at world X,Z.
func (g *NoiseGenerator) HeightAt(worldX, worldZ int) int {
	x := float64(worldX) * g.params.Scale
	z := float64(worldZ) * g.params.Scale
	n := octaveNoise2D(x, z, g.seed, g.params.Octaves, g.params.Persistence, g.params.Lacunarity)
	height := float64(g.params.BaseHeight) + n*g.params.Amplitude
	if height < 0 {
		height = 0
	}
	return int(math.Floor(height))
}

// Populate fills the chunk from the noise heightmap. Only the chunk's own
// coordinate range is considered, so generation order is irrelevant.
func (g *NoiseGenerator) Populate(c *Chunk) error {
	size := c.Size()
	baseX := c.Coord.X * size
	baseY := c.Coord.Y * size
	baseZ := c.Coord.Z * size

	for lx := 0; lx < size; lx++ {
		for lz := 0; lz < size; lz++ {
			height := g.HeightAt(baseX+lx, baseZ+lz)
			for ly := 0; ly < size; ly++ {
				wy := baseY + ly
				var bt BlockType
				switch {
				case wy > height:
					continue // air
				case wy == 0:
					bt = BlockTypeBedrock
				case wy == height:
					bt = BlockTypeGrass
				case wy >= height-dirtDepth:
					bt = BlockTypeDirt
				default:
					bt = BlockTypeStone
				}
				c.setGenerated(lx, ly, lz, bt)
			}
		}
	}
	return nil
}

// FlatGenerator fills every column up to a fixed height. Useful for tests
// and as a degenerate world type; height < 0 yields all-air chunks.
type FlatGenerator struct {
	height int
}

// NewFlatGenerator creates a flat-world generator with the given surface Y.
func NewFlatGenerator(height int) *FlatGenerator {
	return &FlatGenerator{height: height}
}

func (g *FlatGenerator) HeightAt(worldX, worldZ int) int {
	return g.height
}

func (g *FlatGenerator) Populate(c *Chunk) error {
	size := c.Size()
	baseY := c.Coord.Y * size
	for lx := 0; lx < size; lx++ {
		for lz := 0; lz < size; lz++ {
			for ly := 0; ly < size; ly++ {
				wy := baseY + ly
				switch {
				case wy > g.height:
					// air
				case wy == 0:
					c.setGenerated(lx, ly, lz, BlockTypeBedrock)
				case wy == g.height:
					c.setGenerated(lx, ly, lz, BlockTypeGrass)
				default:
					c.setGenerated(lx, ly, lz, BlockTypeDirt)
				}
			}
		}
	}
	return nil
}
