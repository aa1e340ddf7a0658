package world

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"
)

func chunkHash(c *Chunk) [32]byte {
	blocks := c.Blocks()
	buf := make([]byte, len(blocks)*2)
	for i, b := range blocks {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(b))
	}
	return sha256.Sum256(buf)
}

func populate(t *testing.T, g TerrainGenerator, coord ChunkCoord, size int) *Chunk {
	t.Helper()
	c := newChunk(coord, size)
	if err := g.Populate(c); err != nil {
		t.Fatalf("Populate(%v): %v", coord, err)
	}
	return c
}

func TestNoiseGeneratorDeterministic(t *testing.T) {
	coords := []ChunkCoord{
		{0, 0, 0}, {0, 1, 0}, {1, 0, 0}, {-1, 0, -1}, {3, 2, -4},
	}
	g1 := NewNoiseGenerator(42)
	g2 := NewNoiseGenerator(42)
	for _, coord := range coords {
		a := populate(t, g1, coord, 16)
		b := populate(t, g2, coord, 16)
		if chunkHash(a) != chunkHash(b) {
			t.Errorf("chunk %v differs between identically seeded generators", coord)
		}
		// a second pass over the same generator must also agree
		c := populate(t, g1, coord, 16)
		if chunkHash(a) != chunkHash(c) {
			t.Errorf("chunk %v differs between repeat calls", coord)
		}
	}
}

func TestNoiseGeneratorSeedChangesTerrain(t *testing.T) {
	a := populate(t, NewNoiseGenerator(1), ChunkCoord{X: 0, Y: 2, Z: 0}, 16)
	b := populate(t, NewNoiseGenerator(2), ChunkCoord{X: 0, Y: 2, Z: 0}, 16)
	if chunkHash(a) == chunkHash(b) {
		t.Error("different seeds produced identical surface chunk")
	}
}

func TestNoiseGeneratorColumnLayers(t *testing.T) {
	g := NewNoiseGenerator(42)
	// Chunk straddling the default surface band (base 32, amplitude 24).
	c := populate(t, g, ChunkCoord{X: 0, Y: 2, Z: 0}, 16)
	baseY := 2 * 16
	for lx := 0; lx < 16; lx++ {
		for lz := 0; lz < 16; lz++ {
			height := g.HeightAt(lx, lz)
			for ly := 0; ly < 16; ly++ {
				wy := baseY + ly
				got := c.Block(lx, ly, lz)
				switch {
				case wy > height:
					if got != BlockTypeAir {
						t.Fatalf("(%d,%d,%d): above surface %d, got %v", lx, wy, lz, height, got)
					}
				case wy == height:
					if got != BlockTypeGrass {
						t.Fatalf("(%d,%d,%d): surface, got %v", lx, wy, lz, got)
					}
				case wy >= height-3:
					if got != BlockTypeDirt {
						t.Fatalf("(%d,%d,%d): dirt band, got %v", lx, wy, lz, got)
					}
				default:
					if got != BlockTypeStone {
						t.Fatalf("(%d,%d,%d): below dirt, got %v", lx, wy, lz, got)
					}
				}
			}
		}
	}
}

func TestNoiseGeneratorBedrockFloor(t *testing.T) {
	g := NewNoiseGenerator(42)
	c := populate(t, g, ChunkCoord{X: 0, Y: 0, Z: 0}, 16)
	for lx := 0; lx < 16; lx++ {
		for lz := 0; lz < 16; lz++ {
			if got := c.Block(lx, 0, lz); got != BlockTypeBedrock {
				t.Fatalf("y=0 at (%d,%d) is %v, want bedrock", lx, lz, got)
			}
		}
	}
}

func TestNoiseGeneratorHighAltitudeIsAir(t *testing.T) {
	// Default tuning tops out at base+amplitude = 56; chunk y=8 starts at 128.
	c := populate(t, NewNoiseGenerator(42), ChunkCoord{X: 0, Y: 8, Z: 0}, 16)
	for i, b := range c.Blocks() {
		if b != BlockTypeAir {
			t.Fatalf("block %d is %v in a chunk far above the surface", i, b)
		}
	}
}

func TestFlatGenerator(t *testing.T) {
	g := NewFlatGenerator(3)
	c := populate(t, g, ChunkCoord{X: 0, Y: 0, Z: 0}, 16)
	for lx := 0; lx < 16; lx++ {
		for lz := 0; lz < 16; lz++ {
			if c.Block(lx, 0, lz) != BlockTypeBedrock {
				t.Fatalf("(%d,0,%d): want bedrock", lx, lz)
			}
			if c.Block(lx, 3, lz) != BlockTypeGrass {
				t.Fatalf("(%d,3,%d): want grass", lx, lz)
			}
			if c.Block(lx, 2, lz) != BlockTypeDirt {
				t.Fatalf("(%d,2,%d): want dirt", lx, lz)
			}
			if c.Block(lx, 4, lz) != BlockTypeAir {
				t.Fatalf("(%d,4,%d): want air", lx, lz)
			}
		}
	}
}

func TestFlatGeneratorNegativeHeightAllAir(t *testing.T) {
	c := populate(t, NewFlatGenerator(-1), ChunkCoord{X: 0, Y: 0, Z: 0}, 8)
	for i, b := range c.Blocks() {
		if b != BlockTypeAir {
			t.Fatalf("block %d is %v, want air", i, b)
		}
	}
}

func BenchmarkNoisePopulate(b *testing.B) {
	g := NewNoiseGenerator(42)
	for i := 0; i < b.N; i++ {
		c := newChunk(ChunkCoord{X: i % 8, Y: 2, Z: i / 8 % 8}, 16)
		if err := g.Populate(c); err != nil {
			b.Fatal(err)
		}
	}
}
