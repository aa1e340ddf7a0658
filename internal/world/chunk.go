package world

import "sync/atomic"

// Chunk holds a dense size³ array of block types. A Chunk is exclusively
// owned by the Store that created it and must not be shared across stores.
type Chunk struct {
	Coord ChunkCoord

	size   int
	blocks []BlockType

	// dirty means the cached mesh for this chunk is stale. Atomic because
	// mesh workers clear it while edits on the store lock set it.
	dirty atomic.Bool
	// edited means the block data differs from freshly generated state.
	edited bool
	// failed means generation errored; the chunk serves air and is never
	// regenerated.
	failed bool
}

func newChunk(coord ChunkCoord, size int) *Chunk {
	c := &Chunk{
		Coord:  coord,
		size:   size,
		blocks: make([]BlockType, size*size*size),
	}
	c.dirty.Store(true)
	return c
}

// Size returns the chunk edge length in blocks.
func (c *Chunk) Size() int {
	return c.size
}

func (c *Chunk) index(x, y, z int) int {
	return (x*c.size+y)*c.size + z
}

// Block returns the block type at local coordinates. Out-of-range queries
// return air; callers that need cross-chunk resolution translate to the
// owning neighbor instead of relying on this.
func (c *Chunk) Block(x, y, z int) BlockType {
	if x < 0 || x >= c.size || y < 0 || y >= c.size || z < 0 || z >= c.size {
		return BlockTypeAir
	}
	return c.blocks[c.index(x, y, z)]
}

// setBlock writes a block and marks the mesh stale. Population during
// generation uses setGenerated instead so fresh chunks are not "edited".
func (c *Chunk) setBlock(x, y, z int, bt BlockType) {
	if x < 0 || x >= c.size || y < 0 || y >= c.size || z < 0 || z >= c.size {
		return
	}
	idx := c.index(x, y, z)
	if c.blocks[idx] == bt {
		return
	}
	c.blocks[idx] = bt
	c.dirty.Store(true)
	c.edited = true
}

func (c *Chunk) setGenerated(x, y, z int, bt BlockType) {
	if x < 0 || x >= c.size || y < 0 || y >= c.size || z < 0 || z >= c.size {
		return
	}
	c.blocks[c.index(x, y, z)] = bt
}

// Dirty reports whether the cached mesh is stale.
func (c *Chunk) Dirty() bool {
	return c.dirty.Load()
}

// MarkClean flags the current block data as meshed. The mesher calls this
// before building so edits landing mid-build re-dirty the chunk.
func (c *Chunk) MarkClean() {
	c.dirty.Store(false)
}

func (c *Chunk) markDirty() {
	c.dirty.Store(true)
}

// Edited reports whether the chunk diverges from its generated state.
func (c *Chunk) Edited() bool {
	return c.edited
}

// Failed reports whether generation failed for this coordinate.
func (c *Chunk) Failed() bool {
	return c.failed
}

// Blocks returns a copy of the block array for serialization.
func (c *Chunk) Blocks() []BlockType {
	out := make([]BlockType, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// restore replaces the block array with persisted data. The chunk keeps its
// edited flag so a later unload re-saves it only after further edits.
func (c *Chunk) restore(blocks []BlockType) {
	copy(c.blocks, blocks)
	c.dirty.Store(true)
}

// IsAir reports whether the block at local coordinates is air.
func (c *Chunk) IsAir(x, y, z int) bool {
	return c.Block(x, y, z) == BlockTypeAir
}
