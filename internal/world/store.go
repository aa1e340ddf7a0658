package world

import (
	"errors"
	"log"
	"sort"
	"sync"

	"voxelcore/internal/profiling"
)

// ErrChunkNotLoaded is returned when an edit targets a chunk that is not in
// the store. Callers should load the chunk first or drop the edit.
var ErrChunkNotLoaded = errors.New("chunk not loaded")

// ChunkArchive restores and saves chunk block data. Implemented by the
// persistence layer; optional.
type ChunkArchive interface {
	Load(coord ChunkCoord) ([]BlockType, bool, error)
	Save(coord ChunkCoord, blocks []BlockType) error
}

// Store owns every loaded chunk. It is the sole shared mutable resource of
// the voxel core: mutations are serialized behind a store-wide lock while
// block reads proceed concurrently.
type Store struct {
	mu     sync.RWMutex
	chunks map[ChunkCoord]*Chunk
	// coordinates whose generation failed; served as air, never retried
	failed   map[ChunkCoord]struct{}
	inflight map[ChunkCoord]*inflightLoad

	size    int
	seed    int64
	gen     TerrainGenerator
	archive ChunkArchive

	modCount uint64
}

type inflightLoad struct {
	done  chan struct{}
	chunk *Chunk
}

// NewStore creates an empty chunk store. size is the chunk edge length in
// blocks; gen produces initial chunk contents on demand.
func NewStore(size int, seed int64, gen TerrainGenerator) *Store {
	return &Store{
		chunks:   make(map[ChunkCoord]*Chunk),
		failed:   make(map[ChunkCoord]struct{}),
		inflight: make(map[ChunkCoord]*inflightLoad),
		size:     size,
		seed:     seed,
		gen:      gen,
	}
}

// SetArchive wires a persistence collaborator. Loads consult the archive
// before generating; Unload saves edited chunks back. Must be called before
// the first load.
func (s *Store) SetArchive(a ChunkArchive) {
	s.archive = a
}

// ChunkSize returns the configured chunk edge length.
func (s *Store) ChunkSize() int {
	return s.size
}

// Seed returns the active world seed.
func (s *Store) Seed() int64 {
	return s.seed
}

// Get returns the loaded chunk at coord, without triggering generation.
func (s *Store) Get(coord ChunkCoord) (*Chunk, bool) {
	s.mu.RLock()
	ch, ok := s.chunks[coord]
	s.mu.RUnlock()
	return ch, ok
}

// LoadOrCreate returns the chunk at coord, generating it on first load.
// Concurrent calls for the same coordinate agree on a single Chunk instance:
// the first caller generates while later callers wait on the in-flight load.
func (s *Store) LoadOrCreate(coord ChunkCoord) (*Chunk, error) {
	defer profiling.Track("world.LoadOrCreate")()

	s.mu.Lock()
	if ch, ok := s.chunks[coord]; ok {
		s.mu.Unlock()
		return ch, nil
	}
	if fl, ok := s.inflight[coord]; ok {
		s.mu.Unlock()
		<-fl.done
		return fl.chunk, nil
	}
	fl := &inflightLoad{done: make(chan struct{})}
	s.inflight[coord] = fl
	s.mu.Unlock()

	ch := s.createChunk(coord)

	s.mu.Lock()
	s.chunks[coord] = ch
	delete(s.inflight, coord)
	s.modCount++
	s.mu.Unlock()

	fl.chunk = ch
	close(fl.done)
	return ch, nil
}

// createChunk builds the initial contents for coord: archived data if the
// archive has it, generated terrain otherwise. Runs without the store lock;
// generation is pure per (seed, coord) so duplicate work would be harmless,
// but the in-flight map prevents it anyway.
func (s *Store) createChunk(coord ChunkCoord) *Chunk {
	ch := newChunk(coord, s.size)

	if _, bad := s.failedCoord(coord); bad {
		ch.failed = true
		return ch
	}

	if s.archive != nil {
		blocks, ok, err := s.archive.Load(coord)
		if err != nil {
			log.Printf("world: archive load %v: %v", coord, err)
		} else if ok && len(blocks) == len(ch.blocks) {
			ch.restore(blocks)
			ch.edited = true
			return ch
		}
	}

	if err := s.gen.Populate(ch); err != nil {
		log.Printf("world: generation failed for %v, serving air: %v", coord, err)
		s.markFailed(coord)
		return newFailedChunk(coord, s.size)
	}
	ch.markDirty()
	return ch
}

func newFailedChunk(coord ChunkCoord, size int) *Chunk {
	ch := newChunk(coord, size)
	ch.failed = true
	return ch
}

func (s *Store) failedCoord(coord ChunkCoord) (struct{}, bool) {
	s.mu.RLock()
	v, ok := s.failed[coord]
	s.mu.RUnlock()
	return v, ok
}

func (s *Store) markFailed(coord ChunkCoord) {
	s.mu.Lock()
	s.failed[coord] = struct{}{}
	s.mu.Unlock()
}

// BlockAt returns the block type at world coordinates. Unloaded chunks read
// as air; this never fails.
func (s *Store) BlockAt(wx, wy, wz int) BlockType {
	coord, lx, ly, lz := SplitWorldCoord(wx, wy, wz, s.size)
	s.mu.RLock()
	ch, ok := s.chunks[coord]
	s.mu.RUnlock()
	if !ok {
		return BlockTypeAir
	}
	return ch.Block(lx, ly, lz)
}

// IsAir reports whether the block at world coordinates is air.
func (s *Store) IsAir(wx, wy, wz int) bool {
	return s.BlockAt(wx, wy, wz) == BlockTypeAir
}

// SetBlockAt writes a block at world coordinates. The owning chunk must be
// loaded; on success the chunk is marked dirty, and so is any loaded
// neighbor sharing the edited face.
func (s *Store) SetBlockAt(wx, wy, wz int, bt BlockType) error {
	coord, lx, ly, lz := SplitWorldCoord(wx, wy, wz, s.size)

	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.chunks[coord]
	if !ok {
		return ErrChunkNotLoaded
	}
	ch.setBlock(lx, ly, lz, bt)

	// Only true face neighbors are invalidated; diagonal chunks never share
	// a visible face with the edited block.
	last := s.size - 1
	if lx == 0 {
		s.markNeighborDirty(ChunkCoord{X: coord.X - 1, Y: coord.Y, Z: coord.Z})
	} else if lx == last {
		s.markNeighborDirty(ChunkCoord{X: coord.X + 1, Y: coord.Y, Z: coord.Z})
	}
	if ly == 0 {
		s.markNeighborDirty(ChunkCoord{X: coord.X, Y: coord.Y - 1, Z: coord.Z})
	} else if ly == last {
		s.markNeighborDirty(ChunkCoord{X: coord.X, Y: coord.Y + 1, Z: coord.Z})
	}
	if lz == 0 {
		s.markNeighborDirty(ChunkCoord{X: coord.X, Y: coord.Y, Z: coord.Z - 1})
	} else if lz == last {
		s.markNeighborDirty(ChunkCoord{X: coord.X, Y: coord.Y, Z: coord.Z + 1})
	}
	return nil
}

func (s *Store) markNeighborDirty(coord ChunkCoord) {
	if nb, ok := s.chunks[coord]; ok {
		nb.markDirty()
	}
}

// Unload removes the chunk at coord. Absent coordinates are a no-op. Edited
// chunks are handed to the archive first so the edits survive a reload.
func (s *Store) Unload(coord ChunkCoord) {
	s.mu.Lock()
	ch, ok := s.chunks[coord]
	if ok {
		delete(s.chunks, coord)
		s.modCount++
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	if s.archive != nil && ch.Edited() && !ch.Failed() {
		if err := s.archive.Save(coord, ch.Blocks()); err != nil {
			log.Printf("world: archive save %v: %v", coord, err)
		}
	}
}

// Len returns the number of loaded chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Coords returns the loaded chunk coordinates in lexicographic order.
func (s *Store) Coords() []ChunkCoord {
	s.mu.RLock()
	coords := make([]ChunkCoord, 0, len(s.chunks))
	for c := range s.chunks {
		coords = append(coords, c)
	}
	s.mu.RUnlock()
	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })
	return coords
}

// ModCount increases on any chunk add or remove.
func (s *Store) ModCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modCount
}
