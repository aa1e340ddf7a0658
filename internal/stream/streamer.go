package stream

import (
	"log"
	"math"
	"sort"

	"voxelcore/internal/meshing"
	"voxelcore/internal/profiling"
	"voxelcore/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// State tracks a chunk coordinate through the streaming lifecycle.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StateMarkedForUnload
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateMarkedForUnload:
		return "marked-for-unload"
	}
	return "invalid"
}

// Streamer decides which chunks must be loaded, meshed, and unloaded based
// on the viewer position. All state transitions happen on Tick, which is
// driven by an external loop; generation and meshing run on the pool and
// never block the caller.
type Streamer struct {
	store *world.Store
	pool  *meshing.Pool

	radius int
	// margin widens the unload boundary past the load radius so a viewer
	// oscillating at the edge does not thrash load/unload cycles.
	margin int

	maxLoadsPerTick int

	states    map[world.ChunkCoord]State
	meshes    map[world.ChunkCoord]*meshing.Mesh
	remeshing map[world.ChunkCoord]struct{}
}

// New creates a streamer over the given store and worker pool. radius is the
// load distance in chunks (Chebyshev); margin is the unload hysteresis.
func New(store *world.Store, pool *meshing.Pool, radius, margin int) *Streamer {
	return &Streamer{
		store:           store,
		pool:            pool,
		radius:          radius,
		margin:          margin,
		maxLoadsPerTick: 256,
		states:          make(map[world.ChunkCoord]State),
		meshes:          make(map[world.ChunkCoord]*meshing.Mesh),
		remeshing:       make(map[world.ChunkCoord]struct{}),
	}
}

// Tick advances the streaming state machine for the given viewer position:
// completed pool results are applied, out-of-range chunks unloaded, newly
// in-range chunks enqueued nearest-first, and dirty chunks re-meshed.
func (s *Streamer) Tick(viewer mgl32.Vec3) {
	defer profiling.Track("stream.Tick")()

	center := s.centerChunk(viewer)

	s.applyResults()
	s.retireOutOfRange(center)
	s.enqueueInRange(center)
	s.remeshDirty()
}

func (s *Streamer) centerChunk(viewer mgl32.Vec3) world.ChunkCoord {
	size := s.store.ChunkSize()
	wx := int(math.Floor(float64(viewer.X())))
	wy := int(math.Floor(float64(viewer.Y())))
	wz := int(math.Floor(float64(viewer.Z())))
	coord, _, _, _ := world.SplitWorldCoord(wx, wy, wz, size)
	return coord
}

// applyResults drains the pool and commits results whose coordinate is still
// wanted. A result for a coordinate no longer Loading or Ready is stale: the
// mesh is dropped and the chunk the worker may have inserted is unloaded.
func (s *Streamer) applyResults() {
	for {
		select {
		case r := <-s.pool.Results():
			s.applyResult(r)
		default:
			return
		}
	}
}

func (s *Streamer) applyResult(r meshing.Result) {
	delete(s.remeshing, r.Coord)

	if r.Err != nil {
		log.Printf("stream: load %v: %v", r.Coord, r.Err)
		delete(s.states, r.Coord)
		return
	}

	switch s.states[r.Coord] {
	case StateLoading:
		s.meshes[r.Coord] = r.Mesh
		s.states[r.Coord] = StateReady
	case StateReady:
		// re-mesh of a dirty chunk
		s.meshes[r.Coord] = r.Mesh
	default:
		// Stale: the coordinate left the desired set while the task was in
		// flight. Discard and drop the chunk from the store.
		s.store.Unload(r.Coord)
	}
}

// retireOutOfRange walks known coordinates and advances the unload edge of
// the state machine. Ready chunks past radius+margin are marked; marked
// chunks still out of range are unloaded on the following tick, while ones
// that re-entered the radius return to Ready.
func (s *Streamer) retireOutOfRange(center world.ChunkCoord) {
	for coord, st := range s.states {
		d := coord.Chebyshev(center)
		switch st {
		case StateMarkedForUnload:
			if d <= s.radius {
				s.states[coord] = StateReady
			} else {
				s.store.Unload(coord)
				delete(s.states, coord)
				delete(s.meshes, coord)
				delete(s.remeshing, coord)
			}
		case StateReady:
			if d > s.radius+s.margin {
				s.states[coord] = StateMarkedForUnload
			}
		case StateLoading:
			if d > s.radius+s.margin {
				// Forget the coordinate; the in-flight result will be
				// treated as stale when it lands.
				delete(s.states, coord)
			}
		}
	}
}

// enqueueInRange submits loads for unloaded coordinates within the radius,
// nearest to the viewer first, lexicographic order breaking ties.
func (s *Streamer) enqueueInRange(center world.ChunkCoord) {
	var wanted []world.ChunkCoord
	for dx := -s.radius; dx <= s.radius; dx++ {
		for dy := -s.radius; dy <= s.radius; dy++ {
			for dz := -s.radius; dz <= s.radius; dz++ {
				coord := world.ChunkCoord{X: center.X + dx, Y: center.Y + dy, Z: center.Z + dz}
				if _, known := s.states[coord]; !known {
					wanted = append(wanted, coord)
				}
			}
		}
	}

	sort.Slice(wanted, func(i, j int) bool {
		di := sqDist(wanted[i], center)
		dj := sqDist(wanted[j], center)
		if di != dj {
			return di < dj
		}
		return wanted[i].Less(wanted[j])
	})

	submitted := 0
	for _, coord := range wanted {
		if submitted >= s.maxLoadsPerTick {
			return
		}
		if !s.pool.Submit(coord) {
			return // queue full, retry next tick
		}
		s.states[coord] = StateLoading
		submitted++
	}
}

// remeshDirty resubmits Ready chunks whose block data changed since their
// mesh was built.
func (s *Streamer) remeshDirty() {
	for coord, st := range s.states {
		if st != StateReady {
			continue
		}
		if _, inflight := s.remeshing[coord]; inflight {
			continue
		}
		ch, ok := s.store.Get(coord)
		if !ok || !ch.Dirty() {
			continue
		}
		if s.pool.Submit(coord) {
			s.remeshing[coord] = struct{}{}
		}
	}
}

func sqDist(a, b world.ChunkCoord) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return dx*dx + dy*dy + dz*dz
}

// State returns the streaming state of a chunk coordinate.
func (s *Streamer) State(coord world.ChunkCoord) State {
	return s.states[coord]
}

// Mesh returns the current mesh for a Ready coordinate, or nil.
func (s *Streamer) Mesh(coord world.ChunkCoord) *meshing.Mesh {
	return s.meshes[coord]
}

// Meshes returns a copy of the current coordinate→mesh mapping, the surface
// an external renderer consumes.
func (s *Streamer) Meshes() map[world.ChunkCoord]*meshing.Mesh {
	out := make(map[world.ChunkCoord]*meshing.Mesh, len(s.meshes))
	for c, m := range s.meshes {
		out[c] = m
	}
	return out
}

// CountByState tallies known coordinates per state.
func (s *Streamer) CountByState() map[State]int {
	out := make(map[State]int)
	for _, st := range s.states {
		out[st]++
	}
	return out
}

// Pending reports whether any load or re-mesh task is still outstanding.
func (s *Streamer) Pending() bool {
	if len(s.remeshing) > 0 || s.pool.QueueLen() > 0 {
		return true
	}
	for _, st := range s.states {
		if st == StateLoading {
			return true
		}
	}
	return false
}

// Close shuts down the worker pool.
func (s *Streamer) Close() {
	s.pool.Shutdown()
}
