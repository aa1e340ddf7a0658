package meshing

import (
	"os"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"voxelcore/internal/registry"
	"voxelcore/internal/world"
)

func TestMain(m *testing.M) {
	registry.InitDefaults()
	os.Exit(m.Run())
}

func nilLookup(world.ChunkCoord) *world.Chunk { return nil }

func storeLookup(s *world.Store) NeighborLookup {
	return func(coord world.ChunkCoord) *world.Chunk {
		ch, ok := s.Get(coord)
		if !ok {
			return nil
		}
		return ch
	}
}

// airStore loads the given chunks of an all-air world and returns the store.
func airStore(t *testing.T, size int, coords ...world.ChunkCoord) *world.Store {
	t.Helper()
	s := world.NewStore(size, 0, world.NewFlatGenerator(-1))
	for _, c := range coords {
		if _, err := s.LoadOrCreate(c); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func mustSet(t *testing.T, s *world.Store, wx, wy, wz int, bt world.BlockType) {
	t.Helper()
	if err := s.SetBlockAt(wx, wy, wz, bt); err != nil {
		t.Fatalf("SetBlockAt(%d,%d,%d): %v", wx, wy, wz, err)
	}
}

func TestSingleBlockSixFaces(t *testing.T) {
	s := airStore(t, 8, world.ChunkCoord{X: 0, Y: 0, Z: 0})
	mustSet(t, s, 3, 3, 3, world.BlockTypeGrass)

	ch, _ := s.Get(world.ChunkCoord{X: 0, Y: 0, Z: 0})
	mesh := Build(ch, nilLookup)

	if got := mesh.FaceCount(); got != 6 {
		t.Errorf("FaceCount = %d, want 6", got)
	}
	if len(mesh.Vertices) != 24 {
		t.Errorf("vertices = %d, want 24", len(mesh.Vertices))
	}
	if len(mesh.Indices) != 36 {
		t.Errorf("indices = %d, want 36", len(mesh.Indices))
	}
}

func TestAdjacentSameTypeMerges(t *testing.T) {
	s := airStore(t, 8, world.ChunkCoord{X: 0, Y: 0, Z: 0})
	mustSet(t, s, 3, 3, 3, world.BlockTypeStone)
	mustSet(t, s, 4, 3, 3, world.BlockTypeStone)

	ch, _ := s.Get(world.ChunkCoord{X: 0, Y: 0, Z: 0})
	mesh := Build(ch, nilLookup)

	// A 2x1x1 bar still has six faces once the shared pair is culled and the
	// co-planar side faces merge into single quads.
	if got := mesh.FaceCount(); got != 6 {
		t.Errorf("FaceCount = %d, want 6", got)
	}
}

func TestAdjacentDifferentTypesDoNotMerge(t *testing.T) {
	s := airStore(t, 8, world.ChunkCoord{X: 0, Y: 0, Z: 0})
	mustSet(t, s, 3, 3, 3, world.BlockTypeStone)
	mustSet(t, s, 4, 3, 3, world.BlockTypeDirt)

	ch, _ := s.Get(world.ChunkCoord{X: 0, Y: 0, Z: 0})
	mesh := Build(ch, nilLookup)

	// Shared faces are culled (both opaque); nothing merges across types.
	if got := mesh.FaceCount(); got != 10 {
		t.Errorf("FaceCount = %d, want 10", got)
	}
}

func TestNonOpaqueNeighborKeepsFace(t *testing.T) {
	s := airStore(t, 8, world.ChunkCoord{X: 0, Y: 0, Z: 0})
	mustSet(t, s, 3, 3, 3, world.BlockTypeStone)
	mustSet(t, s, 4, 3, 3, world.BlockTypeWater)

	ch, _ := s.Get(world.ChunkCoord{X: 0, Y: 0, Z: 0})
	mesh := Build(ch, nilLookup)

	// Stone keeps all six faces (water is transparent); water hides only the
	// face pressed against the stone.
	if got := mesh.FaceCount(); got != 11 {
		t.Errorf("FaceCount = %d, want 11", got)
	}
}

func TestSolidColumnsHaveNoInternalFaces(t *testing.T) {
	// Flat terrain to y=3 in an 8-chunk: every interior face between solid
	// blocks must be culled, leaving just one merged top quad. Side and
	// bottom faces sit on unloaded boundaries and read as covered.
	s := world.NewStore(8, 0, world.NewFlatGenerator(3))
	ch, err := s.LoadOrCreate(world.ChunkCoord{X: 0, Y: 0, Z: 0})
	if err != nil {
		t.Fatal(err)
	}
	mesh := Build(ch, storeLookup(s))

	if got := mesh.FaceCount(); got != 1 {
		t.Errorf("FaceCount = %d, want 1 merged surface quad", got)
	}
	for _, v := range mesh.Vertices {
		if v.Position.Y() != 4 {
			t.Fatalf("surface vertex at y=%v, want 4", v.Position.Y())
		}
		if v.Normal != (mgl32.Vec3{0, 1, 0}) {
			t.Fatalf("surface normal %v, want +Y", v.Normal)
		}
	}
}

func TestUnloadedNeighborsReadAsOpaque(t *testing.T) {
	// A fully solid chunk with no loaded neighbors must produce no faces at
	// all: the edge of the loaded world shows no open seams.
	s := world.NewStore(8, 0, world.NewFlatGenerator(7))
	ch, err := s.LoadOrCreate(world.ChunkCoord{X: 0, Y: 0, Z: 0})
	if err != nil {
		t.Fatal(err)
	}
	mesh := Build(ch, storeLookup(s))
	if !mesh.Empty() {
		t.Errorf("FaceCount = %d for a buried chunk, want 0", mesh.FaceCount())
	}
}

func TestLoadedAirNeighborExposesBoundaryFace(t *testing.T) {
	s := world.NewStore(8, 0, world.NewFlatGenerator(7))
	ch, err := s.LoadOrCreate(world.ChunkCoord{X: 0, Y: 0, Z: 0})
	if err != nil {
		t.Fatal(err)
	}
	// loading the all-air chunk above exposes the top boundary
	if _, err := s.LoadOrCreate(world.ChunkCoord{X: 0, Y: 1, Z: 0}); err != nil {
		t.Fatal(err)
	}

	mesh := Build(ch, storeLookup(s))
	if got := mesh.FaceCount(); got != 1 {
		t.Errorf("FaceCount = %d, want 1 merged top quad", got)
	}
	for _, v := range mesh.Vertices {
		if v.Position.Y() != 8 {
			t.Fatalf("boundary face vertex at y=%v, want 8", v.Position.Y())
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	s := world.NewStore(16, 0, world.NewNoiseGenerator(42))
	ch, err := s.LoadOrCreate(world.ChunkCoord{X: 0, Y: 2, Z: 0})
	if err != nil {
		t.Fatal(err)
	}
	a := Build(ch, storeLookup(s))
	b := Build(ch, storeLookup(s))
	if !reflect.DeepEqual(a, b) {
		t.Error("repeat builds of an unchanged chunk differ")
	}
}

func TestQuadWindingFollowsNormal(t *testing.T) {
	s := airStore(t, 8, world.ChunkCoord{X: 0, Y: 0, Z: 0})
	mustSet(t, s, 3, 3, 3, world.BlockTypeStone)

	ch, _ := s.Get(world.ChunkCoord{X: 0, Y: 0, Z: 0})
	mesh := Build(ch, nilLookup)

	// Every triangle's geometric normal must point the same way as the
	// vertex normal it was emitted with.
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		a := mesh.Vertices[mesh.Indices[i]]
		b := mesh.Vertices[mesh.Indices[i+1]]
		c := mesh.Vertices[mesh.Indices[i+2]]
		cross := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position))
		if cross.Dot(a.Normal) <= 0 {
			t.Fatalf("triangle %d wound against its normal %v", i/3, a.Normal)
		}
	}
}

func BenchmarkBuildSurfaceChunk(b *testing.B) {
	s := world.NewStore(16, 0, world.NewNoiseGenerator(42))
	coords := []world.ChunkCoord{
		{X: 0, Y: 2, Z: 0}, {X: 1, Y: 2, Z: 0}, {X: -1, Y: 2, Z: 0}, {X: 0, Y: 2, Z: 1},
		{X: 0, Y: 2, Z: -1}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 3, Z: 0},
	}
	for _, c := range coords {
		if _, err := s.LoadOrCreate(c); err != nil {
			b.Fatal(err)
		}
	}
	ch, _ := s.Get(world.ChunkCoord{X: 0, Y: 2, Z: 0})
	lookup := storeLookup(s)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Build(ch, lookup)
	}
}
