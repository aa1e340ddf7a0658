package meshing

import (
	"voxelcore/internal/profiling"
	"voxelcore/internal/registry"
	"voxelcore/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// NeighborLookup resolves a chunk coordinate to its loaded chunk, or nil
// when the chunk is absent.
type NeighborLookup func(world.ChunkCoord) *world.Chunk

// dirSpec describes one face direction: the outward normal, the two
// in-plane axes (0=x, 1=y, 2=z) and their unit steps.
type dirSpec struct {
	face   world.BlockFace
	normal [3]int
	u, v   int
	du, dv [3]int
}

var directions = [6]dirSpec{
	{world.FaceEast, [3]int{1, 0, 0}, 1, 2, [3]int{0, 1, 0}, [3]int{0, 0, 1}},
	{world.FaceWest, [3]int{-1, 0, 0}, 1, 2, [3]int{0, 1, 0}, [3]int{0, 0, 1}},
	{world.FaceTop, [3]int{0, 1, 0}, 0, 2, [3]int{1, 0, 0}, [3]int{0, 0, 1}},
	{world.FaceBottom, [3]int{0, -1, 0}, 0, 2, [3]int{1, 0, 0}, [3]int{0, 0, 1}},
	{world.FaceNorth, [3]int{0, 0, 1}, 0, 1, [3]int{1, 0, 0}, [3]int{0, 1, 0}},
	{world.FaceSouth, [3]int{0, 0, -1}, 0, 1, [3]int{1, 0, 0}, [3]int{0, 1, 0}},
}

// Build converts a chunk's block data into a culled surface mesh. A face is
// emitted only when the adjacent block, possibly in a neighbor chunk
// resolved through lookup, is non-opaque. An unloaded neighbor's boundary
// counts as opaque so the edge of the loaded world never shows open seams.
// Co-planar faces of the same block type are greedily merged into larger
// quads. Building is deterministic: unchanged inputs give identical meshes.
func Build(c *world.Chunk, lookup NeighborLookup) *Mesh {
	defer profiling.Track("meshing.Build")()

	mesh := &Mesh{}
	size := c.Size()

	for _, dir := range directions {
		perp := 3 - dir.u - dir.v

		for p := 0; p < size; p++ {
			mask := buildMask(c, lookup, dir, perp, p)
			mergeMask(mesh, c, dir, perp, p, mask, size)
		}
	}
	return mesh
}

// buildMask computes, for one layer along the direction's normal axis, the
// block type of every cell whose face is visible (0 = hidden or air).
func buildMask(c *world.Chunk, lookup NeighborLookup, dir dirSpec, perp, p int) []world.BlockType {
	size := c.Size()
	mask := make([]world.BlockType, size*size)

	for u := 0; u < size; u++ {
		for v := 0; v < size; v++ {
			var pos [3]int
			pos[dir.u] = u
			pos[dir.v] = v
			pos[perp] = p

			bt := c.Block(pos[0], pos[1], pos[2])
			if bt == world.BlockTypeAir {
				continue
			}
			if faceVisible(c, lookup, pos, dir.normal) {
				mask[u*size+v] = bt
			}
		}
	}
	return mask
}

// faceVisible reports whether the block at local pos shows its face toward
// normal. The adjacent block may live in a neighbor chunk; an unloaded
// neighbor is treated as opaque.
func faceVisible(c *world.Chunk, lookup NeighborLookup, pos, normal [3]int) bool {
	size := c.Size()
	adj := [3]int{pos[0] + normal[0], pos[1] + normal[1], pos[2] + normal[2]}

	if adj[0] >= 0 && adj[0] < size &&
		adj[1] >= 0 && adj[1] < size &&
		adj[2] >= 0 && adj[2] < size {
		return !registry.Opaque(c.Block(adj[0], adj[1], adj[2]))
	}

	ncoord := world.ChunkCoord{
		X: c.Coord.X + normal[0],
		Y: c.Coord.Y + normal[1],
		Z: c.Coord.Z + normal[2],
	}
	nb := lookup(ncoord)
	if nb == nil {
		return false // unloaded boundary reads as opaque
	}
	lx := world.WrapLocal(adj[0], size)
	ly := world.WrapLocal(adj[1], size)
	lz := world.WrapLocal(adj[2], size)
	return !registry.Opaque(nb.Block(lx, ly, lz))
}

// mergeMask greedily merges equal-type runs in the mask and emits quads.
func mergeMask(mesh *Mesh, c *world.Chunk, dir dirSpec, perp, p int, mask []world.BlockType, size int) {
	visited := make([]bool, len(mask))

	for u := 0; u < size; u++ {
		for v := 0; v < size; {
			bt := mask[u*size+v]
			if bt == world.BlockTypeAir || visited[u*size+v] {
				v++
				continue
			}
			// extend along v
			width := 1
			for v+width < size && mask[u*size+v+width] == bt && !visited[u*size+v+width] {
				width++
			}
			// extend along u
			height := 1
			for u+height < size {
				ok := true
				for w := v; w < v+width; w++ {
					if mask[(u+height)*size+w] != bt || visited[(u+height)*size+w] {
						ok = false
						break
					}
				}
				if !ok {
					break
				}
				height++
			}
			for hu := u; hu < u+height; hu++ {
				for hv := v; hv < v+width; hv++ {
					visited[hu*size+hv] = true
				}
			}
			emitQuad(mesh, c, dir, perp, [3]int{p, u, v}, width, height, bt)
			v += width
		}
	}
}

// emitQuad appends one merged face as four vertices and six indices.
// start is (layer, u, v); the quad spans height cells along u and width
// cells along v.
func emitQuad(mesh *Mesh, c *world.Chunk, dir dirSpec, perp int, start [3]int, width, height int, bt world.BlockType) {
	size := c.Size()
	base := mgl32.Vec3{
		float32(c.Coord.X * size),
		float32(c.Coord.Y * size),
		float32(c.Coord.Z * size),
	}

	var corner [3]float32
	corner[perp] = float32(start[0])
	if dir.normal[perp] > 0 {
		corner[perp]++
	}
	corner[dir.u] = float32(start[1])
	corner[dir.v] = float32(start[2])

	normal := mgl32.Vec3{float32(dir.normal[0]), float32(dir.normal[1]), float32(dir.normal[2])}
	layer := float32(registry.TextureLayer(bt, dir.face))

	at := func(du, dv int) mgl32.Vec3 {
		return base.Add(mgl32.Vec3{
			corner[0] + float32(dir.du[0]*du) + float32(dir.dv[0]*dv),
			corner[1] + float32(dir.du[1]*du) + float32(dir.dv[1]*dv),
			corner[2] + float32(dir.du[2]*du) + float32(dir.dv[2]*dv),
		})
	}

	verts := [4]Vertex{
		{Position: at(0, 0), Normal: normal, Layer: layer},
		{Position: at(height, 0), Normal: normal, Layer: layer},
		{Position: at(height, width), Normal: normal, Layer: layer},
		{Position: at(0, width), Normal: normal, Layer: layer},
	}

	// Flip winding so the front face stays CCW with the normal outward.
	if (dir.normal[perp] < 0) != (perp == 1) {
		verts[1], verts[3] = verts[3], verts[1]
	}

	idx := uint32(len(mesh.Vertices))
	mesh.Vertices = append(mesh.Vertices, verts[:]...)
	mesh.Indices = append(mesh.Indices, idx, idx+1, idx+2, idx, idx+2, idx+3)
}
