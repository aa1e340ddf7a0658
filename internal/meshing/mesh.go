package meshing

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is one corner of a mesh face: position and normal in world space,
// plus the texture layer index for the face's block material.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Layer    float32
}

// Mesh is an indexed triangle list for one chunk. A Mesh is immutable once
// built; rebuilds replace it wholesale.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// FaceCount returns the number of quads (two triangles each).
func (m *Mesh) FaceCount() int {
	return len(m.Indices) / 6
}

// Empty reports whether the mesh has no geometry.
func (m *Mesh) Empty() bool {
	return len(m.Indices) == 0
}
