package world

// ChunkCoord identifies a chunk's position in chunk-grid units.
type ChunkCoord struct {
	X, Y, Z int
}

// Less orders coordinates lexicographically, giving deterministic iteration
// wherever chunk order matters (streaming tie-breaks, persistence sweeps).
func (c ChunkCoord) Less(o ChunkCoord) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.Z < o.Z
}

// Chebyshev returns the chessboard distance to another chunk coordinate.
func (c ChunkCoord) Chebyshev(o ChunkCoord) int {
	d := absInt(c.X - o.X)
	if dy := absInt(c.Y - o.Y); dy > d {
		d = dy
	}
	if dz := absInt(c.Z - o.Z); dz > d {
		d = dz
	}
	return d
}

// SplitWorldCoord translates a world-space block position into the owning
// chunk coordinate and the local offset inside that chunk. Local offsets are
// always in [0, size); negative world coordinates never wrap.
func SplitWorldCoord(wx, wy, wz, size int) (ChunkCoord, int, int, int) {
	coord := ChunkCoord{
		X: floorDiv(wx, size),
		Y: floorDiv(wy, size),
		Z: floorDiv(wz, size),
	}
	return coord, mod(wx, size), mod(wy, size), mod(wz, size)
}

// WrapLocal maps an out-of-range local coordinate (such as -1 or size) into
// the adjacent chunk's local space.
func WrapLocal(v, size int) int {
	return mod(v, size)
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// mod returns the non-negative remainder of a/b.
func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
