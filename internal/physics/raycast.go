package physics

import (
	"math"

	"voxelcore/internal/profiling"
	"voxelcore/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 5.0
)

// RaycastResult reports the first solid block hit along a ray, plus the air
// block in front of the hit face. Break edits target HitPosition; place
// edits target AdjacentPosition.
type RaycastResult struct {
	HitPosition      [3]int
	AdjacentPosition [3]int
	Distance         float32
	Hit              bool
}

// Raycast walks a ray through the block grid from start along direction,
// sampling the store until a non-air block is found or maxDist is reached.
// Unloaded chunks read as air and are stepped through.
func Raycast(start, direction mgl32.Vec3, minDist, maxDist float32, s *world.Store) RaycastResult {
	defer profiling.Track("physics.Raycast")()

	const stepSize = float32(0.02)
	steps := int(maxDist / stepSize)

	var lastEmpty [3]int
	haveEmpty := false

	for i := 0; i <= steps; i++ {
		dist := float32(i) * stepSize
		if dist < minDist {
			continue
		}

		pos := start.Add(direction.Mul(dist))
		blockPos := [3]int{
			int(math.Floor(float64(pos.X()))),
			int(math.Floor(float64(pos.Y()))),
			int(math.Floor(float64(pos.Z()))),
		}

		if !s.IsAir(blockPos[0], blockPos[1], blockPos[2]) {
			r := RaycastResult{
				HitPosition: blockPos,
				Distance:    dist,
				Hit:         true,
			}
			if haveEmpty {
				r.AdjacentPosition = lastEmpty
			} else {
				r.AdjacentPosition = blockPos
			}
			return r
		}

		lastEmpty = blockPos
		haveEmpty = true
	}

	return RaycastResult{}
}
