package world

import (
	"encoding/binary"
	"math"

	xxhash "github.com/cespare/xxhash/v2"
)

// Deterministic 2D value noise with multiple octaves. Lattice values come
// from xxhash over the integer lattice point and seed, so the field is
// stable across runs and platforms and safe to sample concurrently.

// fade is the smoothstep-like curve 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// latticeValue hashes a lattice point to [0,1].
func latticeValue(x, z int64, seed int64) float64 {
	var b [24]byte
	binary.LittleEndian.PutUint64(b[0:8], uint64(x))
	binary.LittleEndian.PutUint64(b[8:16], uint64(z))
	binary.LittleEndian.PutUint64(b[16:24], uint64(seed))
	h := xxhash.Sum64(b[:])
	return float64(h&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

func valueNoise2D(x, z float64, seed int64) float64 {
	x0 := math.Floor(x)
	z0 := math.Floor(z)

	fx := fade(x - x0)
	fz := fade(z - z0)

	ix0 := int64(x0)
	iz0 := int64(z0)

	v00 := latticeValue(ix0, iz0, seed)
	v10 := latticeValue(ix0+1, iz0, seed)
	v01 := latticeValue(ix0, iz0+1, seed)
	v11 := latticeValue(ix0+1, iz0+1, seed)

	i0 := lerp(v00, v10, fx)
	i1 := lerp(v01, v11, fx)
	return lerp(i0, i1, fz) // [0,1]
}

func octaveNoise2D(x, z float64, seed int64, octaves int, persistence, lacunarity float64) float64 {
	amplitude := 1.0
	frequency := 1.0
	sum := 0.0
	norm := 0.0
	for i := 0; i < octaves; i++ {
		v := valueNoise2D(x*frequency, z*frequency, seed+int64(i*131))
		sum += v * amplitude
		norm += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm // [0,1]
}
