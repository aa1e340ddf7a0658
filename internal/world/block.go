package world

// BlockType identifies a voxel material. Zero is always air.
type BlockType uint16

const (
	BlockTypeAir BlockType = iota
	BlockTypeGrass
	BlockTypeDirt
	BlockTypeStone
	BlockTypeBedrock
	BlockTypeWater
)

// BlockFace identifies a face of a block. The order matches the mesher's
// direction table: +X, -X, +Y, -Y, +Z, -Z.
type BlockFace int

const (
	FaceEast BlockFace = iota
	FaceWest
	FaceTop
	FaceBottom
	FaceNorth
	FaceSouth
)

func (f BlockFace) String() string {
	switch f {
	case FaceEast:
		return "east"
	case FaceWest:
		return "west"
	case FaceTop:
		return "top"
	case FaceBottom:
		return "bottom"
	case FaceNorth:
		return "north"
	case FaceSouth:
		return "south"
	}
	return "unknown"
}
