package registry

import (
	"errors"
	"fmt"

	"voxelcore/internal/world"
)

// ErrUnknownBlockType is returned when a block type was never registered.
var ErrUnknownBlockType = errors.New("unknown block type")

// BlockDefinition holds the material and visual properties of a block type.
type BlockDefinition struct {
	ID     world.BlockType
	Name   string
	Opaque bool
	// Textures maps each world.BlockFace to a texture layer index.
	Textures [6]int
}

// The registry is initialized once at startup and read-only afterwards,
// so concurrent lookups need no locking.
var (
	blocks = make(map[world.BlockType]*BlockDefinition)
	byName = make(map[string]world.BlockType)
)

// Init replaces the registry contents. The definition set must contain air
// as ID 0 with Opaque=false; Init enforces that so the mesher's "absent
// reads as air" policy stays sound.
func Init(defs []BlockDefinition) error {
	next := make(map[world.BlockType]*BlockDefinition, len(defs))
	nextNames := make(map[string]world.BlockType, len(defs))
	for i := range defs {
		def := defs[i]
		if _, dup := next[def.ID]; dup {
			return fmt.Errorf("duplicate block id %d (%s)", def.ID, def.Name)
		}
		if def.ID == world.BlockTypeAir && def.Opaque {
			return fmt.Errorf("air must not be opaque")
		}
		next[def.ID] = &def
		nextNames[def.Name] = def.ID
	}
	if _, ok := next[world.BlockTypeAir]; !ok {
		return fmt.Errorf("block set must define air (id 0)")
	}
	blocks = next
	byName = nextNames
	return nil
}

// InitDefaults installs the compiled-in block set.
func InitDefaults() {
	if err := Init(DefaultBlocks()); err != nil {
		panic(err) // the default set is known-valid
	}
}

// DefaultBlocks returns the stock block definitions.
func DefaultBlocks() []BlockDefinition {
	return []BlockDefinition{
		{ID: world.BlockTypeAir, Name: "air", Opaque: false},
		{ID: world.BlockTypeGrass, Name: "grass", Opaque: true,
			Textures: [6]int{1, 1, 0, 2, 1, 1}},
		{ID: world.BlockTypeDirt, Name: "dirt", Opaque: true,
			Textures: [6]int{2, 2, 2, 2, 2, 2}},
		{ID: world.BlockTypeStone, Name: "stone", Opaque: true,
			Textures: [6]int{3, 3, 3, 3, 3, 3}},
		{ID: world.BlockTypeBedrock, Name: "bedrock", Opaque: true,
			Textures: [6]int{4, 4, 4, 4, 4, 4}},
		{ID: world.BlockTypeWater, Name: "water", Opaque: false,
			Textures: [6]int{5, 5, 5, 5, 5, 5}},
	}
}

// Lookup returns the definition for a block type.
func Lookup(bt world.BlockType) (*BlockDefinition, error) {
	def, ok := blocks[bt]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBlockType, bt)
	}
	return def, nil
}

// Known reports whether a block type is registered.
func Known(bt world.BlockType) bool {
	_, ok := blocks[bt]
	return ok
}

// ByName resolves a block name to its type.
func ByName(name string) (world.BlockType, bool) {
	bt, ok := byName[name]
	return bt, ok
}

// Opaque reports whether a block type blocks sight of the face behind it.
// Unregistered types fall back to air properties (non-opaque) rather than
// failing; the miss is a programmer error surfaced by Lookup.
func Opaque(bt world.BlockType) bool {
	def, ok := blocks[bt]
	if !ok {
		return false
	}
	return def.Opaque
}

// TextureLayer returns the texture layer index for a block face.
func TextureLayer(bt world.BlockType, face world.BlockFace) int {
	def, ok := blocks[bt]
	if !ok {
		return 0
	}
	return def.Textures[face]
}
