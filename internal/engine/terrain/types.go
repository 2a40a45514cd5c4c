// Package terrain provides the tile field data model and mesh types shared by
// chunks, materials and picking.
package terrain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrOutOfBounds is returned when a tile coordinate lies outside the field.
var ErrOutOfBounds = errors.New("tile out of bounds")

// TerrainType is a surface category. Its ordinal is the array-texture layer.
type TerrainType uint8

// Terrain types, in layer order.
const (
	Grass TerrainType = iota
	Dirt
	SoftRocks
	HardRocks
	Sand

	// NumTerrainTypes is the number of registered surface categories.
	NumTerrainTypes = int(Sand) + 1
)

var typeNames = [NumTerrainTypes]string{
	Grass:     "grass",
	Dirt:      "dirt",
	SoftRocks: "soft_rocks",
	HardRocks: "hard_rocks",
	Sand:      "sand",
}

// String returns the config name of the type.
func (t TerrainType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("TerrainType(%d)", t)
	}
	return typeNames[t]
}

// Valid reports whether t is one of the known terrain types.
func (t TerrainType) Valid() bool {
	return int(t) < NumTerrainTypes
}

// ShaderIndex returns the ordinal as a float with a 0.1 offset so that the
// shading stage can truncate it back to the layer index.
func (t TerrainType) ShaderIndex() float32 {
	return float32(t) + 0.1
}

// ParseTerrainType parses a config name such as "soft_rocks".
func ParseTerrainType(name string) (TerrainType, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "-", "_")
	for i, candidate := range typeNames {
		if n == candidate || n == strings.ReplaceAll(candidate, "_", "") {
			return TerrainType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown terrain type %q", name)
}

// AllTypes returns every terrain type in ordinal order.
func AllTypes() []TerrainType {
	out := make([]TerrainType, NumTerrainTypes)
	for i := range out {
		out[i] = TerrainType(i)
	}
	return out
}

// TileCoord addresses a tile. Y is the vertical layer.
type TileCoord struct {
	X, Y, Z int
}

// String returns "(x, y, z)".
func (c TileCoord) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Z)
}

// Data is the read-only terrain data provider consumed by the grid and chunks.
type Data interface {
	// Width is the field extent along X, in tiles.
	Width() int
	// Depth is the field extent along Z, in tiles.
	Depth() int
	// TypeAt returns the surface type of column (x, z).
	TypeAt(x, z int) TerrainType
	// HeightAt returns the number of stacked layers in column (x, z).
	HeightAt(x, z int) int
}

// Scale holds the world size of a single tile on each axis.
type Scale struct {
	Width  float32
	Depth  float32
	Height float32
}

// Vertex is a chunk mesh vertex.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
	Layer    float32 // material shader index
}

// Mesh holds chunk geometry ready for GPU upload. Positions are local to the
// chunk origin.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// EmptyBounds returns bounds that any point will expand.
func EmptyBounds() Bounds {
	return Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
}

// Extend grows b to include p.
func (b *Bounds) Extend(p [3]float32) {
	for i := range 3 {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}
