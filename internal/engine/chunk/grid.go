// Package chunk partitions the tile field into fixed-size chunks and defines
// the contract every chunk implementation fulfils.
package chunk

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
)

// Grid errors.
var (
	ErrOutOfBounds = terrain.ErrOutOfBounds
	ErrInvalidGrid = errors.New("invalid chunk grid")
)

// Coord is a chunk-grid coordinate.
type Coord struct {
	X, Z int
}

// String returns "[x, z]".
func (c Coord) String() string {
	return fmt.Sprintf("[%d, %d]", c.X, c.Z)
}

// Range is the half-open tile rectangle owned by a chunk.
type Range struct {
	MinX, MaxX int // [MinX, MaxX)
	MinZ, MaxZ int // [MinZ, MaxZ)
}

// Contains reports whether column (x, z) belongs to the range.
func (r Range) Contains(x, z int) bool {
	return x >= r.MinX && x < r.MaxX && z >= r.MinZ && z < r.MaxZ
}

// Width returns the number of tiles along X.
func (r Range) Width() int { return r.MaxX - r.MinX }

// Depth returns the number of tiles along Z.
func (r Range) Depth() int { return r.MaxZ - r.MinZ }

// Grid is a width x depth tile field split into size x size chunks.
// Its shape is fixed at construction.
type Grid struct {
	width  int
	depth  int
	size   int
	nx, nz int
	chunks []Chunk // x-major: chunks[cx*nz+cz]
}

// NewGrid creates an empty grid. Chunks are attached with Set.
func NewGrid(width, depth, size int) (*Grid, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: chunk size %d", ErrInvalidGrid, size)
	}
	if width < 1 || depth < 1 {
		return nil, fmt.Errorf("%w: field %dx%d", ErrInvalidGrid, width, depth)
	}
	nx := (width + size - 1) / size
	nz := (depth + size - 1) / size
	return &Grid{
		width:  width,
		depth:  depth,
		size:   size,
		nx:     nx,
		nz:     nz,
		chunks: make([]Chunk, nx*nz),
	}, nil
}

// Shape returns the number of chunks along X and Z.
func (g *Grid) Shape() (nx, nz int) { return g.nx, g.nz }

// Count returns the total number of chunks.
func (g *Grid) Count() int { return g.nx * g.nz }

// Size returns the chunk edge length in tiles.
func (g *Grid) Size() int { return g.size }

// Width returns the field extent along X.
func (g *Grid) Width() int { return g.width }

// Depth returns the field extent along Z.
func (g *Grid) Depth() int { return g.depth }

// CoordForTile returns the chunk owning column (x, z).
func (g *Grid) CoordForTile(x, z int) (Coord, error) {
	if x < 0 || z < 0 || x >= g.width || z >= g.depth {
		return Coord{}, fmt.Errorf("%w: tile (%d, %d) outside %dx%d field", ErrOutOfBounds, x, z, g.width, g.depth)
	}
	return Coord{X: x / g.size, Z: z / g.size}, nil
}

// Valid reports whether c addresses a chunk of this grid.
func (g *Grid) Valid(c Coord) bool {
	return c.X >= 0 && c.Z >= 0 && c.X < g.nx && c.Z < g.nz
}

// Range returns the tiles owned by chunk c. High-edge chunks are clipped to
// the field.
func (g *Grid) Range(c Coord) Range {
	return Range{
		MinX: c.X * g.size,
		MaxX: min((c.X+1)*g.size, g.width),
		MinZ: c.Z * g.size,
		MaxZ: min((c.Z+1)*g.size, g.depth),
	}
}

// Origin returns the local origin of chunk c in world units.
func (g *Grid) Origin(c Coord, scale terrain.Scale) mgl32.Vec3 {
	return ChunkOrigin(c, g.size, scale)
}

// ChunkOrigin returns (cx*size*tileWidth, 0, cz*size*tileDepth).
func ChunkOrigin(c Coord, size int, scale terrain.Scale) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(c.X*size) * scale.Width,
		0,
		float32(c.Z*size) * scale.Depth,
	}
}

// At returns the chunk at c, or nil if c is outside the grid or unset.
func (g *Grid) At(c Coord) Chunk {
	if !g.Valid(c) {
		return nil
	}
	return g.chunks[c.X*g.nz+c.Z]
}

// Set attaches a chunk at c.
func (g *Grid) Set(c Coord, ch Chunk) error {
	if !g.Valid(c) {
		return fmt.Errorf("%w: chunk %s outside %dx%d grid", ErrOutOfBounds, c, g.nx, g.nz)
	}
	g.chunks[c.X*g.nz+c.Z] = ch
	return nil
}

// ChunkForTile returns the chunk owning column (x, z).
func (g *Grid) ChunkForTile(x, z int) (Chunk, error) {
	c, err := g.CoordForTile(x, z)
	if err != nil {
		return nil, err
	}
	return g.At(c), nil
}

// Each calls fn for every chunk coordinate in row-major order: X outer,
// Z inner.
func (g *Grid) Each(fn func(c Coord, ch Chunk)) {
	for x := range g.nx {
		for z := range g.nz {
			fn(Coord{X: x, Z: z}, g.chunks[x*g.nz+z])
		}
	}
}
