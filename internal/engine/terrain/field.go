package terrain

import (
	"fmt"
	"math"
)

// Field is an in-memory terrain data provider. Edits go through SetType and
// SetHeight; the caller then asks the renderer to refresh the edited tile.
type Field struct {
	width  int
	depth  int
	types  []TerrainType
	height []int
}

// NewField creates a width x depth field of single-layer grass.
func NewField(width, depth int) (*Field, error) {
	if width < 1 || depth < 1 {
		return nil, fmt.Errorf("invalid field size %dx%d", width, depth)
	}
	f := &Field{
		width:  width,
		depth:  depth,
		types:  make([]TerrainType, width*depth),
		height: make([]int, width*depth),
	}
	for i := range f.height {
		f.height[i] = 1
	}
	return f, nil
}

// Width returns the X extent in tiles.
func (f *Field) Width() int { return f.width }

// Depth returns the Z extent in tiles.
func (f *Field) Depth() int { return f.depth }

// Contains reports whether column (x, z) is inside the field.
func (f *Field) Contains(x, z int) bool {
	return x >= 0 && z >= 0 && x < f.width && z < f.depth
}

// TypeAt returns the surface type at (x, z), or Grass outside the field.
func (f *Field) TypeAt(x, z int) TerrainType {
	if !f.Contains(x, z) {
		return Grass
	}
	return f.types[z*f.width+x]
}

// HeightAt returns the column height at (x, z), or 0 outside the field.
func (f *Field) HeightAt(x, z int) int {
	if !f.Contains(x, z) {
		return 0
	}
	return f.height[z*f.width+x]
}

// SetType changes the surface type of column (x, z).
func (f *Field) SetType(x, z int, t TerrainType) error {
	if !f.Contains(x, z) {
		return fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, x, z)
	}
	if !t.Valid() {
		return fmt.Errorf("set type at (%d, %d): invalid %s", x, z, t)
	}
	f.types[z*f.width+x] = t
	return nil
}

// SetHeight changes the number of stacked layers in column (x, z).
func (f *Field) SetHeight(x, z, h int) error {
	if !f.Contains(x, z) {
		return fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, x, z)
	}
	if h < 0 {
		return fmt.Errorf("set height at (%d, %d): negative height %d", x, z, h)
	}
	f.height[z*f.width+x] = h
	return nil
}

// Generate fills a field with deterministic rolling terrain: low sand basins,
// grass and dirt plains and rocky peaks. The same seed always yields the same
// field.
func Generate(width, depth int, seed int64, maxHeight int) (*Field, error) {
	f, err := NewField(width, depth)
	if err != nil {
		return nil, err
	}
	if maxHeight < 1 {
		maxHeight = 1
	}
	for z := range depth {
		for x := range width {
			n := 0.6*valueNoise(seed, float64(x)/16, float64(z)/16) +
				0.4*valueNoise(seed+1, float64(x)/6, float64(z)/6)
			h := 1 + int(n*float64(maxHeight-1)+0.5)
			f.height[z*width+x] = h
			f.types[z*width+x] = typeForNoise(n, valueNoise(seed+2, float64(x)/4, float64(z)/4))
		}
	}
	return f, nil
}

func typeForNoise(h, detail float64) TerrainType {
	switch {
	case h < 0.25:
		return Sand
	case h < 0.55:
		if detail > 0.65 {
			return Dirt
		}
		return Grass
	case h < 0.75:
		return SoftRocks
	default:
		return HardRocks
	}
}

// valueNoise returns smoothed lattice noise in [0, 1].
func valueNoise(seed int64, x, z float64) float64 {
	x0, z0 := math.Floor(x), math.Floor(z)
	fx, fz := x-x0, z-z0
	ix, iz := int64(x0), int64(z0)

	sx := fx * fx * (3 - 2*fx)
	sz := fz * fz * (3 - 2*fz)

	a := lattice(seed, ix, iz)
	b := lattice(seed, ix+1, iz)
	c := lattice(seed, ix, iz+1)
	d := lattice(seed, ix+1, iz+1)

	top := a + (b-a)*sx
	bottom := c + (d-c)*sx
	return top + (bottom-top)*sz
}

func lattice(seed, x, z int64) float64 {
	h := uint64(seed)*0x9E3779B97F4A7C15 ^ uint64(x)*0xBF58476D1CE4E5B9 ^ uint64(z)*0x94D049BB133111EB
	h ^= h >> 31
	h *= 0xD6E8FEB86659FD93
	h ^= h >> 32
	return float64(h&0xFFFFFF) / float64(0xFFFFFF)
}
