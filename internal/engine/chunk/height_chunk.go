package chunk

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/engine/material"
	"github.com/Faultbox/midgard-terrain/internal/engine/picking"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/engine/texture"
	"github.com/Faultbox/midgard-terrain/internal/logger"
)

// HeightChunk is the default chunk: every column is a stack of box voxels,
// meshed as a top quad plus walls where neighbouring columns differ in
// height.
//
// A column owns the walls on its -X and -Z faces, whichever side is taller,
// plus its +X/+Z faces on the field border. An edit to the last column of a
// chunk therefore changes geometry in the next chunk, never the previous one.
type HeightChunk struct {
	data        terrain.Data
	host        Host
	coord       Coord
	size        int
	textureSize int
	mat         *material.Material

	scale   terrain.Scale
	origin  mgl32.Vec3
	rng     Range
	columns [][]Voxel // indexed by (z-MinZ)*width + (x-MinX)
	bounds  picking.AABB
	solid   bool

	mesh       *terrain.Mesh
	controlMap *texture.Texture
	revision   uint64
	missing    map[terrain.TerrainType]bool
}

// NewHeightChunk returns an uninitialised chunk.
func NewHeightChunk() Chunk {
	return &HeightChunk{}
}

// Initialise implements Chunk.
func (c *HeightChunk) Initialise(data terrain.Data, host Host, cx, cz, size, textureSize int, mat *material.Material) {
	c.data = data
	c.host = host
	c.coord = Coord{X: cx, Z: cz}
	c.size = size
	c.textureSize = textureSize
	c.mat = mat
	c.scale = host.TileScale()
	c.origin = ChunkOrigin(c.coord, size, c.scale)
	c.rng = Range{
		MinX: cx * size,
		MaxX: min((cx+1)*size, data.Width()),
		MinZ: cz * size,
		MaxZ: min((cz+1)*size, data.Depth()),
	}
	c.missing = make(map[terrain.TerrainType]bool)
}

// Coord returns the chunk-grid coordinate.
func (c *HeightChunk) Coord() Coord { return c.coord }

// Range returns the tiles owned by the chunk.
func (c *HeightChunk) Range() Range { return c.rng }

// Origin implements Renderable.
func (c *HeightChunk) Origin() mgl32.Vec3 { return c.origin }

// Footprint implements Renderable.
func (c *HeightChunk) Footprint() mgl32.Vec2 {
	return mgl32.Vec2{
		float32(c.rng.Width()) * c.scale.Width,
		float32(c.rng.Depth()) * c.scale.Depth,
	}
}

// Material implements Renderable.
func (c *HeightChunk) Material() *material.Material { return c.mat }

// Mesh implements Renderable. It is nil until the first UpdateMesh.
func (c *HeightChunk) Mesh() *terrain.Mesh { return c.mesh }

// Revision implements Renderable.
func (c *HeightChunk) Revision() uint64 { return c.revision }

// ControlMap implements Renderable.
func (c *HeightChunk) ControlMap() *texture.Texture { return c.controlMap }

// CreateVoxels implements Chunk.
func (c *HeightChunk) CreateVoxels() {
	c.rebuildVoxels()
}

// UpdateMesh implements Chunk.
func (c *HeightChunk) UpdateMesh() {
	c.rebuildVoxels()
	c.mesh = c.buildMesh()
	c.controlMap = c.buildControlMap()
	c.revision++

	logger.Debug("chunk mesh rebuilt",
		zap.Stringer("chunk", c.coord),
		zap.Int("vertices", len(c.mesh.Vertices)),
		zap.Uint64("revision", c.revision),
	)
}

// GetVoxel implements Chunk.
func (c *HeightChunk) GetVoxel(tile terrain.TileCoord) (*Voxel, error) {
	if !c.rng.Contains(tile.X, tile.Z) {
		return nil, fmt.Errorf("%w: tile %s not in chunk %s", ErrOutOfBounds, tile, c.coord)
	}
	col := c.columns[c.index(tile.X, tile.Z)]
	if tile.Y < 0 || tile.Y >= len(col) {
		return nil, fmt.Errorf("%w: tile %s above column height %d", ErrOutOfBounds, tile, len(col))
	}
	// Columns are reused by the next rebuild.
	v := col[tile.Y]
	return &v, nil
}

// Raycast implements picking.Collider over this chunk's voxels.
func (c *HeightChunk) Raycast(ray picking.Ray, maxDist float32) (picking.Hit, bool) {
	if !c.solid {
		return picking.Hit{}, false
	}
	if t, ok := ray.IntersectAABB(c.bounds); !ok || t > maxDist {
		return picking.Hit{}, false
	}

	var best picking.Hit
	found := false
	for i := range c.columns {
		col := c.columns[i]
		for y := range col {
			h, ok := col[y].Raycast(ray, maxDist)
			if !ok || (found && h.Distance >= best.Distance) {
				continue
			}
			best, found = h, true
		}
	}
	return best, found
}

func (c *HeightChunk) index(x, z int) int {
	return (z-c.rng.MinZ)*c.rng.Width() + (x - c.rng.MinX)
}

func (c *HeightChunk) rebuildVoxels() {
	w, d := c.rng.Width(), c.rng.Depth()
	if len(c.columns) != w*d {
		c.columns = make([][]Voxel, w*d)
	}
	c.solid = false

	for z := c.rng.MinZ; z < c.rng.MaxZ; z++ {
		for x := c.rng.MinX; x < c.rng.MaxX; x++ {
			h := max(c.data.HeightAt(x, z), 0)
			t := c.data.TypeAt(x, z)
			col := c.columns[c.index(x, z)][:0]
			for y := range h {
				col = append(col, Voxel{
					Coord:  terrain.TileCoord{X: x, Y: y, Z: z},
					Type:   t,
					Bounds: c.voxelBounds(x, y, z),
				})
			}
			c.columns[c.index(x, z)] = col

			if h == 0 {
				continue
			}
			colBox := picking.NewAABB(col[0].Bounds.Min, col[h-1].Bounds.Max)
			if !c.solid {
				c.bounds, c.solid = colBox, true
			} else {
				c.bounds = c.bounds.Union(colBox)
			}
		}
	}
}

func (c *HeightChunk) voxelBounds(x, y, z int) picking.AABB {
	lo := mgl32.Vec3{
		float32(x) * c.scale.Width,
		float32(y) * c.scale.Height,
		float32(z) * c.scale.Depth,
	}
	return picking.AABB{
		Min: lo,
		Max: lo.Add(mgl32.Vec3{c.scale.Width, c.scale.Height, c.scale.Depth}),
	}
}

func (c *HeightChunk) layer(t terrain.TerrainType) float32 {
	info, err := c.host.GetMaterialInfo(t)
	if err != nil {
		if !c.missing[t] {
			c.missing[t] = true
			logger.Warn("chunk uses unregistered terrain type",
				zap.Stringer("chunk", c.coord),
				zap.Stringer("type", t),
				zap.Error(err),
			)
		}
		return t.ShaderIndex()
	}
	return info.ShaderIndex
}

func (c *HeightChunk) buildMesh() *terrain.Mesh {
	b := terrain.NewMeshBuilder()
	tw, td, th := c.scale.Width, c.scale.Depth, c.scale.Height
	width, depth := c.data.Width(), c.data.Depth()

	for z := c.rng.MinZ; z < c.rng.MaxZ; z++ {
		for x := c.rng.MinX; x < c.rng.MaxX; x++ {
			h := max(c.data.HeightAt(x, z), 0)
			own := c.layer(c.data.TypeAt(x, z))

			// Local corner of the column.
			lx := float32(x-c.rng.MinX) * tw
			lz := float32(z-c.rng.MinZ) * td
			top := float32(h) * th

			if h > 0 {
				b.AddQuad([4][3]float32{
					{lx, top, lz + td},
					{lx + tw, top, lz + td},
					{lx, top, lz},
					{lx + tw, top, lz},
				}, own)
			}

			// -X face, shared with column x-1.
			if hn := c.neighbourHeight(x-1, z); hn != h {
				lo, hi := float32(min(h, hn))*th, float32(max(h, hn))*th
				if h > hn {
					wallX(b, lx, lz, lz+td, lo, hi, false, own)
				} else {
					wallX(b, lx, lz, lz+td, lo, hi, true, c.layer(c.data.TypeAt(x-1, z)))
				}
			}
			// -Z face, shared with column z-1.
			if hn := c.neighbourHeight(x, z-1); hn != h {
				lo, hi := float32(min(h, hn))*th, float32(max(h, hn))*th
				if h > hn {
					wallZ(b, lz, lx, lx+tw, lo, hi, false, own)
				} else {
					wallZ(b, lz, lx, lx+tw, lo, hi, true, c.layer(c.data.TypeAt(x, z-1)))
				}
			}
			// Field border on the high sides.
			if x == width-1 && h > 0 {
				wallX(b, lx+tw, lz, lz+td, 0, top, true, own)
			}
			if z == depth-1 && h > 0 {
				wallZ(b, lz+td, lx, lx+tw, 0, top, true, own)
			}
		}
	}

	return b.Build()
}

// neighbourHeight returns the height of column (x, z), treating columns
// outside the field as empty.
func (c *HeightChunk) neighbourHeight(x, z int) int {
	if x < 0 || z < 0 || x >= c.data.Width() || z >= c.data.Depth() {
		return 0
	}
	return max(c.data.HeightAt(x, z), 0)
}

// wallX adds a wall in the plane x = px spanning [z0, z1] x [y0, y1].
func wallX(b *terrain.MeshBuilder, px, z0, z1, y0, y1 float32, facingPositive bool, layer float32) {
	if facingPositive {
		b.AddQuad([4][3]float32{{px, y0, z1}, {px, y0, z0}, {px, y1, z1}, {px, y1, z0}}, layer)
		return
	}
	b.AddQuad([4][3]float32{{px, y0, z0}, {px, y0, z1}, {px, y1, z0}, {px, y1, z1}}, layer)
}

// wallZ adds a wall in the plane z = pz spanning [x0, x1] x [y0, y1].
func wallZ(b *terrain.MeshBuilder, pz, x0, x1, y0, y1 float32, facingPositive bool, layer float32) {
	if facingPositive {
		b.AddQuad([4][3]float32{{x0, y0, pz}, {x1, y0, pz}, {x0, y1, pz}, {x1, y1, pz}}, layer)
		return
	}
	b.AddQuad([4][3]float32{{x1, y0, pz}, {x0, y0, pz}, {x1, y1, pz}, {x0, y1, pz}}, layer)
}

func (c *HeightChunk) buildControlMap() *texture.Texture {
	n := c.textureSize
	if n <= 0 || c.rng.Width() == 0 || c.rng.Depth() == 0 {
		return nil
	}
	tex := texture.New(fmt.Sprintf("control %s", c.coord), n, n, texture.FormatR8)
	for v := range n {
		z := c.rng.MinZ + v*c.rng.Depth()/n
		for u := range n {
			x := c.rng.MinX + u*c.rng.Width()/n
			tex.Pix[v*n+u] = byte(c.data.TypeAt(x, z))
		}
	}
	return tex
}
