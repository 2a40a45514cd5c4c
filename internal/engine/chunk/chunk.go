package chunk

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-terrain/internal/engine/material"
	"github.com/Faultbox/midgard-terrain/internal/engine/picking"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/engine/texture"
)

// Host is what a chunk needs from the renderer that owns it.
type Host interface {
	TileScale() terrain.Scale
	GetMaterialInfo(t terrain.TerrainType) (material.Info, error)
}

// Chunk is the per-chunk collaborator driven by the renderer.
type Chunk interface {
	// Initialise binds the chunk to its place in the grid. It is called
	// exactly once, before any other method.
	Initialise(data terrain.Data, host Host, cx, cz, size, textureSize int, mat *material.Material)
	// CreateVoxels builds the initial tile content.
	CreateVoxels()
	// UpdateMesh rebuilds geometry and collision from the current tile data.
	// Calling it twice without a data change yields the same result.
	UpdateMesh()
	// GetVoxel returns a copy of the collision primitive of tile.
	GetVoxel(tile terrain.TileCoord) (*Voxel, error)
}

// Renderable is implemented by chunks that expose GPU-ready geometry.
type Renderable interface {
	Mesh() *terrain.Mesh
	// Revision changes every time UpdateMesh produces new geometry.
	Revision() uint64
	Origin() mgl32.Vec3
	// Footprint is the world-space X/Z size of the tiles the chunk owns.
	Footprint() mgl32.Vec2
	Material() *material.Material
	// ControlMap is a per-chunk R8 texture holding the terrain type
	// ordinal of the nearest tile for every texel.
	ControlMap() *texture.Texture
}

// Voxel is the collision primitive of one tile.
type Voxel struct {
	Coord  terrain.TileCoord
	Type   terrain.TerrainType
	Bounds picking.AABB
}

// Tile implements picking.TileOwner.
func (v *Voxel) Tile() terrain.TileCoord {
	return v.Coord
}

// Raycast implements picking.Collider.
func (v *Voxel) Raycast(ray picking.Ray, maxDist float32) (picking.Hit, bool) {
	t, ok := ray.IntersectAABB(v.Bounds)
	if !ok || t > maxDist {
		return picking.Hit{}, false
	}
	return picking.Hit{Distance: t, Primitive: v}, true
}
