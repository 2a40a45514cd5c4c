package chunk

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-terrain/internal/engine/material"
	"github.com/Faultbox/midgard-terrain/internal/engine/picking"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
)

type testHost struct {
	scale   terrain.Scale
	missing terrain.TerrainType
}

func (h testHost) TileScale() terrain.Scale { return h.scale }

func (h testHost) GetMaterialInfo(t terrain.TerrainType) (material.Info, error) {
	if t == h.missing {
		return material.Info{}, material.ErrUnregisteredType
	}
	return material.Info{Type: t, ShaderIndex: t.ShaderIndex()}, nil
}

func unitHost() testHost {
	return testHost{scale: terrain.Scale{Width: 1, Depth: 1, Height: 1}, missing: terrain.Sand}
}

func TestGridShape(t *testing.T) {
	tests := []struct {
		w, d, size int
		nx, nz     int
	}{
		{23, 17, 10, 3, 2},
		{20, 20, 10, 2, 2},
		{1, 1, 10, 1, 1},
		{5, 7, 1, 5, 7},
	}
	for _, tt := range tests {
		g, err := NewGrid(tt.w, tt.d, tt.size)
		require.NoError(t, err)
		nx, nz := g.Shape()
		assert.Equal(t, tt.nx, nx)
		assert.Equal(t, tt.nz, nz)
		assert.Equal(t, tt.nx*tt.nz, g.Count())
	}

	_, err := NewGrid(10, 10, 0)
	assert.ErrorIs(t, err, ErrInvalidGrid)
	_, err = NewGrid(0, 10, 4)
	assert.ErrorIs(t, err, ErrInvalidGrid)
}

func TestGridPartition(t *testing.T) {
	g, err := NewGrid(23, 17, 10)
	require.NoError(t, err)

	// Every column is owned by exactly one chunk and that chunk's range
	// contains it.
	owners := make(map[Coord]int)
	for x := range 23 {
		for z := range 17 {
			c, err := g.CoordForTile(x, z)
			require.NoError(t, err)
			assert.True(t, g.Range(c).Contains(x, z), "tile (%d, %d) in %s", x, z, c)
			owners[c]++
		}
	}
	assert.Len(t, owners, 6)

	r := g.Range(Coord{X: 2, Z: 1})
	assert.Equal(t, Range{MinX: 20, MaxX: 23, MinZ: 10, MaxZ: 17}, r)
	assert.Equal(t, 3*7, owners[Coord{X: 2, Z: 1}])

	_, err = g.CoordForTile(23, 0)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = g.CoordForTile(0, -1)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestGridEachOrder(t *testing.T) {
	g, err := NewGrid(20, 30, 10)
	require.NoError(t, err)

	var got []Coord
	g.Each(func(c Coord, _ Chunk) { got = append(got, c) })
	assert.Equal(t, []Coord{
		{0, 0}, {0, 1}, {0, 2},
		{1, 0}, {1, 1}, {1, 2},
	}, got)

	assert.Error(t, g.Set(Coord{X: 2, Z: 0}, NewHeightChunk()))
	assert.Nil(t, g.At(Coord{X: -1, Z: 0}))
}

func TestChunkOrigin(t *testing.T) {
	scale := terrain.Scale{Width: 2, Depth: 3, Height: 1}
	assert.Equal(t, mgl32.Vec3{40, 0, 30}, ChunkOrigin(Coord{X: 2, Z: 1}, 10, scale))
}

func TestAffectedChunks(t *testing.T) {
	g, err := NewGrid(20, 20, 10)
	require.NoError(t, err)

	tests := []struct {
		name string
		tile terrain.TileCoord
		want []Coord
	}{
		{"interior", terrain.TileCoord{X: 15, Z: 5}, []Coord{{1, 0}}},
		{"x high edge", terrain.TileCoord{X: 9, Z: 5}, []Coord{{0, 0}, {1, 0}}},
		{"z high edge", terrain.TileCoord{X: 5, Z: 9}, []Coord{{0, 0}, {0, 1}}},
		{"corner", terrain.TileCoord{X: 9, Z: 9}, []Coord{{0, 0}, {1, 0}, {0, 1}}},
		{"field edge", terrain.TileCoord{X: 19, Z: 19}, []Coord{{1, 1}}},
		{"low side", terrain.TileCoord{X: 11, Z: 11}, []Coord{{1, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.AffectedChunks(tt.tile, SeamPolicyAxis)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), 3)
		})
	}

	_, err = g.AffectedChunks(terrain.TileCoord{X: 20, Z: 0}, SeamPolicyAxis)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestAffectedChunksNarrowField(t *testing.T) {
	g, err := NewGrid(11, 4, 10)
	require.NoError(t, err)

	got, err := g.AffectedChunks(terrain.TileCoord{X: 9, Z: 1}, SeamPolicyAxis)
	require.NoError(t, err)
	assert.Equal(t, []Coord{{0, 0}, {1, 0}}, got)
}

func TestAffectedChunksPolicies(t *testing.T) {
	g, err := NewGrid(30, 30, 10)
	require.NoError(t, err)

	// Both guards only ever point back into the owning chunk, so the two
	// policies agree on every tile.
	for x := range 30 {
		for z := range 30 {
			tile := terrain.TileCoord{X: x, Z: z}
			axis, err := g.AffectedChunks(tile, SeamPolicyAxis)
			require.NoError(t, err)
			legacy, err := g.AffectedChunks(tile, SeamPolicyLegacy)
			require.NoError(t, err)
			assert.Equal(t, axis, legacy, "tile %s", tile)
		}
	}
}

func newTestChunk(t *testing.T, f *terrain.Field, host testHost, cx, cz, size, texSize int) *HeightChunk {
	t.Helper()
	c := NewHeightChunk().(*HeightChunk)
	c.Initialise(f, host, cx, cz, size, texSize, material.Template{Name: "terrain"}.Instantiate())
	c.CreateVoxels()
	return c
}

func TestHeightChunkVoxels(t *testing.T) {
	f, err := terrain.NewField(4, 4)
	require.NoError(t, err)
	require.NoError(t, f.SetHeight(3, 1, 3))
	require.NoError(t, f.SetType(3, 1, terrain.HardRocks))

	host := testHost{scale: terrain.Scale{Width: 2, Depth: 3, Height: 0.5}}
	c := newTestChunk(t, f, host, 1, 0, 2, 4)

	assert.Equal(t, Range{MinX: 2, MaxX: 4, MinZ: 0, MaxZ: 2}, c.Range())
	assert.Equal(t, mgl32.Vec3{4, 0, 0}, c.Origin())
	assert.Equal(t, mgl32.Vec2{4, 6}, c.Footprint())

	v, err := c.GetVoxel(terrain.TileCoord{X: 3, Y: 2, Z: 1})
	require.NoError(t, err)
	assert.Equal(t, terrain.HardRocks, v.Type)
	assert.Equal(t, terrain.TileCoord{X: 3, Y: 2, Z: 1}, v.Tile())
	assert.Equal(t, mgl32.Vec3{6, 1, 3}, v.Bounds.Min)
	assert.Equal(t, mgl32.Vec3{8, 1.5, 6}, v.Bounds.Max)

	_, err = c.GetVoxel(terrain.TileCoord{X: 0, Y: 0, Z: 0})
	assert.ErrorIs(t, err, ErrOutOfBounds, "column of another chunk")
	_, err = c.GetVoxel(terrain.TileCoord{X: 2, Y: 1, Z: 0})
	assert.ErrorIs(t, err, ErrOutOfBounds, "above the column")
}

func TestHeightChunkVoxelSurvivesRebuild(t *testing.T) {
	f, err := terrain.NewField(4, 4)
	require.NoError(t, err)
	require.NoError(t, f.SetHeight(3, 1, 3))
	require.NoError(t, f.SetType(3, 1, terrain.HardRocks))

	c := newTestChunk(t, f, unitHost(), 1, 0, 2, 4)
	tile := terrain.TileCoord{X: 3, Y: 2, Z: 1}
	held, err := c.GetVoxel(tile)
	require.NoError(t, err)

	require.NoError(t, f.SetType(3, 1, terrain.Sand))
	c.UpdateMesh()

	assert.Equal(t, terrain.HardRocks, held.Type, "held voxel is not rewritten")
	fresh, err := c.GetVoxel(tile)
	require.NoError(t, err)
	assert.Equal(t, terrain.Sand, fresh.Type)
}

func TestHeightChunkFlatMesh(t *testing.T) {
	f, err := terrain.NewField(4, 4)
	require.NoError(t, err)

	c := newTestChunk(t, f, unitHost(), 1, 0, 2, 4)
	assert.Nil(t, c.Mesh())
	assert.Zero(t, c.Revision())

	c.UpdateMesh()
	m := c.Mesh()
	require.NotNil(t, m)

	// Four tops, two walls on the -Z field border, two on the +X border.
	assert.Len(t, m.Vertices, 8*4)
	assert.Len(t, m.Indices, 8*6)
	assert.Equal(t, uint64(1), c.Revision())
	for _, v := range m.Vertices {
		assert.InDelta(t, terrain.Grass.ShaderIndex(), v.Layer, 1e-6)
	}

	// Positions are local to the chunk origin.
	assert.Equal(t, [3]float32{0, 0, 0}, m.Bounds.Min)
	assert.Equal(t, [3]float32{2, 1, 2}, m.Bounds.Max)

	before := len(m.Vertices)
	c.UpdateMesh()
	assert.Len(t, c.Mesh().Vertices, before)
	assert.Equal(t, uint64(2), c.Revision())
}

func TestHeightChunkSeamWall(t *testing.T) {
	f, err := terrain.NewField(4, 1)
	require.NoError(t, err)
	host := unitHost()

	left := newTestChunk(t, f, host, 0, 0, 2, 0)
	right := newTestChunk(t, f, host, 1, 0, 2, 0)
	left.UpdateMesh()
	right.UpdateMesh()
	rightBefore := len(right.Mesh().Vertices)

	// Raising the last column of the left chunk exposes its +X face, which
	// the right chunk owns.
	require.NoError(t, f.SetHeight(1, 0, 3))
	right.UpdateMesh()
	assert.Len(t, right.Mesh().Vertices, rightBefore+4)

	var wall int
	for _, v := range right.Mesh().Vertices {
		if v.Normal == [3]float32{1, 0, 0} && v.Position[0] == 0 {
			wall++
		}
	}
	assert.Equal(t, 4, wall)
}

func TestHeightChunkUnregisteredType(t *testing.T) {
	f, err := terrain.NewField(2, 2)
	require.NoError(t, err)
	require.NoError(t, f.SetType(0, 0, terrain.Sand))

	c := newTestChunk(t, f, unitHost(), 0, 0, 2, 2)
	c.UpdateMesh()

	var sand int
	for _, v := range c.Mesh().Vertices {
		if v.Layer == terrain.Sand.ShaderIndex() {
			sand++
		}
	}
	assert.Positive(t, sand)
}

func TestHeightChunkControlMap(t *testing.T) {
	f, err := terrain.NewField(4, 4)
	require.NoError(t, err)
	require.NoError(t, f.SetType(2, 1, terrain.Dirt))

	c := newTestChunk(t, f, unitHost(), 1, 0, 2, 4)
	c.UpdateMesh()

	cm := c.ControlMap()
	require.NotNil(t, cm)
	assert.Equal(t, 4, cm.Width)
	assert.Equal(t, 4, cm.Height)
	// Texels (0..1, 2..3) sample tile (2, 1).
	assert.Equal(t, byte(terrain.Dirt), cm.Pix[2*4+0])
	assert.Equal(t, byte(terrain.Dirt), cm.Pix[3*4+1])
	assert.Equal(t, byte(terrain.Grass), cm.Pix[0])
}

func TestHeightChunkRaycast(t *testing.T) {
	f, err := terrain.NewField(4, 4)
	require.NoError(t, err)
	require.NoError(t, f.SetHeight(3, 1, 3))

	c := newTestChunk(t, f, unitHost(), 1, 0, 2, 0)

	down := picking.Ray{Origin: mgl32.Vec3{3.5, 10, 1.5}, Direction: mgl32.Vec3{0, -1, 0}}
	hit, ok := c.Raycast(down, 100)
	require.True(t, ok)
	assert.InDelta(t, 7, hit.Distance, 1e-5)
	owner, ok := hit.Primitive.(picking.TileOwner)
	require.True(t, ok)
	assert.Equal(t, terrain.TileCoord{X: 3, Y: 2, Z: 1}, owner.Tile())

	_, ok = c.Raycast(down, 5)
	assert.False(t, ok)

	miss := picking.Ray{Origin: mgl32.Vec3{0.5, 10, 0.5}, Direction: mgl32.Vec3{0, -1, 0}}
	_, ok = c.Raycast(miss, 100)
	assert.False(t, ok, "column belongs to another chunk")
}

func TestHeightChunkClippedFootprint(t *testing.T) {
	f, err := terrain.NewField(5, 3)
	require.NoError(t, err)

	c := newTestChunk(t, f, unitHost(), 1, 0, 4, 0)
	assert.Equal(t, Range{MinX: 4, MaxX: 5, MinZ: 0, MaxZ: 3}, c.Range())
	assert.Equal(t, mgl32.Vec2{1, 3}, c.Footprint())
	assert.Equal(t, Coord{X: 1, Z: 0}, c.Coord())
	assert.Nil(t, c.ControlMap(), "no control map before the first mesh")
	assert.NotNil(t, c.Material())
}

func TestHeightChunkErrorsWrap(t *testing.T) {
	f, err := terrain.NewField(2, 2)
	require.NoError(t, err)
	c := newTestChunk(t, f, unitHost(), 0, 0, 2, 0)

	_, err = c.GetVoxel(terrain.TileCoord{X: 5, Y: 0, Z: 0})
	assert.True(t, errors.Is(err, terrain.ErrOutOfBounds))
}
