package picking

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
)

type tileBox struct {
	box  AABB
	tile terrain.TileCoord
}

func (b *tileBox) Raycast(ray Ray, maxDist float32) (Hit, bool) {
	t, ok := ray.IntersectAABB(b.box)
	if !ok || t > maxDist {
		return Hit{}, false
	}
	return Hit{Distance: t, Primitive: b}, true
}

func (b *tileBox) Tile() terrain.TileCoord { return b.tile }

type topDownCamera struct{}

func (topDownCamera) ViewProjection(w, h float32) mgl32.Mat4 {
	proj := mgl32.Perspective(mgl32.DegToRad(60), w/h, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1})
	return proj.Mul4(view)
}

func down(x, z float32) Ray {
	return Ray{Origin: mgl32.Vec3{x, 10, z}, Direction: mgl32.Vec3{0, -1, 0}}
}

func TestIntersectAABB(t *testing.T) {
	box := NewAABB(mgl32.Vec3{1, 0, 1}, mgl32.Vec3{0, -1, 0})
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, box.Min)

	tHit, ok := down(0.5, 0.5).IntersectAABB(box)
	require.True(t, ok)
	assert.InDelta(t, 10, tHit, 1e-5)

	_, ok = down(2, 2).IntersectAABB(box)
	assert.False(t, ok)

	// Starting inside returns the exit distance.
	inside := Ray{Origin: mgl32.Vec3{0.5, -0.5, 0.5}, Direction: mgl32.Vec3{0, 1, 0}}
	tHit, ok = inside.IntersectAABB(box)
	require.True(t, ok)
	assert.InDelta(t, 0.5, tHit, 1e-5)

	// Box behind the ray.
	up := Ray{Origin: mgl32.Vec3{0.5, 5, 0.5}, Direction: mgl32.Vec3{0, 1, 0}}
	_, ok = up.IntersectAABB(box)
	assert.False(t, ok)
}

func TestIntersectPlaneY(t *testing.T) {
	tHit, ok := down(3, 4).IntersectPlaneY(2)
	require.True(t, ok)
	assert.InDelta(t, 8, tHit, 1e-5)
	assert.Equal(t, mgl32.Vec3{3, 2, 4}, down(3, 4).At(tHit))

	flat := Ray{Origin: mgl32.Vec3{0, 1, 0}, Direction: mgl32.Vec3{1, 0, 0}}
	_, ok = flat.IntersectPlaneY(0)
	assert.False(t, ok)
}

func TestAABBUnionContains(t *testing.T) {
	a := NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1})
	b := NewAABB(mgl32.Vec3{2, -1, 0}, mgl32.Vec3{3, 0, 1})
	u := a.Union(b)

	assert.Equal(t, mgl32.Vec3{0, -1, 0}, u.Min)
	assert.Equal(t, mgl32.Vec3{3, 1, 1}, u.Max)
	assert.True(t, u.Contains(mgl32.Vec3{2.5, 0.5, 0.5}))
	assert.False(t, a.Contains(mgl32.Vec3{2.5, 0.5, 0.5}))
}

func TestScreenToRayCenter(t *testing.T) {
	vp := topDownCamera{}.ViewProjection(800, 600)
	ray := ScreenToRay(400, 300, 800, 600, vp.Inv())

	assert.InDelta(t, 0, ray.Direction[0], 1e-3)
	assert.InDelta(t, -1, ray.Direction[1], 1e-3)
	assert.InDelta(t, 0, ray.Direction[2], 1e-3)
	assert.InDelta(t, 0, ray.Origin[0], 1e-3)
}

func TestResolveTileNearest(t *testing.T) {
	low := &tileBox{box: NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}), tile: terrain.TileCoord{X: 0, Y: 0, Z: 0}}
	high := &tileBox{box: NewAABB(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 2, 1}), tile: terrain.TileCoord{X: 0, Y: 1, Z: 0}}
	world := Colliders{low, high}

	tile, ok := ResolveTile(world, down(0.5, 0.5), 100)
	require.True(t, ok)
	assert.Equal(t, terrain.TileCoord{X: 0, Y: 1, Z: 0}, tile)

	_, ok = ResolveTile(world, down(0.5, 0.5), 5)
	assert.False(t, ok, "hit beyond max distance must be ignored")
}

func TestResolveTileIgnoresNonTiles(t *testing.T) {
	tile := &tileBox{box: NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1})}
	water := PlaneY{Y: 3}

	_, ok := ResolveTile(Colliders{tile, water}, down(0.5, 0.5), 100)
	assert.False(t, ok, "water plane is nearer and has no tile")

	_, ok = ResolveTile(Colliders{}, down(0.5, 0.5), 100)
	assert.False(t, ok)
}

func TestControllerPublishesInOrder(t *testing.T) {
	target := &tileBox{
		box:  NewAABB(mgl32.Vec3{-0.5, -1, -0.5}, mgl32.Vec3{0.5, 0, 0.5}),
		tile: terrain.TileCoord{X: 4, Y: 0, Z: 7},
	}
	c := NewController(Colliders{target}, topDownCamera{}, 0)

	var order []string
	var events []TileClicked
	c.OnTileClicked(func(e TileClicked) {
		order = append(order, "first")
		events = append(events, e)
	})
	second := c.OnTileClicked(func(TileClicked) { order = append(order, "second") })

	tile, ok := c.HandleClick(400, 300, 800, 600)
	require.True(t, ok)
	assert.Equal(t, terrain.TileCoord{X: 4, Y: 0, Z: 7}, tile)
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, []TileClicked{{X: 4, Y: 0, Z: 7}}, events)

	assert.True(t, c.Unsubscribe(second))
	c.HandleClick(400, 300, 800, 600)
	assert.Equal(t, []string{"first", "second", "first"}, order)
}

func TestControllerMissEmitsNothing(t *testing.T) {
	target := &tileBox{box: NewAABB(mgl32.Vec3{50, -1, 50}, mgl32.Vec3{51, 0, 51})}
	c := NewController(Colliders{target}, topDownCamera{}, 100)

	count := 0
	c.OnTileClicked(func(TileClicked) { count++ })

	_, ok := c.HandleClick(400, 300, 800, 600)
	assert.False(t, ok)
	_, ok = c.HandleClick(10, 10, 0, 0)
	assert.False(t, ok)
	assert.Zero(t, count)
}
