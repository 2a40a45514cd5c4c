package picking

import (
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
)

// Hit is the nearest intersection of a ray with a collider.
type Hit struct {
	Distance float32
	// Primitive is the primitive that was hit. It implements TileOwner when
	// the primitive stands for a terrain tile.
	Primitive any
}

// Collider is anything a ray can be cast against.
type Collider interface {
	// Raycast returns the nearest hit within maxDist.
	Raycast(ray Ray, maxDist float32) (Hit, bool)
}

// TileOwner is implemented by collision primitives that represent a tile.
type TileOwner interface {
	Tile() terrain.TileCoord
}

// Colliders casts against every member and keeps the nearest hit.
type Colliders []Collider

// Raycast implements Collider.
func (cs Colliders) Raycast(ray Ray, maxDist float32) (Hit, bool) {
	var best Hit
	found := false
	for _, c := range cs {
		h, ok := c.Raycast(ray, maxDist)
		if !ok || (found && h.Distance >= best.Distance) {
			continue
		}
		best, found = h, true
	}
	return best, found
}

// PlaneY is a horizontal collision plane without tile association, such as
// a water surface.
type PlaneY struct {
	Y float32
}

// Raycast implements Collider.
func (p PlaneY) Raycast(ray Ray, maxDist float32) (Hit, bool) {
	t, ok := ray.IntersectPlaneY(p.Y)
	if !ok || t > maxDist {
		return Hit{}, false
	}
	return Hit{Distance: t, Primitive: p}, true
}

// ResolveTile casts ray against world and returns the tile of the nearest
// hit. Hits on primitives that are not tiles resolve to nothing.
func ResolveTile(world Collider, ray Ray, maxDist float32) (terrain.TileCoord, bool) {
	hit, ok := world.Raycast(ray, maxDist)
	if !ok {
		return terrain.TileCoord{}, false
	}
	owner, ok := hit.Primitive.(TileOwner)
	if !ok {
		return terrain.TileCoord{}, false
	}
	return owner.Tile(), true
}
