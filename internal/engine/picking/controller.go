package picking

import (
	"go.uber.org/zap"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-terrain/internal/engine/event"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/logger"
)

// DefaultMaxDistance bounds pick rays when no distance is configured.
const DefaultMaxDistance = 1000

// TileClicked is published when a click resolves to a tile.
type TileClicked struct {
	X, Y, Z int
}

// Camera provides the view-projection used to build pick rays.
type Camera interface {
	ViewProjection(viewportW, viewportH float32) mgl32.Mat4
}

// Controller turns clicks into tile-clicked notifications.
type Controller struct {
	world   Collider
	camera  Camera
	maxDist float32
	clicked event.Bus[TileClicked]
}

// NewController creates a controller casting against world. A non-positive
// maxDist selects DefaultMaxDistance.
func NewController(world Collider, camera Camera, maxDist float32) *Controller {
	if maxDist <= 0 {
		maxDist = DefaultMaxDistance
	}
	return &Controller{world: world, camera: camera, maxDist: maxDist}
}

// OnTileClicked registers fn for tile-clicked notifications. Handlers run
// in registration order inside HandleClick.
func (c *Controller) OnTileClicked(fn func(TileClicked)) event.Subscription {
	return c.clicked.Subscribe(fn)
}

// Unsubscribe removes a handler registered with OnTileClicked.
func (c *Controller) Unsubscribe(sub event.Subscription) bool {
	return c.clicked.Unsubscribe(sub)
}

// HandleClick casts a ray from the camera through screen point (x, y) and
// notifies subscribers if it lands on a tile.
func (c *Controller) HandleClick(x, y, viewportW, viewportH float32) (terrain.TileCoord, bool) {
	if viewportW <= 0 || viewportH <= 0 {
		return terrain.TileCoord{}, false
	}
	vp := c.camera.ViewProjection(viewportW, viewportH)
	ray := ScreenToRay(x, y, viewportW, viewportH, vp.Inv())
	return c.HandleRay(ray)
}

// HandleRay resolves ray to a tile and notifies subscribers on a hit.
func (c *Controller) HandleRay(ray Ray) (terrain.TileCoord, bool) {
	tile, ok := ResolveTile(c.world, ray, c.maxDist)
	if !ok {
		return terrain.TileCoord{}, false
	}
	logger.Debug("tile picked", zap.Stringer("tile", tile))
	c.clicked.Publish(TileClicked{X: tile.X, Y: tile.Y, Z: tile.Z})
	return tile, true
}
