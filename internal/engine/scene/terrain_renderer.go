// Package scene hosts the terrain renderer: it owns the material atlas and the
// chunk grid and decides which chunks to rebuild after an edit.
package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/engine/chunk"
	"github.com/Faultbox/midgard-terrain/internal/engine/material"
	"github.com/Faultbox/midgard-terrain/internal/engine/picking"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/logger"
)

// Renderer errors.
var (
	ErrNotInitialised     = errors.New("terrain renderer not initialised")
	ErrAlreadyInitialised = errors.New("terrain renderer already initialised")
	ErrNoWorld            = errors.New("terrain world not created")
	ErrWorldExists        = errors.New("terrain world already created")
	ErrInvalidConfig      = errors.New("invalid terrain renderer config")
)

// ChunkFactory creates an uninitialised chunk.
type ChunkFactory func() chunk.Chunk

// Config contains terrain renderer options.
type Config struct {
	Scale            terrain.Scale
	ChunkSize        int
	ChunkTextureSize int
	Reference        terrain.TerrainType
	Flags            material.Flags
	SeamPolicy       chunk.SeamPolicy
	NewChunk         ChunkFactory
}

// DefaultConfig returns a default terrain renderer configuration.
func DefaultConfig() Config {
	return Config{
		Scale:            terrain.Scale{Width: 1, Depth: 1, Height: 0.5},
		ChunkSize:        16,
		ChunkTextureSize: 64,
		Reference:        terrain.Grass,
		Flags:            material.Flags{UseNormalMaps: true},
		SeamPolicy:       chunk.SeamPolicyAxis,
		NewChunk:         chunk.NewHeightChunk,
	}
}

// TerrainRenderer orchestrates the material compositor and the chunk grid.
// It is not safe for concurrent use.
type TerrainRenderer struct {
	cfg       Config
	atlas     *material.Atlas
	data      terrain.Data
	grid      *chunk.Grid
	colliders picking.Colliders
}

// NewTerrainRenderer validates cfg and returns a renderer with no atlas and
// no world.
func NewTerrainRenderer(cfg Config) (*TerrainRenderer, error) {
	if cfg.ChunkSize < 1 {
		return nil, fmt.Errorf("%w: chunk size %d", ErrInvalidConfig, cfg.ChunkSize)
	}
	if cfg.Scale.Width <= 0 || cfg.Scale.Depth <= 0 || cfg.Scale.Height <= 0 {
		return nil, fmt.Errorf("%w: tile scale %+v", ErrInvalidConfig, cfg.Scale)
	}
	if cfg.ChunkTextureSize < 0 {
		return nil, fmt.Errorf("%w: chunk texture size %d", ErrInvalidConfig, cfg.ChunkTextureSize)
	}
	if cfg.NewChunk == nil {
		cfg.NewChunk = chunk.NewHeightChunk
	}
	return &TerrainRenderer{cfg: cfg}, nil
}

// Config returns the renderer configuration.
func (tr *TerrainRenderer) Config() Config { return tr.cfg }

// Initialise builds the material atlas from sources. It must run once,
// before CreateWorld.
func (tr *TerrainRenderer) Initialise(sources []material.Source, tmpl material.Template) error {
	if tr.atlas != nil {
		return ErrAlreadyInitialised
	}
	atlas, err := material.Build(tr.cfg.Reference, sources, tr.cfg.Flags, tmpl)
	if err != nil {
		return fmt.Errorf("build material atlas: %w", err)
	}
	tr.atlas = atlas

	logger.Info("terrain renderer initialised",
		zap.Int("types", len(sources)),
		zap.Int("arrays", len(atlas.Arrays())),
		zap.Strings("features", atlas.Material.Features()),
	)
	return nil
}

// Atlas returns the material atlas, or nil before Initialise.
func (tr *TerrainRenderer) Atlas() *material.Atlas { return tr.atlas }

// CreateWorld partitions data into chunks and creates each chunk's voxels.
// It returns the number of chunks. Meshes are built by UpdateWorldMesh.
func (tr *TerrainRenderer) CreateWorld(data terrain.Data) (int, error) {
	if tr.atlas == nil {
		return 0, ErrNotInitialised
	}
	if tr.grid != nil {
		return 0, ErrWorldExists
	}

	grid, err := chunk.NewGrid(data.Width(), data.Depth(), tr.cfg.ChunkSize)
	if err != nil {
		return 0, fmt.Errorf("create world: %w", err)
	}

	nx, nz := grid.Shape()
	for cx := range nx {
		for cz := range nz {
			c := tr.cfg.NewChunk()
			c.Initialise(data, tr, cx, cz, tr.cfg.ChunkSize, tr.cfg.ChunkTextureSize, tr.atlas.Material)
			c.CreateVoxels()
			if err := grid.Set(chunk.Coord{X: cx, Z: cz}, c); err != nil {
				return 0, err
			}
		}
	}

	tr.data = data
	tr.grid = grid

	logger.Info("terrain world created",
		zap.Int("width", data.Width()),
		zap.Int("depth", data.Depth()),
		zap.Int("chunkSize", tr.cfg.ChunkSize),
		zap.Int("chunksX", nx),
		zap.Int("chunksZ", nz),
	)
	return grid.Count(), nil
}

// Chunks returns the chunk grid, or nil before CreateWorld.
func (tr *TerrainRenderer) Chunks() *chunk.Grid { return tr.grid }

// Data returns the terrain data the world was created from.
func (tr *TerrainRenderer) Data() terrain.Data { return tr.data }

// UpdateWorldMesh rebuilds every chunk, X outer and Z inner.
func (tr *TerrainRenderer) UpdateWorldMesh() error {
	if tr.grid == nil {
		return ErrNoWorld
	}
	tr.grid.Each(func(_ chunk.Coord, c chunk.Chunk) {
		c.UpdateMesh()
	})
	logger.Debug("world mesh rebuilt", zap.Int("chunks", tr.grid.Count()))
	return nil
}

// UpdateWorldMeshForTile rebuilds the chunk owning tile and any neighbour
// whose geometry depends on it.
func (tr *TerrainRenderer) UpdateWorldMeshForTile(tile terrain.TileCoord) error {
	if tr.grid == nil {
		return ErrNoWorld
	}
	targets, err := tr.grid.AffectedChunks(tile, tr.cfg.SeamPolicy)
	if err != nil {
		return err
	}
	for _, c := range targets {
		tr.grid.At(c).UpdateMesh()
	}
	logger.Debug("tile mesh rebuilt",
		zap.Stringer("tile", tile),
		zap.Int("chunks", len(targets)),
	)
	return nil
}

// GetChunkForTile returns the chunk owning tile.
func (tr *TerrainRenderer) GetChunkForTile(tile terrain.TileCoord) (chunk.Chunk, error) {
	if tr.grid == nil {
		return nil, ErrNoWorld
	}
	return tr.grid.ChunkForTile(tile.X, tile.Z)
}

// GetVoxel returns the collision primitive of tile.
func (tr *TerrainRenderer) GetVoxel(tile terrain.TileCoord) (*chunk.Voxel, error) {
	c, err := tr.GetChunkForTile(tile)
	if err != nil {
		return nil, err
	}
	return c.GetVoxel(tile)
}

// GetMaterialInfo implements chunk.Host.
func (tr *TerrainRenderer) GetMaterialInfo(t terrain.TerrainType) (material.Info, error) {
	if tr.atlas == nil {
		return material.Info{}, ErrNotInitialised
	}
	return tr.atlas.Info(t)
}

// TileScale implements chunk.Host.
func (tr *TerrainRenderer) TileScale() terrain.Scale { return tr.cfg.Scale }

// WorldSize returns the extent of the world in world units.
func (tr *TerrainRenderer) WorldSize() mgl32.Vec3 {
	if tr.data == nil {
		return mgl32.Vec3{}
	}
	return mgl32.Vec3{
		float32(tr.data.Width()) * tr.cfg.Scale.Width,
		0,
		float32(tr.data.Depth()) * tr.cfg.Scale.Depth,
	}
}

// AddCollider registers extra collision geometry, such as a water plane,
// that pick rays are cast against together with the chunks.
func (tr *TerrainRenderer) AddCollider(c picking.Collider) {
	tr.colliders = append(tr.colliders, c)
}

// Raycast implements picking.Collider over every collidable chunk and the
// extra colliders.
func (tr *TerrainRenderer) Raycast(ray picking.Ray, maxDist float32) (picking.Hit, bool) {
	best, found := tr.colliders.Raycast(ray, maxDist)
	if tr.grid == nil {
		return best, found
	}
	tr.grid.Each(func(_ chunk.Coord, c chunk.Chunk) {
		col, ok := c.(picking.Collider)
		if !ok {
			return
		}
		h, ok := col.Raycast(ray, maxDist)
		if !ok || (found && h.Distance >= best.Distance) {
			return
		}
		best, found = h, true
	})
	return best, found
}
