package config

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-terrain/internal/engine/lighting"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks the settings the terrain renderer cannot start without.
func (c *Config) Validate() error {
	t := c.Terrain
	if t.Width < 1 || t.Depth < 1 {
		return fmt.Errorf("%w: terrain size %dx%d", ErrInvalid, t.Width, t.Depth)
	}
	if t.ChunkSize < 1 {
		return fmt.Errorf("%w: chunk_size %d", ErrInvalid, t.ChunkSize)
	}
	if t.ChunkTextureSize < 0 {
		return fmt.Errorf("%w: chunk_texture_size %d", ErrInvalid, t.ChunkTextureSize)
	}
	if t.TileWidth <= 0 || t.TileDepth <= 0 || t.TileHeight <= 0 {
		return fmt.Errorf("%w: tile scale %gx%gx%g", ErrInvalid, t.TileWidth, t.TileDepth, t.TileHeight)
	}

	m := c.Materials
	if _, err := terrain.ParseTerrainType(m.Reference); err != nil {
		return fmt.Errorf("%w: materials.reference: %v", ErrInvalid, err)
	}
	seen := make(map[terrain.TerrainType]bool, len(m.Types))
	for i, e := range m.Types {
		tt, err := terrain.ParseTerrainType(e.Type)
		if err != nil {
			return fmt.Errorf("%w: materials.types[%d]: %v", ErrInvalid, i, err)
		}
		if seen[tt] {
			return fmt.Errorf("%w: materials.types[%d]: duplicate type %s", ErrInvalid, i, tt)
		}
		seen[tt] = true
		if e.BaseColor == "" {
			return fmt.Errorf("%w: materials.types[%d]: %s has no base_color", ErrInvalid, i, tt)
		}
	}

	if l := c.Lighting.SunLatitude; l < 0 || l > 90 {
		return fmt.Errorf("%w: lighting.sun_latitude %g", ErrInvalid, l)
	}

	if c.Picking.MaxDistance < 0 {
		return fmt.Errorf("%w: picking.max_distance %g", ErrInvalid, c.Picking.MaxDistance)
	}
	return nil
}

// TileScale returns the configured tile size.
func (t TerrainConfig) TileScale() terrain.Scale {
	return terrain.Scale{Width: t.TileWidth, Depth: t.TileDepth, Height: t.TileHeight}
}

// Sun returns the configured sun.
func (l LightingConfig) Sun() lighting.Sun {
	return lighting.Sun{
		Longitude: l.SunLongitude,
		Latitude:  l.SunLatitude,
		Ambient:   mgl32.Vec3(l.Ambient),
		Diffuse:   mgl32.Vec3(l.Diffuse),
	}
}
