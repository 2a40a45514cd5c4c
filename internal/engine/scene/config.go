package scene

import (
	"fmt"

	"github.com/Faultbox/midgard-terrain/internal/config"
	"github.com/Faultbox/midgard-terrain/internal/engine/chunk"
	"github.com/Faultbox/midgard-terrain/internal/engine/material"
	"github.com/Faultbox/midgard-terrain/internal/engine/picking"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
)

// ConfigFrom maps the viewer configuration onto renderer options.
func ConfigFrom(cfg *config.Config) (Config, error) {
	ref, err := terrain.ParseTerrainType(cfg.Materials.Reference)
	if err != nil {
		return Config{}, fmt.Errorf("%w: reference: %w", ErrInvalidConfig, err)
	}
	rc := DefaultConfig()
	rc.Scale = cfg.Terrain.TileScale()
	rc.ChunkSize = cfg.Terrain.ChunkSize
	rc.ChunkTextureSize = cfg.Terrain.ChunkTextureSize
	rc.Reference = ref
	rc.Flags = material.Flags{
		UseNormalMaps:    cfg.Materials.UseNormalMaps,
		UseMetallicMaps:  cfg.Materials.UseMetallicMaps,
		UseOcclusionMaps: cfg.Materials.UseOcclusionMaps,
	}
	if cfg.Terrain.LegacySeamGuard {
		rc.SeamPolicy = chunk.SeamPolicyLegacy
	}
	return rc, nil
}

// NewFromConfig creates a terrain renderer from the viewer configuration,
// with the water plane registered when one is configured.
func NewFromConfig(cfg *config.Config) (*TerrainRenderer, error) {
	rc, err := ConfigFrom(cfg)
	if err != nil {
		return nil, err
	}
	tr, err := NewTerrainRenderer(rc)
	if err != nil {
		return nil, err
	}
	if lvl := cfg.Picking.WaterLevel; lvl != nil {
		tr.AddCollider(picking.PlaneY{Y: *lvl})
	}
	return tr, nil
}
